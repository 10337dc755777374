package analysis

import (
	"fmt"
	"math"

	"github.com/edp1096/toy-symspice/pkg/circuit"
)

// DCSweep evaluates the symbolic operating point while one symbol steps
// through a range. Results carry the swept values under SWEEP1.
type DCSweep struct {
	BaseAnalysis
	op        *OperatingPoint
	symbol    string
	sweepVals []float64
}

func NewDCSweep(symbol string, start, stop, increment float64, env map[string]float64) (*DCSweep, error) {
	if increment == 0 || (stop-start)/increment < 0 {
		return nil, fmt.Errorf("dc sweep of %s: bad range %g to %g by %g", symbol, start, stop, increment)
	}

	dc := &DCSweep{
		BaseAnalysis: *NewBaseAnalysis(env),
		op:           NewOP(nil),
		symbol:       symbol,
	}
	n := int(math.Floor((stop-start)/increment+1e-9)) + 1
	for i := range n {
		dc.sweepVals = append(dc.sweepVals, start+float64(i)*increment)
	}
	return dc, nil
}

func (dc *DCSweep) Setup(ckt *circuit.Circuit) error {
	dc.Circuit = ckt
	if err := dc.op.Setup(ckt); err != nil {
		return fmt.Errorf("operating point setup error: %w", err)
	}
	if err := dc.op.Execute(); err != nil {
		return fmt.Errorf("operating point analysis error: %w", err)
	}
	dc.expressions = dc.op.expressions
	return nil
}

func (dc *DCSweep) Execute() error {
	if dc.Circuit == nil {
		return ErrCircuitNotSet
	}

	for _, v := range dc.sweepVals {
		point := map[string]float64{dc.symbol: v}
		for name, e := range dc.expressions {
			f, ok, err := dc.evaluate(e, point)
			if err != nil {
				return fmt.Errorf("%s at %s=%g: %w", name, dc.symbol, v, err)
			}
			if !ok {
				return fmt.Errorf("%s at %s=%g: unbound symbols in %s", name, dc.symbol, v, e)
			}
			dc.results[name] = append(dc.results[name], f)
		}
		dc.results["SWEEP1"] = append(dc.results["SWEEP1"], v)
	}
	return nil
}
