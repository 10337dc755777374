package analysis

import (
	"fmt"

	"github.com/edp1096/toy-symspice/pkg/circuit"
)

// OperatingPoint tabulates the DC value of every node voltage and component
// current. Values whose symbols are all bound by Env are also stored
// numerically.
type OperatingPoint struct{ BaseAnalysis }

func NewOP(env map[string]float64) *OperatingPoint {
	return &OperatingPoint{
		BaseAnalysis: *NewBaseAnalysis(env),
	}
}

func (op *OperatingPoint) Setup(ckt *circuit.Circuit) error {
	op.Circuit = ckt
	return nil
}

func (op *OperatingPoint) Execute() error {
	if op.Circuit == nil {
		return ErrCircuitNotSet
	}

	names, query := quantities(op.Circuit)
	for i, name := range names {
		x, err := query[i]()
		if err != nil {
			return fmt.Errorf("%s: %w", name, err)
		}
		v, err := x.DC()
		if err != nil {
			return fmt.Errorf("%s: %w", name, err)
		}
		op.expressions[name] = v

		f, ok, err := op.evaluate(v, nil)
		if err != nil {
			return fmt.Errorf("%s: %w", name, err)
		}
		if ok {
			op.results[name] = []float64{f}
		}
	}
	return nil
}
