package analysis

import (
	"errors"
	"fmt"
	"math"
	"math/cmplx"

	"github.com/edp1096/toy-symspice/pkg/cas"
	"github.com/edp1096/toy-symspice/pkg/circuit"
	"github.com/edp1096/toy-symspice/pkg/expr"
	"github.com/edp1096/toy-symspice/pkg/util"
)

const (
	OP int = iota
	TRAN
	AC
	DC
)

var ErrCircuitNotSet = errors.New("circuit not set")

type Analysis interface {
	Setup(ckt *circuit.Circuit) error
	Execute() error
	GetResults() map[string][]float64
}

// BaseAnalysis holds numeric results keyed by quantity name ("V(1)",
// "I(R1)", "TIME", "FREQ", ...) and the symbolic expressions they were
// sampled from.
type BaseAnalysis struct {
	Circuit *circuit.Circuit
	Env     map[string]float64 // numeric values for component symbols

	results     map[string][]float64 // key: variable name, value: result by time
	expressions map[string]expr.Value
}

func NewBaseAnalysis(env map[string]float64) *BaseAnalysis {
	return &BaseAnalysis{
		Env:         env,
		results:     make(map[string][]float64),
		expressions: make(map[string]expr.Value),
	}
}

// quantities lists every node voltage and component current of ckt.
func quantities(ckt *circuit.Circuit) (names []string, query []func() (expr.Super, error)) {
	for _, n := range ckt.Nodes() {
		names = append(names, "V("+n+")")
		query = append(query, func() (expr.Super, error) { return ckt.V(n) })
	}
	for _, p := range ckt.Layout() {
		if !p.Kind.HasCurrent() {
			continue
		}
		name := p.Name
		names = append(names, "I("+name+")")
		query = append(query, func() (expr.Super, error) { return ckt.I(name) })
	}
	return names, query
}

// env merges the symbol bindings with extra, which wins.
func (a *BaseAnalysis) env(extra map[string]float64) map[string]complex128 {
	out := make(map[string]complex128, len(a.Env)+len(extra))
	for k, v := range a.Env {
		out[k] = complex(v, 0)
	}
	for k, v := range extra {
		out[k] = complex(v, 0)
	}
	return out
}

// evaluate returns the real value of v; ok is false when a symbol is left
// unbound.
func (a *BaseAnalysis) evaluate(v expr.Value, extra map[string]float64) (float64, bool, error) {
	y, err := v.Evaluate(a.env(extra))
	if errors.Is(err, cas.ErrUnboundSymbol) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, err
	}
	if math.Abs(imag(y)) > 1e-9*math.Max(1, math.Abs(real(y))) {
		return 0, false, fmt.Errorf("%s evaluates to complex %v", v, y)
	}
	return real(y), true, nil
}

func (a *BaseAnalysis) StoreTimeResult(time float64, solution map[string]float64) {
	// Ignore same time
	if len(a.results["TIME"]) > 0 {
		lastTime := a.results["TIME"][len(a.results["TIME"])-1]
		if time == lastTime {
			return
		}
		// Compare rounded string. 1.999999e-05 == 2.000000e-05
		if util.FormatValueFactor(time, "s") == util.FormatValueFactor(lastTime, "s") {
			return
		}
	}

	a.results["TIME"] = append(a.results["TIME"], time)
	for name, value := range solution {
		a.results[name] = append(a.results[name], value)
	}
}

func (a *BaseAnalysis) StoreACResult(freq float64, solution map[string]complex128) {
	a.results["FREQ"] = append(a.results["FREQ"], freq)

	for name, value := range solution {
		magName := name + "_MAG"
		a.results[magName] = append(a.results[magName], cmplx.Abs(value))

		// Phase - degree
		phaseName := name + "_PHASE"
		a.results[phaseName] = append(a.results[phaseName], cmplx.Phase(value)*180.0/math.Pi)
	}
}

func (a *BaseAnalysis) GetResults() map[string][]float64 {
	return a.results
}

// GetExpressions returns the symbolic quantities behind the results.
func (a *BaseAnalysis) GetExpressions() map[string]expr.Value {
	return a.expressions
}
