package analysis

import (
	"fmt"
	"math"

	"github.com/edp1096/toy-symspice/pkg/cas"
	"github.com/edp1096/toy-symspice/pkg/circuit"
)

// Transient samples the closed-form time response of every node voltage
// and component current. Nothing is integrated numerically: the inverse
// Laplace transform is taken once in Setup.
type Transient struct {
	BaseAnalysis
	startTime float64
	stopTime  float64
	timeStep  float64
}

func NewTransient(tStart, tStop, tStep float64, env map[string]float64) *Transient {
	return &Transient{
		BaseAnalysis: *NewBaseAnalysis(env),
		startTime:    tStart,
		stopTime:     tStop,
		timeStep:     tStep,
	}
}

func (tr *Transient) Setup(ckt *circuit.Circuit) error {
	if tr.timeStep <= 0 || tr.stopTime < tr.startTime {
		return fmt.Errorf("transient: bad interval %g to %g by %g", tr.startTime, tr.stopTime, tr.timeStep)
	}
	tr.Circuit = ckt

	names, query := quantities(ckt)
	for i, name := range names {
		x, err := query[i]()
		if err != nil {
			return fmt.Errorf("%s: %w", name, err)
		}
		v, err := x.Time()
		if err != nil {
			return fmt.Errorf("%s: %w", name, err)
		}
		tr.expressions[name] = v
	}
	return nil
}

func (tr *Transient) Execute() error {
	if tr.Circuit == nil {
		return ErrCircuitNotSet
	}

	steps := int(math.Floor((tr.stopTime-tr.startTime)/tr.timeStep + 1e-9))
	for i := 0; i <= steps; i++ {
		t := tr.startTime + float64(i)*tr.timeStep
		at := map[string]float64{cas.TimeVar: t}
		solution := make(map[string]float64, len(tr.expressions))
		for name, v := range tr.expressions {
			f, ok, err := tr.evaluate(v, at)
			if err != nil {
				return fmt.Errorf("%s at t=%g: %w", name, t, err)
			}
			if !ok {
				return fmt.Errorf("%s at t=%g: unbound symbols in %s", name, t, v)
			}
			solution[name] = f
		}
		tr.StoreTimeResult(t, solution)
	}
	return nil
}
