package analysis

import (
	"fmt"
	"math"

	"github.com/edp1096/toy-symspice/pkg/circuit"
)

// ACAnalysis sweeps the numeric response of every unknown to a unit
// excitation of one independent source.
type ACAnalysis struct {
	BaseAnalysis
	source      string
	startFreq   float64
	stopFreq    float64
	numPoints   int
	pointsType  string // "DEC", "OCT", "LIN"
	frequencies []float64
}

// NewAC sweeps from fStart to fStop in hertz. An empty source selects the
// first independent source of the circuit.
func NewAC(source string, fStart, fStop float64, nPoints int, pType string, env map[string]float64) *ACAnalysis {
	return &ACAnalysis{
		BaseAnalysis: *NewBaseAnalysis(env),
		source:       source,
		startFreq:    fStart,
		stopFreq:     fStop,
		numPoints:    nPoints,
		pointsType:   pType,
	}
}

func (ac *ACAnalysis) Setup(ckt *circuit.Circuit) error {
	ac.Circuit = ckt
	if ac.source == "" {
		sources := ckt.Sources()
		if len(sources) == 0 {
			return fmt.Errorf("ac analysis: circuit has no independent source")
		}
		ac.source = sources[0]
	}
	if ac.numPoints < 1 || ac.startFreq <= 0 || ac.stopFreq < ac.startFreq {
		return fmt.Errorf("ac analysis: bad sweep %d points from %g to %g", ac.numPoints, ac.startFreq, ac.stopFreq)
	}
	return ac.generateFrequencyPoints()
}

func (ac *ACAnalysis) Execute() error {
	if ac.Circuit == nil {
		return ErrCircuitNotSet
	}

	env := ac.env(nil)
	for _, freq := range ac.frequencies {
		solution, err := ac.Circuit.EvaluateAt(ac.source, complex(0, 2*math.Pi*freq), env)
		if err != nil {
			return fmt.Errorf("solve at f=%g: %w", freq, err)
		}
		ac.StoreACResult(freq, solution)
	}
	return nil
}

func (ac *ACAnalysis) generateFrequencyPoints() error {
	ac.frequencies = make([]float64, ac.numPoints)
	if ac.numPoints == 1 {
		ac.frequencies[0] = ac.startFreq
		return nil
	}

	switch ac.pointsType {
	case "DEC": // Decade
		logStart := math.Log10(ac.startFreq)
		logStop := math.Log10(ac.stopFreq)
		step := (logStop - logStart) / float64(ac.numPoints-1)
		for i := range ac.numPoints {
			ac.frequencies[i] = math.Pow(10, logStart+float64(i)*step)
		}

	case "OCT": // Octave
		logStart := math.Log2(ac.startFreq)
		logStop := math.Log2(ac.stopFreq)
		step := (logStop - logStart) / float64(ac.numPoints-1)
		for i := range ac.numPoints {
			ac.frequencies[i] = math.Pow(2, logStart+float64(i)*step)
		}

	case "LIN": // Linear
		step := (ac.stopFreq - ac.startFreq) / float64(ac.numPoints-1)
		for i := range ac.numPoints {
			ac.frequencies[i] = ac.startFreq + float64(i)*step
		}

	default:
		return fmt.Errorf("ac analysis: unknown sweep type %q", ac.pointsType)
	}
	return nil
}
