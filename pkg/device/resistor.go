package device

import (
	"strconv"

	"github.com/edp1096/toy-symspice/internal/consts"
	"github.com/edp1096/toy-symspice/pkg/cas"
	"github.com/edp1096/toy-symspice/pkg/expr"
	"github.com/edp1096/toy-symspice/pkg/matrix"
)

// admittance of the passive two-terminal kinds.
func (c *Component) admittance() cas.Ratio {
	switch c.Kind {
	case Conductance, Admittance:
		return c.Value
	case Capacitor:
		return c.Value.Mul(cas.Sym(cas.LaplaceVar))
	}
	y, _ := c.Value.Inv()
	return y
}

// impedance is 1/admittance; zero for an ideal short.
func (c *Component) impedance() cas.Ratio {
	switch c.Kind {
	case Resistor, Impedance:
		return c.Value
	case Inductor:
		return c.Value.Mul(cas.Sym(cas.LaplaceVar))
	}
	z, _ := c.admittance().Inv()
	return z
}

func stampAdmittance(c *Component, matrix matrix.DeviceMatrix, status *Status) error {
	n1, n2 := c.Nodes[0], c.Nodes[1]
	g := c.admittance()

	if n1 != 0 {
		matrix.AddElement(n1, n1, g)
		if n2 != 0 {
			matrix.AddElement(n1, n2, g.Neg())
		}
	}
	if n2 != 0 {
		if n1 != 0 {
			matrix.AddElement(n2, n1, g.Neg())
		}
		matrix.AddElement(n2, n2, g)
	}

	return nil
}

func portResistor(c *Component) (Port, error) {
	return Port{Form: General, Z: c.impedance()}, nil
}

var boltzmann = func() cas.Ratio {
	k, err := cas.ParseRatio(strconv.FormatFloat(consts.BOLTZMANN, 'g', -1, 64))
	if err != nil {
		panic(err)
	}
	return k
}()

// thermalNoise is the one-sided Norton current PSD 4kT*G of a conductance.
func thermalNoise(temp, g cas.Ratio) cas.Ratio {
	return boltzmann.Mul(temp).Mul(g).Mul(cas.Int(4))
}

// ThermalNoiseVoltage is the one-sided Thevenin voltage PSD 4kTR.
func ThermalNoiseVoltage(temp, r cas.Ratio) expr.Super {
	return expr.NewNoise(boltzmann.Mul(temp).Mul(r).Mul(cas.Int(4)))
}
