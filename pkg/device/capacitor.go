package device

import (
	"github.com/edp1096/toy-symspice/pkg/cas"
	"github.com/edp1096/toy-symspice/pkg/expr"
)

// portCapacitor: Z = 1/(sC), Voc = v0/s.
func portCapacitor(c *Component) (Port, error) {
	p := Port{Form: General, Z: c.impedance()}
	if !c.IC.IsZero() {
		v, _ := c.IC.Div(cas.Sym(cas.LaplaceVar))
		p.Voc = expr.NewTransient(v)
	}
	return p, nil
}
