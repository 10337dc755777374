package device

import (
	"github.com/edp1096/toy-symspice/pkg/expr"
	"github.com/edp1096/toy-symspice/pkg/matrix"
)

// stampInductor uses a branch row V1 - V2 - s*L*I = L*i0; the right-hand
// side is supplied as an excitation.
func stampInductor(l *Component, matrix matrix.DeviceMatrix, status *Status) error {
	n1, n2 := l.Nodes[0], l.Nodes[1]
	bIdx := l.Branch

	if n1 != 0 {
		matrix.AddElement(n1, bIdx, one)
		matrix.AddElement(bIdx, n1, one)
	}
	if n2 != 0 {
		matrix.AddElement(n2, bIdx, minusOne)
		matrix.AddElement(bIdx, n2, minusOne)
	}
	matrix.AddElement(bIdx, bIdx, l.impedance().Neg())

	return nil
}

// portInductor: Z = s*L, Voc = L*i0. i0 flows from n- to n+ inside the
// inductor.
func portInductor(l *Component) (Port, error) {
	p := Port{Form: General, Z: l.impedance()}
	if !l.IC.IsZero() {
		p.Voc = expr.NewTransient(l.Value.Mul(l.IC))
	}
	return p, nil
}
