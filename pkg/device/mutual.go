package device

import (
	"fmt"

	"github.com/edp1096/toy-symspice/pkg/cas"
	"github.com/edp1096/toy-symspice/pkg/expr"
	"github.com/edp1096/toy-symspice/pkg/matrix"
)

// Mutual inductance M couples two inductor branch rows:
//
//	V1 - s*L1*I1 - s*M*I2 = L1*i10 + M*i20
//	V2 - s*L2*I2 - s*M*I1 = L2*i20 + M*i10
//
// The value is M itself, so no square root of L1*L2 is needed.

func (m *Component) coupled() (*Component, *Component, error) {
	if len(m.Inductors) != 2 || m.Inductors[0] == nil || m.Inductors[1] == nil {
		return nil, nil, fmt.Errorf("%s %s: %w %v", m.Kind, m.Name, ErrUnknownControl, m.Coupled)
	}
	return m.Inductors[0], m.Inductors[1], nil
}

func stampMutual(m *Component, matrix matrix.DeviceMatrix, status *Status) error {
	l1, l2, err := m.coupled()
	if err != nil {
		return err
	}
	sm := m.Value.Mul(cas.Sym(cas.LaplaceVar)).Neg()
	matrix.AddElement(l1.Branch, l2.Branch, sm)
	matrix.AddElement(l2.Branch, l1.Branch, sm)
	return nil
}

// mutualExcitations carries the M*i0 terms of initial inductor currents.
func (m *Component) mutualExcitations() []Excitation {
	l1, l2, err := m.coupled()
	if err != nil || (l1.IC.IsZero() && l2.IC.IsZero()) {
		return nil
	}
	var rows []Entry
	if !l2.IC.IsZero() {
		rows = append(rows, Entry{Row: l1.Branch, Coef: l2.IC})
	}
	if !l1.IC.IsZero() {
		rows = append(rows, Entry{Row: l2.Branch, Coef: l1.IC})
	}
	return []Excitation{{Source: m.Name, Rows: rows, Value: expr.NewTransient(m.Value)}}
}
