package device

import (
	"github.com/edp1096/toy-symspice/pkg/cas"
	"github.com/edp1096/toy-symspice/pkg/expr"
	"github.com/edp1096/toy-symspice/pkg/matrix"
)

var (
	one      = cas.Int(1)
	minusOne = cas.Int(-1)
)

// stampBranch adds the incidence of a branch current flowing from n1 to n2
// and the voltage term V1 - V2 of its constraint row.
func stampBranch(matrix matrix.DeviceMatrix, n1, n2, bIdx int) {
	if n1 != 0 {
		matrix.AddElement(bIdx, n1, one) // v1 coefficient
		matrix.AddElement(n1, bIdx, one) // n1 current
	}
	if n2 != 0 {
		matrix.AddElement(bIdx, n2, minusOne) // -v2 coefficient
		matrix.AddElement(n2, bIdx, minusOne) // n2 current
	}
}

// v1 - v2 = V
func stampVoltageSource(v *Component, matrix matrix.DeviceMatrix, status *Status) error {
	stampBranch(matrix, v.Nodes[0], v.Nodes[1], v.Branch)
	return nil
}

func portVoltageSource(v *Component) (Port, error) {
	return Port{Form: Voltage, Voc: v.Source, Isc: expr.UnboundedSuper()}, nil
}
