package device

import "github.com/edp1096/toy-symspice/pkg/expr"

// Wires are merged into a single node by the circuit before stamping.
func portWire(*Component) (Port, error) {
	return Port{Form: Voltage, Isc: expr.UnboundedSuper()}, nil
}

func portOpen(*Component) (Port, error) {
	return Port{Form: Current, Voc: expr.UnboundedSuper()}, nil
}
