package device

import "github.com/edp1096/toy-symspice/pkg/expr"

// A current source has no matrix entries; its current enters the circuit
// at Nodes[0] through the right-hand side.
func portCurrentSource(i *Component) (Port, error) {
	return Port{Form: Current, Isc: i.Source, Voc: expr.UnboundedSuper()}, nil
}
