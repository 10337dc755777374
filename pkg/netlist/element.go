package netlist

import (
	"fmt"
	"strings"

	"github.com/edp1096/toy-symspice/pkg/cas"
	"github.com/edp1096/toy-symspice/pkg/device"
	"github.com/edp1096/toy-symspice/pkg/signal"
)

// arity is the allowed number of tokens after the name: nodes plus optional
// trailing fields.
type arity struct{ min, max int }

var arities = map[device.Kind]arity{
	device.Resistor:      {2, 3},
	device.Impedance:     {2, 3},
	device.Admittance:    {2, 3},
	device.Conductance:   {2, 3},
	device.Inductor:      {2, 4},
	device.Capacitor:     {2, 4},
	device.VoltageSource: {2, -1},
	device.CurrentSource: {2, -1},
	device.VCVS:          {4, 5},
	device.VCCS:          {4, 5},
	device.CCCS:          {3, 4},
	device.CCVS:          {3, 4},
	device.Wire:          {2, 2},
	device.Open:          {2, 2},
	device.Mutual:        {2, 3},
}

// Parse circuit element
func parseElement(fields []string) (*Component, error) {
	name := fields[0]
	kind, ok := device.KindOf(strings.ToUpper(name[:1])[0])
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownComponentKind, name[:1])
	}
	args := fields[1:]
	if kind == device.Conductance && len(args) >= 4 {
		kind = device.VCCS
	}

	a := arities[kind]
	if len(args) < a.min || (a.max >= 0 && len(args) > a.max) {
		return nil, malformed("%s %s takes %s", kind, name, usage(kind))
	}

	elem := &Component{
		Name:  name,
		Kind:  kind,
		Nodes: args[:kind.Nodes()],
		Value: cas.Sym(name),
	}
	rest := args[kind.Nodes():]

	switch kind {
	case device.VoltageSource, device.CurrentSource:
		if len(rest) == 0 {
			rest = []string{name}
		}
		src, err := signal.Parse(rest)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrMalformedNetlistLine, err)
		}
		elem.Source = src
		return elem, nil

	case device.CCCS, device.CCVS:
		elem.Control, rest = rest[0], rest[1:]

	case device.Mutual:
		elem.Coupled, rest = []string{rest[0], rest[1]}, rest[2:]

	case device.Inductor, device.Capacitor:
		if len(rest) == 2 {
			ic, err := parseValue(rest[1])
			if err != nil {
				return nil, err
			}
			elem.IC, rest = ic, rest[:1]
		}
	}

	if len(rest) == 1 {
		v, err := parseValue(rest[0])
		if err != nil {
			return nil, err
		}
		elem.Value = v
	}
	return elem, nil
}

func parseValue(tok string) (cas.Ratio, error) {
	tok = strings.TrimSuffix(strings.TrimPrefix(tok, "{"), "}")
	v, err := cas.ParseRatio(tok)
	if err != nil {
		return cas.Ratio{}, fmt.Errorf("%w: value %q: %w", ErrMalformedNetlistLine, tok, err)
	}
	if v.Has(cas.TimeVar) {
		return cas.Ratio{}, malformed("value %q depends on t", tok)
	}
	return v, nil
}

func usage(kind device.Kind) string {
	switch kind {
	case device.Inductor, device.Capacitor:
		return "n+ n- [value [ic]]"
	case device.VoltageSource, device.CurrentSource:
		return "n+ n- [waveform]"
	case device.VCVS, device.VCCS:
		return "n+ n- nc+ nc- [gain]"
	case device.CCCS, device.CCVS:
		return "n+ n- Vctl [gain]"
	case device.Wire, device.Open:
		return "n+ n-"
	case device.Mutual:
		return "L1 L2 [M]"
	}
	return "n+ n- [value]"
}
