package device

import (
	"errors"
	"fmt"

	"github.com/edp1096/toy-symspice/pkg/cas"
	"github.com/edp1096/toy-symspice/pkg/expr"
	"github.com/edp1096/toy-symspice/pkg/matrix"
)

var (
	ErrInvalidComponentValue = errors.New("invalid component value")
	ErrNotOnePort            = errors.New("component is not a one-port")
	ErrUnknownControl        = errors.New("unknown controlling component")
)

type Kind int

const (
	Resistor Kind = iota
	Inductor
	Capacitor
	Conductance
	Impedance
	Admittance
	VoltageSource
	CurrentSource
	VCVS // E
	CCCS // F
	VCCS // G with four nodes
	CCVS // H
	Wire
	Open
	Mutual // K, couples two inductors
)

// Form tells how a two-terminal element is seen from its port.
type Form int

const (
	General Form = iota
	Voltage      // ideal voltage source, Z = 0
	Current      // ideal current source, Y = 0
)

type stampFunc func(c *Component, m matrix.DeviceMatrix, st *Status) error

type kindInfo struct {
	prefix string
	name   string
	nodes  int
	branch bool // needs a current unknown
	stamp  stampFunc
	port   func(c *Component) (Port, error)
}

var kinds = [...]kindInfo{
	Resistor:      {"R", "resistor", 2, false, stampAdmittance, portResistor},
	Inductor:      {"L", "inductor", 2, true, stampInductor, portInductor},
	Capacitor:     {"C", "capacitor", 2, false, stampAdmittance, portCapacitor},
	Conductance:   {"G", "conductance", 2, false, stampAdmittance, portResistor},
	Impedance:     {"Z", "impedance", 2, false, stampAdmittance, portResistor},
	Admittance:    {"Y", "admittance", 2, false, stampAdmittance, portResistor},
	VoltageSource: {"V", "voltage source", 2, true, stampVoltageSource, portVoltageSource},
	CurrentSource: {"I", "current source", 2, false, stampNothing, portCurrentSource},
	VCVS:          {"E", "vcvs", 4, true, stampVCVS, nil},
	CCCS:          {"F", "cccs", 2, false, stampCCCS, nil},
	VCCS:          {"G", "vccs", 4, false, stampVCCS, nil},
	CCVS:          {"H", "ccvs", 2, true, stampCCVS, nil},
	Wire:          {"W", "wire", 2, false, stampNothing, portWire},
	Open:          {"O", "open", 2, false, stampNothing, portOpen},
	Mutual:        {"K", "mutual inductance", 0, false, stampMutual, nil},
}

// KindOf maps a netlist name prefix to a kind. G is resolved to VCCS by
// the caller when four nodes are given.
func KindOf(prefix byte) (Kind, bool) {
	for k, info := range kinds {
		if info.prefix[0] == prefix && Kind(k) != VCCS {
			return Kind(k), true
		}
	}
	return 0, false
}

func (k Kind) Prefix() string { return kinds[k].prefix }
func (k Kind) String() string { return kinds[k].name }
func (k Kind) Nodes() int     { return kinds[k].nodes }

// HasBranch reports whether the kind adds a branch-current unknown.
func (k Kind) HasBranch() bool { return kinds[k].branch }

// Controlled reports whether the kind refers to a controlling component.
func (k Kind) Controlled() bool { return k == CCCS || k == CCVS }

// HasCurrent reports whether I(name) is a meaningful query for the kind.
func (k Kind) HasCurrent() bool { return k != Wire && k != Mutual }

// Component is one netlist element. Nodes and Branch are 1-based MNA
// indices assigned by the circuit; node 0 is ground.
type Component struct {
	Name      string
	Kind      Kind
	NodeNames []string
	Nodes     []int
	Branch    int

	Value   cas.Ratio  // element value or controlled-source gain
	IC      cas.Ratio  // C: v0, L: i0
	Source  expr.Super // V, I
	Control string     // F, H
	Coupled []string   // K: the two coupled inductors

	// ControlBranch is the branch index of Control, resolved by the circuit.
	ControlBranch int
	// Inductors are the components named by Coupled, resolved by the circuit.
	Inductors []*Component
}

// Status carries circuit-wide settings needed while stamping.
type Status struct {
	// NoiseTemp enables resistor thermal noise at this absolute temperature.
	NoiseTemp cas.Ratio
}

// New builds a component after checking its value against the kind.
func New(name string, kind Kind, nodeNames []string, value cas.Ratio) (*Component, error) {
	c := &Component{
		Name:      name,
		Kind:      kind,
		NodeNames: nodeNames,
		Nodes:     make([]int, len(nodeNames)),
		Value:     value,
	}
	if len(nodeNames) != kind.Nodes() {
		return nil, fmt.Errorf("%s %s: requires exactly %d nodes", kind, name, kind.Nodes())
	}
	switch kind {
	case Resistor, Inductor, Capacitor, Conductance, Impedance, Admittance:
		if value.IsZero() {
			return nil, fmt.Errorf("%s %s: %w: zero value", kind, name, ErrInvalidComponentValue)
		}
	}
	return c, nil
}

func (c *Component) Stamp(m matrix.DeviceMatrix, st *Status) error {
	return kinds[c.Kind].stamp(c, m, st)
}

// Port returns the element's terminal behaviour in the Laplace domain.
func (c *Component) Port() (Port, error) {
	fn := kinds[c.Kind].port
	if fn == nil {
		return Port{}, fmt.Errorf("%s %s: %w", c.Kind, c.Name, ErrNotOnePort)
	}
	return fn(c)
}

func (c *Component) String() string {
	return fmt.Sprintf("%s %v %s", c.Name, c.NodeNames, c.Value)
}

// Port is the Thevenin/Norton description of a two-terminal element. Z and
// Voc are meaningful for General and Voltage forms, Isc for Current.
type Port struct {
	Form Form
	Z    cas.Ratio
	Voc  expr.Super
	Isc  expr.Super
}

// Entry is one nonzero of an excitation column.
type Entry struct {
	Row  int
	Coef cas.Ratio
}

// Excitation is an independent source seen by the solver: a unit right-hand
// side column scaled by Value.
type Excitation struct {
	Source string
	Rows   []Entry
	Value  expr.Super
}

// Excitations lists the independent sources carried by c.
func (c *Component) Excitations(st *Status) []Excitation {
	switch c.Kind {
	case VoltageSource:
		return []Excitation{{Source: c.Name, Rows: branchRow(c.Branch), Value: c.Source}}
	case CurrentSource:
		return c.injection(c.Source)
	case Capacitor:
		if !c.IC.IsZero() {
			return c.injection(expr.NewTransient(c.Value.Mul(c.IC)))
		}
	case Inductor:
		if !c.IC.IsZero() {
			return []Excitation{{Source: c.Name, Rows: branchRow(c.Branch), Value: expr.NewTransient(c.Value.Mul(c.IC))}}
		}
	case Mutual:
		return c.mutualExcitations()
	case Resistor, Conductance:
		if st != nil && !st.NoiseTemp.IsZero() {
			return c.injection(expr.NewNoise(thermalNoise(st.NoiseTemp, c.admittance())))
		}
	}
	return nil
}

func branchRow(b int) []Entry { return []Entry{{Row: b, Coef: cas.Int(1)}} }

// injection drives a current into Nodes[0] and out of Nodes[1].
func (c *Component) injection(v expr.Super) []Excitation {
	var rows []Entry
	if n := c.Nodes[0]; n != 0 {
		rows = append(rows, Entry{Row: n, Coef: cas.Int(1)})
	}
	if n := c.Nodes[1]; n != 0 {
		rows = append(rows, Entry{Row: n, Coef: cas.Int(-1)})
	}
	return []Excitation{{Source: c.Name, Rows: rows, Value: v}}
}

// Transfer gives the unit response of an MNA unknown; index 0 is ground.
type Transfer func(idx int) cas.Ratio

// CurrentTransfer returns the current through c, from Nodes[0] to Nodes[1],
// for a unit excitation of source. The excitation carried by c itself counts
// as part of the element.
func (c *Component) CurrentTransfer(h Transfer, source string) (cas.Ratio, error) {
	own := c.Name == source
	dv := func(a, b int) cas.Ratio { return h(a).Sub(h(b)) }
	switch c.Kind {
	case Resistor, Conductance, Impedance, Admittance, Capacitor:
		i := c.admittance().Mul(dv(c.Nodes[0], c.Nodes[1]))
		if own {
			i = i.Sub(cas.Int(1))
		}
		return i, nil
	case Inductor, VoltageSource, VCVS, CCVS:
		return h(c.Branch), nil
	case CurrentSource:
		if own {
			return cas.Int(-1), nil
		}
		return cas.Ratio{}, nil
	case CCCS:
		return c.Value.Mul(h(c.ControlBranch)), nil
	case VCCS:
		return c.Value.Mul(dv(c.Nodes[2], c.Nodes[3])), nil
	case Open:
		return cas.Ratio{}, nil
	}
	return cas.Ratio{}, fmt.Errorf("%s %s: branch current is not defined", c.Kind, c.Name)
}

func stampNothing(*Component, matrix.DeviceMatrix, *Status) error { return nil }

func controlBranch(c *Component) (int, error) {
	if c.ControlBranch == 0 {
		return 0, fmt.Errorf("%s %s: %w %q", c.Kind, c.Name, ErrUnknownControl, c.Control)
	}
	return c.ControlBranch, nil
}
