package circuit

import (
	"fmt"

	"github.com/edp1096/toy-symspice/pkg/cas"
	"github.com/edp1096/toy-symspice/pkg/device"
	"github.com/edp1096/toy-symspice/pkg/expr"
	"github.com/edp1096/toy-symspice/pkg/matrix"
)

// V is the voltage of node with respect to ground.
func (c *Circuit) V(node string) (expr.Super, error) { return c.Voltage(node, "0") }

// Voltage is the voltage of plus with respect to minus.
func (c *Circuit) Voltage(plus, minus string) (expr.Super, error) {
	return c.VoltageOf("", plus, minus)
}

// VoltageOf is Voltage restricted to one contribution key (dc, ac:<w>, s
// or n). An empty key sums every contribution.
func (c *Circuit) VoltageOf(key, plus, minus string) (expr.Super, error) {
	a, err := c.graph.Node(plus)
	if err != nil {
		return expr.Super{}, err
	}
	b, err := c.graph.Node(minus)
	if err != nil {
		return expr.Super{}, err
	}
	return c.compose(key, func(h device.Transfer, _ string) (cas.Ratio, error) {
		return h(a).Sub(h(b)), nil
	})
}

// Vbranch is the voltage across a component, first node minus second.
func (c *Circuit) Vbranch(name string) (expr.Super, error) {
	dev, err := c.device(name)
	if err != nil {
		return expr.Super{}, err
	}
	if dev.Kind.Nodes() != 2 {
		return expr.Super{}, fmt.Errorf("%s %s: %w", dev.Kind, dev.Name, device.ErrNotOnePort)
	}
	return c.compose("", func(h device.Transfer, _ string) (cas.Ratio, error) {
		return h(dev.Nodes[0]).Sub(h(dev.Nodes[1])), nil
	})
}

// I is the current through a component from its first node to its second.
func (c *Circuit) I(name string) (expr.Super, error) { return c.CurrentOf("", name) }

// CurrentOf is I restricted to one contribution key.
func (c *Circuit) CurrentOf(key, name string) (expr.Super, error) {
	dev, err := c.device(name)
	if err != nil {
		return expr.Super{}, err
	}
	if _, err := dev.CurrentTransfer(lookup(nil), ""); err != nil {
		return expr.Super{}, err
	}
	return c.compose(key, dev.CurrentTransfer)
}

func (c *Circuit) excitation(source string) (device.Excitation, error) {
	for _, exc := range c.excitations {
		if exc.Source == source {
			return exc, nil
		}
	}
	return device.Excitation{}, fmt.Errorf("%w: %s is not an independent source", ErrUnknownComponent, source)
}

// Transfer is the Laplace transfer function from a unit excitation of
// source to the voltage of plus with respect to minus.
func (c *Circuit) Transfer(source, plus, minus string) (expr.Value, error) {
	exc, err := c.excitation(source)
	if err != nil {
		return expr.Value{}, err
	}
	a, err := c.graph.Node(plus)
	if err != nil {
		return expr.Value{}, err
	}
	b, err := c.graph.Node(minus)
	if err != nil {
		return expr.Value{}, err
	}
	h, err := c.transfer(exc)
	if err != nil {
		return expr.Value{}, err
	}
	return expr.LaplaceOf(h(a).Sub(h(b))), nil
}

// Impedance is the driving-point impedance between plus and minus with
// every independent source set to zero.
func (c *Circuit) Impedance(plus, minus string) (expr.Value, error) {
	a, err := c.graph.Node(plus)
	if err != nil {
		return expr.Value{}, err
	}
	b, err := c.graph.Node(minus)
	if err != nil {
		return expr.Value{}, err
	}
	if a == b {
		return expr.Const(cas.Ratio{}), nil
	}
	var rows []device.Entry
	if a != 0 {
		rows = append(rows, device.Entry{Row: a, Coef: cas.Int(1)})
	}
	if b != 0 {
		rows = append(rows, device.Entry{Row: b, Coef: cas.Int(-1)})
	}
	label := fmt.Sprintf("Z(%s,%s)", plus, minus)
	h, err := c.cached(fmt.Sprintf("z:%d,%d", a, b), label, rows)
	if err != nil {
		return expr.Value{}, fmt.Errorf("%s: %w", label, err)
	}
	t := lookup(h)
	return expr.LaplaceOf(t(a).Sub(t(b))), nil
}

// Snapshot holds node voltages and component currents for one
// contribution key.
type Snapshot struct {
	Key      string
	Voltages map[string]expr.Super
	Currents map[string]expr.Super
}

// Snapshot evaluates every node voltage and component current for the
// contribution named by key (dc, ac:<w>, s or n) alone.
func (c *Circuit) Snapshot(key string) (Snapshot, error) {
	snap := Snapshot{
		Key:      key,
		Voltages: make(map[string]expr.Super),
		Currents: make(map[string]expr.Super),
	}
	for _, n := range c.Nodes() {
		v, err := c.VoltageOf(key, n, "0")
		if err != nil {
			return Snapshot{}, err
		}
		snap.Voltages[n] = v
	}
	for _, dev := range c.devices {
		if !dev.Kind.HasCurrent() {
			continue
		}
		i, err := c.CurrentOf(key, dev.Name)
		if err != nil {
			return Snapshot{}, err
		}
		snap.Currents[dev.Name] = i
	}
	return snap, nil
}

// EvaluateAt solves the circuit numerically at complex frequency s for a
// unit excitation of source, with every symbol bound by env. The result
// is keyed by the names returned from X.
func (c *Circuit) EvaluateAt(source string, s complex128, env map[string]complex128) (map[string]complex128, error) {
	exc, err := c.excitation(source)
	if err != nil {
		return nil, err
	}
	if floating := c.graph.Floating(); len(floating) > 0 {
		return nil, fmt.Errorf("%w: floating nodes %v", ErrSingularCircuit, floating)
	}

	m, err := matrix.NewMatrix(len(c.unknowns))
	if err != nil {
		return nil, err
	}
	defer m.Destroy()

	if err := m.Load(c.matrix, s, env); err != nil {
		return nil, err
	}
	for _, e := range exc.Rows {
		v, err := e.Coef.EvalComplex(env)
		if err != nil {
			return nil, err
		}
		if err := m.AddComplexRHS(e.Row, real(v), imag(v)); err != nil {
			return nil, err
		}
	}
	if err := m.Solve(); err != nil {
		return nil, classify(err)
	}

	out := make(map[string]complex128, len(c.unknowns))
	for i, name := range c.unknowns {
		out[name] = m.Solution(i + 1)
	}
	return out, nil
}
