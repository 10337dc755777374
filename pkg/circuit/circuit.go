package circuit

import (
	"fmt"
	"log/slog"
	"sync"

	"golang.org/x/sync/singleflight"

	"github.com/edp1096/toy-symspice/internal/metrics"
	"github.com/edp1096/toy-symspice/pkg/cas"
	"github.com/edp1096/toy-symspice/pkg/device"
	"github.com/edp1096/toy-symspice/pkg/expr"
	"github.com/edp1096/toy-symspice/pkg/matrix"
	"github.com/edp1096/toy-symspice/pkg/netlist"
)

// Circuit is an immutable linear network with a lazily filled solution
// cache. It is safe for concurrent queries.
type Circuit struct {
	title       string
	devices     []*device.Component
	byName      map[string]*device.Component
	hints       map[string]string
	graph       *Graph
	numNodes    int
	unknowns    []string
	matrix      *matrix.SymbolicMatrix
	excitations []device.Excitation
	status      *device.Status

	algebra cas.Service
	logger  *slog.Logger
	metrics *metrics.Metrics

	mu     sync.RWMutex
	cache  map[string]solution
	states map[contributionKey]State
	group  singleflight.Group
}

type solution struct {
	h   []cas.Ratio // 1-based unknown vector, h[0] = 0 for ground
	err error
}

// Parse builds a circuit from netlist text.
func Parse(text string, opts ...Option) (*Circuit, error) {
	nl, err := netlist.Parse(text)
	if err != nil {
		return nil, err
	}
	return New(nl, opts...)
}

func New(nl *netlist.Netlist, opts ...Option) (*Circuit, error) {
	c := &Circuit{
		title:   nl.Title,
		byName:  make(map[string]*device.Component),
		hints:   make(map[string]string),
		status:  &device.Status{},
		algebra: cas.Engine{},
		logger:  discardLogger(),
		cache:   make(map[string]solution),
		states:  make(map[contributionKey]State),
	}
	for _, opt := range opts {
		opt(c)
	}

	for _, comp := range nl.Components {
		dev, err := comp.Device()
		if err != nil {
			return nil, fmt.Errorf("creating device %s: %w", comp.Name, err)
		}
		c.devices = append(c.devices, dev)
		c.byName[dev.Name] = dev
		c.hints[dev.Name] = comp.HintText
	}

	if err := c.assignNodeBranchMaps(); err != nil {
		return nil, err
	}
	if err := c.setupDevices(); err != nil {
		return nil, err
	}

	c.logger.Debug("circuit built",
		"title", c.title,
		"nodes", c.numNodes,
		"unknowns", len(c.unknowns),
		"sources", len(c.excitations),
		"floating", c.graph.Floating())
	return c, nil
}

func (c *Circuit) assignNodeBranchMaps() error {
	g, err := newGraph(c.devices)
	if err != nil {
		return err
	}
	c.graph = g
	c.numNodes = len(g.names) - 1

	for _, name := range g.Nodes() {
		c.unknowns = append(c.unknowns, "V("+name+")")
	}
	branch := c.numNodes + 1
	for _, dev := range c.devices {
		for i, n := range dev.NodeNames {
			dev.Nodes[i] = g.index[n]
		}
		if dev.Kind.HasBranch() {
			dev.Branch = branch
			branch++
			c.unknowns = append(c.unknowns, "I("+dev.Name+")")
		}
	}

	for _, dev := range c.devices {
		if dev.Kind == device.Mutual {
			if err := c.couple(dev); err != nil {
				return err
			}
			continue
		}
		if !dev.Kind.Controlled() {
			continue
		}
		ctl, ok := c.byName[dev.Control]
		if !ok || !ctl.Kind.HasBranch() {
			return fmt.Errorf("%s %s: %w %q", dev.Kind, dev.Name, device.ErrUnknownControl, dev.Control)
		}
		dev.ControlBranch = ctl.Branch
	}
	return nil
}

// couple resolves the two inductors named by a mutual inductance.
func (c *Circuit) couple(k *device.Component) error {
	if len(k.Coupled) != 2 || k.Coupled[0] == k.Coupled[1] {
		return fmt.Errorf("%s %s: %w %v", k.Kind, k.Name, device.ErrUnknownControl, k.Coupled)
	}
	k.Inductors = make([]*device.Component, 2)
	for i, name := range k.Coupled {
		l, ok := c.byName[name]
		if !ok || l.Kind != device.Inductor {
			return fmt.Errorf("%s %s: %w %q is not an inductor", k.Kind, k.Name, device.ErrUnknownControl, name)
		}
		k.Inductors[i] = l
	}
	return nil
}

func (c *Circuit) setupDevices() error {
	c.matrix = matrix.NewSymbolic(len(c.unknowns))
	for _, dev := range c.devices {
		if err := dev.Stamp(c.matrix, c.status); err != nil {
			return fmt.Errorf("stamping device %s: %w", dev.Name, err)
		}
		for _, exc := range dev.Excitations(c.status) {
			if exc.Value.IsZero() {
				continue
			}
			c.excitations = append(c.excitations, exc)
			for _, key := range exc.Value.Keys() {
				c.states[contributionKey{exc.Source, key}] = Classified
			}
		}
	}
	return nil
}

func (c *Circuit) Title() string { return c.title }

func (c *Circuit) Graph() *Graph { return c.graph }

// Nodes lists the non-ground node names.
func (c *Circuit) Nodes() []string { return c.graph.Nodes() }

// Sources lists the independent sources in netlist order, including
// initial conditions and noise generators.
func (c *Circuit) Sources() []string {
	out := make([]string, len(c.excitations))
	for i, exc := range c.excitations {
		out[i] = exc.Source
	}
	return out
}

func (c *Circuit) device(name string) (*device.Component, error) {
	dev, ok := c.byName[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownComponent, name)
	}
	return dev, nil
}

// A returns the MNA matrix in the Laplace domain, 0-based.
func (c *Circuit) A() [][]cas.Ratio { return c.matrix.Rows() }

// Z returns the right-hand side: every source value on its rows.
func (c *Circuit) Z() []expr.Super {
	z := make([]expr.Super, len(c.unknowns))
	for _, exc := range c.excitations {
		for _, e := range exc.Rows {
			z[e.Row-1] = z[e.Row-1].Add(exc.Value.Scale(e.Coef))
		}
	}
	return z
}

// X names the unknowns: node voltages then branch currents.
func (c *Circuit) X() []string { return append([]string(nil), c.unknowns...) }

// Equations prints the MNA system one row per line.
func (c *Circuit) Equations() string { return c.matrix.Format(c.unknowns) }

// Placement is what a renderer needs to draw one component.
type Placement struct {
	Name  string
	Kind  device.Kind
	Nodes []string
	Hints string
}

// Layout lists components with their node names and verbatim hints.
func (c *Circuit) Layout() []Placement {
	out := make([]Placement, len(c.devices))
	for i, dev := range c.devices {
		out[i] = Placement{
			Name:  dev.Name,
			Kind:  dev.Kind,
			Nodes: append([]string(nil), dev.NodeNames...),
			Hints: c.hints[dev.Name],
		}
	}
	return out
}
