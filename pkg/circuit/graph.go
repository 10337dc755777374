package circuit

import (
	"fmt"
	"slices"
	"strings"

	"gonum.org/v1/gonum/graph"
	"gonum.org/v1/gonum/graph/simple"
	"gonum.org/v1/gonum/graph/topo"

	"github.com/edp1096/toy-symspice/pkg/device"
)

func isGround(name string) bool { return name == "0" || strings.EqualFold(name, "gnd") }

// Graph is the node set of a circuit. Wires merge their end nodes; a group
// containing ground is ground. Index 0 is ground.
type Graph struct {
	names    []string       // index -> node name, names[0] = "0"
	index    map[string]int // every node name -> index
	floating []string
}

// link adds an undirected edge, skipping self loops which simple graphs reject.
func link(g *simple.UndirectedGraph, a, b int64) {
	if a != b {
		g.SetEdge(g.NewEdge(simple.Node(a), simple.Node(b)))
	}
}

// components maps every node id of g to the smallest id in its component.
func components(g graph.Undirected) map[int64]int64 {
	rep := map[int64]int64{}
	for _, cc := range topo.ConnectedComponents(g) {
		low := cc[0].ID()
		for _, n := range cc[1:] {
			low = min(low, n.ID())
		}
		for _, n := range cc {
			rep[n.ID()] = low
		}
	}
	return rep
}

func newGraph(comps []*device.Component) (*Graph, error) {
	// Node ids follow first appearance in the netlist.
	ids := map[string]int64{}
	var order []string
	ground := int64(-1)
	wires := simple.NewUndirectedGraph()
	for _, c := range comps {
		for _, n := range c.NodeNames {
			if _, ok := ids[n]; ok {
				continue
			}
			id := int64(len(order))
			ids[n] = id
			order = append(order, n)
			wires.AddNode(simple.Node(id))
			if isGround(n) {
				if ground < 0 {
					ground = id
				}
				link(wires, ground, id)
			}
		}
	}
	if ground < 0 {
		return nil, ErrNoGround
	}
	for _, c := range comps {
		if c.Kind == device.Wire {
			link(wires, ids[c.NodeNames[0]], ids[c.NodeNames[1]])
		}
	}

	rep := components(wires)
	g := &Graph{names: []string{"0"}, index: map[string]int{}}
	groupIndex := map[int64]int{rep[ground]: 0}
	for _, n := range order {
		root := rep[ids[n]]
		idx, ok := groupIndex[root]
		if !ok {
			idx = len(g.names)
			groupIndex[root] = idx
			g.names = append(g.names, n)
		}
		g.index[n] = idx
	}
	g.floating = g.findFloating(comps)
	return g, nil
}

// conducts lists the node positions of c that carry its branch current.
func conducts(c *device.Component) []int {
	switch c.Kind {
	case device.CurrentSource, device.CCCS, device.VCCS, device.Open, device.Mutual:
		return nil
	}
	return []int{0, 1}
}

// findFloating returns the nodes with no conducting path to ground.
func (g *Graph) findFloating(comps []*device.Component) []string {
	paths := simple.NewUndirectedGraph()
	for i := range g.names {
		paths.AddNode(simple.Node(int64(i)))
	}
	for _, c := range comps {
		if p := conducts(c); p != nil {
			link(paths, int64(g.index[c.NodeNames[p[0]]]), int64(g.index[c.NodeNames[p[1]]]))
		}
	}
	rep := components(paths)
	var idx []int
	for id, root := range rep {
		if root != 0 {
			idx = append(idx, int(id))
		}
	}
	slices.Sort(idx)
	out := make([]string, 0, len(idx))
	for _, i := range idx {
		out = append(out, g.names[i])
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

// Node returns the index of a node name or alias.
func (g *Graph) Node(name string) (int, error) {
	if isGround(name) {
		return 0, nil
	}
	idx, ok := g.index[name]
	if !ok {
		return 0, fmt.Errorf("%w: %s", ErrUnknownNode, name)
	}
	return idx, nil
}

// Nodes lists the non-ground node names in index order.
func (g *Graph) Nodes() []string { return append([]string(nil), g.names[1:]...) }

func (g *Graph) Floating() []string { return g.floating }
