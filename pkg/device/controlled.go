package device

import (
	"github.com/edp1096/toy-symspice/pkg/matrix"
)

// E: V1 - V2 - g*(Vc1 - Vc2) = 0
func stampVCVS(e *Component, matrix matrix.DeviceMatrix, status *Status) error {
	n1, n2, nc1, nc2 := e.Nodes[0], e.Nodes[1], e.Nodes[2], e.Nodes[3]
	stampBranch(matrix, n1, n2, e.Branch)
	if nc1 != 0 {
		matrix.AddElement(e.Branch, nc1, e.Value.Neg())
	}
	if nc2 != 0 {
		matrix.AddElement(e.Branch, nc2, e.Value)
	}
	return nil
}

// G: current g*(Vc1 - Vc2) flows from n1 through the element to n2.
func stampVCCS(g *Component, matrix matrix.DeviceMatrix, status *Status) error {
	n1, n2, nc1, nc2 := g.Nodes[0], g.Nodes[1], g.Nodes[2], g.Nodes[3]
	gm := g.Value
	if n1 != 0 {
		if nc1 != 0 {
			matrix.AddElement(n1, nc1, gm)
		}
		if nc2 != 0 {
			matrix.AddElement(n1, nc2, gm.Neg())
		}
	}
	if n2 != 0 {
		if nc1 != 0 {
			matrix.AddElement(n2, nc1, gm.Neg())
		}
		if nc2 != 0 {
			matrix.AddElement(n2, nc2, gm)
		}
	}
	return nil
}

// F: current g*Ictl flows from n1 through the element to n2.
func stampCCCS(f *Component, matrix matrix.DeviceMatrix, status *Status) error {
	bc, err := controlBranch(f)
	if err != nil {
		return err
	}
	if n1 := f.Nodes[0]; n1 != 0 {
		matrix.AddElement(n1, bc, f.Value)
	}
	if n2 := f.Nodes[1]; n2 != 0 {
		matrix.AddElement(n2, bc, f.Value.Neg())
	}
	return nil
}

// H: V1 - V2 - g*Ictl = 0
func stampCCVS(h *Component, matrix matrix.DeviceMatrix, status *Status) error {
	bc, err := controlBranch(h)
	if err != nil {
		return err
	}
	stampBranch(matrix, h.Nodes[0], h.Nodes[1], h.Branch)
	matrix.AddElement(h.Branch, bc, h.Value.Neg())
	return nil
}
