package matrix

import (
	"errors"
	"fmt"
	"strings"

	"github.com/edp1096/toy-symspice/pkg/cas"
)

var ErrSingularMatrix = errors.New("singular matrix")

// SymbolicMatrix is the MNA matrix with rational-function entries in s.
type SymbolicMatrix struct {
	Size int
	a    [][]cas.Ratio // 1-based, row and column 0 unused
}

var _ DeviceMatrix = (*SymbolicMatrix)(nil)

func NewSymbolic(size int) *SymbolicMatrix {
	a := make([][]cas.Ratio, size+1)
	for i := range a {
		a[i] = make([]cas.Ratio, size+1)
	}
	return &SymbolicMatrix{Size: size, a: a}
}

func (m *SymbolicMatrix) AddElement(i, j int, value cas.Ratio) {
	if i <= 0 || j <= 0 || i > m.Size || j > m.Size {
		return
	}
	m.a[i][j] = m.a[i][j].Add(value)
}

func (m *SymbolicMatrix) Element(i, j int) cas.Ratio { return m.a[i][j] }

// Rows returns a 0-based copy of the matrix.
func (m *SymbolicMatrix) Rows() [][]cas.Ratio {
	out := make([][]cas.Ratio, m.Size)
	for i := range out {
		out[i] = append([]cas.Ratio(nil), m.a[i+1][1:]...)
	}
	return out
}

// Solve returns X with A*X = B for 0-based right-hand side columns.
func (m *SymbolicMatrix) Solve(svc cas.Service, b [][]cas.Ratio) ([][]cas.Ratio, error) {
	if m.Size == 0 {
		return nil, nil
	}
	x, err := svc.SolveLinear(m.Rows(), b)
	if err != nil {
		if errors.Is(err, cas.ErrSingular) {
			return nil, fmt.Errorf("%w: %v", ErrSingularMatrix, err)
		}
		return nil, err
	}
	return x, nil
}

// Nonzeros counts the structural nonzeros.
func (m *SymbolicMatrix) Nonzeros() int {
	n := 0
	for i := 1; i <= m.Size; i++ {
		for j := 1; j <= m.Size; j++ {
			if !m.a[i][j].IsZero() {
				n++
			}
		}
	}
	return n
}

// Format prints one equation per row, naming unknowns by names[i-1].
func (m *SymbolicMatrix) Format(names []string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Circuit Equations (%dx%d):\n", m.Size, m.Size)
	for i := 1; i <= m.Size; i++ {
		var terms []string
		for j := 1; j <= m.Size; j++ {
			e := m.a[i][j]
			if e.IsZero() {
				continue
			}
			x := fmt.Sprintf("x%d", j)
			if j-1 < len(names) {
				x = names[j-1]
			}
			terms = append(terms, "("+e.String()+")*"+x)
		}
		fmt.Fprintf(&b, "  %d: %s\n", i, strings.Join(terms, " + "))
	}
	return b.String()
}
