package matrix

import (
	"fmt"

	"github.com/edp1096/sparse"
	"github.com/edp1096/toy-symspice/pkg/cas"
)

// CircuitMatrix is a numeric complex MNA system backed by a sparse LU.
type CircuitMatrix struct {
	Size         int
	matrix       *sparse.Matrix
	rhs          []float64
	rhsImag      []float64
	solution     []float64
	solutionImag []float64
	config       *sparse.Configuration
}

func NewMatrix(size int) (*CircuitMatrix, error) {
	config := &sparse.Configuration{
		Real:                    true,
		Complex:                 true,
		SeparatedComplexVectors: true,
		Expandable:              true,
		Translate:               false,
		ModifiedNodal:           true,
		TiesMultiplier:          5,
		PrinterWidth:            140,
		Annotate:                0,
	}

	mat, err := sparse.Create(int64(size), config)
	if err != nil {
		return nil, fmt.Errorf("creating sparse matrix: %w", err)
	}

	vectorSize := size + 1 // 1-based indexing
	return &CircuitMatrix{
		Size:         size,
		matrix:       mat,
		rhs:          make([]float64, vectorSize),
		rhsImag:      make([]float64, vectorSize),
		solution:     make([]float64, vectorSize),
		solutionImag: make([]float64, vectorSize),
		config:       config,
	}, nil
}

func (m *CircuitMatrix) AddComplexElement(i, j int, real, imag float64) error {
	if i <= 0 || j <= 0 || i > m.Size || j > m.Size {
		return fmt.Errorf("matrix index out of bounds (i=%d, j=%d, size=%d)", i, j, m.Size)
	}

	element := m.matrix.GetElement(int64(i), int64(j))
	element.Real += real
	element.Imag += imag
	return nil
}

func (m *CircuitMatrix) AddComplexRHS(i int, real, imag float64) error {
	if i <= 0 || i > m.Size {
		return fmt.Errorf("rhs index out of bounds (i=%d, size=%d)", i, m.Size)
	}
	m.rhs[i] += real
	m.rhsImag[i] += imag
	return nil
}

// Load clears the system and fills it with sym evaluated at the complex
// frequency s, every other symbol bound by env.
func (m *CircuitMatrix) Load(sym *SymbolicMatrix, s complex128, env map[string]complex128) error {
	if sym.Size != m.Size {
		return fmt.Errorf("matrix size mismatch: %d != %d", sym.Size, m.Size)
	}
	m.Clear()

	full := make(map[string]complex128, len(env)+1)
	for k, v := range env {
		full[k] = v
	}
	full[cas.LaplaceVar] = s

	for i := 1; i <= m.Size; i++ {
		for j := 1; j <= m.Size; j++ {
			e := sym.Element(i, j)
			if e.IsZero() {
				continue
			}
			v, err := e.EvalComplex(full)
			if err != nil {
				return fmt.Errorf("element (%d,%d): %w", i, j, err)
			}
			if err := m.AddComplexElement(i, j, real(v), imag(v)); err != nil {
				return err
			}
		}
	}
	return nil
}

func (m *CircuitMatrix) Clear() {
	m.matrix.Clear()
	for i := range m.rhs {
		m.rhs[i] = 0
		m.rhsImag[i] = 0
	}
}

func (m *CircuitMatrix) Solve() error {
	if err := m.matrix.Factor(); err != nil {
		return fmt.Errorf("%w: factorization failed: %v", ErrSingularMatrix, err)
	}

	var err error
	m.solution, m.solutionImag, err = m.matrix.SolveComplex(m.rhs, m.rhsImag)
	if err != nil {
		return fmt.Errorf("matrix solve failed: %w", err)
	}
	return nil
}

func (m *CircuitMatrix) Solution(i int) complex128 {
	if i <= 0 || i > m.Size {
		return 0
	}
	return complex(m.solution[i], m.solutionImag[i])
}

func (m *CircuitMatrix) Destroy() {
	if m.matrix != nil {
		m.matrix.Destroy()
	}
}
