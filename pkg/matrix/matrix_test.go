package matrix

import (
	"math/cmplx"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/edp1096/toy-symspice/pkg/cas"
)

func mustRatio(t *testing.T, s string) cas.Ratio {
	t.Helper()
	r, err := cas.ParseRatio(s)
	require.NoError(t, err)
	return r
}

// divider builds node 1 - R1 - node 2 - (R2 || C) - ground, driven by a
// current into node 1.
func divider(t *testing.T) *SymbolicMatrix {
	m := NewSymbolic(2)
	g1 := mustRatio(t, "1/R1")
	y2 := mustRatio(t, "1/R2 + s*C")
	m.AddElement(1, 1, g1)
	m.AddElement(1, 2, g1.Neg())
	m.AddElement(2, 1, g1.Neg())
	m.AddElement(2, 2, g1)
	m.AddElement(2, 2, y2)
	return m
}

func TestSymbolicSolve(t *testing.T) {
	m := divider(t)
	assert.Equal(t, 4, m.Nonzeros())

	x, err := m.Solve(cas.Engine{}, [][]cas.Ratio{{cas.Int(1)}, {cas.Ratio{}}})
	require.NoError(t, err)
	assert.True(t, x[1][0].Equal(mustRatio(t, "R2/(1 + s*C*R2)")), "got %s", x[1][0])
	assert.True(t, x[0][0].Equal(mustRatio(t, "R1 + R2/(1 + s*C*R2)")), "got %s", x[0][0])
}

func TestSymbolicSingular(t *testing.T) {
	m := NewSymbolic(2)
	m.AddElement(1, 1, mustRatio(t, "1/R"))
	m.AddElement(0, 1, cas.Int(5)) // ground row is dropped
	_, err := m.Solve(cas.Engine{}, [][]cas.Ratio{{cas.Int(1)}, {cas.Int(1)}})
	assert.ErrorIs(t, err, ErrSingularMatrix)
}

func TestSymbolicFormat(t *testing.T) {
	out := divider(t).Format([]string{"V(1)", "V(2)"})
	assert.Contains(t, out, "Circuit Equations (2x2)")
	assert.Contains(t, out, "(1/R1)*V(1)")
}

func TestCircuitMatrixMatchesSymbolic(t *testing.T) {
	sym := divider(t)
	env := map[string]complex128{"R1": 1000, "R2": 2000, "C": 1e-6}
	s := complex(0, 2*3.141592653589793*100)

	m, err := NewMatrix(sym.Size)
	require.NoError(t, err)
	defer m.Destroy()

	require.NoError(t, m.Load(sym, s, env))
	require.NoError(t, m.AddComplexRHS(1, 1, 0))
	require.NoError(t, m.Solve())

	want := env["R2"] / (1 + s*env["C"]*env["R2"])
	assert.InDelta(t, 0, cmplx.Abs(m.Solution(2)-want), 1e-9)
	assert.InDelta(t, 0, cmplx.Abs(m.Solution(1)-(want+env["R1"])), 1e-9)

	assert.Error(t, m.AddComplexElement(3, 1, 1, 0))
	assert.Error(t, m.Load(NewSymbolic(3), s, env))
}

func TestCircuitMatrixUnboundSymbol(t *testing.T) {
	m, err := NewMatrix(2)
	require.NoError(t, err)
	defer m.Destroy()
	err = m.Load(divider(t), 1i, map[string]complex128{"R1": 1})
	assert.ErrorIs(t, err, cas.ErrUnboundSymbol)
}
