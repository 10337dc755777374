package twoport

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/edp1096/toy-symspice/pkg/cas"
	"github.com/edp1096/toy-symspice/pkg/expr"
	"github.com/edp1096/toy-symspice/pkg/oneport"
)

func ratio(t *testing.T, s string) cas.Ratio {
	t.Helper()
	r, err := cas.ParseRatio(s)
	require.NoError(t, err, s)
	return r
}

func resistor(t *testing.T, name string) oneport.Network {
	t.Helper()
	n, err := oneport.R(name)
	require.NoError(t, err)
	return n
}

func TestConversionsAreConsistent(t *testing.T) {
	z := New(Z, ratio(t, "a"), ratio(t, "b"), ratio(t, "c"), ratio(t, "d"))
	for _, k := range []Kind{Y, H, G, ABCD} {
		p, err := z.To(k)
		require.NoError(t, err, k)
		assert.Equal(t, k, p.Kind())
		for _, k2 := range []Kind{Z, Y, H, G, ABCD} {
			q, err := p.To(k2)
			require.NoError(t, err, "%s -> %s", k, k2)
			direct, err := z.To(k2)
			require.NoError(t, err)
			assert.True(t, q.Equal(direct), "%s -> %s: %s vs %s", k, k2, q, direct)
		}
	}

	y, err := z.To(Y)
	require.NoError(t, err)
	assert.True(t, y.Param(1, 1).Equal(ratio(t, "d/(a*d - b*c)")))
	assert.True(t, y.Param(1, 2).Equal(ratio(t, "-b/(a*d - b*c)")))
}

func TestTSectionZParameters(t *testing.T) {
	tee, err := TSection(resistor(t, "R1"), resistor(t, "R2"), resistor(t, "R3"))
	require.NoError(t, err)
	z, err := tee.To(Z)
	require.NoError(t, err)
	assert.True(t, z.Param(1, 1).Equal(ratio(t, "R1 + R2")))
	assert.True(t, z.Param(1, 2).Equal(ratio(t, "R2")))
	assert.True(t, z.Param(2, 1).Equal(ratio(t, "R2")))
	assert.True(t, z.Param(2, 2).Equal(ratio(t, "R2 + R3")))
	assert.True(t, tee.Det().Equal(cas.Int(1)))
}

func TestLSectionTransfers(t *testing.T) {
	l, err := LSection(resistor(t, "R1"), resistor(t, "R2"))
	require.NoError(t, err)

	g, err := l.VoltageGain(oneport.OpenCircuit())
	require.NoError(t, err)
	assert.True(t, g.Equal(expr.Const(ratio(t, "R2/(R1 + R2)"))), g.String())

	zin, err := l.InputImpedance(resistor(t, "RL"))
	require.NoError(t, err)
	assert.True(t, zin.Equal(expr.Const(ratio(t, "R1 + R2*RL/(R2 + RL)"))), zin.String())

	zout, err := l.OutputImpedance(oneport.Short())
	require.NoError(t, err)
	assert.True(t, zout.Equal(expr.Const(ratio(t, "R1*R2/(R1 + R2)"))), zout.String())

	ai, err := l.CurrentGain(oneport.Short())
	require.NoError(t, err)
	assert.True(t, ai.Equal(expr.Const(cas.Int(1))))

	zt, err := l.Transimpedance(oneport.OpenCircuit())
	require.NoError(t, err)
	assert.True(t, zt.Equal(expr.Const(ratio(t, "R2"))))
}

func TestRCLowPassGain(t *testing.T) {
	c, err := oneport.C("C1", "")
	require.NoError(t, err)
	l, err := LSection(resistor(t, "R1"), c)
	require.NoError(t, err)
	g, err := l.VoltageGain(oneport.OpenCircuit())
	require.NoError(t, err)
	assert.Equal(t, expr.Laplace, g.Domain())
	assert.True(t, g.Equal(expr.LaplaceOf(ratio(t, "1/(R1*C1*s + 1)"))), g.String())
}

func TestSingularParameters(t *testing.T) {
	arm, err := SeriesArm(resistor(t, "R1"))
	require.NoError(t, err)
	_, err = arm.To(Z)
	assert.ErrorIs(t, err, ErrSingularTwoPort)

	shunt, err := ShuntArm(resistor(t, "R1"))
	require.NoError(t, err)
	_, err = shunt.To(Y)
	assert.ErrorIs(t, err, ErrSingularTwoPort)

	_, err = shunt.VoltageGain(oneport.Short())
	assert.ErrorIs(t, err, ErrUndefinedTransferFunction)

	_, err = SeriesArm(oneport.OpenCircuit())
	assert.ErrorIs(t, err, ErrSingularTwoPort)
	_, err = IdealTransformer(cas.Ratio{})
	assert.ErrorIs(t, err, ErrSingularTwoPort)
}

func TestComposition(t *testing.T) {
	a, err := TSection(resistor(t, "R1"), resistor(t, "R2"), resistor(t, "R3"))
	require.NoError(t, err)
	b, err := TSection(resistor(t, "R4"), resistor(t, "R5"), resistor(t, "R6"))
	require.NoError(t, err)

	s, err := Series(a, b)
	require.NoError(t, err)
	assert.Equal(t, Z, s.Kind())
	assert.True(t, s.Param(1, 2).Equal(ratio(t, "R2 + R5")))
	assert.False(t, s.CommonRef)

	p, err := Parallel(a, b)
	require.NoError(t, err)
	ya, _ := a.To(Y)
	yb, _ := b.To(Y)
	assert.True(t, p.Param(2, 1).Equal(ya.Param(2, 1).Add(yb.Param(2, 1))))
	assert.True(t, p.CommonRef)

	_, err = SeriesParallel(a, b)
	require.NoError(t, err)
	_, err = ParallelSeries(a, b)
	require.NoError(t, err)

	id, err := Cascade(Identity(), a)
	require.NoError(t, err)
	assert.True(t, id.Equal(a))

	_, err = Series(s, a)
	assert.ErrorIs(t, err, ErrFloatingReference)
}

func TestCascadeOrder(t *testing.T) {
	c1, err := oneport.C("C1", "")
	require.NoError(t, err)
	l1, err := oneport.L("L1", "")
	require.NoError(t, err)

	a, err := SeriesArm(resistor(t, "R1"))
	require.NoError(t, err)
	b, err := ShuntArm(c1)
	require.NoError(t, err)
	c, err := SeriesArm(l1)
	require.NoError(t, err)

	ab, err := Cascade(a, b)
	require.NoError(t, err)
	left, err := Cascade(ab, c)
	require.NoError(t, err)
	bc, err := Cascade(b, c)
	require.NoError(t, err)
	right, err := Cascade(a, bc)
	require.NoError(t, err)
	assert.True(t, left.Equal(right), "%s vs %s", left, right)

	chain, err := CascadeOf(a, b, c)
	require.NoError(t, err)
	assert.True(t, chain.Equal(left))

	ba, err := Cascade(b, a)
	require.NoError(t, err)
	assert.False(t, ab.Equal(ba))
	assert.True(t, ab.Param(1, 1).Equal(ratio(t, "1 + s*R1*C1")), ab.String())
	assert.True(t, ba.Param(1, 1).Equal(cas.Int(1)), ba.String())
	assert.True(t, ba.Param(2, 2).Equal(ratio(t, "1 + s*R1*C1")), ba.String())
}

func TestIdealTransformer(t *testing.T) {
	tf, err := IdealTransformer(ratio(t, "n"))
	require.NoError(t, err)
	_, err = Parallel(tf, Identity())
	assert.ErrorIs(t, err, ErrFloatingReference)

	zin, err := tf.InputImpedance(resistor(t, "RL"))
	require.NoError(t, err)
	assert.True(t, zin.Equal(expr.Const(ratio(t, "RL/n^2"))), zin.String())

	g, err := tf.VoltageGain(oneport.OpenCircuit())
	require.NoError(t, err)
	assert.True(t, g.Equal(expr.Const(ratio(t, "n"))))
}
