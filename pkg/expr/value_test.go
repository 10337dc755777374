package expr

import (
	"math"
	"math/cmplx"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/edp1096/toy-symspice/pkg/cas"
)

func ratio(t *testing.T, s string) cas.Ratio {
	t.Helper()
	r, err := cas.ParseRatio(s)
	require.NoError(t, err, s)
	return r
}

func laplace(t *testing.T, s string) Value {
	t.Helper()
	v, err := ParseLaplace(s)
	require.NoError(t, err, s)
	return v
}

func TestConstantsLift(t *testing.T) {
	v, err := Const(cas.Int(2)).Add(laplace(t, "1/s"))
	require.NoError(t, err)
	assert.Equal(t, Laplace, v.Domain())
	assert.True(t, v.Equal(laplace(t, "(2*s+1)/s")))

	v, err = laplace(t, "s").Sub(laplace(t, "s-3"))
	require.NoError(t, err)
	assert.Equal(t, Constant, v.Domain())
	assert.True(t, v.Equal(Const(cas.Int(3))))
}

func TestDomainMismatch(t *testing.T) {
	p1 := PhasorOf(cas.Real(cas.Int(1)), cas.Int(1))
	p2 := PhasorOf(cas.Real(cas.Int(1)), cas.Int(2))
	_, err := p1.Add(p2)
	assert.ErrorIs(t, err, ErrDomainMismatch)

	tv, err := ParseTime("exp(-t)")
	require.NoError(t, err)
	_, err = laplace(t, "1/s").Add(tv)
	assert.ErrorIs(t, err, ErrDomainMismatch)

	var de *DomainError
	require.ErrorAs(t, err, &de)
	assert.Equal(t, Laplace, de.Left)
	assert.Equal(t, Time, de.Right)

	_, err = tv.Mul(tv)
	assert.ErrorIs(t, err, ErrUnsupportedOperation)

	scaled, err := Const(cas.Int(3)).Mul(tv)
	require.NoError(t, err)
	assert.Equal(t, "3*exp(-t)", scaled.String())
}

func TestInfiniteSentinel(t *testing.T) {
	inf := Infinite(Laplace)
	_, err := inf.Add(Const(cas.Int(1)))
	assert.ErrorIs(t, err, ErrUnbounded)
	_, err = inf.To(Time)
	assert.ErrorIs(t, err, ErrUnbounded)
	_, err = inf.Neg()
	assert.ErrorIs(t, err, ErrUnbounded)
	assert.False(t, inf.IsZero())
}

func TestLaplaceTransforms(t *testing.T) {
	c, err := laplace(t, "(s+2)/(s+4)").To(Constant)
	require.NoError(t, err)
	assert.True(t, c.Equal(Const(cas.Frac(1, 2))))

	_, err = laplace(t, "1/s").To(Constant)
	assert.ErrorIs(t, err, ErrUnbounded)

	p, err := laplace(t, "1/(s+1)").To(Phasor, AtOmega(cas.Int(1)))
	require.NoError(t, err)
	assert.True(t, p.Equal(PhasorOf(cas.Complex{Re: cas.Frac(1, 2), Im: cas.Frac(-1, 2)}, cas.Int(1))))

	_, err = laplace(t, "1/(s^2+1)").To(Phasor, AtOmega(cas.Int(1)))
	assert.ErrorIs(t, err, ErrUnbounded)

	w, err := laplace(t, "1/(s+1)").To(Omega)
	require.NoError(t, err)
	p2, err := w.To(Phasor, AtOmega(cas.Int(1)))
	require.NoError(t, err)
	assert.True(t, p.Equal(p2))

	tv, err := laplace(t, "5/(s+2)").To(Time)
	require.NoError(t, err)
	assert.Equal(t, "5*exp(-2*t)*u(t)", tv.String())

	_, err = w.To(Time)
	assert.ErrorIs(t, err, ErrUnsupportedDomainTransform)

	_, err = laplace(t, "1/(s^3 + a*s + 1)").To(Time)
	assert.ErrorIs(t, err, ErrUnsupportedDomainTransform)
}

func TestPhasorTime(t *testing.T) {
	p := PhasorOf(cas.Complex{Re: cas.Int(3), Im: cas.Int(-4)}, cas.Int(2))
	tv, err := p.To(Time)
	require.NoError(t, err)
	for _, at := range []float64{0, 0.3, 1.1} {
		y, err := tv.Evaluate(map[string]complex128{cas.TimeVar: complex(at, 0)})
		require.NoError(t, err)
		assert.InDelta(t, 3*math.Cos(2*at)+4*math.Sin(2*at), real(y), 1e-12)
	}

	back, err := tv.To(Phasor)
	require.NoError(t, err)
	assert.True(t, back.Equal(p))

	s, err := p.To(Laplace)
	require.NoError(t, err)
	assert.True(t, s.Equal(laplace(t, "(3*s + 8)/(s^2 + 4)")))
}

func TestTimeToLaplace(t *testing.T) {
	tv, err := ParseTime("5*exp(-2*t)*u(t)")
	require.NoError(t, err)
	s, err := tv.To(Laplace)
	require.NoError(t, err)
	assert.True(t, s.Equal(laplace(t, "5/(s+2)")))

	_, err = tv.To(Phasor)
	assert.ErrorIs(t, err, ErrUnsupportedDomainTransform)
}

func TestInitialAndFinalValue(t *testing.T) {
	v, err := laplace(t, "5/(s+2)").InitialValue()
	require.NoError(t, err)
	assert.True(t, v.Equal(Const(cas.Int(5))))

	v, err = laplace(t, "10/(s*(s+2))").FinalValue()
	require.NoError(t, err)
	assert.True(t, v.Equal(Const(cas.Int(5))))

	d, err := laplace(t, "1/(s+1)").Differentiate()
	require.NoError(t, err)
	assert.True(t, d.Equal(laplace(t, "s/(s+1)")))

	i, err := laplace(t, "1/(s+1)").Integrate()
	require.NoError(t, err)
	assert.True(t, i.Equal(laplace(t, "1/(s^2+s)")))
}

func TestPolesAndZeros(t *testing.T) {
	v := laplace(t, "(s+3)/(s^2+2*s+5)")
	poles, err := v.Poles()
	require.NoError(t, err)
	require.Len(t, poles, 2)
	assert.True(t, poles[0].Value.Equal(cas.Complex{Re: cas.Int(-1), Im: cas.Int(2)}))

	zeros, err := v.Zeros()
	require.NoError(t, err)
	require.Len(t, zeros, 1)
	assert.True(t, zeros[0].Value.Equal(cas.Real(cas.Int(-3))))
}

func TestEvaluate(t *testing.T) {
	y, err := laplace(t, "1/(s+R)").Evaluate(map[string]complex128{"s": 1i, "R": 1})
	require.NoError(t, err)
	assert.InDelta(t, 0, cmplx.Abs(y-1/(1+1i)), 1e-12)

	_, err = laplace(t, "1/(s+R)").Evaluate(map[string]complex128{"s": 1i})
	assert.ErrorIs(t, err, cas.ErrUnboundSymbol)

	_, err = ParseConst("R*s")
	assert.ErrorIs(t, err, ErrDomainMismatch)
}
