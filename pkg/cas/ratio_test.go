package cas

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustRatio(t *testing.T, s string) Ratio {
	t.Helper()
	r, err := ParseRatio(s)
	require.NoError(t, err, s)
	return r
}

func TestRatioCancelsCommonFactors(t *testing.T) {
	assert.True(t, mustRatio(t, "(s^2-1)/(s-1)").Equal(mustRatio(t, "s+1")))
	assert.True(t, mustRatio(t, "(a*b + a*c)/(a*d)").Equal(mustRatio(t, "(b+c)/d")))
	assert.True(t, mustRatio(t, "(x^2 - y^2)/(2*x + 2*y)").Equal(mustRatio(t, "x/2 - y/2")))
}

func TestRatioString(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"L1*s**2 + R1*s", "L1*s**2 + R1*s"},
		{"10/(R1 + L1*s)/s", "10/(L1*s**2 + R1*s)"},
		{"5/2", "5/2"},
		{"-R1", "-R1"},
		{"s/2", "s/2"},
		{"1/R1", "1/R1"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, mustRatio(t, tt.in).String())
		})
	}
}

func TestGCD(t *testing.T) {
	a := mustRatio(t, "x^2 - y^2").Num()
	b := mustRatio(t, "x + y").Num()
	assert.True(t, GCD(a, b).Equal(b))

	c := mustRatio(t, "s + 1").Num()
	d := mustRatio(t, "s + 2").Num()
	assert.True(t, GCD(c, d).Equal(OnePoly()))
}

func TestRatioDivisionByZero(t *testing.T) {
	_, err := Int(1).Div(Ratio{})
	assert.ErrorIs(t, err, ErrDivisionByZero)

	_, err = ParseRatio("1/(s-s)")
	assert.ErrorIs(t, err, ErrDivisionByZero)
}

func TestRatioSubstAndEval(t *testing.T) {
	r := mustRatio(t, "(s+2)/(s+4)")
	v, err := r.Subst("s", Int(0))
	require.NoError(t, err)
	assert.True(t, v.Equal(Frac(1, 2)))

	f, err := mustRatio(t, "R1*R2/(R1+R2)").EvalFloat(map[string]float64{"R1": 10, "R2": 10})
	require.NoError(t, err)
	assert.InDelta(t, 5.0, f, 1e-12)

	_, err = mustRatio(t, "R1").EvalFloat(nil)
	assert.ErrorIs(t, err, ErrUnboundSymbol)
}

func TestRatioDiff(t *testing.T) {
	d := mustRatio(t, "1/(s+a)").Diff("s")
	assert.True(t, d.Equal(mustRatio(t, "-1/(s+a)^2")))
}

func TestLimit(t *testing.T) {
	r := mustRatio(t, "(s+2)/(s+4)")
	v, err := Limit(r, "s", At(Int(0)))
	require.NoError(t, err)
	assert.True(t, v.Equal(Frac(1, 2)))

	v, err = Limit(mustRatio(t, "(3*s+1)/(s+2)"), "s", Infinity)
	require.NoError(t, err)
	assert.True(t, v.Equal(Int(3)))

	v, err = Limit(mustRatio(t, "1/(s+2)"), "s", Infinity)
	require.NoError(t, err)
	assert.True(t, v.IsZero())

	_, err = Limit(mustRatio(t, "1/s"), "s", At(Int(0)))
	assert.ErrorIs(t, err, ErrUnbounded)

	_, err = Limit(mustRatio(t, "s^2/(s+1)"), "s", Infinity)
	assert.ErrorIs(t, err, ErrUnbounded)
}

func TestSolveLinear(t *testing.T) {
	a := [][]Ratio{{Int(2), Int(1)}, {Int(1), Int(3)}}
	b := [][]Ratio{{Int(3)}, {Int(5)}}
	x, err := SolveLinear(a, b)
	require.NoError(t, err)
	assert.True(t, x[0][0].Equal(Frac(4, 5)))
	assert.True(t, x[1][0].Equal(Frac(7, 5)))

	_, err = SolveLinear([][]Ratio{{Int(1), Int(2)}, {Int(2), Int(4)}}, [][]Ratio{{Int(1)}, {Int(1)}})
	assert.ErrorIs(t, err, ErrSingular)
}

func TestSolveLinearSymbolic(t *testing.T) {
	g := mustRatio(t, "1/R1 + 1/R2")
	x, err := SolveLinear([][]Ratio{{g}}, [][]Ratio{{Sym("I")}})
	require.NoError(t, err)
	assert.True(t, x[0][0].Equal(mustRatio(t, "I*R1*R2/(R1+R2)")))
}

func TestAtJOmega(t *testing.T) {
	z, err := AtJOmega(mustRatio(t, "1/(s+1)"), "s", Int(1))
	require.NoError(t, err)
	assert.True(t, z.Re.Equal(Frac(1, 2)))
	assert.True(t, z.Im.Equal(Frac(-1, 2)))

	_, err = AtJOmega(mustRatio(t, "1/(s^2+4)"), "s", Int(2))
	assert.ErrorIs(t, err, ErrDivisionByZero)
}

func TestEngineIntegrate(t *testing.T) {
	r, err := Engine{}.Integrate(mustRatio(t, "s^2"), "s")
	require.NoError(t, err)
	assert.True(t, r.Equal(mustRatio(t, "s^3/3")))

	_, err = Engine{}.Integrate(mustRatio(t, "1/s"), "s")
	assert.ErrorIs(t, err, ErrNotPolynomial)
}
