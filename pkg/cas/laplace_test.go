package cas

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInverseLaplace(t *testing.T) {
	tests := []struct {
		name string
		in   string
		env  map[string]float64
		want func(t float64) float64
	}{
		{
			name: "first order",
			in:   "1/(s+2)",
			want: func(t float64) float64 { return math.Exp(-2 * t) },
		},
		{
			name: "series RL step",
			in:   "10/(L1*s**2 + R1*s)",
			env:  map[string]float64{"R1": 2, "L1": 1},
			want: func(t float64) float64 { return 5 * (1 - math.Exp(-2*t)) },
		},
		{
			name: "sine",
			in:   "1/(s^2+4)",
			want: func(t float64) float64 { return math.Sin(2*t) / 2 },
		},
		{
			name: "damped cosine",
			in:   "(s+1)/(s^2+2*s+5)",
			want: func(t float64) float64 { return math.Exp(-t) * math.Cos(2*t) },
		},
		{
			name: "repeated root",
			in:   "1/(s+1)^2",
			want: func(t float64) float64 { return t * math.Exp(-t) },
		},
		{
			name: "third order with zero root",
			in:   "6/(s^3+3*s^2+2*s)",
			want: func(t float64) float64 { return 3 - 6*math.Exp(-t) + 3*math.Exp(-2*t) },
		},
		{
			name: "third order by rational roots",
			in:   "1/(s^3+6*s^2+11*s+6)",
			want: func(t float64) float64 {
				return math.Exp(-t)/2 - math.Exp(-2*t) + math.Exp(-3*t)/2
			},
		},
		{
			name: "hyperbolic",
			in:   "1/(s^2-4)",
			want: func(t float64) float64 { return math.Sinh(2*t) / 2 },
		},
		{
			name: "symbolic quadratic",
			in:   "1/(s^2 + w^2)",
			env:  map[string]float64{"w": 3},
			want: func(t float64) float64 { return math.Sin(3*t) / 3 },
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f, err := InverseLaplace(mustRatio(t, tt.in), LaplaceVar)
			require.NoError(t, err)
			for _, at := range []float64{0.1, 0.5, 1.3} {
				got, err := f.Eval(at, tt.env)
				require.NoError(t, err)
				assert.InDelta(t, tt.want(at), got, 1e-9, "t=%g f=%s", at, f)
			}
		})
	}
}

func TestInverseLaplaceImproper(t *testing.T) {
	f, err := InverseLaplace(mustRatio(t, "s/(s+1)"), LaplaceVar)
	require.NoError(t, err)

	var impulses, steps int
	for _, term := range f.Terms {
		switch term.Shape {
		case Impulse:
			impulses++
			assert.True(t, term.Coef.Equal(Int(1)))
		case Step:
			steps++
			assert.True(t, term.Coef.Equal(Int(-1)))
		}
	}
	assert.Equal(t, 1, impulses)
	assert.Equal(t, 1, steps)

	_, err = InverseLaplace(mustRatio(t, "s^2"), LaplaceVar)
	assert.ErrorIs(t, err, ErrUnsupportedTransform)
}

func TestInverseLaplaceUnfactorable(t *testing.T) {
	_, err := InverseLaplace(mustRatio(t, "1/(s^3 + a*s + 1)"), LaplaceVar)
	assert.ErrorIs(t, err, ErrUnsupportedTransform)
}

func TestLaplace(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"5*exp(-2*t)*u(t)", "5/(s+2)"},
		{"u(t)", "1/s"},
		{"ramp(t)", "1/s^2"},
		{"delta(t)", "1"},
		{"cos(3*t)", "s/(s^2+9)"},
		{"sin(3*t)", "3/(s^2+9)"},
		{"t^2*exp(-t)", "2/(s+1)^3"},
		{"exp(-t)*cos(2*t)", "(s+1)/((s+1)^2+4)"},
		{"sin(w*t)", "w/(s^2+w^2)"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			f, err := ParseTime(tt.in)
			require.NoError(t, err)
			got, err := Laplace(f, LaplaceVar)
			require.NoError(t, err)
			assert.True(t, got.Equal(mustRatio(t, tt.want)), "got %s", got)
		})
	}
}

func TestLaplaceRoundTrip(t *testing.T) {
	F := mustRatio(t, "(2*s+3)/(s^2+3*s+2)")
	f, err := InverseLaplace(F, LaplaceVar)
	require.NoError(t, err)
	back, err := Laplace(f, LaplaceVar)
	require.NoError(t, err)
	assert.True(t, back.Equal(F), "got %s", back)
}

func TestParseTimeRejectsDelays(t *testing.T) {
	_, err := ParseTime("u(t-1)")
	assert.ErrorIs(t, err, ErrUnsupportedTransform)

	_, err = ParseTime("cos(t)*sin(t)")
	assert.ErrorIs(t, err, ErrUnsupportedTransform)

	_, err = ParseTime("1/t")
	assert.ErrorIs(t, err, ErrUnsupportedTransform)
}

func TestTimeFuncTone(t *testing.T) {
	f, err := ParseTime("3*sin(2*t)")
	require.NoError(t, err)
	p, w, ok := f.Tone()
	require.True(t, ok)
	assert.True(t, w.Equal(Int(2)))
	assert.True(t, p.Re.IsZero())
	assert.True(t, p.Im.Equal(Int(-3)))

	f, err = ParseTime("4*cos(5*t)*u(t)")
	require.NoError(t, err)
	_, _, ok = f.Tone()
	assert.False(t, ok)
}

func TestParseTimePhaseShift(t *testing.T) {
	tone := func(in string) (Complex, Ratio) {
		t.Helper()
		f, err := ParseTime(in)
		require.NoError(t, err, in)
		p, w, ok := f.Tone()
		require.True(t, ok, in)
		return p, w
	}
	float := func(r Ratio) float64 {
		f, ok := r.Float64()
		require.True(t, ok)
		return f
	}

	p, w := tone("3*sin(2*t+1)")
	assert.True(t, w.Equal(Int(2)))
	assert.InDelta(t, 3*math.Sin(1), float(p.Re), 1e-10)
	assert.InDelta(t, -3*math.Cos(1), float(p.Im), 1e-10)

	p, w = tone("cos(5*t + 1/2)")
	assert.True(t, w.Equal(Int(5)))
	assert.InDelta(t, math.Cos(0.5), float(p.Re), 1e-10)
	assert.InDelta(t, math.Sin(0.5), float(p.Im), 1e-10)

	f, err := ParseTime("exp(1-t)*u(t)")
	require.NoError(t, err)
	v, err := f.Eval(1, nil)
	require.NoError(t, err)
	assert.InDelta(t, 1, v, 1e-10)

	f, err = ParseTime("sinh(t+1)")
	require.NoError(t, err)
	v, err = f.Eval(0.5, nil)
	require.NoError(t, err)
	assert.InDelta(t, math.Sinh(1.5), v, 1e-9)

	_, err = ParseTime("cos(t + phi)")
	assert.ErrorIs(t, err, ErrUnsupportedTransform)
	_, err = ParseTime("cos(2)")
	assert.ErrorIs(t, err, ErrUnsupportedTransform)
}

func TestTimeFuncString(t *testing.T) {
	f, err := ParseTime("5*exp(-2*t)*u(t)")
	require.NoError(t, err)
	assert.Equal(t, "5*exp(-2*t)*u(t)", f.String())

	c, ok := ConstantTime(mustRatio(t, "10/R1")).Constant()
	require.True(t, ok)
	assert.Equal(t, "10/R1", c.String())
}

func TestRoots(t *testing.T) {
	rs, err := Roots(mustRatio(t, "s^3 + 2*s^2 + 5*s").Num(), LaplaceVar)
	require.NoError(t, err)
	require.Len(t, rs, 3)
	assert.True(t, rs[0].Value.IsZero())
	assert.True(t, rs[1].Value.Equal(Complex{Re: Int(-1), Im: Int(2)}))
	assert.True(t, rs[2].Value.Equal(Complex{Re: Int(-1), Im: Int(-2)}))

	rs, err = Roots(mustRatio(t, "(s+1)^2*(s-3)").Num(), LaplaceVar)
	require.NoError(t, err)
	require.Len(t, rs, 2)
	assert.True(t, rs[0].Value.Equal(Real(Int(-1))))
	assert.Equal(t, 2, rs[0].Mult)
	assert.True(t, rs[1].Value.Equal(Real(Int(3))))
	assert.Equal(t, 1, rs[1].Mult)

	_, err = Roots(mustRatio(t, "s^2 - 2").Num(), LaplaceVar)
	assert.ErrorIs(t, err, ErrUnsupportedTransform)
}
