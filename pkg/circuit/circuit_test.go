package circuit

import (
	"bytes"
	"log/slog"
	"math"
	"math/cmplx"
	"sync"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/edp1096/toy-symspice/internal/metrics"
	"github.com/edp1096/toy-symspice/pkg/cas"
	"github.com/edp1096/toy-symspice/pkg/device"
	"github.com/edp1096/toy-symspice/pkg/expr"
)

const divider = "Vs 2 0 5; down\nRa 2 1 10; right\nRb 1 0 10; down"

func build(t *testing.T, text string, opts ...Option) *Circuit {
	t.Helper()
	c, err := Parse(text, opts...)
	require.NoError(t, err)
	return c
}

func ratio(t *testing.T, s string) cas.Ratio {
	t.Helper()
	r, err := cas.ParseRatio(s)
	require.NoError(t, err, s)
	return r
}

// dcOf returns a checker for the DC part of a query result.
func dcOf(t *testing.T) func(expr.Super, error) expr.Value {
	return func(x expr.Super, err error) expr.Value {
		t.Helper()
		require.NoError(t, err)
		v, err := x.DC()
		require.NoError(t, err)
		return v
	}
}

func TestVoltageDivider(t *testing.T) {
	c := build(t, divider)

	v := dcOf(t)(c.V("1"))
	assert.True(t, v.Equal(expr.Const(cas.Frac(5, 2))), v.String())

	i := dcOf(t)(c.I("Ra"))
	assert.True(t, i.Equal(expr.Const(cas.Frac(1, 4))), i.String())

	vs := dcOf(t)(c.I("Vs"))
	assert.True(t, vs.Equal(expr.Const(cas.Frac(-1, 4))), vs.String())

	vb := dcOf(t)(c.Vbranch("Ra"))
	assert.True(t, vb.Equal(expr.Const(cas.Frac(5, 2))))

	g := dcOf(t)(c.V("gnd"))
	assert.True(t, g.IsZero())

	_, err := c.V("7")
	assert.ErrorIs(t, err, ErrUnknownNode)
	_, err = c.I("Rx")
	assert.ErrorIs(t, err, ErrUnknownComponent)
}

func TestSymbolicDivider(t *testing.T) {
	c := build(t, "V1 1 0\nR1 1 2\nR2 2 0")
	v := dcOf(t)(c.V("2"))
	assert.True(t, v.Equal(expr.Const(ratio(t, "V1*R2/(R1 + R2)"))), v.String())

	h, err := c.Transfer("V1", "2", "0")
	require.NoError(t, err)
	assert.True(t, h.Equal(expr.Const(ratio(t, "R2/(R1 + R2)"))))

	z, err := c.Impedance("2", "0")
	require.NoError(t, err)
	assert.True(t, z.Equal(expr.Const(ratio(t, "R1*R2/(R1 + R2)"))), z.String())
}

func TestWiresMergeNodes(t *testing.T) {
	c := build(t, "V1 1 0 10\nW1 1 2\nR1 2 0 5\nW2 3 gnd\nR2 1 3 5")
	assert.Equal(t, []string{"1"}, c.Nodes())

	v := dcOf(t)(c.V("2"))
	assert.True(t, v.Equal(expr.Const(cas.Int(10))))
	i := dcOf(t)(c.I("R2"))
	assert.True(t, i.Equal(expr.Const(cas.Int(2))))

	_, err := c.I("W1")
	assert.Error(t, err)
}

func TestGroundAndFloatingNodes(t *testing.T) {
	_, err := Parse("V1 1 2 1\nR1 1 2 1")
	assert.ErrorIs(t, err, ErrNoGround)

	c := build(t, "V1 1 0 1\nR1 1 0 1\nR2 2 3 1\nI1 2 0 1")
	assert.Equal(t, []string{"2", "3"}, c.Graph().Floating())

	_, err = c.V("1")
	require.ErrorIs(t, err, ErrSingularCircuit)
	var ce *ContributionError
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, "V1", ce.Source)
	assert.Contains(t, err.Error(), "floating nodes 2, 3")
}

func TestUnknownControl(t *testing.T) {
	_, err := Parse("V1 1 0 1\nR1 1 0 1\nF1 0 2 R1 2\nR2 2 0 1")
	assert.ErrorIs(t, err, device.ErrUnknownControl)
}

func TestCoupledInductors(t *testing.T) {
	c := build(t, "V1 1 0\nL1 1 0\nL2 2 0\nK1 L1 L2 M\nR2 2 0 R")
	h, err := c.Transfer("V1", "2", "0")
	require.NoError(t, err)
	assert.True(t, h.Equal(expr.LaplaceOf(ratio(t, "M*R/(L1*R + s*(L1*L2 - M^2))"))), h.String())

	c = build(t, "V1 1 0 step 1\nL1 1 0 1\nL2 2 0 4\nK1 L1 L2 1\nR2 2 0 3")
	v := c.Layout()
	require.Len(t, v, 5)
	assert.Empty(t, v[3].Nodes)
	h, err = c.Transfer("V1", "2", "0")
	require.NoError(t, err)
	assert.True(t, h.Equal(expr.LaplaceOf(ratio(t, "1/(s + 1)"))), h.String())

	snap, err := c.Snapshot(expr.KeyTransient)
	require.NoError(t, err)
	assert.NotContains(t, snap.Currents, "K1")
	_, err = c.I("K1")
	assert.Error(t, err)
	_, err = c.Vbranch("K1")
	assert.ErrorIs(t, err, device.ErrNotOnePort)

	_, err = Parse("V1 1 0 1\nL1 1 0 1\nR1 1 0 1\nK1 L1 R1 1")
	assert.ErrorIs(t, err, device.ErrUnknownControl)
	_, err = Parse("V1 1 0 1\nL1 1 0 1\nK1 L1 L1 1")
	assert.ErrorIs(t, err, device.ErrUnknownControl)
}

func TestControlledSources(t *testing.T) {
	tests := []struct {
		name string
		text string
		want string
	}{
		{"vcvs", "V1 1 0 1\nE1 2 0 1 0 A\nR1 2 0 1", "A"},
		{"vccs", "V1 1 0 1\nG1 0 2 1 0 gm\nR2 2 0 R", "gm*R"},
		{"cccs", "V1 1 0 1\nR1 1 0 1\nF1 0 2 V1 2\nR2 2 0 1", "-2"},
		{"ccvs", "V1 1 0 1\nR1 1 0 1\nH1 2 0 V1 3\nR2 2 0 1", "-3"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := build(t, tt.text)
			v := dcOf(t)(c.V("2"))
			assert.True(t, v.Equal(expr.Const(ratio(t, tt.want))), v.String())
		})
	}
}

func TestSuperposition(t *testing.T) {
	c := build(t, "V1 1 0 dc 6\nR1 1 2 2\nR2 2 0 2\nI1 2 0 dc 1")
	v := dcOf(t)(c.V("2"))
	assert.True(t, v.Equal(expr.Const(cas.Int(4))), v.String())

	c = build(t, "V1 1 0 dc 2 ac 1 0 3\nR1 1 2 1\nR2 2 0 1")
	x, err := c.V("2")
	require.NoError(t, err)
	assert.Equal(t, []string{expr.KeyDC, "ac:3"}, x.Keys())
	p, err := x.AC(cas.Int(3))
	require.NoError(t, err)
	assert.True(t, p.Equal(expr.PhasorOf(cas.Real(cas.Frac(1, 2)), cas.Int(3))))
}

func TestSuperpositionOfSingleSourceSolves(t *testing.T) {
	const (
		both    = "V1 1 0 dc Va\nR1 1 2 R1\nC1 2 0 C\nI1 2 0 step Ib\nR2 2 0 R2"
		onlyV   = "V1 1 0 dc Va\nR1 1 2 R1\nC1 2 0 C\nR2 2 0 R2"
		onlyI   = "W1 1 0\nR1 1 2 R1\nC1 2 0 C\nI1 2 0 step Ib\nR2 2 0 R2"
		current = "R2"
	)
	query := func(text string) (expr.Super, expr.Super) {
		t.Helper()
		c := build(t, text)
		v, err := c.V("2")
		require.NoError(t, err)
		i, err := c.I(current)
		require.NoError(t, err)
		return v, i
	}

	v, i := query(both)
	v1, i1 := query(onlyV)
	v2, i2 := query(onlyI)
	assert.Equal(t, []string{expr.KeyDC, expr.KeyTransient}, v.Keys())
	assert.True(t, v.Equal(v1.Add(v2)), "%s vs %s + %s", v, v1, v2)
	assert.True(t, i.Equal(i1.Add(i2)), "%s vs %s + %s", i, i1, i2)
}

func TestACPhasor(t *testing.T) {
	c := build(t, "V1 1 0 ac 1 0 1\nR1 1 2 1\nC1 2 0 1")
	x, err := c.V("2")
	require.NoError(t, err)
	p, err := x.AC(cas.Int(1))
	require.NoError(t, err)
	z, _ := p.Complex()
	assert.True(t, z.Equal(cas.Complex{Re: cas.Frac(1, 2), Im: cas.Frac(-1, 2)}), z.String())
}

func TestStepResponse(t *testing.T) {
	c := build(t, "V1 1 0 step 1\nR1 1 2 1\nC1 2 0 1/2")
	x, err := c.V("2")
	require.NoError(t, err)

	s, err := x.S()
	require.NoError(t, err)
	assert.True(t, s.Equal(expr.LaplaceOf(ratio(t, "2/(s^2 + 2*s)"))), s.String())

	tv, err := x.Time()
	require.NoError(t, err)
	y, err := tv.Evaluate(map[string]complex128{cas.TimeVar: 0.5})
	require.NoError(t, err)
	assert.InDelta(t, 1-math.Exp(-1), real(y), 1e-12)
}

func TestCapacitorInitialCondition(t *testing.T) {
	c := build(t, "C1 1 0 1 5\nR1 1 0 1")
	x, err := c.V("1")
	require.NoError(t, err)
	s, err := x.S()
	require.NoError(t, err)
	assert.True(t, s.Equal(expr.LaplaceOf(ratio(t, "5/(s+1)"))), s.String())
}

func TestInductorInitialCurrent(t *testing.T) {
	c := build(t, "L1 1 0 2 3\nR1 1 0 4")
	x, err := c.I("L1")
	require.NoError(t, err)
	s, err := x.S()
	require.NoError(t, err)
	assert.True(t, s.Equal(expr.LaplaceOf(ratio(t, "-3/(s+2)"))), s.String())

	v, err := c.V("1")
	require.NoError(t, err)
	s, err = v.S()
	require.NoError(t, err)
	assert.True(t, s.Equal(expr.LaplaceOf(ratio(t, "12/(s+2)"))), s.String())
}

func TestDCPoleIsSingular(t *testing.T) {
	c := build(t, "I1 1 0 dc 1\nC1 1 0 C")
	_, err := c.V("1")
	require.ErrorIs(t, err, ErrSingularCircuit)
	var ce *ContributionError
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, "I1", ce.Source)
	assert.Equal(t, expr.KeyDC, ce.Domain)

	assert.Contains(t, c.Contributions(), Contribution{Source: "I1", Domain: expr.KeyDC, State: Unsolvable})
}

func TestFailedContributionLeavesOthers(t *testing.T) {
	c := build(t, "I1 0 1 step 1\nI2 0 1 dc 1\nC1 1 0 1")

	_, err := c.V("1")
	require.ErrorIs(t, err, ErrSingularCircuit)

	v, err := c.VoltageOf(expr.KeyTransient, "1", "0")
	require.NoError(t, err)
	assert.True(t, v.Equal(expr.NewTransient(ratio(t, "-1/s^2"))), v.String())

	snap, err := c.Snapshot(expr.KeyTransient)
	require.NoError(t, err)
	assert.True(t, snap.Voltages["1"].Equal(v))
	assert.True(t, snap.Currents["C1"].Equal(expr.NewTransient(ratio(t, "-1/s"))), snap.Currents["C1"].String())

	_, err = c.Snapshot(expr.KeyDC)
	var ce *ContributionError
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, "I2", ce.Source)

	assert.Contains(t, c.Contributions(), Contribution{Source: "I1", Domain: expr.KeyTransient, State: Composited})
	assert.Contains(t, c.Contributions(), Contribution{Source: "I2", Domain: expr.KeyDC, State: Unsolvable})
}

func TestResistorNoise(t *testing.T) {
	temp := cas.Sym("T")
	c := build(t, "R1 1 0 R", WithResistorNoise(temp))
	x, err := c.V("1")
	require.NoError(t, err)
	assert.True(t, x.Equal(device.ThermalNoiseVoltage(temp, cas.Sym("R"))), x.String())

	c = build(t, "R1 1 0 R\nR2 1 0 R", WithResistorNoise(temp))
	x, err = c.V("1")
	require.NoError(t, err)
	assert.True(t, x.Equal(device.ThermalNoiseVoltage(temp, ratio(t, "R/2"))), x.String())
}

func TestCacheIsSharedAcrossQueries(t *testing.T) {
	m := metrics.New(prometheus.NewRegistry())
	c := build(t, divider, WithMetrics(m))

	var wg sync.WaitGroup
	for range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			v := dcOf(t)(c.V("1"))
			assert.True(t, v.Equal(expr.Const(cas.Frac(5, 2))))
		}()
	}
	wg.Wait()
	_, err := c.I("Rb")
	require.NoError(t, err)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.Solves.WithLabelValues("ok")))
	assert.Equal(t, 9.0, testutil.ToFloat64(m.Contributions.WithLabelValues("dc")))
	assert.Equal(t, []Contribution{{Source: "Vs", Domain: expr.KeyDC, State: Composited}}, c.Contributions())
}

func TestMNAAccessors(t *testing.T) {
	c := build(t, divider)
	assert.Equal(t, []string{"V(2)", "V(1)", "I(Vs)"}, c.X())

	a := c.A()
	require.Len(t, a, 3)
	assert.True(t, a[1][1].Equal(cas.Frac(1, 5)))
	assert.True(t, a[2][0].Equal(cas.Int(1)))

	z := c.Z()
	assert.True(t, z[0].IsZero())
	assert.True(t, z[2].Equal(expr.NewDC(cas.Int(5))))

	assert.Contains(t, c.Equations(), "I(Vs)")
	assert.Equal(t, []string{"Vs"}, c.Sources())
}

func TestLayoutAndSnapshot(t *testing.T) {
	c := build(t, divider)
	layout := c.Layout()
	require.Len(t, layout, 3)
	assert.Equal(t, Placement{Name: "Ra", Kind: device.Resistor, Nodes: []string{"2", "1"}, Hints: "right"}, layout[1])

	snap, err := c.Snapshot(expr.KeyDC)
	require.NoError(t, err)
	assert.True(t, snap.Voltages["1"].Equal(expr.NewDC(cas.Frac(5, 2))))
	assert.True(t, snap.Currents["Rb"].Equal(expr.NewDC(cas.Frac(1, 4))))

	snap, err = c.Snapshot(expr.KeyNoise)
	require.NoError(t, err)
	assert.True(t, snap.Voltages["2"].IsZero())
}

func TestEvaluateAtMatchesSymbolic(t *testing.T) {
	c := build(t, "V1 1 0 1\nR1 1 2 R\nC1 2 0 C")
	env := map[string]complex128{"R": 1e3, "C": 1e-6}
	s := complex(0, 2*math.Pi*100)

	got, err := c.EvaluateAt("V1", s, env)
	require.NoError(t, err)

	h, err := c.Transfer("V1", "2", "0")
	require.NoError(t, err)
	env[cas.LaplaceVar] = s
	want, err := h.Evaluate(env)
	require.NoError(t, err)
	assert.InDelta(t, 0, cmplx.Abs(got["V(2)"]-want), 1e-9)

	_, err = c.EvaluateAt("R1", s, env)
	assert.ErrorIs(t, err, ErrUnknownComponent)
}

func TestSolveLogging(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	c := build(t, divider, WithLogger(logger))
	_, err := c.V("1")
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "msg=solved source=Vs size=3")

	buf.Reset()
	c = build(t, "I1 1 0 dc 1\nC1 1 0 C", WithLogger(logger))
	_, err = c.V("1")
	require.Error(t, err)
	assert.Contains(t, buf.String(), `msg="contribution failed" source=I1 domain=dc`)
}
