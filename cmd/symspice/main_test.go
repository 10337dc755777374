package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const dividerNetlist = `* divider
Vs 2 0 5; down
Ra 2 1 10; right
Rb 1 0 R; down
.op
`

func writeNetlist(t *testing.T, text string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "circuit.net")
	require.NoError(t, os.WriteFile(path, []byte(text), 0o644))
	return path
}

func execute(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	var out, errOut bytes.Buffer
	root := newRootCmd()
	root.SetOut(&out)
	root.SetErr(&errOut)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), errOut.String(), err
}

func TestSolveDC(t *testing.T) {
	path := writeNetlist(t, "Vs 2 0 5\nRa 2 1 10\nRb 1 0 10\n")
	out, _, err := execute(t, "solve", path, "--domain", "dc", "V(2,1)", "I(Ra)")
	require.NoError(t, err)
	assert.Equal(t, "V(2,1) = 5/2\nI(Ra)  = 1/4\n", out)

	out, _, err = execute(t, "solve", path, "-d", "dc")
	require.NoError(t, err)
	assert.Contains(t, out, "I(Vs) = -1/4\n")
}

func TestSolveRejectsUnknownDomain(t *testing.T) {
	path := writeNetlist(t, dividerNetlist)
	_, _, err := execute(t, "solve", path, "--domain", "z")
	assert.ErrorContains(t, err, "unknown domain")

	_, _, err = execute(t, "solve", path, "X1")
	assert.ErrorContains(t, err, "bad quantity")
}

func TestRunOperatingPoint(t *testing.T) {
	path := writeNetlist(t, dividerNetlist)
	out, _, err := execute(t, "run", path, "--set", "R=10")
	require.NoError(t, err)
	assert.Contains(t, out, "V(1) = 2.500 V")
	assert.Contains(t, out, "I(Ra) = 250.000 mA")
}

func TestRunTransient(t *testing.T) {
	path := writeNetlist(t, "V1 1 0 step 1\nR1 1 2 1000\nC1 2 0 1/1000000\n.tran 1m 2m\n")
	out, _, err := execute(t, "run", path)
	require.NoError(t, err)
	assert.Contains(t, out, "Transient Analysis Results (3 time points)")
	assert.Contains(t, out, "V(2)=632.121 mV")
}

func TestLayoutAndEquations(t *testing.T) {
	path := writeNetlist(t, dividerNetlist)
	out, _, err := execute(t, "layout", path)
	require.NoError(t, err)
	assert.Contains(t, out, "* divider\n")
	assert.Contains(t, out, "; right")

	out, _, err = execute(t, "equations", path)
	require.NoError(t, err)
	assert.Contains(t, out, "Circuit Equations (3x3)")
	assert.Contains(t, out, "Right-hand side:")
}

func TestTransferAndImpedance(t *testing.T) {
	path := writeNetlist(t, "V1 1 0\nR1 1 2 1\nC1 2 0 1\n")
	out, _, err := execute(t, "transfer", path, "V1", "2")
	require.NoError(t, err)
	assert.Contains(t, out, "H(s) = 1/(s + 1)")
	assert.Contains(t, out, "poles: [-1]")
	assert.Contains(t, out, "zeros: []")

	out, _, err = execute(t, "impedance", path, "2")
	require.NoError(t, err)
	assert.Contains(t, out, "Z(2,0) = 1/(s + 1)")
}

func TestMetricsFlag(t *testing.T) {
	path := writeNetlist(t, dividerNetlist)
	_, errOut, err := execute(t, "solve", path, "--metrics", "--domain", "dc")
	require.NoError(t, err)
	assert.Contains(t, errOut, `symspice_solves_total{outcome="ok"} 1`)
}

func TestInitWritesConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cfg", "symspice.yaml")
	out, _, err := execute(t, "init", path)
	require.NoError(t, err)
	assert.Contains(t, out, "wrote")

	_, err = os.Stat(path)
	assert.NoError(t, err)
}

func TestNoiseTemperature(t *testing.T) {
	k, err := noiseTemperature("300")
	require.NoError(t, err)
	assert.Equal(t, "300", k.String())

	k, err = noiseTemperature("27C")
	require.NoError(t, err)
	assert.Equal(t, "6003/20", k.String())

	path := writeNetlist(t, "R1 1 0 R\n")
	out, _, err := execute(t, "solve", path, "--noise-temp", "300", "-d", "n", "V(1)")
	require.NoError(t, err)
	assert.Contains(t, out, "R")
}
