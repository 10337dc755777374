package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)
	assert.NoError(t, cfg.Validate())
}

func TestLoadOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "symspice.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
log:
  level: debug
env:
  R: 1000
  C: 1.0e-6
noise:
  temperature: "300"
ac:
  points: 11
`), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "text", cfg.Log.Format)
	assert.Equal(t, map[string]float64{"R": 1000, "C": 1e-6}, cfg.Env)
	assert.Equal(t, "300", cfg.Noise.Temperature)
	assert.Equal(t, ACConfig{Sweep: "DEC", Points: 11, FStart: 1, FStop: 1e6}, cfg.AC)

	level, err := cfg.Log.SlogLevel()
	require.NoError(t, err)
	assert.Equal(t, slog.LevelDebug, level)
}

func TestLoadRejectsInvalid(t *testing.T) {
	tests := map[string]string{
		"level":  "log:\n  level: loud\n",
		"domain": "domain: z\n",
		"format": "log:\n  format: xml\n",
		"sweep":  "ac:\n  sweep: LOG\n",
		"range":  "ac:\n  fstart: 10\n  fstop: 1\n",
		"tran":   "tran:\n  step: 0\n",
	}
	for name, body := range tests {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "bad.yaml")
			require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
			_, err := Load(path)
			assert.ErrorIs(t, err, ErrInvalidConfig)
		})
	}

	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestWriteDefaultRoundTrips(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "symspice.yaml")
	require.NoError(t, WriteDefault(path))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)
}
