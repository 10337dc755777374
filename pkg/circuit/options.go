package circuit

import (
	"io"
	"log/slog"

	"github.com/edp1096/toy-symspice/internal/metrics"
	"github.com/edp1096/toy-symspice/pkg/cas"
)

type Option func(*Circuit)

// WithLogger sets the logger; the default discards.
func WithLogger(l *slog.Logger) Option {
	return func(c *Circuit) {
		if l != nil {
			c.logger = l
		}
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(c *Circuit) { c.metrics = m }
}

// WithAlgebra replaces the built-in algebra engine.
func WithAlgebra(svc cas.Service) Option {
	return func(c *Circuit) {
		if svc != nil {
			c.algebra = svc
		}
	}
}

// WithResistorNoise adds the thermal noise of every resistor and
// conductance at absolute temperature temp.
func WithResistorNoise(temp cas.Ratio) Option {
	return func(c *Circuit) { c.status.NoiseTemp = temp }
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
