package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for circuit solves.
type Metrics struct {
	// Solves by outcome: "ok" or "error"
	Solves *prometheus.CounterVec

	// Solution cache lookups by result: "hit" or "miss"
	CacheLookups *prometheus.CounterVec

	// Contributions composited into a queried quantity, by domain key kind
	Contributions *prometheus.CounterVec

	SolveLatency prometheus.Histogram
}

// New creates the metrics and registers them with reg. A nil reg registers
// with the default registry.
func New(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	f := promauto.With(reg)
	return &Metrics{
		Solves: f.NewCounterVec(prometheus.CounterOpts{
			Name: "symspice_solves_total",
			Help: "Symbolic MNA solves by outcome",
		}, []string{"outcome"}),

		CacheLookups: f.NewCounterVec(prometheus.CounterOpts{
			Name: "symspice_cache_lookups_total",
			Help: "Solution cache lookups by result",
		}, []string{"result"}),

		Contributions: f.NewCounterVec(prometheus.CounterOpts{
			Name: "symspice_contributions_total",
			Help: "Source contributions composited by domain",
		}, []string{"domain"}),

		SolveLatency: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "symspice_solve_duration_seconds",
			Help:    "Duration of one symbolic solve",
			Buckets: []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5},
		}),
	}
}

// ObserveSolve records one solve and its duration.
func (m *Metrics) ObserveSolve(d time.Duration, err error) {
	if m == nil {
		return
	}
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	m.Solves.WithLabelValues(outcome).Inc()
	m.SolveLatency.Observe(d.Seconds())
}

func (m *Metrics) CacheHit() {
	if m != nil {
		m.CacheLookups.WithLabelValues("hit").Inc()
	}
}

func (m *Metrics) CacheMiss() {
	if m != nil {
		m.CacheLookups.WithLabelValues("miss").Inc()
	}
}

// IncrementContribution counts one composited contribution; AC keys are
// folded into "ac".
func (m *Metrics) IncrementContribution(domain string) {
	if m != nil {
		m.Contributions.WithLabelValues(domain).Inc()
	}
}
