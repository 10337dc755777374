package metrics

import (
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New(reg)

	m.ObserveSolve(time.Millisecond, nil)
	m.ObserveSolve(time.Millisecond, errors.New("singular"))
	m.ObserveSolve(time.Millisecond, nil)
	m.CacheHit()
	m.CacheMiss()
	m.CacheMiss()
	m.IncrementContribution("dc")

	assert.Equal(t, 2.0, testutil.ToFloat64(m.Solves.WithLabelValues("ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Solves.WithLabelValues("error")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.CacheLookups.WithLabelValues("hit")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.CacheLookups.WithLabelValues("miss")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Contributions.WithLabelValues("dc")))
	assert.Equal(t, 1, testutil.CollectAndCount(m.SolveLatency))
}

func TestNilMetricsIsNoop(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.ObserveSolve(time.Second, nil)
		m.CacheHit()
		m.CacheMiss()
		m.IncrementContribution("n")
	})
}
