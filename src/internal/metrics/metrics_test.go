package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func value(t *testing.T, c prometheus.Metric) float64 {
	t.Helper()
	var out dto.Metric
	require.NoError(t, c.Write(&out))
	switch {
	case out.Counter != nil:
		return out.Counter.GetValue()
	case out.Gauge != nil:
		return out.Gauge.GetValue()
	}
	t.Fatalf("unsupported metric type")
	return 0
}

func TestMetrics_Counters(t *testing.T) {
	m := New()

	m.Emitted()
	m.Emitted()
	m.Rejected()
	m.SetPending(7)
	m.BatchDelivered(3, 512, 1)
	m.BatchDropped(2, 300, 0)
	m.Attempt("retryable", 0.01)
	m.Attempt("success", 0.02)
	m.SourceLine("stdin")
	m.RateLimited()
	m.Filtered()

	assert.Equal(t, 2.0, value(t, m.EventsEmitted))
	assert.Equal(t, 1.0, value(t, m.EventsRejected))
	assert.Equal(t, 7.0, value(t, m.PendingEvents))
	assert.Equal(t, 3.0, value(t, m.EventsSent))
	assert.Equal(t, 2.0, value(t, m.EventsDropped))
	assert.Equal(t, 1.0, value(t, m.Placeholders))
	assert.Equal(t, 1.0, value(t, m.Batches.WithLabelValues("sent")))
	assert.Equal(t, 1.0, value(t, m.Batches.WithLabelValues("dropped")))
	assert.Equal(t, 1.0, value(t, m.Attempts.WithLabelValues("retryable")))
	assert.Equal(t, 1.0, value(t, m.SourceLines.WithLabelValues("stdin")))
	assert.Equal(t, 1.0, value(t, m.RateLimitedEvents))
	assert.Equal(t, 1.0, value(t, m.FilteredEvents))
}

func TestMetrics_Registry(t *testing.T) {
	m := New()
	m.Emitted()

	families, err := m.Registry().Gather()
	require.NoError(t, err)

	names := make(map[string]bool)
	for _, f := range families {
		names[f.GetName()] = true
	}
	assert.True(t, names["logship_events_emitted_total"])
	assert.True(t, names["logship_pending_events"])
	assert.True(t, names["go_goroutines"])
}

func TestMetrics_NilIsNoop(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.Emitted()
		m.Rejected()
		m.SetPending(1)
		m.BatchDelivered(1, 1, 0)
		m.BatchDropped(1, 1, 0)
		m.Attempt("success", 0)
		m.SourceLine("tcp")
		m.RateLimited()
		m.Filtered()
	})
	assert.Nil(t, m.Registry())
}
