// FILE: logship/src/internal/metrics/metrics.go
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

const namespace = "logship"

// Metrics holds the Prometheus collectors updated by the shipper. A nil
// *Metrics is valid and records nothing.
type Metrics struct {
	registry *prometheus.Registry

	EventsEmitted     prometheus.Counter
	EventsRejected    prometheus.Counter
	EventsSent        prometheus.Counter
	EventsDropped     prometheus.Counter
	Placeholders      prometheus.Counter
	Batches           *prometheus.CounterVec
	Attempts          *prometheus.CounterVec
	PendingEvents     prometheus.Gauge
	BatchBytes        prometheus.Histogram
	SendDuration      prometheus.Histogram
	SourceLines       *prometheus.CounterVec
	RateLimitedEvents prometheus.Counter
	FilteredEvents    prometheus.Counter
}

// New creates the collectors and registers them, together with the Go and
// process collectors, on a private registry.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		EventsEmitted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "events_emitted_total",
			Help:      "Events accepted into the pending queue.",
		}),
		EventsRejected: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "events_rejected_total",
			Help:      "Events emitted after close and discarded.",
		}),
		EventsSent: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "events_sent_total",
			Help:      "Events delivered in accepted batches.",
		}),
		EventsDropped: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "events_dropped_total",
			Help:      "Events discarded after a permanent failure or exhausted retries.",
		}),
		Placeholders: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "placeholders_total",
			Help:      "Oversized events replaced by a placeholder.",
		}),
		Batches: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "batches_total",
			Help:      "Batches by final result.",
		}, []string{"result"}),
		Attempts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "send_attempts_total",
			Help:      "Delivery attempts by outcome.",
		}, []string{"outcome"}),
		PendingEvents: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "pending_events",
			Help:      "Events waiting in the queue.",
		}),
		BatchBytes: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "batch_bytes",
			Help:      "Enveloped batch body size.",
			Buckets:   prometheus.ExponentialBuckets(256, 4, 10),
		}),
		SendDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "send_duration_seconds",
			Help:      "Duration of one delivery attempt.",
			Buckets:   prometheus.DefBuckets,
		}),
		SourceLines: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "source_lines_total",
			Help:      "Lines read per source.",
		}, []string{"source"}),
		RateLimitedEvents: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rate_limited_events_total",
			Help:      "Source events dropped by the ingress rate limiter.",
		}),
		FilteredEvents: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "filtered_events_total",
			Help:      "Source events dropped by the filter chain.",
		}),
	}

	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.EventsEmitted,
		m.EventsRejected,
		m.EventsSent,
		m.EventsDropped,
		m.Placeholders,
		m.Batches,
		m.Attempts,
		m.PendingEvents,
		m.BatchBytes,
		m.SendDuration,
		m.SourceLines,
		m.RateLimitedEvents,
		m.FilteredEvents,
	)
	return m
}

// Registry returns the registry to expose, e.g. through promhttp.
func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

func (m *Metrics) Emitted() {
	if m != nil {
		m.EventsEmitted.Inc()
	}
}

func (m *Metrics) Rejected() {
	if m != nil {
		m.EventsRejected.Inc()
	}
}

func (m *Metrics) SetPending(n int) {
	if m != nil {
		m.PendingEvents.Set(float64(n))
	}
}

func (m *Metrics) Attempt(outcome string, seconds float64) {
	if m != nil {
		m.Attempts.WithLabelValues(outcome).Inc()
		m.SendDuration.Observe(seconds)
	}
}

// BatchDelivered records an accepted batch.
func (m *Metrics) BatchDelivered(events, bytes, placeholders int) {
	if m != nil {
		m.Batches.WithLabelValues("sent").Inc()
		m.EventsSent.Add(float64(events))
		m.BatchBytes.Observe(float64(bytes))
		m.Placeholders.Add(float64(placeholders))
	}
}

// BatchDropped records a discarded batch.
func (m *Metrics) BatchDropped(events, bytes, placeholders int) {
	if m != nil {
		m.Batches.WithLabelValues("dropped").Inc()
		m.EventsDropped.Add(float64(events))
		m.BatchBytes.Observe(float64(bytes))
		m.Placeholders.Add(float64(placeholders))
	}
}

func (m *Metrics) SourceLine(source string) {
	if m != nil {
		m.SourceLines.WithLabelValues(source).Inc()
	}
}

func (m *Metrics) RateLimited() {
	if m != nil {
		m.RateLimitedEvents.Inc()
	}
}

func (m *Metrics) Filtered() {
	if m != nil {
		m.FilteredEvents.Inc()
	}
}
