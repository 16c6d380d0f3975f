// FILE: logship/src/internal/shipper/options.go
package shipper

import (
	"logship/src/internal/clock"
	"logship/src/internal/format"
	"logship/src/internal/metrics"

	"github.com/lixenwraith/log"
)

// Option customizes a Shipper.
type Option func(*Shipper)

// WithClock sets the time source for debounce and retry waits.
func WithClock(c clock.Clock) Option {
	return func(s *Shipper) {
		if c != nil {
			s.clock = c
		}
	}
}

// WithLogger sets the diagnostic logger.
func WithLogger(logger *log.Logger) Option {
	return func(s *Shipper) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithMetrics attaches Prometheus collectors.
func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Shipper) {
		s.metrics = m
	}
}

// WithSerializer replaces the JSON event formatter.
func WithSerializer(f format.Formatter) Option {
	return func(s *Shipper) {
		if f != nil {
			s.formatter = f
		}
	}
}
