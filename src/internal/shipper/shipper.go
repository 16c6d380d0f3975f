// FILE: logship/src/internal/shipper/shipper.go
package shipper

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"

	"logship/src/internal/batch"
	"logship/src/internal/clock"
	"logship/src/internal/config"
	"logship/src/internal/core"
	"logship/src/internal/format"
	"logship/src/internal/metrics"
	"logship/src/internal/queue"
	"logship/src/internal/sink"

	"github.com/lixenwraith/log"
)

// ErrClosed is returned by operations attempted after Close.
var ErrClosed = errors.New("shipper is closed")

// Shipper queues emitted events and delivers them in batches. At most one
// sender drains the queue at a time; emitting never waits for the network.
type Shipper struct {
	cfg         config.ShipperConfig
	transmitter sink.Transmitter
	builder     *batch.Builder
	formatter   format.Formatter
	clock       clock.Clock
	logger      *log.Logger
	metrics     *metrics.Metrics

	// Guarded by mu
	mu        sync.Mutex
	queue     *queue.Queue
	state     State
	closed    bool
	debounce  *clock.Timer
	debGen    uint64
	cycleDone chan struct{}

	// Closed by Close; interrupts retry waits of a running cycle
	closing chan struct{}

	// Statistics
	emitted       atomic.Uint64
	rejected      atomic.Uint64
	sent          atomic.Uint64
	dropped       atomic.Uint64
	batches       atomic.Uint64
	failedBatches atomic.Uint64
	retries       atomic.Uint64
	placeholders  atomic.Uint64
}

// New creates an idle shipper with an empty queue. Unset numeric fields
// of cfg take their defaults.
func New(cfg config.ShipperConfig, transmitter sink.Transmitter, opts ...Option) (*Shipper, error) {
	if transmitter == nil {
		return nil, fmt.Errorf("transmitter cannot be nil")
	}

	s := &Shipper{
		cfg:         cfg.WithDefaults(),
		transmitter: transmitter,
		clock:       clock.Real(),
		queue:       queue.New(),
		state:       StateIdle,
		closing:     make(chan struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = log.NewLogger()
	}
	if s.formatter == nil {
		s.formatter = format.NewJSONFormatter(s.logger)
	}

	s.builder = batch.NewBuilder(batch.Limits{
		BatchPayloadLimit:    int(s.cfg.BatchPayloadLimit),
		EventBodyLimit:       int(s.cfg.EventBodyLimit),
		PlaceholderPrefixLen: int(s.cfg.PlaceholderPrefixLen),
	}, s.formatter, s.logger)

	return s, nil
}

// Emit enqueues event for delivery. It never blocks on I/O and never
// fails; events emitted after Close are counted and discarded.
func (s *Shipper) Emit(event core.LogEvent) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		s.rejected.Add(1)
		s.metrics.Rejected()
		return
	}

	s.queue.Append(event)
	s.emitted.Add(1)
	s.metrics.Emitted()
	s.metrics.SetPending(s.queue.Len())

	if s.state == StateIdle {
		s.scheduleLocked()
	}
}

// Flush delivers everything queued now instead of waiting for the
// debounce window. It waits for a running cycle first.
func (s *Shipper) Flush(ctx context.Context) error {
	s.mu.Lock()
	for {
		if s.closed {
			s.mu.Unlock()
			return ErrClosed
		}
		if s.state != StateSending {
			break
		}
		done := s.cycleDone
		s.mu.Unlock()
		select {
		case <-done:
		case <-ctx.Done():
			return fmt.Errorf("flush: %w", ctx.Err())
		}
		s.mu.Lock()
	}

	if s.queue.Len() == 0 {
		s.mu.Unlock()
		return nil
	}
	done := s.beginCycleLocked()
	s.mu.Unlock()

	abortCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	go func() {
		select {
		case <-s.closing:
			cancel()
		case <-abortCtx.Done():
		}
	}()

	if s.cycle(ctx, abortCtx.Done(), done) {
		return nil
	}

	s.mu.Lock()
	closed := s.closed
	s.mu.Unlock()
	if closed {
		return ErrClosed
	}
	return fmt.Errorf("flush: %w", ctx.Err())
}

// Close stops accepting events and delivers everything still queued. It
// waits for an in-flight attempt to finish, then drains until the queue
// is empty or ctx expires. Calling Close again only logs a warning.
func (s *Shipper) Close(ctx context.Context) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		s.logger.Warn("msg", "Close called on an already closed shipper",
			"component", "shipper")
		return nil
	}
	s.closed = true
	close(s.closing)
	s.stopDebounceLocked()

	var inflight chan struct{}
	if s.state == StateSending {
		inflight = s.cycleDone
	}
	s.state = StateSending
	pending := s.queue.Len()
	s.mu.Unlock()

	s.logger.Info("msg", "Closing shipper",
		"component", "shipper",
		"pending", pending,
		"in_flight", inflight != nil)

	if inflight != nil {
		select {
		case <-inflight:
		case <-ctx.Done():
			return s.closeIncomplete(ctx.Err())
		}
	}

	if !s.cycle(ctx, ctx.Done(), nil) {
		return s.closeIncomplete(ctx.Err())
	}

	s.mu.Lock()
	s.state = StateClosed
	s.mu.Unlock()

	stats := s.Stats()
	s.logger.Info("msg", "Shipper closed",
		"component", "shipper",
		"emitted", stats.Emitted,
		"sent", stats.Sent,
		"dropped", stats.Dropped,
		"rejected", stats.Rejected)
	return nil
}

func (s *Shipper) closeIncomplete(cause error) error {
	s.mu.Lock()
	s.state = StateClosed
	remaining := s.queue.Len()
	s.mu.Unlock()

	s.logger.Error("msg", "Shipper closed before all events were delivered",
		"component", "shipper",
		"remaining", remaining,
		"error", cause)
	return fmt.Errorf("close: %d events not delivered: %w", remaining, cause)
}

// Stats returns a snapshot of the shipper counters.
func (s *Shipper) Stats() Stats {
	s.mu.Lock()
	state := s.state
	pending := s.queue.Len()
	s.mu.Unlock()

	return Stats{
		State:         state,
		Pending:       pending,
		Emitted:       s.emitted.Load(),
		Rejected:      s.rejected.Load(),
		Sent:          s.sent.Load(),
		Dropped:       s.dropped.Load(),
		Batches:       s.batches.Load(),
		FailedBatches: s.failedBatches.Load(),
		Retries:       s.retries.Load(),
		Placeholders:  s.placeholders.Load(),
	}
}

// GetStats returns the stats in the map form used by the status server.
func (s *Shipper) GetStats() map[string]any {
	return s.Stats().Map()
}

// scheduleLocked arms the debounce timer. The callback only spawns the
// sender, so it is safe for clocks that fire synchronously.
func (s *Shipper) scheduleLocked() {
	s.state = StateScheduled
	s.debGen++
	gen := s.debGen
	s.debounce = s.clock.AfterFunc(s.cfg.Debounce(), func() {
		go s.onDebounce(gen)
	})
}

func (s *Shipper) stopDebounceLocked() {
	if s.debounce != nil {
		s.debounce.Stop()
		s.debounce = nil
	}
}

func (s *Shipper) beginCycleLocked() chan struct{} {
	s.stopDebounceLocked()
	s.state = StateSending
	done := make(chan struct{})
	s.cycleDone = done
	return done
}

// endCycleLocked leaves Sending after an interrupted cycle. A closed
// shipper stays under Close's control.
func (s *Shipper) endCycleLocked() {
	if s.closed {
		return
	}
	if s.queue.Len() > 0 {
		s.scheduleLocked()
	} else {
		s.state = StateIdle
	}
}

// onDebounce starts a cycle for timer gen. A timer that fired but was
// superseded (Flush ran, a new window was armed) is ignored.
func (s *Shipper) onDebounce(gen uint64) {
	s.mu.Lock()
	if s.closed || s.state != StateScheduled || gen != s.debGen {
		s.mu.Unlock()
		return
	}
	done := s.beginCycleLocked()
	s.mu.Unlock()

	s.cycle(context.Background(), s.closing, done)
}

// cycle sends batches until the queue is empty, then returns true. It
// returns false when abort fires; the unsent batch stays queued. done, if
// not nil, is closed on return.
func (s *Shipper) cycle(ctx context.Context, abort <-chan struct{}, done chan struct{}) bool {
	if done != nil {
		defer close(done)
	}

	for {
		s.mu.Lock()
		if s.queue.Len() == 0 {
			if !s.closed {
				s.state = StateIdle
			}
			s.mu.Unlock()
			return true
		}

		select {
		case <-abort:
			s.endCycleLocked()
			s.mu.Unlock()
			return false
		default:
		}

		s.mu.Unlock()

		// Serializing runs property code, so the lock is only taken per
		// event read. The front is stable: only this sender removes.
		b := s.builder.Take(lockedQueue{s})

		if !s.sendBatch(ctx, abort, b) {
			s.mu.Lock()
			s.endCycleLocked()
			s.mu.Unlock()
			return false
		}
	}
}

// sendBatch delivers b and removes its events from the queue, whether
// delivered or dropped. Returns false only when interrupted.
func (s *Shipper) sendBatch(ctx context.Context, abort <-chan struct{}, b batch.Batch) bool {
	if len(b.Payloads) == 0 {
		s.logger.Error("msg", "Discarding events that could not be serialized",
			"component", "shipper",
			"count", b.Consumed)
		s.complete(b, false)
		return true
	}

	body := format.Envelope(b.Payloads)
	delivered, aborted := s.deliver(ctx, abort, body, b)
	if aborted {
		return false
	}
	s.complete(b, delivered)
	return true
}

// deliver performs up to MaxRetries attempts, waiting RetryDelay between
// retryable failures.
func (s *Shipper) deliver(ctx context.Context, abort <-chan struct{}, body []byte, b batch.Batch) (delivered, aborted bool) {
	maxAttempts := int(s.cfg.MaxRetries)

	for attempt := 1; ; attempt++ {
		res := s.transmitter.Send(ctx, body)
		s.metrics.Attempt(res.Outcome.String(), res.Duration.Seconds())

		switch res.Outcome {
		case sink.OutcomeSuccess:
			s.logger.Debug("msg", "Batch delivered",
				"component", "shipper",
				"events", b.Consumed,
				"bytes", len(body),
				"status_code", res.StatusCode,
				"attempt", attempt)
			return true, false

		case sink.OutcomePermanent:
			s.logger.Error("msg", "Batch rejected by server, dropping",
				"component", "shipper",
				"events", b.Consumed,
				"bytes", len(body),
				"status_code", res.StatusCode,
				"reason", res.Reason)
			return false, false
		}

		if attempt >= maxAttempts {
			s.logger.Error("msg", "Failed to send batch after all retries, dropping",
				"component", "shipper",
				"events", b.Consumed,
				"attempts", attempt,
				"status_code", res.StatusCode,
				"reason", res.Reason,
				"last_error", res.Err)
			return false, false
		}

		s.retries.Add(1)
		s.logger.Warn("msg", "Batch delivery failed, will retry",
			"component", "shipper",
			"attempt", attempt,
			"max_retries", maxAttempts,
			"retry_delay", s.cfg.RetryDelay(),
			"status_code", res.StatusCode,
			"error", res.Err)

		select {
		case <-s.clock.After(s.cfg.RetryDelay()):
		case <-abort:
			return false, true
		}
	}
}

func (s *Shipper) complete(b batch.Batch, delivered bool) {
	s.mu.Lock()
	s.queue.RemoveFront(b.Consumed)
	pending := s.queue.Len()
	s.mu.Unlock()

	s.metrics.SetPending(pending)
	s.batches.Add(1)
	s.placeholders.Add(uint64(b.Placeholders))

	if delivered {
		s.sent.Add(uint64(b.Consumed))
		s.metrics.BatchDelivered(b.Consumed, b.Size, b.Placeholders)
		return
	}
	s.failedBatches.Add(1)
	s.dropped.Add(uint64(b.Consumed))
	s.metrics.BatchDropped(b.Consumed, b.Size, b.Placeholders)
}

// lockedQueue is the builder's view of the queue while the sender is
// outside the lock.
type lockedQueue struct {
	s *Shipper
}

func (q lockedQueue) Len() int {
	q.s.mu.Lock()
	defer q.s.mu.Unlock()
	return q.s.queue.Len()
}

func (q lockedQueue) At(i int) core.LogEvent {
	q.s.mu.Lock()
	defer q.s.mu.Unlock()
	return q.s.queue.At(i)
}
