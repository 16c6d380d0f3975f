package logger

import (
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"logship/src/internal/clock"
	"logship/src/internal/core"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recorder struct {
	mu     sync.Mutex
	events []core.LogEvent
}

func (r *recorder) Emit(e core.LogEvent) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
}

func (r *recorder) last(t *testing.T) core.LogEvent {
	t.Helper()
	r.mu.Lock()
	defer r.mu.Unlock()
	require.NotEmpty(t, r.events)
	return r.events[len(r.events)-1]
}

var now = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

func newTestLogger(opts ...Option) (*Logger, *recorder) {
	rec := &recorder{}
	opts = append([]Option{WithClock(clock.Fake(now))}, opts...)
	return New(rec, opts...), rec
}

func TestLogger_Commit(t *testing.T) {
	l, rec := newTestLogger()

	props := map[string]any{"User": "ada"}
	l.Commit(core.LevelWarning, "Hello {User}", props)

	e := rec.last(t)
	assert.Equal(t, now, e.Timestamp)
	assert.Equal(t, core.LevelWarning, e.Level)
	assert.Equal(t, "Hello {User}", e.MessageTemplate)
	assert.Equal(t, props, e.Properties)
	assert.Empty(t, e.Exception)
}

func TestLogger_LevelMethods(t *testing.T) {
	l, rec := newTestLogger()

	tests := []struct {
		call  func(string, ...Fields)
		level core.Level
	}{
		{l.Verbose, core.LevelVerbose},
		{l.Debug, core.LevelDebug},
		{l.Info, core.LevelInformation},
		{l.Warn, core.LevelWarning},
		{l.Error, core.LevelError},
		{l.Fatal, core.LevelFatal},
	}

	for _, tt := range tests {
		t.Run(tt.level.String(), func(t *testing.T) {
			tt.call("msg")
			e := rec.last(t)
			assert.Equal(t, tt.level, e.Level)
			assert.Nil(t, e.Properties)
		})
	}
}

type wrappedError struct{ inner error }

func (w *wrappedError) Error() string { return "wrapped: " + w.inner.Error() }
func (w *wrappedError) Unwrap() error { return w.inner }

func TestLogger_ErrorFields(t *testing.T) {
	l, rec := newTestLogger()

	err := &wrappedError{inner: errors.New("disk full")}
	l.Error("Write failed", Fields{Err: err})

	e := rec.last(t)
	assert.Equal(t, "wrapped: disk full", e.Exception)
	assert.Equal(t, "*logger.wrappedError", e.Properties["ErrorType"])
}

func TestLogger_PropertyPrecedence(t *testing.T) {
	l, rec := newTestLogger()
	l = l.With(map[string]any{"Service": "api", "Region": "eu"})

	l.Info("Request", Fields{
		Context:    map[string]any{"Region": "us", "RequestId": "r1", "ErrorType": "ctx"},
		Properties: map[string]any{"RequestId": "r2"},
		Err:        fmt.Errorf("timeout"),
	})

	e := rec.last(t)
	assert.Equal(t, "api", e.Properties["Service"])
	assert.Equal(t, "us", e.Properties["Region"], "call context over logger context")
	assert.Equal(t, "r2", e.Properties["RequestId"], "explicit properties win")
	assert.Equal(t, "*errors.errorString", e.Properties["ErrorType"], "error type over context")
}

func TestLogger_MultipleFields(t *testing.T) {
	l, rec := newTestLogger()

	l.Info("merge",
		Fields{Properties: map[string]any{"A": 1}},
		Fields{Properties: map[string]any{"B": 2}, Err: errors.New("x")},
	)

	e := rec.last(t)
	assert.Equal(t, 1, e.Properties["A"])
	assert.Equal(t, 2, e.Properties["B"])
	assert.Equal(t, "x", e.Exception)
}

func TestLogger_MinimumLevel(t *testing.T) {
	l, rec := newTestLogger(WithMinimumLevel(core.LevelWarning))

	l.Debug("dropped")
	l.Commit(core.LevelInformation, "dropped", nil)
	l.Warn("kept")

	rec.mu.Lock()
	defer rec.mu.Unlock()
	require.Len(t, rec.events, 1)
	assert.Equal(t, "kept", rec.events[0].MessageTemplate)
}

func TestLogger_WithDoesNotMutateParent(t *testing.T) {
	parent, rec := newTestLogger()
	_ = parent.With(map[string]any{"Child": true})

	parent.Info("parent")
	assert.Nil(t, rec.last(t).Properties)
}

func TestHandle(t *testing.T) {
	var h Handle

	_, err := h.Get()
	assert.ErrorIs(t, err, ErrNotInitialized)

	l, _ := newTestLogger()
	require.NoError(t, h.Set(l))

	got, err := h.Get()
	require.NoError(t, err)
	assert.Same(t, l, got)

	other, _ := newTestLogger()
	assert.ErrorIs(t, h.Set(other), ErrAlreadyInitialized)
	got, _ = h.Get()
	assert.Same(t, l, got)

	assert.Error(t, h.Set(nil))
}
