// FILE: logship/src/internal/clock/clock.go
package clock

import "time"

// Clock is the time source used for debounce and retry waits.
// Production code uses Real(); tests use Fake() and advance it by hand.
type Clock interface {
	Now() time.Time

	// After delivers on the returned channel once d has elapsed.
	// d <= 0 delivers immediately.
	After(d time.Duration) <-chan time.Time

	// AfterFunc calls f once d has elapsed. The returned Timer can cancel it.
	AfterFunc(d time.Duration, f func()) *Timer
}

// Timer is a cancellable scheduled callback
type Timer struct {
	stopFunc func() bool
}

// Stop cancels the pending call. Returns false if it already fired or was stopped.
func (t *Timer) Stop() bool {
	if t == nil || t.stopFunc == nil {
		return false
	}
	return t.stopFunc()
}
