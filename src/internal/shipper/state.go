// FILE: logship/src/internal/shipper/state.go
package shipper

import "fmt"

// State is the delivery loop state.
type State int

const (
	// StateIdle: nothing scheduled, no sender running.
	StateIdle State = iota
	// StateScheduled: the debounce timer is armed.
	StateScheduled
	// StateSending: one sender is draining the queue.
	StateSending
	// StateClosed: Close has been called; Emit is rejected.
	StateClosed
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateScheduled:
		return "scheduled"
	case StateSending:
		return "sending"
	case StateClosed:
		return "closed"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// Stats is a point-in-time snapshot of shipper counters.
type Stats struct {
	State         State
	Pending       int
	Emitted       uint64
	Rejected      uint64
	Sent          uint64
	Dropped       uint64
	Batches       uint64
	FailedBatches uint64
	Retries       uint64
	Placeholders  uint64
}

// Map returns the snapshot in the form used by status output.
func (s Stats) Map() map[string]any {
	return map[string]any{
		"state":          s.State.String(),
		"pending":        s.Pending,
		"emitted":        s.Emitted,
		"rejected":       s.Rejected,
		"sent":           s.Sent,
		"dropped":        s.Dropped,
		"batches":        s.Batches,
		"failed_batches": s.FailedBatches,
		"retries":        s.Retries,
		"placeholders":   s.Placeholders,
	}
}
