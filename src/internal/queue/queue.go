// FILE: logship/src/internal/queue/queue.go
package queue

import "logship/src/internal/core"

const minCapacity = 16

// Queue is a FIFO of pending events backed by a growable ring buffer.
// Append and RemoveFront are amortized O(1). It does no locking; the
// owner serializes access.
type Queue struct {
	buf   []core.LogEvent
	head  int
	count int
}

// New creates an empty queue.
func New() *Queue {
	return &Queue{buf: make([]core.LogEvent, minCapacity)}
}

// Len returns the number of queued events.
func (q *Queue) Len() int {
	return q.count
}

// Append adds an event at the tail.
func (q *Queue) Append(e core.LogEvent) {
	if q.count == len(q.buf) {
		q.resize(len(q.buf) * 2)
	}
	q.buf[(q.head+q.count)%len(q.buf)] = e
	q.count++
}

// At returns the i-th event from the front. It panics when i is out of range.
func (q *Queue) At(i int) core.LogEvent {
	if i < 0 || i >= q.count {
		panic("queue: index out of range")
	}
	return q.buf[(q.head+i)%len(q.buf)]
}

// PeekPrefix copies up to n events from the front without removing them.
func (q *Queue) PeekPrefix(n int) []core.LogEvent {
	if n > q.count {
		n = q.count
	}
	if n <= 0 {
		return nil
	}
	out := make([]core.LogEvent, n)
	for i := range out {
		out[i] = q.buf[(q.head+i)%len(q.buf)]
	}
	return out
}

// RemoveFront drops up to k events from the front.
func (q *Queue) RemoveFront(k int) {
	if k > q.count {
		k = q.count
	}
	for i := 0; i < k; i++ {
		// Release references held by properties maps
		q.buf[(q.head+i)%len(q.buf)] = core.LogEvent{}
	}
	q.head = (q.head + k) % len(q.buf)
	q.count -= k

	if len(q.buf) > minCapacity && q.count <= len(q.buf)/4 {
		q.resize(len(q.buf) / 2)
	}
}

// Clear drops every queued event.
func (q *Queue) Clear() {
	q.buf = make([]core.LogEvent, minCapacity)
	q.head = 0
	q.count = 0
}

func (q *Queue) resize(capacity int) {
	if capacity < minCapacity {
		capacity = minCapacity
	}
	buf := make([]core.LogEvent, capacity)
	for i := 0; i < q.count; i++ {
		buf[i] = q.buf[(q.head+i)%len(q.buf)]
	}
	q.buf = buf
	q.head = 0
}
