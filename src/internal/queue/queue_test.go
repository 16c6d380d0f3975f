// FILE: logship/src/internal/queue/queue_test.go
package queue

import (
	"fmt"
	"testing"
	"time"

	"logship/src/internal/core"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func event(i int) core.LogEvent {
	return core.NewEvent(time.Unix(int64(i), 0), core.LevelInformation, fmt.Sprintf("event %d", i), nil)
}

func templates(events []core.LogEvent) []string {
	out := make([]string, len(events))
	for i, e := range events {
		out[i] = e.MessageTemplate
	}
	return out
}

func TestQueue_FIFO(t *testing.T) {
	q := New()
	for i := 0; i < 5; i++ {
		q.Append(event(i))
	}
	require.Equal(t, 5, q.Len())

	assert.Equal(t, []string{"event 0", "event 1", "event 2"}, templates(q.PeekPrefix(3)))
	assert.Equal(t, 5, q.Len(), "PeekPrefix must not remove")

	q.RemoveFront(2)
	assert.Equal(t, 3, q.Len())
	assert.Equal(t, "event 2", q.At(0).MessageTemplate)
	assert.Equal(t, []string{"event 2", "event 3", "event 4"}, templates(q.PeekPrefix(10)))
}

func TestQueue_WrapAndGrow(t *testing.T) {
	q := New()
	next := 0
	expected := 0

	// Interleave appends and removals so head wraps around several times
	for round := 0; round < 50; round++ {
		for i := 0; i < 7; i++ {
			q.Append(event(next))
			next++
		}
		q.RemoveFront(5)
		expected += 5
		require.Equal(t, fmt.Sprintf("event %d", expected), q.At(0).MessageTemplate)
	}
	assert.Equal(t, next-expected, q.Len())

	got := templates(q.PeekPrefix(q.Len()))
	for i, tmpl := range got {
		assert.Equal(t, fmt.Sprintf("event %d", expected+i), tmpl)
	}
}

func TestQueue_ShrinkKeepsOrder(t *testing.T) {
	q := New()
	for i := 0; i < 1000; i++ {
		q.Append(event(i))
	}
	q.RemoveFront(990)
	require.Equal(t, 10, q.Len())
	assert.Less(t, len(q.buf), 1000, "buffer should shrink after draining")
	for i := 0; i < 10; i++ {
		assert.Equal(t, fmt.Sprintf("event %d", 990+i), q.At(i).MessageTemplate)
	}
}

func TestQueue_EdgeCases(t *testing.T) {
	t.Run("EmptyPeek", func(t *testing.T) {
		q := New()
		assert.Nil(t, q.PeekPrefix(3))
		assert.Nil(t, q.PeekPrefix(0))
	})

	t.Run("RemoveMoreThanLen", func(t *testing.T) {
		q := New()
		q.Append(event(1))
		q.RemoveFront(5)
		assert.Equal(t, 0, q.Len())
	})

	t.Run("Clear", func(t *testing.T) {
		q := New()
		for i := 0; i < 40; i++ {
			q.Append(event(i))
		}
		q.Clear()
		assert.Equal(t, 0, q.Len())
		q.Append(event(99))
		assert.Equal(t, "event 99", q.At(0).MessageTemplate)
	})

	t.Run("AtOutOfRange", func(t *testing.T) {
		q := New()
		assert.Panics(t, func() { q.At(0) })
	})
}
