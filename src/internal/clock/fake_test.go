// FILE: logship/src/internal/clock/fake_test.go
package clock

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

var epoch = time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

func TestFakeClock_After(t *testing.T) {
	t.Run("FiresOnAdvance", func(t *testing.T) {
		c := Fake(epoch)
		ch := c.After(3 * time.Second)

		c.Advance(2 * time.Second)
		select {
		case <-ch:
			t.Fatal("fired before deadline")
		default:
		}

		c.Advance(time.Second)
		select {
		case got := <-ch:
			assert.Equal(t, epoch.Add(3*time.Second), got)
		default:
			t.Fatal("did not fire at deadline")
		}
	})

	t.Run("ZeroFiresImmediately", func(t *testing.T) {
		c := Fake(epoch)
		select {
		case <-c.After(0):
		default:
			t.Fatal("After(0) should fire immediately")
		}
		assert.Equal(t, 0, c.PendingCount())
	})
}

func TestFakeClock_AfterFunc(t *testing.T) {
	t.Run("Fires", func(t *testing.T) {
		c := Fake(epoch)
		var calls atomic.Int32
		c.AfterFunc(time.Second, func() { calls.Add(1) })

		assert.Equal(t, 1, c.PendingCount())
		c.Advance(time.Second)
		assert.Equal(t, int32(1), calls.Load())
		assert.Equal(t, 0, c.PendingCount())

		c.Advance(time.Hour)
		assert.Equal(t, int32(1), calls.Load(), "one-shot timer fired twice")
	})

	t.Run("Stop", func(t *testing.T) {
		c := Fake(epoch)
		var calls atomic.Int32
		timer := c.AfterFunc(time.Second, func() { calls.Add(1) })

		assert.True(t, timer.Stop())
		assert.False(t, timer.Stop())
		c.Advance(2 * time.Second)
		assert.Equal(t, int32(0), calls.Load())
	})

	t.Run("DeadlineOrder", func(t *testing.T) {
		c := Fake(epoch)
		var order []int
		c.AfterFunc(3*time.Second, func() { order = append(order, 3) })
		c.AfterFunc(1*time.Second, func() { order = append(order, 1) })
		c.AfterFunc(2*time.Second, func() { order = append(order, 2) })

		c.Advance(5 * time.Second)
		assert.Equal(t, []int{1, 2, 3}, order)
	})
}

func TestFakeClock_WaitForTimers(t *testing.T) {
	c := Fake(epoch)
	done := make(chan struct{})
	go func() {
		<-c.After(time.Minute)
		close(done)
	}()

	c.WaitForTimers(1)
	c.Advance(time.Minute)

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("waiter goroutine did not wake up")
	}
}
