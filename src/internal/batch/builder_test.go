// FILE: logship/src/internal/batch/builder_test.go
package batch

import (
	"errors"
	"fmt"
	"math/rand"
	"strings"
	"testing"
	"time"

	"logship/src/internal/core"
	"logship/src/internal/format"
	"logship/src/internal/queue"

	"github.com/lixenwraith/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// templateFormatter serializes an event as its bare template, so tests
// control payload sizes exactly.
type templateFormatter struct {
	failOn string
}

func (f templateFormatter) Format(e core.LogEvent) ([]byte, error) {
	if f.failOn != "" && strings.HasPrefix(e.MessageTemplate, f.failOn) {
		return nil, errors.New("cannot serialize")
	}
	return []byte(e.MessageTemplate), nil
}

func (templateFormatter) Name() string { return "template" }

func newTestLogger() *log.Logger {
	return log.NewLogger()
}

func sized(tag string, n int) core.LogEvent {
	body := tag + strings.Repeat(".", n-len(tag))
	return core.NewEvent(time.Unix(0, 0), core.LevelInformation, body, nil)
}

func fill(events ...core.LogEvent) *queue.Queue {
	q := queue.New()
	for _, e := range events {
		q.Append(e)
	}
	return q
}

func TestBuilder_Take(t *testing.T) {
	overhead := format.EnvelopeOverhead()

	t.Run("ThreeEventsTwoFit", func(t *testing.T) {
		b := NewBuilder(Limits{BatchPayloadLimit: 250, EventBodyLimit: 200}, templateFormatter{}, newTestLogger())
		q := fill(sized("e1", 100), sized("e2", 100), sized("e3", 100))

		batch := b.Take(q)
		require.Equal(t, 2, batch.Consumed)
		require.Len(t, batch.Payloads, 2)
		assert.True(t, strings.HasPrefix(string(batch.Payloads[0]), "e1"))
		assert.True(t, strings.HasPrefix(string(batch.Payloads[1]), "e2"))
		assert.Equal(t, overhead+100+1+100, batch.Size)
		assert.Equal(t, 3, q.Len(), "Take must not remove events")

		q.RemoveFront(batch.Consumed)
		batch = b.Take(q)
		assert.Equal(t, 1, batch.Consumed)
		assert.True(t, strings.HasPrefix(string(batch.Payloads[0]), "e3"))
	})

	t.Run("EmptyQueue", func(t *testing.T) {
		b := NewBuilder(Limits{BatchPayloadLimit: 250, EventBodyLimit: 200}, templateFormatter{}, newTestLogger())
		batch := b.Take(queue.New())
		assert.Equal(t, 0, batch.Consumed)
		assert.Empty(t, batch.Payloads)
	})

	t.Run("OversizedEventBecomesPlaceholder", func(t *testing.T) {
		b := NewBuilder(Limits{BatchPayloadLimit: 1000, EventBodyLimit: 100, PlaceholderPrefixLen: 5}, templateFormatter{}, newTestLogger())
		q := fill(sized("small", 50), sized("BIGGG", 400), sized("after", 50))

		batch := b.Take(q)
		require.Equal(t, 3, batch.Consumed)
		assert.Equal(t, 1, batch.Placeholders)
		assert.Equal(t, "(Event too large) BIGGG...", string(batch.Payloads[1]))
		for _, p := range batch.Payloads {
			assert.LessOrEqual(t, len(p), 100)
		}
	})

	t.Run("SingleEventOverBatchLimitStillProgresses", func(t *testing.T) {
		// Placeholder form is larger than the whole batch budget
		b := NewBuilder(Limits{BatchPayloadLimit: 20, EventBodyLimit: 10, PlaceholderPrefixLen: 64}, templateFormatter{}, newTestLogger())
		q := fill(sized("huge", 500), sized("next", 5))

		batch := b.Take(q)
		assert.Equal(t, 1, batch.Consumed)
		assert.Equal(t, 1, batch.Placeholders)
		require.Len(t, batch.Payloads, 1)
	})

	t.Run("FormatterErrorUsesPlaceholder", func(t *testing.T) {
		b := NewBuilder(Limits{BatchPayloadLimit: 1000, EventBodyLimit: 100, PlaceholderPrefixLen: 3}, templateFormatter{failOn: "bad"}, newTestLogger())
		q := fill(sized("bad-one", 20), sized("good", 20))

		batch := b.Take(q)
		require.Equal(t, 2, batch.Consumed)
		assert.Equal(t, 1, batch.Placeholders)
		assert.Equal(t, "(Event too large) bad...", string(batch.Payloads[0]))
	})

	t.Run("UnserializablePlaceholderIsSkipped", func(t *testing.T) {
		// Placeholder templates start with "(Event", make those fail too
		b := NewBuilder(Limits{BatchPayloadLimit: 1000, EventBodyLimit: 100}, templateFormatter{failOn: "("}, newTestLogger())
		q := fill(core.NewEvent(time.Unix(0, 0), core.LevelError, "(broken", nil), sized("good", 20))

		batch := b.Take(q)
		assert.Equal(t, 2, batch.Consumed)
		require.Len(t, batch.Payloads, 1)
		assert.True(t, strings.HasPrefix(string(batch.Payloads[0]), "good"))
	})
}

func TestBuilder_Properties(t *testing.T) {
	const (
		batchLimit = 600
		eventLimit = 150
	)
	rng := rand.New(rand.NewSource(7))
	b := NewBuilder(Limits{BatchPayloadLimit: batchLimit, EventBodyLimit: eventLimit, PlaceholderPrefixLen: 8}, templateFormatter{}, newTestLogger())

	q := queue.New()
	var want []string
	for i := 0; i < 300; i++ {
		tag := fmt.Sprintf("#%03d", i)
		q.Append(sized(tag, 5+rng.Intn(300)))
		want = append(want, tag)
	}

	var got []string
	for q.Len() > 0 {
		before := q.Len()
		batch := b.Take(q)

		require.Greater(t, batch.Consumed, 0, "no progress with %d queued", before)
		assert.LessOrEqual(t, len(format.Envelope(batch.Payloads)), batchLimit)
		assert.Equal(t, len(format.Envelope(batch.Payloads)), batch.Size)

		for _, p := range batch.Payloads {
			assert.LessOrEqual(t, len(p), eventLimit)
			s := string(p)
			s = strings.TrimPrefix(s, "(Event too large) ")
			got = append(got, s[:4])
		}
		q.RemoveFront(batch.Consumed)
	}

	assert.Equal(t, want, got, "events must leave in FIFO order")
}

func TestBuilder_JSONFormatter(t *testing.T) {
	logger := newTestLogger()
	b := NewBuilder(Limits{BatchPayloadLimit: 4096, EventBodyLimit: 512, PlaceholderPrefixLen: 16}, format.NewJSONFormatter(logger), logger)

	q := fill(
		core.NewEvent(time.Unix(0, 0).UTC(), core.LevelInformation, "Hello {Name}", map[string]any{"Name": "world"}),
		core.NewEvent(time.Unix(0, 0).UTC(), core.LevelError, strings.Repeat("z", 2000), nil),
	)

	batch := b.Take(q)
	require.Equal(t, 2, batch.Consumed)
	assert.Equal(t, 1, batch.Placeholders)

	body := string(format.Envelope(batch.Payloads))
	assert.Contains(t, body, `"MessageTemplate":"Hello {Name}"`)
	assert.Contains(t, body, `"EventBodyLimit":512`)
	assert.Contains(t, body, `"Level":"Error"`)
}

func TestBuilder_PlaceholderFitsEventLimit(t *testing.T) {
	const eventLimit = core.MinEventBodyLimit
	b := NewBuilder(Limits{
		BatchPayloadLimit:    4096,
		EventBodyLimit:       eventLimit,
		PlaceholderPrefixLen: 200,
	}, format.NewJSONFormatter(newTestLogger()), newTestLogger())

	ascii := core.NewEvent(time.Unix(0, 0).UTC(), core.LevelWarning, strings.Repeat("a", 400), nil)
	wide := core.NewEvent(time.Unix(0, 0).UTC(), core.LevelError, strings.Repeat("é", 400), nil)
	q := fill(ascii, wide)

	batch := b.Take(q)
	require.Equal(t, 2, batch.Consumed)
	assert.Equal(t, 2, batch.Placeholders)
	for _, p := range batch.Payloads {
		assert.LessOrEqual(t, len(p), eventLimit)
		assert.Contains(t, string(p), "(Event too large) ")
	}
	assert.Contains(t, string(batch.Payloads[0]), "(Event too large) aaa")
}

type panicFormatter struct{}

func (panicFormatter) Format(e core.LogEvent) ([]byte, error) {
	if strings.HasPrefix(e.MessageTemplate, "boom") {
		panic("property exploded")
	}
	return []byte(e.MessageTemplate), nil
}

func (panicFormatter) Name() string { return "panic" }

func TestBuilder_FormatterPanicUsesPlaceholder(t *testing.T) {
	b := NewBuilder(Limits{BatchPayloadLimit: 1000, EventBodyLimit: 100, PlaceholderPrefixLen: 4}, panicFormatter{}, newTestLogger())
	q := fill(sized("boom", 20), sized("fine", 20))

	var batch Batch
	require.NotPanics(t, func() { batch = b.Take(q) })
	require.Equal(t, 2, batch.Consumed)
	assert.Equal(t, 1, batch.Placeholders)
	assert.Equal(t, "(Event too large) boom...", string(batch.Payloads[0]))
}
