// FILE: logship/src/internal/batch/builder.go
package batch

import (
	"fmt"
	"unicode/utf8"

	"logship/src/internal/core"
	"logship/src/internal/format"

	"github.com/lixenwraith/log"
)

// Source is the read-only view of the pending queue the builder walks.
type Source interface {
	Len() int
	At(i int) core.LogEvent
}

// Limits bounds one outbound batch.
type Limits struct {
	BatchPayloadLimit    int
	EventBodyLimit       int
	PlaceholderPrefixLen int
}

// Batch is the next outbound payload selected from the front of the queue.
type Batch struct {
	// Payloads are serialized events in queue order
	Payloads [][]byte
	// Consumed is how many queued events the batch covers
	Consumed int
	// Size is the enveloped body size in bytes
	Size int
	// Placeholders counts oversized events that were substituted
	Placeholders int
}

// Builder selects queue prefixes that fit the configured limits.
type Builder struct {
	limits    Limits
	formatter format.Formatter
	logger    *log.Logger
}

// NewBuilder creates a batch builder.
func NewBuilder(limits Limits, formatter format.Formatter, logger *log.Logger) *Builder {
	if logger == nil {
		logger = log.NewLogger()
	}
	if formatter == nil {
		formatter = format.NewJSONFormatter(logger)
	}
	return &Builder{
		limits:    limits,
		formatter: formatter,
		logger:    logger,
	}
}

// Take builds the next batch from the front of src. It consumes at least
// one event whenever src is non-empty: an event that alone exceeds the
// batch limit is still sent alone, in placeholder form if it is also over
// the event limit.
func (b *Builder) Take(src Source) Batch {
	n := src.Len()
	out := Batch{Size: format.EnvelopeOverhead()}

	for i := 0; i < n; i++ {
		event := src.At(i)
		payload, substituted, ok := b.serialize(event)
		if !ok {
			// Unserializable even as a placeholder: account for it as
			// consumed so it cannot block the queue.
			if len(out.Payloads) == 0 {
				out.Consumed++
				continue
			}
			break
		}

		cost := len(payload)
		if len(out.Payloads) > 0 {
			cost++ // separator
		}

		if out.Size+cost > b.limits.BatchPayloadLimit && out.Consumed > 0 {
			break
		}

		out.Payloads = append(out.Payloads, payload)
		out.Size += cost
		out.Consumed++
		if substituted {
			out.Placeholders++
		}

		if out.Size >= b.limits.BatchPayloadLimit {
			break
		}
	}

	return out
}

// serialize formats one event, substituting a placeholder when its body
// is over EventBodyLimit.
func (b *Builder) serialize(event core.LogEvent) ([]byte, bool, bool) {
	payload, err := b.format(event)
	if err != nil {
		b.logger.Warn("msg", "Failed to serialize event, substituting placeholder",
			"component", "batch_builder",
			"error", err)
		return b.placeholder(event, 0)
	}

	if b.limits.EventBodyLimit > 0 && len(payload) > b.limits.EventBodyLimit {
		b.logger.Warn("msg", "Event body over limit, substituting placeholder",
			"component", "batch_builder",
			"event_body_size", len(payload),
			"event_body_limit", b.limits.EventBodyLimit,
			"level", event.Level.String())
		return b.placeholder(event, len(payload))
	}

	return payload, false, true
}

// placeholder substitutes the event, shortening the template prefix
// until the placeholder itself fits EventBodyLimit. With the prefix cut to
// nothing it is sent regardless, so the queue keeps moving.
func (b *Builder) placeholder(event core.LogEvent, size int) ([]byte, bool, bool) {
	limit := b.limits.EventBodyLimit
	prefix := b.limits.PlaceholderPrefixLen
	if n := utf8.RuneCountInString(event.MessageTemplate); prefix > n {
		prefix = n
	}

	for {
		p := format.Placeholder(event, size, limit, prefix)
		payload, err := b.format(p)
		if err != nil {
			b.logger.Error("msg", "Failed to serialize placeholder, dropping event",
				"component", "batch_builder",
				"error", err)
			return nil, false, false
		}

		excess := len(payload) - limit
		if limit <= 0 || excess <= 0 {
			return payload, true, true
		}
		if prefix == 0 {
			b.logger.Warn("msg", "Placeholder exceeds event body limit",
				"component", "batch_builder",
				"placeholder_size", len(payload),
				"event_body_limit", limit)
			return payload, true, true
		}

		// Every dropped rune removes at least one byte
		prefix -= excess
		if prefix < 0 {
			prefix = 0
		}
	}
}

// format runs the formatter, turning a panic in property code into an
// error so the event takes the placeholder path.
func (b *Builder) format(event core.LogEvent) (payload []byte, err error) {
	defer func() {
		if r := recover(); r != nil {
			payload, err = nil, fmt.Errorf("formatter panic: %v", r)
		}
	}()
	return b.formatter.Format(event)
}
