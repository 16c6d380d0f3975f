// FILE: logship/src/internal/format/format.go
package format

import (
	"logship/src/internal/core"
)

// Formatter serializes one LogEvent into its wire form.
type Formatter interface {
	// Format returns the serialized event without a trailing newline.
	Format(event core.LogEvent) ([]byte, error)

	// Name returns the formatter type name
	Name() string
}

// Batch envelope: {"Events":[e1,e2,...]}
const (
	envelopePrefix = `{"Events":[`
	envelopeSuffix = `]}`
)

// EnvelopeOverhead is the fixed byte cost of wrapping a batch.
func EnvelopeOverhead() int {
	return len(envelopePrefix) + len(envelopeSuffix)
}

// Envelope joins pre-serialized events into one request body.
func Envelope(payloads [][]byte) []byte {
	size := EnvelopeOverhead()
	for i, p := range payloads {
		if i > 0 {
			size++
		}
		size += len(p)
	}

	body := make([]byte, 0, size)
	body = append(body, envelopePrefix...)
	for i, p := range payloads {
		if i > 0 {
			body = append(body, ',')
		}
		body = append(body, p...)
	}
	return append(body, envelopeSuffix...)
}
