// FILE: logship/src/internal/format/placeholder.go
package format

import (
	"logship/src/internal/core"
)

const placeholderPrefix = "(Event too large) "

// Placeholder builds the stand-in for an event whose serialized body is
// over the limit. Timestamp and level are kept, the template is cut to
// its first prefixLen characters, every other property and the exception
// are dropped.
func Placeholder(event core.LogEvent, bodySize, bodyLimit, prefixLen int) core.LogEvent {
	return core.LogEvent{
		Timestamp:       event.Timestamp,
		Level:           event.Level,
		MessageTemplate: placeholderPrefix + truncate(event.MessageTemplate, prefixLen),
		Properties: map[string]any{
			"EventBodySize":  bodySize,
			"EventBodyLimit": bodyLimit,
		},
	}
}

func truncate(s string, n int) string {
	if n <= 0 {
		return ""
	}
	count := 0
	for i := range s {
		if count == n {
			return s[:i] + "..."
		}
		count++
	}
	return s
}
