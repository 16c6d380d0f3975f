// FILE: logship/src/internal/core/entry.go
package core

import "time"

// LogEvent is a single structured log record waiting to be shipped.
// Events are treated as immutable once handed to the shipper.
type LogEvent struct {
	Timestamp       time.Time
	Level           Level
	MessageTemplate string
	Properties      map[string]any
	Exception       string
}

// NewEvent builds an event stamped with the given time.
func NewEvent(ts time.Time, level Level, template string, props map[string]any) LogEvent {
	return LogEvent{
		Timestamp:       ts,
		Level:           level,
		MessageTemplate: template,
		Properties:      props,
	}
}
