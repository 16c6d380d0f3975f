// FILE: logship/src/internal/format/json.go
package format

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"

	"logship/src/internal/core"

	"github.com/lixenwraith/log"
)

// wireEvent fixes the field order of a serialized event.
type wireEvent struct {
	Timestamp       string         `json:"Timestamp"`
	Level           string         `json:"Level"`
	MessageTemplate string         `json:"MessageTemplate"`
	Exception       string         `json:"Exception,omitempty"`
	Properties      map[string]any `json:"Properties,omitempty"`
}

// JSONFormatter produces the ingestion endpoint's raw event JSON.
type JSONFormatter struct {
	logger *log.Logger
}

// NewJSONFormatter creates a JSON event formatter.
func NewJSONFormatter(logger *log.Logger) *JSONFormatter {
	if logger == nil {
		logger = log.NewLogger()
	}
	return &JSONFormatter{logger: logger}
}

// Format serializes an event. Property values go through Sanitize first,
// so values that encoding/json rejects are replaced instead of failing
// the whole event.
func (f *JSONFormatter) Format(event core.LogEvent) ([]byte, error) {
	w := wireEvent{
		Timestamp:       event.Timestamp.Format(time.RFC3339Nano),
		Level:           event.Level.String(),
		MessageTemplate: event.MessageTemplate,
		Exception:       event.Exception,
		Properties:      SanitizeProperties(event.Properties),
	}

	out, err := marshal(w)
	if err == nil {
		return out, nil
	}

	f.logger.Debug("msg", "Event properties failed to serialize, replacing",
		"component", "json_formatter",
		"error", err)

	w.Properties = map[string]any{"SerializationError": err.Error()}
	out, err = marshal(w)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal JSON: %w", err)
	}
	return out, nil
}

// Name returns the formatter's type name.
func (f *JSONFormatter) Name() string {
	return "json"
}

func marshal(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}
