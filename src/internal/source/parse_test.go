package source

import (
	"testing"
	"time"

	"logship/src/internal/core"

	"github.com/stretchr/testify/assert"
)

var now = time.Date(2025, 3, 4, 5, 6, 7, 0, time.UTC)

func TestParseLine_PlainText(t *testing.T) {
	tests := []struct {
		name     string
		line     string
		level    core.Level
		template string
	}{
		{"no level", "server started", core.LevelInformation, "server started"},
		{"leading word", "ERROR database unreachable", core.LevelError, "ERROR database unreachable"},
		{"bracketed", "2025-01-01 [WARN] disk 91%", core.LevelWarning, "2025-01-01 [WARN] disk 91%"},
		{"colon", "app DEBUG: cache miss", core.LevelDebug, "app DEBUG: cache miss"},
		{"fatal", "[FATAL] out of memory", core.LevelFatal, "[FATAL] out of memory"},
		{"trace", "TRACE enter handler", core.LevelVerbose, "TRACE enter handler"},
		{"braces escaped", "user {id} missing", core.LevelInformation, "user {{id}} missing"},
		{"invalid json", "{not json", core.LevelInformation, "{{not json"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := ParseLine([]byte(tt.line), now, "stdin")
			assert.Equal(t, tt.level, e.Level)
			assert.Equal(t, tt.template, e.MessageTemplate)
			assert.Equal(t, now, e.Timestamp)
			assert.Equal(t, "stdin", e.Properties["Source"])
		})
	}
}

func TestParseLine_JSONFullKeys(t *testing.T) {
	line := `{"Timestamp":"2024-12-31T23:59:59.5Z","Level":"Warning","MessageTemplate":"Disk {Pct}% full","Exception":"boom","Pct":91,"Properties":{"Host":"db1","Pct":50}}`
	e := ParseLine([]byte(line), now, "tcp")

	assert.Equal(t, time.Date(2024, 12, 31, 23, 59, 59, 500000000, time.UTC), e.Timestamp)
	assert.Equal(t, core.LevelWarning, e.Level)
	assert.Equal(t, "Disk {Pct}% full", e.MessageTemplate)
	assert.Equal(t, "boom", e.Exception)
	assert.Equal(t, float64(91), e.Properties["Pct"], "top-level keys win over nested")
	assert.Equal(t, "db1", e.Properties["Host"])
	assert.Equal(t, "tcp", e.Properties["Source"])
	assert.NotContains(t, e.Properties, "Properties")
	assert.NotContains(t, e.Properties, "Level")
}

func TestParseLine_JSONCompactKeys(t *testing.T) {
	line := `{"@t":"2025-01-02T03:04:05Z","@l":"err","@mt":"Failed {Op}","@x":"trace","Op":"save","Source":"app"}`
	e := ParseLine([]byte(line), now, "tcp")

	assert.Equal(t, time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC), e.Timestamp)
	assert.Equal(t, core.LevelError, e.Level)
	assert.Equal(t, "Failed {Op}", e.MessageTemplate)
	assert.Equal(t, "trace", e.Exception)
	assert.Equal(t, "save", e.Properties["Op"])
	assert.Equal(t, "app", e.Properties["Source"], "existing Source is kept")
}

func TestParseLine_JSONRenderedMessage(t *testing.T) {
	e := ParseLine([]byte(`{"msg":"map {a:1}","level":"debug"}`), now, "")
	assert.Equal(t, "map {{a:1}}", e.MessageTemplate)
	assert.Equal(t, core.LevelDebug, e.Level)
	assert.NotContains(t, e.Properties, "Source")
}

func TestParseLine_JSONBadFieldsKept(t *testing.T) {
	e := ParseLine([]byte(`{"Timestamp":"yesterday","Level":"loud","MessageTemplate":7}`), now, "")

	assert.Equal(t, now, e.Timestamp)
	assert.Equal(t, core.LevelInformation, e.Level)
	assert.Empty(t, e.MessageTemplate)
	assert.Equal(t, "yesterday", e.Properties["Timestamp"])
	assert.Equal(t, "loud", e.Properties["Level"])
	assert.Equal(t, float64(7), e.Properties["MessageTemplate"])
}
