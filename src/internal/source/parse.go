// FILE: logship/src/internal/source/parse.go
package source

import (
	"bytes"
	"encoding/json"
	"strings"
	"time"

	"logship/src/internal/core"
)

// Keys recognised in JSON lines, full form first, then compact form
var (
	timestampKeys = []string{"Timestamp", "@t", "time", "timestamp"}
	levelKeys     = []string{"Level", "@l", "level"}
	templateKeys  = []string{"MessageTemplate", "@mt", "Message", "@m", "message", "msg"}
	exceptionKeys = []string{"Exception", "@x"}
)

var braceEscaper = strings.NewReplacer("{", "{{", "}", "}}")

// ParseLine turns one input line into an event. JSON objects carry their
// own timestamp, level, template and properties; anything else becomes an
// event whose template is the escaped line and whose level is taken from
// a level word in the line. origin is recorded as the Source property.
func ParseLine(line []byte, now time.Time, origin string) core.LogEvent {
	trimmed := bytes.TrimSpace(line)
	if len(trimmed) > 0 && trimmed[0] == '{' {
		var fields map[string]any
		if err := json.Unmarshal(trimmed, &fields); err == nil {
			return fromJSON(fields, now, origin)
		}
	}
	return fromText(string(trimmed), now, origin)
}

func fromText(line string, now time.Time, origin string) core.LogEvent {
	level, ok := detectLevel(line)
	if !ok {
		level = core.LevelInformation
	}
	props := map[string]any{}
	if origin != "" {
		props["Source"] = origin
	}
	return core.NewEvent(now, level, braceEscaper.Replace(line), props)
}

func fromJSON(fields map[string]any, now time.Time, origin string) core.LogEvent {
	event := core.LogEvent{
		Timestamp: now,
		Level:     core.LevelInformation,
	}

	if key, raw, ok := take(fields, timestampKeys); ok {
		if s, isStr := raw.(string); isStr {
			if ts, err := time.Parse(time.RFC3339Nano, s); err == nil {
				event.Timestamp = ts
			} else {
				fields[key] = raw
			}
		} else {
			fields[key] = raw
		}
	}

	if key, raw, ok := take(fields, levelKeys); ok {
		s, _ := raw.(string)
		if level, err := core.ParseLevel(s); err == nil {
			event.Level = level
		} else {
			fields[key] = raw
		}
	}

	if key, raw, ok := take(fields, templateKeys); ok {
		if s, isStr := raw.(string); isStr {
			event.MessageTemplate = s
			if key == "Message" || key == "@m" || key == "message" || key == "msg" {
				event.MessageTemplate = braceEscaper.Replace(s)
			}
		} else {
			fields[key] = raw
		}
	}

	if key, raw, ok := take(fields, exceptionKeys); ok {
		if s, isStr := raw.(string); isStr {
			event.Exception = s
		} else {
			fields[key] = raw
		}
	}

	// A nested Properties object is flattened; top-level keys win
	props := make(map[string]any, len(fields)+1)
	if nested, ok := fields["Properties"].(map[string]any); ok {
		delete(fields, "Properties")
		for k, v := range nested {
			props[k] = v
		}
	}
	for k, v := range fields {
		props[k] = v
	}
	if _, exists := props["Source"]; !exists && origin != "" {
		props["Source"] = origin
	}
	event.Properties = props

	return event
}

// take removes and returns the first present key.
func take(fields map[string]any, keys []string) (string, any, bool) {
	for _, k := range keys {
		if v, ok := fields[k]; ok {
			delete(fields, k)
			return k, v, true
		}
	}
	return "", nil, false
}

// detectLevel looks for a level marker such as "[ERROR]", "WARN:" or a
// leading level word.
func detectLevel(line string) (core.Level, bool) {
	patterns := []struct {
		patterns []string
		level    core.Level
	}{
		{[]string{"[FATAL]", "FATAL:", " FATAL ", "[FTL]", "[CRITICAL]", "CRITICAL:"}, core.LevelFatal},
		{[]string{"[ERROR]", "ERROR:", " ERROR ", "ERR:", "[ERR]", "[EROR]"}, core.LevelError},
		{[]string{"[WARN]", "WARN:", " WARN ", "WARNING:", "[WARNING]", "[WRN]"}, core.LevelWarning},
		{[]string{"[INFO]", "INFO:", " INFO ", "[INF]", "INF:"}, core.LevelInformation},
		{[]string{"[DEBUG]", "DEBUG:", " DEBUG ", "[DBG]", "DBG:"}, core.LevelDebug},
		{[]string{"[TRACE]", "TRACE:", " TRACE ", "[VERBOSE]", "[VRB]"}, core.LevelVerbose},
	}

	upperLine := strings.ToUpper(line)

	// A bare leading level word: "ERROR something failed"
	if word, _, found := strings.Cut(upperLine, " "); found {
		if level, err := core.ParseLevel(strings.Trim(word, "[]:")); err == nil {
			return level, true
		}
	}

	for _, group := range patterns {
		for _, pattern := range group.patterns {
			if strings.Contains(upperLine, pattern) {
				return group.level, true
			}
		}
	}

	return core.LevelInformation, false
}
