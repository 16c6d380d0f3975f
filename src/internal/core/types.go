// FILE: logship/src/internal/core/types.go
package core

import (
	"fmt"
	"strings"
)

// Level is the ordinal severity of a LogEvent
type Level int

const (
	LevelVerbose Level = iota
	LevelDebug
	LevelInformation
	LevelWarning
	LevelError
	LevelFatal
)

var levelNames = [...]string{
	LevelVerbose:     "Verbose",
	LevelDebug:       "Debug",
	LevelInformation: "Information",
	LevelWarning:     "Warning",
	LevelError:       "Error",
	LevelFatal:       "Fatal",
}

// String returns the level name used on the wire.
func (l Level) String() string {
	if l < LevelVerbose || l > LevelFatal {
		return fmt.Sprintf("Level(%d)", int(l))
	}
	return levelNames[l]
}

// ParseLevel accepts the wire names plus the common short forms
// (trace, info, warn, err, critical, ...), case-insensitive.
func ParseLevel(s string) (Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "verbose", "trace", "vrb":
		return LevelVerbose, nil
	case "debug", "dbg":
		return LevelDebug, nil
	case "information", "info", "inf":
		return LevelInformation, nil
	case "warning", "warn", "wrn":
		return LevelWarning, nil
	case "error", "err", "eror":
		return LevelError, nil
	case "fatal", "critical", "crit", "ftl":
		return LevelFatal, nil
	default:
		return LevelInformation, fmt.Errorf("unknown level: %q", s)
	}
}
