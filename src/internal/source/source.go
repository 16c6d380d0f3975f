// FILE: logship/src/internal/source/source.go
package source

import (
	"time"

	"logship/src/internal/core"
)

// Source reads log lines from an input and publishes them as events
type Source interface {
	// Subscribe returns a channel that receives parsed events
	Subscribe() <-chan core.LogEvent

	// Start begins reading from the source
	Start() error

	// Stop gracefully shuts down the source and closes subscriber channels
	Stop()

	// GetStats returns source statistics
	GetStats() SourceStats
}

// SourceStats contains statistics about a source
type SourceStats struct {
	Type           string
	TotalEntries   uint64
	DroppedEntries uint64
	StartTime      time.Time
	LastEntryTime  time.Time
	Details        map[string]any
}

// Map returns the stats in the form used by status output.
func (s SourceStats) Map() map[string]any {
	return map[string]any{
		"type":            s.Type,
		"total_entries":   s.TotalEntries,
		"dropped_entries": s.DroppedEntries,
		"start_time":      s.StartTime,
		"last_entry_time": s.LastEntryTime,
		"details":         s.Details,
	}
}
