// FILE: logship/src/cmd/logship/status.go
package main

import (
	"context"
	"time"
)

// statusReporter periodically logs shipper progress at debug level.
func statusReporter(ctx context.Context, a *app, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			reportStatus(a)
		}
	}
}

func reportStatus(a *app) {
	defer func() {
		if r := recover(); r != nil {
			a.logger.Error("msg", "Panic in status reporter",
				"component", "status_reporter",
				"panic", r)
		}
	}()

	st := a.shipper.Stats()
	fields := []any{
		"msg", "Status report",
		"component", "status_reporter",
		"state", st.State.String(),
		"pending", st.Pending,
		"sent", st.Sent,
		"dropped", st.Dropped,
		"retries", st.Retries,
	}

	if st.Rejected > 0 {
		fields = append(fields, "rejected", st.Rejected)
	}
	if st.Placeholders > 0 {
		fields = append(fields, "placeholders", st.Placeholders)
	}
	for name, src := range a.sources {
		stats := src.GetStats()
		fields = append(fields, name+"_entries", stats.TotalEntries)
		if stats.DroppedEntries > 0 {
			fields = append(fields, name+"_dropped", stats.DroppedEntries)
		}
	}

	a.logger.Debug(fields...)
}
