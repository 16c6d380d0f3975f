// FILE: logship/src/internal/config/logging.go
package config

// LogConfig controls logship's own diagnostics. These never travel to
// the ingestion endpoint.
type LogConfig struct {
	// "stderr", "stdout", "split" (warnings and errors to stderr, the rest
	// to stdout), "file", "both" (file plus stderr) or "none"
	Output string `toml:"output"`
	Level  string `toml:"level"`

	// Rotated log files, used by "file" and "both". Files are named
	// logship-*.log.
	Directory      string  `toml:"directory"`
	MaxSizeMB      int64   `toml:"max_size_mb"`
	MaxTotalSizeMB int64   `toml:"max_total_size_mb"`
	RetentionHours float64 `toml:"retention_hours"`
}

// DefaultLogConfig keeps diagnostics on stderr so stdout stays free for
// whatever logship is piped into.
func DefaultLogConfig() *LogConfig {
	return &LogConfig{
		Output:         "stderr",
		Level:          "info",
		Directory:      "./log",
		MaxSizeMB:      100,
		MaxTotalSizeMB: 1000,
		RetentionHours: 168,
	}
}

// WritesFile reports whether the output mode keeps log files.
func (c *LogConfig) WritesFile() bool {
	return c.Output == "file" || c.Output == "both"
}
