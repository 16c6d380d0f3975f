// FILE: logship/src/internal/config/config.go
package config

// Config is the top-level configuration of the logship command.
type Config struct {
	// Delivery engine settings
	Shipper ShipperConfig `toml:"shipper"`

	// Diagnostic logging of logship itself
	Logging *LogConfig `toml:"logging"`

	// Inputs feeding the shipper
	Sources SourcesConfig `toml:"sources"`

	// Regex selection applied to source events, in order
	Filters []FilterConfig `toml:"filters"`

	// Ingress rate limiting between sources and the shipper
	RateLimit *RateLimitConfig `toml:"rate_limit"`

	// Status and metrics HTTP endpoint
	Status StatusConfig `toml:"status"`

	// Upper bound on the drain performed at shutdown
	ShutdownTimeoutMS int64 `toml:"shutdown_timeout_ms"`

	// Ship a startup and a shutdown event of logship itself
	AnnounceLifecycle bool `toml:"announce_lifecycle"`

	// Interval of the diagnostic status report, 0 disables it
	StatusReportIntervalMS int64 `toml:"status_report_interval_ms"`

	// Runtime flags, never read from file
	ConfigFile  string `toml:"-"`
	Quiet       bool   `toml:"-"`
	ShowVersion bool   `toml:"-"`
}

// SourcesConfig selects the line sources of the command.
type SourcesConfig struct {
	Stdin StdinSourceOptions `toml:"stdin"`
	TCP   TCPSourceOptions   `toml:"tcp"`
}

// StdinSourceOptions configures reading log lines from standard input.
type StdinSourceOptions struct {
	Enabled bool `toml:"enabled"`
	// Read stdin even when it is an interactive terminal
	AllowTerminal bool  `toml:"allow_terminal"`
	BufferSize    int64 `toml:"buffer_size"`
}

// TCPSourceOptions configures the newline-delimited TCP listener.
type TCPSourceOptions struct {
	Enabled    bool   `toml:"enabled"`
	Host       string `toml:"host"`
	Port       int64  `toml:"port"`
	BufferSize int64  `toml:"buffer_size"`
	// Longest accepted line; longer lines close the connection
	MaxLineBytes int64 `toml:"max_line_bytes"`
}

// StatusConfig configures the status/metrics server.
type StatusConfig struct {
	Enabled     bool   `toml:"enabled"`
	Host        string `toml:"host"`
	Port        int64  `toml:"port"`
	StatusPath  string `toml:"status_path"`
	MetricsPath string `toml:"metrics_path"`
}
