// FILE: logship/src/internal/config/validation.go
package config

import (
	"fmt"
	"net/url"
	"slices"
	"strings"

	"logship/src/internal/core"
)

// validateConfig checks the whole configuration and fills the few
// defaults that depend on other fields.
func validateConfig(cfg *Config) error {
	if cfg == nil {
		return fmt.Errorf("config is nil")
	}

	if err := ValidateShipper(&cfg.Shipper); err != nil {
		return fmt.Errorf("shipper config: %w", err)
	}

	if cfg.Logging == nil {
		cfg.Logging = DefaultLogConfig()
	}
	if err := validateLogConfig(cfg.Logging); err != nil {
		return fmt.Errorf("logging config: %w", err)
	}

	if err := validateSources(&cfg.Sources); err != nil {
		return fmt.Errorf("sources config: %w", err)
	}

	if err := validateFilters(cfg.Filters); err != nil {
		return err
	}

	if err := validateRateLimit(cfg.RateLimit); err != nil {
		return fmt.Errorf("rate_limit config: %w", err)
	}

	if err := validateStatus(&cfg.Status, &cfg.Sources); err != nil {
		return fmt.Errorf("status config: %w", err)
	}

	if cfg.ShutdownTimeoutMS <= 0 {
		return fmt.Errorf("shutdown_timeout_ms must be positive: %d", cfg.ShutdownTimeoutMS)
	}

	if cfg.StatusReportIntervalMS < 0 {
		return fmt.Errorf("status_report_interval_ms cannot be negative: %d", cfg.StatusReportIntervalMS)
	}

	return nil
}

// ValidateShipper checks delivery settings. The shipper itself does not
// validate; this is the config layer's responsibility.
func ValidateShipper(c *ShipperConfig) error {
	if strings.TrimSpace(c.Endpoint) == "" {
		return fmt.Errorf("endpoint is required")
	}

	parsedURL, err := url.Parse(c.Endpoint)
	if err != nil {
		return fmt.Errorf("invalid endpoint URL: %w", err)
	}
	if parsedURL.Scheme != "http" && parsedURL.Scheme != "https" {
		return fmt.Errorf("endpoint must use http or https scheme: %s", c.Endpoint)
	}
	if parsedURL.Host == "" {
		return fmt.Errorf("endpoint has no host: %s", c.Endpoint)
	}

	if c.BatchPayloadLimit <= 0 {
		return fmt.Errorf("batch_payload_limit must be positive: %d", c.BatchPayloadLimit)
	}
	if c.EventBodyLimit < core.MinEventBodyLimit {
		return fmt.Errorf("event_body_limit must be at least %d: %d", core.MinEventBodyLimit, c.EventBodyLimit)
	}
	if c.EventBodyLimit >= c.BatchPayloadLimit {
		return fmt.Errorf("event_body_limit (%d) must be smaller than batch_payload_limit (%d)",
			c.EventBodyLimit, c.BatchPayloadLimit)
	}
	if c.MaxRetries < 1 {
		return fmt.Errorf("max_retries must be at least 1: %d", c.MaxRetries)
	}
	if c.RetryDelayMS < 0 {
		return fmt.Errorf("retry_delay_ms cannot be negative: %d", c.RetryDelayMS)
	}
	if c.SendTimeoutMS <= 0 {
		return fmt.Errorf("send_timeout_ms must be positive: %d", c.SendTimeoutMS)
	}
	if c.DebounceMS < 0 {
		return fmt.Errorf("debounce_ms cannot be negative: %d", c.DebounceMS)
	}
	if c.PlaceholderPrefixLen < 0 {
		return fmt.Errorf("placeholder_prefix_len cannot be negative: %d", c.PlaceholderPrefixLen)
	}

	return nil
}

// LogOutputs lists the accepted logging.output values.
var LogOutputs = []string{"stderr", "stdout", "split", "file", "both", "none"}

func validateLogConfig(cfg *LogConfig) error {
	if !slices.Contains(LogOutputs, cfg.Output) {
		return fmt.Errorf("invalid log output mode %q (valid: %s)", cfg.Output, strings.Join(LogOutputs, ", "))
	}

	switch cfg.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("invalid log level: %s", cfg.Level)
	}

	if cfg.WritesFile() {
		if strings.TrimSpace(cfg.Directory) == "" {
			return fmt.Errorf("directory is required for output %q", cfg.Output)
		}
		if cfg.MaxSizeMB <= 0 || cfg.MaxTotalSizeMB < cfg.MaxSizeMB {
			return fmt.Errorf("max_total_size_mb (%d) must be at least max_size_mb (%d) and both positive",
				cfg.MaxTotalSizeMB, cfg.MaxSizeMB)
		}
		if cfg.RetentionHours < 0 {
			return fmt.Errorf("retention_hours cannot be negative: %g", cfg.RetentionHours)
		}
	}

	return nil
}

func validateSources(cfg *SourcesConfig) error {
	if cfg.Stdin.Enabled {
		if cfg.Stdin.BufferSize < 0 {
			return fmt.Errorf("stdin: buffer_size must be positive")
		} else if cfg.Stdin.BufferSize == 0 {
			cfg.Stdin.BufferSize = 1000
		}
	}

	if cfg.TCP.Enabled {
		if err := validatePort(cfg.TCP.Port); err != nil {
			return fmt.Errorf("tcp: %w", err)
		}
		if cfg.TCP.Host == "" {
			cfg.TCP.Host = "0.0.0.0"
		}
		if cfg.TCP.BufferSize < 0 {
			return fmt.Errorf("tcp: buffer_size must be positive")
		} else if cfg.TCP.BufferSize == 0 {
			cfg.TCP.BufferSize = 1000
		}
		if cfg.TCP.MaxLineBytes <= 0 {
			cfg.TCP.MaxLineBytes = 1024 * 1024
		}
	}

	if !cfg.Stdin.Enabled && !cfg.TCP.Enabled {
		return fmt.Errorf("no sources enabled")
	}

	return nil
}

func validateRateLimit(cfg *RateLimitConfig) error {
	if cfg == nil {
		return nil
	}

	if cfg.Rate < 0 {
		return fmt.Errorf("rate cannot be negative")
	}

	if cfg.Burst < 0 {
		return fmt.Errorf("burst cannot be negative")
	}

	switch strings.ToLower(cfg.Policy) {
	case "", "pass", "drop":
	default:
		return fmt.Errorf("invalid rate limit policy '%s' (must be 'pass' or 'drop')", cfg.Policy)
	}

	return nil
}

func validateStatus(cfg *StatusConfig, sources *SourcesConfig) error {
	if !cfg.Enabled {
		return nil
	}

	if err := validatePort(cfg.Port); err != nil {
		return err
	}
	if sources.TCP.Enabled && sources.TCP.Port == cfg.Port {
		return fmt.Errorf("port %d already used by the tcp source", cfg.Port)
	}

	if cfg.StatusPath == "" {
		cfg.StatusPath = "/status"
	}
	if cfg.MetricsPath == "" {
		cfg.MetricsPath = "/metrics"
	}
	for _, p := range []string{cfg.StatusPath, cfg.MetricsPath} {
		if !strings.HasPrefix(p, "/") {
			return fmt.Errorf("path must start with /: %s", p)
		}
	}
	if cfg.StatusPath == cfg.MetricsPath {
		return fmt.Errorf("status_path and metrics_path must differ")
	}

	return nil
}

func validatePort(port int64) error {
	if port < 1 || port > 65535 {
		return fmt.Errorf("port must be between 1 and 65535: %d", port)
	}
	return nil
}
