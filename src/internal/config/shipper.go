// FILE: logship/src/internal/config/shipper.go
package config

import (
	"time"

	"logship/src/internal/core"
)

// ShipperConfig holds the resolved delivery settings. It is treated as
// immutable once a shipper has been built from it.
type ShipperConfig struct {
	// Base URL of the ingestion service; the ingest path is appended
	Endpoint string `toml:"endpoint"`
	// Optional credential sent in the API key header
	APIKey string `toml:"api_key"`

	// Ceiling on one enveloped batch body, in bytes
	BatchPayloadLimit int64 `toml:"batch_payload_limit"`
	// Ceiling on one serialized event, in bytes
	EventBodyLimit int64 `toml:"event_body_limit"`

	// Attempts per batch before it is dropped
	MaxRetries int64 `toml:"max_retries"`
	// Fixed wait between attempts
	RetryDelayMS int64 `toml:"retry_delay_ms"`
	// Per-attempt network timeout
	SendTimeoutMS int64 `toml:"send_timeout_ms"`
	// Coalescing window between the first emit and the send
	DebounceMS int64 `toml:"debounce_ms"`

	// Characters of an oversized event's template kept in its placeholder
	PlaceholderPrefixLen int64 `toml:"placeholder_prefix_len"`

	// Skip server certificate verification on https endpoints
	InsecureSkipVerify bool `toml:"insecure_skip_verify"`
}

// DefaultShipperConfig returns the delivery defaults.
func DefaultShipperConfig() ShipperConfig {
	return ShipperConfig{
		BatchPayloadLimit:    core.DefaultBatchPayloadLimit,
		EventBodyLimit:       core.DefaultEventBodyLimit,
		MaxRetries:           core.DefaultMaxRetries,
		RetryDelayMS:         core.DefaultRetryDelay.Milliseconds(),
		SendTimeoutMS:        core.DefaultSendTimeout.Milliseconds(),
		DebounceMS:           core.DefaultDebounceDelay.Milliseconds(),
		PlaceholderPrefixLen: core.DefaultPlaceholderPrefixLen,
	}
}

// WithDefaults returns a copy where every unset (zero or negative) numeric
// field takes its default. Caller-supplied values win.
func (c ShipperConfig) WithDefaults() ShipperConfig {
	d := DefaultShipperConfig()
	if c.BatchPayloadLimit <= 0 {
		c.BatchPayloadLimit = d.BatchPayloadLimit
	}
	if c.EventBodyLimit <= 0 {
		c.EventBodyLimit = d.EventBodyLimit
	}
	if c.MaxRetries <= 0 {
		c.MaxRetries = d.MaxRetries
	}
	if c.RetryDelayMS <= 0 {
		c.RetryDelayMS = d.RetryDelayMS
	}
	if c.SendTimeoutMS <= 0 {
		c.SendTimeoutMS = d.SendTimeoutMS
	}
	if c.DebounceMS <= 0 {
		c.DebounceMS = d.DebounceMS
	}
	if c.PlaceholderPrefixLen <= 0 {
		c.PlaceholderPrefixLen = d.PlaceholderPrefixLen
	}
	return c
}

func (c ShipperConfig) RetryDelay() time.Duration {
	return time.Duration(c.RetryDelayMS) * time.Millisecond
}

func (c ShipperConfig) SendTimeout() time.Duration {
	return time.Duration(c.SendTimeoutMS) * time.Millisecond
}

func (c ShipperConfig) Debounce() time.Duration {
	return time.Duration(c.DebounceMS) * time.Millisecond
}

// IngestURL returns the endpoint with the ingest path appended.
func (c ShipperConfig) IngestURL() string {
	base := c.Endpoint
	for len(base) > 0 && base[len(base)-1] == '/' {
		base = base[:len(base)-1]
	}
	return base + core.IngestPath
}
