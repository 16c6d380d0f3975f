// FILE: logship/src/internal/config/ratelimit.go
package config

// RateLimitPolicy defines the action to take when a rate limit is exceeded.
type RateLimitPolicy int

const (
	// PolicyPass allows all events through, effectively disabling the limiter.
	PolicyPass RateLimitPolicy = iota
	// PolicyDrop drops events that exceed the rate limit.
	PolicyDrop
)

// RateLimitConfig limits how fast source events are handed to the shipper.
type RateLimitConfig struct {
	// Rate is the number of events allowed per second. Default: 0 (disabled).
	Rate float64 `toml:"rate"`
	// Burst is the maximum number of events accepted in a short burst. Defaults to the Rate.
	Burst int64 `toml:"burst"`
	// Policy defines the action to take when the limit is exceeded. "pass" or "drop".
	Policy string `toml:"policy"`
}
