// FILE: logship/src/internal/flow/ratelimiter.go
package flow

import (
	"strings"
	"sync/atomic"
	"time"

	"logship/src/internal/config"
	"logship/src/internal/core"

	"github.com/lixenwraith/log"
	"golang.org/x/time/rate"
)

// RateLimiter limits how fast source events reach the shipper.
type RateLimiter struct {
	limiter *rate.Limiter
	policy  config.RateLimitPolicy
	logger  *log.Logger
	now     func() time.Time

	// Statistics
	allowedCount atomic.Uint64
	droppedCount atomic.Uint64
}

// NewRateLimiter returns nil when cfg disables limiting. A nil
// *RateLimiter allows everything.
func NewRateLimiter(cfg *config.RateLimitConfig, logger *log.Logger) *RateLimiter {
	if cfg == nil || cfg.Rate <= 0 {
		return nil
	}
	if logger == nil {
		logger = log.NewLogger()
	}

	burst := int(cfg.Burst)
	if burst <= 0 {
		burst = int(cfg.Rate) // Default burst to rate
		if burst < 1 {
			burst = 1
		}
	}

	var policy config.RateLimitPolicy
	switch strings.ToLower(cfg.Policy) {
	case "drop":
		policy = config.PolicyDrop
	default:
		policy = config.PolicyPass
	}

	logger.Info("msg", "Ingress rate limit configured",
		"component", "rate_limiter",
		"rate", cfg.Rate,
		"burst", burst,
		"policy", policyString(policy))

	return &RateLimiter{
		limiter: rate.NewLimiter(rate.Limit(cfg.Rate), burst),
		policy:  policy,
		logger:  logger,
		now:     time.Now,
	}
}

// Allow reports whether event may be forwarded.
func (l *RateLimiter) Allow(event core.LogEvent) bool {
	if l == nil {
		return true
	}

	if l.limiter.AllowN(l.now(), 1) || l.policy == config.PolicyPass {
		l.allowedCount.Add(1)
		return true
	}

	if l.droppedCount.Add(1)%1000 == 1 {
		l.logger.Warn("msg", "Rate limit exceeded, dropping events",
			"component", "rate_limiter",
			"level", event.Level.String(),
			"dropped_total", l.droppedCount.Load())
	}
	return false
}

// GetStats returns statistics for the rate limiter.
func (l *RateLimiter) GetStats() map[string]any {
	if l == nil {
		return map[string]any{
			"enabled": false,
		}
	}

	return map[string]any{
		"enabled":       true,
		"allowed_total": l.allowedCount.Load(),
		"dropped_total": l.droppedCount.Load(),
		"policy":        policyString(l.policy),
		"rate":          float64(l.limiter.Limit()),
		"burst":         l.limiter.Burst(),
		"tokens":        l.limiter.TokensAt(l.now()),
	}
}

// policyString returns the string representation of a rate limit policy.
func policyString(p config.RateLimitPolicy) string {
	switch p {
	case config.PolicyDrop:
		return "drop"
	case config.PolicyPass:
		return "pass"
	default:
		return "unknown"
	}
}
