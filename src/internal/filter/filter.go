// FILE: logship/src/internal/filter/filter.go
package filter

import (
	"fmt"
	"regexp"
	"sync/atomic"

	"logship/src/internal/config"
	"logship/src/internal/core"

	"github.com/lixenwraith/log"
)

// rule is one compiled [[filters]] entry. An event first has to reach
// minLevel, then the patterns decide according to kind.
type rule struct {
	kind     config.FilterType
	all      bool
	minLevel core.Level
	gated    bool
	patterns []*regexp.Regexp

	seen    atomic.Uint64
	dropped atomic.Uint64
}

func compileRule(cfg config.FilterConfig) (*rule, error) {
	r := &rule{
		kind: cfg.Type,
		all:  cfg.Logic == config.FilterLogicAnd,
	}
	if r.kind == "" {
		r.kind = config.FilterTypeInclude
	}
	if cfg.MinLevel != "" {
		lvl, err := core.ParseLevel(cfg.MinLevel)
		if err != nil {
			return nil, fmt.Errorf("min_level: %w", err)
		}
		r.minLevel, r.gated = lvl, true
	}
	for i, pattern := range cfg.Patterns {
		re, err := regexp.Compile(pattern)
		if err != nil {
			return nil, fmt.Errorf("invalid regex pattern[%d] '%s': %w", i, pattern, err)
		}
		r.patterns = append(r.patterns, re)
	}
	return r, nil
}

func (r *rule) pass(event core.LogEvent) bool {
	r.seen.Add(1)
	ok := r.decide(event)
	if !ok {
		r.dropped.Add(1)
	}
	return ok
}

func (r *rule) decide(event core.LogEvent) bool {
	if r.gated && event.Level < r.minLevel {
		return false
	}
	if len(r.patterns) == 0 {
		return true
	}
	matched := r.match(matchText(event))
	if r.kind == config.FilterTypeExclude {
		return !matched
	}
	return matched
}

func (r *rule) match(text string) bool {
	for _, re := range r.patterns {
		if re.MatchString(text) != r.all {
			// first miss under "and", first hit under "or"
			return !r.all
		}
	}
	return r.all
}

// matchText is "<Source> <Level> <MessageTemplate>", without the source
// part when the event carries none.
func matchText(event core.LogEvent) string {
	text := event.Level.String() + " " + event.MessageTemplate
	if src, ok := event.Properties["Source"].(string); ok && src != "" {
		text = src + " " + text
	}
	return text
}

// Chain selects source events before they reach the shipper. An event is
// forwarded only when every rule passes it. A nil *Chain forwards
// everything, which is what an empty [[filters]] list builds.
type Chain struct {
	rules  []*rule
	logger *log.Logger

	processed atomic.Uint64
	passed    atomic.Uint64
}

// NewChain compiles configs in order. It returns a nil chain for an empty
// list.
func NewChain(configs []config.FilterConfig, logger *log.Logger) (*Chain, error) {
	if len(configs) == 0 {
		return nil, nil
	}
	if logger == nil {
		logger = log.NewLogger()
	}

	c := &Chain{logger: logger}
	for i, cfg := range configs {
		r, err := compileRule(cfg)
		if err != nil {
			return nil, fmt.Errorf("filter[%d]: %w", i, err)
		}
		c.rules = append(c.rules, r)
	}

	logger.Info("msg", "Filter chain created",
		"component", "filter",
		"rule_count", len(c.rules))
	return c, nil
}

// Apply reports whether event should be forwarded.
func (c *Chain) Apply(event core.LogEvent) bool {
	if c == nil {
		return true
	}
	c.processed.Add(1)

	for i, r := range c.rules {
		if !r.pass(event) {
			c.logger.Debug("msg", "Event filtered out",
				"component", "filter",
				"rule_index", i,
				"level", event.Level.String())
			return false
		}
	}
	c.passed.Add(1)
	return true
}

// GetStats returns chain totals and per-rule drop counts.
func (c *Chain) GetStats() map[string]any {
	if c == nil {
		return map[string]any{"rule_count": 0}
	}

	rules := make([]map[string]any, len(c.rules))
	for i, r := range c.rules {
		st := map[string]any{
			"type":          r.kind,
			"pattern_count": len(r.patterns),
			"seen":          r.seen.Load(),
			"dropped":       r.dropped.Load(),
		}
		if r.gated {
			st["min_level"] = r.minLevel.String()
		}
		rules[i] = st
	}

	return map[string]any{
		"rule_count":      len(c.rules),
		"total_processed": c.processed.Load(),
		"total_passed":    c.passed.Load(),
		"rules":           rules,
	}
}
