// FILE: logship/src/internal/config/filter.go
package config

import (
	"fmt"
	"regexp"

	"logship/src/internal/core"
)

// FilterType represents the filter's behavior (include or exclude).
type FilterType string

const (
	// FilterTypeInclude forwards only events that match.
	FilterTypeInclude FilterType = "include"
	// FilterTypeExclude drops events that match.
	FilterTypeExclude FilterType = "exclude"
)

// FilterLogic represents how multiple filter patterns are combined.
type FilterLogic string

const (
	FilterLogicOr  FilterLogic = "or"
	FilterLogicAnd FilterLogic = "and"
)

// FilterConfig selects source events before they reach the shipper.
// Events below MinLevel never pass the rule. Patterns are then matched
// against "<Source> <Level> <MessageTemplate>".
type FilterConfig struct {
	Type     FilterType  `toml:"type"`
	Logic    FilterLogic `toml:"logic"`
	MinLevel string      `toml:"min_level"`
	Patterns []string    `toml:"patterns"`
}

func validateFilters(filters []FilterConfig) error {
	for i := range filters {
		if err := validateFilter(i, &filters[i]); err != nil {
			return err
		}
	}
	return nil
}

func validateFilter(filterIndex int, cfg *FilterConfig) error {
	switch cfg.Type {
	case FilterTypeInclude, FilterTypeExclude, "":
	default:
		return fmt.Errorf("filter[%d]: invalid type '%s' (must be 'include' or 'exclude')",
			filterIndex, cfg.Type)
	}

	switch cfg.Logic {
	case FilterLogicOr, FilterLogicAnd, "":
	default:
		return fmt.Errorf("filter[%d]: invalid logic '%s' (must be 'or' or 'and')",
			filterIndex, cfg.Logic)
	}

	if cfg.MinLevel != "" {
		if _, err := core.ParseLevel(cfg.MinLevel); err != nil {
			return fmt.Errorf("filter[%d]: invalid min_level '%s'", filterIndex, cfg.MinLevel)
		}
	}

	for i, pattern := range cfg.Patterns {
		if _, err := regexp.Compile(pattern); err != nil {
			return fmt.Errorf("filter[%d] pattern[%d] '%s': invalid regex: %w",
				filterIndex, i, pattern, err)
		}
	}

	return nil
}
