// Wikifeed - Encyclopedia Article Feed and Selection Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/wikifeed

package recommend

import (
	"fmt"
	"maps"
	"time"
)

// Config contains the selection engine parameters.
type Config struct {
	// MinClicks is the click count below which user_based falls back to
	// random. Default: 50.
	MinClicks int `json:"min_clicks"`

	// PersonalizedFraction is the share of a user_based page drawn from the
	// reader's top categories, rounded to whole articles. Default: 0.7.
	PersonalizedFraction float64 `json:"personalized_fraction"`

	// TopN is how many top categories personalize a page. Default: 5.
	TopN int `json:"top_n"`

	// MaxCandidates bounds how many pool ids a weighted policy inspects.
	// Larger pools are subsampled uniformly. Default: 500.
	MaxCandidates int `json:"max_candidates"`

	// Seed seeds the random source. Zero seeds from the clock.
	Seed int64 `json:"seed"`

	// TopCategoriesTTL is how long a reader's top categories are cached.
	// Default: 1 minute.
	TopCategoriesTTL time.Duration `json:"top_categories_ttl"`

	// JeopardyWeights maps category names to jeopardy weights. Missing
	// categories weigh zero.
	JeopardyWeights map[string]float64 `json:"jeopardy_weights"`
}

// DefaultJeopardyWeights returns the stock jeopardy weight table.
func DefaultJeopardyWeights() map[string]float64 {
	return map[string]float64{
		"History":    20,
		"Science":    18,
		"Geography":  15,
		"Literature": 12,
		"Arts":       10,
		"Sports":     8,
		"Politics":   7,
		"Religion":   5,
		"Nature":     3,
		"Technology": 2,
		"People":     0,
	}
}

// DefaultConfig returns the default engine configuration.
func DefaultConfig() *Config {
	return &Config{
		MinClicks:            50,
		PersonalizedFraction: 0.7,
		TopN:                 5,
		MaxCandidates:        500,
		TopCategoriesTTL:     time.Minute,
		JeopardyWeights:      DefaultJeopardyWeights(),
	}
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	if c.MinClicks < 0 {
		return fmt.Errorf("min_clicks must be non-negative, got %d", c.MinClicks)
	}
	if c.PersonalizedFraction < 0 || c.PersonalizedFraction > 1 {
		return fmt.Errorf("personalized_fraction must be in [0, 1], got %f", c.PersonalizedFraction)
	}
	if c.TopN < 1 {
		return fmt.Errorf("top_n must be positive, got %d", c.TopN)
	}
	if c.MaxCandidates < 1 {
		return fmt.Errorf("max_candidates must be positive, got %d", c.MaxCandidates)
	}
	if c.TopCategoriesTTL < 0 {
		return fmt.Errorf("top_categories_ttl must be non-negative, got %v", c.TopCategoriesTTL)
	}
	for category, w := range c.JeopardyWeights {
		if w < 0 {
			return fmt.Errorf("jeopardy weight for %q must be non-negative, got %f", category, w)
		}
	}
	return nil
}

// Clone returns a deep copy of the configuration.
func (c *Config) Clone() *Config {
	clone := *c
	clone.JeopardyWeights = maps.Clone(c.JeopardyWeights)
	return &clone
}
