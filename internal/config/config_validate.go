// Wikifeed - Encyclopedia Article Feed and Selection Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/wikifeed

package config

import (
	"fmt"
	"net/url"

	"github.com/tomtom215/wikifeed/internal/logging"
)

// Validate checks that configuration values are present and consistent.
func (c *Config) Validate() error {
	validators := []func() error{
		c.validateServer,
		c.validateAPI,
		c.validateSecurity,
		c.validateLogging,
		c.validateDatabase,
		c.validateSource,
		c.validateRecommend,
		c.validateSession,
		c.validateFeed,
		c.validateEvents,
		c.validateIngest,
	}
	for _, validate := range validators {
		if err := validate(); err != nil {
			return err
		}
	}
	return nil
}

func (c *Config) validateServer() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("HTTP_PORT must be between 1 and 65535, got %d", c.Server.Port)
	}
	if c.Server.Timeout <= 0 {
		return fmt.Errorf("HTTP_TIMEOUT must be positive, got %v", c.Server.Timeout)
	}
	if c.Server.ShutdownTimeout <= 0 {
		return fmt.Errorf("HTTP_SHUTDOWN_TIMEOUT must be positive, got %v", c.Server.ShutdownTimeout)
	}
	return nil
}

func (c *Config) validateAPI() error {
	if c.API.DefaultPageSize < 1 {
		return fmt.Errorf("API_DEFAULT_PAGE_SIZE must be at least 1, got %d", c.API.DefaultPageSize)
	}
	if c.API.MaxPageSize < c.API.DefaultPageSize {
		return fmt.Errorf("API_MAX_PAGE_SIZE must be >= API_DEFAULT_PAGE_SIZE, got %d < %d",
			c.API.MaxPageSize, c.API.DefaultPageSize)
	}
	if c.API.RequestTimeout <= 0 {
		return fmt.Errorf("API_REQUEST_TIMEOUT must be positive, got %v", c.API.RequestTimeout)
	}
	return nil
}

func (c *Config) validateSecurity() error {
	if c.Security.RateLimitDisabled {
		return nil
	}
	if c.Security.RateLimitReqs < 1 {
		return fmt.Errorf("RATE_LIMIT_REQUESTS must be at least 1, got %d", c.Security.RateLimitReqs)
	}
	if c.Security.RateLimitWindow <= 0 {
		return fmt.Errorf("RATE_LIMIT_WINDOW must be positive, got %v", c.Security.RateLimitWindow)
	}
	return nil
}

func (c *Config) validateLogging() error {
	if !logging.ValidLevel(c.Logging.Level) {
		return fmt.Errorf("LOG_LEVEL must be one of trace, debug, info, warn, error, fatal, panic, disabled; got %q", c.Logging.Level)
	}
	switch c.Logging.Format {
	case "json", "console":
	default:
		return fmt.Errorf("LOG_FORMAT must be json or console, got %q", c.Logging.Format)
	}
	return nil
}

func (c *Config) validateDatabase() error {
	if c.Database.Path == "" {
		return fmt.Errorf("DUCKDB_PATH is required")
	}
	if c.Database.Threads < 0 {
		return fmt.Errorf("DUCKDB_THREADS must be >= 0, got %d", c.Database.Threads)
	}
	return nil
}

func (c *Config) validateSource() error {
	switch c.Source.Default {
	case "local":
		if !c.Source.Archive.Enabled {
			return fmt.Errorf("DEFAULT_SOURCE=local requires ARCHIVE_SOURCE_ENABLED=true")
		}
	case "live":
		if !c.Source.Live.Enabled {
			return fmt.Errorf("DEFAULT_SOURCE=live requires LIVE_SOURCE_ENABLED=true")
		}
	default:
		return fmt.Errorf("DEFAULT_SOURCE must be local or live, got %q", c.Source.Default)
	}

	if !c.Source.Live.Enabled {
		return nil
	}
	live := c.Source.Live
	if u, err := url.Parse(live.BaseURL); err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("WIKIPEDIA_BASE_URL must be an absolute URL, got %q", live.BaseURL)
	}
	if live.Timeout <= 0 || live.ContentTimeout <= 0 {
		return fmt.Errorf("WIKIPEDIA_TIMEOUT and WIKIPEDIA_CONTENT_TIMEOUT must be positive")
	}
	if live.PoolSize < 1 {
		return fmt.Errorf("WIKIPEDIA_POOL_SIZE must be at least 1, got %d", live.PoolSize)
	}
	if live.Concurrency < 1 {
		return fmt.Errorf("WIKIPEDIA_CONCURRENCY must be at least 1, got %d", live.Concurrency)
	}
	if live.RatePerSecond <= 0 || live.RateBurst < 1 {
		return fmt.Errorf("WIKIPEDIA_RATE_PER_SECOND must be positive and WIKIPEDIA_RATE_BURST at least 1")
	}
	if live.CacheSize < 1 {
		return fmt.Errorf("WIKIPEDIA_CACHE_SIZE must be at least 1, got %d", live.CacheSize)
	}
	return nil
}

func (c *Config) validateRecommend() error {
	r := c.Recommend
	if r.MinClicks < 0 {
		return fmt.Errorf("RECOMMEND_MIN_CLICKS must be >= 0, got %d", r.MinClicks)
	}
	if r.PersonalizedFraction < 0 || r.PersonalizedFraction > 1 {
		return fmt.Errorf("RECOMMEND_PERSONALIZED_FRACTION must be within [0, 1], got %v", r.PersonalizedFraction)
	}
	if r.TopN < 1 {
		return fmt.Errorf("RECOMMEND_TOP_N must be at least 1, got %d", r.TopN)
	}
	if r.HalfLife <= 0 {
		return fmt.Errorf("RECOMMEND_HALF_LIFE must be positive, got %v", r.HalfLife)
	}
	if r.MaxCandidates < c.API.MaxPageSize {
		return fmt.Errorf("RECOMMEND_MAX_CANDIDATES must be >= API_MAX_PAGE_SIZE, got %d < %d",
			r.MaxCandidates, c.API.MaxPageSize)
	}
	for category, w := range r.JeopardyWeights {
		if w < 0 {
			return fmt.Errorf("recommend.jeopardy_weights.%s must be >= 0, got %v", category, w)
		}
	}
	return nil
}

func (c *Config) validateSession() error {
	if c.Session.IdleTTL <= 0 {
		return fmt.Errorf("SESSION_IDLE_TTL must be positive, got %v", c.Session.IdleTTL)
	}
	if c.Session.JanitorInterval <= 0 {
		return fmt.Errorf("SESSION_JANITOR_INTERVAL must be positive, got %v", c.Session.JanitorInterval)
	}
	return nil
}

func (c *Config) validateFeed() error {
	if c.Feed.FillRounds < 1 {
		return fmt.Errorf("FEED_FILL_ROUNDS must be at least 1, got %d", c.Feed.FillRounds)
	}
	return nil
}

func (c *Config) validateEvents() error {
	if !c.Events.Enabled {
		return nil
	}
	if c.Events.RetryCount < 0 {
		return fmt.Errorf("EVENTS_RETRY_COUNT must be >= 0, got %d", c.Events.RetryCount)
	}
	if c.Events.CloseTimeout <= 0 {
		return fmt.Errorf("EVENTS_CLOSE_TIMEOUT must be positive, got %v", c.Events.CloseTimeout)
	}
	return nil
}

func (c *Config) validateIngest() error {
	if c.Ingest.BatchSize < 1 {
		return fmt.Errorf("INGEST_BATCH_SIZE must be at least 1, got %d", c.Ingest.BatchSize)
	}
	if c.Ingest.MaxCategories < 1 {
		return fmt.Errorf("INGEST_MAX_CATEGORIES must be at least 1, got %d", c.Ingest.MaxCategories)
	}
	if c.Ingest.MinArticleLength < 0 {
		return fmt.Errorf("INGEST_MIN_ARTICLE_LENGTH must be >= 0, got %d", c.Ingest.MinArticleLength)
	}
	return nil
}
