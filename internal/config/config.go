// Wikifeed - Encyclopedia Article Feed and Selection Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/wikifeed

// Package config loads Wikifeed configuration from layered sources:
// built-in defaults, an optional YAML file and environment variables.
//
// Environment variables use flat legacy-style names (HTTP_PORT, DUCKDB_PATH,
// RECOMMEND_MIN_CLICKS, ...) which are mapped onto the nested structure below.
package config

import "time"

// Config holds all application configuration.
type Config struct {
	Server    ServerConfig    `koanf:"server"`
	API       APIConfig       `koanf:"api"`
	Security  SecurityConfig  `koanf:"security"`
	Logging   LoggingConfig   `koanf:"logging"`
	Database  DatabaseConfig  `koanf:"database"`
	Users     UsersConfig     `koanf:"users"`
	Clicks    ClicksConfig    `koanf:"clicks"`
	Source    SourceConfig    `koanf:"source"`
	Recommend RecommendConfig `koanf:"recommend"`
	CatIndex  CatIndexConfig  `koanf:"catindex"`
	Session   SessionConfig   `koanf:"session"`
	Feed      FeedConfig      `koanf:"feed"`
	Events    EventsConfig    `koanf:"events"`
	Ingest    IngestConfig    `koanf:"ingest"`
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Port            int           `koanf:"port"`
	Host            string        `koanf:"host"`
	Timeout         time.Duration `koanf:"timeout"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`
	Environment     string        `koanf:"environment"`
}

// APIConfig holds API paging and request limits.
type APIConfig struct {
	DefaultPageSize int           `koanf:"default_page_size"`
	MaxPageSize     int           `koanf:"max_page_size"`
	RequestTimeout  time.Duration `koanf:"request_timeout"`
}

// SecurityConfig holds CORS and rate limiting configuration.
type SecurityConfig struct {
	RateLimitReqs     int           `koanf:"rate_limit_reqs"`
	RateLimitWindow   time.Duration `koanf:"rate_limit_window"`
	RateLimitDisabled bool          `koanf:"rate_limit_disabled"`
	CORSOrigins       []string      `koanf:"cors_origins"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
	Caller bool   `koanf:"caller"`
}

// DatabaseConfig holds DuckDB configuration. The same database file stores
// click events and the local article archive.
type DatabaseConfig struct {
	Path      string `koanf:"path"`
	MaxMemory string `koanf:"max_memory"`
	Threads   int    `koanf:"threads"` // 0 = runtime.NumCPU()
}

// UsersConfig holds the user store configuration.
type UsersConfig struct {
	StorePath string `koanf:"store_path"` // badger directory; empty = in-memory
}

// ClicksConfig holds click recording configuration.
type ClicksConfig struct {
	// EnforceUsers rejects clicks from unknown users with INVALID_USER.
	EnforceUsers bool `koanf:"enforce_users"`
}

// SourceConfig selects and configures article sources.
type SourceConfig struct {
	Default string            `koanf:"default"` // "local" or "live"
	Live    LiveSourceConfig  `koanf:"live"`
	Archive ArchiveSourceConf `koanf:"archive"`
}

// LiveSourceConfig configures the Wikipedia REST client.
type LiveSourceConfig struct {
	Enabled        bool          `koanf:"enabled"`
	BaseURL        string        `koanf:"base_url"`
	UserAgent      string        `koanf:"user_agent"`
	Timeout        time.Duration `koanf:"timeout"`
	ContentTimeout time.Duration `koanf:"content_timeout"`
	PoolSize       int           `koanf:"pool_size"`
	Concurrency    int           `koanf:"concurrency"`
	RatePerSecond  float64       `koanf:"rate_per_second"`
	RateBurst      int           `koanf:"rate_burst"`
	CacheSize      int           `koanf:"cache_size"`
	CacheTTL       time.Duration `koanf:"cache_ttl"`
	PreviewLength  int           `koanf:"preview_length"`
}

// ArchiveSourceConf configures the local DuckDB article archive.
type ArchiveSourceConf struct {
	Enabled bool `koanf:"enabled"`
}

// RecommendConfig configures the selection engine.
type RecommendConfig struct {
	MinClicks            int                `koanf:"min_clicks"`
	PersonalizedFraction float64            `koanf:"personalized_fraction"`
	TopN                 int                `koanf:"top_n"`
	HalfLife             time.Duration      `koanf:"half_life"`
	MaxCandidates        int                `koanf:"max_candidates"`
	Seed                 int64              `koanf:"seed"` // 0 = time-seeded
	TopCategoriesTTL     time.Duration      `koanf:"top_categories_ttl"`
	JeopardyWeights      map[string]float64 `koanf:"jeopardy_weights"`
}

// CatIndexConfig configures the category index cache.
type CatIndexConfig struct {
	TTL time.Duration `koanf:"ttl"` // 0 = never expire
}

// SessionConfig configures feed session lifetime.
type SessionConfig struct {
	IdleTTL         time.Duration `koanf:"idle_ttl"`
	JanitorInterval time.Duration `koanf:"janitor_interval"`
}

// FeedConfig configures batch assembly.
type FeedConfig struct {
	// FillRounds bounds how many selection rounds are used to fill a page
	// from a source that is not finite.
	FillRounds int `koanf:"fill_rounds"`
}

// EventsConfig configures the in-process event bus.
type EventsConfig struct {
	Enabled              bool          `koanf:"enabled"`
	BufferSize           int64         `koanf:"buffer_size"`
	RetryCount           int           `koanf:"retry_count"`
	RetryInitialInterval time.Duration `koanf:"retry_initial_interval"`
	CloseTimeout         time.Duration `koanf:"close_timeout"`
}

// IngestConfig configures archive ingestion.
type IngestConfig struct {
	MinArticleLength int `koanf:"min_article_length"` // words
	MaxCategories    int `koanf:"max_categories"`
	BatchSize        int `koanf:"batch_size"`
}

// Load reads configuration from defaults, an optional config file and the environment.
func Load() (*Config, error) {
	return LoadWithKoanf()
}

// Addr returns the listen address for the HTTP server.
func (s ServerConfig) Addr() string {
	return joinHostPort(s.Host, s.Port)
}
