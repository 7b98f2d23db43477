// Wikifeed - Encyclopedia Article Feed and Selection Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/wikifeed

package config

import (
	"fmt"
	"net"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// DefaultConfigPaths are searched in order when CONFIG_PATH is not set.
var DefaultConfigPaths = []string{
	"config.yaml",
	"config.yml",
	"/etc/wikifeed/config.yaml",
	"/etc/wikifeed/config.yml",
}

// ConfigPathEnvVar names the environment variable holding an explicit config file path.
const ConfigPathEnvVar = "CONFIG_PATH"

// DefaultJeopardyWeights is the category weighting used by the jeopardy policy.
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

func defaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Port:            8080,
			Host:            "0.0.0.0",
			Timeout:         30 * time.Second,
			ShutdownTimeout: 10 * time.Second,
			Environment:     "development",
		},
		API: APIConfig{
			DefaultPageSize: 20,
			MaxPageSize:     50,
			RequestTimeout:  20 * time.Second,
		},
		Security: SecurityConfig{
			RateLimitReqs:     100,
			RateLimitWindow:   time.Minute,
			RateLimitDisabled: false,
			CORSOrigins:       []string{"*"},
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Caller: false,
		},
		Database: DatabaseConfig{
			Path:      "/data/wikifeed.duckdb",
			MaxMemory: "1GB",
			Threads:   0,
		},
		Users: UsersConfig{
			StorePath: "/data/users",
		},
		Clicks: ClicksConfig{
			EnforceUsers: true,
		},
		Source: SourceConfig{
			Default: "local",
			Live: LiveSourceConfig{
				Enabled:        true,
				BaseURL:        "https://en.wikipedia.org",
				UserAgent:      "WikipediaFeed/1.0",
				Timeout:        10 * time.Second,
				ContentTimeout: 15 * time.Second,
				PoolSize:       40,
				Concurrency:    8,
				RatePerSecond:  20,
				RateBurst:      10,
				CacheSize:      2000,
				CacheTTL:       time.Hour,
				PreviewLength:  300,
			},
			Archive: ArchiveSourceConf{
				Enabled: true,
			},
		},
		Recommend: RecommendConfig{
			MinClicks:            50,
			PersonalizedFraction: 0.7,
			TopN:                 5,
			HalfLife:             7 * 24 * time.Hour,
			MaxCandidates:        500,
			Seed:                 0,
			TopCategoriesTTL:     time.Minute,
			JeopardyWeights:      DefaultJeopardyWeights(),
		},
		CatIndex: CatIndexConfig{
			TTL: 0,
		},
		Session: SessionConfig{
			IdleTTL:         30 * time.Minute,
			JanitorInterval: time.Minute,
		},
		Feed: FeedConfig{
			FillRounds: 3,
		},
		Events: EventsConfig{
			Enabled:              true,
			BufferSize:           256,
			RetryCount:           3,
			RetryInitialInterval: 100 * time.Millisecond,
			CloseTimeout:         10 * time.Second,
		},
		Ingest: IngestConfig{
			MinArticleLength: 100,
			MaxCategories:    20,
			BatchSize:        100,
		},
	}
}

// LoadWithKoanf loads configuration in layers: defaults, then the config
// file (if any), then environment variables. Later layers win.
func LoadWithKoanf() (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(structs.Provider(defaultConfig(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	if configPath := findConfigFile(); configPath != "" {
		if err := k.Load(file.Provider(configPath), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
	}

	if err := k.Load(env.Provider("", ".", envTransformFunc), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	if err := processSliceFields(k); err != nil {
		return nil, fmt.Errorf("failed to process slice fields: %w", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

func findConfigFile() string {
	if envPath := os.Getenv(ConfigPathEnvVar); envPath != "" {
		if _, err := os.Stat(envPath); err == nil {
			return envPath
		}
	}

	for _, path := range DefaultConfigPaths {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}

	return ""
}

// sliceConfigPaths lists config paths that accept comma-separated env values.
var sliceConfigPaths = []string{
	"security.cors_origins",
}

// processSliceFields converts comma-separated string values to slices for known slice fields.
func processSliceFields(k *koanf.Koanf) error {
	for _, path := range sliceConfigPaths {
		strVal, ok := k.Get(path).(string)
		if !ok || strVal == "" {
			continue
		}

		parts := strings.Split(strVal, ",")
		trimmed := make([]string, 0, len(parts))
		for _, p := range parts {
			if p = strings.TrimSpace(p); p != "" {
				trimmed = append(trimmed, p)
			}
		}
		if len(trimmed) > 0 {
			if err := k.Set(path, trimmed); err != nil {
				return fmt.Errorf("failed to set %s: %w", path, err)
			}
		}
	}
	return nil
}

// envMappings maps flat environment variable names to config paths.
var envMappings = map[string]string{
	"http_port":             "server.port",
	"http_host":             "server.host",
	"http_timeout":          "server.timeout",
	"http_shutdown_timeout": "server.shutdown_timeout",
	"environment":           "server.environment",

	"api_default_page_size": "api.default_page_size",
	"api_max_page_size":     "api.max_page_size",
	"api_request_timeout":   "api.request_timeout",

	"rate_limit_requests": "security.rate_limit_reqs",
	"rate_limit_window":   "security.rate_limit_window",
	"disable_rate_limit":  "security.rate_limit_disabled",
	"cors_origins":        "security.cors_origins",

	"log_level":  "logging.level",
	"log_format": "logging.format",
	"log_caller": "logging.caller",

	"duckdb_path":       "database.path",
	"duckdb_max_memory": "database.max_memory",
	"duckdb_threads":    "database.threads",

	"users_store_path":     "users.store_path",
	"clicks_enforce_users": "clicks.enforce_users",

	"default_source":            "source.default",
	"live_source_enabled":       "source.live.enabled",
	"wikipedia_base_url":        "source.live.base_url",
	"wikipedia_user_agent":      "source.live.user_agent",
	"wikipedia_timeout":         "source.live.timeout",
	"wikipedia_content_timeout": "source.live.content_timeout",
	"wikipedia_pool_size":       "source.live.pool_size",
	"wikipedia_concurrency":     "source.live.concurrency",
	"wikipedia_rate_per_second": "source.live.rate_per_second",
	"wikipedia_rate_burst":      "source.live.rate_burst",
	"wikipedia_cache_size":      "source.live.cache_size",
	"wikipedia_cache_ttl":       "source.live.cache_ttl",
	"wikipedia_preview_length":  "source.live.preview_length",
	"archive_source_enabled":    "source.archive.enabled",

	"recommend_min_clicks":            "recommend.min_clicks",
	"recommend_personalized_fraction": "recommend.personalized_fraction",
	"recommend_top_n":                 "recommend.top_n",
	"recommend_half_life":             "recommend.half_life",
	"recommend_max_candidates":        "recommend.max_candidates",
	"recommend_seed":                  "recommend.seed",
	"recommend_top_categories_ttl":    "recommend.top_categories_ttl",

	"catindex_ttl": "catindex.ttl",

	"session_idle_ttl":         "session.idle_ttl",
	"session_janitor_interval": "session.janitor_interval",

	"feed_fill_rounds": "feed.fill_rounds",

	"events_enabled":                "events.enabled",
	"events_buffer_size":            "events.buffer_size",
	"events_retry_count":            "events.retry_count",
	"events_retry_initial_interval": "events.retry_initial_interval",
	"events_close_timeout":          "events.close_timeout",

	"ingest_min_article_length": "ingest.min_article_length",
	"ingest_max_categories":     "ingest.max_categories",
	"ingest_batch_size":         "ingest.batch_size",
}

// envTransformFunc transforms environment variable names to koanf config paths.
// Unmapped variables return "" and are skipped so that unrelated environment
// variables do not leak into the configuration.
//
// Examples:
//   - HTTP_PORT -> server.port
//   - DUCKDB_PATH -> database.path
//   - RECOMMEND_MIN_CLICKS -> recommend.min_clicks
func envTransformFunc(key string) string {
	if mapped, ok := envMappings[strings.ToLower(key)]; ok {
		return mapped
	}
	return ""
}

func joinHostPort(host string, port int) string {
	return net.JoinHostPort(host, strconv.Itoa(port))
}
