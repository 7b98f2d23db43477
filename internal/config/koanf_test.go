// Wikifeed - Encyclopedia Article Feed and Selection Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/wikifeed

package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

// TestDefaultConfig verifies that defaultConfig() returns proper defaults
func TestDefaultConfig(t *testing.T) {
	t.Parallel()

	cfg := defaultConfig()

	if cfg.API.DefaultPageSize != 20 {
		t.Errorf("API.DefaultPageSize = %d, want 20", cfg.API.DefaultPageSize)
	}
	if cfg.API.MaxPageSize != 50 {
		t.Errorf("API.MaxPageSize = %d, want 50", cfg.API.MaxPageSize)
	}
	if cfg.Recommend.MinClicks != 50 {
		t.Errorf("Recommend.MinClicks = %d, want 50", cfg.Recommend.MinClicks)
	}
	if cfg.Recommend.PersonalizedFraction != 0.7 {
		t.Errorf("Recommend.PersonalizedFraction = %v, want 0.7", cfg.Recommend.PersonalizedFraction)
	}
	if cfg.Recommend.HalfLife != 7*24*time.Hour {
		t.Errorf("Recommend.HalfLife = %v, want 168h", cfg.Recommend.HalfLife)
	}
	if cfg.Recommend.JeopardyWeights["History"] != 20 || cfg.Recommend.JeopardyWeights["People"] != 0 {
		t.Errorf("unexpected jeopardy weights %v", cfg.Recommend.JeopardyWeights)
	}
	if cfg.Source.Live.UserAgent != "WikipediaFeed/1.0" {
		t.Errorf("Source.Live.UserAgent = %q, want WikipediaFeed/1.0", cfg.Source.Live.UserAgent)
	}
	if cfg.CatIndex.TTL != 0 {
		t.Errorf("CatIndex.TTL = %v, want 0 (no expiry)", cfg.CatIndex.TTL)
	}
	if !cfg.Clicks.EnforceUsers {
		t.Error("Clicks.EnforceUsers should be true by default")
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config should validate, got %v", err)
	}
}

func TestEnvTransformFunc(t *testing.T) {
	t.Parallel()

	tests := []struct {
		env  string
		want string
	}{
		{"HTTP_PORT", "server.port"},
		{"DUCKDB_PATH", "database.path"},
		{"RECOMMEND_MIN_CLICKS", "recommend.min_clicks"},
		{"WIKIPEDIA_POOL_SIZE", "source.live.pool_size"},
		{"SESSION_IDLE_TTL", "session.idle_ttl"},
		{"log_level", "logging.level"},
		{"PATH", ""},
		{"HOME", ""},
	}

	for _, tt := range tests {
		t.Run(tt.env, func(t *testing.T) {
			t.Parallel()
			if got := envTransformFunc(tt.env); got != tt.want {
				t.Errorf("envTransformFunc(%q) = %q, want %q", tt.env, got, tt.want)
			}
		})
	}
}

func TestFindConfigFile(t *testing.T) {
	tmpDir := t.TempDir()
	t.Chdir(tmpDir)

	t.Run("no config file exists", func(t *testing.T) {
		t.Setenv(ConfigPathEnvVar, "")
		if result := findConfigFile(); result != "" {
			t.Errorf("findConfigFile() = %q, want empty string", result)
		}
	})

	t.Run("config.yaml exists", func(t *testing.T) {
		configPath := filepath.Join(tmpDir, "config.yaml")
		if err := os.WriteFile(configPath, []byte("server:\n  port: 1\n"), 0o600); err != nil {
			t.Fatalf("Failed to create config file: %v", err)
		}
		defer os.Remove(configPath)

		t.Setenv(ConfigPathEnvVar, "")
		if result := findConfigFile(); result != "config.yaml" {
			t.Errorf("findConfigFile() = %q, want config.yaml", result)
		}
	})

	t.Run("CONFIG_PATH env var takes precedence", func(t *testing.T) {
		customPath := filepath.Join(tmpDir, "custom_config.yaml")
		if err := os.WriteFile(customPath, []byte("server:\n  port: 1\n"), 0o600); err != nil {
			t.Fatalf("Failed to create custom config file: %v", err)
		}
		defer os.Remove(customPath)

		t.Setenv(ConfigPathEnvVar, customPath)
		if result := findConfigFile(); result != customPath {
			t.Errorf("findConfigFile() = %q, want %q", result, customPath)
		}
	})
}

func TestLoadWithKoanfEnvVars(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv(ConfigPathEnvVar, "")
	t.Setenv("HTTP_PORT", "9000")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("RECOMMEND_MIN_CLICKS", "10")
	t.Setenv("RECOMMEND_HALF_LIFE", "48h")
	t.Setenv("CORS_ORIGINS", "https://a.example, https://b.example")
	t.Setenv("DEFAULT_SOURCE", "live")

	cfg, err := LoadWithKoanf()
	if err != nil {
		t.Fatalf("LoadWithKoanf() error = %v", err)
	}

	if cfg.Server.Port != 9000 {
		t.Errorf("Server.Port = %d, want 9000", cfg.Server.Port)
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("Logging.Level = %q, want debug", cfg.Logging.Level)
	}
	if cfg.Recommend.MinClicks != 10 {
		t.Errorf("Recommend.MinClicks = %d, want 10", cfg.Recommend.MinClicks)
	}
	if cfg.Recommend.HalfLife != 48*time.Hour {
		t.Errorf("Recommend.HalfLife = %v, want 48h", cfg.Recommend.HalfLife)
	}
	if cfg.Source.Default != "live" {
		t.Errorf("Source.Default = %q, want live", cfg.Source.Default)
	}
	if len(cfg.Security.CORSOrigins) != 2 || cfg.Security.CORSOrigins[1] != "https://b.example" {
		t.Errorf("Security.CORSOrigins = %v, want two trimmed origins", cfg.Security.CORSOrigins)
	}

	// Defaults survive for unset values
	if cfg.Server.Host != "0.0.0.0" {
		t.Errorf("Server.Host = %q, want 0.0.0.0 (default)", cfg.Server.Host)
	}
	if cfg.Recommend.JeopardyWeights["Science"] != 18 {
		t.Errorf("Recommend.JeopardyWeights[Science] = %v, want 18", cfg.Recommend.JeopardyWeights["Science"])
	}
}

func TestLoadWithKoanfConfigFile(t *testing.T) {
	tmpDir := t.TempDir()
	t.Chdir(tmpDir)

	configContent := `
server:
  port: 8888
  host: "127.0.0.1"

logging:
  level: "warn"

recommend:
  top_n: 3
  jeopardy_weights:
    History: 1
    Science: 2
`
	configPath := filepath.Join(tmpDir, "wikifeed.yaml")
	if err := os.WriteFile(configPath, []byte(configContent), 0o600); err != nil {
		t.Fatalf("Failed to create config file: %v", err)
	}
	t.Setenv(ConfigPathEnvVar, configPath)

	cfg, err := LoadWithKoanf()
	if err != nil {
		t.Fatalf("LoadWithKoanf() error = %v", err)
	}

	if cfg.Server.Port != 8888 {
		t.Errorf("Server.Port = %d, want 8888", cfg.Server.Port)
	}
	if cfg.Server.Host != "127.0.0.1" {
		t.Errorf("Server.Host = %q, want 127.0.0.1", cfg.Server.Host)
	}
	if cfg.Logging.Level != "warn" {
		t.Errorf("Logging.Level = %q, want warn", cfg.Logging.Level)
	}
	if cfg.Recommend.TopN != 3 {
		t.Errorf("Recommend.TopN = %d, want 3", cfg.Recommend.TopN)
	}
	if cfg.Recommend.JeopardyWeights["Science"] != 2 {
		t.Errorf("Recommend.JeopardyWeights[Science] = %v, want 2", cfg.Recommend.JeopardyWeights["Science"])
	}
	if cfg.Database.Path != "/data/wikifeed.duckdb" {
		t.Errorf("Database.Path = %q, want /data/wikifeed.duckdb (default)", cfg.Database.Path)
	}
}

func TestLoadWithKoanfEnvOverridesFile(t *testing.T) {
	tmpDir := t.TempDir()
	t.Chdir(tmpDir)

	configPath := filepath.Join(tmpDir, "config.yaml")
	if err := os.WriteFile(configPath, []byte("server:\n  port: 8888\n"), 0o600); err != nil {
		t.Fatalf("Failed to create config file: %v", err)
	}
	t.Setenv(ConfigPathEnvVar, configPath)
	t.Setenv("HTTP_PORT", "7777")

	cfg, err := LoadWithKoanf()
	if err != nil {
		t.Fatalf("LoadWithKoanf() error = %v", err)
	}
	if cfg.Server.Port != 7777 {
		t.Errorf("Server.Port = %d, want 7777 (env overrides file)", cfg.Server.Port)
	}
}

func TestValidate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{
			name:   "defaults",
			mutate: func(*Config) {},
		},
		{
			name:    "invalid port",
			mutate:  func(c *Config) { c.Server.Port = 0 },
			wantErr: "HTTP_PORT",
		},
		{
			name:    "max page below default",
			mutate:  func(c *Config) { c.API.MaxPageSize = 10 },
			wantErr: "API_MAX_PAGE_SIZE",
		},
		{
			name:    "unknown default source",
			mutate:  func(c *Config) { c.Source.Default = "dump" },
			wantErr: "DEFAULT_SOURCE",
		},
		{
			name: "live default with live disabled",
			mutate: func(c *Config) {
				c.Source.Default = "live"
				c.Source.Live.Enabled = false
			},
			wantErr: "LIVE_SOURCE_ENABLED",
		},
		{
			name:    "personalized fraction out of range",
			mutate:  func(c *Config) { c.Recommend.PersonalizedFraction = 1.5 },
			wantErr: "RECOMMEND_PERSONALIZED_FRACTION",
		},
		{
			name:    "max candidates below max page",
			mutate:  func(c *Config) { c.Recommend.MaxCandidates = 10 },
			wantErr: "RECOMMEND_MAX_CANDIDATES",
		},
		{
			name:    "negative jeopardy weight",
			mutate:  func(c *Config) { c.Recommend.JeopardyWeights["Arts"] = -1 },
			wantErr: "jeopardy_weights.Arts",
		},
		{
			name:    "bad log format",
			mutate:  func(c *Config) { c.Logging.Format = "xml" },
			wantErr: "LOG_FORMAT",
		},
		{
			name:    "zero fill rounds",
			mutate:  func(c *Config) { c.Feed.FillRounds = 0 },
			wantErr: "FEED_FILL_ROUNDS",
		},
		{
			name: "rate limit values ignored when disabled",
			mutate: func(c *Config) {
				c.Security.RateLimitDisabled = true
				c.Security.RateLimitReqs = 0
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			cfg := defaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Errorf("Validate() error = %v, want nil", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Validate() error = %v, want containing %q", err, tt.wantErr)
			}
		})
	}
}

func TestServerAddr(t *testing.T) {
	t.Parallel()

	s := ServerConfig{Host: "127.0.0.1", Port: 8080}
	if got := s.Addr(); got != "127.0.0.1:8080" {
		t.Errorf("Addr() = %q, want 127.0.0.1:8080", got)
	}
}
