// Wikifeed - Encyclopedia Article Feed and Selection Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/wikifeed

package models

import (
	"time"

	"github.com/tomtom215/wikifeed/internal/clicks"
	"github.com/tomtom215/wikifeed/internal/users"
)

// HealthResponse is returned by GET /api/v1/health.
type HealthResponse struct {
	Status        string            `json:"status"`
	Version       string            `json:"version"`
	Uptime        float64           `json:"uptime_seconds"`
	Database      string            `json:"database"`
	Sources       []string          `json:"sources"`
	DefaultSource string            `json:"default_source"`
	Breakers      map[string]string `json:"circuit_breakers,omitempty"`
	EventBus      bool              `json:"event_bus"`
}

// ClickAccepted is returned by POST /api/v1/clicks.
type ClickAccepted struct {
	Accepted  bool      `json:"accepted"`
	EventID   string    `json:"event_id"`
	ArticleID string    `json:"article_id"`
	Timestamp time.Time `json:"timestamp"`
}

// ClickStatsResponse is returned by GET /api/v1/clicks/{userID}/stats.
type ClickStatsResponse struct {
	UserID        int64                   `json:"user_id"`
	TotalClicks   int64                   `json:"total_clicks"`
	Categories    map[string]float64      `json:"categories"`
	TopCategories []clicks.CategoryWeight `json:"top_categories"`
}

// UserDetail is a user with their feed preferences.
type UserDetail struct {
	users.User
	Preferences users.Preferences `json:"preferences"`
	ClickCount  int64             `json:"click_count"`
}

// CategoryInfo is one entry of GET /api/v1/categories.
type CategoryInfo struct {
	Name           string  `json:"name"`
	JeopardyWeight float64 `json:"jeopardy_weight"`
}

// CategoriesResponse is returned by GET /api/v1/categories.
type CategoriesResponse struct {
	Categories []CategoryInfo `json:"categories"`
	Algorithms []string       `json:"algorithms"`
}

// SystemStats is returned by GET /api/v1/stats.
type SystemStats struct {
	Users          int64 `json:"users"`
	Clicks         int64 `json:"clicks"`
	ActiveSessions int   `json:"active_sessions"`
}
