// Wikifeed - Encyclopedia Article Feed and Selection Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/wikifeed

// Package clicks stores the append-only click history that drives
// personalization, and answers per-user count and top-category queries.
//
// Every click contributes 0.5^(age/half_life) to each category in its
// snapshot, so both frequency and recency raise a category's weight. Ties
// are broken by most recent occurrence, then by category name.
package clicks

import (
	"context"
	"errors"
	"strings"
	"time"
)

// DefaultHalfLife is the age at which a click counts half as much as a new one.
const DefaultHalfLife = 7 * 24 * time.Hour

var (
	// ErrInvalidUser is returned when user accounts are enforced and the
	// click's user does not exist.
	ErrInvalidUser = errors.New("invalid user")

	// ErrInvalidClick is returned for a click without an article id.
	ErrInvalidClick = errors.New("invalid click")
)

// Event is one immutable click.
type Event struct {
	ID         string    `json:"id"`
	UserID     int64     `json:"user_id"`
	ArticleID  string    `json:"article_id"`
	Categories []string  `json:"categories"`
	Timestamp  time.Time `json:"timestamp"`
}

// CategoryWeight is one entry of a user's top categories.
type CategoryWeight struct {
	Category string    `json:"category"`
	Weight   float64   `json:"weight"`
	LastSeen time.Time `json:"last_seen"`
}

// Store persists click events. Implementations must make Append durable
// and all-or-nothing before returning.
type Store interface {
	Append(ctx context.Context, e *Event) error
	Count(ctx context.Context, userID int64) (int64, error)
	TopCategories(ctx context.Context, userID int64, limit int) ([]CategoryWeight, error)
	// CategoryCounts returns occurrences per category across the user's
	// clicks. Clicks with an empty snapshot count once under General.
	CategoryCounts(ctx context.Context, userID int64) (map[string]int64, error)
	CountAll(ctx context.Context) (int64, error)
}

// CategoryGeneral labels clicks recorded without categories.
const CategoryGeneral = "General"

// SnapshotCategories copies categories, trimming blanks and duplicates while
// keeping first-seen order. The result never aliases the input.
func SnapshotCategories(categories []string) []string {
	out := make([]string, 0, len(categories))
	seen := make(map[string]struct{}, len(categories))
	for _, c := range categories {
		c = strings.TrimSpace(c)
		if c == "" {
			continue
		}
		if _, dup := seen[c]; dup {
			continue
		}
		seen[c] = struct{}{}
		out = append(out, c)
	}
	return out
}
