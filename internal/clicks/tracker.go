// Wikifeed - Encyclopedia Article Feed and Selection Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/wikifeed

package clicks

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/tomtom215/wikifeed/internal/logging"
	"github.com/tomtom215/wikifeed/internal/metrics"
)

// UserChecker reports whether a user account exists.
type UserChecker interface {
	Exists(ctx context.Context, userID int64) (bool, error)
}

// Publisher is notified after a click has been stored.
type Publisher interface {
	PublishClick(ctx context.Context, e *Event) error
}

// Stats is the per-user click summary.
type Stats struct {
	TotalCount int64 `json:"total_count"`
}

// Breakdown is the share of each category among a user's clicks, in percent.
type Breakdown struct {
	TotalClicks int64              `json:"total_clicks"`
	Categories  map[string]float64 `json:"categories"`
}

// Tracker records clicks and answers the queries personalization needs.
type Tracker struct {
	store     Store
	users     UserChecker
	publisher Publisher
	now       func() time.Time
	logger    zerolog.Logger
}

// TrackerOption configures a Tracker.
type TrackerOption func(*Tracker)

// WithUserChecker enforces that clicks belong to existing users.
func WithUserChecker(users UserChecker) TrackerOption {
	return func(t *Tracker) { t.users = users }
}

// WithPublisher announces stored clicks.
func WithPublisher(p Publisher) TrackerOption {
	return func(t *Tracker) { t.publisher = p }
}

// WithTrackerClock overrides the timestamp source for clicks recorded
// without one.
func WithTrackerClock(now func() time.Time) TrackerOption {
	return func(t *Tracker) { t.now = now }
}

// NewTracker creates a Tracker over store.
func NewTracker(store Store, opts ...TrackerOption) *Tracker {
	t := &Tracker{
		store:  store,
		now:    time.Now,
		logger: logging.WithComponent("clicks"),
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// RecordClick validates and durably stores one click. A zero ts means now.
// Categories are copied, so later changes to the article do not alter the
// stored history.
func (t *Tracker) RecordClick(ctx context.Context, userID int64, articleID string, categories []string, ts time.Time) (*Event, error) {
	articleID = strings.TrimSpace(articleID)
	if articleID == "" {
		metrics.ClicksRejected.WithLabelValues("empty_article").Inc()
		return nil, fmt.Errorf("%w: article id is required", ErrInvalidClick)
	}

	if t.users != nil {
		ok, err := t.users.Exists(ctx, userID)
		if err != nil {
			return nil, fmt.Errorf("check user %d: %w", userID, err)
		}
		if !ok {
			metrics.ClicksRejected.WithLabelValues("invalid_user").Inc()
			return nil, fmt.Errorf("%w: %d", ErrInvalidUser, userID)
		}
	}

	if ts.IsZero() {
		ts = t.now()
	}
	e := &Event{
		ID:         uuid.NewString(),
		UserID:     userID,
		ArticleID:  articleID,
		Categories: SnapshotCategories(categories),
		Timestamp:  ts.UTC(),
	}

	if err := t.store.Append(ctx, e); err != nil {
		return nil, fmt.Errorf("store click: %w", err)
	}
	metrics.ClicksRecorded.Inc()

	if t.publisher != nil {
		// The click is already durable; a failed notification only delays
		// cache invalidation until the TTL runs out.
		if err := t.publisher.PublishClick(ctx, e); err != nil {
			t.logger.Warn().Err(err).Int64("user_id", userID).Msg("Failed to publish click event")
		}
	}

	logging.Ctx(ctx).Debug().
		Int64("user_id", userID).
		Str("article_id", articleID).
		Strs("categories", e.Categories).
		Msg("Click recorded")
	return e, nil
}

// Stats returns the click summary for userID. Unknown users have zero clicks.
func (t *Tracker) Stats(ctx context.Context, userID int64) (Stats, error) {
	n, err := t.store.Count(ctx, userID)
	if err != nil {
		return Stats{}, err
	}
	return Stats{TotalCount: n}, nil
}

// TopCategories returns up to limit categories ranked by decayed weight.
func (t *Tracker) TopCategories(ctx context.Context, userID int64, limit int) ([]CategoryWeight, error) {
	return t.store.TopCategories(ctx, userID, limit)
}

// Breakdown returns the user's category shares. Each share is the percent of
// the user's clicks that carried the category, rounded to one decimal, so
// shares of multi-category clicks sum past 100.
func (t *Tracker) Breakdown(ctx context.Context, userID int64) (Breakdown, error) {
	total, err := t.store.Count(ctx, userID)
	if err != nil {
		return Breakdown{}, err
	}
	shares := make(map[string]float64)
	if total == 0 {
		return Breakdown{TotalClicks: 0, Categories: shares}, nil
	}
	counts, err := t.store.CategoryCounts(ctx, userID)
	if err != nil {
		return Breakdown{}, err
	}

	for c, n := range counts {
		shares[c] = math.Round(float64(n)/float64(total)*1000) / 10
	}
	return Breakdown{TotalClicks: total, Categories: shares}, nil
}

// TotalClicks returns the number of clicks across all users.
func (t *Tracker) TotalClicks(ctx context.Context) (int64, error) {
	return t.store.CountAll(ctx)
}
