// Wikifeed - Encyclopedia Article Feed and Selection Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/wikifeed

package events

import (
	"context"
	"slices"

	"github.com/tomtom215/wikifeed/internal/logging"
	"github.com/tomtom215/wikifeed/internal/metrics"
	"github.com/tomtom215/wikifeed/internal/source"
)

// Invalidator drops cached per-user selection state.
type Invalidator interface {
	InvalidateUser(userID int64)
}

// InvalidateTopCategories refreshes a reader's personalization after each of
// their clicks.
func InvalidateTopCategories(inv Invalidator) ClickHandler {
	return func(ctx context.Context, c *ClickRecorded) error {
		inv.InvalidateUser(c.UserID)
		logging.Ctx(ctx).Debug().Int64("user_id", c.UserID).Msg("Top categories invalidated")
		return nil
	}
}

// CountCategories increments the per-category click counter. Categories
// outside the known set are counted as "Other".
func CountCategories() ClickHandler {
	return func(_ context.Context, c *ClickRecorded) error {
		if len(c.Categories) == 0 {
			metrics.ClicksByCategory.WithLabelValues(source.CategoryGeneral).Inc()
			return nil
		}
		for _, name := range c.Categories {
			metrics.ClicksByCategory.WithLabelValues(categoryLabel(name)).Inc()
		}
		return nil
	}
}

func categoryLabel(name string) string {
	canonical := source.CanonicalCategory(name)
	if canonical == source.CategoryGeneral || slices.Contains(source.Categories, canonical) {
		return canonical
	}
	return "Other"
}
