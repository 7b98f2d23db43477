// Wikifeed - Encyclopedia Article Feed and Selection Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/wikifeed

package api

import (
	"net/http"
	"time"

	"github.com/tomtom215/wikifeed/internal/logging"
	"github.com/tomtom215/wikifeed/internal/models"
	"github.com/tomtom215/wikifeed/internal/source"
)

// defaultTopCategories is the number of top categories in click stats when
// the recommender's TopN is not configured.
const defaultTopCategories = 5

// RecordClick records that a user opened an article.
//
// Categories are normally sent by the client, which got them with the feed
// page. When they are missing, the article's categories are looked up from
// the source named by ?source=; a failed lookup records the click without
// categories rather than rejecting it.
func (h *Handler) RecordClick(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	var req models.ClickRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondError(w, r, http.StatusBadRequest, ErrCodeBadRequest, err.Error(), nil)
		return
	}
	if !validateRequest(w, r, &req) {
		return
	}

	ctx, cancel := h.requestContext(r.Context())
	defer cancel()

	articleID := req.ArticleID
	if articleID == "" {
		articleID = source.IDFromTitle(req.Title)
	}

	categories := req.Categories
	if len(categories) == 0 {
		looked, err := h.feed.CategoriesOf(ctx, r.URL.Query().Get("source"), articleID)
		if err != nil {
			logging.Ctx(ctx).Debug().Err(err).
				Str("article_id", sanitizeLogValue(articleID)).
				Msg("Click categories unavailable")
		} else {
			categories = looked
		}
	}

	event, err := h.tracker.RecordClick(ctx, req.UserID, articleID, categories, time.Time{})
	if err != nil {
		respondFromError(w, r, err)
		return
	}

	respondData(w, r, http.StatusCreated, models.ClickAccepted{
		Accepted:  true,
		EventID:   event.ID,
		ArticleID: event.ArticleID,
		Timestamp: event.Timestamp,
	}, start)
}

// ClickStats returns a user's click total, category shares and top
// categories by decayed weight.
func (h *Handler) ClickStats(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	userID, err := userIDParam(r)
	if err != nil {
		respondError(w, r, http.StatusBadRequest, ErrCodeValidation, err.Error(), nil)
		return
	}

	ctx, cancel := h.requestContext(r.Context())
	defer cancel()

	breakdown, err := h.tracker.Breakdown(ctx, userID)
	if err != nil {
		respondFromError(w, r, err)
		return
	}

	topN := h.cfg.Recommend.TopN
	if topN <= 0 {
		topN = defaultTopCategories
	}
	top, err := h.tracker.TopCategories(ctx, userID, topN)
	if err != nil {
		respondFromError(w, r, err)
		return
	}

	respondData(w, r, http.StatusOK, models.ClickStatsResponse{
		UserID:        userID,
		TotalClicks:   breakdown.TotalClicks,
		Categories:    breakdown.Categories,
		TopCategories: top,
	}, start)
}
