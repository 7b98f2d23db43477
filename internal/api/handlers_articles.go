// Wikifeed - Encyclopedia Article Feed and Selection Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/wikifeed

package api

import (
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/tomtom215/wikifeed/internal/feed"
	"github.com/tomtom215/wikifeed/internal/logging"
	"github.com/tomtom215/wikifeed/internal/models"
	"github.com/tomtom215/wikifeed/internal/source"
)

// maxSearchQuery bounds the search text in bytes.
const maxSearchQuery = 200

// Articles serves the next page of a feed session.
//
// Query parameters: algorithm, source, user_id, category, limit, session_id.
// A missing session_id starts a new session; the returned session_id must be
// passed back to continue it.
func (h *Handler) Articles(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	q := r.URL.Query()
	userID, err := getInt64Param(r, "user_id")
	if err != nil {
		respondError(w, r, http.StatusBadRequest, ErrCodeValidation, err.Error(), nil)
		return
	}
	limit, err := getIntParam(r, "limit", 0)
	if err != nil {
		respondError(w, r, http.StatusBadRequest, ErrCodeValidation, err.Error(), nil)
		return
	}

	query := models.ArticlesQuery{
		Algorithm: strings.TrimSpace(q.Get("algorithm")),
		Source:    strings.TrimSpace(q.Get("source")),
		UserID:    userID,
		Category:  strings.TrimSpace(q.Get("category")),
		Limit:     limit,
		SessionID: strings.TrimSpace(q.Get("session_id")),
	}
	if !validateRequest(w, r, &query) {
		return
	}

	ctx, cancel := h.requestContext(r.Context())
	defer cancel()

	page, err := h.feed.FetchPage(ctx, feed.Request{
		SessionID: query.SessionID,
		Source:    query.Source,
		Algorithm: query.Algorithm,
		UserID:    query.UserID,
		Category:  query.Category,
		Limit:     clampLimit(query.Limit, h.cfg.API.DefaultPageSize, h.cfg.API.MaxPageSize),
	})
	if err != nil {
		respondFromError(w, r, err)
		return
	}

	logging.Ctx(r.Context()).Debug().
		Str("session_id", page.SessionID).
		Str("algorithm", page.AppliedAlgorithm).
		Int("count", len(page.Articles)).
		Bool("has_more", page.HasMore).
		Msg("Feed page served")

	respondData(w, r, http.StatusOK, page, start)
}

// EndSession discards a feed session. Ending an unknown session is not an
// error: the session may already have expired.
func (h *Handler) EndSession(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	sessionID := chi.URLParam(r, "sessionID")
	ended := h.feed.EndSession(sessionID)
	respondData(w, r, http.StatusOK, map[string]interface{}{
		"session_id": sessionID,
		"ended":      ended,
	}, start)
}

// Article returns one full article by title.
func (h *Handler) Article(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	title := chi.URLParam(r, "title")
	if unescaped, err := url.PathUnescape(title); err == nil {
		title = unescaped
	}
	title = strings.TrimSpace(title)
	if title == "" {
		respondError(w, r, http.StatusBadRequest, ErrCodeValidation, "title is required", nil)
		return
	}

	ctx, cancel := h.requestContext(r.Context())
	defer cancel()

	article, err := h.feed.Article(ctx, r.URL.Query().Get("source"), source.IDFromTitle(title))
	if err != nil {
		respondFromError(w, r, err)
		return
	}
	respondData(w, r, http.StatusOK, article, start)
}

// Search matches archived articles by title or text. Title matches come
// first. Query parameters: q (required), limit, source.
func (h *Handler) Search(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	query := strings.TrimSpace(r.URL.Query().Get("q"))
	if query == "" {
		respondError(w, r, http.StatusBadRequest, ErrCodeValidation, "q is required", nil)
		return
	}
	if len(query) > maxSearchQuery {
		respondError(w, r, http.StatusBadRequest, ErrCodeValidation, "q is too long", nil)
		return
	}
	limit, err := getIntParam(r, "limit", 0)
	if err != nil {
		respondError(w, r, http.StatusBadRequest, ErrCodeValidation, err.Error(), nil)
		return
	}

	ctx, cancel := h.requestContext(r.Context())
	defer cancel()

	results, err := h.feed.Search(ctx, r.URL.Query().Get("source"), query,
		clampLimit(limit, h.cfg.API.DefaultPageSize, h.cfg.API.MaxPageSize))
	if err != nil {
		respondFromError(w, r, err)
		return
	}
	respondData(w, r, http.StatusOK, results, start)
}
