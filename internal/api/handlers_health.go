// Wikifeed - Encyclopedia Article Feed and Selection Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/wikifeed

package api

import (
	"context"
	"net/http"
	"time"

	"github.com/tomtom215/wikifeed/internal/models"
)

// Health reports liveness and the state of the backing components. It
// always answers 200; degraded components are reported in the body.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	resp := models.HealthResponse{
		Status:        "healthy",
		Version:       h.version,
		Uptime:        time.Since(h.started).Seconds(),
		Database:      "disabled",
		Sources:       h.feed.Sources(),
		DefaultSource: h.feed.DefaultSource(),
		Breakers:      h.feed.BreakerStates(),
	}

	if h.db != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := h.db.Ping(ctx); err != nil {
			resp.Status = "degraded"
			resp.Database = "unavailable"
		} else {
			resp.Database = "connected"
		}
	}
	if h.bus != nil {
		resp.EventBus = h.bus.IsRunning()
	}
	for _, state := range resp.Breakers {
		if state == "open" {
			resp.Status = "degraded"
		}
	}

	respondData(w, r, http.StatusOK, resp, start)
}

// Stats returns user, click and session totals.
func (h *Handler) Stats(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	ctx, cancel := h.requestContext(r.Context())
	defer cancel()

	userCount, err := h.users.Count(ctx)
	if err != nil {
		respondFromError(w, r, err)
		return
	}
	clickCount, err := h.tracker.TotalClicks(ctx)
	if err != nil {
		respondFromError(w, r, err)
		return
	}

	respondData(w, r, http.StatusOK, models.SystemStats{
		Users:          userCount,
		Clicks:         clickCount,
		ActiveSessions: h.feed.SessionCount(),
	}, start)
}
