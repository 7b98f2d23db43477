// Wikifeed - Encyclopedia Article Feed and Selection Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/wikifeed

package api

import (
	"context"
	"time"

	"github.com/tomtom215/wikifeed/internal/clicks"
	"github.com/tomtom215/wikifeed/internal/config"
	"github.com/tomtom215/wikifeed/internal/feed"
	"github.com/tomtom215/wikifeed/internal/users"
)

// Pinger checks that a backing store answers.
type Pinger interface {
	Ping(ctx context.Context) error
}

// RunningChecker reports whether a background component is running.
type RunningChecker interface {
	IsRunning() bool
}

// Handler serves the HTTP API.
type Handler struct {
	feed    *feed.Service
	tracker *clicks.Tracker
	users   users.Store
	weights map[string]float64
	db      Pinger
	bus     RunningChecker
	cfg     *config.Config
	version string
	started time.Time
}

// HandlerOption configures optional Handler dependencies.
type HandlerOption func(*Handler)

// WithDatabase reports database health on /health.
func WithDatabase(db Pinger) HandlerOption {
	return func(h *Handler) { h.db = db }
}

// WithEventBus reports event bus state on /health.
func WithEventBus(bus RunningChecker) HandlerOption {
	return func(h *Handler) { h.bus = bus }
}

// WithVersion sets the version reported on /health.
func WithVersion(version string) HandlerOption {
	return func(h *Handler) { h.version = version }
}

// NewHandler creates a Handler. weights is the jeopardy weight table shown
// by /categories.
func NewHandler(cfg *config.Config, feedSvc *feed.Service, tracker *clicks.Tracker, userStore users.Store, weights map[string]float64, opts ...HandlerOption) *Handler {
	h := &Handler{
		feed:    feedSvc,
		tracker: tracker,
		users:   userStore,
		weights: weights,
		cfg:     cfg,
		version: "dev",
		started: time.Now(),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// requestContext bounds a handler's work by the configured request timeout.
func (h *Handler) requestContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if h.cfg.API.RequestTimeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, h.cfg.API.RequestTimeout)
}
