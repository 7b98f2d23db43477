// Wikifeed - Encyclopedia Article Feed and Selection Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/wikifeed

package services

import (
	"context"
	"fmt"

	"github.com/thejerf/suture/v4"
)

// EventRouter is a message router that can run once.
type EventRouter interface {
	Run(ctx context.Context) error
}

// EventBusService runs the event bus router.
//
// A watermill router cannot be restarted after it stops, so a router that
// fails is not restarted: the service returns suture.ErrDoNotRestart and the
// rest of the tree keeps running. Clicks are still stored; only cache
// invalidation and counters stop.
type EventBusService struct {
	router EventRouter
}

// NewEventBusService creates the service.
func NewEventBusService(router EventRouter) *EventBusService {
	return &EventBusService{router: router}
}

// Serve implements suture.Service.
func (s *EventBusService) Serve(ctx context.Context) error {
	err := s.router.Run(ctx)
	if ctx.Err() != nil {
		return ctx.Err()
	}
	if err == nil {
		return suture.ErrDoNotRestart
	}
	return fmt.Errorf("event bus stopped: %w: %w", suture.ErrDoNotRestart, err)
}

// String implements fmt.Stringer for suture's logs.
func (s *EventBusService) String() string {
	return "event-bus"
}
