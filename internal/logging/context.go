// Wikifeed - Encyclopedia Article Feed and Selection Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/wikifeed

package logging

import (
	"context"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

type scopeKey struct{}

// scope is the logging state one request or event carries through its
// context. Each setter copies it, so a derived context never changes its
// parent's view.
type scope struct {
	requestID     string
	correlationID string
	base          *zerolog.Logger
}

func scopeFrom(ctx context.Context) scope {
	s, _ := ctx.Value(scopeKey{}).(scope)
	return s
}

func withScope(ctx context.Context, s scope) context.Context {
	return context.WithValue(ctx, scopeKey{}, s)
}

// ContextWithRequestID returns a context carrying the HTTP request id.
func ContextWithRequestID(ctx context.Context, id string) context.Context {
	s := scopeFrom(ctx)
	s.requestID = id
	return withScope(ctx, s)
}

// RequestIDFromContext returns the request id, or "" outside a request.
func RequestIDFromContext(ctx context.Context) string {
	return scopeFrom(ctx).requestID
}

// ContextWithCorrelationID returns a context carrying a correlation id. Click
// events copy it into message metadata so consumers log under the same id.
func ContextWithCorrelationID(ctx context.Context, id string) context.Context {
	s := scopeFrom(ctx)
	s.correlationID = id
	return withScope(ctx, s)
}

// ContextWithNewCorrelationID starts a new correlation: eight hex characters
// of a random UUID.
func ContextWithNewCorrelationID(ctx context.Context) context.Context {
	return ContextWithCorrelationID(ctx, uuid.NewString()[:8])
}

// CorrelationIDFromContext returns the correlation id, or "".
func CorrelationIDFromContext(ctx context.Context) string {
	return scopeFrom(ctx).correlationID
}

// ContextWithLogger sets the logger Ctx builds on, typically one already
// carrying the request's method and route.
//
//nolint:gocritic // zerolog.Logger is designed to be passed by value
func ContextWithLogger(ctx context.Context, logger zerolog.Logger) context.Context {
	s := scopeFrom(ctx)
	s.base = &logger
	return withScope(ctx, s)
}

// Ctx returns the context's logger, or the global one, with request_id and
// correlation_id attached when present.
//
//	logging.Ctx(ctx).Info().Msg("Feed page served")
func Ctx(ctx context.Context) *zerolog.Logger {
	s := scopeFrom(ctx)
	base := Logger()
	if s.base != nil {
		base = *s.base
	}

	logCtx := base.With()
	if s.correlationID != "" {
		logCtx = logCtx.Str("correlation_id", s.correlationID)
	}
	if s.requestID != "" {
		logCtx = logCtx.Str("request_id", s.requestID)
	}
	logger := logCtx.Logger()
	return &logger
}

// WithComponent creates a child of the global logger with a component field.
//
//	engineLogger := logging.WithComponent("recommend")
func WithComponent(component string) zerolog.Logger {
	return Logger().With().Str("component", component).Logger()
}
