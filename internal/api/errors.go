// Wikifeed - Encyclopedia Article Feed and Selection Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/wikifeed

package api

import (
	"context"
	"errors"
	"net/http"

	"github.com/tomtom215/wikifeed/internal/clicks"
	"github.com/tomtom215/wikifeed/internal/cursor"
	"github.com/tomtom215/wikifeed/internal/feed"
	"github.com/tomtom215/wikifeed/internal/recommend"
	"github.com/tomtom215/wikifeed/internal/source"
	"github.com/tomtom215/wikifeed/internal/users"
	"github.com/tomtom215/wikifeed/internal/validation"
)

// Error codes for API responses
const (
	ErrCodeValidation        = validation.CodeValidation
	ErrCodeBadRequest        = "BAD_REQUEST"
	ErrCodeUnknownPolicy     = validation.CodeUnknownPolicy
	ErrCodeUnknownSource     = "UNKNOWN_SOURCE"
	ErrCodeSearchUnsupported = "SEARCH_UNSUPPORTED"
	ErrCodeInvalidUser       = "INVALID_USER"
	ErrCodeNotFound          = "NOT_FOUND"
	ErrCodeDuplicateName     = "DUPLICATE_NAME"
	ErrCodeSourceUnavailable = "SOURCE_UNAVAILABLE"
	ErrCodeTimeout           = "TIMEOUT"
	ErrCodeRateLimited       = "RATE_LIMITED"
	ErrCodeInternal          = "INTERNAL_ERROR"
)

// errorResponse maps a domain error to a status, code and client message.
// Internal errors get a generic message; the cause is only logged.
func errorResponse(err error) (status int, code, message string) {
	switch {
	case errors.Is(err, recommend.ErrUnknownPolicy):
		return http.StatusBadRequest, ErrCodeUnknownPolicy, err.Error()
	case errors.Is(err, source.ErrUnknownSource):
		return http.StatusBadRequest, ErrCodeUnknownSource, err.Error()
	case errors.Is(err, feed.ErrSearchUnsupported):
		return http.StatusBadRequest, ErrCodeSearchUnsupported, err.Error()
	case errors.Is(err, cursor.ErrInvalidPageSize),
		errors.Is(err, clicks.ErrInvalidClick),
		errors.Is(err, users.ErrInvalidName):
		return http.StatusBadRequest, ErrCodeValidation, err.Error()
	case errors.Is(err, clicks.ErrInvalidUser):
		return http.StatusNotFound, ErrCodeInvalidUser, "User does not exist"
	case errors.Is(err, users.ErrNotFound):
		return http.StatusNotFound, ErrCodeNotFound, "User not found"
	case errors.Is(err, source.ErrNotFound):
		return http.StatusNotFound, ErrCodeNotFound, "Article not found"
	case errors.Is(err, users.ErrDuplicateName):
		return http.StatusConflict, ErrCodeDuplicateName, "User name already taken"
	case errors.Is(err, source.ErrSourceUnavailable):
		return http.StatusServiceUnavailable, ErrCodeSourceUnavailable, "Article source is unavailable, try again later"
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout, ErrCodeTimeout, "Request timed out"
	default:
		return http.StatusInternalServerError, ErrCodeInternal, "Internal server error"
	}
}
