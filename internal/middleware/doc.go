// Wikifeed - Encyclopedia Article Feed and Selection Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/wikifeed

/*
Package middleware provides the HTTP middleware shared by the API router.

Key Components:

  - RequestID: request and correlation ids, propagated into the logging context
  - PrometheusMetrics: request count, duration and in-flight gauge per route
  - Recoverer: panic recovery that answers with the API error envelope

All components are plain func(http.Handler) http.Handler values and compose
with chi:

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(middleware.PrometheusMetrics)

Metrics are labelled with the chi route pattern ("/api/v1/users/{userID}")
rather than the raw path, so ids in URLs do not create new series.
*/
package middleware
