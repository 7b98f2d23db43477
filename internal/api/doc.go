// Wikifeed - Encyclopedia Article Feed and Selection Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/wikifeed

/*
Package api provides the HTTP interface of Wikifeed.

Handler methods are split across files:
  - handlers.go: Handler struct and constructor
  - handlers_helpers.go: response envelope, decoding and parameter parsing
  - handlers_health.go: liveness and system stats
  - handlers_articles.go: feed pages, sessions and single articles
  - handlers_clicks.go: click recording and click stats
  - handlers_users.go: users, preferences and categories
  - chi_router.go: route table and middleware stack

Every response uses the models.APIResponse envelope. Domain errors are
mapped to status codes in one place (errorResponse), so handlers only
decide what to call:

	page, err := h.feed.FetchPage(ctx, req)
	if err != nil {
	    respondFromError(w, r, err)
	    return
	}
*/
package api
