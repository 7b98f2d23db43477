// Wikifeed - Encyclopedia Article Feed and Selection Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/wikifeed

/*
Package models defines the HTTP wire types of the Wikifeed API.

Every endpoint answers with the APIResponse envelope:

	{
	  "status": "success",
	  "data": {...},
	  "metadata": {"timestamp": "2026-03-01T12:00:00Z", "request_id": "..."}
	}

Request bodies are decoded into the *Request types and validated with the
validation package before use. Domain types that already carry json tags
(source.Article, users.User, feed.Page) are returned as-is inside Data.
*/
package models
