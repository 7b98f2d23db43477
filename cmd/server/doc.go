// Wikifeed - Encyclopedia Article Feed and Selection Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/wikifeed

/*
Command server runs the Wikifeed HTTP API.

Startup order:

 1. Configuration (koanf: defaults, optional YAML, environment)
 2. DuckDB (click events and the local article archive)
 3. Badger user store
 4. Article sources: "local" archive and "live" Wikipedia client
 5. Selection engine, feed sessions and feed service
 6. Event bus with the cache-invalidation and counting handlers
 7. Supervisor tree: HTTP server, event bus, session janitor, checkpoints

SIGINT and SIGTERM cancel the tree; the HTTP server drains within
SHUTDOWN_TIMEOUT, then stores are closed in reverse order.

Common environment variables:

	HTTP_PORT=8080
	DUCKDB_PATH=/data/wikifeed.duckdb
	USERS_STORE_PATH=/data/users
	SOURCE_DEFAULT=local
	RECOMMEND_MIN_CLICKS=50
	LOG_LEVEL=info
*/
package main
