// Wikifeed - Encyclopedia Article Feed and Selection Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/wikifeed

/*
Package supervisor runs the long-lived parts of Wikifeed under a suture v4
supervisor tree.

Services are grouped into three layers so that a failing layer restarts on
its own:

	"wikifeed"
	├── "data-layer"
	│   ├── session-janitor     (expired feed sessions)
	│   └── duckdb-checkpoint   (periodic WAL checkpoint)
	├── "messaging-layer"
	│   └── event-bus           (watermill click router)
	└── "api-layer"
	    └── http-server

Supervisor events (start, failure, backoff) are logged through the shared
zerolog backend via sutureslog.

	tree, err := supervisor.NewSupervisorTree(logging.NewSlogLogger(), supervisor.DefaultTreeConfig())
	tree.AddAPIService(services.NewHTTPServerService(server, cfg.Server.ShutdownTimeout))
	if err := tree.Serve(ctx); err != nil && !errors.Is(err, context.Canceled) {
	    ...
	}
*/
package supervisor
