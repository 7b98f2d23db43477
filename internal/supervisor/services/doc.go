// Wikifeed - Encyclopedia Article Feed and Selection Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/wikifeed

// Package services adapts Wikifeed components to suture.Service: the HTTP
// server, the event bus and periodic maintenance jobs.
package services
