// Wikifeed - Encyclopedia Article Feed and Selection Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/wikifeed

package services

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/tomtom215/wikifeed/internal/logging"
)

// Job is one run of a periodic task.
type Job func(ctx context.Context) error

// PeriodicService runs a job on a fixed interval. A failed run is logged
// and retried at the next tick; it never restarts the service.
//
//	janitor := services.NewPeriodicService("session-janitor", time.Minute,
//	    func(context.Context) error { sessions.Cleanup(); return nil })
type PeriodicService struct {
	name     string
	interval time.Duration
	timeout  time.Duration
	job      Job
	logger   zerolog.Logger
}

// PeriodicOption configures a PeriodicService.
type PeriodicOption func(*PeriodicService)

// WithJobTimeout bounds each run. Default: the interval.
func WithJobTimeout(d time.Duration) PeriodicOption {
	return func(s *PeriodicService) { s.timeout = d }
}

// NewPeriodicService creates the service. A non-positive interval means one
// minute.
func NewPeriodicService(name string, interval time.Duration, job Job, opts ...PeriodicOption) *PeriodicService {
	if interval <= 0 {
		interval = time.Minute
	}
	s := &PeriodicService{
		name:     name,
		interval: interval,
		timeout:  interval,
		job:      job,
		logger:   logging.WithComponent("supervisor").With().Str("service", name).Logger(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Serve implements suture.Service.
func (s *PeriodicService) Serve(ctx context.Context) error {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	s.logger.Debug().Dur("interval", s.interval).Msg("Periodic service started")
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			s.run(ctx)
		}
	}
}

func (s *PeriodicService) run(ctx context.Context) {
	runCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	start := time.Now()
	if err := s.job(runCtx); err != nil {
		s.logger.Warn().Err(err).Dur("duration", time.Since(start)).Msg("Periodic job failed")
		return
	}
	s.logger.Trace().Dur("duration", time.Since(start)).Msg("Periodic job done")
}

// String implements fmt.Stringer for suture's logs.
func (s *PeriodicService) String() string {
	return s.name
}
