// Wikifeed - Encyclopedia Article Feed and Selection Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/wikifeed

package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/tomtom215/wikifeed/internal/api"
	"github.com/tomtom215/wikifeed/internal/clicks"
	"github.com/tomtom215/wikifeed/internal/config"
	"github.com/tomtom215/wikifeed/internal/cursor"
	"github.com/tomtom215/wikifeed/internal/database"
	"github.com/tomtom215/wikifeed/internal/events"
	"github.com/tomtom215/wikifeed/internal/feed"
	"github.com/tomtom215/wikifeed/internal/logging"
	"github.com/tomtom215/wikifeed/internal/recommend"
	"github.com/tomtom215/wikifeed/internal/source"
	"github.com/tomtom215/wikifeed/internal/supervisor"
	"github.com/tomtom215/wikifeed/internal/supervisor/services"
	"github.com/tomtom215/wikifeed/internal/users"
)

// checkpointInterval is how often DuckDB's WAL is folded into the database
// file.
const checkpointInterval = 5 * time.Minute

// app holds the wired components. close releases them in reverse order of
// construction.
type app struct {
	cfg      *config.Config
	db       *database.DB
	users    *users.BadgerStore
	engine   *recommend.Engine
	sessions *cursor.Registry
	feed     *feed.Service
	bus      *events.Bus
	handler  http.Handler
}

// engineConfig converts the recommend section of the configuration.
func engineConfig(rc *config.RecommendConfig) *recommend.Config {
	cfg := recommend.DefaultConfig()
	cfg.MinClicks = rc.MinClicks
	cfg.PersonalizedFraction = rc.PersonalizedFraction
	cfg.TopN = rc.TopN
	cfg.MaxCandidates = rc.MaxCandidates
	cfg.Seed = rc.Seed
	cfg.TopCategoriesTTL = rc.TopCategoriesTTL
	if len(rc.JeopardyWeights) > 0 {
		cfg.JeopardyWeights = rc.JeopardyWeights
	}
	return cfg
}

// buildSources creates the enabled article sources.
func buildSources(cfg *config.Config, db *database.DB) (*source.Registry, error) {
	var srcs []source.Source
	if cfg.Source.Archive.Enabled {
		srcs = append(srcs, source.NewArchive(db.Conn()))
	}
	if cfg.Source.Live.Enabled {
		srcs = append(srcs, source.NewLive(&cfg.Source.Live))
	}
	if len(srcs) == 0 {
		return nil, errors.New("no article source is enabled")
	}
	return source.NewRegistry(cfg.Source.Default, srcs...)
}

func newApp(cfg *config.Config, version string) (*app, error) {
	a := &app{cfg: cfg}
	ready := false
	defer func() {
		if !ready {
			a.close()
		}
	}()

	var err error

	a.db, err = database.New(&cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	logging.Info().Str("path", a.db.Path()).Msg("Database initialized")

	a.users, err = users.OpenBadger(cfg.Users.StorePath)
	if err != nil {
		return nil, fmt.Errorf("open user store: %w", err)
	}

	registry, err := buildSources(cfg, a.db)
	if err != nil {
		return nil, err
	}
	logging.Info().
		Strs("sources", registry.Names()).
		Str("default", registry.Default()).
		Msg("Article sources configured")

	clickStore := clicks.NewDuckDBStore(a.db.Conn(), clicks.WithHalfLife(cfg.Recommend.HalfLife))

	a.engine, err = recommend.NewEngine(engineConfig(&cfg.Recommend), clickStore)
	if err != nil {
		return nil, fmt.Errorf("create selection engine: %w", err)
	}

	trackerOpts := []clicks.TrackerOption{}
	if cfg.Clicks.EnforceUsers {
		trackerOpts = append(trackerOpts, clicks.WithUserChecker(a.users))
	}
	if cfg.Events.Enabled {
		a.bus, err = events.NewBus(&cfg.Events)
		if err != nil {
			return nil, fmt.Errorf("create event bus: %w", err)
		}
		a.bus.HandleClicks("invalidate-top-categories", events.InvalidateTopCategories(a.engine))
		a.bus.HandleClicks("count-categories", events.CountCategories())
		trackerOpts = append(trackerOpts, clicks.WithPublisher(a.bus))
	}
	tracker := clicks.NewTracker(clickStore, trackerOpts...)

	a.sessions = cursor.NewRegistry(cfg.Session.IdleTTL)
	a.feed = feed.NewService(registry, a.engine, a.sessions,
		feed.WithPreferences(a.users),
		feed.WithFillRounds(cfg.Feed.FillRounds),
		feed.WithCategoryTTL(cfg.CatIndex.TTL),
	)

	handlerOpts := []api.HandlerOption{api.WithDatabase(a.db), api.WithVersion(version)}
	if a.bus != nil {
		handlerOpts = append(handlerOpts, api.WithEventBus(a.bus))
	}
	h := api.NewHandler(cfg, a.feed, tracker, a.users, a.engine.JeopardyWeights(), handlerOpts...)
	a.handler = api.NewRouter(h, api.ChiMiddlewareConfigFrom(&cfg.Security)).SetupChi()
	ready = true
	return a, nil
}

// supervise adds the long-running services to tree.
func (a *app) supervise(tree *supervisor.SupervisorTree) {
	server := &http.Server{
		Addr:              a.cfg.Server.Addr(),
		Handler:           a.handler,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       a.cfg.Server.Timeout,
		WriteTimeout:      a.cfg.Server.Timeout,
		IdleTimeout:       2 * a.cfg.Server.Timeout,
	}
	tree.AddAPIService(services.NewHTTPServerService(server, a.cfg.Server.ShutdownTimeout))

	if a.bus != nil {
		tree.AddMessagingService(services.NewEventBusService(a.bus))
	}

	tree.AddDataService(services.NewPeriodicService("session-janitor", a.cfg.Session.JanitorInterval,
		func(context.Context) error {
			if n := a.sessions.Cleanup(); n > 0 {
				logging.Debug().Int("expired", n).Msg("Feed sessions expired")
			}
			return nil
		}))
	tree.AddDataService(services.NewPeriodicService("duckdb-checkpoint", checkpointInterval, a.db.Checkpoint))
}

func (a *app) close() {
	if a.feed != nil {
		a.feed.Close()
	}
	if a.engine != nil {
		a.engine.Close()
	}
	if a.bus != nil {
		if err := a.bus.Close(); err != nil {
			logging.Warn().Err(err).Msg("Error closing event bus")
		}
	}
	if a.users != nil {
		if err := a.users.Close(); err != nil {
			logging.Error().Err(err).Msg("Error closing user store")
		}
	}
	if a.db != nil {
		if err := a.db.Close(); err != nil {
			logging.Error().Err(err).Msg("Error closing database")
		}
	}
}
