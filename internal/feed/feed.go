// Wikifeed - Encyclopedia Article Feed and Selection Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/wikifeed

// Package feed assembles feed pages. A page request names a session, a
// source and a policy; the service picks unserved ids with the selection
// engine and resolves them to article summaries, both inside the session's
// lock.
package feed

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/tomtom215/wikifeed/internal/catindex"
	"github.com/tomtom215/wikifeed/internal/cursor"
	"github.com/tomtom215/wikifeed/internal/logging"
	"github.com/tomtom215/wikifeed/internal/recommend"
	"github.com/tomtom215/wikifeed/internal/source"
	"github.com/tomtom215/wikifeed/internal/users"
)

const (
	// DefaultFillRounds bounds selection rounds for non-finite sources.
	DefaultFillRounds = 3

	// resolveConcurrency bounds parallel article lookups for one page.
	resolveConcurrency = 8

	// resolveRetries bounds extra selection rounds that replace articles
	// the source failed to return.
	resolveRetries = 2
)

// ErrSearchUnsupported is returned by Search for sources without a text index.
var ErrSearchUnsupported = errors.New("source does not support search")

// searcher is implemented by sources that can match article text.
type searcher interface {
	Search(ctx context.Context, query string, limit int) ([]source.Article, error)
}

// PreferenceReader provides per-user feed defaults.
type PreferenceReader interface {
	Preferences(ctx context.Context, id int64) (users.Preferences, error)
}

// Request is one page request.
type Request struct {
	// SessionID continues a session; empty starts a new one.
	SessionID string

	// Source names the article source; empty uses the default.
	Source string

	// Algorithm is the selection policy. Empty uses the reader's saved
	// preference, then the default policy.
	Algorithm string

	// UserID identifies the reader; zero is anonymous.
	UserID int64

	// Category filters the category policy. Empty uses the reader's
	// saved category.
	Category string

	// Limit is the page size.
	Limit int
}

// Page is one assembled feed page.
type Page struct {
	SessionID        string           `json:"session_id"`
	Source           string           `json:"source"`
	Articles         []source.Article `json:"articles"`
	HasMore          bool             `json:"has_more"`
	Algorithm        string           `json:"algorithm"`
	AppliedAlgorithm string           `json:"applied_algorithm"`
	Personalized     int              `json:"personalized"`
	Notice           string           `json:"notice,omitempty"`
}

// Option configures a Service.
type Option func(*Service)

// WithPreferences resolves omitted algorithm and category from saved
// preferences.
func WithPreferences(p PreferenceReader) Option {
	return func(s *Service) { s.prefs = p }
}

// WithFillRounds overrides DefaultFillRounds.
func WithFillRounds(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.fillRounds = n
		}
	}
}

// WithCategoryTTL sets the category index TTL. Zero caches forever.
func WithCategoryTTL(ttl time.Duration) Option {
	return func(s *Service) { s.categoryTTL = ttl }
}

// Service serves feed pages. It is safe for concurrent use.
type Service struct {
	sources     *source.Registry
	indexes     map[string]*catindex.Index
	engine      *recommend.Engine
	sessions    *cursor.Registry
	prefs       PreferenceReader
	fillRounds  int
	categoryTTL time.Duration
	logger      zerolog.Logger
}

// NewService creates a feed service with one category index per source.
func NewService(sources *source.Registry, engine *recommend.Engine, sessions *cursor.Registry, opts ...Option) *Service {
	s := &Service{
		sources:    sources,
		engine:     engine,
		sessions:   sessions,
		fillRounds: DefaultFillRounds,
		logger:     logging.WithComponent("feed"),
	}
	for _, opt := range opts {
		opt(s)
	}

	s.indexes = make(map[string]*catindex.Index)
	for _, name := range sources.Names() {
		src, _ := sources.Get(name) //nolint:errcheck // name comes from Names
		s.indexes[name] = catindex.New(src, s.categoryTTL)
	}
	return s
}

// FetchPage serves the next page of the request's session.
func (s *Service) FetchPage(ctx context.Context, req Request) (*Page, error) {
	idx, err := s.index(req.Source)
	if err != nil {
		return nil, err
	}
	src := idx.Source()

	algorithm, category := s.defaults(ctx, req)
	policy, err := recommend.ParsePolicy(algorithm)
	if err != nil {
		return nil, err
	}

	var categories []string
	if category != "" {
		categories = []string{category}
	}

	page := &Page{
		Source:           src.Name(),
		Articles:         []source.Article{},
		Algorithm:        string(policy),
		AppliedAlgorithm: string(policy),
	}

	rounds := 1
	if !src.Finite() {
		rounds = s.fillRounds
	}

	var articles []source.Article
	fetch := func(ctx context.Context, served cursor.Set) ([]string, error) {
		var (
			ids      []string
			outcome  error
			failed   int
			lastErr  error
			retries  int
			retrying bool
		)
		exclude := served
		for round := 0; len(ids) < req.Limit; round++ {
			if round >= rounds {
				if !retrying || retries >= resolveRetries {
					break
				}
				retries++
			}
			retrying = false

			batch, err := s.engine.SelectBatch(ctx, recommend.Request{
				Policy:     string(policy),
				PageSize:   req.Limit - len(ids),
				UserID:     req.UserID,
				Categories: categories,
				Served:     exclude,
				Catalog:    idx,
			})
			if err != nil {
				return nil, err
			}
			if round == 0 {
				page.AppliedAlgorithm = string(batch.Applied)
			}
			page.Personalized += batch.Personalized
			if batch.Err != nil {
				outcome = batch.Err
				// A live listing is a fresh random pool; the next one may match.
				if !src.Finite() && errors.Is(batch.Err, recommend.ErrEmptyCategory) {
					continue
				}
				break
			}
			if len(batch.IDs) == 0 {
				break
			}

			res, err := s.resolve(ctx, idx, batch.IDs)
			if err != nil {
				return nil, err
			}
			ids = append(ids, res.kept...)
			articles = append(articles, res.articles...)
			exclude = cursor.Extend(exclude, batch.IDs)
			if len(res.failed) > 0 {
				failed += len(res.failed)
				lastErr = res.err
				retrying = true
			}
		}

		// A short page would exhaust the session while the skipped ids are
		// still unserved. Fail instead so the session stays as it was.
		if failed > 0 && len(ids) < req.Limit {
			return nil, fmt.Errorf("resolve page: %d unavailable: %w", failed, lastErr)
		}
		if len(ids) == 0 && outcome != nil {
			page.Notice = recommend.OutcomeCode(outcome)
		}
		return ids, nil
	}

	served, err := s.sessions.Serve(ctx, req.SessionID, req.Limit, fetch)
	if err != nil {
		return nil, err
	}
	page.SessionID = served.SessionID
	page.HasMore = served.HasMore

	delivered := cursor.NewSet(served.IDs...)
	for i := range articles {
		if delivered.Has(articles[i].ID) {
			page.Articles = append(page.Articles, articles[i])
		}
	}

	logging.Ctx(ctx).Debug().
		Str("session_id", page.SessionID).
		Str("source", page.Source).
		Str("algorithm", page.Algorithm).
		Str("applied", page.AppliedAlgorithm).
		Int("served", len(served.IDs)).
		Int("resolved", len(page.Articles)).
		Bool("has_more", page.HasMore).
		Msg("Feed page served")
	return page, nil
}

// defaults fills omitted algorithm and category from the reader's
// preferences.
//
//nolint:gocritic // hugeParam: req passed by value for immutability
func (s *Service) defaults(ctx context.Context, req Request) (algorithm, category string) {
	algorithm, category = req.Algorithm, req.Category
	if algorithm != "" && category != "" {
		return algorithm, category
	}

	if req.UserID != 0 && s.prefs != nil {
		prefs, err := s.prefs.Preferences(ctx, req.UserID)
		switch {
		case err == nil:
			if algorithm == "" {
				algorithm = prefs.Algorithm
			}
			if category == "" {
				category = prefs.SelectedCategory
			}
		case errors.Is(err, users.ErrNotFound):
		default:
			s.logger.Warn().Err(err).Int64("user_id", req.UserID).Msg("Preferences unavailable, using defaults")
		}
	}
	if algorithm == "" {
		algorithm = users.DefaultAlgorithm
	}
	return algorithm, category
}

// resolution is the outcome of resolving one selection round.
type resolution struct {
	// kept holds resolved and vanished ids in selection order. Vanished
	// ids are marked served but produce no article.
	kept     []string
	articles []source.Article

	// failed holds ids the source could not answer for now. They are
	// left unserved.
	failed []string
	err    error
}

// resolve fetches summaries for ids in order. A failing id is skipped
// without failing the others; only cancellation aborts the round.
func (s *Service) resolve(ctx context.Context, idx *catindex.Index, ids []string) (resolution, error) {
	resolved := make([]*source.Article, len(ids))
	errs := make([]error, len(ids))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(resolveConcurrency)
	for i, id := range ids {
		g.Go(func() error {
			article, err := idx.Source().GetArticle(gctx, id)
			if err != nil {
				if ctxErr := gctx.Err(); ctxErr != nil {
					return ctxErr
				}
				errs[i] = err
				return nil
			}
			idx.Warm(article.ID, article.Categories)
			summary := article.Summary()
			resolved[i] = &summary
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return resolution{}, err
	}

	res := resolution{
		kept:     make([]string, 0, len(ids)),
		articles: make([]source.Article, 0, len(ids)),
	}
	for i, id := range ids {
		switch err := errs[i]; {
		case err == nil:
			res.kept = append(res.kept, id)
			res.articles = append(res.articles, *resolved[i])
		case errors.Is(err, source.ErrNotFound):
			s.logger.Debug().Str("id", id).Msg("Skipping vanished article")
			res.kept = append(res.kept, id)
		default:
			s.logger.Warn().Err(err).Str("id", id).Msg("Skipping unavailable article")
			res.failed = append(res.failed, id)
			res.err = err
		}
	}
	return res, nil
}

// Article returns one full article from the named source.
func (s *Service) Article(ctx context.Context, sourceName, id string) (*source.Article, error) {
	idx, err := s.index(sourceName)
	if err != nil {
		return nil, err
	}
	article, err := idx.Source().GetArticle(ctx, id)
	if err != nil {
		return nil, err
	}
	idx.Warm(article.ID, article.Categories)
	return article, nil
}

// Search returns summaries matching query from the named source. Only the
// local archive supports it.
func (s *Service) Search(ctx context.Context, sourceName, query string, limit int) ([]source.Article, error) {
	idx, err := s.index(sourceName)
	if err != nil {
		return nil, err
	}
	sr, ok := idx.Source().(searcher)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrSearchUnsupported, idx.Source().Name())
	}
	results, err := sr.Search(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", source.ErrSourceUnavailable, err)
	}
	if results == nil {
		results = []source.Article{}
	}
	for i := range results {
		idx.Warm(results[i].ID, results[i].Categories)
	}
	return results, nil
}

// CategoriesOf returns the categories of id through the source's category
// index.
func (s *Service) CategoriesOf(ctx context.Context, sourceName, id string) ([]string, error) {
	idx, err := s.index(sourceName)
	if err != nil {
		return nil, err
	}
	return idx.CategoriesOf(ctx, id)
}

// EndSession discards a session. It reports whether the session existed.
func (s *Service) EndSession(sessionID string) bool {
	return s.sessions.End(sessionID)
}

// Session returns a snapshot of a session.
func (s *Service) Session(sessionID string) (cursor.Info, bool) {
	return s.sessions.Info(sessionID)
}

// SessionCount returns the number of sessions held in memory.
func (s *Service) SessionCount() int {
	return s.sessions.Len()
}

// BreakerStates reports the circuit breaker state of each source that has
// one.
func (s *Service) BreakerStates() map[string]string {
	states := make(map[string]string)
	for name, idx := range s.indexes {
		if b, ok := idx.Source().(interface{ BreakerState() string }); ok {
			states[name] = b.BreakerState()
		}
	}
	return states
}

// Sources returns the configured source names.
func (s *Service) Sources() []string {
	return s.sources.Names()
}

// DefaultSource returns the source used when a request names none.
func (s *Service) DefaultSource() string {
	return s.sources.Default()
}

// Close releases the category indexes.
func (s *Service) Close() {
	for _, idx := range s.indexes {
		idx.Close()
	}
}

func (s *Service) index(name string) (*catindex.Index, error) {
	if name == "" {
		name = s.sources.Default()
	}
	idx, ok := s.indexes[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", source.ErrUnknownSource, name)
	}
	return idx, nil
}
