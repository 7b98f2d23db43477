// Wikifeed - Encyclopedia Article Feed and Selection Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/wikifeed

package recommend

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"math"
	"math/rand"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/tomtom215/wikifeed/internal/cache"
	"github.com/tomtom215/wikifeed/internal/clicks"
	"github.com/tomtom215/wikifeed/internal/cursor"
	"github.com/tomtom215/wikifeed/internal/logging"
	"github.com/tomtom215/wikifeed/internal/metrics"
	"github.com/tomtom215/wikifeed/internal/source"
)

// Catalog lists candidate articles and resolves their categories. It is
// implemented by the category index of a source.
type Catalog interface {
	ListArticleIDs(ctx context.Context, filter source.Filter) ([]string, error)
	CategoriesOf(ctx context.Context, id string) ([]string, error)
}

// History answers the click queries personalization needs.
type History interface {
	Count(ctx context.Context, userID int64) (int64, error)
	TopCategories(ctx context.Context, userID int64, limit int) ([]clicks.CategoryWeight, error)
}

// Request is one batch selection.
type Request struct {
	// Policy is the requested policy name; see ParsePolicy.
	Policy string

	// PageSize is the maximum batch length.
	PageSize int

	// UserID identifies the reader. Zero means anonymous.
	UserID int64

	// Categories filters the category policy.
	Categories []string

	// Served holds ids already delivered in this feed session.
	Served cursor.Set

	// Catalog is the article source to draw from.
	Catalog Catalog
}

// Batch is the result of a selection.
type Batch struct {
	// IDs are the selected article ids, at most PageSize, never previously
	// served.
	IDs []string

	// Requested is the policy asked for, as given.
	Requested Policy

	// Applied is the policy that produced IDs. It differs from Requested
	// when user_based falls back to random.
	Applied Policy

	// Personalized counts ids drawn from the reader's top categories.
	Personalized int

	// Err is a policy-level outcome: ErrUnknownPolicy or ErrEmptyCategory.
	Err error
}

// Engine selects article batches. It is safe for concurrent use.
type Engine struct {
	config   *Config
	history  History
	weights  map[string]float64 // lower-cased category -> jeopardy weight
	topCache *cache.Cache[int64, []clicks.CategoryWeight]
	logger   zerolog.Logger

	// Random source (protected by rngMu for concurrent access)
	rng   *rand.Rand
	rngMu sync.Mutex
}

// Option configures an Engine.
type Option func(*Engine)

// WithRand injects the random source, for reproducible selection.
func WithRand(r *rand.Rand) Option {
	return func(e *Engine) { e.rng = r }
}

// NewEngine creates an engine. history may be nil, in which case user_based
// always falls back to random.
func NewEngine(cfg *Config, history History, opts ...Option) (*Engine, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	cfg = cfg.Clone()

	weights := make(map[string]float64, len(cfg.JeopardyWeights))
	for category, w := range cfg.JeopardyWeights {
		weights[strings.ToLower(category)] = w
	}

	e := &Engine{
		config:   cfg,
		history:  history,
		weights:  weights,
		topCache: cache.New[int64, []clicks.CategoryWeight](cfg.TopCategoriesTTL),
		logger:   logging.WithComponent("recommend"),
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.rng == nil {
		seed := cfg.Seed
		if seed == 0 {
			seed = time.Now().UnixNano()
		}
		e.rng = rand.New(rand.NewSource(seed)) //nolint:gosec // math/rand is fine for article shuffling
	}
	return e, nil
}

// SelectBatch selects up to req.PageSize unserved articles with the requested
// policy. Policy-level outcomes are reported in Batch.Err; the returned error
// is non-nil only when the source is unreachable or ctx is done.
//
//nolint:gocritic // hugeParam: req passed by value for immutability
func (e *Engine) SelectBatch(ctx context.Context, req Request) (*Batch, error) {
	start := time.Now()
	batch := &Batch{IDs: []string{}, Requested: Policy(req.Policy)}

	policy, err := ParsePolicy(req.Policy)
	if err != nil {
		batch.Err = ErrUnknownPolicy
		e.record(batch, start)
		return batch, nil
	}
	batch.Requested = policy
	batch.Applied = policy

	if req.PageSize < 1 {
		return nil, fmt.Errorf("page size must be positive, got %d", req.PageSize)
	}
	if req.Catalog == nil {
		return nil, errors.New("request has no catalog")
	}

	filter := source.Filter{}
	if policy == PolicyCategory {
		filter.Categories = req.Categories
	}
	listed, err := req.Catalog.ListArticleIDs(ctx, filter)
	if err != nil {
		return nil, asUnavailable("list articles", err)
	}
	pool := dedupe(cursor.FilterUnserved(listed, req.Served))

	logger := e.logger.With().
		Str("policy", string(policy)).
		Int("pool", len(pool)).
		Int("page_size", req.PageSize).
		Logger()

	switch policy {
	case PolicyRandom:
		batch.IDs = e.random(pool, req.PageSize)
	case PolicyCategory:
		batch.IDs, err = e.byCategory(ctx, req.Catalog, pool, req.Categories, req.PageSize)
		if err == nil && len(batch.IDs) == 0 {
			batch.Err = ErrEmptyCategory
		}
	case PolicyJeopardy:
		batch.IDs, err = e.jeopardy(ctx, req.Catalog, pool, req.PageSize)
	case PolicyUserBased:
		err = e.userBased(ctx, req, pool, batch)
	}
	if err != nil {
		return nil, err
	}

	logger.Debug().
		Str("applied", string(batch.Applied)).
		Int("selected", len(batch.IDs)).
		Int("personalized", batch.Personalized).
		Msg("Batch selected")
	e.record(batch, start)
	return batch, nil
}

func (e *Engine) record(b *Batch, start time.Time) {
	applied := string(b.Applied)
	if applied == "" {
		applied = "none"
	}
	requested := string(b.Requested)
	if b.Err != nil && errors.Is(b.Err, ErrUnknownPolicy) {
		requested = "unknown"
	}
	metrics.RecordBatch(requested, applied, len(b.IDs), time.Since(start), OutcomeCode(b.Err))
}

// random is a uniform sample of the pool.
func (e *Engine) random(pool []string, pageSize int) []string {
	e.rngMu.Lock()
	defer e.rngMu.Unlock()
	return sampleUniform(e.rng, pool, pageSize)
}

// byCategory walks the pool in random order and keeps articles whose
// categories intersect the filter, stopping once the page is full. The
// result is a uniform sample of the matching articles.
func (e *Engine) byCategory(ctx context.Context, catalog Catalog, pool, filter []string, pageSize int) ([]string, error) {
	wanted := make(map[string]struct{}, len(filter))
	for _, c := range filter {
		if c = strings.ToLower(strings.TrimSpace(c)); c != "" {
			wanted[c] = struct{}{}
		}
	}
	if len(wanted) == 0 {
		return []string{}, nil
	}

	e.rngMu.Lock()
	order := sampleUniform(e.rng, pool, len(pool))
	e.rngMu.Unlock()

	out := make([]string, 0, pageSize)
	for _, id := range order {
		if len(out) == pageSize {
			break
		}
		cats, skip, err := e.categoriesOf(ctx, catalog, id)
		if err != nil {
			return nil, err
		}
		if skip {
			continue
		}
		for _, c := range cats {
			if _, ok := wanted[strings.ToLower(c)]; ok {
				out = append(out, id)
				break
			}
		}
	}
	return out, nil
}

// jeopardy draws by the summed jeopardy weight of each article's categories.
func (e *Engine) jeopardy(ctx context.Context, catalog Catalog, pool []string, pageSize int) ([]string, error) {
	e.rngMu.Lock()
	candidates := capCandidates(e.rng, pool, e.config.MaxCandidates)
	e.rngMu.Unlock()

	scored := make([]weighted, 0, len(candidates))
	for _, id := range candidates {
		cats, skip, err := e.categoriesOf(ctx, catalog, id)
		if err != nil {
			return nil, err
		}
		if skip {
			continue
		}
		var w float64
		for _, c := range cats {
			w += e.weights[strings.ToLower(c)]
		}
		scored = append(scored, weighted{id: id, weight: w})
	}

	e.rngMu.Lock()
	defer e.rngMu.Unlock()
	return sampleWeighted(e.rng, scored, pageSize), nil
}

// userBased fills batch from the reader's top categories, or falls back to
// random for anonymous and new readers.
//
//nolint:gocritic // hugeParam: req passed by value for immutability
func (e *Engine) userBased(ctx context.Context, req Request, pool []string, batch *Batch) error {
	top, err := e.personalization(ctx, req.UserID)
	if err != nil {
		return err
	}
	if len(top) == 0 {
		batch.Applied = PolicyRandom
		batch.IDs = e.random(pool, req.PageSize)
		return nil
	}

	topWeight := make(map[string]float64, len(top))
	for _, cw := range top {
		topWeight[strings.ToLower(cw.Category)] = cw.Weight
	}

	e.rngMu.Lock()
	candidates := capCandidates(e.rng, pool, e.config.MaxCandidates)
	e.rngMu.Unlock()

	var matching []weighted
	for _, id := range candidates {
		cats, skip, err := e.categoriesOf(ctx, req.Catalog, id)
		if err != nil {
			return err
		}
		if skip {
			continue
		}
		var w float64
		for _, c := range cats {
			w += topWeight[strings.ToLower(c)]
		}
		if w > 0 {
			matching = append(matching, weighted{id: id, weight: w})
		}
	}

	share := int(math.Round(float64(req.PageSize) * e.config.PersonalizedFraction))

	e.rngMu.Lock()
	defer e.rngMu.Unlock()

	personal := sampleWeighted(e.rng, matching, share)
	taken := cursor.NewSet(personal...)
	rest := sampleUniform(e.rng, cursor.FilterUnserved(pool, taken), req.PageSize-len(personal))

	ids := append(personal, rest...)
	shuffle(e.rng, ids)

	batch.IDs = ids
	batch.Personalized = len(personal)
	return nil
}

// personalization returns the reader's top categories, or nil when the
// reader is anonymous or has fewer than MinClicks clicks.
func (e *Engine) personalization(ctx context.Context, userID int64) ([]clicks.CategoryWeight, error) {
	if userID == 0 || e.history == nil {
		return nil, nil
	}
	n, err := e.history.Count(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("count clicks: %w", err)
	}
	if n < int64(e.config.MinClicks) {
		return nil, nil
	}

	if top, ok := e.topCache.Get(userID); ok {
		metrics.RecordCacheLookup("top_categories", true)
		return top, nil
	}
	metrics.RecordCacheLookup("top_categories", false)

	top, err := e.history.TopCategories(ctx, userID, e.config.TopN)
	if err != nil {
		return nil, fmt.Errorf("top categories: %w", err)
	}
	e.topCache.Set(userID, top)
	return top, nil
}

// categoriesOf looks up one candidate. skip is true for ids the source no
// longer knows; any other failure aborts the selection.
func (e *Engine) categoriesOf(ctx context.Context, catalog Catalog, id string) (cats []string, skip bool, err error) {
	cats, err = catalog.CategoriesOf(ctx, id)
	switch {
	case err == nil:
		return cats, false, nil
	case errors.Is(err, source.ErrNotFound):
		e.logger.Debug().Str("id", id).Msg("Skipping unknown candidate")
		return nil, true, nil
	default:
		return nil, false, asUnavailable("categories of "+id, err)
	}
}

// InvalidateUser drops the cached top categories of userID.
func (e *Engine) InvalidateUser(userID int64) {
	e.topCache.Delete(userID)
}

// JeopardyWeights returns a copy of the configured weight table.
func (e *Engine) JeopardyWeights() map[string]float64 {
	return maps.Clone(e.config.JeopardyWeights)
}

// Close stops background cache maintenance.
func (e *Engine) Close() {
	e.topCache.Close()
}

func asUnavailable(op string, err error) error {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) ||
		errors.Is(err, source.ErrSourceUnavailable) {
		return fmt.Errorf("%s: %w", op, err)
	}
	return fmt.Errorf("%s: %w: %w", op, source.ErrSourceUnavailable, err)
}

func dedupe(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
