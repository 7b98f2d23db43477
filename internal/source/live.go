// Wikifeed - Encyclopedia Article Feed and Selection Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/wikifeed

package source

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/goccy/go-json"
	"github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/tomtom215/wikifeed/internal/config"
	"github.com/tomtom215/wikifeed/internal/logging"
	"github.com/tomtom215/wikifeed/internal/metrics"
)

// maxResponseBytes bounds every response body read from the remote API.
const maxResponseBytes = 8 << 20

// skippedPrefixes marks project pages that are not articles.
var skippedPrefixes = []string{"Wikipedia:", "Template:"}

// summaryResponse is the REST page summary payload.
type summaryResponse struct {
	Title     string `json:"title"`
	Extract   string `json:"extract"`
	Thumbnail *struct {
		Source string `json:"source"`
	} `json:"thumbnail"`
}

// queryResponse is the action API payload for prop=extracts|categories.
type queryResponse struct {
	Query struct {
		Pages map[string]struct {
			Title      string `json:"title"`
			Extract    string `json:"extract"`
			Categories []struct {
				Title string `json:"title"`
			} `json:"categories"`
		} `json:"pages"`
	} `json:"query"`
}

// Live draws articles from the Wikipedia REST and action APIs. It is not
// finite: every ListArticleIDs call returns a fresh random pool.
type Live struct {
	baseURL       string
	userAgent     string
	client        *http.Client
	contentClient *http.Client
	poolSize      int
	concurrency   int
	previewLength int
	limiter       *rate.Limiter
	breaker       *breaker
	summaries     *expirable.LRU[string, *Article]
	articles      *expirable.LRU[string, *Article]
	logger        zerolog.Logger
}

// NewLive creates a live source from configuration.
func NewLive(cfg *config.LiveSourceConfig) *Live {
	size := cfg.CacheSize
	if size <= 0 {
		size = 1000
	}
	concurrency := cfg.Concurrency
	if concurrency <= 0 {
		concurrency = 1
	}
	limit := rate.Inf
	if cfg.RatePerSecond > 0 {
		limit = rate.Limit(cfg.RatePerSecond)
	}
	burst := cfg.RateBurst
	if burst <= 0 {
		burst = 1
	}

	return &Live{
		baseURL:       strings.TrimRight(cfg.BaseURL, "/"),
		userAgent:     cfg.UserAgent,
		client:        &http.Client{Timeout: cfg.Timeout},
		contentClient: &http.Client{Timeout: cfg.ContentTimeout},
		poolSize:      cfg.PoolSize,
		concurrency:   concurrency,
		previewLength: cfg.PreviewLength,
		limiter:       rate.NewLimiter(limit, burst),
		breaker:       newBreaker("wikipedia-api"),
		summaries:     expirable.NewLRU[string, *Article](size, nil, cfg.CacheTTL),
		articles:      expirable.NewLRU[string, *Article](size, nil, cfg.CacheTTL),
		logger:        logging.WithComponent("source.live"),
	}
}

// Name implements Source.
func (l *Live) Name() string { return NameLive }

// Finite implements Source.
func (l *Live) Finite() bool { return false }

// ListArticleIDs fetches a pool of random article summaries concurrently and
// returns their ids, deduplicated. The filter is not applied remotely.
// Individual failures shrink the pool; only a pool with no ids at all
// because of failures is an error.
func (l *Live) ListArticleIDs(ctx context.Context, _ Filter) (_ []string, err error) {
	start := time.Now()
	defer func() {
		metrics.RecordSourceRequest(NameLive, "list", time.Since(start), errorKind(err), err)
	}()

	var (
		mu       sync.Mutex
		ids      []string
		seen     = make(map[string]struct{}, l.poolSize)
		failures int
		lastErr  error
	)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(l.concurrency)
	for i := 0; i < l.poolSize; i++ {
		g.Go(func() error {
			article, err := l.randomSummary(gctx)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				if ctxErr := ctx.Err(); ctxErr != nil {
					return ctxErr
				}
				failures++
				lastErr = err
				return nil
			}
			if article == nil {
				return nil
			}
			if _, dup := seen[article.ID]; !dup {
				seen[article.ID] = struct{}{}
				ids = append(ids, article.ID)
			}
			return nil
		})
	}
	if err = g.Wait(); err != nil {
		return nil, err
	}

	if len(ids) == 0 && failures > 0 {
		return nil, unavailable("random pool", lastErr)
	}
	if failures > 0 {
		l.logger.Debug().Int("failures", failures).Int("ids", len(ids)).Msg("Partial random pool")
	}
	return ids, nil
}

// randomSummary fetches one random page summary. Project pages yield nil.
func (l *Live) randomSummary(ctx context.Context) (*Article, error) {
	body, err := l.get(ctx, l.client, l.baseURL+"/api/rest_v1/page/random/summary")
	if err != nil {
		return nil, err
	}
	var resp summaryResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("decode random summary: %w", err)
	}
	if resp.Title == "" || hasSkippedPrefix(resp.Title) {
		return nil, nil
	}
	article := l.summaryArticle(&resp)
	l.summaries.Add(article.ID, article)
	return article, nil
}

// GetArticle returns a full article: summary, mapped categories and the
// readable text of the mobile HTML rendering. Category and content lookups
// degrade to the summary extract when they fail.
func (l *Live) GetArticle(ctx context.Context, id string) (_ *Article, err error) {
	id = IDFromTitle(id)
	if cached, ok := l.articles.Get(id); ok {
		metrics.RecordCacheLookup("live_articles", true)
		return copyArticle(cached), nil
	}
	metrics.RecordCacheLookup("live_articles", false)

	start := time.Now()
	defer func() {
		metrics.RecordSourceRequest(NameLive, "get", time.Since(start), errorKind(err), err)
	}()

	article, ok := l.summaries.Get(id)
	if ok {
		article = copyArticle(article)
	} else {
		body, err := l.get(ctx, l.client, l.baseURL+"/api/rest_v1/page/summary/"+url.PathEscape(id))
		if err != nil {
			return nil, l.classify(id, err)
		}
		var resp summaryResponse
		if err := json.Unmarshal(body, &resp); err != nil {
			return nil, unavailable("decode summary", err)
		}
		article = l.summaryArticle(&resp)
	}

	extract, wikiCategories, err := l.extractAndCategories(ctx, article.Title)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		l.logger.Debug().Err(err).Str("id", id).Msg("Category lookup failed, using summary")
	}
	if len(wikiCategories) > 0 {
		article.Categories = MapWikiCategories(wikiCategories)
	} else {
		article.Categories = ExtractCategories(article.Title + " " + article.Preview)
	}

	content := extract
	if html, err := l.get(ctx, l.contentClient, l.baseURL+"/api/rest_v1/page/mobile-html/"+url.PathEscape(id)); err == nil {
		if text := HTMLText(string(html)); text != "" {
			content = text
		}
	} else if ctxErr := ctx.Err(); ctxErr != nil {
		return nil, ctxErr
	}
	if content == "" {
		content = article.Preview
	}
	article.Content = content
	article.WordCount = WordCount(content)

	l.articles.Add(id, copyArticle(article))
	return article, nil
}

// extractAndCategories queries the action API for the plain-text extract and
// Wikipedia category names (without the "Category:" prefix).
func (l *Live) extractAndCategories(ctx context.Context, title string) (string, []string, error) {
	q := url.Values{}
	q.Set("action", "query")
	q.Set("titles", title)
	q.Set("prop", "extracts|categories")
	q.Set("explaintext", "1")
	q.Set("cllimit", "50")
	q.Set("format", "json")

	body, err := l.get(ctx, l.client, l.baseURL+"/w/api.php?"+q.Encode())
	if err != nil {
		return "", nil, err
	}
	var resp queryResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return "", nil, fmt.Errorf("decode query response: %w", err)
	}

	var (
		extract    string
		categories []string
	)
	for pageID, page := range resp.Query.Pages {
		if pageID == "-1" {
			continue
		}
		extract = page.Extract
		for _, c := range page.Categories {
			categories = append(categories, strings.TrimPrefix(c.Title, "Category:"))
		}
	}
	return extract, categories, nil
}

// get performs a rate-limited GET through the circuit breaker.
func (l *Live) get(ctx context.Context, client *http.Client, rawURL string) ([]byte, error) {
	if err := l.limiter.Wait(ctx); err != nil {
		return nil, err
	}
	return l.breaker.execute(func() ([]byte, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, http.NoBody)
		if err != nil {
			return nil, fmt.Errorf("create request: %w", err)
		}
		req.Header.Set("User-Agent", l.userAgent)
		req.Header.Set("Accept", "application/json")

		resp, err := client.Do(req)
		if err != nil {
			return nil, fmt.Errorf("execute request: %w", err)
		}
		defer resp.Body.Close()

		switch {
		case resp.StatusCode == http.StatusNotFound:
			return nil, ErrNotFound
		case resp.StatusCode != http.StatusOK:
			return nil, fmt.Errorf("unexpected status %d from %s", resp.StatusCode, req.URL.Path)
		}
		body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
		if err != nil {
			return nil, fmt.Errorf("read response: %w", err)
		}
		return body, nil
	})
}

func (l *Live) classify(id string, err error) error {
	switch {
	case errors.Is(err, ErrNotFound):
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return err
	default:
		return unavailable("get "+id, err)
	}
}

func (l *Live) summaryArticle(resp *summaryResponse) *Article {
	article := &Article{
		ID:      IDFromTitle(resp.Title),
		Title:   resp.Title,
		Preview: Preview(resp.Extract, l.previewLength),
		Source:  NameLive,
	}
	if resp.Thumbnail != nil {
		article.Thumbnail = resp.Thumbnail.Source
	}
	return article
}

func unavailable(op string, err error) error {
	if errors.Is(err, ErrSourceUnavailable) {
		return fmt.Errorf("%s: %w", op, err)
	}
	return fmt.Errorf("%w: %s: %w", ErrSourceUnavailable, op, err)
}

func hasSkippedPrefix(title string) bool {
	for _, p := range skippedPrefixes {
		if strings.HasPrefix(title, p) {
			return true
		}
	}
	return false
}

func copyArticle(a *Article) *Article {
	c := *a
	c.Categories = append([]string(nil), a.Categories...)
	return &c
}
