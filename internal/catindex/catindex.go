// Wikifeed - Encyclopedia Article Feed and Selection Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/wikifeed

// Package catindex memoizes the category tags of articles from one source.
//
// Lookups are cached without expiry unless a TTL is configured, so a repeated
// lookup never reaches the source. Concurrent misses for the same id share a
// single source call. Not-found results are returned to the caller and are
// not cached.
package catindex

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/tomtom215/wikifeed/internal/cache"
	"github.com/tomtom215/wikifeed/internal/metrics"
	"github.com/tomtom215/wikifeed/internal/source"
)

// Index is the category index for a single article source. It also exposes
// the source's listing so selection can treat it as a complete catalog.
type Index struct {
	src   source.Source
	cache *cache.Cache[string, []string]
	group singleflight.Group
	label string
}

// New creates an index over src. ttl 0 caches forever.
func New(src source.Source, ttl time.Duration) *Index {
	return &Index{
		src:   src,
		cache: cache.New[string, []string](ttl),
		label: "catindex_" + src.Name(),
	}
}

// Source returns the indexed source.
func (i *Index) Source() source.Source {
	return i.src
}

// ListArticleIDs delegates to the source.
func (i *Index) ListArticleIDs(ctx context.Context, filter source.Filter) ([]string, error) {
	return i.src.ListArticleIDs(ctx, filter)
}

// CategoriesOf returns the category tags of id. The returned slice is a copy.
func (i *Index) CategoriesOf(ctx context.Context, id string) ([]string, error) {
	if cats, ok := i.cache.Get(id); ok {
		metrics.RecordCacheLookup(i.label, true)
		return clone(cats), nil
	}
	metrics.RecordCacheLookup(i.label, false)

	ch := i.group.DoChan(id, func() (any, error) {
		if cats, ok := i.cache.Get(id); ok {
			return cats, nil
		}
		// Detached so one caller's cancellation does not fail the others
		// waiting on the same lookup.
		article, err := i.src.GetArticle(context.WithoutCancel(ctx), id)
		if err != nil {
			return nil, err
		}
		cats := clone(article.Categories)
		i.cache.Set(id, cats)
		return cats, nil
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, fmt.Errorf("categories of %s: %w", id, res.Err)
		}
		cats, _ := res.Val.([]string) //nolint:errcheck // only []string is stored
		return clone(cats), nil
	}
}

// Warm stores known categories, e.g. from an article fetched for display.
func (i *Index) Warm(id string, categories []string) {
	i.cache.Set(id, clone(categories))
}

// Len returns the number of cached entries.
func (i *Index) Len() int {
	return i.cache.Len()
}

// Stats returns cache statistics.
func (i *Index) Stats() cache.Stats {
	return i.cache.GetStats()
}

// Close stops the cache's cleanup goroutine, if any.
func (i *Index) Close() {
	i.cache.Close()
}

func clone(s []string) []string {
	return append([]string(nil), s...)
}
