// Wikifeed - Encyclopedia Article Feed and Selection Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/wikifeed

package catindex

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/tomtom215/wikifeed/internal/source"
)

// countingSource counts GetArticle calls per id.
type countingSource struct {
	mu       sync.Mutex
	calls    map[string]int
	articles map[string][]string
	delay    time.Duration
	failWith error
}

func newCountingSource(articles map[string][]string) *countingSource {
	return &countingSource{calls: make(map[string]int), articles: articles}
}

func (s *countingSource) Name() string { return "test" }
func (s *countingSource) Finite() bool { return true }

func (s *countingSource) ListArticleIDs(context.Context, source.Filter) ([]string, error) {
	ids := make([]string, 0, len(s.articles))
	for id := range s.articles {
		ids = append(ids, id)
	}
	return ids, nil
}

func (s *countingSource) GetArticle(_ context.Context, id string) (*source.Article, error) {
	s.mu.Lock()
	s.calls[id]++
	s.mu.Unlock()

	if s.delay > 0 {
		time.Sleep(s.delay)
	}
	if s.failWith != nil {
		return nil, s.failWith
	}
	cats, ok := s.articles[id]
	if !ok {
		return nil, source.ErrNotFound
	}
	return &source.Article{ID: id, Categories: cats}, nil
}

func (s *countingSource) callsFor(id string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls[id]
}

func TestCategoriesOfIsCached(t *testing.T) {
	t.Parallel()

	src := newCountingSource(map[string][]string{"Moon": {"Science", "Nature"}})
	idx := New(src, 0)
	defer idx.Close()
	ctx := context.Background()

	first, err := idx.CategoriesOf(ctx, "Moon")
	if err != nil {
		t.Fatalf("CategoriesOf() error = %v", err)
	}
	first[0] = "Mutated"

	second, err := idx.CategoriesOf(ctx, "Moon")
	if err != nil {
		t.Fatalf("CategoriesOf() second error = %v", err)
	}
	if second[0] != "Science" || len(second) != 2 {
		t.Errorf("CategoriesOf() = %v, cached value was mutated through the result", second)
	}
	if n := src.callsFor("Moon"); n != 1 {
		t.Errorf("source called %d times, want 1", n)
	}
	if idx.Len() != 1 {
		t.Errorf("Len() = %d, want 1", idx.Len())
	}
}

func TestCategoriesOfNotFoundIsNotCached(t *testing.T) {
	t.Parallel()

	src := newCountingSource(map[string][]string{})
	idx := New(src, 0)
	defer idx.Close()

	for i := 0; i < 2; i++ {
		if _, err := idx.CategoriesOf(context.Background(), "Atlantis"); !errors.Is(err, source.ErrNotFound) {
			t.Fatalf("CategoriesOf() error = %v, want ErrNotFound", err)
		}
	}
	if n := src.callsFor("Atlantis"); n != 2 {
		t.Errorf("source called %d times, want 2", n)
	}
}

func TestCategoriesOfPropagatesUnavailable(t *testing.T) {
	t.Parallel()

	src := newCountingSource(map[string][]string{"Moon": {"Science"}})
	src.failWith = source.ErrSourceUnavailable
	idx := New(src, 0)
	defer idx.Close()

	if _, err := idx.CategoriesOf(context.Background(), "Moon"); !errors.Is(err, source.ErrSourceUnavailable) {
		t.Errorf("CategoriesOf() error = %v, want ErrSourceUnavailable", err)
	}
	if idx.Len() != 0 {
		t.Errorf("failed lookup was cached")
	}
}

func TestCategoriesOfCollapsesConcurrentMisses(t *testing.T) {
	t.Parallel()

	src := newCountingSource(map[string][]string{"Moon": {"Science"}})
	src.delay = 50 * time.Millisecond
	idx := New(src, 0)
	defer idx.Close()

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := idx.CategoriesOf(context.Background(), "Moon"); err != nil {
				t.Errorf("CategoriesOf() error = %v", err)
			}
		}()
	}
	wg.Wait()

	if n := src.callsFor("Moon"); n != 1 {
		t.Errorf("source called %d times for concurrent misses, want 1", n)
	}
}

func TestCategoriesOfTTL(t *testing.T) {
	t.Parallel()

	src := newCountingSource(map[string][]string{"Moon": {"Science"}})
	idx := New(src, 20*time.Millisecond)
	defer idx.Close()
	ctx := context.Background()

	if _, err := idx.CategoriesOf(ctx, "Moon"); err != nil {
		t.Fatalf("CategoriesOf() error = %v", err)
	}
	time.Sleep(40 * time.Millisecond)
	if _, err := idx.CategoriesOf(ctx, "Moon"); err != nil {
		t.Fatalf("CategoriesOf() error = %v", err)
	}
	if n := src.callsFor("Moon"); n != 2 {
		t.Errorf("source called %d times after expiry, want 2", n)
	}
}

func TestWarm(t *testing.T) {
	t.Parallel()

	src := newCountingSource(map[string][]string{})
	idx := New(src, 0)
	defer idx.Close()

	idx.Warm("Moon", []string{"Science"})
	cats, err := idx.CategoriesOf(context.Background(), "Moon")
	if err != nil || len(cats) != 1 || cats[0] != "Science" {
		t.Errorf("CategoriesOf() = %v, %v", cats, err)
	}
	if n := src.callsFor("Moon"); n != 0 {
		t.Errorf("warmed entry reached the source %d times", n)
	}
}
