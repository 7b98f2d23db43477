// Wikifeed - Encyclopedia Article Feed and Selection Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/wikifeed

package cache

import (
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func TestCacheBasicOperations(t *testing.T) {
	t.Parallel()

	c := New[string, string](time.Minute)
	defer c.Close()

	c.Set("key1", "value1")
	value, exists := c.Get("key1")
	if !exists {
		t.Error("Expected key1 to exist")
	}
	if value != "value1" {
		t.Errorf("Expected value1, got %v", value)
	}

	if _, exists = c.Get("key2"); exists {
		t.Error("Expected key2 to not exist")
	}
}

func TestCacheExpiration(t *testing.T) {
	t.Parallel()

	c := New[string, string](100 * time.Millisecond)
	defer c.Close()

	c.Set("key1", "value1")
	if _, exists := c.Get("key1"); !exists {
		t.Error("Expected key1 to exist immediately after set")
	}

	time.Sleep(150 * time.Millisecond)

	if _, exists := c.Get("key1"); exists {
		t.Error("Expected key1 to be expired")
	}
}

func TestCacheZeroTTLNeverExpires(t *testing.T) {
	t.Parallel()

	c := New[string, []string](0)
	base := time.Now()
	c.now = func() time.Time { return base }

	c.Set("Alan_Turing", []string{"Science", "People"})

	c.now = func() time.Time { return base.Add(365 * 24 * time.Hour) }
	got, ok := c.Get("Alan_Turing")
	if !ok {
		t.Fatal("expected entry without ttl to survive")
	}
	if len(got) != 2 || got[0] != "Science" {
		t.Errorf("unexpected value %v", got)
	}
	if removed := c.Cleanup(); removed != 0 {
		t.Errorf("expected no evictions, got %d", removed)
	}
}

func TestCacheSlidingExpiry(t *testing.T) {
	t.Parallel()

	c := New[string, int](time.Minute, WithSlidingExpiry[string, int](), WithCleanupInterval[string, int](0))
	base := time.Now()
	now := base
	c.now = func() time.Time { return now }

	c.Set("session", 1)

	now = base.Add(50 * time.Second)
	if _, ok := c.Get("session"); !ok {
		t.Fatal("expected entry before ttl")
	}

	// Without the refresh above this would be past the original expiry.
	now = base.Add(100 * time.Second)
	if _, ok := c.Get("session"); !ok {
		t.Fatal("expected sliding expiry to keep entry alive")
	}

	now = base.Add(200 * time.Second)
	if _, ok := c.Get("session"); ok {
		t.Fatal("expected entry to expire after idle ttl")
	}
}

func TestCacheDelete(t *testing.T) {
	t.Parallel()

	c := New[string, string](time.Minute)
	defer c.Close()

	c.Set("key1", "value1")
	if !c.Delete("key1") {
		t.Error("expected Delete to report presence")
	}
	if c.Delete("key1") {
		t.Error("expected second Delete to report absence")
	}
	if _, exists := c.Get("key1"); exists {
		t.Error("Expected key1 to be deleted")
	}
}

func TestCacheClear(t *testing.T) {
	t.Parallel()

	c := New[string, int](time.Minute)
	defer c.Close()

	for i := 0; i < 10; i++ {
		c.Set(fmt.Sprintf("key%d", i), i)
	}
	c.Clear()

	if c.Len() != 0 {
		t.Errorf("expected empty cache, got %d entries", c.Len())
	}
	stats := c.GetStats()
	if stats.Evictions != 10 {
		t.Errorf("expected 10 evictions, got %d", stats.Evictions)
	}
	if stats.TotalKeys != 0 {
		t.Errorf("expected TotalKeys 0, got %d", stats.TotalKeys)
	}
}

func TestCacheGetOrCreate(t *testing.T) {
	t.Parallel()

	c := New[string, *int](0)

	var calls atomic.Int32
	create := func() *int {
		calls.Add(1)
		v := 7
		return &v
	}

	var wg sync.WaitGroup
	results := make([]*int, 20)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], _ = c.GetOrCreate("s", create)
		}(i)
	}
	wg.Wait()

	if calls.Load() != 1 {
		t.Errorf("expected create to run once, ran %d times", calls.Load())
	}
	for i, r := range results {
		if r != results[0] {
			t.Fatalf("result %d is a different value", i)
		}
	}
}

func TestCacheOnEvict(t *testing.T) {
	t.Parallel()

	var evicted []string
	c := New[string, int](time.Minute,
		WithCleanupInterval[string, int](0),
		WithOnEvict[string, int](func(k string, _ int) { evicted = append(evicted, k) }),
	)
	base := time.Now()
	c.now = func() time.Time { return base }

	c.Set("a", 1)
	c.SetWithTTL("b", 2, 0)

	c.now = func() time.Time { return base.Add(2 * time.Minute) }
	if removed := c.Cleanup(); removed != 1 {
		t.Fatalf("expected 1 removal, got %d", removed)
	}
	if len(evicted) != 1 || evicted[0] != "a" {
		t.Errorf("expected eviction of a, got %v", evicted)
	}
	if _, ok := c.Get("b"); !ok {
		t.Error("expected non-expiring entry to remain")
	}
}

func TestCacheStats(t *testing.T) {
	t.Parallel()

	c := New[string, string](time.Minute)
	defer c.Close()

	c.Set("key1", "value1")
	c.Get("key1")
	c.Get("key1")
	c.Get("missing")

	stats := c.GetStats()
	if stats.Hits != 2 {
		t.Errorf("Expected 2 hits, got %d", stats.Hits)
	}
	if stats.Misses != 1 {
		t.Errorf("Expected 1 miss, got %d", stats.Misses)
	}
	if rate := c.HitRate(); rate < 66 || rate > 67 {
		t.Errorf("Expected hit rate ~66.67%%, got %.2f", rate)
	}
}

func TestCacheConcurrentAccess(t *testing.T) {
	t.Parallel()

	c := New[int, int](time.Minute)
	defer c.Close()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			c.Set(n, n)
			c.Get(n)
			c.Delete(n - 1)
		}(i)
	}
	wg.Wait()
}
