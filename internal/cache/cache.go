// Wikifeed - Encyclopedia Article Feed and Selection Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/wikifeed

// Package cache provides a thread-safe, generic in-memory cache with optional
// TTL expiry. It backs the category index (no expiry), the per-user
// top-category cache (short TTL) and the feed session registry (sliding idle
// expiry).
package cache

import (
	"sync"
	"time"
)

// DefaultCleanupInterval is how often expired entries are swept.
const DefaultCleanupInterval = 5 * time.Minute

type entry[V any] struct {
	value     V
	expiresAt time.Time // zero means never
}

func (e entry[V]) expired(now time.Time) bool {
	return !e.expiresAt.IsZero() && now.After(e.expiresAt)
}

// Stats tracks cache performance metrics.
type Stats struct {
	Hits        int64
	Misses      int64
	Evictions   int64
	TotalKeys   int64
	LastCleanup time.Time
}

// Option configures a Cache.
type Option[K comparable, V any] func(*Cache[K, V])

// WithSlidingExpiry refreshes an entry's expiry on every successful Get.
func WithSlidingExpiry[K comparable, V any]() Option[K, V] {
	return func(c *Cache[K, V]) { c.sliding = true }
}

// WithCleanupInterval overrides DefaultCleanupInterval.
func WithCleanupInterval[K comparable, V any](d time.Duration) Option[K, V] {
	return func(c *Cache[K, V]) { c.cleanupInterval = d }
}

// WithOnEvict registers a callback invoked for entries removed by expiry.
// The callback runs without the cache lock held.
func WithOnEvict[K comparable, V any](fn func(K, V)) Option[K, V] {
	return func(c *Cache[K, V]) { c.onEvict = fn }
}

// Cache provides a thread-safe in-memory cache with TTL support.
//
// A ttl of zero disables expiry: entries live until deleted. No background
// goroutine is started in that case.
type Cache[K comparable, V any] struct {
	mu      sync.RWMutex
	entries map[K]entry[V]
	ttl     time.Duration
	sliding bool
	onEvict func(K, V)

	cleanupInterval time.Duration
	stop            chan struct{}
	stopOnce        sync.Once

	statsMu sync.Mutex
	stats   Stats

	now func() time.Time
}

// New creates a cache whose entries expire after ttl (zero means never).
//
//	idx := cache.New[string, []string](0)
//	idx.Set("Alan_Turing", []string{"Science", "People"})
func New[K comparable, V any](ttl time.Duration, opts ...Option[K, V]) *Cache[K, V] {
	c := &Cache[K, V]{
		entries:         make(map[K]entry[V]),
		ttl:             ttl,
		cleanupInterval: DefaultCleanupInterval,
		stop:            make(chan struct{}),
		now:             time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	c.stats.LastCleanup = c.now()

	if c.ttl > 0 && c.cleanupInterval > 0 {
		go c.cleanupLoop()
	}
	return c
}

// Get retrieves a value, treating expired entries as missing.
func (c *Cache[K, V]) Get(key K) (V, bool) {
	now := c.now()

	c.mu.RLock()
	e, exists := c.entries[key]
	c.mu.RUnlock()

	if !exists {
		c.record(func(s *Stats) { s.Misses++ })
		var zero V
		return zero, false
	}

	if e.expired(now) {
		c.mu.Lock()
		// Re-check: a concurrent Set may have replaced the entry.
		if cur, ok := c.entries[key]; ok && cur.expired(now) {
			delete(c.entries, key)
		}
		c.mu.Unlock()
		c.record(func(s *Stats) { s.Misses++; s.Evictions++ })
		if c.onEvict != nil {
			c.onEvict(key, e.value)
		}
		var zero V
		return zero, false
	}

	if c.sliding && c.ttl > 0 {
		c.mu.Lock()
		if cur, ok := c.entries[key]; ok {
			cur.expiresAt = now.Add(c.ttl)
			c.entries[key] = cur
		}
		c.mu.Unlock()
	}

	c.record(func(s *Stats) { s.Hits++ })
	return e.value, true
}

// Set stores a value with the cache's default TTL.
func (c *Cache[K, V]) Set(key K, value V) {
	c.SetWithTTL(key, value, c.ttl)
}

// SetWithTTL stores a value with a custom TTL (zero means never expires).
func (c *Cache[K, V]) SetWithTTL(key K, value V, ttl time.Duration) {
	c.mu.Lock()
	c.entries[key] = entry[V]{value: value, expiresAt: c.expiry(ttl)}
	n := int64(len(c.entries))
	c.mu.Unlock()

	c.record(func(s *Stats) { s.TotalKeys = n })
}

// GetOrCreate returns the live value for key, or stores and returns the
// result of create. The check and insert happen under one lock so that
// concurrent callers for the same key observe a single value.
func (c *Cache[K, V]) GetOrCreate(key K, create func() V) (value V, created bool) {
	now := c.now()

	c.mu.Lock()
	if e, ok := c.entries[key]; ok && !e.expired(now) {
		if c.sliding && c.ttl > 0 {
			e.expiresAt = now.Add(c.ttl)
			c.entries[key] = e
		}
		c.mu.Unlock()
		c.record(func(s *Stats) { s.Hits++ })
		return e.value, false
	}
	value = create()
	c.entries[key] = entry[V]{value: value, expiresAt: c.expiry(c.ttl)}
	n := int64(len(c.entries))
	c.mu.Unlock()

	c.record(func(s *Stats) { s.Misses++; s.TotalKeys = n })
	return value, true
}

// Delete removes a specific entry. It reports whether the key was present.
func (c *Cache[K, V]) Delete(key K) bool {
	c.mu.Lock()
	_, ok := c.entries[key]
	delete(c.entries, key)
	n := int64(len(c.entries))
	c.mu.Unlock()

	if ok {
		c.record(func(s *Stats) { s.Evictions++; s.TotalKeys = n })
	}
	return ok
}

// Clear removes all entries.
func (c *Cache[K, V]) Clear() {
	c.mu.Lock()
	evictions := int64(len(c.entries))
	c.entries = make(map[K]entry[V])
	c.mu.Unlock()

	c.record(func(s *Stats) { s.Evictions += evictions; s.TotalKeys = 0 })
}

// Len returns the number of stored entries, including expired ones not yet swept.
func (c *Cache[K, V]) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// GetStats returns a snapshot of cache statistics.
func (c *Cache[K, V]) GetStats() Stats {
	c.statsMu.Lock()
	defer c.statsMu.Unlock()
	return c.stats
}

// HitRate returns the cache hit rate as a percentage.
func (c *Cache[K, V]) HitRate() float64 {
	stats := c.GetStats()
	total := stats.Hits + stats.Misses
	if total == 0 {
		return 0.0
	}
	return float64(stats.Hits) / float64(total) * 100.0
}

// Close stops the background cleanup goroutine. The cache stays usable.
func (c *Cache[K, V]) Close() {
	c.stopOnce.Do(func() { close(c.stop) })
}

// Cleanup removes all expired entries immediately and returns how many were removed.
func (c *Cache[K, V]) Cleanup() int {
	now := c.now()

	type evicted struct {
		key   K
		value V
	}
	var removed []evicted

	c.mu.Lock()
	for key, e := range c.entries {
		if e.expired(now) {
			delete(c.entries, key)
			removed = append(removed, evicted{key, e.value})
		}
	}
	n := int64(len(c.entries))
	c.mu.Unlock()

	c.record(func(s *Stats) {
		s.Evictions += int64(len(removed))
		s.TotalKeys = n
		s.LastCleanup = now
	})

	if c.onEvict != nil {
		for _, r := range removed {
			c.onEvict(r.key, r.value)
		}
	}
	return len(removed)
}

func (c *Cache[K, V]) cleanupLoop() {
	ticker := time.NewTicker(c.cleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			c.Cleanup()
		case <-c.stop:
			return
		}
	}
}

func (c *Cache[K, V]) expiry(ttl time.Duration) time.Time {
	if ttl <= 0 {
		return time.Time{}
	}
	return c.now().Add(ttl)
}

func (c *Cache[K, V]) record(fn func(*Stats)) {
	c.statsMu.Lock()
	fn(&c.stats)
	c.statsMu.Unlock()
}
