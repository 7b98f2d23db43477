// Wikifeed - Encyclopedia Article Feed and Selection Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/wikifeed

package clicks

import (
	"context"
	"sync"
	"time"
)

// MemoryStore keeps click events in process memory. It is used by tests and
// by deployments that do not need click history to survive restarts.
type MemoryStore struct {
	mu       sync.RWMutex
	byUser   map[int64][]Event
	total    int64
	halfLife time.Duration
	now      func() time.Time
}

// StoreOption configures a click store.
type StoreOption func(*storeOptions)

type storeOptions struct {
	halfLife time.Duration
	now      func() time.Time
}

// WithHalfLife sets the recency half-life used by TopCategories.
func WithHalfLife(d time.Duration) StoreOption {
	return func(o *storeOptions) {
		if d > 0 {
			o.halfLife = d
		}
	}
}

// WithClock overrides the time source used to age clicks.
func WithClock(now func() time.Time) StoreOption {
	return func(o *storeOptions) { o.now = now }
}

func buildOptions(opts []StoreOption) storeOptions {
	o := storeOptions{halfLife: DefaultHalfLife, now: time.Now}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore(opts ...StoreOption) *MemoryStore {
	o := buildOptions(opts)
	return &MemoryStore{
		byUser:   make(map[int64][]Event),
		halfLife: o.halfLife,
		now:      o.now,
	}
}

// Append stores a copy of e.
func (s *MemoryStore) Append(_ context.Context, e *Event) error {
	stored := *e
	stored.Categories = append([]string(nil), e.Categories...)

	s.mu.Lock()
	s.byUser[e.UserID] = append(s.byUser[e.UserID], stored)
	s.total++
	s.mu.Unlock()
	return nil
}

// Count returns the number of clicks recorded for userID.
func (s *MemoryStore) Count(_ context.Context, userID int64) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return int64(len(s.byUser[userID])), nil
}

// TopCategories returns the user's highest weighted categories.
func (s *MemoryStore) TopCategories(_ context.Context, userID int64, limit int) ([]CategoryWeight, error) {
	s.mu.RLock()
	events := s.byUser[userID]
	s.mu.RUnlock()

	// Appends never modify existing elements, so the slice header read
	// under the lock is a stable snapshot.
	return rankCategories(events, s.now(), s.halfLife, limit), nil
}

// CategoryCounts returns occurrences per category.
func (s *MemoryStore) CategoryCounts(_ context.Context, userID int64) (map[string]int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	counts := make(map[string]int64)
	for _, e := range s.byUser[userID] {
		if len(e.Categories) == 0 {
			counts[CategoryGeneral]++
			continue
		}
		for _, c := range e.Categories {
			counts[c]++
		}
	}
	return counts, nil
}

// CountAll returns the number of clicks across all users.
func (s *MemoryStore) CountAll(_ context.Context) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.total, nil
}
