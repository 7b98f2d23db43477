// Wikifeed - Encyclopedia Article Feed and Selection Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/wikifeed

package users

import (
	"context"
	"sync"
	"time"
)

// MemoryStore keeps users in process memory.
type MemoryStore struct {
	mu     sync.RWMutex
	nextID int64
	users  map[int64]User
	names  map[string]int64
	prefs  map[int64]Preferences
	now    func() time.Time
}

// NewMemoryStore creates an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		users: make(map[int64]User),
		names: make(map[string]int64),
		prefs: make(map[int64]Preferences),
		now:   time.Now,
	}
}

// Create adds a user.
func (s *MemoryStore) Create(_ context.Context, name string) (*User, error) {
	name, err := NormalizeName(name)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, taken := s.names[nameKey(name)]; taken {
		return nil, ErrDuplicateName
	}
	s.nextID++
	u := User{ID: s.nextID, Name: name, CreatedAt: s.now().UTC()}
	s.users[u.ID] = u
	s.names[nameKey(name)] = u.ID
	return &u, nil
}

// Get returns the user with id.
func (s *MemoryStore) Get(_ context.Context, id int64) (*User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	u, ok := s.users[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &u, nil
}

// List returns all users ordered by name.
func (s *MemoryStore) List(_ context.Context) ([]User, error) {
	s.mu.RLock()
	out := make([]User, 0, len(s.users))
	for _, u := range s.users {
		out = append(out, u)
	}
	s.mu.RUnlock()

	sortByName(out)
	return out, nil
}

// Exists reports whether id is a known user.
func (s *MemoryStore) Exists(_ context.Context, id int64) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.users[id]
	return ok, nil
}

// Preferences returns the user's preferences or the defaults.
func (s *MemoryStore) Preferences(_ context.Context, id int64) (Preferences, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if _, ok := s.users[id]; !ok {
		return Preferences{}, ErrNotFound
	}
	if p, ok := s.prefs[id]; ok {
		return p, nil
	}
	return DefaultPreferences(), nil
}

// SetPreferences applies a partial update.
func (s *MemoryStore) SetPreferences(_ context.Context, id int64, update PreferencesUpdate) (Preferences, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.users[id]; !ok {
		return Preferences{}, ErrNotFound
	}
	current, ok := s.prefs[id]
	if !ok {
		current = DefaultPreferences()
	}
	next := update.apply(current, s.now().UTC())
	s.prefs[id] = next
	return next, nil
}

// Count returns the number of users.
func (s *MemoryStore) Count(_ context.Context) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return int64(len(s.users)), nil
}

// Close is a no-op.
func (s *MemoryStore) Close() error {
	return nil
}
