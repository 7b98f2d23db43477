// Wikifeed - Encyclopedia Article Feed and Selection Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/wikifeed

package cursor

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/tomtom215/wikifeed/internal/cache"
	"github.com/tomtom215/wikifeed/internal/logging"
	"github.com/tomtom215/wikifeed/internal/metrics"
)

// DefaultIdleTTL is how long an unused session is kept.
const DefaultIdleTTL = 30 * time.Minute

// ErrInvalidPageSize is returned by Serve for a page size below one.
var ErrInvalidPageSize = errors.New("page size must be positive")

// State is the lifecycle of a session.
type State int

const (
	// StateEmpty means nothing has been served yet.
	StateEmpty State = iota
	// StateServing means at least one full page has been served.
	StateServing
	// StateExhausted is terminal: the source had nothing more to offer.
	StateExhausted
)

func (s State) String() string {
	switch s {
	case StateServing:
		return "serving"
	case StateExhausted:
		return "exhausted"
	default:
		return "empty"
	}
}

// FetchFunc selects up to pageSize ids not in served.
type FetchFunc func(ctx context.Context, served Set) ([]string, error)

// Page is the result of one Serve call.
type Page struct {
	SessionID string
	IDs       []string
	HasMore   bool
	State     State
}

// Info is a point-in-time view of a session.
type Info struct {
	ID           string    `json:"session_id"`
	State        string    `json:"state"`
	Served       int       `json:"served"`
	Pages        int       `json:"pages"`
	CreatedAt    time.Time `json:"created_at"`
	LastServedAt time.Time `json:"last_served_at,omitempty"`
}

type session struct {
	mu           sync.Mutex
	id           string
	served       Set
	state        State
	pages        int
	createdAt    time.Time
	lastServedAt time.Time
}

// Registry holds feed sessions in memory. Sessions idle for longer than the
// TTL are dropped by Cleanup.
type Registry struct {
	sessions *cache.Cache[string, *session]
}

// NewRegistry creates a registry. Expired sessions are removed only when
// Cleanup runs, which the session janitor does periodically.
func NewRegistry(idleTTL time.Duration) *Registry {
	if idleTTL <= 0 {
		idleTTL = DefaultIdleTTL
	}
	return &Registry{
		sessions: cache.New[string, *session](idleTTL,
			cache.WithSlidingExpiry[string, *session](),
			cache.WithCleanupInterval[string, *session](0),
		),
	}
}

// Serve runs fetch for the session and records the result. The session's
// lock is held from reading the served set until the state transition, so
// concurrent calls on one session never serve the same id twice.
//
// An empty sessionID starts a new session. Once a fetch returns fewer than
// pageSize ids the session is exhausted, and every later call returns an
// empty page without invoking fetch. A failed fetch leaves the session
// unchanged.
func (r *Registry) Serve(ctx context.Context, sessionID string, pageSize int, fetch FetchFunc) (Page, error) {
	if pageSize < 1 {
		return Page{}, ErrInvalidPageSize
	}
	if sessionID == "" {
		sessionID = uuid.NewString()
	}

	s, created := r.sessions.GetOrCreate(sessionID, func() *session {
		return &session{id: sessionID, served: NewSet(), createdAt: time.Now()}
	})
	if created {
		metrics.ActiveSessions.Set(float64(r.sessions.Len()))
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state == StateExhausted {
		return Page{SessionID: sessionID, IDs: []string{}, State: StateExhausted}, nil
	}

	ids, err := fetch(ctx, s.served)
	if err != nil {
		return Page{}, err
	}
	ids = dedupe(FilterUnserved(ids, s.served))
	if len(ids) > pageSize {
		ids = ids[:pageSize]
	}

	s.served = Extend(s.served, ids)
	s.pages++
	s.lastServedAt = time.Now()
	if len(ids) < pageSize {
		s.state = StateExhausted
		metrics.SessionsExhausted.Inc()
		logging.Ctx(ctx).Debug().
			Str("session_id", sessionID).
			Int("served", s.served.Len()).
			Msg("Feed session exhausted")
	} else {
		s.state = StateServing
	}

	return Page{
		SessionID: sessionID,
		IDs:       ids,
		HasMore:   s.state != StateExhausted,
		State:     s.state,
	}, nil
}

// Info returns a snapshot of the session.
func (r *Registry) Info(sessionID string) (Info, bool) {
	s, ok := r.sessions.Get(sessionID)
	if !ok {
		return Info{}, false
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return Info{
		ID:           s.id,
		State:        s.state.String(),
		Served:       s.served.Len(),
		Pages:        s.pages,
		CreatedAt:    s.createdAt,
		LastServedAt: s.lastServedAt,
	}, true
}

// End discards a session. It reports whether the session existed.
func (r *Registry) End(sessionID string) bool {
	ok := r.sessions.Delete(sessionID)
	metrics.ActiveSessions.Set(float64(r.sessions.Len()))
	return ok
}

// Cleanup removes idle sessions and returns how many were removed.
func (r *Registry) Cleanup() int {
	n := r.sessions.Cleanup()
	metrics.ActiveSessions.Set(float64(r.sessions.Len()))
	return n
}

// Len returns the number of sessions held, including idle ones not yet
// cleaned up.
func (r *Registry) Len() int {
	return r.sessions.Len()
}

func dedupe(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := ids[:0]
	for _, id := range ids {
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
