// Wikifeed - Encyclopedia Article Feed and Selection Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/wikifeed

// Package cursor tracks which articles a feed session has already served so
// that no article is repeated, and detects when a finite source is used up.
package cursor

// Set is an immutable set of served article ids. Extend returns a new Set
// and never changes its input, so a Set may be shared freely.
type Set struct {
	ids map[string]struct{}
}

// NewSet returns a set holding ids.
func NewSet(ids ...string) Set {
	return Extend(Set{}, ids)
}

// Has reports whether id has been served.
func (s Set) Has(id string) bool {
	_, ok := s.ids[id]
	return ok
}

// Len returns the number of served ids.
func (s Set) Len() int {
	return len(s.ids)
}

// FilterUnserved returns candidates not in served, preserving order.
func FilterUnserved(candidates []string, served Set) []string {
	out := make([]string, 0, len(candidates))
	for _, id := range candidates {
		if !served.Has(id) {
			out = append(out, id)
		}
	}
	return out
}

// Extend returns the union of served and ids.
func Extend(served Set, ids []string) Set {
	next := make(map[string]struct{}, len(served.ids)+len(ids))
	for id := range served.ids {
		next[id] = struct{}{}
	}
	for _, id := range ids {
		next[id] = struct{}{}
	}
	return Set{ids: next}
}
