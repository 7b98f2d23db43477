// Wikifeed - Encyclopedia Article Feed and Selection Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/wikifeed

// Package source provides the article sources the feed draws from: a local
// archive stored in DuckDB and the live Wikipedia REST API. Both satisfy
// Source, which is all the selection engine and feed service depend on.
package source

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
)

// Source names.
const (
	NameLocal = "local"
	NameLive  = "live"
)

var (
	// ErrNotFound is returned when an article id is unknown to the source.
	ErrNotFound = errors.New("article not found")

	// ErrSourceUnavailable is returned when the source cannot be reached or
	// has failed. The caller decides whether to retry; sources do not.
	ErrSourceUnavailable = errors.New("article source unavailable")

	// ErrUnknownSource is returned by Registry.Get for unconfigured names.
	ErrUnknownSource = errors.New("unknown article source")
)

// Article is a single encyclopedia article.
type Article struct {
	// ID is the article identifier, unique within its source. It is the
	// title with spaces replaced by underscores.
	ID         string   `json:"id"`
	Title      string   `json:"title"`
	Categories []string `json:"categories"`
	Thumbnail  string   `json:"thumbnail,omitempty"`
	Preview    string   `json:"preview"`
	WordCount  int      `json:"word_count"`
	Content    string   `json:"content,omitempty"`
	Source     string   `json:"source"`
}

// Summary returns a copy of the article without its full content.
func (a *Article) Summary() Article {
	s := *a
	s.Content = ""
	s.Categories = append([]string(nil), a.Categories...)
	return s
}

// Filter narrows ListArticleIDs. Sources may ignore it; callers must still
// check categories themselves.
type Filter struct {
	// Categories restricts results to articles carrying any of these tags.
	Categories []string
}

// Source is an article collaborator.
type Source interface {
	// Name identifies the source ("local", "live").
	Name() string

	// Finite reports whether ListArticleIDs enumerates a fixed population.
	// A non-finite source returns a fresh random sample on every call.
	Finite() bool

	// ListArticleIDs returns candidate article identifiers.
	ListArticleIDs(ctx context.Context, filter Filter) ([]string, error)

	// GetArticle returns one article or ErrNotFound.
	GetArticle(ctx context.Context, id string) (*Article, error)
}

// IDFromTitle converts an article title to its identifier.
func IDFromTitle(title string) string {
	return strings.ReplaceAll(strings.TrimSpace(title), " ", "_")
}

// TitleFromID converts an identifier back to a display title.
func TitleFromID(id string) string {
	return strings.ReplaceAll(id, "_", " ")
}

// Registry resolves sources by name.
type Registry struct {
	sources     map[string]Source
	defaultName string
}

// NewRegistry creates a registry. defaultName must name one of sources.
func NewRegistry(defaultName string, sources ...Source) (*Registry, error) {
	r := &Registry{sources: make(map[string]Source, len(sources)), defaultName: defaultName}
	for _, s := range sources {
		if _, dup := r.sources[s.Name()]; dup {
			return nil, fmt.Errorf("duplicate source %q", s.Name())
		}
		r.sources[s.Name()] = s
	}
	if _, ok := r.sources[defaultName]; !ok {
		return nil, fmt.Errorf("%w: default %q is not configured", ErrUnknownSource, defaultName)
	}
	return r, nil
}

// Get returns the named source, or the default when name is empty.
func (r *Registry) Get(name string) (Source, error) {
	if name == "" {
		name = r.defaultName
	}
	s, ok := r.sources[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownSource, name)
	}
	return s, nil
}

// Default returns the default source name.
func (r *Registry) Default() string {
	return r.defaultName
}

// Names returns configured source names in sorted order.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.sources))
	for name := range r.sources {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
