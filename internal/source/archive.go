// Wikifeed - Encyclopedia Article Feed and Selection Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/wikifeed

package source

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/goccy/go-json"

	"github.com/tomtom215/wikifeed/internal/metrics"
)

// Archive is the finite local article source backed by the articles table.
// It is populated by the ingest command.
type Archive struct {
	db *sql.DB
}

// NewArchive creates an archive over a migrated database connection.
func NewArchive(db *sql.DB) *Archive {
	return &Archive{db: db}
}

// Name implements Source.
func (a *Archive) Name() string { return NameLocal }

// Finite implements Source.
func (a *Archive) Finite() bool { return true }

// ListArticleIDs returns every archived id in id order, or those tagged with
// any of filter.Categories (case-insensitive).
func (a *Archive) ListArticleIDs(ctx context.Context, filter Filter) (ids []string, err error) {
	start := time.Now()
	defer func() {
		metrics.RecordDBQuery("list_ids", "articles", time.Since(start), err)
		metrics.RecordSourceRequest(NameLocal, "list", time.Since(start), errorKind(err), err)
	}()

	query := `SELECT id FROM articles ORDER BY id`
	var args []any
	if len(filter.Categories) > 0 {
		placeholders := make([]string, len(filter.Categories))
		for i, c := range filter.Categories {
			placeholders[i] = "?"
			args = append(args, strings.ToLower(strings.TrimSpace(c)))
		}
		query = `SELECT DISTINCT a.id FROM articles a
			JOIN article_categories c ON c.article_id = a.id
			WHERE lower(c.category) IN (` + strings.Join(placeholders, ", ") + `)
			ORDER BY a.id`
	}

	rows, err := a.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: list archive: %w", ErrSourceUnavailable, err)
	}
	defer rows.Close()

	for rows.Next() {
		var id string
		if err = rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("%w: scan archive id: %w", ErrSourceUnavailable, err)
		}
		ids = append(ids, id)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: iterate archive: %w", ErrSourceUnavailable, err)
	}
	return ids, nil
}

// GetArticle returns the archived article with the given id.
func (a *Archive) GetArticle(ctx context.Context, id string) (_ *Article, err error) {
	start := time.Now()
	defer func() {
		metrics.RecordSourceRequest(NameLocal, "get", time.Since(start), errorKind(err), err)
	}()

	row := a.db.QueryRowContext(ctx, `
		SELECT id, title, categories, thumbnail, preview, word_count, content
		FROM articles WHERE id = ?`, id)
	article, err := scanArticle(row.Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: get %s: %w", ErrSourceUnavailable, id, err)
	}
	return article, nil
}

// Search returns summaries of articles whose title or content contains
// query (case-insensitive), title matches first.
func (a *Archive) Search(ctx context.Context, query string, limit int) (_ []Article, err error) {
	start := time.Now()
	defer func() { metrics.RecordDBQuery("search", "articles", time.Since(start), err) }()

	query = strings.TrimSpace(query)
	if query == "" {
		return nil, nil
	}
	if limit <= 0 {
		limit = 20
	}
	pattern := "%" + escapeLike(query) + "%"

	rows, err := a.db.QueryContext(ctx, `
		SELECT id, title, categories, thumbnail, preview, word_count, ''
		FROM articles
		WHERE title ILIKE ? ESCAPE '\' OR content ILIKE ? ESCAPE '\'
		ORDER BY (title ILIKE ? ESCAPE '\') DESC, title
		LIMIT ?`, pattern, pattern, pattern, limit)
	if err != nil {
		return nil, fmt.Errorf("search archive: %w", err)
	}
	defer rows.Close()

	var out []Article
	for rows.Next() {
		article, scanErr := scanArticle(rows.Scan)
		if scanErr != nil {
			err = scanErr
			return nil, fmt.Errorf("scan search result: %w", err)
		}
		out = append(out, *article)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate search results: %w", err)
	}
	return out, nil
}

// Count returns the number of archived articles.
func (a *Archive) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := a.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM articles`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count articles: %w", err)
	}
	return n, nil
}

func scanArticle(scan func(dest ...any) error) (*Article, error) {
	var (
		article    Article
		categories string
		thumbnail  sql.NullString
	)
	if err := scan(&article.ID, &article.Title, &categories, &thumbnail,
		&article.Preview, &article.WordCount, &article.Content); err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(categories), &article.Categories); err != nil {
		return nil, fmt.Errorf("decode categories of %s: %w", article.ID, err)
	}
	article.Thumbnail = thumbnail.String
	article.Source = NameLocal
	return &article, nil
}

func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}

func errorKind(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrNotFound):
		return "not_found"
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return "canceled"
	default:
		return "unavailable"
	}
}
