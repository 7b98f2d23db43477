// Wikifeed - Encyclopedia Article Feed and Selection Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/wikifeed

package source

import (
	"context"
	"fmt"
	"time"

	"github.com/goccy/go-json"

	"github.com/tomtom215/wikifeed/internal/metrics"
)

// Insert writes articles to the archive in one transaction, replacing any
// existing article with the same id. Either all are stored or none.
func (a *Archive) Insert(ctx context.Context, articles []Article) (err error) {
	if len(articles) == 0 {
		return nil
	}
	start := time.Now()
	defer func() { metrics.RecordDBQuery("insert", "articles", time.Since(start), err) }()

	tx, err := a.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin archive transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback() //nolint:errcheck // rollback after failure
		}
	}()

	now := time.Now().UTC()
	for i := range articles {
		art := &articles[i]
		if art.ID == "" {
			art.ID = IDFromTitle(art.Title)
		}
		categories := art.Categories
		if categories == nil {
			categories = []string{}
		}
		encoded, encErr := json.Marshal(categories)
		if encErr != nil {
			err = encErr
			return fmt.Errorf("encode categories of %s: %w", art.ID, err)
		}

		if _, err = tx.ExecContext(ctx, `DELETE FROM article_categories WHERE article_id = ?`, art.ID); err != nil {
			return fmt.Errorf("clear categories of %s: %w", art.ID, err)
		}
		if _, err = tx.ExecContext(ctx, `
			INSERT OR REPLACE INTO articles
				(id, title, categories, thumbnail, preview, word_count, content, ingested_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			art.ID, art.Title, string(encoded), art.Thumbnail, art.Preview, art.WordCount, art.Content, now,
		); err != nil {
			return fmt.Errorf("insert article %s: %w", art.ID, err)
		}
		for _, c := range categories {
			if _, err = tx.ExecContext(ctx,
				`INSERT INTO article_categories (article_id, category) VALUES (?, ?)`, art.ID, c,
			); err != nil {
				return fmt.Errorf("insert category of %s: %w", art.ID, err)
			}
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit archive batch: %w", err)
	}
	return nil
}
