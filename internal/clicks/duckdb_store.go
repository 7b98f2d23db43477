// Wikifeed - Encyclopedia Article Feed and Selection Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/wikifeed

package clicks

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/goccy/go-json"

	"github.com/tomtom215/wikifeed/internal/metrics"
)

// DuckDBStore persists clicks in the clicks and click_categories tables.
// Each Append is a single transaction covering the click row and its
// category rows.
type DuckDBStore struct {
	db       *sql.DB
	halfLife time.Duration
	now      func() time.Time
}

// NewDuckDBStore creates a store on a migrated database connection.
func NewDuckDBStore(db *sql.DB, opts ...StoreOption) *DuckDBStore {
	o := buildOptions(opts)
	return &DuckDBStore{db: db, halfLife: o.halfLife, now: o.now}
}

// Append stores e and its category snapshot atomically.
func (s *DuckDBStore) Append(ctx context.Context, e *Event) (err error) {
	start := time.Now()
	defer func() { metrics.RecordDBQuery("insert", "clicks", time.Since(start), err) }()

	categories := e.Categories
	if categories == nil {
		categories = []string{}
	}
	encoded, err := json.Marshal(categories)
	if err != nil {
		return fmt.Errorf("encode categories: %w", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin click transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback() //nolint:errcheck // rollback after failure
		}
	}()

	ts := e.Timestamp.UTC()
	if _, err = tx.ExecContext(ctx,
		`INSERT INTO clicks (id, user_id, article_id, categories, ts) VALUES (?, ?, ?, ?, ?)`,
		e.ID, e.UserID, e.ArticleID, string(encoded), ts,
	); err != nil {
		return fmt.Errorf("insert click: %w", err)
	}
	for _, c := range e.Categories {
		if _, err = tx.ExecContext(ctx,
			`INSERT INTO click_categories (click_id, user_id, category, ts) VALUES (?, ?, ?, ?)`,
			e.ID, e.UserID, c, ts,
		); err != nil {
			return fmt.Errorf("insert click category: %w", err)
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit click: %w", err)
	}
	return nil
}

// Count returns the number of clicks recorded for userID.
func (s *DuckDBStore) Count(ctx context.Context, userID int64) (int64, error) {
	start := time.Now()
	var n int64
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM clicks WHERE user_id = ?`, userID).Scan(&n)
	metrics.RecordDBQuery("count", "clicks", time.Since(start), err)
	if err != nil {
		return 0, fmt.Errorf("count clicks: %w", err)
	}
	return n, nil
}

// topCategoriesQuery computes decayed weights in microseconds. The now and
// half-life parameters come from the store so results match MemoryStore.
const topCategoriesQuery = `
SELECT category,
       SUM(power(0.5, CAST(greatest(? - epoch_us(ts), 0) AS DOUBLE) / ?)) AS weight,
       MAX(ts) AS last_seen
FROM click_categories
WHERE user_id = ?
GROUP BY category
ORDER BY weight DESC, last_seen DESC, category ASC`

// TopCategories returns the user's highest weighted categories.
func (s *DuckDBStore) TopCategories(ctx context.Context, userID int64, limit int) (_ []CategoryWeight, err error) {
	start := time.Now()
	defer func() { metrics.RecordDBQuery("top_categories", "click_categories", time.Since(start), err) }()

	query := topCategoriesQuery
	args := []any{s.now().UTC().UnixMicro(), float64(s.halfLife.Microseconds()), userID}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query top categories: %w", err)
	}
	defer rows.Close()

	var out []CategoryWeight
	for rows.Next() {
		var cw CategoryWeight
		if err = rows.Scan(&cw.Category, &cw.Weight, &cw.LastSeen); err != nil {
			return nil, fmt.Errorf("scan top category: %w", err)
		}
		out = append(out, cw)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate top categories: %w", err)
	}
	return out, nil
}

// CategoryCounts returns occurrences per category, counting clicks without
// categories under General.
func (s *DuckDBStore) CategoryCounts(ctx context.Context, userID int64) (_ map[string]int64, err error) {
	start := time.Now()
	defer func() { metrics.RecordDBQuery("category_counts", "click_categories", time.Since(start), err) }()

	rows, err := s.db.QueryContext(ctx, `
		SELECT category, COUNT(*) FROM click_categories WHERE user_id = ? GROUP BY category
		UNION ALL
		SELECT ?, COUNT(*) FROM clicks c
		WHERE c.user_id = ?
		  AND NOT EXISTS (SELECT 1 FROM click_categories cc WHERE cc.click_id = c.id)`,
		userID, CategoryGeneral, userID)
	if err != nil {
		return nil, fmt.Errorf("query category counts: %w", err)
	}
	defer rows.Close()

	counts := make(map[string]int64)
	for rows.Next() {
		var (
			category string
			n        int64
		)
		if err = rows.Scan(&category, &n); err != nil {
			return nil, fmt.Errorf("scan category count: %w", err)
		}
		if n > 0 {
			counts[category] += n
		}
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate category counts: %w", err)
	}
	return counts, nil
}

// CountAll returns the number of clicks across all users.
func (s *DuckDBStore) CountAll(ctx context.Context) (int64, error) {
	start := time.Now()
	var n int64
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM clicks`).Scan(&n)
	metrics.RecordDBQuery("count_all", "clicks", time.Since(start), err)
	if err != nil {
		return 0, fmt.Errorf("count all clicks: %w", err)
	}
	return n, nil
}
