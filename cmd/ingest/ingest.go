// Wikifeed - Encyclopedia Article Feed and Selection Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/wikifeed

package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/goccy/go-json"

	"github.com/tomtom215/wikifeed/internal/logging"
	"github.com/tomtom215/wikifeed/internal/source"
)

const (
	// maxLineBytes bounds a single dump line. Long articles run to a few
	// hundred kilobytes of HTML.
	maxLineBytes = 16 << 20

	wikiCategoryPrefix = "Category:"
)

// record is one line of a JSON Lines dump.
type record struct {
	Title      string   `json:"title"`
	Text       string   `json:"text"`
	HTML       string   `json:"html"`
	Thumbnail  string   `json:"thumbnail"`
	Categories []string `json:"categories"`
}

// options controls conversion and batching.
type options struct {
	MinWords      int
	MaxCategories int
	BatchSize     int
	PreviewLength int
	DryRun        bool
}

// inserter stores a batch of articles atomically.
type inserter interface {
	Insert(ctx context.Context, articles []source.Article) error
}

// result summarizes an ingestion run.
type result struct {
	Lines     int
	Inserted  int
	Short     int
	Malformed int
	Batches   int
}

// skipReason explains why convert rejected a record.
type skipReason int

const (
	keep skipReason = iota
	skipMalformed
	skipShort
)

// convert turns a dump record into an archive article.
func convert(rec *record, opts options) (source.Article, skipReason) {
	title := strings.TrimSpace(rec.Title)
	if title == "" {
		return source.Article{}, skipMalformed
	}

	text := rec.Text
	if strings.TrimSpace(text) == "" && rec.HTML != "" {
		text = source.HTMLText(rec.HTML)
	}
	text = strings.Join(strings.Fields(text), " ")
	if text == "" {
		return source.Article{}, skipMalformed
	}

	words := source.WordCount(text)
	if words < opts.MinWords {
		return source.Article{}, skipShort
	}

	var categories []string
	if wiki := wikiCategories(rec.Categories); len(wiki) > 0 {
		categories = source.MapWikiCategories(wiki)
	} else {
		categories = source.ExtractCategories(text)
	}

	return source.Article{
		ID:         source.IDFromTitle(title),
		Title:      title,
		Categories: source.LimitCategories(categories, opts.MaxCategories),
		Thumbnail:  strings.TrimSpace(rec.Thumbnail),
		Preview:    source.Preview(text, opts.PreviewLength),
		WordCount:  words,
		Content:    text,
		Source:     source.NameLocal,
	}, keep
}

func wikiCategories(raw []string) []string {
	out := make([]string, 0, len(raw))
	for _, c := range raw {
		c = strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(c), wikiCategoryPrefix))
		if c != "" {
			out = append(out, c)
		}
	}
	return out
}

// ingest reads a dump from r and writes accepted articles to w in batches.
// Malformed and short records are counted and skipped. A failed batch
// aborts the run; batches already committed stay committed.
func ingest(ctx context.Context, r io.Reader, w inserter, opts options) (result, error) {
	var res result
	if opts.BatchSize < 1 {
		opts.BatchSize = 1
	}

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64<<10), maxLineBytes)

	batch := make([]source.Article, 0, opts.BatchSize)
	flush := func() error {
		if len(batch) == 0 {
			return nil
		}
		if !opts.DryRun {
			if err := w.Insert(ctx, batch); err != nil {
				return fmt.Errorf("insert batch %d: %w", res.Batches+1, err)
			}
		}
		res.Batches++
		res.Inserted += len(batch)
		logging.Debug().Int("batch", res.Batches).Int("articles", len(batch)).Msg("Batch stored")
		batch = make([]source.Article, 0, opts.BatchSize)
		return nil
	}

	for scanner.Scan() {
		if err := ctx.Err(); err != nil {
			return res, err
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		res.Lines++

		var rec record
		if err := json.Unmarshal([]byte(line), &rec); err != nil {
			res.Malformed++
			logging.Warn().Err(err).Int("line", res.Lines).Msg("Skipping malformed record")
			continue
		}

		article, reason := convert(&rec, opts)
		switch reason {
		case skipMalformed:
			res.Malformed++
			logging.Warn().Int("line", res.Lines).Msg("Skipping record without title or text")
			continue
		case skipShort:
			res.Short++
			continue
		}

		batch = append(batch, article)
		if len(batch) >= opts.BatchSize {
			if err := flush(); err != nil {
				return res, err
			}
		}
	}
	if err := scanner.Err(); err != nil {
		return res, fmt.Errorf("read dump: %w", err)
	}
	if err := flush(); err != nil {
		return res, err
	}
	return res, nil
}
