// Wikifeed - Encyclopedia Article Feed and Selection Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/wikifeed

// Command ingest loads a JSON Lines article dump into the local archive.
//
// Each line holds one article:
//
//	{"title": "Alan Turing", "html": "<p>...</p>", "categories": ["Category:British mathematicians"]}
//
// Either "text" or "html" supplies the body. Articles shorter than the
// configured minimum word count are skipped. The server must not be running
// against the same database file, since DuckDB admits a single writer process.
package main

import (
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/tomtom215/wikifeed/internal/config"
	"github.com/tomtom215/wikifeed/internal/database"
	"github.com/tomtom215/wikifeed/internal/logging"
	"github.com/tomtom215/wikifeed/internal/source"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

var (
	cfgFile       string
	dbPath        string
	batchSize     int
	minWords      int
	maxCategories int
	dryRun        bool
	verbose       bool
)

var rootCmd = &cobra.Command{
	Use:   "ingest [dump.jsonl]",
	Short: "Load an article dump into the Wikifeed archive",
	Long: `ingest reads a JSON Lines article dump and stores each article in the
local DuckDB archive, tagging it with topical categories.

Read from standard input when no file is given or the file is "-".

Example usage:
  ingest articles.jsonl
  ingest --batch-size 500 --min-words 50 articles.jsonl
  zcat dump.jsonl.gz | ingest --dry-run`,
	Args:          cobra.MaximumNArgs(1),
	Version:       version,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          run,
}

func init() {
	rootCmd.Flags().StringVar(&cfgFile, "config", "", "config file (default: CONFIG_PATH or config.yaml)")
	rootCmd.Flags().StringVar(&dbPath, "db", "", "DuckDB file (default: DUCKDB_PATH)")
	rootCmd.Flags().IntVar(&batchSize, "batch-size", 0, "articles per transaction (default: INGEST_BATCH_SIZE)")
	rootCmd.Flags().IntVar(&minWords, "min-words", -1, "skip articles shorter than this (default: INGEST_MIN_ARTICLE_LENGTH)")
	rootCmd.Flags().IntVar(&maxCategories, "max-categories", 0, "categories kept per article (default: INGEST_MAX_CATEGORIES)")
	rootCmd.Flags().BoolVar(&dryRun, "dry-run", false, "parse and classify without writing")
	rootCmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "log every stored batch")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Stderr.WriteString("Error: " + err.Error() + "\n")
		os.Exit(1)
	}
}

func run(cmd *cobra.Command, args []string) error {
	if cfgFile != "" {
		if err := os.Setenv(config.ConfigPathEnvVar, cfgFile); err != nil {
			return fmt.Errorf("set config path: %w", err)
		}
	}
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	level := cfg.Logging.Level
	if verbose {
		level = "debug"
	}
	logging.Init(logging.Config{Level: level, Format: "console", Timestamp: true, Output: os.Stderr})

	opts := optionsFrom(cfg)

	in, closeIn, err := openInput(args)
	if err != nil {
		return err
	}
	defer closeIn()

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var w inserter
	if !opts.DryRun {
		dbCfg := cfg.Database
		if dbPath != "" {
			dbCfg.Path = dbPath
		}
		db, err := database.New(&dbCfg)
		if err != nil {
			return fmt.Errorf("open archive: %w", err)
		}
		defer func() {
			if err := db.Close(); err != nil {
				logging.Warn().Err(err).Msg("Error closing database")
			}
		}()
		w = source.NewArchive(db.Conn())
	}

	start := time.Now()
	res, err := ingest(ctx, in, w, opts)
	logging.Info().
		Int("lines", res.Lines).
		Int("inserted", res.Inserted).
		Int("skipped_short", res.Short).
		Int("skipped_malformed", res.Malformed).
		Int("batches", res.Batches).
		Bool("dry_run", opts.DryRun).
		Dur("elapsed", time.Since(start)).
		Msg("Ingestion finished")
	return err
}

func optionsFrom(cfg *config.Config) options {
	opts := options{
		MinWords:      cfg.Ingest.MinArticleLength,
		MaxCategories: cfg.Ingest.MaxCategories,
		BatchSize:     cfg.Ingest.BatchSize,
		PreviewLength: cfg.Source.Live.PreviewLength,
		DryRun:        dryRun,
	}
	if batchSize > 0 {
		opts.BatchSize = batchSize
	}
	if minWords >= 0 {
		opts.MinWords = minWords
	}
	if maxCategories > 0 {
		opts.MaxCategories = maxCategories
	}
	return opts
}

func openInput(args []string) (io.Reader, func(), error) {
	if len(args) == 0 || args[0] == "-" {
		return os.Stdin, func() {}, nil
	}
	f, err := os.Open(args[0])
	if err != nil {
		return nil, nil, fmt.Errorf("open dump: %w", err)
	}
	return f, func() { _ = f.Close() }, nil //nolint:errcheck // read-only file
}

var _ inserter = (*source.Archive)(nil)
