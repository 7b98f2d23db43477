// Wikifeed - Encyclopedia Article Feed and Selection Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/wikifeed

package metrics

import (
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestRecordDBQuery(t *testing.T) {
	tests := []struct {
		name      string
		operation string
		table     string
		err       error
	}{
		{name: "successful insert", operation: "INSERT", table: "clicks"},
		{name: "successful aggregate", operation: "SELECT", table: "click_categories"},
		{name: "failed query", operation: "SELECT", table: "articles", err: errors.New("connection refused")},
		{
			name:      "long error is truncated",
			operation: "INSERT",
			table:     "clicks",
			err:       errors.New("this is a very long error message that exceeds fifty characters and should be truncated properly"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			before := testutil.ToFloat64(DBQueryErrors.WithLabelValues(tt.operation, tt.table, truncated(tt.err)))
			RecordDBQuery(tt.operation, tt.table, 5*time.Millisecond, tt.err)
			after := testutil.ToFloat64(DBQueryErrors.WithLabelValues(tt.operation, tt.table, truncated(tt.err)))

			want := 0.0
			if tt.err != nil {
				want = 1
			}
			if after-before != want {
				t.Errorf("error counter delta = %v, want %v", after-before, want)
			}
		})
	}
}

func truncated(err error) string {
	if err == nil {
		return ""
	}
	s := err.Error()
	if len(s) > 50 {
		return s[:50]
	}
	return s
}

func TestRecordAPIRequest(t *testing.T) {
	before := testutil.ToFloat64(APIRequestsTotal.WithLabelValues("GET", "/api/v1/articles", "200"))
	RecordAPIRequest("GET", "/api/v1/articles", "200", 20*time.Millisecond)
	after := testutil.ToFloat64(APIRequestsTotal.WithLabelValues("GET", "/api/v1/articles", "200"))

	if after-before != 1 {
		t.Errorf("expected request counter to increase by 1, got %v", after-before)
	}
}

func TestTrackActiveRequest(t *testing.T) {
	before := testutil.ToFloat64(APIActiveRequests)
	TrackActiveRequest(true)
	if got := testutil.ToFloat64(APIActiveRequests); got != before+1 {
		t.Errorf("expected gauge %v, got %v", before+1, got)
	}
	TrackActiveRequest(false)
	if got := testutil.ToFloat64(APIActiveRequests); got != before {
		t.Errorf("expected gauge %v, got %v", before, got)
	}
}

func TestRecordBatch(t *testing.T) {
	tests := []struct {
		name      string
		requested string
		applied   string
		outcome   string
	}{
		{name: "random batch", requested: "random", applied: "random"},
		{name: "user based fallback", requested: "user_based", applied: "random"},
		{name: "empty category", requested: "category", applied: "category", outcome: "empty_category"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			before := testutil.ToFloat64(BatchesSelected.WithLabelValues(tt.requested, tt.applied))
			var outcomeBefore float64
			if tt.outcome != "" {
				outcomeBefore = testutil.ToFloat64(BatchOutcomes.WithLabelValues(tt.outcome))
			}

			RecordBatch(tt.requested, tt.applied, 20, time.Millisecond, tt.outcome)

			if got := testutil.ToFloat64(BatchesSelected.WithLabelValues(tt.requested, tt.applied)); got != before+1 {
				t.Errorf("batches counter = %v, want %v", got, before+1)
			}
			if tt.outcome != "" {
				if got := testutil.ToFloat64(BatchOutcomes.WithLabelValues(tt.outcome)); got != outcomeBefore+1 {
					t.Errorf("outcome counter = %v, want %v", got, outcomeBefore+1)
				}
			}
		})
	}
}

func TestRecordCacheLookup(t *testing.T) {
	hits := testutil.ToFloat64(CacheHits.WithLabelValues("categories"))
	misses := testutil.ToFloat64(CacheMisses.WithLabelValues("categories"))

	RecordCacheLookup("categories", true)
	RecordCacheLookup("categories", false)
	RecordCacheLookup("categories", false)

	if got := testutil.ToFloat64(CacheHits.WithLabelValues("categories")); got != hits+1 {
		t.Errorf("hits = %v, want %v", got, hits+1)
	}
	if got := testutil.ToFloat64(CacheMisses.WithLabelValues("categories")); got != misses+2 {
		t.Errorf("misses = %v, want %v", got, misses+2)
	}
}

func TestRecordSourceRequest(t *testing.T) {
	before := testutil.ToFloat64(SourceErrors.WithLabelValues("live", "get_article", "unavailable"))

	RecordSourceRequest("live", "get_article", time.Second, "unavailable", errors.New("timeout"))
	RecordSourceRequest("live", "get_article", time.Second, "", nil)

	if got := testutil.ToFloat64(SourceErrors.WithLabelValues("live", "get_article", "unavailable")); got != before+1 {
		t.Errorf("source errors = %v, want %v", got, before+1)
	}
}
