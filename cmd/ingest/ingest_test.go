// Wikifeed - Encyclopedia Article Feed and Selection Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/wikifeed

package main

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"strings"
	"testing"

	"github.com/tomtom215/wikifeed/internal/database"
	"github.com/tomtom215/wikifeed/internal/source"
)

func testOptions() options {
	return options{MinWords: 10, MaxCategories: 20, BatchSize: 2, PreviewLength: 40}
}

// filler returns n words that match no category keyword.
func filler(n int) string {
	return strings.TrimSpace(strings.Repeat("lorem ", n))
}

type recordingInserter struct {
	batches [][]source.Article
	failOn  int
}

func (r *recordingInserter) Insert(_ context.Context, articles []source.Article) error {
	if r.failOn > 0 && len(r.batches)+1 == r.failOn {
		return errors.New("disk full")
	}
	r.batches = append(r.batches, append([]source.Article(nil), articles...))
	return nil
}

func TestConvert(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name           string
		rec            record
		wantReason     skipReason
		wantCategories []string
	}{
		{
			name:           "plain text with keywords",
			rec:            record{Title: "Quantum Theory", Text: "physics " + filler(20)},
			wantReason:     keep,
			wantCategories: []string{"Science"},
		},
		{
			name:           "html body",
			rec:            record{Title: "Nile", HTML: "<p>The longest <b>river</b> " + filler(20) + "</p><script>var x;</script>"},
			wantReason:     keep,
			wantCategories: []string{"Geography"},
		},
		{
			name: "wiki categories take precedence over text",
			rec: record{
				Title:      "Mixed",
				Text:       "battle " + filler(20),
				Categories: []string{"Category:Rivers of France", "Category:Theoretical physics"},
			},
			wantReason:     keep,
			wantCategories: []string{"Science", "Geography"},
		},
		{
			name:           "blank wiki categories fall back to text",
			rec:            record{Title: "Blank", Text: "battle " + filler(20), Categories: []string{" ", "Category:"}},
			wantReason:     keep,
			wantCategories: []string{"History"},
		},
		{
			name:           "no keyword match is General",
			rec:            record{Title: "Nothing", Text: filler(20)},
			wantReason:     keep,
			wantCategories: []string{source.CategoryGeneral},
		},
		{
			name:       "too short",
			rec:        record{Title: "Stub", Text: filler(5)},
			wantReason: skipShort,
		},
		{
			name:       "missing title",
			rec:        record{Text: filler(20)},
			wantReason: skipMalformed,
		},
		{
			name:       "missing body",
			rec:        record{Title: "Empty"},
			wantReason: skipMalformed,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, reason := convert(&tt.rec, testOptions())
			if reason != tt.wantReason {
				t.Fatalf("reason = %d, want %d", reason, tt.wantReason)
			}
			if reason != keep {
				return
			}
			if !reflect.DeepEqual(got.Categories, tt.wantCategories) {
				t.Errorf("categories = %v, want %v", got.Categories, tt.wantCategories)
			}
			if got.Source != source.NameLocal {
				t.Errorf("source = %q, want %q", got.Source, source.NameLocal)
			}
		})
	}
}

func TestConvertFields(t *testing.T) {
	t.Parallel()

	rec := record{
		Title:     "  Alan Turing ",
		HTML:      "<p>Alan Turing was  born in London.</p><sup class=\"reference\">[1]</sup>\n<p>" + filler(30) + "</p>",
		Thumbnail: " https://example.org/turing.jpg ",
	}
	got, reason := convert(&rec, testOptions())
	if reason != keep {
		t.Fatalf("reason = %d, want keep", reason)
	}
	if got.ID != "Alan_Turing" || got.Title != "Alan Turing" {
		t.Errorf("id/title = %q/%q", got.ID, got.Title)
	}
	if got.Thumbnail != "https://example.org/turing.jpg" {
		t.Errorf("thumbnail = %q", got.Thumbnail)
	}
	if strings.Contains(got.Content, "[1]") {
		t.Errorf("content kept reference marker: %q", got.Content)
	}
	if !strings.HasPrefix(got.Content, "Alan Turing was born in London.") {
		t.Errorf("content = %q", got.Content)
	}
	if got.WordCount != 36 {
		t.Errorf("word count = %d, want 36", got.WordCount)
	}
	if !strings.HasSuffix(got.Preview, "...") || len([]rune(got.Preview)) > 43 {
		t.Errorf("preview = %q", got.Preview)
	}
	if !reflect.DeepEqual(got.Categories, []string{"People"}) {
		t.Errorf("categories = %v, want [People]", got.Categories)
	}
}

func TestConvertCapsCategories(t *testing.T) {
	t.Parallel()

	opts := testOptions()
	opts.MaxCategories = 2
	rec := record{Title: "Everything", Text: "physics war river novel " + filler(20)}
	got, _ := convert(&rec, opts)
	if len(got.Categories) != 2 {
		t.Fatalf("categories = %v, want 2 entries", got.Categories)
	}
}

func TestIngestBatches(t *testing.T) {
	t.Parallel()

	lines := []string{
		fmt.Sprintf(`{"title":"A","text":%q}`, filler(20)),
		``,
		`{not json`,
		fmt.Sprintf(`{"title":"B","text":%q}`, filler(20)),
		fmt.Sprintf(`{"title":"Short","text":%q}`, filler(3)),
		fmt.Sprintf(`{"title":"C","html":"<p>%s</p>"}`, filler(20)),
		fmt.Sprintf(`{"text":%q}`, filler(20)),
	}
	w := &recordingInserter{}

	res, err := ingest(context.Background(), strings.NewReader(strings.Join(lines, "\n")), w, testOptions())
	if err != nil {
		t.Fatalf("ingest: %v", err)
	}

	want := result{Lines: 6, Inserted: 3, Short: 1, Malformed: 2, Batches: 2}
	if res != want {
		t.Errorf("result = %+v, want %+v", res, want)
	}
	if len(w.batches) != 2 || len(w.batches[0]) != 2 || len(w.batches[1]) != 1 {
		t.Fatalf("batches = %v", w.batches)
	}
	if w.batches[0][0].ID != "A" || w.batches[0][1].ID != "B" || w.batches[1][0].ID != "C" {
		t.Errorf("unexpected batch order: %v", w.batches)
	}
}

func TestIngestDryRun(t *testing.T) {
	t.Parallel()

	opts := testOptions()
	opts.DryRun = true
	dump := fmt.Sprintf(`{"title":"A","text":%q}`, filler(20))

	res, err := ingest(context.Background(), strings.NewReader(dump), nil, opts)
	if err != nil {
		t.Fatalf("ingest: %v", err)
	}
	if res.Inserted != 1 || res.Batches != 1 {
		t.Errorf("result = %+v", res)
	}
}

func TestIngestInsertFailure(t *testing.T) {
	t.Parallel()

	var b strings.Builder
	for i := 0; i < 5; i++ {
		fmt.Fprintf(&b, "{\"title\":\"T%d\",\"text\":%q}\n", i, filler(20))
	}
	w := &recordingInserter{failOn: 2}

	res, err := ingest(context.Background(), strings.NewReader(b.String()), w, testOptions())
	if err == nil {
		t.Fatal("expected error from failing batch")
	}
	if res.Inserted != 2 || res.Batches != 1 {
		t.Errorf("result = %+v, want first batch only", res)
	}
}

func TestIngestCanceled(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	dump := fmt.Sprintf(`{"title":"A","text":%q}`, filler(20))

	_, err := ingest(ctx, strings.NewReader(dump), &recordingInserter{}, testOptions())
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v, want context.Canceled", err)
	}
}

func TestIngestIntoArchive(t *testing.T) {
	t.Parallel()

	db, err := database.NewInMemory()
	if err != nil {
		t.Fatalf("open database: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	archive := source.NewArchive(db.Conn())

	dump := strings.Join([]string{
		fmt.Sprintf(`{"title":"Battle of Hastings","text":%q}`, "battle "+filler(20)),
		fmt.Sprintf(`{"title":"Nile","text":%q,"categories":["Category:Rivers of Egypt"]}`, filler(20)),
		fmt.Sprintf(`{"title":"Photon","text":%q}`, "physics "+filler(20)),
	}, "\n")
	ctx := context.Background()

	if _, err := ingest(ctx, strings.NewReader(dump), archive, testOptions()); err != nil {
		t.Fatalf("ingest: %v", err)
	}

	n, err := archive.Count(ctx)
	if err != nil {
		t.Fatalf("count: %v", err)
	}
	if n != 3 {
		t.Errorf("count = %d, want 3", n)
	}

	ids, err := archive.ListArticleIDs(ctx, source.Filter{Categories: []string{"Geography"}})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if !reflect.DeepEqual(ids, []string{"Nile"}) {
		t.Errorf("geography ids = %v, want [Nile]", ids)
	}

	art, err := archive.GetArticle(ctx, "Battle_of_Hastings")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if !reflect.DeepEqual(art.Categories, []string{"History"}) || art.WordCount != 21 {
		t.Errorf("article = %+v", art)
	}
}
