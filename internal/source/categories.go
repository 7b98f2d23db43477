// Wikifeed - Encyclopedia Article Feed and Selection Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/wikifeed

package source

import "strings"

// CategoryGeneral is assigned when no topical category matches.
const CategoryGeneral = "General"

// Categories lists the topical categories in display order.
var Categories = []string{
	"History",
	"Science",
	"Geography",
	"Literature",
	"Arts",
	"Sports",
	"Politics",
	"Religion",
	"Nature",
	"Technology",
	"People",
}

// textKeywords drives ExtractCategories over article body text.
var textKeywords = map[string][]string{
	"Science":    {"physics", "chemistry", "biology", "scientist", "research", "experiment", "scientific", "theory", "discover"},
	"History":    {"war", "battle", "century", "ancient", "historic", "dynasty", "empire", "revolt", "treaty"},
	"Geography":  {"country", "city", "river", "mountain", "continent", "island", "region", "capital", "population"},
	"Literature": {"book", "author", "novel", "poem", "playwright", "wrote", "published", "literary", "fiction"},
	"Arts":       {"painting", "sculpture", "music", "film", "artist", "museum", "gallery", "exhibition"},
	"Sports":     {"game", "player", "team", "championship", "tournament", "league", "score", "match"},
	"Politics":   {"government", "election", "president", "law", "parliament", "minister", "senate", "congress"},
	"Religion":   {"god", "church", "bible", "religious", "faith", "christian", "islam", "jewish", "temple"},
	"Nature":     {"animal", "plant", "species", "ecosystem", "environment", "bird", "fish", "mammal"},
	"Technology": {"computer", "software", "internet", "engineering", "patent", "invented", "digital"},
	"People":     {"born", "died", "biography", "king", "queen", "president", "scientist", "author", "actor"},
}

// personKeywords add People regardless of the table above.
var personKeywords = []string{"born", "died", "king", "queen", "president", "emperor", "scientist", "author", "actor"}

// wikiKeywords drives MapWikiCategories over Wikipedia category names.
var wikiKeywords = map[string][]string{
	"Science":    {"science", "scientist", "physics", "chemistry", "biology", "research"},
	"History":    {"history", "war", "battle", "century", "ancient", "empire"},
	"Geography":  {"geography", "country", "city", "river", "mountain", "island"},
	"Literature": {"literature", "book", "author", "novel", "poem", "writer"},
	"Arts":       {"art", "painting", "sculpture", "music", "film", "artist"},
	"Sports":     {"sport", "game", "player", "team", "championship"},
	"Politics":   {"politics", "government", "president", "minister", "election"},
	"Religion":   {"religion", "god", "church", "faith", "religious"},
	"Nature":     {"nature", "animal", "plant", "species", "environment"},
	"Technology": {"technology", "computer", "software", "internet", "engineering"},
	"People":     {"people", "born", "died", "king", "queen", "president"},
}

// ExtractCategories tags article text by keyword occurrence. Matching is a
// case-insensitive substring test. Returns [General] when nothing matches.
func ExtractCategories(text string) []string {
	lower := strings.ToLower(text)

	matched := make(map[string]bool)
	for category, keywords := range textKeywords {
		if containsAny(lower, keywords) {
			matched[category] = true
		}
	}
	if containsAny(lower, personKeywords) {
		matched["People"] = true
	}

	return ordered(matched)
}

// MapWikiCategories maps Wikipedia category names (without the "Category:"
// prefix) onto topical categories. Returns [General] when nothing matches.
func MapWikiCategories(wikiCategories []string) []string {
	matched := make(map[string]bool)
	for _, wc := range wikiCategories {
		lower := strings.ToLower(wc)
		for category, keywords := range wikiKeywords {
			if containsAny(lower, keywords) {
				matched[category] = true
			}
		}
	}
	return ordered(matched)
}

// CanonicalCategory returns the display spelling of a category name matched
// case-insensitively, or the trimmed input when it is not a known category.
func CanonicalCategory(name string) string {
	name = strings.TrimSpace(name)
	if strings.EqualFold(name, CategoryGeneral) {
		return CategoryGeneral
	}
	for _, c := range Categories {
		if strings.EqualFold(c, name) {
			return c
		}
	}
	return name
}

// LimitCategories truncates categories to at most n entries.
func LimitCategories(categories []string, n int) []string {
	if n > 0 && len(categories) > n {
		return categories[:n]
	}
	return categories
}

func containsAny(s string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(s, kw) {
			return true
		}
	}
	return false
}

func ordered(matched map[string]bool) []string {
	if len(matched) == 0 {
		return []string{CategoryGeneral}
	}
	out := make([]string, 0, len(matched))
	for _, c := range Categories {
		if matched[c] {
			out = append(out, c)
		}
	}
	return out
}
