// Wikifeed - Encyclopedia Article Feed and Selection Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/wikifeed

package source

import (
	"strings"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
)

// DefaultPreviewLength is the preview size in characters.
const DefaultPreviewLength = 300

// HTMLText extracts readable text from an HTML fragment or document.
// Script, style and reference elements are dropped. Input that fails to
// parse is returned unchanged.
func HTMLText(html string) string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return html
	}
	doc.Find("script, style, sup.reference, .mw-ref, table.infobox").Remove()
	return collapseSpace(doc.Text())
}

// Preview returns the first n characters of text, appending "..." when
// truncated. n <= 0 uses DefaultPreviewLength.
func Preview(text string, n int) string {
	if n <= 0 {
		n = DefaultPreviewLength
	}
	text = collapseSpace(text)
	if utf8.RuneCountInString(text) <= n {
		return text
	}
	runes := []rune(text)
	return strings.TrimSpace(string(runes[:n])) + "..."
}

// WordCount counts whitespace-separated words.
func WordCount(text string) int {
	return len(strings.Fields(text))
}

func collapseSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
