// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package textnorm cleans raw abstract and title text for safe embedding in
// report documents: markup stripping, Unicode normalization, typographic
// punctuation substitution, and word-limited previews.
package textnorm

import (
	"sort"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/text/unicode/norm"
)

// Placeholder is stored in place of a missing abstract. It passes through
// Truncate unchanged regardless of length.
const Placeholder = "No abstract available."

// punctReplacer maps typographic punctuation to plain-ASCII equivalents.
var punctReplacer = strings.NewReplacer(
	"‐", "-", // hyphen
	"‑", "-", // non-breaking hyphen
	"‒", "-", // figure dash
	"–", "-", // en dash
	"—", "--", // em dash
	"―", "--", // horizontal bar
	"‘", "'", // left single quote
	"’", "'", // right single quote
	"“", `"`, // left double quote
	"”", `"`, // right double quote
	"…", "...", // ellipsis
	" ", " ", // non-breaking space
)

var markupEscaper = strings.NewReplacer(
	"&", "&amp;",
	"<", "&lt;",
	">", "&gt;",
)

var markupUnescaper = strings.NewReplacer(
	"&amp;", "&",
	"&lt;", "<",
	"&gt;", ">",
)

// Clean strips markup and decodes entities, normalizes Unicode toward its
// closest ASCII-compatible decomposition, replaces typographic punctuation
// with plain-ASCII equivalents, and escapes the remaining markup-sensitive
// characters. Empty input yields Placeholder; the result is never empty and
// never contains an unescaped '&', '<', or '>'.
func Clean(text string) string {
	if text == "" {
		return Placeholder
	}
	text = stripMarkup(text)
	text = norm.NFKD.String(text)
	text = punctReplacer.Replace(text)
	if text == "" {
		return Placeholder
	}
	return markupEscaper.Replace(text)
}

// Unescape reverses the markup escaping applied by Clean, for renderers that
// apply their own escaping (or none).
func Unescape(text string) string {
	return markupUnescaper.Replace(text)
}

// Truncate limits text to wordLimit whitespace-separated words, appending an
// ellipsis marker when the text was cut. Text at or under the limit, and the
// Placeholder, pass through unchanged.
func Truncate(text string, wordLimit int) string {
	if text == "" || text == Placeholder {
		return text
	}
	words := strings.Fields(text)
	if len(words) <= wordLimit {
		return text
	}
	return strings.Join(words[:wordLimit], " ") + "..."
}

// ReconstructAbstract converts an inverted-index abstract (word to zero-based
// positions, as returned by OpenAlex) back to plain text by sorting all
// (position, word) pairs on position. An empty or nil index yields
// Placeholder.
func ReconstructAbstract(invertedIndex map[string][]int) string {
	if len(invertedIndex) == 0 {
		return Placeholder
	}

	type posWord struct {
		pos  int
		word string
	}
	var pairs []posWord
	for word, positions := range invertedIndex {
		for _, pos := range positions {
			pairs = append(pairs, posWord{pos: pos, word: word})
		}
	}

	sort.Slice(pairs, func(i, j int) bool {
		return pairs[i].pos < pairs[j].pos
	})

	words := make([]string, len(pairs))
	for i, p := range pairs {
		words[i] = p.word
	}
	return strings.Join(words, " ")
}

// stripMarkup removes HTML/XML tags and decodes character entities, keeping
// only text content.
func stripMarkup(s string) string {
	if !strings.ContainsAny(s, "<&") {
		return s
	}
	var b strings.Builder
	z := html.NewTokenizer(strings.NewReader(s))
	for {
		tt := z.Next()
		if tt == html.ErrorToken {
			break
		}
		if tt == html.TextToken {
			// Text() returns entity-decoded text content.
			b.Write(z.Text())
		}
	}
	return b.String()
}
