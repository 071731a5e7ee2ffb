// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package report renders the critic-ranked paper collection into the two
// executive summary artifacts, a PDF and an interactive HTML page.
package report

import (
	"fmt"
	"sort"

	"github.com/abdoljh/questscholar/internal/session"
	"github.com/abdoljh/questscholar/pkg/types"
)

// Fixed output filenames.
const (
	PDFFilename  = "executive_summary.pdf"
	HTMLFilename = "executive_summary.html"
)

// Quality tier thresholds on the composite score.
const (
	exceptionalThreshold = 4.5
	excellentThreshold   = 4.0
	goodThreshold        = 3.5
)

// RankedPaper is a paper joined with its critic evaluation. Eval is nil
// when the critic never saw the paper; Rank then holds the neutral score.
type RankedPaper struct {
	types.PaperRecord

	Eval   *types.Evaluation
	Rank   float64
	Action types.Action
}

// Rank joins the session's papers with their evaluations, drops duplicate
// titles (first occurrence wins), orders by rank then citation count, both
// descending, and partitions into included and excluded papers. Papers the
// critic excluded still come back so callers can report the count.
func Rank(sess *session.Session) (included, excluded []RankedPaper) {
	seen := make(map[string]bool)
	var ranked []RankedPaper

	for _, p := range sess.Papers {
		key := session.JoinKey(p.Title)
		if seen[key] {
			continue
		}
		seen[key] = true

		rp := RankedPaper{PaperRecord: p, Rank: types.NeutralScore, Action: types.ActionInclude}
		if ev, ok := sess.Evaluations[key]; ok {
			rp.Eval = &ev
			rp.Rank = ev.Overall
			rp.Action = ev.Action
		}
		ranked = append(ranked, rp)
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		if ranked[i].Rank != ranked[j].Rank {
			return ranked[i].Rank > ranked[j].Rank
		}
		return ranked[i].CitationCount > ranked[j].CitationCount
	})

	for _, rp := range ranked {
		if rp.Action == types.ActionExclude {
			excluded = append(excluded, rp)
		} else {
			included = append(included, rp)
		}
	}
	return included, excluded
}

// qualityLabel names the composite score's tier.
func qualityLabel(score float64) string {
	switch {
	case score >= exceptionalThreshold:
		return "EXCEPTIONAL"
	case score >= excellentThreshold:
		return "EXCELLENT"
	case score >= goodThreshold:
		return "GOOD"
	default:
		return "ACCEPTABLE"
	}
}

// statusLine builds the fixed-format success message shared by both
// renderers, e.g. "PDF Generated: executive_summary.pdf (12 papers, 2
// excluded by critic)".
func statusLine(kind, filename string, includedCount, excludedCount int) string {
	msg := fmt.Sprintf("%s Generated: %s (%d papers", kind, filename, includedCount)
	if excludedCount > 0 {
		msg += fmt.Sprintf(", %d excluded by critic", excludedCount)
	}
	return msg + ")"
}

// truncateRunes shortens s to at most n runes. Titles from the APIs can
// carry multi-byte characters, so a byte slice would split a rune.
func truncateRunes(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}

// yearLabel formats a publication year, with "N/A" for the zero value.
func yearLabel(year int) string {
	if year == 0 {
		return "N/A"
	}
	return fmt.Sprintf("%d", year)
}
