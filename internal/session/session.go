// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package session owns the state of one research run: the ordered paper
// collection filled by the search backends and the critic ledger filled by
// the external evaluator. A Session replaces what would otherwise be ambient
// global state so ownership and lifetime are visible at call sites.
package session

import (
	"encoding/json"
	"fmt"
	"strings"
	"unicode"

	"github.com/abdoljh/questscholar/internal/textnorm"
	"github.com/abdoljh/questscholar/pkg/types"
)

// Session holds the papers and critic evaluations of one research run.
// It is not safe for concurrent use; the orchestrator serializes the
// search, critique, and report phases.
type Session struct {
	// Papers is the ordered paper collection, in discovery order.
	Papers []types.PaperRecord

	// Evaluations maps JoinKey(title) to the critic's judgment.
	Evaluations map[string]types.Evaluation
}

// New returns an empty session.
func New() *Session {
	return &Session{Evaluations: make(map[string]types.Evaluation)}
}

// AppendPaper adds a record to the end of the collection. Duplicates across
// sources are expected here and resolved later by Deduplicate. Title and
// venue fallbacks are applied so downstream code never sees empty values.
func (s *Session) AppendPaper(p types.PaperRecord) {
	if strings.TrimSpace(p.Title) == "" {
		p.Title = "Untitled"
	}
	if p.Abstract == "" {
		p.Abstract = textnorm.Placeholder
	}
	if p.Venue == "" {
		p.Venue = "Unknown"
	}
	s.Papers = append(s.Papers, p)
}

// DedupKey returns the store-level dedup key for a title: lowercased with
// every non-alphanumeric rune removed. This is deliberately stronger than
// JoinKey; see JoinKey for the consequences.
func DedupKey(title string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(title) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// JoinKey returns the key under which critic evaluations are stored and
// joined at report time: lowercased and whitespace-trimmed only.
//
// JoinKey and DedupKey disagree on titles containing punctuation: such a
// title can dedup under DedupKey yet fail to join under JoinKey. The
// mismatch is inherited behavior and is kept; callers must not mix the two.
func JoinKey(title string) string {
	return strings.TrimSpace(strings.ToLower(title))
}

// Deduplicate removes duplicate papers in place, keeping the first
// occurrence of each DedupKey and preserving the relative order of
// survivors. Records whose key is empty or "untitled" cannot be verified as
// duplicates and are always kept. Returns the number removed; an empty
// collection returns 0. The operation is idempotent.
func (s *Session) Deduplicate() int {
	seen := make(map[string]bool)
	kept := s.Papers[:0]
	removed := 0

	for _, p := range s.Papers {
		key := DedupKey(p.Title)
		if key == "" || key == "untitled" {
			kept = append(kept, p)
			continue
		}
		if seen[key] {
			removed++
			continue
		}
		seen[key] = true
		kept = append(kept, p)
	}

	s.Papers = kept
	return removed
}

// rawEvaluation is the wire form of one critic judgment. Score fields are
// pointers so absent keys can be told apart from explicit zeros.
type rawEvaluation struct {
	PaperTitle  string   `json:"paper_title"`
	Relevance   *float64 `json:"relevance_score"`
	Methodology *float64 `json:"methodological_soundness"`
	Impact      *float64 `json:"impact_score"`
	Overall     *float64 `json:"overall_score"`
	Redundant   bool     `json:"redundancy_flag"`
	Flags       []string `json:"flags"`
	Action      string   `json:"recommended_action"`
	Rationale   string   `json:"rationale"`
}

// IngestEvaluations parses a JSON sequence of critic judgments and stores
// each under JoinKey(paper_title), overwriting prior entries. Missing
// sub-scores default to types.NeutralScore, the action to include, and the
// composite score is always recomputed from the sub-scores; an
// overall_score supplied in the payload is ignored. An unparseable payload
// is rejected whole and nothing is stored.
func (s *Session) IngestEvaluations(raw []byte) (int, error) {
	var evals []rawEvaluation
	if err := json.Unmarshal(raw, &evals); err != nil {
		return 0, fmt.Errorf("invalid evaluation payload: %w", err)
	}

	count := 0
	for _, e := range evals {
		rel := scoreOrNeutral(e.Relevance)
		met := scoreOrNeutral(e.Methodology)
		imp := scoreOrNeutral(e.Impact)

		action := types.ActionInclude
		if e.Action == string(types.ActionExclude) {
			action = types.ActionExclude
		}

		tags := e.Flags
		if tags == nil {
			tags = []string{}
		}

		s.Evaluations[JoinKey(e.PaperTitle)] = types.Evaluation{
			Relevance:   rel,
			Methodology: met,
			Impact:      imp,
			Overall:     types.CompositeScore(rel, met, imp),
			Redundant:   e.Redundant,
			Tags:        tags,
			Action:      action,
			Rationale:   e.Rationale,
		}
		count++
	}
	return count, nil
}

func scoreOrNeutral(v *float64) float64 {
	if v == nil {
		return types.NeutralScore
	}
	return *v
}

// Evaluation looks up the critic judgment for a title via JoinKey.
func (s *Session) Evaluation(title string) (types.Evaluation, bool) {
	ev, ok := s.Evaluations[JoinKey(title)]
	return ev, ok
}

// Clear empties both the paper collection and the critic ledger.
func (s *Session) Clear() {
	s.Papers = nil
	s.Evaluations = make(map[string]types.Evaluation)
}

// SnapshotPaper is the reduced paper view handed to the critic: at most
// three authors and a 150-word abstract preview.
type SnapshotPaper struct {
	Title         string   `json:"title"`
	Authors       []string `json:"authors"`
	PubYear       int      `json:"pub_year"`
	Abstract      string   `json:"abstract"`
	Source        string   `json:"source"`
	CitationCount int      `json:"citation_count"`
	Venue         string   `json:"venue"`
}

// Snapshot is the evaluation payload handed to the critic. Exactly one of
// (TotalPapers, Papers) or Error is populated.
type Snapshot struct {
	TotalPapers int             `json:"total_papers,omitempty"`
	Papers      []SnapshotPaper `json:"papers,omitempty"`
	Error       string          `json:"error,omitempty"`
}

const snapshotAbstractWords = 150

// Snapshot returns the trimmed read view of the paper collection for the
// external critic. An empty collection yields an explicit error marker
// object rather than a failure.
func (s *Session) Snapshot() Snapshot {
	if len(s.Papers) == 0 {
		return Snapshot{Error: "No papers available for evaluation"}
	}

	papers := make([]SnapshotPaper, 0, len(s.Papers))
	for _, p := range s.Papers {
		authors := p.Authors
		if len(authors) > 3 {
			authors = authors[:3]
		}
		papers = append(papers, SnapshotPaper{
			Title:         p.Title,
			Authors:       authors,
			PubYear:       p.PubYear,
			Abstract:      textnorm.Truncate(p.Abstract, snapshotAbstractWords),
			Source:        p.Source.DisplayName(),
			CitationCount: p.CitationCount,
			Venue:         p.Venue,
		})
	}
	return Snapshot{TotalPapers: len(papers), Papers: papers}
}
