// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

// Action is the critic's recommendation for a paper.
type Action string

const (
	ActionInclude Action = "include"
	ActionExclude Action = "exclude"
)

// Score weights for the composite critic score.
const (
	RelevanceWeight   = 0.4
	MethodologyWeight = 0.3
	ImpactWeight      = 0.3
)

// NeutralScore is the sub-score assigned when the critic supplied none, and
// the rank given to papers with no evaluation at all.
const NeutralScore = 3.0

// Evaluation is one critic judgment, keyed in the session by the normalized
// paper title. Sub-scores run 0-5.
type Evaluation struct {
	// Relevance scores how relevant the paper is to the research subject.
	Relevance float64 `json:"relevance_score" yaml:"relevance_score"`

	// Methodology scores the methodological soundness of the work.
	Methodology float64 `json:"methodological_soundness" yaml:"methodological_soundness"`

	// Impact scores the expected impact of the work.
	Impact float64 `json:"impact_score" yaml:"impact_score"`

	// Overall is the weighted blend of the three sub-scores. It is always
	// recomputed at ingestion time; a value supplied by the critic is
	// discarded.
	Overall float64 `json:"overall_score" yaml:"overall_score"`

	// Redundant marks the paper as overlapping another in the collection.
	Redundant bool `json:"redundancy_flag" yaml:"redundancy_flag"`

	// Tags holds free-form critic flags (e.g. "seminal_work").
	Tags []string `json:"flags" yaml:"flags"`

	// Action is the critic's include/exclude recommendation.
	Action Action `json:"recommended_action" yaml:"recommended_action"`

	// Rationale is the critic's free-form justification.
	Rationale string `json:"rationale" yaml:"rationale"`
}

// CompositeScore returns the weighted blend of the three critic sub-scores.
func CompositeScore(relevance, methodology, impact float64) float64 {
	return RelevanceWeight*relevance + MethodologyWeight*methodology + ImpactWeight*impact
}
