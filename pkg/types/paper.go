// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package types defines shared data structures for the questscholar pipeline.
package types

// Source identifies the academic API that discovered a paper.
type Source string

const (
	SourceSemanticScholar Source = "semantic_scholar"
	SourcePubMed          Source = "pubmed"
	SourceArxiv           Source = "arxiv"
	SourceOpenAlex        Source = "openalex"
)

// DisplayName returns the source name used in rendered reports and critic
// snapshots.
func (s Source) DisplayName() string {
	switch s {
	case SourceSemanticScholar:
		return "Semantic Scholar"
	case SourcePubMed:
		return "PubMed"
	case SourceArxiv:
		return "arXiv"
	case SourceOpenAlex:
		return "OpenAlex"
	default:
		return string(s)
	}
}

// PaperRecord represents one discovered publication. Records are created by a
// search backend at discovery time and accumulated in the session; abstracts
// are cleaned and markup-escaped before the record is built.
type PaperRecord struct {
	// Title is the paper title. Never empty; "Untitled" when the source
	// returned none.
	Title string `json:"title" yaml:"title"`

	// Authors lists the paper authors in source order.
	Authors []string `json:"authors" yaml:"authors"`

	// PubYear is the publication year, or 0 when unknown.
	PubYear int `json:"pub_year" yaml:"pub_year"`

	// Abstract is the cleaned, escaped abstract text. Never empty; a
	// placeholder is stored when the source had no abstract.
	Abstract string `json:"abstract" yaml:"abstract"`

	// URL is the landing page for the paper.
	URL string `json:"url" yaml:"url"`

	// Source identifies which backend found this record.
	Source Source `json:"source" yaml:"source"`

	// CitationCount is the citation count reported by the source, 0 when
	// the source does not carry one.
	CitationCount int `json:"citation_count" yaml:"citation_count"`

	// Venue is the publication venue, "Unknown" when absent.
	Venue string `json:"venue" yaml:"venue"`

	// PaperID is a source-qualified identifier used only for display,
	// never as a dedup key.
	PaperID string `json:"paper_id" yaml:"paper_id"`
}
