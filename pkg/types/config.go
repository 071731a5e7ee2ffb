// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "time"

// HTTPConfig holds shared HTTP settings used by stages that make network requests.
type HTTPConfig struct {
	// Timeout is the HTTP request timeout.
	Timeout time.Duration `json:"timeout" yaml:"timeout"`

	// UserAgent is the User-Agent header sent with HTTP requests
	// (e.g. "questscholar/0.1").
	UserAgent string `json:"user_agent" yaml:"user_agent"`
}

// SearchConfig holds settings for the search stage.
type SearchConfig struct {
	HTTPConfig `yaml:",inline"`

	// NumPapers is the number of papers each backend should contribute (default 10).
	NumPapers int `json:"num_papers" yaml:"num_papers"`

	// EnableSemanticScholar controls whether the Semantic Scholar backend is used.
	EnableSemanticScholar bool `json:"enable_semantic_scholar" yaml:"enable_semantic_scholar"`

	// EnablePubMed controls whether the PubMed backend is used.
	EnablePubMed bool `json:"enable_pubmed" yaml:"enable_pubmed"`

	// EnableArxiv controls whether the arXiv backend is used.
	EnableArxiv bool `json:"enable_arxiv" yaml:"enable_arxiv"`

	// EnableOpenAlex controls whether the OpenAlex backend is used.
	EnableOpenAlex bool `json:"enable_openalex" yaml:"enable_openalex"`

	// SemanticScholarAPIKey is an optional API key for higher rate limits.
	SemanticScholarAPIKey string `json:"semantic_scholar_api_key,omitempty" yaml:"semantic_scholar_api_key,omitempty"`

	// PubMedEmail is the contact address sent to the NCBI E-utilities.
	PubMedEmail string `json:"pubmed_email,omitempty" yaml:"pubmed_email,omitempty"`

	// PubMedAPIKey is an optional NCBI API key for higher rate limits.
	PubMedAPIKey string `json:"pubmed_api_key,omitempty" yaml:"pubmed_api_key,omitempty"`

	// OpenAlexEmail is sent as the mailto parameter for polite pool access.
	OpenAlexEmail string `json:"openalex_email,omitempty" yaml:"openalex_email,omitempty"`

	// RequestsPerSecond caps the request rate per backend (0 = unlimited).
	RequestsPerSecond float64 `json:"requests_per_second" yaml:"requests_per_second"`

	// InterBackendDelay is the delay between calls to different backends (default 1s).
	InterBackendDelay time.Duration `json:"inter_backend_delay" yaml:"inter_backend_delay"`
}

// SessionConfig holds settings for session persistence.
type SessionConfig struct {
	// DBPath is the SQLite file holding the research session between
	// CLI invocations (default "questscholar.db").
	DBPath string `json:"db_path" yaml:"db_path"`
}

// ReportConfig holds settings for the report composer.
type ReportConfig struct {
	// OutputDir is the directory report files are written to (default ".").
	OutputDir string `json:"output_dir" yaml:"output_dir"`

	// LogoPath is the image painted in the page header band of the PDF
	// report. Missing file: the logo is skipped with a diagnostic.
	LogoPath string `json:"logo_path" yaml:"logo_path"`

	// WatermarkPath is the image painted behind the PDF title page.
	// Missing file: the watermark is skipped with a diagnostic.
	WatermarkPath string `json:"watermark_path" yaml:"watermark_path"`
}
