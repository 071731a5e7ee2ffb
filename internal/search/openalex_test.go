// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package search

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/abdoljh/questscholar/pkg/types"
)

// --- Mock OpenAlex server ---

const sampleOpenAlexJSON = `{
  "meta": {"count": 2, "per_page": 20, "page": 1},
  "results": [
    {
      "id": "https://openalex.org/W2741809807",
      "doi": "https://doi.org/10.5555/3295222.3295349",
      "title": "Attention Is All You Need",
      "publication_year": 2017,
      "cited_by_count": 91234,
      "authorships": [
        {"author": {"id": "A1", "display_name": "Ashish Vaswani"}},
        {"author": {"id": "A2", "display_name": "Noam Shazeer"}}
      ],
      "abstract_inverted_index": {
        "We": [0],
        "propose": [1],
        "a": [2, 5],
        "new": [3],
        "architecture": [4],
        "based": [6],
        "on": [7],
        "attention": [8]
      },
      "primary_location": {"source": {"display_name": "NeurIPS"}}
    },
    {
      "id": "https://openalex.org/W3210812345",
      "doi": "",
      "title": "BERT: Pre-training of Deep Bidirectional Transformers",
      "publication_year": 2018,
      "cited_by_count": 70123,
      "authorships": [
        {"author": {"id": "A3", "display_name": "Jacob Devlin"}}
      ],
      "abstract_inverted_index": {},
      "primary_location": {"source": {"display_name": ""}}
    }
  ]
}`

func openAlexTestServer(statusCode int, body string) *httptest.Server {
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(statusCode)
		fmt.Fprint(w, body)
	}))
}

// --- OpenAlexBackend.Search ---

func TestOpenAlexBackendSearch(t *testing.T) {
	ts := openAlexTestServer(http.StatusOK, sampleOpenAlexJSON)
	defer ts.Close()

	old := openAlexAPIBase
	openAlexAPIBase = ts.URL
	defer func() { openAlexAPIBase = old }()

	b := &OpenAlexBackend{Client: ts.Client(), Email: "test@example.com"}
	results, err := b.Search(context.Background(), testQuery(), testCfg())
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("len(results) = %d, want 2", len(results))
	}

	r0 := results[0]
	if r0.Title != "Attention Is All You Need" {
		t.Errorf("Title = %q", r0.Title)
	}
	if r0.URL != "https://doi.org/10.5555/3295222.3295349" {
		t.Errorf("URL = %q, want DOI", r0.URL)
	}
	if r0.PaperID != "W2741809807" {
		t.Errorf("PaperID = %q, want %q", r0.PaperID, "W2741809807")
	}
	if r0.Source != types.SourceOpenAlex {
		t.Errorf("Source = %q", r0.Source)
	}
	if r0.CitationCount != 91234 {
		t.Errorf("CitationCount = %d, want 91234", r0.CitationCount)
	}
	if r0.Venue != "NeurIPS" {
		t.Errorf("Venue = %q, want %q", r0.Venue, "NeurIPS")
	}
	if len(r0.Authors) != 2 || r0.Authors[0] != "Ashish Vaswani" {
		t.Errorf("Authors = %v", r0.Authors)
	}
	// Abstract reconstructed from the inverted index, repeated word included.
	if !strings.Contains(r0.Abstract, "We propose a new architecture a based on attention") {
		t.Errorf("Abstract = %q, want reconstructed text", r0.Abstract)
	}

	// Second result has no DOI: URL falls back to the OpenAlex ID. Empty
	// inverted index yields the placeholder abstract.
	r1 := results[1]
	if r1.URL != "https://openalex.org/W3210812345" {
		t.Errorf("URL = %q, want OpenAlex ID fallback", r1.URL)
	}
	if r1.Abstract != "No abstract available." {
		t.Errorf("Abstract = %q, want placeholder", r1.Abstract)
	}
	if r1.Venue != "" {
		t.Errorf("Venue = %q, want empty for missing source", r1.Venue)
	}
}

// --- Query parameters ---

func TestOpenAlexBackendQueryParameters(t *testing.T) {
	var gotFilter, gotMailto, gotPerPage string
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotFilter = r.URL.Query().Get("filter")
		gotMailto = r.URL.Query().Get("mailto")
		gotPerPage = r.URL.Query().Get("per_page")
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"meta":{"count":0,"per_page":20,"page":1},"results":[]}`)
	}))
	defer ts.Close()

	old := openAlexAPIBase
	openAlexAPIBase = ts.URL
	defer func() { openAlexAPIBase = old }()

	b := &OpenAlexBackend{Client: ts.Client(), Email: "researcher@example.com"}
	q := Query{Subject: "test", StartYear: 2020, EndYear: 2023, NumPapers: 7}
	if _, err := b.Search(context.Background(), q, testCfg()); err != nil {
		t.Fatalf("Search: %v", err)
	}
	if gotFilter != "publication_year:2020-2023" {
		t.Errorf("filter = %q, want publication_year:2020-2023", gotFilter)
	}
	if gotMailto != "researcher@example.com" {
		t.Errorf("mailto = %q", gotMailto)
	}
	if gotPerPage != "7" {
		t.Errorf("per_page = %q, want 7", gotPerPage)
	}

	// Without an email there is no mailto parameter.
	b = &OpenAlexBackend{Client: ts.Client()}
	if _, err := b.Search(context.Background(), q, testCfg()); err != nil {
		t.Fatalf("Search: %v", err)
	}
	if gotMailto != "" {
		t.Errorf("mailto = %q, want empty when no email set", gotMailto)
	}
}

// --- openAlexID ---

func TestOpenAlexID(t *testing.T) {
	tests := []struct {
		input   string
		ordinal int
		want    string
	}{
		{"https://openalex.org/W2741809807", 0, "W2741809807"},
		{"", 3, "oa_3"},
		{"trailing/", 5, "oa_5"},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := openAlexID(tt.input, tt.ordinal); got != tt.want {
				t.Errorf("openAlexID(%q, %d) = %q, want %q", tt.input, tt.ordinal, got, tt.want)
			}
		})
	}
}

// --- Error cases ---

func TestOpenAlexBackendHTTPNon200(t *testing.T) {
	tests := []struct {
		name       string
		statusCode int
		wantSubstr string
	}{
		{"server error", http.StatusInternalServerError, "HTTP 500"},
		{"forbidden", http.StatusForbidden, "HTTP 403"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ts := openAlexTestServer(tt.statusCode, "")
			defer ts.Close()

			old := openAlexAPIBase
			openAlexAPIBase = ts.URL
			defer func() { openAlexAPIBase = old }()

			b := &OpenAlexBackend{Client: ts.Client()}
			_, err := b.Search(context.Background(), testQuery(), testCfg())
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tt.wantSubstr) {
				t.Errorf("error = %q, should contain %q", err.Error(), tt.wantSubstr)
			}
		})
	}
}

func TestOpenAlexBackendMalformedJSON(t *testing.T) {
	ts := openAlexTestServer(http.StatusOK, `{not valid json`)
	defer ts.Close()

	old := openAlexAPIBase
	openAlexAPIBase = ts.URL
	defer func() { openAlexAPIBase = old }()

	b := &OpenAlexBackend{Client: ts.Client()}
	_, err := b.Search(context.Background(), testQuery(), testCfg())
	if err == nil {
		t.Fatal("expected JSON parse error")
	}
	if !strings.Contains(err.Error(), "parsing") {
		t.Errorf("error = %q, should mention parsing", err.Error())
	}
}

// --- Backend name ---

func TestOpenAlexBackendName(t *testing.T) {
	b := &OpenAlexBackend{}
	if b.Name() != "openalex" {
		t.Errorf("Name() = %q, want %q", b.Name(), "openalex")
	}
}
