// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package search

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/abdoljh/questscholar/internal/session"
	"github.com/abdoljh/questscholar/pkg/types"
)

// --- mock backend ---

type mockBackend struct {
	name    string
	results []types.PaperRecord
	err     error
}

func (m *mockBackend) Name() string { return m.name }

func (m *mockBackend) Search(_ context.Context, _ Query, _ types.SearchConfig) ([]types.PaperRecord, error) {
	return m.results, m.err
}

func testCfg() types.SearchConfig {
	return types.SearchConfig{
		HTTPConfig: types.HTTPConfig{
			Timeout:   10 * time.Second,
			UserAgent: "test/0.1",
		},
		NumPapers:         10,
		InterBackendDelay: 0,
	}
}

func testQuery() Query {
	return Query{Subject: "test subject", StartYear: 2015, EndYear: 2025, NumPapers: 10}
}

// --- Query ---

func TestQueryIsEmpty(t *testing.T) {
	tests := []struct {
		name  string
		query Query
		want  bool
	}{
		{"empty", Query{}, true},
		{"subject set", Query{Subject: "crispr"}, false},
		{"whitespace subject is empty", Query{Subject: "   "}, true},
		{"years only is empty", Query{StartYear: 2020, EndYear: 2024}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.query.IsEmpty(); got != tt.want {
				t.Errorf("IsEmpty() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestQueryInYearRange(t *testing.T) {
	q := Query{StartYear: 2018, EndYear: 2022}
	tests := []struct {
		year int
		want bool
	}{
		{2018, true},
		{2020, true},
		{2022, true},
		{2017, false},
		{2023, false},
		{0, false},
	}
	for _, tt := range tests {
		if got := q.inYearRange(tt.year); got != tt.want {
			t.Errorf("inYearRange(%d) = %v, want %v", tt.year, got, tt.want)
		}
	}
}

// --- Run ---

func TestRunAppendsToSession(t *testing.T) {
	b := &mockBackend{
		name: "mock",
		results: []types.PaperRecord{
			{Title: "Paper A", Abstract: "An abstract.", Source: "mock", Venue: "Journal"},
			{Title: "Paper B", Abstract: "Another abstract.", Source: "mock", Venue: "Journal"},
		},
	}

	sess := session.New()
	var buf bytes.Buffer
	added, err := Run(context.Background(), sess, []Backend{b}, testQuery(), testCfg(), &buf)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if added != 2 {
		t.Errorf("added = %d, want 2", added)
	}
	if len(sess.Papers) != 2 {
		t.Errorf("len(sess.Papers) = %d, want 2", len(sess.Papers))
	}
	if !strings.Contains(buf.String(), "mock: added 2 papers") {
		t.Errorf("output = %q, should report per-backend count", buf.String())
	}
}

func TestRunContinuesAfterBackendFailure(t *testing.T) {
	failing := &mockBackend{name: "failing", err: fmt.Errorf("network error")}
	working := &mockBackend{
		name:    "working",
		results: []types.PaperRecord{{Title: "Paper A", Source: "working"}},
	}

	sess := session.New()
	var buf bytes.Buffer
	added, err := Run(context.Background(), sess, []Backend{failing, working}, testQuery(), testCfg(), &buf)
	if err != nil {
		t.Fatalf("Run should not fail entirely: %v", err)
	}
	if added != 1 {
		t.Errorf("added = %d, want 1", added)
	}
	if !strings.Contains(buf.String(), "warning: backend failing failed") {
		t.Errorf("output = %q, should warn about failed backend", buf.String())
	}
}

func TestRunEmptyQuery(t *testing.T) {
	var buf bytes.Buffer
	_, err := Run(context.Background(), session.New(), []Backend{&mockBackend{name: "mock"}}, Query{}, testCfg(), &buf)
	if err == nil || !strings.Contains(err.Error(), "empty") {
		t.Errorf("expected empty query error, got: %v", err)
	}
}

func TestRunNoBackends(t *testing.T) {
	var buf bytes.Buffer
	_, err := Run(context.Background(), session.New(), nil, testQuery(), testCfg(), &buf)
	if err == nil || !strings.Contains(err.Error(), "no search backends") {
		t.Errorf("expected no backends error, got: %v", err)
	}
}

func TestRunAppliesRecordFallbacks(t *testing.T) {
	b := &mockBackend{
		name:    "mock",
		results: []types.PaperRecord{{Title: "", Abstract: "", Venue: "", Source: "mock"}},
	}

	sess := session.New()
	var buf bytes.Buffer
	if _, err := Run(context.Background(), sess, []Backend{b}, testQuery(), testCfg(), &buf); err != nil {
		t.Fatalf("Run: %v", err)
	}
	p := sess.Papers[0]
	if p.Title != "Untitled" {
		t.Errorf("Title = %q, want %q", p.Title, "Untitled")
	}
	if p.Abstract != "No abstract available." {
		t.Errorf("Abstract = %q, want placeholder", p.Abstract)
	}
	if p.Venue != "Unknown" {
		t.Errorf("Venue = %q, want %q", p.Venue, "Unknown")
	}
}

// --- Backends factory ---

func TestBackendsHonorsEnableFlags(t *testing.T) {
	cfg := testCfg()
	cfg.EnableSemanticScholar = true
	cfg.EnablePubMed = false
	cfg.EnableArxiv = true
	cfg.EnableOpenAlex = false

	backends := Backends(cfg)
	if len(backends) != 2 {
		t.Fatalf("len(backends) = %d, want 2", len(backends))
	}
	if backends[0].Name() != "semantic_scholar" {
		t.Errorf("backends[0] = %q, want semantic_scholar", backends[0].Name())
	}
	if backends[1].Name() != "arxiv" {
		t.Errorf("backends[1] = %q, want arxiv", backends[1].Name())
	}
}

func TestBackendsAllEnabled(t *testing.T) {
	cfg := testCfg()
	cfg.EnableSemanticScholar = true
	cfg.EnablePubMed = true
	cfg.EnableArxiv = true
	cfg.EnableOpenAlex = true

	backends := Backends(cfg)
	want := []string{"semantic_scholar", "pubmed", "arxiv", "openalex"}
	if len(backends) != len(want) {
		t.Fatalf("len(backends) = %d, want %d", len(backends), len(want))
	}
	for i, name := range want {
		if backends[i].Name() != name {
			t.Errorf("backends[%d] = %q, want %q", i, backends[i].Name(), name)
		}
	}
}

// --- arXiv backend ---

const sampleArxivXML = `<?xml version="1.0" encoding="UTF-8"?>
<feed xmlns="http://www.w3.org/2005/Atom">
  <entry>
    <id>http://arxiv.org/abs/1706.03762v1</id>
    <title>Attention Is All You Need</title>
    <summary>We propose a new architecture based solely on attention mechanisms.</summary>
    <published>2017-06-12T17:57:34Z</published>
    <author><name>Ashish Vaswani</name></author>
    <author><name>Noam Shazeer</name></author>
  </entry>
  <entry>
    <id>http://arxiv.org/abs/1810.04805v2</id>
    <title>BERT: Pre-training of Deep Bidirectional Transformers</title>
    <summary>We introduce BERT.</summary>
    <published>2018-10-11T00:00:00Z</published>
    <author><name>Jacob Devlin</name></author>
  </entry>
  <entry>
    <id>http://arxiv.org/abs/1301.00001v1</id>
    <title>Too Old</title>
    <summary>Outside the year range.</summary>
    <published>2013-01-01T00:00:00Z</published>
    <author><name>Old Author</name></author>
  </entry>
</feed>`

func TestArxivBackendSearch(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/xml")
		fmt.Fprint(w, sampleArxivXML)
	}))
	defer ts.Close()

	old := arxivAPIBase
	arxivAPIBase = ts.URL
	defer func() { arxivAPIBase = old }()

	b := &ArxivBackend{Client: ts.Client()}
	results, err := b.Search(context.Background(), testQuery(), testCfg())
	if err != nil {
		t.Fatalf("ArxivBackend.Search: %v", err)
	}
	// Third entry is outside the 2015-2025 range.
	if len(results) != 2 {
		t.Fatalf("len(results) = %d, want 2", len(results))
	}

	r := results[0]
	if r.Title != "Attention Is All You Need" {
		t.Errorf("Title = %q", r.Title)
	}
	if r.PubYear != 2017 {
		t.Errorf("PubYear = %d, want 2017", r.PubYear)
	}
	if r.PaperID != "1706.03762v1" {
		t.Errorf("PaperID = %q, want %q", r.PaperID, "1706.03762v1")
	}
	if r.URL != "http://arxiv.org/abs/1706.03762v1" {
		t.Errorf("URL = %q", r.URL)
	}
	if r.Venue != "arXiv Preprint" {
		t.Errorf("Venue = %q, want %q", r.Venue, "arXiv Preprint")
	}
	if r.Source != types.SourceArxiv {
		t.Errorf("Source = %q, want %q", r.Source, types.SourceArxiv)
	}
	if len(r.Authors) != 2 || r.Authors[0] != "Ashish Vaswani" {
		t.Errorf("Authors = %v", r.Authors)
	}
	if !strings.Contains(r.Abstract, "attention mechanisms") {
		t.Errorf("Abstract = %q", r.Abstract)
	}
}

func TestArxivBackendCapsAtNumPapers(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/xml")
		fmt.Fprint(w, sampleArxivXML)
	}))
	defer ts.Close()

	old := arxivAPIBase
	arxivAPIBase = ts.URL
	defer func() { arxivAPIBase = old }()

	q := testQuery()
	q.NumPapers = 1
	b := &ArxivBackend{Client: ts.Client()}
	results, err := b.Search(context.Background(), q, testCfg())
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(results) != 1 {
		t.Errorf("len(results) = %d, want 1", len(results))
	}
}

func TestBuildArxivQuery(t *testing.T) {
	tests := []struct {
		subject string
		want    string
	}{
		{"attention mechanisms", "all:attention+mechanisms"},
		{"crispr", "all:crispr"},
		{"  spaced   out  ", "all:spaced+out"},
		{"", ""},
	}
	for _, tt := range tests {
		t.Run(tt.subject, func(t *testing.T) {
			got := buildArxivQuery(tt.subject)
			if got != tt.want {
				t.Errorf("buildArxivQuery(%q) = %q, want %q", tt.subject, got, tt.want)
			}
		})
	}
}

func TestLastPathSegment(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"http://arxiv.org/abs/2301.07041v1", "2301.07041v1"},
		{"no-slash", "no-slash"},
	}
	for _, tt := range tests {
		if got := lastPathSegment(tt.input); got != tt.want {
			t.Errorf("lastPathSegment(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

// --- Semantic Scholar backend ---

const sampleSemanticJSON = `{
  "total": 2,
  "offset": 0,
  "data": [
    {
      "paperId": "abc123",
      "title": "Attention Is All You Need",
      "abstract": "We propose a new architecture.",
      "year": 2017,
      "url": "https://www.semanticscholar.org/paper/abc123",
      "citationCount": 90000,
      "venue": "NeurIPS",
      "authors": [
        {"authorId": "1", "name": "Ashish Vaswani"},
        {"authorId": "2", "name": "Noam Shazeer"}
      ]
    },
    {
      "paperId": "def456",
      "title": "Out Of Range Paper",
      "abstract": "Should be filtered.",
      "year": 2010,
      "url": "https://www.semanticscholar.org/paper/def456",
      "citationCount": 5,
      "venue": "Old Venue",
      "authors": []
    }
  ]
}`

func TestSemanticScholarBackendSearch(t *testing.T) {
	var gotKey string
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotKey = r.Header.Get("x-api-key")
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, sampleSemanticJSON)
	}))
	defer ts.Close()

	old := semanticAPIBase
	semanticAPIBase = ts.URL
	defer func() { semanticAPIBase = old }()

	b := &SemanticScholarBackend{Client: ts.Client(), APIKey: "sekret"}
	results, err := b.Search(context.Background(), testQuery(), testCfg())
	if err != nil {
		t.Fatalf("SemanticScholarBackend.Search: %v", err)
	}
	if gotKey != "sekret" {
		t.Errorf("x-api-key = %q, want %q", gotKey, "sekret")
	}
	// 2010 paper falls outside the 2015-2025 range.
	if len(results) != 1 {
		t.Fatalf("len(results) = %d, want 1", len(results))
	}

	r := results[0]
	if r.Title != "Attention Is All You Need" {
		t.Errorf("Title = %q", r.Title)
	}
	if r.CitationCount != 90000 {
		t.Errorf("CitationCount = %d, want 90000", r.CitationCount)
	}
	if r.Venue != "NeurIPS" {
		t.Errorf("Venue = %q", r.Venue)
	}
	if r.Source != types.SourceSemanticScholar {
		t.Errorf("Source = %q", r.Source)
	}
	if len(r.Authors) != 2 {
		t.Errorf("Authors = %v", r.Authors)
	}
}

func TestSemanticScholarBackendMissingAuthors(t *testing.T) {
	noAuthors := `{"total":1,"offset":0,"data":[{"paperId":"x","title":"Solo","abstract":"a","year":2020,"url":"u","citationCount":0,"venue":"v","authors":[]}]}`
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, noAuthors)
	}))
	defer ts.Close()

	old := semanticAPIBase
	semanticAPIBase = ts.URL
	defer func() { semanticAPIBase = old }()

	b := &SemanticScholarBackend{Client: ts.Client()}
	results, err := b.Search(context.Background(), testQuery(), testCfg())
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(results[0].Authors) != 1 || results[0].Authors[0] != "Unknown" {
		t.Errorf("Authors = %v, want [Unknown]", results[0].Authors)
	}
}

func TestSemanticScholarBackendHTTPError(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer ts.Close()

	old := semanticAPIBase
	semanticAPIBase = ts.URL
	defer func() { semanticAPIBase = old }()

	b := &SemanticScholarBackend{Client: ts.Client()}
	_, err := b.Search(context.Background(), testQuery(), testCfg())
	if err == nil || !strings.Contains(err.Error(), "HTTP 500") {
		t.Errorf("expected HTTP 500 error, got: %v", err)
	}
}
