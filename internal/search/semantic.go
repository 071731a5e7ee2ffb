// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package search

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	"golang.org/x/time/rate"

	"github.com/abdoljh/questscholar/internal/httputil"
	"github.com/abdoljh/questscholar/internal/textnorm"
	"github.com/abdoljh/questscholar/pkg/types"
)

// semanticAPIBase is the Semantic Scholar paper search endpoint. Declared
// as a var so tests can substitute an httptest server.
var semanticAPIBase = "https://api.semanticscholar.org/graph/v1/paper/search"

const semanticFields = "title,abstract,authors,year,url,citationCount,venue"

// SemanticScholarBackend queries the Semantic Scholar Graph API.
type SemanticScholarBackend struct {
	Client  *http.Client
	Limiter *rate.Limiter
	APIKey  string
}

// Name returns the backend identifier.
func (b *SemanticScholarBackend) Name() string { return "semantic_scholar" }

// Search queries the Semantic Scholar API. It over-fetches (3x the target,
// capped at 100) because the year filter discards part of each page, and
// stops once the query's paper budget is filled.
func (b *SemanticScholarBackend) Search(ctx context.Context, query Query, cfg types.SearchConfig) ([]types.PaperRecord, error) {
	limit := query.NumPapers * 3
	if limit > 100 {
		limit = 100
	}
	if limit <= 0 {
		limit = 30
	}

	params := url.Values{
		"query":  {query.Subject},
		"limit":  {fmt.Sprintf("%d", limit)},
		"fields": {semanticFields},
		"year":   {fmt.Sprintf("%d-%d", query.StartYear, query.EndYear)},
	}
	reqURL := semanticAPIBase + "?" + params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", cfg.UserAgent)
	if b.APIKey != "" {
		req.Header.Set("x-api-key", b.APIKey)
	}

	if err := wait(ctx, b.Limiter); err != nil {
		return nil, err
	}
	resp, err := httputil.DoWithRetry(ctx, b.Client, req, 0)
	if err != nil {
		return nil, fmt.Errorf("Semantic Scholar API request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("Semantic Scholar API returned HTTP %d", resp.StatusCode)
	}

	var sr semanticResponse
	if err := json.NewDecoder(resp.Body).Decode(&sr); err != nil {
		return nil, fmt.Errorf("parsing Semantic Scholar response: %w", err)
	}

	var records []types.PaperRecord
	for _, paper := range sr.Data {
		if !query.inYearRange(paper.Year) {
			continue
		}

		r := types.PaperRecord{
			Title:         paper.Title,
			PubYear:       paper.Year,
			Abstract:      textnorm.Clean(paper.Abstract),
			URL:           paper.URL,
			Source:        types.SourceSemanticScholar,
			CitationCount: paper.CitationCount,
			Venue:         paper.Venue,
			PaperID:       fmt.Sprintf("ss_%d_%d", len(records), paper.Year),
		}
		for _, a := range paper.Authors {
			r.Authors = append(r.Authors, a.Name)
		}
		if len(r.Authors) == 0 {
			r.Authors = []string{"Unknown"}
		}

		records = append(records, r)
		if len(records) >= query.NumPapers {
			break
		}
	}
	return records, nil
}

// Semantic Scholar API JSON structures.
type semanticResponse struct {
	Total  int             `json:"total"`
	Offset int             `json:"offset"`
	Data   []semanticPaper `json:"data"`
}

type semanticPaper struct {
	PaperID       string           `json:"paperId"`
	Title         string           `json:"title"`
	Abstract      string           `json:"abstract"`
	Year          int              `json:"year"`
	URL           string           `json:"url"`
	CitationCount int              `json:"citationCount"`
	Venue         string           `json:"venue"`
	Authors       []semanticAuthor `json:"authors"`
}

type semanticAuthor struct {
	AuthorID string `json:"authorId"`
	Name     string `json:"name"`
}
