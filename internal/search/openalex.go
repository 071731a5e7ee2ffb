// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package search

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"golang.org/x/time/rate"

	"github.com/abdoljh/questscholar/internal/httputil"
	"github.com/abdoljh/questscholar/internal/textnorm"
	"github.com/abdoljh/questscholar/pkg/types"
)

// openAlexAPIBase is the OpenAlex works endpoint. Declared as a var so
// tests can substitute an httptest server.
var openAlexAPIBase = "https://api.openalex.org/works"

// OpenAlexBackend queries the OpenAlex works API.
type OpenAlexBackend struct {
	Client  *http.Client
	Limiter *rate.Limiter
	Email   string
}

// Name returns the backend identifier.
func (b *OpenAlexBackend) Name() string { return "openalex" }

// Search queries OpenAlex, filtering server-side on publication year.
// OpenAlex stores abstracts as inverted indexes, which are reconstructed
// into plain text before normalization.
func (b *OpenAlexBackend) Search(ctx context.Context, query Query, cfg types.SearchConfig) ([]types.PaperRecord, error) {
	params := url.Values{}
	params.Set("search", query.Subject)
	params.Set("filter", fmt.Sprintf("publication_year:%d-%d", query.StartYear, query.EndYear))
	params.Set("per_page", fmt.Sprintf("%d", query.NumPapers))
	params.Set("sort", "relevance_score:desc")
	if b.Email != "" {
		params.Set("mailto", b.Email)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, openAlexAPIBase+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", cfg.UserAgent)

	if err := wait(ctx, b.Limiter); err != nil {
		return nil, err
	}
	resp, err := httputil.DoWithRetry(ctx, b.Client, req, 0)
	if err != nil {
		return nil, fmt.Errorf("OpenAlex API request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("OpenAlex API returned HTTP %d", resp.StatusCode)
	}

	var payload openAlexResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("parsing OpenAlex response: %w", err)
	}

	records := make([]types.PaperRecord, 0, len(payload.Results))
	for i, work := range payload.Results {
		r := types.PaperRecord{
			Title:         work.Title,
			PubYear:       work.PublicationYear,
			Abstract:      textnorm.Clean(textnorm.ReconstructAbstract(work.AbstractInvertedIndex)),
			Source:        types.SourceOpenAlex,
			CitationCount: work.CitedByCount,
			PaperID:       openAlexID(work.ID, i),
		}
		for _, a := range work.Authorships {
			if a.Author.DisplayName != "" {
				r.Authors = append(r.Authors, a.Author.DisplayName)
			}
		}
		if work.PrimaryLocation.Source.DisplayName != "" {
			r.Venue = work.PrimaryLocation.Source.DisplayName
		}
		switch {
		case work.DOI != "":
			r.URL = work.DOI
		default:
			r.URL = work.ID
		}
		records = append(records, r)
	}
	return records, nil
}

// openAlexID extracts the short work ID from an OpenAlex URL
// (e.g. "https://openalex.org/W2741809807" -> "W2741809807").
func openAlexID(workURL string, ordinal int) string {
	if idx := strings.LastIndex(workURL, "/"); idx >= 0 && idx < len(workURL)-1 {
		return workURL[idx+1:]
	}
	return fmt.Sprintf("oa_%d", ordinal)
}

// OpenAlex JSON response structures.
type openAlexResponse struct {
	Results []openAlexWork `json:"results"`
}

type openAlexWork struct {
	ID                    string           `json:"id"`
	DOI                   string           `json:"doi"`
	Title                 string           `json:"title"`
	PublicationYear       int              `json:"publication_year"`
	CitedByCount          int              `json:"cited_by_count"`
	AbstractInvertedIndex map[string][]int `json:"abstract_inverted_index"`
	Authorships           []struct {
		Author struct {
			DisplayName string `json:"display_name"`
		} `json:"author"`
	} `json:"authorships"`
	PrimaryLocation struct {
		Source struct {
			DisplayName string `json:"display_name"`
		} `json:"source"`
	} `json:"primary_location"`
}
