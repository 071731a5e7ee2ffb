// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package search

import (
	"context"
	"encoding/xml"
	"fmt"
	"net/http"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/abdoljh/questscholar/internal/httputil"
	"github.com/abdoljh/questscholar/internal/textnorm"
	"github.com/abdoljh/questscholar/pkg/types"
)

// arxivAPIBase is the arXiv search endpoint. Declared as a var so tests
// can substitute an httptest server.
var arxivAPIBase = "https://export.arxiv.org/api/query"

// ArxivBackend queries the arXiv Atom API.
type ArxivBackend struct {
	Client  *http.Client
	Limiter *rate.Limiter
}

// Name returns the backend identifier.
func (b *ArxivBackend) Name() string { return "arxiv" }

// Search queries the arXiv API. The API has no year filter, so it
// over-fetches (2x the target) and filters on the published date, stopping
// once the query's paper budget is filled.
func (b *ArxivBackend) Search(ctx context.Context, query Query, cfg types.SearchConfig) ([]types.PaperRecord, error) {
	q := buildArxivQuery(query.Subject)
	if q == "" {
		return nil, fmt.Errorf("empty arXiv query")
	}

	maxResults := query.NumPapers * 2
	if maxResults <= 0 {
		maxResults = 20
	}

	reqURL := fmt.Sprintf("%s?search_query=%s&start=0&max_results=%d&sortBy=relevance&sortOrder=descending",
		arxivAPIBase, q, maxResults)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", cfg.UserAgent)

	if err := wait(ctx, b.Limiter); err != nil {
		return nil, err
	}
	resp, err := httputil.DoWithRetry(ctx, b.Client, req, 0)
	if err != nil {
		return nil, fmt.Errorf("arXiv API request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("arXiv API returned HTTP %d", resp.StatusCode)
	}

	var feed arxivFeed
	if err := xml.NewDecoder(resp.Body).Decode(&feed); err != nil {
		return nil, fmt.Errorf("parsing arXiv response: %w", err)
	}

	var records []types.PaperRecord
	for _, entry := range feed.Entries {
		published, parseErr := time.Parse(time.RFC3339, entry.Published)
		if parseErr != nil || !query.inYearRange(published.Year()) {
			continue
		}

		r := types.PaperRecord{
			Title:    strings.TrimSpace(entry.Title),
			PubYear:  published.Year(),
			Abstract: textnorm.Clean(strings.TrimSpace(entry.Summary)),
			URL:      entry.ID,
			Source:   types.SourceArxiv,
			Venue:    "arXiv Preprint",
			PaperID:  lastPathSegment(entry.ID),
		}
		for _, a := range entry.Authors {
			r.Authors = append(r.Authors, strings.TrimSpace(a.Name))
		}

		records = append(records, r)
		if len(records) >= query.NumPapers {
			break
		}
	}
	return records, nil
}

// buildArxivQuery constructs the search_query parameter from the subject.
func buildArxivQuery(subject string) string {
	terms := strings.Fields(subject)
	if len(terms) == 0 {
		return ""
	}
	return "all:" + strings.Join(terms, "+")
}

// lastPathSegment returns the trailing segment of an entry URL
// (e.g. "http://arxiv.org/abs/2301.07041v1" -> "2301.07041v1").
func lastPathSegment(idURL string) string {
	if idx := strings.LastIndex(idURL, "/"); idx >= 0 {
		return idURL[idx+1:]
	}
	return idURL
}

// arXiv Atom feed XML structures.
type arxivFeed struct {
	Entries []arxivEntry `xml:"entry"`
}

type arxivEntry struct {
	ID        string        `xml:"id"`
	Title     string        `xml:"title"`
	Summary   string        `xml:"summary"`
	Published string        `xml:"published"`
	Authors   []arxivAuthor `xml:"author"`
}

type arxivAuthor struct {
	Name string `xml:"name"`
}
