// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package search queries academic APIs and appends the discovered papers to
// a research session. Each backend (Semantic Scholar, PubMed, arXiv,
// OpenAlex) implements the Backend interface per the Strategy pattern.
package search

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/abdoljh/questscholar/internal/httputil"
	"github.com/abdoljh/questscholar/internal/session"
	"github.com/abdoljh/questscholar/pkg/types"
)

// Backend searches a single academic API.
type Backend interface {
	Name() string
	Search(ctx context.Context, query Query, cfg types.SearchConfig) ([]types.PaperRecord, error)
}

// Query holds the search parameters common to all backends.
type Query struct {
	// Subject is the free-text research subject.
	Subject string

	// StartYear and EndYear bound the publication year, inclusive.
	StartYear int
	EndYear   int

	// NumPapers is the number of papers each backend should contribute.
	NumPapers int
}

// IsEmpty reports whether the query contains no searchable subject.
func (q Query) IsEmpty() bool {
	return strings.TrimSpace(q.Subject) == ""
}

// inYearRange reports whether year falls inside the query's bounds. An
// unknown year (0) never matches, matching the sources' own behavior of
// dropping undated records from year-filtered queries.
func (q Query) inYearRange(year int) bool {
	return year >= q.StartYear && year <= q.EndYear
}

// Backends returns the enabled backends in their fixed run order, sharing
// one HTTP client and one rate limiter.
func Backends(cfg types.SearchConfig) []Backend {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	client := &http.Client{Timeout: timeout}
	limiter := httputil.NewLimiter(cfg.RequestsPerSecond)

	var backends []Backend
	if cfg.EnableSemanticScholar {
		backends = append(backends, &SemanticScholarBackend{Client: client, Limiter: limiter, APIKey: cfg.SemanticScholarAPIKey})
	}
	if cfg.EnablePubMed {
		backends = append(backends, &PubMedBackend{Client: client, Limiter: limiter, Email: cfg.PubMedEmail, APIKey: cfg.PubMedAPIKey})
	}
	if cfg.EnableArxiv {
		backends = append(backends, &ArxivBackend{Client: client, Limiter: limiter})
	}
	if cfg.EnableOpenAlex {
		backends = append(backends, &OpenAlexBackend{Client: client, Limiter: limiter, Email: cfg.OpenAlexEmail})
	}
	return backends
}

// Run executes each backend in turn and appends its records to the
// session. A failing backend produces a warning line on w, not a run
// failure; the per-backend counts are also written to w. Returns the total
// number of papers appended.
func Run(ctx context.Context, sess *session.Session, backends []Backend, query Query, cfg types.SearchConfig, w io.Writer) (int, error) {
	if query.IsEmpty() {
		return 0, fmt.Errorf("query is empty: provide a research subject")
	}
	if len(backends) == 0 {
		return 0, fmt.Errorf("no search backends enabled")
	}

	total := 0
	for i, b := range backends {
		if i > 0 && cfg.InterBackendDelay > 0 {
			select {
			case <-ctx.Done():
				return total, ctx.Err()
			case <-time.After(cfg.InterBackendDelay):
			}
		}

		records, err := b.Search(ctx, query, cfg)
		if err != nil {
			fmt.Fprintf(w, "warning: backend %s failed: %v\n", b.Name(), err)
			continue
		}
		for _, r := range records {
			sess.AppendPaper(r)
		}
		fmt.Fprintf(w, "%s: added %d papers\n", b.Name(), len(records))
		total += len(records)
	}
	return total, nil
}

// wait blocks on the shared rate limiter, if one is configured.
func wait(ctx context.Context, l *rate.Limiter) error {
	return httputil.WaitLimiter(ctx, l)
}
