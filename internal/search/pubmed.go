// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package search

import (
	"context"
	"encoding/json"
	"encoding/xml"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"golang.org/x/time/rate"

	"github.com/abdoljh/questscholar/internal/httputil"
	"github.com/abdoljh/questscholar/internal/textnorm"
	"github.com/abdoljh/questscholar/pkg/types"
)

// NCBI E-utilities endpoints. Declared as vars so tests can substitute an
// httptest server.
var (
	pubmedSearchBase = "https://eutils.ncbi.nlm.nih.gov/entrez/eutils/esearch.fcgi"
	pubmedFetchBase  = "https://eutils.ncbi.nlm.nih.gov/entrez/eutils/efetch.fcgi"
)

// PubMedBackend queries PubMed via the NCBI E-utilities: esearch resolves
// the query to PMIDs, efetch retrieves the article records.
type PubMedBackend struct {
	Client  *http.Client
	Limiter *rate.Limiter
	// Email is sent as the NCBI contact parameter.
	Email string
	// APIKey raises the NCBI rate limit when set.
	APIKey string
}

// Name returns the backend identifier.
func (b *PubMedBackend) Name() string { return "pubmed" }

// Search queries PubMed. The year range is part of the esearch term, so no
// client-side filtering is needed. PubMed does not report citation counts;
// records keep the zero default.
func (b *PubMedBackend) Search(ctx context.Context, query Query, cfg types.SearchConfig) ([]types.PaperRecord, error) {
	ids, err := b.searchIDs(ctx, query, cfg)
	if err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return nil, nil
	}
	return b.fetchArticles(ctx, ids, cfg)
}

func (b *PubMedBackend) searchIDs(ctx context.Context, query Query, cfg types.SearchConfig) ([]string, error) {
	term := fmt.Sprintf("(%s) AND (%d[pdat] : %d[pdat])", query.Subject, query.StartYear, query.EndYear)
	params := url.Values{
		"db":      {"pubmed"},
		"term":    {term},
		"retmax":  {fmt.Sprintf("%d", query.NumPapers)},
		"retmode": {"json"},
	}
	b.addIdentification(params)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pubmedSearchBase+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", cfg.UserAgent)

	if err := wait(ctx, b.Limiter); err != nil {
		return nil, err
	}
	resp, err := httputil.DoWithRetry(ctx, b.Client, req, 0)
	if err != nil {
		return nil, fmt.Errorf("PubMed esearch request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("PubMed esearch returned HTTP %d", resp.StatusCode)
	}

	var sr pubmedSearchResponse
	if err := json.NewDecoder(resp.Body).Decode(&sr); err != nil {
		return nil, fmt.Errorf("parsing PubMed esearch response: %w", err)
	}
	return sr.Result.IDList, nil
}

func (b *PubMedBackend) fetchArticles(ctx context.Context, ids []string, cfg types.SearchConfig) ([]types.PaperRecord, error) {
	params := url.Values{
		"db":      {"pubmed"},
		"id":      {strings.Join(ids, ",")},
		"retmode": {"xml"},
	}
	b.addIdentification(params)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pubmedFetchBase+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", cfg.UserAgent)

	if err := wait(ctx, b.Limiter); err != nil {
		return nil, err
	}
	resp, err := httputil.DoWithRetry(ctx, b.Client, req, 0)
	if err != nil {
		return nil, fmt.Errorf("PubMed efetch request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("PubMed efetch returned HTTP %d", resp.StatusCode)
	}

	var set pubmedArticleSet
	if err := xml.NewDecoder(resp.Body).Decode(&set); err != nil {
		return nil, fmt.Errorf("parsing PubMed efetch response: %w", err)
	}

	var records []types.PaperRecord
	for _, article := range set.Articles {
		art := article.Citation.Article
		pmid := article.Citation.PMID

		year := 0
		if y, convErr := strconv.Atoi(art.Journal.Issue.PubDate.Year); convErr == nil {
			year = y
		}

		r := types.PaperRecord{
			Title:    art.Title,
			PubYear:  year,
			Abstract: textnorm.Clean(strings.Join(art.Abstract.Text, " ")),
			URL:      fmt.Sprintf("https://pubmed.ncbi.nlm.nih.gov/%s/", pmid),
			Source:   types.SourcePubMed,
			Venue:    art.Journal.Title,
			PaperID:  "pm_" + pmid,
		}
		for _, a := range art.Authors {
			name := strings.TrimSpace(a.LastName + " " + a.Initials)
			if name != "" {
				r.Authors = append(r.Authors, name)
			}
		}

		records = append(records, r)
	}
	return records, nil
}

// addIdentification attaches the NCBI contact and key parameters.
func (b *PubMedBackend) addIdentification(params url.Values) {
	params.Set("tool", "questscholar")
	if b.Email != "" {
		params.Set("email", b.Email)
	}
	if b.APIKey != "" {
		params.Set("api_key", b.APIKey)
	}
}

// PubMed esearch JSON structures.
type pubmedSearchResponse struct {
	Result pubmedSearchResult `json:"esearchresult"`
}

type pubmedSearchResult struct {
	Count  string   `json:"count"`
	IDList []string `json:"idlist"`
}

// PubMed efetch XML structures.
type pubmedArticleSet struct {
	XMLName  xml.Name        `xml:"PubmedArticleSet"`
	Articles []pubmedArticle `xml:"PubmedArticle"`
}

type pubmedArticle struct {
	Citation pubmedCitation `xml:"MedlineCitation"`
}

type pubmedCitation struct {
	PMID    string            `xml:"PMID"`
	Article pubmedArticleData `xml:"Article"`
}

type pubmedArticleData struct {
	Title    string          `xml:"ArticleTitle"`
	Abstract pubmedAbstract  `xml:"Abstract"`
	Authors  []pubmedAuthor  `xml:"AuthorList>Author"`
	Journal  pubmedJournal   `xml:"Journal"`
}

type pubmedAbstract struct {
	Text []string `xml:"AbstractText"`
}

type pubmedAuthor struct {
	LastName string `xml:"LastName"`
	Initials string `xml:"Initials"`
}

type pubmedJournal struct {
	Title string             `xml:"Title"`
	Issue pubmedJournalIssue `xml:"JournalIssue"`
}

type pubmedJournalIssue struct {
	PubDate pubmedPubDate `xml:"PubDate"`
}

type pubmedPubDate struct {
	Year string `xml:"Year"`
}
