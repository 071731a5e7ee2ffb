// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/abdoljh/questscholar/internal/search"
	"github.com/abdoljh/questscholar/pkg/types"
)

const (
	defaultTimeout   = 30 * time.Second
	defaultUserAgent = "questscholar/0.1"
	defaultDelay     = 1 * time.Second
)

var searchCmd = &cobra.Command{
	Use:   "search <subject>",
	Short: "Search academic APIs for papers on a subject",
	Long: `Search queries the enabled academic APIs (Semantic Scholar, PubMed, arXiv,
OpenAlex) for papers on a research subject within a publication year range,
and appends the results to the persistent library. A failing backend is
reported as a warning; the remaining backends still run.`,
	Args: cobra.ExactArgs(1),
	RunE: runSearch,
}

func init() {
	searchCmd.Flags().Int("start-year", 2015, "earliest publication year, inclusive")
	searchCmd.Flags().Int("end-year", time.Now().Year(), "latest publication year, inclusive")
	searchCmd.Flags().Int("num-papers", 10, "number of papers per backend")
	searchCmd.Flags().Bool("no-semantic-scholar", false, "skip the Semantic Scholar backend")
	searchCmd.Flags().Bool("no-pubmed", false, "skip the PubMed backend")
	searchCmd.Flags().Bool("no-arxiv", false, "skip the arXiv backend")
	searchCmd.Flags().Bool("no-openalex", false, "skip the OpenAlex backend")
	searchCmd.Flags().Float64("rps", 2.0, "request rate limit across backends, requests per second")
	searchCmd.Flags().Duration("delay", 0, "delay between consecutive backends (default 1s)")
	searchCmd.Flags().String("email", "", "contact email sent to PubMed and OpenAlex")

	rootCmd.AddCommand(searchCmd)
}

func runSearch(cmd *cobra.Command, args []string) error {
	startYear, _ := cmd.Flags().GetInt("start-year")
	endYear, _ := cmd.Flags().GetInt("end-year")
	numPapers, _ := cmd.Flags().GetInt("num-papers")
	noSS, _ := cmd.Flags().GetBool("no-semantic-scholar")
	noPM, _ := cmd.Flags().GetBool("no-pubmed")
	noAX, _ := cmd.Flags().GetBool("no-arxiv")
	noOA, _ := cmd.Flags().GetBool("no-openalex")
	rps, _ := cmd.Flags().GetFloat64("rps")
	delay, _ := cmd.Flags().GetDuration("delay")
	if delay == 0 {
		delay = defaultDelay
	}
	email, _ := cmd.Flags().GetString("email")

	cfg := types.SearchConfig{
		HTTPConfig: types.HTTPConfig{
			Timeout:   defaultTimeout,
			UserAgent: defaultUserAgent,
		},
		NumPapers:             numPapers,
		EnableSemanticScholar: !noSS,
		EnablePubMed:          !noPM,
		EnableArxiv:           !noAX,
		EnableOpenAlex:        !noOA,
		SemanticScholarAPIKey: secretDefault("semantic-scholar-api-key", os.Getenv("SEMANTIC_SCHOLAR_API_KEY")),
		PubMedEmail:           secretDefault("pubmed-email", email),
		PubMedAPIKey:          secretDefault("pubmed-api-key", os.Getenv("PUBMED_API_KEY")),
		OpenAlexEmail:         secretDefault("openalex-email", email),
		RequestsPerSecond:     rps,
		InterBackendDelay:     delay,
	}

	query := search.Query{
		Subject:   args[0],
		StartYear: startYear,
		EndYear:   endYear,
		NumPapers: numPapers,
	}

	ctx := cmd.Context()
	store, sess, err := loadSession(ctx)
	if err != nil {
		return err
	}
	defer store.Close()

	added, err := search.Run(ctx, sess, search.Backends(cfg), query, cfg, os.Stdout)
	if err != nil {
		return err
	}
	if err := store.Save(ctx, sess); err != nil {
		return fmt.Errorf("saving session: %w", err)
	}

	fmt.Printf("Search complete: %d papers added, %d in library.\n", added, len(sess.Papers))
	return nil
}
