// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
)

var critiqueCmd = &cobra.Command{
	Use:   "critique",
	Short: "Ingest critic evaluations for the collected papers",
	Long: `Critique reads a JSON array of critic evaluations, matches each entry to
a library paper by title, and stores the scores. Missing scores default to
the neutral 3.0 and the composite score is always recomputed from the
relevance, methodology, and impact components. Evaluations for titles not
in the library are dropped.`,
	RunE: runCritique,
}

func init() {
	critiqueCmd.Flags().String("file", "", "read evaluations from this file instead of stdin")

	rootCmd.AddCommand(critiqueCmd)
}

func runCritique(cmd *cobra.Command, args []string) error {
	file, _ := cmd.Flags().GetString("file")

	var raw []byte
	var err error
	if file != "" {
		raw, err = os.ReadFile(file)
		if err != nil {
			return fmt.Errorf("reading evaluations file: %w", err)
		}
	} else {
		raw, err = io.ReadAll(os.Stdin)
		if err != nil {
			return fmt.Errorf("reading evaluations from stdin: %w", err)
		}
	}

	ctx := cmd.Context()
	store, sess, err := loadSession(ctx)
	if err != nil {
		return err
	}
	defer store.Close()

	count, err := sess.IngestEvaluations(raw)
	if err != nil {
		return err
	}
	if err := store.Save(ctx, sess); err != nil {
		return fmt.Errorf("saving session: %w", err)
	}

	fmt.Printf("Critic: successfully evaluated %d papers\n", count)
	return nil
}
