// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var dedupeCmd = &cobra.Command{
	Use:   "dedupe",
	Short: "Remove duplicate papers from the library",
	Long: `Dedupe compares paper titles after stripping punctuation and case, and
keeps the first occurrence of each. Papers whose titles cannot be verified
(empty or untitled) are always kept.`,
	RunE: runDedupe,
}

func init() {
	rootCmd.AddCommand(dedupeCmd)
}

func runDedupe(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	store, sess, err := loadSession(ctx)
	if err != nil {
		return err
	}
	defer store.Close()

	removed := sess.Deduplicate()
	if err := store.Save(ctx, sess); err != nil {
		return fmt.Errorf("saving session: %w", err)
	}

	fmt.Printf("Deduplication Success: Removed %d duplicates. %d unique papers remain.\n",
		removed, len(sess.Papers))
	return nil
}
