// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var clearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Empty the library and all critic evaluations",
	RunE:  runClear,
}

func init() {
	rootCmd.AddCommand(clearCmd)
}

func runClear(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	store, sess, err := loadSession(ctx)
	if err != nil {
		return err
	}
	defer store.Close()

	sess.Clear()
	if err := store.Save(ctx, sess); err != nil {
		return fmt.Errorf("saving session: %w", err)
	}

	fmt.Println("Library and evaluations cleared.")
	return nil
}
