// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export the library with evaluations as YAML or JSON",
	Long: `Export writes the full library, each paper paired with its critic
evaluation when one exists, to library.yaml and/or library.json.`,
	RunE: runExport,
}

func init() {
	exportCmd.Flags().String("format", "both", "output format: yaml, json, or both")
	exportCmd.Flags().String("yaml-file", "library.yaml", "path for the YAML export")
	exportCmd.Flags().String("json-file", "library.json", "path for the JSON export")

	rootCmd.AddCommand(exportCmd)
}

func runExport(cmd *cobra.Command, args []string) error {
	format, _ := cmd.Flags().GetString("format")
	yamlFile, _ := cmd.Flags().GetString("yaml-file")
	jsonFile, _ := cmd.Flags().GetString("json-file")

	ctx := cmd.Context()
	store, sess, err := loadSession(ctx)
	if err != nil {
		return err
	}
	defer store.Close()

	switch format {
	case "yaml", "json", "both":
	default:
		return fmt.Errorf("unknown format %q: want yaml, json, or both", format)
	}

	if format == "yaml" || format == "both" {
		if err := sess.ExportYAML(yamlFile); err != nil {
			return err
		}
		fmt.Printf("Exported %d papers to %s\n", len(sess.Papers), yamlFile)
	}
	if format == "json" || format == "both" {
		if err := sess.ExportJSON(jsonFile); err != nil {
			return err
		}
		fmt.Printf("Exported %d papers to %s\n", len(sess.Papers), jsonFile)
	}
	return nil
}
