// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/abdoljh/questscholar/internal/report"
	"github.com/abdoljh/questscholar/pkg/types"
)

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Render the executive summary report",
	Long: `Report joins the library with its critic evaluations, ranks the papers,
and renders executive_summary.pdf and/or executive_summary.html into the
output directory. Papers the critic marked for exclusion are left out of
the report and counted in the status line.`,
	RunE: runReport,
}

func init() {
	reportCmd.Flags().String("subject", "", "research subject shown on the report (required)")
	reportCmd.Flags().String("summary", "", "executive summary text")
	reportCmd.Flags().String("summary-file", "", "read the executive summary from this file")
	reportCmd.Flags().String("format", "both", "output format: pdf, html, or both")
	reportCmd.Flags().String("output-dir", "", "directory for report files (default: config output_dir or .)")
	reportCmd.Flags().String("logo", "", "logo image shown on later PDF pages")
	reportCmd.Flags().String("watermark", "", "watermark image on the PDF title page")
	_ = reportCmd.MarkFlagRequired("subject")

	rootCmd.AddCommand(reportCmd)
}

func runReport(cmd *cobra.Command, args []string) error {
	subject, _ := cmd.Flags().GetString("subject")
	summary, _ := cmd.Flags().GetString("summary")
	summaryFile, _ := cmd.Flags().GetString("summary-file")
	format, _ := cmd.Flags().GetString("format")
	outputDir, _ := cmd.Flags().GetString("output-dir")
	logo, _ := cmd.Flags().GetString("logo")
	watermark, _ := cmd.Flags().GetString("watermark")

	if summaryFile != "" {
		raw, err := os.ReadFile(summaryFile)
		if err != nil {
			return fmt.Errorf("reading summary file: %w", err)
		}
		summary = strings.TrimSpace(string(raw))
	}
	if outputDir == "" {
		outputDir = viper.GetString("output_dir")
	}
	if logo == "" {
		logo = viper.GetString("logo_path")
	}
	if watermark == "" {
		watermark = viper.GetString("watermark_path")
	}

	cfg := types.ReportConfig{
		OutputDir:     outputDir,
		LogoPath:      logo,
		WatermarkPath: watermark,
	}

	ctx := cmd.Context()
	store, sess, err := loadSession(ctx)
	if err != nil {
		return err
	}
	defer store.Close()

	switch format {
	case "pdf", "html", "both":
	default:
		return fmt.Errorf("unknown format %q: want pdf, html, or both", format)
	}

	if format == "pdf" || format == "both" {
		status, err := report.WritePDF(sess, subject, summary, cfg, os.Stderr)
		if err != nil {
			return err
		}
		fmt.Println(status)
	}
	if format == "html" || format == "both" {
		status, err := report.WriteHTML(sess, subject, summary, cfg)
		if err != nil {
			return err
		}
		fmt.Println(status)
	}
	return nil
}
