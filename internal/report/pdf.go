// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package report

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/jung-kurt/gofpdf"

	"github.com/abdoljh/questscholar/internal/session"
	"github.com/abdoljh/questscholar/internal/textnorm"
	"github.com/abdoljh/questscholar/pkg/types"
)

// PDF layout constants, in millimeters on an A4 page.
const (
	pdfMargin       = 15.0
	pdfPageWidth    = 210.0
	pdfContentWidth = pdfPageWidth - 2*pdfMargin
	watermarkScale  = 0.5
	watermarkAlpha  = 0.15
	logoWidth       = 20.0
)

// abstractWordLimit caps the abstract length in the bibliography.
const abstractWordLimit = 100

// WritePDF renders the ranked collection into executive_summary.pdf under
// cfg.OutputDir and returns the status line. Missing watermark or logo
// images are skipped with a warning on w rather than failing the report.
// The core PDF fonts only cover cp1252, so quality markers use the ASCII
// "**" and "*" forms instead of the stars the HTML report shows.
func WritePDF(sess *session.Session, subject, summary string, cfg types.ReportConfig, w io.Writer) (string, error) {
	if len(sess.Papers) == 0 {
		return "", fmt.Errorf("collection is empty")
	}

	included, excluded := Rank(sess)

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(pdfMargin, pdfMargin, pdfMargin)
	pdf.SetAutoPageBreak(true, 25)
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	footerText := fmt.Sprintf("QuestScholar Research: %s", truncateRunes(subject, 45))
	logoUsable := imageUsable(cfg.LogoPath, "logo", w)

	pdf.SetHeaderFuncMode(func() {
		if pdf.PageNo() > 1 && logoUsable {
			pdf.ImageOptions(cfg.LogoPath, pdfMargin, 4, logoWidth, 0, false,
				gofpdf.ImageOptions{ReadDpi: true}, 0, "")
		}
		pdf.SetDrawColor(0, 0, 128)
		pdf.SetLineWidth(0.4)
		pdf.Line(pdfMargin, 12, pdfPageWidth-pdfMargin, 12)
		pdf.SetY(pdfMargin)
	}, true)

	pdf.SetFooterFunc(func() {
		pdf.SetDrawColor(0, 0, 128)
		pdf.SetLineWidth(0.4)
		pdf.Line(pdfMargin, 282, pdfPageWidth-pdfMargin, 282)
		pdf.SetY(-12)
		pdf.SetFont("Helvetica", "", 8)
		pdf.SetTextColor(0, 0, 0)
		pdf.CellFormat(pdfContentWidth/2, 6, tr(footerText), "", 0, "L", false, 0, "")
		pdf.CellFormat(pdfContentWidth/2, 6, fmt.Sprintf("Page %d", pdf.PageNo()), "", 0, "R", false, 0, "")
	})

	pdf.AddPage()
	drawWatermark(pdf, cfg.WatermarkPath, w)

	// Title page.
	pdf.SetFont("Helvetica", "B", 22)
	pdf.SetTextColor(0, 0, 128)
	pdf.MultiCell(pdfContentWidth, 10, tr("Research Report: "+subject), "", "L", false)
	pdf.SetFont("Helvetica", "", 9)
	pdf.SetTextColor(47, 79, 79)
	pdf.CellFormat(pdfContentWidth, 6, "Date: "+time.Now().Format("January 2, 2006"), "", 1, "L", false, 0, "")
	pdf.Ln(8)

	pdfHeading(pdf, "Executive Summary")
	pdf.SetFont("Helvetica", "", 11)
	pdf.SetTextColor(0, 0, 0)
	pdf.MultiCell(pdfContentWidth, 6, tr(summary), "", "J", false)

	if len(excluded) > 0 {
		pdf.Ln(5)
		pdf.SetFont("Helvetica", "B", 9)
		pdf.SetTextColor(47, 79, 79)
		pdf.MultiCell(pdfContentWidth, 5,
			fmt.Sprintf("Quality Control: %d papers included, %d excluded after critic evaluation.",
				len(included), len(excluded)), "", "L", false)
	}

	// Table of contents.
	pdf.AddPage()
	pdfHeading(pdf, "Table of Contents")
	pdf.SetFont("Helvetica", "", 10)
	for i, p := range included {
		marker := ""
		if p.Eval != nil {
			switch {
			case p.Rank >= exceptionalThreshold:
				marker = "** "
			case p.Rank >= excellentThreshold:
				marker = "* "
			}
		}
		entry := fmt.Sprintf("%d. %s%s...", i+1, marker, truncateRunes(textnorm.Unescape(p.Title), 80))
		if p.Eval != nil {
			entry += fmt.Sprintf(" [%.1f]", p.Rank)
		}
		pdf.SetX(pdfMargin + 5)
		pdf.MultiCell(pdfContentWidth-5, 5.5, tr(entry), "", "L", false)
	}

	// Bibliography.
	pdf.AddPage()
	pdfHeading(pdf, fmt.Sprintf("Detailed Bibliography (%d Sources)", len(included)))
	for i, p := range included {
		writePDFEntry(pdf, tr, p, i+1)
	}

	outPath := filepath.Join(outputDir(cfg), PDFFilename)
	if err := pdf.OutputFileAndClose(outPath); err != nil {
		return "", fmt.Errorf("writing PDF report: %w", err)
	}
	return statusLine("PDF", PDFFilename, len(included), len(excluded)), nil
}

func writePDFEntry(pdf *gofpdf.Fpdf, tr func(string) string, p RankedPaper, ordinal int) {
	title := textnorm.Unescape(p.Title)

	pdf.SetFont("Helvetica", "B", 10)
	pdf.SetTextColor(0, 0, 0)
	switch {
	case p.Eval != nil && p.Rank >= exceptionalThreshold:
		pdf.MultiCell(pdfContentWidth, 5.5, tr("** EXCEPTIONAL: "+title), "", "L", false)
	case p.Eval != nil && p.Rank >= excellentThreshold:
		pdf.MultiCell(pdfContentWidth, 5.5, tr("* HIGHLY RATED: "+title), "", "L", false)
	default:
		pdf.MultiCell(pdfContentWidth, 5.5, tr(fmt.Sprintf("%d. %s", ordinal, title)), "", "L", false)
	}

	meta := fmt.Sprintf("%s | %s | %s", p.Source.DisplayName(), yearLabel(p.PubYear), p.Venue)
	if p.CitationCount > 0 {
		meta += fmt.Sprintf(" | Citations: %d", p.CitationCount)
	}
	pdf.SetFont("Helvetica", "I", 9)
	pdf.SetTextColor(47, 79, 79)
	pdf.MultiCell(pdfContentWidth, 5, tr(meta), "", "L", false)

	abstract := textnorm.Unescape(textnorm.Truncate(p.Abstract, abstractWordLimit))
	pdf.SetFont("Helvetica", "", 9)
	pdf.MultiCell(pdfContentWidth, 5, tr(abstract), "", "J", false)

	if p.Eval != nil {
		ev := p.Eval
		pdf.Ln(1.5)
		pdf.SetX(pdfMargin + 4)
		pdf.SetFont("Helvetica", "B", 9)
		pdf.SetTextColor(0, 100, 0)
		pdf.MultiCell(pdfContentWidth-4, 5,
			tr(fmt.Sprintf("Critic Assessment [%s: %.2f/5.0]", qualityLabel(ev.Overall), ev.Overall)), "", "L", false)

		pdf.SetX(pdfMargin + 4)
		pdf.SetFont("Helvetica", "", 9)
		pdf.MultiCell(pdfContentWidth-4, 5,
			fmt.Sprintf("Relevance: %.1f | Methodology: %.1f | Impact: %.1f",
				ev.Relevance, ev.Methodology, ev.Impact), "", "L", false)

		if ev.Rationale != "" {
			pdf.SetX(pdfMargin + 4)
			pdf.SetFont("Helvetica", "I", 9)
			pdf.MultiCell(pdfContentWidth-4, 5, tr(textnorm.Unescape(ev.Rationale)), "", "L", false)
		}
		if len(ev.Tags) > 0 {
			pdf.SetX(pdfMargin + 4)
			pdf.SetFont("Helvetica", "B", 9)
			pdf.MultiCell(pdfContentWidth-4, 5, tr("Tags: "+strings.Join(ev.Tags, ", ")), "", "L", false)
		}
	}

	pdf.SetFont("Helvetica", "", 8)
	pdf.SetTextColor(0, 0, 255)
	pdf.MultiCell(pdfContentWidth, 4.5, tr("URL: "+p.URL), "", "L", false)
	pdf.SetTextColor(0, 0, 0)
	pdf.Ln(6)
}

func pdfHeading(pdf *gofpdf.Fpdf, text string) {
	pdf.SetFont("Helvetica", "B", 14)
	pdf.SetTextColor(0, 0, 139)
	pdf.CellFormat(pdfContentWidth, 9, text, "", 1, "L", false, 0, "")
	pdf.Ln(2)
	pdf.SetTextColor(0, 0, 0)
}

// drawWatermark paints the watermark image centered on the current page at
// reduced opacity. A missing image is skipped with a warning; drawing a
// bad image through gofpdf would poison the whole document.
func drawWatermark(pdf *gofpdf.Fpdf, path string, w io.Writer) {
	if !imageUsable(path, "watermark", w) {
		return
	}

	info := pdf.RegisterImageOptions(path, gofpdf.ImageOptions{ReadDpi: true})
	if info == nil || info.Width() <= 0 {
		fmt.Fprintf(w, "warning: could not load watermark: unreadable image %s\n", path)
		return
	}

	wmWidth := pdfPageWidth * watermarkScale
	wmHeight := info.Height() / info.Width() * wmWidth
	x := (pdfPageWidth - wmWidth) / 2
	y := (297.0 - wmHeight) / 2

	pdf.SetAlpha(watermarkAlpha, "Normal")
	pdf.ImageOptions(path, x, y, wmWidth, wmHeight, false, gofpdf.ImageOptions{ReadDpi: true}, 0, "")
	pdf.SetAlpha(1.0, "Normal")
}

// imageUsable reports whether path names a readable image file, warning on
// w when it does not. An unset path is silently unusable.
func imageUsable(path, kind string, w io.Writer) bool {
	if path == "" {
		return false
	}
	if _, err := os.Stat(path); err != nil {
		fmt.Fprintf(w, "warning: could not load %s: %v\n", kind, err)
		return false
	}
	return true
}

func outputDir(cfg types.ReportConfig) string {
	if cfg.OutputDir == "" {
		return "."
	}
	return cfg.OutputDir
}
