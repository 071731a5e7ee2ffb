// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package report

import (
	"fmt"
	"html/template"
	"os"
	"path/filepath"
	"strings"
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/abdoljh/questscholar/internal/session"
	"github.com/abdoljh/questscholar/internal/textnorm"
	"github.com/abdoljh/questscholar/pkg/types"
)

// WriteHTML renders the ranked collection into executive_summary.html
// under cfg.OutputDir and returns the status line. The page carries the
// same content as the PDF plus per-paper download buttons and BibTeX
// citations.
func WriteHTML(sess *session.Session, subject, summary string, cfg types.ReportConfig) (string, error) {
	if len(sess.Papers) == 0 {
		return "", fmt.Errorf("collection is empty")
	}

	included, excluded := Rank(sess)

	data := htmlReport{
		Subject:       subject,
		Generated:     time.Now().Format("January 2, 2006 at 3:04 PM"),
		Paragraphs:    strings.Split(summary, "\n\n"),
		ExcludedCount: len(excluded),
	}
	for i, p := range included {
		if p.Rank >= excellentThreshold {
			data.HighRated++
		}
		if p.Rank >= exceptionalThreshold {
			data.Exceptional++
		}
		data.Papers = append(data.Papers, toHTMLPaper(p, i+1))
	}

	outPath := filepath.Join(outputDir(cfg), HTMLFilename)
	f, err := os.Create(outPath)
	if err != nil {
		return "", fmt.Errorf("creating HTML report: %w", err)
	}
	defer f.Close()

	if err := htmlTmpl.Execute(f, data); err != nil {
		return "", fmt.Errorf("rendering HTML report: %w", err)
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("writing HTML report: %w", err)
	}
	return statusLine("HTML", HTMLFilename, len(included), len(excluded)), nil
}

type htmlReport struct {
	Subject       string
	Generated     string
	Paragraphs    []string
	Papers        []htmlPaper
	ExcludedCount int
	Exceptional   int
	HighRated     int
}

type htmlPaper struct {
	Index      int
	Title      string
	TOCTitle   string
	Score      string
	RankClass  string
	RankLabel  string
	BadgeClass string
	BadgeLabel string
	Source     string
	Year       string
	Venue      string
	Authors    string
	Citations  int
	Abstract   string
	HasEval    bool
	Scores     []scoreBar
	Rationale  string
	Tags       []string
	URL        string
	PDFURL     string
	BibTeX     string
}

type scoreBar struct {
	Label string
	Value string
	Pct   int
}

var tagTitler = cases.Title(language.English)

func toHTMLPaper(p RankedPaper, ordinal int) htmlPaper {
	title := textnorm.Unescape(p.Title)

	hp := htmlPaper{
		Index:     ordinal,
		Title:     title,
		TOCTitle:  truncateRunes(title, 80),
		Score:     fmt.Sprintf("%.1f", p.Rank),
		RankClass: "good",
		RankLabel: fmt.Sprintf("%.1f/5.0", p.Rank),
		Source:    p.Source.DisplayName(),
		Year:      yearLabel(p.PubYear),
		Venue:     p.Venue,
		Authors:   authorLine(p.Authors),
		Citations: p.CitationCount,
		Abstract:  textnorm.Unescape(textnorm.Truncate(p.Abstract, abstractWordLimit)),
		URL:       p.URL,
		PDFURL:    derivePDFURL(p.PaperRecord),
		BibTeX:    bibtexEntry(p.PaperRecord, ordinal),
	}

	switch {
	case p.Rank >= exceptionalThreshold:
		hp.RankClass = "exceptional"
		hp.RankLabel = fmt.Sprintf("★★ %.1f/5.0", p.Rank)
		hp.BadgeClass = "quality-exceptional"
		hp.BadgeLabel = "★★ Exceptional"
	case p.Rank >= excellentThreshold:
		hp.RankClass = "excellent"
		hp.RankLabel = fmt.Sprintf("★ %.1f/5.0", p.Rank)
		hp.BadgeClass = "quality-excellent"
		hp.BadgeLabel = "★ Excellent"
	}

	if ev := p.Eval; ev != nil {
		hp.HasEval = true
		hp.Scores = []scoreBar{
			{Label: "Relevance", Value: fmt.Sprintf("%.1f", ev.Relevance), Pct: int(ev.Relevance / 5.0 * 100)},
			{Label: "Methodology", Value: fmt.Sprintf("%.1f", ev.Methodology), Pct: int(ev.Methodology / 5.0 * 100)},
			{Label: "Impact", Value: fmt.Sprintf("%.1f", ev.Impact), Pct: int(ev.Impact / 5.0 * 100)},
		}
		hp.Rationale = textnorm.Unescape(ev.Rationale)
		for _, tag := range ev.Tags {
			hp.Tags = append(hp.Tags, tagTitler.String(strings.ReplaceAll(tag, "_", " ")))
		}
	}
	return hp
}

func authorLine(authors []string) string {
	if len(authors) <= 3 {
		return strings.Join(authors, ", ")
	}
	return strings.Join(authors[:3], ", ") + " et al."
}

// derivePDFURL returns a candidate full-text URL for the download button.
// Only arXiv has a deterministic PDF mirror; PubMed pages sometimes link
// open access copies, so the page URL itself is handed to the downloader.
// Other sources get no button.
func derivePDFURL(p types.PaperRecord) string {
	switch {
	case p.Source == types.SourceArxiv && strings.Contains(p.URL, "arxiv.org/abs/"):
		return strings.Replace(p.URL, "/abs/", "/pdf/", 1) + ".pdf"
	case p.Source == types.SourcePubMed:
		return p.URL
	}
	return ""
}

func bibtexEntry(p types.PaperRecord, ordinal int) string {
	authors := p.Authors
	if len(authors) > 5 {
		authors = authors[:5]
	}
	return fmt.Sprintf(`@article{paper%d,
  author = {%s},
  title = {%s},
  year = {%s},
  journal = {%s},
  source = {%s}
}`, ordinal, strings.Join(authors, " and "), textnorm.Unescape(p.Title), yearLabel(p.PubYear), p.Venue, p.Source.DisplayName())
}

var htmlTmpl = template.Must(template.New("report").Parse(htmlPage))

const htmlPage = `<!DOCTYPE html>
<html lang="en">
<head>
    <meta charset="UTF-8">
    <meta name="viewport" content="width=device-width, initial-scale=1.0">
    <title>Research Report: {{.Subject}}</title>
    <style>
        * { margin: 0; padding: 0; box-sizing: border-box; }
        body {
            font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', Roboto, 'Helvetica Neue', Arial, sans-serif;
            line-height: 1.6; color: #333; background: #f5f5f5; padding: 20px;
        }
        .container {
            max-width: 1200px; margin: 0 auto; background: white;
            box-shadow: 0 2px 8px rgba(0,0,0,0.1); border-radius: 8px; overflow: hidden;
        }
        .header {
            background: linear-gradient(135deg, #667eea 0%, #764ba2 100%);
            color: white; padding: 40px; text-align: center;
        }
        .header h1 { font-size: 2.5em; margin-bottom: 10px; font-weight: 700; }
        .header .subtitle { font-size: 1.1em; opacity: 0.9; }
        .header .date { margin-top: 10px; font-size: 0.9em; opacity: 0.8; }
        .stats-bar {
            display: flex; justify-content: space-around; padding: 20px;
            background: #f8f9fa; border-bottom: 2px solid #e9ecef; flex-wrap: wrap;
        }
        .stat { text-align: center; padding: 10px; }
        .stat-value { font-size: 2em; font-weight: bold; color: #667eea; }
        .stat-label { font-size: 0.9em; color: #666; margin-top: 5px; }
        .content { padding: 40px; }
        .section { margin-bottom: 40px; }
        .section-title {
            font-size: 1.8em; color: #2c3e50; margin-bottom: 20px;
            padding-bottom: 10px; border-bottom: 3px solid #667eea;
        }
        .executive-summary {
            background: #f8f9fa; padding: 25px; border-radius: 8px;
            border-left: 4px solid #667eea; font-size: 1.05em; line-height: 1.8;
        }
        .executive-summary p { margin-bottom: 12px; }
        .paper-card {
            background: white; border: 1px solid #e9ecef; border-radius: 8px;
            padding: 25px; margin-bottom: 25px; transition: all 0.3s ease; position: relative;
        }
        .paper-card:hover { box-shadow: 0 4px 12px rgba(0,0,0,0.1); transform: translateY(-2px); }
        .paper-rank {
            position: absolute; top: 15px; right: 15px; background: #667eea; color: white;
            padding: 8px 15px; border-radius: 20px; font-weight: bold; font-size: 0.9em;
        }
        .paper-rank.exceptional { background: linear-gradient(135deg, #11998e 0%, #38ef7d 100%); }
        .paper-rank.excellent { background: linear-gradient(135deg, #667eea 0%, #764ba2 100%); }
        .paper-rank.good { background: #f39c12; }
        .paper-title {
            font-size: 1.4em; color: #2c3e50; margin-bottom: 12px;
            padding-right: 100px; font-weight: 600; line-height: 1.4;
        }
        .paper-meta {
            display: flex; gap: 20px; flex-wrap: wrap; margin-bottom: 15px;
            font-size: 0.9em; color: #666;
        }
        .meta-item { display: flex; align-items: center; gap: 5px; }
        .paper-abstract { color: #555; line-height: 1.7; margin-bottom: 15px; text-align: justify; }
        .critic-evaluation {
            background: #e8f5e9; border-left: 4px solid #4caf50; padding: 15px;
            margin-top: 15px; border-radius: 4px;
        }
        .critic-scores { display: flex; gap: 15px; margin-bottom: 10px; flex-wrap: wrap; }
        .score-item { display: flex; align-items: center; gap: 5px; }
        .score-bar { width: 60px; height: 8px; background: #ddd; border-radius: 4px; overflow: hidden; }
        .score-fill { height: 100%; background: #4caf50; transition: width 0.3s ease; }
        .critic-rationale { font-style: italic; color: #555; margin-top: 10px; }
        .tags { display: flex; gap: 8px; flex-wrap: wrap; margin-top: 10px; }
        .tag {
            background: #e3f2fd; color: #1976d2; padding: 4px 12px;
            border-radius: 12px; font-size: 0.85em; font-weight: 500;
        }
        .download-section {
            margin-top: 20px; padding-top: 15px; border-top: 1px solid #e9ecef;
            display: flex; gap: 10px; flex-wrap: wrap;
        }
        .btn {
            padding: 10px 20px; border: none; border-radius: 6px; cursor: pointer;
            font-size: 0.95em; font-weight: 600; text-decoration: none;
            display: inline-flex; align-items: center; gap: 8px; transition: all 0.3s ease;
        }
        .btn-primary { background: #667eea; color: white; }
        .btn-primary:hover { background: #5568d3; transform: translateY(-1px); }
        .btn-secondary { background: #f8f9fa; color: #495057; border: 1px solid #dee2e6; }
        .btn-secondary:hover { background: #e9ecef; }
        .download-status {
            display: none; padding: 10px 15px; border-radius: 6px;
            font-size: 0.9em; margin-top: 10px;
        }
        .download-status.success { background: #d4edda; color: #155724; border: 1px solid #c3e6cb; }
        .download-status.error { background: #f8d7da; color: #721c24; border: 1px solid #f5c6cb; }
        .download-status.loading { background: #fff3cd; color: #856404; border: 1px solid #ffeaa7; }
        .toc { background: #f8f9fa; padding: 25px; border-radius: 8px; margin-bottom: 30px; }
        .toc-item { padding: 8px 0; border-bottom: 1px solid #e9ecef; }
        .toc-item:last-child { border-bottom: none; }
        .toc-link {
            color: #667eea; text-decoration: none; display: flex;
            align-items: center; gap: 10px; transition: all 0.2s ease;
        }
        .toc-link:hover { color: #5568d3; padding-left: 10px; }
        .quality-badge { font-size: 0.8em; padding: 2px 8px; border-radius: 10px; font-weight: bold; }
        .quality-exceptional { background: #d4edda; color: #155724; }
        .quality-excellent { background: #d1ecf1; color: #0c5460; }
        @media print {
            body { background: white; padding: 0; }
            .container { box-shadow: none; }
            .download-section { display: none; }
            .paper-card { page-break-inside: avoid; }
        }
        @media (max-width: 768px) {
            .header h1 { font-size: 1.8em; }
            .content { padding: 20px; }
            .stats-bar { flex-direction: column; }
            .paper-rank { position: static; display: inline-block; margin-bottom: 10px; }
            .paper-title { padding-right: 0; }
        }
    </style>
</head>
<body>
    <div class="container">
        <div class="header">
            <h1>Research Report</h1>
            <div class="subtitle">{{.Subject}}</div>
            <div class="date">Generated: {{.Generated}}</div>
        </div>

        <div class="stats-bar">
            <div class="stat">
                <div class="stat-value">{{len .Papers}}</div>
                <div class="stat-label">Papers Included</div>
            </div>
            <div class="stat">
                <div class="stat-value">{{.Exceptional}}</div>
                <div class="stat-label">Exceptional (&ge;4.5)</div>
            </div>
            <div class="stat">
                <div class="stat-value">{{.HighRated}}</div>
                <div class="stat-label">Highly Rated (&ge;4.0)</div>
            </div>
            {{if gt .ExcludedCount 0}}<div class="stat">
                <div class="stat-value">{{.ExcludedCount}}</div>
                <div class="stat-label">Excluded</div>
            </div>{{end}}
        </div>

        <div class="content">
            <div class="section">
                <h2 class="section-title">Executive Summary</h2>
                <div class="executive-summary">
                    {{range .Paragraphs}}<p>{{.}}</p>
                    {{end}}
                </div>
            </div>

            <div class="section">
                <h2 class="section-title">Table of Contents</h2>
                <div class="toc">
                    {{range .Papers}}<div class="toc-item">
                        <a href="#paper{{.Index}}" class="toc-link">
                            <span><strong>{{.Index}}.</strong> {{.TOCTitle}}...</span>
                            {{if .BadgeLabel}}<span class="quality-badge {{.BadgeClass}}">{{.BadgeLabel}}</span>{{end}}
                            <span style="margin-left: auto; color: #999;">[{{.Score}}]</span>
                        </a>
                    </div>
                    {{end}}
                </div>
            </div>

            <div class="section">
                <h2 class="section-title">Detailed Bibliography</h2>
                {{range .Papers}}
                <div class="paper-card" id="paper{{.Index}}">
                    <div class="paper-rank {{.RankClass}}">{{.RankLabel}}</div>
                    <h3 class="paper-title">{{.Index}}. {{.Title}}</h3>
                    <div class="paper-meta">
                        <div class="meta-item"><span>{{.Source}}</span></div>
                        <div class="meta-item"><span>{{.Year}}</span></div>
                        <div class="meta-item"><span>{{.Venue}}</span></div>
                        {{if gt .Citations 0}}<div class="meta-item"><span>{{.Citations}} citations</span></div>{{end}}
                        <div class="meta-item"><span>{{.Authors}}</span></div>
                    </div>
                    <div class="paper-abstract">{{.Abstract}}</div>
                    {{if .HasEval}}
                    <div class="critic-evaluation">
                        <strong style="color: #2e7d32;">Critic Assessment</strong>
                        <div class="critic-scores">
                            {{range .Scores}}<div class="score-item">
                                <span style="min-width: 90px; font-size: 0.85em;">{{.Label}}:</span>
                                <div class="score-bar"><div class="score-fill" style="width: {{.Pct}}%"></div></div>
                                <span style="font-weight: bold; font-size: 0.9em;">{{.Value}}</span>
                            </div>
                            {{end}}
                        </div>
                        <div class="critic-rationale">{{.Rationale}}</div>
                        {{if .Tags}}<div class="tags">{{range .Tags}}<span class="tag">{{.}}</span>{{end}}</div>{{end}}
                    </div>
                    {{end}}
                    <div class="download-section">
                        {{if .PDFURL}}<button class="btn btn-primary" onclick="downloadPDF({{.PDFURL}}, {{.TOCTitle}}, 'status_{{.Index}}', {{.Source}})">Download PDF</button>{{end}}
                        <a href="{{.URL}}" target="_blank" class="btn btn-secondary">View Source</a>
                        <button class="btn btn-secondary" onclick="copyBibTeX('{{.Index}}')">Copy Citation</button>
                    </div>
                    <div id="status_{{.Index}}" class="download-status"></div>
                    <textarea id="bibtex_{{.Index}}" style="display:none;">{{.BibTeX}}</textarea>
                </div>
                {{end}}
            </div>
        </div>
    </div>

    <script>
        async function downloadPDF(url, title, statusId, source) {
            const statusEl = document.getElementById(statusId);
            statusEl.className = 'download-status loading';
            statusEl.style.display = 'block';
            statusEl.textContent = 'Attempting download...';

            try {
                if (source === 'arXiv') {
                    const link = document.createElement('a');
                    link.href = url;
                    link.download = sanitizeFilename(title) + '.pdf';
                    link.target = '_blank';
                    document.body.appendChild(link);
                    link.click();
                    document.body.removeChild(link);

                    statusEl.className = 'download-status success';
                    statusEl.textContent = 'Download initiated. Check your downloads folder.';
                    setTimeout(() => { statusEl.style.display = 'none'; }, 5000);
                    return;
                }

                const response = await fetch(url);
                if (!response.ok) {
                    throw new Error('PDF not available via direct download');
                }

                const blob = await response.blob();
                const blobUrl = window.URL.createObjectURL(blob);

                const link = document.createElement('a');
                link.href = blobUrl;
                link.download = sanitizeFilename(title) + '.pdf';
                document.body.appendChild(link);
                link.click();
                document.body.removeChild(link);

                window.URL.revokeObjectURL(blobUrl);

                statusEl.className = 'download-status success';
                statusEl.textContent = 'Download complete.';
                setTimeout(() => { statusEl.style.display = 'none'; }, 5000);
            } catch (error) {
                statusEl.className = 'download-status error';
                statusEl.innerHTML = 'Direct download failed. <a href="' + url + '" target="_blank" style="color: #721c24; text-decoration: underline;">Open in new tab</a> to download manually.';
                setTimeout(() => { statusEl.style.display = 'none'; }, 10000);
            }
        }

        function sanitizeFilename(name) {
            return name.replace(/[^a-z0-9]/gi, '_').substring(0, 50);
        }

        function copyBibTeX(index) {
            const textarea = document.getElementById('bibtex_' + index);
            const statusEl = document.getElementById('status_' + index);

            textarea.style.display = 'block';
            textarea.select();
            document.execCommand('copy');
            textarea.style.display = 'none';

            statusEl.className = 'download-status success';
            statusEl.style.display = 'block';
            statusEl.textContent = 'Citation copied to clipboard.';
            setTimeout(() => { statusEl.style.display = 'none'; }, 3000);
        }

        document.querySelectorAll('a[href^="#"]').forEach(anchor => {
            anchor.addEventListener('click', function (e) {
                e.preventDefault();
                const target = document.querySelector(this.getAttribute('href'));
                if (target) {
                    target.scrollIntoView({ behavior: 'smooth', block: 'start' });
                }
            });
        });
    </script>
</body>
</html>
`
