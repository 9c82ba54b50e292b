// Package format renders reports for plain (non-TUI) terminal output and
// for scripting.
package format

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"

	"github.com/lighthouse-hq/lighthouse/internal/report"
)

var (
	headerColor = color.New(color.FgCyan, color.Bold)
	passColor   = color.New(color.FgGreen)
	warnColor   = color.New(color.FgYellow)
	failColor   = color.New(color.FgRed)
	dimColor    = color.New(color.Faint)
)

// JSON writes the raw report for machine consumption.
func JSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// Report writes a human-readable rendering of a scan report.
func Report(w io.Writer, r *report.Report) {
	overall := report.Score100(r.Overall01())
	headerColor.Fprintf(w, "AI Readiness: %d/100", overall)
	if r.Site != nil {
		dimColor.Fprintf(w, "  %s", r.Site.URL)
	}
	fmt.Fprintln(w)
	dimColor.Fprintf(w, "Agent access: %s\n\n", r.AccessIntentFor())

	weights := r.EffectiveWeights()
	for _, c := range report.CategoryOrder {
		score := r.Categories[c].Score * 10
		fmt.Fprintf(w, "  %-14s %4.1f/10  ", string(c), score)
		dimColor.Fprintf(w, "%d passing · weight %.0f%%\n", r.PassCount(c), weights[c]*100)
	}
	fmt.Fprintln(w)

	views := report.DeriveViews(r)
	for _, cat := range report.ViewCategoryOrder {
		group := views.ByCategory[cat]
		if len(group) == 0 {
			continue
		}
		headerColor.Fprintf(w, "%s\n", strings.ReplaceAll(string(cat), "_", " "))
		for _, v := range group {
			fmt.Fprintf(w, "  %s %s  %s\n",
				statusTag(v.Status),
				v.DisplayName,
				dimColor.Sprint(report.FormatScore(v.Score, v.MaxScore)),
			)
			if v.Recommendation != "" {
				dimColor.Fprintf(w, "      %s\n", report.TruncateWhyItMatters(v.Recommendation))
			}
		}
	}
}

// PageScores writes stored per-page summaries as an aligned table.
func PageScores(w io.Writer, pages []report.PageScore) {
	if len(pages) == 0 {
		fmt.Fprintln(w, "No page scores recorded yet.")
		return
	}
	for _, p := range pages {
		fmt.Fprintf(w, "  %3d/100  %s", p.Score100, p.URL)
		if p.ScanDate != "" {
			dimColor.Fprintf(w, "  %s", p.ScanDate)
		}
		fmt.Fprintln(w)
	}
}

func statusTag(s report.Status) string {
	switch s {
	case report.StatusPass:
		return passColor.Sprint("PASS")
	case report.StatusWarn:
		return warnColor.Sprint("WARN")
	case report.StatusFail:
		return failColor.Sprint("FAIL")
	default:
		return dimColor.Sprint("N/A ")
	}
}
