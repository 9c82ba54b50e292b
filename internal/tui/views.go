package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/lighthouse-hq/lighthouse/internal/api"
	"github.com/lighthouse-hq/lighthouse/internal/report"
)

var (
	titleStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("39"))
	dimStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	passStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	warnStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
	failStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	naStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	activeStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("15")).Background(lipgloss.Color("24"))
	boxStyle    = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
)

func (m Model) renderInput() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("Lighthouse AI Readiness") + "\n\n")
	b.WriteString("Enter a website URL to scan:\n\n")
	b.WriteString(m.input.View() + "\n\n")
	b.WriteString(dimStyle.Render("enter: scan  •  esc: quit") + "\n")
	return b.String()
}

func (m Model) renderScanning() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("Scanning "+m.submittedURL) + "\n\n")

	for i, label := range progressStepLabels {
		switch m.progress.stepStateAt(i) {
		case stepCompleted:
			b.WriteString(passStyle.Render("✓ ") + label + "\n")
		case stepInProgress:
			b.WriteString(warnStyle.Render("… ") + label + "\n")
		default:
			b.WriteString(dimStyle.Render("· " + label + "\n"))
		}
	}

	b.WriteString("\n" + renderBar(m.progress.percent, 40))
	b.WriteString(fmt.Sprintf(" %3.0f%%\n\n", m.progress.percent))
	b.WriteString(dimStyle.Render("This usually takes 10-60 seconds.") + "\n")
	return b.String()
}

func renderBar(percent float64, width int) string {
	filled := int(percent / 100 * float64(width))
	if filled > width {
		filled = width
	}
	return passStyle.Render(strings.Repeat("█", filled)) +
		dimStyle.Render(strings.Repeat("░", width-filled))
}

// errorCopy maps backend error codes onto user-facing framing. Rate-limit
// errors trade the retry action for an upgrade call-to-action.
func errorCopy(code string) (title, detail string, upgrade bool) {
	switch code {
	case api.CodeRateLimitExceeded:
		return "Daily scan limit reached",
			"You've used all of today's free scans. Upgrade your plan for unlimited scanning.",
			true
	case api.CodeSiteNotAccessible:
		return "We couldn't reach that site",
			"The site didn't respond to our scanner. Check the URL and that the site is online.",
			false
	case api.CodeScanTimeout:
		return "The scan ran out of time",
			"The site took too long to analyze. Smaller sites usually finish faster.",
			false
	case api.CodeInvalidResponse:
		return "Unexpected response",
			"The scan service returned something we couldn't read.",
			false
	default:
		return "Something went wrong",
			"The scan failed unexpectedly.",
			false
	}
}

func (m Model) renderError() string {
	title, detail, upgrade := errorCopy(m.errCode)

	var b strings.Builder
	b.WriteString(failStyle.Render("✗ "+title) + "\n\n")
	b.WriteString(detail + "\n")
	if m.errMsg != "" {
		b.WriteString(dimStyle.Render(m.errMsg) + "\n")
	}
	b.WriteString("\n")
	if upgrade {
		b.WriteString(titleStyle.Render("Upgrade your plan") + dimStyle.Render("  lighthouse.app/pricing") + "\n\n")
		b.WriteString(dimStyle.Render("n: analyze another website  •  q: quit") + "\n")
	} else {
		b.WriteString(dimStyle.Render("t: try again  •  n: analyze another website  •  q: quit") + "\n")
	}
	return b.String()
}

func (m Model) renderResults() string {
	if m.report == nil {
		return ""
	}
	var b strings.Builder

	overall := report.Score100(m.report.Overall01())
	b.WriteString(titleStyle.Render(fmt.Sprintf("AI Readiness: %d/100", overall)))
	b.WriteString(dimStyle.Render("  " + m.report.Site.URL))
	b.WriteString("\n")
	b.WriteString(dimStyle.Render("Agent access: "+string(m.report.AccessIntentFor())) + "\n\n")

	b.WriteString(m.renderCategorySummary())
	b.WriteString("\n")
	b.WriteString(m.renderFilterRow())
	b.WriteString("\n")
	b.WriteString(m.renderIndicatorList())
	b.WriteString("\n" + dimStyle.Render("←/→: filter  •  ↑/↓: select  •  enter: recommendation  •  r: re-scan  •  q: quit") + "\n")
	return b.String()
}

// renderCategorySummary shows the four weighted categories on a 0-10 scale
// plus their pass counts over indicators included in category math.
func (m Model) renderCategorySummary() string {
	weights := m.report.EffectiveWeights()
	var b strings.Builder
	for _, c := range report.CategoryOrder {
		score := m.report.Categories[c].Score * 10
		b.WriteString(fmt.Sprintf("%-14s %s %4.1f/10  %s\n",
			string(c),
			renderBar(score*10, 20),
			score,
			dimStyle.Render(fmt.Sprintf("%d passing · weight %.0f%%", m.report.PassCount(c), weights[c]*100)),
		))
	}
	return b.String()
}

func (m Model) renderFilterRow() string {
	entries := make([]string, 0, len(report.ViewCategoryOrder)+1)

	label := fmt.Sprintf("All (%d)", len(m.views.All))
	if m.filterIndex == allCategoriesFilter {
		entries = append(entries, activeStyle.Render(" "+label+" "))
	} else {
		entries = append(entries, dimStyle.Render(label))
	}

	for i, cat := range report.ViewCategoryOrder {
		views := m.views.ByCategory[cat]
		if len(views) == 0 {
			continue
		}
		stats := m.stats[cat]
		label := fmt.Sprintf("%s (%d) %s", cat, stats.Total, badgeCluster(stats))
		if m.filterIndex == i+1 {
			entries = append(entries, activeStyle.Render(" "+label+" "))
		} else {
			entries = append(entries, dimStyle.Render(label))
		}
	}
	row := strings.Join(entries, "  ")

	if m.filterIndex != allCategoriesFilter {
		cat := report.ViewCategoryOrder[m.filterIndex-1]
		row += "\n" + categorySummaryLine(cat, m.stats[cat])
	}
	return row + "\n"
}

func badgeCluster(s report.CategoryStats) string {
	return passStyle.Render(fmt.Sprintf("%d✓", s.Passed)) +
		warnStyle.Render(fmt.Sprintf(" %d!", s.Warned)) +
		failStyle.Render(fmt.Sprintf(" %d✗", s.Failed)) +
		naStyle.Render(fmt.Sprintf(" %d–", s.NotApplicable))
}

// categorySummaryLine colors the pass percentage by threshold: 80%+ green,
// 60%+ yellow, below red.
func categorySummaryLine(cat report.ViewCategory, s report.CategoryStats) string {
	if s.Total == 0 {
		return ""
	}
	pct := s.Passed * 100 / s.Total
	style := failStyle
	switch {
	case pct >= 80:
		style = passStyle
	case pct >= 60:
		style = warnStyle
	}
	return fmt.Sprintf("%s: %s passing", cat, style.Render(fmt.Sprintf("%d%%", pct)))
}

func (m Model) renderIndicatorList() string {
	visible := m.visibleIndicators()
	if len(visible) == 0 {
		return dimStyle.Render("No indicators in this category.") + "\n"
	}

	var b strings.Builder
	for i, v := range visible {
		line := m.renderIndicatorCard(v, i == m.indicatorIdx)
		b.WriteString(line + "\n")
	}
	return b.String()
}

func (m Model) renderIndicatorCard(v report.IndicatorView, selected bool) string {
	chip := statusChip(v.Status)
	name := v.DisplayName
	if selected {
		name = activeStyle.Render(" " + name + " ")
	}

	line := fmt.Sprintf("%s %s  %s", chip, name,
		dimStyle.Render(report.FormatScore(v.Score, v.MaxScore)))
	if v.CheckedURL != "" {
		line += dimStyle.Render("  " + truncate(v.CheckedURL, 30))
	}

	if m.expanded[v.Name] && v.Recommendation != "" {
		body := "Recommendation\n" + report.TruncateWhyItMatters(v.Recommendation)
		if v.Message != "" {
			body += "\n" + dimStyle.Render(v.Message)
		}
		line += "\n" + boxStyle.Render(body)
	}
	return line
}

func statusChip(s report.Status) string {
	switch s {
	case report.StatusPass:
		return passStyle.Render("✓ PASS")
	case report.StatusWarn:
		return warnStyle.Render("! WARN")
	case report.StatusFail:
		return failStyle.Render("✗ FAIL")
	default:
		return naStyle.Render("– N/A ")
	}
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	if max <= 1 {
		return s[:max]
	}
	return s[:max-1] + "…"
}
