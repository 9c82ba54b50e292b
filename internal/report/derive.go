package report

import (
	"sort"
	"strings"
	"time"
)

// ViewCategory is the presentation grouping used by the indicator list,
// distinct from the four scoring categories.
type ViewCategory string

const (
	ViewStandards      ViewCategory = "standards"
	ViewSEO            ViewCategory = "seo"
	ViewStructuredData ViewCategory = "structured_data"
	ViewAccessibility  ViewCategory = "accessibility"
	ViewPerformance    ViewCategory = "performance"
	ViewSecurity       ViewCategory = "security"
)

// ViewCategoryOrder fixes rendering order for grouped indicator views.
var ViewCategoryOrder = []ViewCategory{
	ViewStandards,
	ViewSEO,
	ViewStructuredData,
	ViewAccessibility,
	ViewPerformance,
	ViewSecurity,
}

// viewCategoryByPrefix routes indicator names to a presentation group.
// Unmatched names land in standards.
var viewCategoryByPrefix = []struct {
	prefix   string
	category ViewCategory
}{
	{"meta_", ViewSEO},
	{"title", ViewSEO},
	{"canonical", ViewSEO},
	{"sitemap", ViewSEO},
	{"schema", ViewStructuredData},
	{"json_ld", ViewStructuredData},
	{"structured_", ViewStructuredData},
	{"open_graph", ViewStructuredData},
	{"alt_", ViewAccessibility},
	{"aria_", ViewAccessibility},
	{"heading", ViewAccessibility},
	{"page_speed", ViewPerformance},
	{"load_", ViewPerformance},
	{"render_", ViewPerformance},
	{"https", ViewSecurity},
	{"security_", ViewSecurity},
	{"tls", ViewSecurity},
}

// IndicatorView is the enriched per-indicator projection used by list and
// card rendering. Views are derived, never persisted, and recomputed
// whenever the report changes.
type IndicatorView struct {
	Name           string
	DisplayName    string
	Category       ViewCategory
	Status         Status
	Weight         float64
	Score          float64
	MaxScore       float64
	Message        string
	Recommendation string
	CheckedURL     string
	Found          bool
	IsValid        bool
	Details        map[string]interface{}
	ScannedAt      time.Time
}

// CategoryStats are on-demand verdict counts over a group's applicable
// indicators.
type CategoryStats struct {
	Total         int
	Passed        int
	Warned        int
	Failed        int
	NotApplicable int
}

// Views bundles every derived indicator projection for one report.
type Views struct {
	All        []IndicatorView
	ByCategory map[ViewCategory][]IndicatorView
}

// Filter narrows derived views. Zero values mean no filtering on that axis.
type Filter struct {
	Category ViewCategory
	Status   Status
}

// DeriveViews is a pure projection of a report's indicators. Calling it
// twice on the same report yields deep-equal results.
func DeriveViews(r *Report) Views {
	views := Views{ByCategory: map[ViewCategory][]IndicatorView{}}
	if r == nil || len(r.Indicators) == 0 {
		return views
	}

	scannedAt := time.Time{}
	checkedURL := ""
	if r.Site != nil {
		checkedURL = r.Site.URL
		if t, err := time.Parse(time.RFC3339, r.Site.ScanDate); err == nil {
			scannedAt = t
		}
	}

	names := make([]string, 0, len(r.Indicators))
	for name := range r.Indicators {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		ind := r.Indicators[name]
		status := StatusForIndicator(ind)
		view := IndicatorView{
			Name:        name,
			DisplayName: DisplayName(name),
			Category:    viewCategoryFor(name),
			Status:      status,
			Weight:      indicatorWeight(r, name),
			Score:       ind.Score * 10,
			MaxScore:    10,
			Message:     ind.Applicability.Reason,
			CheckedURL:  checkedURL,
			Found:       ind.Score > 0,
			IsValid:     status == StatusPass,
			Details:     ind.Evidence,
			ScannedAt:   scannedAt,
		}
		if status == StatusWarn || status == StatusFail {
			view.Recommendation = "Improve " + view.DisplayName + " to raise the " + string(view.Category) + " group."
		}
		views.All = append(views.All, view)
		views.ByCategory[view.Category] = append(views.ByCategory[view.Category], view)
	}
	return views
}

// ApplyFilter returns the subset of views matching the filter, preserving
// order.
func ApplyFilter(all []IndicatorView, f Filter) []IndicatorView {
	out := make([]IndicatorView, 0, len(all))
	for _, v := range all {
		if f.Category != "" && v.Category != f.Category {
			continue
		}
		if f.Status != "" && v.Status != f.Status {
			continue
		}
		out = append(out, v)
	}
	return out
}

// Stats counts verdicts per presentation group.
func Stats(byCategory map[ViewCategory][]IndicatorView) map[ViewCategory]CategoryStats {
	stats := make(map[ViewCategory]CategoryStats, len(byCategory))
	for cat, views := range byCategory {
		s := CategoryStats{}
		for _, v := range views {
			s.Total++
			switch v.Status {
			case StatusPass:
				s.Passed++
			case StatusWarn:
				s.Warned++
			case StatusFail:
				s.Failed++
			case StatusNotApplicable:
				s.NotApplicable++
			}
		}
		stats[cat] = s
	}
	return stats
}

func viewCategoryFor(name string) ViewCategory {
	lower := strings.ToLower(name)
	for _, entry := range viewCategoryByPrefix {
		if strings.HasPrefix(lower, entry.prefix) {
			return entry.category
		}
	}
	return ViewStandards
}

// indicatorWeight looks up the indicator's share inside whichever scoring
// category carries it.
func indicatorWeight(r *Report, name string) float64 {
	weights := r.EffectiveWeights()
	for _, c := range CategoryOrder {
		scores := r.Categories[c].IndicatorScores
		if _, ok := scores[name]; !ok {
			continue
		}
		if len(scores) == 0 {
			return 0
		}
		return weights[c] / float64(len(scores))
	}
	return 0
}
