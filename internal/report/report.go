// Package report defines the AI-readiness report model returned by the
// diagnostics backend and the pure projections derived from it.
package report

import (
	"fmt"
	"math"
	"strings"
)

// Category is one of the four weighted groupings that combine into the
// overall score.
type Category string

const (
	CategoryDiscovery     Category = "discovery"
	CategoryUnderstanding Category = "understanding"
	CategoryActions       Category = "actions"
	CategoryTrust         Category = "trust"
)

// CategoryOrder is the presentation order used everywhere a report is
// rendered.
var CategoryOrder = []Category{
	CategoryDiscovery,
	CategoryUnderstanding,
	CategoryActions,
	CategoryTrust,
}

// legacyWeights is the historical weight constant. It is a fallback for
// reports that carry no weights of their own; a report's weights field is
// always authoritative when present.
var legacyWeights = map[Category]float64{
	CategoryDiscovery:     0.30,
	CategoryUnderstanding: 0.30,
	CategoryActions:       0.25,
	CategoryTrust:         0.15,
}

// Status is an indicator verdict.
type Status string

const (
	StatusPass          Status = "pass"
	StatusWarn          Status = "warn"
	StatusFail          Status = "fail"
	StatusNotApplicable Status = "not_applicable"
)

// ApplicabilityStatus says whether an indicator counts for the scanned site.
type ApplicabilityStatus string

const (
	ApplicabilityRequired      ApplicabilityStatus = "required"
	ApplicabilityOptional      ApplicabilityStatus = "optional"
	ApplicabilityNotApplicable ApplicabilityStatus = "not_applicable"
)

// Site describes the scanned target.
type Site struct {
	URL      string `json:"url"`
	ScanDate string `json:"scan_date"`
	Category string `json:"category"`
}

// CategoryScore is a category's 0..1 score plus its per-indicator breakdown.
type CategoryScore struct {
	Score           float64            `json:"score"`
	IndicatorScores map[string]float64 `json:"indicator_scores"`
}

// Applicability qualifies an indicator's score for the scanned site.
type Applicability struct {
	Status                 ApplicabilityStatus `json:"status"`
	Reason                 string              `json:"reason"`
	IncludedInCategoryMath bool                `json:"included_in_category_math"`
}

// Indicator is one automated check inside a report.
type Indicator struct {
	Name          string                 `json:"name"`
	Score         float64                `json:"score"`
	Applicability Applicability          `json:"applicability"`
	Evidence      map[string]interface{} `json:"evidence,omitempty"`
}

// Overall is the weighted aggregate of the four category scores.
type Overall struct {
	Raw      float64 `json:"raw_0_1"`
	Score100 int     `json:"score_0_100"`
}

// Report is the result of one AI-readiness scan. Site and Overall are
// pointers so a structurally incomplete payload is detectable after
// unmarshalling.
type Report struct {
	Site       *Site                      `json:"site"`
	Categories map[Category]CategoryScore `json:"categories"`
	Indicators map[string]Indicator       `json:"indicators"`
	Weights    map[Category]float64       `json:"weights,omitempty"`
	Overall    *Overall                   `json:"overall"`
}

// DiagnosticIndicator is the legacy flat indicator shape still served for
// stored per-page scores.
type DiagnosticIndicator struct {
	ID                string  `json:"id"`
	Name              string  `json:"name"`
	Status            Status  `json:"status"`
	Score             float64 `json:"score"`
	MaxScore          float64 `json:"max_score"`
	WhyItMatters      string  `json:"why_it_matters"`
	FixRecommendation string  `json:"fix_recommendation"`
	Details           string  `json:"details,omitempty"`
}

// PageScore is a stored per-page score summary.
type PageScore struct {
	PageID   string  `json:"page_id"`
	URL      string  `json:"url"`
	Score100 int     `json:"score_0_100"`
	Raw      float64 `json:"raw_0_1"`
	ScanDate string  `json:"scan_date"`
}

// Validate reports the top-level sections missing from a supposedly
// successful payload. An empty slice means the report is structurally
// complete.
func (r *Report) Validate() []string {
	var missing []string
	if r.Site == nil {
		missing = append(missing, "site")
	}
	if len(r.Categories) == 0 {
		missing = append(missing, "categories")
	}
	if r.Overall == nil {
		missing = append(missing, "overall")
	}
	return missing
}

// EffectiveWeights returns the report's own weights when it supplies all
// four, falling back to the legacy constant otherwise.
func (r *Report) EffectiveWeights() map[Category]float64 {
	if len(r.Weights) == 0 {
		return legacyWeights
	}
	for _, c := range CategoryOrder {
		if _, ok := r.Weights[c]; !ok {
			return legacyWeights
		}
	}
	return r.Weights
}

// Overall01 recomputes the weighted 0..1 aggregate from category scores.
func (r *Report) Overall01() float64 {
	weights := r.EffectiveWeights()
	var sum float64
	for _, c := range CategoryOrder {
		sum += r.Categories[c].Score * weights[c]
	}
	return sum
}

// Score100 converts a 0..1 aggregate to the 0..100 display scale.
func Score100(raw float64) int {
	return int(math.Round(raw * 100))
}

// PassCount counts passing indicators in a category, considering only
// indicators included in category math.
func (r *Report) PassCount(c Category) int {
	count := 0
	for name := range r.Categories[c].IndicatorScores {
		ind, ok := r.Indicators[name]
		if !ok || !ind.Applicability.IncludedInCategoryMath {
			continue
		}
		if StatusForIndicator(ind) == StatusPass {
			count++
		}
	}
	return count
}

// StatusForIndicator maps an indicator's 0..1 score and applicability onto a
// verdict.
func StatusForIndicator(ind Indicator) Status {
	if ind.Applicability.Status == ApplicabilityNotApplicable {
		return StatusNotApplicable
	}
	switch {
	case ind.Score >= 0.8:
		return StatusPass
	case ind.Score >= 0.5:
		return StatusWarn
	default:
		return StatusFail
	}
}

// AccessIntent classifies how permissive the scanned site's robots/meta
// directives are toward AI agents. It is descriptive only.
type AccessIntent string

const (
	AccessAllow   AccessIntent = "allow"
	AccessPartial AccessIntent = "partial"
	AccessBlock   AccessIntent = "block"
)

// accessIndicators are the directive checks that inform access intent.
var accessIndicators = []string{"robots_txt", "meta_robots", "agent_access", "llms_txt"}

// AccessIntentFor derives the access-intent classification from a report's
// directive indicators. Sites with no applicable directive indicators are
// classified partial.
func (r *Report) AccessIntentFor() AccessIntent {
	var sum float64
	n := 0
	for _, name := range accessIndicators {
		ind, ok := r.Indicators[name]
		if !ok || ind.Applicability.Status == ApplicabilityNotApplicable {
			continue
		}
		sum += ind.Score
		n++
	}
	if n == 0 {
		return AccessPartial
	}
	avg := sum / float64(n)
	switch {
	case avg >= 0.8:
		return AccessAllow
	case avg > 0.2:
		return AccessPartial
	default:
		return AccessBlock
	}
}

// DisplayName renders a snake_case indicator name for humans.
func DisplayName(name string) string {
	parts := strings.Split(name, "_")
	for i, p := range parts {
		if p == "" {
			continue
		}
		switch strings.ToLower(p) {
		case "url", "seo", "ai", "html", "api", "llms":
			parts[i] = strings.ToUpper(p)
		default:
			parts[i] = strings.ToUpper(p[:1]) + p[1:]
		}
	}
	return strings.Join(parts, " ")
}

// TruncateWhyItMatters enforces the 120-character contract on
// why-it-matters copy; longer backend values are cut defensively.
func TruncateWhyItMatters(s string) string {
	const maxLen = 120
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen-1] + "…"
}

// FormatScore renders "score/max" with a trimmed fraction.
func FormatScore(score, max float64) string {
	return fmt.Sprintf("%s/%s", trimFloat(score), trimFloat(max))
}

func trimFloat(f float64) string {
	s := fmt.Sprintf("%.1f", f)
	return strings.TrimSuffix(s, ".0")
}
