package report

import (
	"math"
	"testing"
)

func sampleReport() *Report {
	return &Report{
		Site: &Site{
			URL:      "https://example.com",
			ScanDate: "2026-08-12T09:30:00Z",
			Category: "ecommerce",
		},
		Categories: map[Category]CategoryScore{
			CategoryDiscovery: {
				Score: 0.9,
				IndicatorScores: map[string]float64{
					"robots_txt": 1.0,
					"llms_txt":   0.8,
				},
			},
			CategoryUnderstanding: {
				Score: 0.6,
				IndicatorScores: map[string]float64{
					"schema_markup": 0.6,
				},
			},
			CategoryActions: {
				Score: 0.5,
				IndicatorScores: map[string]float64{
					"meta_description": 0.5,
				},
			},
			CategoryTrust: {
				Score: 1.0,
				IndicatorScores: map[string]float64{
					"https_enforced": 1.0,
				},
			},
		},
		Indicators: map[string]Indicator{
			"robots_txt": {
				Name:          "robots_txt",
				Score:         1.0,
				Applicability: Applicability{Status: ApplicabilityRequired, IncludedInCategoryMath: true},
			},
			"llms_txt": {
				Name:          "llms_txt",
				Score:         0.8,
				Applicability: Applicability{Status: ApplicabilityOptional, IncludedInCategoryMath: true},
			},
			"schema_markup": {
				Name:          "schema_markup",
				Score:         0.6,
				Applicability: Applicability{Status: ApplicabilityRequired, IncludedInCategoryMath: true},
			},
			"meta_description": {
				Name:          "meta_description",
				Score:         0.5,
				Applicability: Applicability{Status: ApplicabilityRequired, IncludedInCategoryMath: true},
			},
			"https_enforced": {
				Name:          "https_enforced",
				Score:         1.0,
				Applicability: Applicability{Status: ApplicabilityRequired, IncludedInCategoryMath: true},
			},
			"app_banner": {
				Name:  "app_banner",
				Score: 0,
				Applicability: Applicability{
					Status: ApplicabilityNotApplicable,
					Reason: "Site has no mobile app.",
				},
			},
		},
		Weights: map[Category]float64{
			CategoryDiscovery:     0.30,
			CategoryUnderstanding: 0.30,
			CategoryActions:       0.25,
			CategoryTrust:         0.15,
		},
		Overall: &Overall{Raw: 0.725, Score100: 73},
	}
}

func TestOverallMatchesWeightedCategorySum(t *testing.T) {
	r := sampleReport()
	raw := r.Overall01()
	want := 0.9*0.30 + 0.6*0.30 + 0.5*0.25 + 1.0*0.15
	if math.Abs(raw-want) > 1e-9 {
		t.Fatalf("Overall01 = %v, want %v", raw, want)
	}
	if got := Score100(raw); got != r.Overall.Score100 {
		t.Fatalf("Score100(%v) = %d, want %d", raw, got, r.Overall.Score100)
	}
}

func TestReportWeightsAreAuthoritative(t *testing.T) {
	r := sampleReport()
	r.Weights = map[Category]float64{
		CategoryDiscovery:     0.40,
		CategoryUnderstanding: 0.40,
		CategoryActions:       0.10,
		CategoryTrust:         0.10,
	}
	w := r.EffectiveWeights()
	if w[CategoryDiscovery] != 0.40 {
		t.Fatalf("expected the report's own weights, got %v", w)
	}
	want := 0.9*0.40 + 0.6*0.40 + 0.5*0.10 + 1.0*0.10
	if math.Abs(r.Overall01()-want) > 1e-9 {
		t.Fatalf("Overall01 = %v, want %v", r.Overall01(), want)
	}
}

func TestLegacyWeightsOnlyWhenReportHasNone(t *testing.T) {
	r := sampleReport()
	r.Weights = nil
	w := r.EffectiveWeights()
	if w[CategoryDiscovery] != 0.30 || w[CategoryTrust] != 0.15 {
		t.Fatalf("expected legacy fallback weights, got %v", w)
	}

	// A partial weights map is treated as absent.
	r.Weights = map[Category]float64{CategoryDiscovery: 1.0}
	if got := r.EffectiveWeights()[CategoryActions]; got != 0.25 {
		t.Fatalf("partial weights must fall back, got actions=%v", got)
	}
}

func TestValidateReportsMissingSections(t *testing.T) {
	r := sampleReport()
	if missing := r.Validate(); len(missing) != 0 {
		t.Fatalf("complete report flagged missing: %v", missing)
	}

	r.Categories = nil
	r.Overall = nil
	missing := r.Validate()
	if len(missing) != 2 {
		t.Fatalf("expected 2 missing sections, got %v", missing)
	}
	if missing[0] != "categories" || missing[1] != "overall" {
		t.Fatalf("unexpected missing sections: %v", missing)
	}
}

func TestPassCountOnlyCountsIncludedIndicators(t *testing.T) {
	r := sampleReport()
	ind := r.Indicators["llms_txt"]
	ind.Applicability.IncludedInCategoryMath = false
	r.Indicators["llms_txt"] = ind

	if got := r.PassCount(CategoryDiscovery); got != 1 {
		t.Fatalf("PassCount(discovery) = %d, want 1 (excluded indicator counted)", got)
	}
}

func TestStatusForIndicatorThresholds(t *testing.T) {
	cases := []struct {
		score float64
		appl  ApplicabilityStatus
		want  Status
	}{
		{1.0, ApplicabilityRequired, StatusPass},
		{0.8, ApplicabilityRequired, StatusPass},
		{0.79, ApplicabilityRequired, StatusWarn},
		{0.5, ApplicabilityOptional, StatusWarn},
		{0.49, ApplicabilityRequired, StatusFail},
		{0, ApplicabilityRequired, StatusFail},
		{1.0, ApplicabilityNotApplicable, StatusNotApplicable},
	}
	for _, tc := range cases {
		ind := Indicator{Score: tc.score, Applicability: Applicability{Status: tc.appl}}
		if got := StatusForIndicator(ind); got != tc.want {
			t.Fatalf("score=%v appl=%s: got %s, want %s", tc.score, tc.appl, got, tc.want)
		}
	}
}

func TestAccessIntentClassification(t *testing.T) {
	r := sampleReport()
	if got := r.AccessIntentFor(); got != AccessAllow {
		t.Fatalf("expected allow, got %s", got)
	}

	for _, name := range []string{"robots_txt", "llms_txt"} {
		ind := r.Indicators[name]
		ind.Score = 0.1
		r.Indicators[name] = ind
	}
	if got := r.AccessIntentFor(); got != AccessBlock {
		t.Fatalf("expected block, got %s", got)
	}

	delete(r.Indicators, "robots_txt")
	delete(r.Indicators, "llms_txt")
	if got := r.AccessIntentFor(); got != AccessPartial {
		t.Fatalf("expected partial when no directive indicators exist, got %s", got)
	}
}

func TestTruncateWhyItMatters(t *testing.T) {
	short := "Helps AI agents find your content."
	if got := TruncateWhyItMatters(short); got != short {
		t.Fatalf("short copy must pass through unchanged")
	}

	long := ""
	for i := 0; i < 40; i++ {
		long += "abcde"
	}
	got := TruncateWhyItMatters(long)
	if len(got) > 123 { // 119 bytes plus a 3-byte ellipsis minus rounding
		t.Fatalf("truncated copy too long: %d bytes", len(got))
	}
	if got == long {
		t.Fatalf("long copy must be truncated")
	}
}

func TestDisplayName(t *testing.T) {
	cases := map[string]string{
		"robots_txt":    "Robots Txt",
		"llms_txt":      "LLMS Txt",
		"canonical_url": "Canonical URL",
		"schema_markup": "Schema Markup",
	}
	for in, want := range cases {
		if got := DisplayName(in); got != want {
			t.Fatalf("DisplayName(%q) = %q, want %q", in, got, want)
		}
	}
}
