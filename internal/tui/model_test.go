package tui

import (
	"context"
	"strings"
	"sync"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/lighthouse-hq/lighthouse/internal/api"
	"github.com/lighthouse-hq/lighthouse/internal/report"
	"github.com/lighthouse-hq/lighthouse/internal/result"
)

type fakeScanner struct {
	mu      sync.Mutex
	calls   []string
	results map[string]result.Result[*report.Report, *api.APIError]
}

func (f *fakeScanner) ScanForAIReadiness(ctx context.Context, req api.ScanRequest) result.Result[*report.Report, *api.APIError] {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, req.URL)
	if res, ok := f.results[req.URL]; ok {
		return res
	}
	return result.Err[*report.Report](&api.APIError{Code: api.CodeNetworkError, Message: "no stub"})
}

func (f *fakeScanner) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

func validReport(url string, score int) *report.Report {
	return &report.Report{
		Site: &report.Site{URL: url, ScanDate: "2026-08-12T09:30:00Z"},
		Categories: map[report.Category]report.CategoryScore{
			report.CategoryDiscovery:     {Score: float64(score) / 100, IndicatorScores: map[string]float64{"robots_txt": 1}},
			report.CategoryUnderstanding: {Score: float64(score) / 100},
			report.CategoryActions:       {Score: float64(score) / 100},
			report.CategoryTrust:         {Score: float64(score) / 100},
		},
		Indicators: map[string]report.Indicator{
			"robots_txt": {
				Name:          "robots_txt",
				Score:         1,
				Applicability: report.Applicability{Status: report.ApplicabilityRequired, IncludedInCategoryMath: true},
			},
		},
		Overall: &report.Overall{Raw: float64(score) / 100, Score100: score},
	}
}

func update(t *testing.T, m Model, msg tea.Msg) (Model, tea.Cmd) {
	t.Helper()
	next, cmd := m.Update(msg)
	model, ok := next.(Model)
	if !ok {
		t.Fatalf("Update returned %T, want Model", next)
	}
	return model, cmd
}

func TestSubmitTransitionsToScanning(t *testing.T) {
	m := NewModel(&fakeScanner{}, "", "")

	m, cmd := update(t, m, autoScanMsg{url: "https://example.com"})
	if m.mode != viewScanning {
		t.Fatalf("mode %v after submit", m.mode)
	}
	if m.submittedURL != "https://example.com" {
		t.Fatalf("submittedURL %q", m.submittedURL)
	}
	if cmd == nil {
		t.Fatalf("submit must schedule the scan")
	}
}

func TestDuplicateSubmissionIsIgnoredWhileInFlight(t *testing.T) {
	scanner := &fakeScanner{}
	m := NewModel(scanner, "", "")

	m, first := update(t, m, autoScanMsg{url: "https://example.com"})
	if first == nil {
		t.Fatalf("first submission must produce a command")
	}

	m, second := update(t, m, autoScanMsg{url: "https://example.com"})
	if second != nil {
		t.Fatalf("duplicate submission must not produce a command")
	}
	if m.mode != viewScanning {
		t.Fatalf("mode changed on duplicate submission")
	}
}

func TestScanCmdCallsClientOnce(t *testing.T) {
	scanner := &fakeScanner{
		results: map[string]result.Result[*report.Report, *api.APIError]{
			"https://example.com": result.Ok[*report.Report, *api.APIError](validReport("https://example.com", 72)),
		},
	}

	msg := scanCmd(scanner, "https://example.com", "ecommerce")()
	finished, ok := msg.(scanFinishedMsg)
	if !ok {
		t.Fatalf("expected scanFinishedMsg, got %T", msg)
	}
	if finished.url != "https://example.com" || finished.err != nil {
		t.Fatalf("unexpected msg %+v", finished)
	}
	if scanner.callCount() != 1 {
		t.Fatalf("client called %d times, want 1", scanner.callCount())
	}
}

func TestSuccessfulScanRevealsResults(t *testing.T) {
	m := NewModel(&fakeScanner{}, "", "")
	m, _ = update(t, m, autoScanMsg{url: "https://example.com"})

	m, cmd := update(t, m, scanFinishedMsg{
		url:    "https://example.com",
		report: validReport("https://example.com", 72),
	})
	if m.mode != viewScanning {
		t.Fatalf("results must wait for the reveal delay")
	}
	if m.progress.phase != phaseCompleting {
		t.Fatalf("completion burst not started")
	}
	if cmd == nil {
		t.Fatalf("expected completion and reveal commands")
	}

	m, _ = update(t, m, revealResultsMsg{url: "https://example.com"})
	if m.mode != viewResults {
		t.Fatalf("mode %v after reveal", m.mode)
	}

	out := m.View()
	if !strings.Contains(out, "72") {
		t.Fatalf("rendered results missing the overall score:\n%s", out)
	}
	if strings.Contains(out, "went wrong") {
		t.Fatalf("results view shows an error banner")
	}
}

func TestStaleResultIsDiscarded(t *testing.T) {
	m := NewModel(&fakeScanner{}, "", "")
	m, _ = update(t, m, autoScanMsg{url: "https://a.example"})
	m, _ = update(t, m, autoScanMsg{url: "https://b.example"})

	// URL A resolves late, success and error alike must be dropped.
	m, _ = update(t, m, scanFinishedMsg{url: "https://a.example", report: validReport("https://a.example", 11)})
	if m.mode != viewScanning || m.pendingReport != nil {
		t.Fatalf("stale success mutated state")
	}
	m, _ = update(t, m, scanFinishedMsg{url: "https://a.example", err: &api.APIError{Code: "500", Message: "late failure"}})
	if m.mode != viewScanning || m.errCode != "" {
		t.Fatalf("stale error mutated state")
	}

	m, _ = update(t, m, scanFinishedMsg{url: "https://b.example", report: validReport("https://b.example", 90)})
	m, _ = update(t, m, revealResultsMsg{url: "https://b.example"})
	if m.mode != viewResults {
		t.Fatalf("current URL's result must render")
	}
	if !strings.Contains(m.View(), "b.example") {
		t.Fatalf("rendered view is not for the current URL")
	}
}

func TestStaleRevealIsDiscarded(t *testing.T) {
	m := NewModel(&fakeScanner{}, "", "")
	m, _ = update(t, m, autoScanMsg{url: "https://a.example"})
	m, _ = update(t, m, scanFinishedMsg{url: "https://a.example", report: validReport("https://a.example", 50)})

	// User moved on before the reveal delay elapsed.
	m, _ = update(t, m, autoScanMsg{url: "https://b.example"})
	m, _ = update(t, m, revealResultsMsg{url: "https://a.example"})
	if m.mode != viewScanning {
		t.Fatalf("stale reveal swapped to results")
	}
}

func TestMalformedReportBecomesError(t *testing.T) {
	m := NewModel(&fakeScanner{}, "", "")
	m, _ = update(t, m, autoScanMsg{url: "https://example.com"})

	malformed := validReport("https://example.com", 60)
	malformed.Categories = nil
	m, _ = update(t, m, scanFinishedMsg{url: "https://example.com", report: malformed})

	if m.mode != viewError {
		t.Fatalf("mode %v, want error", m.mode)
	}
	if m.errMsg != "Received invalid report structure from server" {
		t.Fatalf("error message %q", m.errMsg)
	}
	if !strings.Contains(m.View(), "Received invalid report structure from server") {
		t.Fatalf("error view missing validation message")
	}
}

func TestRateLimitOffersUpgradeNotRetry(t *testing.T) {
	m := NewModel(&fakeScanner{}, "", "")
	m, _ = update(t, m, autoScanMsg{url: "https://example.com"})
	m, _ = update(t, m, scanFinishedMsg{
		url: "https://example.com",
		err: &api.APIError{Code: api.CodeRateLimitExceeded, Message: "Daily scan limit reached"},
	})

	if m.mode != viewError {
		t.Fatalf("mode %v, want error", m.mode)
	}
	out := m.View()
	if !strings.Contains(out, "Upgrade") {
		t.Fatalf("rate-limit view missing upgrade call-to-action:\n%s", out)
	}
	if strings.Contains(out, "try again") {
		t.Fatalf("rate-limit view must not offer retry:\n%s", out)
	}

	// The retry key is inert for rate-limit errors.
	m, cmd := update(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'t'}})
	if m.mode != viewError || cmd != nil {
		t.Fatalf("retry must be disabled for rate-limit errors")
	}
}

func TestRetryResubmitsSameURL(t *testing.T) {
	m := NewModel(&fakeScanner{}, "", "")
	m, _ = update(t, m, autoScanMsg{url: "https://example.com"})
	m, _ = update(t, m, scanFinishedMsg{
		url: "https://example.com",
		err: &api.APIError{Code: api.CodeSiteNotAccessible, Message: "no route"},
	})
	if m.mode != viewError {
		t.Fatalf("mode %v, want error", m.mode)
	}

	m, cmd := update(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'t'}})
	if m.mode != viewScanning {
		t.Fatalf("retry must transition back to scanning")
	}
	if m.submittedURL != "https://example.com" {
		t.Fatalf("retry lost the URL: %q", m.submittedURL)
	}
	if cmd == nil {
		t.Fatalf("retry must schedule a new scan")
	}
	if m.errCode != "" {
		t.Fatalf("retry must clear the previous error")
	}
}

func TestRescanFromResults(t *testing.T) {
	m := NewModel(&fakeScanner{}, "", "")
	m, _ = update(t, m, autoScanMsg{url: "https://example.com"})
	m, _ = update(t, m, scanFinishedMsg{url: "https://example.com", report: validReport("https://example.com", 72)})
	m, _ = update(t, m, revealResultsMsg{url: "https://example.com"})

	m, cmd := update(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'r'}})
	if m.mode != viewScanning {
		t.Fatalf("re-scan must return to scanning")
	}
	if cmd == nil {
		t.Fatalf("re-scan must schedule a new scan")
	}
}

func TestTimeoutTransitionsToErrorOnce(t *testing.T) {
	m := NewModel(&fakeScanner{}, "", "")
	m, _ = update(t, m, autoScanMsg{url: "https://example.com"})

	m, _ = update(t, m, scanTimeoutMsg{gen: m.gen})
	if m.mode != viewError || m.errCode != api.CodeScanTimeout {
		t.Fatalf("timeout did not reach the error view: mode=%v code=%q", m.mode, m.errCode)
	}
	if m.progress.phase != phaseTimedOut {
		t.Fatalf("progress phase %v", m.progress.phase)
	}

	// A second (stale) timeout is a no-op, as is a late success.
	m, _ = update(t, m, scanTimeoutMsg{gen: m.gen})
	if m.mode != viewError {
		t.Fatalf("second timeout changed state")
	}
	m, _ = update(t, m, scanFinishedMsg{url: "https://example.com", report: validReport("https://example.com", 88)})
	if m.mode != viewError {
		t.Fatalf("late success after timeout changed state")
	}
}

func TestStaleTimerGenerationsAreFenced(t *testing.T) {
	m := NewModel(&fakeScanner{}, "", "")
	m, _ = update(t, m, autoScanMsg{url: "https://a.example"})
	oldGen := m.gen

	m, _ = update(t, m, autoScanMsg{url: "https://b.example"})
	if m.gen == oldGen {
		t.Fatalf("new submission must bump the timer generation")
	}

	before := m.progress.percent
	m, _ = update(t, m, progressTickMsg{gen: oldGen})
	if m.progress.percent != before {
		t.Fatalf("stale tick advanced progress")
	}
	m, _ = update(t, m, scanTimeoutMsg{gen: oldGen})
	if m.mode != viewScanning {
		t.Fatalf("stale timeout changed mode")
	}
}

func TestCompletionBurstThroughUpdate(t *testing.T) {
	m := NewModel(&fakeScanner{}, "", "")
	m, _ = update(t, m, autoScanMsg{url: "https://example.com"})
	m, _ = update(t, m, scanFinishedMsg{url: "https://example.com", report: validReport("https://example.com", 72)})

	for i := 0; i < 5; i++ {
		m, _ = update(t, m, completionStepMsg{gen: m.gen})
	}
	if m.progress.percent != 100 {
		t.Fatalf("percent %v after burst, want 100", m.progress.percent)
	}
	m, _ = update(t, m, completionDoneMsg{gen: m.gen})
	if m.progress.phase != phaseDone {
		t.Fatalf("phase %v after done msg", m.progress.phase)
	}
}

func TestProgressTickAdvancesAndReschedules(t *testing.T) {
	m := NewModel(&fakeScanner{}, "", "")
	m, _ = update(t, m, autoScanMsg{url: "https://example.com"})

	m, cmd := update(t, m, progressTickMsg{gen: m.gen})
	if m.progress.percent != 2.5 {
		t.Fatalf("tick advanced to %v, want 2.5", m.progress.percent)
	}
	if cmd == nil {
		t.Fatalf("running progress must reschedule its tick")
	}
}

func TestNewURLKeyReturnsToInput(t *testing.T) {
	m := NewModel(&fakeScanner{}, "", "")
	m, _ = update(t, m, autoScanMsg{url: "https://example.com"})
	m, _ = update(t, m, scanFinishedMsg{
		url: "https://example.com",
		err: &api.APIError{Code: api.CodeScanTimeout, Message: "too slow"},
	})

	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'n'}})
	if m.mode != viewInput {
		t.Fatalf("mode %v, want input", m.mode)
	}
	if m.submittedURL != "" || m.errCode != "" {
		t.Fatalf("input reset must clear scan state")
	}
}

func TestNormalizeURLAddsScheme(t *testing.T) {
	if got := normalizeURL("example.com"); got != "https://example.com" {
		t.Fatalf("normalizeURL = %q", got)
	}
	if got := normalizeURL("  https://example.com  "); got != "https://example.com" {
		t.Fatalf("normalizeURL trimmed = %q", got)
	}
	if got := normalizeURL("   "); got != "" {
		t.Fatalf("blank input must stay blank, got %q", got)
	}
}
