// Package tui is the interactive scan experience: URL input, simulated
// scan progress, and the rendered readiness report.
package tui

import (
	"context"
	"log"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/lighthouse-hq/lighthouse/internal/api"
	"github.com/lighthouse-hq/lighthouse/internal/report"
	"github.com/lighthouse-hq/lighthouse/internal/result"
)

// scanner is the slice of the API client the scan screen needs.
type scanner interface {
	ScanForAIReadiness(ctx context.Context, req api.ScanRequest) result.Result[*report.Report, *api.APIError]
}

type viewMode int

const (
	viewInput viewMode = iota
	viewScanning
	viewResults
	viewError
)

// allCategoriesFilter is the pseudo-entry ahead of the real groups in the
// results filter row.
const allCategoriesFilter = 0

type Model struct {
	client   scanner
	category string

	mode  viewMode
	input textinput.Model
	// pendingURL is a deep-linked URL submitted automatically by Init.
	pendingURL string

	// submittedURL is the single source of truth for both race guards. It
	// is written synchronously in Update before any scan command runs;
	// every async outcome is checked against it and discarded on mismatch.
	submittedURL string
	// gen fences timer messages from superseded scan attempts.
	gen int

	progress      progressModel
	pendingReport *report.Report
	report        *report.Report
	views         report.Views
	stats         map[report.ViewCategory]report.CategoryStats

	errCode string
	errMsg  string

	filterIndex   int
	indicatorIdx  int
	expanded      map[string]bool
	width, height int
	quitting      bool
}

func NewModel(client scanner, initialURL, category string) Model {
	input := textinput.New()
	input.Placeholder = "https://example.com"
	input.CharLimit = 2048
	input.Width = 48
	input.Focus()

	return Model{
		client:     client,
		category:   category,
		mode:       viewInput,
		input:      input,
		expanded:   map[string]bool{},
		pendingURL: strings.TrimSpace(initialURL),
	}
}

func (m Model) Init() tea.Cmd {
	if m.pendingURL != "" {
		return func() tea.Msg { return autoScanMsg{url: m.pendingURL} }
	}
	return textinput.Blink
}

// autoScanMsg carries a deep-linked URL through Init into the normal
// submission path.
type autoScanMsg struct{ url string }

type scanFinishedMsg struct {
	url    string
	report *report.Report
	err    *api.APIError
}

func scanCmd(client scanner, url, category string) tea.Cmd {
	return func() tea.Msg {
		req := api.ScanRequest{URL: url}
		if category != "" {
			req.Options = &api.ScanOptions{SiteCategory: category}
		}
		res := client.ScanForAIReadiness(context.Background(), req)
		return result.Match(res,
			func(rep *report.Report) tea.Msg {
				return scanFinishedMsg{url: url, report: rep}
			},
			func(apiErr *api.APIError) tea.Msg {
				return scanFinishedMsg{url: url, err: apiErr}
			},
		)
	}
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch typed := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = typed.Width
		m.height = typed.Height
		return m, nil

	case autoScanMsg:
		return m.submit(typed.url)

	case scanFinishedMsg:
		return m.handleScanFinished(typed)

	case progressTickMsg:
		if typed.gen != m.gen || m.mode != viewScanning {
			return m, nil
		}
		if m.progress.phase != phaseRunning {
			return m, nil
		}
		m.progress.tick()
		return m, progressTickCmd(m.gen)

	case completionStepMsg:
		if typed.gen != m.gen {
			return m, nil
		}
		if done := m.progress.completeNextStep(); done {
			return m, completionDoneCmd(m.gen)
		}
		if m.progress.phase == phaseCompleting {
			return m, completionStepCmd(m.gen)
		}
		return m, nil

	case completionDoneMsg:
		if typed.gen != m.gen {
			return m, nil
		}
		m.progress.finish()
		return m, nil

	case scanTimeoutMsg:
		if typed.gen != m.gen || m.mode != viewScanning {
			return m, nil
		}
		if !m.progress.timeOut() {
			return m, nil
		}
		m.errCode = api.CodeScanTimeout
		m.errMsg = "The scan did not finish in time."
		m.mode = viewError
		return m, nil

	case revealResultsMsg:
		// Stale-result guard also applies to the delayed reveal.
		if typed.url != m.submittedURL || m.pendingReport == nil {
			return m, nil
		}
		m.report = m.pendingReport
		m.pendingReport = nil
		m.views = report.DeriveViews(m.report)
		m.stats = report.Stats(m.views.ByCategory)
		m.filterIndex = allCategoriesFilter
		m.indicatorIdx = 0
		m.expanded = map[string]bool{}
		m.mode = viewResults
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(typed)
	}

	if m.mode == viewInput {
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m Model) handleScanFinished(msg scanFinishedMsg) (tea.Model, tea.Cmd) {
	// Stale-result guard: outcomes for a URL the user has navigated away
	// from are discarded entirely, success and error alike.
	if msg.url != m.submittedURL || m.mode != viewScanning {
		return m, nil
	}

	if msg.err != nil {
		m.gen++ // fence any still-pending progress/timeout timers
		m.errCode = msg.err.Code
		m.errMsg = msg.err.Message
		m.mode = viewError
		return m, nil
	}

	if missing := msg.report.Validate(); len(missing) > 0 {
		// Logged distinctly from domain errors, shown identically.
		log.Printf("tui: scan %s returned report missing %v", msg.url, missing)
		m.gen++
		m.errCode = api.CodeInvalidResponse
		m.errMsg = "Received invalid report structure from server"
		m.mode = viewError
		return m, nil
	}

	m.pendingReport = msg.report
	m.progress.beginCompletion()
	return m, tea.Batch(completionStepCmd(m.gen), revealResultsCmd(msg.url))
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "ctrl+c" {
		m.quitting = true
		return m, tea.Quit
	}

	switch m.mode {
	case viewInput:
		switch msg.String() {
		case "enter":
			return m.submit(m.input.Value())
		case "esc", "q":
			if m.input.Value() == "" {
				m.quitting = true
				return m, tea.Quit
			}
		}
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		return m, cmd

	case viewScanning:
		// No interactions while scanning; the guards own the lifecycle.
		return m, nil

	case viewError:
		switch msg.String() {
		case "t":
			if m.errCode == api.CodeRateLimitExceeded {
				return m, nil
			}
			return m.retry()
		case "n":
			return m.resetToInput(), textinput.Blink
		case "q", "esc":
			m.quitting = true
			return m, tea.Quit
		}
		return m, nil

	case viewResults:
		return m.handleResultsKey(msg)
	}
	return m, nil
}

func (m Model) handleResultsKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "r":
		// Explicit Results → Scanning transition.
		url := m.submittedURL
		m.submittedURL = ""
		return m.submit(url)
	case "n":
		return m.resetToInput(), textinput.Blink
	case "left", "h":
		if m.filterIndex > 0 {
			m.filterIndex--
			m.indicatorIdx = 0
		}
		return m, nil
	case "right", "l":
		if m.filterIndex < len(report.ViewCategoryOrder) {
			m.filterIndex++
			m.indicatorIdx = 0
		}
		return m, nil
	case "up", "k":
		if m.indicatorIdx > 0 {
			m.indicatorIdx--
		}
		return m, nil
	case "down", "j":
		if m.indicatorIdx < len(m.visibleIndicators())-1 {
			m.indicatorIdx++
		}
		return m, nil
	case "enter", " ":
		visible := m.visibleIndicators()
		if m.indicatorIdx < len(visible) {
			name := visible[m.indicatorIdx].Name
			m.expanded[name] = !m.expanded[name]
		}
		return m, nil
	case "q", "esc":
		m.quitting = true
		return m, tea.Quit
	}
	return m, nil
}

// submit starts a scan through the one valid Input/Error/Results →
// Scanning path.
func (m Model) submit(rawURL string) (tea.Model, tea.Cmd) {
	url := normalizeURL(rawURL)
	if url == "" {
		return m, nil
	}
	// Duplicate-submission guard: a scan is already in flight for this
	// exact URL.
	if url == m.submittedURL && m.mode == viewScanning {
		return m, nil
	}

	// Written before the async command is created; every callback
	// rechecks it.
	m.submittedURL = url
	m.gen++
	m.mode = viewScanning
	m.progress = newProgress()
	m.pendingReport = nil
	m.report = nil
	m.errCode = ""
	m.errMsg = ""

	return m, tea.Batch(
		scanCmd(m.client, url, m.category),
		progressTickCmd(m.gen),
		scanTimeoutCmd(m.gen),
	)
}

func (m Model) retry() (tea.Model, tea.Cmd) {
	url := m.submittedURL
	m.submittedURL = ""
	m.errCode = ""
	m.errMsg = ""
	return m.submit(url)
}

func (m Model) resetToInput() Model {
	m.mode = viewInput
	m.submittedURL = ""
	m.gen++
	m.report = nil
	m.pendingReport = nil
	m.errCode = ""
	m.errMsg = ""
	m.input.SetValue("")
	m.input.Focus()
	return m
}

// visibleIndicators applies the active category filter.
func (m Model) visibleIndicators() []report.IndicatorView {
	if m.filterIndex == allCategoriesFilter {
		return m.views.All
	}
	cat := report.ViewCategoryOrder[m.filterIndex-1]
	return m.views.ByCategory[cat]
}

func normalizeURL(raw string) string {
	url := strings.TrimSpace(raw)
	if url == "" {
		return ""
	}
	if !strings.HasPrefix(url, "http://") && !strings.HasPrefix(url, "https://") {
		url = "https://" + url
	}
	return url
}

func (m Model) View() string {
	if m.quitting {
		return ""
	}
	switch m.mode {
	case viewInput:
		return m.renderInput()
	case viewScanning:
		return m.renderScanning()
	case viewResults:
		return m.renderResults()
	case viewError:
		return m.renderError()
	}
	return ""
}
