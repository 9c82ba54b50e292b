package tui

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

// The backend emits no intermediate progress, so the scanning view runs a
// deterministic simulation: fast start, slow finish, capped at 90 until the
// real result arrives. The remaining 10 points are the completion burst.
const (
	progressTickInterval  = 200 * time.Millisecond
	completionStepDelay   = 300 * time.Millisecond
	completionFinishDelay = 500 * time.Millisecond
	scanTimeout           = 60 * time.Second
	resultsRevealDelay    = 2 * time.Second

	progressCap   = 90.0
	baseIncrement = 0.5
)

var progressStepLabels = [5]string{
	"Fetching site content",
	"Checking AI agent directives",
	"Evaluating structured data",
	"Scoring readiness categories",
	"Preparing recommendations",
}

// A step enters in-progress at threshold-15 and completes at threshold.
var progressStepThresholds = [5]float64{15, 35, 55, 75, 90}

type progressPhase int

const (
	phaseRunning progressPhase = iota
	phaseCompleting
	phaseDone
	phaseTimedOut
)

type stepState int

const (
	stepPending stepState = iota
	stepInProgress
	stepCompleted
)

// progressModel is the loading visualization's state machine:
// running → completing → done, or running → timedOut. Terminal phases
// accept no further timer-driven changes; stale timers are additionally
// fenced by the generation number carried in their messages.
type progressModel struct {
	phase   progressPhase
	percent float64
	// forced counts steps completed by the catch-up burst.
	forced int
}

func newProgress() progressModel {
	return progressModel{phase: phaseRunning}
}

// tick advances the simulated percentage. The multiplier decays in discrete
// steps as progress crosses 20/40/60/80.
func (p *progressModel) tick() {
	if p.phase != phaseRunning {
		return
	}
	multiplier := 5 - int(p.percent/20)
	if multiplier < 1 {
		multiplier = 1
	}
	p.percent += baseIncrement * float64(multiplier)
	if p.percent > progressCap {
		p.percent = progressCap
	}
}

// beginCompletion switches to the catch-up burst once the real result is
// in. Steps already completed by the simulation stay completed.
func (p *progressModel) beginCompletion() {
	if p.phase != phaseRunning {
		return
	}
	p.phase = phaseCompleting
	p.forced = p.naturallyCompleted()
}

// completeNextStep finishes one remaining step; the final step jumps the
// bar to 100. It reports whether all steps are now complete.
func (p *progressModel) completeNextStep() bool {
	if p.phase != phaseCompleting {
		return false
	}
	if p.forced < len(progressStepThresholds) {
		p.forced++
	}
	if p.forced == len(progressStepThresholds) {
		p.percent = 100
		return true
	}
	return false
}

func (p *progressModel) finish() {
	if p.phase == phaseCompleting {
		p.phase = phaseDone
	}
}

// timeOut moves to the terminal timed-out state. It reports whether the
// transition happened now (false when already terminal, so the give-up
// path fires exactly once).
func (p *progressModel) timeOut() bool {
	if p.phase != phaseRunning {
		return false
	}
	p.phase = phaseTimedOut
	return true
}

func (p progressModel) terminal() bool {
	return p.phase == phaseDone || p.phase == phaseTimedOut
}

func (p progressModel) naturallyCompleted() int {
	n := 0
	for _, threshold := range progressStepThresholds {
		if p.percent >= threshold {
			n++
		}
	}
	return n
}

func (p progressModel) stepStateAt(i int) stepState {
	if i < p.forced {
		return stepCompleted
	}
	threshold := progressStepThresholds[i]
	switch {
	case p.percent >= threshold:
		return stepCompleted
	case p.percent >= threshold-15:
		return stepInProgress
	default:
		return stepPending
	}
}

// Timer messages carry the generation of the scan attempt that scheduled
// them; the model drops messages from superseded attempts.
type progressTickMsg struct{ gen int }
type completionStepMsg struct{ gen int }
type completionDoneMsg struct{ gen int }
type scanTimeoutMsg struct{ gen int }
type revealResultsMsg struct{ url string }

func progressTickCmd(gen int) tea.Cmd {
	return tea.Tick(progressTickInterval, func(time.Time) tea.Msg {
		return progressTickMsg{gen: gen}
	})
}

func completionStepCmd(gen int) tea.Cmd {
	return tea.Tick(completionStepDelay, func(time.Time) tea.Msg {
		return completionStepMsg{gen: gen}
	})
}

func completionDoneCmd(gen int) tea.Cmd {
	return tea.Tick(completionFinishDelay, func(time.Time) tea.Msg {
		return completionDoneMsg{gen: gen}
	})
}

func scanTimeoutCmd(gen int) tea.Cmd {
	return tea.Tick(scanTimeout, func(time.Time) tea.Msg {
		return scanTimeoutMsg{gen: gen}
	})
}

func revealResultsCmd(url string) tea.Cmd {
	return tea.Tick(resultsRevealDelay, func(time.Time) tea.Msg {
		return revealResultsMsg{url: url}
	})
}
