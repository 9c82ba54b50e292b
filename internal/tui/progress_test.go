package tui

import "testing"

func TestProgressIsMonotonicAndCappedAt90(t *testing.T) {
	p := newProgress()
	prev := p.percent
	for i := 0; i < 1000; i++ {
		p.tick()
		if p.percent < prev {
			t.Fatalf("progress decreased: %v -> %v", prev, p.percent)
		}
		if p.percent > progressCap {
			t.Fatalf("progress exceeded cap before completion: %v", p.percent)
		}
		prev = p.percent
	}
	if p.percent != progressCap {
		t.Fatalf("progress should settle at the cap, got %v", p.percent)
	}
}

func TestProgressIncrementDecays(t *testing.T) {
	p := newProgress()

	// Below 20 the multiplier is 5: each tick adds 2.5.
	p.tick()
	if p.percent != 2.5 {
		t.Fatalf("first tick added %v, want 2.5", p.percent)
	}

	p.percent = 25
	p.tick()
	if p.percent != 27 {
		t.Fatalf("tick past 20 added %v, want 2.0", p.percent-25)
	}

	p.percent = 85
	p.tick()
	if p.percent != 85.5 {
		t.Fatalf("tick past 80 added %v, want 0.5", p.percent-85)
	}
}

func TestStepThresholds(t *testing.T) {
	p := newProgress()

	// First step enters in-progress immediately (threshold 15, minus 15).
	if got := p.stepStateAt(0); got != stepInProgress {
		t.Fatalf("step 0 at 0%%: %v, want in-progress", got)
	}
	if got := p.stepStateAt(1); got != stepPending {
		t.Fatalf("step 1 at 0%%: %v, want pending", got)
	}

	p.percent = 15
	if got := p.stepStateAt(0); got != stepCompleted {
		t.Fatalf("step 0 at 15%%: %v, want completed", got)
	}

	p.percent = 20
	if got := p.stepStateAt(1); got != stepInProgress {
		t.Fatalf("step 1 at 20%%: %v, want in-progress", got)
	}

	p.percent = 90
	for i := 0; i < len(progressStepThresholds); i++ {
		if got := p.stepStateAt(i); got != stepCompleted {
			t.Fatalf("step %d at 90%%: %v, want completed", i, got)
		}
	}
}

func TestCompletionBurstReaches100(t *testing.T) {
	p := newProgress()
	p.percent = 40 // steps 0 and 1 naturally complete

	p.beginCompletion()
	if p.phase != phaseCompleting {
		t.Fatalf("phase %v after beginCompletion", p.phase)
	}
	if p.forced != 2 {
		t.Fatalf("natural completions carried over: %d, want 2", p.forced)
	}

	done := 0
	for i := 0; i < 5; i++ {
		if p.completeNextStep() {
			done++
		}
	}
	if done != 1 {
		t.Fatalf("final step signaled %d times, want exactly once", done)
	}
	if p.percent != 100 {
		t.Fatalf("percent %v after burst, want 100", p.percent)
	}
	for i := 0; i < len(progressStepThresholds); i++ {
		if p.stepStateAt(i) != stepCompleted {
			t.Fatalf("step %d not completed after burst", i)
		}
	}

	p.finish()
	if p.phase != phaseDone || !p.terminal() {
		t.Fatalf("phase %v after finish", p.phase)
	}
}

func TestTickIgnoredAfterCompletionStarts(t *testing.T) {
	p := newProgress()
	p.percent = 50
	p.beginCompletion()

	before := p.percent
	p.tick()
	if p.percent != before {
		t.Fatalf("tick advanced progress during completion burst")
	}
}

func TestTimeoutFiresExactlyOnce(t *testing.T) {
	p := newProgress()
	if !p.timeOut() {
		t.Fatalf("first timeout must transition")
	}
	if p.phase != phaseTimedOut || !p.terminal() {
		t.Fatalf("phase %v after timeout", p.phase)
	}
	if p.timeOut() {
		t.Fatalf("second timeout must be a no-op")
	}

	// Terminal state accepts no further changes.
	before := p.percent
	p.tick()
	p.beginCompletion()
	if p.percent != before || p.phase != phaseTimedOut {
		t.Fatalf("terminal state mutated")
	}
}

func TestTimeoutIgnoredAfterCompletion(t *testing.T) {
	p := newProgress()
	p.beginCompletion()
	if p.timeOut() {
		t.Fatalf("timeout must not fire once completion has started")
	}
}
