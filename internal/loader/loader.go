// Package loader implements the staged "system check" shown before the page
// content is revealed.
//
// The sequence is a fixed chain of timed steps. Exactly one step is processing
// at a time and steps complete strictly in index order, so the whole runtime
// state collapses to the number of completed steps.
package loader

import (
	"context"
	"math"
	"time"

	"github.com/jonboulle/clockwork"
)

// RevealDelay is the pause between the last verified step and the content fade-in.
const RevealDelay = 500 * time.Millisecond

// Status is the runtime state of a single step.
type Status string

const (
	Pending    Status = "PENDING"
	Processing Status = "PROCESSING"
	Complete   Status = "COMPLETE"
)

// Step is one entry of the check sequence.
type Step struct {
	ID       int           `json:"id"`
	Name     string        `json:"name"`
	Status   string        `json:"status"`
	Duration time.Duration `json:"-"`
}

// DurationMillis is used by the JSON and template views.
func (s Step) DurationMillis() int64 { return s.Duration.Milliseconds() }

// DefaultSteps returns the portfolio's check sequence.
func DefaultSteps() []Step {
	return []Step{
		{ID: 0, Name: "FIREWALL", Status: "SCANNING", Duration: 2000 * time.Millisecond},
		{ID: 1, Name: "DATABASE", Status: "CONNECTING", Duration: 1500 * time.Millisecond},
		{ID: 2, Name: "API GATEWAY", Status: "AUTHENTICATING", Duration: 2500 * time.Millisecond},
		{ID: 3, Name: "NEURAL NETWORK", Status: "INITIALIZING", Duration: 3000 * time.Millisecond},
		{ID: 4, Name: "QUANTUM CORE", Status: "CALIBRATING", Duration: 2000 * time.Millisecond},
		{ID: 5, Name: "SECURITY MATRIX", Status: "VALIDATING", Duration: 1800 * time.Millisecond},
	}
}

// Sequence is an ordered, immutable list of steps.
type Sequence struct {
	steps []Step
}

// NewSequence copies steps so later mutation by the caller has no effect.
func NewSequence(steps []Step) *Sequence {
	cp := make([]Step, len(steps))
	copy(cp, steps)
	return &Sequence{steps: cp}
}

// Default returns the sequence built from DefaultSteps.
func Default() *Sequence { return NewSequence(DefaultSteps()) }

// Steps returns a copy of the step list.
func (s *Sequence) Steps() []Step {
	cp := make([]Step, len(s.steps))
	copy(cp, s.steps)
	return cp
}

// Len is the number of steps.
func (s *Sequence) Len() int { return len(s.steps) }

// Total is the sum of every step duration.
func (s *Sequence) Total() time.Duration {
	var total time.Duration
	for _, step := range s.steps {
		total += step.Duration
	}
	return total
}

// State is the progress through a sequence.
type State struct {
	Completed int `json:"completed"`
	Total     int `json:"total"`
}

// Start is the state before any step has completed; step 0 is processing.
func (s *Sequence) Start() State { return State{Completed: 0, Total: len(s.steps)} }

// Advance completes the processing step. It is a no-op once every step is done.
func (s *Sequence) Advance(st State) State {
	if st.Done() {
		return st
	}
	st.Completed++
	return st
}

// StateAt returns the state reached after elapsed time on a fresh run.
func (s *Sequence) StateAt(elapsed time.Duration) State {
	st := s.Start()
	var boundary time.Duration
	for _, step := range s.steps {
		boundary += step.Duration
		if elapsed < boundary {
			return st
		}
		st = s.Advance(st)
	}
	return st
}

// Done reports the ALL_VERIFIED terminal state.
func (st State) Done() bool { return st.Completed >= st.Total }

// Current is the index of the processing step, or -1 when done.
func (st State) Current() int {
	if st.Done() {
		return -1
	}
	return st.Completed
}

// StatusOf derives the status of step i.
func (st State) StatusOf(i int) Status {
	switch {
	case i < st.Completed:
		return Complete
	case i == st.Completed:
		return Processing
	default:
		return Pending
	}
}

// Progress is the completed share in whole percent.
func (st State) Progress() int {
	if st.Total == 0 {
		return 100
	}
	return int(math.Round(float64(st.Completed) / float64(st.Total) * 100))
}

// Label is the per-step caption: STANDBY, the step's own status, or VERIFIED.
func (s *Sequence) Label(st State, i int) string {
	switch st.StatusOf(i) {
	case Complete:
		return "VERIFIED"
	case Processing:
		return s.steps[i].Status
	default:
		return "STANDBY"
	}
}

// Run drives the sequence on clk, calling emit with the initial state and
// after every transition. It returns nil once the reveal delay after the
// final step has elapsed, or ctx.Err() if cancelled first.
func (s *Sequence) Run(ctx context.Context, clk clockwork.Clock, emit func(State)) error {
	st := s.Start()
	emit(st)

	for !st.Done() {
		if err := sleep(ctx, clk, s.steps[st.Current()].Duration); err != nil {
			return err
		}
		st = s.Advance(st)
		emit(st)
	}
	return sleep(ctx, clk, RevealDelay)
}

// sleep waits d on clk. The timer is stopped when ctx ends first.
func sleep(ctx context.Context, clk clockwork.Clock, d time.Duration) error {
	t := clk.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.Chan():
		return nil
	}
}
