// Package typewriter reveals and deletes text one character at a time.
package typewriter

import (
	"context"
	"errors"
	"time"

	"github.com/jonboulle/clockwork"
)

// ErrNoPhrases is returned when a cycler is built without any phrase.
var ErrNoPhrases = errors.New("typewriter: at least one phrase is required")

const (
	RevealInterval = 80 * time.Millisecond
	TypeInterval   = 100 * time.Millisecond
	DeleteInterval = 50 * time.Millisecond
	HoldPause      = 2000 * time.Millisecond
)

// DefaultPhrases is the hero section's rotating title list.
func DefaultPhrases() []string {
	return []string{
		"Computer Engineering Student",
		"Full Stack Developer",
		"Machine Learning Enthusiast",
		"AI Research Scholar",
		"Problem Solver & Innovator",
	}
}

// Reveal types a fixed string once.
type Reveal struct {
	text     []rune
	Interval time.Duration
	Delay    time.Duration
}

// NewReveal builds a single-pass typewriter with the default interval.
func NewReveal(text string, delay time.Duration) *Reveal {
	return &Reveal{text: []rune(text), Interval: RevealInterval, Delay: delay}
}

// Tick reveals one more character; it stops at full length.
func (r *Reveal) Tick(length int) int {
	if length >= len(r.text) {
		return len(r.text)
	}
	return length + 1
}

// Done reports whether the whole string is shown.
func (r *Reveal) Done(length int) bool { return length >= len(r.text) }

// Text is the visible prefix.
func (r *Reveal) Text(length int) string {
	if length > len(r.text) {
		length = len(r.text)
	}
	if length < 0 {
		length = 0
	}
	return string(r.text[:length])
}

// Run emits each visible prefix until the text is fully revealed.
func (r *Reveal) Run(ctx context.Context, clk clockwork.Clock, emit func(string)) error {
	wait := r.Delay + r.Interval
	for length := 0; !r.Done(length); {
		if err := sleep(ctx, clk, wait); err != nil {
			return err
		}
		length = r.Tick(length)
		emit(r.Text(length))
		wait = r.Interval
	}
	return nil
}

// State is the cycler position. Length counts runes of the current phrase.
type State struct {
	Phrase   int  `json:"phrase"`
	Length   int  `json:"length"`
	Deleting bool `json:"deleting"`
}

// Frame is what a client renders for one tick.
type Frame struct {
	Text     string `json:"text"`
	Phrase   int    `json:"phrase"`
	Deleting bool   `json:"deleting"`
}

// Cycler types each phrase forward, holds, deletes it and moves to the next,
// wrapping after the last phrase.
type Cycler struct {
	phrases        [][]rune
	TypeInterval   time.Duration
	DeleteInterval time.Duration
	Pause          time.Duration
}

// NewCycler returns a cycler with the default timings.
func NewCycler(phrases []string) (*Cycler, error) {
	if len(phrases) == 0 {
		return nil, ErrNoPhrases
	}
	runes := make([][]rune, len(phrases))
	for i, p := range phrases {
		runes[i] = []rune(p)
	}
	return &Cycler{
		phrases:        runes,
		TypeInterval:   TypeInterval,
		DeleteInterval: DeleteInterval,
		Pause:          HoldPause,
	}, nil
}

// Phrases returns the phrase list.
func (c *Cycler) Phrases() []string {
	out := make([]string, len(c.phrases))
	for i, p := range c.phrases {
		out[i] = string(p)
	}
	return out
}

// Tick computes the next state.
func (c *Cycler) Tick(st State) State {
	full := len(c.phrases[st.Phrase])
	if !st.Deleting {
		if st.Length < full {
			st.Length++
		} else {
			st.Deleting = true
		}
		return st
	}
	if st.Length > 0 {
		st.Length--
		return st
	}
	st.Deleting = false
	st.Phrase = (st.Phrase + 1) % len(c.phrases)
	return st
}

// Delay is how long to wait in st before the next tick.
func (c *Cycler) Delay(st State) time.Duration {
	switch {
	case st.Deleting:
		return c.DeleteInterval
	case st.Length >= len(c.phrases[st.Phrase]):
		return c.Pause
	default:
		return c.TypeInterval
	}
}

// Frame renders st.
func (c *Cycler) Frame(st State) Frame {
	return Frame{
		Text:     string(c.phrases[st.Phrase][:st.Length]),
		Phrase:   st.Phrase,
		Deleting: st.Deleting,
	}
}

// Run emits a frame for every tick until ctx is cancelled. The pending timer
// is stopped on cancellation so no tick fires against a closed stream.
func (c *Cycler) Run(ctx context.Context, clk clockwork.Clock, emit func(Frame) error) error {
	var st State
	for {
		if err := sleep(ctx, clk, c.Delay(st)); err != nil {
			return err
		}
		st = c.Tick(st)
		if err := emit(c.Frame(st)); err != nil {
			return err
		}
	}
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
