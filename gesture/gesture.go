// Package gesture distinguishes single taps from double taps on the outer zones of the player.
package gesture

import "time"

// Side is the outer zone a tap landed on.
type Side int

const (
	Left Side = iota
	Right
)

func (s Side) String() string {
	if s == Left {
		return "left"
	}
	return "right"
}

// Event is a single tap.
type Event struct {
	Side Side
	At   time.Time
}

// Policy decides what an outer single tap does once it is known not to be part of a double tap.
type Policy int

const (
	// CandidateOnly records outer taps as double tap candidates and nothing else.
	CandidateOnly Policy = iota

	// ToggleOverlay toggles the overlay when the double tap window closes without a second tap.
	ToggleOverlay
)

// ParsePolicy maps the overlay toggle setting onto a Policy.
func ParsePolicy(toggles bool) Policy {
	if toggles {
		return ToggleOverlay
	}
	return CandidateOnly
}

// Kind is the outcome of a tap.
type Kind int

const (
	// Candidate means the tap was recorded and may become a double tap.
	Candidate Kind = iota

	// DoubleTap means the tap completed a double tap.
	DoubleTap
)

// Result is returned by Disambiguator.Tap.
type Result struct {
	Kind Kind
	Side Side

	// Pending is set when a single tap must be confirmed later with Settle.
	Pending bool
	Gen     uint64
}

// Disambiguator tracks the last tap. It is not safe for concurrent use;
// the controller owns it from its update loop.
type Disambiguator struct {
	window time.Duration
	policy Policy

	last *Event
	gen  uint64
}

// New returns a disambiguator with the given double tap window.
func New(window time.Duration, policy Policy) *Disambiguator {
	return &Disambiguator{window: window, policy: policy}
}

func (d *Disambiguator) Window() time.Duration {
	return d.window
}

// Tap records a tap. A tap within the window of the previous one, on either side,
// completes a double tap on its own side and clears the candidate, so a third tap
// starts over.
func (d *Disambiguator) Tap(e Event) Result {
	d.gen++

	if d.last != nil {
		delta := e.At.Sub(d.last.At)
		if delta >= 0 && delta < d.window {
			d.last = nil
			return Result{Kind: DoubleTap, Side: e.Side, Gen: d.gen}
		}
	}

	d.last = &e
	return Result{
		Kind:    Candidate,
		Side:    e.Side,
		Pending: d.policy == ToggleOverlay,
		Gen:     d.gen,
	}
}

// Settle reports whether the single tap of generation gen is still unclaimed
// once its window closed. It holds at most once per generation.
func (d *Disambiguator) Settle(gen uint64) bool {
	if d.policy != ToggleOverlay || gen != d.gen || d.last == nil {
		return false
	}

	d.last = nil
	return true
}

// Reset forgets the last tap and invalidates pending settlements.
func (d *Disambiguator) Reset() {
	d.last = nil
	d.gen++
}
