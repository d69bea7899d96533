// Package engine adapts a platform playback surface into the contract the playback controller relies on:
// clamped seeks with seek-then-resume, idempotent play/pause, a fixed rate set, and push-only status
// delivery through an explicit subscription handle.
package engine

import (
	"context"
	"errors"
	"fmt"
	"time"
)

var (
	// ErrUnresolvable is returned when the source URI cannot be opened.
	ErrUnresolvable = errors.New("engine: source unresolvable")

	// ErrDecodeFailure is returned for unsupported codecs or containers.
	ErrDecodeFailure = errors.New("engine: decode failure")

	// ErrInvalidRate is returned by SetRate for values outside Rates.
	ErrInvalidRate = errors.New("engine: invalid playback rate")

	// ErrNoSource is returned by transport calls made before Load succeeded.
	ErrNoSource = errors.New("engine: no source loaded")
)

// Rates is the discrete set of accepted playback rate multipliers.
var Rates = []float64{0.25, 0.5, 0.75, 1.0, 1.25, 1.5, 1.75, 2.0}

// ValidRate reports whether r is one of Rates.
func ValidRate(r float64) bool {
	for _, rate := range Rates {
		if rate == r {
			return true
		}
	}
	return false
}

// Terminal reports whether err ends playback of the current source.
// Only unresolvable and undecodable sources are terminal.
func Terminal(err error) bool {
	return errors.Is(err, ErrUnresolvable) || errors.Is(err, ErrDecodeFailure)
}

// classify maps an arbitrary surface error onto the engine taxonomy.
func classify(err error) error {
	switch {
	case err == nil:
		return nil
	case Terminal(err), errors.Is(err, ErrInvalidRate):
		return err
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return err
	default:
		return fmt.Errorf("%w: %w", ErrUnresolvable, err)
	}
}

// Source is an immutable playable reference. URI doubles as the watch history key.
type Source struct {
	URI     string
	StartAt time.Duration
}

// Status is a snapshot of the surface.
//
// Once IsLoaded, Position never exceeds a known Duration. DidJustFinish is an edge:
// it is delivered once to listeners and never retained in Adapter.Status.
// IsSeeking is set by the surface while it jumps on its own, e.g. from its own controls.
type Status struct {
	IsLoaded      bool
	IsPlaying     bool
	IsBuffering   bool
	IsSeeking     bool
	Position      time.Duration
	Duration      time.Duration
	DidJustFinish bool
}

// Handlers receive pushed surface events. Either field may be nil.
type Handlers struct {
	OnStatus func(Status)
	OnError  func(error)
}
