// Package enginetest provides an in-memory engine.Surface that records every call.
package enginetest

import (
	"context"
	"sync"
	"time"

	"github.com/reelplay/reelplay/engine"
)

// Call is a recorded surface invocation.
type Call struct {
	Op  string
	Arg any
}

// Surface is a scripted engine.Surface. Errors set on the exported fields
// are returned by the matching method.
type Surface struct {
	Duration time.Duration

	OpenErr  error
	SeekErr  error
	PlayErr  error
	RateErr  error
	CloseErr error

	mu       sync.Mutex
	calls    []Call
	handlers map[int]engine.Handlers
	next     int
	closed   bool
}

// NewSurface returns a surface that reports duration once opened.
func NewSurface(duration time.Duration) *Surface {
	return &Surface{
		Duration: duration,
		handlers: make(map[int]engine.Handlers),
	}
}

func (s *Surface) record(op string, arg any) {
	s.mu.Lock()
	s.calls = append(s.calls, Call{Op: op, Arg: arg})
	s.mu.Unlock()
}

func (s *Surface) Open(_ context.Context, uri string) error {
	s.record("open", uri)
	if s.OpenErr != nil {
		return s.OpenErr
	}

	s.Emit(engine.Status{IsLoaded: true, Duration: s.Duration})
	return nil
}

func (s *Surface) Play(context.Context) error {
	s.record("play", nil)
	return s.PlayErr
}

func (s *Surface) Pause(context.Context) error {
	s.record("pause", nil)
	return nil
}

func (s *Surface) Seek(_ context.Context, pos time.Duration) error {
	s.record("seek", pos)
	return s.SeekErr
}

func (s *Surface) SetRate(_ context.Context, rate float64) error {
	s.record("rate", rate)
	return s.RateErr
}

func (s *Surface) SetVolume(_ context.Context, volume float64) error {
	s.record("volume", volume)
	return nil
}

func (s *Surface) SetSubtitle(_ context.Context, uri string) error {
	s.record("subtitle", uri)
	return nil
}

func (s *Surface) Subscribe(h engine.Handlers) func() {
	s.mu.Lock()
	id := s.next
	s.next++
	s.handlers[id] = h
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		delete(s.handlers, id)
		s.mu.Unlock()
	}
}

func (s *Surface) Close() error {
	s.record("close", nil)

	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()

	return s.CloseErr
}

// Emit pushes a status tick to every subscriber.
func (s *Surface) Emit(st engine.Status) {
	for _, h := range s.snapshot() {
		if h.OnStatus != nil {
			h.OnStatus(st)
		}
	}
}

// Fail pushes an asynchronous error to every subscriber.
func (s *Surface) Fail(err error) {
	for _, h := range s.snapshot() {
		if h.OnError != nil {
			h.OnError(err)
		}
	}
}

func (s *Surface) snapshot() []engine.Handlers {
	s.mu.Lock()
	defer s.mu.Unlock()

	handlers := make([]engine.Handlers, 0, len(s.handlers))
	for _, h := range s.handlers {
		handlers = append(handlers, h)
	}
	return handlers
}

// Calls returns a copy of the recorded calls.
func (s *Surface) Calls() []Call {
	s.mu.Lock()
	defer s.mu.Unlock()

	return append([]Call(nil), s.calls...)
}

// Ops returns the recorded operation names in order.
func (s *Surface) Ops() []string {
	calls := s.Calls()
	ops := make([]string, len(calls))
	for i, c := range calls {
		ops[i] = c.Op
	}
	return ops
}

// Count returns how many times op was called.
func (s *Surface) Count(op string) int {
	var n int
	for _, c := range s.Calls() {
		if c.Op == op {
			n++
		}
	}
	return n
}

// Subscribers returns the number of attached listeners.
func (s *Surface) Subscribers() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.handlers)
}

// Reset forgets recorded calls.
func (s *Surface) Reset() {
	s.mu.Lock()
	s.calls = nil
	s.mu.Unlock()
}

func (s *Surface) Closed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}
