package engine

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/reelplay/reelplay/util"
)

const (
	// settleWindow is how far past a seek target the first accepted tick may land.
	settleWindow = time.Second

	// settleLimit bounds how many off-target ticks are dropped after a seek.
	settleLimit = 4
)

// Adapter wraps a Surface. All methods are safe for concurrent use.
// The adapter never holds its lock while calling listeners.
type Adapter struct {
	surface Surface

	mu         sync.Mutex
	sub        *Subscription
	status     Status
	rate       float64
	volume     float64
	shouldPlay bool

	// seeks counts in-flight Seek calls, held marks a scrub started with Hold.
	seeks int
	held  bool
	floor time.Duration

	// settling is set after a Seek until a tick lands near the target.
	settling bool
	target   time.Duration
	dropped  int
}

// NewAdapter returns an adapter over s with rate 1 and full volume.
func NewAdapter(s Surface) *Adapter {
	return &Adapter{
		surface: s,
		rate:    1,
		volume:  1,
	}
}

// Load binds the surface to src. Any previous subscription is cancelled.
func (a *Adapter) Load(ctx context.Context, src Source, h Handlers) (*Subscription, error) {
	if strings.TrimSpace(src.URI) == "" {
		return nil, fmt.Errorf("%w: empty uri", ErrUnresolvable)
	}

	sub := newSubscription(h)

	a.mu.Lock()
	prev := a.sub
	a.sub = sub
	a.status = Status{}
	a.shouldPlay = false
	a.seeks = 0
	a.held = false
	a.floor = 0
	a.settling = false
	a.mu.Unlock()

	if prev != nil {
		prev.Cancel()
	}

	sub.setDetach(a.surface.Subscribe(Handlers{
		OnStatus: func(st Status) { a.receive(sub, st) },
		OnError:  func(err error) { sub.error(classify(err)) },
	}))

	if err := a.surface.Open(ctx, src.URI); err != nil {
		sub.Cancel()

		a.mu.Lock()
		if a.sub == sub {
			a.sub = nil
		}
		a.mu.Unlock()

		return nil, classify(err)
	}

	return sub, nil
}

func (a *Adapter) seeking() bool {
	return a.seeks > 0 || a.held
}

func (a *Adapter) receive(sub *Subscription, st Status) {
	a.mu.Lock()
	if a.sub != sub {
		a.mu.Unlock()
		return
	}

	if st.Position < 0 {
		st.Position = 0
	}
	if st.Duration > 0 && st.Position > st.Duration {
		st.Position = st.Duration
	}

	if a.seeking() {
		a.status.IsLoaded = st.IsLoaded
		a.status.IsBuffering = st.IsBuffering
		a.status.Duration = st.Duration
		a.mu.Unlock()
		return
	}

	switch {
	case st.DidJustFinish:
		a.shouldPlay = false
		a.floor = 0
		a.settling = false
	case a.settling && st.IsSeeking:
		// echo of our own seek
		a.mu.Unlock()
		return
	case st.IsSeeking:
		a.floor = 0
	case a.settling && !a.landed(st.Position):
		a.dropped++
		if a.dropped < settleLimit {
			a.mu.Unlock()
			return
		}
		a.settling = false
		a.floor = st.Position
	default:
		a.settling = false
		if st.Position < a.floor {
			st.Position = a.floor
		}
		a.floor = st.Position
	}

	// the surface may be paused or resumed outside the adapter
	if st.IsLoaded && !st.IsSeeking && !st.DidJustFinish {
		a.shouldPlay = st.IsPlaying
	}

	a.status = st
	a.status.DidJustFinish = false
	a.mu.Unlock()

	sub.status(st)
}

// landed reports whether pos is a tick from after the last seek rather than a stale one.
func (a *Adapter) landed(pos time.Duration) bool {
	return pos >= a.target && pos-a.target <= settleWindow
}

// Play is a no-op if playback is already requested.
func (a *Adapter) Play(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	a.mu.Lock()
	if a.sub == nil {
		a.mu.Unlock()
		return ErrNoSource
	}
	if a.shouldPlay {
		a.mu.Unlock()
		return nil
	}
	a.shouldPlay = true
	seeking := a.seeking()
	a.mu.Unlock()

	// resumed when the seek completes
	if seeking {
		return nil
	}

	if err := a.surface.Play(ctx); err != nil {
		a.mu.Lock()
		a.shouldPlay = false
		a.mu.Unlock()
		return fmt.Errorf("play: %w", err)
	}

	return nil
}

// Pause is a no-op if playback is already paused.
func (a *Adapter) Pause(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	a.mu.Lock()
	if a.sub == nil {
		a.mu.Unlock()
		return ErrNoSource
	}
	if !a.shouldPlay {
		a.mu.Unlock()
		return nil
	}
	a.shouldPlay = false
	seeking := a.seeking()
	a.mu.Unlock()

	// already paused by the seek
	if seeking {
		return nil
	}

	if err := a.surface.Pause(ctx); err != nil {
		return fmt.Errorf("pause: %w", err)
	}

	return nil
}

// Hold starts a seek without a target yet, pausing the surface and withholding
// status ticks until the following Seek completes.
func (a *Adapter) Hold(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	a.mu.Lock()
	if a.sub == nil {
		a.mu.Unlock()
		return ErrNoSource
	}
	if a.seeking() {
		a.held = true
		a.mu.Unlock()
		return nil
	}
	a.held = true
	playing := a.shouldPlay
	a.mu.Unlock()

	if playing {
		if err := a.surface.Pause(ctx); err != nil {
			return fmt.Errorf("hold: %w", err)
		}
	}

	return nil
}

// Seek moves to pos clamped to [0, Duration] and returns the position actually requested.
// The upper bound applies only once the duration is known.
func (a *Adapter) Seek(ctx context.Context, pos time.Duration) (time.Duration, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	a.mu.Lock()
	if a.sub == nil {
		a.mu.Unlock()
		return 0, ErrNoSource
	}

	target := max(pos, 0)
	if a.status.Duration > 0 {
		target = util.Clamp(pos, 0, a.status.Duration)
	}

	first := !a.seeking()
	a.seeks++
	a.held = false
	playing := a.shouldPlay
	a.mu.Unlock()

	if first && playing {
		if err := a.surface.Pause(ctx); err != nil {
			a.endSeek()
			return 0, fmt.Errorf("seek: %w", err)
		}
	}

	err := a.surface.Seek(ctx, target)

	a.mu.Lock()
	last := a.seeks == 1 && !a.held
	resume := last && a.shouldPlay
	if err == nil {
		a.status.Position = target
		a.status.DidJustFinish = false
		a.floor = target
		a.target = target
		a.settling = true
		a.dropped = 0
	}
	if last {
		a.status.IsPlaying = resume
	}
	snapshot := a.status
	sub := a.sub
	a.mu.Unlock()

	if resume {
		if perr := a.surface.Play(ctx); perr != nil && err == nil {
			err = perr
		}
	}

	// deliver before releasing the seek so later ticks cannot overtake it
	if err == nil && last && sub != nil {
		sub.status(snapshot)
	}

	a.endSeek()

	if err != nil {
		return 0, fmt.Errorf("seek: %w", err)
	}

	return target, nil
}

func (a *Adapter) endSeek() {
	a.mu.Lock()
	if a.seeks > 0 {
		a.seeks--
	}
	a.mu.Unlock()
}

// SetRate accepts only values from Rates. On error the current rate is unchanged.
func (a *Adapter) SetRate(ctx context.Context, rate float64) error {
	if !ValidRate(rate) {
		return fmt.Errorf("%w: %v", ErrInvalidRate, rate)
	}

	if err := a.surface.SetRate(ctx, rate); err != nil {
		return fmt.Errorf("set rate: %w", err)
	}

	a.mu.Lock()
	a.rate = rate
	a.mu.Unlock()

	return nil
}

// SetVolume clamps volume to [0, 1].
func (a *Adapter) SetVolume(ctx context.Context, volume float64) error {
	volume = util.Clamp(volume, 0, 1)

	if err := a.surface.SetVolume(ctx, volume); err != nil {
		return fmt.Errorf("set volume: %w", err)
	}

	a.mu.Lock()
	a.volume = volume
	a.mu.Unlock()

	return nil
}

func (a *Adapter) SetSubtitle(ctx context.Context, uri string) error {
	if err := a.surface.SetSubtitle(ctx, uri); err != nil {
		return fmt.Errorf("set subtitle: %w", err)
	}

	return nil
}

// Status returns the latest snapshot.
func (a *Adapter) Status() Status {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.status
}

func (a *Adapter) Rate() float64 {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.rate
}

func (a *Adapter) Volume() float64 {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.volume
}

// ShouldPlay reports whether playback is requested, independent of the surface state.
func (a *Adapter) ShouldPlay() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.shouldPlay
}

// Close cancels the current subscription and closes the surface.
func (a *Adapter) Close() error {
	a.mu.Lock()
	sub := a.sub
	a.sub = nil
	a.mu.Unlock()

	if sub != nil {
		sub.Cancel()
	}

	return a.surface.Close()
}
