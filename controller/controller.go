// Package controller is the media playback controller. It owns the overlay state, turns
// gestures into engine commands, persists watch progress and coordinates device resources.
//
// The controller follows the bubbletea model: Update is called from a single loop and
// returns commands; all blocking work happens inside those commands. Events pushed by the
// engine and the connectivity observer are delivered through a Sender, which *tea.Program
// satisfies.
package controller

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/google/uuid"
	"github.com/reelplay/reelplay/device"
	"github.com/reelplay/reelplay/engine"
	"github.com/reelplay/reelplay/gesture"
	"github.com/reelplay/reelplay/history"
	"github.com/reelplay/reelplay/log"
	"github.com/reelplay/reelplay/network"
	"github.com/reelplay/reelplay/overlay"
	"github.com/samber/mo"
	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"
)

// releaseTimeout bounds giving device resources back on unmount.
const releaseTimeout = 2 * time.Second

// Sender delivers messages into the update loop from other goroutines.
type Sender interface {
	Send(msg tea.Msg)
}

// Scheduler returns a command that yields msg after d.
type Scheduler func(d time.Duration, msg tea.Msg) tea.Cmd

// Tick is the default Scheduler.
func Tick(d time.Duration, msg tea.Msg) tea.Cmd {
	return tea.Tick(d, func(time.Time) tea.Msg {
		return msg
	})
}

// Deps are the collaborators of a controller. Store, Resources and Network are optional.
type Deps struct {
	Surface   engine.Surface
	Store     history.Store
	Resources device.Resources
	Network   network.Observer
	Sender    Sender
	Schedule  Scheduler
	Now       func() time.Time
}

// Controller is not safe for concurrent use; call it only from the update loop.
type Controller struct {
	opts Options
	cfg  Config
	deps Deps

	adapter *engine.Adapter
	vis     *overlay.Visibility
	taps    *gesture.Disambiguator
	claim   *device.Claim
	log     *logrus.Entry

	ctx    context.Context
	cancel context.CancelFunc

	sub       *engine.Subscription
	netCancel func()

	load       uint64
	status     engine.Status
	loading    bool
	err        error
	completed  bool
	notified   bool
	seekTarget mo.Option[time.Duration]

	rate       float64
	quality    string
	subtitle   int
	volume     float64
	brightness float64
	caps       device.Capabilities

	pulse     mo.Option[gesture.Side]
	pulseGen  uint64
	banner    string
	bannerGen uint64
	offline   bool

	persistGen uint64
	storeLog   rate.Sometimes

	unmounted bool
	closed    bool
}

// New prepares a controller. Nothing happens until Init is called.
func New(opts Options, cfg Config, deps Deps) *Controller {
	if deps.Schedule == nil {
		deps.Schedule = Tick
	}
	if deps.Now == nil {
		deps.Now = time.Now
	}

	ctx, cancel := context.WithCancel(context.Background())

	c := &Controller{
		opts:     opts,
		cfg:      cfg,
		deps:     deps,
		adapter:  engine.NewAdapter(deps.Surface),
		vis:      overlay.New(cfg.HideControlsAfter),
		taps:     gesture.New(cfg.DoubleTapWindow, cfg.Policy),
		ctx:      ctx,
		cancel:   cancel,
		rate:     1,
		quality:  Qualities[0],
		subtitle: -1,
		volume:   1,
		loading:  true,
		storeLog: rate.Sometimes{First: 1, Interval: time.Minute},
		log: log.With(logrus.Fields{
			"session": uuid.NewString(),
			"uri":     opts.Source.URI,
		}),
	}

	if deps.Resources != nil {
		c.claim = device.NewClaim(deps.Resources, c.onBack)
	}

	return c
}

// onBack runs on the back dispatcher, outside the update loop.
func (c *Controller) onBack() bool {
	if c.deps.Sender != nil {
		c.deps.Sender.Send(BackMsg{})
	}
	return true
}

// Init mounts the player: loads the source, claims the device, arms the overlay
// countdown and starts the persistence loop.
func (c *Controller) Init() tea.Cmd {
	c.log.Info("mounting player")

	return tea.Batch(
		c.schedule(c.vis.Start()),
		c.mount(),
		c.acquire(),
		c.watchNetwork(),
		c.persistLater(),
	)
}

// Unmounted reports whether Unmount has run.
func (c *Controller) Unmounted() bool {
	return c.unmounted
}

// Unmount stops every timer, cancels subscriptions and in-flight work and releases the
// device claim. Each step runs even if an earlier one fails. It is idempotent and all
// messages received afterwards are dropped.
//
// Releasing the claim may block on the device, so Unmount must not be called from the
// update loop. The loop closes the player with CloseMsg instead.
func (c *Controller) Unmount() {
	c.teardown()
	c.release()
}

func (c *Controller) teardown() {
	if c.unmounted {
		return
	}
	c.unmounted = true

	c.vis.Stop()
	c.taps.Reset()
	c.persistGen++
	c.pulseGen++
	c.bannerGen++
	c.load++

	if c.sub != nil {
		c.sub.Cancel()
		c.sub = nil
	}

	if c.netCancel != nil {
		c.netCancel()
		c.netCancel = nil
	}

	c.cancel()

	c.log.Info("player unmounted")
}

// release is safe to call from any goroutine; the claim releases once.
func (c *Controller) release() {
	if c.claim == nil {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), releaseTimeout)
	defer cancel()

	if err := c.claim.Release(ctx); err != nil {
		c.log.WithError(err).Warn("releasing device resources")
	}
}

// close tears the player down on the loop and releases the device in a command.
// The host is notified once the release has finished.
func (c *Controller) close() tea.Cmd {
	c.teardown()

	if c.closed {
		return nil
	}
	c.closed = true

	return func() tea.Msg {
		c.release()
		return releasedMsg{}
	}
}

func (c *Controller) onReleased() tea.Cmd {
	if c.opts.OnClose != nil {
		c.opts.OnClose()
	}

	return func() tea.Msg {
		return ClosedMsg{}
	}
}

// Snapshot copies the state needed for rendering.
func (c *Controller) Snapshot() View {
	return View{
		Title:             c.opts.Title,
		Status:            c.status,
		Overlay:           c.vis.State(),
		Loading:           c.loading,
		Err:               c.err,
		Rate:              c.rate,
		Quality:           c.quality,
		Subtitles:         c.opts.Subtitles,
		Subtitle:          c.subtitle,
		Volume:            c.volume,
		Brightness:        c.brightness,
		OrientationLocked: c.caps.Orientation,
		BrightnessEnabled: c.caps.Brightness,
		Pulse:             c.pulse,
		SkipStep:          c.cfg.SkipStep,
		Banner:            c.banner,
		Offline:           c.offline,
	}
}

func (c *Controller) schedule(s mo.Option[overlay.Schedule]) tea.Cmd {
	sched, ok := s.Get()
	if !ok {
		return nil
	}

	return c.deps.Schedule(sched.After, hideTickMsg{gen: sched.Gen})
}

func (c *Controller) persistLater() tea.Cmd {
	if c.deps.Store == nil {
		return nil
	}

	return c.deps.Schedule(c.cfg.PersistInterval, persistTickMsg{gen: c.persistGen})
}

// position is where playback is, or is about to be once the pending seek lands.
func (c *Controller) position() time.Duration {
	if target, ok := c.seekTarget.Get(); ok {
		return target
	}
	return c.status.Position
}
