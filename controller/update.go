package controller

import (
	"context"
	"errors"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/reelplay/reelplay/engine"
	"github.com/reelplay/reelplay/gesture"
	"github.com/reelplay/reelplay/metrics"
	"github.com/reelplay/reelplay/overlay"
	"github.com/reelplay/reelplay/util"
	"github.com/samber/mo"
)

// Update applies msg and returns the follow-up work. Messages arriving after Unmount are dropped.
func (c *Controller) Update(msg tea.Msg) tea.Cmd {
	if c.unmounted {
		if _, ok := msg.(releasedMsg); ok {
			return c.onReleased()
		}
		c.discard(msg)
		return nil
	}

	switch msg := msg.(type) {
	case statusMsg:
		return c.onStatus(msg)
	case engineErrMsg:
		c.onEngineError(msg)
	case mountedMsg:
		c.onMounted(msg)
	case seekDoneMsg:
		return c.onSeekDone(msg)
	case claimedMsg:
		c.onClaimed(msg)
	case watchingMsg:
		c.netCancel = msg.cancel
	case connectivityMsg:
		return c.onConnectivity(msg.online)
	case persistedMsg:
		c.onPersisted(msg.err)
	case rateMsg:
		c.onRate(msg)
	case opErrMsg:
		if msg.err != nil && !errors.Is(msg.err, context.Canceled) {
			c.log.WithError(msg.err).Warn(msg.op)
		}

	case hideTickMsg:
		c.vis.Expire(msg.gen)
	case persistTickMsg:
		return c.onPersistTick(msg.gen)
	case pulseTickMsg:
		if msg.gen == c.pulseGen {
			c.pulse = mo.None[gesture.Side]()
		}
	case bannerTickMsg:
		if msg.gen == c.bannerGen {
			c.banner = ""
		}
	case settleTickMsg:
		if c.taps.Settle(msg.gen) {
			return c.schedule(c.vis.Toggle())
		}

	case TapMsg:
		return c.onTap(msg)
	case TogglePlayMsg:
		return c.togglePlay()
	case SkipMsg:
		return c.skip(msg.Forward)
	case ScrubStartMsg:
		if !c.vis.BeginSeek(msg.Position) {
			return nil
		}
		return c.hold()
	case ScrubMoveMsg:
		c.vis.MoveSeek(msg.Position)
	case ScrubEndMsg:
		if !c.vis.State().Seeking {
			return nil
		}
		return tea.Batch(c.schedule(c.vis.EndSeek()), c.seek(msg.Position, "scrub"))
	case OpenMenuMsg:
		c.vis.OpenMenu(msg.Menu)
	case CloseMenuMsg:
		return c.schedule(c.vis.CloseMenu())
	case SelectRateMsg:
		return tea.Batch(c.setRate(msg.Rate), c.schedule(c.vis.CloseMenu()))
	case SelectQualityMsg:
		c.quality = msg.Quality
		return c.schedule(c.vis.CloseMenu())
	case SelectSubtitleMsg:
		return c.selectSubtitle(msg.Index)
	case SetVolumeMsg:
		c.volume = util.Clamp(msg.Volume, 0, 1)
		return tea.Batch(c.setVolume(c.volume), c.schedule(c.vis.Refresh()))
	case SetBrightnessMsg:
		if !c.caps.Brightness {
			return nil
		}
		c.brightness = util.Clamp(msg.Brightness, 0, 1)
		return tea.Batch(c.setBrightness(c.brightness), c.schedule(c.vis.Refresh()))
	case LockMsg:
		c.taps.Reset()

		// a scrub interrupted by the lock still lands where it was dragged
		var release tea.Cmd
		if st := c.vis.State(); msg.Locked && st.Seeking {
			release = c.seek(st.SeekPreview, "scrub")
		}
		return tea.Batch(release, c.schedule(c.vis.SetLocked(msg.Locked)))
	case BackMsg:
		if c.vis.State().ActiveMenu != overlay.None {
			return c.schedule(c.vis.CloseMenu())
		}
		return c.close()
	case CloseMsg:
		return c.close()
	case RetryMsg:
		return c.retry()
	case RestartMsg:
		return c.restart()
	}

	return nil
}

// discard cancels subscriptions that complete after unmount.
func (c *Controller) discard(msg tea.Msg) {
	switch msg := msg.(type) {
	case mountedMsg:
		if msg.sub != nil {
			msg.sub.Cancel()
		}
	case watchingMsg:
		if msg.cancel != nil {
			msg.cancel()
		}
	}
}

func (c *Controller) onStatus(msg statusMsg) tea.Cmd {
	if msg.load != c.load {
		return nil
	}

	st := msg.status
	c.status = st
	c.status.DidJustFinish = false
	if st.IsLoaded {
		c.loading = false
	}

	if !st.DidJustFinish {
		return nil
	}

	c.completed = true
	c.log.Info("playback finished")
	if c.opts.OnComplete != nil && !c.notified {
		c.notified = true
		c.opts.OnComplete()
	}

	return c.schedule(c.vis.Touch())
}

func (c *Controller) onEngineError(msg engineErrMsg) {
	if msg.load != c.load {
		return
	}

	metrics.EngineErrors.WithLabelValues(errorKind(msg.err)).Inc()

	if !engine.Terminal(msg.err) {
		c.log.WithError(msg.err).Warn("playback error")
		return
	}

	c.log.WithError(msg.err).Error("playback failed")
	c.err = msg.err
	c.loading = false
}

func (c *Controller) onMounted(msg mountedMsg) {
	if msg.load != c.load {
		if msg.sub != nil {
			msg.sub.Cancel()
		}
		return
	}

	if msg.err != nil {
		if errors.Is(msg.err, context.Canceled) {
			return
		}
		metrics.EngineErrors.WithLabelValues(errorKind(msg.err)).Inc()
		c.log.WithError(msg.err).Error("loading source")
		c.err = msg.err
		c.loading = false
		return
	}

	c.sub = msg.sub
	c.err = nil
	c.loading = false
	c.log.Debug("source loaded")
}

func (c *Controller) onSeekDone(msg seekDoneMsg) tea.Cmd {
	if msg.load != c.load {
		return nil
	}

	// a newer seek keeps its own target
	if target, ok := c.seekTarget.Get(); ok && target == msg.requested {
		c.seekTarget = mo.None[time.Duration]()
	}

	if msg.err != nil {
		if !errors.Is(msg.err, context.Canceled) {
			c.log.WithError(msg.err).Warnf("%s seek", msg.origin)
		}
		return nil
	}

	metrics.Seeks.WithLabelValues(msg.origin).Inc()
	c.completed = false

	return c.schedule(c.vis.Refresh())
}

func (c *Controller) onClaimed(msg claimedMsg) {
	if msg.err != nil {
		c.log.WithError(msg.err).Warn("device controls degraded")
	}

	c.caps = msg.caps
	if c.caps.Brightness {
		c.brightness = c.caps.InitialBrightness
	}
}

func (c *Controller) onConnectivity(online bool) tea.Cmd {
	if !online {
		c.offline = true
		c.bannerGen++
		c.banner = BannerOffline
		c.log.Warn("connection lost")
		return nil
	}

	if !c.offline {
		return nil
	}

	c.offline = false
	c.bannerGen++
	c.banner = BannerRestored
	c.log.Info("connection restored")

	return c.deps.Schedule(c.cfg.RestoredBanner, bannerTickMsg{gen: c.bannerGen})
}

func (c *Controller) onPersistTick(gen uint64) tea.Cmd {
	if gen != c.persistGen || c.deps.Store == nil {
		return nil
	}

	return tea.Batch(c.persist(), c.persistLater())
}

func (c *Controller) onPersisted(err error) {
	if err == nil {
		metrics.HistoryWrites.WithLabelValues("ok").Inc()
		return
	}

	metrics.HistoryWrites.WithLabelValues("error").Inc()

	if errors.Is(err, context.Canceled) {
		return
	}

	c.storeLog.Do(func() {
		c.log.WithError(err).Warn("saving watch progress")
	})
}

func (c *Controller) onRate(msg rateMsg) {
	if msg.err != nil {
		metrics.EngineErrors.WithLabelValues(errorKind(msg.err)).Inc()
		c.log.WithError(msg.err).Warn("changing playback speed")
		return
	}

	c.rate = msg.rate
}

func (c *Controller) onTap(msg TapMsg) tea.Cmd {
	if c.vis.State().Locked {
		return nil
	}

	if msg.Zone == ZoneMiddle {
		return c.schedule(c.vis.Toggle())
	}

	side := gesture.Left
	if msg.Zone == ZoneRight {
		side = gesture.Right
	}

	res := c.taps.Tap(gesture.Event{Side: side, At: msg.At})

	switch {
	case res.Kind == gesture.DoubleTap:
		metrics.DoubleTaps.WithLabelValues(res.Side.String()).Inc()
		return c.skip(res.Side == gesture.Right)
	case res.Pending:
		return c.deps.Schedule(c.taps.Window(), settleTickMsg{gen: res.Gen})
	}

	return nil
}

// skip seeks one step from the pending target, or from the current position,
// clamped to the known duration, and pulses the side it went.
func (c *Controller) skip(forward bool) tea.Cmd {
	var (
		side   = gesture.Left
		target = c.position() - c.cfg.SkipStep
	)

	if forward {
		side = gesture.Right
		target = c.position() + c.cfg.SkipStep
	}

	target = max(target, 0)
	if c.status.Duration > 0 {
		target = min(target, c.status.Duration)
	}

	c.pulse = mo.Some(side)
	c.pulseGen++

	return tea.Batch(
		c.seek(target, "skip"),
		c.deps.Schedule(c.cfg.SkipPulse, pulseTickMsg{gen: c.pulseGen}),
	)
}

func (c *Controller) togglePlay() tea.Cmd {
	cmd := c.schedule(c.vis.Refresh())

	if c.adapter.ShouldPlay() {
		return tea.Batch(cmd, c.pause())
	}

	if c.completed {
		return tea.Batch(cmd, c.restart())
	}

	return tea.Batch(cmd, c.play())
}

// restart seeks to the beginning and plays once the seek has landed.
func (c *Controller) restart() tea.Cmd {
	c.seekTarget = mo.Some(time.Duration(0))
	c.completed = false

	ctx, adapter, load := c.ctx, c.adapter, c.load
	return func() tea.Msg {
		target, err := adapter.Seek(ctx, 0)
		if err == nil {
			err = adapter.Play(ctx)
		}
		return seekDoneMsg{load: load, origin: "restart", requested: 0, target: target, err: err}
	}
}

func (c *Controller) selectSubtitle(index int) tea.Cmd {
	uri := ""
	if index >= 0 && index < len(c.opts.Subtitles) {
		uri = c.opts.Subtitles[index].URI
	} else {
		index = -1
	}

	c.subtitle = index
	return tea.Batch(c.setSubtitle(uri), c.schedule(c.vis.CloseMenu()))
}

// retry reloads the source after a terminal error under a new load generation.
func (c *Controller) retry() tea.Cmd {
	if c.err == nil {
		return nil
	}

	c.log.Info("retrying source")

	c.load++
	c.err = nil
	c.loading = true
	c.completed = false
	c.notified = false
	c.status = engine.Status{}
	c.seekTarget = mo.None[time.Duration]()

	if c.sub != nil {
		c.sub.Cancel()
		c.sub = nil
	}

	return c.mount()
}
