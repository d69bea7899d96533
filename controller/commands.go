package controller

import (
	"context"
	"errors"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/reelplay/reelplay/engine"
	"github.com/reelplay/reelplay/history"
	"github.com/reelplay/reelplay/metrics"
	"github.com/samber/mo"
)

// mount loads the source, restores the saved position with at most one seek and then
// starts playback if requested. A saved position wins over Source.StartAt.
func (c *Controller) mount() tea.Cmd {
	var (
		ctx      = c.ctx
		load     = c.load
		adapter  = c.adapter
		store    = c.deps.Store
		sender   = c.deps.Sender
		src      = c.opts.Source
		autoplay = c.opts.AutoPlay
		logger   = c.log
	)

	return func() tea.Msg {
		sub, err := adapter.Load(ctx, src, engine.Handlers{
			OnStatus: func(st engine.Status) {
				if sender != nil {
					sender.Send(statusMsg{load: load, status: st})
				}
			},
			OnError: func(err error) {
				if sender != nil {
					sender.Send(engineErrMsg{load: load, err: err})
				}
			},
		})
		if err != nil {
			return mountedMsg{load: load, err: err}
		}

		var (
			start  = src.StartAt
			origin = "start"
		)

		if store != nil {
			saved, err := store.Get(ctx, src.URI)
			if err != nil {
				logger.WithError(err).Warn("reading watch history")
			} else if entry, ok := saved.Get(); ok && entry.PositionMillis > 0 {
				start = entry.Position()
				origin = "resume"
			}
		}

		if start > 0 {
			if _, err := adapter.Seek(ctx, start); err != nil {
				logger.WithError(err).Warnf("initial seek to %s", start)
			} else {
				metrics.Seeks.WithLabelValues(origin).Inc()
			}
		}

		if autoplay {
			if err := adapter.Play(ctx); err != nil {
				logger.WithError(err).Warn("autoplay")
			}
		}

		return mountedMsg{load: load, sub: sub}
	}
}

func (c *Controller) acquire() tea.Cmd {
	if c.claim == nil {
		return nil
	}

	ctx, claim := c.ctx, c.claim
	return func() tea.Msg {
		caps, err := claim.Acquire(ctx)
		return claimedMsg{caps: caps, err: err}
	}
}

// watchNetwork subscribes off the update loop because the observer may deliver synchronously.
func (c *Controller) watchNetwork() tea.Cmd {
	if c.deps.Network == nil || c.deps.Sender == nil {
		return nil
	}

	observer, sender := c.deps.Network, c.deps.Sender
	return func() tea.Msg {
		cancel := observer.Subscribe(func(online bool) {
			sender.Send(connectivityMsg{online: online})
		})
		return watchingMsg{cancel: cancel}
	}
}

// seek moves to pos and reports the landed position. origin labels the seek in metrics.
func (c *Controller) seek(pos time.Duration, origin string) tea.Cmd {
	c.seekTarget = mo.Some(pos)

	ctx, adapter, load := c.ctx, c.adapter, c.load
	return func() tea.Msg {
		target, err := adapter.Seek(ctx, pos)
		return seekDoneMsg{load: load, origin: origin, requested: pos, target: target, err: err}
	}
}

func (c *Controller) play() tea.Cmd {
	ctx, adapter := c.ctx, c.adapter
	return func() tea.Msg {
		if err := adapter.Play(ctx); err != nil {
			return opErrMsg{op: "play", err: err}
		}
		return nil
	}
}

func (c *Controller) pause() tea.Cmd {
	ctx, adapter := c.ctx, c.adapter
	return func() tea.Msg {
		if err := adapter.Pause(ctx); err != nil {
			return opErrMsg{op: "pause", err: err}
		}
		return nil
	}
}

func (c *Controller) hold() tea.Cmd {
	ctx, adapter := c.ctx, c.adapter
	return func() tea.Msg {
		if err := adapter.Hold(ctx); err != nil {
			return opErrMsg{op: "hold", err: err}
		}
		return nil
	}
}

func (c *Controller) setRate(rate float64) tea.Cmd {
	ctx, adapter := c.ctx, c.adapter
	return func() tea.Msg {
		return rateMsg{rate: rate, err: adapter.SetRate(ctx, rate)}
	}
}

func (c *Controller) setVolume(volume float64) tea.Cmd {
	ctx, adapter := c.ctx, c.adapter
	return func() tea.Msg {
		if err := adapter.SetVolume(ctx, volume); err != nil {
			return opErrMsg{op: "volume", err: err}
		}
		return nil
	}
}

func (c *Controller) setSubtitle(uri string) tea.Cmd {
	ctx, adapter := c.ctx, c.adapter
	return func() tea.Msg {
		if err := adapter.SetSubtitle(ctx, uri); err != nil {
			return opErrMsg{op: "subtitle", err: err}
		}
		return nil
	}
}

func (c *Controller) setBrightness(v float64) tea.Cmd {
	ctx, res := c.ctx, c.deps.Resources
	return func() tea.Msg {
		if err := res.SetBrightness(ctx, v); err != nil {
			return opErrMsg{op: "brightness", err: err}
		}
		return nil
	}
}

func (c *Controller) persist() tea.Cmd {
	st := c.adapter.Status()
	if st.Position <= 0 || st.Duration <= 0 {
		return nil
	}

	var (
		ctx   = c.ctx
		store = c.deps.Store
		uri   = c.opts.Source.URI
		entry = history.NewEntry(uri, c.opts.Title, st.Position, st.Duration, c.deps.Now())
	)

	return func() tea.Msg {
		return persistedMsg{err: store.Set(ctx, uri, entry)}
	}
}

// errorKind labels engine errors for metrics.
func errorKind(err error) string {
	switch {
	case errors.Is(err, engine.ErrDecodeFailure):
		return "decode"
	case errors.Is(err, engine.ErrUnresolvable):
		return "unresolvable"
	case errors.Is(err, engine.ErrInvalidRate):
		return "rate"
	case errors.Is(err, context.Canceled):
		return "canceled"
	default:
		return "other"
	}
}
