package tui

import (
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/reelplay/reelplay/controller"
	"github.com/reelplay/reelplay/overlay"
)

func (b *statefulBubble) handleKey(msg tea.KeyMsg) tea.Cmd {
	var (
		k = b.keymap
		v = b.ctrl.Snapshot()
	)

	switch {
	case key.Matches(msg, k.forceQuit):
		return b.dispatch(controller.CloseMsg{})
	case key.Matches(msg, k.back):
		return b.pressBack()
	}

	switch b.state {
	case lockedState:
		if key.Matches(msg, k.unlock) {
			return b.dispatch(controller.LockMsg{Locked: false})
		}
		return nil
	case menuState:
		return b.handleMenuKey(msg, v)
	case errorState, loadingState:
		switch {
		case key.Matches(msg, k.retry):
			return b.dispatch(controller.RetryMsg{})
		case key.Matches(msg, k.quit):
			return b.dispatch(controller.CloseMsg{})
		}
		return nil
	}

	switch {
	case key.Matches(msg, k.quit):
		return b.dispatch(controller.CloseMsg{})
	case key.Matches(msg, k.showHelp):
		b.helpC.ShowAll = !b.helpC.ShowAll
	case key.Matches(msg, k.playPause):
		return b.dispatch(controller.TogglePlayMsg{})
	case key.Matches(msg, k.skipBack):
		return b.dispatch(controller.SkipMsg{Forward: false})
	case key.Matches(msg, k.skipForward):
		return b.dispatch(controller.SkipMsg{Forward: true})
	case key.Matches(msg, k.slower), key.Matches(msg, k.faster):
		rate := adjacentRate(v.Rate, key.Matches(msg, k.faster))
		if rate == v.Rate {
			return nil
		}
		return b.dispatch(controller.SelectRateMsg{Rate: rate})
	case key.Matches(msg, k.speed):
		return b.dispatch(controller.OpenMenuMsg{Menu: overlay.Speed})
	case key.Matches(msg, k.quality):
		return b.dispatch(controller.OpenMenuMsg{Menu: overlay.Quality})
	case key.Matches(msg, k.subtitles):
		return b.dispatch(controller.OpenMenuMsg{Menu: overlay.Subtitle})
	case key.Matches(msg, k.settings):
		return b.dispatch(controller.OpenMenuMsg{Menu: overlay.Settings})
	case key.Matches(msg, k.lock):
		return b.dispatch(controller.LockMsg{Locked: true})
	case key.Matches(msg, k.volumeUp):
		return b.dispatch(controller.SetVolumeMsg{Volume: v.Volume + volumeStep})
	case key.Matches(msg, k.volumeDown):
		return b.dispatch(controller.SetVolumeMsg{Volume: v.Volume - volumeStep})
	case key.Matches(msg, k.brighter):
		return b.dispatch(controller.SetBrightnessMsg{Brightness: v.Brightness + brightnessStep})
	case key.Matches(msg, k.dimmer):
		return b.dispatch(controller.SetBrightnessMsg{Brightness: v.Brightness - brightnessStep})
	case key.Matches(msg, k.restart):
		return b.dispatch(controller.RestartMsg{})
	}

	return nil
}

func (b *statefulBubble) handleMenuKey(msg tea.KeyMsg, v controller.View) tea.Cmd {
	items := menuItems(v)
	if len(items) == 0 {
		return nil
	}

	switch {
	case key.Matches(msg, b.keymap.up):
		b.cursor = (b.cursor - 1 + len(items)) % len(items)
	case key.Matches(msg, b.keymap.down):
		b.cursor = (b.cursor + 1) % len(items)
	case key.Matches(msg, b.keymap.confirm):
		return b.dispatch(items[min(b.cursor, len(items)-1)].msg)
	}

	return nil
}

// pressBack runs the back handlers off the update loop because they send into the program.
// Without a handler taking it, back closes the player.
func (b *statefulBubble) pressBack() tea.Cmd {
	hub := b.hub
	return func() tea.Msg {
		if hub != nil && hub.Press() {
			return nil
		}
		return controller.BackMsg{}
	}
}

// handleMouse turns clicks into taps on the thirds of the screen and drags on the
// progress row into a scrub.
func (b *statefulBubble) handleMouse(msg tea.MouseMsg) tea.Cmd {
	v := b.ctrl.Snapshot()
	duration := v.Status.Duration

	if b.dragging {
		switch msg.Action {
		case tea.MouseActionMotion:
			return b.dispatch(controller.ScrubMoveMsg{Position: b.positionAt(msg.X, duration)})
		case tea.MouseActionRelease:
			b.dragging = false
			return b.dispatch(controller.ScrubEndMsg{Position: b.positionAt(msg.X, duration)})
		}
		return nil
	}

	if msg.Action != tea.MouseActionPress || msg.Button != tea.MouseButtonLeft {
		return nil
	}

	// only the centered unlock control answers while locked
	if b.state == lockedState {
		if b.zoneAt(msg.X) == controller.ZoneMiddle {
			return b.dispatch(controller.LockMsg{Locked: false})
		}
		return nil
	}

	if b.state == playerState && v.Overlay.ShowControls && msg.Y == b.progressRow() && duration > 0 {
		b.dragging = true
		return b.dispatch(controller.ScrubStartMsg{Position: b.positionAt(msg.X, duration)})
	}

	return b.dispatch(controller.TapMsg{Zone: b.zoneAt(msg.X), At: b.now()})
}
