package tui

import (
	"github.com/charmbracelet/bubbles/key"
	"github.com/reelplay/reelplay/color"
	"github.com/reelplay/reelplay/style"
)

// statefulKeymap defines the keyboard interactions available on each screen.
type statefulKeymap struct {
	state state

	quit, forceQuit,
	back, confirm,
	up, down,
	playPause, skipBack, skipForward,
	slower, faster,
	speed, quality, subtitles, settings,
	lock, unlock,
	volumeUp, volumeDown,
	brighter, dimmer,
	retry, restart,
	showHelp key.Binding
}

func (k *statefulKeymap) setState(newState state) {
	k.state = newState
}

func newStatefulKeymap() *statefulKeymap {
	return &statefulKeymap{
		quit: key.NewBinding(
			key.WithKeys("q"),
			key.WithHelp("q", "quit"),
		),
		forceQuit: key.NewBinding(
			key.WithKeys("ctrl+c", "ctrl+d"),
			key.WithHelp("ctrl+c", "quit"),
		),
		back: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "back"),
		),
		confirm: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "select"),
		),
		up: key.NewBinding(
			key.WithKeys("up", "k"),
			key.WithHelp("↑", "up"),
		),
		down: key.NewBinding(
			key.WithKeys("down", "j"),
			key.WithHelp("↓", "down"),
		),
		playPause: key.NewBinding(
			key.WithKeys(" "),
			key.WithHelp(style.Fg(color.HiPurple)("space"), style.Fg(color.HiPurple)("play/pause")),
		),
		skipBack: key.NewBinding(
			key.WithKeys("left", "h"),
			key.WithHelp("←", "-10s"),
		),
		skipForward: key.NewBinding(
			key.WithKeys("right", "l"),
			key.WithHelp("→", "+10s"),
		),
		slower: key.NewBinding(
			key.WithKeys(","),
			key.WithHelp(",", "slower"),
		),
		faster: key.NewBinding(
			key.WithKeys("."),
			key.WithHelp(".", "faster"),
		),
		speed: key.NewBinding(
			key.WithKeys("s"),
			key.WithHelp("s", "speed"),
		),
		quality: key.NewBinding(
			key.WithKeys("v"),
			key.WithHelp("v", "quality"),
		),
		subtitles: key.NewBinding(
			key.WithKeys("c"),
			key.WithHelp("c", "subtitles"),
		),
		settings: key.NewBinding(
			key.WithKeys("o"),
			key.WithHelp("o", "settings"),
		),
		lock: key.NewBinding(
			key.WithKeys("L"),
			key.WithHelp("L", "lock"),
		),
		unlock: key.NewBinding(
			key.WithKeys("L"),
			key.WithHelp(style.Fg(color.HiPurple)("L"), style.Fg(color.HiPurple)("unlock")),
		),
		volumeUp: key.NewBinding(
			key.WithKeys("+", "="),
			key.WithHelp("+", "volume up"),
		),
		volumeDown: key.NewBinding(
			key.WithKeys("-"),
			key.WithHelp("-", "volume down"),
		),
		brighter: key.NewBinding(
			key.WithKeys("]"),
			key.WithHelp("]", "brighter"),
		),
		dimmer: key.NewBinding(
			key.WithKeys("["),
			key.WithHelp("[", "dimmer"),
		),
		retry: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "retry"),
		),
		restart: key.NewBinding(
			key.WithKeys("0"),
			key.WithHelp("0", "restart"),
		),
		showHelp: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "help"),
		),
	}
}

func (k *statefulKeymap) help() ([]key.Binding, []key.Binding) {
	h := func(bindings ...key.Binding) []key.Binding {
		return bindings
	}

	to2 := func(a []key.Binding) ([]key.Binding, []key.Binding) {
		return a, a
	}

	switch k.state {
	case loadingState:
		return to2(h(k.back, k.forceQuit))
	case errorState:
		return to2(h(k.retry, k.back, k.quit))
	case lockedState:
		return to2(h(k.unlock))
	case menuState:
		return to2(h(k.up, k.down, k.confirm, k.back))
	case playerState:
		return h(k.playPause, k.skipBack, k.skipForward, k.settings, k.showHelp),
			h(k.playPause, k.skipBack, k.skipForward, k.slower, k.faster, k.speed, k.quality, k.subtitles, k.settings,
				k.volumeDown, k.volumeUp, k.dimmer, k.brighter, k.lock, k.restart, k.back, k.quit)
	default:
		return to2(h())
	}
}

func (k *statefulKeymap) ShortHelp() []key.Binding {
	short, _ := k.help()
	return short
}

func (k *statefulKeymap) FullHelp() [][]key.Binding {
	_, full := k.help()
	return [][]key.Binding{full}
}
