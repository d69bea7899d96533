package tui

import (
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/reelplay/reelplay/color"
	"github.com/reelplay/reelplay/controller"
	"github.com/reelplay/reelplay/device"
	"github.com/reelplay/reelplay/overlay"
)

const (
	// horizontalPadding is the margin on each side of the progress bar.
	horizontalPadding = 2

	// volumeStep and brightnessStep are applied per key press.
	volumeStep     = 0.1
	brightnessStep = 0.1
)

// statefulBubble is the player screen.
type statefulBubble struct {
	state  state
	keymap *statefulKeymap

	ctrl *controller.Controller
	hub  *device.BackHub

	// components
	spinnerC  spinner.Model
	progressC progress.Model
	helpC     help.Model

	// menu cursor, reset whenever another menu opens
	menu   overlay.Menu
	cursor int

	dragging bool

	width, height int
	now           func() time.Time
}

func newBubble(options *Options) *statefulBubble {
	keymap := newStatefulKeymap()

	b := &statefulBubble{
		keymap: keymap,
		ctrl:   options.Controller,
		hub:    options.Hub,
		now:    time.Now,
	}

	b.spinnerC = spinner.New()
	b.spinnerC.Spinner = spinner.Dot
	b.spinnerC.Style = lipgloss.NewStyle().Foreground(color.HiPurple)

	b.progressC = progress.New(
		progress.WithSolidFill(string(color.HiPurple)),
		progress.WithoutPercentage(),
	)

	b.helpC = help.New()

	b.sync()
	return b
}

// sync refreshes the derived screen state after the controller changed.
func (b *statefulBubble) sync() {
	v := b.ctrl.Snapshot()

	b.state = stateOf(v)
	b.keymap.setState(b.state)

	if v.Overlay.ActiveMenu != b.menu {
		b.menu = v.Overlay.ActiveMenu
		b.cursor = activeIndex(menuItems(v))
	}

	if v.Overlay.Locked {
		b.dragging = false
	}
}

// dispatch hands msg to the controller on the update loop.
func (b *statefulBubble) dispatch(msg tea.Msg) tea.Cmd {
	cmd := b.ctrl.Update(msg)
	b.sync()
	return cmd
}

func (b *statefulBubble) resize(width, height int) {
	b.width = width
	b.height = height

	b.progressC.Width = max(width-2*horizontalPadding, 0)
	b.helpC.Width = width
}

// progressRow is the terminal row holding the progress bar.
func (b *statefulBubble) progressRow() int {
	return b.height - 3
}

// zoneAt maps a column onto the left, middle or right third of the screen.
func (b *statefulBubble) zoneAt(x int) controller.Zone {
	if b.width <= 0 {
		return controller.ZoneMiddle
	}

	switch third := x * 3 / b.width; {
	case third <= 0:
		return controller.ZoneLeft
	case third >= 2:
		return controller.ZoneRight
	default:
		return controller.ZoneMiddle
	}
}

// positionAt maps a column on the progress bar onto a media position.
func (b *statefulBubble) positionAt(x int, duration time.Duration) time.Duration {
	width := b.progressC.Width
	if width <= 0 || duration <= 0 {
		return 0
	}

	offset := min(max(x-horizontalPadding, 0), width)
	return time.Duration(float64(duration) * float64(offset) / float64(width))
}
