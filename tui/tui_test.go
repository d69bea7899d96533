package tui

import (
	"errors"
	"sync"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/reelplay/reelplay/controller"
	"github.com/reelplay/reelplay/engine"
	"github.com/reelplay/reelplay/engine/enginetest"
	"github.com/reelplay/reelplay/overlay"
	. "github.com/smartystreets/goconvey/convey"
)

func noTimers(time.Duration, tea.Msg) tea.Cmd {
	return nil
}

// rig drives a bubble synchronously; messages the controller pushes are delivered
// after the command that caused them.
type rig struct {
	b       *statefulBubble
	surface *enginetest.Surface

	mu    sync.Mutex
	inbox []tea.Msg
}

func (r *rig) Send(msg tea.Msg) {
	r.mu.Lock()
	r.inbox = append(r.inbox, msg)
	r.mu.Unlock()
}

func (r *rig) drain() []tea.Msg {
	r.mu.Lock()
	defer r.mu.Unlock()

	msgs := r.inbox
	r.inbox = nil
	return msgs
}

// settle runs cmd and feeds its messages back into the bubble until nothing is left.
func (r *rig) settle(cmd tea.Cmd) {
	queue := []tea.Cmd{cmd}

	deliver := func(msg tea.Msg) {
		_, next := r.b.Update(msg)
		queue = append(queue, next)
	}

	for len(queue) > 0 {
		next := queue[0]
		queue = queue[1:]
		if next == nil {
			continue
		}

		msg := next()
		for _, pushed := range r.drain() {
			deliver(pushed)
		}

		switch msg := msg.(type) {
		case nil:
		case tea.BatchMsg:
			queue = append(queue, msg...)
		default:
			deliver(msg)
		}
	}
}

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func newRig(openErr error, width, height int) *rig {
	r := &rig{surface: enginetest.NewSurface(100 * time.Second)}
	r.surface.OpenErr = openErr

	ctrl := controller.New(
		controller.Options{Source: engine.Source{URI: "a.mp4"}, Title: "Clip"},
		controller.DefaultConfig(),
		controller.Deps{Surface: r.surface, Sender: r, Schedule: noTimers},
	)

	r.b = newBubble(&Options{Controller: ctrl})
	r.b.resize(width, height)
	r.settle(ctrl.Init())

	return r
}

func TestBubble(t *testing.T) {
	Convey("Given a mounted player screen", t, func() {
		r := newRig(nil, 92, 30)
		b, surface := r.b, r.surface

		Convey("Then it should show the player", func() {
			So(b.state, ShouldEqual, playerState)
			So(b.View(), ShouldContainSubstring, "Clip")
		})

		Convey("When the speed menu is used from the keyboard", func() {
			r.settle(b.handleKey(runes("s")))
			So(b.state, ShouldEqual, menuState)
			So(b.cursor, ShouldEqual, 3)

			r.settle(b.handleKey(tea.KeyMsg{Type: tea.KeyDown}))
			r.settle(b.handleKey(tea.KeyMsg{Type: tea.KeyEnter}))

			Convey("Then the next rate should apply and the menu close", func() {
				v := b.ctrl.Snapshot()
				So(v.Rate, ShouldEqual, 1.25)
				So(v.Overlay.ActiveMenu, ShouldEqual, overlay.None)
				So(b.state, ShouldEqual, playerState)
			})
		})

		Convey("When speeding up past the last rate", func() {
			for range len(engine.Rates) {
				r.settle(b.handleKey(runes(".")))
			}

			Convey("Then it should stay at the fastest rate", func() {
				So(b.ctrl.Snapshot().Rate, ShouldEqual, 2.0)
				So(surface.Count("rate"), ShouldEqual, 4)
			})
		})

		Convey("When locked", func() {
			r.settle(b.handleKey(runes("L")))

			Convey("Then other keys should be ignored", func() {
				So(b.state, ShouldEqual, lockedState)
				So(b.handleKey(runes(" ")), ShouldBeNil)
				So(b.handleKey(runes("s")), ShouldBeNil)
			})

			Convey("And a side third is clicked", func() {
				r.settle(b.handleMouse(tea.MouseMsg{X: 5, Y: 10, Action: tea.MouseActionPress, Button: tea.MouseButtonLeft}))

				Convey("Then the player should stay locked", func() {
					So(b.state, ShouldEqual, lockedState)
					So(surface.Count("seek"), ShouldEqual, 0)
				})
			})

			Convey("And the centered control is clicked", func() {
				So(b.View(), ShouldContainSubstring, "click here to unlock")
				r.settle(b.handleMouse(tea.MouseMsg{X: 46, Y: 10, Action: tea.MouseActionPress, Button: tea.MouseButtonLeft}))

				Convey("Then the controls should be back", func() {
					So(b.state, ShouldEqual, playerState)
					So(b.ctrl.Snapshot().Overlay.Locked, ShouldBeFalse)
				})
			})

			Convey("And unlocked", func() {
				r.settle(b.handleKey(runes("L")))

				Convey("Then the controls should be back", func() {
					So(b.state, ShouldEqual, playerState)
					So(b.ctrl.Snapshot().Overlay.ShowControls, ShouldBeTrue)
				})
			})
		})

		Convey("When the progress bar is dragged", func() {
			row := b.progressRow()
			r.settle(b.handleMouse(tea.MouseMsg{X: horizontalPadding, Y: row, Action: tea.MouseActionPress, Button: tea.MouseButtonLeft}))
			r.settle(b.handleMouse(tea.MouseMsg{X: horizontalPadding + b.progressC.Width/2, Y: row, Action: tea.MouseActionMotion}))

			So(b.ctrl.Snapshot().Overlay.SeekPreview, ShouldEqual, 50*time.Second)

			r.settle(b.handleMouse(tea.MouseMsg{X: horizontalPadding + b.progressC.Width/2, Y: row, Action: tea.MouseActionRelease}))

			Convey("Then the player should seek to the release point", func() {
				So(surface.Count("seek"), ShouldEqual, 1)
				So(b.ctrl.Snapshot().Status.Position, ShouldEqual, 50*time.Second)
				So(b.dragging, ShouldBeFalse)
			})
		})

		Convey("When the middle third is clicked", func() {
			r.settle(b.handleMouse(tea.MouseMsg{X: 46, Y: 10, Action: tea.MouseActionPress, Button: tea.MouseButtonLeft}))

			Convey("Then the controls should hide", func() {
				So(b.ctrl.Snapshot().Overlay.ShowControls, ShouldBeFalse)
			})
		})

		Convey("When back is pressed without a back handler", func() {
			r.settle(b.handleKey(tea.KeyMsg{Type: tea.KeyEsc}))

			Convey("Then the player should be closed", func() {
				So(b.ctrl.Unmounted(), ShouldBeTrue)
			})
		})
	})

	Convey("Given a player whose source fails", t, func() {
		b := newRig(errors.New("gone"), 80, 24).b

		Convey("Then the error screen should show", func() {
			So(b.state, ShouldEqual, errorState)
			So(b.View(), ShouldContainSubstring, "Playback failed")
		})
	})
}

func TestLayout(t *testing.T) {
	Convey("Given a 90 column screen", t, func() {
		b := &statefulBubble{}
		b.resize(90, 20)

		Convey("Then columns should map onto thirds", func() {
			So(b.zoneAt(0), ShouldEqual, controller.ZoneLeft)
			So(b.zoneAt(29), ShouldEqual, controller.ZoneLeft)
			So(b.zoneAt(30), ShouldEqual, controller.ZoneMiddle)
			So(b.zoneAt(59), ShouldEqual, controller.ZoneMiddle)
			So(b.zoneAt(60), ShouldEqual, controller.ZoneRight)
		})

		Convey("Then the progress bar should map onto the duration", func() {
			So(b.positionAt(0, time.Minute), ShouldEqual, time.Duration(0))
			So(b.positionAt(horizontalPadding+43, 86*time.Second), ShouldEqual, 43*time.Second)
			So(b.positionAt(200, time.Minute), ShouldEqual, time.Minute)
			So(b.progressRow(), ShouldEqual, 17)
		})
	})

	Convey("Given the rate steps", t, func() {
		So(adjacentRate(1, true), ShouldEqual, 1.25)
		So(adjacentRate(0.25, false), ShouldEqual, 0.25)
		So(adjacentRate(3, true), ShouldEqual, 1.0)
		So(rateLabel(1), ShouldEqual, "Normal")
		So(rateLabel(1.5), ShouldEqual, "1.5x")
	})

	Convey("Given a subtitle menu", t, func() {
		v := controller.View{
			Overlay:   overlay.State{ActiveMenu: overlay.Subtitle},
			Subtitles: []controller.Subtitle{{Language: "English", URI: "en.vtt"}},
			Subtitle:  0,
		}
		items := menuItems(v)

		So(items, ShouldHaveLength, 2)
		So(items[0].label, ShouldEqual, "Off")
		So(activeIndex(items), ShouldEqual, 1)
		So(items[1].msg, ShouldResemble, controller.SelectSubtitleMsg{Index: 0})
	})
}
