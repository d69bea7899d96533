// Package overlay holds the player overlay state and the auto-hide countdown.
//
// Visibility is a pure state machine: it never starts timers itself. Methods that need
// a countdown return a Schedule, the caller fires it after Schedule.After and passes the
// generation back to Expire. Any state change bumps the generation, so stale countdowns
// are ignored instead of cancelled.
package overlay

import (
	"time"

	"github.com/samber/mo"
)

// Menu is the open overlay menu.
type Menu int

const (
	None Menu = iota
	Speed
	Quality
	Subtitle
	Settings
)

func (m Menu) String() string {
	switch m {
	case Speed:
		return "speed"
	case Quality:
		return "quality"
	case Subtitle:
		return "subtitle"
	case Settings:
		return "settings"
	default:
		return "none"
	}
}

// State is the overlay as rendered.
type State struct {
	ShowControls bool
	ActiveMenu   Menu
	Locked       bool
	Seeking      bool
	SeekPreview  time.Duration
}

// Suspended reports whether auto-hide is currently suspended.
func (s State) Suspended() bool {
	return s.Seeking || s.ActiveMenu != None || s.Locked
}

// Schedule asks the caller to call Expire(Gen) after After.
type Schedule struct {
	Gen   uint64
	After time.Duration
}

// Visibility is not safe for concurrent use.
type Visibility struct {
	state   State
	timeout time.Duration
	gen     uint64
}

// New returns a visible overlay. Call Start to arm the first countdown.
func New(timeout time.Duration) *Visibility {
	return &Visibility{
		timeout: timeout,
		state:   State{ShowControls: true},
	}
}

func (v *Visibility) State() State {
	return v.state
}

func (v *Visibility) arm() mo.Option[Schedule] {
	v.gen++
	if v.state.Suspended() {
		return mo.None[Schedule]()
	}

	return mo.Some(Schedule{Gen: v.gen, After: v.timeout})
}

func (v *Visibility) cancel() {
	v.gen++
}

// Start arms the initial countdown.
func (v *Visibility) Start() mo.Option[Schedule] {
	return v.arm()
}

// Toggle handles a tap on the middle of the surface.
func (v *Visibility) Toggle() mo.Option[Schedule] {
	if v.state.Locked {
		return mo.None[Schedule]()
	}

	if v.state.ShowControls && v.state.ActiveMenu == None && !v.state.Seeking {
		v.state.ShowControls = false
		v.cancel()
		return mo.None[Schedule]()
	}

	v.state.ShowControls = true
	return v.arm()
}

// Touch records an interaction: controls become visible and the countdown restarts from full.
func (v *Visibility) Touch() mo.Option[Schedule] {
	if v.state.Locked {
		return mo.None[Schedule]()
	}

	v.state.ShowControls = true
	return v.arm()
}

// Refresh restarts the countdown if the controls are showing, without revealing hidden controls.
func (v *Visibility) Refresh() mo.Option[Schedule] {
	if v.state.Locked || !v.state.ShowControls {
		return mo.None[Schedule]()
	}

	return v.arm()
}

// OpenMenu shows m and suspends auto-hide. It is ignored while locked.
func (v *Visibility) OpenMenu(m Menu) bool {
	if v.state.Locked || m == None {
		return false
	}

	v.state.ActiveMenu = m
	v.state.ShowControls = true
	v.cancel()
	return true
}

// CloseMenu resumes auto-hide with a full countdown.
func (v *Visibility) CloseMenu() mo.Option[Schedule] {
	if v.state.ActiveMenu == None {
		return mo.None[Schedule]()
	}

	v.state.ActiveMenu = None
	return v.arm()
}

// BeginSeek marks a scrub in progress.
func (v *Visibility) BeginSeek(preview time.Duration) bool {
	if v.state.Locked {
		return false
	}

	v.state.Seeking = true
	v.state.SeekPreview = preview
	v.state.ShowControls = true
	v.cancel()
	return true
}

// MoveSeek updates the scrub preview position.
func (v *Visibility) MoveSeek(preview time.Duration) {
	if v.state.Seeking {
		v.state.SeekPreview = preview
	}
}

// EndSeek finishes a scrub and restarts the countdown.
func (v *Visibility) EndSeek() mo.Option[Schedule] {
	if !v.state.Seeking {
		return mo.None[Schedule]()
	}

	v.state.Seeking = false
	v.state.SeekPreview = 0
	return v.arm()
}

// SetLocked toggles the lock. Locking closes menus and hides every control except the
// unlock affordance; unlocking shows controls and restarts the countdown.
func (v *Visibility) SetLocked(locked bool) mo.Option[Schedule] {
	if v.state.Locked == locked {
		return mo.None[Schedule]()
	}

	v.state.Locked = locked
	if locked {
		v.state.ActiveMenu = None
		v.state.Seeking = false
		v.state.SeekPreview = 0
		v.state.ShowControls = false
		v.cancel()
		return mo.None[Schedule]()
	}

	v.state.ShowControls = true
	return v.arm()
}

// Expire handles a fired countdown. It reports whether the controls were hidden.
func (v *Visibility) Expire(gen uint64) bool {
	if gen != v.gen || v.state.Suspended() || !v.state.ShowControls {
		return false
	}

	v.state.ShowControls = false
	return true
}

// Stop invalidates any armed countdown.
func (v *Visibility) Stop() {
	v.cancel()
}
