package controller

import (
	"time"

	"github.com/reelplay/reelplay/device"
	"github.com/reelplay/reelplay/engine"
	"github.com/reelplay/reelplay/overlay"
)

// Zone is the third of the surface a tap landed on.
type Zone int

const (
	ZoneLeft Zone = iota
	ZoneMiddle
	ZoneRight
)

// TapMsg is a tap on the video surface.
type TapMsg struct {
	Zone Zone
	At   time.Time
}

type TogglePlayMsg struct{}

// SkipMsg skips one step backward or forward.
type SkipMsg struct {
	Forward bool
}

// ScrubStartMsg begins dragging the progress bar.
type ScrubStartMsg struct {
	Position time.Duration
}

type ScrubMoveMsg struct {
	Position time.Duration
}

// ScrubEndMsg releases the progress bar and seeks to Position.
type ScrubEndMsg struct {
	Position time.Duration
}

type OpenMenuMsg struct {
	Menu overlay.Menu
}

type CloseMenuMsg struct{}

type SelectRateMsg struct {
	Rate float64
}

type SelectQualityMsg struct {
	Quality string
}

// SelectSubtitleMsg selects Options.Subtitles[Index]; a negative index turns subtitles off.
type SelectSubtitleMsg struct {
	Index int
}

type SetVolumeMsg struct {
	Volume float64
}

type SetBrightnessMsg struct {
	Brightness float64
}

type LockMsg struct {
	Locked bool
}

// BackMsg is the hardware back action.
type BackMsg struct{}

type CloseMsg struct{}

// RetryMsg reloads the source after a terminal error.
type RetryMsg struct{}

// RestartMsg plays from the beginning.
type RestartMsg struct{}

// ClosedMsg is returned once the controller has unmounted and called OnClose.
type ClosedMsg struct{}

// internal messages

type statusMsg struct {
	load   uint64
	status engine.Status
}

type engineErrMsg struct {
	load uint64
	err  error
}

type mountedMsg struct {
	load uint64
	sub  *engine.Subscription
	err  error
}

type seekDoneMsg struct {
	load      uint64
	origin    string
	requested time.Duration
	target    time.Duration
	err       error
}

type claimedMsg struct {
	caps device.Capabilities
	err  error
}

// releasedMsg follows close once the device claim is given back.
type releasedMsg struct{}

type connectivityMsg struct {
	online bool
}

type watchingMsg struct {
	cancel func()
}

type persistedMsg struct {
	err error
}

// opErrMsg reports a failed fire-and-forget engine or device call.
type opErrMsg struct {
	op  string
	err error
}

type rateMsg struct {
	rate float64
	err  error
}

type hideTickMsg struct{ gen uint64 }

type persistTickMsg struct{ gen uint64 }

type pulseTickMsg struct{ gen uint64 }

type bannerTickMsg struct{ gen uint64 }

type settleTickMsg struct{ gen uint64 }
