package controller

import (
	"time"

	"github.com/reelplay/reelplay/engine"
	"github.com/reelplay/reelplay/gesture"
	"github.com/reelplay/reelplay/overlay"
	"github.com/samber/mo"
)

const (
	BannerOffline  = "No Internet Connection"
	BannerRestored = "Internet Restored"
)

// View is everything a renderer needs, copied out of the controller.
type View struct {
	Title   string
	Status  engine.Status
	Overlay overlay.State

	Loading bool
	Err     error

	Rate      float64
	Quality   string
	Subtitles []Subtitle

	// Subtitle indexes Subtitles, -1 when off.
	Subtitle int

	Volume     float64
	Brightness float64

	// Controls disabled because the device refused them.
	OrientationLocked bool
	BrightnessEnabled bool

	Pulse    mo.Option[gesture.Side]
	SkipStep time.Duration
	Banner   string
	Offline  bool
}

// SubtitleLabel returns the selected track's language or "Off".
func (v View) SubtitleLabel() string {
	if v.Subtitle < 0 || v.Subtitle >= len(v.Subtitles) {
		return "Off"
	}
	return v.Subtitles[v.Subtitle].Language
}
