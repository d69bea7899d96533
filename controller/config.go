package controller

import (
	"time"

	"github.com/reelplay/reelplay/config"
	"github.com/reelplay/reelplay/engine"
	"github.com/reelplay/reelplay/gesture"
	"github.com/reelplay/reelplay/key"
	"github.com/spf13/viper"
)

// Qualities are the labels offered by the quality menu. Selecting one does not change the stream.
var Qualities = []string{"auto", "1080p", "720p", "480p", "360p", "240p"}

// Config tunes the controller timings.
type Config struct {
	HideControlsAfter time.Duration
	DoubleTapWindow   time.Duration
	SkipStep          time.Duration
	SkipPulse         time.Duration
	PersistInterval   time.Duration
	RestoredBanner    time.Duration
	Policy            gesture.Policy
}

// DefaultConfig returns the stock timings.
func DefaultConfig() Config {
	return Config{
		HideControlsAfter: 3000 * time.Millisecond,
		DoubleTapWindow:   300 * time.Millisecond,
		SkipStep:          10 * time.Second,
		SkipPulse:         500 * time.Millisecond,
		PersistInterval:   5 * time.Second,
		RestoredBanner:    2 * time.Second,
		Policy:            gesture.CandidateOnly,
	}
}

// LoadConfig reads the timings from the configuration registry, keeping defaults for unset or invalid values.
func LoadConfig() Config {
	cfg := DefaultConfig()

	positive := func(dst *time.Duration, k string) {
		if d := config.Millis(k); d > 0 {
			*dst = d
		}
	}

	positive(&cfg.HideControlsAfter, key.PlayerHideControlsAfter)
	positive(&cfg.DoubleTapWindow, key.PlayerDoubleTapWindow)
	positive(&cfg.SkipStep, key.PlayerSkipStep)
	positive(&cfg.SkipPulse, key.PlayerSkipPulse)
	positive(&cfg.PersistInterval, key.HistoryPersistInterval)
	cfg.Policy = gesture.ParsePolicy(viper.GetBool(key.PlayerOuterTapTogglesOverlay))

	return cfg
}

// Subtitle is an external subtitle track.
type Subtitle struct {
	Language string
	URI      string
}

// Options describe what to play.
type Options struct {
	Source    engine.Source
	Title     string
	AutoPlay  bool
	Subtitles []Subtitle

	// OnComplete runs once per load when playback reaches the end.
	OnComplete func()

	// OnClose runs once after the player released its resources.
	OnClose func()
}
