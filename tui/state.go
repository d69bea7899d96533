package tui

import (
	"github.com/reelplay/reelplay/controller"
	"github.com/reelplay/reelplay/overlay"
)

type state int

const (
	loadingState state = iota
	errorState
	lockedState
	menuState
	playerState
)

// stateOf derives the screen from a controller snapshot.
func stateOf(v controller.View) state {
	switch {
	case v.Err != nil:
		return errorState
	case v.Loading:
		return loadingState
	case v.Overlay.Locked:
		return lockedState
	case v.Overlay.ActiveMenu != overlay.None:
		return menuState
	default:
		return playerState
	}
}
