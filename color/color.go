// Package color holds the small fixed palette shared by the CLI and the player overlay.
package color

import "github.com/charmbracelet/lipgloss"

// New initializes a lipgloss.Color from an ANSI index or hex string.
func New(value string) lipgloss.Color {
	return lipgloss.Color(value)
}

// ANSI base colors.
var (
	Red    = New("1")
	Green  = New("2")
	Yellow = New("3")
	Blue   = New("4")
	Purple = New("5")
	Cyan   = New("6")
	White  = New("7")
)

// Overlay colors.
var (
	HiRed    = New("9")
	HiPurple = New("13")
	Offline  = New("#d9534f")
	Online   = New("#5cb85c")
)
