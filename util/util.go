// Package util provides small domain-agnostic helpers.
package util

import (
	"fmt"
	"os"
	"time"

	"golang.org/x/exp/constraints"
	"golang.org/x/term"
)

// Clamp bounds v to [lo, hi].
func Clamp[T constraints.Ordered](v, lo, hi T) T {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// FormatDuration renders d as MM:SS, or HH:MM:SS once it reaches an hour.
// Non-positive durations render as 00:00.
func FormatDuration(d time.Duration) string {
	if d <= 0 {
		return "00:00"
	}

	total := int64(d / time.Second)
	hours := total / 3600
	minutes := (total % 3600) / 60
	seconds := total % 60

	if hours > 0 {
		return fmt.Sprintf("%02d:%02d:%02d", hours, minutes, seconds)
	}
	return fmt.Sprintf("%02d:%02d", minutes, seconds)
}

// Quantify returns a pluralized count.
func Quantify(count int, singular, plural string) string {
	if count == 1 {
		return fmt.Sprintf("%d %s", count, singular)
	}
	return fmt.Sprintf("%d %s", count, plural)
}

// TerminalWidth returns the width of stdout, or fallback when it is not a terminal.
func TerminalWidth(fallback int) int {
	width, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil || width <= 0 {
		return fallback
	}
	return width
}
