package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/reflow/truncate"
	"github.com/reelplay/reelplay/color"
	"github.com/reelplay/reelplay/controller"
	"github.com/reelplay/reelplay/gesture"
	"github.com/reelplay/reelplay/style"
	"github.com/reelplay/reelplay/util"
)

var (
	paddingStyle = lipgloss.NewStyle().Padding(0, horizontalPadding)
	menuStyle    = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(color.HiPurple).
			Padding(0, 2)
	cursorStyle = lipgloss.NewStyle().Foreground(color.HiPurple).Bold(true)
)

func (b *statefulBubble) View() string {
	if b.width <= 0 || b.height <= 0 {
		return ""
	}

	v := b.ctrl.Snapshot()

	switch b.state {
	case loadingState:
		return b.renderScreen(v, b.spinnerC.View()+" Loading "+v.Title)
	case errorState:
		return b.renderScreen(v, b.viewError(v))
	case lockedState:
		return b.renderScreen(v, style.Faint("Controls locked, click here to unlock"))
	case menuState:
		return b.renderScreen(v, b.viewMenu(v))
	default:
		return b.renderScreen(v, b.viewCenter(v))
	}
}

// renderScreen lays out a full screen: title and banner on top, center in the middle,
// progress, time and help at the bottom. The progress bar always sits on progressRow.
func (b *statefulBubble) renderScreen(v controller.View, center string) string {
	var (
		top    = make([]string, 2)
		bottom = make([]string, 3)
	)

	if v.Overlay.ShowControls || b.state == loadingState || b.state == errorState {
		top[0] = b.viewTitle(v)
	}
	top[1] = b.viewBanner(v)

	if b.state == playerState && v.Overlay.ShowControls {
		bottom[0] = paddingStyle.Render(b.viewProgress(v))
		bottom[1] = paddingStyle.Render(b.viewTime(v))
	}
	bottom[2] = paddingStyle.Render(b.helpC.View(b.keymap))

	middle := lipgloss.Place(
		b.width,
		max(b.height-len(top)-len(bottom), 0),
		lipgloss.Center,
		lipgloss.Center,
		center,
	)

	return strings.Join(append(append(top, middle), bottom...), "\n")
}

func (b *statefulBubble) viewTitle(v controller.View) string {
	title := truncate.StringWithTail(v.Title, uint(max(b.width-4, 1)), "…")
	return style.Title(title)
}

func (b *statefulBubble) viewBanner(v controller.View) string {
	switch {
	case v.Banner == "":
		return ""
	case v.Offline:
		return style.Tag(color.White, color.Offline)(v.Banner)
	default:
		return style.Tag(color.White, color.Online)(v.Banner)
	}
}

func (b *statefulBubble) viewError(v controller.View) string {
	msg := truncate.StringWithTail(v.Err.Error(), uint(max(b.width-8, 1)), "…")
	return lipgloss.JoinVertical(
		lipgloss.Center,
		style.ErrorTitle("Playback failed"),
		"",
		style.Fg(color.Red)(msg),
	)
}

func (b *statefulBubble) viewCenter(v controller.View) string {
	third := max(b.width/3, 1)

	var left, middle, right string

	if side, ok := v.Pulse.Get(); ok {
		step := fmt.Sprintf("%ds", int(v.SkipStep.Seconds()))
		if side == gesture.Left {
			left = style.Fg(color.HiPurple)("<< " + step)
		} else {
			right = style.Fg(color.HiPurple)(step + " >>")
		}
	}

	if v.Overlay.ShowControls {
		switch {
		case v.Status.IsBuffering:
			middle = b.spinnerC.View()
		case v.Status.IsPlaying:
			middle = style.Bold("||")
		default:
			middle = style.Bold(">")
		}
	}

	return lipgloss.JoinHorizontal(
		lipgloss.Center,
		lipgloss.PlaceHorizontal(third, lipgloss.Center, left),
		lipgloss.PlaceHorizontal(third, lipgloss.Center, middle),
		lipgloss.PlaceHorizontal(third, lipgloss.Center, right),
	)
}

func (b *statefulBubble) viewMenu(v controller.View) string {
	items := menuItems(v)
	lines := make([]string, 0, len(items)+2)
	name := v.Overlay.ActiveMenu.String()
	lines = append(lines, style.Bold(strings.ToUpper(name[:1])+name[1:]), "")

	for i, it := range items {
		label := it.label
		if it.active {
			label += " " + style.Fg(color.Green)("*")
		}

		if i == b.cursor {
			lines = append(lines, cursorStyle.Render("> "+label))
		} else {
			lines = append(lines, "  "+label)
		}
	}

	return menuStyle.Render(strings.Join(lines, "\n"))
}

func (b *statefulBubble) viewProgress(v controller.View) string {
	if v.Status.Duration <= 0 {
		return b.progressC.ViewAs(0)
	}

	position := v.Status.Position
	if v.Overlay.Seeking {
		position = v.Overlay.SeekPreview
	}

	return b.progressC.ViewAs(float64(position) / float64(v.Status.Duration))
}

func (b *statefulBubble) viewTime(v controller.View) string {
	position := v.Status.Position
	if v.Overlay.Seeking {
		position = v.Overlay.SeekPreview
	}

	clock := fmt.Sprintf("%s / %s", util.FormatDuration(position), util.FormatDuration(v.Status.Duration))

	labels := []string{rateLabel(v.Rate), v.Quality, "CC " + v.SubtitleLabel()}
	labels = append(labels, fmt.Sprintf("Vol %d%%", int(v.Volume*100+0.5)))
	if v.BrightnessEnabled {
		labels = append(labels, fmt.Sprintf("Bright %d%%", int(v.Brightness*100+0.5)))
	}

	info := style.Faint(strings.Join(labels, "  "))
	gap := max(b.width-2*horizontalPadding-lipgloss.Width(clock)-lipgloss.Width(info), 1)

	return clock + strings.Repeat(" ", gap) + info
}
