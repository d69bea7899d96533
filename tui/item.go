package tui

import (
	"fmt"
	"strconv"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/reelplay/reelplay/controller"
	"github.com/reelplay/reelplay/engine"
	"github.com/reelplay/reelplay/overlay"
	"github.com/samber/lo"
)

// item is a selectable menu row.
type item struct {
	label  string
	msg    tea.Msg
	active bool
}

func rateLabel(rate float64) string {
	if rate == 1 {
		return "Normal"
	}
	return strconv.FormatFloat(rate, 'f', -1, 64) + "x"
}

// menuItems lists the rows of the open menu.
func menuItems(v controller.View) []item {
	switch v.Overlay.ActiveMenu {
	case overlay.Speed:
		return lo.Map(engine.Rates, func(rate float64, _ int) item {
			return item{
				label:  rateLabel(rate),
				msg:    controller.SelectRateMsg{Rate: rate},
				active: rate == v.Rate,
			}
		})
	case overlay.Quality:
		return lo.Map(controller.Qualities, func(q string, _ int) item {
			return item{
				label:  q,
				msg:    controller.SelectQualityMsg{Quality: q},
				active: q == v.Quality,
			}
		})
	case overlay.Subtitle:
		items := []item{{
			label:  "Off",
			msg:    controller.SelectSubtitleMsg{Index: -1},
			active: v.Subtitle < 0,
		}}
		for i, sub := range v.Subtitles {
			items = append(items, item{
				label:  sub.Language,
				msg:    controller.SelectSubtitleMsg{Index: i},
				active: v.Subtitle == i,
			})
		}
		return items
	case overlay.Settings:
		return []item{
			{label: fmt.Sprintf("Speed  %s", rateLabel(v.Rate)), msg: controller.OpenMenuMsg{Menu: overlay.Speed}},
			{label: fmt.Sprintf("Quality  %s", v.Quality), msg: controller.OpenMenuMsg{Menu: overlay.Quality}},
			{label: fmt.Sprintf("Subtitles  %s", v.SubtitleLabel()), msg: controller.OpenMenuMsg{Menu: overlay.Subtitle}},
			{label: "Lock controls", msg: controller.LockMsg{Locked: true}},
		}
	default:
		return nil
	}
}

// activeIndex is the row the cursor starts on.
func activeIndex(items []item) int {
	_, i, ok := lo.FindIndexOf(items, func(it item) bool {
		return it.active
	})
	if !ok {
		return 0
	}
	return i
}

// adjacentRate returns the rate next to current in the given direction, or current at either end.
func adjacentRate(current float64, faster bool) float64 {
	i := lo.IndexOf(engine.Rates, current)
	if i < 0 {
		return 1
	}

	if faster {
		i++
	} else {
		i--
	}

	if i < 0 || i >= len(engine.Rates) {
		return current
	}
	return engine.Rates[i]
}
