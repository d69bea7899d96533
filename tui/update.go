package tui

import (
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/reelplay/reelplay/controller"
)

// Init starts the spinner and mounts the player.
func (b *statefulBubble) Init() tea.Cmd {
	return tea.Batch(b.spinnerC.Tick, b.ctrl.Init())
}

func (b *statefulBubble) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case controller.ClosedMsg:
		return b, tea.Quit
	case tea.WindowSizeMsg:
		b.resize(msg.Width, msg.Height)
		return b, nil
	case spinner.TickMsg:
		var cmd tea.Cmd
		b.spinnerC, cmd = b.spinnerC.Update(msg)
		return b, cmd
	case tea.KeyMsg:
		return b, b.handleKey(msg)
	case tea.MouseMsg:
		return b, b.handleMouse(msg)
	}

	return b, b.dispatch(msg)
}
