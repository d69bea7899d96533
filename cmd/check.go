package cmd

import (
	"fmt"
	"os/exec"
	"runtime"

	"github.com/charmbracelet/lipgloss"
	"github.com/reelplay/reelplay/color"
	"github.com/reelplay/reelplay/constant"
	"github.com/reelplay/reelplay/icon"
	"github.com/reelplay/reelplay/style"
)

// errMissingDependency carries the rendered install hint as its message.
type errMissingDependency struct {
	dep string
}

func (e *errMissingDependency) Error() string {
	return renderMissingDependency(e.dep)
}

// checkDependencies verifies that the player binary is on PATH.
func checkDependencies(binary string) error {
	if _, err := exec.LookPath(binary); err != nil {
		return &errMissingDependency{dep: binary}
	}
	return nil
}

func renderMissingDependency(dep string) string {
	var installCmd string
	switch runtime.GOOS {
	case constant.Darwin:
		installCmd = "brew install mpv"
	case constant.Linux:
		installCmd = "sudo apt install mpv"
	case constant.Windows:
		installCmd = "scoop install mpv"
	}

	box := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(color.HiRed).
		Padding(1, 2).
		Margin(1, 0)

	title := style.New().Bold(true).Foreground(color.HiRed).Render(fmt.Sprintf("%s Missing dependency", icon.Get(icon.Fail)))
	body := fmt.Sprintf("The required dependency '%s' was not found in your PATH.", dep)

	suggestion := ""
	if installCmd != "" {
		suggestion = fmt.Sprintf("\nTo install it, try running:\n  %s", style.New().Foreground(color.HiPurple).Bold(true).Render(installCmd))
	}

	return box.Render(
		lipgloss.JoinVertical(lipgloss.Left,
			title,
			"",
			body,
			suggestion,
		),
	)
}
