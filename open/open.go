// Package open launches files, directories and URLs with the system's default handler.
package open

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"

	"github.com/reelplay/reelplay/constant"
)

// Start opens input with the default handler without waiting for it to exit.
func Start(input string) error {
	cmd, ok := Command(runtime.GOOS, input)
	if !ok {
		return fmt.Errorf("unsupported OS: %s", runtime.GOOS)
	}
	return cmd.Start()
}

// Command builds the opener invocation for goos.
func Command(goos, input string) (*exec.Cmd, bool) {
	switch goos {
	case constant.Windows:
		rundll := filepath.Join(os.Getenv("SYSTEMROOT"), "System32", "rundll32.exe")
		return exec.Command(rundll, "url.dll,FileProtocolHandler", input), true
	case constant.Darwin:
		return exec.Command("open", input), true
	case constant.Linux:
		return exec.Command("xdg-open", input), true
	default:
		return nil, false
	}
}
