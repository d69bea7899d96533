package version

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/reelplay/reelplay/color"
	"github.com/reelplay/reelplay/constant"
	"github.com/reelplay/reelplay/key"
	"github.com/reelplay/reelplay/style"
	"github.com/spf13/viper"
)

const checkTimeout = 3 * time.Second

// Notify prints a short notice to w when a newer release exists.
// Lookup failures are silent.
func Notify(ctx context.Context, w io.Writer) {
	if !viper.GetBool(key.CliVersionCheck) {
		return
	}

	if ctx == nil {
		ctx = context.Background()
	}

	ctx, cancel := context.WithTimeout(ctx, checkTimeout)
	defer cancel()

	latest, err := Latest(ctx)
	if err != nil {
		return
	}

	if comp, err := Compare(latest, constant.Version); err != nil || comp <= 0 {
		return
	}

	fmt.Fprintf(w, `
%s New version is available %s %s
%s

`,
		style.Fg(color.Green)("▇▇▇"),
		style.Bold(latest),
		style.Faint(fmt.Sprintf("(You're on %s)", constant.Version)),
		style.Faint("https://github.com/reelplay/reelplay/releases/tag/v"+latest),
	)
}
