package engine

import (
	"context"
	"time"
)

// Surface is the platform media surface. Implementations push status ticks at their
// own cadence through the handlers passed to Subscribe and must be safe for concurrent use.
type Surface interface {
	Open(ctx context.Context, uri string) error
	Play(ctx context.Context) error
	Pause(ctx context.Context) error
	Seek(ctx context.Context, pos time.Duration) error
	SetRate(ctx context.Context, rate float64) error
	SetVolume(ctx context.Context, volume float64) error

	// SetSubtitle loads and selects an external subtitle track. An empty uri disables subtitles.
	SetSubtitle(ctx context.Context, uri string) error

	Subscribe(h Handlers) (cancel func())
	Close() error
}
