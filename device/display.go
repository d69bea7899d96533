package device

import (
	"context"
	"fmt"
	"math"

	"github.com/reelplay/reelplay/util"
)

// Properties reads and writes player properties. It is implemented by player.MPV.
type Properties interface {
	SetProperty(ctx context.Context, name string, value any) error
	GetFloatProperty(ctx context.Context, name string) (float64, error)
}

// Display maps the device resources onto the video window: landscape lock becomes
// fullscreen and brightness becomes the video brightness filter.
type Display struct {
	props Properties
	hub   *BackHub
}

var _ Resources = (*Display)(nil)

func NewDisplay(props Properties, hub *BackHub) *Display {
	return &Display{props: props, hub: hub}
}

func (d *Display) LockLandscape(ctx context.Context) error {
	return d.props.SetProperty(ctx, "fullscreen", true)
}

func (d *Display) Unlock(ctx context.Context) error {
	return d.props.SetProperty(ctx, "fullscreen", false)
}

// RequestBrightness always grants; the video filter needs no permission.
func (d *Display) RequestBrightness(context.Context) (bool, error) {
	return true, nil
}

// Brightness maps mpv's [-100, 100] onto [0, 1].
func (d *Display) Brightness(ctx context.Context) (float64, error) {
	v, err := d.props.GetFloatProperty(ctx, "brightness")
	if err != nil {
		return 0, fmt.Errorf("brightness: %w", err)
	}

	return util.Clamp((v+100)/200, 0, 1), nil
}

func (d *Display) SetBrightness(ctx context.Context, v float64) error {
	v = util.Clamp(v, 0, 1)
	return d.props.SetProperty(ctx, "brightness", int(math.Round(v*200-100)))
}

func (d *Display) InterceptBack(handler func() bool) func() {
	return d.hub.Push(handler)
}
