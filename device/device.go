// Package device coordinates the hardware resources the player borrows while mounted:
// orientation, screen brightness, and the back action.
package device

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/reelplay/reelplay/log"
)

// ErrPermissionDenied is returned when brightness control is not granted.
var ErrPermissionDenied = errors.New("device: permission denied")

// Resources are the platform controls a player claims.
type Resources interface {
	LockLandscape(ctx context.Context) error
	Unlock(ctx context.Context) error

	// RequestBrightness asks for permission to change the screen brightness.
	RequestBrightness(ctx context.Context) (bool, error)
	Brightness(ctx context.Context) (float64, error)

	// SetBrightness clamps to [0, 1].
	SetBrightness(ctx context.Context, v float64) error

	// InterceptBack registers a back handler. A handler returning true consumes the action.
	InterceptBack(handler func() bool) (release func())
}

// Capabilities reports which controls are usable after Acquire.
type Capabilities struct {
	Orientation bool
	Brightness  bool

	// Initial brightness, valid when Brightness is set.
	InitialBrightness float64
}

// Claim is the scoped acquisition of Resources for one mounted player.
type Claim struct {
	res  Resources
	back func() bool

	mu          sync.Mutex
	released    bool
	releaseBack func()
}

// NewClaim prepares a claim. back is invoked for the hardware back action while acquired.
func NewClaim(res Resources, back func() bool) *Claim {
	return &Claim{res: res, back: back}
}

// Acquire locks landscape, requests brightness permission, reads the initial brightness
// and intercepts back. Failures only disable the affected control; the joined error is
// returned for logging. If Release runs while Acquire is in flight, whatever Acquire
// obtained afterwards is given back before it returns.
func (c *Claim) Acquire(ctx context.Context) (Capabilities, error) {
	var (
		caps Capabilities
		errs []error
	)

	if c.back != nil {
		release := c.res.InterceptBack(c.back)

		c.mu.Lock()
		if c.released {
			c.mu.Unlock()
			release()
			return Capabilities{}, nil
		}
		c.releaseBack = release
		c.mu.Unlock()
	}

	if err := c.res.LockLandscape(ctx); err != nil {
		errs = append(errs, fmt.Errorf("lock orientation: %w", err))
	} else {
		caps.Orientation = true
	}

	if c.isReleased() {
		if caps.Orientation {
			if err := c.res.Unlock(context.WithoutCancel(ctx)); err != nil {
				log.Warnf("unlock orientation after release: %v", err)
			}
		}
		return Capabilities{}, errors.Join(errs...)
	}

	granted, err := c.res.RequestBrightness(ctx)
	switch {
	case err != nil:
		errs = append(errs, fmt.Errorf("request brightness: %w", err))
	case !granted:
		errs = append(errs, fmt.Errorf("request brightness: %w", ErrPermissionDenied))
	default:
		v, err := c.res.Brightness(ctx)
		if err != nil {
			errs = append(errs, fmt.Errorf("read brightness: %w", err))
		} else {
			caps.Brightness = true
			caps.InitialBrightness = v
		}
	}

	return caps, errors.Join(errs...)
}

func (c *Claim) isReleased() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.released
}

// Release gives everything back. It always unlocks orientation, even when locking failed
// or Acquire has not finished, and never stops at the first error. Subsequent calls are no-ops.
func (c *Claim) Release(ctx context.Context) error {
	c.mu.Lock()
	if c.released {
		c.mu.Unlock()
		return nil
	}
	c.released = true
	releaseBack := c.releaseBack
	c.releaseBack = nil
	c.mu.Unlock()

	var errs []error

	if releaseBack != nil {
		releaseBack()
	}

	if err := c.res.Unlock(ctx); err != nil {
		errs = append(errs, fmt.Errorf("unlock orientation: %w", err))
	}

	return errors.Join(errs...)
}

// Released reports whether Release was called.
func (c *Claim) Released() bool {
	return c.isReleased()
}
