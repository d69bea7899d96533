// Package tui provides the terminal player screen built around the playback controller.
package tui

import (
	"context"
	"errors"
	"sync"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/reelplay/reelplay/controller"
	"github.com/reelplay/reelplay/device"
)

// Options encapsulates the runtime configuration for the terminal user interface.
type Options struct {
	Controller *controller.Controller

	// Hub receives the back action. Without one, back closes the player.
	Hub *device.BackHub

	// Relay must be the Sender the controller was built with.
	Relay *Relay
}

// Run executes the Bubble Tea application loop until the player is closed or ctx is done.
// The controller is always unmounted before Run returns.
func Run(ctx context.Context, options *Options) error {
	bubble := newBubble(options)
	defer bubble.ctrl.Unmount()

	program := tea.NewProgram(
		bubble,
		tea.WithAltScreen(),
		tea.WithMouseCellMotion(),
		tea.WithContext(ctx),
	)

	if options.Relay != nil {
		options.Relay.Attach(program)
	}

	_, err := program.Run()
	if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
		return nil
	}

	return err
}

// Relay forwards messages to a program created after the controller that sends them.
// Messages sent before Attach are queued and flushed once the program reads its inbox.
type Relay struct {
	mu      sync.Mutex
	program *tea.Program
	pending []tea.Msg
}

func (r *Relay) Attach(p *tea.Program) {
	r.mu.Lock()
	r.program = p
	pending := r.pending
	r.pending = nil
	r.mu.Unlock()

	if len(pending) == 0 {
		return
	}

	go func() {
		for _, msg := range pending {
			p.Send(msg)
		}
	}()
}

func (r *Relay) Send(msg tea.Msg) {
	r.mu.Lock()
	if r.program == nil {
		r.pending = append(r.pending, msg)
		r.mu.Unlock()
		return
	}
	p := r.program
	r.mu.Unlock()

	p.Send(msg)
}
