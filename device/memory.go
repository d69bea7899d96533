package device

import (
	"context"
	"sync"

	"github.com/reelplay/reelplay/util"
)

// Memory is an in-process Resources for headless runs and tests.
// Errors set on the exported fields are returned by the matching method.
type Memory struct {
	Hub BackHub

	LockErr       error
	UnlockErr     error
	BrightnessErr error
	Denied        bool

	mu         sync.Mutex
	landscape  bool
	brightness float64
	unlocks    int
}

var _ Resources = (*Memory)(nil)

// NewMemory returns resources with the given initial brightness.
func NewMemory(brightness float64) *Memory {
	return &Memory{brightness: util.Clamp(brightness, 0, 1)}
}

func (m *Memory) LockLandscape(context.Context) error {
	if m.LockErr != nil {
		return m.LockErr
	}

	m.mu.Lock()
	m.landscape = true
	m.mu.Unlock()
	return nil
}

func (m *Memory) Unlock(context.Context) error {
	m.mu.Lock()
	m.unlocks++
	m.mu.Unlock()

	if m.UnlockErr != nil {
		return m.UnlockErr
	}

	m.mu.Lock()
	m.landscape = false
	m.mu.Unlock()
	return nil
}

func (m *Memory) RequestBrightness(context.Context) (bool, error) {
	return !m.Denied, nil
}

func (m *Memory) Brightness(context.Context) (float64, error) {
	if m.BrightnessErr != nil {
		return 0, m.BrightnessErr
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	return m.brightness, nil
}

func (m *Memory) SetBrightness(_ context.Context, v float64) error {
	if m.BrightnessErr != nil {
		return m.BrightnessErr
	}

	m.mu.Lock()
	m.brightness = util.Clamp(v, 0, 1)
	m.mu.Unlock()
	return nil
}

func (m *Memory) InterceptBack(handler func() bool) func() {
	return m.Hub.Push(handler)
}

// Landscape reports whether orientation is locked.
func (m *Memory) Landscape() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.landscape
}

// Unlocks counts Unlock calls.
func (m *Memory) Unlocks() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.unlocks
}

// Level returns the current brightness.
func (m *Memory) Level() float64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.brightness
}
