// Package filesystem routes every file operation through a swappable afero backend,
// so tests can run against an in-memory tree.
package filesystem

import (
	"sync"

	"github.com/spf13/afero"
)

var (
	mu      sync.RWMutex
	backend = afero.Afero{Fs: afero.NewOsFs()}
)

// API returns the active backend.
func API() afero.Afero {
	mu.RLock()
	defer mu.RUnlock()
	return backend
}

// SetOsFs restores the native operating system backend.
func SetOsFs() {
	set(afero.NewOsFs())
}

// SetMemMapFs installs a volatile in-memory backend for tests.
func SetMemMapFs() {
	set(afero.NewMemMapFs())
}

func set(fs afero.Fs) {
	mu.Lock()
	backend = afero.Afero{Fs: fs}
	mu.Unlock()
}
