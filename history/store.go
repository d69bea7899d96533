// Package history persists watch progress so playback can resume where it stopped.
package history

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/reelplay/reelplay/where"
	"github.com/samber/mo"
)

// ErrUnavailable wraps every storage failure.
var ErrUnavailable = errors.New("history: storage unavailable")

// Store is a key-value store of entries keyed by source URI.
type Store interface {
	Get(ctx context.Context, uri string) (mo.Option[Entry], error)

	// Set upserts the entry for uri. The entry's URI is overwritten with uri.
	Set(ctx context.Context, uri string, entry Entry) error

	// List returns every entry, most recently watched first.
	List(ctx context.Context) ([]Entry, error)

	Remove(ctx context.Context, uri string) error
	Clear(ctx context.Context) error
	Close() error
}

const (
	BackendFile   = "file"
	BackendSQLite = "sqlite"
	BackendMemory = "memory"
)

// Backends lists the supported values of the history backend setting.
var Backends = []string{BackendFile, BackendSQLite, BackendMemory}

// NewStore opens the store for backend at its default location.
func NewStore(backend string) (Store, error) {
	switch backend {
	case "", BackendFile:
		return NewFileStore(where.History()), nil
	case BackendSQLite:
		return NewSQLiteStore(where.HistoryDB())
	case BackendMemory:
		return NewMemoryStore(), nil
	default:
		return nil, fmt.Errorf("unknown history backend: %s (supported: %v)", backend, Backends)
	}
}

func unavailable(op string, err error) error {
	return fmt.Errorf("%w: %s: %w", ErrUnavailable, op, err)
}

func newestFirst(entries []Entry) {
	sort.SliceStable(entries, func(i, j int) bool {
		if entries[i].TimestampMillis == entries[j].TimestampMillis {
			return entries[i].URI < entries[j].URI
		}
		return entries[i].TimestampMillis > entries[j].TimestampMillis
	})
}
