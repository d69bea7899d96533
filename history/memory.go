package history

import (
	"context"
	"sync"

	"github.com/samber/lo"
	"github.com/samber/mo"
)

// MemoryStore is an in-process store, used for tests and when history is disabled.
type MemoryStore struct {
	mu      sync.RWMutex
	entries map[string]Entry

	// Err, when set, is returned wrapped by every operation.
	Err error
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{entries: make(map[string]Entry)}
}

func (m *MemoryStore) fail(op string) error {
	if m.Err != nil {
		return unavailable(op, m.Err)
	}
	return nil
}

func (m *MemoryStore) Get(_ context.Context, uri string) (mo.Option[Entry], error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if err := m.fail("read"); err != nil {
		return mo.None[Entry](), err
	}

	if entry, ok := m.entries[uri]; ok {
		return mo.Some(entry), nil
	}
	return mo.None[Entry](), nil
}

func (m *MemoryStore) Set(_ context.Context, uri string, entry Entry) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.fail("write"); err != nil {
		return err
	}

	entry.URI = uri
	m.entries[uri] = entry
	return nil
}

func (m *MemoryStore) List(context.Context) ([]Entry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if err := m.fail("read"); err != nil {
		return nil, err
	}

	list := lo.Values(m.entries)
	newestFirst(list)
	return list, nil
}

func (m *MemoryStore) Remove(_ context.Context, uri string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.fail("write"); err != nil {
		return err
	}

	delete(m.entries, uri)
	return nil
}

func (m *MemoryStore) Clear(context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.fail("write"); err != nil {
		return err
	}

	m.entries = make(map[string]Entry)
	return nil
}

func (m *MemoryStore) Close() error {
	return nil
}
