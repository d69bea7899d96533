package history

import (
	"context"
	"sync"

	"github.com/metafates/gache"
	"github.com/reelplay/reelplay/filesystem"
	"github.com/samber/lo"
	"github.com/samber/mo"
)

// FileStore keeps all entries in a single JSON document on the application filesystem.
type FileStore struct {
	mu     sync.Mutex
	cacher *gache.Cache[map[string]Entry]
}

// NewFileStore returns a store backed by the JSON file at path.
func NewFileStore(path string) *FileStore {
	return &FileStore{
		cacher: gache.New[map[string]Entry](
			&gache.Options{
				Path:       path,
				FileSystem: &filesystem.GacheFs{},
			},
		),
	}
}

func (f *FileStore) load() (map[string]Entry, error) {
	cached, expired, err := f.cacher.Get()
	if err != nil {
		return nil, unavailable("read", err)
	}
	if expired || cached == nil {
		return make(map[string]Entry), nil
	}
	return cached, nil
}

func (f *FileStore) save(entries map[string]Entry) error {
	if err := f.cacher.Set(entries); err != nil {
		return unavailable("write", err)
	}
	return nil
}

func (f *FileStore) Get(_ context.Context, uri string) (mo.Option[Entry], error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	entries, err := f.load()
	if err != nil {
		return mo.None[Entry](), err
	}

	if entry, ok := entries[uri]; ok {
		return mo.Some(entry), nil
	}
	return mo.None[Entry](), nil
}

func (f *FileStore) Set(_ context.Context, uri string, entry Entry) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	entries, err := f.load()
	if err != nil {
		return err
	}

	entry.URI = uri
	entries[uri] = entry
	return f.save(entries)
}

func (f *FileStore) List(context.Context) ([]Entry, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	entries, err := f.load()
	if err != nil {
		return nil, err
	}

	list := lo.Values(entries)
	newestFirst(list)
	return list, nil
}

func (f *FileStore) Remove(_ context.Context, uri string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	entries, err := f.load()
	if err != nil {
		return err
	}

	delete(entries, uri)
	return f.save(entries)
}

func (f *FileStore) Clear(context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	return f.save(make(map[string]Entry))
}

func (f *FileStore) Close() error {
	return nil
}
