package device

import "sync"

// BackHub dispatches the back action to registered handlers, newest first.
type BackHub struct {
	mu       sync.Mutex
	handlers []backHandler
	next     int
}

type backHandler struct {
	id int
	fn func() bool
}

// Push registers fn and returns its idempotent release.
func (b *BackHub) Push(fn func() bool) (release func()) {
	b.mu.Lock()
	id := b.next
	b.next++
	b.handlers = append(b.handlers, backHandler{id: id, fn: fn})
	b.mu.Unlock()

	return func() {
		b.mu.Lock()
		defer b.mu.Unlock()

		for i, h := range b.handlers {
			if h.id == id {
				b.handlers = append(b.handlers[:i], b.handlers[i+1:]...)
				return
			}
		}
	}
}

// Press runs handlers from the newest until one consumes the action. It reports whether any did.
func (b *BackHub) Press() bool {
	b.mu.Lock()
	handlers := make([]backHandler, len(b.handlers))
	copy(handlers, b.handlers)
	b.mu.Unlock()

	for i := len(handlers) - 1; i >= 0; i-- {
		if handlers[i].fn() {
			return true
		}
	}

	return false
}

// Len returns the number of registered handlers.
func (b *BackHub) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.handlers)
}
