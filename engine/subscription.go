package engine

import "sync"

// Subscription is the handle returned by Adapter.Load. Cancel detaches the listener;
// once it returns no new deliveries start.
type Subscription struct {
	mu        sync.Mutex
	handlers  Handlers
	detach    func()
	cancelled bool
}

func newSubscription(h Handlers) *Subscription {
	return &Subscription{handlers: h}
}

// Cancel is idempotent.
func (s *Subscription) Cancel() {
	s.mu.Lock()
	if s.cancelled {
		s.mu.Unlock()
		return
	}
	s.cancelled = true
	s.handlers = Handlers{}
	detach := s.detach
	s.detach = nil
	s.mu.Unlock()

	if detach != nil {
		detach()
	}
}

// Active reports whether Cancel has not been called yet.
func (s *Subscription) Active() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return !s.cancelled
}

func (s *Subscription) setDetach(detach func()) {
	s.mu.Lock()
	if s.cancelled {
		s.mu.Unlock()
		detach()
		return
	}
	s.detach = detach
	s.mu.Unlock()
}

func (s *Subscription) status(st Status) {
	s.mu.Lock()
	fn := s.handlers.OnStatus
	s.mu.Unlock()

	if fn != nil {
		fn(st)
	}
}

func (s *Subscription) error(err error) {
	s.mu.Lock()
	fn := s.handlers.OnError
	s.mu.Unlock()

	if fn != nil {
		fn(err)
	}
}
