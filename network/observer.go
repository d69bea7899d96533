package network

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/reelplay/reelplay/log"
)

// DefaultProbeTarget answers 204 when the internet is reachable.
const DefaultProbeTarget = "https://connectivitycheck.gstatic.com/generate_204"

// Observer reports connectivity changes. Subscribers receive the current state,
// if known, immediately and then every change.
type Observer interface {
	Subscribe(fn func(online bool)) (cancel func())
}

// Prober is an Observer that periodically probes a URL.
type Prober struct {
	target   string
	interval time.Duration
	client   *http.Client

	// deliver orders the initial callback of Subscribe against Report fan-outs.
	deliver sync.Mutex

	mu     sync.Mutex
	known  bool
	online bool
	subs   map[int]func(bool)
	next   int
}

var _ Observer = (*Prober)(nil)

// NewProber probes target every interval. An empty target uses DefaultProbeTarget.
func NewProber(target string, interval time.Duration) *Prober {
	if target == "" {
		target = DefaultProbeTarget
	}

	return &Prober{
		target:   target,
		interval: interval,
		client:   Client,
		subs:     make(map[int]func(bool)),
	}
}

// Subscribe registers fn. Callbacks must not call back into the prober.
func (p *Prober) Subscribe(fn func(online bool)) func() {
	p.deliver.Lock()
	defer p.deliver.Unlock()

	p.mu.Lock()
	id := p.next
	p.next++
	p.subs[id] = fn
	known, online := p.known, p.online
	p.mu.Unlock()

	if known {
		fn(online)
	}

	return func() {
		p.mu.Lock()
		delete(p.subs, id)
		p.mu.Unlock()
	}
}

// Report records the connectivity state and notifies subscribers if it changed.
func (p *Prober) Report(online bool) {
	p.deliver.Lock()
	defer p.deliver.Unlock()

	p.mu.Lock()
	if p.known && p.online == online {
		p.mu.Unlock()
		return
	}
	p.known = true
	p.online = online

	subs := make([]func(bool), 0, len(p.subs))
	for _, fn := range p.subs {
		subs = append(subs, fn)
	}
	p.mu.Unlock()

	for _, fn := range subs {
		fn(online)
	}
}

// Probe checks the target once. Only a 2xx answer counts as online.
func (p *Prober) Probe(ctx context.Context) bool {
	timeout := min(p.interval, 5*time.Second)
	if timeout <= 0 {
		timeout = 5 * time.Second
	}

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodHead, p.target, nil)
	if err != nil {
		return false
	}

	resp, err := p.client.Do(req)
	if err != nil {
		log.Debugf("connectivity probe failed: %v", err)
		return false
	}
	_ = resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		log.Debugf("connectivity probe answered %s", resp.Status)
		return false
	}

	return true
}

// Run probes until ctx is done.
func (p *Prober) Run(ctx context.Context) error {
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		online := p.Probe(ctx)
		if ctx.Err() != nil {
			return nil
		}
		p.Report(online)

		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}
	}
}
