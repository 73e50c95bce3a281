package session

import (
	"context"
	"sync"
	"time"

	"servctl/pkg/logging"
)

// FetchFunc fetches one status snapshot.
type FetchFunc[T any] func(ctx context.Context) (T, error)

// Poller fetches a snapshot immediately on Start and then every interval.
//
// Results are applied in completion order, but a completion whose sequence
// number is not newer than the last applied one is dropped, so a slow fetch
// never overwrites a newer snapshot. Observers run synchronously while the
// poller lock is held; they must not call back into the poller.
type Poller[T any] struct {
	name     string
	interval time.Duration
	fetch    FetchFunc[T]

	mu          sync.Mutex
	running     bool
	epoch       uint64
	issued      uint64
	applied     uint64
	snapshot    T
	hasSnapshot bool
	observers   []func(T)
	onError     func(error)

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewPoller creates a stopped poller.
func NewPoller[T any](name string, interval time.Duration, fetch FetchFunc[T]) *Poller[T] {
	return &Poller[T]{
		name:     name,
		interval: interval,
		fetch:    fetch,
	}
}

// Subscribe registers an observer for every applied snapshot.
func (p *Poller[T]) Subscribe(fn func(T)) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.observers = append(p.observers, fn)
}

// OnError registers the observer for failed fetches. The previous snapshot
// stays in place when a fetch fails.
func (p *Poller[T]) OnError(fn func(error)) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.onError = fn
}

// Start issues the first fetch and starts the ticker. Starting a running
// poller does nothing.
func (p *Poller[T]) Start(ctx context.Context) {
	p.mu.Lock()
	if p.running {
		p.mu.Unlock()
		return
	}
	p.running = true
	p.epoch++
	p.ctx, p.cancel = context.WithCancel(ctx)
	loopCtx := p.ctx
	p.wg.Add(1)
	p.mu.Unlock()

	logging.Debug("Poller", "%s poller started (every %s)", p.name, p.interval)
	go p.loop(loopCtx)
	p.issue()
}

// Stop cancels the ticker and every outstanding fetch. Once Stop returns no
// observer is called again. Safe to call repeatedly.
func (p *Poller[T]) Stop() {
	p.mu.Lock()
	if !p.running {
		p.mu.Unlock()
		return
	}
	p.running = false
	p.epoch++
	p.cancel()
	p.mu.Unlock()

	p.wg.Wait()
	logging.Debug("Poller", "%s poller stopped", p.name)
}

// Refresh issues one fetch outside the regular cadence.
func (p *Poller[T]) Refresh() {
	p.issue()
}

// Snapshot returns the latest applied snapshot and whether one exists.
func (p *Poller[T]) Snapshot() (T, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.snapshot, p.hasSnapshot
}

func (p *Poller[T]) loop(ctx context.Context) {
	defer p.wg.Done()

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			p.issue()
		}
	}
}

// issue takes a sequence number and runs the fetch in the background.
func (p *Poller[T]) issue() {
	ctx, seq, epoch, ok := p.begin()
	if !ok {
		return
	}
	go func() {
		v, err := p.fetch(ctx)
		p.complete(seq, epoch, v, err)
	}()
}

func (p *Poller[T]) begin() (context.Context, uint64, uint64, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.running {
		return nil, 0, 0, false
	}
	p.issued++
	return p.ctx, p.issued, p.epoch, true
}

func (p *Poller[T]) complete(seq, epoch uint64, v T, err error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.running || epoch != p.epoch {
		return
	}
	if seq <= p.applied {
		logging.Debug("Poller", "%s poller dropped stale result #%d (applied #%d)", p.name, seq, p.applied)
		return
	}
	if err != nil {
		logging.Warn("Poller", "%s status fetch failed: %v", p.name, err)
		if p.onError != nil {
			p.onError(err)
		}
		return
	}

	p.applied = seq
	p.snapshot = v
	p.hasSnapshot = true
	for _, obs := range p.observers {
		obs(v)
	}
}
