package session

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type pendingFetch struct {
	reply chan int
	err   chan error
}

// controlledFetch hands every fetch to the test, which decides when and
// with what it completes.
func controlledFetch() (FetchFunc[int], chan pendingFetch) {
	calls := make(chan pendingFetch, 16)
	fetch := func(ctx context.Context) (int, error) {
		pf := pendingFetch{reply: make(chan int, 1), err: make(chan error, 1)}
		calls <- pf
		select {
		case v := <-pf.reply:
			return v, nil
		case err := <-pf.err:
			return 0, err
		}
	}
	return fetch, calls
}

type recorder struct {
	mu   sync.Mutex
	seen []int
}

func (r *recorder) observe(v int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.seen = append(r.seen, v)
}

func (r *recorder) values() []int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]int(nil), r.seen...)
}

func TestPollerFetchesImmediatelyAndOnInterval(t *testing.T) {
	var calls atomic.Int32
	p := NewPoller("test", 20*time.Millisecond, func(ctx context.Context) (int, error) {
		return int(calls.Add(1)), nil
	})
	p.Start(context.Background())
	defer p.Stop()

	assert.Eventually(t, func() bool { return calls.Load() >= 1 }, 100*time.Millisecond, time.Millisecond)
	assert.Eventually(t, func() bool { return calls.Load() >= 3 }, time.Second, 5*time.Millisecond)
}

func TestPollerDropsStaleResults(t *testing.T) {
	fetch, calls := controlledFetch()
	p := NewPoller("test", time.Hour, fetch)
	rec := &recorder{}
	p.Subscribe(rec.observe)

	p.Start(context.Background())
	defer p.Stop()

	first := <-calls
	p.Refresh()
	second := <-calls

	// The newer fetch completes first.
	second.reply <- 2
	assert.Eventually(t, func() bool {
		v, ok := p.Snapshot()
		return ok && v == 2
	}, time.Second, time.Millisecond)

	first.reply <- 1
	assert.Never(t, func() bool {
		v, _ := p.Snapshot()
		return v == 1
	}, 100*time.Millisecond, 5*time.Millisecond)
	assert.Equal(t, []int{2}, rec.values())
}

func TestPollerAppliesInCompletionOrder(t *testing.T) {
	fetch, calls := controlledFetch()
	p := NewPoller("test", time.Hour, fetch)
	rec := &recorder{}
	p.Subscribe(rec.observe)

	p.Start(context.Background())
	defer p.Stop()

	first := <-calls
	first.reply <- 1
	assert.Eventually(t, func() bool { return len(rec.values()) == 1 }, time.Second, time.Millisecond)

	p.Refresh()
	second := <-calls
	second.reply <- 2
	assert.Eventually(t, func() bool { return len(rec.values()) == 2 }, time.Second, time.Millisecond)
	assert.Equal(t, []int{1, 2}, rec.values())
}

func TestPollerFailureKeepsSnapshot(t *testing.T) {
	fetch, calls := controlledFetch()
	p := NewPoller("test", time.Hour, fetch)

	var errs atomic.Int32
	p.OnError(func(err error) { errs.Add(1) })

	p.Start(context.Background())
	defer p.Stop()

	(<-calls).reply <- 7
	assert.Eventually(t, func() bool { _, ok := p.Snapshot(); return ok }, time.Second, time.Millisecond)

	p.Refresh()
	(<-calls).err <- errors.New("timeout")
	assert.Eventually(t, func() bool { return errs.Load() == 1 }, time.Second, time.Millisecond)

	v, ok := p.Snapshot()
	assert.True(t, ok)
	assert.Equal(t, 7, v)

	// Polling continues after a failure.
	p.Refresh()
	(<-calls).reply <- 8
	assert.Eventually(t, func() bool { v, _ := p.Snapshot(); return v == 8 }, time.Second, time.Millisecond)
}

func TestPollerStopSilencesLateResults(t *testing.T) {
	fetch, calls := controlledFetch()
	p := NewPoller("test", time.Hour, fetch)
	rec := &recorder{}
	p.Subscribe(rec.observe)

	p.Start(context.Background())
	inFlight := <-calls

	p.Stop()
	p.Stop()

	inFlight.reply <- 1
	assert.Never(t, func() bool { return len(rec.values()) > 0 }, 100*time.Millisecond, 5*time.Millisecond)
	_, ok := p.Snapshot()
	assert.False(t, ok)
}

func TestPollerRefreshWhileStoppedDoesNothing(t *testing.T) {
	var calls atomic.Int32
	p := NewPoller("test", time.Hour, func(ctx context.Context) (int, error) {
		calls.Add(1)
		return 0, nil
	})

	p.Refresh()
	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, int32(0), calls.Load())
}

func TestPollerCanRestart(t *testing.T) {
	var calls atomic.Int32
	p := NewPoller("test", time.Hour, func(ctx context.Context) (int, error) {
		return int(calls.Add(1)), nil
	})

	p.Start(context.Background())
	require.Eventually(t, func() bool { _, ok := p.Snapshot(); return ok }, time.Second, time.Millisecond)
	p.Stop()

	p.Start(context.Background())
	defer p.Stop()
	assert.Eventually(t, func() bool { v, _ := p.Snapshot(); return v == 2 }, time.Second, time.Millisecond)
}
