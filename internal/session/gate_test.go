package session

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fastGate = GateConfig{
	ProcessSettle: 30 * time.Millisecond,
	TunnelSettle:  50 * time.Millisecond,
	RestartDelay:  40 * time.Millisecond,
}

type timedCall struct {
	name string
	at   time.Time
}

type timingSink struct {
	mu    sync.Mutex
	calls []timedCall
	errs  map[string]error
	ports []int
}

func (s *timingSink) add(name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = append(s.calls, timedCall{name: name, at: time.Now()})
	return s.errs[name]
}

func (s *timingSink) PostProcessAction(ctx context.Context, id string, kind ActionKind) error {
	return s.add("process:" + string(kind))
}

func (s *timingSink) PostTunnelAction(ctx context.Context, kind ActionKind, port int) error {
	s.mu.Lock()
	s.ports = append(s.ports, port)
	s.mu.Unlock()
	return s.add("tunnel:" + string(kind))
}

func (s *timingSink) snapshot() []timedCall {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]timedCall(nil), s.calls...)
}

func TestGateRejectsSecondSubmitForSameTarget(t *testing.T) {
	remote := newFakeRemote()
	remote.actionGate = make(chan struct{})
	g := NewActionGate("srv-1", remote, fastGate, GateHooks{})

	require.NoError(t, g.Submit(context.Background(), TargetProcess, ActionStart))
	err := g.Submit(context.Background(), TargetProcess, ActionStart)

	require.Error(t, err)
	assert.ErrorIs(t, err, ErrAlreadyInFlight)
	assert.True(t, IsKind(err, KindActionRejected))

	close(remote.actionGate)
	assert.Eventually(t, func() bool { return len(remote.actionLog()) == 1 }, time.Second, time.Millisecond)
	assert.Never(t, func() bool { return len(remote.actionLog()) > 1 }, 100*time.Millisecond, 5*time.Millisecond)
}

func TestGateTargetsAreIndependent(t *testing.T) {
	remote := newFakeRemote()
	remote.actionGate = make(chan struct{})
	defer close(remote.actionGate)
	g := NewActionGate("srv-1", remote, fastGate, GateHooks{})

	require.NoError(t, g.Submit(context.Background(), TargetProcess, ActionStart))
	assert.NoError(t, g.Submit(context.Background(), TargetTunnel, ActionStart))
	assert.True(t, g.InFlight(TargetProcess))
	assert.True(t, g.InFlight(TargetTunnel))
}

func TestGateClearsFlagAfterSettleDelay(t *testing.T) {
	sink := &timingSink{}
	cfg := fastGate
	cfg.ProcessSettle = 150 * time.Millisecond

	settled := make(chan Target, 1)
	g := NewActionGate("srv-1", sink, cfg, GateHooks{OnSettled: func(t Target) { settled <- t }})

	require.NoError(t, g.SubmitWait(context.Background(), TargetProcess, ActionStop))
	assert.True(t, g.InFlight(TargetProcess), "flag held during settle delay")
	kind, ok := g.Pending(TargetProcess)
	assert.True(t, ok)
	assert.Equal(t, ActionStop, kind)

	select {
	case target := <-settled:
		assert.Equal(t, TargetProcess, target)
	case <-time.After(time.Second):
		t.Fatal("settle hook not called")
	}
	assert.False(t, g.InFlight(TargetProcess))
}

func TestGateFailureIsReportedAndCleared(t *testing.T) {
	sink := &timingSink{errs: map[string]error{"process:start": errors.New("500 internal")}}
	var results []error
	var mu sync.Mutex
	g := NewActionGate("srv-1", sink, fastGate, GateHooks{
		OnResult: func(_ Target, _ ActionKind, err error) {
			mu.Lock()
			results = append(results, err)
			mu.Unlock()
		},
	})

	err := g.SubmitWait(context.Background(), TargetProcess, ActionStart)
	require.Error(t, err)
	assert.True(t, IsKind(err, KindActionFailed))
	assert.Contains(t, err.Error(), "failed to perform action start")

	mu.Lock()
	require.Len(t, results, 1)
	assert.Error(t, results[0])
	mu.Unlock()

	assert.Eventually(t, func() bool { return !g.InFlight(TargetProcess) }, time.Second, time.Millisecond)
	assert.NoError(t, g.Submit(context.Background(), TargetProcess, ActionStart), "retry allowed after settle")
}

func TestGateRestartStopsThenStartsEvenWhenStopFails(t *testing.T) {
	sink := &timingSink{errs: map[string]error{"process:stop": errors.New("already stopped")}}
	g := NewActionGate("srv-1", sink, fastGate, GateHooks{})

	start := time.Now()
	require.NoError(t, g.Submit(context.Background(), TargetProcess, ActionRestart))

	require.Eventually(t, func() bool { return len(sink.snapshot()) == 2 }, time.Second, time.Millisecond)
	calls := sink.snapshot()
	assert.Equal(t, "process:stop", calls[0].name)
	assert.Equal(t, "process:start", calls[1].name)
	assert.Less(t, calls[0].at.Sub(start), fastGate.RestartDelay, "stop is issued immediately")
	assert.GreaterOrEqual(t, calls[1].at.Sub(calls[0].at), fastGate.RestartDelay)
}

func TestGateFlagCoversWholeRestart(t *testing.T) {
	sink := &timingSink{}
	g := NewActionGate("srv-1", sink, fastGate, GateHooks{})

	require.NoError(t, g.Submit(context.Background(), TargetProcess, ActionRestart))
	require.Eventually(t, func() bool { return len(sink.snapshot()) == 1 }, time.Second, time.Millisecond)

	// Between stop and start.
	err := g.Submit(context.Background(), TargetProcess, ActionStart)
	assert.ErrorIs(t, err, ErrAlreadyInFlight)

	require.Eventually(t, func() bool { return !g.InFlight(TargetProcess) }, time.Second, time.Millisecond)
	assert.Len(t, sink.snapshot(), 2)
}

func TestGateRejectsTunnelRestart(t *testing.T) {
	sink := &timingSink{}
	g := NewActionGate("srv-1", sink, fastGate, GateHooks{})

	err := g.Submit(context.Background(), TargetTunnel, ActionRestart)
	assert.ErrorIs(t, err, ErrActionUnavailable)
	assert.True(t, IsKind(err, KindActionRejected))
	assert.False(t, g.InFlight(TargetTunnel))
	assert.Empty(t, sink.snapshot())
}

func TestGateTunnelStartUsesPort(t *testing.T) {
	sink := &timingSink{}
	g := NewActionGate("srv-1", sink, fastGate, GateHooks{})
	g.SetTunnelPort(19132)

	require.NoError(t, g.SubmitWait(context.Background(), TargetTunnel, ActionStart))
	assert.Equal(t, []int{19132}, sink.ports)
	assert.Equal(t, "tunnel:start", sink.snapshot()[0].name)
}

func TestGateOnChangeReportsBothEdges(t *testing.T) {
	sink := &timingSink{}
	edges := make(chan bool, 4)
	g := NewActionGate("srv-1", sink, fastGate, GateHooks{
		OnChange: func(_ Target, inFlight bool) { edges <- inFlight },
	})

	require.NoError(t, g.SubmitWait(context.Background(), TargetTunnel, ActionStop))
	assert.True(t, <-edges)
	select {
	case v := <-edges:
		assert.False(t, v)
	case <-time.After(time.Second):
		t.Fatal("flag never cleared")
	}
}

func TestGateSubmitWaitHonoursCancelDuringRestartDelay(t *testing.T) {
	sink := &timingSink{}
	cfg := fastGate
	cfg.RestartDelay = time.Hour
	g := NewActionGate("srv-1", sink, cfg, GateHooks{})

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Millisecond)
	defer cancel()

	err := g.SubmitWait(ctx, TargetProcess, ActionRestart)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Len(t, sink.snapshot(), 1)
	assert.Eventually(t, func() bool { return !g.InFlight(TargetProcess) }, time.Second, time.Millisecond)
}
