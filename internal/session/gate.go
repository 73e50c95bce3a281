package session

import (
	"context"
	"errors"
	"sync"
	"time"

	"servctl/pkg/logging"
)

// GateConfig holds the action timings.
type GateConfig struct {
	ProcessSettle time.Duration // wait before clearing a process action
	TunnelSettle  time.Duration // wait before clearing a tunnel action
	RestartDelay  time.Duration // gap between stop and start of a restart
}

// GateHooks are called by the gate from background goroutines.
type GateHooks struct {
	// OnChange is called whenever a target's in-flight flag flips.
	OnChange func(target Target, inFlight bool)
	// OnResult is called after every remote call with its outcome.
	OnResult func(target Target, kind ActionKind, err error)
	// OnSettled is called after the settle delay, once the flag is cleared.
	OnSettled func(target Target)
}

// ActionGate allows at most one lifecycle action per target in flight.
// Further submissions for a busy target are rejected, not queued.
type ActionGate struct {
	processID string
	sink      ActionSink
	cfg       GateConfig
	hooks     GateHooks

	mu         sync.Mutex
	inFlight   map[Target]ActionKind
	tunnelPort int
}

// NewActionGate creates a gate acting on processID and the tunnel.
func NewActionGate(processID string, sink ActionSink, cfg GateConfig, hooks GateHooks) *ActionGate {
	return &ActionGate{
		processID: processID,
		sink:      sink,
		cfg:       cfg,
		hooks:     hooks,
		inFlight:  make(map[Target]ActionKind),
	}
}

// SetTunnelPort sets the local port exposed by tunnel start.
func (g *ActionGate) SetTunnelPort(port int) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.tunnelPort = port
}

// TunnelPort returns the port used for tunnel start.
func (g *ActionGate) TunnelPort() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.tunnelPort
}

// InFlight reports whether target has an action in flight.
func (g *ActionGate) InFlight(target Target) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	_, ok := g.inFlight[target]
	return ok
}

// Pending returns the kind of the in-flight action for target.
func (g *ActionGate) Pending(target Target) (ActionKind, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	kind, ok := g.inFlight[target]
	return kind, ok
}

// Submit starts kind on target in the background. The remote calls are
// not tied to ctx cancellation; a restart always issues its start half.
func (g *ActionGate) Submit(ctx context.Context, target Target, kind ActionKind) error {
	if err := g.acquire(target, kind); err != nil {
		return err
	}
	go func() {
		_ = g.run(context.WithoutCancel(ctx), target, kind)
	}()
	return nil
}

// SubmitWait runs kind on target and returns once the remote calls are
// done. The in-flight flag still clears after the settle delay.
func (g *ActionGate) SubmitWait(ctx context.Context, target Target, kind ActionKind) error {
	if err := g.acquire(target, kind); err != nil {
		return err
	}
	return g.run(ctx, target, kind)
}

func (g *ActionGate) acquire(target Target, kind ActionKind) error {
	if !validAction(target, kind) {
		return &Error{Kind: KindActionRejected, Target: target, Op: string(kind), Err: ErrActionUnavailable}
	}

	g.mu.Lock()
	if _, busy := g.inFlight[target]; busy {
		g.mu.Unlock()
		logging.Debug("Gate", "%s %s rejected, action in flight", target, kind)
		return &Error{Kind: KindActionRejected, Target: target, Op: string(kind), Err: ErrAlreadyInFlight}
	}
	g.inFlight[target] = kind
	g.mu.Unlock()

	if g.hooks.OnChange != nil {
		g.hooks.OnChange(target, true)
	}
	return nil
}

func validAction(target Target, kind ActionKind) bool {
	switch target {
	case TargetProcess:
		return kind == ActionStart || kind == ActionStop || kind == ActionRestart
	case TargetTunnel:
		return kind == ActionStart || kind == ActionStop
	default:
		return false
	}
}

func (g *ActionGate) run(ctx context.Context, target Target, kind ActionKind) error {
	defer g.scheduleSettle(target)

	if kind != ActionRestart {
		return g.call(ctx, target, kind)
	}

	stopErr := g.call(ctx, target, ActionStop)

	timer := time.NewTimer(g.cfg.RestartDelay)
	select {
	case <-timer.C:
	case <-ctx.Done():
		timer.Stop()
		return errors.Join(stopErr, ctx.Err())
	}

	// The start half is issued whether or not stop succeeded.
	startErr := g.call(ctx, target, ActionStart)
	return errors.Join(stopErr, startErr)
}

func (g *ActionGate) call(ctx context.Context, target Target, kind ActionKind) error {
	logging.Info("Gate", "%s %s requested", target, kind)

	var err error
	switch target {
	case TargetProcess:
		err = g.sink.PostProcessAction(ctx, g.processID, kind)
	case TargetTunnel:
		err = g.sink.PostTunnelAction(ctx, kind, g.TunnelPort())
	}
	if err != nil {
		logging.Error("Gate", err, "%s %s failed", target, kind)
		err = &Error{Kind: KindActionFailed, Target: target, Op: string(kind), Err: err}
	}

	if g.hooks.OnResult != nil {
		g.hooks.OnResult(target, kind, err)
	}
	return err
}

func (g *ActionGate) settleDelay(target Target) time.Duration {
	if target == TargetTunnel {
		return g.cfg.TunnelSettle
	}
	return g.cfg.ProcessSettle
}

func (g *ActionGate) scheduleSettle(target Target) {
	time.AfterFunc(g.settleDelay(target), func() {
		g.mu.Lock()
		delete(g.inFlight, target)
		g.mu.Unlock()

		logging.Debug("Gate", "%s settled", target)
		if g.hooks.OnChange != nil {
			g.hooks.OnChange(target, false)
		}
		if g.hooks.OnSettled != nil {
			g.hooks.OnSettled(target)
		}
	})
}
