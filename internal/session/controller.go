package session

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"servctl/pkg/logging"
)

// Config holds the controller timings and limits.
type Config struct {
	ProcessInterval time.Duration
	TunnelInterval  time.Duration
	Gate            GateConfig
	TunnelPort      int
	LogCapacity     int // 0 keeps every log line
}

// Controls says which operator actions are currently enabled.
type Controls struct {
	Start       bool
	Stop        bool
	Restart     bool
	TunnelStart bool
	TunnelStop  bool
	Command     bool
}

// Allows reports whether kind on target is enabled.
func (c Controls) Allows(target Target, kind ActionKind) bool {
	switch target {
	case TargetProcess:
		switch kind {
		case ActionStart:
			return c.Start
		case ActionStop:
			return c.Stop
		case ActionRestart:
			return c.Restart
		}
	case TargetTunnel:
		switch kind {
		case ActionStart:
			return c.TunnelStart
		case ActionStop:
			return c.TunnelStop
		}
	}
	return false
}

// Controller is the composition root of one console session. A stream
// session exists exactly while the controller is active and the latest
// applied run state says running.
type Controller struct {
	remote   Remote
	registry Registry
	cfg      Config
	events   chan Event

	// epoch changes on every activation and deactivation. Callbacks
	// capture it and drop their work once it moved on.
	epoch atomic.Uint64

	mu            sync.Mutex
	active        bool
	process       ManagedProcess
	runCtx        context.Context
	cancel        context.CancelFunc
	processPoller *Poller[RunState]
	tunnelPoller  *Poller[TunnelState]
	gate          *ActionGate
	dispatcher    *CommandDispatcher
	run           RunState
	runKnown      bool
	tunnel        TunnelState
	tunnelKnown   bool
	tunnelPort    int
	stream        *StreamSession // live session, nil while not running
	lastStream    *StreamSession // most recent session, kept for its frozen buffer
	lastErr       error
}

// NewController creates an inactive controller.
func NewController(remote Remote, registry Registry, cfg Config) *Controller {
	return &Controller{
		remote:     remote,
		registry:   registry,
		cfg:        cfg,
		events:     make(chan Event, eventBufferSize),
		tunnelPort: cfg.TunnelPort,
	}
}

// Events returns the change notification channel.
func (c *Controller) Events() <-chan Event {
	return c.events
}

func (c *Controller) emit(kind EventKind, target Target) {
	select {
	case c.events <- Event{Kind: kind, Target: target}:
	default:
	}
}

// Activate binds the controller to processID and starts polling. Unknown
// ids fail with a TargetNotFound error and nothing is started.
func (c *Controller) Activate(ctx context.Context, processID string) error {
	c.mu.Lock()
	if c.active {
		c.mu.Unlock()
		return ErrAlreadyActive
	}
	c.mu.Unlock()

	proc, err := c.registry.Resolve(ctx, processID)
	if err != nil {
		sessErr := &Error{Kind: KindTargetNotFound, Op: "activate", Err: err}
		logging.Error("Controller", err, "cannot activate %s", processID)
		c.setError(sessErr)
		return sessErr
	}

	c.mu.Lock()
	if c.active {
		c.mu.Unlock()
		return ErrAlreadyActive
	}
	epoch := c.epoch.Add(1)
	c.active = true
	c.process = proc
	c.runCtx, c.cancel = context.WithCancel(context.WithoutCancel(ctx))
	c.run, c.runKnown = RunState{}, false
	c.tunnel, c.tunnelKnown = TunnelState{}, false
	c.stream, c.lastStream = nil, nil
	c.lastErr = nil

	c.gate = NewActionGate(proc.ID, c.remote, c.cfg.Gate, GateHooks{
		OnChange:  func(t Target, _ bool) { c.onGateChange(epoch, t) },
		OnResult:  func(t Target, k ActionKind, err error) { c.onActionResult(epoch, t, k, err) },
		OnSettled: func(t Target) { c.onSettled(epoch, t) },
	})
	c.gate.SetTunnelPort(c.tunnelPort)
	c.dispatcher = NewCommandDispatcher(proc.ID, c.remote)

	c.processPoller = NewPoller("process", c.cfg.ProcessInterval, func(ctx context.Context) (RunState, error) {
		return c.remote.GetProcessStatus(ctx, proc.ID)
	})
	c.processPoller.Subscribe(func(rs RunState) { c.applyRunState(epoch, rs) })
	c.processPoller.OnError(func(err error) { c.onFetchError(epoch, TargetProcess, err) })

	c.tunnelPoller = NewPoller("tunnel", c.cfg.TunnelInterval, func(ctx context.Context) (TunnelState, error) {
		return c.remote.GetTunnelStatus(ctx)
	})
	c.tunnelPoller.Subscribe(func(ts TunnelState) { c.applyTunnelState(epoch, ts) })
	c.tunnelPoller.OnError(func(err error) { c.onFetchError(epoch, TargetTunnel, err) })

	pp, tp, runCtx := c.processPoller, c.tunnelPoller, c.runCtx
	c.mu.Unlock()

	pp.Start(runCtx)
	tp.Start(runCtx)
	if c.epoch.Load() != epoch {
		// Deactivated while starting.
		pp.Stop()
		tp.Stop()
		return nil
	}

	logging.Info("Controller", "activated %s (%s %s)", proc.ID, proc.Name, proc.Version)
	c.emit(EventActivated, "")
	return nil
}

// Deactivate stops both pollers and then closes the stream. Late poll and
// dial results are ignored afterwards. Safe to call repeatedly.
func (c *Controller) Deactivate() {
	c.mu.Lock()
	if !c.active {
		c.mu.Unlock()
		return
	}
	c.active = false
	c.epoch.Add(1)
	pp, tp, cancel := c.processPoller, c.tunnelPoller, c.cancel
	c.mu.Unlock()

	// Pollers call into the controller under their own lock, so they
	// are stopped without holding c.mu.
	pp.Stop()
	tp.Stop()
	cancel()

	c.mu.Lock()
	if c.stream != nil {
		c.stream.Close(ReasonDeactivated)
		c.stream = nil
	}
	id := c.process.ID
	c.mu.Unlock()

	logging.Info("Controller", "deactivated %s", id)
	c.emit(EventDeactivated, "")
}

func (c *Controller) applyRunState(epoch uint64, rs RunState) {
	c.mu.Lock()
	if !c.active || c.epoch.Load() != epoch {
		c.mu.Unlock()
		return
	}
	changed := !c.runKnown || c.run.Running != rs.Running
	c.run, c.runKnown = rs, true
	id := c.process.ID

	switch {
	case rs.Running && c.stream == nil:
		s := NewStreamSession(c.process.ID, c.remote,
			WithCapacity(c.cfg.LogCapacity),
			WithNotify(func() { c.onStreamChange(epoch) }),
			WithCloseHook(func(r CloseReason, err error) { c.onStreamClosed(epoch, r, err) }),
		)
		c.stream, c.lastStream = s, s
		s.Open(c.runCtx)
	case !rs.Running && c.stream != nil:
		c.stream.Close(ReasonStopped)
		c.stream = nil
	}
	c.mu.Unlock()

	if changed {
		logging.Info("Controller", "%s running=%t", id, rs.Running)
		c.emit(EventRunState, TargetProcess)
	}
}

func (c *Controller) applyTunnelState(epoch uint64, ts TunnelState) {
	c.mu.Lock()
	if !c.active || c.epoch.Load() != epoch {
		c.mu.Unlock()
		return
	}
	changed := !c.tunnelKnown || c.tunnel != ts
	c.tunnel, c.tunnelKnown = ts, true
	c.mu.Unlock()

	if changed {
		logging.Info("Controller", "tunnel running=%t url=%q", ts.Running, ts.PublicURL)
		c.emit(EventTunnelState, TargetTunnel)
	}
}

func (c *Controller) onFetchError(epoch uint64, target Target, err error) {
	if c.epoch.Load() != epoch {
		return
	}
	logging.Debug("Controller", "%v", &Error{Kind: KindFetchFailed, Target: target, Op: "status", Err: err})
}

func (c *Controller) onStreamChange(epoch uint64) {
	if c.epoch.Load() != epoch {
		return
	}
	c.emit(EventStream, TargetProcess)
}

func (c *Controller) onStreamClosed(epoch uint64, reason CloseReason, err error) {
	if c.epoch.Load() != epoch {
		return
	}
	switch reason {
	case ReasonError:
		logging.Warn("Controller", "%v", &Error{Kind: KindStreamError, Target: TargetProcess, Err: err})
	case ReasonRemoteClosed:
		logging.Info("Controller", "%v", &Error{Kind: KindStreamClosed, Target: TargetProcess})
	}
}

func (c *Controller) onGateChange(epoch uint64, target Target) {
	if c.epoch.Load() != epoch {
		return
	}
	c.emit(EventAction, target)
}

func (c *Controller) onActionResult(epoch uint64, target Target, kind ActionKind, err error) {
	if err == nil || c.epoch.Load() != epoch {
		return
	}
	c.setError(err)
}

func (c *Controller) onSettled(epoch uint64, target Target) {
	if c.epoch.Load() != epoch {
		return
	}
	c.mu.Lock()
	pp, tp := c.processPoller, c.tunnelPoller
	c.mu.Unlock()

	if target == TargetTunnel {
		tp.Refresh()
	} else {
		pp.Refresh()
	}
}

func (c *Controller) setError(err error) {
	c.mu.Lock()
	c.lastErr = err
	c.mu.Unlock()
	c.emit(EventError, "")
}

// RequestAction submits a lifecycle action. It is rejected when the
// control is disabled or an action for target is already in flight.
func (c *Controller) RequestAction(target Target, kind ActionKind) error {
	c.mu.Lock()
	if !c.active {
		c.mu.Unlock()
		return ErrNotActive
	}
	controls := c.controlsLocked()
	gate, ctx := c.gate, c.runCtx
	c.mu.Unlock()

	if !validAction(target, kind) || (!controls.Allows(target, kind) && !gate.InFlight(target)) {
		err := &Error{Kind: KindActionRejected, Target: target, Op: string(kind), Err: ErrActionUnavailable}
		c.setError(err)
		return err
	}
	if err := gate.Submit(ctx, target, kind); err != nil {
		c.setError(err)
		return err
	}
	return nil
}

// SendCommand sends a console command. Blank text is a no-op.
func (c *Controller) SendCommand(ctx context.Context, text string) error {
	d, err := c.commandTarget("command")
	if err != nil {
		if errors.Is(err, ErrProcessNotRunning) && isBlank(text) {
			return nil
		}
		return err
	}
	if _, err := d.Send(ctx, text); err != nil {
		c.setError(err)
		return err
	}
	return nil
}

// OpenQuickAction starts a templated command.
func (c *Controller) OpenQuickAction(title, prefix string) error {
	c.mu.Lock()
	if !c.active {
		c.mu.Unlock()
		return ErrNotActive
	}
	d := c.dispatcher
	c.mu.Unlock()

	d.OpenQuickAction(title, prefix)
	c.emit(EventQuickAction, TargetProcess)
	return nil
}

// CancelQuickAction discards the open quick action.
func (c *Controller) CancelQuickAction() {
	c.mu.Lock()
	d := c.dispatcher
	c.mu.Unlock()
	if d == nil {
		return
	}
	d.CancelQuickAction()
	c.emit(EventQuickAction, TargetProcess)
}

// QuickAction returns the open quick action.
func (c *Controller) QuickAction() (QuickAction, bool) {
	c.mu.Lock()
	d := c.dispatcher
	c.mu.Unlock()
	if d == nil {
		return QuickAction{}, false
	}
	return d.QuickAction()
}

// SubmitQuickAction completes the open quick action with arg. Empty
// arguments are refused with ErrEmptyArgument and keep the action open.
func (c *Controller) SubmitQuickAction(ctx context.Context, arg string) (string, error) {
	d, err := c.commandTarget("quick action")
	if err != nil {
		return "", err
	}
	text, err := d.SubmitQuickAction(ctx, arg)
	if errors.Is(err, ErrEmptyArgument) || errors.Is(err, ErrNoQuickAction) {
		return "", err
	}
	c.emit(EventQuickAction, TargetProcess)
	if err != nil {
		c.setError(err)
		return text, err
	}
	return text, nil
}

func isBlank(s string) bool {
	return strings.TrimSpace(s) == ""
}

func (c *Controller) commandTarget(op string) (*CommandDispatcher, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.active {
		return nil, ErrNotActive
	}
	if !c.run.Running {
		return nil, &Error{Kind: KindActionRejected, Target: TargetProcess, Op: op, Err: ErrProcessNotRunning}
	}
	return c.dispatcher, nil
}

// SetTunnelPort sets the port used by the next tunnel start.
func (c *Controller) SetTunnelPort(port int) error {
	if port < 1 || port > 65535 {
		return fmt.Errorf("%w: %d", ErrInvalidPort, port)
	}
	c.mu.Lock()
	c.tunnelPort = port
	gate := c.gate
	c.mu.Unlock()
	if gate != nil {
		gate.SetTunnelPort(port)
	}
	return nil
}

// TunnelPort returns the port used by tunnel start.
func (c *Controller) TunnelPort() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.tunnelPort
}

// Active reports whether the controller is bound to a server.
func (c *Controller) Active() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.active
}

// Process returns the bound server.
func (c *Controller) Process() ManagedProcess {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.process
}

// RunState returns the latest applied run state and whether one arrived yet.
func (c *Controller) RunState() (RunState, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.run, c.runKnown
}

// TunnelState returns the latest applied tunnel state and whether one arrived yet.
func (c *Controller) TunnelState() (TunnelState, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.tunnel, c.tunnelKnown
}

// HasStream reports whether a stream session is attached.
func (c *Controller) HasStream() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.stream != nil
}

// StreamState returns the state of the most recent stream session.
func (c *Controller) StreamState() StreamState {
	c.mu.Lock()
	s := c.lastStream
	c.mu.Unlock()
	if s == nil {
		return StreamClosed
	}
	return s.State()
}

// Logs returns the lines of the most recent stream session. After the
// session closed they stay readable until the next session replaces them.
func (c *Controller) Logs() []string {
	c.mu.Lock()
	s := c.lastStream
	c.mu.Unlock()
	if s == nil {
		return nil
	}
	return s.Buffer().Lines()
}

// StreamID returns the id of the most recent stream session, or "" if
// none was opened since activation.
func (c *Controller) StreamID() string {
	c.mu.Lock()
	s := c.lastStream
	c.mu.Unlock()
	if s == nil {
		return ""
	}
	return s.ID()
}

// InFlight reports whether target has an action in flight.
func (c *Controller) InFlight(target Target) bool {
	c.mu.Lock()
	gate := c.gate
	c.mu.Unlock()
	return gate != nil && gate.InFlight(target)
}

// Draft returns the console input that was not sent successfully.
func (c *Controller) Draft() string {
	c.mu.Lock()
	d := c.dispatcher
	c.mu.Unlock()
	if d == nil {
		return ""
	}
	return d.Draft()
}

// Controls returns which actions are enabled right now.
func (c *Controller) Controls() Controls {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.controlsLocked()
}

func (c *Controller) controlsLocked() Controls {
	if !c.active {
		return Controls{}
	}
	procBusy := c.gate.InFlight(TargetProcess)
	tunnelBusy := c.gate.InFlight(TargetTunnel)
	return Controls{
		Start:       !procBusy && !c.run.Running,
		Stop:        !procBusy && c.run.Running,
		Restart:     !procBusy,
		TunnelStart: !tunnelBusy && !c.tunnel.Running,
		TunnelStop:  !tunnelBusy && c.tunnel.Running,
		Command:     c.run.Running,
	}
}

// LastError returns the most recent surfaced error.
func (c *Controller) LastError() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lastErr
}

// ClearError dismisses the surfaced error.
func (c *Controller) ClearError() {
	c.mu.Lock()
	c.lastErr = nil
	c.mu.Unlock()
	c.emit(EventError, "")
}
