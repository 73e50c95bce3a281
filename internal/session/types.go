package session

import "context"

// ManagedProcess identifies the server a controller is bound to.
type ManagedProcess struct {
	ID      string
	Name    string
	Version string
}

// RunState is the polled belief about whether the server is executing.
type RunState struct {
	Running bool
}

// TunnelState is the polled state of the global tunnel.
type TunnelState struct {
	Running   bool
	PublicURL string
}

// Target is what a lifecycle action applies to.
type Target string

const (
	TargetProcess Target = "process"
	TargetTunnel  Target = "tunnel"
)

// ActionKind is a lifecycle action.
type ActionKind string

const (
	ActionStart   ActionKind = "start"
	ActionStop    ActionKind = "stop"
	ActionRestart ActionKind = "restart"
)

// StatusSource answers status polls.
type StatusSource interface {
	GetProcessStatus(ctx context.Context, processID string) (RunState, error)
	GetTunnelStatus(ctx context.Context) (TunnelState, error)
}

// ActionSink performs lifecycle actions on the panel.
type ActionSink interface {
	PostProcessAction(ctx context.Context, processID string, kind ActionKind) error
	PostTunnelAction(ctx context.Context, kind ActionKind, port int) error
}

// CommandSink runs console commands.
type CommandSink interface {
	PostCommand(ctx context.Context, processID, text string) error
}

// LogConn is an open log stream. ReadLine returns io.EOF when the remote
// side closed the stream normally.
type LogConn interface {
	ReadLine() (string, error)
	Close() error
}

// StreamDialer opens log streams.
type StreamDialer interface {
	OpenLogStream(ctx context.Context, processID string) (LogConn, error)
}

// Remote is everything the controller needs from the panel.
type Remote interface {
	StatusSource
	ActionSink
	CommandSink
	StreamDialer
}

// Registry resolves server ids to known servers.
type Registry interface {
	Resolve(ctx context.Context, processID string) (ManagedProcess, error)
}
