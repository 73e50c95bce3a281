package session

// EventKind says what changed in a controller.
type EventKind int

const (
	EventActivated EventKind = iota + 1
	EventDeactivated
	EventRunState
	EventTunnelState
	EventStream
	EventAction
	EventQuickAction
	EventError
)

func (k EventKind) String() string {
	switch k {
	case EventActivated:
		return "activated"
	case EventDeactivated:
		return "deactivated"
	case EventRunState:
		return "run-state"
	case EventTunnelState:
		return "tunnel-state"
	case EventStream:
		return "stream"
	case EventAction:
		return "action"
	case EventQuickAction:
		return "quick-action"
	case EventError:
		return "error"
	default:
		return "unknown"
	}
}

// Event tells the presentation layer to re-read controller state. Events
// carry no state themselves and may be dropped when the consumer lags.
type Event struct {
	Kind   EventKind
	Target Target
}

const eventBufferSize = 256
