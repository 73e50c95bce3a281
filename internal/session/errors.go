package session

import (
	"errors"
	"fmt"
)

var (
	ErrAlreadyInFlight   = errors.New("an action is already in flight")
	ErrNotActive         = errors.New("session is not active")
	ErrAlreadyActive     = errors.New("session is already active")
	ErrProcessNotRunning = errors.New("server is not running")
	ErrEmptyArgument     = errors.New("argument is empty")
	ErrNoQuickAction     = errors.New("no quick action is open")
	ErrActionUnavailable = errors.New("action is not available")
	ErrInvalidPort       = errors.New("port must be between 1 and 65535")
)

// ErrorKind classifies session errors.
type ErrorKind int

const (
	KindFetchFailed ErrorKind = iota + 1
	KindActionRejected
	KindActionFailed
	KindStreamError
	KindStreamClosed
	KindTargetNotFound
)

func (k ErrorKind) String() string {
	switch k {
	case KindFetchFailed:
		return "FetchFailed"
	case KindActionRejected:
		return "ActionRejected"
	case KindActionFailed:
		return "ActionFailed"
	case KindStreamError:
		return "StreamError"
	case KindStreamClosed:
		return "StreamClosed"
	case KindTargetNotFound:
		return "TargetNotFound"
	default:
		return "Unknown"
	}
}

// Error is the error type surfaced by the session core.
type Error struct {
	Kind   ErrorKind
	Target Target // empty when not tied to a target
	Op     string // "start", "command", "status", ...
	Err    error
}

func (e *Error) Error() string {
	var msg string
	switch e.Kind {
	case KindFetchFailed:
		msg = fmt.Sprintf("failed to fetch %s status", e.Target)
	case KindActionRejected:
		msg = fmt.Sprintf("%s rejected", e.describe())
	case KindActionFailed:
		msg = fmt.Sprintf("failed to perform %s", e.describe())
	case KindStreamError:
		msg = "log stream error"
	case KindStreamClosed:
		msg = "log stream closed"
	case KindTargetNotFound:
		msg = "server not found"
	default:
		msg = "session error"
	}
	if e.Err != nil {
		return msg + ": " + e.Err.Error()
	}
	return msg
}

func (e *Error) describe() string {
	switch {
	case e.Target == TargetTunnel:
		return "tunnel action " + e.Op
	case e.Op == "command":
		return "command"
	case e.Op != "":
		return "action " + e.Op
	default:
		return "action"
	}
}

func (e *Error) Unwrap() error {
	return e.Err
}

// IsKind reports whether err is a *Error of the given kind.
func IsKind(err error, kind ErrorKind) bool {
	var se *Error
	return errors.As(err, &se) && se.Kind == kind
}
