package tui

import (
	"servctl/internal/session"
	"servctl/pkg/logging"
)

// activatedMsg reports the outcome of binding the controller to the server.
type activatedMsg struct {
	err error
}

// sessionEventMsg wraps a controller change notification.
type sessionEventMsg struct {
	event session.Event
}

// logEntryMsg carries one application log entry.
type logEntryMsg struct {
	entry logging.LogEntry
}

// commandResultMsg reports a finished console command or quick action.
type commandResultMsg struct {
	text  string
	quick bool
	err   error
}

// resyncTickMsg triggers a periodic re-read of the controller, covering
// events dropped while the event buffer was full.
type resyncTickMsg struct{}

type clearStatusBarMsg struct{}
