package tui

import (
	"context"
	"time"

	"servctl/internal/session"
	"servctl/pkg/logging"

	tea "github.com/charmbracelet/bubbletea"
)

const (
	resyncInterval = time.Second
	commandTimeout = 30 * time.Second
)

// activateCmd binds the controller to the server in the background.
func activateCmd(ctrl *session.Controller, serverID string) tea.Cmd {
	return func() tea.Msg {
		err := ctrl.Activate(context.Background(), serverID)
		return activatedMsg{err: err}
	}
}

// waitForEvent delivers the next controller event.
func waitForEvent(ch <-chan session.Event) tea.Cmd {
	return func() tea.Msg {
		ev, ok := <-ch
		if !ok {
			return nil
		}
		return sessionEventMsg{event: ev}
	}
}

// waitForLogEntry delivers the next application log entry.
func waitForLogEntry(ch <-chan logging.LogEntry) tea.Cmd {
	if ch == nil {
		return nil
	}
	return func() tea.Msg {
		entry, ok := <-ch
		if !ok {
			return nil
		}
		return logEntryMsg{entry: entry}
	}
}

func resyncTick() tea.Cmd {
	return tea.Tick(resyncInterval, func(time.Time) tea.Msg {
		return resyncTickMsg{}
	})
}

// sendCommandCmd runs a console command.
func sendCommandCmd(ctrl *session.Controller, text string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
		defer cancel()
		err := ctrl.SendCommand(ctx, text)
		return commandResultMsg{text: text, err: err}
	}
}

// submitQuickActionCmd completes the open quick action with arg.
func submitQuickActionCmd(ctrl *session.Controller, arg string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
		defer cancel()
		text, err := ctrl.SubmitQuickAction(ctx, arg)
		return commandResultMsg{text: text, quick: true, err: err}
	}
}
