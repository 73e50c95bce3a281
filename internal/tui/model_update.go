package tui

import (
	"errors"
	"fmt"
	"time"

	"servctl/internal/session"
	"servctl/pkg/logging"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
)

// setStatusMessage shows message in the status bar and clears it after
// clearAfter unless another message replaced it in the meantime.
func (m *model) setStatusMessage(message string, msgType MessageType, clearAfter time.Duration) tea.Cmd {
	m.statusBarMessage = message
	m.statusBarMessageType = msgType

	if m.statusBarClearCancel != nil {
		close(m.statusBarClearCancel)
	}

	m.statusBarClearCancel = make(chan struct{})
	captured := m.statusBarClearCancel

	return tea.Tick(clearAfter, func(t time.Time) tea.Msg {
		select {
		case <-captured:
			return nil
		default:
			return clearStatusBarMsg{}
		}
	})
}

// Update is the heart of the Bubbletea program, handling all incoming messages.
func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		return handleWindowSizeMsg(m, msg)

	case tea.KeyMsg:
		return handleKeyMsg(m, msg)

	case activatedMsg:
		return handleActivated(m, msg)

	case sessionEventMsg:
		return handleSessionEvent(m, msg)

	case logEntryMsg:
		m.appendLogEntry(msg.entry)
		if m.currentAppMode == ModeLogOverlay {
			m.refreshLogOverlay()
		}
		return m, waitForLogEntry(m.logChannel)

	case commandResultMsg:
		return handleCommandResult(m, msg)

	case resyncTickMsg:
		if m.ctrl.Active() {
			m.syncFromController()
		}
		return m, resyncTick()

	case clearStatusBarMsg:
		m.statusBarMessage = ""
		m.statusBarClearCancel = nil
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}
	return m, nil
}

func handleActivated(m model, msg activatedMsg) (model, tea.Cmd) {
	if msg.err != nil {
		m.fatalErr = msg.err
		m.currentAppMode = ModeError
		logging.Error("TUI", msg.err, "Failed to attach to %s", m.serverID)
		return m, nil
	}
	m.currentAppMode = ModeDashboard
	m.syncFromController()
	logging.Info("TUI", "Attached to %s (%s)", m.process.ID, m.process.Name)
	return m, m.setStatusMessage(fmt.Sprintf("Attached to %s", m.displayName()), StatusBarSuccess, 3*time.Second)
}

func handleSessionEvent(m model, msg sessionEventMsg) (model, tea.Cmd) {
	cmds := []tea.Cmd{waitForEvent(m.ctrl.Events())}

	prevRun, prevKnown := m.runState, m.runKnown
	m.syncFromController()

	switch msg.event.Kind {
	case session.EventRunState:
		if prevKnown && prevRun.Running != m.runState.Running {
			label := "offline"
			if m.runState.Running {
				label = "online"
			}
			cmds = append(cmds, m.setStatusMessage("Server is "+label, StatusBarInfo, 3*time.Second))
		}
		if !m.runState.Running && m.currentAppMode == ModeCommandInput {
			m.closeInput()
		}
	case session.EventDeactivated:
		m.closeInput()
	}
	return m, tea.Batch(cmds...)
}

func handleCommandResult(m model, msg commandResultMsg) (model, tea.Cmd) {
	m.commandBusy = false
	m.syncFromController()

	if msg.quick {
		if errors.Is(msg.err, session.ErrEmptyArgument) {
			return m, m.setStatusMessage("An argument is required", StatusBarWarning, 3*time.Second)
		}
		if m.currentAppMode == ModeQuickActionInput {
			m.closeInput()
		}
	}

	if msg.err != nil {
		return m, m.setStatusMessage(fmt.Sprintf("Command failed: %v", msg.err), StatusBarError, 5*time.Second)
	}
	if m.currentAppMode == ModeCommandInput {
		m.input.Reset()
	}
	logging.Debug("TUI", "Sent command %q", msg.text)
	return m, m.setStatusMessage("Sent: "+msg.text, StatusBarSuccess, 3*time.Second)
}

// displayName returns the best label for the attached server.
func (m model) displayName() string {
	if m.process.Name != "" {
		return m.process.Name
	}
	return m.serverID
}
