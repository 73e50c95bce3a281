package tui

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"servctl/internal/session"
	"servctl/pkg/logging"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
)

// clipboardWrite is swapped in tests.
var clipboardWrite = clipboard.WriteAll

// handleKeyMsg routes a key press according to the current mode.
func handleKeyMsg(m model, keyMsg tea.KeyMsg) (model, tea.Cmd) {
	if keyMsg.String() == "ctrl+c" {
		return quit(m)
	}

	switch {
	case m.currentAppMode.isInputMode():
		return handleKeyMsgInput(m, keyMsg)

	case m.currentAppMode == ModeHelpOverlay:
		switch {
		case key.Matches(keyMsg, m.keys.Quit):
			return quit(m)
		case key.Matches(keyMsg, m.keys.Help), keyMsg.String() == "esc":
			m.currentAppMode = ModeDashboard
		}
		return m, nil

	case m.currentAppMode == ModeLogOverlay:
		switch {
		case key.Matches(keyMsg, m.keys.ToggleLog), keyMsg.String() == "esc":
			m.currentAppMode = ModeDashboard
			return m, nil
		case key.Matches(keyMsg, m.keys.CopyLogs):
			return m.copyToClipboard(strings.Join(m.activityLog, "\n"), "Activity log")
		}
		var vpCmd tea.Cmd
		m.logViewport, vpCmd = m.logViewport.Update(keyMsg)
		return m, vpCmd

	case m.currentAppMode == ModeInitializing, m.currentAppMode == ModeError:
		if key.Matches(keyMsg, m.keys.Quit) {
			return quit(m)
		}
		return m, nil
	}

	return handleKeyMsgGlobal(m, keyMsg)
}

// handleKeyMsgGlobal processes dashboard shortcuts.
func handleKeyMsgGlobal(m model, keyMsg tea.KeyMsg) (model, tea.Cmd) {
	switch {
	case key.Matches(keyMsg, m.keys.Quit):
		return quit(m)

	case key.Matches(keyMsg, m.keys.Start):
		return m.requestAction(session.TargetProcess, session.ActionStart)

	case key.Matches(keyMsg, m.keys.Stop):
		return m.requestAction(session.TargetProcess, session.ActionStop)

	case key.Matches(keyMsg, m.keys.Restart):
		return m.requestAction(session.TargetProcess, session.ActionRestart)

	case key.Matches(keyMsg, m.keys.TunnelToggle):
		kind := session.ActionStart
		if m.tunnel.Running {
			kind = session.ActionStop
		}
		return m.requestAction(session.TargetTunnel, kind)

	case key.Matches(keyMsg, m.keys.TunnelPort):
		m.openInput(ModePortInput, "Tunnel port: ", strconv.Itoa(m.tunnelPort))
		return m, textinput.Blink

	case key.Matches(keyMsg, m.keys.CopyURL):
		if !m.tunnel.Running || m.tunnel.PublicURL == "" {
			return m, m.setStatusMessage("Tunnel has no public URL", StatusBarWarning, 3*time.Second)
		}
		return m.copyToClipboard(m.tunnel.PublicURL, "Tunnel URL")

	case key.Matches(keyMsg, m.keys.Command):
		if !m.controls.Command {
			return m, m.setStatusMessage("Server is not running", StatusBarWarning, 3*time.Second)
		}
		m.openInput(ModeCommandInput, "> ", m.ctrl.Draft())
		return m, textinput.Blink

	case key.Matches(keyMsg, m.keys.QuickAction):
		return m.startQuickAction(quickActionIndex(keyMsg))

	case key.Matches(keyMsg, m.keys.Follow):
		m.follow = true
		m.consoleViewport.GotoBottom()
		return m, nil

	case key.Matches(keyMsg, m.keys.ScrollUp, m.keys.ScrollDown, m.keys.PageUp, m.keys.PageDown):
		var vpCmd tea.Cmd
		m.consoleViewport, vpCmd = m.consoleViewport.Update(keyMsg)
		m.follow = m.consoleViewport.AtBottom()
		return m, vpCmd

	case key.Matches(keyMsg, m.keys.CopyLogs):
		return m.copyToClipboard(strings.Join(m.consoleLogs, "\n"), "Console")

	case key.Matches(keyMsg, m.keys.ToggleLog):
		m.currentAppMode = ModeLogOverlay
		m.refreshLogOverlay()
		return m, nil

	case key.Matches(keyMsg, m.keys.DismissError):
		m.ctrl.ClearError()
		m.lastErr = nil
		return m, nil

	case key.Matches(keyMsg, m.keys.ToggleDebug):
		m.debugMode = !m.debugMode
		return m, nil

	case key.Matches(keyMsg, m.keys.Help):
		m.currentAppMode = ModeHelpOverlay
		return m, nil
	}
	return m, nil
}

func quit(m model) (model, tea.Cmd) {
	m.currentAppMode = ModeQuitting
	m.ctrl.Deactivate()
	return m, tea.Quit
}

// requestAction submits a lifecycle action. Rejections are also recorded by
// the controller and show up in the error banner.
func (m model) requestAction(target session.Target, kind session.ActionKind) (model, tea.Cmd) {
	err := m.ctrl.RequestAction(target, kind)
	m.syncFromController()
	if err != nil {
		return m, m.setStatusMessage(fmt.Sprintf("%s %s rejected: %v", target, kind, err), StatusBarWarning, 3*time.Second)
	}
	logging.Info("TUI", "Requested %s %s", kind, target)
	return m, m.setStatusMessage(fmt.Sprintf("Requested %s %s", kind, target), StatusBarInfo, 3*time.Second)
}

// startQuickAction runs the quick action at idx. Actions without an
// argument are sent right away, the others ask for their argument first.
func (m model) startQuickAction(idx int) (model, tea.Cmd) {
	if idx < 0 || idx >= len(m.quickActions) {
		return m, nil
	}
	if !m.controls.Command {
		return m, m.setStatusMessage("Server is not running", StatusBarWarning, 3*time.Second)
	}
	qa := m.quickActions[idx]
	if !qa.NeedsArgument {
		if m.commandBusy {
			return m, nil
		}
		m.commandBusy = true
		return m, sendCommandCmd(m.ctrl, qa.Command)
	}
	if err := m.ctrl.OpenQuickAction(qa.Title, qa.Command); err != nil {
		return m, m.setStatusMessage(err.Error(), StatusBarError, 3*time.Second)
	}
	m.pendingQuick = qa.Title
	m.openInput(ModeQuickActionInput, qa.Title+": ", "")
	return m, textinput.Blink
}

func quickActionIndex(keyMsg tea.KeyMsg) int {
	s := keyMsg.String()
	if len(s) != 1 || s[0] < '1' || s[0] > '9' {
		return -1
	}
	return int(s[0] - '1')
}

func (m model) copyToClipboard(text, what string) (model, tea.Cmd) {
	if err := clipboardWrite(text); err != nil {
		logging.Error("TUI", err, "Failed to copy %s", strings.ToLower(what))
		return m, m.setStatusMessage("Copy "+strings.ToLower(what)+" failed", StatusBarError, 3*time.Second)
	}
	return m, m.setStatusMessage(what+" copied to clipboard", StatusBarSuccess, 3*time.Second)
}
