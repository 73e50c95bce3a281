package tui

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

// handleKeyMsgInput processes key presses while a text input is focused.
func handleKeyMsgInput(m model, keyMsg tea.KeyMsg) (model, tea.Cmd) {
	switch keyMsg.String() {
	case "esc":
		m.closeInput()
		return m, nil
	case "enter":
		return m.submitInput()
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(keyMsg)
	return m, cmd
}

func (m *model) openInput(mode AppMode, prompt, value string) {
	m.currentAppMode = mode
	m.input.Prompt = prompt
	m.input.SetValue(value)
	m.input.CursorEnd()
	m.input.Focus()
}

// closeInput leaves any input mode. An open quick action is cancelled.
func (m *model) closeInput() {
	if !m.currentAppMode.isInputMode() {
		return
	}
	if m.currentAppMode == ModeQuickActionInput {
		m.ctrl.CancelQuickAction()
		m.pendingQuick = ""
	}
	m.input.Blur()
	m.input.Reset()
	m.currentAppMode = ModeDashboard
}

func (m model) submitInput() (model, tea.Cmd) {
	value := m.input.Value()

	switch m.currentAppMode {
	case ModeCommandInput:
		if m.commandBusy || strings.TrimSpace(value) == "" {
			return m, nil
		}
		m.commandBusy = true
		return m, sendCommandCmd(m.ctrl, value)

	case ModeQuickActionInput:
		if m.commandBusy {
			return m, nil
		}
		m.commandBusy = true
		return m, submitQuickActionCmd(m.ctrl, value)

	case ModePortInput:
		port, err := strconv.Atoi(strings.TrimSpace(value))
		if err != nil {
			return m, m.setStatusMessage(fmt.Sprintf("Invalid port %q", value), StatusBarError, 3*time.Second)
		}
		if err := m.ctrl.SetTunnelPort(port); err != nil {
			return m, m.setStatusMessage(err.Error(), StatusBarError, 3*time.Second)
		}
		m.tunnelPort = port
		m.closeInput()
		return m, m.setStatusMessage(fmt.Sprintf("Tunnel port set to %d", port), StatusBarSuccess, 3*time.Second)
	}
	return m, nil
}
