package tui

import (
	"fmt"
	"strings"

	"servctl/internal/session"

	"github.com/charmbracelet/lipgloss"
)

// renderHeader renders the title bar with the attached server.
func renderHeader(m model, width int) string {
	title := "servctl"
	if m.process.ID != "" {
		title = fmt.Sprintf("servctl  %s%s", SafeIcon(IconServer), m.displayName())
		if m.process.Version != "" {
			title += " " + m.process.Version
		}
		title += fmt.Sprintf("  [%s]", m.process.ID)
	}
	if m.busy() {
		title += "  " + m.spinner.View()
	}
	return headerStyle.Width(width).Render(title)
}

// renderServerPanel renders run state and lifecycle controls.
func renderServerPanel(m model, width int) string {
	var status string
	switch {
	case !m.runKnown:
		status = statusMsgInitializingStyle.Render(SafeIcon(IconHourglass) + "Checking...")
	case m.runState.Running:
		status = statusMsgRunningStyle.Render(SafeIcon(IconPlay) + "Online")
	default:
		status = statusMsgExitedStyle.Render(SafeIcon(IconStop) + "Offline")
	}
	if m.inFlight[session.TargetProcess] {
		status += "  " + m.spinner.View() + "working"
	}

	controls := strings.Join([]string{
		renderControl("s", "start", m.controls.Start),
		renderControl("x", "stop", m.controls.Stop),
		renderControl("r", "restart", m.controls.Restart),
	}, " ")

	content := lipgloss.JoinVertical(lipgloss.Left,
		panelTitleStyle.Render("Server"),
		status,
		controls,
	)
	return panelStyleFor(m.runKnown, m.runState.Running).Width(width).Render(content)
}

// renderTunnelPanel renders tunnel state, public URL and port.
func renderTunnelPanel(m model, width int) string {
	var status string
	switch {
	case !m.tunnelKnown:
		status = statusMsgInitializingStyle.Render(SafeIcon(IconHourglass) + "Checking...")
	case m.tunnel.Running:
		status = statusMsgRunningStyle.Render(SafeIcon(IconLink) + "Online")
	default:
		status = statusMsgExitedStyle.Render(SafeIcon(IconStop) + "Offline")
	}
	if m.inFlight[session.TargetTunnel] {
		status += "  " + m.spinner.View() + "working"
	}

	url := dimStyle.Render("no public URL")
	if m.tunnel.Running && m.tunnel.PublicURL != "" {
		url = urlStyle.Render(m.tunnel.PublicURL)
	}

	label, enabled := "start", m.controls.TunnelStart
	if m.tunnel.Running {
		label, enabled = "stop", m.controls.TunnelStop
	}
	controls := strings.Join([]string{
		renderControl("t", label, enabled),
		renderControl("p", fmt.Sprintf("port %d", m.tunnelPort), true),
		renderControl("u", "copy URL", m.tunnel.Running && m.tunnel.PublicURL != ""),
	}, " ")

	content := lipgloss.JoinVertical(lipgloss.Left,
		panelTitleStyle.Render("Tunnel"),
		status,
		url,
		controls,
	)
	return panelStyleFor(m.tunnelKnown, m.tunnel.Running).Width(width).Render(content)
}

func panelStyleFor(known, running bool) lipgloss.Style {
	switch {
	case !known:
		return panelStatusInitializingStyle
	case running:
		return panelStatusRunningStyle
	default:
		return panelStatusExitedStyle
	}
}

// renderControl renders a key hint, dimmed while the control is disabled.
func renderControl(keyName, label string, enabled bool) string {
	text := fmt.Sprintf("[%s] %s", keyName, label)
	if !enabled {
		return disabledControlStyle.Render(text)
	}
	return enabledControlStyle.Render(text)
}

// renderQuickActions renders the numbered quick action shortcuts.
func renderQuickActions(m model, width int) string {
	if len(m.quickActions) == 0 {
		return ""
	}
	parts := make([]string, 0, len(m.quickActions))
	for i, qa := range m.quickActions {
		if i >= 9 {
			break
		}
		parts = append(parts, renderControl(fmt.Sprintf("%d", i+1), qa.Title, m.controls.Command))
	}
	return quickBarStyle.Width(width).Render(strings.Join(parts, "  "))
}

// renderErrorBanner renders the last error, if any.
func renderErrorBanner(m model, width int) string {
	if m.lastErr == nil {
		return ""
	}
	text := fmt.Sprintf("%s%v  (e to dismiss)", SafeIcon(IconCross), m.lastErr)
	return errorBannerStyle.Width(width).Render(truncateLine(text, width-2))
}

// renderInputLine renders the focused text input or the command hint.
func renderInputLine(m model, width int) string {
	if m.currentAppMode.isInputMode() {
		return inputStyle.Width(width).Render(m.input.View())
	}
	hint := "[i] type a console command"
	if !m.controls.Command {
		hint = "commands are available while the server is online"
	}
	return dimStyle.Width(width).Render(hint)
}

// renderStatusBar renders the transient status message and key help.
func renderStatusBar(m model, width int) string {
	var msg string
	if m.statusBarMessage != "" {
		style := statusBarInfoStyle
		switch m.statusBarMessageType {
		case StatusBarSuccess:
			style = statusBarSuccessStyle
		case StatusBarError:
			style = statusBarErrorStyle
		case StatusBarWarning:
			style = statusBarWarningStyle
		}
		msg = style.Render(m.statusBarMessage)
	}

	helpView := m.help.ShortHelpView(m.keys.ShortHelp())
	if m.currentAppMode.isInputMode() {
		helpView = m.help.ShortHelpView(m.keys.InputModeHelp())
	}
	if m.debugMode {
		helpView = fmt.Sprintf("mode=%s stream=%s logs=%d  ", m.currentAppMode, m.streamState, len(m.consoleLogs)) + helpView
	}

	gap := width - lipgloss.Width(msg) - lipgloss.Width(helpView)
	if gap < 1 {
		return lipgloss.JoinVertical(lipgloss.Left, msg, helpView)
	}
	return msg + strings.Repeat(" ", gap) + helpView
}
