package tui

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
)

// Layout constants used to size the viewports.
const (
	dashboardChromeHeight = 15
	consoleFrameWidth     = 4
	overlayChromeHeight   = 6
	overlayFrameWidth     = 6
	minConsoleHeight      = 3
)

// View renders the current mode.
func (m model) View() string {
	switch m.currentAppMode {
	case ModeQuitting:
		return fmt.Sprintf("Detaching from %s...\n", m.displayName())
	case ModeError:
		return renderFatalError(m)
	case ModeInitializing:
		return appStyle.Render(fmt.Sprintf("%s Attaching to %s...", m.spinner.View(), m.serverID))
	case ModeHelpOverlay:
		return renderHelpOverlay(m)
	case ModeLogOverlay:
		return renderLogOverlay(m)
	}
	if m.width == 0 {
		return "Loading..."
	}
	return appStyle.Render(renderDashboard(m))
}

func renderDashboard(m model) string {
	width := m.width
	half := max(width/2-panelStyle.GetHorizontalBorderSize(), 10)

	panels := lipgloss.JoinHorizontal(lipgloss.Top,
		renderServerPanel(m, half),
		renderTunnelPanel(m, half),
	)

	sections := []string{renderHeader(m, width), panels}
	if qa := renderQuickActions(m, width); qa != "" {
		sections = append(sections, qa)
	}
	if banner := renderErrorBanner(m, width); banner != "" {
		sections = append(sections, banner)
	}
	sections = append(sections,
		renderConsolePanel(m, width),
		renderInputLine(m, width),
		renderStatusBar(m, width),
	)
	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func renderHelpOverlay(m model) string {
	title := helpTitleStyle.Render("servctl keyboard shortcuts")
	body := m.help.FullHelpView(m.keys.FullHelp())
	footer := dimStyle.Render("h/esc close")
	return helpOverlayStyle.Render(lipgloss.JoinVertical(lipgloss.Left, title, body, "", footer))
}

func renderFatalError(m model) string {
	msg := fmt.Sprintf("%sFailed to attach to %s: %v", SafeIcon(IconCross), m.serverID, m.fatalErr)
	return appStyle.Render(lipgloss.JoinVertical(lipgloss.Left,
		errorStyle.Render(msg),
		"",
		dimStyle.Render("Press q to quit."),
	))
}
