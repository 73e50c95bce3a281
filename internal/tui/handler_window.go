package tui

import tea "github.com/charmbracelet/bubbletea"

// handleWindowSizeMsg updates the model with the new terminal dimensions
// and resizes the viewports to the space left by the fixed panels.
func handleWindowSizeMsg(m model, msg tea.WindowSizeMsg) (model, tea.Cmd) {
	m.width = msg.Width
	m.height = msg.Height

	m.consoleViewport.Width = max(msg.Width-consoleFrameWidth, 10)
	m.consoleViewport.Height = max(msg.Height-dashboardChromeHeight, minConsoleHeight)
	m.setConsoleLines(m.consoleLogs)

	m.logViewport.Width = max(msg.Width-overlayFrameWidth, 10)
	m.logViewport.Height = max(msg.Height-overlayChromeHeight, minConsoleHeight)
	m.refreshLogOverlay()

	m.help.Width = msg.Width
	m.input.Width = max(msg.Width-20, 10)
	return m, nil
}
