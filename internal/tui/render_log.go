package tui

import (
	"fmt"
	"strings"

	"servctl/internal/session"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"
)

// renderConsolePanel renders the live console of the server.
func renderConsolePanel(m model, width int) string {
	title := fmt.Sprintf("%sConsole  %s", SafeIcon(IconScroll), streamLabel(m.streamState, m.runKnown && m.runState.Running))
	if !m.follow {
		title += "  " + dimStyle.Render("(paused, G to follow)")
	}
	content := lipgloss.JoinVertical(lipgloss.Left,
		logPanelTitleStyle.Render(title),
		m.consoleViewport.View(),
	)
	return consolePanelStyle.Width(max(width-consolePanelStyle.GetHorizontalBorderSize(), 0)).Render(content)
}

func streamLabel(state session.StreamState, running bool) string {
	switch state {
	case session.StreamConnecting:
		return statusMsgInitializingStyle.Render("connecting")
	case session.StreamOpen:
		return statusMsgRunningStyle.Render("live")
	case session.StreamClosing:
		return statusMsgExitedStyle.Render("closing")
	}
	if running {
		return statusMsgErrorStyle.Render("disconnected")
	}
	return dimStyle.Render("offline")
}

// renderLogOverlay renders the application activity log full screen.
func renderLogOverlay(m model) string {
	title := logPanelTitleStyle.Render(SafeIcon(IconScroll) + "Activity Log  (↑/↓ scroll  •  y copy  •  Esc close)")
	content := lipgloss.JoinVertical(lipgloss.Left, title, m.logViewport.View())
	return logOverlayStyle.
		Width(max(m.width-logOverlayStyle.GetHorizontalFrameSize(), 0)).
		Height(max(m.height-logOverlayStyle.GetVerticalFrameSize(), 0)).
		Render(content)
}

// prepareLogContent truncates long lines to avoid viewport wrapping. Console
// lines are shown verbatim; only the marker lines of the stream are styled.
func prepareLogContent(lines []string, maxWidth int) string {
	out := make([]string, len(lines))
	for i, raw := range lines {
		line := truncateLine(raw, maxWidth)
		if strings.HasPrefix(raw, "--- ") {
			line = streamMarkerStyle.Render(line)
		}
		out[i] = line
	}
	return strings.Join(out, "\n")
}

// prepareActivityContent styles activity log lines by level.
func prepareActivityContent(lines []string, maxWidth int) string {
	out := make([]string, len(lines))
	for i, raw := range lines {
		out[i] = styleLogLine(truncateLine(raw, maxWidth))
	}
	return strings.Join(out, "\n")
}

func truncateLine(line string, maxWidth int) string {
	if maxWidth <= 0 || runewidth.StringWidth(line) <= maxWidth {
		return line
	}
	return runewidth.Truncate(line, maxWidth-1, "") + "…"
}

// styleLogLine picks a style from the level marker of the line.
func styleLogLine(l string) string {
	switch {
	case strings.Contains(l, "[ERROR]"):
		return logErrorStyle.Render(l)
	case strings.Contains(l, "[WARN]"):
		return logWarnStyle.Render(l)
	case strings.Contains(l, "[DEBUG]"):
		return logDebugStyle.Render(l)
	default:
		return logInfoStyle.Render(l)
	}
}
