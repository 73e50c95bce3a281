package tui

import (
	"fmt"

	"servctl/pkg/logging"
)

// appendLogEntry formats entry into the activity log and enforces
// maxActivityLogLines.
func (m *model) appendLogEntry(entry logging.LogEntry) {
	if entry.Level == logging.LevelDebug && !m.debugMode {
		return
	}
	line := fmt.Sprintf("%s [%s] %s: %s",
		entry.Timestamp.Format("15:04:05"),
		entry.Level,
		entry.Subsystem,
		entry.Message,
	)
	if entry.Err != nil {
		line += fmt.Sprintf(" (%v)", entry.Err)
	}
	m.appendLogLine(line)
}

func (m *model) appendLogLine(line string) {
	m.activityLog = append(m.activityLog, line)
	if len(m.activityLog) > maxActivityLogLines {
		m.activityLog = m.activityLog[len(m.activityLog)-maxActivityLogLines:]
	}
}

// refreshLogOverlay pushes the activity log into its viewport.
func (m *model) refreshLogOverlay() {
	m.logViewport.SetContent(prepareActivityContent(m.activityLog, m.logViewport.Width))
	m.logViewport.GotoBottom()
}
