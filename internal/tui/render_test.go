package tui

import (
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"servctl/pkg/logging"

	"github.com/mattn/go-runewidth"
	"github.com/stretchr/testify/assert"
)

func TestDashboardView(t *testing.T) {
	remote := &stubRemote{}
	m := newActiveModel(t, remote)

	view := m.View()
	assert.Contains(t, view, "Survival")
	assert.Contains(t, view, "1.21")
	assert.Contains(t, view, "Server")
	assert.Contains(t, view, "Tunnel")
	assert.Contains(t, view, "Console")
	assert.Contains(t, view, "Check Players")
	assert.Contains(t, view, "port 25565")
}

func TestDashboardViewShowsErrorBanner(t *testing.T) {
	remote := &stubRemote{}
	m := newActiveModel(t, remote)
	m.lastErr = errors.New("failed to perform action start: boom")

	assert.Contains(t, m.View(), "e to dismiss")
}

func TestOverlayViews(t *testing.T) {
	remote := &stubRemote{}
	m := newActiveModel(t, remote)

	m, _ = handleKeyMsg(m, keyPress("h"))
	assert.Equal(t, ModeHelpOverlay, m.currentAppMode)
	assert.Contains(t, m.View(), "keyboard shortcuts")
	m, _ = handleKeyMsg(m, keyPress("esc"))
	assert.Equal(t, ModeDashboard, m.currentAppMode)

	m.appendLogEntry(logging.LogEntry{Timestamp: time.Now(), Level: logging.LevelWarn, Subsystem: "Stream", Message: "log stream closed"})
	m, _ = handleKeyMsg(m, keyPress("L"))
	assert.Equal(t, ModeLogOverlay, m.currentAppMode)
	assert.Contains(t, m.View(), "Activity Log")
	assert.Contains(t, m.View(), "log stream closed")
	m, _ = handleKeyMsg(m, keyPress("L"))
	assert.Equal(t, ModeDashboard, m.currentAppMode)
}

func TestPrepareLogContentTruncates(t *testing.T) {
	out := prepareLogContent([]string{strings.Repeat("x", 50), "short"}, 20)
	lines := strings.Split(out, "\n")

	assert.Len(t, lines, 2)
	assert.LessOrEqual(t, runewidth.StringWidth(lines[0]), 20)
	assert.True(t, strings.HasSuffix(lines[0], "…"))
	assert.Equal(t, "short", lines[1])
}

func TestAppendLogEntryBounded(t *testing.T) {
	m := newModel(Options{Controller: newTestController(&stubRemote{})}, nil)
	for i := 0; i < maxActivityLogLines+10; i++ {
		m.appendLogEntry(logging.LogEntry{Level: logging.LevelInfo, Subsystem: "Test", Message: fmt.Sprintf("entry %d", i)})
	}

	assert.Len(t, m.activityLog, maxActivityLogLines)
	assert.Contains(t, m.activityLog[len(m.activityLog)-1], fmt.Sprintf("entry %d", maxActivityLogLines+9))
}

func TestAppendLogEntryHidesDebug(t *testing.T) {
	m := newModel(Options{Controller: newTestController(&stubRemote{})}, nil)
	m.appendLogEntry(logging.LogEntry{Level: logging.LevelDebug, Subsystem: "Poller", Message: "tick"})
	assert.Empty(t, m.activityLog)

	m.debugMode = true
	m.appendLogEntry(logging.LogEntry{Level: logging.LevelDebug, Subsystem: "Poller", Message: "tick"})
	assert.Len(t, m.activityLog, 1)
	assert.Contains(t, m.activityLog[0], "[DEBUG] Poller: tick")
}

func TestQuickActionIndex(t *testing.T) {
	tests := []struct {
		in   string
		want int
	}{
		{"1", 0},
		{"9", 8},
		{"0", -1},
		{"a", -1},
		{"12", -1},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, quickActionIndex(keyPress(tt.in)))
		})
	}
}

func TestAppModeString(t *testing.T) {
	assert.Equal(t, "Dashboard", ModeDashboard.String())
	assert.Equal(t, "Unknown", AppMode(99).String())
	assert.True(t, ModePortInput.isInputMode())
	assert.False(t, ModeLogOverlay.isInputMode())
}
