package tui

import (
	"servctl/internal/session"
	"servctl/pkg/logging"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
)

// NewProgram creates the Bubble Tea program for the dashboard.
func NewProgram(opts Options, logChannel <-chan logging.LogEntry) *tea.Program {
	m := newModel(opts, logChannel)
	return tea.NewProgram(m, tea.WithAltScreen())
}

func newModel(opts Options, logChannel <-chan logging.LogEntry) model {
	ti := textinput.New()
	ti.CharLimit = 256
	ti.Width = 60

	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = spinnerStyle

	return model{
		ctrl:            opts.Controller,
		serverID:        opts.ServerID,
		quickActions:    opts.QuickActions,
		debugMode:       opts.DebugMode,
		inFlight:        make(map[session.Target]bool),
		follow:          true,
		consoleViewport: viewport.New(0, 0),
		logViewport:     viewport.New(0, 0),
		logChannel:      logChannel,
		input:           ti,
		spinner:         s,
		currentAppMode:  ModeInitializing,
		keys:            DefaultKeyMap(),
		help:            help.New(),
	}
}

// Init starts activation and the listeners feeding the update loop.
func (m model) Init() tea.Cmd {
	return tea.Batch(
		activateCmd(m.ctrl, m.serverID),
		waitForEvent(m.ctrl.Events()),
		waitForLogEntry(m.logChannel),
		resyncTick(),
		m.spinner.Tick,
	)
}

// syncFromController re-reads the session state into the render caches.
func (m *model) syncFromController() {
	c := m.ctrl
	m.process = c.Process()
	m.runState, m.runKnown = c.RunState()
	m.tunnel, m.tunnelKnown = c.TunnelState()
	m.tunnelPort = c.TunnelPort()
	m.controls = c.Controls()
	m.inFlight[session.TargetProcess] = c.InFlight(session.TargetProcess)
	m.inFlight[session.TargetTunnel] = c.InFlight(session.TargetTunnel)
	m.streamState = c.StreamState()
	m.lastErr = c.LastError()
	m.setConsoleLines(c.Logs())
}

// setConsoleLines refreshes the console viewport, keeping the newest line
// visible while following.
func (m *model) setConsoleLines(lines []string) {
	m.consoleLogs = lines
	m.consoleViewport.SetContent(prepareLogContent(lines, m.consoleViewport.Width))
	if m.follow {
		m.consoleViewport.GotoBottom()
	}
}

// busy reports whether something is pending that deserves a spinner.
func (m model) busy() bool {
	return m.inFlight[session.TargetProcess] || m.inFlight[session.TargetTunnel] ||
		m.streamState == session.StreamConnecting || m.commandBusy ||
		m.currentAppMode == ModeInitializing
}
