package tui

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"servctl/internal/config"
	"servctl/internal/session"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/require"
)

var errUnknownServer = errors.New("server not found")

// stubConn blocks until closed, like an idle log stream.
type stubConn struct {
	closed chan struct{}
	once   sync.Once
}

func (c *stubConn) ReadLine() (string, error) {
	<-c.closed
	return "", errors.New("closed")
}

func (c *stubConn) Close() error {
	c.once.Do(func() { close(c.closed) })
	return nil
}

// stubRemote is an in-memory panel with one server called "survival".
type stubRemote struct {
	mu       sync.Mutex
	running  bool
	tunnel   session.TunnelState
	actions  []string
	commands []string
}

func (r *stubRemote) GetProcessStatus(ctx context.Context, id string) (session.RunState, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return session.RunState{Running: r.running}, nil
}

func (r *stubRemote) GetTunnelStatus(ctx context.Context) (session.TunnelState, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.tunnel, nil
}

func (r *stubRemote) PostProcessAction(ctx context.Context, id string, kind session.ActionKind) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.actions = append(r.actions, fmt.Sprintf("process:%s", kind))
	return nil
}

func (r *stubRemote) PostTunnelAction(ctx context.Context, kind session.ActionKind, port int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.actions = append(r.actions, fmt.Sprintf("tunnel:%s:%d", kind, port))
	return nil
}

func (r *stubRemote) PostCommand(ctx context.Context, id, text string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.commands = append(r.commands, text)
	return nil
}

func (r *stubRemote) OpenLogStream(ctx context.Context, id string) (session.LogConn, error) {
	return &stubConn{closed: make(chan struct{})}, nil
}

func (r *stubRemote) Resolve(ctx context.Context, id string) (session.ManagedProcess, error) {
	if id != "survival" {
		return session.ManagedProcess{}, errUnknownServer
	}
	return session.ManagedProcess{ID: id, Name: "Survival", Version: "1.21"}, nil
}

func (r *stubRemote) actionLog() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.actions...)
}

func (r *stubRemote) commandLog() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.commands...)
}

var testQuickActions = []config.QuickActionDefinition{
	{Title: "Check Players", Command: "list"},
	{Title: "Make Operator", Command: "op", NeedsArgument: true},
}

func newTestController(remote *stubRemote) *session.Controller {
	return session.NewController(remote, remote, session.Config{
		ProcessInterval: 20 * time.Millisecond,
		TunnelInterval:  20 * time.Millisecond,
		Gate: session.GateConfig{
			ProcessSettle: 10 * time.Millisecond,
			TunnelSettle:  10 * time.Millisecond,
			RestartDelay:  10 * time.Millisecond,
		},
		TunnelPort: 25565,
	})
}

// newActiveModel returns a sized dashboard attached to "survival" with
// both status snapshots applied.
func newActiveModel(t *testing.T, remote *stubRemote) model {
	t.Helper()
	ctrl := newTestController(remote)
	t.Cleanup(ctrl.Deactivate)

	m := newModel(Options{Controller: ctrl, ServerID: "survival", QuickActions: testQuickActions}, nil)
	m, _ = handleWindowSizeMsg(m, tea.WindowSizeMsg{Width: 120, Height: 40})

	msg, ok := activateCmd(ctrl, "survival")().(activatedMsg)
	require.True(t, ok)
	m, _ = handleActivated(m, msg)
	require.Equal(t, ModeDashboard, m.currentAppMode)

	require.Eventually(t, func() bool {
		_, runKnown := ctrl.RunState()
		_, tunnelKnown := ctrl.TunnelState()
		return runKnown && tunnelKnown
	}, time.Second, 5*time.Millisecond)
	m.syncFromController()
	return m
}

func keyPress(s string) tea.KeyMsg {
	switch s {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case "ctrl+c":
		return tea.KeyMsg{Type: tea.KeyCtrlC}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

// runCommandResult executes cmd and feeds its result back into the model.
func runCommandResult(t *testing.T, m model, cmd tea.Cmd) model {
	t.Helper()
	require.NotNil(t, cmd)
	msg, ok := cmd().(commandResultMsg)
	require.True(t, ok)
	m, _ = handleCommandResult(m, msg)
	return m
}
