package tui

import (
	"servctl/internal/config"
	"servctl/internal/session"
	"servctl/pkg/logging"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
)

// AppMode defines the overall state or view of the application.
// NOTE: The ordering MUST stay in-sync with the String() method.
type AppMode int

const (
	// ModeInitializing is the state before the controller is activated.
	ModeInitializing AppMode = iota
	// ModeDashboard shows status panels and the live console.
	ModeDashboard
	// ModeCommandInput is when the operator types a console command.
	ModeCommandInput
	// ModeQuickActionInput is when the argument of a quick action is asked for.
	ModeQuickActionInput
	// ModePortInput is when the tunnel port is edited.
	ModePortInput
	// ModeHelpOverlay is when the help screen is visible.
	ModeHelpOverlay
	// ModeLogOverlay shows the application activity log.
	ModeLogOverlay
	// ModeQuitting is when the application is shutting down.
	ModeQuitting
	// ModeError is an unrecoverable error such as a failed activation.
	ModeError
)

// String makes AppMode satisfy the fmt.Stringer interface.
func (a AppMode) String() string {
	switch a {
	case ModeInitializing:
		return "Initializing"
	case ModeDashboard:
		return "Dashboard"
	case ModeCommandInput:
		return "CommandInput"
	case ModeQuickActionInput:
		return "QuickActionInput"
	case ModePortInput:
		return "PortInput"
	case ModeHelpOverlay:
		return "HelpOverlay"
	case ModeLogOverlay:
		return "LogOverlay"
	case ModeQuitting:
		return "Quitting"
	case ModeError:
		return "Error"
	default:
		return "Unknown"
	}
}

// isInputMode reports whether keys go to the text input.
func (a AppMode) isInputMode() bool {
	return a == ModeCommandInput || a == ModeQuickActionInput || a == ModePortInput
}

// MessageType defines the type of message for the status bar for styling.
type MessageType int

const (
	StatusBarInfo MessageType = iota
	StatusBarSuccess
	StatusBarError
	StatusBarWarning
)

const (
	// maxActivityLogLines bounds the application activity log.
	maxActivityLogLines = 500
)

// Options configures the dashboard.
type Options struct {
	Controller   *session.Controller
	ServerID     string
	QuickActions []config.QuickActionDefinition
	DebugMode    bool
}

// model represents the state of the dashboard. Session state is owned by
// the controller; the fields below are render caches refreshed on events.
type model struct {
	ctrl         *session.Controller
	serverID     string
	quickActions []config.QuickActionDefinition

	// --- Session snapshot ---
	process     session.ManagedProcess
	runState    session.RunState
	runKnown    bool
	tunnel      session.TunnelState
	tunnelKnown bool
	tunnelPort  int
	controls    session.Controls
	inFlight    map[session.Target]bool
	streamState session.StreamState
	consoleLogs []string
	lastErr     error
	fatalErr    error

	// --- UI State & Output ---
	width, height   int
	debugMode       bool
	follow          bool           // Console sticks to the newest line.
	consoleViewport viewport.Model // Live console output.
	logViewport     viewport.Model // Activity log overlay.
	activityLog     []string
	logChannel      <-chan logging.LogEntry

	// --- Input ---
	input        textinput.Model
	commandBusy  bool
	pendingQuick string // Title of the quick action whose argument is asked for.

	// --- Status Bar ---
	statusBarMessage     string
	statusBarMessageType MessageType
	statusBarClearCancel chan struct{}

	spinner        spinner.Model
	currentAppMode AppMode

	keys KeyMap
	help help.Model
}
