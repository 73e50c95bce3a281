package tui

import "github.com/charmbracelet/bubbles/key"

// KeyMap defines the keybindings for the dashboard.
// It helps in managing and displaying help information.
type KeyMap struct {
	Start        key.Binding
	Stop         key.Binding
	Restart      key.Binding
	TunnelToggle key.Binding
	TunnelPort   key.Binding
	CopyURL      key.Binding
	Command      key.Binding
	QuickAction  key.Binding
	ScrollUp     key.Binding
	ScrollDown   key.Binding
	PageUp       key.Binding
	PageDown     key.Binding
	Follow       key.Binding
	CopyLogs     key.Binding
	ToggleLog    key.Binding
	DismissError key.Binding
	ToggleDebug  key.Binding
	Help         key.Binding
	Quit         key.Binding
}

// DefaultKeyMap returns a KeyMap with default bindings.
func DefaultKeyMap() KeyMap {
	return KeyMap{
		Start: key.NewBinding(
			key.WithKeys("s"),
			key.WithHelp("s", "start server"),
		),
		Stop: key.NewBinding(
			key.WithKeys("x"),
			key.WithHelp("x", "stop server"),
		),
		Restart: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "restart server"),
		),
		TunnelToggle: key.NewBinding(
			key.WithKeys("t"),
			key.WithHelp("t", "start/stop tunnel"),
		),
		TunnelPort: key.NewBinding(
			key.WithKeys("p"),
			key.WithHelp("p", "set tunnel port"),
		),
		CopyURL: key.NewBinding(
			key.WithKeys("u"),
			key.WithHelp("u", "copy tunnel URL"),
		),
		Command: key.NewBinding(
			key.WithKeys("i", ":", "enter"),
			key.WithHelp("i/:", "console command"),
		),
		QuickAction: key.NewBinding(
			key.WithKeys("1", "2", "3", "4", "5", "6", "7", "8", "9"),
			key.WithHelp("1-9", "quick action"),
		),
		ScrollUp: key.NewBinding(
			key.WithKeys("k", "up"),
			key.WithHelp("↑/k", "scroll up"),
		),
		ScrollDown: key.NewBinding(
			key.WithKeys("j", "down"),
			key.WithHelp("↓/j", "scroll down"),
		),
		PageUp: key.NewBinding(
			key.WithKeys("pgup", "b"),
			key.WithHelp("pgup", "page up"),
		),
		PageDown: key.NewBinding(
			key.WithKeys("pgdown", "f"),
			key.WithHelp("pgdown", "page down"),
		),
		Follow: key.NewBinding(
			key.WithKeys("end", "G"),
			key.WithHelp("G/end", "follow newest"),
		),
		CopyLogs: key.NewBinding(
			key.WithKeys("y"),
			key.WithHelp("y", "copy console"),
		),
		ToggleLog: key.NewBinding(
			key.WithKeys("L"),
			key.WithHelp("L", "toggle activity log"),
		),
		DismissError: key.NewBinding(
			key.WithKeys("e"),
			key.WithHelp("e", "dismiss error"),
		),
		ToggleDebug: key.NewBinding(
			key.WithKeys("z"),
			key.WithHelp("z", "toggle debug info"),
		),
		Help: key.NewBinding(
			key.WithKeys("h", "?"),
			key.WithHelp("h", "toggle help"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q/ctrl+c", "quit"),
		),
	}
}

// FullHelp returns bindings for the main help view.
// Each inner slice is a column in the help view.
func (k KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Start, k.Stop, k.Restart, k.TunnelToggle, k.TunnelPort, k.CopyURL},
		{k.Command, k.QuickAction, k.ScrollUp, k.ScrollDown, k.PageUp, k.PageDown, k.Follow},
		{k.CopyLogs, k.ToggleLog, k.DismissError, k.ToggleDebug, k.Help, k.Quit},
	}
}

// ShortHelp returns the bindings shown in the footer.
func (k KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Start, k.Stop, k.Restart, k.TunnelToggle, k.Command, k.Help, k.Quit}
}

// InputModeHelp returns bindings specific to text input mode.
func (k KeyMap) InputModeHelp() []key.Binding {
	return []key.Binding{
		key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "submit")),
		key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "cancel input")),
	}
}
