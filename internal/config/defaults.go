package config

import "time"

const (
	DefaultProcessPollInterval = 7 * time.Second
	DefaultTunnelPollInterval  = 10 * time.Second
	DefaultProcessSettle       = 1500 * time.Millisecond
	DefaultTunnelSettle        = 2500 * time.Millisecond
	DefaultRestartDelay        = 2500 * time.Millisecond
	DefaultTunnelPort          = 25565
)

// DefaultQuickActions are the shortcuts offered by the dashboard out of the box.
func DefaultQuickActions() []QuickActionDefinition {
	return []QuickActionDefinition{
		{Title: "Check Players", Command: "list"},
		{Title: "Make Operator", Command: "op", NeedsArgument: true},
		{Title: "Kick Player", Command: "kick", NeedsArgument: true},
	}
}

// GetDefaultConfig returns the built-in configuration.
func GetDefaultConfig() Config {
	return Config{
		API: APIConfig{
			BaseURL: "http://localhost:8000",
			Timeout: 15 * time.Second,
		},
		Polling: PollingConfig{
			ProcessInterval: DefaultProcessPollInterval,
			TunnelInterval:  DefaultTunnelPollInterval,
		},
		Actions: ActionConfig{
			ProcessSettle: DefaultProcessSettle,
			TunnelSettle:  DefaultTunnelSettle,
			RestartDelay:  DefaultRestartDelay,
		},
		Tunnel: TunnelConfig{
			DefaultPort: DefaultTunnelPort,
		},
		QuickActions: DefaultQuickActions(),
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}
