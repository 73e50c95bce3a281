package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"
)

// Config is the top-level configuration structure for servctl.
type Config struct {
	API          APIConfig               `yaml:"api"`
	Polling      PollingConfig           `yaml:"polling"`
	Actions      ActionConfig            `yaml:"actions"`
	Tunnel       TunnelConfig            `yaml:"tunnel"`
	LogBuffer    LogBufferConfig         `yaml:"logBuffer"`
	QuickActions []QuickActionDefinition `yaml:"quickActions,omitempty"`
	Logging      LoggingConfig           `yaml:"logging"`

	// Token is only ever taken from the environment or flags, never from files.
	Token string `yaml:"-"`
}

// APIConfig points at the remote panel.
type APIConfig struct {
	BaseURL      string        `yaml:"baseURL"`         // e.g. "https://panel.example.com"
	WebSocketURL string        `yaml:"wsURL,omitempty"` // derived from BaseURL when empty
	Timeout      time.Duration `yaml:"timeout"`         // per-request transport timeout
}

// PollingConfig holds the status polling cadences.
type PollingConfig struct {
	ProcessInterval time.Duration `yaml:"processInterval"`
	TunnelInterval  time.Duration `yaml:"tunnelInterval"`
}

// ActionConfig holds the settle delays applied after lifecycle actions.
type ActionConfig struct {
	ProcessSettle time.Duration `yaml:"processSettle"`
	TunnelSettle  time.Duration `yaml:"tunnelSettle"`
	RestartDelay  time.Duration `yaml:"restartDelay"` // gap between the stop and start halves of a restart
}

// TunnelConfig holds tunnel defaults.
type TunnelConfig struct {
	DefaultPort int `yaml:"defaultPort"`
}

// LogBufferConfig bounds the live log buffer. Capacity 0 keeps every line.
type LogBufferConfig struct {
	Capacity int `yaml:"capacity"`
}

// QuickActionDefinition describes a console shortcut.
// With NeedsArgument the command is used as a prefix and the operator supplies one argument.
type QuickActionDefinition struct {
	Title         string `yaml:"title"`
	Command       string `yaml:"command"`
	NeedsArgument bool   `yaml:"needsArgument,omitempty"`
}

// LoggingConfig configures pkg/logging.
type LoggingConfig struct {
	Level string `yaml:"level"`
	File  string `yaml:"file,omitempty"`
}

// StreamBaseURL returns the websocket base URL for log streams.
func (a APIConfig) StreamBaseURL() (string, error) {
	if a.WebSocketURL != "" {
		return strings.TrimRight(a.WebSocketURL, "/"), nil
	}
	u, err := url.Parse(a.BaseURL)
	if err != nil {
		return "", fmt.Errorf("parse api.baseURL: %w", err)
	}
	switch u.Scheme {
	case "https":
		u.Scheme = "wss"
	case "http":
		u.Scheme = "ws"
	default:
		return "", fmt.Errorf("api.baseURL must be http or https, got %q", u.Scheme)
	}
	return strings.TrimRight(u.String(), "/"), nil
}

// Validate checks that all configuration fields are usable.
func (c Config) Validate() error {
	var errs []string

	if c.API.BaseURL == "" {
		errs = append(errs, "api.baseURL is required")
	} else if _, err := c.API.StreamBaseURL(); err != nil {
		errs = append(errs, err.Error())
	}
	if c.API.Timeout <= 0 {
		errs = append(errs, "api.timeout must be positive")
	}

	for _, d := range []struct {
		key   string
		value time.Duration
	}{
		{"polling.processInterval", c.Polling.ProcessInterval},
		{"polling.tunnelInterval", c.Polling.TunnelInterval},
		{"actions.processSettle", c.Actions.ProcessSettle},
		{"actions.tunnelSettle", c.Actions.TunnelSettle},
		{"actions.restartDelay", c.Actions.RestartDelay},
	} {
		if d.value <= 0 {
			errs = append(errs, d.key+" must be positive")
		}
	}

	if c.Tunnel.DefaultPort <= 0 || c.Tunnel.DefaultPort > 65535 {
		errs = append(errs, "tunnel.defaultPort must be between 1 and 65535")
	}
	if c.LogBuffer.Capacity < 0 {
		errs = append(errs, "logBuffer.capacity must not be negative")
	}
	for i, qa := range c.QuickActions {
		if strings.TrimSpace(qa.Title) == "" || strings.TrimSpace(qa.Command) == "" {
			errs = append(errs, fmt.Sprintf("quickActions[%d] needs a title and a command", i))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("invalid configuration: %s", strings.Join(errs, "; "))
	}
	return nil
}
