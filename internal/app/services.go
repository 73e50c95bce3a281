package app

import (
	"fmt"

	"servctl/internal/auth"
	"servctl/internal/config"
	"servctl/internal/panel"
	"servctl/internal/session"
)

// Services holds all the initialized services
type Services struct {
	Settings config.Config
	Tokens   *auth.Store
	Client   *panel.Client
	Remote   *Remote
}

// InitializeServices builds the panel client from the loaded settings and
// the resolved token.
func InitializeServices(cfg *Config) (*Services, error) {
	if cfg.Settings == nil {
		return nil, fmt.Errorf("configuration not loaded")
	}
	settings := *cfg.Settings

	streamURL, err := settings.API.StreamBaseURL()
	if err != nil {
		return nil, err
	}

	dir, err := config.GetUserConfigDir()
	if err != nil {
		return nil, fmt.Errorf("locate config directory: %w", err)
	}
	tokens := auth.NewStore(dir)

	token, err := auth.Resolve(cfg.Token, settings.Token, tokens)
	if err != nil {
		return nil, err
	}

	client := panel.NewClient(panel.Options{
		BaseURL:   settings.API.BaseURL,
		StreamURL: streamURL,
		Token:     token,
		Timeout:   settings.API.Timeout,
	})

	return &Services{
		Settings: settings,
		Tokens:   tokens,
		Client:   client,
		Remote:   NewRemote(client),
	}, nil
}

// SessionConfig maps the settings onto the session core.
func (s *Services) SessionConfig() session.Config {
	return session.Config{
		ProcessInterval: s.Settings.Polling.ProcessInterval,
		TunnelInterval:  s.Settings.Polling.TunnelInterval,
		Gate: session.GateConfig{
			ProcessSettle: s.Settings.Actions.ProcessSettle,
			TunnelSettle:  s.Settings.Actions.TunnelSettle,
			RestartDelay:  s.Settings.Actions.RestartDelay,
		},
		TunnelPort:  s.Settings.Tunnel.DefaultPort,
		LogCapacity: s.Settings.LogBuffer.Capacity,
	}
}

// NewController creates an inactive session controller.
func (s *Services) NewController() *session.Controller {
	return session.NewController(s.Remote, s.Remote, s.SessionConfig())
}

// QuickActions returns the configured quick actions.
func (s *Services) QuickActions() []config.QuickActionDefinition {
	return s.Settings.QuickActions
}
