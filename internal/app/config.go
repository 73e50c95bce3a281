package app

import (
	"servctl/internal/config"
)

// Config holds the application configuration
type Config struct {
	// UI mode
	NoTUI bool

	// Debug settings
	Debug bool

	// ConfigPath is an explicit config file layered on top of the defaults.
	ConfigPath string

	// Token given on the command line; wins over env and the token file.
	Token string

	// ServerID is the server the console attaches to.
	ServerID string

	// Settings is the loaded servctl configuration
	Settings *config.Config
}

// NewConfig creates a new application configuration
func NewConfig(noTUI, debug bool, configPath, token string) *Config {
	return &Config{
		NoTUI:      noTUI,
		Debug:      debug,
		ConfigPath: configPath,
		Token:      token,
	}
}
