package app

import (
	"context"
	"fmt"
	"os"

	"servctl/internal/config"
	"servctl/pkg/logging"
)

// Application is the main application structure that bootstraps and runs
// the console for one server.
type Application struct {
	config   *Config
	services *Services
}

// Bootstrap loads configuration, sets up CLI logging and creates the
// services. It is shared by the console and the one-shot commands.
func Bootstrap(cfg *Config) (*Services, error) {
	// Initialize logging for CLI output (will be replaced for TUI mode)
	logging.InitForCLI(logging.LevelInfo, os.Stderr)

	settings, err := config.LoadConfig(cfg.ConfigPath)
	if err != nil {
		logging.Error("Bootstrap", err, "Failed to load servctl configuration")
		return nil, fmt.Errorf("failed to load servctl configuration: %w", err)
	}
	cfg.Settings = &settings

	level, err := logging.ParseLevel(settings.Logging.Level)
	if err != nil {
		logging.Warn("Bootstrap", "%v, using info", err)
	}
	if cfg.Debug {
		level = logging.LevelDebug
	}
	logging.InitForCLI(level, os.Stderr)
	logging.Debug("Bootstrap", "Loaded configuration, panel at %s", settings.API.BaseURL)

	services, err := InitializeServices(cfg)
	if err != nil {
		logging.Error("Bootstrap", err, "Failed to initialize services")
		return nil, fmt.Errorf("failed to initialize services: %w", err)
	}
	return services, nil
}

// NewApplication creates and initializes a new application instance
func NewApplication(cfg *Config) (*Application, error) {
	if cfg.ServerID == "" {
		return nil, fmt.Errorf("a server id is required")
	}
	services, err := Bootstrap(cfg)
	if err != nil {
		return nil, err
	}
	return &Application{
		config:   cfg,
		services: services,
	}, nil
}

// Run executes the application in the appropriate mode
func (a *Application) Run(ctx context.Context) error {
	if a.config.NoTUI {
		return a.runCLIMode(ctx)
	}
	return a.runTUIMode(ctx)
}

// runCLIMode runs the application in non-interactive CLI mode
func (a *Application) runCLIMode(ctx context.Context) error {
	return runCLIMode(ctx, a.config, a.services, os.Stdout)
}

// runTUIMode runs the application in interactive TUI mode
func (a *Application) runTUIMode(ctx context.Context) error {
	return runTUIMode(ctx, a.config, a.services)
}
