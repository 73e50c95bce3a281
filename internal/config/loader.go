package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// For mocking in tests
var osUserHomeDir = os.UserHomeDir
var osGetwd = os.Getwd

const (
	userConfigDir    = ".config/servctl"
	projectConfigDir = ".servctl"
	configFileName   = "config.yaml"
	envPrefix        = "SERVCTL"
)

// LoadConfig loads the servctl configuration by layering default, user, project
// and (optionally) an explicit file, then applies environment overrides.
func LoadConfig(explicitPath string) (Config, error) {
	config := GetDefaultConfig()

	userConfigPath, err := getUserConfigPath()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: Could not determine user config path: %v\n", err)
	} else if config, err = overlayFile(config, userConfigPath, false); err != nil {
		return Config{}, err
	}

	projectConfigPath, err := getProjectConfigPath()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: Could not determine project config path: %v\n", err)
	} else if config, err = overlayFile(config, projectConfigPath, false); err != nil {
		return Config{}, err
	}

	if explicitPath != "" {
		if config, err = overlayFile(config, explicitPath, true); err != nil {
			return Config{}, err
		}
	}

	applyEnvOverrides(&config, newEnvViper())

	if err := config.Validate(); err != nil {
		return Config{}, err
	}
	return config, nil
}

func overlayFile(base Config, path string, required bool) (Config, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		if required {
			return Config{}, fmt.Errorf("config file %s does not exist", path)
		}
		return base, nil
	}
	overlay, err := loadConfigFromFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("error loading config from %s: %w", path, err)
	}
	return mergeConfigs(base, overlay), nil
}

var getUserConfigPath = func() (string, error) {
	homeDir, err := osUserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(homeDir, userConfigDir, configFileName), nil
}

var getProjectConfigPath = func() (string, error) {
	wd, err := osGetwd()
	if err != nil {
		return "", err
	}
	return filepath.Join(wd, projectConfigDir, configFileName), nil
}

// loadConfigFromFile loads a Config from a YAML file.
func loadConfigFromFile(filePath string) (Config, error) {
	var config Config
	data, err := os.ReadFile(filePath)
	if err != nil {
		return Config{}, err
	}
	if err := yaml.Unmarshal(data, &config); err != nil {
		return Config{}, err
	}
	return config, nil
}

// mergeConfigs merges 'overlay' config into 'base' config. Zero values in the
// overlay leave the base untouched.
func mergeConfigs(base, overlay Config) Config {
	merged := base

	if overlay.API.BaseURL != "" {
		merged.API.BaseURL = overlay.API.BaseURL
	}
	if overlay.API.WebSocketURL != "" {
		merged.API.WebSocketURL = overlay.API.WebSocketURL
	}
	if overlay.API.Timeout > 0 {
		merged.API.Timeout = overlay.API.Timeout
	}

	if overlay.Polling.ProcessInterval > 0 {
		merged.Polling.ProcessInterval = overlay.Polling.ProcessInterval
	}
	if overlay.Polling.TunnelInterval > 0 {
		merged.Polling.TunnelInterval = overlay.Polling.TunnelInterval
	}

	if overlay.Actions.ProcessSettle > 0 {
		merged.Actions.ProcessSettle = overlay.Actions.ProcessSettle
	}
	if overlay.Actions.TunnelSettle > 0 {
		merged.Actions.TunnelSettle = overlay.Actions.TunnelSettle
	}
	if overlay.Actions.RestartDelay > 0 {
		merged.Actions.RestartDelay = overlay.Actions.RestartDelay
	}

	if overlay.Tunnel.DefaultPort != 0 {
		merged.Tunnel.DefaultPort = overlay.Tunnel.DefaultPort
	}
	if overlay.LogBuffer.Capacity != 0 {
		merged.LogBuffer.Capacity = overlay.LogBuffer.Capacity
	}

	// Quick actions are replaced as a whole so a layer can remove defaults.
	if len(overlay.QuickActions) > 0 {
		merged.QuickActions = append([]QuickActionDefinition(nil), overlay.QuickActions...)
	}

	if overlay.Logging.Level != "" {
		merged.Logging.Level = overlay.Logging.Level
	}
	if overlay.Logging.File != "" {
		merged.Logging.File = overlay.Logging.File
	}

	return merged
}

func newEnvViper() *viper.Viper {
	v := viper.New()
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// Config keys are camelCase, so env names are bound explicitly.
	_ = v.BindEnv("api.baseURL", "SERVCTL_API_URL")
	_ = v.BindEnv("api.wsURL", "SERVCTL_WS_URL")
	_ = v.BindEnv("api.timeout", "SERVCTL_API_TIMEOUT")
	_ = v.BindEnv("tunnel.defaultPort", "SERVCTL_TUNNEL_PORT")
	_ = v.BindEnv("logBuffer.capacity", "SERVCTL_LOG_BUFFER_CAPACITY")
	_ = v.BindEnv("logging.level", "SERVCTL_LOG_LEVEL")
	_ = v.BindEnv("logging.file", "SERVCTL_LOG_FILE")
	_ = v.BindEnv("token", "SERVCTL_TOKEN")
	return v
}

func applyEnvOverrides(cfg *Config, v *viper.Viper) {
	if v.IsSet("api.baseURL") {
		cfg.API.BaseURL = v.GetString("api.baseURL")
	}
	if v.IsSet("api.wsURL") {
		cfg.API.WebSocketURL = v.GetString("api.wsURL")
	}
	if v.IsSet("api.timeout") {
		cfg.API.Timeout = v.GetDuration("api.timeout")
	}
	if v.IsSet("tunnel.defaultPort") {
		cfg.Tunnel.DefaultPort = v.GetInt("tunnel.defaultPort")
	}
	if v.IsSet("logBuffer.capacity") {
		cfg.LogBuffer.Capacity = v.GetInt("logBuffer.capacity")
	}
	if v.IsSet("logging.level") {
		cfg.Logging.Level = v.GetString("logging.level")
	}
	if v.IsSet("logging.file") {
		cfg.Logging.File = v.GetString("logging.file")
	}
	if v.IsSet("token") {
		cfg.Token = v.GetString("token")
	}
}

// GetUserConfigDir returns the user configuration directory path
func GetUserConfigDir() (string, error) {
	homeDir, err := osUserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(homeDir, userConfigDir), nil
}
