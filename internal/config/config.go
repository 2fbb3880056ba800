// Package config loads and persists the estimator configuration file.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	appName    = "estimator"
	configFile = "config.yaml"
)

// Config holds the user-tunable settings.
type Config struct {
	// ServiceURL is the base URL of the estimate data service.
	ServiceURL string `yaml:"service_url"`
	// RequestTimeout bounds each service call.
	RequestTimeout time.Duration `yaml:"request_timeout"`
	// WatchdogInterval is how often the loader watchdog checks for a
	// stuck operation.
	WatchdogInterval time.Duration `yaml:"watchdog_interval"`
	// WatchdogCeiling is how long a loader may stay busy before the
	// watchdog force-clears it.
	WatchdogCeiling time.Duration `yaml:"watchdog_ceiling"`
	// ExpandAttempts bounds the branch re-expansion polling after a
	// refresh before giving up silently.
	ExpandAttempts int `yaml:"expand_attempts"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		ServiceURL:       "http://localhost:8832/estimator",
		RequestTimeout:   10 * time.Second,
		WatchdogInterval: 2 * time.Second,
		WatchdogCeiling:  10 * time.Second,
		ExpandAttempts:   5,
	}
}

// Dir returns the OS-appropriate configuration directory.
//   - Linux: $XDG_CONFIG_HOME/estimator or $HOME/.config/estimator
//   - macOS: $HOME/.config/estimator
//   - Windows: %LOCALAPPDATA%\estimator
func Dir() (string, error) {
	switch runtime.GOOS {
	case "windows":
		localAppData := os.Getenv("LOCALAPPDATA")
		if localAppData == "" {
			userProfile := os.Getenv("USERPROFILE")
			if userProfile == "" {
				return "", fmt.Errorf("cannot determine user profile directory")
			}
			return filepath.Join(userProfile, "AppData", "Local", appName), nil
		}
		return filepath.Join(localAppData, appName), nil
	default:
		if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
			return filepath.Join(xdg, appName), nil
		}
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("cannot determine home directory: %w", err)
		}
		return filepath.Join(homeDir, ".config", appName), nil
	}
}

// Path returns the full path to the configuration file.
func Path() (string, error) {
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, configFile), nil
}

// Load reads the configuration file, returning defaults when it does
// not exist. Unset fields fall back to their defaults.
func Load() (Config, error) {
	path, err := Path()
	if err != nil {
		return Default(), err
	}
	return LoadFrom(path)
}

// LoadFrom reads a configuration file from an explicit path.
func LoadFrom(path string) (Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return cfg, nil
	}
	if err != nil {
		return cfg, fmt.Errorf("failed to read config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Default(), fmt.Errorf("failed to parse config: %w", err)
	}
	cfg.applyDefaults()
	return cfg, nil
}

// Save writes the configuration file, creating the directory if needed.
func (c Config) Save() error {
	dir, err := Dir()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(dir, 0700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	return os.WriteFile(filepath.Join(dir, configFile), data, 0600)
}

func (c *Config) applyDefaults() {
	def := Default()
	if c.ServiceURL == "" {
		c.ServiceURL = def.ServiceURL
	}
	if c.RequestTimeout <= 0 {
		c.RequestTimeout = def.RequestTimeout
	}
	if c.WatchdogInterval <= 0 {
		c.WatchdogInterval = def.WatchdogInterval
	}
	if c.WatchdogCeiling <= 0 {
		c.WatchdogCeiling = def.WatchdogCeiling
	}
	if c.ExpandAttempts <= 0 {
		c.ExpandAttempts = def.ExpandAttempts
	}
}
