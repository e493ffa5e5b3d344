// Package config provides configuration management for practica-link.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"gopkg.in/ini.v1"
)

// APIConfig is the configuration for talking to the Practica platform.
//
// Config file location:
//   - Windows: %USERPROFILE%\.config\practica\apiconfig
//   - Unix: ~/.config/practica/apiconfig
//
// INI format:
//
//	[practica]
//	platform_url = https://app.practica.tax
//	api_token = <bearer-token>
//
//	[link.upload]
//	timeout_seconds = 120
type APIConfig struct {
	// Practica connection settings
	PlatformURL string `ini:"platform_url"`
	APIToken    string `ini:"api_token"`

	// Upload behavior
	Upload UploadConfig
}

// UploadConfig contains settings for the upload executor.
type UploadConfig struct {
	// TimeoutSeconds bounds each single-file transfer.
	// Minimum: 5, Maximum: 3600, Default: 120
	TimeoutSeconds int `ini:"timeout_seconds"`
}

// Validation errors
var (
	ErrMissingPlatformURL   = errors.New("platform_url is required")
	ErrMissingAPIToken      = errors.New("api_token is required")
	ErrInvalidUploadTimeout = errors.New("timeout_seconds must be between 5 and 3600")
)

// Environment variable overrides, applied after file load.
const (
	EnvPlatformURL = "PRACTICA_API_URL"
	EnvAPIToken    = "PRACTICA_API_TOKEN"
)

// DefaultAPIConfigPath returns the default path for the apiconfig file.
func DefaultAPIConfigPath() (string, error) {
	var configDir string

	if runtime.GOOS == "windows" {
		userProfile := os.Getenv("USERPROFILE")
		if userProfile == "" {
			return "", errors.New("USERPROFILE environment variable not set")
		}
		configDir = filepath.Join(userProfile, ".config", "practica")
	} else {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to get home directory: %w", err)
		}
		configDir = filepath.Join(home, ".config", "practica")
	}

	return filepath.Join(configDir, "apiconfig"), nil
}

// NewAPIConfig creates a config with default values.
func NewAPIConfig() *APIConfig {
	return &APIConfig{
		PlatformURL: "https://app.practica.tax",
		Upload: UploadConfig{
			TimeoutSeconds: 120,
		},
	}
}

// LoadAPIConfig loads configuration from an INI file.
// If the file doesn't exist, returns defaults and no error.
func LoadAPIConfig(path string) (*APIConfig, error) {
	cfg := NewAPIConfig()

	if path == "" {
		var err error
		path, err = DefaultAPIConfigPath()
		if err != nil {
			return cfg, nil
		}
	}

	if _, err := os.Stat(path); os.IsNotExist(err) {
		return cfg, nil
	}

	iniFile, err := ini.Load(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load apiconfig: %w", err)
	}

	practicaSection := iniFile.Section("practica")
	cfg.PlatformURL = practicaSection.Key("platform_url").MustString(cfg.PlatformURL)
	cfg.APIToken = practicaSection.Key("api_token").String()

	uploadSection := iniFile.Section("link.upload")
	cfg.Upload.TimeoutSeconds = uploadSection.Key("timeout_seconds").MustInt(120)

	return cfg, nil
}

// ApplyEnvOverrides replaces connection settings from the environment.
// Env vars win over the file; CLI flags win over both (applied by cli).
func (cfg *APIConfig) ApplyEnvOverrides() {
	if v := os.Getenv(EnvPlatformURL); v != "" {
		cfg.PlatformURL = v
	}
	if v := os.Getenv(EnvAPIToken); v != "" {
		cfg.APIToken = v
	}
}

// SaveAPIConfig saves configuration to an INI file.
// Creates parent directories if they don't exist. The API token is stored
// in the file, so permissions are restricted to the owning user.
func SaveAPIConfig(cfg *APIConfig, path string) error {
	if path == "" {
		var err error
		path, err = DefaultAPIConfigPath()
		if err != nil {
			return fmt.Errorf("failed to determine config path: %w", err)
		}
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	iniFile := ini.Empty()

	practicaSection, err := iniFile.NewSection("practica")
	if err != nil {
		return fmt.Errorf("failed to create practica section: %w", err)
	}
	practicaSection.Key("platform_url").SetValue(cfg.PlatformURL)
	practicaSection.Key("api_token").SetValue(cfg.APIToken)

	uploadSection, err := iniFile.NewSection("link.upload")
	if err != nil {
		return fmt.Errorf("failed to create upload section: %w", err)
	}
	uploadSection.Key("timeout_seconds").SetValue(fmt.Sprintf("%d", cfg.Upload.TimeoutSeconds))

	// Temp file + rename for atomicity.
	tmpPath := path + ".tmp"
	if err := iniFile.SaveTo(tmpPath); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}

	if runtime.GOOS != "windows" {
		if err := os.Chmod(tmpPath, 0600); err != nil {
			os.Remove(tmpPath)
			return fmt.Errorf("failed to set config permissions: %w", err)
		}
	}

	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to save config: %w", err)
	}

	return nil
}

// UploadTimeout returns the per-transfer timeout as a duration. Out of
// range values fall back to the default.
func (cfg *APIConfig) UploadTimeout() time.Duration {
	secs := cfg.Upload.TimeoutSeconds
	if secs < 5 || secs > 3600 {
		secs = 120
	}
	return time.Duration(secs) * time.Second
}

// Validate checks the full configuration.
func (cfg *APIConfig) Validate() error {
	if err := cfg.ValidateForConnection(); err != nil {
		return err
	}
	if cfg.Upload.TimeoutSeconds < 5 || cfg.Upload.TimeoutSeconds > 3600 {
		return ErrInvalidUploadTimeout
	}
	return nil
}

// ValidateForConnection checks only the connection settings. Absence of
// either value is a fatal precondition for any network call.
func (cfg *APIConfig) ValidateForConnection() error {
	if strings.TrimSpace(cfg.PlatformURL) == "" {
		return ErrMissingPlatformURL
	}
	if strings.TrimSpace(cfg.APIToken) == "" {
		return ErrMissingAPIToken
	}
	return nil
}
