package config

import (
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"testing"
)

func TestNewAPIConfigDefaults(t *testing.T) {
	cfg := NewAPIConfig()

	if cfg.PlatformURL != "https://app.practica.tax" {
		t.Errorf("PlatformURL = %q, want default", cfg.PlatformURL)
	}
	if cfg.APIToken != "" {
		t.Error("APIToken should default to empty")
	}
	if cfg.Upload.TimeoutSeconds != 120 {
		t.Errorf("TimeoutSeconds = %d, want 120", cfg.Upload.TimeoutSeconds)
	}
}

func TestLoadAPIConfigMissingFileReturnsDefaults(t *testing.T) {
	cfg, err := LoadAPIConfig(filepath.Join(t.TempDir(), "does-not-exist"))
	if err != nil {
		t.Fatalf("LoadAPIConfig: %v", err)
	}
	if cfg.PlatformURL != "https://app.practica.tax" {
		t.Errorf("PlatformURL = %q, want default", cfg.PlatformURL)
	}
}

func TestSaveAndLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "apiconfig")

	cfg := NewAPIConfig()
	cfg.PlatformURL = "https://staging.practica.tax"
	cfg.APIToken = "tok-123"
	cfg.Upload.TimeoutSeconds = 60

	if err := SaveAPIConfig(cfg, path); err != nil {
		t.Fatalf("SaveAPIConfig: %v", err)
	}

	loaded, err := LoadAPIConfig(path)
	if err != nil {
		t.Fatalf("LoadAPIConfig: %v", err)
	}

	if loaded.PlatformURL != "https://staging.practica.tax" {
		t.Errorf("PlatformURL = %q", loaded.PlatformURL)
	}
	if loaded.APIToken != "tok-123" {
		t.Errorf("APIToken = %q", loaded.APIToken)
	}
	if loaded.Upload.TimeoutSeconds != 60 {
		t.Errorf("TimeoutSeconds = %d, want 60", loaded.Upload.TimeoutSeconds)
	}
}

func TestSaveRestrictsPermissions(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("permission bits not meaningful on windows")
	}

	path := filepath.Join(t.TempDir(), "apiconfig")
	cfg := NewAPIConfig()
	cfg.APIToken = "secret"

	if err := SaveAPIConfig(cfg, path); err != nil {
		t.Fatalf("SaveAPIConfig: %v", err)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("stat: %v", err)
	}
	if perm := info.Mode().Perm(); perm != 0600 {
		t.Errorf("permissions = %o, want 600", perm)
	}
}

func TestValidateForConnection(t *testing.T) {
	tests := []struct {
		name    string
		url     string
		token   string
		wantErr error
	}{
		{"valid", "https://app.practica.tax", "tok", nil},
		{"missing url", "", "tok", ErrMissingPlatformURL},
		{"missing token", "https://app.practica.tax", "", ErrMissingAPIToken},
		{"whitespace token", "https://app.practica.tax", "   ", ErrMissingAPIToken},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &APIConfig{PlatformURL: tt.url, APIToken: tt.token}
			err := cfg.ValidateForConnection()
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("ValidateForConnection() = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestValidateUploadTimeoutBounds(t *testing.T) {
	cfg := NewAPIConfig()
	cfg.APIToken = "tok"

	cfg.Upload.TimeoutSeconds = 1
	if !errors.Is(cfg.Validate(), ErrInvalidUploadTimeout) {
		t.Error("expected ErrInvalidUploadTimeout for 1s")
	}

	cfg.Upload.TimeoutSeconds = 120
	if err := cfg.Validate(); err != nil {
		t.Errorf("Validate() = %v, want nil", err)
	}
}

func TestApplyEnvOverrides(t *testing.T) {
	t.Setenv(EnvPlatformURL, "https://env.practica.tax")
	t.Setenv(EnvAPIToken, "env-token")

	cfg := NewAPIConfig()
	cfg.APIToken = "file-token"
	cfg.ApplyEnvOverrides()

	if cfg.PlatformURL != "https://env.practica.tax" {
		t.Errorf("PlatformURL = %q, want env override", cfg.PlatformURL)
	}
	if cfg.APIToken != "env-token" {
		t.Errorf("APIToken = %q, want env override", cfg.APIToken)
	}
}
