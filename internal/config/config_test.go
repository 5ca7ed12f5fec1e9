package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadConfig(t *testing.T) {
	path := writeConfig(t, `
environment: production
endpoints:
  production: https://api.example.com/api/
request-timeout: 10
resource-timeout: 120
credential-backend: file
auth-dir: /tmp/tasknest-test
debug: true
`)

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig() failed: %v", err)
	}
	if cfg.Environment != EnvProduction {
		t.Errorf("Environment = %q, want production", cfg.Environment)
	}
	base, err := cfg.BaseURL()
	if err != nil {
		t.Fatalf("BaseURL() failed: %v", err)
	}
	if base != "https://api.example.com/api" {
		t.Errorf("BaseURL() = %q, want trailing slash trimmed", base)
	}
	if got := cfg.RequestTimeout(); got != 10*time.Second {
		t.Errorf("RequestTimeout() = %v, want 10s", got)
	}
	if got := cfg.ResourceTimeout(); got != 120*time.Second {
		t.Errorf("ResourceTimeout() = %v, want 120s", got)
	}
	if cfg.CredentialBackend != BackendFile {
		t.Errorf("CredentialBackend = %q, want file", cfg.CredentialBackend)
	}
}

func TestLoadConfigOptionalMissingFile(t *testing.T) {
	cfg, err := LoadConfigOptional(filepath.Join(t.TempDir(), "absent.yaml"), true)
	if err != nil {
		t.Fatalf("LoadConfigOptional() failed: %v", err)
	}
	if cfg.Environment != EnvDevelopment {
		t.Errorf("Environment = %q, want development default", cfg.Environment)
	}
	if got := cfg.RequestTimeout(); got != DefaultRequestTimeout {
		t.Errorf("RequestTimeout() = %v, want default", got)
	}
	if _, err = cfg.BaseURL(); err != nil {
		t.Errorf("BaseURL() on defaults failed: %v", err)
	}
}

func TestEnvironmentOverrides(t *testing.T) {
	t.Setenv("TASKNEST_ENV", "staging")
	t.Setenv("TASKNEST_BASE_URL", "http://staging.internal:8080/api")

	path := writeConfig(t, `
environment: development
endpoints:
  development: http://localhost:3000/api
`)
	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig() failed: %v", err)
	}
	if cfg.Environment != "staging" {
		t.Errorf("Environment = %q, want staging from TASKNEST_ENV", cfg.Environment)
	}
	base, err := cfg.BaseURL()
	if err != nil {
		t.Fatalf("BaseURL() failed: %v", err)
	}
	if base != "http://staging.internal:8080/api" {
		t.Errorf("BaseURL() = %q, want TASKNEST_BASE_URL override", base)
	}
}

func TestBaseURLErrors(t *testing.T) {
	tests := []struct {
		name string
		cfg  Config
	}{
		{"unknown environment", Config{Environment: "qa", Endpoints: map[string]string{"development": "http://x"}}},
		{"blank endpoint", Config{Environment: "development", Endpoints: map[string]string{"development": "  "}}},
		{"invalid endpoint", Config{Environment: "development", Endpoints: map[string]string{"development": "://nope"}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := tt.cfg.BaseURL(); err == nil {
				t.Error("BaseURL() succeeded, want error")
			}
		})
	}
}
