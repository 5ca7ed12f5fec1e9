// Package config provides configuration management for the TaskNest client.
// It handles loading and parsing YAML configuration files, and provides structured
// access to application settings including the backend environment, request timeouts,
// the credential storage backend, and logging behavior.
package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Environment names understood by the endpoint selector.
const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
)

// Credential backend names accepted by credential-backend.
const (
	BackendAuto    = "auto"
	BackendKeyring = "keyring"
	BackendFile    = "file"
)

// Default timeouts applied when the configuration leaves them unset.
// The request timeout bounds time-to-first-response-header; the resource
// timeout bounds the entire transfer.
const (
	DefaultRequestTimeout  = 30 * time.Second
	DefaultResourceTimeout = 300 * time.Second
)

// Config represents the application's configuration, loaded from a YAML file.
type Config struct {
	// Environment selects which entry of Endpoints is used as the API base URL.
	Environment string `yaml:"environment" json:"environment"`

	// Endpoints maps an environment name to the API base URL used for that environment.
	Endpoints map[string]string `yaml:"endpoints" json:"endpoints"`

	// RequestTimeoutSeconds bounds how long the client waits for response headers.
	// <= 0 selects the default.
	RequestTimeoutSeconds int `yaml:"request-timeout,omitempty" json:"request-timeout,omitempty"`

	// ResourceTimeoutSeconds bounds the total lifetime of a single request,
	// including reading the full response body. <= 0 selects the default.
	ResourceTimeoutSeconds int `yaml:"resource-timeout,omitempty" json:"resource-timeout,omitempty"`

	// CredentialBackend selects the credential storage backing: "keyring", "file",
	// or "auto" to probe the OS keyring and fall back to a file store.
	CredentialBackend string `yaml:"credential-backend,omitempty" json:"credential-backend,omitempty"`

	// AuthDir is the directory used for the file credential backend and log files.
	AuthDir string `yaml:"auth-dir,omitempty" json:"auth-dir,omitempty"`

	// Debug enables debug-level logging.
	Debug bool `yaml:"debug,omitempty" json:"debug,omitempty"`

	// LoggingToFile switches log output from stdout to rotating files under AuthDir.
	LoggingToFile bool `yaml:"logging-to-file,omitempty" json:"logging-to-file,omitempty"`
}

// DefaultConfig returns a configuration populated with built-in defaults.
// The development endpoint targets a local backend; production targets the
// hosted API.
func DefaultConfig() *Config {
	return &Config{
		Environment: EnvDevelopment,
		Endpoints: map[string]string{
			EnvDevelopment: "http://localhost:3000/api",
			EnvProduction:  "https://api.tasknest.io/api",
		},
		CredentialBackend: BackendAuto,
		AuthDir:           defaultAuthDir(),
	}
}

// LoadConfig reads and parses the configuration file at the given path.
// Missing keys keep their defaults; environment variables override the
// environment selection and base URL after parsing.
func LoadConfig(configFile string) (*Config, error) {
	return LoadConfigOptional(configFile, false)
}

// LoadConfigOptional behaves like LoadConfig but, when optional is true, a
// missing file yields the default configuration instead of an error.
func LoadConfigOptional(configFile string, optional bool) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(configFile)
	if err != nil {
		if optional && os.IsNotExist(err) {
			cfg.applyEnvOverrides()
			return cfg, nil
		}
		return nil, fmt.Errorf("config: read %s: %w", configFile, err)
	}
	if err = yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("config: parse %s: %w", configFile, err)
	}

	cfg.applyEnvOverrides()
	return cfg, nil
}

// applyEnvOverrides applies TASKNEST_ENV and TASKNEST_BASE_URL on top of the
// parsed file. TASKNEST_BASE_URL overrides the endpoint of the selected
// environment only.
func (c *Config) applyEnvOverrides() {
	if env := strings.TrimSpace(os.Getenv("TASKNEST_ENV")); env != "" {
		c.Environment = env
	}
	if base := strings.TrimSpace(os.Getenv("TASKNEST_BASE_URL")); base != "" {
		if c.Endpoints == nil {
			c.Endpoints = make(map[string]string)
		}
		c.Endpoints[c.Environment] = base
	}
}

// BaseURL resolves the API base URL for the configured environment.
func (c *Config) BaseURL() (string, error) {
	env := strings.TrimSpace(c.Environment)
	if env == "" {
		env = EnvDevelopment
	}
	base, ok := c.Endpoints[env]
	if !ok || strings.TrimSpace(base) == "" {
		return "", fmt.Errorf("config: no endpoint configured for environment %q", env)
	}
	if _, err := url.ParseRequestURI(base); err != nil {
		return "", fmt.Errorf("config: invalid endpoint for environment %q: %w", env, err)
	}
	return strings.TrimRight(base, "/"), nil
}

// RequestTimeout returns the effective per-request timeout.
func (c *Config) RequestTimeout() time.Duration {
	if c.RequestTimeoutSeconds > 0 {
		return time.Duration(c.RequestTimeoutSeconds) * time.Second
	}
	return DefaultRequestTimeout
}

// ResourceTimeout returns the effective whole-transfer timeout.
func (c *Config) ResourceTimeout() time.Duration {
	if c.ResourceTimeoutSeconds > 0 {
		return time.Duration(c.ResourceTimeoutSeconds) * time.Second
	}
	return DefaultResourceTimeout
}

// ResolveAuthDir expands a leading ~ in the configured auth directory and
// returns an absolute path.
func (c *Config) ResolveAuthDir() (string, error) {
	dir := strings.TrimSpace(c.AuthDir)
	if dir == "" {
		dir = defaultAuthDir()
	}
	if strings.HasPrefix(dir, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("config: resolve home directory: %w", err)
		}
		dir = filepath.Join(home, strings.TrimPrefix(dir, "~"))
	}
	return filepath.Abs(dir)
}

func defaultAuthDir() string {
	return "~/.tasknest"
}
