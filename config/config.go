package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// AppConfig is the main application configuration struct that composes
// domain-specific configuration from separate files.
//
// Configuration is loaded from environment variables using the
// github.com/caarlos0/env library. See individual domain config
// files for details on available environment variables:
//   - auth.go: Authentication backend configuration
//   - session.go: Session store and Redis configuration
//   - http.go: HTTP server and API proxy configuration
//   - observability.go: Logging configuration
type AppConfig struct {
	// IsDev controls development mode behavior (template reloading, insecure cookies on plain HTTP).
	// Set DEV=true or NODE_ENV=development for development mode.
	IsDev bool `env:"DEV" envDefault:"false"`

	// Authentication configuration
	Auth AuthConfig

	// Session persistence
	Session SessionConfig
	Redis   RedisConfig `envPrefix:"REDIS_"`

	// HTTP server configuration
	HTTP HTTPConfig

	// Backend API proxy
	API APIProxyConfig

	// Logging configuration
	Observability ObservabilityConfig

	// CLI configuration
	CLI CLIConfig
}

// Sanitize applies guardrails to configuration values loaded from env.
// This should be called after loading configuration from environment variables.
func (c *AppConfig) Sanitize() {
	c.HTTP.Sanitize()
	c.Auth.Sanitize()
	c.Session.Sanitize()
	c.Observability.Sanitize()

	// The proxy targets the auth backend unless told otherwise.
	c.API.Sanitize(c.Auth.BackendURL)

	// Check NODE_ENV for dev mode
	c.detectDevMode()
}

// detectDevMode checks both DEV and NODE_ENV environment variables.
// This is called by Sanitize() to ensure IsDev is set correctly.
// NODE_ENV is checked as a fallback (common in frontend tooling).
func (c *AppConfig) detectDevMode() {
	if !c.IsDev {
		nodeEnv := strings.ToLower(os.Getenv("NODE_ENV"))
		c.IsDev = nodeEnv == "development" || nodeEnv == "dev"
	}
}

// CLIConfig controls the command-line client.
type CLIConfig struct {
	// ProfilePath is the JSON file holding the CLI's stored session.
	// Empty means the user config directory (see ResolveProfilePath).
	ProfilePath string `env:"CLINIC_CLI_PROFILE"`
}

// ResolveProfilePath returns ProfilePath or the per-user default
// <config dir>/clinic-cli/profile.json.
func (c CLIConfig) ResolveProfilePath() (string, error) {
	if p := strings.TrimSpace(c.ProfilePath); p != "" {
		return p, nil
	}
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("locate user config dir: %w", err)
	}
	return filepath.Join(dir, "clinic-cli", "profile.json"), nil
}
