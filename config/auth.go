package config

import (
	"fmt"
	"strings"
	"time"
)

// AuthMode represents which authentication backend the portal talks to.
type AuthMode string

const (
	// AuthModeAPI calls the clinic REST API.
	AuthModeAPI AuthMode = "api"
	// AuthModeMock uses the in-process dev backend (for development only).
	AuthModeMock AuthMode = "mock"
)

// UnmarshalText implements encoding.TextUnmarshaler for AuthMode.
func (a *AuthMode) UnmarshalText(text []byte) error {
	v := strings.ToLower(strings.TrimSpace(string(text)))
	switch v {
	case "api", "mock":
		*a = AuthMode(v)
		return nil
	default:
		return fmt.Errorf("invalid AuthMode: %q (valid options: api, mock)", v)
	}
}

// DevAuthConfig controls the mock backend.
// Used when AUTH_MODE=mock for development and testing.
type DevAuthConfig struct {
	// Role is returned for every unregistered login. Empty lets the portal infer it.
	Role string `env:"ROLE"`
	// Password, when set, is the only password the mock backend accepts.
	Password string `env:"PASSWORD"`
}

// AuthConfig groups all authentication-related configuration.
type AuthConfig struct {
	// Mode determines which authentication backend to use.
	Mode AuthMode `env:"AUTH_MODE" envDefault:"api"`

	// BackendURL is the base URL of the service exposing /api/auth/login and /api/auth/register.
	BackendURL string `env:"AUTH_BACKEND_URL" envDefault:"http://localhost:8000"`

	// RequestTimeout bounds each login/register call.
	RequestTimeout time.Duration `env:"AUTH_REQUEST_TIMEOUT" envDefault:"10s"`

	// TokenPath and UserPath are JMESPath expressions locating the token and
	// user object in backend responses. Empty uses the client defaults.
	TokenPath string `env:"AUTH_TOKEN_PATH"`
	UserPath  string `env:"AUTH_USER_PATH"`

	// RegisterAdminCode, when set, must be supplied by browser registrations for the admin role.
	RegisterAdminCode string `env:"REGISTER_ADMIN_CODE"`

	// DevAuth configuration (used when Mode=mock).
	DevAuth DevAuthConfig `envPrefix:"DEV_AUTH_"`
}

// Sanitize applies guardrails to auth configuration values.
func (a *AuthConfig) Sanitize() {
	a.BackendURL = strings.TrimRight(strings.TrimSpace(a.BackendURL), "/")
	if a.RequestTimeout <= 0 {
		a.RequestTimeout = 10 * time.Second
	}
	if a.RequestTimeout > 2*time.Minute {
		a.RequestTimeout = 2 * time.Minute
	}
	a.DevAuth.Role = strings.ToLower(strings.TrimSpace(a.DevAuth.Role))
}
