package config

import (
	"strings"
	"time"
)

// DefaultProfileCookie names the cookie that identifies a browser profile.
const DefaultProfileCookie = "clinic_profile"

// HTTPConfig contains HTTP server configuration.
type HTTPConfig struct {
	// Addr is the address to bind the HTTP server to.
	Addr string `env:"HTTP_ADDR" envDefault:":8080"`

	// CookieDomain is the domain for the profile cookie.
	// Leave empty to use the request domain.
	CookieDomain string `env:"APP_COOKIE_DOMAIN" envDefault:""`

	// ProfileCookie is the cookie name carrying the browser profile id.
	ProfileCookie string `env:"APP_PROFILE_COOKIE" envDefault:"clinic_profile"`

	// AuthRateLimit throttles login and registration submissions per client.
	AuthRateLimit RateLimitConfig
}

// RateLimitConfig defines a token bucket: Requests per Window with Burst.
type RateLimitConfig struct {
	// Requests is the number allowed per Window. Zero disables limiting.
	Requests int           `env:"AUTH_RATE_LIMIT_REQUESTS" envDefault:"10"`
	Window   time.Duration `env:"AUTH_RATE_LIMIT_WINDOW"   envDefault:"1m"`
	Burst    int           `env:"AUTH_RATE_LIMIT_BURST"    envDefault:"10"`
	// TrustProxyHeaders keys clients by X-Forwarded-For / X-Real-IP.
	// Enable only behind a proxy that overwrites those headers.
	TrustProxyHeaders bool `env:"AUTH_RATE_LIMIT_TRUST_PROXY" envDefault:"false"`
}

// Sanitize applies guardrails to rate limit values.
func (r *RateLimitConfig) Sanitize() {
	if r.Requests < 0 {
		r.Requests = 0
	}
	if r.Window <= 0 {
		r.Window = time.Minute
	}
	if r.Burst <= 0 {
		r.Burst = r.Requests
	}
}

// Sanitize applies guardrails to HTTP configuration values.
func (h *HTTPConfig) Sanitize() {
	h.Addr = strings.TrimSpace(h.Addr)
	if h.Addr == "" {
		h.Addr = ":8080"
	}
	h.CookieDomain = strings.TrimSpace(h.CookieDomain)
	h.ProfileCookie = strings.TrimSpace(h.ProfileCookie)
	if h.ProfileCookie == "" {
		h.ProfileCookie = DefaultProfileCookie
	}
	h.AuthRateLimit.Sanitize()
}

// APIProxyConfig controls forwarding of /api requests to the clinic backend.
type APIProxyConfig struct {
	// Enabled mounts the /api reverse proxy.
	Enabled bool `env:"API_PROXY_ENABLED" envDefault:"true"`

	// BackendURL is the proxy target. Empty falls back to AUTH_BACKEND_URL.
	BackendURL string `env:"API_BACKEND_URL"`
}

// Sanitize fills BackendURL from fallback when unset.
func (a *APIProxyConfig) Sanitize(fallback string) {
	a.BackendURL = strings.TrimRight(strings.TrimSpace(a.BackendURL), "/")
	if a.BackendURL == "" {
		a.BackendURL = fallback
	}
	if a.BackendURL == "" {
		a.Enabled = false
	}
}
