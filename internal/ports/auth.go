// Package ports defines interfaces (hexagonal ports) for session-related behavior.
// Implementations live in internal/adapters; orchestration in internal/service.
package ports

import (
	"context"

	domainauth "github.com/UdayGopi/Dental-Clinic/internal/domain/auth"
)

// KeyValueStore is durable string storage scoped by key, the server-side
// analogue of browser local storage.
type KeyValueStore interface {
	// Get returns the value and whether the key was present.
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
	// SetMany writes every pair or none of them.
	SetMany(ctx context.Context, values map[string]string) error
	// Delete removes the keys; missing keys are not an error.
	Delete(ctx context.Context, keys ...string) error
}

// LoginRequest is the payload for POST /api/auth/login.
type LoginRequest struct {
	Email    string
	Password string
	Role     *domainauth.Role
}

// RegisterRequest is the payload for POST /api/auth/register.
// Extra carries role-specific fields merged beneath the fixed ones.
type RegisterRequest struct {
	Email    string
	Password string
	Name     string
	Role     domainauth.Role
	Extra    map[string]any
}

// AuthResult is the backend's response to login or register.
// Identity.Role is empty when the service omitted it.
type AuthResult struct {
	Token    string
	Identity domainauth.Identity
}

// AuthBackend is the external clinic authentication service.
type AuthBackend interface {
	Login(ctx context.Context, req LoginRequest) (AuthResult, error)
	Register(ctx context.Context, req RegisterRequest) (AuthResult, error)
}
