package auth

import "errors"

var (
	// ErrInvalidCredentials is returned when email or password is empty.
	ErrInvalidCredentials = errors.New("email and password are required")
	// ErrManagerClosed is returned by operations on a torn-down session manager.
	ErrManagerClosed = errors.New("session manager closed")
)

const (
	// PlaceholderToken is the bearer credential stored for demo-mode sessions.
	PlaceholderToken = "mock-token"
	// PlaceholderID is the identity id used for demo-mode sessions.
	PlaceholderID = "1"
)
