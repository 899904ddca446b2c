// Package auth contains simple hand-written test doubles for auth ports.
// These are lightweight and suitable for unit tests without codegen.
package auth

import (
	"context"
	"errors"
	"sync"

	domainauth "github.com/UdayGopi/Dental-Clinic/internal/domain/auth"
	"github.com/UdayGopi/Dental-Clinic/internal/ports"
)

// Ensure compile-time conformance to ports.
var (
	_ ports.AuthBackend   = (*MockAuthBackend)(nil)
	_ ports.KeyValueStore = (*FailingKV)(nil)
)

// ErrBackendDown is the default failure returned by an unreachable backend.
var ErrBackendDown = errors.New("mock auth backend unreachable")

// MockAuthBackend records calls and answers with configured results.
// A nil LoginFunc or RegisterFunc returns Result with a copy of the request's
// email, or Err when set.
type MockAuthBackend struct {
	LoginFunc    func(ctx context.Context, req ports.LoginRequest) (ports.AuthResult, error)
	RegisterFunc func(ctx context.Context, req ports.RegisterRequest) (ports.AuthResult, error)

	Result ports.AuthResult
	Err    error

	mu        sync.Mutex
	logins    []ports.LoginRequest
	registers []ports.RegisterRequest
}

// NewMockAuthBackend creates a backend that succeeds with a fixed token.
func NewMockAuthBackend() *MockAuthBackend {
	return &MockAuthBackend{
		Result: ports.AuthResult{
			Token:    "backend-token",
			Identity: domainauth.Identity{ID: "42", Name: "Mock User"},
		},
	}
}

// NewUnreachableBackend creates a backend whose every call fails with ErrBackendDown.
func NewUnreachableBackend() *MockAuthBackend {
	return &MockAuthBackend{Err: ErrBackendDown}
}

func (m *MockAuthBackend) Login(ctx context.Context, req ports.LoginRequest) (ports.AuthResult, error) {
	m.mu.Lock()
	m.logins = append(m.logins, req)
	m.mu.Unlock()

	if m.LoginFunc != nil {
		return m.LoginFunc(ctx, req)
	}
	return m.answer(req.Email)
}

func (m *MockAuthBackend) Register(ctx context.Context, req ports.RegisterRequest) (ports.AuthResult, error) {
	m.mu.Lock()
	m.registers = append(m.registers, req)
	m.mu.Unlock()

	if m.RegisterFunc != nil {
		return m.RegisterFunc(ctx, req)
	}
	return m.answer(req.Email)
}

func (m *MockAuthBackend) answer(email string) (ports.AuthResult, error) {
	if m.Err != nil {
		return ports.AuthResult{}, m.Err
	}
	res := m.Result
	if res.Identity.Email == "" {
		res.Identity.Email = email
	}
	return res, nil
}

// LoginCalls returns the login requests seen so far.
func (m *MockAuthBackend) LoginCalls() []ports.LoginRequest {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]ports.LoginRequest(nil), m.logins...)
}

// RegisterCalls returns the register requests seen so far.
func (m *MockAuthBackend) RegisterCalls() []ports.RegisterRequest {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]ports.RegisterRequest(nil), m.registers...)
}

// ErrStoreUnavailable is returned by FailingKV.
var ErrStoreUnavailable = errors.New("mock store unavailable")

// FailingKV wraps a store and fails selected operations.
type FailingKV struct {
	Inner ports.KeyValueStore

	FailGet    bool
	FailSet    bool
	FailDelete bool
}

func (f *FailingKV) Get(ctx context.Context, key string) (string, bool, error) {
	if f.FailGet || f.Inner == nil {
		return "", false, ErrStoreUnavailable
	}
	return f.Inner.Get(ctx, key)
}

func (f *FailingKV) Set(ctx context.Context, key, value string) error {
	if f.FailSet || f.Inner == nil {
		return ErrStoreUnavailable
	}
	return f.Inner.Set(ctx, key, value)
}

// SetMany fails whenever FailSet is set, without writing any pair.
func (f *FailingKV) SetMany(ctx context.Context, values map[string]string) error {
	if f.FailSet || f.Inner == nil {
		return ErrStoreUnavailable
	}
	return f.Inner.SetMany(ctx, values)
}

func (f *FailingKV) Delete(ctx context.Context, keys ...string) error {
	if f.FailDelete || f.Inner == nil {
		return ErrStoreUnavailable
	}
	return f.Inner.Delete(ctx, keys...)
}
