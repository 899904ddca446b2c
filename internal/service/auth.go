package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"maps"
	"sync"
	"time"

	domainauth "github.com/UdayGopi/Dental-Clinic/internal/domain/auth"
	apperrors "github.com/UdayGopi/Dental-Clinic/internal/errors"
	"github.com/UdayGopi/Dental-Clinic/internal/ports"
)

// DefaultRequestTimeout bounds each call to the authentication backend.
const DefaultRequestTimeout = 10 * time.Second

// SessionManagerOptions groups dependencies for SessionManager.
type SessionManagerOptions struct {
	Store          *SessionStore
	Backend        ports.AuthBackend
	RequestTimeout time.Duration
	Logger         *slog.Logger
}

// SessionManager is the single writer of one profile's authentication state.
// It moves Loading -> {Anonymous, Authenticated} on Init and between
// Anonymous and Authenticated on Login, Register, and Logout.
type SessionManager struct {
	store   *SessionStore
	backend ports.AuthBackend
	timeout time.Duration
	logger  *slog.Logger

	mu     sync.RWMutex
	state  domainauth.State
	sess   domainauth.Session
	demo   bool
	closed bool
}

// NewSessionManager constructs a manager in the Loading state.
func NewSessionManager(opts SessionManagerOptions) *SessionManager {
	timeout := opts.RequestTimeout
	if timeout <= 0 {
		timeout = DefaultRequestTimeout
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &SessionManager{
		store:   opts.Store,
		backend: opts.Backend,
		timeout: timeout,
		logger:  logger,
		state:   domainauth.StateLoading,
	}
}

// Init hydrates in-memory state from the session store. A missing or invalid
// stored role is inferred and written back when an email is available.
func (m *SessionManager) Init(ctx context.Context) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.state != domainauth.StateLoading || m.closed {
		return
	}

	sess, ok := m.store.Read(ctx)
	if !ok {
		m.state = domainauth.StateAnonymous
		return
	}

	id, changed := domainauth.NormalizeIdentity(sess.Identity)
	if changed {
		if err := m.store.WriteIdentity(ctx, id); err != nil {
			m.logger.WarnContext(ctx, "back-fill stored role failed", "error", err)
		}
	}
	sess.Identity = id
	m.sess = sess
	m.state = domainauth.StateAuthenticated
}

// Teardown releases the manager. The persisted session is left untouched.
func (m *SessionManager) Teardown() {
	m.mu.Lock()
	m.closed = true
	m.mu.Unlock()
}

// State returns the current lifecycle state.
func (m *SessionManager) State() domainauth.State {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.state
}

// Identity returns the authenticated identity, if any.
func (m *SessionManager) Identity() (domainauth.Identity, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.state != domainauth.StateAuthenticated {
		return domainauth.Identity{}, false
	}
	return m.sess.Identity, true
}

// Token returns the bearer credential of the authenticated session.
func (m *SessionManager) Token() (string, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.state != domainauth.StateAuthenticated {
		return "", false
	}
	return m.sess.Token, true
}

// Snapshot returns the state and, when authenticated, a copy of the identity,
// read under one lock.
func (m *SessionManager) Snapshot() (domainauth.State, *domainauth.Identity) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.state != domainauth.StateAuthenticated {
		return m.state, nil
	}
	id := m.sess.Identity
	return m.state, &id
}

// DemoSession reports whether this manager established the current session
// locally after the backend failed. Hydrated sessions report false.
func (m *SessionManager) DemoSession() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.state == domainauth.StateAuthenticated && m.demo
}

// Permissions returns flags derived from one snapshot of the identity.
func (m *SessionManager) Permissions() domainauth.Permissions {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.state != domainauth.StateAuthenticated {
		return domainauth.PermissionsFor(nil)
	}
	id := m.sess.Identity
	return domainauth.PermissionsFor(&id)
}

// LoginInput groups parameters for Login.
type LoginInput struct {
	Email    string
	Password string
	Role     *domainauth.Role
}

// Login authenticates against the backend. Transport and non-2xx failures are
// absorbed: with non-empty credentials a local demo session is established
// and no error is returned. Empty credentials fail with ErrInvalidCredentials.
func (m *SessionManager) Login(ctx context.Context, in LoginInput) (domainauth.Identity, error) {
	if in.Email == "" || in.Password == "" {
		return domainauth.Identity{}, domainauth.ErrInvalidCredentials
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return domainauth.Identity{}, domainauth.ErrManagerClosed
	}

	callCtx, cancel := context.WithTimeout(ctx, m.timeout)
	res, err := m.backend.Login(callCtx, ports.LoginRequest{Email: in.Email, Password: in.Password, Role: in.Role})
	cancel()

	var sess domainauth.Session
	demo := err != nil
	if demo {
		m.logger.WarnContext(ctx, "auth backend login failed; using local demo session",
			"error", err, "email", in.Email)
		sess = domainauth.Session{
			Token: domainauth.PlaceholderToken,
			Identity: domainauth.Identity{
				ID:    domainauth.PlaceholderID,
				Email: in.Email,
				Name:  domainauth.DisplayName(in.Email),
				Role:  domainauth.FallbackRole(in.Email, in.Role),
			},
		}
	} else {
		id := res.Identity
		id.Role = domainauth.ResolveRole(id.Role, in.Role, in.Email)
		sess = domainauth.Session{Token: res.Token, Identity: id}
	}

	if err := m.establishLocked(ctx, sess, demo); err != nil {
		return domainauth.Identity{}, err
	}
	return sess.Identity, nil
}

// RegisterInput groups parameters for Register.
type RegisterInput struct {
	Email    string
	Password string
	Name     string
	Role     domainauth.Role
	Extra    map[string]any
}

// Register creates an account through the backend. On backend failure a local
// demo session is still established and the original error is returned, so
// callers observe both the error and the Authenticated state.
func (m *SessionManager) Register(ctx context.Context, in RegisterInput) (domainauth.Identity, error) {
	if !in.Role.Valid() {
		return domainauth.Identity{}, apperrors.ValidationField("role", fmt.Sprintf("invalid role %q", in.Role))
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return domainauth.Identity{}, domainauth.ErrManagerClosed
	}

	callCtx, cancel := context.WithTimeout(ctx, m.timeout)
	res, backendErr := m.backend.Register(callCtx, ports.RegisterRequest{
		Email:    in.Email,
		Password: in.Password,
		Name:     in.Name,
		Role:     in.Role,
		Extra:    maps.Clone(in.Extra),
	})
	cancel()

	if backendErr == nil {
		id := res.Identity
		id.Role = domainauth.ResolveRole(id.Role, &in.Role, in.Email)
		sess := domainauth.Session{Token: res.Token, Identity: id}
		if err := m.establishLocked(ctx, sess, false); err != nil {
			return domainauth.Identity{}, err
		}
		return id, nil
	}

	m.logger.WarnContext(ctx, "auth backend register failed; using local demo session",
		"error", backendErr, "email", in.Email)
	fallback := domainauth.Identity{
		ID:    domainauth.PlaceholderID,
		Email: in.Email,
		Name:  in.Name,
		Role:  in.Role,
	}
	if in.Role == domainauth.RolePatient {
		ref := 1
		fallback.PatientRef = &ref
	}
	sess := domainauth.Session{Token: domainauth.PlaceholderToken, Identity: fallback}
	if err := m.establishLocked(ctx, sess, true); err != nil {
		return domainauth.Identity{}, errors.Join(wrapBackendErr(backendErr, "register"), err)
	}
	return fallback, wrapBackendErr(backendErr, "register")
}

// Logout clears the stored session and moves to Anonymous. It never fails.
func (m *SessionManager) Logout(ctx context.Context) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.store.Clear(ctx); err != nil {
		m.logger.WarnContext(ctx, "clear stored session failed", "error", err)
	}
	m.sess = domainauth.Session{}
	m.demo = false
	m.state = domainauth.StateAnonymous
}

// establishLocked persists sess and transitions to Authenticated. Caller holds mu.
// A failed write leaves both the store and the in-memory state untouched.
func (m *SessionManager) establishLocked(ctx context.Context, sess domainauth.Session, demo bool) error {
	if err := m.store.Write(ctx, sess); err != nil {
		return apperrors.Wrap(err, apperrors.ErrCodeInternal, "persist session")
	}
	m.sess = sess
	m.demo = demo
	m.state = domainauth.StateAuthenticated
	return nil
}

func wrapBackendErr(err error, op string) error {
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return apperrors.Wrap(err, apperrors.ErrCodeTimeout, op)
	case errors.Is(err, context.Canceled):
		return apperrors.Wrap(err, apperrors.ErrCodeCanceled, op)
	default:
		return apperrors.Wrap(err, apperrors.ErrCodeUnavailable, op)
	}
}

// SessionManagersOptions groups dependencies for SessionManagers.
type SessionManagersOptions struct {
	KV             ports.KeyValueStore
	Backend        ports.AuthBackend
	KeyPrefix      string
	RequestTimeout time.Duration
	Logger         *slog.Logger
}

// SessionManagers builds initialized managers for browser profiles.
type SessionManagers struct {
	kv      ports.KeyValueStore
	backend ports.AuthBackend
	prefix  string
	timeout time.Duration
	logger  *slog.Logger
}

// NewSessionManagers constructs a new SessionManagers factory.
func NewSessionManagers(opts SessionManagersOptions) *SessionManagers {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &SessionManagers{
		kv:      opts.KV,
		backend: opts.Backend,
		prefix:  opts.KeyPrefix,
		timeout: opts.RequestTimeout,
		logger:  logger,
	}
}

// ForProfile returns a manager hydrated from the profile's stored session.
func (f *SessionManagers) ForProfile(ctx context.Context, profileID string) *SessionManager {
	store := NewSessionStore(SessionStoreOptions{
		KV:      f.kv,
		Prefix:  f.prefix,
		Profile: profileID,
		Logger:  f.logger,
	})
	m := NewSessionManager(SessionManagerOptions{
		Store:          store,
		Backend:        f.backend,
		RequestTimeout: f.timeout,
		Logger:         f.logger,
	})
	m.Init(ctx)
	return m
}
