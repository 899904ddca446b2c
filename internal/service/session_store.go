package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	domainauth "github.com/UdayGopi/Dental-Clinic/internal/domain/auth"
	"github.com/UdayGopi/Dental-Clinic/internal/ports"
)

// Fixed key names within a profile.
const (
	TokenKey = "token"
	UserKey  = "user"
)

// SessionStoreOptions groups dependencies for SessionStore.
type SessionStoreOptions struct {
	KV      ports.KeyValueStore
	Prefix  string // namespace applied before the profile, e.g. "clinic:profile:"
	Profile string // browser profile id; empty for single-profile stores
	Logger  *slog.Logger
}

// SessionStore persists the token and serialized identity for one profile.
type SessionStore struct {
	kv       ports.KeyValueStore
	tokenKey string
	userKey  string
	logger   *slog.Logger
}

// NewSessionStore constructs a profile-scoped session store.
func NewSessionStore(opts SessionStoreOptions) *SessionStore {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	base := opts.Prefix
	if opts.Profile != "" {
		base += opts.Profile + ":"
	}
	return &SessionStore{
		kv:       opts.KV,
		tokenKey: base + TokenKey,
		userKey:  base + UserKey,
		logger:   logger,
	}
}

// Read returns the prior session when both keys are present and the identity
// decodes. Any failure is reported as no session.
func (s *SessionStore) Read(ctx context.Context) (domainauth.Session, bool) {
	token, ok, err := s.kv.Get(ctx, s.tokenKey)
	if err != nil {
		s.logger.WarnContext(ctx, "read session token failed", "error", err)
		return domainauth.Session{}, false
	}
	if !ok || token == "" {
		return domainauth.Session{}, false
	}

	raw, ok, err := s.kv.Get(ctx, s.userKey)
	if err != nil {
		s.logger.WarnContext(ctx, "read session identity failed", "error", err)
		return domainauth.Session{}, false
	}
	if !ok || raw == "" {
		return domainauth.Session{}, false
	}

	id, err := decodeIdentity(raw)
	if err != nil {
		s.logger.WarnContext(ctx, "discarding malformed stored identity", "error", err)
		return domainauth.Session{}, false
	}
	return domainauth.Session{Token: token, Identity: id}, true
}

// decodeIdentity rejects anything that is not a JSON object, including "null".
func decodeIdentity(raw string) (domainauth.Identity, error) {
	var probe map[string]json.RawMessage
	if err := json.Unmarshal([]byte(raw), &probe); err != nil {
		return domainauth.Identity{}, fmt.Errorf("unmarshal identity: %w", err)
	}
	if probe == nil {
		return domainauth.Identity{}, errors.New("identity is not an object")
	}
	var id domainauth.Identity
	if err := json.Unmarshal([]byte(raw), &id); err != nil {
		return domainauth.Identity{}, fmt.Errorf("unmarshal identity: %w", err)
	}
	return id, nil
}

// Write persists both fields in one atomic write, overwriting any prior value.
// On failure the previous session is left as it was.
func (s *SessionStore) Write(ctx context.Context, sess domainauth.Session) error {
	data, err := json.Marshal(sess.Identity)
	if err != nil {
		return fmt.Errorf("marshal identity: %w", err)
	}
	if err := s.kv.SetMany(ctx, map[string]string{
		s.tokenKey: sess.Token,
		s.userKey:  string(data),
	}); err != nil {
		return fmt.Errorf("write session: %w", err)
	}
	return nil
}

// WriteIdentity rewrites only the serialized identity.
func (s *SessionStore) WriteIdentity(ctx context.Context, id domainauth.Identity) error {
	data, err := json.Marshal(id)
	if err != nil {
		return fmt.Errorf("marshal identity: %w", err)
	}
	if err := s.kv.Set(ctx, s.userKey, string(data)); err != nil {
		return fmt.Errorf("write session identity: %w", err)
	}
	return nil
}

// Clear removes both fields.
func (s *SessionStore) Clear(ctx context.Context) error {
	if err := s.kv.Delete(ctx, s.tokenKey, s.userKey); err != nil {
		return fmt.Errorf("clear session: %w", err)
	}
	return nil
}
