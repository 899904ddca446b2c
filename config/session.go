package config

import (
	"fmt"
	"strings"
)

// SessionStoreKind selects where browser profile sessions are persisted.
type SessionStoreKind string

const (
	// SessionStoreMemory keeps sessions in process memory.
	SessionStoreMemory SessionStoreKind = "memory"
	// SessionStoreRedis keeps sessions in Redis.
	SessionStoreRedis SessionStoreKind = "redis"
)

// UnmarshalText implements encoding.TextUnmarshaler for SessionStoreKind.
func (k *SessionStoreKind) UnmarshalText(text []byte) error {
	v := strings.ToLower(strings.TrimSpace(string(text)))
	switch v {
	case "memory", "redis":
		*k = SessionStoreKind(v)
		return nil
	default:
		return fmt.Errorf("invalid SessionStore: %q (valid options: memory, redis)", v)
	}
}

// DefaultSessionKeyPrefix namespaces profile keys in the store.
const DefaultSessionKeyPrefix = "clinic:profile:"

// SessionConfig contains session persistence configuration.
type SessionConfig struct {
	Store     SessionStoreKind `env:"SESSION_STORE"      envDefault:"memory"`
	KeyPrefix string           `env:"SESSION_KEY_PREFIX" envDefault:"clinic:profile:"`
}

// Sanitize applies guardrails to session configuration values.
func (s *SessionConfig) Sanitize() {
	if s.Store == "" {
		s.Store = SessionStoreMemory
	}
	s.KeyPrefix = strings.TrimSpace(s.KeyPrefix)
	if s.KeyPrefix == "" {
		s.KeyPrefix = DefaultSessionKeyPrefix
	}
}

// RedisConfig contains Redis configuration.
type RedisConfig struct {
	URI      string `env:"URI"      envDefault:"localhost:6379"`
	Password string `env:"PASSWORD" envDefault:""`
	DB       int    `env:"DB"       envDefault:"0"`
}
