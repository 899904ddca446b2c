package bootstrap

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/redis/go-redis/v9"

	"github.com/UdayGopi/Dental-Clinic/config"
	"github.com/UdayGopi/Dental-Clinic/internal/adapters/authapi"
	"github.com/UdayGopi/Dental-Clinic/internal/adapters/devauth"
	"github.com/UdayGopi/Dental-Clinic/internal/adapters/memory"
	redisadapter "github.com/UdayGopi/Dental-Clinic/internal/adapters/redis"
	domainauth "github.com/UdayGopi/Dental-Clinic/internal/domain/auth"
	httpx "github.com/UdayGopi/Dental-Clinic/internal/http"
	"github.com/UdayGopi/Dental-Clinic/internal/ports"
	"github.com/UdayGopi/Dental-Clinic/internal/service"
)

// SessionDeps contains dependencies for BuildSessionComponents.
type SessionDeps struct {
	Config      *config.AppConfig
	RedisClient redis.UniversalClient // required when SESSION_STORE=redis
	HTTPClient  *http.Client          // optional; used by the api backend
	Logger      *slog.Logger
}

// SessionComponents are the pieces the HTTP layer needs.
type SessionComponents struct {
	Managers *service.SessionManagers
	Health   httpx.Pinger // nil for the memory store
}

// BuildSessionComponents selects the session store and auth backend from config.
func BuildSessionComponents(deps SessionDeps) (*SessionComponents, error) {
	if deps.Config == nil {
		return nil, errors.New("config is required")
	}
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}

	kv, health, err := BuildKeyValueStore(deps.Config.Session, deps.RedisClient)
	if err != nil {
		return nil, err
	}
	backend, err := BuildAuthBackend(deps.Config.Auth, deps.HTTPClient)
	if err != nil {
		return nil, err
	}
	logger.Info("session components ready",
		"store", string(deps.Config.Session.Store),
		"auth_mode", string(deps.Config.Auth.Mode),
	)

	return &SessionComponents{
		Managers: service.NewSessionManagers(service.SessionManagersOptions{
			KV:             kv,
			Backend:        backend,
			KeyPrefix:      deps.Config.Session.KeyPrefix,
			RequestTimeout: deps.Config.Auth.RequestTimeout,
			Logger:         logger,
		}),
		Health: health,
	}, nil
}

// BuildKeyValueStore returns the configured store and, when it supports one, a health check.
//
//nolint:ireturn // store kind is chosen at runtime.
func BuildKeyValueStore(cfg config.SessionConfig, client redis.UniversalClient) (ports.KeyValueStore, httpx.Pinger, error) {
	switch cfg.Store {
	case config.SessionStoreRedis:
		if client == nil {
			return nil, nil, errors.New("redis session store selected but redis client not configured")
		}
		store := redisadapter.NewKVStore(client)
		return store, store, nil
	case config.SessionStoreMemory, "":
		return memory.NewStore(), nil, nil
	default:
		return nil, nil, fmt.Errorf("unknown session store %q", cfg.Store)
	}
}

// BuildAuthBackend returns the clinic API client or the in-process mock backend.
//
//nolint:ireturn // backend kind is chosen at runtime.
func BuildAuthBackend(cfg config.AuthConfig, client *http.Client) (ports.AuthBackend, error) {
	switch cfg.Mode {
	case config.AuthModeMock:
		prov, err := devauth.NewProvider(devauth.Config{
			Role:     domainauth.Role(cfg.DevAuth.Role),
			Password: cfg.DevAuth.Password,
		})
		if err != nil {
			return nil, fmt.Errorf("build dev auth backend: %w", err)
		}
		return prov, nil
	case config.AuthModeAPI, "":
		c, err := authapi.NewClient(authapi.Config{
			BaseURL:   cfg.BackendURL,
			Timeout:   cfg.RequestTimeout,
			Client:    client,
			TokenPath: cfg.TokenPath,
			UserPath:  cfg.UserPath,
		})
		if err != nil {
			return nil, fmt.Errorf("build auth api client: %w", err)
		}
		return c, nil
	default:
		return nil, fmt.Errorf("unknown auth mode %q", cfg.Mode)
	}
}
