package bootstrap

import (
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/UdayGopi/Dental-Clinic/config"
	"github.com/UdayGopi/Dental-Clinic/internal/adapters/authapi"
	"github.com/UdayGopi/Dental-Clinic/internal/adapters/devauth"
	"github.com/UdayGopi/Dental-Clinic/internal/adapters/memory"
	redisadapter "github.com/UdayGopi/Dental-Clinic/internal/adapters/redis"
)

func TestBuildKeyValueStore(t *testing.T) {
	kv, health, err := BuildKeyValueStore(config.SessionConfig{Store: config.SessionStoreMemory}, nil)
	require.NoError(t, err)
	assert.IsType(t, &memory.Store{}, kv)
	assert.Nil(t, health)

	_, _, err = BuildKeyValueStore(config.SessionConfig{Store: config.SessionStoreRedis}, nil)
	require.Error(t, err)

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	kv, health, err = BuildKeyValueStore(config.SessionConfig{Store: config.SessionStoreRedis}, client)
	require.NoError(t, err)
	assert.IsType(t, &redisadapter.KVStore{}, kv)
	require.NotNil(t, health)
	assert.NoError(t, health.Ping(t.Context()))

	_, _, err = BuildKeyValueStore(config.SessionConfig{Store: "disk"}, nil)
	require.Error(t, err)
}

func TestBuildAuthBackend(t *testing.T) {
	b, err := BuildAuthBackend(config.AuthConfig{Mode: config.AuthModeMock}, nil)
	require.NoError(t, err)
	assert.IsType(t, &devauth.Provider{}, b)

	_, err = BuildAuthBackend(config.AuthConfig{Mode: config.AuthModeMock, DevAuth: config.DevAuthConfig{Role: "root"}}, nil)
	require.Error(t, err)

	b, err = BuildAuthBackend(config.AuthConfig{Mode: config.AuthModeAPI, BackendURL: "http://localhost:8000"}, nil)
	require.NoError(t, err)
	assert.IsType(t, &authapi.Client{}, b)

	_, err = BuildAuthBackend(config.AuthConfig{Mode: config.AuthModeAPI}, nil)
	require.Error(t, err)

	_, err = BuildAuthBackend(config.AuthConfig{Mode: config.AuthModeAPI, BackendURL: "http://x", TokenPath: "a.["}, nil)
	require.Error(t, err)

	_, err = BuildAuthBackend(config.AuthConfig{Mode: "saml"}, nil)
	require.Error(t, err)
}

func TestBuildSessionComponents(t *testing.T) {
	_, err := BuildSessionComponents(SessionDeps{})
	require.Error(t, err)

	cfg := &config.AppConfig{
		Auth:    config.AuthConfig{Mode: config.AuthModeMock},
		Session: config.SessionConfig{Store: config.SessionStoreMemory, KeyPrefix: config.DefaultSessionKeyPrefix},
	}
	c, err := BuildSessionComponents(SessionDeps{Config: cfg})
	require.NoError(t, err)
	require.NotNil(t, c.Managers)
	assert.Nil(t, c.Health)

	m := c.Managers.ForProfile(t.Context(), "p1")
	defer m.Teardown()
	assert.Equal(t, "anonymous", m.State().String())
}
