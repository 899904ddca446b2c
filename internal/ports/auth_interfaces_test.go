package ports_test

import (
	"testing"

	"github.com/UdayGopi/Dental-Clinic/internal/adapters/authapi"
	"github.com/UdayGopi/Dental-Clinic/internal/adapters/devauth"
	"github.com/UdayGopi/Dental-Clinic/internal/adapters/filekv"
	"github.com/UdayGopi/Dental-Clinic/internal/adapters/memory"
	redisadapter "github.com/UdayGopi/Dental-Clinic/internal/adapters/redis"
	"github.com/UdayGopi/Dental-Clinic/internal/mocks"
	mockauth "github.com/UdayGopi/Dental-Clinic/internal/mocks/auth"
	"github.com/UdayGopi/Dental-Clinic/internal/ports"
)

// This test only verifies that adapters and mocks conform to the ports at compile time.
func TestImplementationsSatisfyPorts(t *testing.T) {
	t.Helper()

	var _ ports.AuthBackend = (*authapi.Client)(nil)
	var _ ports.AuthBackend = (*devauth.Provider)(nil)
	var _ ports.AuthBackend = (*mockauth.MockAuthBackend)(nil)
	var _ ports.AuthBackend = (*mocks.MockAuthBackend)(nil)

	var _ ports.KeyValueStore = (*memory.Store)(nil)
	var _ ports.KeyValueStore = (*filekv.Store)(nil)
	var _ ports.KeyValueStore = (*redisadapter.KVStore)(nil)
	var _ ports.KeyValueStore = (*mockauth.FailingKV)(nil)
	var _ ports.KeyValueStore = (*mocks.MockKeyValueStore)(nil)
}
