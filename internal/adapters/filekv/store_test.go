package filekv

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/UdayGopi/Dental-Clinic/internal/testutil"
)

func TestStore_PersistsAcrossInstances(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "session.json")
	ctx := context.Background()

	first := NewStore(path, nil)
	require.NoError(t, first.Set(ctx, "token", "abc"))
	require.NoError(t, first.Set(ctx, "user", `{"id":"7"}`))

	second := NewStore(path, nil)
	v, ok, err := second.Get(ctx, "token")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "abc", v)

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())
}

func TestStore_MissingFile(t *testing.T) {
	s := NewStore(filepath.Join(t.TempDir(), "absent.json"), nil)

	_, ok, err := s.Get(context.Background(), "token")
	require.NoError(t, err)
	assert.False(t, ok)
	require.NoError(t, s.Delete(context.Background(), "token"))
}

func TestStore_Delete(t *testing.T) {
	s := NewStore(filepath.Join(t.TempDir(), "s.json"), nil)
	ctx := context.Background()

	require.NoError(t, s.Set(ctx, "token", "abc"))
	require.NoError(t, s.Set(ctx, "keep", "x"))
	require.NoError(t, s.Delete(ctx, "token"))

	_, ok, err := s.Get(ctx, "token")
	require.NoError(t, err)
	assert.False(t, ok)

	v, ok, err := s.Get(ctx, "keep")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "x", v)
}

func TestStore_CorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "s.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o600))

	logger, logs := testutil.NewTestLogger()
	s := NewStore(path, logger)
	ctx := context.Background()

	_, _, err := s.Get(ctx, "token")
	require.Error(t, err)

	require.NoError(t, s.Set(ctx, "token", "x"))
	assert.Contains(t, logs.String(), "replacing corrupt store file")
	v, ok, err := s.Get(ctx, "token")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "x", v)
}

func TestStore_DeleteRepairsCorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "s.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"token":"abc","user":`), 0o600))

	s := NewStore(path, nil)
	require.NoError(t, s.Delete(context.Background(), "token", "user"))

	_, ok, err := s.Get(context.Background(), "token")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestStore_SetMany(t *testing.T) {
	path := filepath.Join(t.TempDir(), "s.json")
	ctx := context.Background()

	s := NewStore(path, nil)
	require.NoError(t, s.Set(ctx, "keep", "x"))
	require.NoError(t, s.SetMany(ctx, map[string]string{"token": "abc", "user": `{"id":"7"}`}))

	reread := NewStore(path, nil)
	for k, want := range map[string]string{"keep": "x", "token": "abc", "user": `{"id":"7"}`} {
		v, ok, err := reread.Get(ctx, k)
		require.NoError(t, err)
		assert.True(t, ok, k)
		assert.Equal(t, want, v, k)
	}
}

func TestStore_EmptyFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "s.json")
	require.NoError(t, os.WriteFile(path, nil, 0o600))

	_, ok, err := NewStore(path, nil).Get(context.Background(), "token")
	require.NoError(t, err)
	assert.False(t, ok)
}
