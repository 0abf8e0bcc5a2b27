package kv

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gocartshop/gocart-api/pkg/config"
)

// storeContract exercises the behavior every backend must share.
func storeContract(t *testing.T, store Store) {
	t.Helper()
	ctx := context.Background()

	_, err := store.Get(ctx, "missing")
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, store.Set(ctx, KeyUsers, []byte(`[{"username":"alice"}]`)))
	got, err := store.Get(ctx, KeyUsers)
	require.NoError(t, err)
	assert.Equal(t, []byte(`[{"username":"alice"}]`), got)

	// overwrite replaces, never appends
	require.NoError(t, store.Set(ctx, KeyUsers, []byte(`[]`)))
	got, err = store.Get(ctx, KeyUsers)
	require.NoError(t, err)
	assert.Equal(t, []byte(`[]`), got)

	require.NoError(t, store.Delete(ctx, KeyUsers))
	_, err = store.Get(ctx, KeyUsers)
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, store.Delete(ctx, KeyUsers))
}

func TestMemoryStoreContract(t *testing.T) {
	store := NewMemory()
	defer store.Close()
	storeContract(t, store)
}

func TestMemoryStoreCopiesValues(t *testing.T) {
	store := NewMemory()
	ctx := context.Background()

	value := []byte("original")
	require.NoError(t, store.Set(ctx, "k", value))
	value[0] = 'X'

	got, err := store.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, []byte("original"), got)
}

func TestSQLiteStoreContract(t *testing.T) {
	cfg := config.StorageConfig{SQLitePath: filepath.Join(t.TempDir(), "test.db")}
	store, err := NewSQLite(context.Background(), cfg, nil)
	require.NoError(t, err)
	defer store.Close()

	storeContract(t, store)
	assert.NoError(t, store.Ping(context.Background()))
}

func TestSQLiteStorePersistsAcrossReopen(t *testing.T) {
	ctx := context.Background()
	cfg := config.StorageConfig{SQLitePath: filepath.Join(t.TempDir(), "test.db")}

	store, err := NewSQLite(ctx, cfg, nil)
	require.NoError(t, err)
	require.NoError(t, store.Set(ctx, KeyCurrentUser, []byte(`{"username":"alice"}`)))
	require.NoError(t, store.Close())

	reopened, err := NewSQLite(ctx, cfg, nil)
	require.NoError(t, err)
	defer reopened.Close()

	got, err := reopened.Get(ctx, KeyCurrentUser)
	require.NoError(t, err)
	assert.Equal(t, []byte(`{"username":"alice"}`), got)
}

func TestSQLiteRequiresPath(t *testing.T) {
	_, err := NewSQLite(context.Background(), config.StorageConfig{}, nil)
	require.Error(t, err)
}

func TestRedisStoreContract(t *testing.T) {
	srv := miniredis.RunT(t)

	store, err := NewRedis(context.Background(), config.RedisConfig{Address: srv.Addr()}, nil)
	require.NoError(t, err)
	defer store.Close()

	storeContract(t, store)
	assert.NoError(t, store.Ping(context.Background()))
}

func TestRedisStoreNamespacesKeys(t *testing.T) {
	srv := miniredis.RunT(t)
	ctx := context.Background()

	store, err := NewRedis(ctx, config.RedisConfig{Address: srv.Addr()}, nil)
	require.NoError(t, err)
	defer store.Close()

	require.NoError(t, store.Set(ctx, KeyUsers, []byte("x")))
	assert.True(t, srv.Exists("gocart:storage:users"))
}

func TestRedisRequiresAddressOrURL(t *testing.T) {
	_, err := NewRedis(context.Background(), config.RedisConfig{}, nil)
	require.Error(t, err)
}
