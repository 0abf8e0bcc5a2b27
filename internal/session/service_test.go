package session

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/gocartshop/gocart-api/internal/events"
	pkgerrors "github.com/gocartshop/gocart-api/pkg/errors"
	"github.com/gocartshop/gocart-api/pkg/kv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestService(t *testing.T) (*Service, kv.Store, *events.Bus) {
	t.Helper()
	store := kv.NewMemory()
	bus := events.NewBus(nil)
	svc, err := NewService(store, bus, nil)
	require.NoError(t, err)
	require.NoError(t, svc.Load(context.Background()))
	return svc, store, bus
}

func TestRegisterRejectsDuplicatesCaseInsensitively(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	require.NoError(t, svc.Register(ctx, "Alice", "a@x.com", "secret1"))

	err := svc.Register(ctx, "alice", "other@x.com", "pw")
	require.Error(t, err)
	assert.Equal(t, pkgerrors.CodeConflict, pkgerrors.As(err).Code())

	err = svc.Register(ctx, "bob", "A@X.COM", "pw")
	require.Error(t, err)
	assert.Equal(t, pkgerrors.CodeConflict, pkgerrors.As(err).Code())

	assert.Equal(t, 1, svc.RegisteredCount())
}

func TestRegisterGrowsRegistryByOne(t *testing.T) {
	svc, store, _ := newTestService(t)
	ctx := context.Background()

	require.NoError(t, svc.Register(ctx, "alice", "a@x.com", "pw"))
	require.NoError(t, svc.Register(ctx, "bob", "b@x.com", "pw"))
	assert.Equal(t, 2, svc.RegisteredCount())

	raw, err := store.Get(ctx, kv.KeyUsers)
	require.NoError(t, err)
	var persisted []User
	require.NoError(t, json.Unmarshal(raw, &persisted))
	assert.Len(t, persisted, 2)
	assert.Equal(t, "alice", persisted[0].Username)
}

func TestLoginMatchesUsernameCaseInsensitivelyPasswordExactly(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()
	require.NoError(t, svc.Register(ctx, "Alice", "a@x.com", "secret1"))

	user, err := svc.Login(ctx, "alice", "secret1")
	require.NoError(t, err)
	assert.Equal(t, "Alice", user.Username)
	assert.True(t, svc.IsLoggedIn())

	_, err = svc.Login(ctx, "alice", "SECRET1")
	require.Error(t, err)
	assert.Equal(t, pkgerrors.CodeUnauthorized, pkgerrors.As(err).Code())

	_, err = svc.Login(ctx, "alice", "wrong")
	require.Error(t, err)
	assert.Equal(t, pkgerrors.CodeUnauthorized, pkgerrors.As(err).Code())
}

func TestFailedLoginLeavesSessionUnchanged(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()
	require.NoError(t, svc.Register(ctx, "alice", "a@x.com", "pw"))
	_, err := svc.Login(ctx, "alice", "pw")
	require.NoError(t, err)

	_, err = svc.Login(ctx, "alice", "nope")
	require.Error(t, err)

	user, ok := svc.CurrentUser()
	require.True(t, ok)
	assert.Equal(t, "alice", user.Username)
}

func TestLoginPersistsCurrentUser(t *testing.T) {
	svc, store, _ := newTestService(t)
	ctx := context.Background()
	require.NoError(t, svc.Register(ctx, "alice", "a@x.com", "pw"))
	_, err := svc.Login(ctx, "alice", "pw")
	require.NoError(t, err)

	raw, err := store.Get(ctx, kv.KeyCurrentUser)
	require.NoError(t, err)
	var persisted User
	require.NoError(t, json.Unmarshal(raw, &persisted))
	assert.Equal(t, "alice", persisted.Username)
}

func TestLogoutClearsSessionAndPublishesEvent(t *testing.T) {
	svc, store, bus := newTestService(t)
	ctx := context.Background()
	require.NoError(t, svc.Register(ctx, "alice", "a@x.com", "pw"))
	_, err := svc.Login(ctx, "alice", "pw")
	require.NoError(t, err)

	var published *events.UserLoggedOut
	bus.Subscribe(events.TopicUserLoggedOut, func(_ context.Context, payload any) {
		if p, ok := payload.(events.UserLoggedOut); ok {
			published = &p
		}
	})

	require.NoError(t, svc.Logout(ctx))

	assert.False(t, svc.IsLoggedIn())
	_, ok := svc.CurrentUser()
	assert.False(t, ok)

	_, err = store.Get(ctx, kv.KeyCurrentUser)
	assert.ErrorIs(t, err, kv.ErrNotFound)

	require.NotNil(t, published)
	assert.Equal(t, "alice", published.Username)
}

func TestLoadRehydratesWithoutReverification(t *testing.T) {
	store := kv.NewMemory()
	ctx := context.Background()

	users, err := json.Marshal([]User{{Username: "alice", Email: "a@x.com", Password: "pw"}})
	require.NoError(t, err)
	require.NoError(t, store.Set(ctx, kv.KeyUsers, users))

	current, err := json.Marshal(User{Username: "alice", Email: "a@x.com", Password: "stale"})
	require.NoError(t, err)
	require.NoError(t, store.Set(ctx, kv.KeyCurrentUser, current))

	svc, err := NewService(store, events.NewBus(nil), nil)
	require.NoError(t, err)
	require.NoError(t, svc.Load(ctx))

	// The persisted identity is trusted as-is, even though the password
	// no longer matches the registry entry.
	assert.True(t, svc.IsLoggedIn())
	user, ok := svc.CurrentUser()
	require.True(t, ok)
	assert.Equal(t, "alice", user.Username)
	assert.Equal(t, 1, svc.RegisteredCount())
}

func TestLoadWithEmptyStoreStartsLoggedOut(t *testing.T) {
	svc, _, _ := newTestService(t)
	assert.False(t, svc.IsLoggedIn())
	assert.Equal(t, 0, svc.RegisteredCount())
}

func TestUpdateMergesProfileIntoRegistry(t *testing.T) {
	svc, store, _ := newTestService(t)
	ctx := context.Background()
	require.NoError(t, svc.Register(ctx, "alice", "a@x.com", "pw"))
	_, err := svc.Login(ctx, "alice", "pw")
	require.NoError(t, err)

	email := "new@x.com"
	user, err := svc.Update(ctx, UpdateInput{Email: &email})
	require.NoError(t, err)
	assert.Equal(t, "new@x.com", user.Email)

	raw, err := store.Get(ctx, kv.KeyUsers)
	require.NoError(t, err)
	var persisted []User
	require.NoError(t, json.Unmarshal(raw, &persisted))
	require.Len(t, persisted, 1)
	assert.Equal(t, "new@x.com", persisted[0].Email)
}

func TestUpdateWithoutSessionIsRejected(t *testing.T) {
	svc, _, _ := newTestService(t)
	email := "x@x.com"
	_, err := svc.Update(context.Background(), UpdateInput{Email: &email})
	require.Error(t, err)
	assert.Equal(t, pkgerrors.CodeUnauthorized, pkgerrors.As(err).Code())
}
