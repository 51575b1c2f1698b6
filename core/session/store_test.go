package session_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/masomo-portal/core/session"
	"github.com/trezcool/masomo-portal/storage/sessionstore"
)

var jane = session.Identity{
	ID:        "1",
	Email:     "admin@school.com",
	FirstName: "Jane",
	LastName:  "Doe",
	Role:      session.RoleAdmin,
}

type failingPersister struct {
	session.Persister
	saveErr, removeErr error
}

func (p failingPersister) Save(ctx context.Context, rec session.Record) error {
	if p.saveErr != nil {
		return p.saveErr
	}
	return p.Persister.Save(ctx, rec)
}

func (p failingPersister) Remove(ctx context.Context) error {
	if p.removeErr != nil {
		return p.removeErr
	}
	return p.Persister.Remove(ctx)
}

func TestStore_states(t *testing.T) {
	ctx := context.Background()
	store := session.NewStore(sessionstore.NewMemoryPersister(), nil)

	assert.Equal(t, session.StateLoading, store.State())
	assert.False(t, store.IsAuthenticated())

	require.NoError(t, store.Restore(ctx))
	assert.Equal(t, session.StateUnauthenticated, store.State())
	assert.False(t, store.IsAuthenticated())

	require.NoError(t, store.Set(ctx, jane, "t1"))
	assert.Equal(t, session.StateAuthenticated, store.State())
	assert.True(t, store.IsAuthenticated())
	assert.Equal(t, "t1", store.Token())

	require.NoError(t, store.Clear(ctx))
	assert.Equal(t, session.StateUnauthenticated, store.State())
	assert.False(t, store.IsAuthenticated())
	_, ok := store.Identity()
	assert.False(t, ok)
	assert.Empty(t, store.Token())
}

func TestStore_Set_incomplete(t *testing.T) {
	ctx := context.Background()
	tests := []struct {
		name  string
		ident session.Identity
		token string
	}{
		{name: "no token", ident: jane},
		{name: "no identity id", ident: session.Identity{Email: "x@y.z"}, token: "t"},
		{name: "nothing"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := session.NewStore(sessionstore.NewMemoryPersister(), nil)
			require.NoError(t, store.Restore(ctx))

			err := store.Set(ctx, tt.ident, tt.token)
			assert.Equal(t, session.ErrIncompleteSession, err)
			assert.False(t, store.IsAuthenticated())
			assert.Equal(t, session.StateUnauthenticated, store.State())
		})
	}
}

func TestStore_Set_persistFailureLeavesStoreUntouched(t *testing.T) {
	ctx := context.Background()
	persister := failingPersister{Persister: sessionstore.NewMemoryPersister(), saveErr: errors.New("disk full")}
	store := session.NewStore(persister, nil)
	require.NoError(t, store.Restore(ctx))

	assert.Error(t, store.Set(ctx, jane, "t1"))
	assert.False(t, store.IsAuthenticated())

	_, err := persister.Load(ctx)
	assert.Equal(t, session.ErrNotPersisted, err)
}

func TestStore_roundTrip(t *testing.T) {
	ctx := context.Background()
	persister := sessionstore.NewMemoryPersister()

	first := session.NewStore(persister, nil)
	require.NoError(t, first.Restore(ctx))
	require.NoError(t, first.Set(ctx, jane, "t1"))

	// "restart"
	second := session.NewStore(persister, nil)
	assert.Equal(t, session.StateLoading, second.State())
	require.NoError(t, second.Restore(ctx))

	ident, ok := second.Identity()
	require.True(t, ok)
	assert.Equal(t, jane, ident)
	assert.Equal(t, "t1", second.Token())
	assert.True(t, second.IsAuthenticated())
}

func TestStore_Clear_erasesPersisted(t *testing.T) {
	ctx := context.Background()
	persister := sessionstore.NewMemoryPersister()

	store := session.NewStore(persister, nil)
	require.NoError(t, store.Restore(ctx))
	require.NoError(t, store.Set(ctx, jane, "t1"))
	require.NoError(t, store.Clear(ctx))
	assert.False(t, store.IsAuthenticated())

	restarted := session.NewStore(persister, nil)
	require.NoError(t, restarted.Restore(ctx))
	assert.Equal(t, session.StateUnauthenticated, restarted.State())
	assert.False(t, restarted.IsAuthenticated())
}

func TestStore_Clear_removalFailureStillClearsMemory(t *testing.T) {
	ctx := context.Background()
	persister := failingPersister{Persister: sessionstore.NewMemoryPersister()}
	store := session.NewStore(persister, nil)
	require.NoError(t, store.Restore(ctx))
	require.NoError(t, store.Set(ctx, jane, "t1"))

	persister.removeErr = errors.New("gone fishing")
	store = session.NewStore(persister, nil)
	require.NoError(t, store.Restore(ctx))
	require.True(t, store.IsAuthenticated())

	assert.Error(t, store.Clear(ctx))
	assert.False(t, store.IsAuthenticated())
}

func TestStore_Restore_corruptOrPartial(t *testing.T) {
	ctx := context.Background()
	tests := []struct {
		name string
		rec  session.Record
	}{
		{name: "identity not json", rec: session.Record{Token: "t1", Identity: "{not json"}},
		{name: "identity without id", rec: session.Record{Token: "t1", Identity: `{"email":"a@b.c"}`}},
		{name: "identity is null", rec: session.Record{Token: "t1", Identity: "null"}},
		{name: "token only", rec: session.Record{Token: "t1"}},
		{name: "identity only", rec: session.Record{Identity: `{"id":"1","role":"admin"}`}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			persister := sessionstore.NewMemoryPersister()
			require.NoError(t, persister.Save(ctx, tt.rec))

			store := session.NewStore(persister, nil)
			require.NoError(t, store.Restore(ctx))
			assert.Equal(t, session.StateUnauthenticated, store.State())
			assert.False(t, store.IsAuthenticated())

			// corrupt pairs are dropped
			_, err := persister.Load(ctx)
			assert.Equal(t, session.ErrNotPersisted, err)
		})
	}
}

func TestStore_Restore_normalizesRole(t *testing.T) {
	ctx := context.Background()
	persister := sessionstore.NewMemoryPersister()
	require.NoError(t, persister.Save(ctx, session.Record{Token: "t", Identity: `{"id":"9","role":" Teacher "}`}))

	store := session.NewStore(persister, nil)
	require.NoError(t, store.Restore(ctx))
	ident, ok := store.Identity()
	require.True(t, ok)
	assert.Equal(t, session.RoleLecturer, ident.Role)
}

func TestStore_Snapshot_isACopy(t *testing.T) {
	ctx := context.Background()
	store := session.NewStore(sessionstore.NewMemoryPersister(), nil)
	require.NoError(t, store.Restore(ctx))
	require.NoError(t, store.Set(ctx, jane, "t1"))

	snap := store.Snapshot()
	snap.Identity.FirstName = "Mallory"

	ident, _ := store.Identity()
	assert.Equal(t, "Jane", ident.FirstName)
}
