package redistore_test

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/sessionguard/redistore"
	"github.com/dmitrymomot/sessionguard/session"
)

func newTestStore(t *testing.T) (*redistore.Store, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	return redistore.New(client), mr
}

func storedSession(principalID uuid.UUID, id string, createdAt time.Time) *session.Session {
	return &session.Session{
		ID:              id,
		PrincipalID:     principalID,
		FingerprintHash: "fp",
		CreatedAt:       createdAt,
		LastActivityAt:  createdAt,
		LastRotatedAt:   createdAt,
		Active:          true,
	}
}

func TestStore_CreateGet(t *testing.T) {
	t.Parallel()

	store, _ := newTestStore(t)
	ctx := context.Background()
	principalID := uuid.New()

	s := storedSession(principalID, "id-1", time.Now().UTC().Truncate(time.Millisecond))
	s.SourceAddress = "203.0.113.10"
	s.UserAgent = "Mozilla/5.0"
	require.NoError(t, store.Create(ctx, s))

	got, err := store.Get(ctx, "id-1")
	require.NoError(t, err)
	assert.Equal(t, s.ID, got.ID)
	assert.Equal(t, principalID, got.PrincipalID)
	assert.Equal(t, "203.0.113.10", got.SourceAddress)
	assert.True(t, got.CreatedAt.Equal(s.CreatedAt))
	assert.True(t, got.Active)
}

func TestStore_Create_Invalid(t *testing.T) {
	t.Parallel()

	store, _ := newTestStore(t)
	ctx := context.Background()

	assert.ErrorIs(t, store.Create(ctx, nil), session.ErrSessionInvalid)
	assert.ErrorIs(t, store.Create(ctx, &session.Session{}), session.ErrSessionInvalid)
}

func TestStore_Get_NotFound(t *testing.T) {
	t.Parallel()

	store, _ := newTestStore(t)

	_, err := store.Get(context.Background(), "missing")
	assert.ErrorIs(t, err, session.ErrSessionNotFound)
}

func TestStore_ListActiveByPrincipal(t *testing.T) {
	t.Parallel()

	store, _ := newTestStore(t)
	ctx := context.Background()
	principalID := uuid.New()
	now := time.Now().UTC()

	// Inserted newest first; the index must return oldest first
	require.NoError(t, store.Create(ctx, storedSession(principalID, "newest", now)))
	require.NoError(t, store.Create(ctx, storedSession(principalID, "middle", now.Add(-time.Minute))))
	require.NoError(t, store.Create(ctx, storedSession(principalID, "oldest", now.Add(-2*time.Minute))))
	require.NoError(t, store.Create(ctx, storedSession(uuid.New(), "other", now)))

	inactive := storedSession(principalID, "inactive", now.Add(-3*time.Minute))
	require.NoError(t, store.Create(ctx, inactive))
	require.NoError(t, store.Deactivate(ctx, "inactive"))

	got, err := store.ListActiveByPrincipal(ctx, principalID)
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, "oldest", got[0].ID)
	assert.Equal(t, "middle", got[1].ID)
	assert.Equal(t, "newest", got[2].ID)
}

func TestStore_Touch(t *testing.T) {
	t.Parallel()

	store, _ := newTestStore(t)
	ctx := context.Background()
	created := time.Now().UTC().Add(-time.Hour)

	require.NoError(t, store.Create(ctx, storedSession(uuid.New(), "id-1", created)))

	at := time.Now().UTC().Truncate(time.Millisecond)
	require.NoError(t, store.Touch(ctx, "id-1", at))

	got, err := store.Get(ctx, "id-1")
	require.NoError(t, err)
	assert.True(t, got.LastActivityAt.Equal(at))

	assert.ErrorIs(t, store.Touch(ctx, "missing", at), session.ErrSessionNotFound)

	// Inactive sessions cannot be touched back to life
	require.NoError(t, store.Deactivate(ctx, "id-1"))
	assert.ErrorIs(t, store.Touch(ctx, "id-1", at), session.ErrSessionNotFound)
}

func TestStore_Rotate(t *testing.T) {
	t.Parallel()

	store, _ := newTestStore(t)
	ctx := context.Background()
	principalID := uuid.New()
	created := time.Now().UTC().Add(-time.Hour)

	require.NoError(t, store.Create(ctx, storedSession(principalID, "old-id", created)))

	at := time.Now().UTC().Truncate(time.Millisecond)
	require.NoError(t, store.Rotate(ctx, "old-id", "new-id", at))

	// The record moved: timestamps and principal survive, old key is gone
	_, err := store.Get(ctx, "old-id")
	assert.ErrorIs(t, err, session.ErrSessionNotFound)

	got, err := store.Get(ctx, "new-id")
	require.NoError(t, err)
	assert.Equal(t, principalID, got.PrincipalID)
	assert.True(t, got.CreatedAt.Equal(created))
	assert.True(t, got.LastRotatedAt.Equal(at))
	assert.True(t, got.Active)

	// The index follows the rename
	active, err := store.ListActiveByPrincipal(ctx, principalID)
	require.NoError(t, err)
	require.Len(t, active, 1)
	assert.Equal(t, "new-id", active[0].ID)
}

func TestStore_Rotate_Conflict(t *testing.T) {
	t.Parallel()

	store, _ := newTestStore(t)
	ctx := context.Background()
	created := time.Now().UTC().Add(-time.Hour)

	require.NoError(t, store.Create(ctx, storedSession(uuid.New(), "contested", created)))

	at := time.Now().UTC()
	require.NoError(t, store.Rotate(ctx, "contested", "winner", at))

	// The retired id can never be rotated again
	err := store.Rotate(ctx, "contested", "loser", at)
	assert.ErrorIs(t, err, session.ErrRotationConflict)

	_, err = store.Get(ctx, "loser")
	assert.ErrorIs(t, err, session.ErrSessionNotFound)
}

func TestStore_Rotate_InactiveSession(t *testing.T) {
	t.Parallel()

	store, _ := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.Create(ctx, storedSession(uuid.New(), "id-1", time.Now().UTC())))
	require.NoError(t, store.Deactivate(ctx, "id-1"))

	err := store.Rotate(ctx, "id-1", "id-2", time.Now().UTC())
	assert.ErrorIs(t, err, session.ErrRotationConflict)
}

func TestStore_Deactivate(t *testing.T) {
	t.Parallel()

	store, _ := newTestStore(t)
	ctx := context.Background()
	principalID := uuid.New()

	require.NoError(t, store.Create(ctx, storedSession(principalID, "id-1", time.Now().UTC())))
	require.NoError(t, store.Deactivate(ctx, "id-1"))

	got, err := store.Get(ctx, "id-1")
	require.NoError(t, err)
	assert.False(t, got.Active)

	active, err := store.ListActiveByPrincipal(ctx, principalID)
	require.NoError(t, err)
	assert.Empty(t, active)

	assert.ErrorIs(t, store.Deactivate(ctx, "missing"), session.ErrSessionNotFound)
}

func TestStore_DeactivateAllByPrincipal(t *testing.T) {
	t.Parallel()

	store, _ := newTestStore(t)
	ctx := context.Background()
	principalID := uuid.New()
	now := time.Now().UTC()

	require.NoError(t, store.Create(ctx, storedSession(principalID, "a", now.Add(-2*time.Minute))))
	require.NoError(t, store.Create(ctx, storedSession(principalID, "b", now.Add(-time.Minute))))
	other := storedSession(uuid.New(), "c", now)
	require.NoError(t, store.Create(ctx, other))

	ids, err := store.DeactivateAllByPrincipal(ctx, principalID)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"a", "b"}, ids)

	active, err := store.ListActiveByPrincipal(ctx, principalID)
	require.NoError(t, err)
	assert.Empty(t, active)

	got, err := store.Get(ctx, "c")
	require.NoError(t, err)
	assert.True(t, got.Active)
}

func TestStore_DeactivateExpired(t *testing.T) {
	t.Parallel()

	store, _ := newTestStore(t)
	ctx := context.Background()
	now := time.Now().UTC()

	live := storedSession(uuid.New(), "live", now.Add(-10*time.Minute))
	live.LastActivityAt = now.Add(-time.Minute)
	require.NoError(t, store.Create(ctx, live))

	overLifetime := storedSession(uuid.New(), "over-lifetime", now.Add(-2*time.Hour))
	overLifetime.LastActivityAt = now.Add(-time.Minute)
	require.NoError(t, store.Create(ctx, overLifetime))

	idle := storedSession(uuid.New(), "idle", now.Add(-20*time.Minute))
	idle.LastActivityAt = now.Add(-45 * time.Minute)
	require.NoError(t, store.Create(ctx, idle))

	n, err := store.DeactivateExpired(ctx, now, time.Hour, 30*time.Minute)
	require.NoError(t, err)
	assert.EqualValues(t, 2, n)

	got, err := store.Get(ctx, "live")
	require.NoError(t, err)
	assert.True(t, got.Active)

	for _, id := range []string{"over-lifetime", "idle"} {
		got, err := store.Get(ctx, id)
		require.NoError(t, err)
		assert.False(t, got.Active, id)
	}

	// Second sweep finds nothing left to do
	n, err = store.DeactivateExpired(ctx, now, time.Hour, 30*time.Minute)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestStore_PurgeInactive(t *testing.T) {
	t.Parallel()

	store, _ := newTestStore(t)
	ctx := context.Background()
	now := time.Now().UTC()

	recent := storedSession(uuid.New(), "recent", now.Add(-time.Hour))
	recent.Active = false
	require.NoError(t, store.Create(ctx, recent))

	ancient := storedSession(uuid.New(), "ancient", now.Add(-72*time.Hour))
	ancient.LastActivityAt = now.Add(-48 * time.Hour)
	ancient.Active = false
	require.NoError(t, store.Create(ctx, ancient))

	activeOld := storedSession(uuid.New(), "active-old", now.Add(-72*time.Hour))
	activeOld.LastActivityAt = now.Add(-48 * time.Hour)
	require.NoError(t, store.Create(ctx, activeOld))

	n, err := store.PurgeInactive(ctx, now.Add(-24*time.Hour))
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)

	_, err = store.Get(ctx, "ancient")
	assert.ErrorIs(t, err, session.ErrSessionNotFound)

	// Recent inactive and old-but-active records both survive
	_, err = store.Get(ctx, "recent")
	require.NoError(t, err)
	_, err = store.Get(ctx, "active-old")
	require.NoError(t, err)
}

func TestStore_SelfHealingIndex(t *testing.T) {
	t.Parallel()

	store, mr := newTestStore(t)
	ctx := context.Background()
	principalID := uuid.New()
	now := time.Now().UTC()

	require.NoError(t, store.Create(ctx, storedSession(principalID, "ghost", now.Add(-time.Minute))))
	require.NoError(t, store.Create(ctx, storedSession(principalID, "kept", now)))

	// Losing a record out from under the index (failed rotation, manual
	// cleanup) must not poison listings; the orphaned entry is dropped
	mr.Del("sg:session:ghost")

	active, err := store.ListActiveByPrincipal(ctx, principalID)
	require.NoError(t, err)
	require.Len(t, active, 1)
	assert.Equal(t, "kept", active[0].ID)

	// And the repair sticks
	require.False(t, mr.Exists("sg:session:ghost"))
	members, err := mr.ZMembers("sg:principal:" + principalID.String())
	require.NoError(t, err)
	assert.Equal(t, []string{"kept"}, members)
}
