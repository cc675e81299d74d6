package session

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStore_Lifecycle(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := NewMemoryStore()

	sess := New("id-1", "tok-1", time.Now().Add(time.Hour))
	require.NoError(t, store.Create(ctx, sess))

	got, err := store.Get(ctx, "tok-1")
	require.NoError(t, err)
	assert.Equal(t, "id-1", got.ID)

	t.Run("returns copies", func(t *testing.T) {
		got.SetValue("user", "alice")

		again, err := store.Get(ctx, "tok-1")
		require.NoError(t, err)
		_, ok := again.GetValue("user")
		assert.False(t, ok, "unsaved changes must not leak into the store")
	})

	t.Run("update with rotated token", func(t *testing.T) {
		got.Token = "tok-2"
		require.NoError(t, store.Update(ctx, got))

		_, err := store.Get(ctx, "tok-1")
		assert.ErrorIs(t, err, ErrNotFound)

		rotated, err := store.Get(ctx, "tok-2")
		require.NoError(t, err)
		v, ok := rotated.GetValue("user")
		require.True(t, ok)
		assert.Equal(t, "alice", v)
	})

	t.Run("delete", func(t *testing.T) {
		require.NoError(t, store.Delete(ctx, "id-1"))
		_, err := store.Get(ctx, "tok-2")
		assert.ErrorIs(t, err, ErrNotFound)
		assert.NoError(t, store.Delete(ctx, "id-1"), "deleting twice is fine")
	})
}

func TestMemoryStore_Expired(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := NewMemoryStore()

	require.NoError(t, store.Create(ctx, New("old", "old-tok", time.Now().Add(-time.Minute))))
	require.NoError(t, store.Create(ctx, New("old2", "old2-tok", time.Now().Add(-time.Minute))))
	require.NoError(t, store.Create(ctx, New("fresh", "fresh-tok", time.Now().Add(time.Hour))))

	_, err := store.Get(ctx, "old-tok")
	assert.ErrorIs(t, err, ErrExpired)

	n, err := store.DeleteExpired(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n, "the first expired session was already evicted by Get")
	assert.Equal(t, 1, store.Len())
}

func TestMemoryStore_DeleteByUserID(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := NewMemoryStore()

	for _, tc := range []struct{ id, token, user string }{
		{"a", "ta", "1"},
		{"b", "tb", "1"},
		{"c", "tc", "2"},
	} {
		s := New(tc.id, tc.token, time.Now().Add(time.Hour))
		s.SetUserID(tc.user)
		require.NoError(t, store.Create(ctx, s))
	}

	require.NoError(t, store.DeleteByUserID(ctx, "1"))
	assert.Equal(t, 1, store.Len())

	_, err := store.Get(ctx, "tc")
	assert.NoError(t, err)
}
