package session

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSession_New(t *testing.T) {
	t.Parallel()

	sess := New("id-1", "token-1", time.Now().Add(time.Hour))

	assert.Equal(t, "id-1", sess.ID)
	assert.Equal(t, "token-1", sess.Token)
	assert.True(t, sess.IsNew())
	assert.True(t, sess.IsDirty())
	assert.NotNil(t, sess.Values)
	assert.False(t, sess.IsAuthenticated())
}

func TestSession_SetUserID(t *testing.T) {
	t.Parallel()

	sess := New("id", "token", time.Now().Add(time.Hour))
	sess.ClearDirty()

	sess.SetUserID("42")
	assert.True(t, sess.IsAuthenticated())
	assert.True(t, sess.IsDirty())

	sess.ClearDirty()
	sess.SetUserID("42")
	assert.False(t, sess.IsDirty(), "same id must not dirty the session")

	sess.SetUserID("")
	assert.False(t, sess.IsAuthenticated())
	assert.True(t, sess.IsDirty())
}

func TestSession_Values(t *testing.T) {
	t.Parallel()

	sess := New("id", "token", time.Now().Add(time.Hour))
	sess.ClearDirty()

	sess.SetValue("key", "value")
	require.True(t, sess.IsDirty())

	val, ok := sess.GetValue("key")
	require.True(t, ok)
	assert.Equal(t, "value", val)

	_, ok = sess.GetValue("missing")
	assert.False(t, ok)

	sess.ClearDirty()
	sess.DeleteValue("missing")
	assert.False(t, sess.IsDirty(), "deleting a missing key keeps the session clean")

	sess.DeleteValue("key")
	assert.True(t, sess.IsDirty())
	_, ok = sess.GetValue("key")
	assert.False(t, ok)
}

func TestSession_IsExpired(t *testing.T) {
	t.Parallel()

	sess := New("id", "token", time.Now().Add(time.Hour))
	assert.False(t, sess.IsExpired())

	sess.ExpiresAt = time.Now().Add(-time.Minute)
	assert.True(t, sess.IsExpired())
}

func TestSession_Clone(t *testing.T) {
	t.Parallel()

	sess := New("id", "token", time.Now().Add(time.Hour))
	sess.SetValue("a", 1)

	cp := sess.Clone()
	cp.SetValue("a", 2)
	cp.SetValue("b", 3)

	v, _ := sess.GetValue("a")
	assert.Equal(t, 1, v)
	_, ok := sess.GetValue("b")
	assert.False(t, ok)
	assert.Equal(t, sess.IsNew(), cp.IsNew())
}

func TestSession_ConcurrentMutations(t *testing.T) {
	t.Parallel()

	sess := New("id", "token", time.Now().Add(time.Hour))

	var wg sync.WaitGroup
	for i := range 50 {
		wg.Add(2)
		go func() {
			defer wg.Done()
			sess.SetValue("counter", i)
		}()
		go func() {
			defer wg.Done()
			_, _ = sess.GetValue("counter")
			_ = sess.Clone()
		}()
	}
	wg.Wait()

	_, ok := sess.GetValue("counter")
	assert.True(t, ok)
}

func TestValue(t *testing.T) {
	t.Parallel()

	type profile struct {
		Name string `json:"name"`
		ID   int64  `json:"id"`
	}

	sess := New("id", "token", time.Now().Add(time.Hour))
	sess.SetValue("string", "hello")
	sess.SetValue("int", 42)
	sess.SetValue("struct", profile{ID: 7, Name: "alice"})
	// JSON-backed stores return structs as generic maps.
	sess.SetValue("decoded", map[string]any{"id": float64(9), "name": "bob"})

	t.Run("direct types", func(t *testing.T) {
		t.Parallel()

		s, err := Value[string](sess, "string")
		require.NoError(t, err)
		assert.Equal(t, "hello", s)

		n, err := Value[int](sess, "int")
		require.NoError(t, err)
		assert.Equal(t, 42, n)

		p, err := Value[profile](sess, "struct")
		require.NoError(t, err)
		assert.Equal(t, "alice", p.Name)
	})

	t.Run("json round trip", func(t *testing.T) {
		t.Parallel()

		p, err := Value[profile](sess, "decoded")
		require.NoError(t, err)
		assert.Equal(t, profile{ID: 9, Name: "bob"}, p)
	})

	t.Run("mismatch", func(t *testing.T) {
		t.Parallel()

		_, err := Value[int](sess, "string")
		require.Error(t, err)
		assert.True(t, errors.Is(err, ErrTypeMismatch))
	})

	t.Run("missing key and nil session", func(t *testing.T) {
		t.Parallel()

		_, err := Value[string](sess, "missing")
		assert.ErrorIs(t, err, ErrNotFound)

		_, err = Value[string](nil, "key")
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("value or", func(t *testing.T) {
		t.Parallel()

		assert.Equal(t, "hello", ValueOr(sess, "string", "fallback"))
		assert.Equal(t, "fallback", ValueOr(sess, "missing", "fallback"))
		assert.Equal(t, 5, ValueOr(sess, "string", 5))
	})
}
