package cache

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemory(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	t.Run("set get delete", func(t *testing.T) {
		t.Parallel()

		m := NewMemory[int](time.Minute, 0)
		_, err := m.Get(ctx, "a")
		require.ErrorIs(t, err, ErrNotFound)

		require.NoError(t, m.Set(ctx, "a", 1, 0))
		v, err := m.Get(ctx, "a")
		require.NoError(t, err)
		assert.Equal(t, 1, v)

		require.NoError(t, m.Delete(ctx, "a"))
		_, err = m.Get(ctx, "a")
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("expiry", func(t *testing.T) {
		t.Parallel()

		now := time.Unix(1000, 0)
		m := NewMemory[string](time.Minute, 0)
		m.now = func() time.Time { return now }

		require.NoError(t, m.Set(ctx, "k", "v", time.Second))
		now = now.Add(2 * time.Second)

		_, err := m.Get(ctx, "k")
		require.ErrorIs(t, err, ErrNotFound)
		assert.Zero(t, m.Len())
	})

	t.Run("evicts the soonest to expire when full", func(t *testing.T) {
		t.Parallel()

		m := NewMemory[int](time.Minute, 2)
		require.NoError(t, m.Set(ctx, "short", 1, time.Second))
		require.NoError(t, m.Set(ctx, "long", 2, time.Hour))
		require.NoError(t, m.Set(ctx, "new", 3, time.Hour))

		assert.Equal(t, 2, m.Len())
		_, err := m.Get(ctx, "short")
		assert.ErrorIs(t, err, ErrNotFound)

		require.NoError(t, m.Set(ctx, "new", 4, time.Hour), "overwrite does not evict")
		_, err = m.Get(ctx, "long")
		assert.NoError(t, err)
	})
}

func TestLoader_GetOrLoad(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	t.Run("loads once then serves from cache", func(t *testing.T) {
		t.Parallel()

		l := NewLoader[string](NewMemory[string](time.Minute, 0), time.Minute)
		var calls atomic.Int32
		load := func(context.Context) (string, error) {
			calls.Add(1)
			return "alice", nil
		}

		for range 3 {
			v, err := l.GetOrLoad(ctx, "user:alice", load)
			require.NoError(t, err)
			assert.Equal(t, "alice", v)
		}
		assert.Equal(t, int32(1), calls.Load())

		require.NoError(t, l.Forget(ctx, "user:alice"))
		_, err := l.GetOrLoad(ctx, "user:alice", load)
		require.NoError(t, err)
		assert.Equal(t, int32(2), calls.Load())
	})

	t.Run("errors are not cached", func(t *testing.T) {
		t.Parallel()

		l := NewLoader[int](NewMemory[int](time.Minute, 0), time.Minute)
		boom := errors.New("boom")

		_, err := l.GetOrLoad(ctx, "k", func(context.Context) (int, error) { return 0, boom })
		require.ErrorIs(t, err, boom)

		v, err := l.GetOrLoad(ctx, "k", func(context.Context) (int, error) { return 7, nil })
		require.NoError(t, err)
		assert.Equal(t, 7, v)
	})

	t.Run("concurrent misses share one load", func(t *testing.T) {
		t.Parallel()

		l := NewLoader[int](NewMemory[int](time.Minute, 0), time.Minute)
		var calls atomic.Int32
		release := make(chan struct{})
		load := func(context.Context) (int, error) {
			calls.Add(1)
			<-release
			return 1, nil
		}

		var wg sync.WaitGroup
		for range 10 {
			wg.Add(1)
			go func() {
				defer wg.Done()
				_, _ = l.GetOrLoad(ctx, "hot", load)
			}()
		}
		time.Sleep(20 * time.Millisecond)
		close(release)
		wg.Wait()

		assert.Equal(t, int32(1), calls.Load())
	})

	t.Run("load started before forget is not stored", func(t *testing.T) {
		t.Parallel()

		l := NewLoader[string](NewMemory[string](time.Minute, 0), time.Minute)
		started := make(chan struct{})
		release := make(chan struct{})
		done := make(chan string)
		go func() {
			v, _ := l.GetOrLoad(ctx, "name:bob", func(context.Context) (string, error) {
				close(started)
				<-release
				return "stale", nil
			})
			done <- v
		}()

		<-started
		require.NoError(t, l.Forget(ctx, "name:bob"))
		close(release)
		assert.Equal(t, "stale", <-done, "callers of the in-flight load still get its value")

		var calls atomic.Int32
		v, err := l.GetOrLoad(ctx, "name:bob", func(context.Context) (string, error) {
			calls.Add(1)
			return "fresh", nil
		})
		require.NoError(t, err)
		assert.Equal(t, "fresh", v)
		assert.Equal(t, int32(1), calls.Load())
	})
}
