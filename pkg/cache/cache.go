package cache

import (
	"context"
	"sync/atomic"
	"time"

	"golang.org/x/sync/singleflight"
)

// Cache stores values of one type under string keys.
// A zero ttl in Set means the backend's default TTL.
type Cache[V any] interface {
	Get(ctx context.Context, key string) (V, error)
	Set(ctx context.Context, key string, value V, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}

// Loader wraps a Cache with read-through loading.
//
// Every Forget bumps a generation counter. A load that started before the
// bump returns its value to its callers but does not store it, so a lookup
// racing with an invalidation cannot put the old value back.
type Loader[V any] struct {
	cache Cache[V]
	group singleflight.Group
	gen   atomic.Uint64
	ttl   time.Duration
}

// NewLoader returns a read-through view of c that caches loaded values for ttl.
func NewLoader[V any](c Cache[V], ttl time.Duration) *Loader[V] {
	return &Loader[V]{cache: c, ttl: ttl}
}

// GetOrLoad returns the cached value for key or calls load on a miss.
// Concurrent misses share a single load call. Load errors are not cached,
// and a failing cache backend only costs the cache, never the read.
func (l *Loader[V]) GetOrLoad(ctx context.Context, key string, load func(context.Context) (V, error)) (V, error) {
	if v, err := l.cache.Get(ctx, key); err == nil {
		return v, nil
	}

	v, err, _ := l.group.Do(key, func() (any, error) {
		gen := l.gen.Load()
		val, err := load(ctx)
		if err != nil {
			return nil, err
		}
		if l.gen.Load() != gen {
			return val, nil
		}
		_ = l.cache.Set(ctx, key, val, l.ttl)
		if l.gen.Load() != gen {
			// Forget ran between the check and Set.
			_ = l.cache.Delete(ctx, key)
		}
		return val, nil
	})
	if err != nil {
		var zero V
		return zero, err
	}
	return v.(V), nil
}

// Forget drops key from the cache.
func (l *Loader[V]) Forget(ctx context.Context, key string) error {
	l.gen.Add(1)
	l.group.Forget(key)
	return l.cache.Delete(ctx, key)
}
