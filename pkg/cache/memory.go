package cache

import (
	"context"
	"sync"
	"time"
)

type entry[V any] struct {
	expiresAt time.Time
	value     V
}

// Memory is a mutex-guarded map with per-entry expiry. Expired entries are
// dropped on read; when full, Set evicts whatever expires first.
type Memory[V any] struct {
	items      map[string]entry[V]
	now        func() time.Time
	defaultTTL time.Duration
	maxEntries int
	mu         sync.Mutex
}

// NewMemory creates an in-process cache. maxEntries <= 0 means unbounded.
func NewMemory[V any](defaultTTL time.Duration, maxEntries int) *Memory[V] {
	return &Memory[V]{
		items:      make(map[string]entry[V]),
		now:        time.Now,
		defaultTTL: defaultTTL,
		maxEntries: maxEntries,
	}
}

func (m *Memory[V]) Get(_ context.Context, key string) (V, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	e, ok := m.items[key]
	if !ok {
		var zero V
		return zero, ErrNotFound
	}
	if !e.expiresAt.After(m.now()) {
		delete(m.items, key)
		var zero V
		return zero, ErrNotFound
	}
	return e.value, nil
}

func (m *Memory[V]) Set(_ context.Context, key string, value V, ttl time.Duration) error {
	if ttl <= 0 {
		ttl = m.defaultTTL
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.items[key]; !exists && m.maxEntries > 0 && len(m.items) >= m.maxEntries {
		m.evictLocked()
	}
	m.items[key] = entry[V]{value: value, expiresAt: m.now().Add(ttl)}
	return nil
}

func (m *Memory[V]) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	delete(m.items, key)
	m.mu.Unlock()
	return nil
}

// Len reports the number of stored entries, expired ones included.
func (m *Memory[V]) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.items)
}

func (m *Memory[V]) evictLocked() {
	var (
		victim string
		first  time.Time
	)
	for k, e := range m.items {
		if victim == "" || e.expiresAt.Before(first) {
			victim, first = k, e.expiresAt
		}
	}
	delete(m.items, victim)
}

var _ Cache[any] = (*Memory[any])(nil)
