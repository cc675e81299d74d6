package storage

import (
	"context"
	"maps"
	"net/url"
	"sync"
	"time"
)

// Memory keeps objects in a map. URLs point at a fake "memory://" scheme.
type Memory struct {
	objects map[string]Upload
	mu      sync.RWMutex
}

func NewMemory() *Memory {
	return &Memory{objects: make(map[string]Upload)}
}

func (m *Memory) Put(_ context.Context, key string, u *Upload) error {
	m.mu.Lock()
	m.objects[key] = *u
	m.mu.Unlock()
	return nil
}

func (m *Memory) URL(_ context.Context, key string, _ time.Duration) (string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if _, ok := m.objects[key]; !ok {
		return "", ErrNotFound
	}
	return (&url.URL{Scheme: "memory", Path: "/" + key}).String(), nil
}

func (m *Memory) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	delete(m.objects, key)
	m.mu.Unlock()
	return nil
}

// Objects returns a snapshot of stored objects.
func (m *Memory) Objects() map[string]Upload {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return maps.Clone(m.objects)
}

var _ Storage = (*Memory)(nil)
