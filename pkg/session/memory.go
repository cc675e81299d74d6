package session

import (
	"context"
	"sync"
	"time"
)

// MemoryStore keeps sessions in process memory.
// Suitable for development and single-instance deployments.
type MemoryStore struct {
	byID   map[string]*Session
	tokens map[string]string // token -> id
	mu     sync.Mutex
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		byID:   make(map[string]*Session),
		tokens: make(map[string]string),
	}
}

// Create stores a copy of s.
func (m *MemoryStore) Create(_ context.Context, s *Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.byID[s.ID] = s.Clone()
	m.tokens[s.Token] = s.ID
	return nil
}

// Get returns a copy of the session for token.
func (m *MemoryStore) Get(_ context.Context, token string) (*Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	id, ok := m.tokens[token]
	if !ok {
		return nil, ErrNotFound
	}
	s, ok := m.byID[id]
	if !ok {
		delete(m.tokens, token)
		return nil, ErrNotFound
	}
	if s.IsExpired() {
		m.remove(id)
		return nil, ErrExpired
	}
	return s.Clone(), nil
}

// Update replaces the stored copy. A rotated token replaces the old one.
func (m *MemoryStore) Update(_ context.Context, s *Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if prev, ok := m.byID[s.ID]; ok && prev.Token != s.Token {
		delete(m.tokens, prev.Token)
	}
	m.byID[s.ID] = s.Clone()
	m.tokens[s.Token] = s.ID
	return nil
}

// Delete removes a session by id.
func (m *MemoryStore) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.remove(id)
	return nil
}

// DeleteByUserID removes all sessions of a user.
func (m *MemoryStore) DeleteByUserID(_ context.Context, userID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for id, s := range m.byID {
		if s.UserID == userID {
			m.remove(id)
		}
	}
	return nil
}

// DeleteExpired sweeps expired sessions.
func (m *MemoryStore) DeleteExpired(_ context.Context) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := time.Now()
	var n int64
	for id, s := range m.byID {
		if now.After(s.ExpiresAt) {
			m.remove(id)
			n++
		}
	}
	return n, nil
}

// Len returns the number of stored sessions.
func (m *MemoryStore) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.byID)
}

// remove deletes a session and its token. Caller must hold the mutex.
func (m *MemoryStore) remove(id string) {
	if s, ok := m.byID[id]; ok {
		delete(m.tokens, s.Token)
		delete(m.byID, id)
	}
}

var _ Store = (*MemoryStore)(nil)
