package session

import (
	"encoding/json"
	"errors"
	"maps"
	"sync"
	"time"
)

// Session is a per-client attribute bag identified by a server generated id
// and carried to the client as an opaque token.
//
// A Session is safe for concurrent use. Stores hand out copies, so two
// requests for the same session never share one attribute map; the store
// decides which write lands last.
type Session struct {
	CreatedAt    time.Time
	LastActiveAt time.Time
	ExpiresAt    time.Time
	Values       map[string]any
	ID           string
	Token        string
	UserID       string // empty for anonymous sessions
	IP           string
	UserAgent    string

	mu    sync.RWMutex
	dirty bool
	isNew bool
}

// New creates a new session with the given ID and token.
// The session starts out new and dirty so the first flush persists it.
func New(id, token string, expiresAt time.Time) *Session {
	now := time.Now()
	return &Session{
		ID:           id,
		Token:        token,
		Values:       make(map[string]any),
		CreatedAt:    now,
		LastActiveAt: now,
		ExpiresAt:    expiresAt,
		isNew:        true,
		dirty:        true,
	}
}

// IsAuthenticated reports whether a user id is bound to the session.
func (s *Session) IsAuthenticated() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.UserID != ""
}

// SetUserID binds (or with an empty id, unbinds) a user to the session.
func (s *Session) SetUserID(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.UserID != id {
		s.UserID = id
		s.dirty = true
	}
}

// SetValue stores a value and marks the session dirty.
func (s *Session) SetValue(key string, val any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Values == nil {
		s.Values = make(map[string]any)
	}
	s.Values[key] = val
	s.dirty = true
}

// GetValue returns the raw value stored under key.
func (s *Session) GetValue(key string) (any, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	val, ok := s.Values[key]
	return val, ok
}

// DeleteValue removes key. The session only becomes dirty if the key existed.
func (s *Session) DeleteValue(key string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.Values[key]; ok {
		delete(s.Values, key)
		s.dirty = true
	}
}

// IsDirty reports whether the session has unsaved changes.
func (s *Session) IsDirty() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.dirty
}

// MarkDirty forces the next flush to persist the session.
func (s *Session) MarkDirty() {
	s.mu.Lock()
	s.dirty = true
	s.mu.Unlock()
}

// ClearDirty marks the session as saved.
func (s *Session) ClearDirty() {
	s.mu.Lock()
	s.dirty = false
	s.mu.Unlock()
}

// IsNew reports whether the session has not been persisted yet.
func (s *Session) IsNew() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.isNew
}

// ClearNew marks the session as persisted.
func (s *Session) ClearNew() {
	s.mu.Lock()
	s.isNew = false
	s.mu.Unlock()
}

// IsExpired reports whether the session lifetime is over.
func (s *Session) IsExpired() bool {
	return time.Now().After(s.ExpiresAt)
}

// Clone returns a copy with its own attribute map and the same flags.
func (s *Session) Clone() *Session {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return &Session{
		CreatedAt:    s.CreatedAt,
		LastActiveAt: s.LastActiveAt,
		ExpiresAt:    s.ExpiresAt,
		Values:       maps.Clone(s.Values),
		ID:           s.ID,
		Token:        s.Token,
		UserID:       s.UserID,
		IP:           s.IP,
		UserAgent:    s.UserAgent,
		dirty:        s.dirty,
		isNew:        s.isNew,
	}
}

// Value returns the value under key as T.
//
// Stores that persist sessions as JSON hand values back as generic maps and
// float64s, so when the direct assertion fails the value is round-tripped
// through JSON into T.
func Value[T any](s *Session, key string) (T, error) {
	var zero T
	if s == nil {
		return zero, ErrNotFound
	}
	val, ok := s.GetValue(key)
	if !ok || val == nil {
		return zero, ErrNotFound
	}
	if typed, ok := val.(T); ok {
		return typed, nil
	}

	raw, err := json.Marshal(val)
	if err != nil {
		return zero, errors.Join(ErrTypeMismatch, err)
	}
	var out T
	if err := json.Unmarshal(raw, &out); err != nil {
		return zero, errors.Join(ErrTypeMismatch, err)
	}
	return out, nil
}

// ValueOr is Value with a fallback for missing or mismatched keys.
func ValueOr[T any](s *Session, key string, fallback T) T {
	val, err := Value[T](s, key)
	if err != nil {
		return fallback
	}
	return val
}
