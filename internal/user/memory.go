package user

import (
	"context"
	"sync"
	"time"
)

// MemoryRepository keeps users in process memory. Used in tests and for
// local runs without a database.
type MemoryRepository struct {
	byName map[string]*User
	byID   map[int64]*User
	nextID int64
	mu     sync.RWMutex
}

// NewMemoryRepository returns an empty repository.
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		byName: make(map[string]*User),
		byID:   make(map[int64]*User),
	}
}

func (m *MemoryRepository) FindByUsername(_ context.Context, username string) (*User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return clone(m.byName[username]), nil
}

func (m *MemoryRepository) FindByID(_ context.Context, id int64) (*User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return clone(m.byID[id]), nil
}

func (m *MemoryRepository) Create(_ context.Context, u *User) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.byName[u.Username]; ok {
		return ErrDuplicate
	}

	m.nextID++
	u.ID = m.nextID
	u.CreatedAt = time.Now()

	stored := clone(u)
	m.byName[u.Username] = stored
	m.byID[u.ID] = stored
	return nil
}

// Len returns the number of stored users.
func (m *MemoryRepository) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.byID)
}

func clone(u *User) *User {
	if u == nil {
		return nil
	}
	c := *u
	c.Password = ""
	c.PasswordRepeat = ""
	return &c
}
