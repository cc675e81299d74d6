package timeline

import (
	"context"
	"slices"
	"sync"
	"time"
)

type edge struct{ who, whom int64 }

// MemoryRepository keeps messages and follows in process memory.
// Author names are taken from the message as given to Create.
type MemoryRepository struct {
	follows  map[edge]struct{}
	messages []Message
	nextID   int64
	mu       sync.RWMutex
}

// NewMemoryRepository returns an empty repository.
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{follows: make(map[edge]struct{})}
}

func (m *MemoryRepository) Public(_ context.Context, limit int) ([]Message, error) {
	return m.filter(limit, func(Message) bool { return true }), nil
}

func (m *MemoryRepository) ByAuthor(_ context.Context, authorID int64, limit int) ([]Message, error) {
	return m.filter(limit, func(msg Message) bool { return msg.AuthorID == authorID }), nil
}

func (m *MemoryRepository) Full(_ context.Context, userID int64, limit int) ([]Message, error) {
	return m.filter(limit, func(msg Message) bool {
		if msg.AuthorID == userID {
			return true
		}
		_, ok := m.follows[edge{userID, msg.AuthorID}]
		return ok
	}), nil
}

// filter walks newest first. The read lock is held while keep runs.
func (m *MemoryRepository) filter(limit int, keep func(Message) bool) []Message {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []Message
	for _, msg := range slices.Backward(m.messages) {
		if len(out) >= limit {
			break
		}
		if keep(msg) {
			out = append(out, msg)
		}
	}
	return out
}

func (m *MemoryRepository) Get(_ context.Context, id int64) (*Message, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, msg := range m.messages {
		if msg.ID == id {
			return &msg, nil
		}
	}
	return nil, nil
}

func (m *MemoryRepository) Create(_ context.Context, msg *Message) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextID++
	msg.ID = m.nextID
	msg.PubDate = time.Now()
	m.messages = append(m.messages, *msg)
	return nil
}

func (m *MemoryRepository) Follow(_ context.Context, who, whom int64) error {
	m.mu.Lock()
	m.follows[edge{who, whom}] = struct{}{}
	m.mu.Unlock()
	return nil
}

func (m *MemoryRepository) Unfollow(_ context.Context, who, whom int64) error {
	m.mu.Lock()
	delete(m.follows, edge{who, whom})
	m.mu.Unlock()
	return nil
}

func (m *MemoryRepository) IsFollowing(_ context.Context, who, whom int64) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.follows[edge{who, whom}]
	return ok, nil
}
