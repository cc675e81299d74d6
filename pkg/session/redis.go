package session

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

const defaultRedisPrefix = "session"

// RedisStore keeps sessions in Redis with native key expiry.
//
// Layout under the prefix:
//
//	{prefix}:sid:{id}     JSON record
//	{prefix}:tok:{token}  session id
//	{prefix}:uid:{user}   set of session ids
type RedisStore struct {
	client redis.UniversalClient
	prefix string
}

// RedisStoreOption configures a RedisStore.
type RedisStoreOption func(*RedisStore)

// WithRedisPrefix sets the key prefix. Default: "session".
func WithRedisPrefix(prefix string) RedisStoreOption {
	return func(s *RedisStore) {
		if prefix != "" {
			s.prefix = prefix
		}
	}
}

// NewRedisStore creates a store on top of an open client (see pkg/redis.Open).
func NewRedisStore(client redis.UniversalClient, opts ...RedisStoreOption) *RedisStore {
	s := &RedisStore{client: client, prefix: defaultRedisPrefix}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// redisRecord is the persisted shape of a session.
type redisRecord struct {
	CreatedAt    time.Time      `json:"created_at"`
	LastActiveAt time.Time      `json:"last_active_at"`
	ExpiresAt    time.Time      `json:"expires_at"`
	Values       map[string]any `json:"values,omitempty"`
	ID           string         `json:"id"`
	Token        string         `json:"token"`
	UserID       string         `json:"user_id,omitempty"`
	IP           string         `json:"ip,omitempty"`
	UserAgent    string         `json:"user_agent,omitempty"`
}

func toRecord(s *Session) redisRecord {
	c := s.Clone()
	return redisRecord{
		CreatedAt:    c.CreatedAt,
		LastActiveAt: c.LastActiveAt,
		ExpiresAt:    c.ExpiresAt,
		Values:       c.Values,
		ID:           c.ID,
		Token:        c.Token,
		UserID:       c.UserID,
		IP:           c.IP,
		UserAgent:    c.UserAgent,
	}
}

func (r redisRecord) session() *Session {
	values := r.Values
	if values == nil {
		values = make(map[string]any)
	}
	return &Session{
		CreatedAt:    r.CreatedAt,
		LastActiveAt: r.LastActiveAt,
		ExpiresAt:    r.ExpiresAt,
		Values:       values,
		ID:           r.ID,
		Token:        r.Token,
		UserID:       r.UserID,
		IP:           r.IP,
		UserAgent:    r.UserAgent,
	}
}

// Create persists a new session.
func (s *RedisStore) Create(ctx context.Context, sess *Session) error {
	return s.save(ctx, sess, "")
}

// Get loads the session for token.
func (s *RedisStore) Get(ctx context.Context, token string) (*Session, error) {
	id, err := s.client.Get(ctx, s.tokenKey(token)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrNotFound
		}
		return nil, errors.Join(ErrStoreUnavailable, err)
	}

	rec, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	sess := rec.session()
	if sess.IsExpired() {
		return nil, ErrExpired
	}
	return sess, nil
}

// Update writes the session and moves the token index when it was rotated.
func (s *RedisStore) Update(ctx context.Context, sess *Session) error {
	prev, err := s.load(ctx, sess.ID)
	if err != nil && !errors.Is(err, ErrNotFound) {
		return err
	}
	oldToken := ""
	if prev != nil && prev.Token != sess.Token {
		oldToken = prev.Token
	}
	return s.save(ctx, sess, oldToken)
}

// Delete removes a session with its token index.
func (s *RedisStore) Delete(ctx context.Context, id string) error {
	rec, err := s.load(ctx, id)
	if errors.Is(err, ErrNotFound) {
		return nil
	}
	if err != nil {
		return err
	}

	_, err = s.client.TxPipelined(ctx, func(p redis.Pipeliner) error {
		p.Del(ctx, s.idKey(id), s.tokenKey(rec.Token))
		if rec.UserID != "" {
			p.SRem(ctx, s.userKey(rec.UserID), id)
		}
		return nil
	})
	if err != nil {
		return errors.Join(ErrStoreUnavailable, err)
	}
	return nil
}

// DeleteByUserID removes every session in the user's index.
func (s *RedisStore) DeleteByUserID(ctx context.Context, userID string) error {
	ids, err := s.client.SMembers(ctx, s.userKey(userID)).Result()
	if err != nil {
		return errors.Join(ErrStoreUnavailable, err)
	}
	for _, id := range ids {
		if err := s.Delete(ctx, id); err != nil {
			return err
		}
	}
	return s.client.Del(ctx, s.userKey(userID)).Err()
}

// DeleteExpired is a no-op: Redis expires keys on its own.
func (s *RedisStore) DeleteExpired(context.Context) (int64, error) {
	return 0, nil
}

func (s *RedisStore) save(ctx context.Context, sess *Session, oldToken string) error {
	rec := toRecord(sess)
	data, err := json.Marshal(rec)
	if err != nil {
		return err
	}

	ttl := time.Until(rec.ExpiresAt)
	if ttl <= 0 {
		return ErrExpired
	}

	_, err = s.client.TxPipelined(ctx, func(p redis.Pipeliner) error {
		if oldToken != "" {
			p.Del(ctx, s.tokenKey(oldToken))
		}
		p.Set(ctx, s.idKey(rec.ID), data, ttl)
		p.Set(ctx, s.tokenKey(rec.Token), rec.ID, ttl)
		if rec.UserID != "" {
			p.SAdd(ctx, s.userKey(rec.UserID), rec.ID)
			p.Expire(ctx, s.userKey(rec.UserID), ttl)
		}
		return nil
	})
	if err != nil {
		return errors.Join(ErrStoreUnavailable, err)
	}
	return nil
}

func (s *RedisStore) load(ctx context.Context, id string) (*redisRecord, error) {
	data, err := s.client.Get(ctx, s.idKey(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrNotFound
		}
		return nil, errors.Join(ErrStoreUnavailable, err)
	}
	var rec redisRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, errors.Join(ErrStoreUnavailable, err)
	}
	return &rec, nil
}

func (s *RedisStore) idKey(id string) string       { return s.prefix + ":sid:" + id }
func (s *RedisStore) tokenKey(token string) string { return s.prefix + ":tok:" + token }
func (s *RedisStore) userKey(userID string) string { return s.prefix + ":uid:" + userID }

var _ Store = (*RedisStore)(nil)
