package session

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	"github.com/gatlingbook/gatlingbook/pkg/db"
)

// PostgresStore keeps sessions in the "sessions" table.
// Expired rows are purged by DeleteExpired (see the session_cleanup task).
type PostgresStore struct {
	db db.DBTX
}

// NewPostgresStore creates a store over any database/sql handle.
func NewPostgresStore(conn db.DBTX) *PostgresStore {
	return &PostgresStore{db: conn}
}

const sessionColumns = `id, token, user_id, data, ip, user_agent, created_at, last_active_at, expires_at`

// Create inserts a new session row.
func (p *PostgresStore) Create(ctx context.Context, s *Session) error {
	c := s.Clone()
	data, err := json.Marshal(c.Values)
	if err != nil {
		return err
	}

	_, err = p.db.ExecContext(ctx,
		`INSERT INTO sessions (`+sessionColumns+`) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		c.ID, c.Token, nullString(c.UserID), data, c.IP, c.UserAgent, c.CreatedAt, c.LastActiveAt, c.ExpiresAt,
	)
	if err != nil {
		return errors.Join(ErrStoreUnavailable, err)
	}
	return nil
}

// Get loads a session by token.
func (p *PostgresStore) Get(ctx context.Context, token string) (*Session, error) {
	var (
		s      Session
		userID sql.NullString
		data   []byte
	)
	err := p.db.QueryRowContext(ctx,
		`SELECT `+sessionColumns+` FROM sessions WHERE token = $1`, token,
	).Scan(&s.ID, &s.Token, &userID, &data, &s.IP, &s.UserAgent, &s.CreatedAt, &s.LastActiveAt, &s.ExpiresAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, errors.Join(ErrStoreUnavailable, err)
	}

	s.UserID = userID.String
	s.Values = make(map[string]any)
	if len(data) > 0 {
		if err := json.Unmarshal(data, &s.Values); err != nil {
			return nil, errors.Join(ErrStoreUnavailable, err)
		}
	}
	if s.IsExpired() {
		return nil, ErrExpired
	}
	return &s, nil
}

// Update overwrites the mutable columns of a session in a single statement.
func (p *PostgresStore) Update(ctx context.Context, s *Session) error {
	c := s.Clone()
	data, err := json.Marshal(c.Values)
	if err != nil {
		return err
	}

	_, err = p.db.ExecContext(ctx,
		`UPDATE sessions SET token = $2, user_id = $3, data = $4, last_active_at = $5, expires_at = $6 WHERE id = $1`,
		c.ID, c.Token, nullString(c.UserID), data, c.LastActiveAt, c.ExpiresAt,
	)
	if err != nil {
		return errors.Join(ErrStoreUnavailable, err)
	}
	return nil
}

// Delete removes a session by id.
func (p *PostgresStore) Delete(ctx context.Context, id string) error {
	if _, err := p.db.ExecContext(ctx, `DELETE FROM sessions WHERE id = $1`, id); err != nil {
		return errors.Join(ErrStoreUnavailable, err)
	}
	return nil
}

// DeleteByUserID removes all sessions of a user.
func (p *PostgresStore) DeleteByUserID(ctx context.Context, userID string) error {
	if _, err := p.db.ExecContext(ctx, `DELETE FROM sessions WHERE user_id = $1`, userID); err != nil {
		return errors.Join(ErrStoreUnavailable, err)
	}
	return nil
}

// DeleteExpired purges rows whose expires_at is in the past.
func (p *PostgresStore) DeleteExpired(ctx context.Context) (int64, error) {
	res, err := p.db.ExecContext(ctx, `DELETE FROM sessions WHERE expires_at < $1`, time.Now())
	if err != nil {
		return 0, errors.Join(ErrStoreUnavailable, err)
	}
	return res.RowsAffected()
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

var _ Store = (*PostgresStore)(nil)
