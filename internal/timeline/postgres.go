package timeline

import (
	"context"
	"database/sql"
	"errors"

	"github.com/gatlingbook/gatlingbook/pkg/db"
)

// PostgresRepository reads and writes the "messages" and "follower" tables.
type PostgresRepository struct {
	db db.DBTX
}

// NewPostgresRepository creates a repository over any database/sql handle.
func NewPostgresRepository(conn db.DBTX) *PostgresRepository {
	return &PostgresRepository{db: conn}
}

const messageSelect = `SELECT m.message_id, m.author_id, u.username, u.email, m.title, m.text, m.html, m.pub_date
FROM messages m JOIN users u ON u.user_id = m.author_id`

func (r *PostgresRepository) Public(ctx context.Context, limit int) ([]Message, error) {
	return r.list(ctx, messageSelect+` WHERE m.flagged = false ORDER BY m.pub_date DESC LIMIT $1`, limit)
}

func (r *PostgresRepository) ByAuthor(ctx context.Context, authorID int64, limit int) ([]Message, error) {
	return r.list(ctx, messageSelect+` WHERE m.flagged = false AND m.author_id = $1 ORDER BY m.pub_date DESC LIMIT $2`, authorID, limit)
}

func (r *PostgresRepository) Full(ctx context.Context, userID int64, limit int) ([]Message, error) {
	return r.list(ctx, messageSelect+` WHERE m.flagged = false AND (m.author_id = $1
  OR m.author_id IN (SELECT whom_id FROM follower WHERE who_id = $1))
ORDER BY m.pub_date DESC LIMIT $2`, userID, limit)
}

func (r *PostgresRepository) Get(ctx context.Context, id int64) (*Message, error) {
	var m Message
	err := r.db.QueryRowContext(ctx, messageSelect+` WHERE m.message_id = $1`, id).
		Scan(&m.ID, &m.AuthorID, &m.Author, &m.Email, &m.Title, &m.Text, &m.HTML, &m.PubDate)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, errors.Join(ErrPersistence, err)
	}
	return &m, nil
}

func (r *PostgresRepository) list(ctx context.Context, query string, args ...any) ([]Message, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, errors.Join(ErrPersistence, err)
	}
	defer rows.Close()

	var out []Message
	for rows.Next() {
		var m Message
		if err := rows.Scan(&m.ID, &m.AuthorID, &m.Author, &m.Email, &m.Title, &m.Text, &m.HTML, &m.PubDate); err != nil {
			return nil, errors.Join(ErrPersistence, err)
		}
		out = append(out, m)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Join(ErrPersistence, err)
	}
	return out, nil
}

func (r *PostgresRepository) Create(ctx context.Context, m *Message) error {
	err := r.db.QueryRowContext(ctx,
		`INSERT INTO messages (author_id, title, text, html) VALUES ($1, $2, $3, $4) RETURNING message_id, pub_date`,
		m.AuthorID, m.Title, m.Text, m.HTML,
	).Scan(&m.ID, &m.PubDate)
	if err != nil {
		return errors.Join(ErrPersistence, err)
	}
	return nil
}

func (r *PostgresRepository) Follow(ctx context.Context, who, whom int64) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO follower (who_id, whom_id) VALUES ($1, $2) ON CONFLICT DO NOTHING`, who, whom)
	if err != nil {
		return errors.Join(ErrPersistence, err)
	}
	return nil
}

func (r *PostgresRepository) Unfollow(ctx context.Context, who, whom int64) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM follower WHERE who_id = $1 AND whom_id = $2`, who, whom)
	if err != nil {
		return errors.Join(ErrPersistence, err)
	}
	return nil
}

func (r *PostgresRepository) IsFollowing(ctx context.Context, who, whom int64) (bool, error) {
	var ok bool
	err := r.db.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM follower WHERE who_id = $1 AND whom_id = $2)`, who, whom).Scan(&ok)
	if err != nil {
		return false, errors.Join(ErrPersistence, err)
	}
	return ok, nil
}
