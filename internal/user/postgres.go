package user

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/gatlingbook/gatlingbook/pkg/db"
)

const uniqueViolation = "23505"

// PostgresRepository stores users in the "users" table.
type PostgresRepository struct {
	db db.DBTX
}

// NewPostgresRepository creates a repository over any database/sql handle.
func NewPostgresRepository(conn db.DBTX) *PostgresRepository {
	return &PostgresRepository{db: conn}
}

const userColumns = `user_id, username, email, pw, created_at`

func (r *PostgresRepository) FindByUsername(ctx context.Context, username string) (*User, error) {
	return r.findOne(ctx, `SELECT `+userColumns+` FROM users WHERE username = $1`, username)
}

func (r *PostgresRepository) FindByID(ctx context.Context, id int64) (*User, error) {
	return r.findOne(ctx, `SELECT `+userColumns+` FROM users WHERE user_id = $1`, id)
}

func (r *PostgresRepository) findOne(ctx context.Context, query string, arg any) (*User, error) {
	var u User
	err := r.db.QueryRowContext(ctx, query, arg).
		Scan(&u.ID, &u.Username, &u.Email, &u.PasswordHash, &u.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, errors.Join(ErrPersistence, err)
	}
	return &u, nil
}

// Create inserts u. The UNIQUE constraint on username turns a lost
// registration race into ErrDuplicate instead of a second row.
func (r *PostgresRepository) Create(ctx context.Context, u *User) error {
	err := r.db.QueryRowContext(ctx,
		`INSERT INTO users (username, email, pw) VALUES ($1, $2, $3) RETURNING user_id, created_at`,
		u.Username, u.Email, u.PasswordHash,
	).Scan(&u.ID, &u.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return ErrDuplicate
		}
		return errors.Join(ErrPersistence, err)
	}
	return nil
}
