package user

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newPostgresRepositoryWithMock(t *testing.T) (*PostgresRepository, sqlmock.Sqlmock) {
	t.Helper()

	conn, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })

	return NewPostgresRepository(conn), mock
}

var userRowColumns = []string{"user_id", "username", "email", "pw", "created_at"}

func TestPostgresRepository_FindByUsername(t *testing.T) {
	t.Parallel()

	query := `^SELECT user_id, username, email, pw, created_at FROM users WHERE username = \$1`

	t.Run("found", func(t *testing.T) {
		t.Parallel()

		repo, mock := newPostgresRepositoryWithMock(t)
		now := time.Now()
		mock.ExpectQuery(query).WithArgs("alice").WillReturnRows(
			sqlmock.NewRows(userRowColumns).AddRow(int64(1), "alice", "a@x.com", "hash", now),
		)

		u, err := repo.FindByUsername(context.Background(), "alice")
		require.NoError(t, err)
		require.NotNil(t, u)
		assert.Equal(t, int64(1), u.ID)
		assert.Equal(t, "hash", u.PasswordHash)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("absent is not an error", func(t *testing.T) {
		t.Parallel()

		repo, mock := newPostgresRepositoryWithMock(t)
		mock.ExpectQuery(query).WithArgs("ghost").WillReturnRows(sqlmock.NewRows(userRowColumns))

		u, err := repo.FindByUsername(context.Background(), "ghost")
		require.NoError(t, err)
		assert.Nil(t, u)
	})

	t.Run("store failure", func(t *testing.T) {
		t.Parallel()

		repo, mock := newPostgresRepositoryWithMock(t)
		mock.ExpectQuery(query).WithArgs("alice").WillReturnError(errors.New("connection refused"))

		_, err := repo.FindByUsername(context.Background(), "alice")
		require.ErrorIs(t, err, ErrPersistence)
	})
}

func TestPostgresRepository_FindByID(t *testing.T) {
	t.Parallel()

	repo, mock := newPostgresRepositoryWithMock(t)
	mock.ExpectQuery(`^SELECT .+ FROM users WHERE user_id = \$1`).WithArgs(int64(9)).WillReturnRows(
		sqlmock.NewRows(userRowColumns).AddRow(int64(9), "bob", "b@x.com", "hash", time.Now()),
	)

	u, err := repo.FindByID(context.Background(), 9)
	require.NoError(t, err)
	assert.Equal(t, "bob", u.Username)
}

func TestPostgresRepository_Create(t *testing.T) {
	t.Parallel()

	query := `^INSERT INTO users \(username, email, pw\) VALUES \(\$1, \$2, \$3\) RETURNING user_id, created_at`

	t.Run("assigns id", func(t *testing.T) {
		t.Parallel()

		repo, mock := newPostgresRepositoryWithMock(t)
		mock.ExpectQuery(query).WithArgs("bob", "bob@x.com", "hash").WillReturnRows(
			sqlmock.NewRows([]string{"user_id", "created_at"}).AddRow(int64(42), time.Now()),
		)

		u := &User{Username: "bob", Email: "bob@x.com", PasswordHash: "hash"}
		require.NoError(t, repo.Create(context.Background(), u))
		assert.Equal(t, int64(42), u.ID)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("unique violation", func(t *testing.T) {
		t.Parallel()

		repo, mock := newPostgresRepositoryWithMock(t)
		mock.ExpectQuery(query).WillReturnError(&pgconn.PgError{Code: uniqueViolation})

		err := repo.Create(context.Background(), &User{Username: "bob"})
		require.ErrorIs(t, err, ErrDuplicate)
		assert.NotErrorIs(t, err, ErrPersistence)
	})

	t.Run("store failure", func(t *testing.T) {
		t.Parallel()

		repo, mock := newPostgresRepositoryWithMock(t)
		mock.ExpectQuery(query).WillReturnError(errors.New("timeout"))

		err := repo.Create(context.Background(), &User{Username: "bob"})
		require.ErrorIs(t, err, ErrPersistence)
	})
}
