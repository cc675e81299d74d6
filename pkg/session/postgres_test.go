package session

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newPostgresStoreWithMock(t *testing.T) (*PostgresStore, sqlmock.Sqlmock) {
	t.Helper()

	conn, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })

	return NewPostgresStore(conn), mock
}

func TestPostgresStore_Create(t *testing.T) {
	t.Parallel()

	store, mock := newPostgresStoreWithMock(t)
	sess := New("id-1", "tok-1", time.Now().Add(time.Hour))
	sess.SetValue("user", "alice")

	mock.ExpectExec(`^INSERT INTO sessions \(id, token, user_id, data, ip, user_agent, created_at, last_active_at, expires_at\)`).
		WithArgs("id-1", "tok-1", sql.NullString{}, []byte(`{"user":"alice"}`), "", "",
			sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, store.Create(context.Background(), sess))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_Get(t *testing.T) {
	t.Parallel()

	columns := []string{"id", "token", "user_id", "data", "ip", "user_agent", "created_at", "last_active_at", "expires_at"}
	query := `^SELECT id, token, user_id, data, ip, user_agent, created_at, last_active_at, expires_at FROM sessions WHERE token = \$1`

	t.Run("found", func(t *testing.T) {
		t.Parallel()

		store, mock := newPostgresStoreWithMock(t)
		now := time.Now()
		mock.ExpectQuery(query).WithArgs("tok-1").WillReturnRows(
			sqlmock.NewRows(columns).AddRow("id-1", "tok-1", "7", []byte(`{"user":{"id":7}}`), "127.0.0.1", "curl", now, now, now.Add(time.Hour)),
		)

		sess, err := store.Get(context.Background(), "tok-1")
		require.NoError(t, err)
		assert.Equal(t, "id-1", sess.ID)
		assert.Equal(t, "7", sess.UserID)
		_, ok := sess.GetValue("user")
		assert.True(t, ok)
		assert.False(t, sess.IsNew())
	})

	t.Run("not found", func(t *testing.T) {
		t.Parallel()

		store, mock := newPostgresStoreWithMock(t)
		mock.ExpectQuery(query).WithArgs("nope").WillReturnError(sql.ErrNoRows)

		_, err := store.Get(context.Background(), "nope")
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("expired", func(t *testing.T) {
		t.Parallel()

		store, mock := newPostgresStoreWithMock(t)
		past := time.Now().Add(-time.Hour)
		mock.ExpectQuery(query).WithArgs("old").WillReturnRows(
			sqlmock.NewRows(columns).AddRow("id-2", "old", nil, []byte(`{}`), "", "", past, past, past),
		)

		_, err := store.Get(context.Background(), "old")
		assert.ErrorIs(t, err, ErrExpired)
	})

	t.Run("database down", func(t *testing.T) {
		t.Parallel()

		store, mock := newPostgresStoreWithMock(t)
		mock.ExpectQuery(query).WithArgs("tok").WillReturnError(errors.New("connection refused"))

		_, err := store.Get(context.Background(), "tok")
		assert.ErrorIs(t, err, ErrStoreUnavailable)
	})
}

func TestPostgresStore_UpdateAndDelete(t *testing.T) {
	t.Parallel()

	store, mock := newPostgresStoreWithMock(t)
	ctx := context.Background()

	sess := New("id-1", "tok-2", time.Now().Add(time.Hour))
	sess.SetUserID("7")

	mock.ExpectExec(`^UPDATE sessions SET token = \$2, user_id = \$3, data = \$4, last_active_at = \$5, expires_at = \$6 WHERE id = \$1`).
		WithArgs("id-1", "tok-2", sql.NullString{String: "7", Valid: true}, []byte(`{}`), sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`^DELETE FROM sessions WHERE id = \$1`).WithArgs("id-1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`^DELETE FROM sessions WHERE user_id = \$1`).WithArgs("7").
		WillReturnResult(sqlmock.NewResult(0, 3))
	mock.ExpectExec(`^DELETE FROM sessions WHERE expires_at < \$1`).WithArgs(sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 4))

	require.NoError(t, store.Update(ctx, sess))
	require.NoError(t, store.Delete(ctx, "id-1"))
	require.NoError(t, store.DeleteByUserID(ctx, "7"))

	n, err := store.DeleteExpired(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(4), n)

	require.NoError(t, mock.ExpectationsWereMet())
}
