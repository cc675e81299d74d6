package user_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gatlingbook/gatlingbook/internal/user"
	"github.com/gatlingbook/gatlingbook/pkg/cache"
)

func TestMemoryRepository(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	repo := user.NewMemoryRepository()

	missing, err := repo.FindByUsername(ctx, "alice")
	require.NoError(t, err)
	assert.Nil(t, missing)

	alice := &user.User{Username: "alice", Email: "a@x.com", Password: "plain", PasswordHash: "hash"}
	require.NoError(t, repo.Create(ctx, alice))
	assert.Equal(t, int64(1), alice.ID)

	got, err := repo.FindByUsername(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, "hash", got.PasswordHash)
	assert.Empty(t, got.Password, "form input is not stored")

	byID, err := repo.FindByID(ctx, alice.ID)
	require.NoError(t, err)
	assert.Equal(t, "alice", byID.Username)

	require.ErrorIs(t, repo.Create(ctx, &user.User{Username: "alice"}), user.ErrDuplicate)
	assert.Equal(t, 1, repo.Len())
}

// countingRepository counts lookups reaching the wrapped repository.
type countingRepository struct {
	user.Repository
	lookups int
}

func (c *countingRepository) FindByUsername(ctx context.Context, username string) (*user.User, error) {
	c.lookups++
	return c.Repository.FindByUsername(ctx, username)
}

func TestCachedRepository(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	inner := &countingRepository{Repository: user.NewMemoryRepository()}
	repo := user.NewCachedRepository(inner, cache.NewMemory[*user.User](time.Minute, 100), time.Minute)

	u, err := repo.FindByUsername(ctx, "bob")
	require.NoError(t, err)
	assert.Nil(t, u)

	require.NoError(t, repo.Create(ctx, &user.User{Username: "bob", Email: "b@x.com"}))

	u, err = repo.FindByUsername(ctx, "bob")
	require.NoError(t, err)
	require.NotNil(t, u, "create must evict the cached miss")

	_, err = repo.FindByUsername(ctx, "bob")
	require.NoError(t, err)
	assert.Equal(t, 2, inner.lookups)

	byID, err := repo.FindByID(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, "bob", byID.Username)
}

// gatedRepository holds the first FindByUsername call until release is closed.
type gatedRepository struct {
	user.Repository
	once    sync.Once
	started chan struct{}
	release chan struct{}
}

func (g *gatedRepository) FindByUsername(ctx context.Context, username string) (*user.User, error) {
	u, err := g.Repository.FindByUsername(ctx, username)
	first := false
	g.once.Do(func() { first = true })
	if first {
		close(g.started)
		<-g.release
	}
	return u, err
}

func TestCachedRepository_LookupRacingCreate(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	inner := &gatedRepository{
		Repository: user.NewMemoryRepository(),
		started:    make(chan struct{}),
		release:    make(chan struct{}),
	}
	repo := user.NewCachedRepository(inner, cache.NewMemory[*user.User](time.Minute, 100), time.Minute)

	done := make(chan *user.User)
	go func() {
		u, _ := repo.FindByUsername(ctx, "bob")
		done <- u
	}()

	<-inner.started
	require.NoError(t, repo.Create(ctx, &user.User{Username: "bob", Email: "b@x.com"}))
	close(inner.release)
	assert.Nil(t, <-done, "lookup read the store before bob existed")

	u, err := repo.FindByUsername(ctx, "bob")
	require.NoError(t, err)
	require.NotNil(t, u, "stale miss must not outlive create")
	assert.Equal(t, "bob", u.Username)
}
