package user

import (
	"context"
	"strconv"
	"time"

	"github.com/gatlingbook/gatlingbook/pkg/cache"
)

// CachedRepository is a read-through cache in front of another Repository.
// Lookups by username and id share one cache; Create forgets the username
// so a cached miss cannot hide a new account.
type CachedRepository struct {
	next   Repository
	loader *cache.Loader[*User]
}

// NewCachedRepository caches results of next in c for ttl.
func NewCachedRepository(next Repository, c cache.Cache[*User], ttl time.Duration) *CachedRepository {
	return &CachedRepository{next: next, loader: cache.NewLoader(c, ttl)}
}

func (r *CachedRepository) FindByUsername(ctx context.Context, username string) (*User, error) {
	return r.loader.GetOrLoad(ctx, "name:"+username, func(ctx context.Context) (*User, error) {
		return r.next.FindByUsername(ctx, username)
	})
}

func (r *CachedRepository) FindByID(ctx context.Context, id int64) (*User, error) {
	return r.loader.GetOrLoad(ctx, "id:"+strconv.FormatInt(id, 10), func(ctx context.Context) (*User, error) {
		return r.next.FindByID(ctx, id)
	})
}

func (r *CachedRepository) Create(ctx context.Context, u *User) error {
	if err := r.next.Create(ctx, u); err != nil {
		return err
	}
	_ = r.loader.Forget(ctx, "name:"+u.Username)
	_ = r.loader.Forget(ctx, "id:"+strconv.FormatInt(u.ID, 10))
	return nil
}
