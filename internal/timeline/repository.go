package timeline

import "context"

// Repository persists messages and the follow graph. Listings are newest
// first and return at most limit messages.
type Repository interface {
	Public(ctx context.Context, limit int) ([]Message, error)
	ByAuthor(ctx context.Context, authorID int64, limit int) ([]Message, error)
	// Full lists messages by userID and everyone userID follows.
	Full(ctx context.Context, userID int64, limit int) ([]Message, error)
	Get(ctx context.Context, id int64) (*Message, error)
	Create(ctx context.Context, m *Message) error

	Follow(ctx context.Context, who, whom int64) error
	Unfollow(ctx context.Context, who, whom int64) error
	IsFollowing(ctx context.Context, who, whom int64) (bool, error)
}
