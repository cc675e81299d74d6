package user

import "context"

// Repository is the persistence boundary for accounts.
type Repository interface {
	// FindByUsername returns the user or nil when there is none.
	FindByUsername(ctx context.Context, username string) (*User, error)

	// FindByID returns the user or nil when there is none.
	FindByID(ctx context.Context, id int64) (*User, error)

	// Create stores u and assigns u.ID. Store failures wrap ErrPersistence;
	// a taken username is ErrDuplicate.
	Create(ctx context.Context, u *User) error
}
