package session

import "context"

// Store persists sessions. Implementations must serialize concurrent writes
// to the same session id; the last write wins.
type Store interface {
	// Create persists a new session.
	Create(ctx context.Context, s *Session) error

	// Get retrieves a session by its token.
	// Returns ErrNotFound if the session doesn't exist.
	// Returns ErrExpired if the session has expired.
	Get(ctx context.Context, token string) (*Session, error)

	// Update saves an existing session. The token may have changed since
	// the session was loaded (rotation); the old token stops resolving.
	Update(ctx context.Context, s *Session) error

	// Delete removes a session by its ID. Deleting a missing session is not an error.
	Delete(ctx context.Context, id string) error

	// DeleteByUserID removes every session bound to the user.
	DeleteByUserID(ctx context.Context, userID string) error

	// DeleteExpired purges expired sessions and reports how many were removed.
	// Backends with native expiry may return 0.
	DeleteExpired(ctx context.Context) (int64, error)
}
