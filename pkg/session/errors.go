package session

import "errors"

// Session errors.
var (
	// ErrNotConfigured is returned when a request asks for its session but
	// the app was built without a session manager.
	ErrNotConfigured = errors.New("session: not configured")

	// ErrNotFound is returned when a session or a session value does not exist.
	ErrNotFound = errors.New("session: not found")

	// ErrExpired is returned when a session has outlived its ExpiresAt.
	ErrExpired = errors.New("session: expired")

	// ErrTypeMismatch is returned by Value when the stored value cannot be
	// converted into the requested type.
	ErrTypeMismatch = errors.New("session: type mismatch")

	// ErrStoreUnavailable wraps backend failures (redis, postgres).
	ErrStoreUnavailable = errors.New("session: store unavailable")
)
