package user

import "errors"

var (
	// ErrPersistence wraps failures of the underlying store.
	ErrPersistence = errors.New("user: store unavailable")

	// ErrDuplicate is returned by Create when the username is taken.
	ErrDuplicate = errors.New("user: username already taken")
)

// Messages shown on the login and registration forms.
const (
	MsgInvalidUsername = "Invalid username"
	MsgInvalidPassword = "Invalid password"
	MsgTooManyAttempts = "Too many login attempts, try again later"
	MsgUsernameTaken   = "The username is already taken"
)
