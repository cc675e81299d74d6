// Package auth binds the authenticated user to the request session and
// provides the before-filters guarding routes.
package auth

import (
	"context"
	"errors"
	"log/slog"
	"strconv"

	"github.com/gatlingbook/gatlingbook/internal"
	"github.com/gatlingbook/gatlingbook/internal/user"
	"github.com/gatlingbook/gatlingbook/pkg/logger"
	"github.com/gatlingbook/gatlingbook/pkg/session"
)

// SessionKey is the session attribute holding the authenticated user.
const SessionKey = "user"

type currentUserKey struct{}

// GetAuthenticatedUser returns the user stored in the session, or nil for
// anonymous requests. It only reads the session.
func GetAuthenticatedUser(c internal.Context) (*user.User, error) {
	if u, ok := c.Get(currentUserKey{}).(*user.User); ok {
		return u, nil
	}

	sess, err := c.Session()
	if err != nil {
		return nil, err
	}

	u, err := session.Value[*user.User](sess, SessionKey)
	if err != nil {
		if errors.Is(err, session.ErrNotFound) {
			return nil, nil
		}
		c.Logger().WarnContext(c, "unreadable session user", slog.String("error", err.Error()))
		return nil, nil
	}
	if u == nil {
		return nil, nil
	}

	c.Set(currentUserKey{}, u)
	return u, nil
}

// AddAuthenticatedUser stores u in the session. The session token is
// rotated so a token issued before login cannot be reused after it.
func AddAuthenticatedUser(c internal.Context, u *user.User) error {
	if err := c.RotateSession(); err != nil {
		return err
	}
	sess, err := c.Session()
	if err != nil {
		return err
	}

	public := u.Public()
	sess.SetValue(SessionKey, public)
	sess.SetUserID(strconv.FormatInt(u.ID, 10))
	c.Set(currentUserKey{}, public)
	return nil
}

// RemoveAuthenticatedUser clears the session user. Calling it on an
// anonymous session is a no-op.
func RemoveAuthenticatedUser(c internal.Context) error {
	sess, err := c.Session()
	if err != nil {
		return err
	}
	sess.DeleteValue(SessionKey)
	sess.SetUserID("")
	c.Set(currentUserKey{}, (*user.User)(nil))
	return nil
}

// UserExtractor adds "user" with the authenticated username to log records
// written with a request context.
func UserExtractor() logger.Extractor {
	return func(ctx context.Context) (slog.Attr, bool) {
		if u, ok := ctx.Value(currentUserKey{}).(*user.User); ok && u != nil {
			return slog.String("user", u.Username), true
		}
		return slog.Attr{}, false
	}
}
