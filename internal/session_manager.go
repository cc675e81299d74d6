package internal

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/gatlingbook/gatlingbook/pkg/cookie"
	"github.com/gatlingbook/gatlingbook/pkg/logger"
	"github.com/gatlingbook/gatlingbook/pkg/session"
)

// Default session configuration.
const (
	defaultSessionCookieName = "__sid"
	defaultSessionMaxAge     = 30 * 24 * time.Hour
)

// SessionManager ties sessions in a store to a signed cookie holding the
// session token.
//
// Sessions are created lazily in memory and only persisted once something
// is written to them, so anonymous page views do not fill the store.
type SessionManager struct {
	store      session.Store
	cookies    *cookie.Manager
	logger     *slog.Logger
	cookieName string
	maxAge     time.Duration
}

// SessionOption configures the SessionManager.
type SessionOption func(*SessionManager)

// NewSessionManager creates a new SessionManager with the given store, cookie
// signer and options.
func NewSessionManager(store session.Store, cookies *cookie.Manager, opts ...SessionOption) *SessionManager {
	sm := &SessionManager{
		store:      store,
		cookies:    cookies,
		logger:     logger.Discard(),
		cookieName: defaultSessionCookieName,
		maxAge:     defaultSessionMaxAge,
	}

	for _, opt := range opts {
		opt(sm)
	}

	return sm
}

// WithSessionCookieName sets the session cookie name.
func WithSessionCookieName(name string) SessionOption {
	return func(sm *SessionManager) {
		if name != "" {
			sm.cookieName = name
		}
	}
}

// WithSessionMaxAge sets how long a session and its cookie live.
func WithSessionMaxAge(d time.Duration) SessionOption {
	return func(sm *SessionManager) {
		if d > 0 {
			sm.maxAge = d
		}
	}
}

// SetLogger sets the logger for session events. Called by App after initialization.
func (sm *SessionManager) SetLogger(l *slog.Logger) {
	if l != nil {
		sm.logger = l
	}
}

// Store returns the underlying session store.
func (sm *SessionManager) Store() session.Store {
	return sm.store
}

// Load returns the session referenced by the request cookie.
// A missing, forged, unknown or expired cookie yields nil, nil; only store
// failures are reported.
func (sm *SessionManager) Load(ctx context.Context, r *http.Request) (*session.Session, error) {
	token, err := sm.cookies.GetSigned(r, sm.cookieName)
	if err != nil {
		if errors.Is(err, cookie.ErrBadSig) {
			sm.logger.WarnContext(ctx, "session cookie with invalid signature", slog.String("ip", clientIP(r)))
		}
		return nil, nil
	}

	sess, err := sm.store.Get(ctx, token)
	switch {
	case errors.Is(err, session.ErrNotFound), errors.Is(err, session.ErrExpired):
		return nil, nil
	case err != nil:
		return nil, err
	}
	return sess, nil
}

// New creates an unsaved session for the request. It is persisted by Save
// once it becomes dirty.
func (sm *SessionManager) New(r *http.Request) (*session.Session, error) {
	token, err := generateToken()
	if err != nil {
		return nil, fmt.Errorf("generate session token: %w", err)
	}

	sess := session.New(uuid.NewString(), token, time.Now().Add(sm.maxAge))
	sess.IP = clientIP(r)
	sess.UserAgent = r.UserAgent()
	sess.ClearDirty()
	return sess, nil
}

// Save persists a dirty session and (re)sends its cookie. Clean sessions
// are left alone.
func (sm *SessionManager) Save(ctx context.Context, w http.ResponseWriter, sess *session.Session) error {
	if sess == nil || !sess.IsDirty() {
		return nil
	}

	var err error
	if sess.IsNew() {
		err = sm.store.Create(ctx, sess)
	} else {
		err = sm.store.Update(ctx, sess)
	}
	if err != nil {
		return err
	}

	sess.ClearNew()
	sess.ClearDirty()
	sm.cookies.SetSigned(w, sm.cookieName, sess.Token, sm.maxAge)
	return nil
}

// Rotate gives the session a fresh token. The old token stops resolving
// once the session is saved.
func (sm *SessionManager) Rotate(sess *session.Session) error {
	token, err := generateToken()
	if err != nil {
		return fmt.Errorf("generate session token: %w", err)
	}
	sess.Token = token
	sess.ExpiresAt = time.Now().Add(sm.maxAge)
	sess.MarkDirty()
	return nil
}

// Destroy deletes the session from the store and expires the cookie.
func (sm *SessionManager) Destroy(ctx context.Context, w http.ResponseWriter, sess *session.Session) error {
	if sess != nil && !sess.IsNew() {
		if err := sm.store.Delete(ctx, sess.ID); err != nil {
			return err
		}
	}
	sm.cookies.Delete(w, sm.cookieName)
	return nil
}

// generateToken creates a cryptographically secure random token.
func generateToken() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("read random bytes: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}

func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
