// Package cookie reads and writes HMAC-signed cookies.
//
// A signed value is encoded as base64(value) "." base64(HMAC-SHA256(name|value)),
// so a cookie signed under one name never verifies under another.
package cookie

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"net/http"
	"strings"
	"time"
)

var (
	ErrNotFound  = errors.New("cookie: not found")
	ErrBadSecret = errors.New("cookie: secret must be at least 32 bytes")
	ErrBadSig    = errors.New("cookie: invalid signature")
)

// Manager holds the signing key and the attributes applied to every cookie.
type Manager struct {
	secret   []byte
	domain   string
	secure   bool
	sameSite http.SameSite
}

// Option configures a Manager.
type Option func(*Manager)

// WithDomain sets the Domain attribute.
func WithDomain(domain string) Option {
	return func(m *Manager) { m.domain = domain }
}

// WithSecure sets the Secure attribute.
func WithSecure(secure bool) Option {
	return func(m *Manager) { m.secure = secure }
}

// WithSameSite overrides the default Lax mode.
func WithSameSite(s http.SameSite) Option {
	return func(m *Manager) { m.sameSite = s }
}

// New creates a manager. All cookies are HttpOnly with Path "/".
func New(secret string, opts ...Option) (*Manager, error) {
	if len(secret) < 32 {
		return nil, ErrBadSecret
	}
	m := &Manager{secret: []byte(secret), sameSite: http.SameSiteLaxMode}
	for _, opt := range opts {
		opt(m)
	}
	return m, nil
}

// GetSigned returns the verified value of the named cookie.
func (m *Manager) GetSigned(r *http.Request, name string) (string, error) {
	c, err := r.Cookie(name)
	if err != nil {
		return "", ErrNotFound
	}

	encValue, encSig, ok := strings.Cut(c.Value, ".")
	if !ok {
		return "", ErrBadSig
	}
	value, err := base64.RawURLEncoding.DecodeString(encValue)
	if err != nil {
		return "", ErrBadSig
	}
	sig, err := base64.RawURLEncoding.DecodeString(encSig)
	if err != nil {
		return "", ErrBadSig
	}
	if !hmac.Equal(sig, m.sign(name, value)) {
		return "", ErrBadSig
	}
	return string(value), nil
}

// SetSigned writes a signed cookie that lives for maxAge.
func (m *Manager) SetSigned(w http.ResponseWriter, name, value string, maxAge time.Duration) {
	raw := []byte(value)
	encoded := base64.RawURLEncoding.EncodeToString(raw) + "." +
		base64.RawURLEncoding.EncodeToString(m.sign(name, raw))
	http.SetCookie(w, m.cookie(name, encoded, int(maxAge.Seconds())))
}

// Delete expires the named cookie.
func (m *Manager) Delete(w http.ResponseWriter, name string) {
	http.SetCookie(w, m.cookie(name, "", -1))
}

func (m *Manager) sign(name string, value []byte) []byte {
	mac := hmac.New(sha256.New, m.secret)
	mac.Write([]byte(name))
	mac.Write([]byte{'|'})
	mac.Write(value)
	return mac.Sum(nil)
}

func (m *Manager) cookie(name, value string, maxAge int) *http.Cookie {
	return &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		Domain:   m.domain,
		MaxAge:   maxAge,
		Secure:   m.secure,
		HttpOnly: true,
		SameSite: m.sameSite,
	}
}
