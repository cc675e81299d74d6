package cookie

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const secret = "0123456789abcdef0123456789abcdef"

func roundTrip(t *testing.T, w *httptest.ResponseRecorder) *http.Request {
	t.Helper()

	r := httptest.NewRequest(http.MethodGet, "/", nil)
	for _, c := range w.Result().Cookies() {
		r.AddCookie(c)
	}
	return r
}

func TestNew_ShortSecret(t *testing.T) {
	t.Parallel()

	_, err := New("short")
	assert.ErrorIs(t, err, ErrBadSecret)
}

func TestSigned(t *testing.T) {
	t.Parallel()

	m, err := New(secret, WithSecure(true))
	require.NoError(t, err)

	t.Run("round trip", func(t *testing.T) {
		t.Parallel()

		w := httptest.NewRecorder()
		m.SetSigned(w, "sid", "token-123", time.Hour)

		c := w.Result().Cookies()[0]
		assert.True(t, c.HttpOnly)
		assert.True(t, c.Secure)
		assert.Equal(t, 3600, c.MaxAge)
		assert.Equal(t, http.SameSiteLaxMode, c.SameSite)

		v, err := m.GetSigned(roundTrip(t, w), "sid")
		require.NoError(t, err)
		assert.Equal(t, "token-123", v)
	})

	t.Run("tampered value", func(t *testing.T) {
		t.Parallel()

		w := httptest.NewRecorder()
		m.SetSigned(w, "sid", "token-123", time.Hour)
		c := w.Result().Cookies()[0]
		_, sig, _ := strings.Cut(c.Value, ".")

		r := httptest.NewRequest(http.MethodGet, "/", nil)
		r.AddCookie(&http.Cookie{Name: "sid", Value: "dG9rZW4tOTk5." + sig})
		_, err := m.GetSigned(r, "sid")
		assert.ErrorIs(t, err, ErrBadSig)
	})

	t.Run("signature bound to name", func(t *testing.T) {
		t.Parallel()

		w := httptest.NewRecorder()
		m.SetSigned(w, "a", "v", time.Hour)
		c := w.Result().Cookies()[0]

		r := httptest.NewRequest(http.MethodGet, "/", nil)
		r.AddCookie(&http.Cookie{Name: "b", Value: c.Value})
		_, err := m.GetSigned(r, "b")
		assert.ErrorIs(t, err, ErrBadSig)
	})

	t.Run("other secret", func(t *testing.T) {
		t.Parallel()

		w := httptest.NewRecorder()
		m.SetSigned(w, "sid", "v", time.Hour)

		other, err := New(strings.Repeat("x", 32))
		require.NoError(t, err)
		_, err = other.GetSigned(roundTrip(t, w), "sid")
		assert.ErrorIs(t, err, ErrBadSig)
	})

	t.Run("garbage and missing", func(t *testing.T) {
		t.Parallel()

		r := httptest.NewRequest(http.MethodGet, "/", nil)
		_, err := m.GetSigned(r, "sid")
		assert.ErrorIs(t, err, ErrNotFound)

		r.AddCookie(&http.Cookie{Name: "sid", Value: "no-dot"})
		_, err = m.GetSigned(r, "sid")
		assert.ErrorIs(t, err, ErrBadSig)
	})

	t.Run("delete", func(t *testing.T) {
		t.Parallel()

		w := httptest.NewRecorder()
		m.Delete(w, "sid")
		assert.Equal(t, -1, w.Result().Cookies()[0].MaxAge)
	})
}
