package http

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gorilla/securecookie"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSessions(t *testing.T) {
	s := NewSessions(securecookie.GenerateRandomKey(64), securecookie.GenerateRandomKey(32), true)

	t.Run("round trip", func(t *testing.T) {
		rec := httptest.NewRecorder()
		require.NoError(t, s.Set(rec, testToken))

		cookies := rec.Result().Cookies()
		require.Len(t, cookies, 1)
		assert.Equal(t, sessionCookieName, cookies[0].Name)
		assert.True(t, cookies[0].HttpOnly)
		assert.True(t, cookies[0].Secure)
		assert.Equal(t, http.SameSiteStrictMode, cookies[0].SameSite)
		assert.NotContains(t, cookies[0].Value, "shortlink-auth")

		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.AddCookie(cookies[0])

		assert.Equal(t, testToken, s.Token(req))
	})

	t.Run("missing cookie", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)

		assert.Empty(t, s.Token(req))
	})

	t.Run("cookie from other keys", func(t *testing.T) {
		other := NewSessions(securecookie.GenerateRandomKey(64), nil, false)

		rec := httptest.NewRecorder()
		require.NoError(t, other.Set(rec, testToken))

		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.AddCookie(rec.Result().Cookies()[0])

		assert.Empty(t, s.Token(req))
	})

	t.Run("clear", func(t *testing.T) {
		rec := httptest.NewRecorder()
		s.Clear(rec)

		cookies := rec.Result().Cookies()
		require.Len(t, cookies, 1)
		assert.Equal(t, -1, cookies[0].MaxAge)
		assert.Empty(t, cookies[0].Value)
	})
}
