package http

import (
	"fmt"
	"net/http"

	"github.com/gorilla/securecookie"
	"github.com/vadimbarashkov/shortlink/internal/usecase"
)

const sessionCookieName = "shortlink-session"

// Sessions carries the session token in a signed, optionally encrypted
// cookie. The server keeps no session state.
type Sessions struct {
	codec  *securecookie.SecureCookie
	secure bool
}

// NewSessions returns Sessions keyed with hashKey and blockKey. A nil
// blockKey leaves the cookie signed but unencrypted.
func NewSessions(hashKey, blockKey []byte, secure bool) *Sessions {
	codec := securecookie.New(hashKey, blockKey)
	codec.MaxAge(int(usecase.TokenLifetime.Seconds()))

	return &Sessions{
		codec:  codec,
		secure: secure,
	}
}

// Token returns the token carried by r, or "" when the cookie is missing or
// fails verification.
func (s *Sessions) Token(r *http.Request) string {
	c, err := r.Cookie(sessionCookieName)
	if err != nil {
		return ""
	}

	var token string
	if err := s.codec.Decode(sessionCookieName, c.Value, &token); err != nil {
		return ""
	}

	return token
}

func (s *Sessions) Set(w http.ResponseWriter, token string) error {
	const op = "delivery.http.Sessions.Set"

	encoded, err := s.codec.Encode(sessionCookieName, token)
	if err != nil {
		return fmt.Errorf("%s: failed to encode session cookie: %w", op, err)
	}

	http.SetCookie(w, s.cookie(encoded, int(usecase.TokenLifetime.Seconds())))

	return nil
}

func (s *Sessions) Clear(w http.ResponseWriter) {
	http.SetCookie(w, s.cookie("", -1))
}

func (s *Sessions) cookie(value string, maxAge int) *http.Cookie {
	return &http.Cookie{
		Name:     sessionCookieName,
		Value:    value,
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   s.secure,
		SameSite: http.SameSiteStrictMode,
	}
}
