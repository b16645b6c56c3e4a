package http

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/httplog/v2"
	"github.com/vadimbarashkov/shortlink/internal/metrics"
	"github.com/vadimbarashkov/shortlink/internal/usecase"
)

const (
	apiKeyHeader = "X-Api-Key"
	// maxPasswordBytes bounds the raw login body.
	maxPasswordBytes = 1 << 10
)

type authUseCase interface {
	CheckPassword(pw string) bool
	IssueToken() string
	Authenticate(ctx context.Context, c usecase.Credentials) bool
	GenerateAPIKey(ctx context.Context) (string, error)
	ResetAPIKey(ctx context.Context) error
}

type authHandler struct {
	useCase    authUseCase
	sessions   *Sessions
	publicMode bool
}

func newAuthHandler(useCase authUseCase, sessions *Sessions, publicMode bool) *authHandler {
	return &authHandler{
		useCase:    useCase,
		sessions:   sessions,
		publicMode: publicMode,
	}
}

// credentials collects what r presents. Any x-api-key header, even an empty
// one, marks r as an API request.
func (h *authHandler) credentials(r *http.Request) usecase.Credentials {
	return usecase.Credentials{
		SessionToken: h.sessions.Token(r),
		APIKey:       r.Header.Get(apiKeyHeader),
		APIRequest:   len(r.Header.Values(apiKeyHeader)) > 0,
	}
}

func (h *authHandler) authorized(r *http.Request) bool {
	c := h.credentials(r)
	if h.useCase.Authenticate(r.Context(), c) {
		return true
	}

	method := metrics.AuthSession
	if c.APIRequest {
		method = metrics.AuthAPIKey
	}
	metrics.AuthFailuresTotal.WithLabelValues(method).Inc()

	return false
}

func (h *authHandler) requireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !h.authorized(r) {
			plainText(w, r, http.StatusUnauthorized, reasonNotLoggedIn)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// requireListAuth is requireAuth with the public mode hint in the body.
func (h *authHandler) requireListAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !h.authorized(r) {
			reason := reasonNotLoggedIn
			if h.publicMode {
				reason = reasonPublicMode
			}

			plainText(w, r, http.StatusUnauthorized, reason)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func (h *authHandler) login(w http.ResponseWriter, r *http.Request) {
	password, err := readBody(r, maxPasswordBytes)
	if err != nil {
		plainText(w, r, http.StatusBadRequest, reasonInvalidRequest)
		return
	}

	if !h.useCase.CheckPassword(password) {
		metrics.AuthFailuresTotal.WithLabelValues(metrics.AuthLogin).Inc()
		httplog.LogEntrySetField(r.Context(), "auth", slog.StringValue("failed login attempt"))

		plainText(w, r, http.StatusUnauthorized, reasonWrongPassword)
		return
	}

	if err := h.sessions.Set(w, h.useCase.IssueToken()); err != nil {
		httplog.LogEntrySetField(r.Context(), "err", slog.AnyValue(err))

		plainText(w, r, http.StatusInternalServerError, reasonServerError)
		return
	}

	plainText(w, r, http.StatusOK, reasonLoggedIn)
}

func (h *authHandler) logout(w http.ResponseWriter, r *http.Request) {
	if h.sessions.Token(r) == "" {
		plainText(w, r, http.StatusUnauthorized, reasonNoSession)
		return
	}

	h.sessions.Clear(w)
	plainText(w, r, http.StatusOK, reasonLoggedOut)
}

func (h *authHandler) generateAPIKey(w http.ResponseWriter, r *http.Request) {
	key, err := h.useCase.GenerateAPIKey(r.Context())
	if err != nil {
		httplog.LogEntrySetField(r.Context(), "err", slog.AnyValue(err))

		plainText(w, r, http.StatusConflict, reasonKeyError)
		return
	}

	plainText(w, r, http.StatusOK, key)
}

func (h *authHandler) resetAPIKey(w http.ResponseWriter, r *http.Request) {
	if err := h.useCase.ResetAPIKey(r.Context()); err != nil {
		httplog.LogEntrySetField(r.Context(), "err", slog.AnyValue(err))
	}

	plainText(w, r, http.StatusOK, reasonKeyReset)
}
