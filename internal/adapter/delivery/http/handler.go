package http

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/httplog/v2"
	"github.com/go-chi/render"
	"github.com/go-playground/validator/v10"
	"github.com/vadimbarashkov/shortlink/internal/entity"
	"github.com/vadimbarashkov/shortlink/internal/metrics"
)

//go:embed static/404.html
var notFoundPage []byte

type linkUseCase interface {
	AddLink(ctx context.Context, shortCode, longURL string) (string, error)
	ResolveShortCode(ctx context.Context, shortCode string) (string, error)
	EditLink(ctx context.Context, shortCode, longURL string) (string, error)
	DeleteLink(ctx context.Context, shortCode string) error
	ListLinks(ctx context.Context) ([]entity.Link, error)
}

type linkHandler struct {
	useCase           linkUseCase
	validate          *validator.Validate
	temporaryRedirect bool
}

func newLinkHandler(useCase linkUseCase, validate *validator.Validate, temporaryRedirect bool) *linkHandler {
	return &linkHandler{
		useCase:           useCase,
		validate:          validate,
		temporaryRedirect: temporaryRedirect,
	}
}

func (h *linkHandler) addLink(w http.ResponseWriter, r *http.Request) {
	var req addLinkRequest

	if err := render.DecodeJSON(r.Body, &req); err != nil {
		plainText(w, r, http.StatusConflict, reasonInvalidRequest)
		return
	}

	if err := h.validate.Struct(req); err != nil {
		plainText(w, r, http.StatusConflict, reasonFor(validationErr(err)))
		return
	}

	shortCode, err := h.useCase.AddLink(r.Context(), req.ShortCode, req.LongURL)
	if err != nil {
		if errors.Is(err, entity.ErrStoreFailure) {
			httplog.LogEntrySetField(r.Context(), "err", slog.AnyValue(err))
		}

		plainText(w, r, http.StatusConflict, reasonFor(err))
		return
	}

	metrics.LinksCreatedTotal.Inc()
	plainText(w, r, http.StatusCreated, shortCode)
}

func (h *linkHandler) listLinks(w http.ResponseWriter, r *http.Request) {
	links, err := h.useCase.ListLinks(r.Context())
	if err != nil {
		httplog.LogEntrySetField(r.Context(), "err", slog.AnyValue(err))

		plainText(w, r, http.StatusInternalServerError, reasonServerError)
		return
	}

	render.Status(r, http.StatusOK)
	render.JSON(w, r, toLinkResponses(links))
}

func (h *linkHandler) editLink(w http.ResponseWriter, r *http.Request) {
	var req editLinkRequest

	if err := render.DecodeJSON(r.Body, &req); err != nil {
		plainText(w, r, http.StatusConflict, reasonInvalidRequest)
		return
	}

	if err := h.validate.Struct(req); err != nil {
		plainText(w, r, http.StatusConflict, reasonFor(validationErr(err)))
		return
	}

	shortCode := chi.URLParam(r, "shortCode")

	shortCode, err := h.useCase.EditLink(r.Context(), shortCode, req.LongURL)
	if err != nil {
		if errors.Is(err, entity.ErrLinkNotFound) {
			plainText(w, r, http.StatusNotFound, reasonNotFound)
			return
		}

		if errors.Is(err, entity.ErrStoreFailure) {
			httplog.LogEntrySetField(r.Context(), "err", slog.AnyValue(err))
		}

		plainText(w, r, http.StatusConflict, reasonFor(err))
		return
	}

	plainText(w, r, http.StatusCreated, shortCode)
}

func (h *linkHandler) deleteLink(w http.ResponseWriter, r *http.Request) {
	shortCode := chi.URLParam(r, "shortCode")

	if err := h.useCase.DeleteLink(r.Context(), shortCode); err != nil {
		if !errors.Is(err, entity.ErrLinkNotFound) {
			httplog.LogEntrySetField(r.Context(), "err", slog.AnyValue(err))
		}

		plainText(w, r, http.StatusNotFound, reasonNotFound)
		return
	}

	plainText(w, r, http.StatusOK, fmt.Sprintf("Deleted %s", shortCode))
}

func (h *linkHandler) resolveShortCode(w http.ResponseWriter, r *http.Request) {
	shortCode := chi.URLParam(r, "shortCode")

	longURL, err := h.useCase.ResolveShortCode(r.Context(), shortCode)
	if err != nil {
		if !errors.Is(err, entity.ErrLinkNotFound) {
			httplog.LogEntrySetField(r.Context(), "err", slog.AnyValue(err))
		}

		handleNotFound(w, r)
		return
	}

	metrics.RedirectsTotal.Inc()

	status := http.StatusMovedPermanently
	if h.temporaryRedirect {
		status = http.StatusFound
	}

	http.Redirect(w, r, longURL, status)
}

func handleNotFound(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusNotFound)
	w.Write(notFoundPage)
}

func handleText(text string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		plainText(w, r, http.StatusOK, text)
	}
}

func plainText(w http.ResponseWriter, r *http.Request, status int, text string) {
	render.Status(r, status)
	render.PlainText(w, r, text)
}

func readBody(r *http.Request, limit int64) (string, error) {
	body, err := io.ReadAll(io.LimitReader(r.Body, limit))
	if err != nil {
		return "", err
	}

	return string(body), nil
}
