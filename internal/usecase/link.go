package usecase

import (
	"context"
	"errors"
	"fmt"

	"github.com/vadimbarashkov/shortlink/internal/entity"
	"github.com/vadimbarashkov/shortlink/internal/validate"
)

// linkRepository is the link store. Insert must fail with
// entity.ErrShortCodeExists when the code is taken; Find, UpdateURL and
// Delete report a missing code with entity.ErrLinkNotFound.
type linkRepository interface {
	Find(ctx context.Context, shortCode string) (*entity.Link, error)
	List(ctx context.Context) ([]entity.Link, error)
	Insert(ctx context.Context, shortCode, longURL string) error
	UpdateURL(ctx context.Context, shortCode, longURL string) error
	Delete(ctx context.Context, shortCode string) error
	IncrementHits(ctx context.Context, shortCode string) error
}

// linkCache keeps long URLs by short code. Any Get error counts as a miss.
// Set must refuse to store when the generation of shortCode is no longer gen;
// Invalidate drops the entry and moves the generation on.
type linkCache interface {
	Get(ctx context.Context, shortCode string) (string, error)
	Generation(ctx context.Context, shortCode string) (int64, error)
	Set(ctx context.Context, shortCode, longURL string, gen int64) error
	Invalidate(ctx context.Context, shortCode string) error
}

type codeGenerator interface {
	Generate() (string, error)
}

// LinkOption configures a LinkUseCase.
type LinkOption func(*LinkUseCase)

// WithLinkCache puts c in front of the store for resolutions.
func WithLinkCache(c linkCache) LinkOption {
	return func(uc *LinkUseCase) {
		uc.cache = c
	}
}

// LinkUseCase creates, edits, deletes and resolves links.
type LinkUseCase struct {
	linkRepo linkRepository
	gen      codeGenerator
	cache    linkCache
}

func NewLinkUseCase(linkRepo linkRepository, gen codeGenerator, opts ...LinkOption) *LinkUseCase {
	uc := &LinkUseCase{
		linkRepo: linkRepo,
		gen:      gen,
	}

	for _, opt := range opts {
		opt(uc)
	}

	return uc
}

// AddLink stores a new link and returns its short code. An empty shortCode
// is replaced by one generated candidate; a collision is reported as
// entity.ErrShortCodeConflict and never retried.
func (uc *LinkUseCase) AddLink(ctx context.Context, shortCode, longURL string) (string, error) {
	const op = "usecase.LinkUseCase.AddLink"

	if longURL == "" {
		return "", fmt.Errorf("%s: %w", op, entity.ErrInvalidRequest)
	}

	if !validate.LongURL(longURL) {
		return "", fmt.Errorf("%s: %w", op, entity.ErrInvalidURL)
	}

	if shortCode == "" {
		code, err := uc.gen.Generate()
		if err != nil {
			return "", fmt.Errorf("%s: failed to generate short code: %w", op, err)
		}
		shortCode = code
	}

	if !validate.ShortCode(shortCode) {
		return "", fmt.Errorf("%s: %w", op, entity.ErrShortCodeConflict)
	}

	_, err := uc.linkRepo.Find(ctx, shortCode)
	switch {
	case err == nil:
		return "", fmt.Errorf("%s: %w", op, entity.ErrShortCodeConflict)
	case !errors.Is(err, entity.ErrLinkNotFound):
		return "", fmt.Errorf("%s: %w: %w", op, entity.ErrStoreFailure, err)
	}

	if err := uc.linkRepo.Insert(ctx, shortCode, longURL); err != nil {
		if errors.Is(err, entity.ErrShortCodeExists) {
			return "", fmt.Errorf("%s: %w", op, entity.ErrShortCodeConflict)
		}

		return "", fmt.Errorf("%s: %w: %w", op, entity.ErrStoreFailure, err)
	}

	return shortCode, nil
}

// ResolveShortCode returns the long URL of shortCode and counts the hit.
// Malformed codes are reported as entity.ErrLinkNotFound without a store lookup.
func (uc *LinkUseCase) ResolveShortCode(ctx context.Context, shortCode string) (string, error) {
	const op = "usecase.LinkUseCase.ResolveShortCode"

	if !validate.ShortCode(shortCode) {
		return "", fmt.Errorf("%s: %w", op, entity.ErrLinkNotFound)
	}

	var (
		gen  int64
		fill bool
	)

	if uc.cache != nil {
		if longURL, err := uc.cache.Get(ctx, shortCode); err == nil && longURL != "" {
			if err := uc.linkRepo.IncrementHits(ctx, shortCode); err != nil {
				return "", fmt.Errorf("%s: %w: %w", op, entity.ErrStoreFailure, err)
			}
			return longURL, nil
		}

		// The generation is read before the store so that an edit landing in
		// between makes the fill below a no-op.
		if g, err := uc.cache.Generation(ctx, shortCode); err == nil {
			gen, fill = g, true
		}
	}

	link, err := uc.linkRepo.Find(ctx, shortCode)
	if err != nil {
		if errors.Is(err, entity.ErrLinkNotFound) {
			return "", fmt.Errorf("%s: %w", op, entity.ErrLinkNotFound)
		}

		return "", fmt.Errorf("%s: %w: %w", op, entity.ErrStoreFailure, err)
	}

	if err := uc.linkRepo.IncrementHits(ctx, shortCode); err != nil {
		return "", fmt.Errorf("%s: %w: %w", op, entity.ErrStoreFailure, err)
	}

	if fill {
		_ = uc.cache.Set(ctx, shortCode, link.LongURL, gen)
	}

	return link.LongURL, nil
}

// EditLink replaces the long URL of an existing link. Submitting the current
// long URL fails with entity.ErrNoChange and leaves the store untouched.
func (uc *LinkUseCase) EditLink(ctx context.Context, shortCode, longURL string) (string, error) {
	const op = "usecase.LinkUseCase.EditLink"

	if longURL == "" {
		return "", fmt.Errorf("%s: %w", op, entity.ErrInvalidRequest)
	}

	if !validate.LongURL(longURL) {
		return "", fmt.Errorf("%s: %w", op, entity.ErrInvalidURL)
	}

	if !validate.ShortCode(shortCode) {
		return "", fmt.Errorf("%s: %w", op, entity.ErrLinkNotFound)
	}

	link, err := uc.linkRepo.Find(ctx, shortCode)
	if err != nil {
		if errors.Is(err, entity.ErrLinkNotFound) {
			return "", fmt.Errorf("%s: %w", op, entity.ErrLinkNotFound)
		}

		return "", fmt.Errorf("%s: %w: %w", op, entity.ErrStoreFailure, err)
	}

	if link.LongURL == longURL {
		return "", fmt.Errorf("%s: %w", op, entity.ErrNoChange)
	}

	if err := uc.linkRepo.UpdateURL(ctx, shortCode, longURL); err != nil {
		if errors.Is(err, entity.ErrLinkNotFound) {
			return "", fmt.Errorf("%s: %w", op, entity.ErrLinkNotFound)
		}

		return "", fmt.Errorf("%s: %w: %w", op, entity.ErrStoreFailure, err)
	}

	uc.forget(ctx, shortCode)

	return shortCode, nil
}

// DeleteLink removes a link. Malformed and unknown codes both yield
// entity.ErrLinkNotFound.
func (uc *LinkUseCase) DeleteLink(ctx context.Context, shortCode string) error {
	const op = "usecase.LinkUseCase.DeleteLink"

	if !validate.ShortCode(shortCode) {
		return fmt.Errorf("%s: %w", op, entity.ErrLinkNotFound)
	}

	if err := uc.linkRepo.Delete(ctx, shortCode); err != nil {
		if errors.Is(err, entity.ErrLinkNotFound) {
			return fmt.Errorf("%s: %w", op, entity.ErrLinkNotFound)
		}

		return fmt.Errorf("%s: %w: %w", op, entity.ErrStoreFailure, err)
	}

	uc.forget(ctx, shortCode)

	return nil
}

// ListLinks returns every link in store order.
func (uc *LinkUseCase) ListLinks(ctx context.Context) ([]entity.Link, error) {
	const op = "usecase.LinkUseCase.ListLinks"

	links, err := uc.linkRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: %w: %w", op, entity.ErrStoreFailure, err)
	}

	return links, nil
}

func (uc *LinkUseCase) forget(ctx context.Context, shortCode string) {
	if uc.cache != nil {
		_ = uc.cache.Invalidate(ctx, shortCode)
	}
}
