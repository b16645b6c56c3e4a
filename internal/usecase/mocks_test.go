package usecase

import (
	"context"

	"github.com/stretchr/testify/mock"
	"github.com/vadimbarashkov/shortlink/internal/entity"
)

type MockLinkRepository struct {
	mock.Mock
}

func (r *MockLinkRepository) Find(ctx context.Context, shortCode string) (*entity.Link, error) {
	args := r.Called(ctx, shortCode)
	link, _ := args.Get(0).(*entity.Link)
	return link, args.Error(1)
}

func (r *MockLinkRepository) List(ctx context.Context) ([]entity.Link, error) {
	args := r.Called(ctx)
	links, _ := args.Get(0).([]entity.Link)
	return links, args.Error(1)
}

func (r *MockLinkRepository) Insert(ctx context.Context, shortCode, longURL string) error {
	args := r.Called(ctx, shortCode, longURL)
	return args.Error(0)
}

func (r *MockLinkRepository) UpdateURL(ctx context.Context, shortCode, longURL string) error {
	args := r.Called(ctx, shortCode, longURL)
	return args.Error(0)
}

func (r *MockLinkRepository) Delete(ctx context.Context, shortCode string) error {
	args := r.Called(ctx, shortCode)
	return args.Error(0)
}

func (r *MockLinkRepository) IncrementHits(ctx context.Context, shortCode string) error {
	args := r.Called(ctx, shortCode)
	return args.Error(0)
}

type MockLinkCache struct {
	mock.Mock
}

func (c *MockLinkCache) Get(ctx context.Context, shortCode string) (string, error) {
	args := c.Called(ctx, shortCode)
	return args.String(0), args.Error(1)
}

func (c *MockLinkCache) Generation(ctx context.Context, shortCode string) (int64, error) {
	args := c.Called(ctx, shortCode)
	gen, _ := args.Get(0).(int64)
	return gen, args.Error(1)
}

func (c *MockLinkCache) Set(ctx context.Context, shortCode, longURL string, gen int64) error {
	args := c.Called(ctx, shortCode, longURL, gen)
	return args.Error(0)
}

func (c *MockLinkCache) Invalidate(ctx context.Context, shortCode string) error {
	args := c.Called(ctx, shortCode)
	return args.Error(0)
}

type MockCodeGenerator struct {
	mock.Mock
}

func (g *MockCodeGenerator) Generate() (string, error) {
	args := g.Called()
	return args.String(0), args.Error(1)
}

type MockAPIKeyRepository struct {
	mock.Mock
}

func (r *MockAPIKeyRepository) Get(ctx context.Context) (string, error) {
	args := r.Called(ctx)
	return args.String(0), args.Error(1)
}

func (r *MockAPIKeyRepository) Put(ctx context.Context, digest string) error {
	args := r.Called(ctx, digest)
	return args.Error(0)
}

func (r *MockAPIKeyRepository) Clear(ctx context.Context) error {
	args := r.Called(ctx)
	return args.Error(0)
}
