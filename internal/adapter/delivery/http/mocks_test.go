package http

import (
	"context"

	"github.com/stretchr/testify/mock"
	"github.com/vadimbarashkov/shortlink/internal/entity"
	"github.com/vadimbarashkov/shortlink/internal/usecase"
)

type MockLinkUseCase struct {
	mock.Mock
}

func (m *MockLinkUseCase) AddLink(ctx context.Context, shortCode, longURL string) (string, error) {
	args := m.Called(ctx, shortCode, longURL)
	return args.String(0), args.Error(1)
}

func (m *MockLinkUseCase) ResolveShortCode(ctx context.Context, shortCode string) (string, error) {
	args := m.Called(ctx, shortCode)
	return args.String(0), args.Error(1)
}

func (m *MockLinkUseCase) EditLink(ctx context.Context, shortCode, longURL string) (string, error) {
	args := m.Called(ctx, shortCode, longURL)
	return args.String(0), args.Error(1)
}

func (m *MockLinkUseCase) DeleteLink(ctx context.Context, shortCode string) error {
	args := m.Called(ctx, shortCode)
	return args.Error(0)
}

func (m *MockLinkUseCase) ListLinks(ctx context.Context) ([]entity.Link, error) {
	args := m.Called(ctx)
	links, _ := args.Get(0).([]entity.Link)
	return links, args.Error(1)
}

type MockAuthUseCase struct {
	mock.Mock
}

func (m *MockAuthUseCase) CheckPassword(pw string) bool {
	args := m.Called(pw)
	return args.Bool(0)
}

func (m *MockAuthUseCase) IssueToken() string {
	args := m.Called()
	return args.String(0)
}

func (m *MockAuthUseCase) Authenticate(ctx context.Context, c usecase.Credentials) bool {
	args := m.Called(ctx, c)
	return args.Bool(0)
}

func (m *MockAuthUseCase) GenerateAPIKey(ctx context.Context) (string, error) {
	args := m.Called(ctx)
	return args.String(0), args.Error(1)
}

func (m *MockAuthUseCase) ResetAPIKey(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}
