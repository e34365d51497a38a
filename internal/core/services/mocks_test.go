package services

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
	"github.com/vncsmyrnk/todo/internal/core/domain"
)

type mockUserRepo struct {
	mock.Mock
}

func (m *mockUserRepo) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *mockUserRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *mockUserRepo) Create(ctx context.Context, user *domain.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *mockUserRepo) UpdateUsername(ctx context.Context, id uuid.UUID, username string) (*domain.User, error) {
	args := m.Called(ctx, id, username)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

type mockSessions struct {
	mock.Mock
}

func (m *mockSessions) GenerateTokens(ctx context.Context, userID uuid.UUID) (domain.TokenPair, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).(domain.TokenPair), args.Error(1)
}

func (m *mockSessions) VerifyToken(ctx context.Context, token string) (uuid.UUID, bool) {
	args := m.Called(ctx, token)
	return args.Get(0).(uuid.UUID), args.Bool(1)
}

func (m *mockSessions) VerifyAccessToken(ctx context.Context, token string) (uuid.UUID, bool) {
	args := m.Called(ctx, token)
	return args.Get(0).(uuid.UUID), args.Bool(1)
}

func (m *mockSessions) InvalidateToken(ctx context.Context, token string) error {
	args := m.Called(ctx, token)
	return args.Error(0)
}

func (m *mockSessions) RefreshTokens(ctx context.Context, refreshToken string) (domain.TokenPair, bool) {
	args := m.Called(ctx, refreshToken)
	return args.Get(0).(domain.TokenPair), args.Bool(1)
}

func (m *mockSessions) RevokeAll(ctx context.Context, userID uuid.UUID) (int64, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).(int64), args.Error(1)
}

type mockTodoRepo struct {
	mock.Mock
}

func (m *mockTodoRepo) ListByUser(ctx context.Context, userID uuid.UUID) ([]*domain.Todo, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Todo), args.Error(1)
}

func (m *mockTodoRepo) Create(ctx context.Context, todo *domain.Todo) error {
	args := m.Called(ctx, todo)
	return args.Error(0)
}

func (m *mockTodoRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Todo, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Todo), args.Error(1)
}

func (m *mockTodoRepo) UpdateOwned(ctx context.Context, id, userID uuid.UUID, patch domain.TodoPatch) (*domain.Todo, error) {
	args := m.Called(ctx, id, userID, patch)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Todo), args.Error(1)
}

func (m *mockTodoRepo) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}
