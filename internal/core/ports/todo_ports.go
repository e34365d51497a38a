package ports

import (
	"context"

	"github.com/google/uuid"
	"github.com/vncsmyrnk/todo/internal/core/domain"
)

// TodoRepository lookups return (nil, nil) when no todo matches.
type TodoRepository interface {
	ListByUser(ctx context.Context, userID uuid.UUID) ([]*domain.Todo, error)
	Create(ctx context.Context, todo *domain.Todo) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Todo, error)
	UpdateOwned(ctx context.Context, id, userID uuid.UUID, patch domain.TodoPatch) (*domain.Todo, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type CreateTodoInput struct {
	Title       *string
	Description *string
	Status      *string
}

type UpdateTodoInput struct {
	Title       *string
	Description *string
	Status      *string
}

type TodoService interface {
	List(ctx context.Context, userID uuid.UUID) ([]*domain.Todo, error)
	Create(ctx context.Context, userID uuid.UUID, input CreateTodoInput) (*domain.Todo, error)
	Update(ctx context.Context, userID, todoID uuid.UUID, input UpdateTodoInput) (*domain.Todo, error)
	Delete(ctx context.Context, userID, todoID uuid.UUID) error
}
