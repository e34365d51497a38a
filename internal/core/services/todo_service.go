package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/vncsmyrnk/todo/internal/core/domain"
	"github.com/vncsmyrnk/todo/internal/core/ports"
)

type TodoService struct {
	repo ports.TodoRepository
}

func NewTodoService(repo ports.TodoRepository) ports.TodoService {
	return &TodoService{repo: repo}
}

func (s *TodoService) List(ctx context.Context, userID uuid.UUID) ([]*domain.Todo, error) {
	todos, err := s.repo.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list todos: %w", err)
	}
	if todos == nil {
		todos = []*domain.Todo{}
	}
	return todos, nil
}

func (s *TodoService) Create(ctx context.Context, userID uuid.UUID, input ports.CreateTodoInput) (*domain.Todo, error) {
	if input.Title == nil || strings.TrimSpace(*input.Title) == "" {
		return nil, fmt.Errorf("%w: title is required", domain.ErrInvalidInput)
	}
	if input.Description == nil {
		return nil, fmt.Errorf("%w: description is required", domain.ErrInvalidInput)
	}
	if domain.TooLong(strings.TrimSpace(*input.Title)) {
		return nil, fmt.Errorf("%w: title is too long", domain.ErrInvalidInput)
	}

	status := domain.StatusTodo
	if input.Status != nil {
		status = domain.TodoStatus(*input.Status)
		if !status.Valid() {
			return nil, domain.ErrInvalidStatus
		}
	}

	todo := &domain.Todo{
		UserID:      userID,
		Title:       strings.TrimSpace(*input.Title),
		Description: *input.Description,
		Status:      status,
	}
	if err := s.repo.Create(ctx, todo); err != nil {
		return nil, fmt.Errorf("failed to create todo: %w", err)
	}
	return todo, nil
}

// Update applies a partial change to a todo the user owns. A todo owned by
// someone else is reported as not found.
func (s *TodoService) Update(ctx context.Context, userID, todoID uuid.UUID, input ports.UpdateTodoInput) (*domain.Todo, error) {
	patch := domain.TodoPatch{
		Description: input.Description,
	}
	if input.Title != nil {
		title := strings.TrimSpace(*input.Title)
		if title == "" {
			return nil, fmt.Errorf("%w: title cannot be blank", domain.ErrInvalidInput)
		}
		if domain.TooLong(title) {
			return nil, fmt.Errorf("%w: title is too long", domain.ErrInvalidInput)
		}
		patch.Title = &title
	}
	if input.Status != nil {
		status := domain.TodoStatus(*input.Status)
		if !status.Valid() {
			return nil, domain.ErrInvalidStatus
		}
		patch.Status = &status
	}
	if patch.Empty() {
		return nil, domain.ErrNoFieldsToUpdate
	}

	todo, err := s.repo.UpdateOwned(ctx, todoID, userID, patch)
	if err != nil {
		return nil, fmt.Errorf("failed to update todo: %w", err)
	}
	if todo == nil {
		return nil, domain.ErrTodoNotFound
	}
	return todo, nil
}

func (s *TodoService) Delete(ctx context.Context, userID, todoID uuid.UUID) error {
	todo, err := s.repo.GetByID(ctx, todoID)
	if err != nil {
		return fmt.Errorf("failed to get todo: %w", err)
	}
	if todo == nil {
		return domain.ErrTodoNotFound
	}
	if todo.UserID != userID {
		return domain.ErrNotTodoOwner
	}

	if err := s.repo.Delete(ctx, todoID); err != nil {
		return fmt.Errorf("failed to delete todo: %w", err)
	}
	return nil
}
