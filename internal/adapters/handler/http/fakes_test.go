package http

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/vncsmyrnk/todo/internal/core/domain"
)

type memoryUserRepo struct {
	mu    sync.Mutex
	users map[uuid.UUID]domain.User
}

func newMemoryUserRepo() *memoryUserRepo {
	return &memoryUserRepo{users: map[uuid.UUID]domain.User{}}
}

func (r *memoryUserRepo) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Email == email {
			return &u, nil
		}
	}
	return nil, nil
}

func (r *memoryUserRepo) GetByID(_ context.Context, id uuid.UUID) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return nil, nil
	}
	return &u, nil
}

func (r *memoryUserRepo) Create(_ context.Context, user *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Email == user.Email {
			return domain.ErrEmailTaken
		}
	}
	user.ID = uuid.New()
	user.CreatedAt = time.Now()
	user.UpdatedAt = user.CreatedAt
	r.users[user.ID] = *user
	return nil
}

func (r *memoryUserRepo) UpdateUsername(_ context.Context, id uuid.UUID, username string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return nil, nil
	}
	u.Username = username
	u.UpdatedAt = time.Now()
	r.users[id] = u
	return &u, nil
}

type memoryTodoRepo struct {
	mu    sync.Mutex
	todos map[uuid.UUID]domain.Todo
}

func newMemoryTodoRepo() *memoryTodoRepo {
	return &memoryTodoRepo{todos: map[uuid.UUID]domain.Todo{}}
}

func (r *memoryTodoRepo) ListByUser(_ context.Context, userID uuid.UUID) ([]*domain.Todo, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []*domain.Todo{}
	for _, t := range r.todos {
		if t.UserID == userID {
			t := t
			out = append(out, &t)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (r *memoryTodoRepo) Create(_ context.Context, todo *domain.Todo) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	todo.ID = uuid.New()
	todo.CreatedAt = time.Now()
	todo.UpdatedAt = todo.CreatedAt
	r.todos[todo.ID] = *todo
	return nil
}

func (r *memoryTodoRepo) GetByID(_ context.Context, id uuid.UUID) (*domain.Todo, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.todos[id]
	if !ok {
		return nil, nil
	}
	return &t, nil
}

func (r *memoryTodoRepo) UpdateOwned(_ context.Context, id, userID uuid.UUID, patch domain.TodoPatch) (*domain.Todo, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.todos[id]
	if !ok || t.UserID != userID {
		return nil, nil
	}
	if patch.Title != nil {
		t.Title = *patch.Title
	}
	if patch.Description != nil {
		t.Description = *patch.Description
	}
	if patch.Status != nil {
		t.Status = *patch.Status
	}
	t.UpdatedAt = time.Now()
	r.todos[id] = t
	return &t, nil
}

func (r *memoryTodoRepo) Delete(_ context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.todos[id]; !ok {
		return domain.ErrTodoNotFound
	}
	delete(r.todos, id)
	return nil
}
