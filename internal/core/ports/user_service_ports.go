package ports

import (
	"context"

	"github.com/google/uuid"
	"github.com/vncsmyrnk/todo/internal/core/domain"
)

type UserService interface {
	GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error)
	UpdateUsername(ctx context.Context, id uuid.UUID, username string) (*domain.User, error)
}
