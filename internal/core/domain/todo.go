package domain

import (
	"time"

	"github.com/google/uuid"
)

type TodoStatus string

const (
	StatusTodo       TodoStatus = "todo"
	StatusInProgress TodoStatus = "in_progress"
	StatusDone       TodoStatus = "done"
)

func (s TodoStatus) Valid() bool {
	switch s {
	case StatusTodo, StatusInProgress, StatusDone:
		return true
	}
	return false
}

type Todo struct {
	ID          uuid.UUID  `json:"id"`
	UserID      uuid.UUID  `json:"user_id"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Status      TodoStatus `json:"status"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// TodoPatch carries the fields of a partial update. Nil means unchanged.
type TodoPatch struct {
	Title       *string
	Description *string
	Status      *TodoStatus
}

func (p TodoPatch) Empty() bool {
	return p.Title == nil && p.Description == nil && p.Status == nil
}
