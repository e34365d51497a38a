package domain

import "errors"

var (
	ErrInvalidInput       = errors.New("invalid input")
	ErrInvalidStatus      = errors.New("invalid todo status")
	ErrNoFieldsToUpdate   = errors.New("no fields to update")
	ErrUnauthenticated    = errors.New("unauthenticated")
	ErrInvalidCredentials = errors.New("email or password incorrect")
	ErrUserNotFound       = errors.New("user not found")
	ErrEmailTaken         = errors.New("user already exists")
	ErrTodoNotFound       = errors.New("todo not found")
	ErrNotTodoOwner       = errors.New("todo belongs to another user")
	ErrInternal           = errors.New("internal server error")
)

// Token codec failures. Callers outside the session layer never see these:
// verification collapses them into a single unauthenticated outcome.
var (
	ErrTokenInvalid = errors.New("token is invalid")
	ErrTokenExpired = errors.New("token has expired")
)
