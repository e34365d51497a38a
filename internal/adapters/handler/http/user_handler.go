package http

import (
	"log/slog"
	"net/http"

	"github.com/google/uuid"
	"github.com/vncsmyrnk/todo/internal/core/domain"
	"github.com/vncsmyrnk/todo/internal/core/ports"
)

type UserHandler struct {
	service ports.UserService
	log     *slog.Logger
}

func NewUserHandler(service ports.UserService, log *slog.Logger) *UserHandler {
	return &UserHandler{
		service: service,
		log:     log,
	}
}

type userResponse struct {
	ID       uuid.UUID `json:"id"`
	Username string    `json:"username"`
	Email    string    `json:"email"`
}

type updateUserRequest struct {
	Username string `json:"username"`
}

func newUserResponse(u *domain.User) userResponse {
	return userResponse{ID: u.ID, Username: u.Username, Email: u.Email}
}

func (h *UserHandler) GetMe(w http.ResponseWriter, r *http.Request) {
	userID, ok := UserIDFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	user, err := h.service.GetByID(r.Context(), userID)
	if err != nil {
		writeServiceError(w, r, h.log, err)
		return
	}

	writeJSON(w, http.StatusOK, newUserResponse(user))
}

func (h *UserHandler) UpdateMe(w http.ResponseWriter, r *http.Request) {
	userID, ok := UserIDFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	var req updateUserRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeServiceError(w, r, h.log, err)
		return
	}

	user, err := h.service.UpdateUsername(r.Context(), userID, req.Username)
	if err != nil {
		writeServiceError(w, r, h.log, err)
		return
	}

	writeJSON(w, http.StatusOK, newUserResponse(user))
}
