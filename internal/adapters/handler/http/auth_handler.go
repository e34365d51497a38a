package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/vncsmyrnk/todo/internal/core/domain"
	"github.com/vncsmyrnk/todo/internal/core/ports"
)

const (
	accessTokenCookie  = "accessToken"
	refreshTokenCookie = "refreshToken"
)

type AuthHandler struct {
	authService  ports.AuthService
	log          *slog.Logger
	cookieSecure bool
}

func NewAuthHandler(authService ports.AuthService, log *slog.Logger, cookieSecure bool) *AuthHandler {
	return &AuthHandler{
		authService:  authService,
		log:          log,
		cookieSecure: cookieSecure,
	}
}

type registerRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type sessionResponse struct {
	Message          string    `json:"message"`
	AccessExpiresAt  time.Time `json:"access_expires_at"`
	RefreshExpiresAt time.Time `json:"refresh_expires_at"`
}

// Register godoc
// @Summary      Creates a user account
// @Description  Registers a user with a unique email. No session is started.
// @Tags         auth
// @Accept       json
// @Produce      json
// @Success      201
// @Failure      400
// @Failure      409
// @Router       /auth [post]
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeServiceError(w, r, h.log, err)
		return
	}

	user, err := h.authService.Register(r.Context(), ports.RegisterInput{
		Username: req.Username,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		writeServiceError(w, r, h.log, err)
		return
	}

	writeJSON(w, http.StatusCreated, user)
}

// Login godoc
// @Summary      Logs a user in
// @Description  Checks the credentials and sets the access and refresh token cookies.
// @Tags         auth
// @Accept       json
// @Produce      json
// @Success      200
// @Failure      400
// @Failure      401
// @Failure      404
// @Router       /auth/login [post]
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeServiceError(w, r, h.log, err)
		return
	}

	pair, err := h.authService.Login(r.Context(), ports.LoginInput{
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		writeServiceError(w, r, h.log, err)
		return
	}

	h.setSessionCookies(w, pair)
	writeJSON(w, http.StatusOK, sessionResponse{
		Message:          "logged in",
		AccessExpiresAt:  pair.AccessExpiresAt,
		RefreshExpiresAt: pair.RefreshExpiresAt,
	})
}

// Refresh godoc
// @Summary      Rotates the authenticated user's session
// @Description  Consumes the refresh token cookie and sets a new pair of cookies. Every access token of the user is revoked. On failure both cookies are cleared.
// @Tags         auth
// @Produce      json
// @Success      200
// @Failure      401
// @Router       /auth/refresh [get]
func (h *AuthHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	var token string
	if cookie, err := r.Cookie(refreshTokenCookie); err == nil {
		token = cookie.Value
	}

	pair, err := h.authService.Refresh(r.Context(), token)
	if err != nil {
		h.expireCookies(w)
		writeServiceError(w, r, h.log, err)
		return
	}

	h.setSessionCookies(w, pair)
	writeJSON(w, http.StatusOK, sessionResponse{
		Message:          "session refreshed",
		AccessExpiresAt:  pair.AccessExpiresAt,
		RefreshExpiresAt: pair.RefreshExpiresAt,
	})
}

// Logout godoc
// @Summary      Logs the authenticated user out
// @Description  Invalidates the presented access and refresh tokens and clears both cookies
// @Tags         auth
// @Produce      json
// @Success      200
// @Router       /auth/logout [post]
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	var access, refresh string
	if cookie, err := r.Cookie(accessTokenCookie); err == nil {
		access = cookie.Value
	}
	if cookie, err := r.Cookie(refreshTokenCookie); err == nil {
		refresh = cookie.Value
	}
	_ = h.authService.Logout(r.Context(), access, refresh)

	h.expireCookies(w)
	writeJSON(w, http.StatusOK, map[string]string{"message": "logged out"})
}

func (h *AuthHandler) setSessionCookies(w http.ResponseWriter, pair domain.TokenPair) {
	h.setCookie(w, accessTokenCookie, pair.AccessToken, pair.AccessExpiresAt)
	h.setCookie(w, refreshTokenCookie, pair.RefreshToken, pair.RefreshExpiresAt)
}

func (h *AuthHandler) setCookie(w http.ResponseWriter, name, value string, expiresAt time.Time) {
	maxAge := int(time.Until(expiresAt).Seconds())
	if maxAge <= 0 {
		maxAge = -1
	}
	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		HttpOnly: true,
		Secure:   h.cookieSecure,
		SameSite: http.SameSiteStrictMode,
		MaxAge:   maxAge,
	})
}

func (h *AuthHandler) expireCookies(w http.ResponseWriter) {
	for _, name := range []string{accessTokenCookie, refreshTokenCookie} {
		http.SetCookie(w, &http.Cookie{
			Name:     name,
			Path:     "/",
			HttpOnly: true,
			Secure:   h.cookieSecure,
			SameSite: http.SameSiteStrictMode,
			MaxAge:   -1,
		})
	}
}
