package http

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vncsmyrnk/todo/internal/adapters/metrics"
	sessionredis "github.com/vncsmyrnk/todo/internal/adapters/session/redis"
	"github.com/vncsmyrnk/todo/internal/adapters/token/jwt"
	"github.com/vncsmyrnk/todo/internal/core/domain"
	"github.com/vncsmyrnk/todo/internal/core/services"
)

type testApp struct {
	handler  http.Handler
	redis    *miniredis.Miniredis
	sessions *services.SessionService
	todos    *memoryTodoRepo
}

func setupTestApp(t *testing.T, checks map[string]ReadinessCheck) *testApp {
	t.Helper()

	log := slog.New(slog.NewTextHandler(io.Discard, nil))

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	codec, err := jwt.NewCodec(jwt.Config{
		Secret:     []byte("test-secret"),
		AccessTTL:  12 * time.Hour,
		RefreshTTL: 24 * time.Hour,
		Issuer:     "todo-test",
	})
	require.NoError(t, err)

	collector := metrics.New()
	registry := sessionredis.NewRegistry(client, "test")
	sessions := services.NewSessionService(codec, registry, collector, log, services.SessionOptions{})

	users := newMemoryUserRepo()
	todos := newMemoryTodoRepo()

	if checks == nil {
		checks = map[string]ReadinessCheck{"redis": registry.Ping}
	}

	handler := NewHandler(RouterConfig{
		Auth:           NewAuthHandler(services.NewAuthService(users, sessions, log), log, false),
		Users:          NewUserHandler(services.NewUserService(users), log),
		Todos:          NewTodoHandler(services.NewTodoService(todos), log),
		Health:         NewHealthHandler(checks, log),
		Sessions:       sessions,
		Metrics:        collector,
		AllowedOrigins: []string{"http://localhost:3000"},
		Logger:         log,
	})

	return &testApp{handler: handler, redis: mr, sessions: sessions, todos: todos}
}

func (a *testApp) do(t *testing.T, method, path string, body any, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader
	if body != nil {
		raw, ok := body.(string)
		if !ok {
			b, err := json.Marshal(body)
			require.NoError(t, err)
			raw = string(b)
		}
		reader = bytes.NewBufferString(raw)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for _, c := range cookies {
		req.AddCookie(c)
	}

	rec := httptest.NewRecorder()
	a.handler.ServeHTTP(rec, req)
	return rec
}

func cookiesByName(rec *httptest.ResponseRecorder) map[string]*http.Cookie {
	out := map[string]*http.Cookie{}
	for _, c := range rec.Result().Cookies() {
		out[c.Name] = c
	}
	return out
}

func decodeBody[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

// registerAndLogin returns the access and refresh cookies of a fresh user.
func (a *testApp) registerAndLogin(t *testing.T, email string) (*http.Cookie, *http.Cookie) {
	t.Helper()

	rec := a.do(t, http.MethodPost, "/auth", map[string]string{
		"username": "user", "email": email, "password": "hunter2",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = a.do(t, http.MethodPost, "/auth/login", map[string]string{"email": email, "password": "hunter2"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	cookies := cookiesByName(rec)
	require.Contains(t, cookies, accessTokenCookie)
	require.Contains(t, cookies, refreshTokenCookie)
	return cookies[accessTokenCookie], cookies[refreshTokenCookie]
}

func TestFullScenario(t *testing.T) {
	app := setupTestApp(t, nil)

	// register
	rec := app.do(t, http.MethodPost, "/auth", map[string]string{
		"username": "alice", "email": "alice@example.com", "password": "pw",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	created := decodeBody[map[string]any](t, rec)
	assert.NotEmpty(t, created["id"])
	assert.NotContains(t, created, "password_hash")
	assert.NotContains(t, rec.Body.String(), "pw\"")

	rec = app.do(t, http.MethodPost, "/auth", map[string]string{
		"username": "alice2", "email": "alice@example.com", "password": "other",
	})
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = app.do(t, http.MethodPost, "/auth", map[string]string{"username": "x", "email": "x@example.com"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = app.do(t, http.MethodPost, "/auth", "{not json")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	// login
	rec = app.do(t, http.MethodPost, "/auth/login", map[string]string{"email": "alice@example.com", "password": "nope"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Empty(t, rec.Result().Cookies())

	rec = app.do(t, http.MethodPost, "/auth/login", map[string]string{"email": "nobody@example.com", "password": "pw"})
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = app.do(t, http.MethodPost, "/auth/login", map[string]string{"email": "alice@example.com", "password": "pw"})
	require.Equal(t, http.StatusOK, rec.Code)
	cookies := cookiesByName(rec)
	require.Len(t, cookies, 2)
	access := cookies[accessTokenCookie]
	for _, c := range cookies {
		assert.True(t, c.HttpOnly, c.Name)
		assert.Equal(t, http.SameSiteStrictMode, c.SameSite, c.Name)
		assert.Equal(t, "/", c.Path, c.Name)
		assert.Positive(t, c.MaxAge, c.Name)
	}
	assert.Greater(t, cookies[refreshTokenCookie].MaxAge, access.MaxAge)

	// todos require a session
	rec = app.do(t, http.MethodGet, "/todos", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, decodeBody[map[string]string](t, rec), "error")

	rec = app.do(t, http.MethodPost, "/todos", map[string]string{"title": "Buy milk", "description": ""}, access)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	todo := decodeBody[domain.Todo](t, rec)
	assert.Equal(t, "Buy milk", todo.Title)
	assert.Equal(t, domain.StatusTodo, todo.Status)

	rec = app.do(t, http.MethodPost, "/todos", map[string]string{"title": "No description"}, access)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = app.do(t, http.MethodPost, "/todos", map[string]string{"title": "t", "description": "d", "status": "later"}, access)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	path := "/todos/" + todo.ID.String()
	rec = app.do(t, http.MethodPatch, path, map[string]string{"status": "done"}, access)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, domain.StatusDone, decodeBody[domain.Todo](t, rec).Status)

	rec = app.do(t, http.MethodPatch, path, map[string]string{}, access)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = app.do(t, http.MethodPatch, path, map[string]string{"status": "archived"}, access)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = app.do(t, http.MethodPatch, "/todos/not-a-uuid", map[string]string{"status": "done"}, access)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = app.do(t, http.MethodGet, "/todos", nil, access)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decodeBody[[]domain.Todo](t, rec), 1)

	rec = app.do(t, http.MethodDelete, path, nil, access)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = app.do(t, http.MethodGet, "/todos", nil, access)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, "[]", rec.Body.String())
}

func TestOwnershipIsolation(t *testing.T) {
	app := setupTestApp(t, nil)
	aliceAccess, _ := app.registerAndLogin(t, "alice@example.com")
	bobAccess, _ := app.registerAndLogin(t, "bob@example.com")

	rec := app.do(t, http.MethodPost, "/todos", map[string]string{"title": "secret", "description": "x"}, aliceAccess)
	require.Equal(t, http.StatusCreated, rec.Code)
	todo := decodeBody[domain.Todo](t, rec)
	path := "/todos/" + todo.ID.String()

	rec = app.do(t, http.MethodGet, "/todos", nil, bobAccess)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, "[]", rec.Body.String())

	rec = app.do(t, http.MethodPatch, path, map[string]string{"title": "mine now"}, bobAccess)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = app.do(t, http.MethodDelete, path, nil, bobAccess)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = app.do(t, http.MethodDelete, "/todos/"+"00000000-0000-0000-0000-000000000001", nil, bobAccess)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	stored, err := app.todos.GetByID(context.Background(), todo.ID)
	require.NoError(t, err)
	assert.Equal(t, "secret", stored.Title)
}

func TestRefreshRotatesCookies(t *testing.T) {
	app := setupTestApp(t, nil)
	access, refresh := app.registerAndLogin(t, "carol@example.com")

	rec := app.do(t, http.MethodGet, "/auth/refresh", nil, refresh)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	rotated := cookiesByName(rec)
	require.Contains(t, rotated, accessTokenCookie)
	require.Contains(t, rotated, refreshTokenCookie)
	assert.NotEqual(t, access.Value, rotated[accessTokenCookie].Value)
	assert.NotEqual(t, refresh.Value, rotated[refreshTokenCookie].Value)

	rec = app.do(t, http.MethodGet, "/todos", nil, access)
	assert.Equal(t, http.StatusUnauthorized, rec.Code, "old access token is revoked")

	rec = app.do(t, http.MethodGet, "/todos", nil, rotated[accessTokenCookie])
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = app.do(t, http.MethodGet, "/auth/refresh", nil, refresh)
	assert.Equal(t, http.StatusUnauthorized, rec.Code, "refresh tokens are single use")
	for _, c := range rec.Result().Cookies() {
		assert.Negative(t, c.MaxAge, "%s should be expired", c.Name)
	}
	assert.Len(t, rec.Result().Cookies(), 2)

	rec = app.do(t, http.MethodGet, "/auth/refresh", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRefreshTokenCannotAuthorizeResources(t *testing.T) {
	app := setupTestApp(t, nil)
	_, refresh := app.registerAndLogin(t, "dave@example.com")

	req := httptest.NewRequest(http.MethodGet, "/todos", nil)
	req.Header.Set("Authorization", "Bearer "+refresh.Value)
	rec := httptest.NewRecorder()
	app.handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestBearerTokenIsAccepted(t *testing.T) {
	app := setupTestApp(t, nil)
	access, _ := app.registerAndLogin(t, "erin@example.com")

	req := httptest.NewRequest(http.MethodGet, "/todos", nil)
	req.Header.Set("Authorization", "Bearer "+access.Value)
	rec := httptest.NewRecorder()
	app.handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestLogoutRevokesSession(t *testing.T) {
	app := setupTestApp(t, nil)
	access, refresh := app.registerAndLogin(t, "frank@example.com")

	rec := app.do(t, http.MethodPost, "/auth/logout", nil, access, refresh)
	require.Equal(t, http.StatusOK, rec.Code)
	for _, c := range rec.Result().Cookies() {
		assert.Negative(t, c.MaxAge)
	}

	rec = app.do(t, http.MethodGet, "/todos", nil, access)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = app.do(t, http.MethodGet, "/auth/refresh", nil, refresh)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = app.do(t, http.MethodPost, "/auth/logout", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestStoreOutageFailsClosed(t *testing.T) {
	app := setupTestApp(t, nil)
	access, _ := app.registerAndLogin(t, "gina@example.com")

	app.redis.Close()

	rec := app.do(t, http.MethodGet, "/todos", nil, access)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = app.do(t, http.MethodGet, "/readyz", nil)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestUsersEndpoints(t *testing.T) {
	app := setupTestApp(t, nil)
	access, _ := app.registerAndLogin(t, "heidi@example.com")

	rec := app.do(t, http.MethodGet, "/users", nil, access)
	require.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody[map[string]any](t, rec)
	assert.Equal(t, "heidi@example.com", body["email"])
	assert.Equal(t, "user", body["username"])
	assert.Len(t, body, 3)

	rec = app.do(t, http.MethodPatch, "/users", map[string]string{"username": "heidi"}, access)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "heidi", decodeBody[map[string]any](t, rec)["username"])

	rec = app.do(t, http.MethodPatch, "/users", map[string]string{"username": " "}, access)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = app.do(t, http.MethodGet, "/users", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestHealthEndpoints(t *testing.T) {
	app := setupTestApp(t, map[string]ReadinessCheck{
		"postgres": func(context.Context) error { return errors.New("connection refused") },
	})

	rec := app.do(t, http.MethodGet, "/healthz", nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = app.do(t, http.MethodGet, "/readyz", nil)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Equal(t, "unavailable", decodeBody[map[string]string](t, rec)["postgres"])

	rec = app.do(t, http.MethodGet, "/metrics", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "todo_http_requests_total")
}

func TestRequestBodyLimits(t *testing.T) {
	app := setupTestApp(t, nil)
	access, _ := app.registerAndLogin(t, "limits@example.com")

	huge := `{"title":"big","description":"` + strings.Repeat("a", maxBodyBytes) + `"}`
	rec := app.do(t, http.MethodPost, "/todos", huge, access)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "too large")

	rec = app.do(t, http.MethodPost, "/todos", map[string]string{
		"title":       strings.Repeat("t", domain.MaxTextLength+1),
		"description": "",
	}, access)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = app.do(t, http.MethodPatch, "/users", map[string]string{
		"username": strings.Repeat("u", domain.MaxTextLength+1),
	}, access)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCORSPreflight(t *testing.T) {
	app := setupTestApp(t, nil)

	req := httptest.NewRequest(http.MethodOptions, "/todos", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	rec := httptest.NewRecorder()
	app.handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "http://localhost:3000", rec.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "true", rec.Header().Get("Access-Control-Allow-Credentials"))
	assert.Equal(t, "600", rec.Header().Get("Access-Control-Max-Age"))
	assert.Empty(t, rec.Body.String(), "preflight never reaches the session guard")

	req = httptest.NewRequest(http.MethodGet, "/healthz", nil)
	req.Header.Set("Origin", "https://evil.example")
	rec = httptest.NewRecorder()
	app.handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))
}
