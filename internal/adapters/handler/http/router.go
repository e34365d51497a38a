package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/vncsmyrnk/todo/internal/core/ports"
)

// MetricsExporter serves the metrics endpoint and wraps handlers with
// request instrumentation.
type MetricsExporter interface {
	Handler() http.Handler
	Instrument(next http.Handler) http.Handler
}

type RouterConfig struct {
	Auth     *AuthHandler
	Users    *UserHandler
	Todos    *TodoHandler
	Health   *HealthHandler
	Sessions ports.SessionService

	// Metrics, when set, serves /metrics and instruments every route.
	Metrics MetricsExporter

	AllowedOrigins []string
	Logger         *slog.Logger
}

func NewHandler(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(RequestLogger(cfg.Logger))
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPatch, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"Content-Type", "Authorization"},
		AllowCredentials: true,
		MaxAge:           600,
	}))
	if cfg.Metrics != nil {
		r.Use(cfg.Metrics.Instrument)
		r.Method(http.MethodGet, "/metrics", cfg.Metrics.Handler())
	}

	r.Get("/healthz", cfg.Health.Live)
	r.Get("/readyz", cfg.Health.Ready)

	r.Route("/auth", func(r chi.Router) {
		r.Post("/", cfg.Auth.Register)
		r.Post("/login", cfg.Auth.Login)
		r.Get("/refresh", cfg.Auth.Refresh)
		r.Post("/logout", cfg.Auth.Logout)
	})

	r.Group(func(r chi.Router) {
		r.Use(RequireSession(cfg.Sessions))

		r.Route("/todos", func(r chi.Router) {
			r.Get("/", cfg.Todos.List)
			r.Post("/", cfg.Todos.Create)
			r.Patch("/{id}", cfg.Todos.Update)
			r.Delete("/{id}", cfg.Todos.Delete)
		})

		r.Get("/users", cfg.Users.GetMe)
		r.Patch("/users", cfg.Users.UpdateMe)
	})

	return r
}
