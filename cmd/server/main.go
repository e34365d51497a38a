package main

import (
	"context"
	"errors"
	"log/slog"
	stdhttp "net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/redis/go-redis/v9"
	"github.com/vncsmyrnk/todo/internal/adapters/handler/http"
	"github.com/vncsmyrnk/todo/internal/adapters/metrics"
	"github.com/vncsmyrnk/todo/internal/adapters/repository/postgres"
	sessionredis "github.com/vncsmyrnk/todo/internal/adapters/session/redis"
	"github.com/vncsmyrnk/todo/internal/adapters/token/jwt"
	"github.com/vncsmyrnk/todo/internal/config"
	"github.com/vncsmyrnk/todo/internal/core/services"
	"github.com/vncsmyrnk/todo/internal/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("invalid configuration", "error", err)
		os.Exit(1)
	}
	log := logger.New(cfg.LogLevel, os.Stdout)

	if err := run(cfg, log); err != nil {
		log.Error("server stopped", "error", err)
		os.Exit(1)
	}
}

func run(cfg config.Config, log *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := postgres.Open(ctx, cfg.DatabaseURL, postgres.PoolConfig{
		MaxOpenConns: cfg.DBMaxOpenConns,
		MaxIdleConns: cfg.DBMaxIdleConns,
	})
	if err != nil {
		return err
	}
	defer db.Close()

	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr(),
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	defer rdb.Close()

	codec, err := jwt.NewCodec(jwt.Config{
		Secret:     []byte(cfg.JWTSecret),
		AccessTTL:  cfg.AccessTokenTTL,
		RefreshTTL: cfg.RefreshTokenTTL,
		Issuer:     cfg.JWTIssuer,
	})
	if err != nil {
		return err
	}

	collector := metrics.New()
	registry := sessionredis.NewRegistry(rdb, cfg.RedisKeyPrefix)
	if err := registry.Ping(ctx); err != nil {
		log.Warn("session store not reachable at startup", "addr", cfg.RedisAddr(), "error", err)
	}

	userRepo := postgres.NewUserRepository(db)
	todoRepo := postgres.NewTodoRepository(db)

	sessionSvc := services.NewSessionService(codec, registry, collector, log, services.SessionOptions{
		StoreTimeout: cfg.StoreTimeout,
	})
	authSvc := services.NewAuthService(userRepo, sessionSvc, log)
	userSvc := services.NewUserService(userRepo)
	todoSvc := services.NewTodoService(todoRepo)

	handler := http.NewHandler(http.RouterConfig{
		Auth:  http.NewAuthHandler(authSvc, log, cfg.Production()),
		Users: http.NewUserHandler(userSvc, log),
		Todos: http.NewTodoHandler(todoSvc, log),
		Health: http.NewHealthHandler(map[string]http.ReadinessCheck{
			"postgres": db.PingContext,
			"redis":    registry.Ping,
		}, log),
		Sessions:       sessionSvc,
		Metrics:        collector,
		AllowedOrigins: cfg.AllowedOrigins,
		Logger:         log,
	})

	server := &stdhttp.Server{
		Addr:         cfg.HTTPAddr,
		Handler:      handler,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		IdleTimeout:  cfg.IdleTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("http server listening", "addr", cfg.HTTPAddr, "env", cfg.Env)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, stdhttp.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}
	log.Info("gracefully shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	return server.Shutdown(shutdownCtx)
}
