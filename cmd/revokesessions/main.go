package main

import (
	"context"
	"flag"
	"log"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	sessionredis "github.com/vncsmyrnk/todo/internal/adapters/session/redis"
	"github.com/vncsmyrnk/todo/internal/config"
	"github.com/vncsmyrnk/todo/internal/logger"
)

func main() {
	var userIDFlag string
	var timeout time.Duration

	flag.StringVar(&userIDFlag, "user", "", "ID of the user whose access tokens are revoked")
	flag.DurationVar(&timeout, "timeout", time.Minute, "Deadline for the whole revocation")
	flag.Parse()

	userID, err := uuid.Parse(userIDFlag)
	if err != nil {
		log.Fatalf("a valid -user id is required: %v", err)
	}

	cfg, err := config.LoadRedis()
	if err != nil {
		log.Fatalf("Error loading config: %v", err)
	}

	slogger := logger.New("info", os.Stdout)

	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr(),
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	defer rdb.Close()

	registry := sessionredis.NewRegistry(rdb, cfg.RedisKeyPrefix)

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if err := registry.Ping(ctx); err != nil {
		log.Fatal(err)
	}

	slogger.Info("revoking access tokens", "user_id", userID, "addr", cfg.RedisAddr())

	n, err := registry.DeleteAllForUser(ctx, userID.String())
	if err != nil {
		log.Fatalf("Error revoking sessions: %v", err)
	}

	slogger.Info("revocation completed", "user_id", userID, "revoked", n)
}
