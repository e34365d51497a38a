package ports

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/vncsmyrnk/todo/internal/core/domain"
)

// TokenCodec signs and verifies self-contained tokens. It performs no I/O.
type TokenCodec interface {
	Sign(userID uuid.UUID, kind domain.TokenKind) (string, time.Time, error)
	Verify(token string) (*domain.TokenClaims, error)
	TTL(kind domain.TokenKind) time.Duration
}

// SessionRegistry is the authority on whether an issued token is still honorable.
type SessionRegistry interface {
	Put(ctx context.Context, token, userID string, ttl time.Duration) error
	Exists(ctx context.Context, token string) (bool, error)
	Delete(ctx context.Context, token string) (int64, error)
	// Take atomically reads and removes a token entry. At most one caller
	// observes ok == true for a given token.
	Take(ctx context.Context, token string) (userID string, ok bool, err error)
	AddToUserSet(ctx context.Context, userID, token string, ttl time.Duration) error
	DeleteAllForUser(ctx context.Context, userID string) (int64, error)
}

type SessionMetrics interface {
	TokenIssued(kind domain.TokenKind)
	TokenVerified(ok bool)
	TokensRefreshed(ok bool)
}

type SessionService interface {
	GenerateTokens(ctx context.Context, userID uuid.UUID) (domain.TokenPair, error)
	VerifyToken(ctx context.Context, token string) (uuid.UUID, bool)
	VerifyAccessToken(ctx context.Context, token string) (uuid.UUID, bool)
	InvalidateToken(ctx context.Context, token string) error
	RefreshTokens(ctx context.Context, refreshToken string) (domain.TokenPair, bool)
	RevokeAll(ctx context.Context, userID uuid.UUID) (int64, error)
}
