package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/vncsmyrnk/todo/internal/core/domain"
	"github.com/vncsmyrnk/todo/internal/core/ports"
)

const defaultStoreTimeout = 2 * time.Second

type SessionOptions struct {
	// StoreTimeout bounds every registry round trip.
	StoreTimeout time.Duration
}

type SessionService struct {
	codec    ports.TokenCodec
	registry ports.SessionRegistry
	metrics  ports.SessionMetrics
	log      *slog.Logger
	timeout  time.Duration
}

var _ ports.SessionService = (*SessionService)(nil)

func NewSessionService(codec ports.TokenCodec, registry ports.SessionRegistry, metrics ports.SessionMetrics, log *slog.Logger, opts SessionOptions) *SessionService {
	if metrics == nil {
		metrics = noopSessionMetrics{}
	}
	if log == nil {
		log = slog.Default()
	}
	timeout := opts.StoreTimeout
	if timeout <= 0 {
		timeout = defaultStoreTimeout
	}
	return &SessionService{
		codec:    codec,
		registry: registry,
		metrics:  metrics,
		log:      log,
		timeout:  timeout,
	}
}

func (s *SessionService) GenerateTokens(ctx context.Context, userID uuid.UUID) (domain.TokenPair, error) {
	access, accessExp, err := s.codec.Sign(userID, domain.AccessToken)
	if err != nil {
		return domain.TokenPair{}, err
	}
	refresh, refreshExp, err := s.codec.Sign(userID, domain.RefreshToken)
	if err != nil {
		return domain.TokenPair{}, err
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	uid := userID.String()
	accessTTL := s.codec.TTL(domain.AccessToken)
	if err := s.registry.Put(ctx, access, uid, accessTTL); err != nil {
		return domain.TokenPair{}, fmt.Errorf("failed to register access token: %w", err)
	}
	if err := s.registry.Put(ctx, refresh, uid, s.codec.TTL(domain.RefreshToken)); err != nil {
		s.discard(ctx, access)
		return domain.TokenPair{}, fmt.Errorf("failed to register refresh token: %w", err)
	}
	if err := s.registry.AddToUserSet(ctx, uid, access, accessTTL); err != nil {
		s.discard(ctx, access, refresh)
		return domain.TokenPair{}, fmt.Errorf("failed to track access token: %w", err)
	}

	s.metrics.TokenIssued(domain.AccessToken)
	s.metrics.TokenIssued(domain.RefreshToken)

	return domain.TokenPair{
		AccessToken:      access,
		RefreshToken:     refresh,
		AccessExpiresAt:  accessExp,
		RefreshExpiresAt: refreshExp,
	}, nil
}

// discard drops the entries of a pair that is never handed out. It gets its
// own deadline because the caller's may already be spent.
func (s *SessionService) discard(ctx context.Context, tokens ...string) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.timeout)
	defer cancel()

	for _, token := range tokens {
		if _, err := s.registry.Delete(ctx, token); err != nil {
			s.log.Warn("failed to discard unissued token", "error", err)
		}
	}
}

// VerifyToken accepts a token of either kind. It fails closed: codec
// rejections, registry misses and store errors all yield false.
func (s *SessionService) VerifyToken(ctx context.Context, token string) (uuid.UUID, bool) {
	claims, ok := s.verify(ctx, token)
	if !ok {
		return uuid.Nil, false
	}
	return claims.UserID, true
}

func (s *SessionService) VerifyAccessToken(ctx context.Context, token string) (uuid.UUID, bool) {
	claims, ok := s.verify(ctx, token)
	if !ok || claims.Kind != domain.AccessToken {
		return uuid.Nil, false
	}
	return claims.UserID, true
}

func (s *SessionService) verify(ctx context.Context, token string) (claims *domain.TokenClaims, ok bool) {
	defer func() { s.metrics.TokenVerified(ok) }()

	if token == "" {
		return nil, false
	}
	claims, err := s.codec.Verify(token)
	if err != nil {
		s.log.Debug("token rejected by codec", "error", err)
		return nil, false
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	exists, err := s.registry.Exists(ctx, token)
	if err != nil {
		s.log.Warn("session registry lookup failed", "error", err)
		return nil, false
	}
	if !exists {
		return nil, false
	}
	return claims, true
}

func (s *SessionService) InvalidateToken(ctx context.Context, token string) error {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	if _, err := s.registry.Delete(ctx, token); err != nil {
		return fmt.Errorf("failed to invalidate token: %w", err)
	}
	return nil
}

// RefreshTokens consumes a refresh token and mints a new pair. The refresh
// entry is removed with an atomic take, so of several concurrent callers
// presenting the same token only one gets a pair back.
func (s *SessionService) RefreshTokens(ctx context.Context, refreshToken string) (pair domain.TokenPair, ok bool) {
	defer func() { s.metrics.TokensRefreshed(ok) }()

	if refreshToken == "" {
		return domain.TokenPair{}, false
	}
	claims, err := s.codec.Verify(refreshToken)
	if err != nil || claims.Kind != domain.RefreshToken {
		return domain.TokenPair{}, false
	}

	takeCtx, cancel := context.WithTimeout(ctx, s.timeout)
	owner, taken, err := s.registry.Take(takeCtx, refreshToken)
	cancel()
	if err != nil {
		s.log.Warn("session registry take failed", "error", err)
		return domain.TokenPair{}, false
	}
	if !taken || owner != claims.UserID.String() {
		return domain.TokenPair{}, false
	}

	if _, err := s.RevokeAll(ctx, claims.UserID); err != nil {
		s.log.Warn("failed to revoke access tokens on refresh", "user_id", owner, "error", err)
		return domain.TokenPair{}, false
	}

	pair, err = s.GenerateTokens(ctx, claims.UserID)
	if err != nil {
		s.log.Warn("failed to issue tokens on refresh", "user_id", owner, "error", err)
		return domain.TokenPair{}, false
	}
	return pair, true
}

func (s *SessionService) RevokeAll(ctx context.Context, userID uuid.UUID) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	n, err := s.registry.DeleteAllForUser(ctx, userID.String())
	if err != nil {
		return 0, fmt.Errorf("failed to revoke sessions: %w", err)
	}
	return n, nil
}

type noopSessionMetrics struct{}

func (noopSessionMetrics) TokenIssued(domain.TokenKind) {}
func (noopSessionMetrics) TokenVerified(bool) {}
func (noopSessionMetrics) TokensRefreshed(bool) {}
