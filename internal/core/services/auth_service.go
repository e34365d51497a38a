package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/vncsmyrnk/todo/internal/core/domain"
	"github.com/vncsmyrnk/todo/internal/core/ports"
	"golang.org/x/crypto/bcrypt"
)

type AuthService struct {
	userRepo   ports.UserRepository
	sessions   ports.SessionService
	log        *slog.Logger
	bcryptCost int
}

var _ ports.AuthService = (*AuthService)(nil)

func NewAuthService(userRepo ports.UserRepository, sessions ports.SessionService, log *slog.Logger) *AuthService {
	if log == nil {
		log = slog.Default()
	}
	return &AuthService{
		userRepo:   userRepo,
		sessions:   sessions,
		log:        log,
		bcryptCost: bcrypt.DefaultCost,
	}
}

func (s *AuthService) Register(ctx context.Context, input ports.RegisterInput) (*domain.User, error) {
	username := strings.TrimSpace(input.Username)
	email := domain.NormalizeEmail(input.Email)
	if username == "" || email == "" || input.Password == "" {
		return nil, fmt.Errorf("%w: username, email and password are required", domain.ErrInvalidInput)
	}
	if domain.TooLong(username) || domain.TooLong(email) {
		return nil, fmt.Errorf("%w: username and email must be at most %d characters", domain.ErrInvalidInput, domain.MaxTextLength)
	}
	if len(input.Password) > domain.MaxPasswordBytes {
		return nil, fmt.Errorf("%w: password must be at most %d bytes", domain.ErrInvalidInput, domain.MaxPasswordBytes)
	}

	existing, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	if existing != nil {
		return nil, domain.ErrEmailTaken
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(input.Password), s.bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &domain.User{
		Email:        email,
		Username:     username,
		PasswordHash: string(hash),
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		if errors.Is(err, domain.ErrEmailTaken) {
			return nil, domain.ErrEmailTaken
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	s.log.Info("user registered", "user_id", user.ID)
	return user, nil
}

func (s *AuthService) Login(ctx context.Context, input ports.LoginInput) (domain.TokenPair, error) {
	email := domain.NormalizeEmail(input.Email)
	if email == "" || input.Password == "" {
		return domain.TokenPair{}, fmt.Errorf("%w: email and password are required", domain.ErrInvalidInput)
	}

	user, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		return domain.TokenPair{}, fmt.Errorf("failed to get user: %w", err)
	}
	if user == nil {
		return domain.TokenPair{}, domain.ErrUserNotFound
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(input.Password)); err != nil {
		return domain.TokenPair{}, domain.ErrInvalidCredentials
	}

	pair, err := s.sessions.GenerateTokens(ctx, user.ID)
	if err != nil {
		return domain.TokenPair{}, fmt.Errorf("failed to generate tokens: %w", err)
	}
	return pair, nil
}

func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (domain.TokenPair, error) {
	if refreshToken == "" {
		return domain.TokenPair{}, domain.ErrUnauthenticated
	}
	pair, ok := s.sessions.RefreshTokens(ctx, refreshToken)
	if !ok {
		return domain.TokenPair{}, domain.ErrUnauthenticated
	}
	return pair, nil
}

// Logout drops whichever of the two tokens the client still holds. Store
// failures are logged; the client is logged out regardless.
func (s *AuthService) Logout(ctx context.Context, accessToken, refreshToken string) error {
	for _, token := range []string{accessToken, refreshToken} {
		if token == "" {
			continue
		}
		if err := s.sessions.InvalidateToken(ctx, token); err != nil {
			s.log.Warn("failed to invalidate token on logout", "error", err)
		}
	}
	return nil
}
