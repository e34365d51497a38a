package domain

import (
	"time"

	"github.com/google/uuid"
)

type TokenKind string

const (
	AccessToken  TokenKind = "access"
	RefreshToken TokenKind = "refresh"
)

func (k TokenKind) Valid() bool {
	return k == AccessToken || k == RefreshToken
}

// TokenPair is issued together on every login and refresh.
type TokenPair struct {
	AccessToken      string    `json:"-"`
	RefreshToken     string    `json:"-"`
	AccessExpiresAt  time.Time `json:"access_expires_at"`
	RefreshExpiresAt time.Time `json:"refresh_expires_at"`
}

type TokenClaims struct {
	UserID    uuid.UUID
	Kind      TokenKind
	ExpiresAt time.Time
}
