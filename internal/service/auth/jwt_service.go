package auth

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/taskboard-api/internal/domain"
)

// JWTService issues and validates signed access tokens.
type JWTService interface {
	// GenerateToken creates a signed access token for the actor.
	GenerateToken(ctx context.Context, actor domain.Actor) (string, error)

	// ValidateToken verifies the token signature and time claims and returns
	// the claims. Returns ErrExpiredToken, ErrTokenNotYetValid or ErrInvalidToken.
	ValidateToken(ctx context.Context, tokenString string) (*Claims, error)
}

// Claims is the validated content of an access token.
type Claims struct {
	UserID    uuid.UUID
	Role      domain.Role
	IssuedAt  time.Time
	ExpiresAt time.Time
	ID        string
}

// Actor returns the identity the token was issued for.
func (c *Claims) Actor() domain.Actor {
	return domain.Actor{ID: c.UserID, Role: c.Role}
}
