package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/phrazzld/taskboard-api/internal/config"
	"github.com/phrazzld/taskboard-api/internal/domain"
	"github.com/phrazzld/taskboard-api/internal/platform/logger"
)

const (
	minSecretLength = 32
	clockLeeway     = 2 * time.Minute
)

// tokenClaims carries the actor identity alongside the registered claims.
type tokenClaims struct {
	UserID uuid.UUID `json:"uid"`
	Role   string    `json:"role"`
	jwt.RegisteredClaims
}

// hmacJWTService signs tokens with HS256 and rejects every other algorithm.
type hmacJWTService struct {
	key      []byte
	lifetime time.Duration
	now      func() time.Time
}

var _ JWTService = (*hmacJWTService)(nil)

// NewJWTService builds the token service from the auth settings.
func NewJWTService(cfg config.AuthConfig) (JWTService, error) {
	return newHMACJWTService(cfg.JWTSecret, cfg.TokenLifetime(), time.Now)
}

func newHMACJWTService(secret string, lifetime time.Duration, now func() time.Time) (*hmacJWTService, error) {
	switch {
	case len(secret) < minSecretLength:
		return nil, fmt.Errorf("jwt secret must be at least %d characters", minSecretLength)
	case lifetime <= 0:
		return nil, errors.New("token lifetime must be positive")
	}
	return &hmacJWTService{key: []byte(secret), lifetime: lifetime, now: now}, nil
}

// GenerateToken implements JWTService.
func (s *hmacJWTService) GenerateToken(ctx context.Context, actor domain.Actor) (string, error) {
	issued := s.now()
	claims := tokenClaims{
		UserID: actor.ID,
		Role:   string(actor.Role),
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   actor.ID.String(),
			IssuedAt:  jwt.NewNumericDate(issued),
			ExpiresAt: jwt.NewNumericDate(issued.Add(s.lifetime)),
		},
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.key)
	if err != nil {
		logger.FromContext(ctx).Error("failed to sign access token",
			slog.String("user_id", actor.ID.String()),
			slog.String("error", err.Error()))
		return "", fmt.Errorf("sign access token: %w", err)
	}
	return token, nil
}

// ValidateToken implements JWTService.
func (s *hmacJWTService) ValidateToken(ctx context.Context, raw string) (*Claims, error) {
	log := logger.FromContext(ctx)

	claims := &tokenClaims{}
	token, err := jwt.ParseWithClaims(raw, claims,
		func(*jwt.Token) (any, error) { return s.key, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Name}),
		jwt.WithExpirationRequired(),
		jwt.WithLeeway(clockLeeway),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		mapped := classifyParseError(err)
		log.Debug("rejected access token",
			slog.String("reason", mapped.Error()),
			slog.String("error", err.Error()))
		return nil, mapped
	}
	if !token.Valid || claims.UserID == uuid.Nil {
		log.Debug("rejected access token", slog.String("reason", "missing subject"))
		return nil, ErrInvalidToken
	}

	role, err := domain.ParseRole(claims.Role)
	if err != nil {
		log.Debug("rejected access token", slog.String("reason", "unknown role"), slog.String("role", claims.Role))
		return nil, ErrInvalidToken
	}

	out := &Claims{
		ID:        claims.ID,
		UserID:    claims.UserID,
		Role:      role,
		ExpiresAt: claims.ExpiresAt.Time,
	}
	if claims.IssuedAt != nil {
		out.IssuedAt = claims.IssuedAt.Time
	}
	return out, nil
}

func classifyParseError(err error) error {
	switch {
	case errors.Is(err, jwt.ErrTokenExpired):
		return ErrExpiredToken
	case errors.Is(err, jwt.ErrTokenNotValidYet):
		return ErrTokenNotYetValid
	default:
		return ErrInvalidToken
	}
}
