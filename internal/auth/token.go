package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go-shop/internal/apperr"
	"go-shop/internal/user"

	"github.com/redis/go-redis/v9"
)

// UserFinder resolves the subject of a token.
type UserFinder interface {
	GetByID(ctx context.Context, id uint) (*user.User, error)
}

// TokenService issues, verifies and revokes bearer tokens.
type TokenService struct {
	secret string
	ttl    time.Duration
	rdb    *redis.Client
	users  UserFinder
}

func NewTokenService(secret string, ttl time.Duration, rdb *redis.Client, users UserFinder) *TokenService {
	return &TokenService{secret: secret, ttl: ttl, rdb: rdb, users: users}
}

func (s *TokenService) TTL() time.Duration {
	return s.ttl
}

func (s *TokenService) Issue(u *user.User) (string, error) {
	token, err := GenerateJWT(s.secret, u.ID, u.Role, s.ttl)
	if err != nil {
		return "", fmt.Errorf("issue token: %w", err)
	}
	return token, nil
}

// Verify returns the current state of the user the token was issued to.
func (s *TokenService) Verify(ctx context.Context, token string) (*user.User, error) {
	claims, err := ParseJWT(s.secret, token)
	if err != nil {
		return nil, apperr.ErrInvalidToken
	}
	id, err := claims.UserID()
	if err != nil {
		return nil, apperr.ErrInvalidToken
	}
	revoked, err := IsRevoked(ctx, s.rdb, claims.ID)
	if err != nil {
		return nil, fmt.Errorf("check revocation: %w", err)
	}
	if revoked {
		return nil, apperr.ErrInvalidToken
	}
	u, err := s.users.GetByID(ctx, id)
	if errors.Is(err, apperr.ErrNotFound) {
		return nil, apperr.ErrInvalidToken
	}
	if err != nil {
		return nil, err
	}
	return u, nil
}

// Invalidate revokes token. Other tokens of the same user stay valid.
func (s *TokenService) Invalidate(ctx context.Context, token string) error {
	claims, err := ParseJWT(s.secret, token)
	if err != nil {
		return apperr.ErrInvalidToken
	}
	if err := Revoke(ctx, s.rdb, claims.ID, claims.ExpiresAt.Time); err != nil {
		return fmt.Errorf("revoke token: %w", err)
	}
	return nil
}
