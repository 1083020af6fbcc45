package service

import (
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/jobzen/identity-service/internal/core/domain"
)

const defaultTokenTTL = 24 * time.Hour

// TokenIssuer mints signed session tokens. The signing secret is loaded once
// at startup and injected here; rotating it invalidates all outstanding
// tokens.
type TokenIssuer struct {
	secret string
	ttl    time.Duration
}

func NewTokenIssuer(secret string, ttl time.Duration) *TokenIssuer {
	if ttl <= 0 {
		ttl = defaultTokenTTL
	}
	return &TokenIssuer{secret: secret, ttl: ttl}
}

// Issue returns a compact HS256 JWT carrying the user's identity claims.
func (t *TokenIssuer) Issue(user *domain.User) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"sub":   user.ID,
		"email": user.Email,
		"role":  user.Role,
		"iat":   now.Unix(),
		"exp":   now.Add(t.ttl).Unix(),
	}

	tkn := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return tkn.SignedString([]byte(t.secret))
}
