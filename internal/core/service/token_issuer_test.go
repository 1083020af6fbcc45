package service

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/jobzen/identity-service/internal/core/domain"
)

func TestTokenIssuer_Claims(t *testing.T) {
	issuer := NewTokenIssuer("secret", 30*time.Minute)
	user := &domain.User{ID: "u1", Email: "alice@example.com", Role: domain.RoleClient}

	token, err := issuer.Issue(user)
	if err != nil {
		t.Fatalf("issue failed: %v", err)
	}

	claims := jwt.MapClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(token *jwt.Token) (interface{}, error) {
		return []byte("secret"), nil
	})
	if err != nil || !parsed.Valid {
		t.Fatalf("token invalid: %v", err)
	}

	if claims["sub"] != "u1" || claims["email"] != "alice@example.com" || claims["role"] != domain.RoleClient {
		t.Fatalf("unexpected claims: %+v", claims)
	}

	exp, _ := claims.GetExpirationTime()
	iat, _ := claims.GetIssuedAt()
	if exp == nil || iat == nil {
		t.Fatalf("missing exp/iat claims")
	}
	if got := exp.Sub(iat.Time); got != 30*time.Minute {
		t.Fatalf("expected 30m lifetime, got %v", got)
	}
}

func TestTokenIssuer_WrongSecretRejected(t *testing.T) {
	issuer := NewTokenIssuer("secret", time.Hour)
	token, err := issuer.Issue(&domain.User{ID: "u1", Email: "a@example.com", Role: domain.RoleClient})
	if err != nil {
		t.Fatalf("issue failed: %v", err)
	}

	_, err = jwt.ParseWithClaims(token, jwt.MapClaims{}, func(token *jwt.Token) (interface{}, error) {
		return []byte("rotated"), nil
	})
	if err == nil {
		t.Fatalf("token accepted with wrong secret")
	}
}

func TestTokenIssuer_DefaultTTL(t *testing.T) {
	issuer := NewTokenIssuer("secret", 0)
	if issuer.ttl != defaultTokenTTL {
		t.Fatalf("expected default TTL %v, got %v", defaultTokenTTL, issuer.ttl)
	}
}
