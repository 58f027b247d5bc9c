package auth

import (
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

func TestNewJWTStrategy_DefaultTTL(t *testing.T) {
	strategy := NewJWTStrategy("secret", Options{})
	if string(strategy.secret) != "secret" {
		t.Fatalf("unexpected secret: %q", string(strategy.secret))
	}
	if strategy.ttl != defaultTTL {
		t.Fatalf("unexpected ttl: %s", strategy.ttl)
	}
}

func TestNewJWTStrategy_CustomTTL(t *testing.T) {
	strategy := NewJWTStrategy("secret", Options{TTL: 2 * time.Hour})
	if strategy.ttl != 2*time.Hour {
		t.Fatalf("unexpected ttl: %s", strategy.ttl)
	}
}

func TestJWTStrategy_IssueAndParse(t *testing.T) {
	strategy := NewJWTStrategy("secret", Options{TTL: time.Minute})
	token, err := strategy.IssueToken("ops", RoleAdmin)
	if err != nil {
		t.Fatalf("issue token: %v", err)
	}
	principal, err := strategy.ParseToken(token)
	if err != nil {
		t.Fatalf("parse token: %v", err)
	}
	if principal.Subject != "ops" || !principal.IsAdmin() {
		t.Fatalf("unexpected principal: %+v", principal)
	}

	token, _ = strategy.IssueToken("viewer", "reader")
	principal, err = strategy.ParseToken(token)
	if err != nil {
		t.Fatalf("parse token: %v", err)
	}
	if principal.IsAdmin() {
		t.Fatal("expected non-admin principal")
	}
}

func TestJWTStrategy_ParseGarbage(t *testing.T) {
	strategy := NewJWTStrategy("secret", Options{})
	if _, err := strategy.ParseToken("not-a-jwt"); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken, got %v", err)
	}
}

func TestJWTStrategy_ParseWrongSecret(t *testing.T) {
	token, err := NewJWTStrategy("other", Options{}).IssueToken("ops", RoleAdmin)
	if err != nil {
		t.Fatalf("issue token: %v", err)
	}
	if _, err := NewJWTStrategy("secret", Options{}).ParseToken(token); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken, got %v", err)
	}
}

func TestJWTStrategy_ParseExpired(t *testing.T) {
	strategy := NewJWTStrategy("secret", Options{TTL: time.Minute})
	strategy.now = func() time.Time { return time.Now().Add(-time.Hour) }
	token, err := strategy.IssueToken("ops", RoleAdmin)
	if err != nil {
		t.Fatalf("issue token: %v", err)
	}
	strategy.now = time.Now
	if _, err := strategy.ParseToken(token); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken, got %v", err)
	}
}

func TestJWTStrategy_RejectsOtherAlgorithms(t *testing.T) {
	strategy := NewJWTStrategy("secret", Options{})
	token := jwt.NewWithClaims(jwt.SigningMethodHS512, claims{
		Role:             RoleAdmin,
		RegisteredClaims: jwt.RegisteredClaims{ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Minute))},
	})
	signed, err := token.SignedString([]byte("secret"))
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	if _, err := strategy.ParseToken(signed); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken, got %v", err)
	}
}

func TestJWTStrategy_RequiresExpiry(t *testing.T) {
	strategy := NewJWTStrategy("secret", Options{})
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims{Role: RoleAdmin})
	signed, err := token.SignedString([]byte("secret"))
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	if _, err := strategy.ParseToken(signed); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken, got %v", err)
	}
}

func TestJWTStrategy_Name(t *testing.T) {
	if NewJWTStrategy("secret", Options{}).Name() != "jwt" {
		t.Fatal("unexpected name")
	}
}
