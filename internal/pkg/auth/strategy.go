package auth

import (
	"errors"
	"time"
)

var (
	ErrInvalidToken = errors.New("invalid auth token")
	ErrForbidden    = errors.New("insufficient role")
)

// RoleAdmin grants access to administrative inventory endpoints.
const RoleAdmin = "admin"

// Principal is the verified identity carried by a token.
type Principal struct {
	Subject string
	Role    string
}

// IsAdmin reports whether p may call administrative endpoints.
func (p Principal) IsAdmin() bool {
	return p.Role == RoleAdmin
}

type Strategy interface {
	IssueToken(subject, role string) (string, error)
	ParseToken(token string) (Principal, error)
	Name() string
}

type Options struct {
	TTL time.Duration
}
