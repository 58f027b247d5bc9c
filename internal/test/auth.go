package test

import (
	pkgAuth "github.com/polkiloo/fulfillment/internal/pkg/auth"
)

// StrategyStub issues and parses tokens via function overrides.
type StrategyStub struct {
	IssueFn func(string, string) (string, error)
	ParseFn func(string) (pkgAuth.Principal, error)
	NameVal string
}

// IssueToken returns deterministic tokens for tests.
func (s StrategyStub) IssueToken(subject, role string) (string, error) {
	if s.IssueFn != nil {
		return s.IssueFn(subject, role)
	}
	return "token:" + role, nil
}

// ParseToken parses tokens produced by IssueToken.
func (s StrategyStub) ParseToken(token string) (pkgAuth.Principal, error) {
	if s.ParseFn != nil {
		return s.ParseFn(token)
	}
	switch token {
	case "token:" + pkgAuth.RoleAdmin:
		return pkgAuth.Principal{Subject: "ops", Role: pkgAuth.RoleAdmin}, nil
	case "":
		return pkgAuth.Principal{}, pkgAuth.ErrInvalidToken
	default:
		return pkgAuth.Principal{Subject: "user", Role: "customer"}, nil
	}
}

// Name returns the strategy identifier used in tests.
func (s StrategyStub) Name() string {
	if s.NameVal != "" {
		return s.NameVal
	}
	return "stub"
}

// TokenParserStub implements middleware token parsing contract.
type TokenParserStub struct {
	Principal pkgAuth.Principal
	Err       error
}

// ParseToken returns the predefined result.
func (s TokenParserStub) ParseToken(string) (pkgAuth.Principal, error) {
	if s.Err != nil {
		return pkgAuth.Principal{}, s.Err
	}
	return s.Principal, nil
}

var _ pkgAuth.Strategy = StrategyStub{}
