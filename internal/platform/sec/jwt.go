// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package sec provides cryptographic primitives, token management and the
// role model used by the access guard.
//
// # Architecture
//
// This package isolates security-sensitive code (hashing, JWT signing, role
// hierarchy) from the domain logic. It has no storage dependencies: role
// lookups are supplied by callers as [RoleLoader] values.
package sec

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// ErrTokenInvalid is returned for any token that fails verification:
// malformed, wrong algorithm, bad signature, expired, missing subject or kind.
var ErrTokenInvalid = errors.New("sec: invalid token")

// TokenKind distinguishes access tokens from refresh tokens.
type TokenKind string

const (
	KindAccess  TokenKind = "access"
	KindRefresh TokenKind = "refresh"
)

// Registered claim names. Caller-supplied extras never override them.
const (
	claimSubject  = "sub"
	claimIssuedAt = "iat"
	claimExpires  = "exp"
	claimID       = "jti"
	claimKind     = "kind"

	// ClaimRoles carries role names attached to a token at issue time.
	ClaimRoles = "roles"
)

var reservedClaims = map[string]struct{}{
	claimSubject:  {},
	claimIssuedAt: {},
	claimExpires:  {},
	claimID:       {},
	claimKind:     {},
}

// Claims is the verified content of a token.
type Claims struct {
	Subject   string
	ID        string
	Kind      TokenKind
	IssuedAt  time.Time
	ExpiresAt time.Time

	// Extra holds every non-registered claim found in the token.
	Extra map[string]any
}

// Roles returns the role names attached through the [ClaimRoles] claim.
func (c *Claims) Roles() []string {
	raw, ok := c.Extra[ClaimRoles].([]any)
	if !ok {
		return nil
	}
	names := make([]string, 0, len(raw))
	for _, value := range raw {
		if name, ok := value.(string); ok {
			names = append(names, name)
		}
	}
	return names
}

// TokenConfig configures a [TokenService].
type TokenConfig struct {
	Secret     string
	Algorithm  string
	AccessTTL  time.Duration
	RefreshTTL time.Duration
}

// TokenService issues and verifies HS256-signed tokens with a shared secret.
//
// It is immutable after construction and safe for concurrent use.
type TokenService struct {
	secret     []byte
	accessTTL  time.Duration
	refreshTTL time.Duration
	now        func() time.Time
}

// TokenOption customises a [TokenService].
type TokenOption func(*TokenService)

// WithClock replaces the wall clock used for iat/exp and for expiry checks.
func WithClock(now func() time.Time) TokenOption {
	return func(service *TokenService) {
		service.now = now
	}
}

// NewTokenService validates cfg and returns a ready [TokenService].
//
// An empty secret or an algorithm other than HS256 is a configuration error.
func NewTokenService(cfg TokenConfig, opts ...TokenOption) (*TokenService, error) {
	if cfg.Secret == "" {
		return nil, errors.New("sec: token secret must not be empty")
	}
	if cfg.Algorithm != jwt.SigningMethodHS256.Alg() {
		return nil, fmt.Errorf("sec: unsupported signing algorithm %q", cfg.Algorithm)
	}
	if cfg.AccessTTL <= 0 || cfg.RefreshTTL <= 0 {
		return nil, errors.New("sec: token lifetimes must be positive")
	}

	service := &TokenService{
		secret:     []byte(cfg.Secret),
		accessTTL:  cfg.AccessTTL,
		refreshTTL: cfg.RefreshTTL,
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(service)
	}
	return service, nil
}

// TTL returns the lifetime applied to tokens of the given kind.
func (service *TokenService) TTL(kind TokenKind) time.Duration {
	if kind == KindRefresh {
		return service.refreshTTL
	}
	return service.accessTTL
}

// Issue signs a new token for subject.
//
// The token carries sub, iat, exp, a fresh random jti and kind, merged with
// extra. Keys of extra that collide with those claims are ignored.
func (service *TokenService) Issue(subject string, kind TokenKind, extra map[string]any) (string, error) {
	if subject == "" {
		return "", errors.New("sec: token subject must not be empty")
	}
	if kind != KindAccess && kind != KindRefresh {
		return "", fmt.Errorf("sec: unknown token kind %q", kind)
	}

	claims := jwt.MapClaims{}
	for key, value := range extra {
		if _, reserved := reservedClaims[key]; reserved {
			continue
		}
		claims[key] = value
	}

	issuedAt := service.now()
	claims[claimSubject] = subject
	claims[claimIssuedAt] = jwt.NewNumericDate(issuedAt)
	claims[claimExpires] = jwt.NewNumericDate(issuedAt.Add(service.TTL(kind)))
	claims[claimID] = uuid.NewString()
	claims[claimKind] = string(kind)

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(service.secret)
	if err != nil {
		return "", fmt.Errorf("sec: failed to sign token: %w", err)
	}
	return signed, nil
}

// IssueAccess is shorthand for Issue(subject, KindAccess, extra).
func (service *TokenService) IssueAccess(subject string, extra map[string]any) (string, error) {
	return service.Issue(subject, KindAccess, extra)
}

// IssueRefresh is shorthand for Issue(subject, KindRefresh, nil).
func (service *TokenService) IssueRefresh(subject string) (string, error) {
	return service.Issue(subject, KindRefresh, nil)
}

// Verify checks signature, algorithm and expiry and returns the claims.
//
// Every failure is reported as [ErrTokenInvalid]. Verify does not consult
// any revocation list.
func (service *TokenService) Verify(token string) (*Claims, error) {
	parsed, err := jwt.Parse(token,
		func(token *jwt.Token) (any, error) {
			return service.secret, nil
		},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(service.now),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrTokenInvalid, err)
	}

	mapClaims, ok := parsed.Claims.(jwt.MapClaims)
	if !ok || !parsed.Valid {
		return nil, ErrTokenInvalid
	}

	subject, _ := mapClaims.GetSubject()
	if subject == "" {
		return nil, fmt.Errorf("%w: missing subject", ErrTokenInvalid)
	}

	claims := &Claims{
		Subject: subject,
		Extra:   make(map[string]any),
	}
	if id, ok := mapClaims[claimID].(string); ok {
		claims.ID = id
	}
	if kind, ok := mapClaims[claimKind].(string); ok {
		claims.Kind = TokenKind(kind)
	}
	if issuedAt, _ := mapClaims.GetIssuedAt(); issuedAt != nil {
		claims.IssuedAt = issuedAt.Time
	}
	if expiresAt, _ := mapClaims.GetExpirationTime(); expiresAt != nil {
		claims.ExpiresAt = expiresAt.Time
	}
	for key, value := range mapClaims {
		if _, reserved := reservedClaims[key]; !reserved {
			claims.Extra[key] = value
		}
	}

	return claims, nil
}

// VerifyKind verifies token and additionally requires the given kind.
func (service *TokenService) VerifyKind(token string, kind TokenKind) (*Claims, error) {
	claims, err := service.Verify(token)
	if err != nil {
		return nil, err
	}
	if claims.Kind != kind {
		return nil, fmt.Errorf("%w: expected %s token, got %q", ErrTokenInvalid, kind, claims.Kind)
	}
	return claims, nil
}
