// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package auth

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/taibuivan/memberdesk/internal/platform/apperr"
	"github.com/taibuivan/memberdesk/internal/platform/ctxutil"
	"github.com/taibuivan/memberdesk/internal/platform/metrics"
	"github.com/taibuivan/memberdesk/internal/platform/sec"
	"github.com/taibuivan/memberdesk/internal/platform/validate"
	"github.com/taibuivan/memberdesk/pkg/uuid"
)

// # Contracts & Types

// TokenIssuer issues and verifies signed tokens.
type TokenIssuer interface {
	IssueAccess(subject string, extra map[string]any) (string, error)
	IssueRefresh(subject string) (string, error)
	Verify(token string) (*sec.Claims, error)
	VerifyKind(token string, kind sec.TokenKind) (*sec.Claims, error)
	TTL(kind sec.TokenKind) time.Duration
}

// PrincipalRoles resolves the role set of a principal.
type PrincipalRoles interface {
	ResolveRoles(ctx context.Context, principal *sec.Principal) (sec.RoleSet, error)
}

// Operation labels for [metrics.AuthAttempts].
const (
	opRegister = "register"
	opLogin    = "login"
	opToken    = "token"
	opRefresh  = "refresh"
	opLogout   = "logout"
)

// timingHash is compared against when the email is unknown so a miss costs
// about as much as a wrong password.
var timingHash = mustHash("memberdesk-timing-equalizer")

func mustHash(password string) string {
	hash, err := sec.HashPassword(password)
	if err != nil || hash == "" {
		panic(fmt.Sprintf("auth: timing hash: %v", err))
	}
	return hash
}

// Service implements registration, login and token use cases.
//
// # Review Process
//
// This service is critical for security. Any changes to hashing, registration,
// or login logic must be reviewed by the security team.
type Service struct {
	users       UserRepository
	roles       PrincipalRoles
	tokens      TokenIssuer
	revocations RevocationStore
	defaultRole sec.RoleName
	now         func() time.Time
}

// Options tunes a [Service].
type Options struct {
	// DefaultRole is linked to every new account. Defaults to member.
	DefaultRole sec.RoleName

	// Revocations enables jti revocation on logout when non-nil.
	Revocations RevocationStore

	// Clock overrides time.Now.
	Clock func() time.Time
}

// NewService constructs a new [Service] with its dependencies.
func NewService(users UserRepository, roles PrincipalRoles, tokens TokenIssuer, opts Options) *Service {
	service := &Service{
		users:       users,
		roles:       roles,
		tokens:      tokens,
		revocations: opts.Revocations,
		defaultRole: sec.NormalizeRole(string(opts.DefaultRole)),
		now:         opts.Clock,
	}
	if service.defaultRole == "" {
		service.defaultRole = sec.RoleMember
	}
	if service.now == nil {
		service.now = time.Now
	}
	return service
}

// # Registration Flow

// RegisterInput holds the data required to open an account.
type RegisterInput struct {
	Username string
	Email    string
	Password string
}

/*
Register creates an account linked to the default role.

Description: Rejects an already registered email, hashes the password and
persists the account and its role link in one transaction.

Returns:
  - *User: Created entity
  - error: validation_error, duplicate_registration, or storage errors
*/
func (service *Service) Register(ctx context.Context, input RegisterInput) (user *User, err error) {
	defer func() { metrics.AuthAttempts.WithLabelValues(opRegister, outcomeOf(err)).Inc() }()

	validator := &validate.Validator{}
	validator.Required(FieldUsername, input.Username).
		Required(FieldEmail, input.Email).
		Required(FieldPassword, input.Password)
	if err := validator.Err(); err != nil {
		return nil, err
	}

	existing, err := service.users.FindByEmail(ctx, input.Email)
	if err == nil && existing != nil {
		return nil, apperr.DuplicateRegistration()
	}
	if err != nil && !apperr.HasCode(err, apperr.CodeNotFound) {
		return nil, fmt.Errorf("auth_service_register_lookup_failed: %w", err)
	}

	hashedPassword, err := sec.HashPassword(input.Password)
	if err != nil {
		return nil, fmt.Errorf("auth_service_hash_failed: %w", err)
	}

	user = &User{
		ID:           uuid.New(),
		Username:     input.Username,
		Email:        input.Email,
		PasswordHash: hashedPassword,
		Status:       StatusActive,
	}

	// A concurrent registration can still win the race; the unique email
	// index turns that into duplicate_registration inside the transaction.
	if err := service.users.CreateWithRole(ctx, user, service.defaultRole); err != nil {
		if apperr.IsAppError(err) {
			return nil, err
		}
		return nil, fmt.Errorf("auth_service_register_failed: %w", err)
	}

	ctxutil.GetLogger(ctx).InfoContext(ctx, "user_registered",
		slog.String("user_id", user.ID),
		slog.String("role", string(service.defaultRole)),
	)
	return user, nil
}

/*
SignUp registers an account and issues its first access token.

Returns:
  - *User: Created entity
  - *TokenPair: access token for the new account
  - error: as [Service.Register], or signing failures
*/
func (service *Service) SignUp(ctx context.Context, input RegisterInput) (*User, *TokenPair, error) {
	user, err := service.Register(ctx, input)
	if err != nil {
		return nil, nil, err
	}

	access, err := service.tokens.IssueAccess(user.ID, nil)
	if err != nil {
		return nil, nil, fmt.Errorf("auth_service_issue_failed: %w", err)
	}

	return user, &TokenPair{
		AccessToken: access,
		TokenType:   TokenTypeBearer,
		ExpiresIn:   service.accessExpiresIn(),
	}, nil
}

// # Authentication Flow

/*
Authenticate verifies an email/password pair and records the login time.

Returns:
  - *User: The authenticated account
  - error: invalid_credentials for an unknown email or a wrong password
*/
func (service *Service) Authenticate(ctx context.Context, email, password string) (*User, error) {
	user, err := service.users.FindByEmail(ctx, email)
	if err != nil {
		if !apperr.HasCode(err, apperr.CodeNotFound) {
			return nil, fmt.Errorf("auth_service_login_lookup_failed: %w", err)
		}
		sec.CheckPasswordHash(password, timingHash)
		return nil, apperr.InvalidCredentials()
	}

	if !sec.CheckPasswordHash(password, user.PasswordHash) {
		return nil, apperr.InvalidCredentials()
	}

	loginAt := service.now().UTC()
	if err := service.users.TouchLastLogin(ctx, user.ID, loginAt); err != nil {
		ctxutil.GetLogger(ctx).WarnContext(ctx, "last_login_update_failed",
			slog.String("user_id", user.ID),
			slog.Any("error", err),
		)
	} else {
		user.LastLoginAt = &loginAt
	}
	return user, nil
}

// LoginResult is what a UI login needs to populate the session.
type LoginResult struct {
	User        *User
	AccessToken string
	Roles       sec.RoleSet
	LandingURL  string
}

/*
Login authenticates the user, issues an access token and picks the
dashboard to land on.

Returns:
  - *LoginResult: token, resolved roles and landing route
  - error: invalid_credentials, or role lookup and signing failures
*/
func (service *Service) Login(ctx context.Context, email, password string) (result *LoginResult, err error) {
	defer func() { metrics.AuthAttempts.WithLabelValues(opLogin, outcomeOf(err)).Inc() }()

	user, err := service.Authenticate(ctx, email, password)
	if err != nil {
		return nil, err
	}

	token, err := service.tokens.IssueAccess(user.ID, nil)
	if err != nil {
		return nil, fmt.Errorf("auth_service_issue_failed: %w", err)
	}

	roles, err := service.roles.ResolveRoles(ctx, &sec.Principal{ID: user.ID})
	if err != nil {
		return nil, fmt.Errorf("auth_service_roles_failed: %w", err)
	}

	return &LoginResult{
		User:        user,
		AccessToken: token,
		Roles:       roles,
		LandingURL:  LandingRoute(roles),
	}, nil
}

/*
IssueTokens implements the password grant of the token endpoint.

Returns:
  - *TokenPair: access and refresh tokens
  - error: invalid_credentials or signing failures
*/
func (service *Service) IssueTokens(ctx context.Context, email, password string) (pair *TokenPair, err error) {
	defer func() { metrics.AuthAttempts.WithLabelValues(opToken, outcomeOf(err)).Inc() }()

	user, err := service.Authenticate(ctx, email, password)
	if err != nil {
		return nil, err
	}

	access, err := service.tokens.IssueAccess(user.ID, nil)
	if err != nil {
		return nil, fmt.Errorf("auth_service_issue_failed: %w", err)
	}
	refresh, err := service.tokens.IssueRefresh(user.ID)
	if err != nil {
		return nil, fmt.Errorf("auth_service_issue_failed: %w", err)
	}

	return &TokenPair{
		AccessToken:  access,
		RefreshToken: refresh,
		TokenType:    TokenTypeBearer,
		ExpiresIn:    service.accessExpiresIn(),
	}, nil
}

/*
Refresh exchanges a refresh token for a new access token.

Returns:
  - *TokenPair: a new access token (no refresh token)
  - error: token_invalid for anything but a live refresh token of an
    existing account
*/
func (service *Service) Refresh(ctx context.Context, refreshToken string) (pair *TokenPair, err error) {
	defer func() { metrics.AuthAttempts.WithLabelValues(opRefresh, outcomeOf(err)).Inc() }()

	claims, err := service.tokens.VerifyKind(refreshToken, sec.KindRefresh)
	if err != nil {
		return nil, apperr.TokenInvalid()
	}

	if service.revocations != nil {
		revoked, err := service.revocations.IsRevoked(ctx, claims.ID)
		if err != nil {
			return nil, fmt.Errorf("auth_service_revocation_check_failed: %w", err)
		}
		if revoked {
			return nil, apperr.TokenInvalid()
		}
	}

	if _, err := service.users.FindByID(ctx, claims.Subject); err != nil {
		if apperr.HasCode(err, apperr.CodeNotFound) {
			return nil, apperr.TokenInvalid()
		}
		return nil, fmt.Errorf("auth_service_refresh_lookup_failed: %w", err)
	}

	access, err := service.tokens.IssueAccess(claims.Subject, nil)
	if err != nil {
		return nil, fmt.Errorf("auth_service_issue_failed: %w", err)
	}

	return &TokenPair{
		AccessToken: access,
		TokenType:   TokenTypeBearer,
		ExpiresIn:   service.accessExpiresIn(),
	}, nil
}

/*
Logout revokes tokens when revocation is enabled.

Description: Callers pass every token of the pair they hold, so a refresh
token cannot outlive the logout. Clearing the session is the caller's job and
always happens. Empty tokens and tokens that no longer verify are skipped
since they cannot authenticate.
*/
func (service *Service) Logout(ctx context.Context, tokens ...string) (err error) {
	defer func() { metrics.AuthAttempts.WithLabelValues(opLogout, outcomeOf(err)).Inc() }()

	if service.revocations == nil {
		return nil
	}

	for _, token := range tokens {
		if token == "" {
			continue
		}

		claims, verifyErr := service.tokens.Verify(token)
		if verifyErr != nil {
			continue
		}

		if err := service.revocations.Revoke(ctx, claims.ID, claims.ExpiresAt.Sub(service.now())); err != nil {
			return fmt.Errorf("auth_service_revoke_failed: %w", err)
		}

		ctxutil.GetLogger(ctx).InfoContext(ctx, "token_revoked",
			slog.String("user_id", claims.Subject),
			slog.String("kind", string(claims.Kind)),
		)
	}
	return nil
}

// RevocationEnabled reports whether logout revokes tokens.
func (service *Service) RevocationEnabled() bool {
	return service.revocations != nil
}

// Me returns the account behind principal with its resolved roles.
func (service *Service) Me(ctx context.Context, principal *sec.Principal) (*Profile, error) {
	user, err := service.users.FindByID(ctx, principal.ID)
	if err != nil {
		return nil, err
	}

	roles := principal.Roles
	if roles == nil {
		if roles, err = service.roles.ResolveRoles(ctx, principal); err != nil {
			return nil, fmt.Errorf("auth_service_roles_failed: %w", err)
		}
	}

	return &Profile{User: user, Roles: roles.Names(), LandingURL: LandingRoute(roles)}, nil
}

func (service *Service) accessExpiresIn() int {
	return int(service.tokens.TTL(sec.KindAccess).Seconds())
}

// outcomeOf maps an error to a metrics outcome label.
func outcomeOf(err error) string {
	if err == nil {
		return metrics.OutcomeSuccess
	}
	if appErr := apperr.As(err); appErr != nil && appErr.HTTPStatus < 500 {
		return metrics.OutcomeFailure
	}
	return metrics.OutcomeError
}
