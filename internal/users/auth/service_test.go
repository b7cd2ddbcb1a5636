// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package auth_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/memberdesk/internal/platform/apperr"
	"github.com/taibuivan/memberdesk/internal/platform/sec"
	"github.com/taibuivan/memberdesk/internal/users/auth"
)

var loginTime = time.Date(2026, 3, 1, 9, 30, 0, 0, time.UTC)

type fixture struct {
	users   *memoryUsers
	roles   *memoryRoles
	tokens  *sec.TokenService
	service *auth.Service
}

func newFixture(t *testing.T, revocations auth.RevocationStore) *fixture {
	t.Helper()

	tokens, err := sec.NewTokenService(sec.TokenConfig{
		Secret:     "auth-service-test-secret",
		Algorithm:  "HS256",
		AccessTTL:  15 * time.Minute,
		RefreshTTL: 7 * 24 * time.Hour,
	}, sec.WithClock(func() time.Time { return loginTime }))
	require.NoError(t, err)

	roles := newMemoryRoles()
	users := newMemoryUsers(roles)
	service := auth.NewService(users, auth.NewRoleResolver(roles), tokens, auth.Options{
		Revocations: revocations,
		Clock:       func() time.Time { return loginTime },
	})

	return &fixture{users: users, roles: roles, tokens: tokens, service: service}
}

func (f *fixture) register(t *testing.T, email string) *auth.User {
	t.Helper()
	user, err := f.service.Register(context.Background(), auth.RegisterInput{
		Username: "ada",
		Email:    email,
		Password: "correct horse",
	})
	require.NoError(t, err)
	return user
}

/*
TestRegisterThenLogin verifies that a fresh account is a member and lands on
the member dashboard with a token naming it.
*/
func TestRegisterThenLogin(t *testing.T) {
	f := newFixture(t, nil)
	user := f.register(t, "ada@example.org")

	assert.Equal(t, auth.StatusActive, user.Status)
	assert.NotEqual(t, "correct horse", user.PasswordHash)

	result, err := f.service.Login(context.Background(), "ada@example.org", "correct horse")
	require.NoError(t, err)
	assert.Equal(t, "/member/dashboard", result.LandingURL)
	assert.True(t, result.Roles.Has(sec.RoleMember))

	claims, err := f.tokens.VerifyKind(result.AccessToken, sec.KindAccess)
	require.NoError(t, err)
	assert.Equal(t, user.ID, claims.Subject)

	stored, err := f.users.FindByID(context.Background(), user.ID)
	require.NoError(t, err)
	require.NotNil(t, stored.LastLoginAt)
	assert.Equal(t, loginTime, *stored.LastLoginAt)
}

func TestRegister_Duplicate(t *testing.T) {
	f := newFixture(t, nil)
	f.register(t, "ada@example.org")

	_, err := f.service.Register(context.Background(), auth.RegisterInput{
		Username: "someone else",
		Email:    "ada@example.org",
		Password: "another",
	})
	assert.True(t, apperr.HasCode(err, apperr.CodeDuplicateRegistration))
	assert.Equal(t, 1, f.users.count())
}

func TestRegister_EmailMatchIsExact(t *testing.T) {
	f := newFixture(t, nil)
	f.register(t, "ada@example.org")

	_, err := f.service.Register(context.Background(), auth.RegisterInput{
		Username: "ada", Email: "Ada@example.org", Password: "pw",
	})
	assert.NoError(t, err)
}

func TestRegister_RequiresFields(t *testing.T) {
	f := newFixture(t, nil)

	_, err := f.service.Register(context.Background(), auth.RegisterInput{Email: "ada@example.org"})
	require.Error(t, err)

	appErr := apperr.As(err)
	require.NotNil(t, appErr)
	assert.Equal(t, apperr.CodeValidation, appErr.Code)
	assert.Len(t, appErr.Details, 2)
}

/*
TestRegister_Atomic verifies that a failing role link leaves no account.
*/
func TestRegister_Atomic(t *testing.T) {
	f := newFixture(t, nil)
	f.users.linkErr = errors.New("roles table unavailable")

	_, err := f.service.Register(context.Background(), auth.RegisterInput{
		Username: "ada", Email: "ada@example.org", Password: "pw",
	})
	require.Error(t, err)

	_, err = f.users.FindByEmail(context.Background(), "ada@example.org")
	assert.True(t, apperr.HasCode(err, apperr.CodeNotFound))
}

/*
TestLogin_GenericFailure verifies that an unknown email and a wrong password
are indistinguishable to the caller.
*/
func TestLogin_GenericFailure(t *testing.T) {
	f := newFixture(t, nil)
	f.register(t, "ada@example.org")

	_, unknownErr := f.service.Login(context.Background(), "nobody@example.org", "correct horse")
	_, wrongErr := f.service.Login(context.Background(), "ada@example.org", "wrong")

	unknown, wrong := apperr.As(unknownErr), apperr.As(wrongErr)
	require.NotNil(t, unknown)
	require.NotNil(t, wrong)
	assert.Equal(t, apperr.CodeInvalidCredentials, unknown.Code)
	assert.Equal(t, unknown.Code, wrong.Code)
	assert.Equal(t, unknown.Message, wrong.Message)
	assert.Equal(t, unknown.HTTPStatus, wrong.HTTPStatus)
}

func TestLogin_LastLoginFailureIsNotFatal(t *testing.T) {
	f := newFixture(t, nil)
	f.register(t, "ada@example.org")
	f.users.touchErr = errors.New("write timeout")

	_, err := f.service.Login(context.Background(), "ada@example.org", "correct horse")
	assert.NoError(t, err)
}

func TestLogin_RoleLookupFailure(t *testing.T) {
	f := newFixture(t, nil)
	f.register(t, "ada@example.org")
	f.roles.err = errors.New("db down")

	_, err := f.service.Login(context.Background(), "ada@example.org", "correct horse")
	assert.Error(t, err)
}

/*
TestLogin_Landing verifies the dashboard choice for each role combination.
*/
func TestLogin_Landing(t *testing.T) {
	tests := []struct {
		name    string
		granted []sec.RoleName
		want    string
	}{
		{"member", []sec.RoleName{sec.RoleMember}, "/member/dashboard"},
		{"staff", []sec.RoleName{sec.RoleStaff}, "/staff/dashboard"},
		{"staff_and_member", []sec.RoleName{sec.RoleMember, sec.RoleStaff}, "/staff/dashboard"},
		{"admin_and_member", []sec.RoleName{sec.RoleMember, sec.RoleAdmin}, "/admin/dashboard"},
		{"unknown_only", []sec.RoleName{"treasurer"}, "/auth/login"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t, nil)
			user := f.register(t, "ada@example.org")

			_, err := f.roles.Revoke(context.Background(), user.ID, sec.RoleMember)
			require.NoError(t, err)
			for _, role := range tt.granted {
				require.NoError(t, f.roles.Grant(context.Background(), user.ID, role))
			}

			result, err := f.service.Login(context.Background(), "ada@example.org", "correct horse")
			require.NoError(t, err)
			assert.Equal(t, tt.want, result.LandingURL)
		})
	}
}

func TestIssueTokensAndRefresh(t *testing.T) {
	f := newFixture(t, nil)
	user := f.register(t, "ada@example.org")
	ctx := context.Background()

	pair, err := f.service.IssueTokens(ctx, "ada@example.org", "correct horse")
	require.NoError(t, err)
	assert.Equal(t, "bearer", pair.TokenType)
	assert.Equal(t, 900, pair.ExpiresIn)
	require.NotEmpty(t, pair.RefreshToken)

	refreshed, err := f.service.Refresh(ctx, pair.RefreshToken)
	require.NoError(t, err)
	assert.Empty(t, refreshed.RefreshToken)

	claims, err := f.tokens.VerifyKind(refreshed.AccessToken, sec.KindAccess)
	require.NoError(t, err)
	assert.Equal(t, user.ID, claims.Subject)

	// An access token is not a refresh token.
	_, err = f.service.Refresh(ctx, pair.AccessToken)
	assert.True(t, apperr.HasCode(err, apperr.CodeTokenInvalid))

	_, err = f.service.Refresh(ctx, "garbage")
	assert.True(t, apperr.HasCode(err, apperr.CodeTokenInvalid))
}

func TestRefresh_UnknownAccount(t *testing.T) {
	f := newFixture(t, nil)

	refresh, err := f.tokens.IssueRefresh("deleted-user")
	require.NoError(t, err)

	_, err = f.service.Refresh(context.Background(), refresh)
	assert.True(t, apperr.HasCode(err, apperr.CodeTokenInvalid))
}

func TestLogout_WithoutRevocation(t *testing.T) {
	f := newFixture(t, nil)
	assert.False(t, f.service.RevocationEnabled())

	token, err := f.tokens.IssueAccess("user-1", nil)
	require.NoError(t, err)
	assert.NoError(t, f.service.Logout(context.Background(), token))

	// Without a revocation list the token keeps verifying until it expires.
	_, err = f.tokens.Verify(token)
	assert.NoError(t, err)
}

/*
TestLogout_Revokes verifies the opt-in revocation list: the jti is stored
for the token's remaining lifetime and refresh tokens are refused.
*/
func TestLogout_Revokes(t *testing.T) {
	server := miniredis.RunT(t)
	store := auth.NewRevocationStore(redis.NewClient(&redis.Options{Addr: server.Addr()}))

	f := newFixture(t, store)
	f.register(t, "ada@example.org")
	ctx := context.Background()

	pair, err := f.service.IssueTokens(ctx, "ada@example.org", "correct horse")
	require.NoError(t, err)

	require.NoError(t, f.service.Logout(ctx, pair.RefreshToken))

	claims, err := f.tokens.Verify(pair.RefreshToken)
	require.NoError(t, err)
	revoked, err := store.IsRevoked(ctx, claims.ID)
	require.NoError(t, err)
	assert.True(t, revoked)

	_, err = f.service.Refresh(ctx, pair.RefreshToken)
	assert.True(t, apperr.HasCode(err, apperr.CodeTokenInvalid))

	// Garbage tokens are ignored.
	assert.NoError(t, f.service.Logout(ctx, "garbage"))
}

func TestLogout_RevokesWholePair(t *testing.T) {
	server := miniredis.RunT(t)
	store := auth.NewRevocationStore(redis.NewClient(&redis.Options{Addr: server.Addr()}))

	f := newFixture(t, store)
	f.register(t, "ada@example.org")
	ctx := context.Background()

	pair, err := f.service.IssueTokens(ctx, "ada@example.org", "correct horse")
	require.NoError(t, err)

	require.NoError(t, f.service.Logout(ctx, pair.AccessToken, pair.RefreshToken, ""))

	_, err = f.service.Refresh(ctx, pair.RefreshToken)
	assert.True(t, apperr.HasCode(err, apperr.CodeTokenInvalid))

	claims, err := f.tokens.Verify(pair.AccessToken)
	require.NoError(t, err)
	revoked, err := store.IsRevoked(ctx, claims.ID)
	require.NoError(t, err)
	assert.True(t, revoked)
}

func TestMe(t *testing.T) {
	f := newFixture(t, nil)
	user := f.register(t, "ada@example.org")

	profile, err := f.service.Me(context.Background(), &sec.Principal{ID: user.ID})
	require.NoError(t, err)
	assert.Equal(t, []string{"member"}, profile.Roles)
	assert.Equal(t, "/member/dashboard", profile.LandingURL)
	assert.Equal(t, user.Email, profile.Email)

	_, err = f.service.Me(context.Background(), &sec.Principal{ID: "missing"})
	assert.True(t, apperr.HasCode(err, apperr.CodeNotFound))
}
