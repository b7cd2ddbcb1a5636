// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package middleware_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/memberdesk/internal/platform/ctxutil"
	"github.com/taibuivan/memberdesk/internal/platform/middleware"
	"github.com/taibuivan/memberdesk/internal/platform/sec"
	"github.com/taibuivan/memberdesk/internal/platform/session"
)

const cookieName = "sid"

type identityFixture struct {
	tokens   *sec.TokenService
	store    *session.MemoryStore
	sessions *session.Manager
}

func newIdentityFixture(t *testing.T) *identityFixture {
	t.Helper()
	tokens, err := sec.NewTokenService(sec.TokenConfig{
		Secret:     "identity-test-secret",
		Algorithm:  "HS256",
		AccessTTL:  15 * time.Minute,
		RefreshTTL: time.Hour,
	})
	require.NoError(t, err)

	store := session.NewMemoryStore()
	return &identityFixture{
		tokens:   tokens,
		store:    store,
		sessions: session.NewManager(store, session.CookieConfig{Name: cookieName}, time.Hour),
	}
}

func (f *identityFixture) token(t *testing.T, subject string) string {
	t.Helper()
	token, err := f.tokens.IssueAccess(subject, nil)
	require.NoError(t, err)
	return token
}

// sessionCookie persists a logged-in record and returns its cookie.
func (f *identityFixture) sessionCookie(t *testing.T, userID, token string) *http.Cookie {
	t.Helper()
	record := &session.Record{}
	record.SignIn(userID, token)
	recorder := httptest.NewRecorder()
	require.NoError(t, f.sessions.Save(context.Background(), recorder, record))
	return recorder.Result().Cookies()[0]
}

// serve runs request through the session and identity middleware and returns
// the principal seen by the handler.
func (f *identityFixture) serve(resolver *middleware.IdentityResolver, request *http.Request) (*sec.Principal, *httptest.ResponseRecorder) {
	var seen *sec.Principal
	handler := f.sessions.Middleware(middleware.Identify(resolver)(http.HandlerFunc(
		func(writer http.ResponseWriter, request *http.Request) {
			seen = ctxutil.GetPrincipal(request.Context())
		},
	)))

	recorder := httptest.NewRecorder()
	handler.ServeHTTP(recorder, request)
	return seen, recorder
}

func (f *identityFixture) resolver(revocations middleware.RevocationChecker) *middleware.IdentityResolver {
	return middleware.NewIdentityResolver(f.tokens, f.sessions, revocations)
}

func TestIdentify_Anonymous(t *testing.T) {
	f := newIdentityFixture(t)

	principal, _ := f.serve(f.resolver(nil), httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Nil(t, principal)
}

func TestIdentify_Bearer(t *testing.T) {
	f := newIdentityFixture(t)

	request := httptest.NewRequest(http.MethodGet, "/", nil)
	request.Header.Set("Authorization", "bearer "+f.token(t, "user-b"))

	principal, _ := f.serve(f.resolver(nil), request)
	require.NotNil(t, principal)
	assert.Equal(t, "user-b", principal.ID)
	assert.Equal(t, sec.IdentityFromBearer, principal.Source)
	assert.Nil(t, principal.Roles)
}

/*
TestIdentify_SessionWins verifies that a valid session beats a valid bearer header.
*/
func TestIdentify_SessionWins(t *testing.T) {
	f := newIdentityFixture(t)

	request := httptest.NewRequest(http.MethodGet, "/", nil)
	request.AddCookie(f.sessionCookie(t, "user-a", f.token(t, "user-a")))
	request.Header.Set("Authorization", "Bearer "+f.token(t, "user-b"))

	principal, _ := f.serve(f.resolver(nil), request)
	require.NotNil(t, principal)
	assert.Equal(t, "user-a", principal.ID)
	assert.Equal(t, sec.IdentityFromSession, principal.Source)
}

/*
TestIdentify_StaleSessionSelfHeals verifies that an invalid session token
clears the session and the header is still honoured.
*/
func TestIdentify_StaleSessionSelfHeals(t *testing.T) {
	f := newIdentityFixture(t)

	request := httptest.NewRequest(http.MethodGet, "/", nil)
	request.AddCookie(f.sessionCookie(t, "user-a", "tampered.token.value"))
	request.Header.Set("Authorization", "Bearer "+f.token(t, "user-b"))

	principal, recorder := f.serve(f.resolver(nil), request)
	require.NotNil(t, principal)
	assert.Equal(t, "user-b", principal.ID)

	assert.Equal(t, 0, f.store.Len(), "stale session record must be deleted")
	cookies := recorder.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Less(t, cookies[0].MaxAge, 0)
}

func TestIdentify_StaleSessionWithoutHeader(t *testing.T) {
	f := newIdentityFixture(t)

	request := httptest.NewRequest(http.MethodGet, "/", nil)
	request.AddCookie(f.sessionCookie(t, "user-a", "garbage"))

	principal, _ := f.serve(f.resolver(nil), request)
	assert.Nil(t, principal)
	assert.Equal(t, 0, f.store.Len())
}

func TestIdentify_RefreshTokenIsNotAnIdentity(t *testing.T) {
	f := newIdentityFixture(t)
	refresh, err := f.tokens.IssueRefresh("user-b")
	require.NoError(t, err)

	request := httptest.NewRequest(http.MethodGet, "/", nil)
	request.Header.Set("Authorization", "Bearer "+refresh)

	principal, _ := f.serve(f.resolver(nil), request)
	assert.Nil(t, principal)
}

type revocationList struct {
	revoked map[string]bool
	err     error
}

func (l *revocationList) IsRevoked(_ context.Context, jti string) (bool, error) {
	return l.revoked[jti], l.err
}

func TestIdentify_RevokedSessionToken(t *testing.T) {
	f := newIdentityFixture(t)
	token := f.token(t, "user-a")
	claims, err := f.tokens.Verify(token)
	require.NoError(t, err)

	request := httptest.NewRequest(http.MethodGet, "/", nil)
	request.AddCookie(f.sessionCookie(t, "user-a", token))

	principal, _ := f.serve(f.resolver(&revocationList{revoked: map[string]bool{claims.ID: true}}), request)
	assert.Nil(t, principal)
	assert.Equal(t, 0, f.store.Len())
}

func TestIdentify_RevocationOutageKeepsSession(t *testing.T) {
	f := newIdentityFixture(t)

	request := httptest.NewRequest(http.MethodGet, "/", nil)
	request.AddCookie(f.sessionCookie(t, "user-a", f.token(t, "user-a")))

	principal, _ := f.serve(f.resolver(&revocationList{err: errors.New("redis down")}), request)
	assert.Nil(t, principal, "fail closed while the revocation list is unreachable")
	assert.Equal(t, 1, f.store.Len(), "session survives an infrastructure error")
}

func TestBearerToken(t *testing.T) {
	tests := []struct {
		header string
		want   string
	}{
		{"Bearer abc", "abc"},
		{"bearer abc", "abc"},
		{"BEARER  abc ", "abc"},
		{"Basic abc", ""},
		{"Bearer", ""},
		{"", ""},
	}

	for _, tt := range tests {
		request := httptest.NewRequest(http.MethodGet, "/", nil)
		if tt.header != "" {
			request.Header.Set("Authorization", tt.header)
		}
		assert.Equal(t, tt.want, middleware.BearerToken(request), tt.header)
	}
}
