// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package account_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/memberdesk/internal/platform/ctxutil"
	"github.com/taibuivan/memberdesk/internal/platform/middleware"
	"github.com/taibuivan/memberdesk/internal/platform/sec"
	"github.com/taibuivan/memberdesk/internal/platform/session"
	"github.com/taibuivan/memberdesk/internal/platform/view"
	"github.com/taibuivan/memberdesk/internal/users/account"
)

type noRoles struct{}

func (noRoles) ResolveRoles(context.Context, *sec.Principal) (sec.RoleSet, error) {
	return sec.NewRoleSet(), nil
}

// newRouter signs every request in as userID holding roles.
func newRouter(t *testing.T, members *memoryMembers, userID string, roles ...string) http.Handler {
	t.Helper()

	sessions := session.NewManager(session.NewMemoryStore(), session.CookieConfig{Name: "session", Path: "/"}, time.Hour)
	guard := middleware.NewGuard(noRoles{}, view.JSONRenderer{})
	handler := account.NewHandler(account.NewService(members), sessions, guard, view.JSONRenderer{})

	router := chi.NewRouter()
	router.Use(sessions.Middleware)
	if userID != "" {
		router.Use(func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
				principal := &sec.Principal{ID: userID, Source: sec.IdentityFromSession, Roles: sec.NewRoleSet(roles...)}
				next.ServeHTTP(writer, request.WithContext(ctxutil.WithPrincipal(request.Context(), principal)))
			})
		})
	}
	router.Mount("/api/members", handler.APIRoutes())
	router.Mount("/members", handler.UIRoutes())
	return router
}

func profileForm() url.Values {
	return url.Values{
		"first_name":    {"Ama"},
		"last_name":     {"Mensah"},
		"gender":        {"female"},
		"phone":         {"0244000001"},
		"email":         {"ama@example.org"},
		"date_of_birth": {"1990-04-12"},
	}
}

func postForm(router http.Handler, values url.Values) *httptest.ResponseRecorder {
	request := httptest.NewRequest(http.MethodPost, "/members/profile/edit", strings.NewReader(values.Encode()))
	request.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, request)
	return recorder
}

func TestProfileEdit_RedirectsByRole(t *testing.T) {
	tests := []struct {
		roles []string
		want  string
	}{
		{roles: []string{"member"}, want: "/member/dashboard"},
		{roles: []string{"member", "staff"}, want: "/staff/dashboard"},
		{roles: []string{"admin"}, want: "/admin/dashboard"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			router := newRouter(t, newMemoryMembers(), "user-1", tt.roles...)

			recorder := postForm(router, profileForm())

			assert.Equal(t, http.StatusSeeOther, recorder.Code)
			assert.Equal(t, tt.want, recorder.Header().Get("Location"))
		})
	}
}

func TestProfileEdit_ConflictRerenders(t *testing.T) {
	members := newMemoryMembers()
	first := postForm(newRouter(t, members, "user-1", "member"), profileForm())
	require.Equal(t, http.StatusSeeOther, first.Code)

	values := profileForm()
	values.Set("email", "kofi@example.org")
	recorder := postForm(newRouter(t, members, "user-2", "member"), values)

	require.Equal(t, http.StatusBadRequest, recorder.Code)

	var body struct {
		View string         `json:"view"`
		Data map[string]any `json:"data"`
	}
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &body))
	assert.Equal(t, view.ProfileEdit, body.View)
	assert.Equal(t, "This phone number is already registered.", body.Data["error"])
}

func TestProfileEdit_AnonymousRedirectsToLogin(t *testing.T) {
	router := newRouter(t, newMemoryMembers(), "")

	request := httptest.NewRequest(http.MethodGet, "/members/profile/edit", nil)
	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, request)

	assert.Equal(t, http.StatusSeeOther, recorder.Code)
	assert.Equal(t, "/auth/login", recorder.Header().Get("Location"))
}

func TestProfileEdit_PageWithoutRecord(t *testing.T) {
	router := newRouter(t, newMemoryMembers(), "user-1", "member")

	request := httptest.NewRequest(http.MethodGet, "/members/profile/edit", nil)
	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, request)

	assert.Equal(t, http.StatusOK, recorder.Code)
	assert.Contains(t, recorder.Body.String(), `"view":"members/profile_edit"`)
}

func TestAPI_PutThenGet(t *testing.T) {
	router := newRouter(t, newMemoryMembers(), "user-1", "member")

	request := httptest.NewRequest(http.MethodGet, "/api/members/me", nil)
	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, request)
	assert.Equal(t, http.StatusNotFound, recorder.Code)

	payload := `{"first_name":"Ama","last_name":"Mensah","phone":"0244000001"}`
	request = httptest.NewRequest(http.MethodPut, "/api/members/me", strings.NewReader(payload))
	request.Header.Set("Content-Type", "application/json")
	recorder = httptest.NewRecorder()
	router.ServeHTTP(recorder, request)
	require.Equal(t, http.StatusCreated, recorder.Code)

	request = httptest.NewRequest(http.MethodPut, "/api/members/me", strings.NewReader(payload))
	request.Header.Set("Content-Type", "application/json")
	recorder = httptest.NewRecorder()
	router.ServeHTTP(recorder, request)
	require.Equal(t, http.StatusOK, recorder.Code)

	request = httptest.NewRequest(http.MethodGet, "/api/members/me", nil)
	recorder = httptest.NewRecorder()
	router.ServeHTTP(recorder, request)
	require.Equal(t, http.StatusOK, recorder.Code)

	var body struct {
		Data account.Member `json:"data"`
	}
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &body))
	assert.Equal(t, "MEM0001", body.Data.MemberCode)
}

func TestAPI_Anonymous(t *testing.T) {
	router := newRouter(t, newMemoryMembers(), "")

	request := httptest.NewRequest(http.MethodGet, "/api/members/me", nil)
	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, request)

	assert.Equal(t, http.StatusUnauthorized, recorder.Code)
}
