// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package middleware_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/memberdesk/internal/platform/apperr"
	"github.com/taibuivan/memberdesk/internal/platform/ctxutil"
	"github.com/taibuivan/memberdesk/internal/platform/middleware"
	"github.com/taibuivan/memberdesk/internal/platform/respond"
	"github.com/taibuivan/memberdesk/internal/platform/sec"
	"github.com/taibuivan/memberdesk/internal/platform/view"
)

type staticRoles struct {
	roles sec.RoleSet
	err   error
	calls int
}

func (s *staticRoles) ResolveRoles(context.Context, *sec.Principal) (sec.RoleSet, error) {
	s.calls++
	return s.roles, s.err
}

// guarded wraps a handler that records the principal it was given.
func guarded(mw func(http.Handler) http.Handler, seen **sec.Principal) http.Handler {
	return mw(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		*seen = ctxutil.GetPrincipal(request.Context())
		writer.WriteHeader(http.StatusOK)
	}))
}

func requestAs(principal *sec.Principal) *http.Request {
	request := httptest.NewRequest(http.MethodGet, "/", nil)
	if principal != nil {
		request = request.WithContext(ctxutil.WithPrincipal(request.Context(), principal))
	}
	return request
}

func errorCode(t *testing.T, recorder *httptest.ResponseRecorder) string {
	t.Helper()
	var envelope respond.ErrorEnvelope
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &envelope))
	return envelope.Code
}

func TestGuardAPI_Unauthenticated(t *testing.T) {
	guard := middleware.NewGuard(&staticRoles{}, view.JSONRenderer{})

	var seen *sec.Principal
	recorder := httptest.NewRecorder()
	guarded(guard.API(sec.RoleMember), &seen).ServeHTTP(recorder, requestAs(nil))

	assert.Equal(t, http.StatusUnauthorized, recorder.Code)
	assert.Equal(t, apperr.CodeNotAuthenticated, errorCode(t, recorder))
	assert.Nil(t, seen)
}

/*
TestGuardAPI_Hierarchy verifies allow/deny across the built-in roles.
*/
func TestGuardAPI_Hierarchy(t *testing.T) {
	tests := []struct {
		name     string
		granted  []string
		required []sec.RoleName
		status   int
	}{
		{"staff_on_member_route", []string{"staff"}, []sec.RoleName{sec.RoleMember}, http.StatusOK},
		{"admin_on_staff_route", []string{"admin"}, []sec.RoleName{sec.RoleStaff}, http.StatusOK},
		{"member_on_staff_route", []string{"member"}, []sec.RoleName{sec.RoleStaff}, http.StatusForbidden},
		{"staff_on_admin_route", []string{"staff"}, []sec.RoleName{sec.RoleAdmin}, http.StatusForbidden},
		{"any_of_required", []string{"staff"}, []sec.RoleName{sec.RoleAdmin, sec.RoleStaff}, http.StatusOK},
		{"no_roles", nil, []sec.RoleName{sec.RoleMember}, http.StatusForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			roles := &staticRoles{roles: sec.NewRoleSet(tt.granted...)}
			guard := middleware.NewGuard(roles, view.JSONRenderer{})

			var seen *sec.Principal
			recorder := httptest.NewRecorder()
			guarded(guard.API(tt.required...), &seen).ServeHTTP(recorder, requestAs(&sec.Principal{ID: "user-1"}))

			assert.Equal(t, tt.status, recorder.Code)
			if tt.status == http.StatusOK {
				require.NotNil(t, seen)
				assert.Equal(t, sec.NewRoleSet(tt.granted...), seen.Roles)
			} else {
				assert.Equal(t, apperr.CodeNotAuthorized, errorCode(t, recorder))
				assert.Nil(t, seen)
			}
		})
	}
}

func TestGuardAPI_RoleLookupFailureDenies(t *testing.T) {
	guard := middleware.NewGuard(&staticRoles{err: errors.New("db down")}, view.JSONRenderer{})

	var seen *sec.Principal
	recorder := httptest.NewRecorder()
	guarded(guard.API(sec.RoleMember), &seen).ServeHTTP(recorder, requestAs(&sec.Principal{ID: "user-1"}))

	assert.Equal(t, http.StatusForbidden, recorder.Code)
	assert.Nil(t, seen)
}

func TestGuardAPI_AuthenticationOnly(t *testing.T) {
	roles := &staticRoles{roles: sec.RoleSet{}}
	guard := middleware.NewGuard(roles, view.JSONRenderer{})

	var seen *sec.Principal
	recorder := httptest.NewRecorder()
	guarded(guard.API(), &seen).ServeHTTP(recorder, requestAs(&sec.Principal{ID: "user-1"}))

	assert.Equal(t, http.StatusOK, recorder.Code)
	require.NotNil(t, seen)
	assert.NotNil(t, seen.Roles)
}

func TestGuard_ReusesResolvedRoles(t *testing.T) {
	roles := &staticRoles{roles: sec.NewRoleSet("admin")}
	guard := middleware.NewGuard(roles, view.JSONRenderer{})

	var seen *sec.Principal
	chain := guard.API()(guarded(guard.API(sec.RoleAdmin), &seen))
	chain.ServeHTTP(httptest.NewRecorder(), requestAs(&sec.Principal{ID: "user-1"}))

	require.NotNil(t, seen)
	assert.Equal(t, 1, roles.calls)
}

func TestGuardUI_RedirectsAnonymous(t *testing.T) {
	guard := middleware.NewGuard(&staticRoles{}, view.JSONRenderer{})

	var seen *sec.Principal
	recorder := httptest.NewRecorder()
	guarded(guard.UI(sec.RoleAdmin), &seen).ServeHTTP(recorder, requestAs(nil))

	assert.Equal(t, http.StatusSeeOther, recorder.Code)
	assert.Equal(t, "/auth/login", recorder.Header().Get("Location"))
}

func TestGuardUI_RendersAccessDenied(t *testing.T) {
	guard := middleware.NewGuard(&staticRoles{roles: sec.NewRoleSet("member")}, view.JSONRenderer{})

	var seen *sec.Principal
	recorder := httptest.NewRecorder()
	guarded(guard.UI(sec.RoleAdmin), &seen).ServeHTTP(recorder, requestAs(&sec.Principal{ID: "user-1"}))

	assert.Equal(t, http.StatusForbidden, recorder.Code)

	var body struct {
		View string `json:"view"`
	}
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &body))
	assert.Equal(t, view.AccessDenied, body.View)
	assert.Nil(t, seen)
}
