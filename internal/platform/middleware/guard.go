// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package middleware

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/taibuivan/memberdesk/internal/platform/apperr"
	"github.com/taibuivan/memberdesk/internal/platform/constants"
	"github.com/taibuivan/memberdesk/internal/platform/ctxutil"
	"github.com/taibuivan/memberdesk/internal/platform/metrics"
	"github.com/taibuivan/memberdesk/internal/platform/respond"
	"github.com/taibuivan/memberdesk/internal/platform/sec"
	"github.com/taibuivan/memberdesk/internal/platform/view"
	"github.com/taibuivan/memberdesk/pkg/slice"
)

// RoleResolver loads the role set of a principal.
type RoleResolver interface {
	ResolveRoles(ctx context.Context, principal *sec.Principal) (sec.RoleSet, error)
}

// Guard enforces authentication and role requirements on route groups.
//
// # Usage
//
// Mount after [Identify]:
//
//	r.With(guard.API(sec.RoleStaff)).Get("/attendance", h.list)
//	r.With(guard.UI(sec.RoleAdmin)).Get("/admin/dashboard", h.admin)
//
// With no roles the guard only requires a principal. Handlers behind a guard
// always receive a principal with its roles attached.
type Guard struct {
	roles     RoleResolver
	renderer  view.Renderer
	loginPath string
}

// NewGuard creates a Guard. UI denials render through renderer.
func NewGuard(roles RoleResolver, renderer view.Renderer) *Guard {
	return &Guard{roles: roles, renderer: renderer, loginPath: constants.RouteLogin}
}

// API denies with JSON: 401 not_authenticated or 403 not_authorized.
func (guard *Guard) API(required ...sec.RoleName) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			principal, denial := guard.decide(request, "api", required)
			if denial != nil {
				respond.Error(writer, request, denial)
				return
			}
			next.ServeHTTP(writer, request.WithContext(ctxutil.WithPrincipal(request.Context(), principal)))
		})
	}
}

// UI redirects anonymous requests to the login page and renders the
// access-denied view with 403 for missing roles.
func (guard *Guard) UI(required ...sec.RoleName) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			principal, denial := guard.decide(request, "ui", required)
			if denial != nil {
				if denial.Code == apperr.CodeNotAuthenticated {
					respond.SeeOther(writer, request, guard.loginPath)
					return
				}
				if err := guard.renderer.Render(writer, request, denial.HTTPStatus, view.AccessDenied, view.Data{
					"error":    denial.Message,
					"required": roleNames(required),
				}); err != nil {
					ctxutil.GetLogger(request.Context()).ErrorContext(request.Context(), "render_failed", slog.Any("error", err))
				}
				return
			}
			next.ServeHTTP(writer, request.WithContext(ctxutil.WithPrincipal(request.Context(), principal)))
		})
	}
}

// decide returns the role-attached principal, or the denial to send.
func (guard *Guard) decide(request *http.Request, surface string, required []sec.RoleName) (*sec.Principal, *apperr.AppError) {
	ctx := request.Context()
	logger := ctxutil.GetLogger(ctx)

	principal := ctxutil.GetPrincipal(ctx)
	if principal == nil {
		metrics.AccessDecisions.WithLabelValues(surface, "unauthenticated").Inc()
		return nil, apperr.NotAuthenticated()
	}

	roles := principal.Roles
	if roles == nil {
		resolved, err := guard.roles.ResolveRoles(ctx, principal)
		if err != nil {
			// Role lookups fail closed.
			metrics.AccessDecisions.WithLabelValues(surface, "error").Inc()
			logger.ErrorContext(ctx, "role_resolution_failed", slog.Any("error", err))
			return nil, apperr.NotAuthorized().WithCause(err)
		}
		roles = resolved
	}

	if len(required) > 0 && !sec.Authorize(roles, required...) {
		metrics.AccessDecisions.WithLabelValues(surface, "forbidden").Inc()
		logger.InfoContext(ctx, "access_denied",
			slog.Any("granted", roles.Names()),
			slog.Any("required", roleNames(required)),
		)
		return nil, apperr.NotAuthorized()
	}

	metrics.AccessDecisions.WithLabelValues(surface, "allow").Inc()
	return principal.WithRoles(roles), nil
}

func roleNames(roles []sec.RoleName) []string {
	return slice.Map(roles, func(role sec.RoleName) string { return string(role) })
}
