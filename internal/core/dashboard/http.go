// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package dashboard

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/taibuivan/memberdesk/internal/platform/constants"
	"github.com/taibuivan/memberdesk/internal/platform/ctxutil"
	"github.com/taibuivan/memberdesk/internal/platform/middleware"
	requestutil "github.com/taibuivan/memberdesk/internal/platform/request"
	"github.com/taibuivan/memberdesk/internal/platform/respond"
	"github.com/taibuivan/memberdesk/internal/platform/sec"
	"github.com/taibuivan/memberdesk/internal/platform/session"
	"github.com/taibuivan/memberdesk/internal/platform/view"
)

// # Definitions & Constructors

// Handler serves the role dashboards.
type Handler struct {
	dashboardService *Service
	sessions         *session.Manager
	guard            *middleware.Guard
	renderer         view.Renderer
}

// NewHandler constructs a new [Handler] with its dependencies.
func NewHandler(service *Service, sessions *session.Manager, guard *middleware.Guard, renderer view.Renderer) *Handler {
	return &Handler{dashboardService: service, sessions: sessions, guard: guard, renderer: renderer}
}

// APIRoutes returns the /api/dashboard route group.
//
// # Endpoints
//   - GET /stats  : Headline totals (any authenticated account).
//   - GET /admin  : Admin KPIs (admin).
//   - GET /staff  : Caller's record and history (staff or higher).
//   - GET /member : Caller's record and history (member or higher).
func (handler *Handler) APIRoutes() chi.Router {
	router := chi.NewRouter()

	router.With(handler.guard.API()).Get("/stats", handler.stats)
	router.With(handler.guard.API(sec.RoleAdmin)).Get("/admin", handler.adminJSON)
	router.With(handler.guard.API(sec.RoleStaff)).Get("/staff", handler.personalJSON)
	router.With(handler.guard.API(sec.RoleMember)).Get("/member", handler.personalJSON)

	return router
}

// MountUI registers the browser dashboards on router at their landing routes.
func (handler *Handler) MountUI(router chi.Router) {
	router.With(handler.guard.UI(sec.RoleAdmin)).Get(constants.RouteAdminDashboard, handler.adminPage)
	router.With(handler.guard.UI(sec.RoleStaff)).Get(constants.RouteStaffDashboard, handler.personalPage(view.StaffDashboard))
	router.With(handler.guard.UI(sec.RoleMember)).Get(constants.RouteMemberDashboard, handler.personalPage(view.MemberDashboard))
}

// # JSON Handlers

func (handler *Handler) stats(writer http.ResponseWriter, request *http.Request) {
	stats, err := handler.dashboardService.Stats(request.Context())
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, stats)
}

func (handler *Handler) adminJSON(writer http.ResponseWriter, request *http.Request) {
	admin, err := handler.dashboardService.Admin(request.Context())
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, admin)
}

func (handler *Handler) personalJSON(writer http.ResponseWriter, request *http.Request) {
	principal, err := requestutil.RequiredPrincipal(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	personal, err := handler.dashboardService.Personal(request.Context(), principal)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, personal)
}

// # UI Handlers

func (handler *Handler) adminPage(writer http.ResponseWriter, request *http.Request) {
	admin, err := handler.dashboardService.Admin(request.Context())
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	handler.render(writer, request, view.AdminDashboard, view.Data{"dashboard": admin})
}

func (handler *Handler) personalPage(name string) http.HandlerFunc {
	return func(writer http.ResponseWriter, request *http.Request) {
		principal, err := requestutil.RequiredPrincipal(request)
		if err != nil {
			respond.SeeOther(writer, request, constants.RouteLogin)
			return
		}

		personal, err := handler.dashboardService.Personal(request.Context(), principal)
		if err != nil {
			respond.Error(writer, request, err)
			return
		}
		handler.render(writer, request, name, view.Data{"dashboard": personal})
	}
}

func (handler *Handler) render(writer http.ResponseWriter, request *http.Request, name string, data view.Data) {
	data["flashes"] = handler.sessions.TakeFlashes(request.Context(), writer)
	if err := handler.renderer.Render(writer, request, http.StatusOK, name, data); err != nil {
		ctxutil.GetLogger(request.Context()).ErrorContext(request.Context(), "render_failed", slog.Any("error", err))
	}
}
