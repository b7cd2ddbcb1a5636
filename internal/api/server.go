// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package api wires together the HTTP router, middleware chain, and all
domain handlers into a runnable [http.Server].

Architecture:

  - This package is the topmost Presentation layer boundary.
  - It acts as the central composition root for the HTTP transport framework (chi router).
  - Only this package and cmd/api are allowed to import net/http server primitives.
*/
package api

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/taibuivan/memberdesk/internal/core/dashboard"
	"github.com/taibuivan/memberdesk/internal/platform/config"
	"github.com/taibuivan/memberdesk/internal/platform/constants"
	"github.com/taibuivan/memberdesk/internal/platform/metrics"
	"github.com/taibuivan/memberdesk/internal/platform/middleware"
	"github.com/taibuivan/memberdesk/internal/platform/session"
	"github.com/taibuivan/memberdesk/internal/platform/telemetry"
	"github.com/taibuivan/memberdesk/internal/users/account"
	"github.com/taibuivan/memberdesk/internal/users/auth"
)

// # Server Definitions

// Server wraps the chi router and the [http.Server].
//
// It is constructed once in main.go with all dependencies injected.
type Server struct {
	httpServer *http.Server
	router     *chi.Mux
	log        *slog.Logger
}

// # Handler Registry

// Handlers groups all domain-specific HTTP handler sets.
type Handlers struct {
	// Liveness is the /health handler. It returns 200 while the process is up.
	Liveness http.HandlerFunc

	// Readiness is the /ready handler. It returns 200 when all deps are healthy.
	Readiness http.HandlerFunc

	// Auth serves the JSON token endpoints.
	Auth *auth.Handler

	// AuthUI serves the browser login, registration and logout flow.
	AuthUI *auth.UIHandler

	// Account serves profile completion.
	Account *account.Handler

	// Dashboard serves the role dashboards.
	Dashboard *dashboard.Handler
}

// Identity bundles what the request chain needs to recognise a caller.
type Identity struct {
	Sessions *session.Manager
	Resolver *middleware.IdentityResolver
}

// # Server Initialization

/*
NewServer constructs the chi router with the full middleware chain and
registers all route groups.

Middleware order: request id, logging, metrics, panic recovery, timeout,
rate limit, CORS, path cleanup, session load, identity.
*/
func NewServer(ctx context.Context, cfg *config.Config, log *slog.Logger, identity Identity, tracing *telemetry.Tracing, h Handlers) *Server {
	r := chi.NewRouter()

	// # Middleware Chain
	r.Use(middleware.RequestID())
	r.Use(middleware.StructuredLogger(log))
	r.Use(metrics.Instrument)
	r.Use(middleware.PanicRecovery)
	r.Use(chimw.Timeout(constants.GlobalRequestTimeout))
	r.Use(middleware.RateLimit(ctx))
	r.Use(middleware.CORS(cfg))
	r.Use(chimw.CleanPath)

	// # Infrastructure Endpoints
	// Unauthenticated probes for container orchestration.
	r.Get("/health", h.Liveness)
	r.Get("/ready", h.Readiness)
	r.Handle("/metrics", metrics.Handler())

	// # Application Routes
	r.Group(func(app chi.Router) {
		app.Use(identity.Sessions.Middleware)
		app.Use(middleware.Identify(identity.Resolver))

		app.Get("/", func(writer http.ResponseWriter, request *http.Request) {
			http.Redirect(writer, request, constants.RouteLogin, http.StatusSeeOther)
		})

		app.Mount("/auth", h.AuthUI.Routes())
		app.Mount("/members", h.Account.UIRoutes())
		h.Dashboard.MountUI(app)

		app.Route("/api", func(api chi.Router) {
			api.Mount("/auth", h.Auth.Routes())
			api.Mount("/members", h.Account.APIRoutes())
			api.Mount("/dashboard", h.Dashboard.APIRoutes())
		})
	})

	return &Server{
		router: r,
		log:    log,
		httpServer: &http.Server{
			Addr:              ":" + cfg.ServerPort,
			Handler:           tracing.Middleware(r),
			ReadTimeout:       constants.DefaultReadTimeout,
			WriteTimeout:      constants.DefaultWriteTimeout,
			IdleTimeout:       constants.DefaultIdleTimeout,
			ReadHeaderTimeout: constants.DefaultReadHeaderTimeout,
		},
	}
}

// Handler returns the root handler without the tracing wrapper.
func (s *Server) Handler() http.Handler {
	return s.router
}

// # Server Lifecycle

// ListenAndServe starts the HTTP server.
//
// It blocks until the server is closed or an error occurs.
func (s *Server) ListenAndServe() error {
	s.log.Info("server_starting", slog.String("addr", s.httpServer.Addr))
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully stops the server, waiting for in-flight requests.
func (s *Server) Shutdown(timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	return s.httpServer.Shutdown(ctx)
}
