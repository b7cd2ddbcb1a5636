// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Command api is the entry point for the Memberdesk HTTP server.
//
// # Startup Sequence
//
//  1. Initialize structured logger.
//  2. Load configuration from environment variables.
//  3. Connect to PostgreSQL (pgxpool).
//  4. Connect to Redis.
//  5. Run database migrations (idempotent).
//  6. Build the token service, session manager and identity chain.
//  7. Wire HTTP handlers.
//  8. Start HTTP server with graceful shutdown.
//
// No business logic lives here. All wiring is explicit constructor injection.
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/taibuivan/memberdesk/internal/api"
	"github.com/taibuivan/memberdesk/internal/core/dashboard"
	"github.com/taibuivan/memberdesk/internal/platform/config"
	"github.com/taibuivan/memberdesk/internal/platform/constants"
	"github.com/taibuivan/memberdesk/internal/platform/middleware"
	"github.com/taibuivan/memberdesk/internal/platform/migration"
	pgstore "github.com/taibuivan/memberdesk/internal/platform/postgres"
	redisstore "github.com/taibuivan/memberdesk/internal/platform/redis"
	"github.com/taibuivan/memberdesk/internal/platform/sec"
	"github.com/taibuivan/memberdesk/internal/platform/session"
	"github.com/taibuivan/memberdesk/internal/platform/telemetry"
	"github.com/taibuivan/memberdesk/internal/platform/view"
	"github.com/taibuivan/memberdesk/internal/users/account"
	"github.com/taibuivan/memberdesk/internal/users/auth"
)

func main() {
	// ── 1. Logger ──────────────────────────────────────────────────────────
	// Initialize first so that subsequent startup errors are structured JSON.
	log := newLogger(slog.LevelInfo)
	slog.SetDefault(log)

	log.Info("service_initializing", slog.String("version", constants.AppVersion))

	// ── 2. Configuration ──────────────────────────────────────────────────
	cfg, err := config.Load()
	must(log, err, "load configuration")

	if cfg.Debug {
		log = newLogger(slog.LevelDebug)
		slog.SetDefault(log)
		log.Debug("debug_logging_enabled")
	}

	log.Info("configuration_loaded",
		slog.String("environment", cfg.Environment),
		slog.String("port", cfg.ServerPort),
		slog.Bool("token_revocation", cfg.TokenRevocationEnabled),
	)

	// Root context for background workers; cancelled on shutdown.
	rootCtx, rootCancel := context.WithCancel(context.Background())
	defer rootCancel()

	startupCtx, startupCancel := context.WithTimeout(rootCtx, 30*time.Second)
	defer startupCancel()

	// ── 3. PostgreSQL ─────────────────────────────────────────────────────
	pool, err := pgstore.NewPool(startupCtx, cfg.DatabaseURL, log)
	must(log, err, "connect to postgres")
	defer func() {
		log.Info("closing_postgres_pool")
		pool.Close()
	}()

	// ── 4. Redis ──────────────────────────────────────────────────────────
	rdb, err := redisstore.NewClient(startupCtx, cfg.RedisURL, log)
	must(log, err, "connect to redis")
	defer func() {
		log.Info("closing_redis_client")
		if cerr := rdb.Close(); cerr != nil {
			log.Error("redis_close_failed", slog.Any("error", cerr))
		}
	}()

	// ── 5. Migrations ─────────────────────────────────────────────────────
	must(log, migration.RunUp(cfg.DatabaseURL, cfg.MigrationPath, log), "run migrations")

	// ── 6. Security ───────────────────────────────────────────────────────
	tokens, err := sec.NewTokenService(sec.TokenConfig{
		Secret:     cfg.SecretKey,
		Algorithm:  cfg.Algorithm,
		AccessTTL:  cfg.AccessTokenTTL(),
		RefreshTTL: cfg.RefreshTokenTTL(),
	})
	must(log, err, "initialize token service")

	sessions := session.NewManager(session.NewRedisStore(rdb), session.CookieConfig{
		Name:   cfg.SessionCookieName,
		Path:   "/",
		Secure: cfg.CookieSecure,
	}, cfg.SessionTTL())

	// Interfaces stay nil unless revocation is enabled.
	var revocations auth.RevocationStore
	var revocationChecker middleware.RevocationChecker
	if cfg.TokenRevocationEnabled {
		store := auth.NewRevocationStore(rdb)
		revocations, revocationChecker = store, store
	}

	tracing, err := telemetry.Init(startupCtx, constants.AppName, cfg.OTLPEndpoint)
	must(log, err, "initialize tracing")

	// ── 7. Domain Wiring ──────────────────────────────────────────────────
	renderer := view.JSONRenderer{}

	userRepository := auth.NewUserRepository(pool)
	roleRepository := auth.NewRoleRepository(pool)
	roleResolver := auth.NewRoleResolver(roleRepository)
	guard := middleware.NewGuard(roleResolver, renderer)

	authService := auth.NewService(userRepository, roleResolver, tokens, auth.Options{
		DefaultRole: sec.NormalizeRole(cfg.DefaultUserRole),
		Revocations: revocations,
	})
	accountService := account.NewService(account.NewMemberRepository(pool))
	dashboardService := dashboard.NewService(dashboard.NewRepository(pool))

	liveness, readiness := api.NewHealthHandlers(api.HealthDependencies{
		CheckDatabase: func(ctx context.Context) error {
			return pgstore.Ping(ctx, pool)
		},
		CheckCache: func(ctx context.Context) error {
			return redisstore.Ping(ctx, rdb)
		},
	}, log)

	handlers := api.Handlers{
		Liveness:  liveness,
		Readiness: readiness,
		Auth:      auth.NewHandler(authService, sessions, guard),
		AuthUI:    auth.NewUIHandler(authService, sessions, renderer),
		Account:   account.NewHandler(accountService, sessions, guard, renderer),
		Dashboard: dashboard.NewHandler(dashboardService, sessions, guard, renderer),
	}

	identity := api.Identity{
		Sessions: sessions,
		Resolver: middleware.NewIdentityResolver(tokens, sessions, revocationChecker),
	}

	// ── 8. HTTP Server ────────────────────────────────────────────────────
	server := api.NewServer(rootCtx, cfg, log, identity, tracing, handlers)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGTERM, syscall.SIGINT)

	serverErr := make(chan error, 1)
	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	// Block until OS signal or server error.
	select {
	case sig := <-quit:
		log.Info("shutdown_signal_received", slog.String("signal", sig.String()))
	case err := <-serverErr:
		log.Error("server_startup_failed", slog.Any("error", err))
	}

	shutdownTimeout := constants.ShutdownTimeout
	log.Info("server_shutting_down", slog.Duration("timeout", shutdownTimeout))

	if err := server.Shutdown(shutdownTimeout); err != nil {
		log.Error("server_shutdown_failed", slog.Any("error", err))
	}

	flushCtx, flushCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer flushCancel()
	if err := tracing.Shutdown(flushCtx); err != nil {
		log.Error("tracing_shutdown_failed", slog.Any("error", err))
	}

	log.Info("server_stopped")
}

// newLogger builds the app-scoped JSON logger.
func newLogger(level slog.Level) *slog.Logger {
	handler := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level})
	return slog.New(handler).With(slog.String("app", constants.AppName))
}

// must logs a structured fatal error and terminates the process if err is non-nil.
//
// It is limited to startup wiring. After startup, all errors are returned
// and handled explicitly.
func must(log *slog.Logger, err error, step string) {
	if err != nil {
		log.Error("startup_failed",
			slog.String("step", step),
			slog.Any("error", err),
		)
		os.Exit(1)
	}
}
