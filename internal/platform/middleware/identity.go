// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package middleware

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/taibuivan/memberdesk/internal/platform/constants"
	"github.com/taibuivan/memberdesk/internal/platform/ctxutil"
	"github.com/taibuivan/memberdesk/internal/platform/metrics"
	"github.com/taibuivan/memberdesk/internal/platform/sec"
	"github.com/taibuivan/memberdesk/internal/platform/session"
)

// TokenVerifier verifies a token and requires its kind.
type TokenVerifier interface {
	VerifyKind(token string, kind sec.TokenKind) (*sec.Claims, error)
}

// RevocationChecker reports whether a token id has been revoked.
type RevocationChecker interface {
	IsRevoked(ctx context.Context, jti string) (bool, error)
}

// SessionDestroyer clears a session record and its cookie.
type SessionDestroyer interface {
	Destroy(ctx context.Context, writer http.ResponseWriter, record *session.Record) error
}

var (
	errRevocationUnavailable = errors.New("revocation list unavailable")
	errTokenRevoked          = fmt.Errorf("%w: token revoked", sec.ErrTokenInvalid)
)

// IdentityResolver turns request credentials into a [sec.Principal].
//
// # Precedence
//
//  1. The access token stored in the session record. A token that fails
//     verification destroys the whole session before falling through.
//  2. An "Authorization: Bearer <token>" header.
//  3. Nothing: the request is anonymous.
//
// A valid session always wins over the header.
type IdentityResolver struct {
	verifier    TokenVerifier
	sessions    SessionDestroyer
	revocations RevocationChecker
}

// NewIdentityResolver creates a resolver. revocations may be nil.
func NewIdentityResolver(verifier TokenVerifier, sessions SessionDestroyer, revocations RevocationChecker) *IdentityResolver {
	return &IdentityResolver{verifier: verifier, sessions: sessions, revocations: revocations}
}

// Resolve returns the principal for request, or nil when it is anonymous.
func (resolver *IdentityResolver) Resolve(writer http.ResponseWriter, request *http.Request) *sec.Principal {
	ctx := request.Context()
	logger := ctxutil.GetLogger(ctx)

	// ── 1. Session ────────────────────────────────────────────────────────
	if record := session.FromContext(ctx); record != nil && record.Token != "" {
		claims, err := resolver.verify(ctx, record.Token)
		if err == nil {
			metrics.IdentityResolutions.WithLabelValues(string(sec.IdentityFromSession), "resolved").Inc()
			return &sec.Principal{ID: claims.Subject, Source: sec.IdentityFromSession, Claims: claims}
		}

		metrics.IdentityResolutions.WithLabelValues(string(sec.IdentityFromSession), outcomeOf(err)).Inc()
		if errors.Is(err, sec.ErrTokenInvalid) {
			logger.InfoContext(ctx, "stale_session_cleared", slog.String("reason", err.Error()))
			if destroyErr := resolver.sessions.Destroy(ctx, writer, record); destroyErr != nil {
				logger.WarnContext(ctx, "session_destroy_failed", slog.Any("error", destroyErr))
			}
		} else {
			logger.ErrorContext(ctx, "session_token_check_failed", slog.Any("error", err))
		}
	}

	// ── 2. Bearer header ──────────────────────────────────────────────────
	if token := BearerToken(request); token != "" {
		claims, err := resolver.verify(ctx, token)
		if err == nil {
			metrics.IdentityResolutions.WithLabelValues(string(sec.IdentityFromBearer), "resolved").Inc()
			return &sec.Principal{ID: claims.Subject, Source: sec.IdentityFromBearer, Claims: claims}
		}
		metrics.IdentityResolutions.WithLabelValues(string(sec.IdentityFromBearer), outcomeOf(err)).Inc()
		if !errors.Is(err, sec.ErrTokenInvalid) {
			logger.ErrorContext(ctx, "bearer_token_check_failed", slog.Any("error", err))
		}
	}

	// ── 3. Anonymous ──────────────────────────────────────────────────────
	return nil
}

// verify accepts only unrevoked access tokens.
func (resolver *IdentityResolver) verify(ctx context.Context, token string) (*sec.Claims, error) {
	claims, err := resolver.verifier.VerifyKind(token, sec.KindAccess)
	if err != nil {
		return nil, err
	}

	if resolver.revocations != nil {
		revoked, err := resolver.revocations.IsRevoked(ctx, claims.ID)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", errRevocationUnavailable, err)
		}
		if revoked {
			return nil, errTokenRevoked
		}
	}
	return claims, nil
}

func outcomeOf(err error) string {
	switch {
	case errors.Is(err, errRevocationUnavailable):
		return "error"
	case errors.Is(err, errTokenRevoked):
		return "revoked"
	default:
		return "invalid"
	}
}

// Identify resolves the principal once per request and stores it in the
// context. It never rejects a request; guards do.
func Identify(resolver *IdentityResolver) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			principal := resolver.Resolve(writer, request)
			if principal == nil {
				next.ServeHTTP(writer, request)
				return
			}

			ctx := ctxutil.WithPrincipal(request.Context(), principal)
			ctx = ctxutil.WithLogger(ctx, ctxutil.GetLogger(ctx).With(slog.String("user_id", principal.ID)))
			next.ServeHTTP(writer, request.WithContext(ctx))
		})
	}
}

// BearerToken extracts the token from an "Authorization: Bearer" header.
// The scheme is matched case-insensitively.
func BearerToken(request *http.Request) string {
	scheme, token, found := strings.Cut(request.Header.Get(constants.HeaderAuthorization), " ")
	if !found || !strings.EqualFold(scheme, "bearer") {
		return ""
	}
	return strings.TrimSpace(token)
}
