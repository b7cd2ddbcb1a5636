// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package auth

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/taibuivan/memberdesk/internal/platform/ctxutil"
	"github.com/taibuivan/memberdesk/internal/platform/middleware"
	requestutil "github.com/taibuivan/memberdesk/internal/platform/request"
	"github.com/taibuivan/memberdesk/internal/platform/respond"
	"github.com/taibuivan/memberdesk/internal/platform/session"
)

// # Definitions & Constructors

// Handler implements the JSON authentication endpoints.
//
// # Scope
//
// Token grant and refresh follow the OAuth2 password-flow response shape and
// are therefore not wrapped in the success envelope.
type Handler struct {
	authService *Service
	sessions    *session.Manager
	guard       *middleware.Guard
}

// NewHandler constructs a new [Handler] with its dependencies.
func NewHandler(service *Service, sessions *session.Manager, guard *middleware.Guard) *Handler {
	return &Handler{authService: service, sessions: sessions, guard: guard}
}

// Routes returns a [chi.Router] configured with authentication-specific routes.
//
// # Endpoints
//   - POST /token    : Password grant, returns access and refresh tokens.
//   - POST /register : Creates an account and returns an access token.
//   - POST /refresh  : Exchanges a refresh token for an access token.
//   - POST /logout   : Clears the session and revokes the token if enabled.
//   - GET  /me       : Returns the authenticated account with its roles.
func (handler *Handler) Routes() chi.Router {
	router := chi.NewRouter()

	// Public endpoints
	router.Post("/token", handler.token)
	router.Post("/register", handler.register)
	router.Post("/refresh", handler.refresh)
	router.Post("/logout", handler.logout)

	// Protected endpoints
	router.With(handler.guard.API()).Get("/me", handler.me)

	return router
}

// # Request Payloads

type credentialsRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type refreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

type registerResponse struct {
	User *User `json:"user"`
	*TokenPair
}

// readCredentials accepts a JSON body or a form post.
func readCredentials(request *http.Request) (credentialsRequest, error) {
	var input credentialsRequest
	if requestutil.IsJSON(request) {
		err := requestutil.DecodeJSON(request, &input)
		return input, err
	}

	form, err := requestutil.Form(request, FieldUsername, FieldEmail, FieldPassword)
	if err != nil {
		return input, err
	}
	input.Username = form[FieldUsername]
	input.Email = form[FieldEmail]
	input.Password = form[FieldPassword]
	return input, nil
}

/*
Token implements the OAuth2 password grant.

POST /api/auth/token

Request:
  - Form: username (the account email), password

Response:
  - 200: TokenPair
  - 401: invalid_credentials
*/
func (handler *Handler) token(writer http.ResponseWriter, request *http.Request) {
	input, err := readCredentials(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	email := input.Username
	if email == "" {
		email = input.Email
	}

	pair, err := handler.authService.IssueTokens(request.Context(), email, input.Password)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.JSON(writer, http.StatusOK, pair)
}

/*
Register creates an account linked to the default role.

POST /api/auth/register

Request:
  - Body: JSON or form with username, email, password

Response:
  - 201: { user, access_token, token_type, expires_in }
  - 400: validation_error
  - 409: duplicate_registration
*/
func (handler *Handler) register(writer http.ResponseWriter, request *http.Request) {
	input, err := readCredentials(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	user, pair, err := handler.authService.SignUp(request.Context(), RegisterInput{
		Username: input.Username,
		Email:    input.Email,
		Password: input.Password,
	})
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Created(writer, registerResponse{User: user, TokenPair: pair})
}

/*
Refresh exchanges a refresh token for a new access token.

POST /api/auth/refresh

Response:
  - 200: TokenPair without refresh_token
  - 401: token_invalid
*/
func (handler *Handler) refresh(writer http.ResponseWriter, request *http.Request) {
	refreshToken, err := readRefreshToken(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	pair, err := handler.authService.Refresh(request.Context(), refreshToken)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.JSON(writer, http.StatusOK, pair)
}

// readRefreshToken accepts a JSON body or a form post.
func readRefreshToken(request *http.Request) (string, error) {
	var input refreshRequest
	if requestutil.IsJSON(request) {
		err := requestutil.DecodeJSON(request, &input)
		return input.RefreshToken, err
	}

	form, err := requestutil.Form(request, FieldRefreshToken)
	if err != nil {
		return "", err
	}
	return form[FieldRefreshToken], nil
}

/*
Logout clears the caller's session and, when enabled, revokes the token that
identified the request along with the refresh token, if one is sent.

POST /api/auth/logout

Request:
  - Body: optional JSON or form with refresh_token

Response:
  - 204: always, for anonymous callers too
*/
func (handler *Handler) logout(writer http.ResponseWriter, request *http.Request) {
	refreshToken, err := readRefreshToken(request)
	if err != nil {
		refreshToken = ""
	}

	endSession(writer, request, handler.authService, handler.sessions, refreshToken)
	respond.NoContent(writer)
}

/*
Me returns the authenticated account.

GET /api/auth/me

Response:
  - 200: Profile
  - 401: not_authenticated
*/
func (handler *Handler) me(writer http.ResponseWriter, request *http.Request) {
	principal, err := requestutil.RequiredPrincipal(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	profile, err := handler.authService.Me(request.Context(), principal)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, profile)
}

// endSession revokes the session or bearer token and any extra tokens when
// enabled, then destroys the session unconditionally.
func endSession(writer http.ResponseWriter, request *http.Request, service *Service, sessions *session.Manager, extra ...string) {
	ctx := request.Context()
	logger := ctxutil.GetLogger(ctx)
	record := session.FromContext(ctx)

	token := middleware.BearerToken(request)
	if record != nil && record.Token != "" {
		token = record.Token
	}

	if err := service.Logout(ctx, append([]string{token}, extra...)...); err != nil {
		logger.ErrorContext(ctx, "logout_revoke_failed", slog.Any("error", err))
	}

	if record != nil {
		if err := sessions.Destroy(ctx, writer, record); err != nil {
			logger.WarnContext(ctx, "session_destroy_failed", slog.Any("error", err))
		}
	}
}
