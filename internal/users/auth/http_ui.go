// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package auth

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/taibuivan/memberdesk/internal/platform/apperr"
	"github.com/taibuivan/memberdesk/internal/platform/constants"
	"github.com/taibuivan/memberdesk/internal/platform/ctxutil"
	requestutil "github.com/taibuivan/memberdesk/internal/platform/request"
	"github.com/taibuivan/memberdesk/internal/platform/respond"
	"github.com/taibuivan/memberdesk/internal/platform/session"
	"github.com/taibuivan/memberdesk/internal/platform/view"
)

// UIHandler implements the browser login, registration and logout flow.
// Successful posts redirect with 303; failures re-render the form with 400.
type UIHandler struct {
	authService *Service
	sessions    *session.Manager
	renderer    view.Renderer
}

// NewUIHandler constructs a new [UIHandler].
func NewUIHandler(service *Service, sessions *session.Manager, renderer view.Renderer) *UIHandler {
	return &UIHandler{authService: service, sessions: sessions, renderer: renderer}
}

// Routes returns the /auth route group.
func (handler *UIHandler) Routes() chi.Router {
	router := chi.NewRouter()

	router.Get("/login", handler.loginPage)
	router.Post("/login", handler.login)
	router.Get("/register", handler.registerPage)
	router.Post("/register", handler.register)
	router.Get("/logout", handler.logout)

	return router
}

func (handler *UIHandler) loginPage(writer http.ResponseWriter, request *http.Request) {
	handler.render(writer, request, http.StatusOK, view.Login, view.Data{})
}

func (handler *UIHandler) registerPage(writer http.ResponseWriter, request *http.Request) {
	handler.render(writer, request, http.StatusOK, view.Register, view.Data{})
}

/*
Login authenticates a form post and signs the browser session in.

POST /auth/login

Request:
  - Form: email, password

Response:
  - 303: to the dashboard of the highest role held
  - 400: login view with "Invalid credentials"
*/
func (handler *UIHandler) login(writer http.ResponseWriter, request *http.Request) {
	ctx := request.Context()

	form, err := requestutil.Form(request, FieldEmail, FieldPassword)
	if err != nil {
		handler.fail(writer, request, view.Login, err, view.Data{})
		return
	}

	result, err := handler.authService.Login(ctx, form[FieldEmail], form[FieldPassword])
	if err != nil {
		handler.fail(writer, request, view.Login, err, view.Data{FieldEmail: form[FieldEmail]})
		return
	}

	record := currentRecord(request)
	record.SignIn(result.User.ID, result.AccessToken)
	if err := handler.sessions.Renew(ctx, writer, record); err != nil {
		handler.fail(writer, request, view.Login, err, view.Data{})
		return
	}

	ctxutil.GetLogger(ctx).InfoContext(ctx, "user_logged_in",
		slog.String("user_id", result.User.ID),
		slog.String("landing", result.LandingURL),
	)
	respond.SeeOther(writer, request, result.LandingURL)
}

/*
Register opens an account from a form post and signs it in.

POST /auth/register

Request:
  - Form: username, email, password

Response:
  - 303: to the profile completion page
  - 400: register view with "Email already registered" or field errors
*/
func (handler *UIHandler) register(writer http.ResponseWriter, request *http.Request) {
	ctx := request.Context()

	form, err := requestutil.Form(request, FieldUsername, FieldEmail, FieldPassword)
	if err != nil {
		handler.fail(writer, request, view.Register, err, view.Data{})
		return
	}

	user, pair, err := handler.authService.SignUp(ctx, RegisterInput{
		Username: form[FieldUsername],
		Email:    form[FieldEmail],
		Password: form[FieldPassword],
	})
	if err != nil {
		handler.fail(writer, request, view.Register, err, view.Data{
			FieldUsername: form[FieldUsername],
			FieldEmail:    form[FieldEmail],
		})
		return
	}

	record := currentRecord(request)
	record.SignIn(user.ID, pair.AccessToken)
	record.AddFlash(session.FlashSuccess, "Account created. Please complete your profile.")
	if err := handler.sessions.Renew(ctx, writer, record); err != nil {
		handler.fail(writer, request, view.Register, err, view.Data{})
		return
	}

	respond.SeeOther(writer, request, constants.RouteProfileEdit)
}

// Logout clears the whole session and returns to the login page.
//
// GET /auth/logout
func (handler *UIHandler) logout(writer http.ResponseWriter, request *http.Request) {
	endSession(writer, request, handler.authService, handler.sessions)
	handler.sessions.Flash(request.Context(), writer, session.FlashInfo, "You have been logged out.")
	respond.SeeOther(writer, request, constants.RouteLogin)
}

// fail re-renders a form. Client errors keep their message and become 400;
// server errors show a generic message with their own status.
func (handler *UIHandler) fail(writer http.ResponseWriter, request *http.Request, name string, err error, data view.Data) {
	appErr := respond.Classify(request, err)

	status := http.StatusBadRequest
	if appErr.HTTPStatus >= http.StatusInternalServerError {
		status = appErr.HTTPStatus
	}

	data["error"] = appErr.Message
	if appErr.Code == apperr.CodeValidation {
		data["details"] = appErr.Details
	}
	handler.render(writer, request, status, name, data)
}

func (handler *UIHandler) render(writer http.ResponseWriter, request *http.Request, status int, name string, data view.Data) {
	data["flashes"] = handler.sessions.TakeFlashes(request.Context(), writer)
	if err := handler.renderer.Render(writer, request, status, name, data); err != nil {
		ctxutil.GetLogger(request.Context()).ErrorContext(request.Context(), "render_failed", slog.Any("error", err))
	}
}

// currentRecord returns the request's session record, or a new one when the
// session middleware is not mounted.
func currentRecord(request *http.Request) *session.Record {
	if record := session.FromContext(request.Context()); record != nil {
		return record
	}
	return &session.Record{}
}
