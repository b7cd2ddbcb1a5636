// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package account

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/taibuivan/memberdesk/internal/platform/apperr"
	"github.com/taibuivan/memberdesk/internal/platform/ctxutil"
	"github.com/taibuivan/memberdesk/internal/platform/middleware"
	requestutil "github.com/taibuivan/memberdesk/internal/platform/request"
	"github.com/taibuivan/memberdesk/internal/platform/respond"
	"github.com/taibuivan/memberdesk/internal/platform/session"
	"github.com/taibuivan/memberdesk/internal/platform/view"
	"github.com/taibuivan/memberdesk/internal/users/auth"
)

// # Definitions & Constructors

// Handler serves the member profile over JSON and the browser form.
type Handler struct {
	accountService *Service
	sessions       *session.Manager
	guard          *middleware.Guard
	renderer       view.Renderer
}

// NewHandler constructs a new [Handler] with its dependencies.
func NewHandler(service *Service, sessions *session.Manager, guard *middleware.Guard, renderer view.Renderer) *Handler {
	return &Handler{accountService: service, sessions: sessions, guard: guard, renderer: renderer}
}

// APIRoutes returns the /api/members route group.
//
// # Endpoints
//   - GET /me : The caller's member record.
//   - PUT /me : Creates or updates the caller's member record.
func (handler *Handler) APIRoutes() chi.Router {
	router := chi.NewRouter()
	router.Use(handler.guard.API())

	router.Get("/me", handler.getProfile)
	router.Put("/me", handler.putProfile)

	return router
}

// UIRoutes returns the /members route group.
func (handler *Handler) UIRoutes() chi.Router {
	router := chi.NewRouter()
	router.Use(handler.guard.UI())

	router.Get("/profile/edit", handler.editPage)
	router.Post("/profile/edit", handler.edit)

	return router
}

// # JSON Handlers

func (handler *Handler) getProfile(writer http.ResponseWriter, request *http.Request) {
	principal, err := requestutil.RequiredPrincipal(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	member, err := handler.accountService.Profile(request.Context(), principal.ID)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, member)
}

/*
PutProfile creates or updates the caller's member record.

PUT /api/members/me

Response:
  - 201: member (first save)
  - 200: member
  - 400: validation_error
  - 409: conflict on phone, email or member code
*/
func (handler *Handler) putProfile(writer http.ResponseWriter, request *http.Request) {
	principal, err := requestutil.RequiredPrincipal(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	var input ProfileInput
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	member, created, err := handler.accountService.SaveProfile(request.Context(), principal.ID, input)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	if created {
		respond.Created(writer, member)
		return
	}
	respond.OK(writer, member)
}

// # UI Handlers

func (handler *Handler) editPage(writer http.ResponseWriter, request *http.Request) {
	data := view.Data{}
	if principal := requestutil.Principal(request); principal != nil {
		member, err := handler.accountService.Profile(request.Context(), principal.ID)
		if err != nil && !apperr.HasCode(err, apperr.CodeNotFound) {
			handler.fail(writer, request, err, data)
			return
		}
		data["member"] = member
	}
	handler.render(writer, request, http.StatusOK, data)
}

/*
Edit saves the profile form and sends the user to their dashboard.

POST /members/profile/edit

Response:
  - 303: to the dashboard of the highest role held
  - 400: profile view with the conflict or field errors
*/
func (handler *Handler) edit(writer http.ResponseWriter, request *http.Request) {
	ctx := request.Context()

	principal, err := requestutil.RequiredPrincipal(request)
	if err != nil {
		handler.fail(writer, request, err, view.Data{})
		return
	}

	form, err := requestutil.Form(request,
		FieldFirstName, FieldLastName, FieldOtherNames, FieldGender,
		FieldDateOfBirth, FieldPhone, FieldEmail, FieldAddress,
	)
	if err != nil {
		handler.fail(writer, request, err, view.Data{})
		return
	}

	input := ProfileInput{
		FirstName:   form[FieldFirstName],
		LastName:    form[FieldLastName],
		OtherNames:  form[FieldOtherNames],
		Gender:      form[FieldGender],
		DateOfBirth: form[FieldDateOfBirth],
		Phone:       form[FieldPhone],
		Email:       form[FieldEmail],
		Address:     form[FieldAddress],
	}

	if _, _, err := handler.accountService.SaveProfile(ctx, principal.ID, input); err != nil {
		handler.fail(writer, request, err, view.Data{"form": input})
		return
	}

	handler.sessions.Flash(ctx, writer, session.FlashSuccess, "Profile saved.")
	respond.SeeOther(writer, request, auth.LandingRoute(principal.Roles))
}

func (handler *Handler) fail(writer http.ResponseWriter, request *http.Request, err error, data view.Data) {
	appErr := respond.Classify(request, err)

	status := http.StatusBadRequest
	if appErr.HTTPStatus >= http.StatusInternalServerError {
		status = appErr.HTTPStatus
	}

	data["error"] = appErr.Message
	if appErr.Code == apperr.CodeValidation {
		data["details"] = appErr.Details
	}
	handler.render(writer, request, status, data)
}

func (handler *Handler) render(writer http.ResponseWriter, request *http.Request, status int, data view.Data) {
	data["flashes"] = handler.sessions.TakeFlashes(request.Context(), writer)
	if err := handler.renderer.Render(writer, request, status, view.ProfileEdit, data); err != nil {
		ctxutil.GetLogger(request.Context()).ErrorContext(request.Context(), "render_failed", slog.Any("error", err))
	}
}
