// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package request provides utilities for extracting data from HTTP requests.

It abstracts body decoding (JSON and HTML forms) and principal lookup,
ensuring consistent error handling across handlers.
*/
package requestutil

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/goccy/go-json"

	"github.com/taibuivan/memberdesk/internal/platform/apperr"
	"github.com/taibuivan/memberdesk/internal/platform/ctxutil"
	"github.com/taibuivan/memberdesk/internal/platform/sec"
	"github.com/taibuivan/memberdesk/internal/platform/validate"
)

// maxFormMemory bounds multipart parsing for UI form posts.
const maxFormMemory = 1 << 20

/*
DecodeJSON reads the request body and decodes it into the target structure.

Returns:
  - error: validate.ErrInvalidJSON if decoding fails, otherwise nil
*/
func DecodeJSON(request *http.Request, target any) error {
	if err := json.NewDecoder(request.Body).Decode(target); err != nil {
		return validate.ErrInvalidJSON
	}
	return nil
}

/*
Form parses a urlencoded or multipart body and returns the trimmed value of
each requested field.

Returns:
  - map[string]string: field name to trimmed value (missing fields map to "")
  - error: validate.ErrInvalidForm if the body cannot be parsed
*/
func Form(request *http.Request, fields ...string) (map[string]string, error) {
	contentType := request.Header.Get("Content-Type")
	var err error
	if strings.HasPrefix(contentType, "multipart/form-data") {
		err = request.ParseMultipartForm(maxFormMemory)
	} else {
		err = request.ParseForm()
	}
	if err != nil {
		return nil, validate.ErrInvalidForm
	}

	values := make(map[string]string, len(fields))
	for _, field := range fields {
		values[field] = strings.TrimSpace(request.PostFormValue(field))
	}
	return values, nil
}

/*
IsJSON reports whether the request body is declared as JSON.
*/
func IsJSON(request *http.Request) bool {
	return strings.HasPrefix(request.Header.Get("Content-Type"), "application/json")
}

/*
Param retrieves a named URL parameter from the request.
*/
func Param(request *http.Request, name string) string {
	return chi.URLParam(request, name)
}

/*
Principal returns the authenticated principal, or nil for anonymous requests.
*/
func Principal(request *http.Request) *sec.Principal {
	return ctxutil.GetPrincipal(request.Context())
}

/*
RequiredPrincipal ensures the request is authenticated and returns its principal.

Returns:
  - *sec.Principal: the authenticated principal
  - error: apperr.NotAuthenticated if the request is anonymous
*/
func RequiredPrincipal(request *http.Request) (*sec.Principal, error) {
	principal := ctxutil.GetPrincipal(request.Context())
	if principal == nil {
		return nil, apperr.NotAuthenticated()
	}
	return principal, nil
}
