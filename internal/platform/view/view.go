// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package view is the boundary between UI handlers and page rendering.

UI handlers never produce HTML themselves. They hand a view name and a data
map to a [Renderer]. The HTML template engine lives outside this module and
plugs in through the interface; [JSONRenderer] is the built-in implementation
and serves the same view model as JSON.
*/
package view

import (
	"net/http"

	"github.com/goccy/go-json"
)

// Names of the views produced by the UI handlers.
const (
	Login           = "auth/login"
	Register        = "auth/register"
	AccessDenied    = "errors/access_denied"
	ProfileEdit     = "members/profile_edit"
	AdminDashboard  = "admin/dashboard"
	StaffDashboard  = "staff/dashboard"
	MemberDashboard = "member/dashboard"
)

// Data is the context map handed to a view.
type Data map[string]any

// Renderer writes a named view with its data.
type Renderer interface {
	Render(writer http.ResponseWriter, request *http.Request, status int, name string, data Data) error
}

// JSONRenderer renders a view as {"view": name, "data": data}.
type JSONRenderer struct{}

type payload struct {
	View string `json:"view"`
	Data Data   `json:"data"`
}

// Render implements [Renderer].
func (JSONRenderer) Render(writer http.ResponseWriter, _ *http.Request, status int, name string, data Data) error {
	if data == nil {
		data = Data{}
	}
	writer.Header().Set("Content-Type", "application/json; charset=utf-8")
	writer.WriteHeader(status)
	return json.NewEncoder(writer).Encode(payload{View: name, Data: data})
}
