// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package session implements server-side sessions for the UI route set.

The browser only ever holds an opaque, random session id in an HttpOnly
cookie. The record behind it (principal id, access token, flash messages)
lives in a [Store] with a TTL of SESSION_EXPIRE_MINUTES, refreshed on every
write.

Flow:

  - [Manager.Middleware] loads the record for every request and puts it in
    the context ([FromContext]).
  - Handlers mutate the record and call [Manager.Save], [Manager.Renew]
    (after login) or [Manager.Destroy] (logout, stale token).
*/
package session

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"fmt"

	"github.com/taibuivan/memberdesk/internal/platform/ctxkey"
)

// Flash categories used by the UI handlers.
const (
	FlashSuccess = "success"
	FlashError   = "error"
	FlashInfo    = "info"
)

// Flash is a one-shot message shown on the next rendered page.
type Flash struct {
	Category string `json:"category"`
	Message  string `json:"message"`
}

// Record is the server-side state of one browser session.
type Record struct {
	ID      string  `json:"-"`
	UserID  string  `json:"user_id,omitempty"`
	Token   string  `json:"token,omitempty"`
	Flashes []Flash `json:"flashes,omitempty"`
}

// LoggedIn reports whether the record carries both a principal id and a token.
func (r *Record) LoggedIn() bool {
	return r.UserID != "" && r.Token != ""
}

// SignIn stores the principal id and its access token.
func (r *Record) SignIn(userID, token string) {
	r.UserID = userID
	r.Token = token
}

// Clear removes every key from the record.
func (r *Record) Clear() {
	r.UserID = ""
	r.Token = ""
	r.Flashes = nil
}

// AddFlash queues a message for the next page.
func (r *Record) AddFlash(category, message string) {
	r.Flashes = append(r.Flashes, Flash{Category: category, Message: message})
}

// PopFlashes returns and removes every queued message.
func (r *Record) PopFlashes() []Flash {
	flashes := r.Flashes
	r.Flashes = nil
	return flashes
}

func (r *Record) empty() bool {
	return r.UserID == "" && r.Token == "" && len(r.Flashes) == 0
}

// # Context

// WithRecord returns a context carrying record.
func WithRecord(ctx context.Context, record *Record) context.Context {
	return context.WithValue(ctx, ctxkey.KeySession, record)
}

// FromContext returns the record loaded by [Manager.Middleware], or nil.
func FromContext(ctx context.Context) *Record {
	record, _ := ctx.Value(ctxkey.KeySession).(*Record)
	return record
}

// newID returns a 256-bit URL-safe random identifier.
func newID() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("session: failed to generate id: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}
