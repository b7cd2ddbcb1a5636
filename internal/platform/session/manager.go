// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package session

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/taibuivan/memberdesk/internal/platform/ctxutil"
)

// CookieConfig controls the session cookie attributes.
type CookieConfig struct {
	Name   string
	Path   string
	Secure bool
}

// Manager binds a [Store] to the session cookie.
type Manager struct {
	store  Store
	cookie CookieConfig
	ttl    time.Duration
}

// NewManager creates a Manager whose records live for ttl after their last write.
func NewManager(store Store, cookie CookieConfig, ttl time.Duration) *Manager {
	if cookie.Name == "" {
		cookie.Name = "session"
	}
	if cookie.Path == "" {
		cookie.Path = "/"
	}
	return &Manager{store: store, cookie: cookie, ttl: ttl}
}

// Load returns the record referenced by the request cookie.
//
// A missing cookie or an unknown id yields a fresh, unsaved record. A store
// failure yields a fresh record and the error.
func (manager *Manager) Load(request *http.Request) (*Record, error) {
	cookie, err := request.Cookie(manager.cookie.Name)
	if err != nil || cookie.Value == "" {
		return &Record{}, nil
	}

	record, err := manager.store.Get(request.Context(), cookie.Value)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return &Record{}, nil
		}
		return &Record{}, err
	}
	return record, nil
}

// Middleware loads the session record into the request context.
func (manager *Manager) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		record, err := manager.Load(request)
		if err != nil {
			ctxutil.GetLogger(request.Context()).WarnContext(request.Context(), "session_load_failed",
				slog.Any("error", err),
			)
		}
		next.ServeHTTP(writer, request.WithContext(WithRecord(request.Context(), record)))
	})
}

// Save persists record and refreshes the cookie. An empty record is destroyed instead.
func (manager *Manager) Save(ctx context.Context, writer http.ResponseWriter, record *Record) error {
	if record.empty() {
		return manager.Destroy(ctx, writer, record)
	}

	if record.ID == "" {
		id, err := newID()
		if err != nil {
			return err
		}
		record.ID = id
	}

	if err := manager.store.Save(ctx, record, manager.ttl); err != nil {
		return err
	}

	http.SetCookie(writer, manager.newCookie(record.ID, int(manager.ttl/time.Second)))
	return nil
}

// Renew moves record to a fresh id and saves it. Used after login so a
// pre-authentication id is never promoted.
func (manager *Manager) Renew(ctx context.Context, writer http.ResponseWriter, record *Record) error {
	if record.ID != "" {
		if err := manager.store.Delete(ctx, record.ID); err != nil {
			return err
		}
	}

	id, err := newID()
	if err != nil {
		return err
	}
	record.ID = id
	return manager.Save(ctx, writer, record)
}

// Destroy clears record, deletes it from the store and expires the cookie.
func (manager *Manager) Destroy(ctx context.Context, writer http.ResponseWriter, record *Record) error {
	var err error
	if record.ID != "" {
		err = manager.store.Delete(ctx, record.ID)
	}
	record.Clear()
	record.ID = ""

	http.SetCookie(writer, manager.newCookie("", -1))
	return err
}

func (manager *Manager) newCookie(value string, maxAge int) *http.Cookie {
	return &http.Cookie{
		Name:     manager.cookie.Name,
		Value:    value,
		Path:     manager.cookie.Path,
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   manager.cookie.Secure,
		SameSite: http.SameSiteLaxMode,
	}
}

// TakeFlashes pops the pending flashes of the request's session and persists
// the change. It returns nil when there is no session.
func (manager *Manager) TakeFlashes(ctx context.Context, writer http.ResponseWriter) []Flash {
	record := FromContext(ctx)
	if record == nil || len(record.Flashes) == 0 {
		return nil
	}

	flashes := record.PopFlashes()
	if err := manager.Save(ctx, writer, record); err != nil {
		ctxutil.GetLogger(ctx).WarnContext(ctx, "session_save_failed", slog.Any("error", err))
	}
	return flashes
}

// Flash queues a message on the request's session and persists it.
func (manager *Manager) Flash(ctx context.Context, writer http.ResponseWriter, category, message string) {
	record := FromContext(ctx)
	if record == nil {
		return
	}

	record.AddFlash(category, message)
	if err := manager.Save(ctx, writer, record); err != nil {
		ctxutil.GetLogger(ctx).WarnContext(ctx, "session_save_failed", slog.Any("error", err))
	}
}
