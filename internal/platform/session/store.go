// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package session

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound is returned by a [Store] for unknown or expired ids.
var ErrNotFound = errors.New("session: not found")

// Store persists session records by id.
type Store interface {
	// Get returns the record stored under id, or [ErrNotFound].
	Get(ctx context.Context, id string) (*Record, error)

	// Save writes record under record.ID and (re)starts its TTL.
	Save(ctx context.Context, record *Record, ttl time.Duration) error

	// Delete removes id. Deleting an unknown id is not an error.
	Delete(ctx context.Context, id string) error
}
