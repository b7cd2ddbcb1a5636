// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package auth

import (
	"context"
	"time"

	"github.com/taibuivan/memberdesk/internal/platform/sec"
)

// # User Data Access

// UserRepository defines the data access contract for accounts.
type UserRepository interface {

	/*
		FindByID returns the account with the given ID.

		Returns:
		  - *User: Hydrated entity
		  - error: apperr not_found, or database failures
	*/
	FindByID(ctx context.Context, id string) (*User, error)

	/*
		FindByEmail returns the account whose email matches exactly.

		Returns:
		  - *User: Hydrated entity
		  - error: apperr not_found, or database failures
	*/
	FindByEmail(ctx context.Context, email string) (*User, error)

	/*
		CreateWithRole persists user and links it to role in one transaction.
		The role row is created when missing.

		Returns:
		  - error: apperr duplicate_registration when the email exists,
		    or persistence failures. Nothing is written on error.
	*/
	CreateWithRole(ctx context.Context, user *User, role sec.RoleName) error

	// TouchLastLogin records a successful login.
	TouchLastLogin(ctx context.Context, userID string, at time.Time) error
}

// # Role Data Access

// RoleRepository defines the data access contract for roles and role links.
type RoleRepository interface {

	// GetOrCreate returns the id of the named role, creating it if needed.
	// Concurrent callers observe exactly one row per name.
	GetOrCreate(ctx context.Context, name sec.RoleName) (string, error)

	// LinkedRoleNames returns the names of roles linked to userID.
	LinkedRoleNames(ctx context.Context, userID string) ([]string, error)

	// LegacyFlags returns the per-account role flags of userID.
	LegacyFlags(ctx context.Context, userID string) (sec.LegacyFlags, error)

	// Grant links userID to the named role. Granting twice is a no-op.
	Grant(ctx context.Context, userID string, name sec.RoleName) error

	// Revoke removes the link and reports whether one existed.
	Revoke(ctx context.Context, userID string, name sec.RoleName) (bool, error)
}

// # Volatile Data Access

// RevocationStore records access-token IDs that must no longer authenticate.
type RevocationStore interface {

	// Revoke stores jti until ttl elapses.
	Revoke(ctx context.Context, jti string, ttl time.Duration) error

	// IsRevoked reports whether jti has been revoked.
	IsRevoked(ctx context.Context, jti string) (bool, error)
}
