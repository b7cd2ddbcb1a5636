// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package auth implements account registration, credential checks and the
role model of the membership administration system.

# Architecture

  - Service: Register, Authenticate, token issue/refresh and logout.
  - Repository: Postgres (users, roles, user_roles) and Redis (revoked jti).
  - RoleResolver: attached roles, then role links, then legacy user flags.
  - Handler / UIHandler: JSON API and form-post UI delivery.
*/
package auth

import (
	"time"

	"github.com/taibuivan/memberdesk/internal/platform/sec"
)

// # Domain Entities

// Status is the lifecycle state of an account.
type Status string

const (
	StatusActive   Status = "active"
	StatusInactive Status = "inactive"
	StatusAlumni   Status = "alumni"
	StatusGuest    Status = "guest"
)

// User is a registered account. Its ID never changes after creation.
type User struct {
	ID           string     `json:"id" db:"id"`
	Username     string     `json:"username" db:"username"`
	Email        string     `json:"email" db:"email"`
	PasswordHash string     `json:"-" db:"password_hash"`
	Status       Status     `json:"status" db:"status"`
	LastLoginAt  *time.Time `json:"last_login_at,omitempty" db:"last_login_at"`
	CreatedAt    time.Time  `json:"created_at" db:"created_at"`

	// Legacy per-account flags, consulted only when no role links exist.
	IsAdmin  bool `json:"-" db:"is_admin"`
	IsStaff  bool `json:"-" db:"is_staff"`
	IsMember bool `json:"-" db:"is_member"`
}

// Flags returns the legacy role flags of the account.
func (u *User) Flags() sec.LegacyFlags {
	return sec.LegacyFlags{IsAdmin: u.IsAdmin, IsStaff: u.IsStaff, IsMember: u.IsMember}
}

// Profile is the account view returned by the "me" endpoint.
type Profile struct {
	*User
	Roles      []string `json:"roles"`
	LandingURL string   `json:"landing_url"`
}

// TokenPair is the result of a successful token grant.
type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token,omitempty"`
	TokenType    string `json:"token_type"`
	ExpiresIn    int    `json:"expires_in"`
}

// TokenTypeBearer is the only token type issued.
const TokenTypeBearer = "bearer"

// # Field Identifiers

const (
	FieldUsername     = "username"
	FieldEmail        = "email"
	FieldPassword     = "password"
	FieldRefreshToken = "refresh_token"
)
