// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package schema

// UsersTable represents the 'users' table
type UsersTable struct {
	Table        string
	ID           string
	Username     string
	Email        string
	PasswordHash string
	Status       string
	LastLoginAt  string
	CreatedAt    string
	IsAdmin      string
	IsStaff      string
	IsMember     string

	// EmailKey is the unique constraint on Email.
	EmailKey string
}

// Users is the schema definition for users
var Users = UsersTable{
	Table:        "users",
	ID:           "id",
	Username:     "username",
	Email:        "email",
	PasswordHash: "password_hash",
	Status:       "status",
	LastLoginAt:  "last_login_at",
	CreatedAt:    "created_at",
	IsAdmin:      "is_admin",
	IsStaff:      "is_staff",
	IsMember:     "is_member",
	EmailKey:     "users_email_key",
}

// Columns returns all standard column names
func (t UsersTable) Columns() []string {
	return []string{
		t.ID, t.Username, t.Email, t.PasswordHash, t.Status, t.LastLoginAt,
		t.CreatedAt, t.IsAdmin, t.IsStaff, t.IsMember,
	}
}
