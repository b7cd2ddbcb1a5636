// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package schema

// RolesTable represents the 'roles' table
type RolesTable struct {
	Table string
	ID    string
	Name  string
}

// Roles is the schema definition for roles
var Roles = RolesTable{
	Table: "roles",
	ID:    "id",
	Name:  "name",
}

// UserRolesTable represents the 'user_roles' link table
type UserRolesTable struct {
	Table  string
	UserID string
	RoleID string
}

// UserRoles is the schema definition for user_roles
var UserRoles = UserRolesTable{
	Table:  "user_roles",
	UserID: "user_id",
	RoleID: "role_id",
}
