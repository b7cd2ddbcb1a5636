// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package sec

// IdentitySource records which credential identified a principal.
type IdentitySource string

const (
	IdentityFromSession IdentitySource = "session"
	IdentityFromBearer  IdentitySource = "bearer"
)

// Principal is the authenticated subject of a request.
//
// Roles is nil until the access guard has resolved it. Handlers behind a
// guard always see a resolved, non-empty set.
type Principal struct {
	ID     string
	Source IdentitySource
	Claims *Claims
	Roles  RoleSet
}

// AttachedRoles returns the roles carried by the principal's token, if any.
func (p *Principal) AttachedRoles() []string {
	if p == nil || p.Claims == nil {
		return nil
	}
	return p.Claims.Roles()
}

// WithRoles returns a copy of p carrying roles.
func (p *Principal) WithRoles(roles RoleSet) *Principal {
	clone := *p
	clone.Roles = roles
	return &clone
}
