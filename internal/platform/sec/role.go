// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package sec

import (
	"context"
	"slices"
	"strings"
)

// # Roles

// RoleName is a case-folded role identifier.
type RoleName string

const (
	// Default role for self-registered principals
	RoleMember RoleName = "member"

	// Records attendance and manages day-to-day member data
	RoleStaff RoleName = "staff"

	// Unrestricted administrative access
	RoleAdmin RoleName = "admin"
)

// NormalizeRole trims and lower-cases a raw role name.
func NormalizeRole(raw string) RoleName {
	return RoleName(strings.ToLower(strings.TrimSpace(raw)))
}

// RoleSet is an unordered set of normalized role names.
type RoleSet map[RoleName]struct{}

// NewRoleSet builds a set from raw names, normalizing each and skipping blanks.
func NewRoleSet(names ...string) RoleSet {
	set := make(RoleSet, len(names))
	for _, name := range names {
		if role := NormalizeRole(name); role != "" {
			set[role] = struct{}{}
		}
	}
	return set
}

// Has reports whether role is literally present in the set.
func (s RoleSet) Has(role RoleName) bool {
	_, ok := s[role]
	return ok
}

// Empty reports whether the set holds no roles.
func (s RoleSet) Empty() bool { return len(s) == 0 }

// Names returns the role names in sorted order.
func (s RoleSet) Names() []string {
	names := make([]string, 0, len(s))
	for role := range s {
		names = append(names, string(role))
	}
	slices.Sort(names)
	return names
}

// # Role Hierarchy

// satisfiedBy lists, for each built-in role, the granted roles that satisfy it.
// Roles outside this table are satisfied only by themselves.
var satisfiedBy = map[RoleName][]RoleName{
	RoleMember: {RoleMember, RoleStaff, RoleAdmin},
	RoleStaff:  {RoleStaff, RoleAdmin},
	RoleAdmin:  {RoleAdmin},
}

// Satisfies reports whether granted meets a single required role.
func Satisfies(granted RoleSet, required RoleName) bool {
	required = NormalizeRole(string(required))
	allowed, known := satisfiedBy[required]
	if !known {
		return granted.Has(required)
	}
	for _, role := range allowed {
		if granted.Has(role) {
			return true
		}
	}
	return false
}

// Authorize reports whether granted meets at least one of required.
//
// An empty granted set is always denied, as is an empty required list.
func Authorize(granted RoleSet, required ...RoleName) bool {
	if granted.Empty() {
		return false
	}
	for _, role := range required {
		if Satisfies(granted, role) {
			return true
		}
	}
	return false
}

// # Role Sources

// RoleSourceKind tags where a set of role names came from.
type RoleSourceKind int

const (
	// SourceAttached roles travel with the principal itself (e.g. a token claim).
	SourceAttached RoleSourceKind = iota + 1
	// SourceLinked roles come from the principal-role link table.
	SourceLinked
	// SourceLegacyFlags roles are derived from boolean columns on the principal.
	SourceLegacyFlags
)

func (k RoleSourceKind) String() string {
	switch k {
	case SourceAttached:
		return "attached"
	case SourceLinked:
		return "linked"
	case SourceLegacyFlags:
		return "legacy_flags"
	default:
		return "unknown"
	}
}

// LegacyFlags are the historical per-principal role booleans.
type LegacyFlags struct {
	IsAdmin  bool
	IsStaff  bool
	IsMember bool
}

// RoleSource is one candidate origin of a principal's roles.
type RoleSource struct {
	Kind  RoleSourceKind
	Names []string
	Flags LegacyFlags
}

// AttachedRoles builds a [SourceAttached] source.
func AttachedRoles(names ...string) RoleSource {
	return RoleSource{Kind: SourceAttached, Names: names}
}

// LinkedRoles builds a [SourceLinked] source.
func LinkedRoles(names ...string) RoleSource {
	return RoleSource{Kind: SourceLinked, Names: names}
}

// FlagRoles builds a [SourceLegacyFlags] source.
func FlagRoles(flags LegacyFlags) RoleSource {
	return RoleSource{Kind: SourceLegacyFlags, Flags: flags}
}

// Roles returns the normalized set described by the source.
func (s RoleSource) Roles() RoleSet {
	if s.Kind != SourceLegacyFlags {
		return NewRoleSet(s.Names...)
	}
	set := RoleSet{}
	if s.Flags.IsAdmin {
		set[RoleAdmin] = struct{}{}
	}
	if s.Flags.IsStaff {
		set[RoleStaff] = struct{}{}
	}
	if s.Flags.IsMember {
		set[RoleMember] = struct{}{}
	}
	return set
}

// RoleLoader produces a role source on demand.
type RoleLoader func(ctx context.Context) (RoleSource, error)

// Static wraps an already known source as a [RoleLoader].
func Static(source RoleSource) RoleLoader {
	return func(context.Context) (RoleSource, error) {
		return source, nil
	}
}

// ResolveRoles walks loaders in order and returns the first non-empty set
// together with the kind of the source that produced it.
//
// Later loaders are not invoked once a set is found. A loader error stops the
// walk and is returned. When every source is empty the result is an empty set.
func ResolveRoles(ctx context.Context, loaders ...RoleLoader) (RoleSet, RoleSourceKind, error) {
	for _, load := range loaders {
		source, err := load(ctx)
		if err != nil {
			return RoleSet{}, 0, err
		}
		if roles := source.Roles(); !roles.Empty() {
			return roles, source.Kind, nil
		}
	}
	return RoleSet{}, 0, nil
}
