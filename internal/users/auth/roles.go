// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package auth

import (
	"context"
	"log/slog"

	"github.com/taibuivan/memberdesk/internal/platform/constants"
	"github.com/taibuivan/memberdesk/internal/platform/ctxutil"
	"github.com/taibuivan/memberdesk/internal/platform/sec"
)

// RoleResolver loads a principal's roles from, in order: roles attached to
// the principal, role links in the database, legacy account flags.
//
// Database sources are only queried when the earlier ones are empty.
type RoleResolver struct {
	roles RoleRepository
}

// NewRoleResolver creates a RoleResolver over roles.
func NewRoleResolver(roles RoleRepository) *RoleResolver {
	return &RoleResolver{roles: roles}
}

// ResolveRoles implements middleware.RoleResolver.
func (resolver *RoleResolver) ResolveRoles(ctx context.Context, principal *sec.Principal) (sec.RoleSet, error) {
	set, kind, err := sec.ResolveRoles(ctx,
		sec.Static(sec.AttachedRoles(principal.AttachedRoles()...)),
		func(ctx context.Context) (sec.RoleSource, error) {
			names, err := resolver.roles.LinkedRoleNames(ctx, principal.ID)
			return sec.LinkedRoles(names...), err
		},
		func(ctx context.Context) (sec.RoleSource, error) {
			flags, err := resolver.roles.LegacyFlags(ctx, principal.ID)
			return sec.FlagRoles(flags), err
		},
	)
	if err != nil {
		return nil, err
	}

	ctxutil.GetLogger(ctx).DebugContext(ctx, "roles_resolved",
		slog.String("source", kind.String()),
		slog.Any("roles", set.Names()),
	)
	return set, nil
}

// LandingRoute returns the dashboard for the highest role held, or the
// login page when the set grants no dashboard.
func LandingRoute(roles sec.RoleSet) string {
	switch {
	case roles.Has(sec.RoleAdmin):
		return constants.RouteAdminDashboard
	case roles.Has(sec.RoleStaff):
		return constants.RouteStaffDashboard
	case roles.Has(sec.RoleMember):
		return constants.RouteMemberDashboard
	default:
		return constants.RouteLogin
	}
}
