// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package dashboard

import (
	"context"
	"fmt"
	"time"

	"github.com/taibuivan/memberdesk/internal/platform/sec"
)

// Recent list sizes.
const (
	recentMembers    = 5
	recentDonations  = 7
	recentAttendance = 10
	personalHistory  = 50
)

// Service builds the dashboard view models.
type Service struct {
	repo Repository
	now  func() time.Time
}

// NewService constructs a new [Service].
func NewService(repo Repository) *Service {
	return &Service{repo: repo, now: time.Now}
}

// Stats returns the headline totals.
func (service *Service) Stats(ctx context.Context) (*Stats, error) {
	stats, err := service.repo.Stats(ctx)
	if err != nil {
		return nil, fmt.Errorf("dashboard_stats_failed: %w", err)
	}
	return stats, nil
}

// Admin returns the member, donation and attendance KPIs.
func (service *Service) Admin(ctx context.Context) (*Admin, error) {
	members, err := service.repo.MemberKPIs(ctx, recentMembers)
	if err != nil {
		return nil, fmt.Errorf("dashboard_member_kpis_failed: %w", err)
	}

	donations, err := service.repo.DonationKPIs(ctx, recentDonations)
	if err != nil {
		return nil, fmt.Errorf("dashboard_donation_kpis_failed: %w", err)
	}

	today := service.now().UTC().Truncate(24 * time.Hour)
	attendance, err := service.repo.AttendanceKPIs(ctx, today, recentAttendance)
	if err != nil {
		return nil, fmt.Errorf("dashboard_attendance_kpis_failed: %w", err)
	}

	return &Admin{Members: *members, Donations: *donations, Attendance: *attendance}, nil
}

/*
Personal returns the caller's own record and history.

Description: An account without a member record gets a nil Member and
empty history.
*/
func (service *Service) Personal(ctx context.Context, principal *sec.Principal) (*Personal, error) {
	personal := &Personal{
		Donations:  []Donation{},
		Attendance: []Attendance{},
		Roles:      principal.Roles.Names(),
	}

	member, err := service.repo.MemberByUserID(ctx, principal.ID)
	if err != nil {
		return nil, fmt.Errorf("dashboard_member_lookup_failed: %w", err)
	}
	if member == nil {
		return personal, nil
	}
	personal.Member = member

	if personal.Donations, err = service.repo.DonationsByMember(ctx, member.ID, personalHistory); err != nil {
		return nil, fmt.Errorf("dashboard_member_donations_failed: %w", err)
	}
	if personal.Attendance, err = service.repo.AttendanceByMember(ctx, member.ID, personalHistory); err != nil {
		return nil, fmt.Errorf("dashboard_member_attendance_failed: %w", err)
	}
	return personal, nil
}
