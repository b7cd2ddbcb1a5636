// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package dashboard aggregates the read-only figures shown on the role
dashboards.

# Views

  - Stats: headline totals for any signed-in account.
  - Admin: member, donation and attendance KPIs with recent activity.
  - Personal: the caller's member record with their own donations and
    attendance, shared by the staff and member dashboards.
*/
package dashboard

import (
	"context"
	"time"
)

// # Domain Entities

// Donation types recorded by the organisation.
const (
	DonationTithe         = "tithe"
	DonationSunday        = "sunday donation"
	DonationOtherOffering = "other offering"
	DonationPledge        = "pledge"
)

// Attendance statuses.
const (
	AttendancePresent = "present"
	AttendanceAbsent  = "absent"
	AttendanceOnline  = "online"
	AttendanceExcused = "excused"
)

// Stats are the organisation-wide headline totals.
type Stats struct {
	TotalMembers    int64   `json:"total_members" db:"total_members"`
	TotalDonations  float64 `json:"total_donations" db:"total_donations"`
	TotalAttendance int64   `json:"total_attendance" db:"total_attendance"`
}

// MemberSummary is the list form of a member record.
type MemberSummary struct {
	ID         string    `json:"id" db:"id"`
	MemberCode string    `json:"member_code" db:"member_code"`
	FirstName  string    `json:"first_name" db:"first_name"`
	LastName   string    `json:"last_name" db:"last_name"`
	Status     string    `json:"status" db:"status"`
	JoinDate   time.Time `json:"join_date" db:"join_date"`
}

// Donation is a single recorded gift.
type Donation struct {
	ID           string    `json:"id" db:"id"`
	MemberID     string    `json:"member_id" db:"member_id"`
	MemberCode   string    `json:"member_code" db:"member_code"`
	Amount       float64   `json:"amount" db:"amount"`
	DonationType string    `json:"donation_type" db:"donation_type"`
	DonationDate time.Time `json:"donation_date" db:"donation_date"`
	Remarks      *string   `json:"remarks,omitempty" db:"remarks"`
}

// Attendance is a single attendance mark.
type Attendance struct {
	ID             string    `json:"id" db:"id"`
	MemberID       string    `json:"member_id" db:"member_id"`
	MemberCode     string    `json:"member_code" db:"member_code"`
	SessionID      *string   `json:"session_id,omitempty" db:"session_id"`
	SessionTitle   *string   `json:"session_title,omitempty" db:"session_title"`
	AttendanceDate time.Time `json:"attendance_date" db:"attendance_date"`
	Status         string    `json:"status" db:"status"`
	Remarks        *string   `json:"remarks,omitempty" db:"remarks"`
}

// MemberKPIs counts members by status.
type MemberKPIs struct {
	Total  int64           `json:"total" db:"total"`
	Active int64           `json:"active" db:"active"`
	Guest  int64           `json:"guest" db:"guest"`
	Recent []MemberSummary `json:"recent" db:"-"`
}

// DonationKPIs sums donations by type.
type DonationKPIs struct {
	Total  float64    `json:"total" db:"total"`
	Tithe  float64    `json:"tithe" db:"tithe"`
	Sunday float64    `json:"sunday" db:"sunday"`
	Pledge float64    `json:"pledge" db:"pledge"`
	Recent []Donation `json:"recent" db:"-"`
}

// AttendanceKPIs counts attendance marks for one day and overall.
type AttendanceKPIs struct {
	TodayTotal   int64        `json:"today_total" db:"today_total"`
	TodayPresent int64        `json:"today_present" db:"today_present"`
	TodayAbsent  int64        `json:"today_absent" db:"today_absent"`
	Total        int64        `json:"total" db:"total"`
	Present      int64        `json:"present" db:"present"`
	Absent       int64        `json:"absent" db:"absent"`
	Recent       []Attendance `json:"recent" db:"-"`
}

// Admin is the admin dashboard view model.
type Admin struct {
	Members    MemberKPIs     `json:"members"`
	Donations  DonationKPIs   `json:"donations"`
	Attendance AttendanceKPIs `json:"attendance"`
}

// Personal is the staff and member dashboard view model. Member is nil until
// the profile has been completed.
type Personal struct {
	Member     *MemberSummary `json:"member"`
	Donations  []Donation     `json:"donations"`
	Attendance []Attendance   `json:"attendance"`
	Roles      []string       `json:"roles"`
}

// # Repository Contracts

// Repository reads dashboard figures.
type Repository interface {
	Stats(ctx context.Context) (*Stats, error)

	/*
		MemberKPIs counts members by status.

		Parameters:
		  - recent: number of newest members to include
	*/
	MemberKPIs(ctx context.Context, recent int) (*MemberKPIs, error)

	DonationKPIs(ctx context.Context, recent int) (*DonationKPIs, error)

	/*
		AttendanceKPIs counts attendance marks.

		Parameters:
		  - day: the calendar day counted as "today"
		  - recent: number of newest marks to include
	*/
	AttendanceKPIs(ctx context.Context, day time.Time, recent int) (*AttendanceKPIs, error)

	// MemberByUserID returns nil without error when the account has no member record.
	MemberByUserID(ctx context.Context, userID string) (*MemberSummary, error)

	DonationsByMember(ctx context.Context, memberID string, limit int) ([]Donation, error)
	AttendanceByMember(ctx context.Context, memberID string, limit int) ([]Attendance, error)
}
