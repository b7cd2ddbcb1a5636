// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package dashboard

import (
	"context"
	"fmt"
	"time"

	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresRepository implements [Repository] using pgx.
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a new PostgreSQL implementation of the Repository.
func NewRepository(pool *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

const donationSelect = `
	SELECT d.id, d.member_id, m.member_code, d.amount, d.donation_type, d.donation_date, d.remarks
	FROM donations d
	JOIN members m ON m.id = d.member_id`

const attendanceSelect = `
	SELECT a.id, a.member_id, m.member_code, a.session_id, s.title AS session_title,
		a.attendance_date, a.status, a.remarks
	FROM attendance a
	JOIN members m ON m.id = a.member_id
	LEFT JOIN event_sessions s ON s.id = a.session_id`

func (repository *PostgresRepository) Stats(ctx context.Context) (*Stats, error) {
	const query = `
		SELECT
			(SELECT COUNT(*) FROM members) AS total_members,
			(SELECT COALESCE(SUM(amount), 0) FROM donations)::float8 AS total_donations,
			(SELECT COUNT(*) FROM attendance) AS total_attendance`

	stats := &Stats{}
	if err := pgxscan.Get(ctx, repository.pool, stats, query); err != nil {
		return nil, fmt.Errorf("postgres_dashboard_stats_failed: %w", err)
	}
	return stats, nil
}

func (repository *PostgresRepository) MemberKPIs(ctx context.Context, recent int) (*MemberKPIs, error) {
	const counts = `
		SELECT
			COUNT(*) AS total,
			COUNT(*) FILTER (WHERE status = 'active') AS active,
			COUNT(*) FILTER (WHERE status = 'guest') AS guest
		FROM members`

	const latest = `
		SELECT id, member_code, first_name, last_name, status, join_date
		FROM members
		ORDER BY created_at DESC
		LIMIT $1`

	kpis := &MemberKPIs{}
	if err := pgxscan.Get(ctx, repository.pool, kpis, counts); err != nil {
		return nil, fmt.Errorf("postgres_dashboard_member_counts_failed: %w", err)
	}
	kpis.Recent = []MemberSummary{}
	if err := pgxscan.Select(ctx, repository.pool, &kpis.Recent, latest, recent); err != nil {
		return nil, fmt.Errorf("postgres_dashboard_recent_members_failed: %w", err)
	}
	return kpis, nil
}

func (repository *PostgresRepository) DonationKPIs(ctx context.Context, recent int) (*DonationKPIs, error) {
	const sums = `
		SELECT
			COALESCE(SUM(amount), 0)::float8 AS total,
			COALESCE(SUM(amount) FILTER (WHERE donation_type = $1), 0)::float8 AS tithe,
			COALESCE(SUM(amount) FILTER (WHERE donation_type = $2), 0)::float8 AS sunday,
			COALESCE(SUM(amount) FILTER (WHERE donation_type = $3), 0)::float8 AS pledge
		FROM donations`

	kpis := &DonationKPIs{}
	if err := pgxscan.Get(ctx, repository.pool, kpis, sums, DonationTithe, DonationSunday, DonationPledge); err != nil {
		return nil, fmt.Errorf("postgres_dashboard_donation_sums_failed: %w", err)
	}
	kpis.Recent = []Donation{}
	query := donationSelect + ` ORDER BY d.donation_date DESC, d.created_at DESC LIMIT $1`
	if err := pgxscan.Select(ctx, repository.pool, &kpis.Recent, query, recent); err != nil {
		return nil, fmt.Errorf("postgres_dashboard_recent_donations_failed: %w", err)
	}
	return kpis, nil
}

func (repository *PostgresRepository) AttendanceKPIs(ctx context.Context, day time.Time, recent int) (*AttendanceKPIs, error) {
	const counts = `
		SELECT
			COUNT(*) FILTER (WHERE attendance_date = $1) AS today_total,
			COUNT(*) FILTER (WHERE attendance_date = $1 AND status = $2) AS today_present,
			COUNT(*) FILTER (WHERE attendance_date = $1 AND status = $3) AS today_absent,
			COUNT(*) AS total,
			COUNT(*) FILTER (WHERE status = $2) AS present,
			COUNT(*) FILTER (WHERE status = $3) AS absent
		FROM attendance`

	kpis := &AttendanceKPIs{}
	if err := pgxscan.Get(ctx, repository.pool, kpis, counts, day, AttendancePresent, AttendanceAbsent); err != nil {
		return nil, fmt.Errorf("postgres_dashboard_attendance_counts_failed: %w", err)
	}
	kpis.Recent = []Attendance{}
	query := attendanceSelect + ` ORDER BY a.attendance_date DESC, a.created_at DESC LIMIT $1`
	if err := pgxscan.Select(ctx, repository.pool, &kpis.Recent, query, recent); err != nil {
		return nil, fmt.Errorf("postgres_dashboard_recent_attendance_failed: %w", err)
	}
	return kpis, nil
}

func (repository *PostgresRepository) MemberByUserID(ctx context.Context, userID string) (*MemberSummary, error) {
	const query = `
		SELECT id, member_code, first_name, last_name, status, join_date
		FROM members
		WHERE user_id = $1`

	member := &MemberSummary{}
	if err := pgxscan.Get(ctx, repository.pool, member, query, userID); err != nil {
		if pgxscan.NotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("postgres_dashboard_member_failed: %w", err)
	}
	return member, nil
}

func (repository *PostgresRepository) DonationsByMember(ctx context.Context, memberID string, limit int) ([]Donation, error) {
	donations := []Donation{}
	query := donationSelect + ` WHERE d.member_id = $1 ORDER BY d.donation_date DESC LIMIT $2`
	if err := pgxscan.Select(ctx, repository.pool, &donations, query, memberID, limit); err != nil {
		return nil, fmt.Errorf("postgres_dashboard_member_donations_failed: %w", err)
	}
	return donations, nil
}

func (repository *PostgresRepository) AttendanceByMember(ctx context.Context, memberID string, limit int) ([]Attendance, error) {
	attendance := []Attendance{}
	query := attendanceSelect + ` WHERE a.member_id = $1 ORDER BY a.attendance_date DESC LIMIT $2`
	if err := pgxscan.Select(ctx, repository.pool, &attendance, query, memberID, limit); err != nil {
		return nil, fmt.Errorf("postgres_dashboard_member_attendance_failed: %w", err)
	}
	return attendance, nil
}
