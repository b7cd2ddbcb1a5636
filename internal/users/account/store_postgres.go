// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package account

import (
	"context"
	"fmt"

	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/taibuivan/memberdesk/internal/platform/apperr"
	"github.com/taibuivan/memberdesk/internal/platform/database/schema"
	"github.com/taibuivan/memberdesk/internal/platform/dberr"
)

var memberColumns = schema.List(schema.Members.Columns())

// PostgresMemberRepository implements [MemberRepository] using pgx.
type PostgresMemberRepository struct {
	pool *pgxpool.Pool
}

// NewMemberRepository creates a new PostgreSQL implementation of the MemberRepository.
func NewMemberRepository(pool *pgxpool.Pool) *PostgresMemberRepository {
	return &PostgresMemberRepository{pool: pool}
}

// FindByUserID retrieves the member record linked to an account.
func (repository *PostgresMemberRepository) FindByUserID(ctx context.Context, userID string) (*Member, error) {
	member := &Member{}
	query := `SELECT ` + memberColumns + ` FROM members WHERE user_id = $1`
	if err := pgxscan.Get(ctx, repository.pool, member, query, userID); err != nil {
		if pgxscan.NotFound(err) {
			return nil, apperr.NotFound("Member")
		}
		return nil, fmt.Errorf("postgres_member_repo_find_failed: %w", err)
	}
	return member, nil
}

// NextMemberCode scans the numeric suffix of existing MEM codes.
func (repository *PostgresMemberRepository) NextMemberCode(ctx context.Context) (string, error) {
	const query = `
		SELECT COALESCE(MAX(CAST(SUBSTRING(member_code FROM 4) AS BIGINT)), 0) + 1
		FROM members
		WHERE member_code ~ '^MEM[0-9]{1,17}$'`

	var next int64
	if err := repository.pool.QueryRow(ctx, query).Scan(&next); err != nil {
		return "", fmt.Errorf("postgres_member_repo_next_code_failed: %w", err)
	}
	return FormatMemberCode(int(next)), nil
}

// Create inserts a member record and fills in its timestamps.
func (repository *PostgresMemberRepository) Create(ctx context.Context, member *Member) error {
	const query = `
		INSERT INTO members (id, user_id, member_code, first_name, last_name, other_names, gender,
			date_of_birth, phone, email, address, chapter_id, status, join_date)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
		RETURNING created_at, updated_at`

	err := repository.pool.QueryRow(ctx, query,
		member.ID, member.UserID, member.MemberCode, member.FirstName, member.LastName,
		member.OtherNames, member.Gender, member.DateOfBirth, member.Phone, member.Email,
		member.Address, member.ChapterID, member.Status, member.JoinDate,
	).Scan(&member.CreatedAt, &member.UpdatedAt)

	return mapWriteError(err, "postgres_member_repo_create")
}

// Update persists the editable profile fields.
func (repository *PostgresMemberRepository) Update(ctx context.Context, member *Member) error {
	const query = `
		UPDATE members SET
			first_name = $2, last_name = $3, other_names = $4, gender = $5,
			date_of_birth = $6, phone = $7, email = $8, address = $9, updated_at = NOW()
		WHERE id = $1
		RETURNING updated_at`

	err := repository.pool.QueryRow(ctx, query,
		member.ID, member.FirstName, member.LastName, member.OtherNames, member.Gender,
		member.DateOfBirth, member.Phone, member.Email, member.Address,
	).Scan(&member.UpdatedAt)

	return mapWriteError(err, "postgres_member_repo_update")
}

func mapWriteError(err error, action string) error {
	switch {
	case err == nil:
		return nil
	case dberr.IsUniqueViolation(err, schema.Members.MemberCodeKey):
		return ErrMemberCodeTaken
	case dberr.IsUniqueViolation(err, schema.Members.PhoneKey):
		return apperr.Conflict("This phone number is already registered.").WithCause(err)
	case dberr.IsUniqueViolation(err, schema.Members.EmailKey):
		return apperr.Conflict("This email is already registered.").WithCause(err)
	default:
		return dberr.Wrap(err, action)
	}
}
