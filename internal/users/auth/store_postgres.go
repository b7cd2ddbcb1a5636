// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package auth

import (
	"context"
	"fmt"
	"time"

	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/taibuivan/memberdesk/internal/platform/apperr"
	"github.com/taibuivan/memberdesk/internal/platform/database/schema"
	"github.com/taibuivan/memberdesk/internal/platform/dberr"
	"github.com/taibuivan/memberdesk/internal/platform/postgres"
	"github.com/taibuivan/memberdesk/internal/platform/sec"
	"github.com/taibuivan/memberdesk/pkg/uuid"
)

var userColumns = schema.List(schema.Users.Columns())

// # User Repository

// PostgresUserRepository implements [UserRepository] using pgx.
type PostgresUserRepository struct {
	pool *pgxpool.Pool
}

// NewUserRepository creates a new PostgreSQL implementation of the UserRepository.
func NewUserRepository(pool *pgxpool.Pool) *PostgresUserRepository {
	return &PostgresUserRepository{pool: pool}
}

// FindByID retrieves an account by primary key.
func (repository *PostgresUserRepository) FindByID(ctx context.Context, id string) (*User, error) {
	return repository.findOne(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id)
}

// FindByEmail retrieves an account by exact email match.
func (repository *PostgresUserRepository) FindByEmail(ctx context.Context, email string) (*User, error) {
	return repository.findOne(ctx, `SELECT `+userColumns+` FROM users WHERE email = $1`, email)
}

func (repository *PostgresUserRepository) findOne(ctx context.Context, query string, arg any) (*User, error) {
	user := &User{}
	if err := pgxscan.Get(ctx, repository.pool, user, query, arg); err != nil {
		if pgxscan.NotFound(err) {
			return nil, apperr.NotFound("User")
		}
		return nil, fmt.Errorf("postgres_user_repo_find_failed: %w", err)
	}
	return user, nil
}

/*
CreateWithRole inserts the account and its role link atomically.

Description: The role is resolved with the race-safe get-or-create inside the
same transaction, so a failure at any step leaves no account behind.

Returns:
  - error: apperr.DuplicateRegistration on an email collision, or storage errors
*/
func (repository *PostgresUserRepository) CreateWithRole(ctx context.Context, user *User, role sec.RoleName) error {
	const insertUser = `
		INSERT INTO users (id, username, email, password_hash, status)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING created_at`

	const linkRole = `
		INSERT INTO user_roles (user_id, role_id) VALUES ($1, $2)
		ON CONFLICT DO NOTHING`

	return postgres.WithTx(ctx, repository.pool, func(tx pgx.Tx) error {
		err := tx.QueryRow(ctx, insertUser,
			user.ID, user.Username, user.Email, user.PasswordHash, user.Status,
		).Scan(&user.CreatedAt)
		if dberr.IsUniqueViolation(err, schema.Users.EmailKey) {
			return apperr.DuplicateRegistration().WithCause(err)
		}
		if err != nil {
			return fmt.Errorf("postgres_user_repo_create_failed: %w", err)
		}

		roleID, err := getOrCreateRole(ctx, tx, role)
		if err != nil {
			return err
		}

		if _, err := tx.Exec(ctx, linkRole, user.ID, roleID); err != nil {
			return fmt.Errorf("postgres_user_repo_link_role_failed: %w", err)
		}
		return nil
	})
}

// TouchLastLogin sets last_login_at for the account.
func (repository *PostgresUserRepository) TouchLastLogin(ctx context.Context, userID string, at time.Time) error {
	tag, err := repository.pool.Exec(ctx, `UPDATE users SET last_login_at = $2 WHERE id = $1`, userID, at)
	if err != nil {
		return fmt.Errorf("postgres_user_repo_touch_login_failed: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound("User")
	}
	return nil
}

// # Role Repository

// PostgresRoleRepository implements [RoleRepository] using pgx.
type PostgresRoleRepository struct {
	pool *pgxpool.Pool
}

// NewRoleRepository creates a new PostgreSQL implementation of the RoleRepository.
func NewRoleRepository(pool *pgxpool.Pool) *PostgresRoleRepository {
	return &PostgresRoleRepository{pool: pool}
}

// GetOrCreate resolves the role id, inserting the row on first use.
func (repository *PostgresRoleRepository) GetOrCreate(ctx context.Context, name sec.RoleName) (string, error) {
	return getOrCreateRole(ctx, repository.pool, name)
}

// getOrCreateRole relies on the unique name constraint. The no-op update
// makes RETURNING yield the existing row when another writer won the race.
func getOrCreateRole(ctx context.Context, db postgres.DBTX, name sec.RoleName) (string, error) {
	const query = `
		INSERT INTO roles (id, name) VALUES ($1, $2)
		ON CONFLICT (name) DO UPDATE SET name = EXCLUDED.name
		RETURNING id`

	normalized := sec.NormalizeRole(string(name))
	if normalized == "" {
		return "", apperr.ValidationError("Role name is required")
	}

	var id string
	if err := db.QueryRow(ctx, query, uuid.New(), string(normalized)).Scan(&id); err != nil {
		return "", fmt.Errorf("postgres_role_repo_get_or_create_failed: %w", err)
	}
	return id, nil
}

// LinkedRoleNames lists the roles linked to userID, sorted by name.
func (repository *PostgresRoleRepository) LinkedRoleNames(ctx context.Context, userID string) ([]string, error) {
	query := fmt.Sprintf(`
		SELECT r.%[1]s
		FROM %[3]s ur
		JOIN %[4]s r ON r.%[2]s = ur.%[6]s
		WHERE ur.%[5]s = $1
		ORDER BY r.%[1]s`,
		schema.Roles.Name, schema.Roles.ID, schema.UserRoles.Table, schema.Roles.Table,
		schema.UserRoles.UserID, schema.UserRoles.RoleID)

	var names []string
	if err := pgxscan.Select(ctx, repository.pool, &names, query, userID); err != nil {
		return nil, fmt.Errorf("postgres_role_repo_linked_failed: %w", err)
	}
	return names, nil
}

// LegacyFlags reads the boolean role columns of the account.
func (repository *PostgresRoleRepository) LegacyFlags(ctx context.Context, userID string) (sec.LegacyFlags, error) {
	var row struct {
		IsAdmin  bool `db:"is_admin"`
		IsStaff  bool `db:"is_staff"`
		IsMember bool `db:"is_member"`
	}
	err := pgxscan.Get(ctx, repository.pool, &row,
		`SELECT is_admin, is_staff, is_member FROM users WHERE id = $1`, userID)
	if pgxscan.NotFound(err) {
		return sec.LegacyFlags{}, nil
	}
	if err != nil {
		return sec.LegacyFlags{}, fmt.Errorf("postgres_role_repo_flags_failed: %w", err)
	}
	return sec.LegacyFlags{IsAdmin: row.IsAdmin, IsStaff: row.IsStaff, IsMember: row.IsMember}, nil
}

// Grant links the user to the role, creating the role if needed.
func (repository *PostgresRoleRepository) Grant(ctx context.Context, userID string, name sec.RoleName) error {
	return postgres.WithTx(ctx, repository.pool, func(tx pgx.Tx) error {
		roleID, err := getOrCreateRole(ctx, tx, name)
		if err != nil {
			return err
		}
		_, err = tx.Exec(ctx, `INSERT INTO user_roles (user_id, role_id) VALUES ($1, $2) ON CONFLICT DO NOTHING`, userID, roleID)
		return dberr.Wrap(err, "grant role")
	})
}

// Revoke unlinks the user from the role.
func (repository *PostgresRoleRepository) Revoke(ctx context.Context, userID string, name sec.RoleName) (bool, error) {
	query := fmt.Sprintf(`
		DELETE FROM %[3]s ur
		USING %[4]s r
		WHERE ur.%[6]s = r.%[2]s AND ur.%[5]s = $1 AND r.%[1]s = $2`,
		schema.Roles.Name, schema.Roles.ID, schema.UserRoles.Table, schema.Roles.Table,
		schema.UserRoles.UserID, schema.UserRoles.RoleID)

	tag, err := repository.pool.Exec(ctx, query, userID, string(sec.NormalizeRole(string(name))))
	if err != nil {
		return false, fmt.Errorf("postgres_role_repo_revoke_failed: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}
