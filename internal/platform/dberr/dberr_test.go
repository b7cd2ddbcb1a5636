// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package dberr_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"

	"github.com/taibuivan/memberdesk/internal/platform/apperr"
	"github.com/taibuivan/memberdesk/internal/platform/dberr"
)

func TestWrap(t *testing.T) {
	assert.NoError(t, dberr.Wrap(nil, "noop"))
	assert.True(t, apperr.HasCode(dberr.Wrap(pgx.ErrNoRows, "find"), apperr.CodeNotFound))

	unique := &pgconn.PgError{Code: "23505", ConstraintName: "users_email_key"}
	assert.True(t, apperr.HasCode(dberr.Wrap(fmt.Errorf("insert: %w", unique), "insert"), apperr.CodeConflict))

	assert.True(t, apperr.HasCode(dberr.Wrap(errors.New("conn reset"), "select"), apperr.CodeInternal))
}

func TestIsUniqueViolation(t *testing.T) {
	err := fmt.Errorf("insert member: %w", &pgconn.PgError{Code: "23505", ConstraintName: "members_phone_key"})

	assert.True(t, dberr.IsUniqueViolation(err, ""))
	assert.True(t, dberr.IsUniqueViolation(err, "members_phone_key"))
	assert.False(t, dberr.IsUniqueViolation(err, "members_email_key"))
	assert.False(t, dberr.IsUniqueViolation(&pgconn.PgError{Code: "23503"}, ""))
	assert.False(t, dberr.IsUniqueViolation(errors.New("plain"), ""))
}
