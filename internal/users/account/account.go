// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package account handles profile completion: the member record that belongs
to a signed-in account.

# Architecture

  - Entities: Member, ProfileInput.
  - Domain: Landing after a save depends on the auth package's role model.
  - Codes: member codes are MEM0001-style and allocated as max+1, retried on
    a collision with a concurrent allocation.
*/
package account

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// # Domain Entities

// Gender of a member.
type Gender string

const (
	GenderUnspecified Gender = "unspecified"
	GenderMale        Gender = "male"
	GenderFemale      Gender = "female"
)

// MemberStatus is the membership state of a member record.
type MemberStatus string

const (
	MemberActive   MemberStatus = "active"
	MemberInactive MemberStatus = "inactive"
	MemberAlumni   MemberStatus = "alumni"
	MemberGuest    MemberStatus = "guest"
)

// Member is the organisation record linked to an account.
type Member struct {
	ID          string       `json:"id" db:"id"`
	UserID      string       `json:"user_id" db:"user_id"`
	MemberCode  string       `json:"member_code" db:"member_code"`
	FirstName   string       `json:"first_name" db:"first_name"`
	LastName    string       `json:"last_name" db:"last_name"`
	OtherNames  *string      `json:"other_names,omitempty" db:"other_names"`
	Gender      Gender       `json:"gender" db:"gender"`
	DateOfBirth *time.Time   `json:"date_of_birth,omitempty" db:"date_of_birth"`
	Phone       *string      `json:"phone,omitempty" db:"phone"`
	Email       *string      `json:"email,omitempty" db:"email"`
	Address     *string      `json:"address,omitempty" db:"address"`
	ChapterID   *string      `json:"chapter_id,omitempty" db:"chapter_id"`
	Status      MemberStatus `json:"status" db:"status"`
	JoinDate    time.Time    `json:"join_date" db:"join_date"`
	CreatedAt   time.Time    `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time    `json:"updated_at" db:"updated_at"`
}

// memberCodePrefix starts every generated member code.
const memberCodePrefix = "MEM"

// FormatMemberCode renders the n-th member code, e.g. MEM0042.
func FormatMemberCode(n int) string {
	return fmt.Sprintf("%s%04d", memberCodePrefix, n)
}

// # Field Identifiers

const (
	FieldFirstName   = "first_name"
	FieldLastName    = "last_name"
	FieldOtherNames  = "other_names"
	FieldGender      = "gender"
	FieldDateOfBirth = "date_of_birth"
	FieldPhone       = "phone"
	FieldEmail       = "email"
	FieldAddress     = "address"
)

// # Repository Contracts

// ErrMemberCodeTaken reports that a generated member code was claimed by a
// concurrent insert.
var ErrMemberCodeTaken = errors.New("account: member code taken")

// MemberRepository defines the persistence contract for member records.
type MemberRepository interface {
	/*
		FindByUserID returns the member record of an account.

		Returns:
		  - *Member: Loaded entity
		  - error: apperr.NotFound when the account has no member record
	*/
	FindByUserID(ctx context.Context, userID string) (*Member, error)

	// NextMemberCode returns the code after the highest one in use.
	NextMemberCode(ctx context.Context) (string, error)

	/*
		Create inserts a member record.

		Returns:
		  - error: ErrMemberCodeTaken, apperr.Conflict for a phone or email
		    already on file, or storage failures
	*/
	Create(ctx context.Context, member *Member) error

	// Update persists the editable fields. Conflicts are reported like Create.
	Update(ctx context.Context, member *Member) error
}
