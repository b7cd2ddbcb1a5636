// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package account

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/taibuivan/memberdesk/internal/platform/apperr"
	"github.com/taibuivan/memberdesk/internal/platform/ctxutil"
	"github.com/taibuivan/memberdesk/internal/platform/validate"
	"github.com/taibuivan/memberdesk/pkg/pointer"
	"github.com/taibuivan/memberdesk/pkg/uuid"
)

// maxCodeAttempts bounds member code allocation under contention.
const maxCodeAttempts = 5

// # Service Layer

// Service completes and edits the member profile of an account.
type Service struct {
	members MemberRepository
	now     func() time.Time
}

// NewService constructs a new [Service].
func NewService(members MemberRepository) *Service {
	return &Service{members: members, now: time.Now}
}

// ProfileInput carries the editable profile fields as submitted.
type ProfileInput struct {
	FirstName   string `json:"first_name"`
	LastName    string `json:"last_name"`
	OtherNames  string `json:"other_names"`
	Gender      string `json:"gender"`
	DateOfBirth string `json:"date_of_birth"`
	Phone       string `json:"phone"`
	Email       string `json:"email"`
	Address     string `json:"address"`
}

// Profile returns the member record of userID, or apperr not_found.
func (service *Service) Profile(ctx context.Context, userID string) (*Member, error) {
	return service.members.FindByUserID(ctx, userID)
}

/*
SaveProfile creates the member record of userID on first save and updates it
afterwards.

Description: A new record gets the next MEM code, active status and today's
join date. Code collisions with concurrent saves are retried.

Returns:
  - *Member: The stored record
  - bool: true when the record was created
  - error: validation_error, conflict, or storage failures
*/
func (service *Service) SaveProfile(ctx context.Context, userID string, input ProfileInput) (*Member, bool, error) {
	var dateOfBirth *time.Time

	validator := &validate.Validator{}
	validator.Required(FieldFirstName, input.FirstName).
		MaxLen(FieldFirstName, input.FirstName, 100).
		Required(FieldLastName, input.LastName).
		MaxLen(FieldLastName, input.LastName, 100).
		MaxLen(FieldOtherNames, input.OtherNames, 100).
		OneOf(FieldGender, input.Gender, string(GenderUnspecified), string(GenderMale), string(GenderFemale)).
		MaxLen(FieldPhone, input.Phone, 30).
		Email(FieldEmail, input.Email).
		MaxLen(FieldEmail, input.Email, 100).
		Date(FieldDateOfBirth, input.DateOfBirth, &dateOfBirth)
	if err := validator.Err(); err != nil {
		return nil, false, err
	}

	member, err := service.members.FindByUserID(ctx, userID)
	if err != nil && !apperr.HasCode(err, apperr.CodeNotFound) {
		return nil, false, fmt.Errorf("account_service_lookup_failed: %w", err)
	}

	if member != nil {
		apply(member, input, dateOfBirth)
		if err := service.members.Update(ctx, member); err != nil {
			return nil, false, err
		}
		return member, false, nil
	}

	today := service.now().UTC().Truncate(24 * time.Hour)
	member = &Member{
		ID:       uuid.New(),
		UserID:   userID,
		Status:   MemberActive,
		JoinDate: today,
	}
	apply(member, input, dateOfBirth)

	if err := service.create(ctx, member); err != nil {
		return nil, false, err
	}

	ctxutil.GetLogger(ctx).InfoContext(ctx, "member_profile_created",
		slog.String("member_id", member.ID),
		slog.String("member_code", member.MemberCode),
	)
	return member, true, nil
}

func (service *Service) create(ctx context.Context, member *Member) error {
	for attempt := 1; attempt <= maxCodeAttempts; attempt++ {
		code, err := service.members.NextMemberCode(ctx)
		if err != nil {
			return fmt.Errorf("account_service_next_code_failed: %w", err)
		}
		member.MemberCode = code

		err = service.members.Create(ctx, member)
		if err == nil {
			return nil
		}
		if !errors.Is(err, ErrMemberCodeTaken) {
			return err
		}

		ctxutil.GetLogger(ctx).WarnContext(ctx, "member_code_collision",
			slog.String("member_code", code),
			slog.Int("attempt", attempt),
		)
	}
	return apperr.Conflict("Member code conflict, please try again.")
}

func apply(member *Member, input ProfileInput, dateOfBirth *time.Time) {
	member.FirstName = input.FirstName
	member.LastName = input.LastName
	member.OtherNames = pointer.NonBlank(input.OtherNames)
	member.Gender = Gender(input.Gender)
	if member.Gender == "" {
		member.Gender = GenderUnspecified
	}
	member.DateOfBirth = dateOfBirth
	member.Phone = pointer.NonBlank(input.Phone)
	member.Email = pointer.NonBlank(input.Email)
	member.Address = pointer.NonBlank(input.Address)
}
