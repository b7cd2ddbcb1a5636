// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package schema

// MembersTable represents the 'members' table
type MembersTable struct {
	Table       string
	ID          string
	UserID      string
	MemberCode  string
	FirstName   string
	LastName    string
	OtherNames  string
	Gender      string
	DateOfBirth string
	Phone       string
	Email       string
	Address     string
	ChapterID   string
	Status      string
	JoinDate    string
	CreatedAt   string
	UpdatedAt   string

	// Unique constraints
	MemberCodeKey string
	PhoneKey      string
	EmailKey      string
}

// Members is the schema definition for members
var Members = MembersTable{
	Table:         "members",
	ID:            "id",
	UserID:        "user_id",
	MemberCode:    "member_code",
	FirstName:     "first_name",
	LastName:      "last_name",
	OtherNames:    "other_names",
	Gender:        "gender",
	DateOfBirth:   "date_of_birth",
	Phone:         "phone",
	Email:         "email",
	Address:       "address",
	ChapterID:     "chapter_id",
	Status:        "status",
	JoinDate:      "join_date",
	CreatedAt:     "created_at",
	UpdatedAt:     "updated_at",
	MemberCodeKey: "members_member_code_key",
	PhoneKey:      "members_phone_key",
	EmailKey:      "members_email_key",
}

// Columns returns all standard column names
func (t MembersTable) Columns() []string {
	return []string{
		t.ID, t.UserID, t.MemberCode, t.FirstName, t.LastName, t.OtherNames, t.Gender,
		t.DateOfBirth, t.Phone, t.Email, t.Address, t.ChapterID, t.Status, t.JoinDate,
		t.CreatedAt, t.UpdatedAt,
	}
}
