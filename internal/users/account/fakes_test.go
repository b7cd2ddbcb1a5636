// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package account_test

import (
	"context"
	"sync"

	"github.com/taibuivan/memberdesk/internal/platform/apperr"
	"github.com/taibuivan/memberdesk/internal/users/account"
)

// memoryMembers enforces the same unique columns as the members table.
type memoryMembers struct {
	mu      sync.Mutex
	byUser  map[string]*account.Member
	next    int
	stale   int // NextMemberCode answers with a taken code this many times
	creates int
}

func newMemoryMembers() *memoryMembers {
	return &memoryMembers{byUser: map[string]*account.Member{}, next: 1}
}

func (m *memoryMembers) FindByUserID(_ context.Context, userID string) (*account.Member, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	member, ok := m.byUser[userID]
	if !ok {
		return nil, apperr.NotFound("Member")
	}
	clone := *member
	return &clone, nil
}

func (m *memoryMembers) NextMemberCode(context.Context) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.stale > 0 {
		m.stale--
		return account.FormatMemberCode(m.next - 1), nil
	}
	return account.FormatMemberCode(m.next), nil
}

func (m *memoryMembers) Create(_ context.Context, member *account.Member) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.creates++
	if err := m.checkUnique(member); err != nil {
		return err
	}
	clone := *member
	m.byUser[member.UserID] = &clone
	m.next++
	return nil
}

func (m *memoryMembers) Update(_ context.Context, member *account.Member) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.checkUnique(member); err != nil {
		return err
	}
	clone := *member
	m.byUser[member.UserID] = &clone
	return nil
}

func (m *memoryMembers) checkUnique(member *account.Member) error {
	for _, other := range m.byUser {
		if other.ID == member.ID {
			continue
		}
		switch {
		case other.MemberCode == member.MemberCode:
			return account.ErrMemberCodeTaken
		case same(other.Phone, member.Phone):
			return apperr.Conflict("This phone number is already registered.")
		case same(other.Email, member.Email):
			return apperr.Conflict("This email is already registered.")
		}
	}
	return nil
}

func same(a, b *string) bool {
	return a != nil && b != nil && *a == *b
}
