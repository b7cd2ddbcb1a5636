// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package auth_test

import (
	"context"
	"sync"
	"time"

	"github.com/taibuivan/memberdesk/internal/platform/apperr"
	"github.com/taibuivan/memberdesk/internal/platform/sec"
	"github.com/taibuivan/memberdesk/internal/users/auth"
	"github.com/taibuivan/memberdesk/pkg/uuid"
)

// memoryRoles is an in-memory [auth.RoleRepository].
type memoryRoles struct {
	mu    sync.Mutex
	ids   map[sec.RoleName]string
	links map[string]map[sec.RoleName]struct{}
	flags map[string]sec.LegacyFlags

	err         error
	linkedCalls int
	flagCalls   int
}

func newMemoryRoles() *memoryRoles {
	return &memoryRoles{
		ids:   map[sec.RoleName]string{},
		links: map[string]map[sec.RoleName]struct{}{},
		flags: map[string]sec.LegacyFlags{},
	}
}

func (m *memoryRoles) GetOrCreate(_ context.Context, name sec.RoleName) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.getOrCreate(sec.NormalizeRole(string(name))), nil
}

func (m *memoryRoles) getOrCreate(name sec.RoleName) string {
	if id, ok := m.ids[name]; ok {
		return id
	}
	id := uuid.New()
	m.ids[name] = id
	return id
}

func (m *memoryRoles) LinkedRoleNames(_ context.Context, userID string) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.linkedCalls++
	if m.err != nil {
		return nil, m.err
	}
	names := make([]string, 0, len(m.links[userID]))
	for name := range m.links[userID] {
		names = append(names, string(name))
	}
	return names, nil
}

func (m *memoryRoles) LegacyFlags(_ context.Context, userID string) (sec.LegacyFlags, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.flagCalls++
	if m.err != nil {
		return sec.LegacyFlags{}, m.err
	}
	return m.flags[userID], nil
}

func (m *memoryRoles) Grant(_ context.Context, userID string, name sec.RoleName) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.link(userID, sec.NormalizeRole(string(name)))
	return nil
}

func (m *memoryRoles) link(userID string, name sec.RoleName) {
	m.getOrCreate(name)
	if m.links[userID] == nil {
		m.links[userID] = map[sec.RoleName]struct{}{}
	}
	m.links[userID][name] = struct{}{}
}

func (m *memoryRoles) Revoke(_ context.Context, userID string, name sec.RoleName) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	name = sec.NormalizeRole(string(name))
	if _, ok := m.links[userID][name]; !ok {
		return false, nil
	}
	delete(m.links[userID], name)
	return true, nil
}

// memoryUsers is an in-memory [auth.UserRepository]. CreateWithRole is
// all-or-nothing like the Postgres transaction.
type memoryUsers struct {
	mu    sync.Mutex
	byID  map[string]*auth.User
	roles *memoryRoles

	linkErr  error
	touchErr error
}

func newMemoryUsers(roles *memoryRoles) *memoryUsers {
	return &memoryUsers{byID: map[string]*auth.User{}, roles: roles}
}

func (m *memoryUsers) FindByID(_ context.Context, id string) (*auth.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if user, ok := m.byID[id]; ok {
		clone := *user
		return &clone, nil
	}
	return nil, apperr.NotFound("User")
}

func (m *memoryUsers) FindByEmail(_ context.Context, email string) (*auth.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, user := range m.byID {
		if user.Email == email {
			clone := *user
			return &clone, nil
		}
	}
	return nil, apperr.NotFound("User")
}

func (m *memoryUsers) CreateWithRole(_ context.Context, user *auth.User, role sec.RoleName) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.byID {
		if existing.Email == user.Email {
			return apperr.DuplicateRegistration()
		}
	}
	if m.linkErr != nil {
		return m.linkErr
	}

	user.CreatedAt = time.Now().UTC()
	clone := *user
	m.byID[user.ID] = &clone

	m.roles.mu.Lock()
	m.roles.link(user.ID, role)
	m.roles.mu.Unlock()
	return nil
}

func (m *memoryUsers) TouchLastLogin(_ context.Context, userID string, at time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.touchErr != nil {
		return m.touchErr
	}
	user, ok := m.byID[userID]
	if !ok {
		return apperr.NotFound("User")
	}
	user.LastLoginAt = &at
	return nil
}

func (m *memoryUsers) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.byID)
}
