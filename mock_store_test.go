package membergate

import (
	"context"
	"errors"
	"sync"

	"github.com/membergate/membergate/session"
)

var (
	errMockFailure  = errors.New("mock store failure")
	errMockNotFound = errors.New("mock record not found")
)

// mockStore is the in-memory Store used by the root test suite. Writes are
// applied immediately; InTx exists to satisfy the interface, not to provide
// rollback.
type mockStore struct {
	mu       sync.Mutex
	members  map[string]Member
	sessions map[string]session.Record

	failFind bool
}

func newMockStore() *mockStore {
	return &mockStore{
		members:  make(map[string]Member),
		sessions: make(map[string]session.Record),
	}
}

func (s *mockStore) Members() MemberStore   { return mockMembers{s: s} }
func (s *mockStore) Sessions() SessionStore { return mockSessions{s: s} }
func (s *mockStore) Close() error           { return nil }

func (s *mockStore) session(account string) (session.Record, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.sessions[account]
	return r, ok
}

func (s *mockStore) InTx(_ context.Context, fn func(tx Store) error) error {
	return fn(s)
}

type mockMembers struct {
	s *mockStore
}

func (m mockMembers) Create(_ context.Context, member Member) error {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	if _, exists := m.s.members[member.Account]; exists {
		return ErrDuplicateAccount
	}
	m.s.members[member.Account] = member
	return nil
}

func (m mockMembers) Find(_ context.Context, account string) (*Member, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	if m.s.failFind {
		return nil, errMockFailure
	}
	member, ok := m.s.members[account]
	if !ok {
		return nil, nil
	}
	return &member, nil
}

func (m mockMembers) Update(_ context.Context, member Member) error {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	if _, exists := m.s.members[member.Account]; !exists {
		return errMockNotFound
	}
	m.s.members[member.Account] = member
	return nil
}

func (m mockMembers) Delete(_ context.Context, account string) error {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	delete(m.s.members, account)
	return nil
}

type mockSessions struct {
	s *mockStore
}

func (m mockSessions) Create(_ context.Context, r session.Record) error {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	if _, exists := m.s.sessions[r.Account]; exists {
		return ErrDuplicateAccount
	}
	m.s.sessions[r.Account] = r
	return nil
}

func (m mockSessions) Find(_ context.Context, account string) (*session.Record, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	r, ok := m.s.sessions[account]
	if !ok {
		return nil, nil
	}
	return &r, nil
}

func (m mockSessions) Update(_ context.Context, r session.Record) error {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	if _, exists := m.s.sessions[r.Account]; !exists {
		return errMockNotFound
	}
	m.s.sessions[r.Account] = r
	return nil
}

func (m mockSessions) Delete(_ context.Context, account string) error {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	delete(m.s.sessions, account)
	return nil
}
