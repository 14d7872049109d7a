// Package redistore is a membergate.Store backed by Redis. Member and
// session records are stored as JSON values under per-account keys;
// transactional writes are grouped with MULTI/EXEC through a pipeline.
//
// Reads always hit the client directly, even inside a transaction: the
// engine performs its lookups before opening the write transaction, so a
// pipelined read would never be observed anyway.
package redistore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/membergate/membergate"
	"github.com/membergate/membergate/session"
)

const defaultKeyPrefix = "mg"

var errNotFound = errors.New("record not found")

// Store implements membergate.Store on a redis client.
type Store struct {
	client *redis.Client
	prefix string

	// Transaction scope. pipe queues writes; checks collect the SETNX/SETXX
	// outcomes that are only known after EXEC.
	pipe   redis.Pipeliner
	checks *[]txCheck
}

type txCheck struct {
	cmd     *redis.BoolCmd
	onFalse error
}

// New wraps client in a Store using the default key prefix.
func New(client *redis.Client) *Store {
	return &Store{client: client, prefix: defaultKeyPrefix}
}

// NewWithPrefix wraps client with a custom key prefix, for sharing one
// Redis database between instances.
func NewWithPrefix(client *redis.Client, prefix string) *Store {
	if prefix == "" {
		prefix = defaultKeyPrefix
	}
	return &Store{client: client, prefix: prefix}
}

// Members returns the member-record accessor.
func (s *Store) Members() membergate.MemberStore {
	return memberStore{s: s}
}

// Sessions returns the session-record accessor.
func (s *Store) Sessions() membergate.SessionStore {
	return sessionStore{s: s}
}

// InTx queues every write fn performs into a single MULTI/EXEC block, so
// either all of them land or none do. Existence-conditional writes (Create,
// Update) are verified after EXEC; a failed condition surfaces as the
// matching error even though the surrounding commands committed, which
// mirrors how Redis transactions actually behave.
func (s *Store) InTx(ctx context.Context, fn func(tx membergate.Store) error) error {
	if s.pipe != nil {
		return fn(s)
	}

	var checks []txCheck
	_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		scoped := &Store{
			client: s.client,
			prefix: s.prefix,
			pipe:   pipe,
			checks: &checks,
		}
		return fn(scoped)
	})
	if err != nil {
		return fmt.Errorf("redis transaction: %w", err)
	}

	for _, check := range checks {
		ok, err := check.cmd.Result()
		if err != nil {
			return fmt.Errorf("redis transaction: %w", err)
		}
		if !ok {
			return check.onFalse
		}
	}
	return nil
}

// Close closes the underlying client.
func (s *Store) Close() error {
	if s.pipe != nil {
		return nil
	}
	return s.client.Close()
}

func (s *Store) memberKey(account string) string {
	return s.prefix + ":member:" + account
}

func (s *Store) sessionKey(account string) string {
	return s.prefix + ":session:" + account
}

// setNX writes value only if key is absent, resolving onExists as the
// failure. Inside a transaction the outcome check is deferred to EXEC.
func (s *Store) setNX(ctx context.Context, key string, value []byte, onExists error) error {
	if s.pipe != nil {
		cmd := s.pipe.SetNX(ctx, key, value, 0)
		*s.checks = append(*s.checks, txCheck{cmd: cmd, onFalse: onExists})
		return nil
	}

	ok, err := s.client.SetNX(ctx, key, value, 0).Result()
	if err != nil {
		return fmt.Errorf("redis setnx: %w", err)
	}
	if !ok {
		return onExists
	}
	return nil
}

// setXX writes value only if key already exists.
func (s *Store) setXX(ctx context.Context, key string, value []byte) error {
	if s.pipe != nil {
		cmd := s.pipe.SetXX(ctx, key, value, 0)
		*s.checks = append(*s.checks, txCheck{cmd: cmd, onFalse: errNotFound})
		return nil
	}

	ok, err := s.client.SetXX(ctx, key, value, 0).Result()
	if err != nil {
		return fmt.Errorf("redis setxx: %w", err)
	}
	if !ok {
		return errNotFound
	}
	return nil
}

func (s *Store) del(ctx context.Context, key string) error {
	if s.pipe != nil {
		s.pipe.Del(ctx, key)
		return nil
	}
	if err := s.client.Del(ctx, key).Err(); err != nil {
		return fmt.Errorf("redis del: %w", err)
	}
	return nil
}

func (s *Store) get(ctx context.Context, key string) ([]byte, error) {
	data, err := s.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("redis get: %w", err)
	}
	return data, nil
}

/*
====================================
MEMBER RECORDS
====================================
*/

type memberWire struct {
	Account      string    `json:"account"`
	PasswordHash string    `json:"password_hash"`
	Name         string    `json:"name,omitempty"`
	Email        string    `json:"email,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

type memberStore struct {
	s *Store
}

func (m memberStore) Create(ctx context.Context, member membergate.Member) error {
	data, err := json.Marshal(wireFromMember(member))
	if err != nil {
		return fmt.Errorf("encode member: %w", err)
	}
	return m.s.setNX(ctx, m.s.memberKey(member.Account), data, membergate.ErrDuplicateAccount)
}

func (m memberStore) Find(ctx context.Context, account string) (*membergate.Member, error) {
	data, err := m.s.get(ctx, m.s.memberKey(account))
	if err != nil || data == nil {
		return nil, err
	}

	var wire memberWire
	if err := json.Unmarshal(data, &wire); err != nil {
		return nil, fmt.Errorf("decode member: %w", err)
	}

	member := memberFromWire(wire)
	return &member, nil
}

func (m memberStore) Update(ctx context.Context, member membergate.Member) error {
	data, err := json.Marshal(wireFromMember(member))
	if err != nil {
		return fmt.Errorf("encode member: %w", err)
	}
	return m.s.setXX(ctx, m.s.memberKey(member.Account), data)
}

func (m memberStore) Delete(ctx context.Context, account string) error {
	return m.s.del(ctx, m.s.memberKey(account))
}

func wireFromMember(m membergate.Member) memberWire {
	return memberWire{
		Account:      m.Account,
		PasswordHash: m.PasswordHash,
		Name:         m.Name,
		Email:        m.Email,
		CreatedAt:    m.CreatedAt,
		UpdatedAt:    m.UpdatedAt,
	}
}

func memberFromWire(w memberWire) membergate.Member {
	return membergate.Member{
		Account:      w.Account,
		PasswordHash: w.PasswordHash,
		Name:         w.Name,
		Email:        w.Email,
		CreatedAt:    w.CreatedAt,
		UpdatedAt:    w.UpdatedAt,
	}
}

/*
====================================
SESSION RECORDS
====================================
*/

type sessionStore struct {
	s *Store
}

func (st sessionStore) Create(ctx context.Context, r session.Record) error {
	data, err := json.Marshal(r)
	if err != nil {
		return fmt.Errorf("encode session: %w", err)
	}
	return st.s.setNX(ctx, st.s.sessionKey(r.Account), data, membergate.ErrDuplicateAccount)
}

func (st sessionStore) Find(ctx context.Context, account string) (*session.Record, error) {
	data, err := st.s.get(ctx, st.s.sessionKey(account))
	if err != nil || data == nil {
		return nil, err
	}

	var r session.Record
	if err := json.Unmarshal(data, &r); err != nil {
		return nil, fmt.Errorf("decode session: %w", err)
	}
	return &r, nil
}

func (st sessionStore) Update(ctx context.Context, r session.Record) error {
	data, err := json.Marshal(r)
	if err != nil {
		return fmt.Errorf("encode session: %w", err)
	}
	return st.s.setXX(ctx, st.s.sessionKey(r.Account), data)
}

func (st sessionStore) Delete(ctx context.Context, account string) error {
	return st.s.del(ctx, st.s.sessionKey(account))
}
