// Package sqlitestore is a durable membergate.Store backed by SQLite via
// the pure-Go modernc.org/sqlite driver. One file, two tables, no CGO.
//
// SQLite allows a single writer at a time; the pool is pinned to one
// connection so transactions serialize instead of failing with SQLITE_BUSY.
package sqlitestore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"github.com/membergate/membergate"
	"github.com/membergate/membergate/session"
)

const schema = `
CREATE TABLE IF NOT EXISTS member (
	account       TEXT PRIMARY KEY,
	password_hash TEXT NOT NULL,
	name          TEXT NOT NULL DEFAULT '',
	email         TEXT NOT NULL DEFAULT '',
	created_at    INTEGER NOT NULL,
	updated_at    INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS member_session (
	account       TEXT PRIMARY KEY,
	issued_at     INTEGER,
	expires_at    INTEGER,
	token_id      TEXT,
	mismatch      INTEGER NOT NULL DEFAULT 0,
	challenge_at  INTEGER,
	login_at      INTEGER,
	prev_login_at INTEGER
);
`

var pragmas = []string{
	"PRAGMA journal_mode=WAL",
	"PRAGMA synchronous=NORMAL",
	"PRAGMA foreign_keys=ON",
	"PRAGMA busy_timeout=5000",
}

// querier is the subset of *sql.DB and *sql.Tx the store queries through.
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Store implements membergate.Store on a SQLite database.
type Store struct {
	db *sql.DB
	q  querier
	tx *sql.Tx
}

// Open opens (creating if absent) the database at path and prepares the
// schema. Use ":memory:" for an ephemeral in-process database.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	// Single writer; see package comment.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("apply pragma: %w", err)
		}
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}

	return &Store{db: db, q: db}, nil
}

// Members returns the member table accessor.
func (s *Store) Members() membergate.MemberStore {
	return memberStore{q: s.q}
}

// Sessions returns the session table accessor.
func (s *Store) Sessions() membergate.SessionStore {
	return sessionStore{q: s.q}
}

// InTx runs fn inside a database transaction. A nested call on a
// transaction-scoped store joins the transaction already in flight.
func (s *Store) InTx(ctx context.Context, fn func(tx membergate.Store) error) error {
	if s.tx != nil {
		return fn(s)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}

	scoped := &Store{db: s.db, q: tx, tx: tx}
	if err := fn(scoped); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			return errors.Join(err, rbErr)
		}
		return err
	}

	return tx.Commit()
}

// Close closes the underlying database.
func (s *Store) Close() error {
	if s.tx != nil {
		return nil
	}
	return s.db.Close()
}

/*
====================================
MEMBER TABLE
====================================
*/

type memberStore struct {
	q querier
}

func (m memberStore) Create(ctx context.Context, member membergate.Member) error {
	_, err := m.q.ExecContext(ctx,
		`INSERT INTO member (account, password_hash, name, email, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		member.Account,
		member.PasswordHash,
		member.Name,
		member.Email,
		member.CreatedAt.UnixNano(),
		member.UpdatedAt.UnixNano(),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return membergate.ErrDuplicateAccount
		}
		return fmt.Errorf("insert member: %w", err)
	}
	return nil
}

func (m memberStore) Find(ctx context.Context, account string) (*membergate.Member, error) {
	row := m.q.QueryRowContext(ctx,
		`SELECT account, password_hash, name, email, created_at, updated_at
		 FROM member WHERE account = ?`,
		account,
	)

	var (
		member             membergate.Member
		createdAt, updated int64
	)
	err := row.Scan(
		&member.Account,
		&member.PasswordHash,
		&member.Name,
		&member.Email,
		&createdAt,
		&updated,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("select member: %w", err)
	}

	member.CreatedAt = time.Unix(0, createdAt)
	member.UpdatedAt = time.Unix(0, updated)
	return &member, nil
}

func (m memberStore) Update(ctx context.Context, member membergate.Member) error {
	res, err := m.q.ExecContext(ctx,
		`UPDATE member SET password_hash = ?, name = ?, email = ?, updated_at = ?
		 WHERE account = ?`,
		member.PasswordHash,
		member.Name,
		member.Email,
		member.UpdatedAt.UnixNano(),
		member.Account,
	)
	if err != nil {
		return fmt.Errorf("update member: %w", err)
	}
	return requireRow(res, "member")
}

func (m memberStore) Delete(ctx context.Context, account string) error {
	_, err := m.q.ExecContext(ctx, `DELETE FROM member WHERE account = ?`, account)
	if err != nil {
		return fmt.Errorf("delete member: %w", err)
	}
	return nil
}

/*
====================================
SESSION TABLE
====================================
*/

type sessionStore struct {
	q querier
}

func (s sessionStore) Create(ctx context.Context, r session.Record) error {
	_, err := s.q.ExecContext(ctx,
		`INSERT INTO member_session
		 (account, issued_at, expires_at, token_id, mismatch, challenge_at, login_at, prev_login_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		r.Account,
		nullInt(r.IssuedAt),
		nullInt(r.ExpiresAt),
		nullStr(r.TokenID),
		r.Mismatch,
		nullTime(r.ChallengeAt),
		nullTime(r.LoginAt),
		nullTime(r.PrevLoginAt),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return membergate.ErrDuplicateAccount
		}
		return fmt.Errorf("insert session: %w", err)
	}
	return nil
}

func (s sessionStore) Find(ctx context.Context, account string) (*session.Record, error) {
	row := s.q.QueryRowContext(ctx,
		`SELECT account, issued_at, expires_at, token_id, mismatch, challenge_at, login_at, prev_login_at
		 FROM member_session WHERE account = ?`,
		account,
	)

	var (
		r                           session.Record
		issued, expires             sql.NullInt64
		tokenID                     sql.NullString
		challenge, login, prevLogin sql.NullInt64
	)
	err := row.Scan(
		&r.Account,
		&issued,
		&expires,
		&tokenID,
		&r.Mismatch,
		&challenge,
		&login,
		&prevLogin,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("select session: %w", err)
	}

	r.IssuedAt = intPtr(issued)
	r.ExpiresAt = intPtr(expires)
	r.TokenID = strPtr(tokenID)
	r.ChallengeAt = timePtr(challenge)
	r.LoginAt = timePtr(login)
	r.PrevLoginAt = timePtr(prevLogin)
	return &r, nil
}

func (s sessionStore) Update(ctx context.Context, r session.Record) error {
	res, err := s.q.ExecContext(ctx,
		`UPDATE member_session SET
		 issued_at = ?, expires_at = ?, token_id = ?, mismatch = ?,
		 challenge_at = ?, login_at = ?, prev_login_at = ?
		 WHERE account = ?`,
		nullInt(r.IssuedAt),
		nullInt(r.ExpiresAt),
		nullStr(r.TokenID),
		r.Mismatch,
		nullTime(r.ChallengeAt),
		nullTime(r.LoginAt),
		nullTime(r.PrevLoginAt),
		r.Account,
	)
	if err != nil {
		return fmt.Errorf("update session: %w", err)
	}
	return requireRow(res, "session")
}

func (s sessionStore) Delete(ctx context.Context, account string) error {
	_, err := s.q.ExecContext(ctx, `DELETE FROM member_session WHERE account = ?`, account)
	if err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}

/*
====================================
SCAN / BIND HELPERS
====================================
*/

func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}

func requireRow(res sql.Result, kind string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("%s not found", kind)
	}
	return nil
}

func nullInt(v *int64) any {
	if v == nil {
		return nil
	}
	return *v
}

func nullStr(v *string) any {
	if v == nil {
		return nil
	}
	return *v
}

func nullTime(v *time.Time) any {
	if v == nil {
		return nil
	}
	return v.UnixNano()
}

func intPtr(v sql.NullInt64) *int64 {
	if !v.Valid {
		return nil
	}
	return &v.Int64
}

func strPtr(v sql.NullString) *string {
	if !v.Valid {
		return nil
	}
	return &v.String
}

func timePtr(v sql.NullInt64) *time.Time {
	if !v.Valid {
		return nil
	}
	t := time.Unix(0, v.Int64)
	return &t
}
