package membergate

import (
	"context"
	"time"

	"github.com/membergate/membergate/session"
)

// Member is the credential record for a single account. Account is the
// natural key and immutable after creation. CreatedAt and UpdatedAt are
// store-managed.
type Member struct {
	Account      string
	PasswordHash string
	Name         string
	Email        string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// MemberStore persists one [Member] per account.
//
// Create returns [ErrDuplicateAccount] when the account already exists. Find
// returns (nil, nil) for an unknown account; absence is not an error.
type MemberStore interface {
	Create(ctx context.Context, m Member) error
	Find(ctx context.Context, account string) (*Member, error)
	Update(ctx context.Context, m Member) error
	Delete(ctx context.Context, account string) error
}

// SessionStore persists at most one [session.Record] per account. Find
// returns (nil, nil) for an account that never attempted a sign-in.
type SessionStore interface {
	Create(ctx context.Context, r session.Record) error
	Find(ctx context.Context, account string) (*session.Record, error)
	Update(ctx context.Context, r session.Record) error
	Delete(ctx context.Context, account string) error
}

// Store is the persistence surface the engine is built on. InTx runs fn
// against a transaction-scoped view of the store: either every write fn
// performs commits, or none does. Read-only lookups go through the plain
// accessors and need no transaction.
//
// Implementations: sqlitestore (durable, serialized writers) and redistore
// (MULTI/EXEC write grouping). Callers may bring their own.
type Store interface {
	Members() MemberStore
	Sessions() SessionStore
	InTx(ctx context.Context, fn func(tx Store) error) error
	Close() error
}
