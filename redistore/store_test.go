package redistore

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"github.com/membergate/membergate"
	"github.com/membergate/membergate/session"
	"github.com/membergate/membergate/token"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()

	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("miniredis start failed: %v", err)
	}
	t.Cleanup(mr.Close)

	store := New(redis.NewClient(&redis.Options{Addr: mr.Addr()}))
	t.Cleanup(func() { store.Close() })
	return store
}

func testMember(account string) membergate.Member {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	return membergate.Member{
		Account:      account,
		PasswordHash: "$argon2id$test-hash",
		Name:         "Alice",
		Email:        account + "@example.com",
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

func TestMemberStore_CreateFindRoundTrip(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	want := testMember("alice")
	if err := store.Members().Create(ctx, want); err != nil {
		t.Fatalf("create failed: %v", err)
	}

	got, err := store.Members().Find(ctx, "alice")
	if err != nil {
		t.Fatalf("find failed: %v", err)
	}
	if got == nil {
		t.Fatal("expected member")
	}
	if got.Account != want.Account || got.PasswordHash != want.PasswordHash ||
		got.Name != want.Name || got.Email != want.Email {
		t.Fatalf("member changed in round trip: %+v", got)
	}
	if !got.CreatedAt.Equal(want.CreatedAt) {
		t.Fatalf("created at changed in round trip: %v", got.CreatedAt)
	}
}

func TestMemberStore_FindAbsentIsNil(t *testing.T) {
	store := openTestStore(t)

	got, err := store.Members().Find(context.Background(), "nobody")
	if err != nil {
		t.Fatalf("find failed: %v", err)
	}
	if got != nil {
		t.Fatal("absence must be (nil, nil)")
	}
}

func TestMemberStore_DuplicateCreate(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	if err := store.Members().Create(ctx, testMember("alice")); err != nil {
		t.Fatalf("create failed: %v", err)
	}
	err := store.Members().Create(ctx, testMember("alice"))
	if !errors.Is(err, membergate.ErrDuplicateAccount) {
		t.Fatalf("expected ErrDuplicateAccount, got %v", err)
	}
}

func TestMemberStore_UpdateRequiresExistence(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	if err := store.Members().Update(ctx, testMember("nobody")); err == nil {
		t.Fatal("updating an absent member must fail")
	}

	member := testMember("alice")
	if err := store.Members().Create(ctx, member); err != nil {
		t.Fatalf("create failed: %v", err)
	}
	member.PasswordHash = "$argon2id$rehash"
	if err := store.Members().Update(ctx, member); err != nil {
		t.Fatalf("update failed: %v", err)
	}

	got, _ := store.Members().Find(ctx, "alice")
	if got == nil || got.PasswordHash != "$argon2id$rehash" {
		t.Fatalf("hash not updated: %+v", got)
	}
}

func TestSessionStore_RoundTripPreservesOptionalFields(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	mismatched := session.NewMismatched("alice", now)
	if err := store.Sessions().Create(ctx, mismatched); err != nil {
		t.Fatalf("create failed: %v", err)
	}

	got, err := store.Sessions().Find(ctx, "alice")
	if err != nil || got == nil {
		t.Fatalf("find failed: %v", err)
	}
	if got.TokenID != nil || got.IssuedAt != nil || got.ExpiresAt != nil {
		t.Fatalf("token fields must stay absent: %+v", got)
	}
	if got.Mismatch != 1 || got.ChallengeAt == nil || !got.ChallengeAt.Equal(now) {
		t.Fatalf("lock bookkeeping changed in round trip: %+v", got)
	}

	claims := token.NewClaims("alice", time.Hour, now)
	if err := store.Sessions().Update(ctx, session.Activated(*got, claims, now)); err != nil {
		t.Fatalf("update failed: %v", err)
	}

	got, err = store.Sessions().Find(ctx, "alice")
	if err != nil || got == nil {
		t.Fatalf("find failed: %v", err)
	}
	if got.TokenID == nil || *got.TokenID != claims.TokenID {
		t.Fatalf("token id changed in round trip: %v", got.TokenID)
	}
	if got.ExpiresAt == nil || *got.ExpiresAt != claims.ExpiresAt {
		t.Fatalf("expires at changed in round trip: %v", got.ExpiresAt)
	}
	if got.LoginAt == nil || !got.LoginAt.Equal(now) {
		t.Fatalf("login at changed in round trip: %v", got.LoginAt)
	}
}

func TestStore_InTxGroupsWrites(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	err := store.InTx(ctx, func(tx membergate.Store) error {
		if err := tx.Members().Create(ctx, testMember("alice")); err != nil {
			return err
		}
		return tx.Sessions().Create(ctx, session.NewMismatched("alice", now))
	})
	if err != nil {
		t.Fatalf("transaction failed: %v", err)
	}

	member, err := store.Members().Find(ctx, "alice")
	if err != nil || member == nil {
		t.Fatalf("member not written: %v", err)
	}
	rec, err := store.Sessions().Find(ctx, "alice")
	if err != nil || rec == nil {
		t.Fatalf("session not written: %v", err)
	}
}

func TestStore_InTxAbortsOnFnError(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	wantErr := errors.New("boom")
	err := store.InTx(ctx, func(tx membergate.Store) error {
		if err := tx.Members().Create(ctx, testMember("alice")); err != nil {
			return err
		}
		return wantErr
	})
	if !errors.Is(err, wantErr) {
		t.Fatalf("expected fn error, got %v", err)
	}

	member, err := store.Members().Find(ctx, "alice")
	if err != nil {
		t.Fatalf("find failed: %v", err)
	}
	if member != nil {
		t.Fatal("aborted transaction must not write")
	}
}

func TestStore_InTxDuplicateSurfacesAfterExec(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	if err := store.Members().Create(ctx, testMember("alice")); err != nil {
		t.Fatalf("create failed: %v", err)
	}

	err := store.InTx(ctx, func(tx membergate.Store) error {
		return tx.Members().Create(ctx, testMember("alice"))
	})
	if !errors.Is(err, membergate.ErrDuplicateAccount) {
		t.Fatalf("expected ErrDuplicateAccount, got %v", err)
	}
}

func TestStore_CustomPrefixIsolatesKeys(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("miniredis start failed: %v", err)
	}
	t.Cleanup(mr.Close)

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	a := NewWithPrefix(client, "tenant-a")
	b := NewWithPrefix(client, "tenant-b")
	ctx := context.Background()

	if err := a.Members().Create(ctx, testMember("alice")); err != nil {
		t.Fatalf("create failed: %v", err)
	}

	got, err := b.Members().Find(ctx, "alice")
	if err != nil {
		t.Fatalf("find failed: %v", err)
	}
	if got != nil {
		t.Fatal("prefixes must isolate records")
	}
}
