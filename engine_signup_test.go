package membergate

import (
	"context"
	"errors"
	"strings"
	"testing"
)

func TestSignup_CreatesMember(t *testing.T) {
	engine, store, _ := newTestEngine(t, testConfig())
	ctx := context.Background()

	err := engine.Signup(ctx, SignupRequest{
		Account:         "alice",
		Password:        "correct-horse",
		ConfirmPassword: "correct-horse",
		Name:            "Alice",
		Email:           "alice@example.com",
	})
	if err != nil {
		t.Fatalf("signup failed: %v", err)
	}

	member, err := store.Members().Find(ctx, "alice")
	if err != nil || member == nil {
		t.Fatalf("expected stored member, got %v / %v", member, err)
	}
	if member.Name != "Alice" || member.Email != "alice@example.com" {
		t.Fatalf("profile fields not persisted: %+v", member)
	}
	if member.PasswordHash == "" || member.PasswordHash == "correct-horse" {
		t.Fatal("password must be stored hashed")
	}
	if !strings.HasPrefix(member.PasswordHash, "$argon2id$") {
		t.Fatalf("unexpected hash format: %s", member.PasswordHash)
	}
}

func TestSignup_ConfirmationMismatch(t *testing.T) {
	engine, store, _ := newTestEngine(t, testConfig())
	ctx := context.Background()

	err := engine.Signup(ctx, SignupRequest{
		Account:         "alice",
		Password:        "correct-horse",
		ConfirmPassword: "correct-h0rse",
	})
	if !errors.Is(err, ErrCredentialMismatch) {
		t.Fatalf("expected ErrCredentialMismatch, got %v", err)
	}

	// Nothing persisted on a rejected signup.
	if member, _ := store.Members().Find(ctx, "alice"); member != nil {
		t.Fatal("no member should be created on confirmation mismatch")
	}
}

func TestSignup_DuplicateAccount(t *testing.T) {
	engine, _, _ := newTestEngine(t, testConfig())
	ctx := context.Background()

	seedMember(t, engine, "alice", "correct-horse")

	err := engine.Signup(ctx, SignupRequest{
		Account:         "alice",
		Password:        "other-password",
		ConfirmPassword: "other-password",
	})
	if !errors.Is(err, ErrDuplicateAccount) {
		t.Fatalf("expected ErrDuplicateAccount, got %v", err)
	}

	if got := engine.MetricsSnapshot().Counters[MetricSignupDuplicate]; got != 1 {
		t.Fatalf("expected 1 duplicate counted, got %d", got)
	}
}

func TestSignup_ShortPassword(t *testing.T) {
	engine, _, _ := newTestEngine(t, testConfig())
	ctx := context.Background()

	// No length policy in the core: a two-byte password signs up and
	// signs in like any other credential.
	err := engine.Signup(ctx, SignupRequest{
		Account:         "alice",
		Password:        "p1",
		ConfirmPassword: "p1",
	})
	if err != nil {
		t.Fatalf("signup failed: %v", err)
	}

	if _, err := engine.Signin(ctx, "alice", "p1"); err != nil {
		t.Fatalf("signin failed: %v", err)
	}
}
