package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"github.com/membergate/membergate"
	"github.com/membergate/membergate/redistore"
)

func newGuardedServer(t *testing.T) (*membergate.Engine, http.Handler) {
	t.Helper()

	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("miniredis start failed: %v", err)
	}
	t.Cleanup(mr.Close)

	store := redistore.New(redis.NewClient(&redis.Options{Addr: mr.Addr()}))
	t.Cleanup(func() { store.Close() })

	cfg := membergate.DefaultConfig()
	cfg.Token.PrivateKey = []byte("test-signing-secret-32-bytes-min")
	cfg.Password.Memory = 8 * 1024
	cfg.Password.Time = 1
	cfg.Password.Parallelism = 1
	cfg.Audit.Enabled = false

	engine, err := membergate.New().WithConfig(cfg).WithStore(store).Build()
	if err != nil {
		t.Fatalf("engine build failed: %v", err)
	}
	t.Cleanup(engine.Close)

	handler := Guard(engine)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		member, ok := membergate.AuthMemberFromContext(r.Context())
		if !ok {
			http.Error(w, "missing member", http.StatusInternalServerError)
			return
		}
		w.Write([]byte(member.Account))
	}))

	return engine, handler
}

func signinToken(t *testing.T, engine *membergate.Engine) string {
	t.Helper()
	ctx := context.Background()

	err := engine.Signup(ctx, membergate.SignupRequest{
		Account:         "alice",
		Password:        "correct-horse",
		ConfirmPassword: "correct-horse",
	})
	if err != nil {
		t.Fatalf("signup failed: %v", err)
	}

	token, err := engine.Signin(ctx, "alice", "correct-horse")
	if err != nil {
		t.Fatalf("signin failed: %v", err)
	}
	return token
}

func TestGuard_ValidToken(t *testing.T) {
	engine, handler := newGuardedServer(t)
	token := signinToken(t, engine)

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if rec.Body.String() != "alice" {
		t.Fatalf("expected account in context, got %q", rec.Body.String())
	}
}

func TestGuard_MissingHeader(t *testing.T) {
	_, handler := newGuardedServer(t)

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}

func TestGuard_MalformedHeader(t *testing.T) {
	engine, handler := newGuardedServer(t)
	token := signinToken(t, engine)

	for _, header := range []string{token, "Bearer ", "Basic " + token} {
		req := httptest.NewRequest(http.MethodGet, "/protected", nil)
		req.Header.Set("Authorization", header)
		rec := httptest.NewRecorder()

		handler.ServeHTTP(rec, req)

		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("header %q: expected 401, got %d", header, rec.Code)
		}
	}
}

func TestGuard_SupersededToken(t *testing.T) {
	engine, handler := newGuardedServer(t)
	old := signinToken(t, engine)

	if _, err := engine.Signin(context.Background(), "alice", "correct-horse"); err != nil {
		t.Fatalf("second signin failed: %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+old)
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 for superseded token, got %d", rec.Code)
	}
}

func TestGuard_NilEngine(t *testing.T) {
	handler := Guard(nil)(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer some-token")
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}
