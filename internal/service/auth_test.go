package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/keygate/keygate/internal/store"
)

func newTestAuth(t *testing.T) (*AuthService, *store.Store) {
	t.Helper()
	st, err := store.Open(store.Config{})
	if err != nil {
		t.Fatalf("store.Open: %v", err)
	}
	t.Cleanup(func() { st.Close() })
	auth := NewAuthService(st, "test-secret-key-for-jwt", time.Hour)
	return auth, st
}

func TestRegisterAndLogin(t *testing.T) {
	auth, _ := newTestAuth(t)
	ctx := context.Background()

	admin, err := auth.Register(ctx, "ops@example.com", "hunter2hunter2")
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	if admin.ID == 0 {
		t.Error("expected admin ID to be populated")
	}
	if admin.PasswordHash == "hunter2hunter2" {
		t.Error("password must not be stored in plaintext")
	}

	token, err := auth.Login(ctx, "ops@example.com", "hunter2hunter2")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if token == "" {
		t.Fatal("expected non-empty credential")
	}

	principal, err := auth.VerifyToken(token)
	if err != nil {
		t.Fatalf("VerifyToken: %v", err)
	}
	if principal.AdminID != admin.ID {
		t.Errorf("AdminID = %d, want %d", principal.AdminID, admin.ID)
	}
	if principal.Email != "ops@example.com" {
		t.Errorf("Email = %q, want %q", principal.Email, "ops@example.com")
	}
}

func TestRegisterValidation(t *testing.T) {
	auth, _ := newTestAuth(t)
	ctx := context.Background()

	if _, err := auth.Register(ctx, "", "pw"); !errors.Is(err, ErrValidation) {
		t.Errorf("empty email: expected ErrValidation, got %v", err)
	}
	if _, err := auth.Register(ctx, "a@b.c", ""); !errors.Is(err, ErrValidation) {
		t.Errorf("empty password: expected ErrValidation, got %v", err)
	}
}

func TestRegisterDuplicateEmail(t *testing.T) {
	auth, _ := newTestAuth(t)
	ctx := context.Background()

	if _, err := auth.Register(ctx, "dup@example.com", "password1"); err != nil {
		t.Fatalf("Register: %v", err)
	}
	if _, err := auth.Register(ctx, "dup@example.com", "password2"); !errors.Is(err, store.ErrDuplicate) {
		t.Errorf("expected store.ErrDuplicate, got %v", err)
	}
}

func TestLoginFailuresAreIndistinguishable(t *testing.T) {
	auth, _ := newTestAuth(t)
	ctx := context.Background()

	if _, err := auth.Register(ctx, "ops@example.com", "correct-password"); err != nil {
		t.Fatalf("Register: %v", err)
	}

	_, wrongPw := auth.Login(ctx, "ops@example.com", "wrong-password")
	_, unknownEmail := auth.Login(ctx, "nobody@example.com", "correct-password")

	if !errors.Is(wrongPw, ErrInvalidCredentials) {
		t.Errorf("wrong password: expected ErrInvalidCredentials, got %v", wrongPw)
	}
	if !errors.Is(unknownEmail, ErrInvalidCredentials) {
		t.Errorf("unknown email: expected ErrInvalidCredentials, got %v", unknownEmail)
	}
	// Identical errors: nothing leaks which emails exist.
	if wrongPw.Error() != unknownEmail.Error() {
		t.Errorf("error texts differ: %q vs %q", wrongPw, unknownEmail)
	}
}

func TestVerifyTokenExpired(t *testing.T) {
	st, err := store.Open(store.Config{})
	if err != nil {
		t.Fatalf("store.Open: %v", err)
	}
	t.Cleanup(func() { st.Close() })

	// Negative TTL is clamped by the constructor, so build one directly
	// around an already-expired credential via a tiny TTL.
	auth := NewAuthService(st, "test-secret-key-for-jwt", time.Nanosecond)
	ctx := context.Background()

	if _, err := auth.Register(ctx, "ops@example.com", "password1"); err != nil {
		t.Fatalf("Register: %v", err)
	}
	token, err := auth.Login(ctx, "ops@example.com", "password1")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}

	time.Sleep(10 * time.Millisecond)
	if _, err := auth.VerifyToken(token); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("expected ErrInvalidCredentials for expired token, got %v", err)
	}
}

func TestVerifyTokenGarbage(t *testing.T) {
	auth, _ := newTestAuth(t)

	if _, err := auth.VerifyToken("garbage.token.here"); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("expected ErrInvalidCredentials, got %v", err)
	}
}

func TestVerifyTokenWrongSecret(t *testing.T) {
	auth, st := newTestAuth(t)
	ctx := context.Background()

	if _, err := auth.Register(ctx, "ops@example.com", "password1"); err != nil {
		t.Fatalf("Register: %v", err)
	}
	token, err := auth.Login(ctx, "ops@example.com", "password1")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}

	other := NewAuthService(st, "a-different-secret", time.Hour)
	if _, err := other.VerifyToken(token); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("expected ErrInvalidCredentials for tampered/foreign token, got %v", err)
	}
}
