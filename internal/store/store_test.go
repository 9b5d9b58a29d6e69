package store

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/keygate/keygate/internal/model"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(Config{}) // in-memory SQLite
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func testKey(token string) *model.APIKey {
	start := time.Now().UTC()
	return &model.APIKey{
		Token:     token,
		StartDate: start,
		ExpiresAt: start.Add(30 * 24 * time.Hour),
		Status:    model.StatusActive,
	}
}

func TestCreateAdminAndGetByEmail(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	admin := &model.Admin{Email: "ops@example.com", PasswordHash: "$2a$10$hash"}
	if err := s.CreateAdmin(ctx, admin); err != nil {
		t.Fatalf("CreateAdmin: %v", err)
	}
	if admin.ID == 0 {
		t.Error("expected admin ID to be populated")
	}

	got, err := s.GetAdminByEmail(ctx, "ops@example.com")
	if err != nil {
		t.Fatalf("GetAdminByEmail: %v", err)
	}
	if got.Email != admin.Email || got.PasswordHash != admin.PasswordHash {
		t.Errorf("got %+v, want email/hash of %+v", got, admin)
	}
}

func TestCreateAdminDuplicateEmail(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	a := &model.Admin{Email: "dup@example.com", PasswordHash: "h1"}
	if err := s.CreateAdmin(ctx, a); err != nil {
		t.Fatalf("CreateAdmin: %v", err)
	}

	b := &model.Admin{Email: "dup@example.com", PasswordHash: "h2"}
	if err := s.CreateAdmin(ctx, b); !errors.Is(err, ErrDuplicate) {
		t.Errorf("expected ErrDuplicate, got %v", err)
	}
}

func TestGetAdminByEmailNotFound(t *testing.T) {
	s := newTestStore(t)

	_, err := s.GetAdminByEmail(context.Background(), "nobody@example.com")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestHasAnyAdmin(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	has, err := s.HasAnyAdmin(ctx)
	if err != nil {
		t.Fatalf("HasAnyAdmin: %v", err)
	}
	if has {
		t.Error("expected no admins in a fresh store")
	}

	if err := s.CreateAdmin(ctx, &model.Admin{Email: "a@b.c", PasswordHash: "h"}); err != nil {
		t.Fatalf("CreateAdmin: %v", err)
	}

	has, err = s.HasAnyAdmin(ctx)
	if err != nil {
		t.Fatalf("HasAnyAdmin: %v", err)
	}
	if !has {
		t.Error("expected HasAnyAdmin to report true after create")
	}
}

func TestCreateUserWithKey(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	key := testKey("kg_0123456789abcdef0123456789abcdef")
	user := &model.User{FirstName: "Ada", LastName: "Lovelace", Email: "ada@example.com"}

	if err := s.CreateUserWithKey(ctx, user, key); err != nil {
		t.Fatalf("CreateUserWithKey: %v", err)
	}
	if key.ID == 0 || user.ID == 0 {
		t.Error("expected key and user IDs to be populated")
	}
	if user.APIKeyID != key.ID {
		t.Errorf("user.APIKeyID = %d, want %d", user.APIKeyID, key.ID)
	}

	got, err := s.GetAPIKeyByToken(ctx, key.Token)
	if err != nil {
		t.Fatalf("GetAPIKeyByToken: %v", err)
	}
	if got.Status != model.StatusActive {
		t.Errorf("status = %q, want %q", got.Status, model.StatusActive)
	}
}

func TestCreateUserWithKeyDuplicateEmailRollsBack(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	first := &model.User{FirstName: "Ada", LastName: "Lovelace", Email: "ada@example.com"}
	if err := s.CreateUserWithKey(ctx, first, testKey("kg_first")); err != nil {
		t.Fatalf("CreateUserWithKey: %v", err)
	}

	second := &model.User{FirstName: "Also", LastName: "Ada", Email: "ada@example.com"}
	err := s.CreateUserWithKey(ctx, second, testKey("kg_second"))
	if !errors.Is(err, ErrDuplicate) {
		t.Fatalf("expected ErrDuplicate, got %v", err)
	}

	// The key inserted before the failing user insert must be rolled back:
	// no orphan key rows.
	if _, err := s.GetAPIKeyByToken(ctx, "kg_second"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected orphan key to be rolled back, got %v", err)
	}

	keys, err := s.ListAPIKeys(ctx)
	if err != nil {
		t.Fatalf("ListAPIKeys: %v", err)
	}
	if len(keys) != 1 {
		t.Errorf("expected exactly 1 key after failed registration, got %d", len(keys))
	}
}

func TestGetAPIKeyByTokenNotFound(t *testing.T) {
	s := newTestStore(t)

	_, err := s.GetAPIKeyByToken(context.Background(), "kg_missing")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestUpdateAPIKeyStatus(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	key := testKey("kg_revokeme")
	user := &model.User{FirstName: "Rev", LastName: "Oked", Email: "rev@example.com"}
	if err := s.CreateUserWithKey(ctx, user, key); err != nil {
		t.Fatalf("CreateUserWithKey: %v", err)
	}

	if err := s.UpdateAPIKeyStatus(ctx, key.ID, model.StatusRevoked); err != nil {
		t.Fatalf("UpdateAPIKeyStatus: %v", err)
	}

	got, err := s.GetAPIKeyByToken(ctx, key.Token)
	if err != nil {
		t.Fatalf("GetAPIKeyByToken: %v", err)
	}
	if got.Status != model.StatusRevoked {
		t.Errorf("status = %q, want %q", got.Status, model.StatusRevoked)
	}

	if err := s.UpdateAPIKeyStatus(ctx, 99999, model.StatusExpired); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound for unknown id, got %v", err)
	}
}

func TestListUsersWithKeys(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	users := []struct {
		first, last, email, token string
	}{
		{"Ada", "Lovelace", "ada@example.com", "kg_token_ada"},
		{"Alan", "Turing", "alan@example.com", "kg_token_alan"},
	}
	for _, u := range users {
		user := &model.User{FirstName: u.first, LastName: u.last, Email: u.email}
		if err := s.CreateUserWithKey(ctx, user, testKey(u.token)); err != nil {
			t.Fatalf("CreateUserWithKey(%s): %v", u.email, err)
		}
	}

	rows, err := s.ListUsersWithKeys(ctx)
	if err != nil {
		t.Fatalf("ListUsersWithKeys: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(rows))
	}
	if rows[0].Email != "ada@example.com" || rows[0].KeyToken != "kg_token_ada" {
		t.Errorf("row 0 = %+v, want ada joined to her key", rows[0])
	}
	if rows[1].FirstName != "Alan" || rows[1].Status != model.StatusActive {
		t.Errorf("row 1 = %+v, want Alan with an Active key", rows[1])
	}
}

func TestOpenUnsupportedDriver(t *testing.T) {
	_, err := Open(Config{Driver: "oracle"})
	if err == nil {
		t.Fatal("expected error for unsupported driver")
	}
}

func TestIsDuplicateErr(t *testing.T) {
	cases := []struct {
		msg  string
		want bool
	}{
		{"UNIQUE constraint failed: users.email", true},
		{"Error 1062: Duplicate entry 'a@b.c' for key 'email'", true},
		{"ERROR: duplicate key value violates unique constraint", true},
		{"connection refused", false},
	}
	for _, c := range cases {
		if got := isDuplicateErr(errors.New(c.msg)); got != c.want {
			t.Errorf("isDuplicateErr(%q) = %v, want %v", c.msg, got, c.want)
		}
	}
	if isDuplicateErr(nil) {
		t.Error("isDuplicateErr(nil) should be false")
	}
}
