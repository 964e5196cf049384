package domain

import (
	"errors"
	"strings"
	"testing"
)

// prefixHasher is a deterministic stand-in for the real password hasher.
type prefixHasher struct{}

func (prefixHasher) Hash(password string) (string, error) { return "hashed:" + password, nil }

func (prefixHasher) Verify(password, hash string) bool { return hash == "hashed:"+password }

func TestNewUser_UsernameBounds(t *testing.T) {
	cases := []struct {
		username string
		wantErr  bool
	}{
		{"", true},
		{"ab", true},
		{"abc", false},
		{strings.Repeat("a", 31), false},
		{strings.Repeat("a", 32), true},
	}

	for _, tc := range cases {
		_, err := NewUser("user_id_000001", tc.username, "secret1", prefixHasher{})
		if tc.wantErr {
			if !errors.Is(err, ErrValidation) {
				t.Fatalf("username %q: expected ErrValidation, got %v", tc.username, err)
			}
			continue
		}
		if err != nil {
			t.Fatalf("username %q: unexpected error: %v", tc.username, err)
		}
	}
}

func TestNewUser_PasswordBounds(t *testing.T) {
	cases := []struct {
		password string
		wantErr  bool
	}{
		{"12345", true},
		{"123456", false},
		{strings.Repeat("p", 255), false},
		{strings.Repeat("p", 256), true},
	}

	for _, tc := range cases {
		_, err := NewUser("user_id_000001", "alice", tc.password, prefixHasher{})
		if tc.wantErr != (err != nil) {
			t.Fatalf("password len %d: wantErr=%v got %v", len(tc.password), tc.wantErr, err)
		}
		if err != nil && !errors.Is(err, ErrValidation) {
			t.Fatalf("expected ErrValidation, got %v", err)
		}
	}
}

func TestNewUser_HashesPassword(t *testing.T) {
	u, err := NewUser("user_id_000001", "alice", "secret1", prefixHasher{})
	if err != nil {
		t.Fatalf("NewUser: %v", err)
	}
	if u.PasswordHash == "secret1" {
		t.Fatalf("expected password to be hashed")
	}
	if err := u.Authenticate("secret1", prefixHasher{}); err != nil {
		t.Fatalf("Authenticate with same password: %v", err)
	}
	if err := u.Authenticate("secret2", prefixHasher{}); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
}

func TestUser_ChangePassword(t *testing.T) {
	u, _ := NewUser("user_id_000001", "alice", "secret1", prefixHasher{})

	if err := u.ChangePassword("wrong-pass", "newsecret", prefixHasher{}); !errors.Is(err, ErrAuthentication) {
		t.Fatalf("expected ErrAuthentication, got %v", err)
	}
	if err := u.ChangePassword("secret1", "short", prefixHasher{}); !errors.Is(err, ErrValidation) {
		t.Fatalf("expected ErrValidation, got %v", err)
	}
	if err := u.ChangePassword("secret1", "newsecret", prefixHasher{}); err != nil {
		t.Fatalf("ChangePassword: %v", err)
	}
	if err := u.Authenticate("newsecret", prefixHasher{}); err != nil {
		t.Fatalf("new password should verify: %v", err)
	}
}

func TestUser_UpdateUsername(t *testing.T) {
	u := &User{ID: "id", Username: "alice"}

	if err := u.UpdateUsername("al"); !errors.Is(err, ErrValidation) {
		t.Fatalf("expected ErrValidation, got %v", err)
	}
	if u.Username != "alice" {
		t.Fatalf("username changed on failure: %s", u.Username)
	}
	if err := u.UpdateUsername("alicia"); err != nil {
		t.Fatalf("UpdateUsername: %v", err)
	}
	if u.Public() != (PublicUser{ID: "id", Username: "alicia"}) {
		t.Fatalf("unexpected public view: %+v", u.Public())
	}
}

func TestUser_CanCreateTodo(t *testing.T) {
	u := &User{}
	if !u.CanCreateTodo(49, 50) {
		t.Fatalf("49 of 50 should be allowed")
	}
	if u.CanCreateTodo(50, 50) {
		t.Fatalf("50 of 50 should be rejected")
	}
	if u.CanCreateTodo(DefaultMaxTodos, 0) {
		t.Fatalf("zero limit should fall back to the default cap")
	}
}
