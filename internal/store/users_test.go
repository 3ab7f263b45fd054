package store

import (
	"context"
	"errors"
	"testing"

	"github.com/openmall/openmall/internal/domain"
)

func TestCreateUserAndAuthenticate(t *testing.T) {
	db := testDB(t)
	users := NewUserStore(db)

	user, err := users.CreateUser(context.Background(), "alice", "secret123", "Alice", "1 Main St", domain.RoleCustomer)
	if err != nil {
		t.Fatalf("create user: %v", err)
	}
	if user.Password == "secret123" {
		t.Fatal("password stored in plaintext")
	}

	authed, err := users.Authenticate(context.Background(), "alice", "secret123")
	if err != nil {
		t.Fatalf("authenticate: %v", err)
	}
	if authed.ID != user.ID {
		t.Fatalf("expected user %d, got %d", user.ID, authed.ID)
	}
	if authed.LastLogin.IsZero() {
		t.Fatal("expected last login stamped")
	}

	if _, err := users.Authenticate(context.Background(), "alice", "wrong"); !errors.Is(err, ErrBadCredentials) {
		t.Fatalf("expected ErrBadCredentials, got %v", err)
	}
	if _, err := users.Authenticate(context.Background(), "nobody", "secret123"); !errors.Is(err, ErrBadCredentials) {
		t.Fatalf("expected ErrBadCredentials for unknown user, got %v", err)
	}
}

func TestCreateUserDuplicateUsername(t *testing.T) {
	db := testDB(t)
	users := NewUserStore(db)

	if _, err := users.CreateUser(context.Background(), "alice", "secret123", "", "", domain.RoleCustomer); err != nil {
		t.Fatalf("create user: %v", err)
	}
	if _, err := users.CreateUser(context.Background(), "alice", "other456", "", "", domain.RoleCustomer); !errors.Is(err, ErrUsernameExists) {
		t.Fatalf("expected ErrUsernameExists, got %v", err)
	}
}
