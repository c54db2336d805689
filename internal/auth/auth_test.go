package auth

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestLoginLifecycle(t *testing.T) {
	s := NewService(0)
	ctx := context.Background()

	if s.IsAuthenticated() {
		t.Fatal("fresh service reports authenticated")
	}
	if _, err := s.CurrentUser(); !errors.Is(err, ErrNotLoggedIn) {
		t.Fatalf("CurrentUser() error = %v, want ErrNotLoggedIn", err)
	}

	user, err := s.Login(ctx, "joao@example.com", "s3cret")
	if err != nil {
		t.Fatalf("Login() error = %v", err)
	}
	if user.Name != "João Silva" || user.Email != "joao@example.com" {
		t.Fatalf("unexpected user: %+v", user)
	}

	got, err := s.CurrentUser()
	if err != nil {
		t.Fatalf("CurrentUser() error = %v", err)
	}
	if got != user {
		t.Fatalf("CurrentUser() = %+v, want %+v", got, user)
	}

	s.Logout()
	if s.IsAuthenticated() {
		t.Fatal("still authenticated after logout")
	}
	s.Logout() // second logout is a no-op
}

func TestLoginValidation(t *testing.T) {
	s := NewService(0)
	ctx := context.Background()

	if _, err := s.Login(ctx, " ", "pw"); !errors.Is(err, ErrEmptyEmail) {
		t.Fatalf("Login() error = %v, want ErrEmptyEmail", err)
	}
	if _, err := s.Login(ctx, "joao@example.com", ""); !errors.Is(err, ErrEmptyPassword) {
		t.Fatalf("Login() error = %v, want ErrEmptyPassword", err)
	}
	if s.IsAuthenticated() {
		t.Fatal("failed login created a session")
	}
}

func TestSignup(t *testing.T) {
	s := NewService(0)
	ctx := context.Background()

	user, err := s.Signup(ctx, "Maria Souza", "maria@example.com", "pw")
	if err != nil {
		t.Fatalf("Signup() error = %v", err)
	}
	if user.ID == "" || user.ID == "1" {
		t.Fatalf("expected a fresh id, got %q", user.ID)
	}
	if user.Name != "Maria Souza" {
		t.Fatalf("Name = %q", user.Name)
	}

	if _, err := s.Signup(ctx, "", "maria@example.com", "pw"); !errors.Is(err, ErrEmptyUserName) {
		t.Fatalf("Signup() error = %v, want ErrEmptyUserName", err)
	}
}

func TestLoginHonoursCancellation(t *testing.T) {
	s := NewService(time.Second)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := s.Login(ctx, "joao@example.com", "pw"); !errors.Is(err, context.Canceled) {
		t.Fatalf("Login() error = %v, want context.Canceled", err)
	}
	if s.IsAuthenticated() {
		t.Fatal("cancelled login created a session")
	}
}
