// Package auth is the mocked session service of the dashboard: any
// credentials are accepted and resolve to the demo user after a simulated
// backend latency.
package auth

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"kivo/internal/datasource"
)

// DefaultLatency matches the simulated auth delay of the original client.
const DefaultLatency = 800 * time.Millisecond

type User struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

var (
	ErrEmptyEmail    = errors.New("empty email")
	ErrEmptyPassword = errors.New("empty password")
	ErrEmptyUserName = errors.New("empty name")
	ErrNotLoggedIn   = errors.New("not logged in")
)

// Service holds the current session. There is exactly one, mirroring the
// single-user dashboard.
type Service struct {
	mu      sync.Mutex
	latency time.Duration
	user    *User
}

func NewService(latency time.Duration) *Service {
	return &Service{latency: latency}
}

// Login accepts any non-empty credentials and resolves to the demo user
// with the given email.
func (s *Service) Login(ctx context.Context, email, password string) (User, error) {
	if strings.TrimSpace(email) == "" {
		return User{}, ErrEmptyEmail
	}
	if password == "" {
		return User{}, ErrEmptyPassword
	}
	if err := datasource.Wait(ctx, s.latency); err != nil {
		return User{}, err
	}

	user := User{
		ID:    "1",
		Name:  "João Silva",
		Email: email,
	}

	s.mu.Lock()
	s.user = &user
	s.mu.Unlock()
	return user, nil
}

// Signup creates a session for a fresh user id under the given name.
func (s *Service) Signup(ctx context.Context, name, email, password string) (User, error) {
	if strings.TrimSpace(name) == "" {
		return User{}, ErrEmptyUserName
	}
	if strings.TrimSpace(email) == "" {
		return User{}, ErrEmptyEmail
	}
	if password == "" {
		return User{}, ErrEmptyPassword
	}
	if err := datasource.Wait(ctx, s.latency); err != nil {
		return User{}, err
	}

	user := User{
		ID:    uuid.NewString(),
		Name:  name,
		Email: email,
	}

	s.mu.Lock()
	s.user = &user
	s.mu.Unlock()
	return user, nil
}

// Logout drops the session. Logging out twice is a no-op.
func (s *Service) Logout() {
	s.mu.Lock()
	s.user = nil
	s.mu.Unlock()
}

// CurrentUser returns the logged-in user, ErrNotLoggedIn otherwise.
func (s *Service) CurrentUser() (User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.user == nil {
		return User{}, ErrNotLoggedIn
	}
	return *s.user, nil
}

// IsAuthenticated reports whether a session exists.
func (s *Service) IsAuthenticated() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.user != nil
}
