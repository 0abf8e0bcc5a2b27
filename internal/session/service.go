package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/gocartshop/gocart-api/internal/events"
	pkgerrors "github.com/gocartshop/gocart-api/pkg/errors"
	"github.com/gocartshop/gocart-api/pkg/kv"
	"github.com/gocartshop/gocart-api/pkg/logger"
	"go.uber.org/multierr"
)

const invalidCredentialsMessage = "invalid username or password"

// User is a registered account. Passwords are stored as entered; the
// storefront intentionally reproduces the original demo behavior instead
// of hardening it.
type User struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// UpdateInput carries the profile fields that can change after creation.
type UpdateInput struct {
	Email    *string
	Password *string
}

// Service owns the registered-user registry and the single active session.
// Every mutation is flushed to the durable store before returning.
type Service struct {
	mu       sync.Mutex
	users    []User
	current  *User
	loggedIn bool

	store kv.Store
	bus   *events.Bus
	logg  *logger.Logger
}

// NewService builds a session store backed by the provided kv store.
func NewService(store kv.Store, bus *events.Bus, logg *logger.Logger) (*Service, error) {
	if store == nil {
		return nil, fmt.Errorf("kv store required")
	}
	if bus == nil {
		return nil, fmt.Errorf("event bus required")
	}
	return &Service{
		store: store,
		bus:   bus,
		logg:  logg,
	}, nil
}

// Load rehydrates the registry and the last active user. A persisted user
// restores the logged-in state without re-verifying credentials; the
// stored identity is trusted as-is.
func (s *Service) Load(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	raw, err := s.store.Get(ctx, kv.KeyUsers)
	switch {
	case errors.Is(err, kv.ErrNotFound):
		s.users = nil
	case err != nil:
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load user registry")
	default:
		if err := json.Unmarshal(raw, &s.users); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "decode user registry")
		}
	}

	raw, err = s.store.Get(ctx, kv.KeyCurrentUser)
	switch {
	case errors.Is(err, kv.ErrNotFound):
		s.current = nil
		s.loggedIn = false
	case err != nil:
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load current user")
	default:
		var user User
		if err := json.Unmarshal(raw, &user); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "decode current user")
		}
		s.current = &user
		s.loggedIn = true
	}

	if s.logg != nil {
		fields := map[string]any{"registered_users": len(s.users), "logged_in": s.loggedIn}
		s.logg.Info(s.logg.WithFields(ctx, fields), "session state rehydrated")
	}
	return nil
}

// Register appends a new user to the registry. Username and email
// collisions are checked case-insensitively.
func (s *Service) Register(ctx context.Context, username, email, password string) error {
	username = strings.TrimSpace(username)
	email = strings.TrimSpace(email)
	if username == "" || email == "" || password == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "username, email and password are required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, user := range s.users {
		if strings.EqualFold(user.Username, username) {
			return pkgerrors.New(pkgerrors.CodeConflict, "username already exists")
		}
	}
	for _, user := range s.users {
		if strings.EqualFold(user.Email, email) {
			return pkgerrors.New(pkgerrors.CodeConflict, "email already exists")
		}
	}

	s.users = append(s.users, User{Username: username, Email: email, Password: password})
	if err := s.flushUsersLocked(ctx); err != nil {
		return err
	}

	if s.logg != nil {
		s.logg.Info(s.logg.WithUsername(ctx, username), "user registered")
	}
	return nil
}

// Login activates the session for a registered user. The username match is
// case-insensitive; the password match is exact.
func (s *Service) Login(ctx context.Context, username, password string) (*User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.users {
		user := s.users[i]
		if strings.EqualFold(user.Username, username) && user.Password == password {
			s.current = &user
			s.loggedIn = true
			if err := s.flushCurrentLocked(ctx); err != nil {
				return nil, err
			}
			if s.logg != nil {
				s.logg.Info(s.logg.WithUsername(ctx, user.Username), "user logged in")
			}
			copied := user
			return &copied, nil
		}
	}

	return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, invalidCredentialsMessage)
}

// Logout clears the session, removes the persisted mirror, and announces
// the logout so the cart empties itself.
func (s *Service) Logout(ctx context.Context) error {
	s.mu.Lock()
	var username string
	if s.current != nil {
		username = s.current.Username
	}
	s.current = nil
	s.loggedIn = false
	err := s.store.Delete(ctx, kv.KeyCurrentUser)
	s.mu.Unlock()

	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "remove persisted session")
	}

	s.bus.Publish(ctx, events.TopicUserLoggedOut, events.UserLoggedOut{Username: username})

	if s.logg != nil {
		s.logg.Info(s.logg.WithUsername(ctx, username), "user logged out")
	}
	return nil
}

// Update merges profile fields into the current user and the registry.
// Users are never deleted; this is the only mutation after creation.
func (s *Service) Update(ctx context.Context, input UpdateInput) (*User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.loggedIn || s.current == nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "no active session")
	}

	if input.Email != nil {
		email := strings.TrimSpace(*input.Email)
		if email == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "email cannot be empty")
		}
		for _, user := range s.users {
			if strings.EqualFold(user.Email, email) && !strings.EqualFold(user.Username, s.current.Username) {
				return nil, pkgerrors.New(pkgerrors.CodeConflict, "email already exists")
			}
		}
		s.current.Email = email
	}
	if input.Password != nil {
		if *input.Password == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "password cannot be empty")
		}
		s.current.Password = *input.Password
	}

	for i := range s.users {
		if strings.EqualFold(s.users[i].Username, s.current.Username) {
			s.users[i] = *s.current
			break
		}
	}

	err := multierr.Combine(
		s.flushUsersLocked(ctx),
		s.flushCurrentLocked(ctx),
	)
	if err != nil {
		return nil, err
	}

	copied := *s.current
	return &copied, nil
}

// CurrentUser returns the active user, if any.
func (s *Service) CurrentUser() (*User, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.loggedIn || s.current == nil {
		return nil, false
	}
	copied := *s.current
	return &copied, true
}

// IsLoggedIn reports whether a session is active.
func (s *Service) IsLoggedIn() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loggedIn
}

// RegisteredCount returns the registry size.
func (s *Service) RegisteredCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.users)
}

func (s *Service) flushUsersLocked(ctx context.Context) error {
	raw, err := json.Marshal(s.users)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "encode user registry")
	}
	if err := s.store.Set(ctx, kv.KeyUsers, raw); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "persist user registry")
	}
	return nil
}

func (s *Service) flushCurrentLocked(ctx context.Context) error {
	if s.current == nil {
		if err := s.store.Delete(ctx, kv.KeyCurrentUser); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "remove persisted session")
		}
		return nil
	}
	raw, err := json.Marshal(s.current)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "encode current user")
	}
	if err := s.store.Set(ctx, kv.KeyCurrentUser, raw); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "persist current user")
	}
	return nil
}
