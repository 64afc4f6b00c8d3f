package service

import (
	"context"
	"errors"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"github.com/philipcowcer-eng/LoadBalance/internal/audit"
	"github.com/philipcowcer-eng/LoadBalance/pkg/models"
	"github.com/philipcowcer-eng/LoadBalance/pkg/repository"
)

const minPasswordLength = 6

// Register creates a user account. The first account ever created is an
// admin whatever role was asked for. Later accounts get the requested role
// only when an admin registers them; everyone else becomes an engineer.
func (s *Service) Register(ctx context.Context, username, password string, role models.UserRole) (*models.User, error) {
	username = strings.TrimSpace(username)
	if len(password) < minPasswordLength {
		return nil, invalid("password", "must be at least %d characters", minPasswordLength)
	}
	if role == "" {
		role = models.UserEngineer
	}
	u := models.User{Username: username, Role: role}
	if err := s.check(u); err != nil {
		return nil, err
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.hashCost)
	if err != nil {
		return nil, err
	}
	u.PasswordHash = string(hash)

	err = s.store.InTx(ctx, func(tx repository.Store) error {
		existing, err := tx.GetUserByUsername(ctx, username)
		if err != nil {
			return err
		}
		if existing != nil {
			return invalid("username", "already registered")
		}
		n, err := tx.CountUsers(ctx)
		if err != nil {
			return err
		}
		switch {
		case n == 0:
			u.Role = models.UserAdmin
		case !callerIsAdmin(ctx):
			u.Role = models.UserEngineer
		}
		return tx.CreateUser(ctx, &u)
	})
	if err != nil {
		return nil, err
	}
	s.record(ctx, "register", ResourceUser, u.ID, map[string]any{"username": u.Username, "role": u.Role}, nil, nil)
	return &u, nil
}

func callerIsAdmin(ctx context.Context) bool {
	a, ok := audit.ActorFromContext(ctx)
	return ok && a.Role == models.UserAdmin
}

// Authenticate verifies a username and password pair.
func (s *Service) Authenticate(ctx context.Context, username, password string) (*models.User, error) {
	u, err := s.store.GetUserByUsername(ctx, strings.TrimSpace(username))
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)); err != nil {
		if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	return u, nil
}

func (s *Service) GetUser(ctx context.Context, id string) (*models.User, error) {
	u, err := s.store.GetUserByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, notFound("User")
	}
	return u, nil
}

func (s *Service) ListUsers(ctx context.Context) ([]models.User, error) {
	return s.store.ListUsers(ctx)
}

// EnsureAdmin creates an admin account when no users exist yet. It reports
// whether an account was created and is safe to call on every start.
func (s *Service) EnsureAdmin(ctx context.Context, username, password string) (bool, error) {
	n, err := s.store.CountUsers(ctx)
	if err != nil {
		return false, err
	}
	if n > 0 {
		return false, nil
	}
	u, err := s.Register(ctx, username, password, models.UserAdmin)
	if err != nil {
		return false, err
	}
	s.logger.Warn("bootstrap admin created; change its password", "username", u.Username)
	return true, nil
}
