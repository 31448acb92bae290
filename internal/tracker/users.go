// Package tracker implements the task, user and sprint services the bot
// and the REST API consume. Services wrap the store repositories and add
// validation, authentication and KPI aggregation.
package tracker

import (
	"context"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"fmt"

	"github.com/teamflow/sprintbot/internal/model"
	"github.com/teamflow/sprintbot/internal/store"
)

// ErrInvalidCredentials is returned when an email/password pair does not
// match a registered user.
var ErrInvalidCredentials = fmt.Errorf("invalid credentials")

// UserService manages registered users and authentication.
type UserService struct {
	repo *store.UserRepo
}

// NewUserService creates a user service over the given repository.
func NewUserService(repo *store.UserRepo) *UserService {
	return &UserService{repo: repo}
}

// FindAll returns all registered users.
func (s *UserService) FindAll(ctx context.Context) ([]model.User, error) {
	return s.repo.FindAll(ctx)
}

// FindByID returns a user by id, or nil when absent.
func (s *UserService) FindByID(ctx context.Context, id int64) (*model.User, error) {
	return s.repo.FindByID(ctx, id)
}

// FindByTelegramUsername returns the user registered under the given
// Telegram username, or nil when none matches.
func (s *UserService) FindByTelegramUsername(ctx context.Context, username string) (*model.User, error) {
	if username == "" {
		return nil, nil
	}
	return s.repo.FindByTelegramUsername(ctx, username)
}

// Authenticate verifies an email/password pair and returns the matching
// user. Returns ErrInvalidCredentials on mismatch.
func (s *UserService) Authenticate(ctx context.Context, email, password string) (*model.User, error) {
	user, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("failed to look up user: %w", err)
	}
	if user == nil {
		return nil, ErrInvalidCredentials
	}

	hash := HashPassword(password)
	if subtle.ConstantTimeCompare([]byte(hash), []byte(user.PasswordHash)) != 1 {
		return nil, ErrInvalidCredentials
	}
	return user, nil
}

// Create registers a new user, hashing the provided plaintext password.
func (s *UserService) Create(ctx context.Context, user *model.User, password string) (*model.User, error) {
	if user.FirstName == "" || user.LastName == "" {
		return nil, fmt.Errorf("first and last name are required")
	}
	if user.Email == "" {
		return nil, fmt.Errorf("email is required")
	}
	user.PasswordHash = HashPassword(password)
	if err := s.repo.Create(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// Update rewrites an existing user's profile fields.
func (s *UserService) Update(ctx context.Context, user *model.User) (*model.User, error) {
	existing, err := s.repo.FindByID(ctx, user.ID)
	if err != nil {
		return nil, err
	}
	if existing == nil {
		return nil, fmt.Errorf("user %d not found", user.ID)
	}
	if err := s.repo.Update(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// Delete logically deletes a user.
func (s *UserService) Delete(ctx context.Context, id int64) error {
	return s.repo.Delete(ctx, id)
}

// HashPassword returns the hex SHA-256 digest stored for a password.
func HashPassword(password string) string {
	sum := sha256.Sum256([]byte(password))
	return hex.EncodeToString(sum[:])
}
