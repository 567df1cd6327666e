package auth

import (
	"context"
	"fmt"
	"strings"

	"github.com/dukerupert/tripkit/internal/apperr"
	"github.com/dukerupert/tripkit/internal/model"
)

// UserStorage is the persistence Credentials needs. *store.UserStore satisfies it.
type UserStorage interface {
	Create(ctx context.Context, username, passwordHash, email string) (*model.User, error)
	GetByID(ctx context.Context, id int64) (*model.User, error)
	GetByUsername(ctx context.Context, username string) (*model.User, error)
	SetPasswordHash(ctx context.Context, id int64, passwordHash string) error
}

// Credentials registers users and verifies their passwords.
type Credentials struct {
	users UserStorage
	// dummyHash is compared against for unknown usernames so a miss costs the
	// same as a wrong password.
	dummyHash string
}

func NewCredentials(users UserStorage) (*Credentials, error) {
	dummy, err := HashPassword("tripkit-dummy-password")
	if err != nil {
		return nil, err
	}
	return &Credentials{users: users, dummyHash: dummy}, nil
}

func (c *Credentials) Register(ctx context.Context, username, password, email string) (*model.User, error) {
	username = strings.TrimSpace(username)
	email = strings.TrimSpace(email)
	if username == "" {
		return nil, apperr.Validation("username is required")
	}
	if password == "" {
		return nil, apperr.Validation("password is required")
	}
	if len(password) > MaxPasswordBytes {
		return nil, apperr.Validation("password must be at most %d bytes", MaxPasswordBytes)
	}
	if email != "" && !strings.Contains(email, "@") {
		return nil, apperr.Validation("email is invalid")
	}

	existing, err := c.users.GetByUsername(ctx, username)
	if err != nil {
		return nil, fmt.Errorf("look up user: %w", err)
	}
	if existing != nil {
		return nil, apperr.Conflict("user already exists")
	}

	hash, err := HashPassword(password)
	if err != nil {
		return nil, err
	}
	// The UNIQUE constraint still catches a concurrent registration.
	return c.users.Create(ctx, username, hash, email)
}

// Verify returns the user when password matches. Unknown usernames and wrong
// passwords both yield apperr.ErrInvalidCredentials.
func (c *Credentials) Verify(ctx context.Context, username, password string) (*model.User, error) {
	u, err := c.users.GetByUsername(ctx, strings.TrimSpace(username))
	if err != nil {
		return nil, fmt.Errorf("look up user: %w", err)
	}
	if u == nil {
		CheckPassword(c.dummyHash, password)
		return nil, apperr.ErrInvalidCredentials
	}
	if !CheckPassword(u.PasswordHash, password) {
		return nil, apperr.ErrInvalidCredentials
	}
	return u, nil
}

// SetPassword replaces the user's password after checking the current one.
func (c *Credentials) SetPassword(ctx context.Context, userID int64, current, next string) error {
	if next == "" {
		return apperr.Validation("new_password is required")
	}
	if len(next) > MaxPasswordBytes {
		return apperr.Validation("new_password must be at most %d bytes", MaxPasswordBytes)
	}
	u, err := c.users.GetByID(ctx, userID)
	if err != nil {
		return fmt.Errorf("look up user: %w", err)
	}
	if u == nil {
		return apperr.NotFound("user")
	}
	if !CheckPassword(u.PasswordHash, current) {
		return apperr.ErrInvalidCredentials
	}
	hash, err := HashPassword(next)
	if err != nil {
		return err
	}
	return c.users.SetPasswordHash(ctx, userID, hash)
}

// User returns the profile of userID.
func (c *Credentials) User(ctx context.Context, userID int64) (*model.User, error) {
	u, err := c.users.GetByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("look up user: %w", err)
	}
	if u == nil {
		return nil, apperr.NotFound("user")
	}
	return u, nil
}
