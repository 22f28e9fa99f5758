// Package domain defines the core user domain entities and types.
package domain

import (
	"time"

	"github.com/google/uuid"

	"github.com/talkbase/talkbase/internal/errors"
)

// User represents an account in the auth service.
type User struct {
	ID        uuid.UUID
	Username  string
	Email     string
	Password  string
	IsActive  bool
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Domain-specific errors for user operations.
var (
	// ErrUserNotFound indicates the requested user does not exist.
	ErrUserNotFound = errors.Wrap(errors.ErrNotFound, "user not found")

	// ErrUserAlreadyExists indicates a user with the same username or email
	// already exists.
	ErrUserAlreadyExists = errors.Wrap(errors.ErrConflict, "user already exists")

	// ErrInvalidCredentials indicates the username/password pair does not
	// match an active account. Login returns it for unknown usernames and
	// wrong passwords alike.
	ErrInvalidCredentials = errors.Wrap(errors.ErrUnauthorized, "invalid credentials")

	// ErrInvalidUserID indicates the supplied user ID is not a valid UUID.
	ErrInvalidUserID = errors.Wrap(errors.ErrInvalidInput, "invalid user id")
)
