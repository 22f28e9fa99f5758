// Package domain defines the core profile domain entities and types.
package domain

import (
	"time"

	"github.com/google/uuid"

	"github.com/talkbase/talkbase/internal/errors"
)

// Profile represents a user's public profile. One profile exists per user;
// the provisioning worker creates an empty row when a user_created event
// arrives and the user fills it in later.
type Profile struct {
	ID                uuid.UUID
	UserID            uuid.UUID
	Name              *string
	Lastname          *string
	Birthday          *time.Time
	ProfilePictureURL *string
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// Domain-specific errors for profile operations.
var (
	// ErrProfileNotFound indicates no profile exists for the requested user.
	ErrProfileNotFound = errors.Wrap(errors.ErrNotFound, "profile not found")

	// ErrProfileAlreadyExists indicates a profile already exists for the user.
	// The provisioning worker treats it as success.
	ErrProfileAlreadyExists = errors.Wrap(errors.ErrConflict, "profile already exists")

	// ErrInvalidUserID indicates the supplied user ID is not a valid UUID.
	ErrInvalidUserID = errors.Wrap(errors.ErrInvalidInput, "invalid user id")
)
