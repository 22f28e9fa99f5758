// Package usecase implements the profile business logic and orchestrates profile domain operations.
package usecase

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	apperrors "github.com/talkbase/talkbase/internal/errors"
	"github.com/talkbase/talkbase/internal/profile/domain"
)

// UpdateProfileInput contains the input data for a full profile update.
// Absent fields are cleared.
type UpdateProfileInput struct {
	Name              *string
	Lastname          *string
	Birthday          *time.Time
	ProfilePictureURL *string
}

// PatchProfileInput contains the input data for a partial profile update.
// Nil fields are left unchanged.
type PatchProfileInput struct {
	Name              *string
	Lastname          *string
	Birthday          *time.Time
	ProfilePictureURL *string
}

// UseCase defines the interface for profile business logic operations
type UseCase interface {
	Provision(ctx context.Context, userID uuid.UUID) (*domain.Profile, error)
	GetByUserID(ctx context.Context, userID uuid.UUID) (*domain.Profile, error)
	ListProfiles(ctx context.Context, limit, offset int) ([]*domain.Profile, error)
	UpdateProfile(ctx context.Context, subjectID, userID uuid.UUID, input UpdateProfileInput) (*domain.Profile, error)
	PatchProfile(ctx context.Context, subjectID, userID uuid.UUID, input PatchProfileInput) (*domain.Profile, error)
}

// ProfileRepository interface defines profile repository operations
type ProfileRepository interface {
	Create(ctx context.Context, profile *domain.Profile) error
	GetByUserID(ctx context.Context, userID uuid.UUID) (*domain.Profile, error)
	List(ctx context.Context, limit, offset int) ([]*domain.Profile, error)
	Update(ctx context.Context, profile *domain.Profile) error
}

// ProfileUseCase handles profile-related business logic
type ProfileUseCase struct {
	profileRepo ProfileRepository
	logger      *slog.Logger
}

// NewProfileUseCase creates a new ProfileUseCase
func NewProfileUseCase(profileRepo ProfileRepository, logger *slog.Logger) *ProfileUseCase {
	return &ProfileUseCase{
		profileRepo: profileRepo,
		logger:      logger,
	}
}

// Provision creates an empty profile for the user. It is idempotent: if a
// profile already exists the existing one is returned, so redelivered
// user_created events are harmless.
func (uc *ProfileUseCase) Provision(ctx context.Context, userID uuid.UUID) (*domain.Profile, error) {
	profile := &domain.Profile{
		ID:     uuid.Must(uuid.NewV7()),
		UserID: userID,
	}

	err := uc.profileRepo.Create(ctx, profile)
	if err == nil {
		if uc.logger != nil {
			uc.logger.Info("profile provisioned", slog.String("user_id", userID.String()))
		}
		return profile, nil
	}

	if apperrors.Is(err, domain.ErrProfileAlreadyExists) {
		if uc.logger != nil {
			uc.logger.Info("profile already exists, skipping",
				slog.String("user_id", userID.String()),
			)
		}
		return uc.profileRepo.GetByUserID(ctx, userID)
	}

	return nil, err
}

// GetByUserID retrieves a profile by the owning user's ID
func (uc *ProfileUseCase) GetByUserID(ctx context.Context, userID uuid.UUID) (*domain.Profile, error) {
	return uc.profileRepo.GetByUserID(ctx, userID)
}

// ListProfiles retrieves profiles ordered by creation time, newest first
func (uc *ProfileUseCase) ListProfiles(ctx context.Context, limit, offset int) ([]*domain.Profile, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}
	return uc.profileRepo.List(ctx, limit, offset)
}

// UpdateProfile replaces all mutable fields of the subject's own profile.
// Updating another user's profile fails with ErrForbidden.
func (uc *ProfileUseCase) UpdateProfile(
	ctx context.Context,
	subjectID, userID uuid.UUID,
	input UpdateProfileInput,
) (*domain.Profile, error) {
	if subjectID != userID {
		return nil, apperrors.Wrap(apperrors.ErrForbidden, "profile belongs to another user")
	}

	profile, err := uc.profileRepo.GetByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}

	profile.Name = input.Name
	profile.Lastname = input.Lastname
	profile.Birthday = input.Birthday
	profile.ProfilePictureURL = input.ProfilePictureURL

	if err := uc.profileRepo.Update(ctx, profile); err != nil {
		return nil, err
	}
	return profile, nil
}

// PatchProfile updates only the provided fields of the subject's own profile.
func (uc *ProfileUseCase) PatchProfile(
	ctx context.Context,
	subjectID, userID uuid.UUID,
	input PatchProfileInput,
) (*domain.Profile, error) {
	if subjectID != userID {
		return nil, apperrors.Wrap(apperrors.ErrForbidden, "profile belongs to another user")
	}

	profile, err := uc.profileRepo.GetByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}

	if input.Name != nil {
		profile.Name = input.Name
	}
	if input.Lastname != nil {
		profile.Lastname = input.Lastname
	}
	if input.Birthday != nil {
		profile.Birthday = input.Birthday
	}
	if input.ProfilePictureURL != nil {
		profile.ProfilePictureURL = input.ProfilePictureURL
	}

	if err := uc.profileRepo.Update(ctx, profile); err != nil {
		return nil, err
	}
	return profile, nil
}
