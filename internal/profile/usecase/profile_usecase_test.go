package usecase

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	apperrors "github.com/talkbase/talkbase/internal/errors"
	"github.com/talkbase/talkbase/internal/profile/domain"
)

// MockProfileRepository is a mock implementation of ProfileRepository
type MockProfileRepository struct {
	mock.Mock
}

func (m *MockProfileRepository) Create(ctx context.Context, profile *domain.Profile) error {
	args := m.Called(ctx, profile)
	return args.Error(0)
}

func (m *MockProfileRepository) GetByUserID(ctx context.Context, userID uuid.UUID) (*domain.Profile, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Profile), args.Error(1)
}

func (m *MockProfileRepository) List(ctx context.Context, limit, offset int) ([]*domain.Profile, error) {
	args := m.Called(ctx, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Profile), args.Error(1)
}

func (m *MockProfileRepository) Update(ctx context.Context, profile *domain.Profile) error {
	args := m.Called(ctx, profile)
	return args.Error(0)
}

func strPtr(s string) *string { return &s }

func TestProfileUseCase_Provision(t *testing.T) {
	t.Run("creates empty profile", func(t *testing.T) {
		repo := &MockProfileRepository{}
		uc := NewProfileUseCase(repo, nil)
		ctx := context.Background()

		userID := uuid.Must(uuid.NewV7())
		repo.On("Create", ctx, mock.MatchedBy(func(p *domain.Profile) bool {
			return p.UserID == userID && p.Name == nil && p.Lastname == nil
		})).Return(nil)

		profile, err := uc.Provision(ctx, userID)
		require.NoError(t, err)
		assert.Equal(t, userID, profile.UserID)
		assert.NotEqual(t, uuid.Nil, profile.ID)
	})

	t.Run("existing profile is a no-op", func(t *testing.T) {
		repo := &MockProfileRepository{}
		uc := NewProfileUseCase(repo, nil)
		ctx := context.Background()

		userID := uuid.Must(uuid.NewV7())
		existing := &domain.Profile{ID: uuid.Must(uuid.NewV7()), UserID: userID}

		repo.On("Create", ctx, mock.Anything).Return(domain.ErrProfileAlreadyExists)
		repo.On("GetByUserID", ctx, userID).Return(existing, nil)

		profile, err := uc.Provision(ctx, userID)
		require.NoError(t, err)
		assert.Equal(t, existing.ID, profile.ID)
	})

	t.Run("storage failure propagates", func(t *testing.T) {
		repo := &MockProfileRepository{}
		uc := NewProfileUseCase(repo, nil)
		ctx := context.Background()

		repo.On("Create", ctx, mock.Anything).Return(apperrors.New("database down"))

		profile, err := uc.Provision(ctx, uuid.Must(uuid.NewV7()))
		assert.Nil(t, profile)
		assert.Error(t, err)
	})
}

func TestProfileUseCase_UpdateProfile(t *testing.T) {
	t.Run("owner replaces all fields", func(t *testing.T) {
		repo := &MockProfileRepository{}
		uc := NewProfileUseCase(repo, nil)
		ctx := context.Background()

		userID := uuid.Must(uuid.NewV7())
		existing := &domain.Profile{
			ID:       uuid.Must(uuid.NewV7()),
			UserID:   userID,
			Name:     strPtr("Old"),
			Lastname: strPtr("Name"),
		}
		repo.On("GetByUserID", ctx, userID).Return(existing, nil)
		repo.On("Update", ctx, existing).Return(nil)

		profile, err := uc.UpdateProfile(ctx, userID, userID, UpdateProfileInput{
			Name: strPtr("Alice"),
		})
		require.NoError(t, err)

		assert.Equal(t, "Alice", *profile.Name)
		// Absent fields are cleared on a full update.
		assert.Nil(t, profile.Lastname)
	})

	t.Run("non-owner is forbidden", func(t *testing.T) {
		repo := &MockProfileRepository{}
		uc := NewProfileUseCase(repo, nil)

		subjectID := uuid.Must(uuid.NewV7())
		userID := uuid.Must(uuid.NewV7())

		profile, err := uc.UpdateProfile(context.Background(), subjectID, userID, UpdateProfileInput{})
		assert.Nil(t, profile)
		assert.ErrorIs(t, err, apperrors.ErrForbidden)
		repo.AssertNotCalled(t, "Update")
	})

	t.Run("missing profile", func(t *testing.T) {
		repo := &MockProfileRepository{}
		uc := NewProfileUseCase(repo, nil)
		ctx := context.Background()

		userID := uuid.Must(uuid.NewV7())
		repo.On("GetByUserID", ctx, userID).Return(nil, domain.ErrProfileNotFound)

		profile, err := uc.UpdateProfile(ctx, userID, userID, UpdateProfileInput{})
		assert.Nil(t, profile)
		assert.ErrorIs(t, err, domain.ErrProfileNotFound)
	})
}

func TestProfileUseCase_PatchProfile(t *testing.T) {
	t.Run("only provided fields change", func(t *testing.T) {
		repo := &MockProfileRepository{}
		uc := NewProfileUseCase(repo, nil)
		ctx := context.Background()

		userID := uuid.Must(uuid.NewV7())
		birthday := time.Date(1990, 5, 1, 0, 0, 0, 0, time.UTC)
		existing := &domain.Profile{
			ID:       uuid.Must(uuid.NewV7()),
			UserID:   userID,
			Name:     strPtr("Alice"),
			Lastname: strPtr("Smith"),
			Birthday: &birthday,
		}
		repo.On("GetByUserID", ctx, userID).Return(existing, nil)
		repo.On("Update", ctx, existing).Return(nil)

		profile, err := uc.PatchProfile(ctx, userID, userID, PatchProfileInput{
			Lastname: strPtr("Jones"),
		})
		require.NoError(t, err)

		assert.Equal(t, "Alice", *profile.Name)
		assert.Equal(t, "Jones", *profile.Lastname)
		assert.Equal(t, birthday, *profile.Birthday)
	})

	t.Run("non-owner is forbidden", func(t *testing.T) {
		repo := &MockProfileRepository{}
		uc := NewProfileUseCase(repo, nil)

		profile, err := uc.PatchProfile(
			context.Background(),
			uuid.Must(uuid.NewV7()),
			uuid.Must(uuid.NewV7()),
			PatchProfileInput{},
		)
		assert.Nil(t, profile)
		assert.ErrorIs(t, err, apperrors.ErrForbidden)
	})
}

func TestProfileUseCase_ListProfiles(t *testing.T) {
	repo := &MockProfileRepository{}
	uc := NewProfileUseCase(repo, nil)
	ctx := context.Background()

	profiles := []*domain.Profile{{UserID: uuid.Must(uuid.NewV7())}}
	repo.On("List", ctx, 50, 0).Return(profiles, nil)

	got, err := uc.ListProfiles(ctx, 0, -1)
	assert.NoError(t, err)
	assert.Equal(t, profiles, got)
}
