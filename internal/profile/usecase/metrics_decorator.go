package usecase

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/talkbase/talkbase/internal/metrics"
	"github.com/talkbase/talkbase/internal/profile/domain"
)

// profileUseCaseWithMetrics decorates UseCase with metrics instrumentation.
type profileUseCaseWithMetrics struct {
	next    UseCase
	metrics metrics.BusinessMetrics
}

// NewProfileUseCaseWithMetrics wraps a UseCase with metrics recording.
func NewProfileUseCaseWithMetrics(useCase UseCase, m metrics.BusinessMetrics) UseCase {
	return &profileUseCaseWithMetrics{
		next:    useCase,
		metrics: m,
	}
}

// Provision records metrics for profile provisioning operations.
func (p *profileUseCaseWithMetrics) Provision(ctx context.Context, userID uuid.UUID) (*domain.Profile, error) {
	start := time.Now()
	profile, err := p.next.Provision(ctx, userID)

	status := "success"
	if err != nil {
		status = "error"
	}

	p.metrics.RecordOperation(ctx, "profile", "provision_profile", status)
	p.metrics.RecordDuration(ctx, "profile", "provision_profile", time.Since(start), status)

	return profile, err
}

// GetByUserID records metrics for profile retrieval operations.
func (p *profileUseCaseWithMetrics) GetByUserID(ctx context.Context, userID uuid.UUID) (*domain.Profile, error) {
	start := time.Now()
	profile, err := p.next.GetByUserID(ctx, userID)

	status := "success"
	if err != nil {
		status = "error"
	}

	p.metrics.RecordOperation(ctx, "profile", "profile_get", status)
	p.metrics.RecordDuration(ctx, "profile", "profile_get", time.Since(start), status)

	return profile, err
}

// ListProfiles records metrics for profile listing operations.
func (p *profileUseCaseWithMetrics) ListProfiles(
	ctx context.Context,
	limit, offset int,
) ([]*domain.Profile, error) {
	start := time.Now()
	profiles, err := p.next.ListProfiles(ctx, limit, offset)

	status := "success"
	if err != nil {
		status = "error"
	}

	p.metrics.RecordOperation(ctx, "profile", "profile_list", status)
	p.metrics.RecordDuration(ctx, "profile", "profile_list", time.Since(start), status)

	return profiles, err
}

// UpdateProfile records metrics for full profile update operations.
func (p *profileUseCaseWithMetrics) UpdateProfile(
	ctx context.Context,
	subjectID, userID uuid.UUID,
	input UpdateProfileInput,
) (*domain.Profile, error) {
	start := time.Now()
	profile, err := p.next.UpdateProfile(ctx, subjectID, userID, input)

	status := "success"
	if err != nil {
		status = "error"
	}

	p.metrics.RecordOperation(ctx, "profile", "profile_update", status)
	p.metrics.RecordDuration(ctx, "profile", "profile_update", time.Since(start), status)

	return profile, err
}

// PatchProfile records metrics for partial profile update operations.
func (p *profileUseCaseWithMetrics) PatchProfile(
	ctx context.Context,
	subjectID, userID uuid.UUID,
	input PatchProfileInput,
) (*domain.Profile, error) {
	start := time.Now()
	profile, err := p.next.PatchProfile(ctx, subjectID, userID, input)

	status := "success"
	if err != nil {
		status = "error"
	}

	p.metrics.RecordOperation(ctx, "profile", "profile_patch", status)
	p.metrics.RecordDuration(ctx, "profile", "profile_patch", time.Since(start), status)

	return profile, err
}
