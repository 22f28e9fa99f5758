package usecase

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/talkbase/talkbase/internal/metrics"
	"github.com/talkbase/talkbase/internal/user/domain"
)

// userUseCaseWithMetrics decorates UseCase with metrics instrumentation.
type userUseCaseWithMetrics struct {
	next    UseCase
	metrics metrics.BusinessMetrics
}

// NewUserUseCaseWithMetrics wraps a UseCase with metrics recording.
func NewUserUseCaseWithMetrics(useCase UseCase, m metrics.BusinessMetrics) UseCase {
	return &userUseCaseWithMetrics{
		next:    useCase,
		metrics: m,
	}
}

// RegisterUser records metrics for user registration operations.
func (u *userUseCaseWithMetrics) RegisterUser(
	ctx context.Context,
	input RegisterUserInput,
) (*domain.User, error) {
	start := time.Now()
	user, err := u.next.RegisterUser(ctx, input)

	status := "success"
	if err != nil {
		status = "error"
	}

	u.metrics.RecordOperation(ctx, "auth", "register_user", status)
	u.metrics.RecordDuration(ctx, "auth", "register_user", time.Since(start), status)

	return user, err
}

// Login records metrics for authentication operations.
func (u *userUseCaseWithMetrics) Login(ctx context.Context, input LoginInput) (*LoginOutput, error) {
	start := time.Now()
	output, err := u.next.Login(ctx, input)

	status := "success"
	if err != nil {
		status = "error"
	}

	u.metrics.RecordOperation(ctx, "auth", "login", status)
	u.metrics.RecordDuration(ctx, "auth", "login", time.Since(start), status)

	return output, err
}

// GetUserByID records metrics for user retrieval operations.
func (u *userUseCaseWithMetrics) GetUserByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	start := time.Now()
	user, err := u.next.GetUserByID(ctx, id)

	status := "success"
	if err != nil {
		status = "error"
	}

	u.metrics.RecordOperation(ctx, "auth", "user_get", status)
	u.metrics.RecordDuration(ctx, "auth", "user_get", time.Since(start), status)

	return user, err
}

// ListUsers records metrics for user listing operations.
func (u *userUseCaseWithMetrics) ListUsers(
	ctx context.Context,
	limit, offset int,
) ([]*domain.User, error) {
	start := time.Now()
	users, err := u.next.ListUsers(ctx, limit, offset)

	status := "success"
	if err != nil {
		status = "error"
	}

	u.metrics.RecordOperation(ctx, "auth", "user_list", status)
	u.metrics.RecordDuration(ctx, "auth", "user_list", time.Since(start), status)

	return users, err
}
