// Package usecase implements the user business logic and orchestrates user domain operations.
package usecase

import (
	"context"
	"log/slog"
	"strings"
	"time"

	validation "github.com/jellydator/validation"

	"github.com/google/uuid"

	"github.com/talkbase/talkbase/internal/bus"
	"github.com/talkbase/talkbase/internal/database"
	apperrors "github.com/talkbase/talkbase/internal/errors"
	"github.com/talkbase/talkbase/internal/event"
	outboxDomain "github.com/talkbase/talkbase/internal/outbox/domain"
	"github.com/talkbase/talkbase/internal/token"
	"github.com/talkbase/talkbase/internal/user/domain"
	appValidation "github.com/talkbase/talkbase/internal/validation"
)

// RegisterUserInput contains the input data for user registration
type RegisterUserInput struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginInput contains the input data for authentication
type LoginInput struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// LoginOutput contains the issued session token
type LoginOutput struct {
	AccessToken string
	TokenType   string
	ExpiresIn   int
}

// UseCase defines the interface for user business logic operations
type UseCase interface {
	RegisterUser(ctx context.Context, input RegisterUserInput) (*domain.User, error)
	Login(ctx context.Context, input LoginInput) (*LoginOutput, error)
	GetUserByID(ctx context.Context, id uuid.UUID) (*domain.User, error)
	ListUsers(ctx context.Context, limit, offset int) ([]*domain.User, error)
}

// UserRepository interface defines user repository operations
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error)
	GetByUsername(ctx context.Context, username string) (*domain.User, error)
	List(ctx context.Context, limit, offset int) ([]*domain.User, error)
}

// OutboxEventRepository interface defines outbox event repository operations
type OutboxEventRepository interface {
	Create(ctx context.Context, event *outboxDomain.OutboxEvent) error
	Update(ctx context.Context, event *outboxDomain.OutboxEvent) error
}

// UserUseCase handles user-related business logic
type UserUseCase struct {
	txManager      database.TxManager
	userRepo       UserRepository
	outboxRepo     OutboxEventRepository
	publisher      bus.Publisher
	authority      *token.Authority
	passwordHasher *token.PasswordHasher
	logger         *slog.Logger
}

// NewUserUseCase creates a new UserUseCase
func NewUserUseCase(
	txManager database.TxManager,
	userRepo UserRepository,
	outboxRepo OutboxEventRepository,
	publisher bus.Publisher,
	authority *token.Authority,
	logger *slog.Logger,
) (*UserUseCase, error) {
	hasher, err := token.NewPasswordHasher()
	if err != nil {
		return nil, err
	}

	return &UserUseCase{
		txManager:      txManager,
		userRepo:       userRepo,
		outboxRepo:     outboxRepo,
		publisher:      publisher,
		authority:      authority,
		passwordHasher: hasher,
		logger:         logger,
	}, nil
}

// validateRegisterUserInput validates the registration input using jellydator/validation
func (uc *UserUseCase) validateRegisterUserInput(input RegisterUserInput) error {
	err := validation.ValidateStruct(&input,
		validation.Field(&input.Username,
			validation.Required.Error("username is required"),
			appValidation.NotBlank,
			appValidation.Username,
			validation.Length(3, 120).Error("username must be between 3 and 120 characters"),
		),
		validation.Field(&input.Email,
			validation.Required.Error("email is required"),
			appValidation.NotBlank,
			appValidation.Email,
			validation.Length(5, 255).Error("email must be between 5 and 255 characters"),
		),
		validation.Field(&input.Password,
			validation.Required.Error("password is required"),
			validation.Length(8, 128).Error("password must be between 8 and 128 characters"),
			appValidation.PasswordStrength{
				MinLength:     8,
				RequireUpper:  true,
				RequireLower:  true,
				RequireNumber: true,
			},
		),
	)
	return appValidation.WrapValidationError(err)
}

// RegisterUser registers a new user. The user row and a user_created outbox
// event are written in one transaction; after commit the event is published
// to the bus. A failed publish is logged and leaves the outbox row pending
// for the relay to retry, and the registration still succeeds.
func (uc *UserUseCase) RegisterUser(ctx context.Context, input RegisterUserInput) (*domain.User, error) {
	if err := uc.validateRegisterUserInput(input); err != nil {
		return nil, err
	}

	hashedPassword, err := uc.passwordHasher.Hash(input.Password)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	user := &domain.User{
		ID:        uuid.Must(uuid.NewV7()),
		Username:  strings.TrimSpace(input.Username),
		Email:     strings.TrimSpace(strings.ToLower(input.Email)),
		Password:  hashedPassword,
		IsActive:  true,
		CreatedAt: now,
		UpdatedAt: now,
	}

	payload, err := event.Encode(event.NewUserCreated(event.UserPayload{
		ID:        user.ID.String(),
		Username:  user.Username,
		Email:     user.Email,
		IsActive:  user.IsActive,
		CreatedAt: user.CreatedAt,
	}))
	if err != nil {
		return nil, err
	}

	outboxEvent := &outboxDomain.OutboxEvent{
		ID:        uuid.Must(uuid.NewV7()),
		EventType: event.TypeUserCreated,
		Payload:   string(payload),
		Status:    outboxDomain.OutboxEventStatusPending,
	}

	err = uc.txManager.WithTx(ctx, func(ctx context.Context) error {
		if err := uc.userRepo.Create(ctx, user); err != nil {
			return err
		}

		if err := uc.outboxRepo.Create(ctx, outboxEvent); err != nil {
			return apperrors.Wrap(err, "failed to create outbox event")
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	uc.publishUserCreated(ctx, outboxEvent)

	return user, nil
}

// publishUserCreated attempts the synchronous post-commit publish. On success
// the outbox row is marked processed so the relay skips it; on failure the
// row stays pending and the relay retries later.
func (uc *UserUseCase) publishUserCreated(ctx context.Context, outboxEvent *outboxDomain.OutboxEvent) {
	if err := uc.publisher.Publish(ctx, []byte(outboxEvent.Payload)); err != nil {
		if uc.logger != nil {
			uc.logger.Error("failed to publish user_created event",
				slog.String("event_id", outboxEvent.ID.String()),
				slog.Any("error", err),
			)
		}
		return
	}

	now := time.Now()
	outboxEvent.Status = outboxDomain.OutboxEventStatusProcessed
	outboxEvent.ProcessedAt = &now

	if err := uc.outboxRepo.Update(ctx, outboxEvent); err != nil && uc.logger != nil {
		// The relay will publish the event again; consumers are idempotent.
		uc.logger.Warn("failed to mark outbox event as processed",
			slog.String("event_id", outboxEvent.ID.String()),
			slog.Any("error", err),
		)
	}
}

// Login verifies the username/password pair and issues a session token.
// Unknown usernames, wrong passwords and inactive accounts all fail with
// ErrInvalidCredentials so the response does not leak which part was wrong.
func (uc *UserUseCase) Login(ctx context.Context, input LoginInput) (*LoginOutput, error) {
	if input.Username == "" || input.Password == "" {
		return nil, domain.ErrInvalidCredentials
	}

	user, err := uc.userRepo.GetByUsername(ctx, strings.TrimSpace(input.Username))
	if err != nil {
		if apperrors.Is(err, domain.ErrUserNotFound) {
			return nil, domain.ErrInvalidCredentials
		}
		return nil, err
	}

	if !user.IsActive || !uc.passwordHasher.Verify(input.Password, user.Password) {
		return nil, domain.ErrInvalidCredentials
	}

	accessToken, err := uc.authority.Issue(user.ID.String())
	if err != nil {
		return nil, err
	}

	return &LoginOutput{
		AccessToken: accessToken,
		TokenType:   "Bearer",
		ExpiresIn:   int(uc.authority.TTL().Seconds()),
	}, nil
}

// GetUserByID retrieves a user by ID
func (uc *UserUseCase) GetUserByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	return uc.userRepo.GetByID(ctx, id)
}

// ListUsers retrieves users ordered by creation time, newest first
func (uc *UserUseCase) ListUsers(ctx context.Context, limit, offset int) ([]*domain.User, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}
	return uc.userRepo.List(ctx, limit, offset)
}
