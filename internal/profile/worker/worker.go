// Package worker runs the profile provisioning consumer. It subscribes to
// the user_events topic and creates an empty profile for every new user.
package worker

import (
	"context"
	"log/slog"

	"github.com/google/uuid"

	"github.com/talkbase/talkbase/internal/bus"
	apperrors "github.com/talkbase/talkbase/internal/errors"
	"github.com/talkbase/talkbase/internal/event"
	profileDomain "github.com/talkbase/talkbase/internal/profile/domain"
)

// ProfileProvisioner is the slice of the profile use case the worker needs.
type ProfileProvisioner interface {
	Provision(ctx context.Context, userID uuid.UUID) (*profileDomain.Profile, error)
}

// ProvisioningWorker consumes user lifecycle events and provisions profiles.
// Processing is idempotent and messages are acknowledged only after success,
// so crashes and redeliveries never lose a profile.
type ProvisioningWorker struct {
	subscriber bus.Subscriber
	usecase    ProfileProvisioner
	logger     *slog.Logger
}

// NewProvisioningWorker creates a new ProvisioningWorker
func NewProvisioningWorker(
	subscriber bus.Subscriber,
	usecase ProfileProvisioner,
	logger *slog.Logger,
) *ProvisioningWorker {
	return &ProvisioningWorker{
		subscriber: subscriber,
		usecase:    usecase,
		logger:     logger,
	}
}

// Run consumes events until ctx is canceled.
func (w *ProvisioningWorker) Run(ctx context.Context) error {
	if w.logger != nil {
		w.logger.Info("starting profile provisioning worker")
	}
	return w.subscriber.Run(ctx, w.Handle)
}

// Handle processes one event payload. Malformed payloads and unknown event
// types are logged and acknowledged so they do not wedge the partition;
// transient storage failures return an error so the message is retried.
func (w *ProvisioningWorker) Handle(ctx context.Context, payload []byte) error {
	envelope, err := event.Decode(payload)
	if err != nil {
		if apperrors.Is(err, event.ErrUnknownType) {
			if w.logger != nil {
				w.logger.Warn("skipping unknown event type", slog.String("type", envelope.Type))
			}
			return nil
		}
		if w.logger != nil {
			w.logger.Error("skipping malformed event payload", slog.Any("error", err))
		}
		return nil
	}

	if envelope.User == nil || envelope.User.ID == "" {
		if w.logger != nil {
			w.logger.Error("skipping user_created event without user id")
		}
		return nil
	}

	userID, err := uuid.Parse(envelope.User.ID)
	if err != nil {
		if w.logger != nil {
			w.logger.Error("skipping event with invalid user id",
				slog.String("user_id", envelope.User.ID),
			)
		}
		return nil
	}

	if _, err := w.usecase.Provision(ctx, userID); err != nil {
		return apperrors.Wrap(err, "failed to provision profile")
	}

	return nil
}
