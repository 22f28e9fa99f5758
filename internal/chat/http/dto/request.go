// Package dto provides data transfer objects for the chat HTTP layer.
package dto

import (
	"strings"

	validation "github.com/jellydator/validation"

	"github.com/google/uuid"

	apperrors "github.com/talkbase/talkbase/internal/errors"
	appValidation "github.com/talkbase/talkbase/internal/validation"
)

// CreateChatRequest represents the API request to create a chat. The
// authenticated subject is always included as a participant.
type CreateChatRequest struct {
	Participants []string `json:"participants"`
}

// Validate validates the CreateChatRequest
func (r *CreateChatRequest) Validate() error {
	err := validation.ValidateStruct(r,
		validation.Field(&r.Participants,
			validation.Required.Error("participants is required"),
		),
	)
	if err != nil {
		return appValidation.WrapValidationError(err)
	}
	return nil
}

// ParticipantIDs parses the participant list into UUIDs
func (r *CreateChatRequest) ParticipantIDs() ([]uuid.UUID, error) {
	ids := make([]uuid.UUID, 0, len(r.Participants))
	for _, raw := range r.Participants {
		id, err := uuid.Parse(raw)
		if err != nil {
			return nil, apperrors.Wrap(apperrors.ErrInvalidInput, "participants must be valid user ids")
		}
		ids = append(ids, id)
	}
	return ids, nil
}

// ParseParticipantIDs parses a comma-separated participant query value
// into UUIDs.
func ParseParticipantIDs(raw string) ([]uuid.UUID, error) {
	parts := strings.Split(raw, ",")
	ids := make([]uuid.UUID, 0, len(parts))
	for _, part := range parts {
		id, err := uuid.Parse(strings.TrimSpace(part))
		if err != nil {
			return nil, apperrors.Wrap(apperrors.ErrInvalidInput, "participants must be valid user ids")
		}
		ids = append(ids, id)
	}
	return ids, nil
}

// SendMessageRequest represents the API request to send a message. The
// sender is taken from the session token, never from the payload.
type SendMessageRequest struct {
	Content string `json:"content"`
}

// Validate validates the SendMessageRequest
func (r *SendMessageRequest) Validate() error {
	err := validation.ValidateStruct(r,
		validation.Field(&r.Content,
			validation.Required.Error("content is required"),
			appValidation.NotBlank,
			validation.Length(1, 4000).Error("content must be at most 4000 characters"),
		),
	)
	if err != nil {
		return appValidation.WrapValidationError(err)
	}
	return nil
}
