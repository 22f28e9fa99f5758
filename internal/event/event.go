// Package event defines the wire format of the user_events topic. The
// payload is UTF-8 JSON; consumers ignore unknown fields so producers can add
// fields without breaking older consumers.
package event

import (
	"encoding/json"
	"time"

	apperrors "github.com/talkbase/talkbase/internal/errors"
)

// Event types carried on the user_events topic.
const (
	TypeUserCreated = "user_created"
)

// ErrUnknownType indicates an envelope whose type field is not recognized.
// Consumers log and skip such events instead of failing.
var ErrUnknownType = apperrors.New("event: unknown event type")

// UserPayload is the user snapshot embedded in user lifecycle events.
type UserPayload struct {
	ID        string    `json:"id"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
}

// Envelope is the outer structure of every event on the user_events topic.
type Envelope struct {
	Type string       `json:"type"`
	User *UserPayload `json:"user,omitempty"`
}

// NewUserCreated builds a user_created envelope for the given user snapshot.
func NewUserCreated(user UserPayload) Envelope {
	return Envelope{Type: TypeUserCreated, User: &user}
}

// Encode serializes the envelope to its JSON wire form.
func Encode(envelope Envelope) ([]byte, error) {
	payload, err := json.Marshal(envelope)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to encode event")
	}
	return payload, nil
}

// Decode parses a raw payload into an Envelope. A payload that is not valid
// JSON or lacks a type field is malformed and fails with ErrInvalidInput; a
// well-formed envelope with an unrecognized type fails with ErrUnknownType so
// the caller can skip it.
func Decode(payload []byte) (Envelope, error) {
	var envelope Envelope
	if err := json.Unmarshal(payload, &envelope); err != nil {
		return Envelope{}, apperrors.Wrap(apperrors.ErrInvalidInput, "malformed event payload")
	}
	if envelope.Type == "" {
		return Envelope{}, apperrors.Wrap(apperrors.ErrInvalidInput, "event payload missing type")
	}
	if envelope.Type != TypeUserCreated {
		return envelope, apperrors.Wrap(ErrUnknownType, envelope.Type)
	}
	return envelope, nil
}
