// Package domain defines the core chat domain entities and types.
package domain

import (
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/talkbase/talkbase/internal/errors"
)

// Chat represents a conversation between a fixed set of participants. The
// participant list is deduplicated and sorted on creation so the same set of
// users always maps to the same stored document.
type Chat struct {
	ID           uuid.UUID
	Participants []uuid.UUID
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Message represents one chat message. SenderID is always stamped from the
// validated session token, never taken from the client payload. Messages are
// immutable once persisted.
type Message struct {
	ID        uuid.UUID
	ChatID    uuid.UUID
	SenderID  uuid.UUID
	Content   string
	CreatedAt time.Time
}

// Domain-specific errors for chat operations.
var (
	// ErrChatNotFound indicates the requested chat does not exist.
	ErrChatNotFound = errors.Wrap(errors.ErrNotFound, "chat not found")

	// ErrNotParticipant indicates the subject is not a member of the chat.
	ErrNotParticipant = errors.Wrap(errors.ErrForbidden, "not a chat participant")

	// ErrEmptyMessage indicates the message content is blank.
	ErrEmptyMessage = errors.Wrap(errors.ErrInvalidInput, "message content is empty")

	// ErrNoParticipants indicates a chat creation request without any
	// participants besides the creator.
	ErrNoParticipants = errors.Wrap(errors.ErrInvalidInput, "chat needs at least one other participant")

	// ErrInvalidChatID indicates the supplied chat ID is not a valid UUID.
	ErrInvalidChatID = errors.Wrap(errors.ErrInvalidInput, "invalid chat id")
)

// NormalizeParticipants deduplicates and sorts a participant set. The creator
// is always included.
func NormalizeParticipants(creator uuid.UUID, participants []uuid.UUID) []uuid.UUID {
	seen := map[uuid.UUID]struct{}{creator: {}}
	normalized := []uuid.UUID{creator}

	for _, participant := range participants {
		if _, ok := seen[participant]; ok {
			continue
		}
		seen[participant] = struct{}{}
		normalized = append(normalized, participant)
	}

	sort.Slice(normalized, func(i, j int) bool {
		return normalized[i].String() < normalized[j].String()
	})
	return normalized
}

// HasParticipant reports whether the user is a member of the chat.
func (c *Chat) HasParticipant(userID uuid.UUID) bool {
	for _, participant := range c.Participants {
		if participant == userID {
			return true
		}
	}
	return false
}
