package usecase

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/talkbase/talkbase/internal/chat/domain"
	"github.com/talkbase/talkbase/internal/metrics"
)

// chatUseCaseWithMetrics decorates UseCase with metrics instrumentation.
type chatUseCaseWithMetrics struct {
	next    UseCase
	metrics metrics.BusinessMetrics
}

// NewChatUseCaseWithMetrics wraps a UseCase with metrics recording.
func NewChatUseCaseWithMetrics(useCase UseCase, m metrics.BusinessMetrics) UseCase {
	return &chatUseCaseWithMetrics{
		next:    useCase,
		metrics: m,
	}
}

// CreateChat records metrics for chat creation operations.
func (c *chatUseCaseWithMetrics) CreateChat(
	ctx context.Context,
	creatorID uuid.UUID,
	participants []uuid.UUID,
) (*domain.Chat, error) {
	start := time.Now()
	chat, err := c.next.CreateChat(ctx, creatorID, participants)

	status := "success"
	if err != nil {
		status = "error"
	}

	c.metrics.RecordOperation(ctx, "chat", "chat_create", status)
	c.metrics.RecordDuration(ctx, "chat", "chat_create", time.Since(start), status)

	return chat, err
}

// FindChatByParticipants records metrics for participant-set lookups.
func (c *chatUseCaseWithMetrics) FindChatByParticipants(
	ctx context.Context,
	subjectID uuid.UUID,
	participants []uuid.UUID,
) (*domain.Chat, error) {
	start := time.Now()
	chat, err := c.next.FindChatByParticipants(ctx, subjectID, participants)

	status := "success"
	if err != nil {
		status = "error"
	}

	c.metrics.RecordOperation(ctx, "chat", "chat_find", status)
	c.metrics.RecordDuration(ctx, "chat", "chat_find", time.Since(start), status)

	return chat, err
}

// GetChat records metrics for chat retrieval operations.
func (c *chatUseCaseWithMetrics) GetChat(ctx context.Context, subjectID, chatID uuid.UUID) (*domain.Chat, error) {
	start := time.Now()
	chat, err := c.next.GetChat(ctx, subjectID, chatID)

	status := "success"
	if err != nil {
		status = "error"
	}

	c.metrics.RecordOperation(ctx, "chat", "chat_get", status)
	c.metrics.RecordDuration(ctx, "chat", "chat_get", time.Since(start), status)

	return chat, err
}

// ListChats records metrics for chat listing operations.
func (c *chatUseCaseWithMetrics) ListChats(ctx context.Context, subjectID uuid.UUID) ([]*domain.Chat, error) {
	start := time.Now()
	chats, err := c.next.ListChats(ctx, subjectID)

	status := "success"
	if err != nil {
		status = "error"
	}

	c.metrics.RecordOperation(ctx, "chat", "chat_list", status)
	c.metrics.RecordDuration(ctx, "chat", "chat_list", time.Since(start), status)

	return chats, err
}

// SendMessage records metrics for message send operations.
func (c *chatUseCaseWithMetrics) SendMessage(
	ctx context.Context,
	subjectID, chatID uuid.UUID,
	content string,
) (*domain.Message, error) {
	start := time.Now()
	message, err := c.next.SendMessage(ctx, subjectID, chatID, content)

	status := "success"
	if err != nil {
		status = "error"
	}

	c.metrics.RecordOperation(ctx, "chat", "send_message", status)
	c.metrics.RecordDuration(ctx, "chat", "send_message", time.Since(start), status)

	return message, err
}

// ListMessages records metrics for message listing operations.
func (c *chatUseCaseWithMetrics) ListMessages(
	ctx context.Context,
	subjectID, chatID uuid.UUID,
	limit, offset int,
) ([]*domain.Message, error) {
	start := time.Now()
	messages, err := c.next.ListMessages(ctx, subjectID, chatID, limit, offset)

	status := "success"
	if err != nil {
		status = "error"
	}

	c.metrics.RecordOperation(ctx, "chat", "message_list", status)
	c.metrics.RecordDuration(ctx, "chat", "message_list", time.Since(start), status)

	return messages, err
}
