// Package usecase implements the chat business logic: chat creation, message
// sending with sender stamping, and real-time fan-out.
package usecase

import (
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/talkbase/talkbase/internal/chat/domain"

	apperrors "github.com/talkbase/talkbase/internal/errors"
)

// UseCase defines the interface for chat business logic operations
type UseCase interface {
	CreateChat(ctx context.Context, creatorID uuid.UUID, participants []uuid.UUID) (*domain.Chat, error)
	GetChat(ctx context.Context, subjectID, chatID uuid.UUID) (*domain.Chat, error)
	ListChats(ctx context.Context, subjectID uuid.UUID) ([]*domain.Chat, error)
	FindChatByParticipants(ctx context.Context, subjectID uuid.UUID, participants []uuid.UUID) (*domain.Chat, error)
	SendMessage(ctx context.Context, subjectID, chatID uuid.UUID, content string) (*domain.Message, error)
	ListMessages(ctx context.Context, subjectID, chatID uuid.UUID, limit, offset int) ([]*domain.Message, error)
}

// ChatRepository interface defines chat repository operations
type ChatRepository interface {
	Create(ctx context.Context, chat *domain.Chat) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Chat, error)
	GetByParticipants(ctx context.Context, participants []uuid.UUID) (*domain.Chat, error)
	ListByParticipant(ctx context.Context, userID uuid.UUID) ([]*domain.Chat, error)
}

// MessageRepository interface defines message repository operations
type MessageRepository interface {
	Create(ctx context.Context, message *domain.Message) error
	ListByChatID(ctx context.Context, chatID uuid.UUID, limit, offset int) ([]*domain.Message, error)
}

// Broadcaster fans a payload out to live connections. Delivery is best
// effort and never fails the caller.
type Broadcaster interface {
	Broadcast(ctx context.Context, payload []byte)
}

// broadcastMessage is the wire shape pushed to websocket clients.
type broadcastMessage struct {
	ID        uuid.UUID `json:"id"`
	ChatID    uuid.UUID `json:"chat_id"`
	SenderID  uuid.UUID `json:"sender_id"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}

// ChatUseCase handles chat-related business logic
type ChatUseCase struct {
	chatRepo    ChatRepository
	messageRepo MessageRepository
	broadcaster Broadcaster
	logger      *slog.Logger
}

// NewChatUseCase creates a new ChatUseCase
func NewChatUseCase(
	chatRepo ChatRepository,
	messageRepo MessageRepository,
	broadcaster Broadcaster,
	logger *slog.Logger,
) *ChatUseCase {
	return &ChatUseCase{
		chatRepo:    chatRepo,
		messageRepo: messageRepo,
		broadcaster: broadcaster,
		logger:      logger,
	}
}

// CreateChat creates a chat between the creator and the given participants.
// The participant set is normalized, and creating a chat for a set that
// already has one returns the existing chat.
func (uc *ChatUseCase) CreateChat(
	ctx context.Context,
	creatorID uuid.UUID,
	participants []uuid.UUID,
) (*domain.Chat, error) {
	normalized := domain.NormalizeParticipants(creatorID, participants)
	if len(normalized) < 2 {
		return nil, domain.ErrNoParticipants
	}

	existing, err := uc.chatRepo.GetByParticipants(ctx, normalized)
	if err == nil {
		return existing, nil
	}
	if !apperrors.Is(err, domain.ErrChatNotFound) {
		return nil, err
	}

	now := time.Now().UTC()
	chat := &domain.Chat{
		ID:           uuid.Must(uuid.NewV7()),
		Participants: normalized,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := uc.chatRepo.Create(ctx, chat); err != nil {
		return nil, err
	}

	if uc.logger != nil {
		uc.logger.Info("chat created",
			slog.String("chat_id", chat.ID.String()),
			slog.Int("participants", len(chat.Participants)),
		)
	}
	return chat, nil
}

// GetChat retrieves a chat the subject participates in. Requesting a chat
// the subject is not a member of fails with ErrNotParticipant.
func (uc *ChatUseCase) GetChat(ctx context.Context, subjectID, chatID uuid.UUID) (*domain.Chat, error) {
	chat, err := uc.chatRepo.GetByID(ctx, chatID)
	if err != nil {
		return nil, err
	}
	if !chat.HasParticipant(subjectID) {
		return nil, domain.ErrNotParticipant
	}
	return chat, nil
}

// ListChats retrieves every chat the subject participates in
func (uc *ChatUseCase) ListChats(ctx context.Context, subjectID uuid.UUID) ([]*domain.Chat, error) {
	return uc.chatRepo.ListByParticipant(ctx, subjectID)
}

// FindChatByParticipants looks up the chat whose participant set is exactly
// the given participants plus the subject. The set is normalized the same
// way CreateChat normalizes it, so a find with the ids that created a chat
// always resolves to that chat. Fails with ErrChatNotFound when no chat has
// that exact set.
func (uc *ChatUseCase) FindChatByParticipants(
	ctx context.Context,
	subjectID uuid.UUID,
	participants []uuid.UUID,
) (*domain.Chat, error) {
	normalized := domain.NormalizeParticipants(subjectID, participants)
	if len(normalized) < 2 {
		return nil, domain.ErrNoParticipants
	}
	return uc.chatRepo.GetByParticipants(ctx, normalized)
}

// SendMessage persists a message and broadcasts it to live connections. The
// sender is always the authenticated subject regardless of what the client
// sent. Broadcast failures never fail the send.
func (uc *ChatUseCase) SendMessage(
	ctx context.Context,
	subjectID, chatID uuid.UUID,
	content string,
) (*domain.Message, error) {
	if strings.TrimSpace(content) == "" {
		return nil, domain.ErrEmptyMessage
	}

	chat, err := uc.chatRepo.GetByID(ctx, chatID)
	if err != nil {
		return nil, err
	}
	if !chat.HasParticipant(subjectID) {
		return nil, domain.ErrNotParticipant
	}

	message := &domain.Message{
		ID:        uuid.Must(uuid.NewV7()),
		ChatID:    chat.ID,
		SenderID:  subjectID,
		Content:   content,
		CreatedAt: time.Now().UTC(),
	}

	if err := uc.messageRepo.Create(ctx, message); err != nil {
		return nil, err
	}

	uc.broadcast(ctx, message)
	return message, nil
}

// ListMessages retrieves a chat's messages in chronological order. Only
// participants may read a chat's history.
func (uc *ChatUseCase) ListMessages(
	ctx context.Context,
	subjectID, chatID uuid.UUID,
	limit, offset int,
) ([]*domain.Message, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}

	chat, err := uc.chatRepo.GetByID(ctx, chatID)
	if err != nil {
		return nil, err
	}
	if !chat.HasParticipant(subjectID) {
		return nil, domain.ErrNotParticipant
	}

	return uc.messageRepo.ListByChatID(ctx, chat.ID, limit, offset)
}

func (uc *ChatUseCase) broadcast(ctx context.Context, message *domain.Message) {
	if uc.broadcaster == nil {
		return
	}

	payload, err := json.Marshal(broadcastMessage{
		ID:        message.ID,
		ChatID:    message.ChatID,
		SenderID:  message.SenderID,
		Content:   message.Content,
		CreatedAt: message.CreatedAt,
	})
	if err != nil {
		if uc.logger != nil {
			uc.logger.Error("failed to encode message for broadcast",
				slog.String("message_id", message.ID.String()),
				slog.Any("error", err),
			)
		}
		return
	}

	uc.broadcaster.Broadcast(ctx, payload)
}
