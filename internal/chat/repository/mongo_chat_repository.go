// Package repository provides MongoDB persistence for chats and messages.
package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/talkbase/talkbase/internal/chat/domain"

	apperrors "github.com/talkbase/talkbase/internal/errors"
)

const chatsCollection = "chats"

// chatDocument is the BSON shape of a chat. UUIDs are stored as their
// canonical string form.
type chatDocument struct {
	ID           string    `bson:"_id"`
	Participants []string  `bson:"participants"`
	CreatedAt    time.Time `bson:"created_at"`
	UpdatedAt    time.Time `bson:"updated_at"`
}

// MongoChatRepository handles chat persistence for MongoDB
type MongoChatRepository struct {
	collection *mongo.Collection
}

// NewMongoChatRepository creates a new MongoChatRepository
func NewMongoChatRepository(db *mongo.Database) *MongoChatRepository {
	return &MongoChatRepository{
		collection: db.Collection(chatsCollection),
	}
}

// Create inserts a new chat
func (r *MongoChatRepository) Create(ctx context.Context, chat *domain.Chat) error {
	document := toChatDocument(chat)

	if _, err := r.collection.InsertOne(ctx, document); err != nil {
		return apperrors.Wrap(err, "failed to create chat")
	}
	return nil
}

// GetByID retrieves a chat by ID
func (r *MongoChatRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Chat, error) {
	var document chatDocument

	err := r.collection.FindOne(ctx, bson.M{"_id": id.String()}).Decode(&document)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrChatNotFound
		}
		return nil, apperrors.Wrap(err, "failed to get chat by id")
	}

	return fromChatDocument(document)
}

// GetByParticipants retrieves the chat whose participant set matches exactly.
// The input must already be normalized (deduplicated and sorted).
func (r *MongoChatRepository) GetByParticipants(
	ctx context.Context,
	participants []uuid.UUID,
) (*domain.Chat, error) {
	var document chatDocument

	err := r.collection.FindOne(ctx, bson.M{"participants": participantStrings(participants)}).
		Decode(&document)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrChatNotFound
		}
		return nil, apperrors.Wrap(err, "failed to get chat by participants")
	}

	return fromChatDocument(document)
}

// ListByParticipant retrieves all chats that include the given user, newest
// first.
func (r *MongoChatRepository) ListByParticipant(
	ctx context.Context,
	userID uuid.UUID,
) ([]*domain.Chat, error) {
	findOptions := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})

	cursor, err := r.collection.Find(ctx, bson.M{"participants": userID.String()}, findOptions)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to list chats")
	}
	defer func() { _ = cursor.Close(ctx) }()

	var documents []chatDocument
	if err := cursor.All(ctx, &documents); err != nil {
		return nil, apperrors.Wrap(err, "failed to decode chats")
	}

	chats := make([]*domain.Chat, 0, len(documents))
	for _, document := range documents {
		chat, err := fromChatDocument(document)
		if err != nil {
			return nil, err
		}
		chats = append(chats, chat)
	}
	return chats, nil
}

func toChatDocument(chat *domain.Chat) chatDocument {
	return chatDocument{
		ID:           chat.ID.String(),
		Participants: participantStrings(chat.Participants),
		CreatedAt:    chat.CreatedAt,
		UpdatedAt:    chat.UpdatedAt,
	}
}

func fromChatDocument(document chatDocument) (*domain.Chat, error) {
	id, err := uuid.Parse(document.ID)
	if err != nil {
		return nil, apperrors.Wrap(err, "corrupt chat id")
	}

	participants := make([]uuid.UUID, 0, len(document.Participants))
	for _, raw := range document.Participants {
		participant, err := uuid.Parse(raw)
		if err != nil {
			return nil, apperrors.Wrap(err, "corrupt chat participant id")
		}
		participants = append(participants, participant)
	}

	return &domain.Chat{
		ID:           id,
		Participants: participants,
		CreatedAt:    document.CreatedAt,
		UpdatedAt:    document.UpdatedAt,
	}, nil
}

func participantStrings(participants []uuid.UUID) []string {
	strs := make([]string, 0, len(participants))
	for _, participant := range participants {
		strs = append(strs, participant.String())
	}
	return strs
}
