package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/talkbase/talkbase/internal/chat/domain"

	apperrors "github.com/talkbase/talkbase/internal/errors"
)

const messagesCollection = "messages"

type messageDocument struct {
	ID        string    `bson:"_id"`
	ChatID    string    `bson:"chat_id"`
	SenderID  string    `bson:"sender_id"`
	Content   string    `bson:"content"`
	CreatedAt time.Time `bson:"created_at"`
}

// MongoMessageRepository handles message persistence for MongoDB
type MongoMessageRepository struct {
	collection *mongo.Collection
}

// NewMongoMessageRepository creates a new MongoMessageRepository
func NewMongoMessageRepository(db *mongo.Database) *MongoMessageRepository {
	return &MongoMessageRepository{
		collection: db.Collection(messagesCollection),
	}
}

// Create inserts a new message
func (r *MongoMessageRepository) Create(ctx context.Context, message *domain.Message) error {
	document := messageDocument{
		ID:        message.ID.String(),
		ChatID:    message.ChatID.String(),
		SenderID:  message.SenderID.String(),
		Content:   message.Content,
		CreatedAt: message.CreatedAt,
	}

	if _, err := r.collection.InsertOne(ctx, document); err != nil {
		return apperrors.Wrap(err, "failed to create message")
	}
	return nil
}

// ListByChatID retrieves the messages of a chat in chronological order.
func (r *MongoMessageRepository) ListByChatID(
	ctx context.Context,
	chatID uuid.UUID,
	limit int,
	offset int,
) ([]*domain.Message, error) {
	findOptions := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: 1}}).
		SetLimit(int64(limit)).
		SetSkip(int64(offset))

	cursor, err := r.collection.Find(ctx, bson.M{"chat_id": chatID.String()}, findOptions)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to list messages")
	}
	defer func() { _ = cursor.Close(ctx) }()

	var documents []messageDocument
	if err := cursor.All(ctx, &documents); err != nil {
		return nil, apperrors.Wrap(err, "failed to decode messages")
	}

	messages := make([]*domain.Message, 0, len(documents))
	for _, document := range documents {
		message, err := fromMessageDocument(document)
		if err != nil {
			return nil, err
		}
		messages = append(messages, message)
	}
	return messages, nil
}

func fromMessageDocument(document messageDocument) (*domain.Message, error) {
	id, err := uuid.Parse(document.ID)
	if err != nil {
		return nil, apperrors.Wrap(err, "corrupt message id")
	}
	chatID, err := uuid.Parse(document.ChatID)
	if err != nil {
		return nil, apperrors.Wrap(err, "corrupt message chat id")
	}
	senderID, err := uuid.Parse(document.SenderID)
	if err != nil {
		return nil, apperrors.Wrap(err, "corrupt message sender id")
	}

	return &domain.Message{
		ID:        id,
		ChatID:    chatID,
		SenderID:  senderID,
		Content:   document.Content,
		CreatedAt: document.CreatedAt,
	}, nil
}
