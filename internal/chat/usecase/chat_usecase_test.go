package usecase

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/talkbase/talkbase/internal/chat/domain"

	apperrors "github.com/talkbase/talkbase/internal/errors"
)

type MockChatRepository struct {
	mock.Mock
}

func (m *MockChatRepository) Create(ctx context.Context, chat *domain.Chat) error {
	args := m.Called(ctx, chat)
	return args.Error(0)
}

func (m *MockChatRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Chat, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Chat), args.Error(1)
}

func (m *MockChatRepository) GetByParticipants(ctx context.Context, participants []uuid.UUID) (*domain.Chat, error) {
	args := m.Called(ctx, participants)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Chat), args.Error(1)
}

func (m *MockChatRepository) ListByParticipant(ctx context.Context, userID uuid.UUID) ([]*domain.Chat, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Chat), args.Error(1)
}

type MockMessageRepository struct {
	mock.Mock
}

func (m *MockMessageRepository) Create(ctx context.Context, message *domain.Message) error {
	args := m.Called(ctx, message)
	return args.Error(0)
}

func (m *MockMessageRepository) ListByChatID(
	ctx context.Context,
	chatID uuid.UUID,
	limit, offset int,
) ([]*domain.Message, error) {
	args := m.Called(ctx, chatID, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Message), args.Error(1)
}

type MockBroadcaster struct {
	mock.Mock
}

func (m *MockBroadcaster) Broadcast(ctx context.Context, payload []byte) {
	m.Called(ctx, payload)
}

func newTestUseCase() (*ChatUseCase, *MockChatRepository, *MockMessageRepository, *MockBroadcaster) {
	chatRepo := new(MockChatRepository)
	messageRepo := new(MockMessageRepository)
	broadcaster := new(MockBroadcaster)
	uc := NewChatUseCase(chatRepo, messageRepo, broadcaster, nil)
	return uc, chatRepo, messageRepo, broadcaster
}

func TestChatUseCaseCreateChat(t *testing.T) {
	ctx := context.Background()
	creator := uuid.Must(uuid.NewV7())
	other := uuid.Must(uuid.NewV7())

	t.Run("creates a new chat", func(t *testing.T) {
		uc, chatRepo, _, _ := newTestUseCase()
		chatRepo.On("GetByParticipants", ctx, mock.Anything).Return(nil, domain.ErrChatNotFound)
		chatRepo.On("Create", ctx, mock.AnythingOfType("*domain.Chat")).Return(nil)

		chat, err := uc.CreateChat(ctx, creator, []uuid.UUID{other})

		require.NoError(t, err)
		assert.Len(t, chat.Participants, 2)
		assert.True(t, chat.HasParticipant(creator))
		assert.True(t, chat.HasParticipant(other))
		chatRepo.AssertExpectations(t)
	})

	t.Run("returns existing chat for same participant set", func(t *testing.T) {
		uc, chatRepo, _, _ := newTestUseCase()
		existing := &domain.Chat{
			ID:           uuid.Must(uuid.NewV7()),
			Participants: domain.NormalizeParticipants(creator, []uuid.UUID{other}),
		}
		chatRepo.On("GetByParticipants", ctx, existing.Participants).Return(existing, nil)

		chat, err := uc.CreateChat(ctx, creator, []uuid.UUID{other})

		require.NoError(t, err)
		assert.Equal(t, existing.ID, chat.ID)
		chatRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("duplicate participants collapse to one entry", func(t *testing.T) {
		uc, chatRepo, _, _ := newTestUseCase()
		chatRepo.On("GetByParticipants", ctx, mock.Anything).Return(nil, domain.ErrChatNotFound)
		chatRepo.On("Create", ctx, mock.AnythingOfType("*domain.Chat")).Return(nil)

		chat, err := uc.CreateChat(ctx, creator, []uuid.UUID{other, other, creator})

		require.NoError(t, err)
		assert.Len(t, chat.Participants, 2)
	})

	t.Run("rejects chat with creator only", func(t *testing.T) {
		uc, chatRepo, _, _ := newTestUseCase()

		chat, err := uc.CreateChat(ctx, creator, []uuid.UUID{creator})

		assert.Nil(t, chat)
		assert.ErrorIs(t, err, domain.ErrNoParticipants)
		assert.True(t, apperrors.Is(err, apperrors.ErrInvalidInput))
		chatRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})
}

func TestChatUseCaseSendMessage(t *testing.T) {
	ctx := context.Background()
	sender := uuid.Must(uuid.NewV7())
	other := uuid.Must(uuid.NewV7())
	chat := &domain.Chat{
		ID:           uuid.Must(uuid.NewV7()),
		Participants: domain.NormalizeParticipants(sender, []uuid.UUID{other}),
	}

	t.Run("persists then broadcasts", func(t *testing.T) {
		uc, chatRepo, messageRepo, broadcaster := newTestUseCase()
		chatRepo.On("GetByID", ctx, chat.ID).Return(chat, nil)
		messageRepo.On("Create", ctx, mock.AnythingOfType("*domain.Message")).Return(nil)

		var payload []byte
		broadcaster.On("Broadcast", ctx, mock.AnythingOfType("[]uint8")).
			Run(func(args mock.Arguments) { payload = args.Get(1).([]byte) }).
			Return()

		message, err := uc.SendMessage(ctx, sender, chat.ID, "hello there")

		require.NoError(t, err)
		assert.Equal(t, sender, message.SenderID)
		assert.Equal(t, chat.ID, message.ChatID)

		var decoded broadcastMessage
		require.NoError(t, json.Unmarshal(payload, &decoded))
		assert.Equal(t, message.ID, decoded.ID)
		assert.Equal(t, sender, decoded.SenderID)
		assert.Equal(t, "hello there", decoded.Content)

		messageRepo.AssertExpectations(t)
		broadcaster.AssertExpectations(t)
	})

	t.Run("sender is stamped from the subject", func(t *testing.T) {
		// The subject sending the message is always the persisted sender,
		// whatever the inbound payload claimed.
		uc, chatRepo, messageRepo, broadcaster := newTestUseCase()
		chatRepo.On("GetByID", ctx, chat.ID).Return(chat, nil)
		broadcaster.On("Broadcast", ctx, mock.Anything).Return()

		var persisted *domain.Message
		messageRepo.On("Create", ctx, mock.AnythingOfType("*domain.Message")).
			Run(func(args mock.Arguments) { persisted = args.Get(1).(*domain.Message) }).
			Return(nil)

		_, err := uc.SendMessage(ctx, sender, chat.ID, "forged sender attempt")

		require.NoError(t, err)
		require.NotNil(t, persisted)
		assert.Equal(t, sender, persisted.SenderID)
		assert.NotEqual(t, other, persisted.SenderID)
	})

	t.Run("rejects empty content", func(t *testing.T) {
		uc, _, messageRepo, _ := newTestUseCase()

		message, err := uc.SendMessage(ctx, sender, chat.ID, "   ")

		assert.Nil(t, message)
		assert.ErrorIs(t, err, domain.ErrEmptyMessage)
		messageRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("rejects non-participant", func(t *testing.T) {
		uc, chatRepo, messageRepo, _ := newTestUseCase()
		outsider := uuid.Must(uuid.NewV7())
		chatRepo.On("GetByID", ctx, chat.ID).Return(chat, nil)

		message, err := uc.SendMessage(ctx, outsider, chat.ID, "let me in")

		assert.Nil(t, message)
		assert.ErrorIs(t, err, domain.ErrNotParticipant)
		assert.True(t, apperrors.Is(err, apperrors.ErrForbidden))
		messageRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("persist failure skips broadcast", func(t *testing.T) {
		uc, chatRepo, messageRepo, broadcaster := newTestUseCase()
		chatRepo.On("GetByID", ctx, chat.ID).Return(chat, nil)
		messageRepo.On("Create", ctx, mock.Anything).Return(apperrors.ErrTransient)

		message, err := uc.SendMessage(ctx, sender, chat.ID, "hello")

		assert.Nil(t, message)
		assert.ErrorIs(t, err, apperrors.ErrTransient)
		broadcaster.AssertNotCalled(t, "Broadcast", mock.Anything, mock.Anything)
	})

	t.Run("unknown chat", func(t *testing.T) {
		uc, chatRepo, _, _ := newTestUseCase()
		missing := uuid.Must(uuid.NewV7())
		chatRepo.On("GetByID", ctx, missing).Return(nil, domain.ErrChatNotFound)

		message, err := uc.SendMessage(ctx, sender, missing, "hello")

		assert.Nil(t, message)
		assert.ErrorIs(t, err, domain.ErrChatNotFound)
	})
}

func TestChatUseCaseGetChat(t *testing.T) {
	ctx := context.Background()
	member := uuid.Must(uuid.NewV7())
	chat := &domain.Chat{
		ID:           uuid.Must(uuid.NewV7()),
		Participants: []uuid.UUID{member},
	}

	t.Run("participant can read the chat", func(t *testing.T) {
		uc, chatRepo, _, _ := newTestUseCase()
		chatRepo.On("GetByID", ctx, chat.ID).Return(chat, nil)

		got, err := uc.GetChat(ctx, member, chat.ID)

		require.NoError(t, err)
		assert.Equal(t, chat.ID, got.ID)
	})

	t.Run("outsider is rejected", func(t *testing.T) {
		uc, chatRepo, _, _ := newTestUseCase()
		chatRepo.On("GetByID", ctx, chat.ID).Return(chat, nil)

		got, err := uc.GetChat(ctx, uuid.Must(uuid.NewV7()), chat.ID)

		assert.Nil(t, got)
		assert.ErrorIs(t, err, domain.ErrNotParticipant)
	})
}

func TestChatUseCaseFindChatByParticipants(t *testing.T) {
	ctx := context.Background()
	subject := uuid.Must(uuid.NewV7())
	other := uuid.Must(uuid.NewV7())

	t.Run("resolves the chat with the exact participant set", func(t *testing.T) {
		uc, chatRepo, _, _ := newTestUseCase()
		normalized := domain.NormalizeParticipants(subject, []uuid.UUID{other})
		existing := &domain.Chat{
			ID:           uuid.Must(uuid.NewV7()),
			Participants: normalized,
		}
		chatRepo.On("GetByParticipants", ctx, normalized).Return(existing, nil)

		chat, err := uc.FindChatByParticipants(ctx, subject, []uuid.UUID{other})

		require.NoError(t, err)
		assert.Equal(t, existing.ID, chat.ID)
		chatRepo.AssertExpectations(t)
	})

	t.Run("normalizes the same way as create", func(t *testing.T) {
		uc, chatRepo, _, _ := newTestUseCase()
		normalized := domain.NormalizeParticipants(subject, []uuid.UUID{other})
		existing := &domain.Chat{
			ID:           uuid.Must(uuid.NewV7()),
			Participants: normalized,
		}
		chatRepo.On("GetByParticipants", ctx, normalized).Return(existing, nil)

		chat, err := uc.FindChatByParticipants(ctx, subject, []uuid.UUID{other, other, subject})

		require.NoError(t, err)
		assert.Equal(t, existing.ID, chat.ID)
	})

	t.Run("missing chat surfaces not found", func(t *testing.T) {
		uc, chatRepo, _, _ := newTestUseCase()
		chatRepo.On("GetByParticipants", ctx, mock.Anything).Return(nil, domain.ErrChatNotFound)

		chat, err := uc.FindChatByParticipants(ctx, subject, []uuid.UUID{other})

		assert.Nil(t, chat)
		assert.ErrorIs(t, err, domain.ErrChatNotFound)
	})

	t.Run("rejects a subject-only set", func(t *testing.T) {
		uc, chatRepo, _, _ := newTestUseCase()

		chat, err := uc.FindChatByParticipants(ctx, subject, []uuid.UUID{subject})

		assert.Nil(t, chat)
		assert.ErrorIs(t, err, domain.ErrNoParticipants)
		chatRepo.AssertNotCalled(t, "GetByParticipants", mock.Anything, mock.Anything)
	})
}

func TestChatUseCaseListMessages(t *testing.T) {
	ctx := context.Background()
	member := uuid.Must(uuid.NewV7())
	chat := &domain.Chat{
		ID:           uuid.Must(uuid.NewV7()),
		Participants: []uuid.UUID{member},
	}
	messages := []*domain.Message{
		{ID: uuid.Must(uuid.NewV7()), ChatID: chat.ID, SenderID: member, Content: "first", CreatedAt: time.Now().UTC()},
		{ID: uuid.Must(uuid.NewV7()), ChatID: chat.ID, SenderID: member, Content: "second", CreatedAt: time.Now().UTC()},
	}

	t.Run("returns chat history", func(t *testing.T) {
		uc, chatRepo, messageRepo, _ := newTestUseCase()
		chatRepo.On("GetByID", ctx, chat.ID).Return(chat, nil)
		messageRepo.On("ListByChatID", ctx, chat.ID, 50, 0).Return(messages, nil)

		got, err := uc.ListMessages(ctx, member, chat.ID, 0, 0)

		require.NoError(t, err)
		assert.Len(t, got, 2)
		assert.Equal(t, "first", got[0].Content)
	})

	t.Run("limit is capped", func(t *testing.T) {
		uc, chatRepo, messageRepo, _ := newTestUseCase()
		chatRepo.On("GetByID", ctx, chat.ID).Return(chat, nil)
		messageRepo.On("ListByChatID", ctx, chat.ID, 50, 0).Return([]*domain.Message{}, nil)

		_, err := uc.ListMessages(ctx, member, chat.ID, 500, -3)

		require.NoError(t, err)
		messageRepo.AssertExpectations(t)
	})

	t.Run("outsider cannot read history", func(t *testing.T) {
		uc, chatRepo, messageRepo, _ := newTestUseCase()
		chatRepo.On("GetByID", ctx, chat.ID).Return(chat, nil)

		got, err := uc.ListMessages(ctx, uuid.Must(uuid.NewV7()), chat.ID, 10, 0)

		assert.Nil(t, got)
		assert.ErrorIs(t, err, domain.ErrNotParticipant)
		messageRepo.AssertNotCalled(t, "ListByChatID", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})
}
