package usecase

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/talkbase/talkbase/internal/chat/domain"
	"github.com/talkbase/talkbase/internal/metrics"
)

// mockBusinessMetrics is a mock implementation of metrics.BusinessMetrics for testing.
type mockBusinessMetrics struct {
	mock.Mock
}

func (m *mockBusinessMetrics) RecordOperation(ctx context.Context, domain, operation, status string) {
	m.Called(ctx, domain, operation, status)
}

func (m *mockBusinessMetrics) RecordDuration(
	ctx context.Context,
	domain, operation string,
	duration time.Duration,
	status string,
) {
	m.Called(ctx, domain, operation, duration, status)
}

var _ metrics.BusinessMetrics = (*mockBusinessMetrics)(nil)

// mockChatUseCase is a mock implementation of UseCase for decorator tests.
type mockChatUseCase struct {
	mock.Mock
}

func (m *mockChatUseCase) CreateChat(
	ctx context.Context,
	creatorID uuid.UUID,
	participants []uuid.UUID,
) (*domain.Chat, error) {
	args := m.Called(ctx, creatorID, participants)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Chat), args.Error(1)
}

func (m *mockChatUseCase) GetChat(ctx context.Context, subjectID, chatID uuid.UUID) (*domain.Chat, error) {
	args := m.Called(ctx, subjectID, chatID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Chat), args.Error(1)
}

func (m *mockChatUseCase) ListChats(ctx context.Context, subjectID uuid.UUID) ([]*domain.Chat, error) {
	args := m.Called(ctx, subjectID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Chat), args.Error(1)
}

func (m *mockChatUseCase) FindChatByParticipants(
	ctx context.Context,
	subjectID uuid.UUID,
	participants []uuid.UUID,
) (*domain.Chat, error) {
	args := m.Called(ctx, subjectID, participants)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Chat), args.Error(1)
}

func (m *mockChatUseCase) SendMessage(
	ctx context.Context,
	subjectID, chatID uuid.UUID,
	content string,
) (*domain.Message, error) {
	args := m.Called(ctx, subjectID, chatID, content)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Message), args.Error(1)
}

func (m *mockChatUseCase) ListMessages(
	ctx context.Context,
	subjectID, chatID uuid.UUID,
	limit, offset int,
) ([]*domain.Message, error) {
	args := m.Called(ctx, subjectID, chatID, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Message), args.Error(1)
}

func TestChatMetricsDecorator_SendMessage(t *testing.T) {
	ctx := context.Background()
	subjectID := uuid.Must(uuid.NewV7())
	chatID := uuid.Must(uuid.NewV7())

	t.Run("Success_RecordsSuccessMetrics", func(t *testing.T) {
		mockUseCase := &mockChatUseCase{}
		mockMetrics := &mockBusinessMetrics{}

		expected := &domain.Message{ID: uuid.Must(uuid.NewV7()), ChatID: chatID, SenderID: subjectID}
		mockUseCase.On("SendMessage", ctx, subjectID, chatID, "hello").Return(expected, nil).Once()
		mockMetrics.On("RecordOperation", ctx, "chat", "send_message", "success").Return().Once()
		mockMetrics.On("RecordDuration", ctx, "chat", "send_message", mock.AnythingOfType("time.Duration"), "success").
			Return().
			Once()

		decorator := NewChatUseCaseWithMetrics(mockUseCase, mockMetrics)
		message, err := decorator.SendMessage(ctx, subjectID, chatID, "hello")

		assert.NoError(t, err)
		assert.Equal(t, expected, message)
		mockMetrics.AssertExpectations(t)
	})

	t.Run("Error_RecordsErrorMetrics", func(t *testing.T) {
		mockUseCase := &mockChatUseCase{}
		mockMetrics := &mockBusinessMetrics{}

		mockUseCase.On("SendMessage", ctx, subjectID, chatID, "hello").
			Return(nil, domain.ErrNotParticipant).
			Once()
		mockMetrics.On("RecordOperation", ctx, "chat", "send_message", "error").Return().Once()
		mockMetrics.On("RecordDuration", ctx, "chat", "send_message", mock.AnythingOfType("time.Duration"), "error").
			Return().
			Once()

		decorator := NewChatUseCaseWithMetrics(mockUseCase, mockMetrics)
		message, err := decorator.SendMessage(ctx, subjectID, chatID, "hello")

		assert.Nil(t, message)
		assert.ErrorIs(t, err, domain.ErrNotParticipant)
		mockMetrics.AssertExpectations(t)
	})
}

func TestChatMetricsDecorator_CreateChat(t *testing.T) {
	ctx := context.Background()
	creator := uuid.Must(uuid.NewV7())
	other := uuid.Must(uuid.NewV7())

	mockUseCase := &mockChatUseCase{}
	mockMetrics := &mockBusinessMetrics{}

	expected := &domain.Chat{ID: uuid.Must(uuid.NewV7())}
	mockUseCase.On("CreateChat", ctx, creator, []uuid.UUID{other}).Return(expected, nil).Once()
	mockMetrics.On("RecordOperation", ctx, "chat", "chat_create", "success").Return().Once()
	mockMetrics.On("RecordDuration", ctx, "chat", "chat_create", mock.AnythingOfType("time.Duration"), "success").
		Return().
		Once()

	decorator := NewChatUseCaseWithMetrics(mockUseCase, mockMetrics)
	chat, err := decorator.CreateChat(ctx, creator, []uuid.UUID{other})

	assert.NoError(t, err)
	assert.Equal(t, expected, chat)
	mockMetrics.AssertExpectations(t)
}

func TestChatMetricsDecorator_Reads(t *testing.T) {
	ctx := context.Background()
	subjectID := uuid.Must(uuid.NewV7())
	chatID := uuid.Must(uuid.NewV7())

	mockUseCase := &mockChatUseCase{}
	mockMetrics := &mockBusinessMetrics{}

	chat := &domain.Chat{ID: chatID, Participants: []uuid.UUID{subjectID}}
	mockUseCase.On("GetChat", ctx, subjectID, chatID).Return(chat, nil).Once()
	mockUseCase.On("ListChats", ctx, subjectID).Return([]*domain.Chat{chat}, nil).Once()
	mockUseCase.On("FindChatByParticipants", ctx, subjectID, mock.Anything).Return(chat, nil).Once()
	mockUseCase.On("ListMessages", ctx, subjectID, chatID, 50, 0).
		Return([]*domain.Message{}, nil).
		Once()

	for _, operation := range []string{"chat_get", "chat_list", "chat_find", "message_list"} {
		mockMetrics.On("RecordOperation", ctx, "chat", operation, "success").Return().Once()
		mockMetrics.On("RecordDuration", ctx, "chat", operation, mock.AnythingOfType("time.Duration"), "success").
			Return().
			Once()
	}

	decorator := NewChatUseCaseWithMetrics(mockUseCase, mockMetrics)

	_, err := decorator.GetChat(ctx, subjectID, chatID)
	assert.NoError(t, err)

	_, err = decorator.ListChats(ctx, subjectID)
	assert.NoError(t, err)

	_, err = decorator.FindChatByParticipants(ctx, subjectID, []uuid.UUID{subjectID})
	assert.NoError(t, err)

	_, err = decorator.ListMessages(ctx, subjectID, chatID, 50, 0)
	assert.NoError(t, err)

	mockMetrics.AssertExpectations(t)
}
