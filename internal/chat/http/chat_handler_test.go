package http

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/talkbase/talkbase/internal/chat/domain"
	"github.com/talkbase/talkbase/internal/chat/http/dto"
	"github.com/talkbase/talkbase/internal/token"

	apperrors "github.com/talkbase/talkbase/internal/errors"
)

// MockChatUseCase is a mock implementation of usecase.UseCase
type MockChatUseCase struct {
	mock.Mock
}

func (m *MockChatUseCase) CreateChat(
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

func (m *MockChatUseCase) GetChat(ctx context.Context, subjectID, chatID uuid.UUID) (*domain.Chat, error) {
	args := m.Called(ctx, subjectID, chatID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Chat), args.Error(1)
}

func (m *MockChatUseCase) ListChats(ctx context.Context, subjectID uuid.UUID) ([]*domain.Chat, error) {
	args := m.Called(ctx, subjectID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Chat), args.Error(1)
}

func (m *MockChatUseCase) FindChatByParticipants(
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

func (m *MockChatUseCase) SendMessage(
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

func (m *MockChatUseCase) ListMessages(
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

// setupTestChatHandler creates a test chat handler with mocked dependencies.
func setupTestChatHandler(t *testing.T) (*ChatHandler, *MockChatUseCase) {
	t.Helper()

	gin.SetMode(gin.TestMode)

	mockUseCase := &MockChatUseCase{}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	return NewChatHandler(mockUseCase, logger), mockUseCase
}

// createTestContext creates a test Gin context with the given request. When
// subjectID is non-nil the request context carries it as the authenticated
// subject, as the authentication middleware would.
func createTestContext(
	method, path string,
	body interface{},
	subjectID *uuid.UUID,
) (*gin.Context, *httptest.ResponseRecorder) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	var bodyReader io.Reader
	if body != nil {
		bodyBytes, _ := json.Marshal(body)
		bodyReader = bytes.NewReader(bodyBytes)
	}

	req := httptest.NewRequest(method, path, bodyReader)
	req.Header.Set("Content-Type", "application/json")
	if subjectID != nil {
		req = req.WithContext(token.WithSubject(req.Context(), subjectID.String()))
	}
	c.Request = req

	return c, w
}

func TestChatHandler_CreateHandler(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		handler, mockUseCase := setupTestChatHandler(t)

		subjectID := uuid.Must(uuid.NewV7())
		other := uuid.Must(uuid.NewV7())
		chat := &domain.Chat{
			ID:           uuid.Must(uuid.NewV7()),
			Participants: domain.NormalizeParticipants(subjectID, []uuid.UUID{other}),
		}
		mockUseCase.On("CreateChat", mock.Anything, subjectID, []uuid.UUID{other}).Return(chat, nil)

		body := dto.CreateChatRequest{Participants: []string{other.String()}}
		c, w := createTestContext(http.MethodPost, "/v1/chats", body, &subjectID)

		handler.CreateHandler(c)

		assert.Equal(t, http.StatusCreated, w.Code)

		var response dto.ChatResponse
		assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
		assert.Equal(t, chat.ID, response.ID)
		assert.Len(t, response.Participants, 2)
	})

	t.Run("Error_NoSubject", func(t *testing.T) {
		handler, mockUseCase := setupTestChatHandler(t)

		body := dto.CreateChatRequest{Participants: []string{uuid.Must(uuid.NewV7()).String()}}
		c, w := createTestContext(http.MethodPost, "/v1/chats", body, nil)

		handler.CreateHandler(c)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
		mockUseCase.AssertNotCalled(t, "CreateChat", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("Error_EmptyParticipants", func(t *testing.T) {
		handler, mockUseCase := setupTestChatHandler(t)

		subjectID := uuid.Must(uuid.NewV7())
		body := dto.CreateChatRequest{Participants: []string{}}
		c, w := createTestContext(http.MethodPost, "/v1/chats", body, &subjectID)

		handler.CreateHandler(c)

		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
		mockUseCase.AssertNotCalled(t, "CreateChat", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("Error_MalformedParticipant", func(t *testing.T) {
		handler, mockUseCase := setupTestChatHandler(t)

		subjectID := uuid.Must(uuid.NewV7())
		body := dto.CreateChatRequest{Participants: []string{"not-a-uuid"}}
		c, w := createTestContext(http.MethodPost, "/v1/chats", body, &subjectID)

		handler.CreateHandler(c)

		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
		mockUseCase.AssertNotCalled(t, "CreateChat", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("Error_InvalidJSON", func(t *testing.T) {
		handler, _ := setupTestChatHandler(t)

		subjectID := uuid.Must(uuid.NewV7())
		c, w := createTestContext(http.MethodPost, "/v1/chats", nil, &subjectID)
		c.Request.Body = io.NopCloser(bytes.NewReader([]byte("invalid json")))

		handler.CreateHandler(c)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestChatHandler_ListHandler(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		handler, mockUseCase := setupTestChatHandler(t)

		subjectID := uuid.Must(uuid.NewV7())
		chats := []*domain.Chat{
			{ID: uuid.Must(uuid.NewV7()), Participants: []uuid.UUID{subjectID}},
			{ID: uuid.Must(uuid.NewV7()), Participants: []uuid.UUID{subjectID}},
		}
		mockUseCase.On("ListChats", mock.Anything, subjectID).Return(chats, nil)

		c, w := createTestContext(http.MethodGet, "/v1/chats", nil, &subjectID)

		handler.ListHandler(c)

		assert.Equal(t, http.StatusOK, w.Code)

		var response dto.ChatListResponse
		assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
		assert.Len(t, response.Chats, 2)
	})

	t.Run("Success_FindByParticipants", func(t *testing.T) {
		handler, mockUseCase := setupTestChatHandler(t)

		subjectID := uuid.Must(uuid.NewV7())
		otherID := uuid.Must(uuid.NewV7())
		chat := &domain.Chat{
			ID:           uuid.Must(uuid.NewV7()),
			Participants: []uuid.UUID{subjectID, otherID},
		}
		mockUseCase.On("FindChatByParticipants", mock.Anything, subjectID, []uuid.UUID{otherID}).
			Return(chat, nil)

		c, w := createTestContext(
			http.MethodGet, "/v1/chats?participants="+otherID.String(), nil, &subjectID)

		handler.ListHandler(c)

		assert.Equal(t, http.StatusOK, w.Code)

		var response dto.ChatResponse
		assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
		assert.Equal(t, chat.ID, response.ID)
		mockUseCase.AssertNotCalled(t, "ListChats", mock.Anything, mock.Anything)
	})

	t.Run("Error_FindByParticipantsNotFound", func(t *testing.T) {
		handler, mockUseCase := setupTestChatHandler(t)

		subjectID := uuid.Must(uuid.NewV7())
		otherID := uuid.Must(uuid.NewV7())
		mockUseCase.On("FindChatByParticipants", mock.Anything, subjectID, []uuid.UUID{otherID}).
			Return(nil, domain.ErrChatNotFound)

		c, w := createTestContext(
			http.MethodGet, "/v1/chats?participants="+otherID.String(), nil, &subjectID)

		handler.ListHandler(c)

		assert.Equal(t, http.StatusNotFound, w.Code)
		mockUseCase.AssertNotCalled(t, "ListChats", mock.Anything, mock.Anything)
	})

	t.Run("Error_InvalidParticipants", func(t *testing.T) {
		handler, mockUseCase := setupTestChatHandler(t)

		subjectID := uuid.Must(uuid.NewV7())

		c, w := createTestContext(
			http.MethodGet, "/v1/chats?participants=not-a-uuid", nil, &subjectID)

		handler.ListHandler(c)

		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
		mockUseCase.AssertNotCalled(t, "FindChatByParticipants", mock.Anything, mock.Anything, mock.Anything)
		mockUseCase.AssertNotCalled(t, "ListChats", mock.Anything, mock.Anything)
	})

	t.Run("Error_NoSubject", func(t *testing.T) {
		handler, _ := setupTestChatHandler(t)

		c, w := createTestContext(http.MethodGet, "/v1/chats", nil, nil)

		handler.ListHandler(c)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})
}

func TestChatHandler_GetHandler(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		handler, mockUseCase := setupTestChatHandler(t)

		subjectID := uuid.Must(uuid.NewV7())
		chat := &domain.Chat{ID: uuid.Must(uuid.NewV7()), Participants: []uuid.UUID{subjectID}}
		mockUseCase.On("GetChat", mock.Anything, subjectID, chat.ID).Return(chat, nil)

		c, w := createTestContext(http.MethodGet, "/v1/chats/"+chat.ID.String(), nil, &subjectID)
		c.Params = gin.Params{gin.Param{Key: "chat_id", Value: chat.ID.String()}}

		handler.GetHandler(c)

		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("Error_NotParticipant", func(t *testing.T) {
		handler, mockUseCase := setupTestChatHandler(t)

		subjectID := uuid.Must(uuid.NewV7())
		chatID := uuid.Must(uuid.NewV7())
		mockUseCase.On("GetChat", mock.Anything, subjectID, chatID).Return(nil, domain.ErrNotParticipant)

		c, w := createTestContext(http.MethodGet, "/v1/chats/"+chatID.String(), nil, &subjectID)
		c.Params = gin.Params{gin.Param{Key: "chat_id", Value: chatID.String()}}

		handler.GetHandler(c)

		assert.Equal(t, http.StatusForbidden, w.Code)
	})

	t.Run("Error_InvalidChatID", func(t *testing.T) {
		handler, _ := setupTestChatHandler(t)

		subjectID := uuid.Must(uuid.NewV7())
		c, w := createTestContext(http.MethodGet, "/v1/chats/not-a-uuid", nil, &subjectID)
		c.Params = gin.Params{gin.Param{Key: "chat_id", Value: "not-a-uuid"}}

		handler.GetHandler(c)

		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	})
}

func TestChatHandler_SendMessageHandler(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		handler, mockUseCase := setupTestChatHandler(t)

		subjectID := uuid.Must(uuid.NewV7())
		chatID := uuid.Must(uuid.NewV7())
		message := &domain.Message{
			ID:       uuid.Must(uuid.NewV7()),
			ChatID:   chatID,
			SenderID: subjectID,
			Content:  "hello",
		}
		mockUseCase.On("SendMessage", mock.Anything, subjectID, chatID, "hello").Return(message, nil)

		body := dto.SendMessageRequest{Content: "hello"}
		c, w := createTestContext(http.MethodPost, "/v1/chats/"+chatID.String()+"/messages", body, &subjectID)
		c.Params = gin.Params{gin.Param{Key: "chat_id", Value: chatID.String()}}

		handler.SendMessageHandler(c)

		assert.Equal(t, http.StatusCreated, w.Code)

		var response dto.MessageResponse
		assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
		assert.Equal(t, subjectID, response.SenderID)
	})

	t.Run("Error_BlankContent", func(t *testing.T) {
		handler, mockUseCase := setupTestChatHandler(t)

		subjectID := uuid.Must(uuid.NewV7())
		chatID := uuid.Must(uuid.NewV7())
		body := dto.SendMessageRequest{Content: "   "}
		c, w := createTestContext(http.MethodPost, "/v1/chats/"+chatID.String()+"/messages", body, &subjectID)
		c.Params = gin.Params{gin.Param{Key: "chat_id", Value: chatID.String()}}

		handler.SendMessageHandler(c)

		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
		mockUseCase.AssertNotCalled(t, "SendMessage", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("Error_ChatNotFound", func(t *testing.T) {
		handler, mockUseCase := setupTestChatHandler(t)

		subjectID := uuid.Must(uuid.NewV7())
		chatID := uuid.Must(uuid.NewV7())
		mockUseCase.On("SendMessage", mock.Anything, subjectID, chatID, "hello").
			Return(nil, domain.ErrChatNotFound)

		body := dto.SendMessageRequest{Content: "hello"}
		c, w := createTestContext(http.MethodPost, "/v1/chats/"+chatID.String()+"/messages", body, &subjectID)
		c.Params = gin.Params{gin.Param{Key: "chat_id", Value: chatID.String()}}

		handler.SendMessageHandler(c)

		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("Error_TransientFailure", func(t *testing.T) {
		handler, mockUseCase := setupTestChatHandler(t)

		subjectID := uuid.Must(uuid.NewV7())
		chatID := uuid.Must(uuid.NewV7())
		mockUseCase.On("SendMessage", mock.Anything, subjectID, chatID, "hello").
			Return(nil, apperrors.ErrTransient)

		body := dto.SendMessageRequest{Content: "hello"}
		c, w := createTestContext(http.MethodPost, "/v1/chats/"+chatID.String()+"/messages", body, &subjectID)
		c.Params = gin.Params{gin.Param{Key: "chat_id", Value: chatID.String()}}

		handler.SendMessageHandler(c)

		assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	})
}

func TestChatHandler_ListMessagesHandler(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		handler, mockUseCase := setupTestChatHandler(t)

		subjectID := uuid.Must(uuid.NewV7())
		chatID := uuid.Must(uuid.NewV7())
		messages := []*domain.Message{
			{ID: uuid.Must(uuid.NewV7()), ChatID: chatID, SenderID: subjectID, Content: "first"},
		}
		mockUseCase.On("ListMessages", mock.Anything, subjectID, chatID, 50, 0).Return(messages, nil)

		c, w := createTestContext(http.MethodGet, "/v1/chats/"+chatID.String()+"/messages", nil, &subjectID)
		c.Params = gin.Params{gin.Param{Key: "chat_id", Value: chatID.String()}}

		handler.ListMessagesHandler(c)

		assert.Equal(t, http.StatusOK, w.Code)

		var response dto.MessageListResponse
		assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
		assert.Len(t, response.Messages, 1)
		assert.Equal(t, "first", response.Messages[0].Content)
	})

	t.Run("Success_CustomPagination", func(t *testing.T) {
		handler, mockUseCase := setupTestChatHandler(t)

		subjectID := uuid.Must(uuid.NewV7())
		chatID := uuid.Must(uuid.NewV7())
		mockUseCase.On("ListMessages", mock.Anything, subjectID, chatID, 10, 20).
			Return([]*domain.Message{}, nil)

		c, w := createTestContext(
			http.MethodGet,
			"/v1/chats/"+chatID.String()+"/messages?limit=10&offset=20",
			nil,
			&subjectID,
		)
		c.Params = gin.Params{gin.Param{Key: "chat_id", Value: chatID.String()}}

		handler.ListMessagesHandler(c)

		assert.Equal(t, http.StatusOK, w.Code)
		mockUseCase.AssertExpectations(t)
	})

	t.Run("Error_Forbidden", func(t *testing.T) {
		handler, mockUseCase := setupTestChatHandler(t)

		subjectID := uuid.Must(uuid.NewV7())
		chatID := uuid.Must(uuid.NewV7())
		mockUseCase.On("ListMessages", mock.Anything, subjectID, chatID, 50, 0).
			Return(nil, domain.ErrNotParticipant)

		c, w := createTestContext(http.MethodGet, "/v1/chats/"+chatID.String()+"/messages", nil, &subjectID)
		c.Params = gin.Params{gin.Param{Key: "chat_id", Value: chatID.String()}}

		handler.ListMessagesHandler(c)

		assert.Equal(t, http.StatusForbidden, w.Code)
	})
}
