// Package http provides HTTP and websocket handlers for chat operations.
package http

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/talkbase/talkbase/internal/chat/domain"
	"github.com/talkbase/talkbase/internal/chat/http/dto"
	"github.com/talkbase/talkbase/internal/chat/usecase"
	"github.com/talkbase/talkbase/internal/httputil"
	"github.com/talkbase/talkbase/internal/token"

	apperrors "github.com/talkbase/talkbase/internal/errors"
)

// ChatHandler handles chat-related HTTP requests
type ChatHandler struct {
	chatUseCase usecase.UseCase
	logger      *slog.Logger
}

// NewChatHandler creates a new ChatHandler
func NewChatHandler(chatUseCase usecase.UseCase, logger *slog.Logger) *ChatHandler {
	return &ChatHandler{
		chatUseCase: chatUseCase,
		logger:      logger,
	}
}

// CreateHandler creates a chat between the subject and the given
// participants.
// POST /v1/chats - Requires a valid session token.
func (h *ChatHandler) CreateHandler(c *gin.Context) {
	subjectID, ok := h.subject(c)
	if !ok {
		return
	}

	var req dto.CreateChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.HandleBadRequestGin(c, err, h.logger)
		return
	}
	if err := req.Validate(); err != nil {
		httputil.HandleValidationErrorGin(c, err, h.logger)
		return
	}

	participants, err := req.ParticipantIDs()
	if err != nil {
		httputil.HandleValidationErrorGin(c, err, h.logger)
		return
	}

	chat, err := h.chatUseCase.CreateChat(c.Request.Context(), subjectID, participants)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusCreated, dto.ToChatResponse(chat))
}

// ListHandler retrieves every chat the subject participates in. With a
// participants query it instead resolves the single chat whose participant
// set is exactly the given ids plus the subject.
// GET /v1/chats?participants=a,b - Requires a valid session token.
func (h *ChatHandler) ListHandler(c *gin.Context) {
	subjectID, ok := h.subject(c)
	if !ok {
		return
	}

	if raw := c.Query("participants"); raw != "" {
		participants, err := dto.ParseParticipantIDs(raw)
		if err != nil {
			httputil.HandleValidationErrorGin(c, err, h.logger)
			return
		}

		chat, err := h.chatUseCase.FindChatByParticipants(c.Request.Context(), subjectID, participants)
		if err != nil {
			httputil.HandleErrorGin(c, err, h.logger)
			return
		}

		c.JSON(http.StatusOK, dto.ToChatResponse(chat))
		return
	}

	chats, err := h.chatUseCase.ListChats(c.Request.Context(), subjectID)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.ToChatListResponse(chats))
}

// GetHandler retrieves a single chat the subject participates in.
// GET /v1/chats/:chat_id - Requires a valid session token.
func (h *ChatHandler) GetHandler(c *gin.Context) {
	subjectID, chatID, ok := h.subjectAndChat(c)
	if !ok {
		return
	}

	chat, err := h.chatUseCase.GetChat(c.Request.Context(), subjectID, chatID)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.ToChatResponse(chat))
}

// SendMessageHandler sends a message to a chat over plain HTTP. The sender
// is the authenticated subject.
// POST /v1/chats/:chat_id/messages - Requires a valid session token.
func (h *ChatHandler) SendMessageHandler(c *gin.Context) {
	subjectID, chatID, ok := h.subjectAndChat(c)
	if !ok {
		return
	}

	var req dto.SendMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.HandleBadRequestGin(c, err, h.logger)
		return
	}
	if err := req.Validate(); err != nil {
		httputil.HandleValidationErrorGin(c, err, h.logger)
		return
	}

	message, err := h.chatUseCase.SendMessage(c.Request.Context(), subjectID, chatID, req.Content)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusCreated, dto.ToMessageResponse(message))
}

// ListMessagesHandler retrieves a chat's history in chronological order.
// GET /v1/chats/:chat_id/messages?limit=&offset= - Requires a valid session
// token.
func (h *ChatHandler) ListMessagesHandler(c *gin.Context) {
	subjectID, chatID, ok := h.subjectAndChat(c)
	if !ok {
		return
	}

	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))

	messages, err := h.chatUseCase.ListMessages(c.Request.Context(), subjectID, chatID, limit, offset)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.ToMessageListResponse(messages))
}

// subject extracts the authenticated subject from the request context. It
// writes the error response itself when the subject is missing or
// malformed.
func (h *ChatHandler) subject(c *gin.Context) (uuid.UUID, bool) {
	rawSubject, found := token.GetSubject(c.Request.Context())
	if !found {
		httputil.HandleErrorGin(c, apperrors.ErrUnauthorized, h.logger)
		return uuid.Nil, false
	}

	subjectID, err := uuid.Parse(rawSubject)
	if err != nil {
		httputil.HandleErrorGin(c, apperrors.ErrUnauthorized, h.logger)
		return uuid.Nil, false
	}

	return subjectID, true
}

func (h *ChatHandler) subjectAndChat(c *gin.Context) (subjectID, chatID uuid.UUID, ok bool) {
	subjectID, ok = h.subject(c)
	if !ok {
		return uuid.Nil, uuid.Nil, false
	}

	chatID, err := uuid.Parse(c.Param("chat_id"))
	if err != nil {
		httputil.HandleValidationErrorGin(c, domain.ErrInvalidChatID, h.logger)
		return uuid.Nil, uuid.Nil, false
	}

	return subjectID, chatID, true
}
