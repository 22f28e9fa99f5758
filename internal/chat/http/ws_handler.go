package http

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"

	"github.com/coder/websocket"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/talkbase/talkbase/internal/chat/domain"
	"github.com/talkbase/talkbase/internal/chat/registry"
	"github.com/talkbase/talkbase/internal/chat/usecase"
	"github.com/talkbase/talkbase/internal/httputil"
	"github.com/talkbase/talkbase/internal/token"

	apperrors "github.com/talkbase/talkbase/internal/errors"
)

// inboundMessage is the payload clients send over the websocket. Trust
// fields like sender or chat are ignored: both come from the session.
type inboundMessage struct {
	Content string `json:"content"`
}

// WebsocketHandler upgrades chat sessions and bridges them to the
// connection registry.
type WebsocketHandler struct {
	chatUseCase usecase.UseCase
	authority   *token.Authority
	registry    *registry.Registry
	logger      *slog.Logger
}

// NewWebsocketHandler creates a new WebsocketHandler
func NewWebsocketHandler(
	chatUseCase usecase.UseCase,
	authority *token.Authority,
	reg *registry.Registry,
	logger *slog.Logger,
) *WebsocketHandler {
	return &WebsocketHandler{
		chatUseCase: chatUseCase,
		authority:   authority,
		registry:    reg,
		logger:      logger,
	}
}

// wsConn adapts a websocket connection to the registry's Conn interface.
type wsConn struct {
	conn *websocket.Conn
}

func (c *wsConn) Write(ctx context.Context, payload []byte) error {
	return c.conn.Write(ctx, websocket.MessageText, payload)
}

// ServeHandler runs one chat session.
// GET /v1/ws/:chat_id?token=<session token> - The upgrade handshake carries
// no Authorization header, so the token travels as a query parameter.
func (h *WebsocketHandler) ServeHandler(c *gin.Context) {
	rawSubject, err := h.authority.Validate(c.Query("token"))
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	subjectID, err := uuid.Parse(rawSubject)
	if err != nil {
		httputil.HandleErrorGin(c, apperrors.ErrUnauthorized, h.logger)
		return
	}

	chatID, err := uuid.Parse(c.Param("chat_id"))
	if err != nil {
		httputil.HandleValidationErrorGin(c, domain.ErrInvalidChatID, h.logger)
		return
	}

	// Membership is checked once at session start.
	if _, err := h.chatUseCase.GetChat(c.Request.Context(), subjectID, chatID); err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	conn, err := websocket.Accept(c.Writer, c.Request, nil)
	if err != nil {
		if h.logger != nil {
			h.logger.Warn("websocket upgrade failed", slog.Any("error", err))
		}
		return
	}
	defer conn.Close(websocket.StatusInternalError, "session ended")

	connID := h.registry.Register(&wsConn{conn: conn})
	defer h.registry.Unregister(connID)

	if h.logger != nil {
		h.logger.Info("websocket session started",
			slog.String("connection_id", connID.String()),
			slog.String("chat_id", chatID.String()),
			slog.String("user_id", subjectID.String()),
		)
	}

	h.readLoop(c.Request.Context(), conn, subjectID, chatID, connID)

	conn.Close(websocket.StatusNormalClosure, "")
}

// readLoop consumes inbound frames until the peer disconnects. Invalid
// frames are reported to the peer but never end the session; transport
// errors do.
func (h *WebsocketHandler) readLoop(
	ctx context.Context,
	conn *websocket.Conn,
	subjectID, chatID, connID uuid.UUID,
) {
	for {
		_, data, err := conn.Read(ctx)
		if err != nil {
			status := websocket.CloseStatus(err)
			if status == websocket.StatusNormalClosure || status == websocket.StatusGoingAway {
				return
			}
			if errors.Is(err, context.Canceled) {
				return
			}
			if h.logger != nil {
				h.logger.Info("websocket session ended",
					slog.String("connection_id", connID.String()),
					slog.Any("error", err),
				)
			}
			return
		}

		var inbound inboundMessage
		if err := json.Unmarshal(data, &inbound); err != nil {
			h.writeError(ctx, conn, "message must be a JSON object with a content field")
			continue
		}

		if _, err := h.chatUseCase.SendMessage(ctx, subjectID, chatID, inbound.Content); err != nil {
			h.writeError(ctx, conn, err.Error())
		}
	}
}

func (h *WebsocketHandler) writeError(ctx context.Context, conn *websocket.Conn, message string) {
	payload, err := json.Marshal(gin.H{"error": message})
	if err != nil {
		return
	}
	if err := conn.Write(ctx, websocket.MessageText, payload); err != nil && h.logger != nil {
		h.logger.Warn("failed to write websocket error frame", slog.Any("error", err))
	}
}
