// Package dto provides data transfer objects for the chat HTTP layer.
package dto

import (
	"time"

	"github.com/google/uuid"

	"github.com/talkbase/talkbase/internal/chat/domain"
)

// ChatResponse represents the API response for a chat
type ChatResponse struct {
	ID           uuid.UUID   `json:"id"`
	Participants []uuid.UUID `json:"participants"`
	CreatedAt    time.Time   `json:"created_at"`
	UpdatedAt    time.Time   `json:"updated_at"`
}

// ChatListResponse represents the chats the subject participates in
type ChatListResponse struct {
	Chats []ChatResponse `json:"chats"`
}

// MessageResponse represents the API response for a message
type MessageResponse struct {
	ID        uuid.UUID `json:"id"`
	ChatID    uuid.UUID `json:"chat_id"`
	SenderID  uuid.UUID `json:"sender_id"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}

// MessageListResponse represents a page of messages in chronological order
type MessageListResponse struct {
	Messages []MessageResponse `json:"messages"`
}

// ToChatResponse converts a domain Chat model to a ChatResponse DTO
func ToChatResponse(chat *domain.Chat) ChatResponse {
	return ChatResponse{
		ID:           chat.ID,
		Participants: chat.Participants,
		CreatedAt:    chat.CreatedAt,
		UpdatedAt:    chat.UpdatedAt,
	}
}

// ToChatListResponse converts a slice of domain chats to a ChatListResponse DTO
func ToChatListResponse(chats []*domain.Chat) ChatListResponse {
	response := ChatListResponse{Chats: make([]ChatResponse, 0, len(chats))}
	for _, chat := range chats {
		response.Chats = append(response.Chats, ToChatResponse(chat))
	}
	return response
}

// ToMessageResponse converts a domain Message model to a MessageResponse DTO
func ToMessageResponse(message *domain.Message) MessageResponse {
	return MessageResponse{
		ID:        message.ID,
		ChatID:    message.ChatID,
		SenderID:  message.SenderID,
		Content:   message.Content,
		CreatedAt: message.CreatedAt,
	}
}

// ToMessageListResponse converts a slice of domain messages to a MessageListResponse DTO
func ToMessageListResponse(messages []*domain.Message) MessageListResponse {
	response := MessageListResponse{Messages: make([]MessageResponse, 0, len(messages))}
	for _, message := range messages {
		response.Messages = append(response.Messages, ToMessageResponse(message))
	}
	return response
}
