package dto

import (
	"time"

	"github.com/spec-kit/canine-care-service/internal/domain"
)

// StartConversationRequest opens a new thread with the care team.
type StartConversationRequest struct {
	DogID   *string `json:"dog_id"`
	Subject string  `json:"subject"`
}

// SendMessageRequest appends one message to a thread.
type SendMessageRequest struct {
	Body string `json:"body"`
}

// MessageResponse is one thread entry.
type MessageResponse struct {
	ID             string             `json:"id"`
	ConversationID string             `json:"conversation_id"`
	SenderRole     domain.SubjectType `json:"sender_role"`
	SenderID       string             `json:"sender_id"`
	Body           string             `json:"body"`
	Read           bool               `json:"read"`
	CreatedAt      time.Time          `json:"created_at"`
}

// ConversationResponse is a thread summary with derived read state.
type ConversationResponse struct {
	ID          string           `json:"id"`
	UserID      string           `json:"user_id"`
	DogID       *string          `json:"dog_id"`
	Subject     string           `json:"subject"`
	UnreadCount int              `json:"unread_count"`
	LastMessage *MessageResponse `json:"last_message"`
	CreatedAt   time.Time        `json:"created_at"`
	UpdatedAt   time.Time        `json:"updated_at"`
}
