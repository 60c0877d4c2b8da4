package domain

import "time"

// Conversation aggregates messages between one user and the care team,
// optionally tied to a dog.
type Conversation struct {
	ID        string
	UserID    string
	DogID     *string
	Subject   string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Message is one entry in a conversation thread.
type Message struct {
	ID             string
	ConversationID string
	SenderRole     SubjectType
	SenderID       string
	Body           string
	Read           bool
	CreatedAt      time.Time
}

// UnreadCount recomputes the unread total for a viewer role: messages sent
// by the other side that have not been read. Derived, never stored.
func UnreadCount(messages []Message, viewer SubjectType) int {
	count := 0
	for _, msg := range messages {
		if msg.SenderRole != viewer && !msg.Read {
			count++
		}
	}
	return count
}

// LastMessage returns the most recently created message, or nil.
func LastMessage(messages []Message) *Message {
	var last *Message
	for i := range messages {
		if last == nil || messages[i].CreatedAt.After(last.CreatedAt) {
			last = &messages[i]
		}
	}
	return last
}
