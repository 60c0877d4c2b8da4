package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/canine-care-service/internal/domain"
	"github.com/spec-kit/canine-care-service/internal/repository"
)

type conversationRepo struct {
	mu   sync.RWMutex
	byID map[string]domain.Conversation
}

// NewConversationRepository returns a map-backed implementation.
func NewConversationRepository() repository.ConversationRepository {
	return &conversationRepo{byID: make(map[string]domain.Conversation)}
}

func (r *conversationRepo) Create(ctx context.Context, conversation *domain.Conversation) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	conversation.ID = newID()
	conversation.CreatedAt = time.Now().UTC()
	conversation.UpdatedAt = conversation.CreatedAt
	r.byID[conversation.ID] = *conversation
	return nil
}

func (r *conversationRepo) Touch(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	conversation, ok := r.byID[id]
	if !ok {
		return pgx.ErrNoRows
	}
	conversation.UpdatedAt = time.Now().UTC()
	r.byID[id] = conversation
	return nil
}

func (r *conversationRepo) GetByID(ctx context.Context, id string) (*domain.Conversation, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	conversation, ok := r.byID[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return &conversation, nil
}

func (r *conversationRepo) ListByUser(ctx context.Context, userID string) ([]domain.Conversation, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var conversations []domain.Conversation
	for _, conversation := range r.byID {
		if conversation.UserID == userID {
			conversations = append(conversations, conversation)
		}
	}
	sortNewestFirst(conversations, func(c domain.Conversation) time.Time { return c.UpdatedAt })
	return conversations, nil
}

func (r *conversationRepo) ListAll(ctx context.Context, limit, offset int) ([]domain.Conversation, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	conversations := make([]domain.Conversation, 0, len(r.byID))
	for _, conversation := range r.byID {
		conversations = append(conversations, conversation)
	}
	sortNewestFirst(conversations, func(c domain.Conversation) time.Time { return c.UpdatedAt })
	return page(conversations, limit, offset, 50), nil
}

type messageRepo struct {
	mu   sync.RWMutex
	byID map[string]domain.Message
}

// NewMessageRepository returns a map-backed implementation.
func NewMessageRepository() repository.MessageRepository {
	return &messageRepo{byID: make(map[string]domain.Message)}
}

func (r *messageRepo) Create(ctx context.Context, message *domain.Message) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	message.ID = newID()
	message.CreatedAt = time.Now().UTC()
	r.byID[message.ID] = *message
	return nil
}

func (r *messageRepo) ListByConversation(ctx context.Context, conversationID string) ([]domain.Message, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var messages []domain.Message
	for _, message := range r.byID {
		if message.ConversationID == conversationID {
			messages = append(messages, message)
		}
	}
	sort.SliceStable(messages, func(i, j int) bool {
		return messages[i].CreatedAt.Before(messages[j].CreatedAt)
	})
	return messages, nil
}

func (r *messageRepo) MarkRead(ctx context.Context, conversationID string, viewer domain.SubjectType) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for id, message := range r.byID {
		if message.ConversationID == conversationID && message.SenderRole != viewer && !message.Read {
			message.Read = true
			r.byID[id] = message
		}
	}
	return nil
}
