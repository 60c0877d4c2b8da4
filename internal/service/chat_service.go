package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/canine-care-service/internal/domain"
	"github.com/spec-kit/canine-care-service/internal/events"
	"github.com/spec-kit/canine-care-service/internal/repository"
	apperrors "github.com/spec-kit/canine-care-service/pkg/util/errorutil"
)

// ChatService coordinates conversations between users and the care team.
type ChatService struct {
	conversations repository.ConversationRepository
	messages      repository.MessageRepository
	dispatcher    events.Dispatcher
}

// ChatDependencies bundles repositories.
type ChatDependencies struct {
	ConversationRepo repository.ConversationRepository
	MessageRepo      repository.MessageRepository
	Dispatcher       events.Dispatcher
}

// ConversationView pairs a conversation with its derived read-state fields.
type ConversationView struct {
	Conversation domain.Conversation
	UnreadCount  int
	LastMessage  *domain.Message
}

// NewChatService constructs the service.
func NewChatService(deps ChatDependencies) *ChatService {
	return &ChatService{
		conversations: deps.ConversationRepo,
		messages:      deps.MessageRepo,
		dispatcher:    deps.Dispatcher,
	}
}

// StartConversation opens a thread for a user, optionally tied to a dog.
func (s *ChatService) StartConversation(ctx context.Context, userID string, dogID *string, subject string) (*domain.Conversation, error) {
	subject = strings.TrimSpace(subject)
	if subject == "" {
		return nil, apperrors.NewValidationError("subject is required", nil)
	}
	conversation := &domain.Conversation{
		UserID:  userID,
		DogID:   dogID,
		Subject: subject,
	}
	if err := s.conversations.Create(ctx, conversation); err != nil {
		return nil, err
	}
	return conversation, nil
}

// SendMessage appends a message on behalf of either side of the thread.
func (s *ChatService) SendMessage(ctx context.Context, sender domain.SubjectType, senderID, conversationID, body string) (*domain.Message, error) {
	body = strings.TrimSpace(body)
	if body == "" {
		return nil, apperrors.NewValidationError("message body is required", nil)
	}
	conversation, err := s.conversations.GetByID(ctx, conversationID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("conversation", map[string]any{"conversation_id": conversationID})
		}
		return nil, err
	}
	if sender == domain.SubjectTypeUser && conversation.UserID != senderID {
		return nil, apperrors.NewForbidden("access denied")
	}

	message := &domain.Message{
		ConversationID: conversation.ID,
		SenderRole:     sender,
		SenderID:       senderID,
		Body:           body,
	}
	if err := s.messages.Create(ctx, message); err != nil {
		return nil, err
	}
	if err := s.conversations.Touch(ctx, conversation.ID); err != nil {
		return nil, err
	}

	s.publishMessageEvent(ctx, conversation.ID, message)
	return message, nil
}

// ListConversations returns the user's threads with derived unread counts
// and previews.
func (s *ChatService) ListConversations(ctx context.Context, userID string) ([]ConversationView, error) {
	conversations, err := s.conversations.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	return s.buildViews(ctx, conversations, domain.SubjectTypeUser)
}

// ListAllConversations returns every thread for the staff inbox.
func (s *ChatService) ListAllConversations(ctx context.Context, actor *domain.StaffMember, limit, offset int) ([]ConversationView, error) {
	if actor == nil {
		return nil, apperrors.NewUnauthorized("staff required")
	}
	conversations, err := s.conversations.ListAll(ctx, limit, offset)
	if err != nil {
		return nil, err
	}
	return s.buildViews(ctx, conversations, domain.SubjectTypeStaff)
}

// GetConversation returns one thread and its messages, marking the other
// side's messages read for the viewer.
func (s *ChatService) GetConversation(ctx context.Context, viewer domain.SubjectType, viewerID, conversationID string) (*domain.Conversation, []domain.Message, error) {
	conversation, err := s.conversations.GetByID(ctx, conversationID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil, apperrors.NewNotFound("conversation", map[string]any{"conversation_id": conversationID})
		}
		return nil, nil, err
	}
	if viewer == domain.SubjectTypeUser && conversation.UserID != viewerID {
		return nil, nil, apperrors.NewForbidden("access denied")
	}

	if err := s.messages.MarkRead(ctx, conversation.ID, viewer); err != nil {
		return nil, nil, err
	}
	messages, err := s.messages.ListByConversation(ctx, conversation.ID)
	if err != nil {
		return nil, nil, err
	}
	return conversation, messages, nil
}

// buildViews recomputes unread counts and previews from the message lists.
// Both are derived values; nothing read-state related is stored on the
// conversation row.
func (s *ChatService) buildViews(ctx context.Context, conversations []domain.Conversation, viewer domain.SubjectType) ([]ConversationView, error) {
	views := make([]ConversationView, 0, len(conversations))
	for _, conversation := range conversations {
		messages, err := s.messages.ListByConversation(ctx, conversation.ID)
		if err != nil {
			return nil, err
		}
		views = append(views, ConversationView{
			Conversation: conversation,
			UnreadCount:  domain.UnreadCount(messages, viewer),
			LastMessage:  domain.LastMessage(messages),
		})
	}
	return views, nil
}

func (s *ChatService) publishMessageEvent(ctx context.Context, conversationID string, message *domain.Message) {
	if s.dispatcher == nil {
		return
	}
	preview := message.Body
	if len(preview) > 120 {
		preview = preview[:117] + "..."
	}
	event := events.Event{
		Type:      events.EventMessageAdded,
		SubjectID: conversationID,
		Payload: events.MessageAddedPayload{
			MessageID:   message.ID,
			SenderRole:  message.SenderRole,
			SenderID:    message.SenderID,
			BodyPreview: preview,
		},
	}
	if message.SenderRole == domain.SubjectTypeStaff {
		event.Actor = staffActor(message.SenderID)
	} else {
		event.Actor = userActor(message.SenderID)
	}
	s.publishEvent(ctx, event)
}

func (s *ChatService) publishEvent(ctx context.Context, event events.Event) {
	if s.dispatcher == nil {
		return
	}
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}
	_ = s.dispatcher.Publish(ctx, event)
}
