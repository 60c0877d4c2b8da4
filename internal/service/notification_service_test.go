package service

import (
	"context"
	"testing"

	"go.uber.org/zap"

	"github.com/spec-kit/canine-care-service/internal/cache"
	"github.com/spec-kit/canine-care-service/internal/config"
	"github.com/spec-kit/canine-care-service/internal/domain"
	"github.com/spec-kit/canine-care-service/internal/events"
	"github.com/spec-kit/canine-care-service/internal/repository/memory"
)

func TestSubmissionEventsLandInStaffInbox(t *testing.T) {
	ctx := context.Background()
	dispatcher := events.NewInMemoryDispatcher()
	notifications := NewNotificationService(memory.NewNotificationRepository(), dispatcher, zap.NewNop(), config.NotificationConfig{})
	notifications.RegisterHandlers()

	pets := NewPetService(PetDependencies{
		DogRepo:        memory.NewDogRepository(),
		ProtocolRepo:   memory.NewProtocolRepository(),
		SubmissionRepo: memory.NewSubmissionRepository(),
		Snapshots:      cache.NewMemorySnapshotCache(),
		Dispatcher:     dispatcher,
	})

	dog, err := pets.AddDog(ctx, "user-1", DogCreateInput{Name: "Bella"})
	if err != nil {
		t.Fatalf("AddDog: %v", err)
	}

	stored, err := notifications.List(ctx, true, 10, 0)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(stored) != 1 {
		t.Fatalf("notifications = %d, want the intake submission", len(stored))
	}
	notification := stored[0]
	if notification.Type != domain.NotificationSubmission {
		t.Errorf("type = %q", notification.Type)
	}
	if notification.SubmissionID == nil || *notification.SubmissionID != *dog.LastSubmissionID {
		t.Errorf("submission ref = %v, want %v", notification.SubmissionID, dog.LastSubmissionID)
	}

	if err := notifications.MarkRead(ctx, notification.ID); err != nil {
		t.Fatalf("MarkRead: %v", err)
	}
	unread, err := notifications.List(ctx, true, 10, 0)
	if err != nil {
		t.Fatalf("List unread: %v", err)
	}
	if len(unread) != 0 {
		t.Errorf("unread = %d after marking read", len(unread))
	}
}

func TestStaffMessagesSkipTheInboxFeed(t *testing.T) {
	ctx := context.Background()
	dispatcher := events.NewInMemoryDispatcher()
	notifications := NewNotificationService(memory.NewNotificationRepository(), dispatcher, zap.NewNop(), config.NotificationConfig{})
	notifications.RegisterHandlers()

	chat := NewChatService(ChatDependencies{
		ConversationRepo: memory.NewConversationRepository(),
		MessageRepo:      memory.NewMessageRepository(),
		Dispatcher:       dispatcher,
	})
	conversation, err := chat.StartConversation(ctx, "user-1", nil, "Diet question")
	if err != nil {
		t.Fatalf("StartConversation: %v", err)
	}

	if _, err := chat.SendMessage(ctx, domain.SubjectTypeUser, "user-1", conversation.ID, "Is salmon okay?"); err != nil {
		t.Fatalf("user SendMessage: %v", err)
	}
	if _, err := chat.SendMessage(ctx, domain.SubjectTypeStaff, "staff-1", conversation.ID, "Yes, baked only."); err != nil {
		t.Fatalf("staff SendMessage: %v", err)
	}

	stored, err := notifications.List(ctx, false, 10, 0)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(stored) != 1 {
		t.Fatalf("notifications = %d, want only the user's message", len(stored))
	}
	if stored[0].Type != domain.NotificationMessage || stored[0].Body != "Is salmon okay?" {
		t.Errorf("notification = %+v", stored[0])
	}
}
