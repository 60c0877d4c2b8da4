package service

import (
	"context"
	"testing"

	"github.com/spec-kit/canine-care-service/internal/domain"
	"github.com/spec-kit/canine-care-service/internal/repository/memory"
	apperrors "github.com/spec-kit/canine-care-service/pkg/util/errorutil"
)

func newChatServiceForTest() *ChatService {
	return NewChatService(ChatDependencies{
		ConversationRepo: memory.NewConversationRepository(),
		MessageRepo:      memory.NewMessageRepository(),
	})
}

func TestStartConversationRequiresSubject(t *testing.T) {
	svc := newChatServiceForTest()
	if _, err := svc.StartConversation(context.Background(), "user-1", nil, "   "); err == nil {
		t.Fatal("blank subject should fail validation")
	}
	conversation, err := svc.StartConversation(context.Background(), "user-1", nil, " Diet question ")
	if err != nil {
		t.Fatalf("StartConversation: %v", err)
	}
	if conversation.Subject != "Diet question" {
		t.Errorf("subject = %q, want trimmed", conversation.Subject)
	}
}

func TestSendMessageOwnershipAndValidation(t *testing.T) {
	ctx := context.Background()
	svc := newChatServiceForTest()
	conversation, _ := svc.StartConversation(ctx, "user-1", nil, "Diet question")

	if _, err := svc.SendMessage(ctx, domain.SubjectTypeUser, "user-1", conversation.ID, "  "); err == nil {
		t.Fatal("empty body should fail validation")
	}
	if _, err := svc.SendMessage(ctx, domain.SubjectTypeUser, "user-2", conversation.ID, "hello"); apperrors.ToDomainError(err).Code != "FORBIDDEN" {
		t.Fatalf("foreign user err = %v, want FORBIDDEN", err)
	}
	if _, err := svc.SendMessage(ctx, domain.SubjectTypeUser, "user-1", "missing", "hello"); apperrors.ToDomainError(err).Code != "NOT_FOUND" {
		t.Fatalf("unknown conversation err = %v, want NOT_FOUND", err)
	}

	// Staff can write into any thread.
	message, err := svc.SendMessage(ctx, domain.SubjectTypeStaff, "staff-1", conversation.ID, "We will take a look.")
	if err != nil {
		t.Fatalf("staff SendMessage: %v", err)
	}
	if message.SenderRole != domain.SubjectTypeStaff {
		t.Errorf("sender role = %q", message.SenderRole)
	}
}

func TestUnreadCountsAreViewerRelative(t *testing.T) {
	ctx := context.Background()
	svc := newChatServiceForTest()
	conversation, _ := svc.StartConversation(ctx, "user-1", nil, "Diet question")

	_, _ = svc.SendMessage(ctx, domain.SubjectTypeUser, "user-1", conversation.ID, "Is salmon okay?")
	_, _ = svc.SendMessage(ctx, domain.SubjectTypeStaff, "staff-1", conversation.ID, "Yes, baked only.")
	_, _ = svc.SendMessage(ctx, domain.SubjectTypeStaff, "staff-1", conversation.ID, "Avoid seasoning.")

	userViews, err := svc.ListConversations(ctx, "user-1")
	if err != nil {
		t.Fatalf("ListConversations: %v", err)
	}
	if len(userViews) != 1 {
		t.Fatalf("views = %d, want 1", len(userViews))
	}
	if userViews[0].UnreadCount != 2 {
		t.Errorf("user unread = %d, want the 2 staff messages", userViews[0].UnreadCount)
	}
	if userViews[0].LastMessage == nil || userViews[0].LastMessage.Body != "Avoid seasoning." {
		t.Errorf("last message = %+v, want the newest", userViews[0].LastMessage)
	}

	staff := &domain.StaffMember{ID: "staff-1", Role: domain.StaffRoleReviewer}
	staffViews, err := svc.ListAllConversations(ctx, staff, 10, 0)
	if err != nil {
		t.Fatalf("ListAllConversations: %v", err)
	}
	if staffViews[0].UnreadCount != 1 {
		t.Errorf("staff unread = %d, want the 1 user message", staffViews[0].UnreadCount)
	}
}

func TestGetConversationMarksOtherSideRead(t *testing.T) {
	ctx := context.Background()
	svc := newChatServiceForTest()
	conversation, _ := svc.StartConversation(ctx, "user-1", nil, "Diet question")
	_, _ = svc.SendMessage(ctx, domain.SubjectTypeStaff, "staff-1", conversation.ID, "Checking in.")

	_, messages, err := svc.GetConversation(ctx, domain.SubjectTypeUser, "user-1", conversation.ID)
	if err != nil {
		t.Fatalf("GetConversation: %v", err)
	}
	if len(messages) != 1 || !messages[0].Read {
		t.Fatalf("messages = %+v, want the staff message marked read", messages)
	}

	views, _ := svc.ListConversations(ctx, "user-1")
	if views[0].UnreadCount != 0 {
		t.Errorf("unread = %d after reading the thread", views[0].UnreadCount)
	}

	if _, _, err := svc.GetConversation(ctx, domain.SubjectTypeUser, "user-2", conversation.ID); apperrors.ToDomainError(err).Code != "FORBIDDEN" {
		t.Fatalf("foreign viewer err = %v, want FORBIDDEN", err)
	}
}

func TestListAllConversationsRequiresStaff(t *testing.T) {
	svc := newChatServiceForTest()
	if _, err := svc.ListAllConversations(context.Background(), nil, 10, 0); apperrors.ToDomainError(err).Code != "UNAUTHORIZED" {
		t.Fatalf("err = %v, want UNAUTHORIZED", err)
	}
}
