package domain

import (
	"testing"
	"time"
)

func TestUnreadCount(t *testing.T) {
	messages := []Message{
		{SenderRole: SubjectTypeUser, Read: false},
		{SenderRole: SubjectTypeUser, Read: true},
		{SenderRole: SubjectTypeStaff, Read: false},
		{SenderRole: SubjectTypeStaff, Read: false},
	}

	if got := UnreadCount(messages, SubjectTypeUser); got != 2 {
		t.Errorf("user unread = %d, want 2 (the unread staff messages)", got)
	}
	if got := UnreadCount(messages, SubjectTypeStaff); got != 1 {
		t.Errorf("staff unread = %d, want 1 (the unread user message)", got)
	}
	if got := UnreadCount(nil, SubjectTypeUser); got != 0 {
		t.Errorf("empty thread unread = %d, want 0", got)
	}
}

func TestLastMessage(t *testing.T) {
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	messages := []Message{
		{ID: "a", CreatedAt: base},
		{ID: "c", CreatedAt: base.Add(2 * time.Minute)},
		{ID: "b", CreatedAt: base.Add(time.Minute)},
	}

	last := LastMessage(messages)
	if last == nil || last.ID != "c" {
		t.Fatalf("LastMessage = %+v, want message c", last)
	}
	if LastMessage(nil) != nil {
		t.Fatal("LastMessage(nil) should be nil")
	}
}
