package events

import (
	"time"

	"github.com/spec-kit/canine-care-service/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventSubmissionCreated       EventType = "submission_created"
	EventSubmissionStatusChanged EventType = "submission_status_changed"
	EventSubmissionAssigned      EventType = "submission_assigned"
	EventMessageAdded            EventType = "message_added"
	EventPlanChanged             EventType = "plan_changed"
)

// Actor encapsulates actor metadata for an event.
type Actor struct {
	Type    domain.SubjectType `json:"type"`
	UserID  *string            `json:"user_id,omitempty"`
	StaffID *string            `json:"staff_id,omitempty"`
}

// Event represents a domain event emitted by services.
type Event struct {
	ID        string      `json:"id"`
	Type      EventType   `json:"type"`
	SubjectID string      `json:"subject_id"`
	Actor     Actor       `json:"actor"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   interface{} `json:"payload"`
}

// SubmissionCreatedPayload payload.
type SubmissionCreatedPayload struct {
	DogID    string                    `json:"dog_id"`
	DogName  string                    `json:"dog_name"`
	Urgency  domain.Urgency            `json:"urgency"`
	Priority domain.SubmissionPriority `json:"priority"`
}

// SubmissionStatusChangedPayload payload.
type SubmissionStatusChangedPayload struct {
	OldStatus domain.SubmissionStatus `json:"old_status"`
	NewStatus domain.SubmissionStatus `json:"new_status"`
	Comment   string                  `json:"comment,omitempty"`
}

// SubmissionAssignedPayload payload.
type SubmissionAssignedPayload struct {
	AssigneeStaffID *string `json:"assignee_staff_id,omitempty"`
}

// MessageAddedPayload payload.
type MessageAddedPayload struct {
	MessageID   string             `json:"message_id"`
	SenderRole  domain.SubjectType `json:"sender_role"`
	SenderID    string             `json:"sender_id"`
	BodyPreview string             `json:"body_preview"`
}

// PlanChangedPayload payload.
type PlanChangedPayload struct {
	OldPlan domain.PlanKey            `json:"old_plan,omitempty"`
	NewPlan domain.PlanKey            `json:"new_plan"`
	Status  domain.SubscriptionStatus `json:"status"`
}
