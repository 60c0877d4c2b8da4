package dto

import (
	"time"

	"github.com/spec-kit/canine-care-service/internal/domain"
)

// SubmissionStatusRequest moves a submission through the review lifecycle.
type SubmissionStatusRequest struct {
	Status          domain.SubmissionStatus `json:"status"`
	Comment         string                  `json:"comment"`
	FinalProtocolID *string                 `json:"final_protocol_id"`
}

// AssignRequest sets or clears the reviewer assignment.
type AssignRequest struct {
	AssigneeID *string `json:"assignee_id"`
}

// BulkApproveRequest approves a batch of submissions.
type BulkApproveRequest struct {
	SubmissionIDs []string `json:"submission_ids"`
}

// StaffCreateRequest payload.
type StaffCreateRequest struct {
	Name     string           `json:"name"`
	Email    string           `json:"email"`
	Password string           `json:"password"`
	Role     domain.StaffRole `json:"role"`
}

// StaffUpdateRequest payload.
type StaffUpdateRequest struct {
	Role   domain.StaffRole `json:"role"`
	Active bool             `json:"active"`
}

// StaffResponse is the public view of a staff member.
type StaffResponse struct {
	ID        string           `json:"id"`
	Name      string           `json:"name"`
	Email     string           `json:"email"`
	Role      domain.StaffRole `json:"role"`
	Active    bool             `json:"active"`
	CreatedAt time.Time        `json:"created_at"`
}

// AuditLogEntryResponse is one administrative action record.
type AuditLogEntryResponse struct {
	ID        string    `json:"id"`
	ActorID   string    `json:"actor_id"`
	ActorName string    `json:"actor_name"`
	Action    string    `json:"action"`
	Details   string    `json:"details"`
	IPAddress string    `json:"ip_address"`
	CreatedAt time.Time `json:"created_at"`
}

// NotificationResponse is one staff inbox entry.
type NotificationResponse struct {
	ID           string                    `json:"id"`
	Type         domain.NotificationType   `json:"type"`
	Title        string                    `json:"title"`
	Body         string                    `json:"body"`
	Priority     domain.SubmissionPriority `json:"priority"`
	SubmissionID *string                   `json:"submission_id"`
	Read         bool                      `json:"read"`
	CreatedAt    time.Time                 `json:"created_at"`
}
