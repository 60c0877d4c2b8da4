package domain

import "time"

// NotificationType enumerates staff notification categories.
type NotificationType string

const (
	NotificationSubmission NotificationType = "submission"
	NotificationMessage    NotificationType = "message"
	NotificationBilling    NotificationType = "billing"
)

// Notification is a staff-facing alert derived from domain events.
type Notification struct {
	ID           string
	Type         NotificationType
	Title        string
	Body         string
	Priority     SubmissionPriority
	SubmissionID *string
	Read         bool
	CreatedAt    time.Time
}
