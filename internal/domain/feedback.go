package domain

import "time"

// Feedback is a user-submitted feedback entry; the sender may be anonymous.
type Feedback struct {
	ID        string
	UserID    *string
	Name      string
	Email     string
	Message   string
	Meta      map[string]any
	CreatedAt time.Time
}
