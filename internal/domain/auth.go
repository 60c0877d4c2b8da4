package domain

import "time"

// SubjectType differentiates end-user vs staff tokens.
type SubjectType string

const (
	SubjectTypeUser  SubjectType = "USER"
	SubjectTypeStaff SubjectType = "STAFF"
)

// Token represents issued authentication token metadata.
type Token struct {
	ID        string
	SubjectID string
	Subject   SubjectType
	Role      *StaffRole
	ExpiresAt time.Time
	IssuedAt  time.Time
}
