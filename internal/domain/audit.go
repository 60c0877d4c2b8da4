package domain

import "time"

// AuditPlaceholderIP is recorded on every entry; client addresses are not
// captured by the admin surface.
const AuditPlaceholderIP = "0.0.0.0"

// AuditLogEntry is an append-only record of one administrative action.
// Entries are never mutated or deleted.
type AuditLogEntry struct {
	ID        string
	ActorID   string
	ActorName string
	Action    string
	Details   string
	IPAddress string
	CreatedAt time.Time
}
