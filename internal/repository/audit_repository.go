package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/canine-care-service/internal/domain"
)

// AuditLogRepository stores append-only audit entries. There is no update or
// delete on purpose.
type AuditLogRepository interface {
	Append(ctx context.Context, entry *domain.AuditLogEntry) error
	List(ctx context.Context, limit, offset int) ([]domain.AuditLogEntry, error)
}

type auditLogRepository struct {
	pool *pgxpool.Pool
}

// NewAuditLogRepository instantiates the repository.
func NewAuditLogRepository(pool *pgxpool.Pool) AuditLogRepository {
	return &auditLogRepository{pool: pool}
}

func (r *auditLogRepository) Append(ctx context.Context, entry *domain.AuditLogEntry) error {
	const query = `
        INSERT INTO audit_log (actor_id, actor_name, action, details, ip_address)
        VALUES ($1,$2,$3,$4,$5)
        RETURNING id, created_at`
	return r.pool.QueryRow(ctx, query,
		entry.ActorID,
		entry.ActorName,
		entry.Action,
		entry.Details,
		entry.IPAddress,
	).Scan(&entry.ID, &entry.CreatedAt)
}

func (r *auditLogRepository) List(ctx context.Context, limit, offset int) ([]domain.AuditLogEntry, error) {
	if limit <= 0 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}
	const query = `
        SELECT id, actor_id, actor_name, action, details, ip_address, created_at
        FROM audit_log ORDER BY created_at DESC LIMIT $1 OFFSET $2`
	rows, err := r.pool.Query(ctx, query, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.AuditLogEntry
	for rows.Next() {
		var entry domain.AuditLogEntry
		if err := rows.Scan(
			&entry.ID,
			&entry.ActorID,
			&entry.ActorName,
			&entry.Action,
			&entry.Details,
			&entry.IPAddress,
			&entry.CreatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, entry)
	}
	return result, rows.Err()
}
