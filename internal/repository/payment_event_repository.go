package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/canine-care-service/internal/domain"
)

// PaymentEventRepository records processed billing webhook events.
type PaymentEventRepository interface {
	Create(ctx context.Context, event *domain.PaymentEvent) error
	ListByUser(ctx context.Context, userID string, limit, offset int) ([]domain.PaymentEvent, error)
}

type paymentEventRepository struct {
	pool *pgxpool.Pool
}

// NewPaymentEventRepository instantiates repository.
func NewPaymentEventRepository(pool *pgxpool.Pool) PaymentEventRepository {
	return &paymentEventRepository{pool: pool}
}

func (r *paymentEventRepository) Create(ctx context.Context, event *domain.PaymentEvent) error {
	const query = `
        INSERT INTO payment_events (user_id, event_type, provider_object_id, payload)
        VALUES ($1,$2,$3,$4)
        RETURNING id, created_at`
	return r.pool.QueryRow(ctx, query,
		event.UserID,
		event.EventType,
		event.ProviderObjectID,
		event.Payload,
	).Scan(&event.ID, &event.CreatedAt)
}

func (r *paymentEventRepository) ListByUser(ctx context.Context, userID string, limit, offset int) ([]domain.PaymentEvent, error) {
	if limit <= 0 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}
	const query = `
        SELECT id, user_id, event_type, provider_object_id, payload, created_at
        FROM payment_events WHERE user_id=$1
        ORDER BY created_at DESC LIMIT $2 OFFSET $3`
	rows, err := r.pool.Query(ctx, query, userID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.PaymentEvent
	for rows.Next() {
		var event domain.PaymentEvent
		if err := rows.Scan(
			&event.ID,
			&event.UserID,
			&event.EventType,
			&event.ProviderObjectID,
			&event.Payload,
			&event.CreatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, event)
	}
	return result, rows.Err()
}
