package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/canine-care-service/internal/domain"
)

// FeedbackRepository stores visitor feedback.
type FeedbackRepository interface {
	Create(ctx context.Context, feedback *domain.Feedback) error
	List(ctx context.Context, limit, offset int) ([]domain.Feedback, error)
}

type feedbackRepository struct {
	pool *pgxpool.Pool
}

// NewFeedbackRepository instantiates repository.
func NewFeedbackRepository(pool *pgxpool.Pool) FeedbackRepository {
	return &feedbackRepository{pool: pool}
}

func (r *feedbackRepository) Create(ctx context.Context, feedback *domain.Feedback) error {
	const query = `
        INSERT INTO feedback (user_id, name, email, message, meta)
        VALUES ($1,$2,$3,$4,$5)
        RETURNING id, created_at`
	return r.pool.QueryRow(ctx, query,
		feedback.UserID,
		feedback.Name,
		feedback.Email,
		feedback.Message,
		feedback.Meta,
	).Scan(&feedback.ID, &feedback.CreatedAt)
}

func (r *feedbackRepository) List(ctx context.Context, limit, offset int) ([]domain.Feedback, error) {
	if limit <= 0 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}
	const query = `
        SELECT id, user_id, name, email, message, meta, created_at
        FROM feedback ORDER BY created_at DESC LIMIT $1 OFFSET $2`
	rows, err := r.pool.Query(ctx, query, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.Feedback
	for rows.Next() {
		var feedback domain.Feedback
		if err := rows.Scan(
			&feedback.ID,
			&feedback.UserID,
			&feedback.Name,
			&feedback.Email,
			&feedback.Message,
			&feedback.Meta,
			&feedback.CreatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, feedback)
	}
	return result, rows.Err()
}
