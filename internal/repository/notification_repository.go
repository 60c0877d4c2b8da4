package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/canine-care-service/internal/domain"
)

// NotificationRepository stores staff notifications.
type NotificationRepository interface {
	Create(ctx context.Context, notification *domain.Notification) error
	MarkRead(ctx context.Context, id string) error
	List(ctx context.Context, unreadOnly bool, limit, offset int) ([]domain.Notification, error)
}

type notificationRepository struct {
	pool *pgxpool.Pool
}

// NewNotificationRepository instantiates the repository.
func NewNotificationRepository(pool *pgxpool.Pool) NotificationRepository {
	return &notificationRepository{pool: pool}
}

func (r *notificationRepository) Create(ctx context.Context, notification *domain.Notification) error {
	const query = `
        INSERT INTO notifications (type, title, body, priority, submission_id, read_flag)
        VALUES ($1,$2,$3,$4,$5,$6)
        RETURNING id, created_at`
	return r.pool.QueryRow(ctx, query,
		notification.Type,
		notification.Title,
		notification.Body,
		notification.Priority,
		notification.SubmissionID,
		notification.Read,
	).Scan(&notification.ID, &notification.CreatedAt)
}

func (r *notificationRepository) MarkRead(ctx context.Context, id string) error {
	cmd, err := r.pool.Exec(ctx, `UPDATE notifications SET read_flag=TRUE WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *notificationRepository) List(ctx context.Context, unreadOnly bool, limit, offset int) ([]domain.Notification, error) {
	if limit <= 0 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}
	query := `
        SELECT id, type, title, body, priority, submission_id, read_flag, created_at
        FROM notifications`
	if unreadOnly {
		query += ` WHERE read_flag=FALSE`
	}
	query += ` ORDER BY created_at DESC LIMIT $1 OFFSET $2`

	rows, err := r.pool.Query(ctx, query, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.Notification
	for rows.Next() {
		var notification domain.Notification
		if err := rows.Scan(
			&notification.ID,
			&notification.Type,
			&notification.Title,
			&notification.Body,
			&notification.Priority,
			&notification.SubmissionID,
			&notification.Read,
			&notification.CreatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, notification)
	}
	return result, rows.Err()
}
