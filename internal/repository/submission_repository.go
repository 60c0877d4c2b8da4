package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/canine-care-service/internal/domain"
)

// SubmissionFilter captures staff search parameters.
type SubmissionFilter struct {
	UserID      *string
	DogID       *string
	AssigneeID  *string
	Statuses    []domain.SubmissionStatus
	Priorities  []domain.SubmissionPriority
	CreatedFrom *time.Time
	CreatedTo   *time.Time
	Limit       int
	Offset      int
}

// SubmissionRepository encapsulates diagnosis submission persistence.
type SubmissionRepository interface {
	Create(ctx context.Context, submission *domain.DiagnosisSubmission) error
	Update(ctx context.Context, submission *domain.DiagnosisSubmission) error
	GetByID(ctx context.Context, id string) (*domain.DiagnosisSubmission, error)
	ListWithFilter(ctx context.Context, filter SubmissionFilter) ([]domain.DiagnosisSubmission, error)
}

type submissionRepository struct {
	pool *pgxpool.Pool
}

// NewSubmissionRepository instantiates the repository.
func NewSubmissionRepository(pool *pgxpool.Pool) SubmissionRepository {
	return &submissionRepository{pool: pool}
}

const submissionColumns = `id, dog_id, user_id, snapshot, input, diagnosis, priority,
        protocol_id, final_protocol_id, status, assignee_id, created_at, updated_at`

func (r *submissionRepository) Create(ctx context.Context, submission *domain.DiagnosisSubmission) error {
	const query = `
        INSERT INTO diagnosis_submissions (dog_id, user_id, snapshot, input, diagnosis, priority, protocol_id, status)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
        RETURNING id, created_at, updated_at`
	return r.pool.QueryRow(ctx, query,
		submission.DogID,
		submission.UserID,
		submission.Snapshot,
		submission.Input,
		submission.Diagnosis,
		submission.Priority,
		submission.ProtocolID,
		submission.Status,
	).Scan(&submission.ID, &submission.CreatedAt, &submission.UpdatedAt)
}

func (r *submissionRepository) Update(ctx context.Context, submission *domain.DiagnosisSubmission) error {
	const query = `
        UPDATE diagnosis_submissions SET status=$1, assignee_id=$2, final_protocol_id=$3, updated_at=NOW()
        WHERE id=$4`
	cmd, err := r.pool.Exec(ctx, query,
		submission.Status,
		submission.AssigneeID,
		submission.FinalProtocolID,
		submission.ID,
	)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *submissionRepository) GetByID(ctx context.Context, id string) (*domain.DiagnosisSubmission, error) {
	var submission domain.DiagnosisSubmission
	if err := r.pool.QueryRow(ctx,
		`SELECT `+submissionColumns+` FROM diagnosis_submissions WHERE id=$1`, id).Scan(
		&submission.ID,
		&submission.DogID,
		&submission.UserID,
		&submission.Snapshot,
		&submission.Input,
		&submission.Diagnosis,
		&submission.Priority,
		&submission.ProtocolID,
		&submission.FinalProtocolID,
		&submission.Status,
		&submission.AssigneeID,
		&submission.CreatedAt,
		&submission.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &submission, nil
}

func (r *submissionRepository) ListWithFilter(ctx context.Context, filter SubmissionFilter) ([]domain.DiagnosisSubmission, error) {
	base := `SELECT ` + submissionColumns + ` FROM diagnosis_submissions`
	clauses := []string{"1=1"}
	args := []any{}

	if filter.UserID != nil {
		args = append(args, *filter.UserID)
		clauses = append(clauses, fmt.Sprintf("user_id=$%d", len(args)))
	}
	if filter.DogID != nil {
		args = append(args, *filter.DogID)
		clauses = append(clauses, fmt.Sprintf("dog_id=$%d", len(args)))
	}
	if filter.AssigneeID != nil {
		args = append(args, *filter.AssigneeID)
		clauses = append(clauses, fmt.Sprintf("assignee_id=$%d", len(args)))
	}
	if len(filter.Statuses) > 0 {
		placeholders := make([]string, len(filter.Statuses))
		for i, status := range filter.Statuses {
			args = append(args, status)
			placeholders[i] = fmt.Sprintf("$%d", len(args))
		}
		clauses = append(clauses, fmt.Sprintf("status IN (%s)", strings.Join(placeholders, ",")))
	}
	if len(filter.Priorities) > 0 {
		placeholders := make([]string, len(filter.Priorities))
		for i, pr := range filter.Priorities {
			args = append(args, pr)
			placeholders[i] = fmt.Sprintf("$%d", len(args))
		}
		clauses = append(clauses, fmt.Sprintf("priority IN (%s)", strings.Join(placeholders, ",")))
	}
	if filter.CreatedFrom != nil {
		args = append(args, *filter.CreatedFrom)
		clauses = append(clauses, fmt.Sprintf("created_at >= $%d", len(args)))
	}
	if filter.CreatedTo != nil {
		args = append(args, *filter.CreatedTo)
		clauses = append(clauses, fmt.Sprintf("created_at <= $%d", len(args)))
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = 20
	}
	offset := filter.Offset
	if offset < 0 {
		offset = 0
	}

	query := fmt.Sprintf(`%s WHERE %s ORDER BY created_at DESC LIMIT %d OFFSET %d`,
		base, strings.Join(clauses, " AND "), limit, offset)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.DiagnosisSubmission
	for rows.Next() {
		var submission domain.DiagnosisSubmission
		if err := rows.Scan(
			&submission.ID,
			&submission.DogID,
			&submission.UserID,
			&submission.Snapshot,
			&submission.Input,
			&submission.Diagnosis,
			&submission.Priority,
			&submission.ProtocolID,
			&submission.FinalProtocolID,
			&submission.Status,
			&submission.AssigneeID,
			&submission.CreatedAt,
			&submission.UpdatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, submission)
	}
	return result, rows.Err()
}
