package memory

import (
	"context"
	"sync"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/canine-care-service/internal/domain"
	"github.com/spec-kit/canine-care-service/internal/repository"
)

type submissionRepo struct {
	mu   sync.RWMutex
	byID map[string]domain.DiagnosisSubmission
}

// NewSubmissionRepository returns a map-backed implementation.
func NewSubmissionRepository() repository.SubmissionRepository {
	return &submissionRepo{byID: make(map[string]domain.DiagnosisSubmission)}
}

func (r *submissionRepo) Create(ctx context.Context, submission *domain.DiagnosisSubmission) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	submission.ID = newID()
	submission.CreatedAt = time.Now().UTC()
	submission.UpdatedAt = submission.CreatedAt
	r.byID[submission.ID] = *submission
	return nil
}

func (r *submissionRepo) Update(ctx context.Context, submission *domain.DiagnosisSubmission) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored, ok := r.byID[submission.ID]
	if !ok {
		return pgx.ErrNoRows
	}
	// Only the review fields are mutable; snapshot, input, and the generated
	// diagnosis stay as written.
	stored.Status = submission.Status
	stored.AssigneeID = submission.AssigneeID
	stored.FinalProtocolID = submission.FinalProtocolID
	stored.UpdatedAt = time.Now().UTC()
	r.byID[stored.ID] = stored
	submission.UpdatedAt = stored.UpdatedAt
	return nil
}

func (r *submissionRepo) GetByID(ctx context.Context, id string) (*domain.DiagnosisSubmission, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	submission, ok := r.byID[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return &submission, nil
}

func (r *submissionRepo) ListWithFilter(ctx context.Context, filter repository.SubmissionFilter) ([]domain.DiagnosisSubmission, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var matched []domain.DiagnosisSubmission
	for _, submission := range r.byID {
		if !matchesSubmission(submission, filter) {
			continue
		}
		matched = append(matched, submission)
	}
	sortNewestFirst(matched, func(s domain.DiagnosisSubmission) time.Time { return s.CreatedAt })
	return page(matched, filter.Limit, filter.Offset, 20), nil
}

func matchesSubmission(submission domain.DiagnosisSubmission, filter repository.SubmissionFilter) bool {
	if filter.UserID != nil && submission.UserID != *filter.UserID {
		return false
	}
	if filter.DogID != nil && submission.DogID != *filter.DogID {
		return false
	}
	if filter.AssigneeID != nil {
		if submission.AssigneeID == nil || *submission.AssigneeID != *filter.AssigneeID {
			return false
		}
	}
	if len(filter.Statuses) > 0 && !containsStatus(filter.Statuses, submission.Status) {
		return false
	}
	if len(filter.Priorities) > 0 && !containsPriority(filter.Priorities, submission.Priority) {
		return false
	}
	if filter.CreatedFrom != nil && submission.CreatedAt.Before(*filter.CreatedFrom) {
		return false
	}
	if filter.CreatedTo != nil && submission.CreatedAt.After(*filter.CreatedTo) {
		return false
	}
	return true
}

func containsStatus(statuses []domain.SubmissionStatus, status domain.SubmissionStatus) bool {
	for _, candidate := range statuses {
		if candidate == status {
			return true
		}
	}
	return false
}

func containsPriority(priorities []domain.SubmissionPriority, priority domain.SubmissionPriority) bool {
	for _, candidate := range priorities {
		if candidate == priority {
			return true
		}
	}
	return false
}
