package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/canine-care-service/internal/domain"
	"github.com/spec-kit/canine-care-service/internal/repository"
)

type staffRepo struct {
	mu   sync.RWMutex
	byID map[string]domain.StaffMember
}

// NewStaffRepository returns a map-backed implementation.
func NewStaffRepository() repository.StaffRepository {
	return &staffRepo{byID: make(map[string]domain.StaffMember)}
}

func (r *staffRepo) Create(ctx context.Context, staff *domain.StaffMember) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	staff.ID = newID()
	staff.CreatedAt = time.Now().UTC()
	staff.UpdatedAt = staff.CreatedAt
	r.byID[staff.ID] = *staff
	return nil
}

func (r *staffRepo) Update(ctx context.Context, staff *domain.StaffMember) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.byID[staff.ID]; !ok {
		return pgx.ErrNoRows
	}
	staff.UpdatedAt = time.Now().UTC()
	r.byID[staff.ID] = *staff
	return nil
}

func (r *staffRepo) GetByID(ctx context.Context, id string) (*domain.StaffMember, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	staff, ok := r.byID[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return &staff, nil
}

func (r *staffRepo) GetByEmail(ctx context.Context, email string) (*domain.StaffMember, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, staff := range r.byID {
		if strings.EqualFold(staff.Email, email) {
			found := staff
			return &found, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (r *staffRepo) List(ctx context.Context, limit, offset int) ([]domain.StaffMember, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	all := make([]domain.StaffMember, 0, len(r.byID))
	for _, staff := range r.byID {
		all = append(all, staff)
	}
	sort.SliceStable(all, func(i, j int) bool {
		return all[i].CreatedAt.Before(all[j].CreatedAt)
	})
	return page(all, limit, offset, 50), nil
}
