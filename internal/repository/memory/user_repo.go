package memory

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/canine-care-service/internal/domain"
	"github.com/spec-kit/canine-care-service/internal/repository"
)

type userRepo struct {
	mu   sync.RWMutex
	byID map[string]domain.User
}

// NewUserRepository returns a map-backed implementation.
func NewUserRepository() repository.UserRepository {
	return &userRepo{byID: make(map[string]domain.User)}
}

func (r *userRepo) Create(ctx context.Context, user *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	user.ID = newID()
	user.CreatedAt = time.Now().UTC()
	user.UpdatedAt = user.CreatedAt
	r.byID[user.ID] = *user
	return nil
}

func (r *userRepo) Update(ctx context.Context, user *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.byID[user.ID]; !ok {
		return pgx.ErrNoRows
	}
	user.UpdatedAt = time.Now().UTC()
	r.byID[user.ID] = *user
	return nil
}

func (r *userRepo) GetByID(ctx context.Context, id string) (*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	user, ok := r.byID[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return &user, nil
}

func (r *userRepo) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, user := range r.byID {
		if strings.EqualFold(user.Email, email) {
			found := user
			return &found, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (r *userRepo) GetByCustomerID(ctx context.Context, customerID string) (*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, user := range r.byID {
		if user.StripeCustomerID != nil && *user.StripeCustomerID == customerID {
			found := user
			return &found, nil
		}
	}
	return nil, pgx.ErrNoRows
}
