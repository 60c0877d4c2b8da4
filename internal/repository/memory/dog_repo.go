package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/canine-care-service/internal/domain"
	"github.com/spec-kit/canine-care-service/internal/repository"
)

type dogRepo struct {
	mu   sync.RWMutex
	byID map[string]domain.Dog
}

// NewDogRepository returns a map-backed implementation.
func NewDogRepository() repository.DogRepository {
	return &dogRepo{byID: make(map[string]domain.Dog)}
}

func (r *dogRepo) Create(ctx context.Context, dog *domain.Dog) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	dog.ID = newID()
	dog.CreatedAt = time.Now().UTC()
	dog.UpdatedAt = dog.CreatedAt
	r.byID[dog.ID] = *dog
	return nil
}

func (r *dogRepo) Update(ctx context.Context, dog *domain.Dog) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.byID[dog.ID]; !ok {
		return pgx.ErrNoRows
	}
	dog.UpdatedAt = time.Now().UTC()
	r.byID[dog.ID] = *dog
	return nil
}

func (r *dogRepo) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.byID[id]; !ok {
		return pgx.ErrNoRows
	}
	delete(r.byID, id)
	return nil
}

func (r *dogRepo) GetByID(ctx context.Context, id string) (*domain.Dog, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	dog, ok := r.byID[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return &dog, nil
}

func (r *dogRepo) ListByOwner(ctx context.Context, ownerID string) ([]domain.Dog, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var dogs []domain.Dog
	for _, dog := range r.byID {
		if dog.OwnerID == ownerID {
			dogs = append(dogs, dog)
		}
	}
	// Oldest first, matching insertion order in the owner's roster.
	sort.SliceStable(dogs, func(i, j int) bool {
		return dogs[i].CreatedAt.Before(dogs[j].CreatedAt)
	})
	return dogs, nil
}
