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

type protocolRepo struct {
	mu   sync.RWMutex
	byID map[string]domain.Protocol
}

// NewProtocolRepository returns a map-backed implementation.
func NewProtocolRepository() repository.ProtocolRepository {
	return &protocolRepo{byID: make(map[string]domain.Protocol)}
}

func (r *protocolRepo) Create(ctx context.Context, protocol *domain.Protocol) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	protocol.ID = newID()
	protocol.CreatedAt = time.Now().UTC()
	r.byID[protocol.ID] = *protocol
	return nil
}

func (r *protocolRepo) GetByID(ctx context.Context, id string) (*domain.Protocol, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	protocol, ok := r.byID[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return &protocol, nil
}

func (r *protocolRepo) ListByDog(ctx context.Context, dogID string) ([]domain.Protocol, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var protocols []domain.Protocol
	for _, protocol := range r.byID {
		if protocol.DogID == dogID {
			protocols = append(protocols, protocol)
		}
	}
	sort.SliceStable(protocols, func(i, j int) bool {
		return protocols[i].Version > protocols[j].Version
	})
	return protocols, nil
}
