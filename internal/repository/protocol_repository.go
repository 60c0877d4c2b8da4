package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/canine-care-service/internal/domain"
)

// ProtocolRepository stores immutable protocol versions.
type ProtocolRepository interface {
	Create(ctx context.Context, protocol *domain.Protocol) error
	GetByID(ctx context.Context, id string) (*domain.Protocol, error)
	ListByDog(ctx context.Context, dogID string) ([]domain.Protocol, error)
}

type protocolRepository struct {
	pool *pgxpool.Pool
}

// NewProtocolRepository instantiates the repository.
func NewProtocolRepository(pool *pgxpool.Pool) ProtocolRepository {
	return &protocolRepository{pool: pool}
}

func (r *protocolRepository) Create(ctx context.Context, protocol *domain.Protocol) error {
	const query = `
        INSERT INTO protocols (dog_id, version, replaces_protocol_id, breakfast, dinner, supplements, lifestyle_tips)
        VALUES ($1,$2,$3,$4,$5,$6,$7)
        RETURNING id, created_at`
	return r.pool.QueryRow(ctx, query,
		protocol.DogID,
		protocol.Version,
		protocol.ReplacesProtocolID,
		protocol.Meals.Breakfast,
		protocol.Meals.Dinner,
		protocol.Supplements,
		protocol.LifestyleTips,
	).Scan(&protocol.ID, &protocol.CreatedAt)
}

func (r *protocolRepository) GetByID(ctx context.Context, id string) (*domain.Protocol, error) {
	const query = `
        SELECT id, dog_id, version, replaces_protocol_id, breakfast, dinner, supplements, lifestyle_tips, created_at
        FROM protocols WHERE id=$1`
	var protocol domain.Protocol
	if err := r.pool.QueryRow(ctx, query, id).Scan(
		&protocol.ID,
		&protocol.DogID,
		&protocol.Version,
		&protocol.ReplacesProtocolID,
		&protocol.Meals.Breakfast,
		&protocol.Meals.Dinner,
		&protocol.Supplements,
		&protocol.LifestyleTips,
		&protocol.CreatedAt,
	); err != nil {
		return nil, err
	}
	return &protocol, nil
}

// ListByDog returns protocols for a dog ordered by version descending.
func (r *protocolRepository) ListByDog(ctx context.Context, dogID string) ([]domain.Protocol, error) {
	const query = `
        SELECT id, dog_id, version, replaces_protocol_id, breakfast, dinner, supplements, lifestyle_tips, created_at
        FROM protocols WHERE dog_id=$1 ORDER BY version DESC`
	rows, err := r.pool.Query(ctx, query, dogID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.Protocol
	for rows.Next() {
		var protocol domain.Protocol
		if err := rows.Scan(
			&protocol.ID,
			&protocol.DogID,
			&protocol.Version,
			&protocol.ReplacesProtocolID,
			&protocol.Meals.Breakfast,
			&protocol.Meals.Dinner,
			&protocol.Supplements,
			&protocol.LifestyleTips,
			&protocol.CreatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, protocol)
	}
	return result, rows.Err()
}
