package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/canine-care-service/internal/domain"
)

// DogRepository encapsulates dog persistence.
type DogRepository interface {
	Create(ctx context.Context, dog *domain.Dog) error
	Update(ctx context.Context, dog *domain.Dog) error
	Delete(ctx context.Context, id string) error
	GetByID(ctx context.Context, id string) (*domain.Dog, error)
	ListByOwner(ctx context.Context, ownerID string) ([]domain.Dog, error)
}

type dogRepository struct {
	pool *pgxpool.Pool
}

// NewDogRepository instantiates the repository.
func NewDogRepository(pool *pgxpool.Pool) DogRepository {
	return &dogRepository{pool: pool}
}

const dogColumns = `id, owner_id, name, breed, sex, date_of_birth, weight_kg,
        diet_notes, environment_notes, behavior_notes, symptoms,
        last_protocol_id, last_submission_id, active_flag, created_at, updated_at`

func (r *dogRepository) Create(ctx context.Context, dog *domain.Dog) error {
	const query = `
        INSERT INTO dogs (owner_id, name, breed, sex, date_of_birth, weight_kg,
            diet_notes, environment_notes, behavior_notes, symptoms, active_flag)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)
        RETURNING id, created_at, updated_at`
	return r.pool.QueryRow(ctx, query,
		dog.OwnerID,
		dog.Name,
		dog.Breed,
		dog.Sex,
		dog.DateOfBirth,
		dog.WeightKG,
		dog.DietNotes,
		dog.EnvironmentNotes,
		dog.BehaviorNotes,
		dog.Symptoms,
		dog.Active,
	).Scan(&dog.ID, &dog.CreatedAt, &dog.UpdatedAt)
}

func (r *dogRepository) Update(ctx context.Context, dog *domain.Dog) error {
	const query = `
        UPDATE dogs SET name=$1, breed=$2, sex=$3, date_of_birth=$4, weight_kg=$5,
            diet_notes=$6, environment_notes=$7, behavior_notes=$8, symptoms=$9,
            last_protocol_id=$10, last_submission_id=$11, active_flag=$12, updated_at=NOW()
        WHERE id=$13`
	cmd, err := r.pool.Exec(ctx, query,
		dog.Name,
		dog.Breed,
		dog.Sex,
		dog.DateOfBirth,
		dog.WeightKG,
		dog.DietNotes,
		dog.EnvironmentNotes,
		dog.BehaviorNotes,
		dog.Symptoms,
		dog.LastProtocolID,
		dog.LastSubmissionID,
		dog.Active,
		dog.ID,
	)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *dogRepository) Delete(ctx context.Context, id string) error {
	cmd, err := r.pool.Exec(ctx, `DELETE FROM dogs WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *dogRepository) GetByID(ctx context.Context, id string) (*domain.Dog, error) {
	var dog domain.Dog
	if err := r.pool.QueryRow(ctx, `SELECT `+dogColumns+` FROM dogs WHERE id=$1`, id).Scan(
		&dog.ID,
		&dog.OwnerID,
		&dog.Name,
		&dog.Breed,
		&dog.Sex,
		&dog.DateOfBirth,
		&dog.WeightKG,
		&dog.DietNotes,
		&dog.EnvironmentNotes,
		&dog.BehaviorNotes,
		&dog.Symptoms,
		&dog.LastProtocolID,
		&dog.LastSubmissionID,
		&dog.Active,
		&dog.CreatedAt,
		&dog.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &dog, nil
}

func (r *dogRepository) ListByOwner(ctx context.Context, ownerID string) ([]domain.Dog, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+dogColumns+` FROM dogs WHERE owner_id=$1 ORDER BY created_at ASC`, ownerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.Dog
	for rows.Next() {
		var dog domain.Dog
		if err := rows.Scan(
			&dog.ID,
			&dog.OwnerID,
			&dog.Name,
			&dog.Breed,
			&dog.Sex,
			&dog.DateOfBirth,
			&dog.WeightKG,
			&dog.DietNotes,
			&dog.EnvironmentNotes,
			&dog.BehaviorNotes,
			&dog.Symptoms,
			&dog.LastProtocolID,
			&dog.LastSubmissionID,
			&dog.Active,
			&dog.CreatedAt,
			&dog.UpdatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, dog)
	}
	return result, rows.Err()
}
