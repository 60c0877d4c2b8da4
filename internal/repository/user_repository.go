package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/canine-care-service/internal/domain"
)

// UserRepository defines persistence access for pet owners.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	Update(ctx context.Context, user *domain.User) error
	GetByID(ctx context.Context, id string) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	GetByCustomerID(ctx context.Context, customerID string) (*domain.User, error)
}

type userRepository struct {
	pool *pgxpool.Pool
}

// NewUserRepository returns a Postgres-backed implementation.
func NewUserRepository(pool *pgxpool.Pool) UserRepository {
	return &userRepository{pool: pool}
}

const userColumns = `id, name, email, password_hash, status,
        stripe_customer_id, stripe_subscription_id, stripe_price_id,
        tier, subscription_status, current_period_end, on_trial,
        payment_method, preferences, created_at, updated_at`

func (r *userRepository) Create(ctx context.Context, user *domain.User) error {
	const query = `
        INSERT INTO users (name, email, password_hash, status, tier, subscription_status, preferences)
        VALUES ($1, $2, $3, $4, $5, $6, $7)
        RETURNING id, created_at, updated_at`

	return r.pool.QueryRow(ctx, query,
		user.Name,
		user.Email,
		user.PasswordHash,
		user.Status,
		user.Tier,
		user.SubscriptionStatus,
		user.Preferences,
	).Scan(&user.ID, &user.CreatedAt, &user.UpdatedAt)
}

func (r *userRepository) Update(ctx context.Context, user *domain.User) error {
	const query = `
        UPDATE users SET name=$1, email=$2, password_hash=$3, status=$4,
            stripe_customer_id=$5, stripe_subscription_id=$6, stripe_price_id=$7,
            tier=$8, subscription_status=$9, current_period_end=$10, on_trial=$11,
            payment_method=$12, preferences=$13, updated_at=NOW()
        WHERE id=$14`

	cmd, err := r.pool.Exec(ctx, query,
		user.Name,
		user.Email,
		user.PasswordHash,
		user.Status,
		user.StripeCustomerID,
		user.StripeSubscriptionID,
		user.StripePriceID,
		user.Tier,
		user.SubscriptionStatus,
		user.CurrentPeriodEnd,
		user.OnTrial,
		user.PaymentMethod,
		user.Preferences,
		user.ID,
	)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *userRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	return r.fetchSingle(ctx, `SELECT `+userColumns+` FROM users WHERE id=$1`, id)
}

func (r *userRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	return r.fetchSingle(ctx, `SELECT `+userColumns+` FROM users WHERE email=$1`, email)
}

func (r *userRepository) GetByCustomerID(ctx context.Context, customerID string) (*domain.User, error) {
	return r.fetchSingle(ctx, `SELECT `+userColumns+` FROM users WHERE stripe_customer_id=$1`, customerID)
}

func (r *userRepository) fetchSingle(ctx context.Context, query string, arg any) (*domain.User, error) {
	var user domain.User
	if err := r.pool.QueryRow(ctx, query, arg).Scan(
		&user.ID,
		&user.Name,
		&user.Email,
		&user.PasswordHash,
		&user.Status,
		&user.StripeCustomerID,
		&user.StripeSubscriptionID,
		&user.StripePriceID,
		&user.Tier,
		&user.SubscriptionStatus,
		&user.CurrentPeriodEnd,
		&user.OnTrial,
		&user.PaymentMethod,
		&user.Preferences,
		&user.CreatedAt,
		&user.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &user, nil
}
