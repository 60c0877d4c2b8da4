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

// ArticleFilter captures admin catalogue search parameters.
type ArticleFilter struct {
	SearchTerm    *string
	Category      *string
	AuthorID      *string
	PublishedFrom *time.Time
	PublishedTo   *time.Time
	Limit         int
	Offset        int
}

// ArticleRepository encapsulates article persistence.
type ArticleRepository interface {
	Create(ctx context.Context, article *domain.Article) error
	Update(ctx context.Context, article *domain.Article) error
	Delete(ctx context.Context, id string) error
	GetByID(ctx context.Context, id string) (*domain.Article, error)
	GetBySlug(ctx context.Context, slug string) (*domain.Article, error)
	ListWithFilter(ctx context.Context, filter ArticleFilter) ([]domain.Article, int, error)
}

type articleRepository struct {
	pool *pgxpool.Pool
}

// NewArticleRepository instantiates repository.
func NewArticleRepository(pool *pgxpool.Pool) ArticleRepository {
	return &articleRepository{pool: pool}
}

const articleColumns = `id, slug, title, summary, content, category, cover_image, author_id, tags, published_at, created_at, updated_at`

func (r *articleRepository) Create(ctx context.Context, article *domain.Article) error {
	const query = `
        INSERT INTO articles (slug, title, summary, content, category, cover_image, author_id, tags, published_at)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
        RETURNING id, created_at, updated_at`
	return r.pool.QueryRow(ctx, query,
		article.Slug,
		article.Title,
		article.Summary,
		article.Content,
		article.Category,
		article.CoverImage,
		article.AuthorID,
		article.Tags,
		article.PublishedAt,
	).Scan(&article.ID, &article.CreatedAt, &article.UpdatedAt)
}

func (r *articleRepository) Update(ctx context.Context, article *domain.Article) error {
	const query = `
        UPDATE articles SET slug=$1, title=$2, summary=$3, content=$4, category=$5, cover_image=$6,
            author_id=$7, tags=$8, published_at=$9, updated_at=NOW()
        WHERE id=$10`
	cmd, err := r.pool.Exec(ctx, query,
		article.Slug,
		article.Title,
		article.Summary,
		article.Content,
		article.Category,
		article.CoverImage,
		article.AuthorID,
		article.Tags,
		article.PublishedAt,
		article.ID,
	)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *articleRepository) Delete(ctx context.Context, id string) error {
	cmd, err := r.pool.Exec(ctx, `DELETE FROM articles WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *articleRepository) GetByID(ctx context.Context, id string) (*domain.Article, error) {
	query := fmt.Sprintf(`SELECT %s FROM articles WHERE id=$1`, articleColumns)
	return r.fetchSingle(ctx, query, id)
}

func (r *articleRepository) GetBySlug(ctx context.Context, slug string) (*domain.Article, error) {
	query := fmt.Sprintf(`SELECT %s FROM articles WHERE slug=$1`, articleColumns)
	return r.fetchSingle(ctx, query, slug)
}

func (r *articleRepository) fetchSingle(ctx context.Context, query string, arg any) (*domain.Article, error) {
	var article domain.Article
	if err := r.pool.QueryRow(ctx, query, arg).Scan(
		&article.ID,
		&article.Slug,
		&article.Title,
		&article.Summary,
		&article.Content,
		&article.Category,
		&article.CoverImage,
		&article.AuthorID,
		&article.Tags,
		&article.PublishedAt,
		&article.CreatedAt,
		&article.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &article, nil
}

// ListWithFilter returns the matching page plus the total match count so the
// caller can compute page numbers.
func (r *articleRepository) ListWithFilter(ctx context.Context, filter ArticleFilter) ([]domain.Article, int, error) {
	clauses := []string{"1=1"}
	args := []any{}

	if filter.SearchTerm != nil && strings.TrimSpace(*filter.SearchTerm) != "" {
		search := "%" + strings.ToLower(strings.TrimSpace(*filter.SearchTerm)) + "%"
		args = append(args, search)
		placeholder := fmt.Sprintf("$%d", len(args))
		clauses = append(clauses, fmt.Sprintf("(LOWER(title) LIKE %s OR LOWER(summary) LIKE %s)", placeholder, placeholder))
	}
	if filter.Category != nil && *filter.Category != "" {
		args = append(args, *filter.Category)
		clauses = append(clauses, fmt.Sprintf("category=$%d", len(args)))
	}
	if filter.AuthorID != nil {
		args = append(args, *filter.AuthorID)
		clauses = append(clauses, fmt.Sprintf("author_id=$%d", len(args)))
	}
	if filter.PublishedFrom != nil {
		args = append(args, *filter.PublishedFrom)
		clauses = append(clauses, fmt.Sprintf("published_at >= $%d", len(args)))
	}
	if filter.PublishedTo != nil {
		args = append(args, *filter.PublishedTo)
		clauses = append(clauses, fmt.Sprintf("published_at <= $%d", len(args)))
	}

	where := strings.Join(clauses, " AND ")

	var total int
	countQuery := fmt.Sprintf(`SELECT COUNT(*) FROM articles WHERE %s`, where)
	if err := r.pool.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = 20
	}
	offset := filter.Offset
	if offset < 0 {
		offset = 0
	}

	query := fmt.Sprintf(`SELECT %s FROM articles WHERE %s ORDER BY published_at DESC NULLS LAST, created_at DESC LIMIT %d OFFSET %d`,
		articleColumns, where, limit, offset)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var result []domain.Article
	for rows.Next() {
		var article domain.Article
		if err := rows.Scan(
			&article.ID,
			&article.Slug,
			&article.Title,
			&article.Summary,
			&article.Content,
			&article.Category,
			&article.CoverImage,
			&article.AuthorID,
			&article.Tags,
			&article.PublishedAt,
			&article.CreatedAt,
			&article.UpdatedAt,
		); err != nil {
			return nil, 0, err
		}
		result = append(result, article)
	}
	return result, total, rows.Err()
}
