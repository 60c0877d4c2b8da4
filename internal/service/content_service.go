package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/canine-care-service/internal/domain"
	"github.com/spec-kit/canine-care-service/internal/repository"
	apperrors "github.com/spec-kit/canine-care-service/pkg/util/errorutil"
)

// ArticleService serves the admin article catalogue.
type ArticleService struct {
	articles repository.ArticleRepository
}

// NewArticleService constructs the service.
func NewArticleService(articles repository.ArticleRepository) *ArticleService {
	return &ArticleService{articles: articles}
}

// ArticleListQuery carries the catalogue filters.
type ArticleListQuery struct {
	Page     int
	PageSize int
	Search   string
	Category string
	AuthorID string
	DateFrom *time.Time
	DateTo   *time.Time
}

// ArticlePage is one page of results plus pagination totals.
type ArticlePage struct {
	Items      []domain.Article
	Total      int
	Page       int
	PageSize   int
	TotalPages int
}

// List returns a filtered page of articles.
func (s *ArticleService) List(ctx context.Context, query ArticleListQuery) (*ArticlePage, error) {
	page := query.Page
	if page < 1 {
		page = 1
	}
	pageSize := query.PageSize
	if pageSize < 1 {
		pageSize = 20
	}
	if pageSize > 100 {
		pageSize = 100
	}

	filter := repository.ArticleFilter{
		Limit:  pageSize,
		Offset: (page - 1) * pageSize,
	}
	if search := strings.TrimSpace(query.Search); search != "" {
		filter.SearchTerm = &search
	}
	if query.Category != "" {
		category := query.Category
		filter.Category = &category
	}
	if query.AuthorID != "" {
		authorID := query.AuthorID
		filter.AuthorID = &authorID
	}
	filter.PublishedFrom = query.DateFrom
	filter.PublishedTo = query.DateTo

	items, total, err := s.articles.ListWithFilter(ctx, filter)
	if err != nil {
		return nil, err
	}
	totalPages := (total + pageSize - 1) / pageSize
	return &ArticlePage{
		Items:      items,
		Total:      total,
		Page:       page,
		PageSize:   pageSize,
		TotalPages: totalPages,
	}, nil
}

// Get fetches one article by ID.
func (s *ArticleService) Get(ctx context.Context, id string) (*domain.Article, error) {
	article, err := s.articles.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("article", map[string]any{"article_id": id})
		}
		return nil, err
	}
	return article, nil
}

// FeedbackService records user feedback submissions.
type FeedbackService struct {
	feedback repository.FeedbackRepository
}

// NewFeedbackService constructs the service.
func NewFeedbackService(feedback repository.FeedbackRepository) *FeedbackService {
	return &FeedbackService{feedback: feedback}
}

// FeedbackInput is a feedback submission payload.
type FeedbackInput struct {
	UserID  *string
	Name    string
	Email   string
	Message string
	Meta    map[string]any
}

const minFeedbackMessageLen = 10

// Submit validates and stores one feedback entry.
func (s *FeedbackService) Submit(ctx context.Context, input FeedbackInput) (*domain.Feedback, error) {
	message := strings.TrimSpace(input.Message)
	if len(message) < minFeedbackMessageLen {
		return nil, apperrors.NewValidationError("message must be at least 10 characters", map[string]any{
			"min_length": minFeedbackMessageLen,
		})
	}
	entry := &domain.Feedback{
		UserID:  input.UserID,
		Name:    strings.TrimSpace(input.Name),
		Email:   strings.TrimSpace(input.Email),
		Message: message,
		Meta:    input.Meta,
	}
	if err := s.feedback.Create(ctx, entry); err != nil {
		return nil, err
	}
	return entry, nil
}

// List returns stored feedback, newest first.
func (s *FeedbackService) List(ctx context.Context, actor *domain.StaffMember, limit, offset int) ([]domain.Feedback, error) {
	if actor == nil {
		return nil, apperrors.NewUnauthorized("staff required")
	}
	return s.feedback.List(ctx, limit, offset)
}
