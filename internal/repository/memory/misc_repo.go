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

type auditLogRepo struct {
	mu      sync.RWMutex
	entries []domain.AuditLogEntry
}

// NewAuditLogRepository returns a map-backed implementation.
func NewAuditLogRepository() repository.AuditLogRepository {
	return &auditLogRepo{}
}

func (r *auditLogRepo) Append(ctx context.Context, entry *domain.AuditLogEntry) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	entry.ID = newID()
	entry.CreatedAt = time.Now().UTC()
	r.entries = append(r.entries, *entry)
	return nil
}

func (r *auditLogRepo) List(ctx context.Context, limit, offset int) ([]domain.AuditLogEntry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	entries := make([]domain.AuditLogEntry, len(r.entries))
	copy(entries, r.entries)
	sortNewestFirst(entries, func(e domain.AuditLogEntry) time.Time { return e.CreatedAt })
	return page(entries, limit, offset, 50), nil
}

type notificationRepo struct {
	mu   sync.RWMutex
	byID map[string]domain.Notification
}

// NewNotificationRepository returns a map-backed implementation.
func NewNotificationRepository() repository.NotificationRepository {
	return &notificationRepo{byID: make(map[string]domain.Notification)}
}

func (r *notificationRepo) Create(ctx context.Context, notification *domain.Notification) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	notification.ID = newID()
	notification.CreatedAt = time.Now().UTC()
	r.byID[notification.ID] = *notification
	return nil
}

func (r *notificationRepo) MarkRead(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	notification, ok := r.byID[id]
	if !ok {
		return pgx.ErrNoRows
	}
	notification.Read = true
	r.byID[id] = notification
	return nil
}

func (r *notificationRepo) List(ctx context.Context, unreadOnly bool, limit, offset int) ([]domain.Notification, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var notifications []domain.Notification
	for _, notification := range r.byID {
		if unreadOnly && notification.Read {
			continue
		}
		notifications = append(notifications, notification)
	}
	sortNewestFirst(notifications, func(n domain.Notification) time.Time { return n.CreatedAt })
	return page(notifications, limit, offset, 50), nil
}

type feedbackRepo struct {
	mu      sync.RWMutex
	entries []domain.Feedback
}

// NewFeedbackRepository returns a map-backed implementation.
func NewFeedbackRepository() repository.FeedbackRepository {
	return &feedbackRepo{}
}

func (r *feedbackRepo) Create(ctx context.Context, feedback *domain.Feedback) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	feedback.ID = newID()
	feedback.CreatedAt = time.Now().UTC()
	r.entries = append(r.entries, *feedback)
	return nil
}

func (r *feedbackRepo) List(ctx context.Context, limit, offset int) ([]domain.Feedback, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	entries := make([]domain.Feedback, len(r.entries))
	copy(entries, r.entries)
	sortNewestFirst(entries, func(f domain.Feedback) time.Time { return f.CreatedAt })
	return page(entries, limit, offset, 50), nil
}

type paymentEventRepo struct {
	mu      sync.RWMutex
	entries []domain.PaymentEvent
}

// NewPaymentEventRepository returns a map-backed implementation.
func NewPaymentEventRepository() repository.PaymentEventRepository {
	return &paymentEventRepo{}
}

func (r *paymentEventRepo) Create(ctx context.Context, event *domain.PaymentEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	event.ID = newID()
	event.CreatedAt = time.Now().UTC()
	r.entries = append(r.entries, *event)
	return nil
}

func (r *paymentEventRepo) ListByUser(ctx context.Context, userID string, limit, offset int) ([]domain.PaymentEvent, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var events []domain.PaymentEvent
	for _, event := range r.entries {
		if event.UserID != nil && *event.UserID == userID {
			events = append(events, event)
		}
	}
	sortNewestFirst(events, func(e domain.PaymentEvent) time.Time { return e.CreatedAt })
	return page(events, limit, offset, 50), nil
}

type articleRepo struct {
	mu   sync.RWMutex
	byID map[string]domain.Article
}

// NewArticleRepository returns a map-backed implementation.
func NewArticleRepository() repository.ArticleRepository {
	return &articleRepo{byID: make(map[string]domain.Article)}
}

func (r *articleRepo) Create(ctx context.Context, article *domain.Article) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	article.ID = newID()
	article.CreatedAt = time.Now().UTC()
	article.UpdatedAt = article.CreatedAt
	r.byID[article.ID] = *article
	return nil
}

func (r *articleRepo) Update(ctx context.Context, article *domain.Article) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.byID[article.ID]; !ok {
		return pgx.ErrNoRows
	}
	article.UpdatedAt = time.Now().UTC()
	r.byID[article.ID] = *article
	return nil
}

func (r *articleRepo) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.byID[id]; !ok {
		return pgx.ErrNoRows
	}
	delete(r.byID, id)
	return nil
}

func (r *articleRepo) GetByID(ctx context.Context, id string) (*domain.Article, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	article, ok := r.byID[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return &article, nil
}

func (r *articleRepo) GetBySlug(ctx context.Context, slug string) (*domain.Article, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, article := range r.byID {
		if article.Slug == slug {
			found := article
			return &found, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (r *articleRepo) ListWithFilter(ctx context.Context, filter repository.ArticleFilter) ([]domain.Article, int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var matched []domain.Article
	for _, article := range r.byID {
		if !matchesArticle(article, filter) {
			continue
		}
		matched = append(matched, article)
	}
	sortNewestFirst(matched, func(a domain.Article) time.Time {
		if a.PublishedAt != nil {
			return *a.PublishedAt
		}
		return a.CreatedAt
	})
	total := len(matched)
	return page(matched, filter.Limit, filter.Offset, 20), total, nil
}

func matchesArticle(article domain.Article, filter repository.ArticleFilter) bool {
	if filter.SearchTerm != nil && strings.TrimSpace(*filter.SearchTerm) != "" {
		needle := strings.ToLower(strings.TrimSpace(*filter.SearchTerm))
		title := strings.ToLower(article.Title)
		summary := strings.ToLower(article.Summary)
		if !strings.Contains(title, needle) && !strings.Contains(summary, needle) {
			return false
		}
	}
	if filter.Category != nil && *filter.Category != "" && article.Category != *filter.Category {
		return false
	}
	if filter.AuthorID != nil {
		if article.AuthorID == nil || *article.AuthorID != *filter.AuthorID {
			return false
		}
	}
	if filter.PublishedFrom != nil {
		if article.PublishedAt == nil || article.PublishedAt.Before(*filter.PublishedFrom) {
			return false
		}
	}
	if filter.PublishedTo != nil {
		if article.PublishedAt == nil || article.PublishedAt.After(*filter.PublishedTo) {
			return false
		}
	}
	return true
}
