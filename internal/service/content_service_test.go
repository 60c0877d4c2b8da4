package service

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/spec-kit/canine-care-service/internal/domain"
	"github.com/spec-kit/canine-care-service/internal/repository"
	"github.com/spec-kit/canine-care-service/internal/repository/memory"
	apperrors "github.com/spec-kit/canine-care-service/pkg/util/errorutil"
)

func seedArticles(t *testing.T, articles repository.ArticleRepository, count int) {
	t.Helper()
	base := time.Date(2026, time.March, 1, 12, 0, 0, 0, time.UTC)
	for i := 0; i < count; i++ {
		publishedAt := base.AddDate(0, 0, i)
		authorID := "author-1"
		if i%2 == 1 {
			authorID = "author-2"
		}
		article := &domain.Article{
			Title:       fmt.Sprintf("Elimination diets part %d", i+1),
			Slug:        fmt.Sprintf("elimination-diets-%d", i+1),
			Summary:     "How to run an elimination diet at home.",
			Content:     "Full guidance text.",
			Category:    "nutrition",
			AuthorID:    &authorID,
			PublishedAt: &publishedAt,
		}
		if i == 0 {
			article.Category = "behavior"
			article.Title = "Separation anxiety basics"
		}
		if err := articles.Create(context.Background(), article); err != nil {
			t.Fatalf("seed article: %v", err)
		}
	}
}

func TestArticleListPagination(t *testing.T) {
	ctx := context.Background()
	articles := memory.NewArticleRepository()
	svc := NewArticleService(articles)
	seedArticles(t, articles, 25)

	page, err := svc.List(ctx, ArticleListQuery{Page: 2, PageSize: 10})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if page.Total != 25 || page.TotalPages != 3 {
		t.Errorf("total = %d pages = %d, want 25/3", page.Total, page.TotalPages)
	}
	if len(page.Items) != 10 || page.Page != 2 {
		t.Errorf("items = %d on page %d", len(page.Items), page.Page)
	}

	// Out-of-range values fall back to defaults.
	page, err = svc.List(ctx, ArticleListQuery{Page: -3, PageSize: 500})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if page.Page != 1 || page.PageSize != 100 {
		t.Errorf("page = %d size = %d, want clamped to 1/100", page.Page, page.PageSize)
	}

	page, err = svc.List(ctx, ArticleListQuery{})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if page.PageSize != 20 {
		t.Errorf("default page size = %d, want 20", page.PageSize)
	}
}

func TestArticleListFilters(t *testing.T) {
	ctx := context.Background()
	articles := memory.NewArticleRepository()
	svc := NewArticleService(articles)
	seedArticles(t, articles, 6)

	byCategory, err := svc.List(ctx, ArticleListQuery{Category: "behavior"})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if byCategory.Total != 1 {
		t.Errorf("behavior total = %d, want 1", byCategory.Total)
	}

	bySearch, err := svc.List(ctx, ArticleListQuery{Search: "separation"})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if bySearch.Total != 1 {
		t.Errorf("search total = %d, want 1", bySearch.Total)
	}

	byAuthor, err := svc.List(ctx, ArticleListQuery{AuthorID: "author-2"})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if byAuthor.Total != 3 {
		t.Errorf("author total = %d, want 3", byAuthor.Total)
	}

	from := time.Date(2026, time.March, 4, 0, 0, 0, 0, time.UTC)
	byDate, err := svc.List(ctx, ArticleListQuery{DateFrom: &from})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if byDate.Total != 3 {
		t.Errorf("date total = %d, want the 3 published after %s", byDate.Total, from.Format(time.DateOnly))
	}
	// Newest published first.
	if len(byDate.Items) > 1 && byDate.Items[0].PublishedAt.Before(*byDate.Items[1].PublishedAt) {
		t.Error("items should be ordered newest first")
	}
}

func TestArticleGetUnknown(t *testing.T) {
	svc := NewArticleService(memory.NewArticleRepository())
	if _, err := svc.Get(context.Background(), "missing"); apperrors.ToDomainError(err).Code != "NOT_FOUND" {
		t.Fatalf("err = %v, want NOT_FOUND", err)
	}
}

func TestFeedbackSubmitValidatesLength(t *testing.T) {
	ctx := context.Background()
	svc := NewFeedbackService(memory.NewFeedbackRepository())

	_, err := svc.Submit(ctx, FeedbackInput{Message: "  too short  "})
	de := apperrors.ToDomainError(err)
	if de == nil || de.Code != "VALIDATION_FAILED" {
		t.Fatalf("err = %v, want VALIDATION_FAILED", err)
	}
	if de.Details["min_length"] != 10 {
		t.Errorf("details = %v, want min_length 10", de.Details)
	}

	userID := "user-1"
	entry, err := svc.Submit(ctx, FeedbackInput{
		UserID:  &userID,
		Name:    " Dana ",
		Email:   "dana@example.com",
		Message: "The weekly meal plans have been great for Bella.",
	})
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if entry.Name != "Dana" || entry.UserID == nil {
		t.Errorf("entry = %+v, want trimmed name and attribution", entry)
	}
}

func TestFeedbackListRequiresStaff(t *testing.T) {
	ctx := context.Background()
	svc := NewFeedbackService(memory.NewFeedbackRepository())
	if _, err := svc.List(ctx, nil, 10, 0); apperrors.ToDomainError(err).Code != "UNAUTHORIZED" {
		t.Fatalf("err = %v, want UNAUTHORIZED", err)
	}
	staff := &domain.StaffMember{ID: "staff-1", Role: domain.StaffRoleReviewer}
	if _, err := svc.List(ctx, staff, 10, 0); err != nil {
		t.Fatalf("List: %v", err)
	}
}
