package handlers

import (
	"net/http"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/canine-care-service/internal/api/dto"
	"github.com/spec-kit/canine-care-service/internal/auth"
	"github.com/spec-kit/canine-care-service/internal/domain"
	"github.com/spec-kit/canine-care-service/internal/service"
)

// ContentHandler exposes the article catalogue and the feedback endpoint.
type ContentHandler struct {
	articles *service.ArticleService
	feedback *service.FeedbackService
}

// NewContentHandler constructs handler.
func NewContentHandler(articleService *service.ArticleService, feedbackService *service.FeedbackService) *ContentHandler {
	return &ContentHandler{articles: articleService, feedback: feedbackService}
}

// ListArticles handles GET /admin/articles with catalogue filters.
func (h *ContentHandler) ListArticles(c *fiber.Ctx) error {
	if _, err := requireStaffPrincipal(c); err != nil {
		return err
	}
	query := service.ArticleListQuery{
		Page:     parseIntQuery(c, "page", 1),
		PageSize: parseIntQuery(c, "page_size", 20),
		Search:   c.Query("search"),
		Category: c.Query("category"),
		AuthorID: c.Query("author_id"),
	}
	if from := c.Query("date_from"); from != "" {
		if parsed, err := time.Parse(time.RFC3339, from); err == nil {
			query.DateFrom = &parsed
		}
	}
	if to := c.Query("date_to"); to != "" {
		if parsed, err := time.Parse(time.RFC3339, to); err == nil {
			query.DateTo = &parsed
		}
	}

	page, err := h.articles.List(c.Context(), query)
	if err != nil {
		return err
	}
	items := make([]dto.ArticleResponse, 0, len(page.Items))
	for i := range page.Items {
		items = append(items, articleResponse(&page.Items[i], false))
	}
	return c.JSON(fiber.Map{"data": dto.ArticleListResponse{
		Items:      items,
		Total:      page.Total,
		Page:       page.Page,
		PageSize:   page.PageSize,
		TotalPages: page.TotalPages,
	}})
}

// GetArticle handles GET /admin/articles/:id.
func (h *ContentHandler) GetArticle(c *fiber.Ctx) error {
	if _, err := requireStaffPrincipal(c); err != nil {
		return err
	}
	article, err := h.articles.Get(c.Context(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": articleResponse(article, true)})
}

// SubmitFeedback handles POST /feedback. Authentication is optional; when a
// user token is present the entry is attributed to them.
func (h *ContentHandler) SubmitFeedback(c *fiber.Ctx) error {
	var req dto.FeedbackRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, "invalid payload")
	}

	input := service.FeedbackInput{
		Name:    req.Name,
		Email:   req.Email,
		Message: req.Message,
		Meta:    req.Meta,
	}
	if principal, ok := auth.PrincipalFromContext(c); ok && principal.User != nil {
		input.UserID = &principal.User.ID
	}

	entry, err := h.feedback.Submit(c.Context(), input)
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": feedbackResponse(entry)})
}

// ListFeedback handles GET /admin/feedback.
func (h *ContentHandler) ListFeedback(c *fiber.Ctx) error {
	staff, err := requireStaffPrincipal(c)
	if err != nil {
		return err
	}
	limit, offset := pageOffsetLimit(c, 50)
	entries, err := h.feedback.List(c.Context(), staff, limit, offset)
	if err != nil {
		return err
	}
	items := make([]dto.FeedbackResponse, 0, len(entries))
	for i := range entries {
		items = append(items, feedbackResponse(&entries[i]))
	}
	return c.JSON(fiber.Map{"data": items})
}

func articleResponse(article *domain.Article, includeContent bool) dto.ArticleResponse {
	resp := dto.ArticleResponse{
		ID:          article.ID,
		Slug:        article.Slug,
		Title:       article.Title,
		Summary:     article.Summary,
		Category:    article.Category,
		CoverImage:  article.CoverImage,
		AuthorID:    article.AuthorID,
		Tags:        article.Tags,
		PublishedAt: article.PublishedAt,
		CreatedAt:   article.CreatedAt,
	}
	if includeContent {
		resp.Content = article.Content
	}
	return resp
}

func feedbackResponse(entry *domain.Feedback) dto.FeedbackResponse {
	return dto.FeedbackResponse{
		ID:        entry.ID,
		UserID:    entry.UserID,
		Name:      entry.Name,
		Email:     entry.Email,
		Message:   entry.Message,
		Meta:      entry.Meta,
		CreatedAt: entry.CreatedAt,
	}
}
