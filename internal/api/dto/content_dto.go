package dto

import "time"

// ArticleResponse is one published content piece.
type ArticleResponse struct {
	ID          string     `json:"id"`
	Slug        string     `json:"slug"`
	Title       string     `json:"title"`
	Summary     string     `json:"summary"`
	Content     string     `json:"content,omitempty"`
	Category    string     `json:"category"`
	CoverImage  string     `json:"cover_image"`
	AuthorID    *string    `json:"author_id"`
	Tags        []string   `json:"tags"`
	PublishedAt *time.Time `json:"published_at"`
	CreatedAt   time.Time  `json:"created_at"`
}

// ArticleListResponse is one page of articles plus pagination totals.
type ArticleListResponse struct {
	Items      []ArticleResponse `json:"items"`
	Total      int               `json:"total"`
	Page       int               `json:"page"`
	PageSize   int               `json:"page_size"`
	TotalPages int               `json:"total_pages"`
}

// FeedbackRequest is a feedback submission; sender fields are optional.
type FeedbackRequest struct {
	Name    string         `json:"name"`
	Email   string         `json:"email"`
	Message string         `json:"message"`
	Meta    map[string]any `json:"meta"`
}

// FeedbackResponse echoes a stored feedback entry.
type FeedbackResponse struct {
	ID        string         `json:"id"`
	UserID    *string        `json:"user_id"`
	Name      string         `json:"name"`
	Email     string         `json:"email"`
	Message   string         `json:"message"`
	Meta      map[string]any `json:"meta"`
	CreatedAt time.Time      `json:"created_at"`
}
