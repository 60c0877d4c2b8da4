package domain

import "time"

// Article is a staff-authored content piece.
type Article struct {
	ID          string
	Slug        string
	Title       string
	Summary     string
	Content     string
	Category    string
	CoverImage  string
	AuthorID    *string
	Tags        []string
	PublishedAt *time.Time
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
