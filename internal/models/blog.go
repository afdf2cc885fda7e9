package models

import "time"

// BlogPost is a news/blog article. A post is publicly visible once it is
// active and PublishedAt is set in the past.
type BlogPost struct {
	ID          string     `db:"id" json:"id"`
	Title       string     `db:"title" json:"title"`
	Slug        string     `db:"slug" json:"slug"`
	Excerpt     *string    `db:"excerpt" json:"excerpt,omitempty"`
	Content     string     `db:"content" json:"content"`
	CoverImage  *string    `db:"cover_image" json:"coverImage,omitempty"`
	AuthorID    string     `db:"author_id" json:"authorId"`
	PublishedAt *time.Time `db:"published_at" json:"publishedAt,omitempty"`
	IsActive    bool       `db:"is_active" json:"isActive"`
	IsDeleted   bool       `db:"is_deleted" json:"-"`
	CreatedAt   time.Time  `db:"created_at" json:"createdAt"`
	UpdatedAt   time.Time  `db:"updated_at" json:"updatedAt"`
}

// BlogFilter captures list criteria for blog posts.
type BlogFilter struct {
	Active        *bool
	PublishedOnly bool
	AuthorID      *string
	Search        string
	Page          int
	PageSize      int
	SortBy        string
	SortOrder     string
}
