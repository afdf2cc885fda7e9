package models

import "time"

// Project represents a completed or ongoing construction project shown on the
// public site.
type Project struct {
	ID          string    `db:"id" json:"id"`
	Title       string    `db:"title" json:"title"`
	Slug        string    `db:"slug" json:"slug"`
	Summary     *string   `db:"summary" json:"summary,omitempty"`
	Description *string   `db:"description" json:"description,omitempty"`
	Client      *string   `db:"client" json:"client,omitempty"`
	Location    *string   `db:"location" json:"location,omitempty"`
	Year        *int      `db:"year" json:"year,omitempty"`
	ServiceID   *string   `db:"service_id" json:"serviceId,omitempty"`
	CoverImage  *string   `db:"cover_image" json:"coverImage,omitempty"`
	SortOrder   int       `db:"sort_order" json:"sortOrder"`
	IsActive    bool      `db:"is_active" json:"isActive"`
	IsDeleted   bool      `db:"is_deleted" json:"-"`
	CreatedAt   time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt   time.Time `db:"updated_at" json:"updatedAt"`

	Images  []ProjectImage `db:"-" json:"images,omitempty"`
	Service *Service       `db:"-" json:"service,omitempty"`
}

// ProjectImage is a gallery entry attached to a project, ordered by SortOrder.
type ProjectImage struct {
	ID        string    `db:"id" json:"id"`
	ProjectID string    `db:"project_id" json:"projectId"`
	URL       string    `db:"url" json:"url"`
	Alt       *string   `db:"alt" json:"alt,omitempty"`
	SortOrder int       `db:"sort_order" json:"sortOrder"`
	CreatedAt time.Time `db:"created_at" json:"createdAt"`
}

// ProjectFilter captures list criteria for projects.
type ProjectFilter struct {
	ServiceID *string
	Active    *bool
	Search    string
	Page      int
	PageSize  int
	SortBy    string
	SortOrder string
}
