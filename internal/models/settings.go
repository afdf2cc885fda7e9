package models

import (
	"encoding/json"
	"time"
)

// SiteSettings is the single-row site configuration edited from the admin
// panel and rendered by the public frontend.
type SiteSettings struct {
	ID          string          `db:"id" json:"id"`
	SiteTitle   string          `db:"site_title" json:"siteTitle"`
	Description *string         `db:"description" json:"description,omitempty"`
	Keywords    *string         `db:"keywords" json:"keywords,omitempty"`
	Email       *string         `db:"email" json:"email,omitempty"`
	Phone       *string         `db:"phone" json:"phone,omitempty"`
	Address     *string         `db:"address" json:"address,omitempty"`
	SocialLinks json.RawMessage `db:"social_links" json:"socialLinks,omitempty"`
	UpdatedAt   time.Time       `db:"updated_at" json:"updatedAt"`
}
