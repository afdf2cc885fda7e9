package models

import "time"

// ContactMessage is a submission from the public contact form.
type ContactMessage struct {
	ID        string    `db:"id" json:"id"`
	Name      string    `db:"name" json:"name"`
	Email     string    `db:"email" json:"email"`
	Phone     *string   `db:"phone" json:"phone,omitempty"`
	Subject   *string   `db:"subject" json:"subject,omitempty"`
	Message   string    `db:"message" json:"message"`
	IsRead    bool      `db:"is_read" json:"isRead"`
	IsDeleted bool      `db:"is_deleted" json:"-"`
	CreatedAt time.Time `db:"created_at" json:"createdAt"`
}

// ContactFilter captures list criteria for contact messages.
type ContactFilter struct {
	Read      *bool
	Search    string
	Page      int
	PageSize  int
	SortOrder string
}
