package models

import "time"

// Media is an uploaded file stored on disk and referenced by content rows.
type Media struct {
	ID           string    `db:"id" json:"id"`
	FileName     string    `db:"file_name" json:"fileName"`
	OriginalName string    `db:"original_name" json:"originalName"`
	MimeType     string    `db:"mime_type" json:"mimeType"`
	SizeBytes    int64     `db:"size_bytes" json:"sizeBytes"`
	URL          string    `db:"url" json:"url"`
	UploadedBy   *string   `db:"uploaded_by" json:"uploadedBy,omitempty"`
	CreatedAt    time.Time `db:"created_at" json:"createdAt"`
}

// MediaFilter captures list criteria for the media library.
type MediaFilter struct {
	MimePrefix string
	Search     string
	Page       int
	PageSize   int
}
