package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/yildiz-insaat/cms-api/internal/models"
)

const mediaColumns = `id, file_name, original_name, mime_type, size_bytes, url, uploaded_by, created_at`

// MediaRepository provides database access for the media library.
type MediaRepository struct {
	db *sqlx.DB
}

// NewMediaRepository creates a new instance of MediaRepository.
func NewMediaRepository(db *sqlx.DB) *MediaRepository {
	return &MediaRepository{db: db}
}

// Create inserts a media record.
func (r *MediaRepository) Create(ctx context.Context, media *models.Media) error {
	if media.ID == "" {
		media.ID = uuid.NewString()
	}
	if media.CreatedAt.IsZero() {
		media.CreatedAt = time.Now().UTC()
	}

	const query = `INSERT INTO media (id, file_name, original_name, mime_type, size_bytes, url, uploaded_by, created_at)
		VALUES (:id, :file_name, :original_name, :mime_type, :size_bytes, :url, :uploaded_by, :created_at)`
	if _, err := r.db.NamedExecContext(ctx, query, media); err != nil {
		return fmt.Errorf("create media: %w", err)
	}
	return nil
}

// List returns media records based on filters with total count.
func (r *MediaRepository) List(ctx context.Context, filter models.MediaFilter) ([]models.Media, int, error) {
	baseQuery := `FROM media WHERE 1=1`
	var conditions []string
	var args []interface{}

	if filter.MimePrefix != "" {
		conditions = append(conditions, fmt.Sprintf("mime_type LIKE $%d", len(args)+1))
		args = append(args, filter.MimePrefix+"%")
	}
	if filter.Search != "" {
		conditions = append(conditions, fmt.Sprintf("LOWER(original_name) LIKE $%d", len(args)+1))
		args = append(args, "%"+strings.ToLower(filter.Search)+"%")
	}

	if len(conditions) > 0 {
		baseQuery += " AND " + strings.Join(conditions, " AND ")
	}

	page := filter.Page
	if page < 1 {
		page = 1
	}
	pageSize := filter.PageSize
	if pageSize <= 0 || pageSize > 100 {
		pageSize = 40
	}
	offset := (page - 1) * pageSize

	listQuery := fmt.Sprintf("SELECT %s %s ORDER BY created_at DESC LIMIT %d OFFSET %d", mediaColumns, baseQuery, pageSize, offset)

	var records []models.Media
	if err := r.db.SelectContext(ctx, &records, listQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("list media: %w", err)
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) %s", baseQuery)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count media: %w", err)
	}

	return records, total, nil
}

// FindByID returns a media record by identifier.
func (r *MediaRepository) FindByID(ctx context.Context, id string) (*models.Media, error) {
	query := fmt.Sprintf(`SELECT %s FROM media WHERE id = $1 LIMIT 1`, mediaColumns)
	var media models.Media
	if err := r.db.GetContext(ctx, &media, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find media: %w", err)
	}
	return &media, nil
}

// Delete removes a media record. The caller is responsible for removing the
// file from storage.
func (r *MediaRepository) Delete(ctx context.Context, id string) error {
	const query = `DELETE FROM media WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, id); err != nil {
		return fmt.Errorf("delete media: %w", err)
	}
	return nil
}
