package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/yildiz-insaat/cms-api/internal/models"
)

const settingsColumns = `id, site_title, description, keywords, email, phone, address, social_links, updated_at`

// SettingsRepository provides database access for the single settings row.
type SettingsRepository struct {
	db *sqlx.DB
}

// NewSettingsRepository creates a new instance of SettingsRepository.
func NewSettingsRepository(db *sqlx.DB) *SettingsRepository {
	return &SettingsRepository{db: db}
}

// Get returns the settings row.
func (r *SettingsRepository) Get(ctx context.Context) (*models.SiteSettings, error) {
	query := fmt.Sprintf(`SELECT %s FROM site_settings ORDER BY updated_at DESC LIMIT 1`, settingsColumns)
	var settings models.SiteSettings
	if err := r.db.GetContext(ctx, &settings, query); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("get site settings: %w", err)
	}
	return &settings, nil
}

// Upsert writes the settings row, creating it on first save.
func (r *SettingsRepository) Upsert(ctx context.Context, settings *models.SiteSettings) error {
	if settings.ID == "" {
		settings.ID = uuid.NewString()
	}
	settings.UpdatedAt = time.Now().UTC()

	const query = `INSERT INTO site_settings (id, site_title, description, keywords, email, phone, address, social_links, updated_at)
		VALUES (:id, :site_title, :description, :keywords, :email, :phone, :address, :social_links, :updated_at)
		ON CONFLICT (id) DO UPDATE SET
			site_title = EXCLUDED.site_title,
			description = EXCLUDED.description,
			keywords = EXCLUDED.keywords,
			email = EXCLUDED.email,
			phone = EXCLUDED.phone,
			address = EXCLUDED.address,
			social_links = EXCLUDED.social_links,
			updated_at = EXCLUDED.updated_at`
	if _, err := r.db.NamedExecContext(ctx, query, settings); err != nil {
		return fmt.Errorf("upsert site settings: %w", err)
	}
	return nil
}
