package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/yildiz-insaat/cms-api/internal/models"
)

// StatsRepository aggregates dashboard counts across content tables.
type StatsRepository struct {
	db *sqlx.DB
}

// NewStatsRepository creates a new instance of StatsRepository.
func NewStatsRepository(db *sqlx.DB) *StatsRepository {
	return &StatsRepository{db: db}
}

// Counts returns row counts for every admin-visible resource.
func (r *StatsRepository) Counts(ctx context.Context) (*models.ResourceCounts, error) {
	const query = `SELECT
		(SELECT COUNT(*) FROM projects WHERE is_deleted = FALSE) AS projects,
		(SELECT COUNT(*) FROM services WHERE is_deleted = FALSE) AS services,
		(SELECT COUNT(*) FROM blog_posts WHERE is_deleted = FALSE) AS blog_posts,
		(SELECT COUNT(*) FROM contact_messages WHERE is_deleted = FALSE) AS messages,
		(SELECT COUNT(*) FROM contact_messages WHERE is_deleted = FALSE AND is_read = FALSE) AS unread_messages,
		(SELECT COUNT(*) FROM media) AS media_files,
		(SELECT COUNT(*) FROM users WHERE is_deleted = FALSE) AS users`

	var counts models.ResourceCounts
	if err := r.db.GetContext(ctx, &counts, query); err != nil {
		return nil, fmt.Errorf("dashboard counts: %w", err)
	}
	return &counts, nil
}
