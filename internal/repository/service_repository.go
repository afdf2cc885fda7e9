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

const serviceColumns = `id, title, slug, description, icon, sort_order, is_active, is_deleted, created_at, updated_at`

// ServiceRepository provides database access for service offerings.
type ServiceRepository struct {
	db *sqlx.DB
}

// NewServiceRepository creates a new instance of ServiceRepository.
func NewServiceRepository(db *sqlx.DB) *ServiceRepository {
	return &ServiceRepository{db: db}
}

// List returns service offerings based on filters with total count.
func (r *ServiceRepository) List(ctx context.Context, filter models.ServiceFilter) ([]models.Service, int, error) {
	baseQuery := `FROM services WHERE is_deleted = FALSE`
	var conditions []string
	var args []interface{}

	if filter.Active != nil {
		conditions = append(conditions, fmt.Sprintf("is_active = $%d", len(args)+1))
		args = append(args, *filter.Active)
	}
	if filter.Search != "" {
		conditions = append(conditions, fmt.Sprintf("LOWER(title) LIKE $%d", len(args)+1))
		args = append(args, "%"+strings.ToLower(filter.Search)+"%")
	}

	if len(conditions) > 0 {
		baseQuery += " AND " + strings.Join(conditions, " AND ")
	}

	sortBy := filter.SortBy
	allowedSorts := map[string]bool{
		"title":      true,
		"sort_order": true,
		"created_at": true,
	}
	if !allowedSorts[sortBy] {
		sortBy = "sort_order"
	}

	sortOrder := strings.ToUpper(filter.SortOrder)
	if sortOrder != "ASC" && sortOrder != "DESC" {
		sortOrder = "ASC"
	}

	page := filter.Page
	if page < 1 {
		page = 1
	}
	pageSize := filter.PageSize
	if pageSize <= 0 || pageSize > 100 {
		pageSize = 50
	}
	offset := (page - 1) * pageSize

	listQuery := fmt.Sprintf("SELECT %s %s ORDER BY %s %s LIMIT %d OFFSET %d", serviceColumns, baseQuery, sortBy, sortOrder, pageSize, offset)

	var services []models.Service
	if err := r.db.SelectContext(ctx, &services, listQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("list services: %w", err)
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) %s", baseQuery)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count services: %w", err)
	}

	return services, total, nil
}

// FindByID returns a service offering by identifier.
func (r *ServiceRepository) FindByID(ctx context.Context, id string) (*models.Service, error) {
	query := fmt.Sprintf(`SELECT %s FROM services WHERE id = $1 AND is_deleted = FALSE LIMIT 1`, serviceColumns)
	var svc models.Service
	if err := r.db.GetContext(ctx, &svc, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find service by id: %w", err)
	}
	return &svc, nil
}

// FindBySlug returns a service offering by slug.
func (r *ServiceRepository) FindBySlug(ctx context.Context, slug string) (*models.Service, error) {
	query := fmt.Sprintf(`SELECT %s FROM services WHERE slug = $1 AND is_deleted = FALSE LIMIT 1`, serviceColumns)
	var svc models.Service
	if err := r.db.GetContext(ctx, &svc, query, slug); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find service by slug: %w", err)
	}
	return &svc, nil
}

// ExistsBySlug reports whether a non-deleted service holds the slug.
func (r *ServiceRepository) ExistsBySlug(ctx context.Context, slug, excludeID string) (bool, error) {
	query := `SELECT COUNT(*) FROM services WHERE slug = $1 AND is_deleted = FALSE`
	args := []interface{}{slug}
	if excludeID != "" {
		query += ` AND id != $2`
		args = append(args, excludeID)
	}
	var count int
	if err := r.db.GetContext(ctx, &count, query, args...); err != nil {
		return false, fmt.Errorf("check service slug: %w", err)
	}
	return count > 0, nil
}

// Create inserts a new service offering.
func (r *ServiceRepository) Create(ctx context.Context, svc *models.Service) error {
	if svc.ID == "" {
		svc.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if svc.CreatedAt.IsZero() {
		svc.CreatedAt = now
	}
	svc.UpdatedAt = now

	const query = `INSERT INTO services (id, title, slug, description, icon, sort_order, is_active, is_deleted, created_at, updated_at)
		VALUES (:id, :title, :slug, :description, :icon, :sort_order, :is_active, :is_deleted, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, svc); err != nil {
		return fmt.Errorf("create service: %w", err)
	}
	return nil
}

// Update persists mutable fields of a service offering.
func (r *ServiceRepository) Update(ctx context.Context, svc *models.Service) error {
	svc.UpdatedAt = time.Now().UTC()
	const query = `UPDATE services SET title = :title, slug = :slug, description = :description, icon = :icon, sort_order = :sort_order, is_active = :is_active, updated_at = :updated_at WHERE id = :id`
	if _, err := r.db.NamedExecContext(ctx, query, svc); err != nil {
		return fmt.Errorf("update service: %w", err)
	}
	return nil
}

// SetActive flips the active flag.
func (r *ServiceRepository) SetActive(ctx context.Context, id string, active bool) error {
	const query = `UPDATE services SET is_active = $2, updated_at = $3 WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, id, active, time.Now().UTC()); err != nil {
		return fmt.Errorf("set service active: %w", err)
	}
	return nil
}

// SoftDelete marks a service deleted.
func (r *ServiceRepository) SoftDelete(ctx context.Context, id string) error {
	const query = `UPDATE services SET is_deleted = TRUE, is_active = FALSE, updated_at = $2 WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, id, time.Now().UTC()); err != nil {
		return fmt.Errorf("soft delete service: %w", err)
	}
	return nil
}
