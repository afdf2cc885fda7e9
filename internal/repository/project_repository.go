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

const projectColumns = `id, title, slug, summary, description, client, location, year, service_id, cover_image, sort_order, is_active, is_deleted, created_at, updated_at`

// ProjectRepository provides database access for projects and their gallery.
type ProjectRepository struct {
	db *sqlx.DB
}

// NewProjectRepository creates a new instance of ProjectRepository.
func NewProjectRepository(db *sqlx.DB) *ProjectRepository {
	return &ProjectRepository{db: db}
}

// List returns projects based on filters with total count. Gallery images are
// not loaded for lists; use FindByID/FindBySlug for the full record.
func (r *ProjectRepository) List(ctx context.Context, filter models.ProjectFilter) ([]models.Project, int, error) {
	baseQuery := `FROM projects WHERE is_deleted = FALSE`
	var conditions []string
	var args []interface{}

	if filter.ServiceID != nil {
		conditions = append(conditions, fmt.Sprintf("service_id = $%d", len(args)+1))
		args = append(args, *filter.ServiceID)
	}
	if filter.Active != nil {
		conditions = append(conditions, fmt.Sprintf("is_active = $%d", len(args)+1))
		args = append(args, *filter.Active)
	}
	if filter.Search != "" {
		conditions = append(conditions, fmt.Sprintf("(LOWER(title) LIKE $%d OR LOWER(COALESCE(client, '')) LIKE $%d OR LOWER(COALESCE(location, '')) LIKE $%d)", len(args)+1, len(args)+1, len(args)+1))
		args = append(args, "%"+strings.ToLower(filter.Search)+"%")
	}

	if len(conditions) > 0 {
		baseQuery += " AND " + strings.Join(conditions, " AND ")
	}

	sortBy := filter.SortBy
	allowedSorts := map[string]bool{
		"title":      true,
		"year":       true,
		"sort_order": true,
		"created_at": true,
		"updated_at": true,
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
		pageSize = 20
	}
	offset := (page - 1) * pageSize

	listQuery := fmt.Sprintf("SELECT %s %s ORDER BY %s %s, created_at DESC LIMIT %d OFFSET %d", projectColumns, baseQuery, sortBy, sortOrder, pageSize, offset)

	var projects []models.Project
	if err := r.db.SelectContext(ctx, &projects, listQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("list projects: %w", err)
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) %s", baseQuery)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count projects: %w", err)
	}

	return projects, total, nil
}

// FindByID returns a project with its ordered images and linked service.
func (r *ProjectRepository) FindByID(ctx context.Context, id string) (*models.Project, error) {
	query := fmt.Sprintf(`SELECT %s FROM projects WHERE id = $1 AND is_deleted = FALSE LIMIT 1`, projectColumns)
	return r.findOne(ctx, query, id)
}

// FindBySlug returns a project with its includes by slug.
func (r *ProjectRepository) FindBySlug(ctx context.Context, slug string) (*models.Project, error) {
	query := fmt.Sprintf(`SELECT %s FROM projects WHERE slug = $1 AND is_deleted = FALSE LIMIT 1`, projectColumns)
	return r.findOne(ctx, query, slug)
}

func (r *ProjectRepository) findOne(ctx context.Context, query string, arg interface{}) (*models.Project, error) {
	var project models.Project
	if err := r.db.GetContext(ctx, &project, query, arg); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find project: %w", err)
	}

	images, err := r.ImagesByProject(ctx, project.ID)
	if err != nil {
		return nil, err
	}
	project.Images = images

	if project.ServiceID != nil {
		const svcQuery = `SELECT ` + serviceColumns + ` FROM services WHERE id = $1 AND is_deleted = FALSE LIMIT 1`
		var svc models.Service
		if err := r.db.GetContext(ctx, &svc, svcQuery, *project.ServiceID); err != nil {
			if err != sql.ErrNoRows {
				return nil, fmt.Errorf("load project service: %w", err)
			}
		} else {
			project.Service = &svc
		}
	}

	return &project, nil
}

// ExistsBySlug reports whether a non-deleted project holds the slug.
func (r *ProjectRepository) ExistsBySlug(ctx context.Context, slug, excludeID string) (bool, error) {
	query := `SELECT COUNT(*) FROM projects WHERE slug = $1 AND is_deleted = FALSE`
	args := []interface{}{slug}
	if excludeID != "" {
		query += ` AND id != $2`
		args = append(args, excludeID)
	}
	var count int
	if err := r.db.GetContext(ctx, &count, query, args...); err != nil {
		return false, fmt.Errorf("check project slug: %w", err)
	}
	return count > 0, nil
}

// Create inserts a new project.
func (r *ProjectRepository) Create(ctx context.Context, project *models.Project) error {
	if project.ID == "" {
		project.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if project.CreatedAt.IsZero() {
		project.CreatedAt = now
	}
	project.UpdatedAt = now

	const query = `INSERT INTO projects (id, title, slug, summary, description, client, location, year, service_id, cover_image, sort_order, is_active, is_deleted, created_at, updated_at)
		VALUES (:id, :title, :slug, :summary, :description, :client, :location, :year, :service_id, :cover_image, :sort_order, :is_active, :is_deleted, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, project); err != nil {
		return fmt.Errorf("create project: %w", err)
	}
	return nil
}

// Update persists mutable fields of a project.
func (r *ProjectRepository) Update(ctx context.Context, project *models.Project) error {
	project.UpdatedAt = time.Now().UTC()
	const query = `UPDATE projects SET title = :title, slug = :slug, summary = :summary, description = :description, client = :client, location = :location, year = :year, service_id = :service_id, cover_image = :cover_image, sort_order = :sort_order, is_active = :is_active, updated_at = :updated_at WHERE id = :id`
	if _, err := r.db.NamedExecContext(ctx, query, project); err != nil {
		return fmt.Errorf("update project: %w", err)
	}
	return nil
}

// SetActive flips the active flag.
func (r *ProjectRepository) SetActive(ctx context.Context, id string, active bool) error {
	const query = `UPDATE projects SET is_active = $2, updated_at = $3 WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, id, active, time.Now().UTC()); err != nil {
		return fmt.Errorf("set project active: %w", err)
	}
	return nil
}

// SoftDelete marks a project deleted.
func (r *ProjectRepository) SoftDelete(ctx context.Context, id string) error {
	const query = `UPDATE projects SET is_deleted = TRUE, is_active = FALSE, updated_at = $2 WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, id, time.Now().UTC()); err != nil {
		return fmt.Errorf("soft delete project: %w", err)
	}
	return nil
}

// ImagesByProject returns the gallery ordered by sort_order.
func (r *ProjectRepository) ImagesByProject(ctx context.Context, projectID string) ([]models.ProjectImage, error) {
	const query = `SELECT id, project_id, url, alt, sort_order, created_at FROM project_images WHERE project_id = $1 ORDER BY sort_order ASC, created_at ASC`
	var images []models.ProjectImage
	if err := r.db.SelectContext(ctx, &images, query, projectID); err != nil {
		return nil, fmt.Errorf("list project images: %w", err)
	}
	return images, nil
}

// ReplaceImages swaps the gallery for the given project.
func (r *ProjectRepository) ReplaceImages(ctx context.Context, projectID string, images []models.ProjectImage) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM project_images WHERE project_id = $1`, projectID); err != nil {
		return fmt.Errorf("clear project images: %w", err)
	}

	const query = `INSERT INTO project_images (id, project_id, url, alt, sort_order, created_at) VALUES (:id, :project_id, :url, :alt, :sort_order, :created_at)`
	now := time.Now().UTC()
	for i := range images {
		img := &images[i]
		if img.ID == "" {
			img.ID = uuid.NewString()
		}
		img.ProjectID = projectID
		if img.CreatedAt.IsZero() {
			img.CreatedAt = now
		}
		if _, err := r.db.NamedExecContext(ctx, query, img); err != nil {
			return fmt.Errorf("insert project image: %w", err)
		}
	}
	return nil
}
