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

const blogColumns = `id, title, slug, excerpt, content, cover_image, author_id, published_at, is_active, is_deleted, created_at, updated_at`

// BlogRepository provides database access for blog posts.
type BlogRepository struct {
	db *sqlx.DB
}

// NewBlogRepository creates a new instance of BlogRepository.
func NewBlogRepository(db *sqlx.DB) *BlogRepository {
	return &BlogRepository{db: db}
}

// List returns blog posts based on filters with total count.
func (r *BlogRepository) List(ctx context.Context, filter models.BlogFilter) ([]models.BlogPost, int, error) {
	baseQuery := `FROM blog_posts WHERE is_deleted = FALSE`
	var conditions []string
	var args []interface{}

	if filter.Active != nil {
		conditions = append(conditions, fmt.Sprintf("is_active = $%d", len(args)+1))
		args = append(args, *filter.Active)
	}
	if filter.PublishedOnly {
		conditions = append(conditions, "published_at IS NOT NULL AND published_at <= NOW()")
	}
	if filter.AuthorID != nil {
		conditions = append(conditions, fmt.Sprintf("author_id = $%d", len(args)+1))
		args = append(args, *filter.AuthorID)
	}
	if filter.Search != "" {
		conditions = append(conditions, fmt.Sprintf("(LOWER(title) LIKE $%d OR LOWER(COALESCE(excerpt, '')) LIKE $%d)", len(args)+1, len(args)+1))
		args = append(args, "%"+strings.ToLower(filter.Search)+"%")
	}

	if len(conditions) > 0 {
		baseQuery += " AND " + strings.Join(conditions, " AND ")
	}

	sortBy := filter.SortBy
	allowedSorts := map[string]bool{
		"title":        true,
		"published_at": true,
		"created_at":   true,
		"updated_at":   true,
	}
	if !allowedSorts[sortBy] {
		sortBy = "created_at"
	}

	sortOrder := strings.ToUpper(filter.SortOrder)
	if sortOrder != "ASC" && sortOrder != "DESC" {
		sortOrder = "DESC"
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

	listQuery := fmt.Sprintf("SELECT %s %s ORDER BY %s %s LIMIT %d OFFSET %d", blogColumns, baseQuery, sortBy, sortOrder, pageSize, offset)

	var posts []models.BlogPost
	if err := r.db.SelectContext(ctx, &posts, listQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("list blog posts: %w", err)
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) %s", baseQuery)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count blog posts: %w", err)
	}

	return posts, total, nil
}

// FindByID returns a blog post by identifier.
func (r *BlogRepository) FindByID(ctx context.Context, id string) (*models.BlogPost, error) {
	query := fmt.Sprintf(`SELECT %s FROM blog_posts WHERE id = $1 AND is_deleted = FALSE LIMIT 1`, blogColumns)
	var post models.BlogPost
	if err := r.db.GetContext(ctx, &post, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find blog post by id: %w", err)
	}
	return &post, nil
}

// FindBySlug returns a blog post by slug.
func (r *BlogRepository) FindBySlug(ctx context.Context, slug string) (*models.BlogPost, error) {
	query := fmt.Sprintf(`SELECT %s FROM blog_posts WHERE slug = $1 AND is_deleted = FALSE LIMIT 1`, blogColumns)
	var post models.BlogPost
	if err := r.db.GetContext(ctx, &post, query, slug); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find blog post by slug: %w", err)
	}
	return &post, nil
}

// ExistsBySlug reports whether a non-deleted post holds the slug.
func (r *BlogRepository) ExistsBySlug(ctx context.Context, slug, excludeID string) (bool, error) {
	query := `SELECT COUNT(*) FROM blog_posts WHERE slug = $1 AND is_deleted = FALSE`
	args := []interface{}{slug}
	if excludeID != "" {
		query += ` AND id != $2`
		args = append(args, excludeID)
	}
	var count int
	if err := r.db.GetContext(ctx, &count, query, args...); err != nil {
		return false, fmt.Errorf("check blog slug: %w", err)
	}
	return count > 0, nil
}

// Create inserts a new blog post.
func (r *BlogRepository) Create(ctx context.Context, post *models.BlogPost) error {
	if post.ID == "" {
		post.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if post.CreatedAt.IsZero() {
		post.CreatedAt = now
	}
	post.UpdatedAt = now

	const query = `INSERT INTO blog_posts (id, title, slug, excerpt, content, cover_image, author_id, published_at, is_active, is_deleted, created_at, updated_at)
		VALUES (:id, :title, :slug, :excerpt, :content, :cover_image, :author_id, :published_at, :is_active, :is_deleted, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, post); err != nil {
		return fmt.Errorf("create blog post: %w", err)
	}
	return nil
}

// Update persists mutable fields of a blog post.
func (r *BlogRepository) Update(ctx context.Context, post *models.BlogPost) error {
	post.UpdatedAt = time.Now().UTC()
	const query = `UPDATE blog_posts SET title = :title, slug = :slug, excerpt = :excerpt, content = :content, cover_image = :cover_image, published_at = :published_at, is_active = :is_active, updated_at = :updated_at WHERE id = :id`
	if _, err := r.db.NamedExecContext(ctx, query, post); err != nil {
		return fmt.Errorf("update blog post: %w", err)
	}
	return nil
}

// SetActive flips the active flag.
func (r *BlogRepository) SetActive(ctx context.Context, id string, active bool) error {
	const query = `UPDATE blog_posts SET is_active = $2, updated_at = $3 WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, id, active, time.Now().UTC()); err != nil {
		return fmt.Errorf("set blog post active: %w", err)
	}
	return nil
}

// SoftDelete marks a blog post deleted.
func (r *BlogRepository) SoftDelete(ctx context.Context, id string) error {
	const query = `UPDATE blog_posts SET is_deleted = TRUE, is_active = FALSE, updated_at = $2 WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, id, time.Now().UTC()); err != nil {
		return fmt.Errorf("soft delete blog post: %w", err)
	}
	return nil
}

// Latest returns the newest published posts for the dashboard.
func (r *BlogRepository) Latest(ctx context.Context, limit int) ([]models.BlogPost, error) {
	if limit <= 0 {
		limit = 5
	}
	query := fmt.Sprintf(`SELECT %s FROM blog_posts WHERE is_deleted = FALSE AND published_at IS NOT NULL ORDER BY published_at DESC LIMIT %d`, blogColumns, limit)
	var posts []models.BlogPost
	if err := r.db.SelectContext(ctx, &posts, query); err != nil {
		return nil, fmt.Errorf("latest blog posts: %w", err)
	}
	return posts, nil
}
