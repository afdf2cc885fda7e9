package service

import (
	"context"
	"database/sql"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/yildiz-insaat/cms-api/internal/models"
	appErrors "github.com/yildiz-insaat/cms-api/pkg/errors"
)

type blogRepository interface {
	List(ctx context.Context, filter models.BlogFilter) ([]models.BlogPost, int, error)
	FindByID(ctx context.Context, id string) (*models.BlogPost, error)
	FindBySlug(ctx context.Context, slug string) (*models.BlogPost, error)
	ExistsBySlug(ctx context.Context, slug, excludeID string) (bool, error)
	Create(ctx context.Context, post *models.BlogPost) error
	Update(ctx context.Context, post *models.BlogPost) error
	SetActive(ctx context.Context, id string, active bool) error
	SoftDelete(ctx context.Context, id string) error
}

// CreateBlogPostRequest represents payload for creating blog posts.
type CreateBlogPostRequest struct {
	Title      string     `json:"title" validate:"required,max=200"`
	Slug       string     `json:"slug" validate:"required,max=200"`
	Excerpt    *string    `json:"excerpt" validate:"omitempty,max=500"`
	Content    string     `json:"content" validate:"required"`
	CoverImage *string    `json:"coverImage" validate:"omitempty,max=500"`
	Publish    bool       `json:"publish"`
	PublishAt  *time.Time `json:"publishAt"`
}

// UpdateBlogPostRequest represents payload for updating blog posts.
type UpdateBlogPostRequest struct {
	Title      string     `json:"title" validate:"required,max=200"`
	Slug       string     `json:"slug" validate:"required,max=200"`
	Excerpt    *string    `json:"excerpt" validate:"omitempty,max=500"`
	Content    string     `json:"content" validate:"required"`
	CoverImage *string    `json:"coverImage" validate:"omitempty,max=500"`
	Publish    *bool      `json:"publish"`
	PublishAt  *time.Time `json:"publishAt"`
	IsActive   *bool      `json:"isActive"`
}

// BlogService orchestrates blog post operations.
type BlogService struct {
	repo      blogRepository
	cache     ContentCache
	cacheTTL  time.Duration
	validator *validator.Validate
	logger    *zap.Logger
}

// NewBlogService constructs a BlogService.
func NewBlogService(repo blogRepository, cache ContentCache, cacheTTL time.Duration, validate *validator.Validate, logger *zap.Logger) *BlogService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &BlogService{repo: repo, cache: cache, cacheTTL: cacheTTL, validator: validate, logger: logger}
}

type blogListPayload struct {
	Items []models.BlogPost `json:"items"`
	Total int               `json:"total"`
}

// List returns blog posts plus pagination data.
func (s *BlogService) List(ctx context.Context, filter models.BlogFilter) ([]models.BlogPost, *models.Pagination, error) {
	key := listCacheKey("blogs",
		boolPart(filter.Active),
		strconv.FormatBool(filter.PublishedOnly),
		stringPart(filter.AuthorID),
		filter.Search,
		strconv.Itoa(filter.Page),
		strconv.Itoa(filter.PageSize),
		filter.SortBy,
		filter.SortOrder,
	)

	var cached blogListPayload
	if s.cache != nil && s.cache.Get(ctx, key, &cached) == nil {
		return cached.Items, paginationFor(filter.Page, filter.PageSize, cached.Total), nil
	}

	posts, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list blog posts")
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, key, blogListPayload{Items: posts, Total: total}, s.cacheTTL); err != nil {
			s.logger.Warn("failed to cache blog list", zap.Error(err))
		}
	}

	return posts, paginationFor(filter.Page, filter.PageSize, total), nil
}

// Get returns a blog post by id.
func (s *BlogService) Get(ctx context.Context, id string) (*models.BlogPost, error) {
	post, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "blog post not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load blog post")
	}
	return post, nil
}

// GetBySlug returns a blog post by its public slug.
func (s *BlogService) GetBySlug(ctx context.Context, slug string) (*models.BlogPost, error) {
	post, err := s.repo.FindBySlug(ctx, normalizeSlug(slug))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "blog post not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load blog post")
	}
	return post, nil
}

// Create registers a new blog post authored by the given user.
func (s *BlogService) Create(ctx context.Context, authorID string, req CreateBlogPostRequest) (*models.BlogPost, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, appErrors.ErrValidation.Message)
	}

	slug := normalizeSlug(req.Slug)
	if err := s.ensureUniqueSlug(ctx, slug, ""); err != nil {
		return nil, err
	}

	post := &models.BlogPost{
		Title:      strings.TrimSpace(req.Title),
		Slug:       slug,
		Excerpt:    normalizeOptional(req.Excerpt),
		Content:    req.Content,
		CoverImage: normalizeOptional(req.CoverImage),
		AuthorID:   authorID,
		IsActive:   true,
	}
	if req.Publish {
		publishedAt := time.Now().UTC()
		if req.PublishAt != nil {
			publishedAt = req.PublishAt.UTC()
		}
		post.PublishedAt = &publishedAt
	}

	if err := s.repo.Create(ctx, post); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create blog post")
	}

	s.invalidate(ctx)
	return post, nil
}

// Update modifies an existing blog post.
func (s *BlogService) Update(ctx context.Context, id string, req UpdateBlogPostRequest) (*models.BlogPost, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, appErrors.ErrValidation.Message)
	}

	post, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	slug := normalizeSlug(req.Slug)
	if err := s.ensureUniqueSlug(ctx, slug, id); err != nil {
		return nil, err
	}

	post.Title = strings.TrimSpace(req.Title)
	post.Slug = slug
	post.Excerpt = normalizeOptional(req.Excerpt)
	post.Content = req.Content
	post.CoverImage = normalizeOptional(req.CoverImage)
	if req.Publish != nil {
		if *req.Publish {
			publishedAt := time.Now().UTC()
			if req.PublishAt != nil {
				publishedAt = req.PublishAt.UTC()
			}
			post.PublishedAt = &publishedAt
		} else {
			post.PublishedAt = nil
		}
	}
	if req.IsActive != nil {
		post.IsActive = *req.IsActive
	}

	if err := s.repo.Update(ctx, post); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update blog post")
	}

	s.invalidate(ctx)
	return post, nil
}

// ToggleActive flips the visibility flag.
func (s *BlogService) ToggleActive(ctx context.Context, id string) (*models.BlogPost, error) {
	post, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.repo.SetActive(ctx, id, !post.IsActive); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to toggle blog post")
	}
	post.IsActive = !post.IsActive
	s.invalidate(ctx)
	return post, nil
}

// Delete soft-deletes a blog post.
func (s *BlogService) Delete(ctx context.Context, id string) error {
	if _, err := s.Get(ctx, id); err != nil {
		return err
	}
	if err := s.repo.SoftDelete(ctx, id); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete blog post")
	}
	s.invalidate(ctx)
	return nil
}

func (s *BlogService) ensureUniqueSlug(ctx context.Context, slug, excludeID string) error {
	exists, err := s.repo.ExistsBySlug(ctx, slug, excludeID)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check slug")
	}
	if exists {
		return appErrors.Clone(appErrors.ErrConflict, "Slug already in use")
	}
	return nil
}

func (s *BlogService) invalidate(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.DeleteByPattern(ctx, "cms:blogs:*"); err != nil {
		s.logger.Warn("failed to invalidate blog cache", zap.Error(err))
	}
	if err := s.cache.DeleteByPattern(ctx, statsCacheKey); err != nil {
		s.logger.Warn("failed to invalidate stats cache", zap.Error(err))
	}
}
