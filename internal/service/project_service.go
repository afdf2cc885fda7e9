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

type projectRepository interface {
	List(ctx context.Context, filter models.ProjectFilter) ([]models.Project, int, error)
	FindByID(ctx context.Context, id string) (*models.Project, error)
	FindBySlug(ctx context.Context, slug string) (*models.Project, error)
	ExistsBySlug(ctx context.Context, slug, excludeID string) (bool, error)
	Create(ctx context.Context, project *models.Project) error
	Update(ctx context.Context, project *models.Project) error
	SetActive(ctx context.Context, id string, active bool) error
	SoftDelete(ctx context.Context, id string) error
	ReplaceImages(ctx context.Context, projectID string, images []models.ProjectImage) error
	ImagesByProject(ctx context.Context, projectID string) ([]models.ProjectImage, error)
}

// ProjectImageRequest is a gallery entry in create/update payloads. Order in
// the slice is the display order.
type ProjectImageRequest struct {
	URL string  `json:"url" validate:"required,max=500"`
	Alt *string `json:"alt" validate:"omitempty,max=200"`
}

// CreateProjectRequest represents payload for creating projects.
type CreateProjectRequest struct {
	Title       string                `json:"title" validate:"required,max=200"`
	Slug        string                `json:"slug" validate:"required,max=200"`
	Summary     *string               `json:"summary" validate:"omitempty,max=500"`
	Description *string               `json:"description"`
	Client      *string               `json:"client" validate:"omitempty,max=200"`
	Location    *string               `json:"location" validate:"omitempty,max=200"`
	Year        *int                  `json:"year" validate:"omitempty,min=1900,max=2100"`
	ServiceID   *string               `json:"serviceId" validate:"omitempty,uuid"`
	CoverImage  *string               `json:"coverImage" validate:"omitempty,max=500"`
	SortOrder   int                   `json:"sortOrder"`
	Images      []ProjectImageRequest `json:"images" validate:"omitempty,dive"`
}

// UpdateProjectRequest represents payload for updating projects. A nil Images
// slice leaves the gallery untouched; an empty one clears it.
type UpdateProjectRequest struct {
	Title       string                `json:"title" validate:"required,max=200"`
	Slug        string                `json:"slug" validate:"required,max=200"`
	Summary     *string               `json:"summary" validate:"omitempty,max=500"`
	Description *string               `json:"description"`
	Client      *string               `json:"client" validate:"omitempty,max=200"`
	Location    *string               `json:"location" validate:"omitempty,max=200"`
	Year        *int                  `json:"year" validate:"omitempty,min=1900,max=2100"`
	ServiceID   *string               `json:"serviceId" validate:"omitempty,uuid"`
	CoverImage  *string               `json:"coverImage" validate:"omitempty,max=500"`
	SortOrder   *int                  `json:"sortOrder"`
	IsActive    *bool                 `json:"isActive"`
	Images      []ProjectImageRequest `json:"images" validate:"omitempty,dive"`
}

// ProjectService orchestrates project operations.
type ProjectService struct {
	repo      projectRepository
	cache     ContentCache
	cacheTTL  time.Duration
	validator *validator.Validate
	logger    *zap.Logger
}

// NewProjectService constructs a ProjectService.
func NewProjectService(repo projectRepository, cache ContentCache, cacheTTL time.Duration, validate *validator.Validate, logger *zap.Logger) *ProjectService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ProjectService{repo: repo, cache: cache, cacheTTL: cacheTTL, validator: validate, logger: logger}
}

type projectListPayload struct {
	Items []models.Project `json:"items"`
	Total int              `json:"total"`
}

// List returns projects plus pagination data. List pages are cached briefly
// and invalidated on every write.
func (s *ProjectService) List(ctx context.Context, filter models.ProjectFilter) ([]models.Project, *models.Pagination, error) {
	key := listCacheKey("projects",
		stringPart(filter.ServiceID),
		boolPart(filter.Active),
		filter.Search,
		strconv.Itoa(filter.Page),
		strconv.Itoa(filter.PageSize),
		filter.SortBy,
		filter.SortOrder,
	)

	var cached projectListPayload
	if s.cache != nil && s.cache.Get(ctx, key, &cached) == nil {
		return cached.Items, paginationFor(filter.Page, filter.PageSize, cached.Total), nil
	}

	projects, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list projects")
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, key, projectListPayload{Items: projects, Total: total}, s.cacheTTL); err != nil {
			s.logger.Warn("failed to cache project list", zap.Error(err))
		}
	}

	return projects, paginationFor(filter.Page, filter.PageSize, total), nil
}

// Get returns a project with its gallery and linked service.
func (s *ProjectService) Get(ctx context.Context, id string) (*models.Project, error) {
	project, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "project not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load project")
	}
	return project, nil
}

// GetBySlug returns a project by its public slug.
func (s *ProjectService) GetBySlug(ctx context.Context, slug string) (*models.Project, error) {
	project, err := s.repo.FindBySlug(ctx, normalizeSlug(slug))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "project not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load project")
	}
	return project, nil
}

// Create registers a new project with its gallery.
func (s *ProjectService) Create(ctx context.Context, req CreateProjectRequest) (*models.Project, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, appErrors.ErrValidation.Message)
	}

	slug := normalizeSlug(req.Slug)
	if err := s.ensureUniqueSlug(ctx, slug, ""); err != nil {
		return nil, err
	}

	project := &models.Project{
		Title:       strings.TrimSpace(req.Title),
		Slug:        slug,
		Summary:     normalizeOptional(req.Summary),
		Description: normalizeOptional(req.Description),
		Client:      normalizeOptional(req.Client),
		Location:    normalizeOptional(req.Location),
		Year:        req.Year,
		ServiceID:   req.ServiceID,
		CoverImage:  normalizeOptional(req.CoverImage),
		SortOrder:   req.SortOrder,
		IsActive:    true,
	}

	if err := s.repo.Create(ctx, project); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create project")
	}

	if len(req.Images) > 0 {
		if err := s.repo.ReplaceImages(ctx, project.ID, imagesFromRequests(req.Images)); err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to save project images")
		}
	}

	s.invalidate(ctx)
	return s.Get(ctx, project.ID)
}

// Update modifies an existing project.
func (s *ProjectService) Update(ctx context.Context, id string, req UpdateProjectRequest) (*models.Project, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, appErrors.ErrValidation.Message)
	}

	project, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "project not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load project")
	}

	slug := normalizeSlug(req.Slug)
	if err := s.ensureUniqueSlug(ctx, slug, id); err != nil {
		return nil, err
	}

	project.Title = strings.TrimSpace(req.Title)
	project.Slug = slug
	project.Summary = normalizeOptional(req.Summary)
	project.Description = normalizeOptional(req.Description)
	project.Client = normalizeOptional(req.Client)
	project.Location = normalizeOptional(req.Location)
	project.Year = req.Year
	project.ServiceID = req.ServiceID
	project.CoverImage = normalizeOptional(req.CoverImage)
	if req.SortOrder != nil {
		project.SortOrder = *req.SortOrder
	}
	if req.IsActive != nil {
		project.IsActive = *req.IsActive
	}

	if err := s.repo.Update(ctx, project); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update project")
	}

	if req.Images != nil {
		if err := s.repo.ReplaceImages(ctx, project.ID, imagesFromRequests(req.Images)); err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to save project images")
		}
	}

	s.invalidate(ctx)
	return s.Get(ctx, project.ID)
}

// ToggleActive flips the visibility flag.
func (s *ProjectService) ToggleActive(ctx context.Context, id string) (*models.Project, error) {
	project, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.repo.SetActive(ctx, id, !project.IsActive); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to toggle project")
	}
	project.IsActive = !project.IsActive
	s.invalidate(ctx)
	return project, nil
}

// Delete soft-deletes a project.
func (s *ProjectService) Delete(ctx context.Context, id string) error {
	if _, err := s.Get(ctx, id); err != nil {
		return err
	}
	if err := s.repo.SoftDelete(ctx, id); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete project")
	}
	s.invalidate(ctx)
	return nil
}

func (s *ProjectService) ensureUniqueSlug(ctx context.Context, slug, excludeID string) error {
	exists, err := s.repo.ExistsBySlug(ctx, slug, excludeID)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check slug")
	}
	if exists {
		return appErrors.Clone(appErrors.ErrConflict, "Slug already in use")
	}
	return nil
}

func (s *ProjectService) invalidate(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.DeleteByPattern(ctx, "cms:projects:*"); err != nil {
		s.logger.Warn("failed to invalidate project cache", zap.Error(err))
	}
	if err := s.cache.DeleteByPattern(ctx, statsCacheKey); err != nil {
		s.logger.Warn("failed to invalidate stats cache", zap.Error(err))
	}
}

func imagesFromRequests(reqs []ProjectImageRequest) []models.ProjectImage {
	images := make([]models.ProjectImage, 0, len(reqs))
	for i, req := range reqs {
		images = append(images, models.ProjectImage{
			URL:       strings.TrimSpace(req.URL),
			Alt:       normalizeOptional(req.Alt),
			SortOrder: i,
		})
	}
	return images
}

func paginationFor(page, size, total int) *models.Pagination {
	if page < 1 {
		page = 1
	}
	if size <= 0 {
		size = 20
	}
	return &models.Pagination{Page: page, PageSize: size, TotalCount: total}
}
