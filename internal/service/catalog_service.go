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

type serviceRepository interface {
	List(ctx context.Context, filter models.ServiceFilter) ([]models.Service, int, error)
	FindByID(ctx context.Context, id string) (*models.Service, error)
	FindBySlug(ctx context.Context, slug string) (*models.Service, error)
	ExistsBySlug(ctx context.Context, slug, excludeID string) (bool, error)
	Create(ctx context.Context, svc *models.Service) error
	Update(ctx context.Context, svc *models.Service) error
	SetActive(ctx context.Context, id string, active bool) error
	SoftDelete(ctx context.Context, id string) error
}

// CreateServiceRequest represents payload for creating service offerings.
type CreateServiceRequest struct {
	Title       string  `json:"title" validate:"required,max=200"`
	Slug        string  `json:"slug" validate:"required,max=200"`
	Description *string `json:"description"`
	Icon        *string `json:"icon" validate:"omitempty,max=100"`
	SortOrder   int     `json:"sortOrder"`
}

// UpdateServiceRequest represents payload for updating service offerings.
type UpdateServiceRequest struct {
	Title       string  `json:"title" validate:"required,max=200"`
	Slug        string  `json:"slug" validate:"required,max=200"`
	Description *string `json:"description"`
	Icon        *string `json:"icon" validate:"omitempty,max=100"`
	SortOrder   *int    `json:"sortOrder"`
	IsActive    *bool   `json:"isActive"`
}

// CatalogService manages the construction service offerings shown on the
// public site.
type CatalogService struct {
	repo      serviceRepository
	cache     ContentCache
	cacheTTL  time.Duration
	validator *validator.Validate
	logger    *zap.Logger
}

// NewCatalogService constructs a CatalogService.
func NewCatalogService(repo serviceRepository, cache ContentCache, cacheTTL time.Duration, validate *validator.Validate, logger *zap.Logger) *CatalogService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CatalogService{repo: repo, cache: cache, cacheTTL: cacheTTL, validator: validate, logger: logger}
}

type serviceListPayload struct {
	Items []models.Service `json:"items"`
	Total int              `json:"total"`
}

// List returns service offerings plus pagination data.
func (s *CatalogService) List(ctx context.Context, filter models.ServiceFilter) ([]models.Service, *models.Pagination, error) {
	key := listCacheKey("services",
		boolPart(filter.Active),
		filter.Search,
		strconv.Itoa(filter.Page),
		strconv.Itoa(filter.PageSize),
		filter.SortBy,
		filter.SortOrder,
	)

	var cached serviceListPayload
	if s.cache != nil && s.cache.Get(ctx, key, &cached) == nil {
		return cached.Items, paginationFor(filter.Page, filter.PageSize, cached.Total), nil
	}

	services, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list services")
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, key, serviceListPayload{Items: services, Total: total}, s.cacheTTL); err != nil {
			s.logger.Warn("failed to cache service list", zap.Error(err))
		}
	}

	return services, paginationFor(filter.Page, filter.PageSize, total), nil
}

// Get returns a service offering by id.
func (s *CatalogService) Get(ctx context.Context, id string) (*models.Service, error) {
	svc, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "service not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load service")
	}
	return svc, nil
}

// GetBySlug returns a service offering by its public slug.
func (s *CatalogService) GetBySlug(ctx context.Context, slug string) (*models.Service, error) {
	svc, err := s.repo.FindBySlug(ctx, normalizeSlug(slug))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "service not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load service")
	}
	return svc, nil
}

// Create registers a new service offering.
func (s *CatalogService) Create(ctx context.Context, req CreateServiceRequest) (*models.Service, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, appErrors.ErrValidation.Message)
	}

	slug := normalizeSlug(req.Slug)
	if err := s.ensureUniqueSlug(ctx, slug, ""); err != nil {
		return nil, err
	}

	svc := &models.Service{
		Title:       strings.TrimSpace(req.Title),
		Slug:        slug,
		Description: normalizeOptional(req.Description),
		Icon:        normalizeOptional(req.Icon),
		SortOrder:   req.SortOrder,
		IsActive:    true,
	}

	if err := s.repo.Create(ctx, svc); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create service")
	}

	s.invalidate(ctx)
	return svc, nil
}

// Update modifies an existing service offering.
func (s *CatalogService) Update(ctx context.Context, id string, req UpdateServiceRequest) (*models.Service, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, appErrors.ErrValidation.Message)
	}

	svc, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	slug := normalizeSlug(req.Slug)
	if err := s.ensureUniqueSlug(ctx, slug, id); err != nil {
		return nil, err
	}

	svc.Title = strings.TrimSpace(req.Title)
	svc.Slug = slug
	svc.Description = normalizeOptional(req.Description)
	svc.Icon = normalizeOptional(req.Icon)
	if req.SortOrder != nil {
		svc.SortOrder = *req.SortOrder
	}
	if req.IsActive != nil {
		svc.IsActive = *req.IsActive
	}

	if err := s.repo.Update(ctx, svc); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update service")
	}

	s.invalidate(ctx)
	return svc, nil
}

// ToggleActive flips the visibility flag.
func (s *CatalogService) ToggleActive(ctx context.Context, id string) (*models.Service, error) {
	svc, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.repo.SetActive(ctx, id, !svc.IsActive); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to toggle service")
	}
	svc.IsActive = !svc.IsActive
	s.invalidate(ctx)
	return svc, nil
}

// Delete soft-deletes a service offering.
func (s *CatalogService) Delete(ctx context.Context, id string) error {
	if _, err := s.Get(ctx, id); err != nil {
		return err
	}
	if err := s.repo.SoftDelete(ctx, id); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete service")
	}
	s.invalidate(ctx)
	return nil
}

func (s *CatalogService) ensureUniqueSlug(ctx context.Context, slug, excludeID string) error {
	exists, err := s.repo.ExistsBySlug(ctx, slug, excludeID)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check slug")
	}
	if exists {
		return appErrors.Clone(appErrors.ErrConflict, "Slug already in use")
	}
	return nil
}

func (s *CatalogService) invalidate(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.DeleteByPattern(ctx, "cms:services:*"); err != nil {
		s.logger.Warn("failed to invalidate service cache", zap.Error(err))
	}
	if err := s.cache.DeleteByPattern(ctx, statsCacheKey); err != nil {
		s.logger.Warn("failed to invalidate stats cache", zap.Error(err))
	}
}
