package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/yildiz-insaat/cms-api/internal/models"
	appErrors "github.com/yildiz-insaat/cms-api/pkg/errors"
)

const settingsCacheKey = "cms:settings"

type settingsRepository interface {
	Get(ctx context.Context) (*models.SiteSettings, error)
	Upsert(ctx context.Context, settings *models.SiteSettings) error
}

// UpdateSettingsRequest is the admin site settings payload.
type UpdateSettingsRequest struct {
	SiteTitle   string          `json:"siteTitle" validate:"required,max=200"`
	Description *string         `json:"description" validate:"omitempty,max=500"`
	Keywords    *string         `json:"keywords" validate:"omitempty,max=500"`
	Email       *string         `json:"email" validate:"omitempty,email"`
	Phone       *string         `json:"phone" validate:"omitempty,max=30"`
	Address     *string         `json:"address" validate:"omitempty,max=500"`
	SocialLinks json.RawMessage `json:"socialLinks"`
}

// SettingsService reads and updates the single site settings row.
type SettingsService struct {
	repo      settingsRepository
	cache     ContentCache
	cacheTTL  time.Duration
	validator *validator.Validate
	logger    *zap.Logger
}

// NewSettingsService constructs a SettingsService.
func NewSettingsService(repo settingsRepository, cache ContentCache, cacheTTL time.Duration, validate *validator.Validate, logger *zap.Logger) *SettingsService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SettingsService{repo: repo, cache: cache, cacheTTL: cacheTTL, validator: validate, logger: logger}
}

// Get returns the current site settings, defaulting to an empty record when
// none has been saved yet.
func (s *SettingsService) Get(ctx context.Context) (*models.SiteSettings, error) {
	if s.cache != nil {
		var cached models.SiteSettings
		if s.cache.Get(ctx, settingsCacheKey, &cached) == nil {
			return &cached, nil
		}
	}

	settings, err := s.repo.Get(ctx)
	if err != nil {
		if err == sql.ErrNoRows {
			return &models.SiteSettings{}, nil
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load settings")
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, settingsCacheKey, settings, s.cacheTTL); err != nil {
			s.logger.Warn("failed to cache settings", zap.Error(err))
		}
	}
	return settings, nil
}

// Update replaces the site settings row.
func (s *SettingsService) Update(ctx context.Context, req UpdateSettingsRequest) (*models.SiteSettings, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, appErrors.ErrValidation.Message)
	}
	if len(req.SocialLinks) > 0 && !json.Valid(req.SocialLinks) {
		return nil, appErrors.Clone(appErrors.ErrValidation, "socialLinks must be valid JSON")
	}

	settings := &models.SiteSettings{
		SiteTitle:   strings.TrimSpace(req.SiteTitle),
		Description: normalizeOptional(req.Description),
		Keywords:    normalizeOptional(req.Keywords),
		Email:       normalizeOptional(req.Email),
		Phone:       normalizeOptional(req.Phone),
		Address:     normalizeOptional(req.Address),
		SocialLinks: req.SocialLinks,
	}

	if err := s.repo.Upsert(ctx, settings); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to save settings")
	}

	if s.cache != nil {
		if err := s.cache.DeleteByPattern(ctx, settingsCacheKey); err != nil {
			s.logger.Warn("failed to invalidate settings cache", zap.Error(err))
		}
	}
	return settings, nil
}
