package service

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/yildiz-insaat/cms-api/internal/models"
	"github.com/yildiz-insaat/cms-api/pkg/config"
	appErrors "github.com/yildiz-insaat/cms-api/pkg/errors"
)

type mediaRepository interface {
	Create(ctx context.Context, media *models.Media) error
	List(ctx context.Context, filter models.MediaFilter) ([]models.Media, int, error)
	FindByID(ctx context.Context, id string) (*models.Media, error)
	Delete(ctx context.Context, id string) error
}

type fileStore interface {
	SaveStream(filename string, r io.Reader) (string, error)
	Delete(filename string) error
}

// UploadInput carries a single incoming file.
type UploadInput struct {
	OriginalName string
	MimeType     string
	SizeBytes    int64
	Content      io.Reader
}

// MediaService manages the uploaded file library.
type MediaService struct {
	repo    mediaRepository
	storage fileStore
	cfg     config.UploadConfig
	logger  *zap.Logger
}

// NewMediaService constructs a MediaService.
func NewMediaService(repo mediaRepository, storage fileStore, cfg config.UploadConfig, logger *zap.Logger) *MediaService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &MediaService{repo: repo, storage: storage, cfg: cfg, logger: logger}
}

// Upload validates and stores a new file, then records it in the library.
func (s *MediaService) Upload(ctx context.Context, uploaderID string, in UploadInput) (*models.Media, error) {
	if in.SizeBytes <= 0 {
		return nil, appErrors.Clone(appErrors.ErrValidation, "file is empty")
	}
	if s.cfg.MaxFileSizeBytes > 0 && in.SizeBytes > s.cfg.MaxFileSizeBytes {
		return nil, appErrors.Clone(appErrors.ErrValidation,
			fmt.Sprintf("file exceeds the %d byte limit", s.cfg.MaxFileSizeBytes))
	}
	if !s.mimeAllowed(in.MimeType) {
		return nil, appErrors.Clone(appErrors.ErrValidation,
			fmt.Sprintf("unsupported file type: %s", in.MimeType))
	}

	ext := strings.ToLower(filepath.Ext(in.OriginalName))
	fileName := uuid.NewString() + ext

	if _, err := s.storage.SaveStream(fileName, in.Content); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to store file")
	}

	media := &models.Media{
		FileName:     fileName,
		OriginalName: filepath.Base(in.OriginalName),
		MimeType:     in.MimeType,
		SizeBytes:    in.SizeBytes,
		URL:          "/uploads/" + fileName,
	}
	if uploaderID != "" {
		media.UploadedBy = &uploaderID
	}

	if err := s.repo.Create(ctx, media); err != nil {
		if rmErr := s.storage.Delete(fileName); rmErr != nil {
			s.logger.Warn("failed to remove orphaned upload", zap.String("file", fileName), zap.Error(rmErr))
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to save file record")
	}

	return media, nil
}

// List returns library entries matching the filter.
func (s *MediaService) List(ctx context.Context, filter models.MediaFilter) ([]models.Media, *models.Pagination, error) {
	files, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list files")
	}
	return files, paginationFor(filter.Page, filter.PageSize, total), nil
}

// Get returns a single library entry.
func (s *MediaService) Get(ctx context.Context, id string) (*models.Media, error) {
	media, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "file not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load file")
	}
	return media, nil
}

// Delete removes the database record and the file on disk.
func (s *MediaService) Delete(ctx context.Context, id string) error {
	media, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete file record")
	}
	if err := s.storage.Delete(media.FileName); err != nil {
		s.logger.Warn("failed to remove file from disk", zap.String("file", media.FileName), zap.Error(err))
	}
	return nil
}

func (s *MediaService) mimeAllowed(mimeType string) bool {
	if len(s.cfg.AllowedMIMEs) == 0 {
		return true
	}
	mimeType = strings.ToLower(strings.TrimSpace(mimeType))
	for _, allowed := range s.cfg.AllowedMIMEs {
		allowed = strings.ToLower(strings.TrimSpace(allowed))
		if allowed == mimeType {
			return true
		}
		if strings.HasSuffix(allowed, "/*") && strings.HasPrefix(mimeType, strings.TrimSuffix(allowed, "*")) {
			return true
		}
	}
	return false
}
