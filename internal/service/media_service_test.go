package service

import (
	"bytes"
	"context"
	"database/sql"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/yildiz-insaat/cms-api/internal/models"
	"github.com/yildiz-insaat/cms-api/pkg/config"
	appErrors "github.com/yildiz-insaat/cms-api/pkg/errors"
)

type mockMediaRepo struct {
	files     map[string]*models.Media
	createErr error
}

func newMockMediaRepo(files ...*models.Media) *mockMediaRepo {
	repo := &mockMediaRepo{files: make(map[string]*models.Media)}
	for _, f := range files {
		repo.files[f.ID] = f
	}
	return repo
}

func (m *mockMediaRepo) Create(ctx context.Context, media *models.Media) error {
	if m.createErr != nil {
		return m.createErr
	}
	media.ID = "media-1"
	m.files[media.ID] = media
	return nil
}

func (m *mockMediaRepo) List(ctx context.Context, filter models.MediaFilter) ([]models.Media, int, error) {
	var out []models.Media
	for _, f := range m.files {
		out = append(out, *f)
	}
	return out, len(out), nil
}

func (m *mockMediaRepo) FindByID(ctx context.Context, id string) (*models.Media, error) {
	f, ok := m.files[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	cp := *f
	return &cp, nil
}

func (m *mockMediaRepo) Delete(ctx context.Context, id string) error {
	delete(m.files, id)
	return nil
}

type mockFileStore struct {
	saved   []string
	deleted []string
}

func (m *mockFileStore) SaveStream(filename string, r io.Reader) (string, error) {
	if _, err := io.Copy(io.Discard, r); err != nil {
		return "", err
	}
	m.saved = append(m.saved, filename)
	return "/tmp/uploads/" + filename, nil
}

func (m *mockFileStore) Delete(filename string) error {
	m.deleted = append(m.deleted, filename)
	return nil
}

func uploadConfig() config.UploadConfig {
	return config.UploadConfig{
		Dir:              "/tmp/uploads",
		MaxFileSizeBytes: 1024,
		AllowedMIMEs:     []string{"image/*", "application/pdf"},
	}
}

func TestMediaUploadStoresFileAndRecord(t *testing.T) {
	repo := newMockMediaRepo()
	store := &mockFileStore{}
	svc := NewMediaService(repo, store, uploadConfig(), zap.NewNop())

	media, err := svc.Upload(context.Background(), "u-1", UploadInput{
		OriginalName: "Plan Çizimi.PNG",
		MimeType:     "image/png",
		SizeBytes:    512,
		Content:      bytes.NewReader(make([]byte, 512)),
	})
	require.NoError(t, err)
	require.Len(t, store.saved, 1)
	assert.True(t, strings.HasSuffix(media.FileName, ".png"))
	assert.Equal(t, "/uploads/"+media.FileName, media.URL)
	assert.Equal(t, "Plan Çizimi.PNG", media.OriginalName)
	require.NotNil(t, media.UploadedBy)
	assert.Equal(t, "u-1", *media.UploadedBy)
}

func TestMediaUploadRejectsOversizedFile(t *testing.T) {
	svc := NewMediaService(newMockMediaRepo(), &mockFileStore{}, uploadConfig(), zap.NewNop())

	_, err := svc.Upload(context.Background(), "u-1", UploadInput{
		OriginalName: "huge.png",
		MimeType:     "image/png",
		SizeBytes:    4096,
		Content:      bytes.NewReader(nil),
	})
	require.Error(t, err)
	assert.Equal(t, 400, appErrors.FromError(err).Status)
}

func TestMediaUploadRejectsDisallowedMIME(t *testing.T) {
	store := &mockFileStore{}
	svc := NewMediaService(newMockMediaRepo(), store, uploadConfig(), zap.NewNop())

	_, err := svc.Upload(context.Background(), "u-1", UploadInput{
		OriginalName: "malware.exe",
		MimeType:     "application/x-msdownload",
		SizeBytes:    100,
		Content:      bytes.NewReader(nil),
	})
	require.Error(t, err)
	assert.Equal(t, 400, appErrors.FromError(err).Status)
	assert.Empty(t, store.saved)
}

func TestMediaUploadWildcardMIME(t *testing.T) {
	svc := NewMediaService(newMockMediaRepo(), &mockFileStore{}, uploadConfig(), zap.NewNop())

	_, err := svc.Upload(context.Background(), "u-1", UploadInput{
		OriginalName: "photo.webp",
		MimeType:     "image/webp",
		SizeBytes:    100,
		Content:      bytes.NewReader(make([]byte, 100)),
	})
	require.NoError(t, err)
}

func TestMediaUploadCleansUpOnRecordFailure(t *testing.T) {
	repo := newMockMediaRepo()
	repo.createErr = errors.New("db down")
	store := &mockFileStore{}
	svc := NewMediaService(repo, store, uploadConfig(), zap.NewNop())

	_, err := svc.Upload(context.Background(), "u-1", UploadInput{
		OriginalName: "photo.png",
		MimeType:     "image/png",
		SizeBytes:    100,
		Content:      bytes.NewReader(make([]byte, 100)),
	})
	require.Error(t, err)
	require.Len(t, store.saved, 1)
	assert.Equal(t, store.saved, store.deleted)
}

func TestMediaDeleteRemovesRecordAndFile(t *testing.T) {
	repo := newMockMediaRepo(&models.Media{ID: "m-1", FileName: "abc.png"})
	store := &mockFileStore{}
	svc := NewMediaService(repo, store, uploadConfig(), zap.NewNop())

	require.NoError(t, svc.Delete(context.Background(), "m-1"))
	assert.Empty(t, repo.files)
	assert.Equal(t, []string{"abc.png"}, store.deleted)
}

func TestMediaDeleteMissingNotFound(t *testing.T) {
	svc := NewMediaService(newMockMediaRepo(), &mockFileStore{}, uploadConfig(), zap.NewNop())
	err := svc.Delete(context.Background(), "missing")
	require.Error(t, err)
	assert.Equal(t, 404, appErrors.FromError(err).Status)
}
