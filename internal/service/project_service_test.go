package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/yildiz-insaat/cms-api/internal/models"
	appErrors "github.com/yildiz-insaat/cms-api/pkg/errors"
)

type mockProjectRepo struct {
	projects  map[string]*models.Project
	images    map[string][]models.ProjectImage
	nextID    int
	listCalls int
}

func newMockProjectRepo(projects ...*models.Project) *mockProjectRepo {
	repo := &mockProjectRepo{
		projects: make(map[string]*models.Project),
		images:   make(map[string][]models.ProjectImage),
	}
	for _, p := range projects {
		repo.projects[p.ID] = p
	}
	return repo
}

func (m *mockProjectRepo) List(ctx context.Context, filter models.ProjectFilter) ([]models.Project, int, error) {
	m.listCalls++
	var out []models.Project
	for _, p := range m.projects {
		if p.IsDeleted {
			continue
		}
		if filter.Active != nil && p.IsActive != *filter.Active {
			continue
		}
		out = append(out, *p)
	}
	return out, len(out), nil
}

func (m *mockProjectRepo) FindByID(ctx context.Context, id string) (*models.Project, error) {
	p, ok := m.projects[id]
	if !ok || p.IsDeleted {
		return nil, sql.ErrNoRows
	}
	cp := *p
	cp.Images = m.images[id]
	return &cp, nil
}

func (m *mockProjectRepo) FindBySlug(ctx context.Context, slug string) (*models.Project, error) {
	for _, p := range m.projects {
		if p.Slug == slug && !p.IsDeleted {
			cp := *p
			cp.Images = m.images[p.ID]
			return &cp, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (m *mockProjectRepo) ExistsBySlug(ctx context.Context, slug, excludeID string) (bool, error) {
	for _, p := range m.projects {
		if p.Slug == slug && !p.IsDeleted && p.ID != excludeID {
			return true, nil
		}
	}
	return false, nil
}

func (m *mockProjectRepo) Create(ctx context.Context, project *models.Project) error {
	m.nextID++
	project.ID = "project-" + project.Slug
	m.projects[project.ID] = project
	return nil
}

func (m *mockProjectRepo) Update(ctx context.Context, project *models.Project) error {
	m.projects[project.ID] = project
	return nil
}

func (m *mockProjectRepo) SetActive(ctx context.Context, id string, active bool) error {
	if p, ok := m.projects[id]; ok {
		p.IsActive = active
	}
	return nil
}

func (m *mockProjectRepo) SoftDelete(ctx context.Context, id string) error {
	if p, ok := m.projects[id]; ok {
		p.IsDeleted = true
	}
	return nil
}

func (m *mockProjectRepo) ReplaceImages(ctx context.Context, projectID string, images []models.ProjectImage) error {
	m.images[projectID] = images
	return nil
}

func (m *mockProjectRepo) ImagesByProject(ctx context.Context, projectID string) ([]models.ProjectImage, error) {
	return m.images[projectID], nil
}

type memoryCache struct {
	entries  map[string][]byte
	patterns []string
}

func newMemoryCache() *memoryCache {
	return &memoryCache{entries: make(map[string][]byte)}
}

func (c *memoryCache) Get(ctx context.Context, key string, dest interface{}) error {
	raw, ok := c.entries[key]
	if !ok {
		return appErrors.ErrCacheMiss
	}
	return json.Unmarshal(raw, dest)
}

func (c *memoryCache) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	c.entries[key] = raw
	return nil
}

func (c *memoryCache) DeleteByPattern(ctx context.Context, pattern string) error {
	c.patterns = append(c.patterns, pattern)
	prefix := strings.TrimSuffix(pattern, "*")
	for key := range c.entries {
		if strings.HasPrefix(key, prefix) {
			delete(c.entries, key)
		}
	}
	return nil
}

func TestProjectCreateWithImages(t *testing.T) {
	repo := newMockProjectRepo()
	svc := NewProjectService(repo, nil, 0, validator.New(), zap.NewNop())

	alt := "Site overview"
	project, err := svc.Create(context.Background(), CreateProjectRequest{
		Title: "Harbor Tower",
		Slug:  "Harbor-Tower",
		Images: []ProjectImageRequest{
			{URL: "https://cdn.example.com/1.jpg", Alt: &alt},
			{URL: "https://cdn.example.com/2.jpg"},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, "harbor-tower", project.Slug)
	assert.True(t, project.IsActive)
	require.Len(t, project.Images, 2)
	assert.Equal(t, 0, project.Images[0].SortOrder)
	assert.Equal(t, 1, project.Images[1].SortOrder)
}

func TestProjectCreateDuplicateSlugConflicts(t *testing.T) {
	existing := &models.Project{ID: "p-1", Title: "Old", Slug: "harbor-tower"}
	svc := NewProjectService(newMockProjectRepo(existing), nil, 0, validator.New(), zap.NewNop())

	_, err := svc.Create(context.Background(), CreateProjectRequest{Title: "New", Slug: "harbor-tower"})
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, 400, appErr.Status)
	assert.Equal(t, "Slug already in use", appErr.Message)
}

func TestProjectUpdateKeepsOwnSlug(t *testing.T) {
	existing := &models.Project{ID: "p-1", Title: "Old", Slug: "harbor-tower", IsActive: true}
	svc := NewProjectService(newMockProjectRepo(existing), nil, 0, validator.New(), zap.NewNop())

	updated, err := svc.Update(context.Background(), "p-1", UpdateProjectRequest{
		Title: "Harbor Tower II",
		Slug:  "harbor-tower",
	})
	require.NoError(t, err)
	assert.Equal(t, "Harbor Tower II", updated.Title)
}

func TestProjectUpdateNilImagesLeavesGallery(t *testing.T) {
	repo := newMockProjectRepo(&models.Project{ID: "p-1", Title: "Old", Slug: "harbor-tower", IsActive: true})
	repo.images["p-1"] = []models.ProjectImage{{URL: "https://cdn.example.com/keep.jpg"}}
	svc := NewProjectService(repo, nil, 0, validator.New(), zap.NewNop())

	updated, err := svc.Update(context.Background(), "p-1", UpdateProjectRequest{Title: "Old", Slug: "harbor-tower"})
	require.NoError(t, err)
	assert.Len(t, updated.Images, 1)

	// An explicitly empty slice clears the gallery.
	updated, err = svc.Update(context.Background(), "p-1", UpdateProjectRequest{
		Title:  "Old",
		Slug:   "harbor-tower",
		Images: []ProjectImageRequest{},
	})
	require.NoError(t, err)
	assert.Empty(t, updated.Images)
}

func TestProjectListUsesCache(t *testing.T) {
	repo := newMockProjectRepo(&models.Project{ID: "p-1", Title: "Cached", Slug: "cached", IsActive: true})
	cache := newMemoryCache()
	svc := NewProjectService(repo, cache, time.Minute, validator.New(), zap.NewNop())

	_, _, err := svc.List(context.Background(), models.ProjectFilter{Page: 1, PageSize: 20})
	require.NoError(t, err)
	require.NotEmpty(t, cache.entries)

	// Deleting through the repo directly is invisible while the cache holds.
	repo.projects["p-1"].IsDeleted = true
	items, _, err := svc.List(context.Background(), models.ProjectFilter{Page: 1, PageSize: 20})
	require.NoError(t, err)
	assert.Len(t, items, 1)
}

func TestProjectListCacheKeyIgnoresPointerIdentity(t *testing.T) {
	repo := newMockProjectRepo(&models.Project{ID: "p-1", Title: "Cached", Slug: "cached", IsActive: true})
	cache := newMemoryCache()
	svc := NewProjectService(repo, cache, time.Minute, validator.New(), zap.NewNop())

	// Handlers allocate a fresh *bool per request; equal values must still
	// share one cache entry.
	first := true
	_, _, err := svc.List(context.Background(), models.ProjectFilter{Active: &first, Page: 1, PageSize: 20})
	require.NoError(t, err)

	second := true
	_, _, err = svc.List(context.Background(), models.ProjectFilter{Active: &second, Page: 1, PageSize: 20})
	require.NoError(t, err)

	assert.Equal(t, 1, repo.listCalls)
	assert.Len(t, cache.entries, 1)

	// A different filter value gets its own entry.
	inactive := false
	_, _, err = svc.List(context.Background(), models.ProjectFilter{Active: &inactive, Page: 1, PageSize: 20})
	require.NoError(t, err)
	assert.Equal(t, 2, repo.listCalls)
	assert.Len(t, cache.entries, 2)
}

func TestProjectWriteInvalidatesCache(t *testing.T) {
	repo := newMockProjectRepo(&models.Project{ID: "p-1", Title: "Old", Slug: "old", IsActive: true})
	cache := newMemoryCache()
	svc := NewProjectService(repo, cache, time.Minute, validator.New(), zap.NewNop())

	_, _, err := svc.List(context.Background(), models.ProjectFilter{Page: 1, PageSize: 20})
	require.NoError(t, err)

	_, err = svc.ToggleActive(context.Background(), "p-1")
	require.NoError(t, err)
	assert.Contains(t, cache.patterns, "cms:projects:*")
	assert.Contains(t, cache.patterns, statsCacheKey)
}

func TestProjectDeleteMissingNotFound(t *testing.T) {
	svc := NewProjectService(newMockProjectRepo(), nil, 0, validator.New(), zap.NewNop())
	err := svc.Delete(context.Background(), "missing")
	require.Error(t, err)
	assert.Equal(t, 404, appErrors.FromError(err).Status)
}
