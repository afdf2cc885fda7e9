package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	appErrors "github.com/yildiz-insaat/cms-api/pkg/errors"
)

func TestCacheRepositoryNilClientPassThrough(t *testing.T) {
	repo := NewCacheRepository(nil, nil)

	var dest string
	assert.Equal(t, appErrors.ErrCacheMiss, repo.Get(context.Background(), "cms:settings", &dest))
	assert.NoError(t, repo.Set(context.Background(), "cms:settings", "value", time.Minute))
	assert.NoError(t, repo.DeleteByPattern(context.Background(), "cms:projects:*"))
	assert.NoError(t, repo.Close())
}
