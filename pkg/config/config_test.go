package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	testAccessSecret  = "access-secret-0123456789-0123456789-abc"
	testRefreshSecret = "refresh-secret-0123456789-0123456789-ab"
)

// chdirEmpty moves the test into a directory without a .env file.
func chdirEmpty(t *testing.T) {
	t.Helper()
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(t.TempDir()))
	t.Cleanup(func() {
		_ = os.Chdir(wd)
	})
}

func TestLoadFromEnvironmentWithoutDotEnv(t *testing.T) {
	chdirEmpty(t)
	t.Setenv("JWT_SECRET", testAccessSecret)
	t.Setenv("JWT_REFRESH_SECRET", testRefreshSecret)
	t.Setenv("PORT", "9090")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 9090, cfg.Port)
	assert.Equal(t, "/api", cfg.APIPrefix)
	assert.Equal(t, testAccessSecret, cfg.JWT.AccessSecret)
	assert.Equal(t, 15*time.Minute, cfg.JWT.AccessExpiry)
}

func TestLoadRejectsShortSecret(t *testing.T) {
	chdirEmpty(t)
	t.Setenv("JWT_SECRET", "short")
	t.Setenv("JWT_REFRESH_SECRET", testRefreshSecret)

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "JWT_SECRET")
}

func TestLoadRejectsSharedSecrets(t *testing.T) {
	chdirEmpty(t)
	t.Setenv("JWT_SECRET", testAccessSecret)
	t.Setenv("JWT_REFRESH_SECRET", testAccessSecret)

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "must differ")
}
