package token

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yildiz-insaat/cms-api/internal/models"
)

const (
	testAccessSecret  = "access-secret-0123456789-0123456789-abc"
	testRefreshSecret = "refresh-secret-0123456789-0123456789-ab"
)

func testIssuer(t *testing.T) *Issuer {
	t.Helper()
	issuer, err := NewIssuer(Config{
		AccessSecret:  testAccessSecret,
		RefreshSecret: testRefreshSecret,
		AccessExpiry:  15 * time.Minute,
		RefreshExpiry: 7 * 24 * time.Hour,
		Issuer:        "cms-api",
	})
	require.NoError(t, err)
	return issuer
}

func TestNewIssuerRejectsShortSecrets(t *testing.T) {
	_, err := NewIssuer(Config{AccessSecret: "short", RefreshSecret: testRefreshSecret})
	assert.Error(t, err)

	_, err = NewIssuer(Config{AccessSecret: testAccessSecret, RefreshSecret: "short"})
	assert.Error(t, err)
}

func TestAccessTokenRoundTrip(t *testing.T) {
	issuer := testIssuer(t)
	user := &models.User{ID: "u-1", Email: "editor@example.com", Role: models.RoleEditor}

	signed, err := issuer.IssueAccessToken(user)
	require.NoError(t, err)

	claims, err := issuer.VerifyAccessToken(signed)
	require.NoError(t, err)
	assert.Equal(t, "u-1", claims.UserID)
	assert.Equal(t, "editor@example.com", claims.Email)
	assert.Equal(t, models.RoleEditor, claims.Role)
}

func TestRefreshTokenNotValidAsAccessToken(t *testing.T) {
	issuer := testIssuer(t)
	user := &models.User{ID: "u-1", Email: "editor@example.com", Role: models.RoleEditor}

	refresh, err := issuer.IssueRefreshToken(user)
	require.NoError(t, err)

	_, err = issuer.VerifyAccessToken(refresh)
	assert.Error(t, err)

	_, err = issuer.VerifyRefreshToken(refresh)
	assert.NoError(t, err)
}

func TestExpiredTokenRejected(t *testing.T) {
	issuer := testIssuer(t)
	user := &models.User{ID: "u-1", Role: models.RoleAdmin}

	signed, err := issuer.IssueAccessToken(user)
	require.NoError(t, err)

	issuer.now = func() time.Time { return time.Now().UTC().Add(16 * time.Minute) }
	_, err = issuer.VerifyAccessToken(signed)
	assert.Error(t, err)
}

func TestTamperedTokenRejected(t *testing.T) {
	issuer := testIssuer(t)
	user := &models.User{ID: "u-1", Role: models.RoleAdmin}

	signed, err := issuer.IssueAccessToken(user)
	require.NoError(t, err)

	tampered := signed[:len(signed)-2] + "xx"
	_, err = issuer.VerifyAccessToken(tampered)
	assert.Error(t, err)
}
