package middleware

import (
	"context"
	"database/sql"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yildiz-insaat/cms-api/internal/models"
	"github.com/yildiz-insaat/cms-api/internal/token"
)

type stubUserLoader struct {
	users map[string]*models.User
}

func (s *stubUserLoader) FindByID(ctx context.Context, id string) (*models.User, error) {
	if user, ok := s.users[id]; ok {
		cp := *user
		return &cp, nil
	}
	return nil, sql.ErrNoRows
}

func testIssuer(t *testing.T) *token.Issuer {
	t.Helper()
	issuer, err := token.NewIssuer(token.Config{
		AccessSecret:  "access-secret-0123456789-0123456789-abc",
		RefreshSecret: "refresh-secret-0123456789-0123456789-ab",
		AccessExpiry:  15 * time.Minute,
		RefreshExpiry: 7 * 24 * time.Hour,
		Issuer:        "cms-api",
	})
	require.NoError(t, err)
	return issuer
}

func protectedRouter(issuer *token.Issuer, users *stubUserLoader, extra ...gin.HandlerFunc) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	handlers := append([]gin.HandlerFunc{Auth(issuer, users)}, extra...)
	handlers = append(handlers, func(c *gin.Context) {
		user, _ := CurrentUser(c)
		c.JSON(http.StatusOK, gin.H{"email": user.Email})
	})
	r.GET("/protected", handlers...)
	return r
}

func doRequest(r *gin.Engine, authorization string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	if authorization != "" {
		req.Header.Set("Authorization", authorization)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestAuthAcceptsValidToken(t *testing.T) {
	issuer := testIssuer(t)
	user := &models.User{ID: "u-1", Email: "editor@example.com", Role: models.RoleEditor, IsActive: true}
	access, err := issuer.IssueAccessToken(user)
	require.NoError(t, err)

	r := protectedRouter(issuer, &stubUserLoader{users: map[string]*models.User{"u-1": user}})
	w := doRequest(r, "Bearer "+access)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "editor@example.com")
}

func TestAuthRejectsMissingHeader(t *testing.T) {
	r := protectedRouter(testIssuer(t), &stubUserLoader{})
	w := doRequest(r, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuthRejectsMalformedHeader(t *testing.T) {
	r := protectedRouter(testIssuer(t), &stubUserLoader{})
	w := doRequest(r, "Token abc")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuthRejectsRefreshTokenOnProtectedRoute(t *testing.T) {
	issuer := testIssuer(t)
	user := &models.User{ID: "u-1", Email: "editor@example.com", Role: models.RoleEditor, IsActive: true}
	refresh, err := issuer.IssueRefreshToken(user)
	require.NoError(t, err)

	r := protectedRouter(issuer, &stubUserLoader{users: map[string]*models.User{"u-1": user}})
	w := doRequest(r, "Bearer "+refresh)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuthRejectsDeactivatedUserImmediately(t *testing.T) {
	issuer := testIssuer(t)
	user := &models.User{ID: "u-1", Email: "editor@example.com", Role: models.RoleEditor, IsActive: true}
	access, err := issuer.IssueAccessToken(user)
	require.NoError(t, err)

	loader := &stubUserLoader{users: map[string]*models.User{"u-1": user}}
	r := protectedRouter(issuer, loader)

	// Token still valid, but the account was switched off after issuance.
	user.IsActive = false
	w := doRequest(r, "Bearer "+access)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "account is inactive")
}

func TestAuthRejectsDeletedUser(t *testing.T) {
	issuer := testIssuer(t)
	user := &models.User{ID: "u-1", Email: "gone@example.com", Role: models.RoleEditor, IsActive: true}
	access, err := issuer.IssueAccessToken(user)
	require.NoError(t, err)

	r := protectedRouter(issuer, &stubUserLoader{users: map[string]*models.User{}})
	w := doRequest(r, "Bearer "+access)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRequireRolesAllowsMatchingRole(t *testing.T) {
	issuer := testIssuer(t)
	admin := &models.User{ID: "u-1", Email: "admin@example.com", Role: models.RoleAdmin, IsActive: true}
	access, err := issuer.IssueAccessToken(admin)
	require.NoError(t, err)

	loader := &stubUserLoader{users: map[string]*models.User{"u-1": admin}}
	r := protectedRouter(issuer, loader, RequireRoles(models.RoleSuperAdmin, models.RoleAdmin))
	w := doRequest(r, "Bearer "+access)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRequireRolesForbidsWrongRole(t *testing.T) {
	issuer := testIssuer(t)
	editor := &models.User{ID: "u-1", Email: "editor@example.com", Role: models.RoleEditor, IsActive: true}
	access, err := issuer.IssueAccessToken(editor)
	require.NoError(t, err)

	loader := &stubUserLoader{users: map[string]*models.User{"u-1": editor}}
	r := protectedRouter(issuer, loader, RequireRoles(models.RoleSuperAdmin, models.RoleAdmin))
	w := doRequest(r, "Bearer "+access)
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestRequireRolesWithoutIdentityUnauthorized(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/admin", RequireRoles(models.RoleAdmin), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/admin", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
