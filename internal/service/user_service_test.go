package service

import (
	"context"
	"database/sql"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/yildiz-insaat/cms-api/internal/models"
	appErrors "github.com/yildiz-insaat/cms-api/pkg/errors"
)

type mockUserAdminRepo struct {
	users         map[string]*models.User
	revokedTokens []string
	passwordSet   map[string]string
}

func newMockUserAdminRepo(users ...*models.User) *mockUserAdminRepo {
	repo := &mockUserAdminRepo{
		users:       make(map[string]*models.User),
		passwordSet: make(map[string]string),
	}
	for _, u := range users {
		repo.users[u.ID] = u
	}
	return repo
}

func (m *mockUserAdminRepo) List(ctx context.Context, filter models.UserFilter) ([]models.User, int, error) {
	var out []models.User
	for _, u := range m.users {
		if !u.IsDeleted {
			out = append(out, *u)
		}
	}
	return out, len(out), nil
}

func (m *mockUserAdminRepo) FindByID(ctx context.Context, id string) (*models.User, error) {
	u, ok := m.users[id]
	if !ok || u.IsDeleted {
		return nil, sql.ErrNoRows
	}
	cp := *u
	return &cp, nil
}

func (m *mockUserAdminRepo) ExistsByEmail(ctx context.Context, email, excludeID string) (bool, error) {
	for _, u := range m.users {
		if u.Email == email && !u.IsDeleted && u.ID != excludeID {
			return true, nil
		}
	}
	return false, nil
}

func (m *mockUserAdminRepo) Create(ctx context.Context, user *models.User) error {
	user.ID = "user-" + user.Email
	m.users[user.ID] = user
	return nil
}

func (m *mockUserAdminRepo) Update(ctx context.Context, user *models.User) error {
	m.users[user.ID] = user
	return nil
}

func (m *mockUserAdminRepo) UpdatePassword(ctx context.Context, id, passwordHash string) error {
	m.passwordSet[id] = passwordHash
	return nil
}

func (m *mockUserAdminRepo) SetRefreshToken(ctx context.Context, id string, token *string) error {
	if token == nil {
		m.revokedTokens = append(m.revokedTokens, id)
	}
	return nil
}

func (m *mockUserAdminRepo) SoftDelete(ctx context.Context, id string) error {
	if u, ok := m.users[id]; ok {
		u.IsDeleted = true
	}
	return nil
}

func adminUser(id string) *models.User {
	return &models.User{ID: id, Email: id + "@example.com", Role: models.RoleAdmin, IsActive: true}
}

func TestAdminCreateUserWithExplicitRole(t *testing.T) {
	repo := newMockUserAdminRepo()
	svc := NewUserService(repo, validator.New(), zap.NewNop())

	profile, err := svc.Create(context.Background(), CreateUserRequest{
		Email:    "New.Admin@Example.com",
		Password: "supersecret",
		Role:     models.RoleAdmin,
	})
	require.NoError(t, err)
	assert.Equal(t, "new.admin@example.com", profile.Email)
	assert.Equal(t, models.RoleAdmin, profile.Role)

	stored := repo.users["user-new.admin@example.com"]
	require.NotNil(t, stored)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(stored.PasswordHash), []byte("supersecret")))
}

func TestAdminCreateUserRejectsUnknownRole(t *testing.T) {
	svc := NewUserService(newMockUserAdminRepo(), validator.New(), zap.NewNop())
	_, err := svc.Create(context.Background(), CreateUserRequest{
		Email:    "x@example.com",
		Password: "supersecret",
		Role:     models.UserRole("OWNER"),
	})
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, 400, appErr.Status)
	assert.Equal(t, "invalid role", appErr.Message)
}

func TestAdminCreateUserDuplicateEmail(t *testing.T) {
	repo := newMockUserAdminRepo(&models.User{ID: "u-1", Email: "taken@example.com", IsActive: true})
	svc := NewUserService(repo, validator.New(), zap.NewNop())

	_, err := svc.Create(context.Background(), CreateUserRequest{
		Email:    "taken@example.com",
		Password: "supersecret",
		Role:     models.RoleEditor,
	})
	require.Error(t, err)
	assert.Equal(t, "Email already registered", appErrors.FromError(err).Message)
}

func TestDeactivatingUserRevokesSession(t *testing.T) {
	repo := newMockUserAdminRepo(adminUser("u-1"))
	svc := NewUserService(repo, validator.New(), zap.NewNop())

	inactive := false
	profile, err := svc.Update(context.Background(), "u-1", UpdateUserRequest{
		Email:    "u-1@example.com",
		IsActive: &inactive,
	})
	require.NoError(t, err)
	assert.False(t, profile.IsActive)
	assert.Equal(t, []string{"u-1"}, repo.revokedTokens)
}

func TestUpdateActiveUserKeepsSession(t *testing.T) {
	repo := newMockUserAdminRepo(adminUser("u-1"))
	svc := NewUserService(repo, validator.New(), zap.NewNop())

	_, err := svc.Update(context.Background(), "u-1", UpdateUserRequest{
		Email:     "u-1@example.com",
		FirstName: "Kemal",
	})
	require.NoError(t, err)
	assert.Empty(t, repo.revokedTokens)
}

func TestResetPasswordRevokesSession(t *testing.T) {
	repo := newMockUserAdminRepo(adminUser("u-1"))
	svc := NewUserService(repo, validator.New(), zap.NewNop())

	err := svc.ResetPassword(context.Background(), "u-1", ResetPasswordRequest{Password: "freshsecret"})
	require.NoError(t, err)
	assert.Contains(t, repo.passwordSet, "u-1")
	assert.Equal(t, []string{"u-1"}, repo.revokedTokens)
}

func TestDeleteOwnAccountRejected(t *testing.T) {
	repo := newMockUserAdminRepo(adminUser("u-1"))
	svc := NewUserService(repo, validator.New(), zap.NewNop())

	err := svc.Delete(context.Background(), "u-1", "u-1")
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, 400, appErr.Status)
	assert.Equal(t, "cannot delete your own account", appErr.Message)
	assert.False(t, repo.users["u-1"].IsDeleted)
}

func TestDeleteOtherUser(t *testing.T) {
	repo := newMockUserAdminRepo(adminUser("u-1"), adminUser("u-2"))
	svc := NewUserService(repo, validator.New(), zap.NewNop())

	require.NoError(t, svc.Delete(context.Background(), "u-1", "u-2"))
	assert.True(t, repo.users["u-2"].IsDeleted)
}
