package service

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/yildiz-insaat/cms-api/internal/models"
	"github.com/yildiz-insaat/cms-api/internal/token"
	appErrors "github.com/yildiz-insaat/cms-api/pkg/errors"
)

type mockUserRepo struct {
	users        map[string]*models.User
	lastLoginSet bool
}

func newMockUserRepo(users ...*models.User) *mockUserRepo {
	repo := &mockUserRepo{users: make(map[string]*models.User)}
	for _, u := range users {
		repo.users[u.ID] = u
	}
	return repo
}

func (m *mockUserRepo) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	for _, u := range m.users {
		if u.Email == email && !u.IsDeleted {
			return u, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (m *mockUserRepo) FindByID(ctx context.Context, id string) (*models.User, error) {
	u, ok := m.users[id]
	if !ok || u.IsDeleted {
		return nil, sql.ErrNoRows
	}
	return u, nil
}

func (m *mockUserRepo) ExistsByEmail(ctx context.Context, email, excludeID string) (bool, error) {
	for _, u := range m.users {
		if u.Email == email && u.IsActive && !u.IsDeleted && u.ID != excludeID {
			return true, nil
		}
	}
	return false, nil
}

func (m *mockUserRepo) Create(ctx context.Context, user *models.User) error {
	if user.ID == "" {
		user.ID = "user-" + user.Email
	}
	m.users[user.ID] = user
	return nil
}

func (m *mockUserRepo) SetRefreshToken(ctx context.Context, id string, tok *string) error {
	if u, ok := m.users[id]; ok {
		u.RefreshToken = tok
	}
	return nil
}

func (m *mockUserRepo) UpdateLastLogin(ctx context.Context, id string, ts time.Time) error {
	m.lastLoginSet = true
	return nil
}

type mockAudit struct {
	logs []*models.AuditLog
}

func (m *mockAudit) Create(ctx context.Context, log *models.AuditLog) error {
	m.logs = append(m.logs, log)
	return nil
}

func testTokenIssuer(t *testing.T) *token.Issuer {
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

func hashPassword(t *testing.T, plain string) string {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(plain), bcrypt.DefaultCost)
	require.NoError(t, err)
	return string(hash)
}

func TestRegisterCreatesEditorAndOpensSession(t *testing.T) {
	repo := newMockUserRepo()
	audit := &mockAudit{}
	svc := NewAuthService(repo, testTokenIssuer(t), audit, validator.New(), zap.NewNop())

	res, err := svc.Register(context.Background(), models.RegisterRequest{
		Email:    "new@example.com",
		Password: "password123",
	})
	require.NoError(t, err)
	assert.Equal(t, models.RoleEditor, res.User.Role)
	assert.NotEmpty(t, res.AccessToken)
	assert.NotEmpty(t, res.RefreshToken)

	stored, err := repo.FindByEmail(context.Background(), "new@example.com")
	require.NoError(t, err)
	require.NotNil(t, stored.RefreshToken)
	assert.Equal(t, res.RefreshToken, *stored.RefreshToken)
	assert.Len(t, audit.logs, 1)
	assert.Equal(t, models.AuditActionRegister, audit.logs[0].Action)
}

func TestRegisterDuplicateEmailConflicts(t *testing.T) {
	existing := &models.User{ID: "u-1", Email: "taken@example.com", IsActive: true}
	svc := NewAuthService(newMockUserRepo(existing), testTokenIssuer(t), nil, validator.New(), zap.NewNop())

	_, err := svc.Register(context.Background(), models.RegisterRequest{
		Email:    "taken@example.com",
		Password: "password123",
	})
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, 400, appErr.Status)
	assert.Equal(t, "Email already registered", appErr.Message)
}

func TestRegisterNormalizesEmailCase(t *testing.T) {
	repo := newMockUserRepo()
	svc := NewAuthService(repo, testTokenIssuer(t), nil, validator.New(), zap.NewNop())

	res, err := svc.Register(context.Background(), models.RegisterRequest{
		Email:    "Mixed.Case@Example.com",
		Password: "password123",
	})
	require.NoError(t, err)
	assert.Equal(t, "mixed.case@example.com", res.User.Email)

	// A case variant of the same address is the same account.
	_, err = svc.Register(context.Background(), models.RegisterRequest{
		Email:    "MIXED.CASE@EXAMPLE.COM",
		Password: "password123",
	})
	require.Error(t, err)
	assert.Equal(t, "Email already registered", appErrors.FromError(err).Message)

	_, err = svc.Login(context.Background(), models.LoginRequest{
		Email:    "MiXeD.cAsE@example.COM",
		Password: "password123",
	})
	require.NoError(t, err)
}

func TestLoginSuccess(t *testing.T) {
	user := &models.User{
		ID:           "u-1",
		Email:        "user@example.com",
		PasswordHash: hashPassword(t, "password123"),
		Role:         models.RoleAdmin,
		IsActive:     true,
	}
	repo := newMockUserRepo(user)
	svc := NewAuthService(repo, testTokenIssuer(t), nil, validator.New(), zap.NewNop())

	res, err := svc.Login(context.Background(), models.LoginRequest{Email: "user@example.com", Password: "password123"})
	require.NoError(t, err)
	assert.Equal(t, "u-1", res.User.ID)
	assert.NotEmpty(t, res.AccessToken)
	require.NotNil(t, user.RefreshToken)
	assert.Equal(t, res.RefreshToken, *user.RefreshToken)
	assert.True(t, repo.lastLoginSet)
}

func TestLoginWrongPasswordUnauthorized(t *testing.T) {
	user := &models.User{
		ID:           "u-1",
		Email:        "user@example.com",
		PasswordHash: hashPassword(t, "password123"),
		IsActive:     true,
	}
	svc := NewAuthService(newMockUserRepo(user), testTokenIssuer(t), nil, validator.New(), zap.NewNop())

	_, err := svc.Login(context.Background(), models.LoginRequest{Email: "user@example.com", Password: "wrong"})
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, 401, appErr.Status)
	assert.Equal(t, "Invalid email or password", appErr.Message)
}

func TestLoginUnknownEmailSameMessageAsWrongPassword(t *testing.T) {
	svc := NewAuthService(newMockUserRepo(), testTokenIssuer(t), nil, validator.New(), zap.NewNop())

	_, err := svc.Login(context.Background(), models.LoginRequest{Email: "nobody@example.com", Password: "password123"})
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, 401, appErr.Status)
	assert.Equal(t, "Invalid email or password", appErr.Message)
}

func TestLoginInactiveAccountForbidden(t *testing.T) {
	user := &models.User{
		ID:           "u-1",
		Email:        "user@example.com",
		PasswordHash: hashPassword(t, "password123"),
		IsActive:     false,
	}
	svc := NewAuthService(newMockUserRepo(user), testTokenIssuer(t), nil, validator.New(), zap.NewNop())

	_, err := svc.Login(context.Background(), models.LoginRequest{Email: "user@example.com", Password: "password123"})
	require.Error(t, err)
	assert.Equal(t, 403, appErrors.FromError(err).Status)
}

func TestSecondLoginInvalidatesFirstRefreshToken(t *testing.T) {
	user := &models.User{
		ID:           "u-1",
		Email:        "user@example.com",
		PasswordHash: hashPassword(t, "password123"),
		Role:         models.RoleEditor,
		IsActive:     true,
	}
	svc := NewAuthService(newMockUserRepo(user), testTokenIssuer(t), nil, validator.New(), zap.NewNop())

	first, err := svc.Login(context.Background(), models.LoginRequest{Email: "user@example.com", Password: "password123"})
	require.NoError(t, err)

	// The issuer embeds second-resolution timestamps; force a different token.
	time.Sleep(1100 * time.Millisecond)

	second, err := svc.Login(context.Background(), models.LoginRequest{Email: "user@example.com", Password: "password123"})
	require.NoError(t, err)
	require.NotEqual(t, first.RefreshToken, second.RefreshToken)

	_, err = svc.Refresh(context.Background(), models.RefreshRequest{RefreshToken: first.RefreshToken})
	require.Error(t, err)
	assert.Equal(t, 401, appErrors.FromError(err).Status)

	res, err := svc.Refresh(context.Background(), models.RefreshRequest{RefreshToken: second.RefreshToken})
	require.NoError(t, err)
	assert.NotEmpty(t, res.AccessToken)
}

func TestRefreshDoesNotRotateRefreshToken(t *testing.T) {
	user := &models.User{
		ID:           "u-1",
		Email:        "user@example.com",
		PasswordHash: hashPassword(t, "password123"),
		IsActive:     true,
	}
	svc := NewAuthService(newMockUserRepo(user), testTokenIssuer(t), nil, validator.New(), zap.NewNop())

	session, err := svc.Login(context.Background(), models.LoginRequest{Email: "user@example.com", Password: "password123"})
	require.NoError(t, err)

	_, err = svc.Refresh(context.Background(), models.RefreshRequest{RefreshToken: session.RefreshToken})
	require.NoError(t, err)

	// The stored slot is untouched, so the same token keeps working.
	_, err = svc.Refresh(context.Background(), models.RefreshRequest{RefreshToken: session.RefreshToken})
	require.NoError(t, err)
	require.NotNil(t, user.RefreshToken)
	assert.Equal(t, session.RefreshToken, *user.RefreshToken)
}

func TestRefreshRejectsInactiveUser(t *testing.T) {
	user := &models.User{
		ID:           "u-1",
		Email:        "user@example.com",
		PasswordHash: hashPassword(t, "password123"),
		IsActive:     true,
	}
	svc := NewAuthService(newMockUserRepo(user), testTokenIssuer(t), nil, validator.New(), zap.NewNop())

	session, err := svc.Login(context.Background(), models.LoginRequest{Email: "user@example.com", Password: "password123"})
	require.NoError(t, err)

	user.IsActive = false
	_, err = svc.Refresh(context.Background(), models.RefreshRequest{RefreshToken: session.RefreshToken})
	require.Error(t, err)
	assert.Equal(t, 401, appErrors.FromError(err).Status)
}

func TestLogoutInvalidatesRefreshTokenAndIsIdempotent(t *testing.T) {
	user := &models.User{
		ID:           "u-1",
		Email:        "user@example.com",
		PasswordHash: hashPassword(t, "password123"),
		IsActive:     true,
	}
	svc := NewAuthService(newMockUserRepo(user), testTokenIssuer(t), nil, validator.New(), zap.NewNop())

	session, err := svc.Login(context.Background(), models.LoginRequest{Email: "user@example.com", Password: "password123"})
	require.NoError(t, err)

	require.NoError(t, svc.Logout(context.Background(), user.ID))
	assert.Nil(t, user.RefreshToken)

	_, err = svc.Refresh(context.Background(), models.RefreshRequest{RefreshToken: session.RefreshToken})
	require.Error(t, err)
	assert.Equal(t, 401, appErrors.FromError(err).Status)

	// Second logout is a no-op.
	require.NoError(t, svc.Logout(context.Background(), user.ID))
}

func TestGetMeUnknownUserNotFound(t *testing.T) {
	svc := NewAuthService(newMockUserRepo(), testTokenIssuer(t), nil, validator.New(), zap.NewNop())
	_, err := svc.GetMe(context.Background(), "missing")
	require.Error(t, err)
	assert.Equal(t, 404, appErrors.FromError(err).Status)
}
