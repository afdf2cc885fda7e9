package token

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/yildiz-insaat/cms-api/internal/models"
	appErrors "github.com/yildiz-insaat/cms-api/pkg/errors"
)

const minSecretLength = 32

// Config carries the signing secrets and expiries for both token kinds.
type Config struct {
	AccessSecret  string
	RefreshSecret string
	AccessExpiry  time.Duration
	RefreshExpiry time.Duration
	Issuer        string
}

// Issuer mints and validates the two token kinds. Access tokens authorize
// individual requests; refresh tokens are only exchanged for new access
// tokens and are additionally matched against the stored session slot by the
// auth service.
type Issuer struct {
	cfg Config
	now func() time.Time
}

// NewIssuer validates the configuration and returns an Issuer. Weak secrets
// fail construction so the process refuses to start.
func NewIssuer(cfg Config) (*Issuer, error) {
	if len(cfg.AccessSecret) < minSecretLength {
		return nil, fmt.Errorf("access token secret must be at least %d characters", minSecretLength)
	}
	if len(cfg.RefreshSecret) < minSecretLength {
		return nil, fmt.Errorf("refresh token secret must be at least %d characters", minSecretLength)
	}
	if cfg.AccessExpiry <= 0 {
		cfg.AccessExpiry = 15 * time.Minute
	}
	if cfg.RefreshExpiry <= 0 {
		cfg.RefreshExpiry = 7 * 24 * time.Hour
	}
	return &Issuer{cfg: cfg, now: func() time.Time { return time.Now().UTC() }}, nil
}

// IssueAccessToken signs a short-lived access token for the user.
func (i *Issuer) IssueAccessToken(user *models.User) (string, error) {
	return i.sign(user, i.cfg.AccessSecret, i.cfg.AccessExpiry)
}

// IssueRefreshToken signs a long-lived refresh token for the user.
func (i *Issuer) IssueRefreshToken(user *models.User) (string, error) {
	return i.sign(user, i.cfg.RefreshSecret, i.cfg.RefreshExpiry)
}

// VerifyAccessToken validates signature and expiry of an access token.
func (i *Issuer) VerifyAccessToken(tokenString string) (*models.Claims, error) {
	return i.verify(tokenString, i.cfg.AccessSecret)
}

// VerifyRefreshToken validates signature and expiry of a refresh token.
func (i *Issuer) VerifyRefreshToken(tokenString string) (*models.Claims, error) {
	return i.verify(tokenString, i.cfg.RefreshSecret)
}

func (i *Issuer) sign(user *models.User, secret string, expiry time.Duration) (string, error) {
	issuedAt := i.now()
	claims := &models.Claims{
		UserID: user.ID,
		Email:  user.Email,
		Role:   user.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    i.cfg.Issuer,
			Subject:   user.ID,
			ExpiresAt: jwt.NewNumericDate(issuedAt.Add(expiry)),
			IssuedAt:  jwt.NewNumericDate(issuedAt),
			NotBefore: jwt.NewNumericDate(issuedAt),
		},
	}

	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := tok.SignedString([]byte(secret))
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// verify reports a single opaque error for every failure mode; callers never
// learn whether a token was expired, malformed, or tampered with.
func (i *Issuer) verify(tokenString, secret string) (*models.Claims, error) {
	tok, err := jwt.ParseWithClaims(tokenString, &models.Claims{}, func(t *jwt.Token) (interface{}, error) {
		if t.Method != jwt.SigningMethodHS256 {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return []byte(secret), nil
	}, jwt.WithTimeFunc(i.now))
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInvalidToken.Code, appErrors.ErrInvalidToken.Status, appErrors.ErrInvalidToken.Message)
	}

	claims, ok := tok.Claims.(*models.Claims)
	if !ok || !tok.Valid {
		return nil, appErrors.Clone(appErrors.ErrInvalidToken, "")
	}

	return claims, nil
}
