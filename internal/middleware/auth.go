package middleware

import (
	"context"
	"database/sql"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/yildiz-insaat/cms-api/internal/models"
	"github.com/yildiz-insaat/cms-api/internal/token"
	appErrors "github.com/yildiz-insaat/cms-api/pkg/errors"
	"github.com/yildiz-insaat/cms-api/pkg/response"
)

// Context keys for the authenticated identity.
const (
	ContextClaimsKey = "currentClaims"
	ContextUserKey   = "currentUser"
)

type userLoader interface {
	FindByID(ctx context.Context, id string) (*models.User, error)
}

// Auth protects routes by requiring a valid access token. The user row is
// re-read on every request so deactivation and deletion apply immediately.
func Auth(issuer *token.Issuer, users userLoader) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			response.Error(c, appErrors.ErrUnauthorized)
			c.Abort()
			return
		}

		parts := strings.SplitN(header, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			response.Error(c, appErrors.Clone(appErrors.ErrUnauthorized, "invalid authorization header"))
			c.Abort()
			return
		}

		claims, err := issuer.VerifyAccessToken(parts[1])
		if err != nil {
			response.Error(c, err)
			c.Abort()
			return
		}

		user, err := users.FindByID(c.Request.Context(), claims.UserID)
		if err != nil {
			if err == sql.ErrNoRows {
				response.Error(c, appErrors.ErrUnauthorized)
			} else {
				response.Error(c, appErrors.FromError(err))
			}
			c.Abort()
			return
		}
		if !user.IsActive {
			response.Error(c, appErrors.Clone(appErrors.ErrUnauthorized, "account is inactive"))
			c.Abort()
			return
		}

		c.Set(ContextClaimsKey, claims)
		c.Set(ContextUserKey, user)
		c.Next()
	}
}

// CurrentUser returns the authenticated user attached by Auth.
func CurrentUser(c *gin.Context) (*models.User, bool) {
	value, ok := c.Get(ContextUserKey)
	if !ok {
		return nil, false
	}
	user, ok := value.(*models.User)
	return user, ok
}

// CurrentClaims returns the verified token claims attached by Auth.
func CurrentClaims(c *gin.Context) (*models.Claims, bool) {
	value, ok := c.Get(ContextClaimsKey)
	if !ok {
		return nil, false
	}
	claims, ok := value.(*models.Claims)
	return claims, ok
}
