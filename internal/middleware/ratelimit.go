package middleware

import (
	"fmt"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/yildiz-insaat/cms-api/internal/service"
	appErrors "github.com/yildiz-insaat/cms-api/pkg/errors"
	"github.com/yildiz-insaat/cms-api/pkg/response"
)

// contactLimitMessage is shown verbatim to visitors who hit the contact
// form limit.
const contactLimitMessage = "Çok fazla mesaj gönderdiniz. Lütfen 15 dakika sonra tekrar deneyin."

// RateLimitConfig tunes a fixed-window limiter instance.
type RateLimitConfig struct {
	Prefix  string
	Limit   int
	Window  time.Duration
	Message string
}

// RateLimit counts requests per client IP in a fixed Redis window and
// rejects requests over the limit. Redis failures let the request through.
func RateLimit(rdb *redis.Client, metrics *service.MetricsService, logger *zap.Logger, cfg RateLimitConfig) gin.HandlerFunc {
	if logger == nil {
		logger = zap.NewNop()
	}

	return func(c *gin.Context) {
		if rdb == nil || cfg.Limit <= 0 {
			c.Next()
			return
		}

		ctx := c.Request.Context()
		key := fmt.Sprintf("%s:%s", cfg.Prefix, c.ClientIP())

		count, err := rdb.Incr(ctx, key).Result()
		if err != nil {
			logger.Warn("rate limiter unavailable", zap.String("key", key), zap.Error(err))
			c.Next()
			return
		}
		if count == 1 {
			if err := rdb.Expire(ctx, key, cfg.Window).Err(); err != nil {
				logger.Warn("failed to set rate limit window", zap.String("key", key), zap.Error(err))
			}
		}

		remaining := int64(cfg.Limit) - count
		if remaining < 0 {
			remaining = 0
		}
		c.Header("X-RateLimit-Limit", strconv.Itoa(cfg.Limit))
		c.Header("X-RateLimit-Remaining", strconv.FormatInt(remaining, 10))

		if count > int64(cfg.Limit) {
			ttl, err := rdb.TTL(ctx, key).Result()
			if err == nil && ttl > 0 {
				c.Header("Retry-After", strconv.Itoa(int(ttl.Seconds())))
			}
			metrics.RecordRateLimited()

			msg := cfg.Message
			if msg == "" {
				msg = appErrors.ErrRateLimited.Message
			}
			response.Error(c, appErrors.Clone(appErrors.ErrRateLimited, msg))
			c.Abort()
			return
		}

		c.Next()
	}
}

// GeneralRateLimit covers the whole API surface.
func GeneralRateLimit(rdb *redis.Client, metrics *service.MetricsService, logger *zap.Logger, limit int, window time.Duration) gin.HandlerFunc {
	return RateLimit(rdb, metrics, logger, RateLimitConfig{
		Prefix: "ratelimit:general",
		Limit:  limit,
		Window: window,
	})
}

// ContactRateLimit throttles the public contact form.
func ContactRateLimit(rdb *redis.Client, metrics *service.MetricsService, logger *zap.Logger, limit int, window time.Duration) gin.HandlerFunc {
	return RateLimit(rdb, metrics, logger, RateLimitConfig{
		Prefix:  "ratelimit:contact",
		Limit:   limit,
		Window:  window,
		Message: contactLimitMessage,
	})
}
