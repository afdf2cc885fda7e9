package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/yildiz-insaat/cms-api/internal/models"
	appErrors "github.com/yildiz-insaat/cms-api/pkg/errors"
)

const (
	dashboardRecentMessages = 5
	dashboardLatestPosts    = 5
)

type statsRepository interface {
	Counts(ctx context.Context) (*models.ResourceCounts, error)
}

type recentMessagesLister interface {
	Recent(ctx context.Context, limit int) ([]models.ContactMessage, error)
}

type latestPostsLister interface {
	Latest(ctx context.Context, limit int) ([]models.BlogPost, error)
}

// StatsService assembles the admin dashboard payload.
type StatsService struct {
	stats    statsRepository
	contacts recentMessagesLister
	posts    latestPostsLister
	cache    ContentCache
	cacheTTL time.Duration
	logger   *zap.Logger
}

// NewStatsService constructs a StatsService.
func NewStatsService(stats statsRepository, contacts recentMessagesLister, posts latestPostsLister, cache ContentCache, cacheTTL time.Duration, logger *zap.Logger) *StatsService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &StatsService{
		stats:    stats,
		contacts: contacts,
		posts:    posts,
		cache:    cache,
		cacheTTL: cacheTTL,
		logger:   logger,
	}
}

// Dashboard returns resource counts plus recent activity. The payload is
// cached briefly and invalidated by every content write.
func (s *StatsService) Dashboard(ctx context.Context) (*models.DashboardStats, error) {
	if s.cache != nil {
		var cached models.DashboardStats
		if s.cache.Get(ctx, statsCacheKey, &cached) == nil {
			return &cached, nil
		}
	}

	counts, err := s.stats.Counts(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load counts")
	}

	recent, err := s.contacts.Recent(ctx, dashboardRecentMessages)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load recent messages")
	}

	latest, err := s.posts.Latest(ctx, dashboardLatestPosts)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load latest posts")
	}

	stats := &models.DashboardStats{
		Counts:         *counts,
		RecentMessages: recent,
		LatestPosts:    latest,
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, statsCacheKey, stats, s.cacheTTL); err != nil {
			s.logger.Warn("failed to cache dashboard stats", zap.Error(err))
		}
	}
	return stats, nil
}
