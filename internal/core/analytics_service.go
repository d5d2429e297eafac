package core

import (
	"context"

	"go.uber.org/zap"

	"wheelsup-backend-go/internal/cache"
	"wheelsup-backend-go/internal/db"
	"wheelsup-backend-go/internal/observability"
)

// FallbackVisitorCount is shown when the counter cannot be read.
const FallbackVisitorCount int64 = 25

const visitedKeyPrefix = "wheelsup:visited:"

// VisitorCounter counts each visitor once, using a cache flag as the
// "already counted" marker.
type VisitorCounter struct {
	repo   db.AnalyticsRepository
	flags  cache.Cache
	logger *zap.Logger
}

// NewVisitorCounter creates the analytics service.
func NewVisitorCounter(repo db.AnalyticsRepository, flags cache.Cache, logger *zap.Logger) *VisitorCounter {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &VisitorCounter{repo: repo, flags: flags, logger: logger}
}

// RecordVisit increments the counter the first time visitorID is seen and
// returns the count to display. Errors are logged and yield FallbackVisitorCount.
func (v *VisitorCounter) RecordVisit(ctx context.Context, visitorID string) int64 {
	if visitorID == "" {
		return v.read(ctx)
	}

	first, err := v.flags.SetNX(ctx, visitedKeyPrefix+visitorID, 1, 0)
	if err != nil {
		v.logger.Warn("Visitor flag check failed", zap.String("visitorID", visitorID), zap.Error(err))
		return FallbackVisitorCount
	}
	if !first {
		return v.read(ctx)
	}

	count, err := v.repo.IncrementVisitors(ctx)
	if err != nil {
		v.logger.Warn("Visitor counter increment failed", zap.Error(err))
		// Allow a retry on the next visit.
		_ = v.flags.Delete(ctx, visitedKeyPrefix+visitorID)
		return FallbackVisitorCount
	}
	observability.VisitorsTotal.Inc()
	return count
}

func (v *VisitorCounter) read(ctx context.Context) int64 {
	count, err := v.repo.VisitorCount(ctx)
	if err != nil {
		v.logger.Warn("Visitor counter read failed", zap.Error(err))
		return FallbackVisitorCount
	}
	return count
}
