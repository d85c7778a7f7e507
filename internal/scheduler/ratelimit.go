package scheduler

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
)

const MaxMatcherRequestsPerMinute = 50

// MatcherBudget tracks the shared request budget against the matcher
// service.
type MatcherBudget interface {
	GetMatcherRateLimit(ctx context.Context) (int64, error)
	IncrementMatcherRateLimit(ctx context.Context) (int64, error)
}

// CheckMatcherRateLimit guards the shared budget before a refresh
// issues a request. Counter failures never block the refresh;
// throttling is best effort.
func CheckMatcherRateLimit(budget MatcherBudget, logger *zap.Logger) error {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	count, err := budget.GetMatcherRateLimit(ctx)
	if err != nil {
		logger.Error("failed to check matcher rate limit", zap.Error(err))
		return nil
	}

	if count > MaxMatcherRequestsPerMinute {
		return fmt.Errorf("matcher rate limit exceeded: %d requests", count)
	}

	if _, err := budget.IncrementMatcherRateLimit(ctx); err != nil {
		logger.Error("failed to increment matcher rate limit", zap.Error(err))
	}

	return nil
}
