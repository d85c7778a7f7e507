package scheduler

import (
	"context"
	"fmt"
	"time"

	"campusboard/internal/api/matcher"
	"campusboard/internal/config"
	"campusboard/internal/storage/postgres"
	"campusboard/internal/storage/redis"

	"go.uber.org/zap"
)

// ScoreRefresher periodically pulls fresh match scores from the
// matcher service for every active student and caches them. The list
// endpoint merges whatever snapshot is current; a failed refresh
// degrades to the previously stored scores.
type ScoreRefresher struct {
	store   *postgres.Store
	cache   *redis.Cache
	matcher *matcher.Client
	config  *config.Config
	logger  *zap.Logger
}

func New(
	store *postgres.Store,
	cache *redis.Cache,
	matcherClient *matcher.Client,
	cfg *config.Config,
	logger *zap.Logger,
) *ScoreRefresher {
	return &ScoreRefresher{
		store:   store,
		cache:   cache,
		matcher: matcherClient,
		config:  cfg,
		logger:  logger,
	}
}

func (sr *ScoreRefresher) Start(ctx context.Context) {
	ticker := time.NewTicker(sr.config.ScoreRefreshInterval)
	defer ticker.Stop()

	sr.logger.Info("score refresher started",
		zap.Duration("interval", sr.config.ScoreRefreshInterval),
	)

	// let the rest of the service come up first
	select {
	case <-ctx.Done():
		return
	case <-time.After(30 * time.Second):
	}
	sr.refreshAll(ctx)

	for {
		select {
		case <-ctx.Done():
			sr.logger.Info("score refresher stopped")
			return
		case <-ticker.C:
			sr.refreshAll(ctx)
		}
	}
}

func (sr *ScoreRefresher) refreshAll(ctx context.Context) {
	sr.logger.Info("starting score refresh for all students")

	dbCtx, cancel := context.WithTimeout(ctx, 5*time.Minute)
	defer cancel()

	students, err := sr.store.ActiveStudentIDs(dbCtx)
	if err != nil {
		sr.logger.Error("failed to get active students", zap.Error(err))
		return
	}

	if len(students) == 0 {
		sr.logger.Debug("no active students")
		return
	}

	sr.logger.Info("refreshing scores", zap.Int("students", len(students)))

	for _, studentID := range students {
		if err := CheckMatcherRateLimit(sr.cache, sr.logger); err != nil {
			sr.logger.Warn("matcher rate limit, skipping student",
				zap.String("student_id", studentID),
			)
			continue
		}

		if err := sr.refreshStudent(dbCtx, studentID); err != nil {
			sr.logger.Error("failed to refresh scores",
				zap.String("student_id", studentID),
				zap.Error(err),
			)
		}

		// pace requests against the matcher
		select {
		case <-ctx.Done():
			return
		case <-time.After(2 * time.Second):
		}
	}

	sr.logger.Info("finished score refresh for all students")
}

func (sr *ScoreRefresher) refreshStudent(ctx context.Context, studentID string) error {
	scores, err := sr.matcher.FetchScores(ctx, studentID)
	if err != nil {
		return fmt.Errorf("fetch scores: %w", err)
	}

	if len(scores) == 0 {
		sr.logger.Debug("no scores for student", zap.String("student_id", studentID))
		return nil
	}

	if err := sr.cache.SetMatchScores(ctx, studentID, scores); err != nil {
		return fmt.Errorf("cache scores: %w", err)
	}

	sr.logger.Debug("scores refreshed",
		zap.String("student_id", studentID),
		zap.Int("count", len(scores)),
	)

	return nil
}
