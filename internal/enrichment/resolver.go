package enrichment

import (
	"context"
	"sync"

	"campusboard/internal/models"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// maxSignAttempts bounds how often a single storage path is re-signed
// after failures. The counter persists across refresh cycles.
const maxSignAttempts = 3

// Gateway issues signed URLs and probes their freshness.
type Gateway interface {
	SignURL(ctx context.Context, bucket, path string) (string, error)
	Fresh(ctx context.Context, signedURL string) bool
}

// URLCache stores resolved URLs and per-path retry counters, keyed by
// storage path.
type URLCache interface {
	GetSignedURL(ctx context.Context, path string) (string, error)
	SetSignedURL(ctx context.Context, path, url string) error
	InvalidateSignedURL(ctx context.Context, path string) error
	IncrementSignRetries(ctx context.Context, path string) (int64, error)
	GetSignRetries(ctx context.Context, path string) (int64, error)
}

// Batch holds one cycle's resolved image URLs keyed by logical id.
// The maps are additive from the consumer's perspective: rows rendered
// from an earlier cycle keep their URLs.
type Batch struct {
	Logos   map[string]string
	Avatars map[string]string
}

// Resolver turns the storage paths of visible records into signed
// URLs. All lookups of a cycle run concurrently and are joined before
// the batch is handed back, so a partially resolved cycle is never
// observed.
type Resolver struct {
	gw           Gateway
	cache        URLCache
	logger       *zap.Logger
	logoBucket   string
	avatarBucket string

	// generations guards against a slow cycle overwriting a newer one
	// for the same student. Cycles of different students never discard
	// each other.
	mu          sync.Mutex
	generations map[string]uint64
}

func New(gw Gateway, cache URLCache, logoBucket, avatarBucket string, logger *zap.Logger) *Resolver {
	return &Resolver{
		gw:           gw,
		cache:        cache,
		logger:       logger,
		logoBucket:   logoBucket,
		avatarBucket: avatarBucket,
		generations:  make(map[string]uint64),
	}
}

func (r *Resolver) beginCycle(studentID string) uint64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.generations[studentID]++
	return r.generations[studentID]
}

func (r *Resolver) latestCycle(studentID string) uint64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.generations[studentID]
}

// Resolve resolves logo and avatar URLs for a student's records. It
// never fails: a record whose lookup errors simply has no entry in the
// batch. A nil batch means a newer cycle for the same student started
// meanwhile and nothing should be merged.
func (r *Resolver) Resolve(ctx context.Context, studentID string, records []models.Application) *Batch {
	gen := r.beginCycle(studentID)

	batch := &Batch{
		Logos:   make(map[string]string),
		Avatars: make(map[string]string),
	}

	var mu sync.Mutex
	g, gctx := errgroup.WithContext(ctx)

	for _, app := range records {
		app := app

		if path := app.Posting.LogoPath; path != nil && *path != "" {
			g.Go(func() error {
				if url := r.resolvePath(gctx, r.logoBucket, *path); url != "" {
					mu.Lock()
					batch.Logos[app.LogicalID] = url
					mu.Unlock()
				}
				return nil
			})
		}

		if path := app.AvatarPath; path != nil && *path != "" {
			g.Go(func() error {
				if url := r.resolvePath(gctx, r.avatarBucket, *path); url != "" {
					mu.Lock()
					batch.Avatars[app.LogicalID] = url
					mu.Unlock()
				}
				return nil
			})
		}
	}

	// lookups swallow their own errors
	_ = g.Wait()

	if latest := r.latestCycle(studentID); latest != gen {
		r.logger.Debug("discarding stale enrichment batch",
			zap.String("student_id", studentID),
			zap.Uint64("generation", gen),
			zap.Uint64("latest", latest),
		)
		return nil
	}

	return batch
}

// resolvePath returns a usable signed URL for one storage path, or ""
// when none is available. Cached URLs are probed for freshness and
// re-signed when the probe fails; a path that keeps failing is dropped
// after maxSignAttempts.
func (r *Resolver) resolvePath(ctx context.Context, bucket, path string) string {
	if cached, err := r.cache.GetSignedURL(ctx, path); err == nil && cached != "" {
		if r.gw.Fresh(ctx, cached) {
			return cached
		}

		r.logger.Debug("cached signed url went stale",
			zap.String("path", path),
		)
		if err := r.cache.InvalidateSignedURL(ctx, path); err != nil {
			r.logger.Warn("failed to invalidate signed url",
				zap.String("path", path),
				zap.Error(err),
			)
		}
	}

	if retries, err := r.cache.GetSignRetries(ctx, path); err == nil && retries >= maxSignAttempts {
		r.logger.Debug("sign retry budget exhausted",
			zap.String("path", path),
			zap.Int64("retries", retries),
		)
		return ""
	}

	signed, err := r.gw.SignURL(ctx, bucket, path)
	if err != nil {
		if _, incErr := r.cache.IncrementSignRetries(ctx, path); incErr != nil {
			r.logger.Warn("failed to record sign retry",
				zap.String("path", path),
				zap.Error(incErr),
			)
		}
		r.logger.Debug("failed to sign url",
			zap.String("path", path),
			zap.Error(err),
		)
		return ""
	}

	if err := r.cache.SetSignedURL(ctx, path, signed); err != nil {
		r.logger.Warn("failed to cache signed url",
			zap.String("path", path),
			zap.Error(err),
		)
	}

	return signed
}
