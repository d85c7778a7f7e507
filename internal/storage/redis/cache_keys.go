package redis

import (
	"context"
	"fmt"
	"time"
)

const (
	// Signed URLs expire upstream; the cache TTL stays below the
	// gateway's link lifetime.
	SignedURLCacheTTL  = 10 * time.Minute
	SignRetryTTL       = 1 * time.Hour
	MatchScoresTTL     = 30 * time.Minute
	RateLimitWindowTTL = 1 * time.Minute
)

func SignedURLKey(path string) string {
	return fmt.Sprintf("signed:%s", path)
}

func SignRetriesKey(path string) string {
	return fmt.Sprintf("signretries:%s", path)
}

func MatchScoresKey(studentID string) string {
	return fmt.Sprintf("scores:student:%s", studentID)
}

func RateLimitKey(clientID string) string {
	return fmt.Sprintf("ratelimit:client:%s", clientID)
}

func MatcherRateLimitKey() string {
	return "ratelimit:matcher"
}

// Signed URL cache, keyed by storage path so repeat renders of the
// same logo skip the gateway entirely.

func (c *Cache) GetSignedURL(ctx context.Context, path string) (string, error) {
	return c.GetString(ctx, SignedURLKey(path))
}

func (c *Cache) SetSignedURL(ctx context.Context, path, url string) error {
	return c.SetString(ctx, SignedURLKey(path), url, SignedURLCacheTTL)
}

func (c *Cache) InvalidateSignedURL(ctx context.Context, path string) error {
	return c.Delete(ctx, SignedURLKey(path))
}

// Per-path sign retry counters. They outlive a single refresh cycle so
// a persistently broken path stops being retried.

func (c *Cache) IncrementSignRetries(ctx context.Context, path string) (int64, error) {
	return c.IncrementWithExpiry(ctx, SignRetriesKey(path), SignRetryTTL)
}

func (c *Cache) GetSignRetries(ctx context.Context, path string) (int64, error) {
	return c.GetInt(ctx, SignRetriesKey(path))
}

// Per-student match score snapshots written by the background refresh.

func (c *Cache) SetMatchScores(ctx context.Context, studentID string, scores map[string]float64) error {
	return c.Set(ctx, MatchScoresKey(studentID), scores, MatchScoresTTL)
}

func (c *Cache) GetMatchScores(ctx context.Context, studentID string) (map[string]float64, error) {
	var scores map[string]float64
	if err := c.Get(ctx, MatchScoresKey(studentID), &scores); err != nil {
		return nil, err
	}
	return scores, nil
}

// Rate limit counters.

func (c *Cache) IncrementClientRateLimit(ctx context.Context, clientID string) (int64, error) {
	return c.IncrementWithExpiry(ctx, RateLimitKey(clientID), RateLimitWindowTTL)
}

func (c *Cache) IncrementMatcherRateLimit(ctx context.Context) (int64, error) {
	return c.IncrementWithExpiry(ctx, MatcherRateLimitKey(), RateLimitWindowTTL)
}

func (c *Cache) GetMatcherRateLimit(ctx context.Context) (int64, error) {
	return c.GetInt(ctx, MatcherRateLimitKey())
}
