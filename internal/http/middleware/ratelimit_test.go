package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type fakeLimiter struct {
	count int64
	err   error
	seen  []string
}

func (f *fakeLimiter) IncrementClientRateLimit(ctx context.Context, clientID string) (int64, error) {
	f.seen = append(f.seen, clientID)
	if f.err != nil {
		return 0, f.err
	}
	f.count++
	return f.count, nil
}

func limitedRouter(limiter Limiter) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(RateLimit(limiter, zap.NewNop()))
	r.GET("/ping", func(c *gin.Context) {
		c.Status(http.StatusOK)
	})
	return r
}

func TestRateLimitUnderBudget(t *testing.T) {
	limiter := &fakeLimiter{}
	router := limitedRouter(limiter)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/ping?student_id=stu-1", nil)
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	if len(limiter.seen) != 1 || limiter.seen[0] != "stu-1" {
		t.Fatalf("client ids = %v", limiter.seen)
	}
}

func TestRateLimitOverBudget(t *testing.T) {
	limiter := &fakeLimiter{count: MaxRequestsPerMinute}
	router := limitedRouter(limiter)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/ping?student_id=stu-1", nil)
	router.ServeHTTP(w, req)

	if w.Code != http.StatusTooManyRequests {
		t.Fatalf("status = %d, want 429", w.Code)
	}
}

func TestRateLimitCounterFailureLetsRequestThrough(t *testing.T) {
	limiter := &fakeLimiter{err: errors.New("redis down")}
	router := limitedRouter(limiter)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/ping?student_id=stu-1", nil)
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, throttling should be best effort", w.Code)
	}
}

func TestRateLimitFallsBackToClientIP(t *testing.T) {
	limiter := &fakeLimiter{}
	router := limitedRouter(limiter)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.RemoteAddr = "10.1.2.3:4567"
	router.ServeHTTP(w, req)

	if len(limiter.seen) != 1 || limiter.seen[0] != "10.1.2.3" {
		t.Fatalf("client ids = %v", limiter.seen)
	}
}
