package enrichment

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"campusboard/internal/models"

	"go.uber.org/zap"
)

type fakeGateway struct {
	mu        sync.Mutex
	signCalls int
	signErr   error
	fresh     bool

	// when set, SignURL signals started and blocks until release closes
	started chan struct{}
	release chan struct{}
}

func (g *fakeGateway) SignURL(ctx context.Context, bucket, path string) (string, error) {
	g.mu.Lock()
	g.signCalls++
	g.mu.Unlock()

	if g.started != nil {
		g.started <- struct{}{}
		<-g.release
	}
	if g.signErr != nil {
		return "", g.signErr
	}
	return fmt.Sprintf("https://cdn.example/%s/%s?sig=abc", bucket, path), nil
}

func (g *fakeGateway) Fresh(ctx context.Context, signedURL string) bool {
	return g.fresh
}

func (g *fakeGateway) calls() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.signCalls
}

type fakeURLCache struct {
	mu      sync.Mutex
	urls    map[string]string
	retries map[string]int64
}

func newFakeURLCache() *fakeURLCache {
	return &fakeURLCache{
		urls:    make(map[string]string),
		retries: make(map[string]int64),
	}
}

func (c *fakeURLCache) GetSignedURL(ctx context.Context, path string) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	url, ok := c.urls[path]
	if !ok {
		return "", errors.New("cache miss")
	}
	return url, nil
}

func (c *fakeURLCache) SetSignedURL(ctx context.Context, path, url string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.urls[path] = url
	return nil
}

func (c *fakeURLCache) InvalidateSignedURL(ctx context.Context, path string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.urls, path)
	return nil
}

func (c *fakeURLCache) IncrementSignRetries(ctx context.Context, path string) (int64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.retries[path]++
	return c.retries[path], nil
}

func (c *fakeURLCache) GetSignRetries(ctx context.Context, path string) (int64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	n, ok := c.retries[path]
	if !ok {
		return 0, errors.New("cache miss")
	}
	return n, nil
}

func recordWithLogo(id, path string) models.Application {
	return models.Application{
		LogicalID: id,
		Posting:   models.JobPosting{LogoPath: &path},
	}
}

func TestResolveUsesFreshCachedURL(t *testing.T) {
	gw := &fakeGateway{fresh: true}
	cache := newFakeURLCache()
	cache.urls["logos/acme.png"] = "https://cdn.example/cached"

	r := New(gw, cache, "logos", "avatars", zap.NewNop())

	batch := r.Resolve(context.Background(), "stu-1", []models.Application{
		recordWithLogo("a", "logos/acme.png"),
	})

	if batch == nil {
		t.Fatal("batch discarded unexpectedly")
	}
	if batch.Logos["a"] != "https://cdn.example/cached" {
		t.Fatalf("logo url = %q", batch.Logos["a"])
	}
	if gw.calls() != 0 {
		t.Fatalf("fresh cache hit still signed %d times", gw.calls())
	}
}

func TestResolveReSignsStaleCachedURL(t *testing.T) {
	gw := &fakeGateway{fresh: false}
	cache := newFakeURLCache()
	cache.urls["logos/acme.png"] = "https://cdn.example/stale"

	r := New(gw, cache, "logos", "avatars", zap.NewNop())

	batch := r.Resolve(context.Background(), "stu-1", []models.Application{
		recordWithLogo("a", "logos/acme.png"),
	})

	if batch == nil {
		t.Fatal("batch discarded unexpectedly")
	}
	want := "https://cdn.example/logos/logos/acme.png?sig=abc"
	if batch.Logos["a"] != want {
		t.Fatalf("logo url = %q, want %q", batch.Logos["a"], want)
	}
	if gw.calls() != 1 {
		t.Fatalf("sign calls = %d, want 1", gw.calls())
	}
	if cache.urls["logos/acme.png"] != want {
		t.Fatalf("re-signed url not cached: %q", cache.urls["logos/acme.png"])
	}
}

func TestResolveStopsAfterRetryBudget(t *testing.T) {
	gw := &fakeGateway{signErr: errors.New("gateway down")}
	cache := newFakeURLCache()

	r := New(gw, cache, "logos", "avatars", zap.NewNop())
	records := []models.Application{recordWithLogo("a", "logos/acme.png")}

	for i := 0; i < maxSignAttempts; i++ {
		if batch := r.Resolve(context.Background(), "stu-1", records); batch == nil || len(batch.Logos) != 0 {
			t.Fatalf("cycle %d: batch = %+v", i, batch)
		}
	}
	if gw.calls() != maxSignAttempts {
		t.Fatalf("sign calls = %d, want %d", gw.calls(), maxSignAttempts)
	}

	// budget exhausted, the next cycle never reaches the gateway
	batch := r.Resolve(context.Background(), "stu-1", records)
	if batch == nil || len(batch.Logos) != 0 {
		t.Fatalf("post-budget batch = %+v", batch)
	}
	if gw.calls() != maxSignAttempts {
		t.Fatalf("sign calls after budget = %d, want %d", gw.calls(), maxSignAttempts)
	}
}

func TestResolveDiscardsStaleCycle(t *testing.T) {
	gw := &fakeGateway{
		started: make(chan struct{}, 1),
		release: make(chan struct{}),
	}
	cache := newFakeURLCache()

	r := New(gw, cache, "logos", "avatars", zap.NewNop())

	first := make(chan *Batch, 1)
	go func() {
		first <- r.Resolve(context.Background(), "stu-1", []models.Application{
			recordWithLogo("a", "logos/acme.png"),
		})
	}()

	// wait until the slow cycle is inside the gateway, then start a
	// newer one for the same student
	<-gw.started
	if batch := r.Resolve(context.Background(), "stu-1", nil); batch == nil {
		t.Fatal("latest cycle discarded")
	}

	close(gw.release)
	if batch := <-first; batch != nil {
		t.Fatalf("stale cycle returned a batch: %+v", batch)
	}
}

func TestResolveKeepsCyclesOfOtherStudents(t *testing.T) {
	gw := &fakeGateway{
		started: make(chan struct{}, 1),
		release: make(chan struct{}),
	}
	cache := newFakeURLCache()

	r := New(gw, cache, "logos", "avatars", zap.NewNop())

	first := make(chan *Batch, 1)
	go func() {
		first <- r.Resolve(context.Background(), "stu-1", []models.Application{
			recordWithLogo("a", "logos/acme.png"),
		})
	}()

	// while stu-1 is stuck inside the gateway, an unrelated student's
	// cycle runs to completion
	<-gw.started
	if batch := r.Resolve(context.Background(), "stu-2", nil); batch == nil {
		t.Fatal("unrelated cycle discarded")
	}

	close(gw.release)
	batch := <-first
	if batch == nil {
		t.Fatal("another student's cycle discarded this one")
	}
	want := "https://cdn.example/logos/logos/acme.png?sig=abc"
	if batch.Logos["a"] != want {
		t.Fatalf("logo url = %q, want %q", batch.Logos["a"], want)
	}
}
