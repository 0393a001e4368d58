package media

import (
	"context"
	"errors"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

const defaultBackoff = 30 * time.Second

// ErrRateLimited is returned while the upstream has asked us to back off.
var ErrRateLimited = errors.New("upstream rate limit in effect")

// RateLimiter throttles calls to the upstream API with a token bucket, and refuses calls
// outright during a backoff window set after a 429.
type RateLimiter struct {
	mu      sync.Mutex
	limiter *rate.Limiter
	retryAt time.Time
	nowFunc func() time.Time
}

// NewRateLimiter allows requestsPerSecond with the given burst, which is at least 1. A
// non-positive rate disables throttling but keeps 429 backoff.
func NewRateLimiter(requestsPerSecond float64, burst int) *RateLimiter {
	limit := rate.Limit(requestsPerSecond)
	if requestsPerSecond <= 0 {
		limit = rate.Inf
	}
	if burst < 1 {
		burst = 1
	}
	return &RateLimiter{
		limiter: rate.NewLimiter(limit, burst),
		nowFunc: time.Now,
	}
}

// Wait blocks until the bucket admits a request, or fails fast during a backoff window.
func (r *RateLimiter) Wait(ctx context.Context) error {
	r.mu.Lock()
	retryAt := r.retryAt
	r.mu.Unlock()

	if r.nowFunc().Before(retryAt) {
		return ErrRateLimited
	}
	return r.limiter.Wait(ctx)
}

// RecordRateLimitError starts a backoff window. retryAfter <= 0 uses the default window.
func (r *RateLimiter) RecordRateLimitError(retryAfter time.Duration) {
	if retryAfter <= 0 {
		retryAfter = defaultBackoff
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.retryAt = r.nowFunc().Add(retryAfter)
}
