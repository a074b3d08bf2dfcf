package crawler

import (
	"context"
	"time"

	"golang.org/x/time/rate"
)

// RateLimiter enforces a single global politeness interval between
// consecutive fetches. There is no per-host differentiation: the crawl
// targets one origin and issues requests from one logical flow.
type RateLimiter struct {
	limiter *rate.Limiter
}

// NewRateLimiter creates a rate limiter with the given minimum delay
// between requests.
func NewRateLimiter(delay time.Duration) *RateLimiter {
	return &RateLimiter{
		limiter: rate.NewLimiter(rate.Every(delay), 1),
	}
}

// Wait blocks until the politeness interval since the previous request
// has elapsed, or the context is cancelled.
func (r *RateLimiter) Wait(ctx context.Context) error {
	return r.limiter.Wait(ctx)
}
