package crawler

import (
	"context"
	"log/slog"
	"time"
)

// RetryingFetcher fetches a page with bounded retries and a linear,
// attempt-scaled backoff between failed attempts. Exhausting every
// attempt is not an error: the URL is reported as failed and the caller
// abandons it for the rest of the run.
type RetryingFetcher struct {
	client      *HTTPClient
	maxAttempts int
	backoff     time.Duration
}

// NewRetryingFetcher creates a fetcher with the given attempt cap and
// backoff unit. The delay before retry i is i times the backoff unit.
func NewRetryingFetcher(client *HTTPClient, maxAttempts int, backoff time.Duration) *RetryingFetcher {
	return &RetryingFetcher{
		client:      client,
		maxAttempts: maxAttempts,
		backoff:     backoff,
	}
}

// Fetch attempts to load url up to the attempt cap. A transport error or
// an HTTP status of 400 or above counts as a failed attempt.
func (f *RetryingFetcher) Fetch(ctx context.Context, url string) *FetchResult {
	result := &FetchResult{URL: url}

	for attempt := 1; attempt <= f.maxAttempts; attempt++ {
		result.Attempts = attempt

		resp, err := f.client.Get(ctx, url)
		switch {
		case err != nil:
			slog.Warn("Fetch attempt failed", "url", url, "attempt", attempt, "error", err)
		case resp.StatusCode >= 400:
			result.StatusCode = resp.StatusCode
			slog.Warn("Fetch attempt returned error status", "url", url, "attempt", attempt, "status", resp.StatusCode)
		default:
			result.Success = true
			result.StatusCode = resp.StatusCode
			result.ContentType = resp.ContentType
			result.Body = resp.Body
			result.FinalURL = resp.FinalURL
			return result
		}

		if attempt < f.maxAttempts {
			if err := sleepContext(ctx, time.Duration(attempt)*f.backoff); err != nil {
				return result
			}
		}
	}

	return result
}

// sleepContext sleeps for d or until ctx is cancelled
func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
