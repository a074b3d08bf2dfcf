// Package crawler implements the core crawl loop: a politeness-limited,
// resumable fetch/extract/discover cycle over a single university site.
// The loop runs as one logical flow, so frontier mutation needs no
// locking and crawl order is deterministic given deterministic link
// order on each page.
package crawler

import (
	"context"
	"log/slog"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/bracu/campuscrawl/internal/config"
)

// Crawler drives the crawl: dequeue, fetch with retry, extract, write,
// discover links, enqueue, checkpoint, until the queue empties or the
// page budget is exhausted.
type Crawler struct {
	cfg        *config.CrawlConfig
	norm       *Normalizer
	frontier   *Frontier
	fetcher    Fetcher
	extractor  Extractor
	discoverer Discoverer
	writer     DocumentWriter
	store      StateStore
	limiter    *RateLimiter
	robots     *RobotsChecker
	httpClient *HTTPClient

	stats CrawlStats
}

// New creates a crawler wired to the given collaborators. The HTTP
// client, retrying fetcher, rate limiter and optional robots checker are
// built from the configuration.
func New(cfg *config.CrawlConfig, norm *Normalizer, extractor Extractor, discoverer Discoverer, writer DocumentWriter, store StateStore) *Crawler {
	httpClient := NewHTTPClient(cfg.UserAgent, cfg.RequestTimeout)

	var robots *RobotsChecker
	if cfg.RespectRobots {
		robots = NewRobotsChecker(httpClient, cfg.UserAgent)
	}

	return &Crawler{
		cfg:        cfg,
		norm:       norm,
		frontier:   NewFrontier(),
		fetcher:    NewRetryingFetcher(httpClient, cfg.MaxRetries, cfg.RetryBackoff),
		extractor:  extractor,
		discoverer: discoverer,
		writer:     writer,
		store:      store,
		limiter:    NewRateLimiter(cfg.RequestDelay),
		robots:     robots,
		httpClient: httpClient,
	}
}

// Run executes the crawl loop until the queue empties, the page budget
// is reached, or ctx is cancelled. State is checkpointed every
// CheckpointEvery successful fetches and once more before returning, so
// an interrupted run can resume without repeating work.
func (c *Crawler) Run(ctx context.Context) (CrawlStats, error) {
	c.stats.StartTime = time.Now()

	if c.cfg.Resume {
		state, err := c.store.Load()
		if err != nil {
			// A missing or unreadable checkpoint means a fresh start,
			// never a crash: resumability is best effort.
			slog.Warn("Could not load previous crawl state, starting fresh", "error", err)
		} else {
			c.frontier.Restore(state)
			slog.Info("Resuming crawl", "visited", c.frontier.VisitedCount(), "queued", c.frontier.QueueLen())
		}
	}

	seeded := c.frontier.Seed(c.norm, c.cfg.RootURL(), c.cfg.SeedPaths)
	slog.Info("Seeded frontier", "added", seeded, "queued", c.frontier.QueueLen())

	if c.frontier.QueueLen() == 0 {
		slog.Info("Nothing to crawl, queue is empty")
		return c.finish(nil)
	}

	for c.stats.PagesCrawled < c.cfg.MaxPages {
		if err := ctx.Err(); err != nil {
			slog.Info("Crawl cancelled")
			return c.finish(err)
		}

		url, ok := c.frontier.Dequeue()
		if !ok {
			break
		}
		if c.frontier.IsVisited(url) {
			// Enqueue rejects visited URLs, so this should not occur
			continue
		}

		if c.robots != nil && !c.robots.IsAllowed(ctx, url) {
			slog.Info("URL disallowed by robots.txt", "url", url)
			c.frontier.MarkVisited(url)
			continue
		}

		slog.Info("Fetching", "page", c.stats.PagesCrawled+1, "budget", c.cfg.MaxPages, "url", url)
		result := c.fetcher.Fetch(ctx, url)

		// Visited is sticky whatever the outcome: permanently broken
		// pages are abandoned, not requeued across restarts.
		c.frontier.MarkVisited(url)

		if result.Success {
			c.processPage(url, result)
			c.stats.PagesCrawled++

			if c.stats.PagesCrawled%c.cfg.CheckpointEvery == 0 {
				c.checkpoint()
			}
		} else {
			c.stats.FetchFailures++
			slog.Warn("Abandoning URL after exhausting attempts", "url", url, "attempts", result.Attempts)
		}

		if err := c.limiter.Wait(ctx); err != nil {
			return c.finish(err)
		}
	}

	return c.finish(nil)
}

// Stats returns the statistics accumulated so far
func (c *Crawler) Stats() CrawlStats {
	stats := c.stats
	stats.Duration = time.Since(stats.StartTime)
	return stats
}

// Close releases network resources held by the crawler
func (c *Crawler) Close() {
	c.httpClient.Close()
}

// processPage extracts and writes content, then feeds discovered links
// back into the frontier.
func (c *Crawler) processPage(url string, result *FetchResult) {
	if !isHTMLContent(result.ContentType) {
		slog.Debug("Skipping non-HTML content", "url", url, "content_type", result.ContentType)
		return
	}

	doc := c.extractor.Extract(result.Body)

	written, err := c.writer.Write(url, doc.Title, doc.Text)
	if err != nil {
		slog.Error("Failed to write document", "url", url, "error", err)
	} else if written {
		c.stats.DocumentsWritten++
		slog.Info("Saved document", "url", url, "chars", utf8.RuneCountInString(doc.Text), "title", doc.Title)
	} else {
		c.stats.SkippedShort++
		slog.Info("Too little content after cleaning, skipped", "url", url)
	}

	added := 0
	for _, link := range c.discoverer.Discover(result.Body, url) {
		if c.frontier.Enqueue(link) {
			added++
		}
	}
	if added > 0 {
		slog.Info("Discovered links", "url", url, "new", added, "queued", c.frontier.QueueLen())
	}
}

// checkpoint persists the frontier; a failed save is logged and the
// crawl continues.
func (c *Crawler) checkpoint() {
	if err := c.store.Save(c.frontier.Snapshot()); err != nil {
		slog.Error("Failed to save crawl state", "error", err)
	} else {
		slog.Debug("Saved crawl state", "visited", c.frontier.VisitedCount(), "queued", c.frontier.QueueLen())
	}
}

// finish writes the final checkpoint and returns the stats
func (c *Crawler) finish(err error) (CrawlStats, error) {
	c.checkpoint()

	c.stats.Duration = time.Since(c.stats.StartTime)
	slog.Info("Crawl finished",
		"crawled", c.stats.PagesCrawled,
		"written", c.stats.DocumentsWritten,
		"skipped_short", c.stats.SkippedShort,
		"failures", c.stats.FetchFailures,
		"duration", c.stats.Duration)

	return c.stats, err
}

// isHTMLContent reports whether a Content-Type header names parseable
// markup. An absent header is treated as HTML.
func isHTMLContent(contentType string) bool {
	if contentType == "" {
		return true
	}
	return strings.HasPrefix(contentType, "text/html") ||
		strings.HasPrefix(contentType, "application/xhtml+xml")
}
