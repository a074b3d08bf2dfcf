package crawler

import "time"

// FetchResult is the outcome of fetching a single URL, including the
// exhausted-retries case. It is consumed immediately and never persisted.
type FetchResult struct {
	URL         string // Requested URL
	Success     bool   // True if any attempt loaded the page
	StatusCode  int    // HTTP status of the last attempt
	ContentType string // Content-Type header of the successful response
	Body        []byte // Raw markup, nil when Success is false
	FinalURL    string // URL after redirects
	Attempts    int    // Number of attempts made
}

// ExtractedDoc is the cleaned content of one page
type ExtractedDoc struct {
	Title string // <title> text, trimmed, may be empty
	Text  string // Newline-joined surviving lines
}

// FrontierState is the durable snapshot of the crawl frontier.
// Visited and Queue are disjoint; Queue preserves FIFO order.
type FrontierState struct {
	Visited []string
	Queue   []string
}

// CrawlStats represents crawling statistics
type CrawlStats struct {
	PagesCrawled     int // Successful fetches (consumes the page budget)
	DocumentsWritten int
	SkippedShort     int // Pages below the minimum content length
	FetchFailures    int // URLs abandoned after exhausting retries
	StartTime        time.Time
	Duration         time.Duration
}
