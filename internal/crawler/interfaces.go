package crawler

import "context"

// Fetcher retrieves a page with bounded retries. A nil error is not part
// of the contract: exhausted retries are reported through
// FetchResult.Success, never as an error.
type Fetcher interface {
	Fetch(ctx context.Context, url string) *FetchResult
}

// Extractor converts raw page markup into cleaned text
type Extractor interface {
	Extract(markup []byte) *ExtractedDoc
}

// Discoverer extracts in-scope outbound links from raw markup,
// deduplicated in order of first appearance.
type Discoverer interface {
	Discover(markup []byte, baseURL string) []string
}

// DocumentWriter persists extracted content with provenance metadata.
// It reports written=false when the content is below the minimum size.
type DocumentWriter interface {
	Write(sourceURL, title, text string) (written bool, err error)
}

// StateStore persists the crawl frontier for resumability.
// Save overwrites the previous snapshot atomically.
type StateStore interface {
	Save(state FrontierState) error
	Load() (FrontierState, error)
	Close() error
}
