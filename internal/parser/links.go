package parser

import (
	"bytes"

	"github.com/PuerkitoBio/goquery"
)

// NormalizeFunc canonicalizes and validates a candidate URL against a
// base URL, returning an error for out-of-scope targets.
type NormalizeFunc func(rawURL, baseURL string) (string, error)

// LinkDiscoverer extracts in-scope outbound links from page markup.
// It holds no crawl state: filtering against visited and queued URLs is
// the frontier's concern.
type LinkDiscoverer struct {
	normalize NormalizeFunc
}

// NewLinkDiscoverer creates a discoverer that validates every target
// through normalize.
func NewLinkDiscoverer(normalize NormalizeFunc) *LinkDiscoverer {
	return &LinkDiscoverer{normalize: normalize}
}

// Discover returns every valid hyperlink target in markup, resolved
// against baseURL, deduplicated in order of first appearance.
func (d *LinkDiscoverer) Discover(markup []byte, baseURL string) []string {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(markup))
	if err != nil {
		return nil
	}

	seen := make(map[string]struct{})
	var found []string

	doc.Find("a[href]").Each(func(_ int, s *goquery.Selection) {
		href, _ := s.Attr("href")

		target, err := d.normalize(href, baseURL)
		if err != nil {
			return
		}
		if _, dup := seen[target]; dup {
			return
		}

		seen[target] = struct{}{}
		found = append(found, target)
	})

	return found
}
