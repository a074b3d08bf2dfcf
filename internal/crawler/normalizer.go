package crawler

import (
	"net/url"
	"path"
	"strings"

	"github.com/PuerkitoBio/purell"
)

// normalizationFlags canonicalize a URL so that two spellings of the
// same page compare equal as strings. The same flags are applied on
// every pass, which keeps normalization idempotent.
const normalizationFlags = purell.FlagLowercaseScheme |
	purell.FlagLowercaseHost |
	purell.FlagRemoveDefaultPort |
	purell.FlagRemoveFragment |
	purell.FlagRemoveTrailingSlash

// Normalizer canonicalizes candidate URLs and filters out everything the
// crawl must never touch: foreign hosts, binary assets and junk links.
// It is a pure function of its configuration and performs no I/O.
type Normalizer struct {
	allowedHosts map[string]struct{}
	skipExts     map[string]struct{}
}

// NewNormalizer creates a normalizer for the given allowed domain set
// and file-extension denylist.
func NewNormalizer(allowedDomains, skipExtensions []string) *Normalizer {
	hosts := make(map[string]struct{}, len(allowedDomains))
	for _, d := range allowedDomains {
		hosts[strings.ToLower(d)] = struct{}{}
	}

	exts := make(map[string]struct{}, len(skipExtensions))
	for _, e := range skipExtensions {
		exts[strings.ToLower(e)] = struct{}{}
	}

	return &Normalizer{
		allowedHosts: hosts,
		skipExts:     exts,
	}
}

// Normalize resolves rawURL against baseURL, canonicalizes the result
// and validates it against the crawl scope. It returns one of the
// sentinel errors from errors.go when the URL is rejected.
func (n *Normalizer) Normalize(rawURL, baseURL string) (string, error) {
	raw := strings.TrimSpace(rawURL)
	if raw == "" {
		return "", ErrEmptyURL
	}

	lower := strings.ToLower(raw)
	if strings.HasPrefix(lower, "#") ||
		strings.Contains(lower, "javascript:") ||
		strings.Contains(lower, "mailto:") ||
		strings.Contains(lower, "tel:") {
		return "", ErrJunkLink
	}

	ref, err := url.Parse(raw)
	if err != nil {
		return "", ErrEmptyURL
	}

	resolved := ref
	if baseURL != "" {
		base, err := url.Parse(baseURL)
		if err != nil {
			return "", ErrEmptyURL
		}
		resolved = base.ResolveReference(ref)
	}

	if resolved.Scheme != "http" && resolved.Scheme != "https" {
		return "", ErrUnsupportedScheme
	}

	normalized := purell.NormalizeURL(resolved, normalizationFlags)

	u, err := url.Parse(normalized)
	if err != nil {
		return "", ErrEmptyURL
	}

	if _, ok := n.allowedHosts[u.Host]; !ok {
		return "", ErrHostNotAllowed
	}

	if ext := strings.ToLower(path.Ext(u.Path)); ext != "" {
		if _, ok := n.skipExts[ext]; ok {
			return "", ErrSkippedExtension
		}
	}

	return normalized, nil
}
