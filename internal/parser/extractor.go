// Package parser turns raw page markup into cleaned text and in-scope
// links. Extraction is heuristic boilerplate stripping: an ordered rule
// set removes structural noise, then pattern-matched containers, then
// individual lines. The rules are data, not control flow, so each layer
// is tunable and testable on its own.
package parser

import (
	"bytes"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"

	"github.com/bracu/campuscrawl/internal/crawler"
)

// Rules is the ordered rule set applied during extraction
type Rules struct {
	// StructuralTags are elements whose entire subtree is removed
	StructuralTags []string
	// NoiseContainers are the container-like elements eligible for
	// class/id pattern removal
	NoiseContainers []string
	// NoisePattern matches class or id attributes of boilerplate
	// containers, case-insensitively
	NoisePattern *regexp.Regexp
	// MinLineLength is the minimum trimmed line length, in runes
	MinLineLength int
	// ChromeLines are UI-chrome phrases dropped on exact
	// case-insensitive match
	ChromeLines []string
}

// DefaultRules returns the rule set tuned for university CMS pages
func DefaultRules() Rules {
	return Rules{
		StructuralTags: []string{
			"script", "style", "nav", "footer", "header",
			"aside", "form", "iframe", "noscript", "svg",
			"button", "select", "option",
		},
		NoiseContainers: []string{"div", "section", "ul", "aside"},
		NoisePattern: regexp.MustCompile(`(?i)(menu|nav|sidebar|breadcrumb|search|social|footer|widget|` +
			`cookie|popup|modal|banner|advertisement|ad-|slick|carousel)`),
		MinLineLength: 10,
		ChromeLines: []string{
			"Apply Now", "Read More", "Learn More", "Click Here",
			"Skip to main", "Search form", "Toggle navigation",
			"Back to top", "Follow us", "Share this",
		},
	}
}

// symbolOnly matches lines without a single letter or digit
var symbolOnly = regexp.MustCompile(`^[^\p{L}\p{N}]+$`)

// ContentExtractor converts raw HTML into cleaned, deduplicated text
type ContentExtractor struct {
	rules       Rules
	structural  string
	containers  string
	chromeLines map[string]struct{}
}

// NewContentExtractor creates an extractor applying the given rules
func NewContentExtractor(rules Rules) *ContentExtractor {
	chrome := make(map[string]struct{}, len(rules.ChromeLines))
	for _, l := range rules.ChromeLines {
		chrome[strings.ToLower(l)] = struct{}{}
	}

	return &ContentExtractor{
		rules:       rules,
		structural:  strings.Join(rules.StructuralTags, ", "),
		containers:  strings.Join(rules.NoiseContainers, ", "),
		chromeLines: chrome,
	}
}

// Extract parses markup, strips boilerplate subtrees and filters the
// remaining text line by line. Unparseable markup yields an empty
// document rather than an error; the caller's minimum-length gate
// discards it.
func (e *ContentExtractor) Extract(markup []byte) *crawler.ExtractedDoc {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(markup))
	if err != nil {
		return &crawler.ExtractedDoc{}
	}

	title := strings.TrimSpace(doc.Find("title").First().Text())

	// Rule layer 1: structural noise subtrees
	doc.Find(e.structural).Remove()

	// Rule layer 2: containers whose class or id looks like boilerplate
	doc.Find(e.containers).Each(func(_ int, s *goquery.Selection) {
		class, _ := s.Attr("class")
		id, _ := s.Attr("id")
		if e.rules.NoisePattern.MatchString(class) || e.rules.NoisePattern.MatchString(id) {
			s.Remove()
		}
	})

	// Rule layer 3: line filters over the flattened text
	return &crawler.ExtractedDoc{
		Title: title,
		Text:  strings.Join(e.filterLines(flattenText(doc)), "\n"),
	}
}

// filterLines applies the line filters in order: blank, duplicate of an
// earlier kept line, too short, UI chrome, symbols only. First
// occurrence wins on duplicates, which also drops echoed menu text.
func (e *ContentExtractor) filterLines(lines []string) []string {
	seen := make(map[string]struct{})
	var kept []string

	for _, raw := range lines {
		line := strings.TrimSpace(raw)
		if line == "" {
			continue
		}
		if _, dup := seen[line]; dup {
			continue
		}
		if utf8.RuneCountInString(line) < e.rules.MinLineLength {
			continue
		}
		if _, chrome := e.chromeLines[strings.ToLower(line)]; chrome {
			continue
		}
		if symbolOnly.MatchString(line) {
			continue
		}

		seen[line] = struct{}{}
		kept = append(kept, line)
	}

	return kept
}

// flattenText walks the surviving DOM and returns one entry per text
// node line, preserving document order.
func flattenText(doc *goquery.Document) []string {
	var parts []string

	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			parts = append(parts, n.Data)
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}

	for _, n := range doc.Nodes {
		walk(n)
	}

	// Text nodes may hold embedded newlines; split them so the line
	// filters see one conceptual line at a time.
	return strings.Split(strings.Join(parts, "\n"), "\n")
}
