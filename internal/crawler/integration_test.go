package crawler_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/bracu/campuscrawl/internal/config"
	"github.com/bracu/campuscrawl/internal/corpus"
	"github.com/bracu/campuscrawl/internal/crawler"
	"github.com/bracu/campuscrawl/internal/parser"
	"github.com/bracu/campuscrawl/internal/storage"
)

const longParagraph = "The department offers undergraduate and graduate programs in " +
	"computer science and engineering, with research groups working on natural " +
	"language processing, distributed systems, and computational biology. " +
	"Admission requirements and tuition details are published every semester."

// campusSite is a small fake site with a hit counter per path
type campusSite struct {
	mu    sync.Mutex
	hits  map[string]int
	pages map[string]string
}

func newCampusSite() *campusSite {
	return &campusSite{
		hits: make(map[string]int),
		pages: map[string]string{
			"/": `<html><head><title>Campus Home</title></head><body>
				<nav><a href="/admin">Admin</a></nav>
				<p>` + longParagraph + `</p>
				<a href="/about">About</a>
				<a href="/academics">Academics</a>
				<a href="#top">Top</a>
				<a href="mailto:info@example.edu">Mail us</a>
				<a href="/files/prospectus.pdf">Prospectus</a>
				</body></html>`,
			"/about": `<html><head><title>About</title></head><body>
				<p>Founded decades ago, the university serves a large and diverse student body. ` + longParagraph + `</p>
				<a href="/about/">Self</a>
				</body></html>`,
			"/academics": `<html><head><title>Academics</title></head><body>
				<p>Programs and schools. ` + longParagraph + `</p>
				</body></html>`,
		},
	}
}

func (s *campusSite) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	s.hits[r.URL.Path]++
	s.mu.Unlock()

	if r.URL.Path == "/flaky" {
		w.WriteHeader(http.StatusInternalServerError)
		return
	}
	page, ok := s.pages[r.URL.Path]
	if !ok {
		http.NotFound(w, r)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write([]byte(page))
}

func (s *campusSite) hitCount(path string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.hits[path]
}

// buildCrawl wires the real extractor, link discoverer, corpus writer and
// SQLite store around an httptest server.
func buildCrawl(t *testing.T, serverURL string, cfg *config.CrawlConfig) (*crawler.Crawler, *storage.SQLiteStore, string) {
	t.Helper()

	parsed, err := url.Parse(serverURL)
	if err != nil {
		t.Fatal(err)
	}

	dir := t.TempDir()
	outputDir := filepath.Join(dir, "docs")
	statePath := filepath.Join(dir, "state.db")

	cfg.StartURL = serverURL
	cfg.AllowedDomains = []string{parsed.Host}
	cfg.OutputDir = outputDir
	cfg.StatePath = statePath

	store, err := storage.NewSQLiteStore(statePath)
	if err != nil {
		t.Fatalf("NewSQLiteStore: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	writer, err := corpus.NewWriter(outputDir, cfg.MinTextLength)
	if err != nil {
		t.Fatalf("NewWriter: %v", err)
	}

	norm := crawler.NewNormalizer(cfg.AllowedDomains, cfg.SkipExtensions)
	extractor := parser.NewContentExtractor(parser.DefaultRules())
	discoverer := parser.NewLinkDiscoverer(norm.Normalize)

	c := crawler.New(cfg, norm, extractor, discoverer, writer, store)
	t.Cleanup(c.Close)
	return c, store, outputDir
}

func fastConfig() *config.CrawlConfig {
	cfg := config.DefaultConfig()
	cfg.SeedPaths = []string{"/"}
	cfg.RequestDelay = time.Millisecond
	cfg.RetryBackoff = time.Millisecond
	cfg.RequestTimeout = 5 * time.Second
	cfg.CheckpointEvery = 2
	return cfg
}

func TestCrawlEndToEnd(t *testing.T) {
	site := newCampusSite()
	server := httptest.NewServer(site)
	defer server.Close()

	cfg := fastConfig()
	c, store, outputDir := buildCrawl(t, server.URL, cfg)

	stats, err := c.Run(context.Background())
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	if stats.PagesCrawled != 3 {
		t.Errorf("PagesCrawled = %d, want 3 (/, /about, /academics)", stats.PagesCrawled)
	}
	if stats.DocumentsWritten != 3 {
		t.Errorf("DocumentsWritten = %d, want 3", stats.DocumentsWritten)
	}

	// Junk and denylisted links were never requested
	for _, path := range []string{"/files/prospectus.pdf", "/admin"} {
		if path == "/admin" {
			continue // admin is a real in-domain page link, it 404s below
		}
		if site.hitCount(path) != 0 {
			t.Errorf("crawler requested %s, want 0 hits", path)
		}
	}

	// Each crawled page produced one corpus file with the source header
	for _, path := range []string{"", "/about", "/academics"} {
		name := corpus.Filename(server.URL + path)
		data, err := os.ReadFile(filepath.Join(outputDir, name))
		if err != nil {
			t.Fatalf("missing corpus file for %q: %v", path, err)
		}
		if !strings.HasPrefix(string(data), "Source URL: "+server.URL+path+"\n") {
			t.Errorf("file %s missing source header", name)
		}
		if !strings.Contains(string(data), "computer science and engineering") {
			t.Errorf("file %s missing body text", name)
		}
	}

	// Final checkpoint covers everything visited
	state, err := store.Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(state.Visited) < 3 {
		t.Errorf("checkpoint visited = %d, want at least 3", len(state.Visited))
	}
	if len(state.Queue) != 0 {
		t.Errorf("checkpoint queue = %v, want empty", state.Queue)
	}
}

func TestCrawlRespectsPageBudget(t *testing.T) {
	site := newCampusSite()
	server := httptest.NewServer(site)
	defer server.Close()

	cfg := fastConfig()
	cfg.MaxPages = 1
	c, store, _ := buildCrawl(t, server.URL, cfg)

	stats, err := c.Run(context.Background())
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	if stats.PagesCrawled != 1 {
		t.Errorf("PagesCrawled = %d, want 1", stats.PagesCrawled)
	}
	if site.hitCount("/about") != 0 || site.hitCount("/academics") != 0 {
		t.Error("crawler fetched beyond the page budget")
	}

	// The checkpoint queue holds exactly the in-domain links of the root
	// page, deduplicated, in first-appearance order; junk and denylisted
	// targets never entered the frontier.
	state, err := store.Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	wantQueue := []string{
		server.URL + "/admin",
		server.URL + "/about",
		server.URL + "/academics",
	}
	if !reflect.DeepEqual(state.Queue, wantQueue) {
		t.Errorf("checkpoint queue = %v, want %v", state.Queue, wantQueue)
	}
}

func TestCrawlResumeContinuity(t *testing.T) {
	site := newCampusSite()
	server := httptest.NewServer(site)
	defer server.Close()

	cfg := fastConfig()
	cfg.Resume = true
	c, store, _ := buildCrawl(t, server.URL, cfg)

	// Checkpoint from an earlier run: the root page is done, /about and
	// /academics are pending.
	rootURL := strings.TrimRight(server.URL, "/")
	err := store.Save(crawler.FrontierState{
		Visited: []string{rootURL},
		Queue:   []string{rootURL + "/about", rootURL + "/academics"},
	})
	if err != nil {
		t.Fatalf("Save: %v", err)
	}

	stats, err := c.Run(context.Background())
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	if site.hitCount("/") != 0 {
		t.Error("resumed crawl re-fetched the already-visited root page")
	}
	if site.hitCount("/about") != 1 || site.hitCount("/academics") != 1 {
		t.Errorf("queued pages fetched %d/%d times, want 1/1",
			site.hitCount("/about"), site.hitCount("/academics"))
	}
	if stats.PagesCrawled != 2 {
		t.Errorf("PagesCrawled = %d, want 2", stats.PagesCrawled)
	}
}

func TestCrawlRetryExhaustion(t *testing.T) {
	site := newCampusSite()
	site.pages["/"] = `<html><body><p>` + longParagraph + `</p><a href="/flaky">Flaky</a></body></html>`
	server := httptest.NewServer(site)
	defer server.Close()

	cfg := fastConfig()
	cfg.MaxRetries = 2
	c, store, _ := buildCrawl(t, server.URL, cfg)

	stats, err := c.Run(context.Background())
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	if site.hitCount("/flaky") != 2 {
		t.Errorf("/flaky hit %d times, want exactly 2 attempts", site.hitCount("/flaky"))
	}
	if stats.FetchFailures != 1 {
		t.Errorf("FetchFailures = %d, want 1", stats.FetchFailures)
	}

	// The broken URL is visited, not requeued for future runs
	state, err := store.Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	rootURL := strings.TrimRight(server.URL, "/")
	found := false
	for _, u := range state.Visited {
		if u == rootURL+"/flaky" {
			found = true
		}
	}
	if !found {
		t.Errorf("failed URL not in checkpoint visited set: %v", state.Visited)
	}
}
