// Package config provides configuration management for the crawler.
// It defines configuration structures and default values for crawling parameters.
package config

import (
	"net/url"
	"strings"
	"time"
)

// CrawlConfig holds crawler configuration
type CrawlConfig struct {
	// Basic crawling parameters
	StartURL       string        `mapstructure:"start_url" yaml:"start_url"`             // Root URL of the site to crawl
	AllowedDomains []string      `mapstructure:"allowed_domains" yaml:"allowed_domains"` // Hosts the crawler may visit
	SeedPaths      []string      `mapstructure:"seed_paths" yaml:"seed_paths"`           // Priority paths enqueued at startup
	MaxPages       int           `mapstructure:"max_pages" yaml:"max_pages"`             // Stop after N successful fetches
	Resume         bool          `mapstructure:"resume" yaml:"resume"`                   // Restore frontier state from the state DB
	RequestDelay   time.Duration `mapstructure:"request_delay" yaml:"request_delay"`     // Politeness delay between requests
	RequestTimeout time.Duration `mapstructure:"request_timeout" yaml:"request_timeout"` // HTTP request timeout
	MaxRetries     int           `mapstructure:"max_retries" yaml:"max_retries"`         // Fetch attempts per URL
	RetryBackoff   time.Duration `mapstructure:"retry_backoff" yaml:"retry_backoff"`     // Backoff unit between failed attempts
	UserAgent      string        `mapstructure:"user_agent" yaml:"user_agent"`           // HTTP User-Agent header
	RespectRobots  bool          `mapstructure:"respect_robots" yaml:"respect_robots"`   // Whether to honor robots.txt

	// URL filtering
	SkipExtensions []string `mapstructure:"skip_extensions" yaml:"skip_extensions"` // Path extensions never fetched

	// Output
	OutputDir     string `mapstructure:"output_dir" yaml:"output_dir"`           // Directory for extracted text files
	StatePath     string `mapstructure:"state_path" yaml:"state_path"`           // Path to the SQLite state file
	MinTextLength int    `mapstructure:"min_text_length" yaml:"min_text_length"` // Cleaned text must exceed this to be written

	// Checkpointing
	CheckpointEvery int `mapstructure:"checkpoint_every" yaml:"checkpoint_every"` // Save state every N successful fetches
}

// DefaultConfig returns a configuration with default values.
// The defaults target the BRAC University public site.
func DefaultConfig() *CrawlConfig {
	return &CrawlConfig{
		StartURL: "https://www.bracu.ac.bd",
		AllowedDomains: []string{
			"www.bracu.ac.bd",
			"bracu.ac.bd",
		},
		SeedPaths: []string{
			"/",
			"/about",
			"/about/overview",
			"/about/mission-vision",
			"/about/history",
			"/about/governance",
			"/about/accreditation",
			"/academics",
			"/academics/programs",
			"/academics/undergraduate-programs",
			"/academics/graduate-programs",
			"/academics/departments",
			"/admissions",
			"/admissions/undergraduate",
			"/admissions/graduate",
			"/admissions/international-students",
			"/admissions/tuition-fees",
			"/admissions/scholarships-and-financial-aid",
			"/research",
			"/research/centers",
			"/research/publications",
			"/student-life",
			"/student-life/clubs",
			"/student-life/residential-life",
			"/student-life/career-services",
			"/campus",
			"/faculty",
			"/contact",
		},
		MaxPages:       300,
		Resume:         false,
		RequestDelay:   1 * time.Second,
		RequestTimeout: 30 * time.Second,
		MaxRetries:     2,
		RetryBackoff:   2 * time.Second,
		UserAgent:      "CampusCrawl/1.0",
		RespectRobots:  false,
		SkipExtensions: []string{
			".jpg", ".jpeg", ".png", ".gif", ".svg", ".webp", ".ico",
			".pdf", ".zip", ".rar", ".7z",
			".doc", ".docx", ".ppt", ".pptx", ".xls", ".xlsx",
			".css", ".js", ".json", ".xml",
			".mp3", ".mp4", ".avi", ".mov", ".wmv",
		},
		OutputDir:       "university_docs",
		StatePath:       "./crawl_state.db",
		MinTextLength:   150,
		CheckpointEvery: 10,
	}
}

// Validate checks if the configuration is valid
func (c *CrawlConfig) Validate() error {
	if c.StartURL == "" {
		return ErrEmptyStartURL
	}

	u, err := url.Parse(c.StartURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return ErrInvalidStartURL
	}

	if len(c.AllowedDomains) == 0 {
		return ErrNoAllowedDomains
	}

	if c.MaxPages <= 0 {
		return ErrInvalidMaxPages
	}

	if c.MaxRetries <= 0 {
		return ErrInvalidMaxRetries
	}

	if c.RequestTimeout <= 0 {
		return ErrInvalidTimeout
	}

	// Floor on the delay so a misconfigured crawl cannot hammer the origin
	if c.RequestDelay < 100*time.Millisecond {
		c.RequestDelay = 100 * time.Millisecond
	}

	if c.OutputDir == "" {
		return ErrEmptyOutputDir
	}

	if c.StatePath == "" {
		return ErrEmptyStatePath
	}

	if c.CheckpointEvery <= 0 {
		c.CheckpointEvery = 10
	}

	return nil
}

// RootURL returns the start URL without its trailing slash, the base
// against which seed paths are resolved.
func (c *CrawlConfig) RootURL() string {
	return strings.TrimRight(c.StartURL, "/")
}
