package cmd

import (
	"reflect"
	"testing"
	"time"

	"github.com/spf13/viper"

	"github.com/bracu/campuscrawl/internal/config"
)

func TestRootCommandMetadata(t *testing.T) {
	if rootCmd.Use != "campuscrawl [start-url]" {
		t.Errorf("Use = %q", rootCmd.Use)
	}
	if rootCmd.Short == "" {
		t.Error("Short description missing")
	}
	if rootCmd.RunE == nil {
		t.Error("RunE not set")
	}
}

func TestSetVersionInfo(t *testing.T) {
	SetVersionInfo("1.2.3", "2026-01-15")

	if rootCmd.Version != "1.2.3 (built 2026-01-15)" {
		t.Errorf("Version = %q", rootCmd.Version)
	}
}

func TestCrawlFlagDefaults(t *testing.T) {
	stringFlags := map[string]string{
		"user-agent":  "CampusCrawl/1.0",
		"output-dir":  "university_docs",
		"state-db":    "./crawl_state.db",
		"log-level":   "info",
		"log-file":    "",
		"max-pages":   "300",
		"max-retries": "2",
	}
	for name, want := range stringFlags {
		flag := rootCmd.Flags().Lookup(name)
		if flag == nil {
			t.Errorf("flag %q not registered", name)
			continue
		}
		if flag.DefValue != want {
			t.Errorf("flag %q default = %q, want %q", name, flag.DefValue, want)
		}
	}

	durationFlags := map[string]time.Duration{
		"delay":         1 * time.Second,
		"timeout":       30 * time.Second,
		"retry-backoff": 2 * time.Second,
	}
	for name, want := range durationFlags {
		flag := rootCmd.Flags().Lookup(name)
		if flag == nil {
			t.Errorf("flag %q not registered", name)
			continue
		}
		if flag.DefValue != want.String() {
			t.Errorf("flag %q default = %q, want %q", name, flag.DefValue, want)
		}
	}

	domains := rootCmd.Flags().Lookup("allowed-domains")
	if domains == nil {
		t.Fatal("flag allowed-domains not registered")
	}
	if domains.DefValue != "[www.bracu.ac.bd,bracu.ac.bd]" {
		t.Errorf("flag allowed-domains default = %q, want the production domain set", domains.DefValue)
	}

	boolFlags := []string{"resume", "respect-robots", "show-config"}
	for _, name := range boolFlags {
		flag := rootCmd.Flags().Lookup(name)
		if flag == nil {
			t.Errorf("flag %q not registered", name)
			continue
		}
		if flag.DefValue != "false" {
			t.Errorf("flag %q default = %q, want false", name, flag.DefValue)
		}
	}
}

func TestFlagShorthands(t *testing.T) {
	shorthands := map[string]string{
		"max-pages":  "n",
		"delay":      "r",
		"timeout":    "t",
		"user-agent": "u",
		"output-dir": "o",
		"state-db":   "s",
	}
	for name, want := range shorthands {
		flag := rootCmd.Flags().Lookup(name)
		if flag == nil {
			t.Fatalf("flag %q not registered", name)
		}
		if flag.Shorthand != want {
			t.Errorf("flag %q shorthand = %q, want %q", name, flag.Shorthand, want)
		}
	}
}

// A bare invocation unmarshals the bound flag defaults over
// DefaultConfig; nothing the defaults carry may be lost in the process.
func TestDefaultConfigSurvivesFlagBinding(t *testing.T) {
	cfg := config.DefaultConfig()
	if err := viper.Unmarshal(cfg); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}

	want := config.DefaultConfig()
	if !reflect.DeepEqual(cfg.AllowedDomains, want.AllowedDomains) {
		t.Errorf("AllowedDomains = %v, want %v", cfg.AllowedDomains, want.AllowedDomains)
	}
	if cfg.MaxPages != want.MaxPages {
		t.Errorf("MaxPages = %d, want %d", cfg.MaxPages, want.MaxPages)
	}
	if cfg.RequestDelay != want.RequestDelay {
		t.Errorf("RequestDelay = %v, want %v", cfg.RequestDelay, want.RequestDelay)
	}
	if len(cfg.SeedPaths) != len(want.SeedPaths) {
		t.Errorf("SeedPaths = %d entries, want %d", len(cfg.SeedPaths), len(want.SeedPaths))
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("default configuration invalid after flag binding: %v", err)
	}
}

func TestConfigFlagIsPersistent(t *testing.T) {
	if rootCmd.PersistentFlags().Lookup("config") == nil {
		t.Error("persistent flag config not registered")
	}
}
