// Package cmd provides the command-line interface for CampusCrawl.
// It handles command parsing, configuration loading, and crawler execution.
package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/bracu/campuscrawl/internal/config"
	"github.com/bracu/campuscrawl/internal/corpus"
	"github.com/bracu/campuscrawl/internal/crawler"
	"github.com/bracu/campuscrawl/internal/logging"
	"github.com/bracu/campuscrawl/internal/parser"
	"github.com/bracu/campuscrawl/internal/storage"
)

var (
	cfgFile   string
	version   string
	buildTime string
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "campuscrawl [start-url]",
	Short: "A resumable, politeness-limited university website crawler",
	Long: `CampusCrawl turns a university website into a corpus of cleaned
text documents.

Starting from a seed set of paths it fetches pages one at a time with a
politeness delay, strips navigation and other boilerplate, writes the
surviving text with provenance headers, and checkpoints its frontier so
an interrupted crawl can resume without repeating work.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runCrawl,
}

// Execute runs the root command with the given context
func Execute(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}

// SetVersionInfo sets version information for the CLI
func SetVersionInfo(v, bt string) {
	version = v
	buildTime = bt
	rootCmd.Version = fmt.Sprintf("%s (built %s)", version, buildTime)
}

func init() {
	cobra.OnInitialize(initConfig)

	// Configuration file flag
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./campuscrawl.yml)")

	// Configuration management flags
	rootCmd.Flags().Bool("show-config", false, "Display current configuration in YAML format and exit")

	// Crawl flags
	rootCmd.Flags().IntP("max-pages", "n", 300, "Maximum number of pages to crawl")
	rootCmd.Flags().Bool("resume", false, "Resume from previous crawl state")
	rootCmd.Flags().DurationP("delay", "r", 1*time.Second, "Politeness delay between requests")
	rootCmd.Flags().DurationP("timeout", "t", 30*time.Second, "HTTP request timeout")
	rootCmd.Flags().Int("max-retries", 2, "Fetch attempts per URL")
	rootCmd.Flags().Duration("retry-backoff", 2*time.Second, "Backoff unit between failed attempts")
	rootCmd.Flags().StringP("user-agent", "u", "CampusCrawl/1.0", "HTTP User-Agent header")
	rootCmd.Flags().Bool("respect-robots", false, "Honor robots.txt rules")
	// The flag default must carry the real domain set: viper.Unmarshal
	// writes every bound key into the config, so a nil default here
	// would wipe the configured allow-list on a bare invocation.
	rootCmd.Flags().StringSlice("allowed-domains", config.DefaultConfig().AllowedDomains, "Hosts the crawler may visit")

	// Output flags
	rootCmd.Flags().StringP("output-dir", "o", "university_docs", "Directory for extracted text files")
	rootCmd.Flags().StringP("state-db", "s", "./crawl_state.db", "Path to the crawl state file")

	// Logging flags
	rootCmd.Flags().String("log-level", "info", "Log level: debug, info, warn, error")
	rootCmd.Flags().String("log-file", "", "Optional log file (JSON records, rotated)")

	bindFlags := []struct {
		viperKey string
		flagName string
	}{
		{"max_pages", "max-pages"},
		{"resume", "resume"},
		{"request_delay", "delay"},
		{"request_timeout", "timeout"},
		{"max_retries", "max-retries"},
		{"retry_backoff", "retry-backoff"},
		{"user_agent", "user-agent"},
		{"respect_robots", "respect-robots"},
		{"allowed_domains", "allowed-domains"},
		{"output_dir", "output-dir"},
		{"state_path", "state-db"},
		{"log_level", "log-level"},
		{"log_file", "log-file"},
	}

	for _, bind := range bindFlags {
		if err := viper.BindPFlag(bind.viperKey, rootCmd.Flags().Lookup(bind.flagName)); err != nil {
			fmt.Fprintf(os.Stderr, "Warning: failed to bind flag %s: %v\n", bind.flagName, err)
		}
	}
}

// initConfig reads in config file and ENV variables if set.
func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.AddConfigPath(".")
		viper.SetConfigType("yaml")
		viper.SetConfigName("campuscrawl")
	}

	viper.AutomaticEnv()
	viper.SetEnvPrefix("CC")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintf(os.Stderr, "Using config file: %s\n", viper.ConfigFileUsed())
	}
}

func showCurrentConfig(cfg *config.CrawlConfig) error {
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: configuration validation failed: %v\n\n", err)
	}

	yamlData, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal configuration to YAML: %w", err)
	}

	fmt.Printf("# Current CampusCrawl configuration\n")
	fmt.Printf("# Config file search path: ./campuscrawl.yml; env prefix: CC_\n\n")
	fmt.Print(string(yamlData))

	return nil
}

func runCrawl(cmd *cobra.Command, args []string) error {
	showConfig, _ := cmd.Flags().GetBool("show-config")

	cfg := config.DefaultConfig()
	if err := viper.Unmarshal(cfg); err != nil {
		return fmt.Errorf("failed to unmarshal config: %w", err)
	}

	// A positional start URL overrides the configured site; its host is
	// added to the allowed domains so the override is actually crawlable.
	if len(args) == 1 {
		cfg.StartURL = args[0]
		if u, err := url.Parse(args[0]); err == nil && u.Host != "" {
			found := false
			for _, d := range cfg.AllowedDomains {
				if strings.EqualFold(d, u.Host) {
					found = true
					break
				}
			}
			if !found {
				cfg.AllowedDomains = append(cfg.AllowedDomains, u.Host)
			}
		}
	}

	if showConfig {
		return showCurrentConfig(cfg)
	}

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	logCfg := logging.Config{
		Level:      logging.ParseLevel(viper.GetString("log_level")),
		FilePath:   viper.GetString("log_file"),
		MaxSize:    100,
		MaxBackups: 5,
		Console:    true,
	}
	if err := logging.SetDefault(logCfg); err != nil {
		return fmt.Errorf("failed to configure logging: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(cfg.StatePath), 0750); err != nil {
		return fmt.Errorf("failed to create state directory: %w", err)
	}

	fmt.Printf("Starting crawl of %s (max %d pages)\n", cfg.RootURL(), cfg.MaxPages)
	if cfg.Resume {
		fmt.Printf("  Resuming from: %s\n", cfg.StatePath)
	}
	fmt.Printf("  Output: %s/\n", cfg.OutputDir)

	c, store, err := initializeCrawler(cfg)
	if err != nil {
		return fmt.Errorf("failed to initialize crawler: %w", err)
	}
	defer c.Close()
	defer func() { _ = store.Close() }()

	stats, err := c.Run(cmd.Context())
	if err != nil && !errors.Is(err, context.Canceled) {
		return err
	}

	fmt.Printf("Done. Crawled %d pages, wrote %d documents to ./%s/\n",
		stats.PagesCrawled, stats.DocumentsWritten, cfg.OutputDir)
	return nil
}

// initializeCrawler wires storage, writer, normalizer and parsers into
// a crawler instance.
func initializeCrawler(cfg *config.CrawlConfig) (*crawler.Crawler, *storage.SQLiteStore, error) {
	store, err := storage.NewSQLiteStore(cfg.StatePath)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to initialize state storage: %w", err)
	}

	writer, err := corpus.NewWriter(cfg.OutputDir, cfg.MinTextLength)
	if err != nil {
		_ = store.Close()
		return nil, nil, err
	}

	norm := crawler.NewNormalizer(cfg.AllowedDomains, cfg.SkipExtensions)
	extractor := parser.NewContentExtractor(parser.DefaultRules())
	discoverer := parser.NewLinkDiscoverer(norm.Normalize)

	return crawler.New(cfg, norm, extractor, discoverer, writer, store), store, nil
}
