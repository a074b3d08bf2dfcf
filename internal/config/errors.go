package config

import "errors"

var (
	// ErrEmptyStartURL is returned when no start URL is configured
	ErrEmptyStartURL = errors.New("start_url cannot be empty")
	// ErrInvalidStartURL is returned when the start URL is not an absolute http(s) URL
	ErrInvalidStartURL = errors.New("start_url must be an absolute URL")
	// ErrNoAllowedDomains is returned when the allowed domain set is empty
	ErrNoAllowedDomains = errors.New("allowed_domains cannot be empty")
	// ErrInvalidMaxPages is returned when the page budget is not greater than 0
	ErrInvalidMaxPages = errors.New("max_pages must be greater than 0")
	// ErrInvalidMaxRetries is returned when the attempt cap is not greater than 0
	ErrInvalidMaxRetries = errors.New("max_retries must be greater than 0")
	// ErrInvalidTimeout is returned when request timeout is not greater than 0
	ErrInvalidTimeout = errors.New("request_timeout must be greater than 0")
	// ErrEmptyOutputDir is returned when the output directory is empty
	ErrEmptyOutputDir = errors.New("output_dir cannot be empty")
	// ErrEmptyStatePath is returned when the state file path is empty
	ErrEmptyStatePath = errors.New("state_path cannot be empty")
)
