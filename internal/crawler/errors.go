package crawler

import "errors"

var (
	// ErrEmptyURL is returned when a candidate URL is empty after trimming
	ErrEmptyURL = errors.New("empty URL")
	// ErrJunkLink is returned for anchors, javascript:, mailto: and tel: targets
	ErrJunkLink = errors.New("junk link")
	// ErrUnsupportedScheme is returned for non-http(s) URLs
	ErrUnsupportedScheme = errors.New("unsupported scheme")
	// ErrHostNotAllowed is returned when the host is outside the allowed domain set
	ErrHostNotAllowed = errors.New("host not in allowed domains")
	// ErrSkippedExtension is returned for known non-text file extensions
	ErrSkippedExtension = errors.New("skipped file extension")
)
