// Package corpus persists extracted documents as text files, one per
// crawled page. The file format and filename derivation are the entire
// contract with the downstream ingestion job, which chunks each file
// and keys the chunks by filename and byte offset. Neither may change
// without that job changing in lockstep.
package corpus

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"unicode"
	"unicode/utf8"
)

// maxNameLength bounds the derived filename, before the .txt suffix
const maxNameLength = 80

// Writer writes extracted documents into the corpus directory
type Writer struct {
	dir       string
	minLength int
}

// NewWriter creates a writer targeting dir, creating it if needed.
// Documents whose cleaned text does not exceed minLength runes are
// dropped.
func NewWriter(dir string, minLength int) (*Writer, error) {
	if err := os.MkdirAll(dir, 0750); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}

	return &Writer{
		dir:       dir,
		minLength: minLength,
	}, nil
}

// Write persists one document with its provenance header. It reports
// written=false when the text is at or below the minimum length.
// Re-crawls of the same URL overwrite the previous file.
func (w *Writer) Write(sourceURL, title, text string) (bool, error) {
	if utf8.RuneCountInString(text) <= w.minLength {
		return false, nil
	}

	path := filepath.Join(w.dir, Filename(sourceURL))
	content := fmt.Sprintf("Source URL: %s\nPage Title: %s\n\n%s", sourceURL, title, text)

	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		return false, fmt.Errorf("failed to write document for %s: %w", sourceURL, err)
	}

	return true, nil
}

// Dir returns the corpus directory
func (w *Writer) Dir() string {
	return w.dir
}

// Filename derives the deterministic, filesystem-safe name for a URL:
// scheme stripped, path separators become underscores, every other
// character outside letters, digits, '-' and '_' is dropped, and the
// result is truncated to a bounded length.
func Filename(sourceURL string) string {
	name := strings.TrimPrefix(sourceURL, "https://")
	name = strings.TrimPrefix(name, "http://")
	name = strings.ReplaceAll(name, "/", "_")

	var b strings.Builder
	for _, r := range name {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_' || r == '-' {
			b.WriteRune(r)
		}
	}

	runes := []rune(b.String())
	if len(runes) > maxNameLength {
		runes = runes[:maxNameLength]
	}

	return string(runes) + ".txt"
}
