package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"
)

// RotatingFileWriter appends to a log file and rotates it by size.
// A write that would push the file past the limit first renames it to
// the newest dated backup, shifting older backups up by one index; at
// most the configured number of backups survive a rotation.
type RotatingFileWriter struct {
	mu      sync.Mutex
	out     *os.File
	path    string
	limit   int64
	backups int
	written int64
}

// NewRotatingFileWriter opens (or creates) the log file at filePath and
// resumes appending to whatever it already holds.
func NewRotatingFileWriter(filePath string, maxSize int64, maxBackups int) (*RotatingFileWriter, error) {
	out, err := os.OpenFile(filePath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0600)
	if err != nil {
		return nil, err
	}

	info, err := out.Stat()
	if err != nil {
		_ = out.Close()
		return nil, err
	}

	return &RotatingFileWriter{
		out:     out,
		path:    filePath,
		limit:   maxSize,
		backups: maxBackups,
		written: info.Size(),
	}, nil
}

// Write implements io.Writer
func (w *RotatingFileWriter) Write(p []byte) (int, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.written+int64(len(p)) > w.limit {
		if err := w.rotate(); err != nil {
			return 0, err
		}
	}

	n, err := w.out.Write(p)
	w.written += int64(n)
	return n, err
}

// Close closes the underlying file
func (w *RotatingFileWriter) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.out == nil {
		return nil
	}
	return w.out.Close()
}

func (w *RotatingFileWriter) rotate() error {
	if w.out != nil {
		if err := w.out.Close(); err != nil {
			return err
		}
	}

	stamp := time.Now().Format("20060102")
	if w.backups > 0 {
		_ = os.Remove(w.backupPath(stamp, w.backups))
		for i := w.backups - 1; i >= 1; i-- {
			from := w.backupPath(stamp, i)
			if _, err := os.Stat(from); err != nil {
				continue
			}
			if err := os.Rename(from, w.backupPath(stamp, i+1)); err != nil {
				return err
			}
		}
		_ = os.Rename(w.path, w.backupPath(stamp, 1))
	} else {
		_ = os.Remove(w.path)
	}

	out, err := os.OpenFile(w.path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0600)
	if err != nil {
		return err
	}
	w.out = out
	w.written = 0
	return nil
}

// backupPath derives the dated backup name for an index, keeping the
// original extension: crawl.log becomes crawl-20260831.1.log.
func (w *RotatingFileWriter) backupPath(stamp string, index int) string {
	ext := filepath.Ext(w.path)
	return fmt.Sprintf("%s-%s.%d%s", strings.TrimSuffix(w.path, ext), stamp, index, ext)
}

var _ io.WriteCloser = (*RotatingFileWriter)(nil)
