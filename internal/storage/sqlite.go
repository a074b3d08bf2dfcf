// Package storage persists the crawl frontier for resumability.
// The entire frontier state lives in a single SQLite file and each save
// replaces the previous snapshot in one transaction, so a reader never
// observes partial state.
package storage

import (
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"time"

	// SQLite database driver (CGO-free)
	_ "modernc.org/sqlite"

	"github.com/bracu/campuscrawl/internal/crawler"
)

// SQLiteStore implements the crawler.StateStore interface using SQLite
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens (or creates) the state file at dbPath. A file
// that cannot be opened as a database is discarded and recreated: a
// broken checkpoint costs the previous progress, never the run.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	store, err := openStore(dbPath)
	if err == nil {
		return store, nil
	}

	slog.Warn("Crawl state file is unusable, recreating it", "path", dbPath, "error", err)
	for _, path := range []string{dbPath, dbPath + "-wal", dbPath + "-shm"} {
		_ = os.Remove(path)
	}
	return openStore(dbPath)
}

func openStore(dbPath string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open state database: %w", err)
	}

	// Single connection: exactly one logical flow mutates the state
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(30 * time.Minute)

	store := &SQLiteStore{db: db}

	if err := store.initSchema(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return store, nil
}

func (s *SQLiteStore) initSchema() error {
	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA busy_timeout = 30000",
	}

	for _, pragma := range pragmas {
		if _, err := s.db.Exec(pragma); err != nil {
			return fmt.Errorf("failed to execute pragma %s: %w", pragma, err)
		}
	}

	if _, err := s.db.Exec(schemaSQL); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}

	return nil
}

// Close closes the database connection
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// Save overwrites the checkpoint with the given frontier state. The
// delete-and-reinsert runs in one transaction; a concurrent or later
// Load sees either the old snapshot or the new one, never a mix.
func (s *SQLiteStore) Save(state crawler.FrontierState) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.Exec("DELETE FROM visited_urls"); err != nil {
		return fmt.Errorf("failed to clear visited set: %w", err)
	}
	if _, err := tx.Exec("DELETE FROM queue_urls"); err != nil {
		return fmt.Errorf("failed to clear queue: %w", err)
	}

	visitedStmt, err := tx.Prepare("INSERT OR IGNORE INTO visited_urls (url) VALUES (?)")
	if err != nil {
		return fmt.Errorf("failed to prepare visited insert: %w", err)
	}
	defer func() { _ = visitedStmt.Close() }()

	for _, url := range state.Visited {
		if _, err := visitedStmt.Exec(url); err != nil {
			return fmt.Errorf("failed to insert visited URL %s: %w", url, err)
		}
	}

	queueStmt, err := tx.Prepare("INSERT OR IGNORE INTO queue_urls (url) VALUES (?)")
	if err != nil {
		return fmt.Errorf("failed to prepare queue insert: %w", err)
	}
	defer func() { _ = queueStmt.Close() }()

	for _, url := range state.Queue {
		if _, err := queueStmt.Exec(url); err != nil {
			return fmt.Errorf("failed to insert queued URL %s: %w", url, err)
		}
	}

	if _, err := tx.Exec(
		"INSERT OR REPLACE INTO crawl_meta (key, value) VALUES ('saved_at', ?), ('visited_count', ?), ('queue_count', ?)",
		time.Now().UTC().Format(time.RFC3339),
		strconv.Itoa(len(state.Visited)),
		strconv.Itoa(len(state.Queue)),
	); err != nil {
		return fmt.Errorf("failed to update crawl meta: %w", err)
	}

	return tx.Commit()
}

// Load restores the last saved frontier state. A fresh state file
// yields an empty state, not an error.
func (s *SQLiteStore) Load() (crawler.FrontierState, error) {
	var state crawler.FrontierState

	visited, err := s.queryURLs("SELECT url FROM visited_urls")
	if err != nil {
		return state, fmt.Errorf("failed to load visited set: %w", err)
	}

	queue, err := s.queryURLs("SELECT url FROM queue_urls ORDER BY position ASC")
	if err != nil {
		return state, fmt.Errorf("failed to load queue: %w", err)
	}

	state.Visited = visited
	state.Queue = queue
	return state, nil
}

// GetMeta retrieves a metadata value; missing keys yield an empty string
func (s *SQLiteStore) GetMeta(key string) (string, error) {
	var value string
	err := s.db.QueryRow("SELECT value FROM crawl_meta WHERE key = ?", key).Scan(&value)
	if err == sql.ErrNoRows {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to get meta: %w", err)
	}
	return value, nil
}

func (s *SQLiteStore) queryURLs(query string) ([]string, error) {
	rows, err := s.db.Query(query)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var urls []string
	for rows.Next() {
		var url string
		if err := rows.Scan(&url); err != nil {
			return nil, err
		}
		urls = append(urls, url)
	}

	return urls, rows.Err()
}
