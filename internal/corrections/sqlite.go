package corrections

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/ledgerlens/ledgerlens/internal/model"

	_ "github.com/mattn/go-sqlite3" // SQLite driver
)

// SQLiteStore persists corrections in SQLite so learned rules survive across
// sessions and reloads.
type SQLiteStore struct {
	db     *sql.DB
	dbPath string
}

// NewSQLiteStore opens (or creates) the correction database at dbPath.
// Use ":memory:" for an ephemeral store in tests.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	if dbPath == "" {
		return nil, fmt.Errorf("dbPath must not be empty")
	}

	if dbPath != ":memory:" {
		dir := filepath.Dir(dbPath)
		if err := os.MkdirAll(dir, 0750); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite doesn't benefit from multiple connections.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	store := &SQLiteStore{db: db, dbPath: dbPath}
	if err := store.migrate(); err != nil {
		return nil, err
	}

	return store, nil
}

func (s *SQLiteStore) migrate() error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS corrections (
			keyword TEXT PRIMARY KEY,
			category TEXT NOT NULL,
			last_updated DATETIME DEFAULT CURRENT_TIMESTAMP,
			use_count INTEGER DEFAULT 0
		)
	`)
	if err != nil {
		return fmt.Errorf("failed to create corrections table: %w", err)
	}
	return nil
}

// All returns every stored correction.
func (s *SQLiteStore) All(ctx context.Context) ([]model.Correction, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT keyword, category, last_updated, use_count
		FROM corrections
		ORDER BY keyword
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query corrections: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var corrections []model.Correction
	for rows.Next() {
		var c model.Correction
		if err := rows.Scan(&c.Keyword, &c.Category, &c.LastUpdated, &c.UseCount); err != nil {
			return nil, fmt.Errorf("failed to scan correction: %w", err)
		}
		corrections = append(corrections, c)
	}

	return corrections, rows.Err()
}

// Save inserts or replaces a correction rule.
func (s *SQLiteStore) Save(ctx context.Context, correction *model.Correction) error {
	if correction.Keyword == "" {
		return fmt.Errorf("correction keyword must not be empty")
	}
	if correction.Category == "" {
		return fmt.Errorf("correction category must not be empty")
	}
	if correction.LastUpdated.IsZero() {
		correction.LastUpdated = time.Now()
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO corrections (keyword, category, last_updated, use_count)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(keyword) DO UPDATE SET
			category = excluded.category,
			last_updated = excluded.last_updated
	`, correction.Keyword, correction.Category, correction.LastUpdated, correction.UseCount)
	if err != nil {
		return fmt.Errorf("failed to save correction: %w", err)
	}

	return nil
}

// Delete removes a correction by keyword.
func (s *SQLiteStore) Delete(ctx context.Context, keyword string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM corrections WHERE keyword = ?`, keyword)
	if err != nil {
		return fmt.Errorf("failed to delete correction: %w", err)
	}
	return nil
}

// IncrementUseCount bumps the use counter for a correction.
func (s *SQLiteStore) IncrementUseCount(ctx context.Context, keyword string) error {
	_, err := s.db.ExecContext(ctx, `
		UPDATE corrections SET use_count = use_count + 1 WHERE keyword = ?
	`, keyword)
	if err != nil {
		return fmt.Errorf("failed to increment use count: %w", err)
	}
	return nil
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
