// Package sqlite provides a SQLite-backed roll history store.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/tinwheel/dicebox/internal/history"
	_ "modernc.org/sqlite"
)

// Store persists roll history in SQLite.
type Store struct {
	sqlDB *sql.DB
}

var _ history.Store = (*Store)(nil)

const schema = `
CREATE TABLE IF NOT EXISTS roll_history (
  id TEXT PRIMARY KEY,
  expression TEXT NOT NULL,
  label TEXT NOT NULL DEFAULT '',
  total INTEGER NOT NULL,
  breakdown TEXT NOT NULL,
  rolled_at INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_roll_history_rolled_at ON roll_history (rolled_at DESC);
`

func toMillis(value time.Time) int64 {
	return value.UTC().UnixMilli()
}

func fromMillis(value int64) time.Time {
	return time.UnixMilli(value).UTC()
}

// Open opens a SQLite history store at path, creating the schema when
// missing.
func Open(path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("storage path is required")
	}
	cleanPath := filepath.Clean(path)
	dsn := cleanPath + "?_journal_mode=WAL&_busy_timeout=5000&_synchronous=NORMAL"
	sqlDB, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	if err := sqlDB.Ping(); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}
	if _, err := sqlDB.Exec(schema); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}
	return &Store{sqlDB: sqlDB}, nil
}

// Close closes the SQLite handle.
func (s *Store) Close() error {
	if s == nil || s.sqlDB == nil {
		return nil
	}
	return s.sqlDB.Close()
}

// Record inserts one roll record.
func (s *Store) Record(ctx context.Context, entry history.Entry) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s == nil || s.sqlDB == nil {
		return fmt.Errorf("storage is not configured")
	}
	id := strings.TrimSpace(entry.ID)
	expression := strings.TrimSpace(entry.Expression)
	if id == "" {
		return fmt.Errorf("entry id is required")
	}
	if expression == "" {
		return fmt.Errorf("expression is required")
	}
	rolledAt := entry.RolledAt.UTC()
	if rolledAt.IsZero() {
		rolledAt = time.Now().UTC()
	}

	_, err := s.sqlDB.ExecContext(
		ctx,
		`INSERT INTO roll_history (id, expression, label, total, breakdown, rolled_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		id,
		expression,
		entry.Label,
		entry.Total,
		entry.Breakdown,
		toMillis(rolledAt),
	)
	if err != nil {
		return fmt.Errorf("insert roll: %w", err)
	}
	return nil
}

// List returns up to limit rolls, newest first.
func (s *Store) List(ctx context.Context, limit int) ([]history.Entry, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if s == nil || s.sqlDB == nil {
		return nil, fmt.Errorf("storage is not configured")
	}
	if limit <= 0 {
		limit = 20
	}

	rows, err := s.sqlDB.QueryContext(
		ctx,
		`SELECT id, expression, label, total, breakdown, rolled_at
		 FROM roll_history
		 ORDER BY rolled_at DESC, id DESC
		 LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("query rolls: %w", err)
	}
	defer rows.Close()

	var entries []history.Entry
	for rows.Next() {
		var entry history.Entry
		var rolledAt int64
		if err := rows.Scan(&entry.ID, &entry.Expression, &entry.Label, &entry.Total, &entry.Breakdown, &rolledAt); err != nil {
			return nil, fmt.Errorf("scan roll: %w", err)
		}
		entry.RolledAt = fromMillis(rolledAt)
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate rolls: %w", err)
	}
	return entries, nil
}
