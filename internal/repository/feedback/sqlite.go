package feedback

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite" // registers the "sqlite" driver

	domfb "github.com/kailas-cloud/catalogsearch/internal/domain/feedback"
)

const schema = `
CREATE TABLE IF NOT EXISTS unknown_tokens (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  tokens TEXT NOT NULL,
  query TEXT NOT NULL,
  reported_at TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_unknown_tokens_tokens ON unknown_tokens(tokens);
`

// SQLiteSink stores reports in a local SQLite database.
type SQLiteSink struct {
	conn *sql.DB
}

// OpenSQLite opens (creating if needed) the database at path.
func OpenSQLite(path string) (*SQLiteSink, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return nil, fmt.Errorf("create feedback dir: %w", err)
	}
	conn, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open feedback db: %w", err)
	}
	conn.SetMaxOpenConns(1)

	if _, err := conn.Exec(`PRAGMA journal_mode = WAL;`); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("feedback db journal mode: %w", err)
	}
	if _, err := conn.Exec(schema); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("feedback db schema: %w", err)
	}
	return &SQLiteSink{conn: conn}, nil
}

// Write inserts one report.
func (s *SQLiteSink) Write(ctx context.Context, r domfb.Report) error {
	_, err := s.conn.ExecContext(ctx,
		`INSERT INTO unknown_tokens (tokens, query, reported_at) VALUES (?, ?, ?)`,
		strings.Join(r.Tokens, " "), r.Query, r.ReportedAt.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("insert report: %w", err)
	}
	return nil
}

// Recent returns up to limit reports, newest first.
func (s *SQLiteSink) Recent(ctx context.Context, limit int) ([]domfb.Report, error) {
	rows, err := s.conn.QueryContext(ctx,
		`SELECT tokens, query, reported_at FROM unknown_tokens ORDER BY id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query reports: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var out []domfb.Report
	for rows.Next() {
		var tokens, query, at string
		if err := rows.Scan(&tokens, &query, &at); err != nil {
			return nil, fmt.Errorf("scan report: %w", err)
		}
		ts, err := time.Parse(time.RFC3339Nano, at)
		if err != nil {
			return nil, fmt.Errorf("parse reported_at %q: %w", at, err)
		}
		out = append(out, domfb.Report{Tokens: strings.Fields(tokens), Query: query, ReportedAt: ts})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate reports: %w", err)
	}
	return out, nil
}

// Close closes the database.
func (s *SQLiteSink) Close() error {
	return s.conn.Close()
}
