// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package archive keeps a local, searchable copy of completed exchanges.
package archive

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	_ "modernc.org/sqlite" // Pure Go SQLite driver
)

// =============================================================================
// ERRORS
// =============================================================================

var (
	ErrClosed      = errors.New("archive is closed")
	ErrInvalidPath = errors.New("invalid archive path")
)

// =============================================================================
// SCHEMA
// =============================================================================

const schemaVersion = 1

// SQLite schema for the exchange archive with FTS (Full Text Search)
const schema = `
CREATE TABLE IF NOT EXISTS metadata (
    key TEXT PRIMARY KEY,
    value TEXT NOT NULL
) WITHOUT ROWID;

-- Exchanges table: one row per completed query/response pair
CREATE TABLE IF NOT EXISTS exchanges (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    query TEXT NOT NULL,
    response TEXT NOT NULL,
    created_at INTEGER NOT NULL  -- Unix timestamp
);

CREATE INDEX IF NOT EXISTS idx_exchanges_created_at ON exchanges(created_at);

-- Full-text search virtual table for exchanges
CREATE VIRTUAL TABLE IF NOT EXISTS exchanges_fts USING fts5(
    query,
    response,
    content='exchanges',
    content_rowid='id',
    tokenize='porter unicode61'
);

-- Triggers to keep FTS table in sync
CREATE TRIGGER IF NOT EXISTS exchanges_ai AFTER INSERT ON exchanges BEGIN
    INSERT INTO exchanges_fts(rowid, query, response)
    VALUES (new.id, new.query, new.response);
END;

CREATE TRIGGER IF NOT EXISTS exchanges_ad AFTER DELETE ON exchanges BEGIN
    DELETE FROM exchanges_fts WHERE rowid = old.id;
END;
`

// =============================================================================
// ARCHIVE
// =============================================================================

// Exchange is one archived query/response pair.
type Exchange struct {
	ID        int64
	Query     string
	Response  string
	CreatedAt time.Time
}

// Archive is a local SQLite archive of completed exchanges. Safe for
// concurrent use. It satisfies the session Recorder interface, so every
// successful send lands here as well as in the live log.
type Archive struct {
	mu     sync.RWMutex
	db     *sql.DB
	closed bool
}

// Open opens (creating if needed) the archive at path.
func Open(path string) (*Archive, error) {
	if path == "" {
		return nil, ErrInvalidPath
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("failed to create archive directory: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open archive database: %w", err)
	}

	// modernc.org/sqlite serializes through a single connection.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize archive schema: %w", err)
	}
	if _, err := db.Exec(
		`INSERT OR REPLACE INTO metadata (key, value) VALUES ('schema_version', ?)`,
		fmt.Sprintf("%d", schemaVersion),
	); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to write schema version: %w", err)
	}

	return &Archive{db: db}, nil
}

// Close releases the underlying database. Further calls return ErrClosed.
func (a *Archive) Close() error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.closed {
		return nil
	}
	a.closed = true
	return a.db.Close()
}

// =============================================================================
// WRITES
// =============================================================================

// Put stores one exchange.
func (a *Archive) Put(ctx context.Context, query, response string, ts time.Time) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.closed {
		return ErrClosed
	}

	_, err := a.db.ExecContext(ctx,
		`INSERT INTO exchanges (query, response, created_at) VALUES (?, ?, ?)`,
		query, response, ts.Unix(),
	)
	if err != nil {
		return fmt.Errorf("failed to archive exchange: %w", err)
	}
	return nil
}

// Record satisfies the session Recorder interface.
func (a *Archive) Record(query, response string, ts time.Time) error {
	return a.Put(context.Background(), query, response, ts)
}

// Clear deletes all archived exchanges.
func (a *Archive) Clear(ctx context.Context) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.closed {
		return ErrClosed
	}

	if _, err := a.db.ExecContext(ctx, `DELETE FROM exchanges`); err != nil {
		return fmt.Errorf("failed to clear archive: %w", err)
	}
	return nil
}

// =============================================================================
// READS
// =============================================================================

// Recent returns up to limit exchanges, newest first.
func (a *Archive) Recent(ctx context.Context, limit int) ([]Exchange, error) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	if a.closed {
		return nil, ErrClosed
	}
	if limit <= 0 {
		limit = 50
	}

	rows, err := a.db.QueryContext(ctx,
		`SELECT id, query, response, created_at
		 FROM exchanges ORDER BY created_at DESC, id DESC LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query archive: %w", err)
	}
	defer rows.Close()

	return scanExchanges(rows)
}

// Search finds exchanges matching the query with full-text search,
// most relevant first.
func (a *Archive) Search(ctx context.Context, query string, limit int) ([]Exchange, error) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	if a.closed {
		return nil, ErrClosed
	}
	if limit <= 0 {
		limit = 50
	}

	ftsQuery := buildFTSQuery(query)
	if ftsQuery == "" {
		return []Exchange{}, nil
	}

	rows, err := a.db.QueryContext(ctx,
		`SELECT e.id, e.query, e.response, e.created_at
		 FROM exchanges_fts fts
		 JOIN exchanges e ON e.id = fts.rowid
		 WHERE exchanges_fts MATCH ?
		 ORDER BY fts.rank LIMIT ?`,
		ftsQuery, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to search archive: %w", err)
	}
	defer rows.Close()

	return scanExchanges(rows)
}

// Count returns the number of archived exchanges.
func (a *Archive) Count(ctx context.Context) (int, error) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	if a.closed {
		return 0, ErrClosed
	}

	var n int
	err := a.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM exchanges`).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("failed to count archive: %w", err)
	}
	return n, nil
}

// =============================================================================
// HELPERS
// =============================================================================

func scanExchanges(rows *sql.Rows) ([]Exchange, error) {
	out := make([]Exchange, 0)
	for rows.Next() {
		var e Exchange
		var createdAt int64
		if err := rows.Scan(&e.ID, &e.Query, &e.Response, &createdAt); err != nil {
			return nil, fmt.Errorf("failed to scan exchange: %w", err)
		}
		e.CreatedAt = time.Unix(createdAt, 0)
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read exchanges: %w", err)
	}
	return out, nil
}

// buildFTSQuery turns free text into a safe FTS5 prefix query. Each term is
// quoted so user punctuation cannot break the match expression.
func buildFTSQuery(query string) string {
	terms := strings.Fields(query)
	if len(terms) == 0 {
		return ""
	}
	quoted := make([]string, 0, len(terms))
	for _, t := range terms {
		t = strings.ReplaceAll(t, `"`, ``)
		if t == "" {
			continue
		}
		quoted = append(quoted, `"`+t+`"*`)
	}
	return strings.Join(quoted, " ")
}
