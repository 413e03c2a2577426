package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	_ "modernc.org/sqlite"
)

const AnalysisCacheSchema = `
	CREATE TABLE IF NOT EXISTS analysis_cache (
		id TEXT NOT NULL PRIMARY KEY,
		status TEXT NOT NULL,
		analysis BLOB NOT NULL,
		result BLOB NULL,
		cached_at INTEGER NOT NULL,
		accessed_at INTEGER NOT NULL
	);
`

const AnalysisCacheAccessIndex = `
	CREATE INDEX IF NOT EXISTS idx_analysis_cache_accessed_at ON analysis_cache (accessed_at);
`

const MetaSchema = `
	CREATE TABLE IF NOT EXISTS meta (
		key TEXT NOT NULL PRIMARY KEY,
		value TEXT NOT NULL
	);
`

var bootQueries = []string{
	AnalysisCacheSchema,
	AnalysisCacheAccessIndex,
	MetaSchema,
}

type Settings struct {
	DbPath string
}

const memoryPath = ":memory:"

func NewDB(settings Settings) (*sql.DB, error) {
	path := strings.TrimSpace(settings.DbPath)
	if path == "" {
		return nil, fmt.Errorf("database path is required")
	}

	dsn := memoryPath
	if path != memoryPath {
		path = filepath.Clean(path)
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("create database directory: %w", err)
		}
		dsn = path + "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)"
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	// every connection to :memory: is a separate database
	db.SetMaxOpenConns(1)

	if err := boot(context.Background(), db); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}

func boot(ctx context.Context, db *sql.DB) error {
	for _, query := range bootQueries {
		if _, err := db.ExecContext(ctx, query); err != nil {
			return fmt.Errorf("boot query: %w", err)
		}
	}
	return nil
}
