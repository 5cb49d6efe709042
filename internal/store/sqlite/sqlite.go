// Package sqlite opens the embedded SQLite backend and brings its schema up
// to date.
package sqlite

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"strings"

	"go.uber.org/zap"
	_ "modernc.org/sqlite"
	"notistore/internal/db"
	"notistore/internal/migration"
	"notistore/internal/store/sqlstore"
)

//go:embed migrations/*.up.sql
var migrations embed.FS

// Open opens path (a file path or ":memory:"), applies migrations and returns
// the connection.
func Open(ctx context.Context, path string, logger *zap.Logger) (*sql.DB, error) {
	sqlDB, err := sql.Open("sqlite", dsn(path))
	if err != nil {
		return nil, fmt.Errorf("sqlite open: %w", err)
	}
	// One writer at a time; a single connection also keeps ":memory:" databases
	// from splitting across the pool.
	sqlDB.SetMaxOpenConns(1)

	if err := sqlDB.PingContext(ctx); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("sqlite ping: %w", err)
	}
	if _, err := migration.Run(ctx, sqlDB, migrations, "migrations", logger); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("sqlite migrate: %w", err)
	}
	return sqlDB, nil
}

// New returns a repository backed by an opened SQLite connection.
func New(sqlDB *sql.DB, logger *zap.Logger) *sqlstore.Store {
	return sqlstore.New(db.New(sqlDB), "sqlite", logger)
}

func dsn(path string) string {
	if path == ":memory:" || strings.Contains(path, "?") {
		return path
	}
	return path + "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)"
}
