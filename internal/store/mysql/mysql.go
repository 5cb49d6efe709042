package mysql

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	driver "github.com/go-sql-driver/mysql"
	"go.uber.org/zap"
	"notistore/internal/db"
	"notistore/internal/store/sqlstore"
)

// NormalizeDSN forces the driver options the store relies on: DATETIME
// columns scanned into time.Time, in UTC.
func NormalizeDSN(dsn string) (string, error) {
	cfg, err := driver.ParseDSN(dsn)
	if err != nil {
		return "", fmt.Errorf("mysql dsn: %w", err)
	}
	cfg.ParseTime = true
	cfg.Loc = time.UTC
	return cfg.FormatDSN(), nil
}

func Open(ctx context.Context, dsn string) (*sql.DB, error) {
	normalized, err := NormalizeDSN(dsn)
	if err != nil {
		return nil, err
	}
	sqlDB, err := sql.Open("mysql", normalized)
	if err != nil {
		return nil, fmt.Errorf("mysql open: %w", err)
	}
	sqlDB.SetConnMaxLifetime(3 * time.Minute)
	sqlDB.SetMaxOpenConns(10)
	sqlDB.SetMaxIdleConns(10)
	if err := sqlDB.PingContext(ctx); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("mysql ping: %w", err)
	}
	return sqlDB, nil
}

func New(sqlDB *sql.DB, logger *zap.Logger) *sqlstore.Store {
	return sqlstore.New(db.New(sqlDB), "mysql", logger)
}
