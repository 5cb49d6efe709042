package store

import (
	"context"
	"time"

	"go.uber.org/zap"
	"notistore/internal/config"
	"notistore/internal/repository"
	"notistore/internal/store/memory"
	"notistore/internal/store/mysql"
	"notistore/internal/store/sqlite"
)

// NewStore picks the backend from configuration: MySQL when a DSN is set,
// SQLite when a path is set, otherwise the process-wide memory store.
func NewStore(cfg *config.Config, logger *zap.Logger) (repository.NotificationRepository, func(), error) {
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	switch {
	case cfg.MySQLDSN != "":
		sqlDB, err := mysql.Open(ctx, cfg.MySQLDSN)
		if err != nil {
			logger.Error("mysql open failed", zap.Error(err))
			return nil, nil, err
		}
		logger.Info("using mysql notification store")
		return mysql.New(sqlDB, logger), closer(sqlDB.Close, logger), nil
	case cfg.SQLitePath != "":
		sqlDB, err := sqlite.Open(ctx, cfg.SQLitePath, logger)
		if err != nil {
			logger.Error("sqlite open failed", zap.String("path", cfg.SQLitePath), zap.Error(err))
			return nil, nil, err
		}
		logger.Info("using sqlite notification store", zap.String("path", cfg.SQLitePath))
		return sqlite.New(sqlDB, logger), closer(sqlDB.Close, logger), nil
	default:
		logger.Info("using memory notification store", zap.Int("max_records", cfg.MemoryMaxRecords))
		return memory.Shared(logger, cfg.MemoryMaxRecords), func() {}, nil
	}
}

func closer(closeFn func() error, logger *zap.Logger) func() {
	return func() {
		if err := closeFn(); err != nil {
			logger.Error("store close failed", zap.Error(err))
		}
	}
}
