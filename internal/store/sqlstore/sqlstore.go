// Package sqlstore implements the notification repository on top of the
// sqlc queries in internal/db. It is shared by the MySQL and SQLite backends.
package sqlstore

import (
	"go.uber.org/zap"
	"notistore/internal/db"
)

type Store struct {
	queries *db.Queries
	log     *zap.Logger
}

// New wraps queries. backend is attached to every log line ("mysql", "sqlite").
func New(queries *db.Queries, backend string, logger *zap.Logger) *Store {
	return &Store{queries: queries, log: logger.With(zap.String("backend", backend))}
}
