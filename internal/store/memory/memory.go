package memory

import (
	"sync"

	"go.uber.org/zap"
	"notistore/internal/model"
)

// Store keeps notifications in insertion order. IDs are handed out from a
// counter that is never reset, so evicted IDs are not reused.
type Store struct {
	mu         sync.RWMutex
	nextID     int64
	records    []model.Notification
	maxRecords int
	log        *zap.Logger
}

var (
	sharedOnce  sync.Once
	sharedStore *Store
)

// New returns an isolated store. maxRecords <= 0 disables capacity eviction.
func New(logger *zap.Logger, maxRecords int) *Store {
	return &Store{nextID: 1, maxRecords: maxRecords, log: logger}
}

// Shared returns the process-wide store. Only the arguments of the first call
// are used.
func Shared(logger *zap.Logger, maxRecords int) *Store {
	sharedOnce.Do(func() {
		sharedStore = New(logger, maxRecords)
	})
	return sharedStore
}

// Len reports how many notifications are held.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records)
}
