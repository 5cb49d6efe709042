package memory

import (
	"context"
	"sort"
	"time"

	"go.uber.org/zap"
	"notistore/internal/domain"
	"notistore/internal/model"
	"notistore/internal/repository"
)

func (s *Store) CreateNotification(_ context.Context, notification model.Notification) (model.Notification, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	notification.ID = s.nextID
	s.nextID++
	if notification.CreatedAt.IsZero() {
		notification.CreatedAt = time.Now()
	}
	notification.CreatedAt = notification.CreatedAt.UTC()
	s.records = append(s.records, cloneNotification(notification))
	s.evictLocked()
	return notification, nil
}

func (s *Store) GetNotification(_ context.Context, id int64) (model.Notification, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	i, ok := s.indexLocked(id)
	if !ok {
		return model.Notification{}, domain.ErrNotificationNotFound
	}
	return cloneNotification(s.records[i]), nil
}

func (s *Store) ListNotifications(_ context.Context, room string, opts repository.ListOptions) ([]model.Notification, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []model.Notification
	for i := len(s.records) - 1; i >= 0; i-- {
		record := s.records[i]
		if record.Room != room {
			continue
		}
		if opts.BeforeID > 0 && record.ID >= opts.BeforeID {
			continue
		}
		if opts.UnreadOnly && record.Read {
			continue
		}
		result = append(result, cloneNotification(record))
		if opts.Limit > 0 && len(result) >= opts.Limit {
			break
		}
	}
	return result, nil
}

func (s *Store) CountUnread(_ context.Context, room string) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var n int64
	for _, record := range s.records {
		if record.Room == room && !record.Read {
			n++
		}
	}
	return n, nil
}

func (s *Store) MarkRead(_ context.Context, id int64, at time.Time) (model.Notification, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i, ok := s.indexLocked(id)
	if !ok {
		return model.Notification{}, domain.ErrNotificationNotFound
	}
	s.records[i].MarkRead(at)
	return cloneNotification(s.records[i]), nil
}

func (s *Store) MarkAllRead(_ context.Context, room string, at time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var updated int64
	for i := range s.records {
		if s.records[i].Room != room {
			continue
		}
		if s.records[i].MarkRead(at) {
			updated++
		}
	}
	return updated, nil
}

func (s *Store) DeleteNotification(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	i, ok := s.indexLocked(id)
	if !ok {
		return domain.ErrNotificationNotFound
	}
	s.records = append(s.records[:i], s.records[i+1:]...)
	return nil
}

func (s *Store) DeleteOlderThan(_ context.Context, cutoff time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	kept := s.records[:0]
	var removed int64
	for _, record := range s.records {
		if record.CreatedAt.Before(cutoff) {
			removed++
			continue
		}
		kept = append(kept, record)
	}
	clear(s.records[len(kept):])
	s.records = kept
	return removed, nil
}

// indexLocked finds a record by ID. Records are sorted by ID because IDs are
// assigned in append order and removals keep the relative order.
func (s *Store) indexLocked(id int64) (int, bool) {
	i := sort.Search(len(s.records), func(i int) bool {
		return s.records[i].ID >= id
	})
	if i < len(s.records) && s.records[i].ID == id {
		return i, true
	}
	return 0, false
}

func (s *Store) evictLocked() {
	if s.maxRecords <= 0 || len(s.records) <= s.maxRecords {
		return
	}
	overflow := len(s.records) - s.maxRecords
	s.log.Debug("memory store evicting oldest notifications",
		zap.Int("evicted", overflow),
		zap.Int("max_records", s.maxRecords),
	)
	remaining := make([]model.Notification, s.maxRecords, s.maxRecords+1)
	copy(remaining, s.records[overflow:])
	s.records = remaining
}

func cloneNotification(n model.Notification) model.Notification {
	if n.ReadAt != nil {
		t := *n.ReadAt
		n.ReadAt = &t
	}
	return n
}
