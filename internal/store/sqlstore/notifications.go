package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"math"
	"time"

	"go.uber.org/zap"
	"notistore/internal/db"
	"notistore/internal/domain"
	"notistore/internal/model"
	"notistore/internal/repository"
)

func (s *Store) CreateNotification(ctx context.Context, notification model.Notification) (model.Notification, error) {
	if notification.CreatedAt.IsZero() {
		notification.CreatedAt = time.Now()
	}
	notification.CreatedAt = normalizeTime(notification.CreatedAt)
	notification.Read = false
	notification.ReadAt = nil

	result, err := s.queries.CreateNotification(ctx, db.CreateNotificationParams{
		Room:      notification.Room,
		Type:      notification.Type,
		Title:     notification.Title,
		Body:      notification.Body,
		CreatedAt: notification.CreatedAt,
	})
	if err != nil {
		s.log.Error("sql create notification failed",
			zap.String("room", notification.Room),
			zap.String("type", notification.Type),
			zap.String("title", notification.Title),
			zap.Error(err),
		)
		return model.Notification{}, err
	}
	id, err := result.LastInsertId()
	if err != nil {
		s.log.Error("sql last insert id failed", zap.Error(err))
		return model.Notification{}, err
	}
	notification.ID = id
	return notification, nil
}

func (s *Store) GetNotification(ctx context.Context, id int64) (model.Notification, error) {
	row, err := s.queries.GetNotification(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.Notification{}, domain.ErrNotificationNotFound
		}
		s.log.Error("sql get notification failed", zap.Int64("id", id), zap.Error(err))
		return model.Notification{}, err
	}
	return toModel(row), nil
}

func (s *Store) ListNotifications(ctx context.Context, room string, opts repository.ListOptions) ([]model.Notification, error) {
	before := int64(math.MaxInt64)
	if opts.BeforeID > 0 {
		before = opts.BeforeID
	}
	limit := int32(math.MaxInt32)
	if opts.Limit > 0 && opts.Limit < math.MaxInt32 {
		limit = int32(opts.Limit)
	}

	var (
		rows []db.Notification
		err  error
	)
	if opts.UnreadOnly {
		rows, err = s.queries.ListUnreadNotificationsByRoom(ctx, db.ListUnreadNotificationsByRoomParams{
			Room:  room,
			ID:    before,
			Limit: limit,
		})
	} else {
		rows, err = s.queries.ListNotificationsByRoom(ctx, db.ListNotificationsByRoomParams{
			Room:  room,
			ID:    before,
			Limit: limit,
		})
	}
	if err != nil {
		s.log.Error("sql list notifications failed",
			zap.String("room", room),
			zap.Int("limit", opts.Limit),
			zap.Bool("unread_only", opts.UnreadOnly),
			zap.Error(err),
		)
		return nil, err
	}

	var result []model.Notification
	for _, row := range rows {
		result = append(result, toModel(row))
	}
	return result, nil
}

func (s *Store) CountUnread(ctx context.Context, room string) (int64, error) {
	n, err := s.queries.CountUnreadByRoom(ctx, room)
	if err != nil {
		s.log.Error("sql count unread failed", zap.String("room", room), zap.Error(err))
		return 0, err
	}
	return n, nil
}

func (s *Store) MarkRead(ctx context.Context, id int64, at time.Time) (model.Notification, error) {
	current, err := s.GetNotification(ctx, id)
	if err != nil {
		return model.Notification{}, err
	}
	if current.Read {
		return current, nil
	}
	if err := s.queries.MarkNotificationRead(ctx, db.MarkNotificationReadParams{
		ReadAt: sql.NullTime{Time: normalizeTime(at), Valid: true},
		ID:     id,
	}); err != nil {
		s.log.Error("sql mark notification read failed", zap.Int64("id", id), zap.Error(err))
		return model.Notification{}, err
	}
	// Re-read so a concurrent reader that won the update is reflected.
	return s.GetNotification(ctx, id)
}

func (s *Store) MarkAllRead(ctx context.Context, room string, at time.Time) (int64, error) {
	result, err := s.queries.MarkAllNotificationsRead(ctx, db.MarkAllNotificationsReadParams{
		ReadAt: sql.NullTime{Time: normalizeTime(at), Valid: true},
		Room:   room,
	})
	if err != nil {
		s.log.Error("sql mark all read failed", zap.String("room", room), zap.Error(err))
		return 0, err
	}
	return result.RowsAffected()
}

func (s *Store) DeleteNotification(ctx context.Context, id int64) error {
	result, err := s.queries.DeleteNotification(ctx, id)
	if err != nil {
		s.log.Error("sql delete notification failed", zap.Int64("id", id), zap.Error(err))
		return err
	}
	n, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return domain.ErrNotificationNotFound
	}
	return nil
}

func (s *Store) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	result, err := s.queries.DeleteNotificationsBefore(ctx, normalizeTime(cutoff))
	if err != nil {
		s.log.Error("sql delete old notifications failed", zap.Time("cutoff", cutoff), zap.Error(err))
		return 0, err
	}
	return result.RowsAffected()
}

// normalizeTime matches the DATETIME(6) precision of the schema so values
// round-trip unchanged.
func normalizeTime(t time.Time) time.Time {
	return t.UTC().Truncate(time.Microsecond)
}

func toModel(row db.Notification) model.Notification {
	n := model.Notification{
		ID:        row.ID,
		Room:      row.Room,
		Type:      row.Type,
		Title:     row.Title,
		Body:      row.Body,
		Read:      row.IsRead,
		CreatedAt: row.CreatedAt.UTC(),
	}
	if row.ReadAt.Valid {
		t := row.ReadAt.Time.UTC()
		n.ReadAt = &t
	}
	return n
}
