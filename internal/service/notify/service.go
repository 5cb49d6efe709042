package notify

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
	"notistore/internal/config"
	"notistore/internal/domain"
	"notistore/internal/metrics"
	"notistore/internal/model"
	"notistore/internal/repository"
	"notistore/internal/sse"
)

type Service struct {
	store        repository.NotificationRepository
	hub          *sse.Hub
	metrics      metrics.Metrics
	log          *zap.Logger
	maxListLimit int
	now          func() time.Time
}

func NewService(cfg *config.Config, store repository.NotificationRepository, hub *sse.Hub, m metrics.Metrics, logger *zap.Logger) *Service {
	return &Service{
		store:        store,
		hub:          hub,
		metrics:      m,
		log:          logger,
		maxListLimit: cfg.MaxListLimit,
		now:          func() time.Time { return time.Now().UTC() },
	}
}

func (s *Service) Create(ctx context.Context, notification model.Notification) (model.Notification, error) {
	if err := domain.ValidateNotification(notification.Room, notification.Type, notification.Title, notification.Body); err != nil {
		return model.Notification{}, err
	}
	notification.CreatedAt = s.now()

	start := time.Now()
	created, err := s.store.CreateNotification(ctx, notification)
	s.observe("create", start, err)
	if err != nil {
		s.log.Error("store create notification failed",
			zap.String("room", notification.Room),
			zap.String("type", notification.Type),
			zap.String("title", notification.Title),
			zap.Error(err),
		)
		return model.Notification{}, err
	}
	s.metrics.AddNotificationsCreated(created.Type)
	if !s.hub.Broadcast(created) {
		s.log.Warn("broadcast queue full, live delivery skipped",
			zap.Int64("id", created.ID),
			zap.String("room", created.Room),
		)
	}
	return created, nil
}

func (s *Service) Get(ctx context.Context, id int64) (model.Notification, error) {
	start := time.Now()
	n, err := s.store.GetNotification(ctx, id)
	s.observe("get", start, err)
	return n, err
}

// ListHistory returns notifications of a room, newest first. The limit is
// clamped to the configured maximum; zero means the maximum.
func (s *Service) ListHistory(ctx context.Context, room string, opts repository.ListOptions) ([]model.Notification, error) {
	if s.maxListLimit > 0 && (opts.Limit <= 0 || opts.Limit > s.maxListLimit) {
		opts.Limit = s.maxListLimit
	}
	start := time.Now()
	history, err := s.store.ListNotifications(ctx, room, opts)
	s.observe("list", start, err)
	if err != nil {
		s.log.Error("store list notifications failed", zap.String("room", room), zap.Int("limit", opts.Limit), zap.Error(err))
		return nil, err
	}
	return history, nil
}

func (s *Service) UnreadCount(ctx context.Context, room string) (int64, error) {
	start := time.Now()
	n, err := s.store.CountUnread(ctx, room)
	s.observe("count_unread", start, err)
	if err != nil {
		s.log.Error("store count unread failed", zap.String("room", room), zap.Error(err))
		return 0, err
	}
	return n, nil
}

func (s *Service) MarkRead(ctx context.Context, id int64) (model.Notification, error) {
	start := time.Now()
	n, err := s.store.MarkRead(ctx, id, s.now())
	s.observe("mark_read", start, err)
	return n, err
}

func (s *Service) MarkAllRead(ctx context.Context, room string) (int64, error) {
	start := time.Now()
	n, err := s.store.MarkAllRead(ctx, room, s.now())
	s.observe("mark_all_read", start, err)
	if err != nil {
		s.log.Error("store mark all read failed", zap.String("room", room), zap.Error(err))
		return 0, err
	}
	return n, nil
}

func (s *Service) Delete(ctx context.Context, id int64) error {
	start := time.Now()
	err := s.store.DeleteNotification(ctx, id)
	s.observe("delete", start, err)
	return err
}

// Prune removes notifications created more than olderThan ago.
func (s *Service) Prune(ctx context.Context, olderThan time.Duration) (int64, error) {
	cutoff := s.now().Add(-olderThan)
	start := time.Now()
	n, err := s.store.DeleteOlderThan(ctx, cutoff)
	s.observe("prune", start, err)
	if err != nil {
		s.log.Error("store prune failed", zap.Time("cutoff", cutoff), zap.Error(err))
		return 0, err
	}
	s.metrics.AddNotificationsPruned(n)
	return n, nil
}

// observe treats a not-found lookup as a successful store call.
func (s *Service) observe(operation string, start time.Time, err error) {
	success := err == nil || errors.Is(err, domain.ErrNotificationNotFound)
	s.metrics.ObserveStoreOperation(operation, success, time.Since(start).Seconds())
}
