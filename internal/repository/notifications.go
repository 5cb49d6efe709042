package repository

import (
	"context"
	"time"

	"notistore/internal/model"
)

// ListOptions narrows a room listing. Results are always newest first.
type ListOptions struct {
	// Limit caps the number of records; zero or negative means no cap.
	Limit int
	// UnreadOnly skips notifications that were already marked read.
	UnreadOnly bool
	// BeforeID, when positive, only returns records with a smaller ID.
	BeforeID int64
}

type NotificationRepository interface {
	CreateNotification(ctx context.Context, notification model.Notification) (model.Notification, error)
	GetNotification(ctx context.Context, id int64) (model.Notification, error)
	ListNotifications(ctx context.Context, room string, opts ListOptions) ([]model.Notification, error)
	CountUnread(ctx context.Context, room string) (int64, error)
	MarkRead(ctx context.Context, id int64, at time.Time) (model.Notification, error)
	MarkAllRead(ctx context.Context, room string, at time.Time) (int64, error)
	DeleteNotification(ctx context.Context, id int64) error
	DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error)
}
