// Package repositorytest provides a testify mock of the notification
// repository for handler, service and consumer tests.
package repositorytest

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"
	"notistore/internal/model"
	"notistore/internal/repository"
)

type Mock struct {
	mock.Mock
}

var _ repository.NotificationRepository = (*Mock)(nil)

func (m *Mock) CreateNotification(ctx context.Context, n model.Notification) (model.Notification, error) {
	args := m.Called(ctx, n)
	return args.Get(0).(model.Notification), args.Error(1)
}

func (m *Mock) GetNotification(ctx context.Context, id int64) (model.Notification, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(model.Notification), args.Error(1)
}

func (m *Mock) ListNotifications(ctx context.Context, room string, opts repository.ListOptions) ([]model.Notification, error) {
	args := m.Called(ctx, room, opts)
	return args.Get(0).([]model.Notification), args.Error(1)
}

func (m *Mock) CountUnread(ctx context.Context, room string) (int64, error) {
	args := m.Called(ctx, room)
	return args.Get(0).(int64), args.Error(1)
}

func (m *Mock) MarkRead(ctx context.Context, id int64, at time.Time) (model.Notification, error) {
	args := m.Called(ctx, id, at)
	return args.Get(0).(model.Notification), args.Error(1)
}

func (m *Mock) MarkAllRead(ctx context.Context, room string, at time.Time) (int64, error) {
	args := m.Called(ctx, room, at)
	return args.Get(0).(int64), args.Error(1)
}

func (m *Mock) DeleteNotification(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *Mock) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	args := m.Called(ctx, cutoff)
	return args.Get(0).(int64), args.Error(1)
}
