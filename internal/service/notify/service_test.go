package notify

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"notistore/internal/config"
	"notistore/internal/domain"
	"notistore/internal/metrics"
	"notistore/internal/model"
	"notistore/internal/repository"
	"notistore/internal/repository/repositorytest"
	"notistore/internal/sse"
)

var fixedNow = time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

func newService(repo repository.NotificationRepository, hub *sse.Hub) *Service {
	svc := NewService(&config.Config{MaxListLimit: 50}, repo, hub, metrics.New(prometheus.NewRegistry()), zap.NewNop())
	svc.now = func() time.Time { return fixedNow }
	return svc
}

func TestServiceCreate(t *testing.T) {
	t.Run("invalid type", func(t *testing.T) {
		repo := &repositorytest.Mock{}
		svc := newService(repo, sse.NewHub())

		_, err := svc.Create(context.Background(), model.Notification{
			Room:  "room-1",
			Type:  "bad",
			Title: "title",
			Body:  "body",
		})
		require.ErrorIs(t, err, domain.ErrInvalidNotificationType)
		repo.AssertNotCalled(t, "CreateNotification", mock.Anything, mock.Anything)
	})

	t.Run("missing body", func(t *testing.T) {
		repo := &repositorytest.Mock{}
		svc := newService(repo, sse.NewHub())

		_, err := svc.Create(context.Background(), model.Notification{
			Room:  "room-1",
			Type:  domain.NotificationTypeInfo,
			Title: "title",
		})
		require.ErrorIs(t, err, domain.ErrInvalidNotification)
		repo.AssertNotCalled(t, "CreateNotification", mock.Anything, mock.Anything)
	})

	t.Run("store error", func(t *testing.T) {
		storeErr := errors.New("store failed")
		repo := &repositorytest.Mock{}
		repo.On("CreateNotification", mock.Anything, mock.Anything).Return(model.Notification{}, storeErr).Once()
		svc := newService(repo, sse.NewHub())

		_, err := svc.Create(context.Background(), model.Notification{
			Room:  "room-1",
			Type:  domain.NotificationTypeInfo,
			Title: "title",
			Body:  "body",
		})
		require.ErrorIs(t, err, storeErr)
		repo.AssertExpectations(t)
	})

	t.Run("stamps creation time", func(t *testing.T) {
		repo := &repositorytest.Mock{}
		repo.On("CreateNotification", mock.Anything, mock.MatchedBy(func(n model.Notification) bool {
			return n.CreatedAt.Equal(fixedNow)
		})).Return(model.Notification{ID: 1, Room: "room-1", Type: domain.NotificationTypeInfo}, nil).Once()
		svc := newService(repo, sse.NewHub())

		_, err := svc.Create(context.Background(), model.Notification{
			Room:      "room-1",
			Type:      domain.NotificationTypeInfo,
			Title:     "title",
			Body:      "body",
			CreatedAt: fixedNow.Add(-24 * time.Hour),
		})
		require.NoError(t, err)
		repo.AssertExpectations(t)
	})

	t.Run("broadcasts", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		hub := sse.NewHub()
		go hub.Run(ctx)

		client := &sse.Client{
			Room: "room-1",
			Ch:   make(chan model.Notification, 1),
		}
		hub.Register(client)
		defer hub.Unregister(client)

		repo := &repositorytest.Mock{}
		repo.On("CreateNotification", mock.Anything, mock.Anything).Return(model.Notification{
			ID:    42,
			Room:  "room-1",
			Type:  domain.NotificationTypeInfo,
			Title: "title",
			Body:  "body",
		}, nil).Once()
		svc := newService(repo, hub)

		created, err := svc.Create(context.Background(), model.Notification{
			Room:  "room-1",
			Type:  domain.NotificationTypeInfo,
			Title: "title",
			Body:  "body",
		})
		require.NoError(t, err)
		require.Equal(t, int64(42), created.ID)
		repo.AssertExpectations(t)

		select {
		case got := <-client.Ch:
			require.Equal(t, int64(42), got.ID)
			require.Equal(t, "room-1", got.Room)
			require.Equal(t, domain.NotificationTypeInfo, got.Type)
		case <-time.After(200 * time.Millisecond):
			t.Fatalf("expected broadcast to client")
		}
	})
}

func TestServiceListHistory(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		expected := []model.Notification{{ID: 1, Room: "room-1", Type: domain.NotificationTypeInfo}}
		repo := &repositorytest.Mock{}
		repo.On("ListNotifications", mock.Anything, "room-1", repository.ListOptions{Limit: 10}).Return(expected, nil).Once()
		svc := newService(repo, sse.NewHub())

		got, err := svc.ListHistory(context.Background(), "room-1", repository.ListOptions{Limit: 10})
		require.NoError(t, err)
		require.Len(t, got, 1)
		require.Equal(t, expected[0].ID, got[0].ID)
		repo.AssertExpectations(t)
	})

	t.Run("limit clamped", func(t *testing.T) {
		repo := &repositorytest.Mock{}
		repo.On("ListNotifications", mock.Anything, "room-1", repository.ListOptions{Limit: 50, UnreadOnly: true}).
			Return([]model.Notification{}, nil).Twice()
		svc := newService(repo, sse.NewHub())

		_, err := svc.ListHistory(context.Background(), "room-1", repository.ListOptions{Limit: 500, UnreadOnly: true})
		require.NoError(t, err)
		_, err = svc.ListHistory(context.Background(), "room-1", repository.ListOptions{UnreadOnly: true})
		require.NoError(t, err)
		repo.AssertExpectations(t)
	})

	t.Run("store error", func(t *testing.T) {
		storeErr := errors.New("list failed")
		repo := &repositorytest.Mock{}
		repo.On("ListNotifications", mock.Anything, "room-1", repository.ListOptions{Limit: 10}).Return([]model.Notification(nil), storeErr).Once()
		svc := newService(repo, sse.NewHub())

		_, err := svc.ListHistory(context.Background(), "room-1", repository.ListOptions{Limit: 10})
		require.ErrorIs(t, err, storeErr)
		repo.AssertExpectations(t)
	})
}

func TestServiceReadState(t *testing.T) {
	repo := &repositorytest.Mock{}
	readAt := fixedNow
	repo.On("MarkRead", mock.Anything, int64(7), fixedNow).Return(model.Notification{ID: 7, Read: true, ReadAt: &readAt}, nil).Once()
	repo.On("MarkRead", mock.Anything, int64(8), fixedNow).Return(model.Notification{}, domain.ErrNotificationNotFound).Once()
	repo.On("MarkAllRead", mock.Anything, "room-1", fixedNow).Return(int64(3), nil).Once()
	repo.On("CountUnread", mock.Anything, "room-1").Return(int64(0), nil).Once()
	svc := newService(repo, sse.NewHub())
	ctx := context.Background()

	n, err := svc.MarkRead(ctx, 7)
	require.NoError(t, err)
	require.True(t, n.Read)

	_, err = svc.MarkRead(ctx, 8)
	require.ErrorIs(t, err, domain.ErrNotificationNotFound)

	updated, err := svc.MarkAllRead(ctx, "room-1")
	require.NoError(t, err)
	require.Equal(t, int64(3), updated)

	unread, err := svc.UnreadCount(ctx, "room-1")
	require.NoError(t, err)
	require.Zero(t, unread)
	repo.AssertExpectations(t)
}

func TestServiceGetAndDelete(t *testing.T) {
	repo := &repositorytest.Mock{}
	repo.On("GetNotification", mock.Anything, int64(1)).Return(model.Notification{ID: 1}, nil).Once()
	repo.On("DeleteNotification", mock.Anything, int64(1)).Return(nil).Once()
	repo.On("DeleteNotification", mock.Anything, int64(2)).Return(domain.ErrNotificationNotFound).Once()
	svc := newService(repo, sse.NewHub())
	ctx := context.Background()

	got, err := svc.Get(ctx, 1)
	require.NoError(t, err)
	require.Equal(t, int64(1), got.ID)
	require.NoError(t, svc.Delete(ctx, 1))
	require.ErrorIs(t, svc.Delete(ctx, 2), domain.ErrNotificationNotFound)
	repo.AssertExpectations(t)
}

func TestServicePrune(t *testing.T) {
	repo := &repositorytest.Mock{}
	repo.On("DeleteOlderThan", mock.Anything, fixedNow.Add(-48*time.Hour)).Return(int64(5), nil).Once()
	svc := newService(repo, sse.NewHub())

	n, err := svc.Prune(context.Background(), 48*time.Hour)
	require.NoError(t, err)
	require.Equal(t, int64(5), n)
	repo.AssertExpectations(t)
}
