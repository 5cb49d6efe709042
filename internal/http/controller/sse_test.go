package controller

import (
	"bufio"
	"context"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"notistore/internal/config"
	"notistore/internal/domain"
	"notistore/internal/metrics"
	"notistore/internal/model"
	"notistore/internal/queue"
	"notistore/internal/repository"
	"notistore/internal/repository/repositorytest"
	"notistore/internal/service/notify"
	"notistore/internal/sse"
)

// readEventIDs collects the "id:" lines of n SSE events.
func readEventIDs(t *testing.T, reader *bufio.Reader, n int) []int64 {
	t.Helper()
	ids := make(chan int64, n)
	errCh := make(chan error, 1)
	go func() {
		for sent := 0; sent < n; {
			line, err := reader.ReadString('\n')
			if err != nil {
				errCh <- err
				return
			}
			if v, ok := strings.CutPrefix(strings.TrimSpace(line), "id: "); ok {
				id, err := strconv.ParseInt(v, 10, 64)
				if err != nil {
					errCh <- err
					return
				}
				ids <- id
				sent++
			}
		}
	}()

	var got []int64
	for len(got) < n {
		select {
		case id := <-ids:
			got = append(got, id)
		case err := <-errCh:
			t.Fatalf("read event stream: %v", err)
		case <-time.After(2 * time.Second):
			t.Fatalf("timeout after events %v", got)
		}
	}
	return got
}

func TestSSEDeliversNotificationCreatedDuringReplay(t *testing.T) {
	gin.SetMode(gin.TestMode)
	cfg := &config.Config{HistoryLimit: 10, MaxListLimit: 50, SSEHeartbeat: time.Minute}
	hub := sse.NewHub()
	repo := &repositorytest.Mock{}
	svc := notify.NewService(cfg, repo, hub, metrics.New(prometheus.NewRegistry()), zap.NewNop())
	handler := NewHandler(cfg, svc, hub, zap.NewNop(), queue.NoopPublisher())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go hub.Run(ctx)

	replayed := model.Notification{ID: 1, Room: "room-1", Type: domain.NotificationTypeInfo, Title: "old", Body: "b"}
	raced := model.Notification{ID: 2, Room: "room-1", Type: domain.NotificationTypeInfo, Title: "new", Body: "b"}
	repo.On("CreateNotification", mock.Anything, mock.Anything).Return(raced, nil).Once()
	repo.On("ListNotifications", mock.Anything, "room-1", repository.ListOptions{Limit: 5}).
		Return([]model.Notification{replayed}, nil).
		Run(func(mock.Arguments) {
			// A notification lands while history is being read, and the
			// already replayed one is broadcast again.
			_, err := svc.Create(context.Background(), model.Notification{Room: "room-1", Type: domain.NotificationTypeInfo, Title: "new", Body: "b"})
			require.NoError(t, err)
			hub.Broadcast(replayed)
		}).Once()

	router := gin.New()
	router.GET("/sse/:room", handler.SSE)
	server := httptest.NewServer(router)
	defer server.Close()

	resp, err := http.Get(server.URL + "/sse/room-1?limit=5")
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	reader := bufio.NewReader(resp.Body)
	require.Equal(t, []int64{1, 2}, readEventIDs(t, reader, 2))

	hub.Broadcast(model.Notification{ID: 3, Room: "room-1", Type: domain.NotificationTypeInfo, Title: "later", Body: "b"})
	require.Equal(t, []int64{3}, readEventIDs(t, reader, 1))
	repo.AssertExpectations(t)
}
