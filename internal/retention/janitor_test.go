package retention

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"notistore/internal/config"
	"notistore/internal/domain"
	"notistore/internal/metrics"
	"notistore/internal/model"
	"notistore/internal/repository"
	"notistore/internal/service/notify"
	"notistore/internal/sse"
	"notistore/internal/store/memory"
)

type pruneStub struct {
	calls atomic.Int32
	err   error
	ttl   atomic.Int64
}

func (p *pruneStub) Prune(_ context.Context, olderThan time.Duration) (int64, error) {
	p.calls.Add(1)
	p.ttl.Store(int64(olderThan))
	return 1, p.err
}

func TestJanitorDisabled(t *testing.T) {
	stub := &pruneStub{}
	j := newJanitor(stub, 0, time.Millisecond, zap.NewNop())

	done := make(chan struct{})
	go func() {
		j.Run(context.Background())
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("disabled janitor should return immediately")
	}
	require.Zero(t, stub.calls.Load())
}

func TestJanitorPrunesOnTick(t *testing.T) {
	stub := &pruneStub{}
	j := newJanitor(stub, time.Hour, 10*time.Millisecond, zap.NewNop())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		j.Run(ctx)
		close(done)
	}()

	require.Eventually(t, func() bool { return stub.calls.Load() >= 3 }, time.Second, 5*time.Millisecond)
	require.Equal(t, int64(time.Hour), stub.ttl.Load())
	cancel()
	<-done
}

func TestJanitorKeepsRunningAfterError(t *testing.T) {
	stub := &pruneStub{err: errors.New("db down")}
	j := newJanitor(stub, time.Hour, 10*time.Millisecond, zap.NewNop())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go j.Run(ctx)

	require.Eventually(t, func() bool { return stub.calls.Load() >= 2 }, time.Second, 5*time.Millisecond)
}

func TestJanitorWithMemoryStore(t *testing.T) {
	ctx := context.Background()
	store := memory.New(zap.NewNop(), 0)
	_, err := store.CreateNotification(ctx, model.Notification{Room: "room-1", CreatedAt: time.Now().Add(-48 * time.Hour)})
	require.NoError(t, err)
	fresh, err := store.CreateNotification(ctx, model.Notification{Room: "room-1", Type: domain.NotificationTypeInfo})
	require.NoError(t, err)

	cfg := &config.Config{RetentionTTL: 24 * time.Hour, RetentionInterval: time.Hour}
	svc := notify.NewService(cfg, store, sse.NewHub(), metrics.New(prometheus.NewRegistry()), zap.NewNop())
	j := NewJanitor(cfg, svc, zap.NewNop())

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	go j.Run(runCtx)

	require.Eventually(t, func() bool { return store.Len() == 1 }, time.Second, 5*time.Millisecond)
	got, err := store.ListNotifications(ctx, "room-1", repository.ListOptions{})
	require.NoError(t, err)
	require.Equal(t, fresh.ID, got[0].ID)
}
