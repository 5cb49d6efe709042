package kafka

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	kafkago "github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"notistore/internal/config"
	"notistore/internal/domain"
	"notistore/internal/metrics"
	"notistore/internal/model"
	"notistore/internal/queue"
	"notistore/internal/repository/repositorytest"
	"notistore/internal/service/notify"
	"notistore/internal/sse"
)

type fakeReader struct {
	mu        sync.Mutex
	messages  []kafkago.Message
	committed []int64
	closed    bool
}

func (r *fakeReader) FetchMessage(ctx context.Context) (kafkago.Message, error) {
	r.mu.Lock()
	if len(r.messages) > 0 {
		msg := r.messages[0]
		r.messages = r.messages[1:]
		r.mu.Unlock()
		return msg, nil
	}
	r.mu.Unlock()
	<-ctx.Done()
	return kafkago.Message{}, ctx.Err()
}

func (r *fakeReader) CommitMessages(_ context.Context, msgs ...kafkago.Message) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, m := range msgs {
		r.committed = append(r.committed, m.Offset)
	}
	return nil
}

func (r *fakeReader) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.closed = true
	return nil
}

func (r *fakeReader) isClosed() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.closed
}

func (r *fakeReader) committedOffsets() []int64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]int64(nil), r.committed...)
}

type fakeWriter struct {
	messages []kafkago.Message
	err      error
}

func (w *fakeWriter) WriteMessages(_ context.Context, msgs ...kafkago.Message) error {
	if w.err != nil {
		return w.err
	}
	w.messages = append(w.messages, msgs...)
	return nil
}

func (w *fakeWriter) Close() error { return nil }

func newConsumer(repo *repositorytest.Mock, reader messageReader, maxRetries int) *Consumer {
	return newRestartingConsumer(repo, maxRetries, reader)
}

// newRestartingConsumer hands out readers in order, one per (re)start.
func newRestartingConsumer(repo *repositorytest.Mock, maxRetries int, readers ...messageReader) *Consumer {
	svc := notify.NewService(&config.Config{}, repo, sse.NewHub(), metrics.New(prometheus.NewRegistry()), zap.NewNop())
	var mu sync.Mutex
	next := 0
	return &Consumer{
		newReader: func() messageReader {
			mu.Lock()
			defer mu.Unlock()
			r := readers[next]
			if next < len(readers)-1 {
				next++
			}
			return r
		},
		svc:          svc,
		logger:       zap.NewNop(),
		topic:        "notifications",
		maxRetries:   maxRetries,
		restartDelay: time.Millisecond,
	}
}

func payload(t *testing.T, typ string) []byte {
	t.Helper()
	body, err := queue.EncodeNotification(queue.Payload{Room: "room-1", Type: typ, Title: "t", Body: "b"})
	require.NoError(t, err)
	return body
}

func TestConsumerHandleMessage(t *testing.T) {
	t.Run("invalid json is dropped", func(t *testing.T) {
		repo := &repositorytest.Mock{}
		c := newConsumer(repo, nil, 3)

		require.NoError(t, c.handleMessage(context.Background(), kafkago.Message{Value: []byte("{bad")}))
		repo.AssertNotCalled(t, "CreateNotification", mock.Anything, mock.Anything)
	})

	t.Run("invalid type is dropped", func(t *testing.T) {
		repo := &repositorytest.Mock{}
		c := newConsumer(repo, nil, 3)

		require.NoError(t, c.handleMessage(context.Background(), kafkago.Message{Value: payload(t, "bad")}))
		repo.AssertNotCalled(t, "CreateNotification", mock.Anything, mock.Anything)
	})

	t.Run("retries then succeeds", func(t *testing.T) {
		repo := &repositorytest.Mock{}
		repo.On("CreateNotification", mock.Anything, mock.Anything).Return(model.Notification{}, errors.New("busy")).Once()
		repo.On("CreateNotification", mock.Anything, mock.Anything).Return(model.Notification{ID: 1, Room: "room-1", Type: domain.NotificationTypeInfo}, nil).Once()
		c := newConsumer(repo, nil, 3)

		require.NoError(t, c.handleMessage(context.Background(), kafkago.Message{Value: payload(t, domain.NotificationTypeInfo)}))
		repo.AssertExpectations(t)
	})

	t.Run("gives up after max retries", func(t *testing.T) {
		storeErr := errors.New("store failed")
		repo := &repositorytest.Mock{}
		repo.On("CreateNotification", mock.Anything, mock.Anything).Return(model.Notification{}, storeErr).Times(2)
		c := newConsumer(repo, nil, 2)

		err := c.handleMessage(context.Background(), kafkago.Message{Value: payload(t, domain.NotificationTypeInfo)})
		require.ErrorIs(t, err, storeErr)
		repo.AssertExpectations(t)
	})
}

func TestConsumerStartCommitsProcessedMessages(t *testing.T) {
	repo := &repositorytest.Mock{}
	repo.On("CreateNotification", mock.Anything, mock.Anything).Return(model.Notification{ID: 1, Room: "room-1", Type: domain.NotificationTypeInfo}, nil).Once()
	reader := &fakeReader{messages: []kafkago.Message{
		{Offset: 10, Value: payload(t, domain.NotificationTypeInfo)},
		{Offset: 11, Value: []byte("{bad")},
	}}
	c := newConsumer(repo, reader, 1)

	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() { errCh <- c.Start(ctx) }()

	require.Eventually(t, func() bool { return len(reader.committedOffsets()) == 2 }, time.Second, 5*time.Millisecond)
	cancel()
	require.ErrorIs(t, <-errCh, context.Canceled)
	require.Equal(t, []int64{10, 11}, reader.committedOffsets())
	require.True(t, reader.isClosed())
	repo.AssertExpectations(t)
}

func TestConsumerStartRebuildsReaderAfterStoreFailure(t *testing.T) {
	repo := &repositorytest.Mock{}
	repo.On("CreateNotification", mock.Anything, mock.Anything).Return(model.Notification{}, errors.New("down")).Once()
	repo.On("CreateNotification", mock.Anything, mock.Anything).Return(model.Notification{ID: 1, Room: "room-1", Type: domain.NotificationTypeInfo}, nil).Once()

	msg := kafkago.Message{Offset: 5, Value: payload(t, domain.NotificationTypeInfo)}
	first := &fakeReader{messages: []kafkago.Message{msg}}
	// The rebuilt reader resumes from the last committed offset, so it sees
	// the failed message again.
	second := &fakeReader{messages: []kafkago.Message{msg}}
	c := newRestartingConsumer(repo, 1, first, second)

	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() { errCh <- c.Start(ctx) }()

	require.Eventually(t, func() bool { return len(second.committedOffsets()) == 1 }, time.Second, 5*time.Millisecond)
	cancel()
	require.ErrorIs(t, <-errCh, context.Canceled)

	require.Empty(t, first.committedOffsets())
	require.True(t, first.isClosed())
	require.Equal(t, []int64{5}, second.committedOffsets())
	repo.AssertExpectations(t)
}

func TestPublisher(t *testing.T) {
	t.Run("writes keyed message", func(t *testing.T) {
		w := &fakeWriter{}
		p := &Publisher{writer: w, topic: "notifications", logger: zap.NewNop()}

		require.NoError(t, p.Publish(context.Background(), []byte(`{"room":"room-1"}`), "notification.info"))
		require.Len(t, w.messages, 1)
		msg := w.messages[0]
		require.Equal(t, "notification.info", string(msg.Key))
		require.JSONEq(t, `{"room":"room-1"}`, string(msg.Value))
		require.Equal(t, "notification.info", headerCarrier{headers: &msg.Headers}.Get(RoutingKeyHeader))
	})

	t.Run("write error", func(t *testing.T) {
		writeErr := errors.New("no brokers")
		p := &Publisher{writer: &fakeWriter{err: writeErr}, topic: "notifications", logger: zap.NewNop()}
		require.ErrorIs(t, p.Publish(context.Background(), []byte("{}"), "notification.info"), writeErr)
	})
}

func TestHeaderCarrier(t *testing.T) {
	var headers []kafkago.Header
	c := headerCarrier{headers: &headers}
	c.Set("a", "1")
	c.Set("b", "2")
	c.Set("a", "3")

	require.Equal(t, "3", c.Get("a"))
	require.Equal(t, "2", c.Get("b"))
	require.Empty(t, c.Get("c"))
	require.ElementsMatch(t, []string{"a", "b"}, c.Keys())
}
