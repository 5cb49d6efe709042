package kafka

import (
	"context"
	"errors"
	"fmt"
	"time"

	kafkago "github.com/segmentio/kafka-go"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.uber.org/zap"
	"notistore/internal/config"
	"notistore/internal/domain"
	"notistore/internal/queue"
	"notistore/internal/service/notify"
)

const maxRestartDelay = 30 * time.Second

type messageReader interface {
	FetchMessage(ctx context.Context) (kafkago.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafkago.Message) error
	Close() error
}

// Consumer reads notifications from a topic with manual offset commits.
// Offsets are committed only after a message was stored or found to be
// unprocessable.
type Consumer struct {
	newReader  func() messageReader
	svc        *notify.Service
	logger     *zap.Logger
	topic      string
	maxRetries int
	retryDelay time.Duration

	// restartDelay is the first backoff before a failed reader is rebuilt.
	restartDelay time.Duration
}

func NewConsumer(cfg *config.Config, svc *notify.Service, logger *zap.Logger) *Consumer {
	readerCfg := kafkago.ReaderConfig{
		Brokers:  cfg.KafkaBrokers,
		GroupID:  cfg.KafkaGroupID,
		Topic:    cfg.KafkaTopic,
		MinBytes: 1,
		MaxBytes: 10e6,
	}
	return &Consumer{
		newReader:    func() messageReader { return kafkago.NewReader(readerCfg) },
		svc:          svc,
		logger:       logger,
		topic:        cfg.KafkaTopic,
		maxRetries:   cfg.KafkaMaxRetries,
		retryDelay:   200 * time.Millisecond,
		restartDelay: time.Second,
	}
}

// Start consumes until ctx is done. When a message cannot be stored or the
// reader fails, the reader is closed and rebuilt after a backoff so the
// group resumes from the last committed offset.
func (c *Consumer) Start(ctx context.Context) error {
	c.logger.Info("Kafka consumer started", zap.String("topic", c.topic))

	delay := c.restartDelay
	for {
		err := c.consume(ctx, c.newReader())
		if ctx.Err() != nil {
			return ctx.Err()
		}
		c.logger.Error("kafka consumer failed, restarting reader",
			zap.String("topic", c.topic),
			zap.Duration("backoff", delay),
			zap.Error(err),
		)
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(delay):
		}
		if delay *= 2; delay > maxRestartDelay {
			delay = maxRestartDelay
		}
	}
}

// consume reads from one reader until an error. A message is committed only
// after handleMessage accepts it.
func (c *Consumer) consume(ctx context.Context, reader messageReader) error {
	defer func() {
		if err := reader.Close(); err != nil {
			c.logger.Warn("kafka reader close failed", zap.Error(err))
		}
	}()

	for {
		msg, err := reader.FetchMessage(ctx)
		if err != nil {
			return fmt.Errorf("kafka fetch: %w", err)
		}
		if err := c.handleMessage(ctx, msg); err != nil {
			return err
		}
		if err := reader.CommitMessages(ctx, msg); err != nil {
			return fmt.Errorf("kafka commit: %w", err)
		}
	}
}

// handleMessage returns nil when the offset may be committed. An error means
// the store kept failing and the message must be redelivered by a new reader.
func (c *Consumer) handleMessage(ctx context.Context, msg kafkago.Message) error {
	ctx = otel.GetTextMapPropagator().Extract(ctx, headerCarrier{headers: &msg.Headers})
	ctx, span := otel.Tracer("kafka").Start(ctx, "kafka.handle_message")
	span.SetAttributes(
		attribute.String("messaging.system", "kafka"),
		attribute.String("messaging.destination", msg.Topic),
		attribute.Int("messaging.kafka.partition", msg.Partition),
		attribute.Int64("messaging.kafka.offset", msg.Offset),
	)
	defer span.End()

	notification, err := queue.DecodeNotification(msg.Value)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "invalid payload")
		c.logger.Warn("kafka invalid payload", zap.Int64("offset", msg.Offset), zap.Error(err))
		return nil
	}

	attempts := c.maxRetries
	if attempts < 1 {
		attempts = 1
	}
	for attempt := 1; ; attempt++ {
		createCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		_, err = c.svc.Create(createCtx, notification)
		cancel()
		if err == nil {
			return nil
		}
		span.RecordError(err)
		if errors.Is(err, domain.ErrInvalidNotificationType) || errors.Is(err, domain.ErrInvalidNotification) {
			span.SetStatus(codes.Error, "invalid notification")
			c.logger.Warn("kafka invalid notification", zap.String("type", notification.Type), zap.Error(err))
			return nil
		}
		c.logger.Error("kafka create notification failed",
			zap.Int("attempt", attempt),
			zap.Int64("offset", msg.Offset),
			zap.Error(err),
		)
		if attempt >= attempts {
			span.SetStatus(codes.Error, "create notification failed")
			return fmt.Errorf("kafka create notification after %d attempts: %w", attempt, err)
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(time.Duration(attempt) * c.retryDelay):
		}
	}
}
