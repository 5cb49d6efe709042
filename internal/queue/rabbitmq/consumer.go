package rabbitmq

import (
	"context"
	"errors"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.uber.org/zap"
	"notistore/internal/config"
	"notistore/internal/domain"
	"notistore/internal/queue"
	"notistore/internal/service/notify"
)

const (
	prefetchCount   = 10
	maxRestartDelay = 30 * time.Second
)

// Consumer stores notifications delivered to a queue bound on the topic
// exchange. It reconnects with backoff until its context ends.
type Consumer struct {
	url          string
	svc          *notify.Service
	logger       *zap.Logger
	exchange     string
	queue        string
	routingKey   string
	consumerTag  string
	restartDelay time.Duration

	// subscribe opens a delivery stream and returns its close func.
	subscribe func() (<-chan amqp.Delivery, func(), error)
}

func NewConsumer(cfg *config.Config, svc *notify.Service, logger *zap.Logger) *Consumer {
	r := &Consumer{
		url:          cfg.RabbitMQURL,
		svc:          svc,
		logger:       logger,
		exchange:     cfg.RabbitExchange,
		queue:        cfg.RabbitQueue,
		routingKey:   cfg.RabbitRoutingKey,
		consumerTag:  cfg.RabbitConsumerTag,
		restartDelay: time.Second,
	}
	r.subscribe = r.openSubscription
	return r
}

func (r *Consumer) Start(ctx context.Context) error {
	delay := r.restartDelay
	for {
		err := r.consume(ctx)
		if ctx.Err() != nil {
			return ctx.Err()
		}
		r.logger.Error("rabbitmq consumer failed, reconnecting",
			zap.String("queue", r.queue),
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

// consume handles deliveries of one subscription until it breaks.
func (r *Consumer) consume(ctx context.Context) error {
	ctx, span := otel.Tracer("rabbitmq").Start(ctx, "rabbitmq.consume_loop")
	span.SetAttributes(
		attribute.String("messaging.system", "rabbitmq"),
		attribute.String("messaging.destination", r.exchange),
		attribute.String("messaging.destination_kind", "exchange"),
		attribute.String("messaging.rabbitmq.routing_key", r.routingKey),
	)
	defer span.End()

	deliveries, closeFn, err := r.subscribe()
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "subscribe failed")
		return err
	}
	defer closeFn()

	r.logger.Info("RabbitMQ consumer started",
		zap.String("exchange", r.exchange),
		zap.String("queue", r.queue),
		zap.String("routing_key", r.routingKey),
	)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case msg, ok := <-deliveries:
			if !ok {
				span.SetStatus(codes.Error, "deliveries closed")
				return errors.New("rabbitmq deliveries closed")
			}
			if err := r.handleMessage(ctx, msg); err != nil {
				span.RecordError(err)
				return err
			}
		}
	}
}

func (r *Consumer) openSubscription() (<-chan amqp.Delivery, func(), error) {
	s, err := openSession(r.url, r.exchange)
	if err != nil {
		return nil, nil, err
	}
	if err := s.ch.Qos(prefetchCount, 0, false); err != nil {
		s.Close()
		return nil, nil, fmt.Errorf("rabbitmq qos: %w", err)
	}
	queueName, err := s.bindQueue(r.queue, r.routingKey, r.exchange)
	if err != nil {
		s.Close()
		return nil, nil, err
	}
	// manual ack, not exclusive
	deliveries, err := s.ch.Consume(queueName, r.consumerTag, false, false, false, false, nil)
	if err != nil {
		s.Close()
		return nil, nil, fmt.Errorf("rabbitmq consume: %w", err)
	}
	return deliveries, s.Close, nil
}

func (r *Consumer) handleMessage(ctx context.Context, msg amqp.Delivery) error {
	if msg.Headers != nil {
		ctx = otel.GetTextMapPropagator().Extract(ctx, amqpHeaderCarrier(msg.Headers))
	}
	ctx, span := otel.Tracer("rabbitmq").Start(ctx, "rabbitmq.handle_message")
	span.SetAttributes(
		attribute.String("messaging.system", "rabbitmq"),
		attribute.String("messaging.destination", r.exchange),
		attribute.String("messaging.destination_kind", "exchange"),
		attribute.String("messaging.rabbitmq.routing_key", msg.RoutingKey),
	)
	defer span.End()

	notification, err := queue.DecodeNotification(msg.Body)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "invalid payload")
		r.logger.Warn("rabbitmq invalid payload", zap.Error(err))
		return msg.Ack(false)
	}

	createCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if _, err := r.svc.Create(createCtx, notification); err != nil {
		span.RecordError(err)
		if errors.Is(err, domain.ErrInvalidNotificationType) || errors.Is(err, domain.ErrInvalidNotification) {
			span.SetStatus(codes.Error, "invalid notification")
			r.logger.Warn("rabbitmq invalid notification", zap.String("type", notification.Type), zap.Error(err))
			return msg.Ack(false)
		}
		span.SetStatus(codes.Error, "create notification failed")
		r.logger.Error("rabbitmq create notification failed", zap.Error(err))
		if nackErr := msg.Nack(false, true); nackErr != nil {
			r.logger.Error("rabbitmq nack failed", zap.Error(nackErr))
		}
		return nil
	}

	return msg.Ack(false)
}
