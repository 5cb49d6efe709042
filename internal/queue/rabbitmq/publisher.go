package rabbitmq

import (
	"context"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.opentelemetry.io/otel"
	"go.uber.org/zap"
	"notistore/internal/config"
)

type Publisher struct {
	url      string
	logger   *zap.Logger
	exchange string
}

func NewPublisher(cfg *config.Config, logger *zap.Logger) *Publisher {
	return &Publisher{url: cfg.RabbitMQURL, logger: logger, exchange: cfg.RabbitExchange}
}

// Publish sends one persistent JSON message with the caller's trace context
// in its headers.
func (p *Publisher) Publish(ctx context.Context, payload []byte, routingKey string) error {
	s, err := openSession(p.url, p.exchange)
	if err != nil {
		p.logger.Error("rabbitmq publish session failed", zap.Error(err))
		return err
	}
	defer s.Close()

	headers := amqp.Table{}
	otel.GetTextMapPropagator().Inject(ctx, amqpHeaderCarrier(headers))

	msg := amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Headers:      headers,
		Body:         payload,
	}
	if err := s.ch.PublishWithContext(ctx, p.exchange, routingKey, false, false, msg); err != nil {
		p.logger.Error("rabbitmq publish failed", zap.String("routing_key", routingKey), zap.Error(err))
		return err
	}
	return nil
}
