package kafka

import (
	"context"
	"fmt"

	kafkago "github.com/segmentio/kafka-go"
	"go.opentelemetry.io/otel"
	"go.uber.org/zap"
	"notistore/internal/config"
)

// RoutingKeyHeader carries the routing key so consumers see the same
// "<prefix>.<type>" value as with RabbitMQ.
const RoutingKeyHeader = "routing_key"

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafkago.Message) error
	Close() error
}

type Publisher struct {
	writer messageWriter
	topic  string
	logger *zap.Logger
}

func NewPublisher(cfg *config.Config, logger *zap.Logger) *Publisher {
	writer := &kafkago.Writer{
		Addr:                   kafkago.TCP(cfg.KafkaBrokers...),
		Topic:                  cfg.KafkaTopic,
		Balancer:               &kafkago.Hash{},
		RequiredAcks:           kafkago.RequireAll,
		AllowAutoTopicCreation: true,
	}
	return &Publisher{writer: writer, topic: cfg.KafkaTopic, logger: logger}
}

// Publish writes payload keyed by routing key, so messages of one
// notification type keep their order within a partition.
func (p *Publisher) Publish(ctx context.Context, payload []byte, routingKey string) error {
	headers := []kafkago.Header{{Key: RoutingKeyHeader, Value: []byte(routingKey)}}
	otel.GetTextMapPropagator().Inject(ctx, headerCarrier{headers: &headers})

	if err := p.writer.WriteMessages(ctx, kafkago.Message{
		Key:     []byte(routingKey),
		Value:   payload,
		Headers: headers,
	}); err != nil {
		p.logger.Error("kafka publish failed",
			zap.String("topic", p.topic),
			zap.String("routing_key", routingKey),
			zap.Error(err),
		)
		return fmt.Errorf("kafka write: %w", err)
	}
	return nil
}

func (p *Publisher) Close() error {
	return p.writer.Close()
}
