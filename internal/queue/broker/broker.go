// Package broker selects the message transport from configuration.
package broker

import (
	"go.uber.org/zap"
	"notistore/internal/config"
	"notistore/internal/queue"
	"notistore/internal/queue/kafka"
	"notistore/internal/queue/rabbitmq"
	"notistore/internal/service/notify"
)

// NewPublisher returns the configured publisher and a cleanup that flushes
// and closes it.
func NewPublisher(cfg *config.Config, logger *zap.Logger) (queue.Publisher, func()) {
	switch cfg.QueueDriver {
	case config.QueueDriverRabbitMQ:
		if cfg.RabbitMQURL != "" {
			return rabbitmq.NewPublisher(cfg, logger), func() {}
		}
	case config.QueueDriverKafka:
		if len(cfg.KafkaBrokers) > 0 {
			pub := kafka.NewPublisher(cfg, logger)
			return pub, func() {
				if err := pub.Close(); err != nil {
					logger.Error("kafka publisher close failed", zap.Error(err))
				}
			}
		}
	}
	logger.Info("no message broker configured, publish is a no-op", zap.String("driver", cfg.QueueDriver))
	return queue.NoopPublisher(), func() {}
}

func NewConsumer(cfg *config.Config, svc *notify.Service, logger *zap.Logger) queue.Consumer {
	switch cfg.QueueDriver {
	case config.QueueDriverRabbitMQ:
		if cfg.RabbitMQURL != "" {
			return rabbitmq.NewConsumer(cfg, svc, logger)
		}
	case config.QueueDriverKafka:
		if len(cfg.KafkaBrokers) > 0 {
			return kafka.NewConsumer(cfg, svc, logger)
		}
	}
	return queue.NoopConsumer()
}
