package queue

import "context"

type Consumer interface {
	Start(ctx context.Context) error
}

type Publisher interface {
	Publish(ctx context.Context, payload []byte, routingKey string) error
}

type noopConsumer struct{}

// NoopConsumer blocks until ctx is done. Used when no broker is configured.
func NoopConsumer() Consumer { return noopConsumer{} }

func (noopConsumer) Start(ctx context.Context) error {
	<-ctx.Done()
	return ctx.Err()
}

type noopPublisher struct{}

// NoopPublisher accepts and discards every message.
func NoopPublisher() Publisher { return noopPublisher{} }

func (noopPublisher) Publish(context.Context, []byte, string) error { return nil }
