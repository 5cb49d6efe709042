package rabbitmq

import (
	"fmt"

	amqp "github.com/rabbitmq/amqp091-go"
)

const exchangeKind = "topic"

// session is one connection and channel with the durable topic exchange
// declared. Publisher and consumer both start from it.
type session struct {
	conn *amqp.Connection
	ch   *amqp.Channel
}

func openSession(url, exchange string) (*session, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("rabbitmq dial: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("rabbitmq channel: %w", err)
	}
	s := &session{conn: conn, ch: ch}
	// durable, not auto-deleted, not internal, wait for confirmation
	if err := ch.ExchangeDeclare(exchange, exchangeKind, true, false, false, false, nil); err != nil {
		s.Close()
		return nil, fmt.Errorf("rabbitmq exchange declare: %w", err)
	}
	return s, nil
}

// bindQueue declares a durable queue and binds it to the exchange.
func (s *session) bindQueue(queue, routingKey, exchange string) (string, error) {
	q, err := s.ch.QueueDeclare(queue, true, false, false, false, nil)
	if err != nil {
		return "", fmt.Errorf("rabbitmq queue declare: %w", err)
	}
	if err := s.ch.QueueBind(q.Name, routingKey, exchange, false, nil); err != nil {
		return "", fmt.Errorf("rabbitmq queue bind: %w", err)
	}
	return q.Name, nil
}

func (s *session) Close() {
	_ = s.ch.Close()
	_ = s.conn.Close()
}
