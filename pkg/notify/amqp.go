package notify

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	amqp "github.com/rabbitmq/amqp091-go"
)

// ErrPublisherClosed is returned when sending through a closed publisher.
var ErrPublisherClosed = errors.New("amqp publisher closed")

// amqpChannel is the subset of *amqp.Channel the sender relies on.
type amqpChannel interface {
	ExchangeDeclare(name, kind string, durable, autoDelete, internal, noWait bool, args amqp.Table) error
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
	Close() error
}

// AMQPSender publishes deliveries as persistent JSON messages to a topic exchange.
type AMQPSender struct {
	mu       sync.Mutex
	conn     *amqp.Connection
	channel  amqpChannel
	exchange string
	closed   bool
}

// NewAMQPSender dials the broker and declares the exchange.
func NewAMQPSender(url, exchange string) (*AMQPSender, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("connect amqp: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("open amqp channel: %w", err)
	}
	sender, err := newAMQPSender(ch, exchange)
	if err != nil {
		_ = conn.Close()
		return nil, err
	}
	sender.conn = conn
	return sender, nil
}

func newAMQPSender(ch amqpChannel, exchange string) (*AMQPSender, error) {
	if exchange == "" {
		exchange = "logistics.notifications"
	}
	if err := ch.ExchangeDeclare(exchange, amqp.ExchangeTopic, true, false, false, false, nil); err != nil {
		_ = ch.Close()
		return nil, fmt.Errorf("declare exchange %s: %w", exchange, err)
	}
	return &AMQPSender{channel: ch, exchange: exchange}, nil
}

// Send publishes the delivery under its routing key.
func (s *AMQPSender) Send(ctx context.Context, d Delivery) error {
	body, err := json.Marshal(d)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrPublisherClosed
	}
	return s.channel.PublishWithContext(ctx, s.exchange, d.RoutingKey(), false, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		MessageId:    fmt.Sprintf("notification-%d", d.NotificationID),
		Timestamp:    d.CreatedAt,
		Body:         body,
	})
}

// Connected reports whether the broker connection is still open.
func (s *AMQPSender) Connected() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return false
	}
	return s.conn == nil || !s.conn.IsClosed()
}

// Close releases the channel and connection.
func (s *AMQPSender) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true
	var errs []error
	if s.channel != nil {
		errs = append(errs, s.channel.Close())
	}
	if s.conn != nil {
		errs = append(errs, s.conn.Close())
	}
	return errors.Join(errs...)
}
