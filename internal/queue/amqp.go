// internal/queue/amqp.go
package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/streadway/amqp"
)

// ProviderEventsQueue carries raw provider webhook bodies to cmd/worker.
const ProviderEventsQueue = "provider.events"

// AMQPQueue publishes events to a topic exchange, routed by topic name.
type AMQPQueue struct {
	conn     *amqp.Connection
	ch       *amqp.Channel
	exchange string
	mu       sync.Mutex
	logger   *slog.Logger
}

func NewAMQPQueue(url, exchange string, logger *slog.Logger) (*AMQPQueue, error) {
	if logger == nil {
		logger = slog.Default()
	}
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("connect to RabbitMQ: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("open channel: %w", err)
	}
	err = ch.ExchangeDeclare(
		exchange, // name
		"topic",  // kind
		true,     // durable
		false,    // auto-deleted
		false,    // internal
		false,    // no-wait
		nil,      // arguments
	)
	if err != nil {
		ch.Close()
		conn.Close()
		return nil, fmt.Errorf("declare exchange %s: %w", exchange, err)
	}
	return &AMQPQueue{
		conn:     conn,
		ch:       ch,
		exchange: exchange,
		logger:   logger.With("component", "queue", "driver", "amqp"),
	}, nil
}

func (q *AMQPQueue) Publish(topic string, payload any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	return q.publish(topic, "application/json", body)
}

// PublishRaw publishes body unchanged, keeping its content type.
func (q *AMQPQueue) PublishRaw(routingKey, contentType string, body []byte) error {
	return q.publish(routingKey, contentType, body)
}

func (q *AMQPQueue) publish(routingKey, contentType string, body []byte) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.ch.Publish(q.exchange, routingKey, false, false, amqp.Publishing{
		ContentType:  contentType,
		DeliveryMode: amqp.Persistent,
		Timestamp:    time.Now(),
		Body:         body,
	})
}

// Subscribe binds a private, auto-deleted queue to topic. Handlers receive
// json.RawMessage; failed messages are dropped, not requeued.
func (q *AMQPQueue) Subscribe(topic string, handler func(payload any) error) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	queue, err := q.ch.QueueDeclare("", false, true, true, false, nil)
	if err != nil {
		return fmt.Errorf("declare queue: %w", err)
	}
	if err := q.ch.QueueBind(queue.Name, topic, q.exchange, false, nil); err != nil {
		return fmt.Errorf("bind queue to %s: %w", topic, err)
	}
	msgs, err := q.ch.Consume(queue.Name, "", false, true, false, false, nil)
	if err != nil {
		return fmt.Errorf("register consumer: %w", err)
	}

	go func() {
		for d := range msgs {
			if err := handler(json.RawMessage(d.Body)); err != nil {
				q.logger.Warn("subscriber failed", "topic", topic, "error", err)
				d.Nack(false, false)
				continue
			}
			d.Ack(false)
		}
	}()
	return nil
}

// Delivery is one message taken from a durable work queue.
type Delivery struct {
	ContentType string
	Body        []byte
	Redelivered bool
	Ack         func() error
	Nack        func(requeue bool) error
}

// Consume declares the durable queue name, binds it to the exchange under the
// same routing key and streams its messages until ctx is done.
func (q *AMQPQueue) Consume(ctx context.Context, name string) (<-chan Delivery, error) {
	q.mu.Lock()
	defer q.mu.Unlock()

	queue, err := q.ch.QueueDeclare(
		name,  // name
		true,  // durable
		false, // delete when unused
		false, // exclusive
		false, // no-wait
		nil,   // arguments
	)
	if err != nil {
		return nil, fmt.Errorf("declare queue %s: %w", name, err)
	}
	if err := q.ch.QueueBind(queue.Name, name, q.exchange, false, nil); err != nil {
		return nil, fmt.Errorf("bind queue %s: %w", name, err)
	}
	msgs, err := q.ch.Consume(
		queue.Name,
		"",
		false, // autoAck = false for reliability
		false,
		false,
		false,
		nil,
	)
	if err != nil {
		return nil, fmt.Errorf("register consumer: %w", err)
	}

	out := make(chan Delivery)
	go func() {
		defer close(out)
		for {
			select {
			case <-ctx.Done():
				return
			case d, ok := <-msgs:
				if !ok {
					return
				}
				job := Delivery{
					ContentType: d.ContentType,
					Body:        d.Body,
					Redelivered: d.Redelivered,
					Ack:         func() error { return d.Ack(false) },
					Nack:        func(requeue bool) error { return d.Nack(false, requeue) },
				}
				select {
				case out <- job:
				case <-ctx.Done():
					d.Nack(false, true)
					return
				}
			}
		}
	}()
	return out, nil
}

func (q *AMQPQueue) Close() error {
	if err := q.ch.Close(); err != nil {
		q.conn.Close()
		return err
	}
	return q.conn.Close()
}

var _ Queue = (*AMQPQueue)(nil)
