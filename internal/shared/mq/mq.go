// Package mq carries assessment jobs over RabbitMQ: a durable topic
// exchange, JSON message bodies, manual acks with requeue on failure.
package mq

import (
	"context"
	"encoding/json"
	"fmt"

	amqp "github.com/rabbitmq/amqp091-go"
)

const (
	Exchange            = "assessments"
	JobQueue            = "assessment.jobs"
	RoutingKeyRequested = "assessment.requested"
)

// Job is the message body published when an assessment is queued.
type Job struct {
	AssessmentID string `json:"assessmentId"`
}

type Publisher struct {
	conn *amqp.Connection
	ch   *amqp.Channel
}

// DialPublisher connects and declares the topic exchange.
func DialPublisher(url string) (*Publisher, error) {
	conn, ch, err := dial(url)
	if err != nil {
		return nil, err
	}
	return &Publisher{conn: conn, ch: ch}, nil
}

// Publish sends body as a persistent JSON message.
func (p *Publisher) Publish(ctx context.Context, routingKey string, body any) error {
	data, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("mq marshal: %w", err)
	}
	return p.ch.PublishWithContext(ctx, Exchange, routingKey, false, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Body:         data,
	})
}

func (p *Publisher) Close() {
	if p == nil {
		return
	}
	p.ch.Close()
	p.conn.Close()
}

type Consumer struct {
	conn  *amqp.Connection
	ch    *amqp.Channel
	queue string
}

// DialConsumer connects, declares the durable queue and binds it to the
// exchange under the given routing key.
func DialConsumer(url, queue, routingKey string) (*Consumer, error) {
	conn, ch, err := dial(url)
	if err != nil {
		return nil, err
	}
	if _, err := ch.QueueDeclare(queue, true, false, false, false, nil); err != nil {
		conn.Close()
		return nil, fmt.Errorf("mq declare queue: %w", err)
	}
	if err := ch.QueueBind(queue, routingKey, Exchange, false, nil); err != nil {
		conn.Close()
		return nil, fmt.Errorf("mq bind queue: %w", err)
	}
	if err := ch.Qos(1, 0, false); err != nil {
		conn.Close()
		return nil, fmt.Errorf("mq qos: %w", err)
	}
	return &Consumer{conn: conn, ch: ch, queue: queue}, nil
}

// Consume delivers messages to handler until ctx is canceled. A handler
// error nacks the message back onto the queue.
func (c *Consumer) Consume(ctx context.Context, handler func(ctx context.Context, body []byte) error) error {
	deliveries, err := c.ch.Consume(c.queue, "", false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("mq consume: %w", err)
	}
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case d, ok := <-deliveries:
			if !ok {
				return fmt.Errorf("mq channel closed")
			}
			if err := handler(ctx, d.Body); err != nil {
				d.Nack(false, true)
				continue
			}
			d.Ack(false)
		}
	}
}

func (c *Consumer) Close() {
	if c == nil {
		return
	}
	c.ch.Close()
	c.conn.Close()
}

func dial(url string) (*amqp.Connection, *amqp.Channel, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, nil, fmt.Errorf("mq dial: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, nil, fmt.Errorf("mq channel: %w", err)
	}
	if err := ch.ExchangeDeclare(Exchange, "topic", true, false, false, false, nil); err != nil {
		conn.Close()
		return nil, nil, fmt.Errorf("mq declare exchange: %w", err)
	}
	return conn, ch, nil
}
