package events

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/streadway/amqp"
	"go.uber.org/zap"
)

// RabbitMQPublisher publishes events as persistent JSON messages to a durable queue.
type RabbitMQPublisher struct {
	conn    *amqp.Connection
	channel *amqp.Channel
	queue   string
	logger  *zap.Logger

	mu sync.Mutex // amqp.Channel is not safe for concurrent publishes
}

// NewRabbitMQPublisher dials the broker, opens a channel and declares queue.
func NewRabbitMQPublisher(url, queue string, logger *zap.Logger) (*RabbitMQPublisher, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to open a RabbitMQ channel: %w", err)
	}

	_, err = ch.QueueDeclare(
		queue, // name
		true,  // durable
		false, // delete when unused
		false, // exclusive
		false, // no-wait
		nil,   // arguments
	)
	if err != nil {
		ch.Close()
		conn.Close()
		return nil, fmt.Errorf("failed to declare queue %s: %w", queue, err)
	}

	logger.Info("Connected to RabbitMQ", zap.String("queue", queue))
	return &RabbitMQPublisher{conn: conn, channel: ch, queue: queue, logger: logger}, nil
}

// Publish sends evt to the queue.
func (p *RabbitMQPublisher) Publish(_ context.Context, evt Event) error {
	body, err := json.Marshal(evt)
	if err != nil {
		return fmt.Errorf("failed to encode event %s: %w", evt.ID, err)
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	err = p.channel.Publish(
		"",      // exchange
		p.queue, // routing key (queue name)
		false,   // mandatory
		false,   // immediate
		amqp.Publishing{
			ContentType:  "application/json",
			MessageId:    evt.ID,
			Type:         evt.Type,
			Timestamp:    evt.OccurredAt,
			Body:         body,
			DeliveryMode: amqp.Persistent,
		})
	if err != nil {
		return fmt.Errorf("failed to publish event %s to queue %s: %w", evt.ID, p.queue, err)
	}
	return nil
}

// Close closes the channel and connection.
func (p *RabbitMQPublisher) Close() error {
	var lastErr error
	if p.channel != nil {
		if err := p.channel.Close(); err != nil {
			p.logger.Warn("Error closing RabbitMQ channel", zap.Error(err))
			lastErr = err
		}
	}
	if p.conn != nil {
		if err := p.conn.Close(); err != nil {
			p.logger.Warn("Error closing RabbitMQ connection", zap.Error(err))
			lastErr = err
		}
	}
	return lastErr
}
