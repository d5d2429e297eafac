package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	kafkago "github.com/segmentio/kafka-go"
)

// kafka-go waits up to a second to fill a batch; events are published one at a
// time from request handlers.
const kafkaBatchTimeout = 10 * time.Millisecond

// KafkaPublisher writes events to a single topic keyed by Event.Key.
type KafkaPublisher struct {
	writer *kafkago.Writer
}

// NewKafkaPublisher returns a publisher over brokers. Connections are made lazily.
func NewKafkaPublisher(brokers []string, topic string) *KafkaPublisher {
	return &KafkaPublisher{
		writer: &kafkago.Writer{
			Addr:                   kafkago.TCP(brokers...),
			Topic:                  topic,
			Balancer:               &kafkago.Hash{},
			AllowAutoTopicCreation: true,
			BatchTimeout:           kafkaBatchTimeout,
		},
	}
}

func (p *KafkaPublisher) Publish(ctx context.Context, evt Event) error {
	data, err := json.Marshal(evt)
	if err != nil {
		return fmt.Errorf("failed to encode event %s: %w", evt.ID, err)
	}
	err = p.writer.WriteMessages(ctx, kafkago.Message{
		Key:   []byte(evt.Key),
		Value: data,
		Headers: []kafkago.Header{
			{Key: "type", Value: []byte(evt.Type)},
		},
	})
	if err != nil {
		return fmt.Errorf("failed to write event %s to kafka: %w", evt.ID, err)
	}
	return nil
}

func (p *KafkaPublisher) Close() error {
	return p.writer.Close()
}
