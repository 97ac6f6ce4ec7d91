// Package kafka publishes events to Kafka topics.
package kafka

import (
	"context"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/mmynk/settleup/internal/events"
)

// Publisher writes each event to the Kafka topic of the same name, keyed by
// group so a group's events stay on one partition.
type Publisher struct {
	writer *kafka.Writer
}

var _ events.Publisher = (*Publisher)(nil)

// NewPublisher creates a publisher for the given brokers. Connections are
// made lazily on the first write.
func NewPublisher(brokers []string) *Publisher {
	return &Publisher{
		writer: &kafka.Writer{
			Addr:                   kafka.TCP(brokers...),
			Balancer:               &kafka.Hash{},
			RequiredAcks:           kafka.RequireOne,
			AllowAutoTopicCreation: true,
			BatchTimeout:           50 * time.Millisecond,
		},
	}
}

// Publish writes one event synchronously.
func (p *Publisher) Publish(ctx context.Context, topic string, event any) error {
	msg, err := message(topic, event)
	if err != nil {
		return err
	}
	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("write %s to kafka: %w", topic, err)
	}
	return nil
}

// Close flushes pending writes and closes connections.
func (p *Publisher) Close() error {
	return p.writer.Close()
}

func message(topic string, event any) (kafka.Message, error) {
	key, body, err := events.Encode(topic, event)
	if err != nil {
		return kafka.Message{}, err
	}
	msg := kafka.Message{
		Topic: topic,
		Value: body,
		Headers: []kafka.Header{
			{Key: "content-type", Value: []byte("application/json")},
		},
	}
	if key != "" {
		msg.Key = []byte(key)
	}
	return msg, nil
}
