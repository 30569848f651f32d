// Package kafka publishes outbox events to a Kafka topic.
package kafka

import (
	"context"
	"fmt"
	"time"

	"storefront/infrastructure/messaging"

	kafkago "github.com/segmentio/kafka-go"
)

// MessageWriter subset of *kafka.Writer used by the publisher
type MessageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafkago.Message) error
	Close() error
}

// Publisher writes each outbox event as one message keyed by aggregate id
type Publisher struct {
	writer MessageWriter
}

// NewWriter balanced writer that waits for the partition leader ack
func NewWriter(brokers []string, topic string) *kafkago.Writer {
	return &kafkago.Writer{
		Addr:         kafkago.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafkago.LeastBytes{},
		RequiredAcks: kafkago.RequireOne,
	}
}

// NewPublisher wraps a writer
func NewPublisher(writer MessageWriter) *Publisher {
	return &Publisher{writer: writer}
}

func (p *Publisher) Publish(ctx context.Context, eventType, key, payload string) error {
	msg := kafkago.Message{
		Key:   []byte(key),
		Value: []byte(payload),
		Time:  time.Now(),
		Headers: []kafkago.Header{
			{Key: "event_type", Value: []byte(eventType)},
		},
	}
	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("kafka write %s: %w", eventType, err)
	}
	return nil
}

// Close flushes and closes the writer
func (p *Publisher) Close() error {
	return p.writer.Close()
}

var _ messaging.Publisher = (*Publisher)(nil)
