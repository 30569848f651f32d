package kafka

import (
	"context"
	"errors"
	"testing"

	kafkago "github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingWriter struct {
	messages []kafkago.Message
	err      error
	closed   bool
}

func (w *recordingWriter) WriteMessages(_ context.Context, msgs ...kafkago.Message) error {
	if w.err != nil {
		return w.err
	}
	w.messages = append(w.messages, msgs...)
	return nil
}

func (w *recordingWriter) Close() error {
	w.closed = true
	return nil
}

func TestPublisherWritesKeyedMessage(t *testing.T) {
	w := &recordingWriter{}
	p := NewPublisher(w)

	require.NoError(t, p.Publish(context.Background(), "order.paid", "order-1", `{"a":1}`))

	require.Len(t, w.messages, 1)
	msg := w.messages[0]
	assert.Equal(t, "order-1", string(msg.Key))
	assert.Equal(t, `{"a":1}`, string(msg.Value))
	require.Len(t, msg.Headers, 1)
	assert.Equal(t, "order.paid", string(msg.Headers[0].Value))

	require.NoError(t, p.Close())
	assert.True(t, w.closed)
}

func TestPublisherWrapsWriteError(t *testing.T) {
	w := &recordingWriter{err: errors.New("broker down")}

	err := NewPublisher(w).Publish(context.Background(), "order.placed", "o", "{}")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "order.placed")
}

func TestNewWriterConfiguration(t *testing.T) {
	w := NewWriter([]string{"localhost:9092"}, "storefront.events")

	assert.Equal(t, "storefront.events", w.Topic)
	assert.Equal(t, kafkago.RequireOne, w.RequiredAcks)
}
