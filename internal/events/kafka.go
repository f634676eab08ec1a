package events

import (
	"context"
	"fmt"

	"github.com/segmentio/kafka-go"
)

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// KafkaTransport writes every event to the single events topic, keyed by
// partition key so per-user ordering holds within a partition.
type KafkaTransport struct {
	w messageWriter
}

func NewKafkaTransport(brokers []string) *KafkaTransport {
	return &KafkaTransport{w: &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Topic:                  EventsExchange,
		Balancer:               &kafka.Hash{},
		RequiredAcks:           kafka.RequireAll,
		AllowAutoTopicCreation: true,
		WriteTimeout:           publishTimeout,
	}}
}

func (t *KafkaTransport) Send(ctx context.Context, routingKey, key string, body []byte) error {
	err := t.w.WriteMessages(ctx, kafka.Message{
		Key:     []byte(key),
		Value:   body,
		Headers: []kafka.Header{{Key: headerRoutingKey, Value: []byte(routingKey)}},
	})
	if err != nil {
		return fmt.Errorf("kafka write: %w", err)
	}
	return nil
}

func (t *KafkaTransport) Close() error {
	return t.w.Close()
}
