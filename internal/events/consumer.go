package events

import (
	"context"
	"errors"
	"fmt"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

// HandlerFunc processes one message body. Returning an error drops the
// message; handlers return nil for anything a retry would not fix.
type HandlerFunc func(ctx context.Context, body []byte) error

// StartRabbitConsumer binds a durable service queue to routingKey on the
// events exchange and handles deliveries until ctx is done.
func StartRabbitConsumer(ctx context.Context, conn *amqp.Connection, routingKey string, handler HandlerFunc, logger *zap.Logger) error {
	ch, err := conn.Channel()
	if err != nil {
		return fmt.Errorf("open channel: %w", err)
	}
	if err := declareEventsExchange(ch); err != nil {
		return fmt.Errorf("declare events exchange: %w", err)
	}

	queue := checkoutQueueName(routingKey)
	if _, err := ch.QueueDeclare(queue, true, false, false, false, nil); err != nil {
		return fmt.Errorf("queue declare: %w", err)
	}
	if err := ch.QueueBind(queue, routingKey, EventsExchange, false, nil); err != nil {
		return fmt.Errorf("queue bind: %w", err)
	}
	if err := ch.Qos(10, 0, false); err != nil {
		return fmt.Errorf("qos: %w", err)
	}

	msgs, err := ch.Consume(queue, checkoutServiceName, false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("consume: %w", err)
	}

	go func() {
		defer ch.Close()
		consumeDeliveries(ctx, msgs, handler, logger.With(zap.String("queue", queue)))
	}()
	return nil
}

func consumeDeliveries(ctx context.Context, msgs <-chan amqp.Delivery, handler HandlerFunc, logger *zap.Logger) {
	for {
		select {
		case <-ctx.Done():
			logger.Info("stopping consumer")
			return
		case msg, ok := <-msgs:
			if !ok {
				logger.Warn("delivery channel closed")
				return
			}
			if err := handler(ctx, msg.Body); err != nil {
				logger.Error("handle message failed", zap.Error(err))
				_ = msg.Nack(false, false)
				continue
			}
			_ = msg.Ack(false)
		}
	}
}

type messageReader interface {
	FetchMessage(ctx context.Context) (kafka.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

func NewKafkaReader(brokers []string) *kafka.Reader {
	return kafka.NewReader(kafka.ReaderConfig{
		Brokers: brokers,
		GroupID: statusChangedConsumerName,
		Topic:   EventsExchange,
	})
}

// RunKafkaConsumer handles messages on the events topic whose routing-key
// header matches routingKey, committing each one after it is handled. It
// blocks until ctx is done.
func RunKafkaConsumer(ctx context.Context, r messageReader, routingKey string, handler HandlerFunc, logger *zap.Logger) error {
	defer r.Close()
	for {
		msg, err := r.FetchMessage(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) || ctx.Err() != nil {
				logger.Info("stopping kafka consumer")
				return nil
			}
			return fmt.Errorf("kafka fetch: %w", err)
		}

		if header(msg, headerRoutingKey) == routingKey {
			if err := handler(ctx, msg.Value); err != nil {
				logger.Error("handle message failed",
					zap.Int("partition", msg.Partition), zap.Int64("offset", msg.Offset), zap.Error(err))
			}
		}
		if err := r.CommitMessages(ctx, msg); err != nil {
			return fmt.Errorf("kafka commit: %w", err)
		}
	}
}

func header(msg kafka.Message, key string) string {
	for _, h := range msg.Headers {
		if h.Key == key {
			return string(h.Value)
		}
	}
	return ""
}
