package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/andreasstove999/ecommerce-system/checkout-service-go/internal/http/middleware"
	"github.com/andreasstove999/ecommerce-system/checkout-service-go/internal/order"
)

const publishTimeout = 3 * time.Second

// Transport delivers one encoded event. key is the partition key; brokers
// that order by key (Kafka) use it, RabbitMQ carries it as a header.
type Transport interface {
	Send(ctx context.Context, routingKey, key string, body []byte) error
	Close() error
}

type Publisher struct {
	transport Transport
	seq       SequenceRepository
	producer  string
	now       func() time.Time
}

type PublisherOptions struct {
	Producer string
	Now      func() time.Time
}

func NewPublisher(t Transport, seq SequenceRepository, opts PublisherOptions) *Publisher {
	p := &Publisher{transport: t, seq: seq, producer: opts.Producer, now: opts.Now}
	if p.producer == "" {
		p.producer = checkoutServiceName
	}
	if p.now == nil {
		p.now = func() time.Time { return time.Now().UTC() }
	}
	return p
}

func (p *Publisher) Close() error {
	return p.transport.Close()
}

func (p *Publisher) PublishOrderPlaced(ctx context.Context, o order.Order) error {
	payload := OrderPlacedPayload{
		OrderID:         o.ID,
		UserID:          o.UserID,
		Total:           o.Total,
		WalletDeduction: o.WalletDeduction,
		AmountDue:       o.AmountDue(),
		PaymentMethod:   o.PaymentMethod,
		DeliveryMethod:  o.DeliveryMethod,
		Status:          string(o.Status),
		PlacedAt:        o.CreatedAt,
	}
	for _, it := range o.Items {
		payload.Items = append(payload.Items, OrderPlacedItem{
			LineID:    it.LineID,
			ProductID: it.ProductID,
			Quantity:  it.Quantity,
			UnitPrice: it.UnitPrice,
		})
	}
	return publish(ctx, p, EventTypeOrderPlaced, orderPlacedSchema, OrderPlacedRoutingKey, o.UserID, payload)
}

func (p *Publisher) PublishWalletCompensated(ctx context.Context, userID, orderID string, amount decimal.Decimal) error {
	payload := WalletCompensatedPayload{
		OrderID: orderID,
		UserID:  userID,
		Amount:  amount,
		Reason:  "order_persistence_failed",
	}
	return publish(ctx, p, EventTypeWalletCompensated, walletCompensatedSchema, WalletCompensatedRoutingKey, userID, payload)
}

func publish[T any](ctx context.Context, p *Publisher, name, schema, routingKey, partitionKey string, payload T) error {
	seq, err := p.seq.NextSequence(ctx, partitionKey)
	if err != nil {
		return fmt.Errorf("reserve sequence: %w", err)
	}

	env := EventEnvelope[T]{
		EventName:     name,
		EventVersion:  1,
		EventID:       uuid.NewString(),
		CorrelationID: middleware.GetCorrelationID(ctx),
		Producer:      p.producer,
		PartitionKey:  partitionKey,
		Sequence:      &seq,
		OccurredAt:    p.now(),
		Schema:        schema,
		Payload:       payload,
	}
	body, err := json.Marshal(env)
	if err != nil {
		return fmt.Errorf("marshal %s envelope: %w", name, err)
	}

	if err := p.transport.Send(ctx, routingKey, partitionKey, body); err != nil {
		return fmt.Errorf("publish %s: %w", name, err)
	}
	return nil
}
