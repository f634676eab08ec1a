package events

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andreasstove999/ecommerce-system/checkout-service-go/internal/http/middleware"
	"github.com/andreasstove999/ecommerce-system/checkout-service-go/internal/order"
)

type sentMessage struct {
	routingKey string
	key        string
	body       []byte
}

type fakeTransport struct {
	mu     sync.Mutex
	sent   []sentMessage
	sendFn func(routingKey string) error
	closed bool
}

func (f *fakeTransport) Send(_ context.Context, routingKey, key string, body []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.sendFn != nil {
		if err := f.sendFn(routingKey); err != nil {
			return err
		}
	}
	f.sent = append(f.sent, sentMessage{routingKey: routingKey, key: key, body: body})
	return nil
}

func (f *fakeTransport) Close() error {
	f.closed = true
	return nil
}

type sequenceFunc func(ctx context.Context, partitionKey string) (int64, error)

func (f sequenceFunc) NextSequence(ctx context.Context, partitionKey string) (int64, error) {
	return f(ctx, partitionKey)
}

var publishedAt = time.Date(2025, 3, 14, 9, 30, 0, 0, time.UTC)

func placed() order.Order {
	return order.Order{
		ID:              "ORD-1",
		UserID:          "user-1",
		CreatedAt:       publishedAt,
		Subtotal:        decimal.NewFromInt(1_950_000),
		DeliveryMethod:  "door_delivery",
		DeliveryCost:    decimal.NewFromInt(2_500),
		Total:           decimal.NewFromInt(1_952_500),
		Status:          order.StatusProcessing,
		PaymentMethod:   "direct_card",
		WalletDeduction: decimal.NewFromInt(150_000),
		Items: []order.Item{
			{LineID: "l-1", ProductID: "gen-1", Name: "Inverter", Quantity: 1, UnitPrice: decimal.NewFromInt(1_950_000)},
		},
	}
}

func TestPublishOrderPlaced_Envelope(t *testing.T) {
	tr := &fakeTransport{}
	pub := NewPublisher(tr, NewMemorySequences(), PublisherOptions{Now: func() time.Time { return publishedAt }})
	ctx := middleware.WithCorrelationID(context.Background(), "cid-1")

	require.NoError(t, pub.PublishOrderPlaced(ctx, placed()))
	require.NoError(t, pub.PublishOrderPlaced(ctx, placed()))
	require.Len(t, tr.sent, 2)

	msg := tr.sent[0]
	assert.Equal(t, OrderPlacedRoutingKey, msg.routingKey)
	assert.Equal(t, "user-1", msg.key)

	var env EventEnvelope[OrderPlacedPayload]
	require.NoError(t, json.Unmarshal(msg.body, &env))
	require.NoError(t, env.Validate(EventTypeOrderPlaced, 1))
	assert.Equal(t, "cid-1", env.CorrelationID)
	assert.Equal(t, checkoutServiceName, env.Producer)
	assert.Equal(t, orderPlacedSchema, env.Schema)
	assert.NotEmpty(t, env.EventID)
	require.NotNil(t, env.Sequence)
	assert.Equal(t, int64(1), *env.Sequence)
	assert.True(t, env.OccurredAt.Equal(publishedAt))
	assert.True(t, env.Payload.AmountDue.Equal(decimal.NewFromInt(1_802_500)))
	require.Len(t, env.Payload.Items, 1)
	assert.Equal(t, "l-1", env.Payload.Items[0].LineID)

	var second EventEnvelope[OrderPlacedPayload]
	require.NoError(t, json.Unmarshal(tr.sent[1].body, &second))
	assert.Equal(t, int64(2), *second.Sequence)
}

func TestPublishWalletCompensated(t *testing.T) {
	tr := &fakeTransport{}
	pub := NewPublisher(tr, NewMemorySequences(), PublisherOptions{})

	require.NoError(t, pub.PublishWalletCompensated(context.Background(), "user-1", "ORD-1", decimal.NewFromInt(150_000)))
	require.Len(t, tr.sent, 1)
	assert.Equal(t, WalletCompensatedRoutingKey, tr.sent[0].routingKey)

	var env EventEnvelope[WalletCompensatedPayload]
	require.NoError(t, json.Unmarshal(tr.sent[0].body, &env))
	require.NoError(t, env.Validate(EventTypeWalletCompensated, 1))
	assert.Equal(t, "ORD-1", env.Payload.OrderID)
	assert.True(t, env.Payload.Amount.Equal(decimal.NewFromInt(150_000)))
}

func TestPublish_Errors(t *testing.T) {
	t.Run("sequence failure stops the send", func(t *testing.T) {
		tr := &fakeTransport{}
		seq := sequenceFunc(func(context.Context, string) (int64, error) { return 0, errors.New("db down") })
		err := NewPublisher(tr, seq, PublisherOptions{}).PublishOrderPlaced(context.Background(), placed())
		require.ErrorContains(t, err, "reserve sequence")
		assert.Empty(t, tr.sent)
	})

	t.Run("transport failure is wrapped", func(t *testing.T) {
		tr := &fakeTransport{sendFn: func(string) error { return errors.New("channel closed") }}
		err := NewPublisher(tr, NewMemorySequences(), PublisherOptions{}).PublishOrderPlaced(context.Background(), placed())
		require.ErrorContains(t, err, "publish OrderPlaced: channel closed")
	})
}

func TestEnvelopeValidate(t *testing.T) {
	env := EventEnvelope[struct{}]{EventName: EventTypeOrderPlaced, EventVersion: 1, PartitionKey: "user-1"}
	require.NoError(t, env.Validate(EventTypeOrderPlaced, 1))

	env.EventName = "Other"
	require.Error(t, env.Validate(EventTypeOrderPlaced, 1))

	env.EventName = EventTypeOrderPlaced
	env.EventVersion = 2
	require.Error(t, env.Validate(EventTypeOrderPlaced, 1))

	env.EventVersion = 1
	env.PartitionKey = ""
	require.Error(t, env.Validate(EventTypeOrderPlaced, 1))
}
