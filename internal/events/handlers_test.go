package events

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/andreasstove999/ecommerce-system/checkout-service-go/internal/http/middleware"
	"github.com/andreasstove999/ecommerce-system/checkout-service-go/internal/order"
)

type fakeStatusStore struct {
	updateFn func(ctx context.Context, userID, orderID string, status order.Status) error
	calls    int
	lastCID  string
}

func (f *fakeStatusStore) UpdateStatus(ctx context.Context, userID, orderID string, status order.Status) error {
	f.calls++
	f.lastCID = middleware.GetCorrelationID(ctx)
	if f.updateFn != nil {
		return f.updateFn(ctx, userID, orderID, status)
	}
	return nil
}

func statusEvent(t *testing.T, status string, seq int64) []byte {
	t.Helper()
	env := EventEnvelope[OrderStatusChangedPayload]{
		EventName:     EventTypeOrderStatusChanged,
		EventVersion:  1,
		EventID:       "evt-1",
		CorrelationID: "cid-9",
		Producer:      "fulfilment-service",
		PartitionKey:  "user-1",
		Sequence:      &seq,
		Schema:        orderStatusChangedSchema,
		Payload:       OrderStatusChangedPayload{OrderID: "ORD-10042", UserID: "user-1", Status: status},
	}
	body, err := json.Marshal(env)
	require.NoError(t, err)
	return body
}

func TestOrderStatusChangedHandler_UpdatesStore(t *testing.T) {
	var got order.Status
	store := &fakeStatusStore{updateFn: func(_ context.Context, userID, orderID string, status order.Status) error {
		assert.Equal(t, "user-1", userID)
		assert.Equal(t, "ORD-10042", orderID)
		got = status
		return nil
	}}
	cp := NewMemoryCheckpoints()
	h := OrderStatusChangedHandler(store, cp, zap.NewNop())

	require.NoError(t, h(context.Background(), statusEvent(t, "shipped", 1)))
	assert.Equal(t, order.StatusShipped, got)
	assert.Equal(t, "cid-9", store.lastCID)

	last, ok, _ := cp.GetLastSequence(context.Background(), statusChangedConsumerName, "user-1")
	require.True(t, ok)
	assert.Equal(t, int64(1), last)
}

func TestOrderStatusChangedHandler_SkipsReplays(t *testing.T) {
	store := &fakeStatusStore{}
	h := OrderStatusChangedHandler(store, NewMemoryCheckpoints(), zap.NewNop())
	ctx := context.Background()

	require.NoError(t, h(ctx, statusEvent(t, "shipped", 3)))
	require.NoError(t, h(ctx, statusEvent(t, "processing", 2)))
	require.NoError(t, h(ctx, statusEvent(t, "shipped", 3)))
	assert.Equal(t, 1, store.calls)

	require.NoError(t, h(ctx, statusEvent(t, "delivered", 4)))
	assert.Equal(t, 2, store.calls)
}

func TestOrderStatusChangedHandler_Rejects(t *testing.T) {
	h := OrderStatusChangedHandler(&fakeStatusStore{}, nil, zap.NewNop())
	ctx := context.Background()

	require.Error(t, h(ctx, []byte("{not json")))
	require.ErrorContains(t, h(ctx, statusEvent(t, "teleported", 1)), "unknown status")

	wrong := EventEnvelope[OrderStatusChangedPayload]{EventName: EventTypeOrderPlaced, EventVersion: 1, PartitionKey: "user-1"}
	body, _ := json.Marshal(wrong)
	require.ErrorContains(t, h(ctx, body), "unexpected eventName")
}

func TestOrderStatusChangedHandler_UnknownOrderIsAcked(t *testing.T) {
	store := &fakeStatusStore{updateFn: func(context.Context, string, string, order.Status) error {
		return order.ErrNotFound
	}}
	cp := NewMemoryCheckpoints()
	h := OrderStatusChangedHandler(store, cp, zap.NewNop())

	require.NoError(t, h(context.Background(), statusEvent(t, "shipped", 1)))
	_, ok, _ := cp.GetLastSequence(context.Background(), statusChangedConsumerName, "user-1")
	assert.False(t, ok)
}

func TestOrderStatusChangedHandler_StoreErrorPropagates(t *testing.T) {
	store := &fakeStatusStore{updateFn: func(context.Context, string, string, order.Status) error {
		return errors.New("deadlock detected")
	}}
	h := OrderStatusChangedHandler(store, NewMemoryCheckpoints(), zap.NewNop())

	require.ErrorContains(t, h(context.Background(), statusEvent(t, "shipped", 1)), "deadlock detected")
}
