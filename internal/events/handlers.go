package events

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/andreasstove999/ecommerce-system/checkout-service-go/internal/http/middleware"
	"github.com/andreasstove999/ecommerce-system/checkout-service-go/internal/order"
)

type StatusUpdater interface {
	UpdateStatus(ctx context.Context, userID, orderID string, status order.Status) error
}

// OrderStatusChangedHandler applies fulfilment status updates to the order
// book. Sequenced events at or below the partition checkpoint are skipped.
func OrderStatusChangedHandler(store StatusUpdater, checkpoints Checkpointer, logger *zap.Logger) HandlerFunc {
	return func(ctx context.Context, body []byte) error {
		var env EventEnvelope[OrderStatusChangedPayload]
		if err := json.Unmarshal(body, &env); err != nil {
			return fmt.Errorf("unmarshal OrderStatusChanged: %w", err)
		}
		if err := env.Validate(EventTypeOrderStatusChanged, 1); err != nil {
			return err
		}

		p := env.Payload
		if p.OrderID == "" || p.UserID == "" {
			return fmt.Errorf("missing orderId or userId")
		}
		status := order.Status(p.Status)
		if !status.Valid() {
			return fmt.Errorf("unknown status %q", p.Status)
		}

		log := logger.With(
			zap.String("order_id", p.OrderID),
			zap.String("partition_key", env.PartitionKey),
			zap.String("correlation_id", env.CorrelationID),
		)
		ctx = middleware.WithCorrelationID(ctx, env.CorrelationID)

		if checkpoints != nil && env.Sequence != nil {
			last, ok, err := checkpoints.GetLastSequence(ctx, statusChangedConsumerName, env.PartitionKey)
			if err != nil {
				return err
			}
			if ok && *env.Sequence <= last {
				log.Info("skip duplicate status event", zap.Int64("seq", *env.Sequence), zap.Int64("last", last))
				return nil
			}
			if ok && *env.Sequence > last+1 {
				log.Warn("sequence gap", zap.Int64("seq", *env.Sequence), zap.Int64("last", last))
			}
		}

		if err := store.UpdateStatus(ctx, p.UserID, p.OrderID, status); err != nil {
			if errors.Is(err, order.ErrNotFound) {
				log.Warn("status change for unknown order")
				return nil
			}
			return fmt.Errorf("update status: %w", err)
		}

		if checkpoints != nil && env.Sequence != nil {
			if err := checkpoints.UpsertLastSequence(ctx, statusChangedConsumerName, env.PartitionKey, *env.Sequence); err != nil {
				return err
			}
		}

		log.Info("order status updated", zap.String("status", p.Status))
		return nil
	}
}
