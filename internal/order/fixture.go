package order

import (
	_ "embed"
	"fmt"

	"go.uber.org/zap"
)

// bootstrapJSON seeds an order book that has never been written.
//
//go:embed fixtures/bootstrap.json
var bootstrapJSON []byte

const bootstrapSchemaVersion = 1

// Bootstrap returns the fixture orders normalized and scoped to userID.
func Bootstrap(userID string) ([]Order, error) {
	orders, err := decodeOrders(bootstrapSchemaVersion, bootstrapJSON)
	if err != nil {
		return nil, fmt.Errorf("bootstrap fixture: %w", err)
	}
	for i := range orders {
		orders[i].UserID = userID
	}
	return orders, nil
}

// loadBook decodes a stored book, falling back to the fixture when the
// document can't be read. Invariant violations on individual orders are
// logged, not dropped.
func loadBook(version int, raw []byte, userID string, logger *zap.Logger) ([]Order, error) {
	orders, err := decodeOrders(version, raw)
	if err != nil {
		logger.Warn("order book unreadable, falling back to bootstrap fixture",
			zap.String("user_id", userID),
			zap.Int("schema_version", version),
			zap.Error(err))
		return Bootstrap(userID)
	}
	for _, o := range orders {
		if err := o.Validate(); err != nil {
			logger.Warn("stored order violates invariants",
				zap.String("user_id", userID),
				zap.String("order_id", o.ID),
				zap.Error(err))
		}
	}
	return orders, nil
}
