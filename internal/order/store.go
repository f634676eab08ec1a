package order

import (
	"context"
	"errors"
	"fmt"
)

var (
	ErrNotFound         = errors.New("order not found")
	ErrDuplicateOrderID = errors.New("order id already exists")
	ErrInvalidOrder     = errors.New("invalid order")
)

// Store is an append-only, per-user order book ordered most-recent-first.
type Store interface {
	Append(ctx context.Context, userID string, o Order) error
	FindByID(ctx context.Context, userID, orderID string) (Order, error)
	List(ctx context.Context, userID string) ([]Order, error)
	UpdateStatus(ctx context.Context, userID, orderID string, status Status) error
}

func prepend(orders []Order, o Order) ([]Order, error) {
	if err := o.Validate(); err != nil {
		return nil, err
	}
	for _, existing := range orders {
		if existing.ID == o.ID {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateOrderID, o.ID)
		}
	}
	out := make([]Order, 0, len(orders)+1)
	out = append(out, o.Clone())
	return append(out, orders...), nil
}

func find(orders []Order, orderID string) (Order, error) {
	for _, o := range orders {
		if o.ID == orderID {
			return o.Clone(), nil
		}
	}
	return Order{}, ErrNotFound
}

func setStatus(orders []Order, orderID string, status Status) error {
	if !status.Valid() {
		return fmt.Errorf("%w: unknown status %q", ErrInvalidOrder, status)
	}
	for i := range orders {
		if orders[i].ID == orderID {
			orders[i].Status = status
			return nil
		}
	}
	return ErrNotFound
}

func cloneAll(orders []Order) []Order {
	out := make([]Order, len(orders))
	for i, o := range orders {
		out[i] = o.Clone()
	}
	return out
}
