package order

import (
	"context"
	"sync"
)

// MemoryStore is the in-process Store used when STORAGE=memory and in tests.
// Books are seeded from the bootstrap fixture on first touch, like PostgresStore.
type MemoryStore struct {
	mu    sync.Mutex
	books map[string][]Order
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{books: make(map[string][]Order)}
}

func (m *MemoryStore) book(userID string) ([]Order, error) {
	if orders, ok := m.books[userID]; ok {
		return orders, nil
	}
	return Bootstrap(userID)
}

func (m *MemoryStore) Append(ctx context.Context, userID string, o Order) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	orders, err := m.book(userID)
	if err != nil {
		return err
	}
	orders, err = prepend(orders, o)
	if err != nil {
		return err
	}
	m.books[userID] = orders
	return nil
}

func (m *MemoryStore) FindByID(_ context.Context, userID, orderID string) (Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	orders, err := m.book(userID)
	if err != nil {
		return Order{}, err
	}
	return find(orders, orderID)
}

func (m *MemoryStore) List(_ context.Context, userID string) ([]Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	orders, err := m.book(userID)
	if err != nil {
		return nil, err
	}
	return cloneAll(orders), nil
}

func (m *MemoryStore) UpdateStatus(_ context.Context, userID, orderID string, status Status) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	orders, err := m.book(userID)
	if err != nil {
		return err
	}
	orders = cloneAll(orders)
	if err := setStatus(orders, orderID, status); err != nil {
		return err
	}
	m.books[userID] = orders
	return nil
}
