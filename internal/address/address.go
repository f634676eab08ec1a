package address

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"
)

type Address struct {
	ID        string `json:"id"`
	UserID    string `json:"userId"`
	Label     string `json:"label"`
	Recipient string `json:"recipient"`
	Phone     string `json:"phone"`
	Line1     string `json:"line1"`
	City      string `json:"city"`
	State     string `json:"state"`
}

// Book resolves the address currently selected for checkout. Address CRUD
// lives elsewhere; this is read-only.
type Book interface {
	Selected(ctx context.Context, userID string) (*Address, error)
}

type repo struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) Book {
	return &repo{db: db}
}

// Selected returns nil, nil when the user has no selected address.
func (r *repo) Selected(ctx context.Context, userID string) (*Address, error) {
	var a Address
	err := r.db.QueryRowContext(ctx,
		`SELECT id, user_id, label, recipient, phone, line1, city, state
         FROM addresses WHERE user_id = $1 AND is_selected`,
		userID,
	).Scan(&a.ID, &a.UserID, &a.Label, &a.Recipient, &a.Phone, &a.Line1, &a.City, &a.State)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("select address: %w", err)
	}
	return &a, nil
}

// MemoryBook holds one selected address per user.
type MemoryBook struct {
	mu       sync.RWMutex
	selected map[string]Address
}

func NewMemoryBook() *MemoryBook {
	return &MemoryBook{selected: make(map[string]Address)}
}

func (m *MemoryBook) Select(a Address) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.selected[a.UserID] = a
}

func (m *MemoryBook) Selected(_ context.Context, userID string) (*Address, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	a, ok := m.selected[userID]
	if !ok {
		return nil, nil
	}
	return &a, nil
}
