package cart

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type Repository interface {
	GetCart(ctx context.Context, userID string) (*Cart, error)
	UpsertCart(ctx context.Context, c *Cart) error
	ClearCart(ctx context.Context, userID string) error
}

type repo struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) Repository {
	return &repo{db: db}
}

func (r *repo) GetCart(ctx context.Context, userID string) (*Cart, error) {
	const cartQuery = `SELECT id, user_id, updated_at FROM carts WHERE user_id = $1`

	var c Cart
	err := r.db.QueryRowContext(ctx, cartQuery, userID).Scan(&c.ID, &c.UserID, &c.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("select cart: %w", err)
	}

	rows, err := r.db.QueryContext(ctx,
		`SELECT id, product_id, name, quantity, list_price, negotiated_price
         FROM cart_items WHERE cart_id = $1 ORDER BY position`, c.ID)
	if err != nil {
		return nil, fmt.Errorf("select cart_items: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			it         Item
			negotiated decimal.NullDecimal
		)
		if err := rows.Scan(&it.LineID, &it.ProductID, &it.Name, &it.Quantity, &it.ListPrice, &negotiated); err != nil {
			return nil, fmt.Errorf("scan cart_item: %w", err)
		}
		if negotiated.Valid {
			p := negotiated.Decimal
			it.NegotiatedPrice = &p
		}
		c.Items = append(c.Items, it)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows: %w", err)
	}

	c.Subtotal = Subtotal(c.Items)
	return &c, nil
}

func (r *repo) UpsertCart(ctx context.Context, c *Cart) (err error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if c.ID == "" {
		c.ID = uuid.NewString()
	}

	const upsertCartSQL = `
INSERT INTO carts (id, user_id, updated_at)
VALUES ($1, $2, NOW())
ON CONFLICT (user_id) DO UPDATE
SET updated_at = NOW()
RETURNING id, updated_at
`
	if err = tx.QueryRowContext(ctx, upsertCartSQL, c.ID, c.UserID).Scan(&c.ID, &c.UpdatedAt); err != nil {
		return fmt.Errorf("upsert cart: %w", err)
	}

	if _, err = tx.ExecContext(ctx, `DELETE FROM cart_items WHERE cart_id = $1`, c.ID); err != nil {
		return fmt.Errorf("delete cart_items: %w", err)
	}

	for i := range c.Items {
		it := &c.Items[i]
		if it.LineID == "" {
			it.LineID = uuid.NewString()
		}
		negotiated := decimal.NullDecimal{}
		if it.NegotiatedPrice != nil {
			negotiated = decimal.NewNullDecimal(*it.NegotiatedPrice)
		}
		if _, err = tx.ExecContext(ctx,
			`INSERT INTO cart_items (id, cart_id, product_id, name, quantity, list_price, negotiated_price, position)
             VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
			it.LineID, c.ID, it.ProductID, it.Name, it.Quantity, it.ListPrice, negotiated, i,
		); err != nil {
			return fmt.Errorf("insert cart_item: %w", err)
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	c.Subtotal = Subtotal(c.Items)
	return nil
}

func (r *repo) ClearCart(ctx context.Context, userID string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM carts WHERE user_id = $1`, userID); err != nil {
		return fmt.Errorf("clear cart: %w", err)
	}
	return nil
}

// MemoryRepository keeps carts in process; used when STORAGE=memory and in tests.
type MemoryRepository struct {
	mu    sync.Mutex
	carts map[string]Cart
	now   func() time.Time
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		carts: make(map[string]Cart),
		now:   func() time.Time { return time.Now().UTC() },
	}
}

func (m *MemoryRepository) GetCart(_ context.Context, userID string) (*Cart, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	c, ok := m.carts[userID]
	if !ok {
		return nil, nil
	}
	c.Items = CloneItems(c.Items)
	c.Subtotal = Subtotal(c.Items)
	return &c, nil
}

func (m *MemoryRepository) UpsertCart(_ context.Context, c *Cart) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if existing, ok := m.carts[c.UserID]; ok {
		c.ID = existing.ID
	} else if c.ID == "" {
		c.ID = uuid.NewString()
	}
	for i := range c.Items {
		if c.Items[i].LineID == "" {
			c.Items[i].LineID = uuid.NewString()
		}
	}
	c.UpdatedAt = m.now()
	c.Subtotal = Subtotal(c.Items)

	stored := *c
	stored.Items = CloneItems(c.Items)
	m.carts[c.UserID] = stored
	return nil
}

func (m *MemoryRepository) ClearCart(_ context.Context, userID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.carts, userID)
	return nil
}
