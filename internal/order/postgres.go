package order

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"go.uber.org/zap"
)

// PostgresStore keeps one order_books row per user scope holding the whole
// ordered sequence as a JSONB document.
type PostgresStore struct {
	db     *sql.DB
	logger *zap.Logger
}

func NewPostgresStore(db *sql.DB, logger *zap.Logger) *PostgresStore {
	return &PostgresStore{db: db, logger: logger}
}

type queryRower interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// read returns the scope's orders; a scope with no row yields the bootstrap fixture.
func (s *PostgresStore) read(ctx context.Context, q queryRower, userID string, lock bool) ([]Order, error) {
	query := `SELECT schema_version, orders FROM order_books WHERE scope = $1`
	if lock {
		query += ` FOR UPDATE`
	}

	var (
		version int
		raw     []byte
	)
	err := q.QueryRowContext(ctx, query, userID).Scan(&version, &raw)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Bootstrap(userID)
		}
		return nil, fmt.Errorf("select order book: %w", err)
	}
	return loadBook(version, raw, userID, s.logger)
}

func (s *PostgresStore) write(ctx context.Context, tx *sql.Tx, userID string, orders []Order) error {
	body, err := json.Marshal(orders)
	if err != nil {
		return fmt.Errorf("marshal order book: %w", err)
	}
	_, err = tx.ExecContext(ctx, `
		INSERT INTO order_books (scope, schema_version, orders, updated_at)
		VALUES ($1, $2, $3, NOW())
		ON CONFLICT (scope) DO UPDATE
		SET schema_version = EXCLUDED.schema_version, orders = EXCLUDED.orders, updated_at = NOW()
	`, userID, SchemaVersion, body)
	if err != nil {
		return fmt.Errorf("upsert order book: %w", err)
	}
	return nil
}

// mutate runs fn against the locked order book and writes the result back.
func (s *PostgresStore) mutate(ctx context.Context, userID string, fn func([]Order) ([]Order, error)) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	orders, err := s.read(ctx, tx, userID, true)
	if err != nil {
		return err
	}
	orders, err = fn(orders)
	if err != nil {
		return err
	}
	if err := s.write(ctx, tx, userID, orders); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

func (s *PostgresStore) Append(ctx context.Context, userID string, o Order) error {
	return s.mutate(ctx, userID, func(orders []Order) ([]Order, error) {
		return prepend(orders, o)
	})
}

func (s *PostgresStore) UpdateStatus(ctx context.Context, userID, orderID string, status Status) error {
	return s.mutate(ctx, userID, func(orders []Order) ([]Order, error) {
		if err := setStatus(orders, orderID, status); err != nil {
			return nil, err
		}
		return orders, nil
	})
}

func (s *PostgresStore) FindByID(ctx context.Context, userID, orderID string) (Order, error) {
	orders, err := s.read(ctx, s.db, userID, false)
	if err != nil {
		return Order{}, err
	}
	return find(orders, orderID)
}

func (s *PostgresStore) List(ctx context.Context, userID string) ([]Order, error) {
	return s.read(ctx, s.db, userID, false)
}
