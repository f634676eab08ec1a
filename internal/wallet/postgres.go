package wallet

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

// DBPool matches the methods from *pgxpool.Pool that we use.
// This allows us to mock the database in tests.
type DBPool interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	BeginTx(ctx context.Context, txOptions pgx.TxOptions) (pgx.Tx, error)
}

type PostgresLedger struct {
	pool DBPool
}

func NewPostgresLedger(pool DBPool) *PostgresLedger {
	return &PostgresLedger{pool: pool}
}

func (l *PostgresLedger) Balance(ctx context.Context, userID string) (decimal.Decimal, error) {
	var raw string
	err := l.pool.QueryRow(ctx, `SELECT balance::text FROM wallets WHERE user_id=$1`, userID).Scan(&raw)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return decimal.Zero, nil
		}
		return decimal.Zero, fmt.Errorf("select balance: %w", err)
	}
	return parseAmount(raw)
}

// Reserve locks the wallet row (SELECT ... FOR UPDATE), checks the balance and
// decrements it in the same transaction. A short balance rolls back with no mutation.
func (l *PostgresLedger) Reserve(ctx context.Context, userID string, amount decimal.Decimal, reference string) (decimal.Decimal, error) {
	if !validAmount(amount) {
		return decimal.Zero, ErrInvalidAmount
	}

	tx, err := l.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return decimal.Zero, fmt.Errorf("begin tx: %w", err)
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback(ctx)
		}
	}()

	var raw string
	err = tx.QueryRow(ctx, `
		SELECT balance::text
		FROM wallets
		WHERE user_id=$1
		FOR UPDATE
	`, userID).Scan(&raw)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return decimal.Zero, ErrInsufficientFunds
		}
		return decimal.Zero, fmt.Errorf("lock wallet: %w", err)
	}
	balance, err := parseAmount(raw)
	if err != nil {
		return decimal.Zero, err
	}
	if amount.GreaterThan(balance) {
		return balance, ErrInsufficientFunds
	}

	after := balance.Sub(amount)
	if _, err := tx.Exec(ctx, `
		UPDATE wallets
		SET balance = $2, updated_at = now()
		WHERE user_id = $1
	`, userID, after.StringFixed(2)); err != nil {
		return decimal.Zero, fmt.Errorf("debit wallet: %w", err)
	}
	if err := insertJournal(ctx, tx, userID, KindDebit, amount, reference, after); err != nil {
		return decimal.Zero, err
	}

	if err := tx.Commit(ctx); err != nil {
		return decimal.Zero, fmt.Errorf("commit: %w", err)
	}
	committed = true
	return after, nil
}

func (l *PostgresLedger) Credit(ctx context.Context, userID string, amount decimal.Decimal, reference string) (decimal.Decimal, error) {
	if !validAmount(amount) {
		return decimal.Zero, ErrInvalidAmount
	}

	tx, err := l.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return decimal.Zero, fmt.Errorf("begin tx: %w", err)
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback(ctx)
		}
	}()

	var raw string
	if err := tx.QueryRow(ctx, `
		INSERT INTO wallets (user_id, balance)
		VALUES ($1, $2)
		ON CONFLICT (user_id) DO UPDATE SET balance = wallets.balance + EXCLUDED.balance, updated_at = now()
		RETURNING balance::text
	`, userID, amount.StringFixed(2)).Scan(&raw); err != nil {
		return decimal.Zero, fmt.Errorf("credit wallet: %w", err)
	}
	after, err := parseAmount(raw)
	if err != nil {
		return decimal.Zero, err
	}
	if err := insertJournal(ctx, tx, userID, KindCredit, amount, reference, after); err != nil {
		return decimal.Zero, err
	}

	if err := tx.Commit(ctx); err != nil {
		return decimal.Zero, fmt.Errorf("commit: %w", err)
	}
	committed = true
	return after, nil
}

func insertJournal(ctx context.Context, tx pgx.Tx, userID string, kind Kind, amount decimal.Decimal, reference string, after decimal.Decimal) error {
	_, err := tx.Exec(ctx, `
		INSERT INTO wallet_transactions (id, user_id, kind, amount, reference, balance_after)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, uuid.NewString(), userID, string(kind), amount.StringFixed(2), reference, after.StringFixed(2))
	if err != nil {
		return fmt.Errorf("insert wallet_transaction: %w", err)
	}
	return nil
}

func parseAmount(raw string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero, fmt.Errorf("parse balance %q: %w", raw, err)
	}
	return d, nil
}
