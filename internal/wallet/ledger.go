package wallet

import (
	"context"
	"errors"
	"sync"

	"github.com/shopspring/decimal"
)

var (
	ErrInsufficientFunds = errors.New("insufficient wallet funds")
	ErrInvalidAmount     = errors.New("amount must be a positive whole number of kobo")
)

// validAmount reports whether amount is positive with at most two minor digits.
func validAmount(amount decimal.Decimal) bool {
	return amount.IsPositive() && amount.Equal(amount.Round(2))
}

// Ledger owns stored-value balances. Reserve is an atomic check-then-act:
// no other mutation of the same wallet can interleave between reading the
// balance and decrementing it.
type Ledger interface {
	Balance(ctx context.Context, userID string) (decimal.Decimal, error)
	Reserve(ctx context.Context, userID string, amount decimal.Decimal, reference string) (decimal.Decimal, error)
	Credit(ctx context.Context, userID string, amount decimal.Decimal, reference string) (decimal.Decimal, error)
}

type Kind string

const (
	KindDebit  Kind = "debit"
	KindCredit Kind = "credit"
)

type Transaction struct {
	UserID       string
	Kind         Kind
	Amount       decimal.Decimal
	Reference    string
	BalanceAfter decimal.Decimal
}

// MemoryLedger is an in-process ledger guarded by a single mutex.
type MemoryLedger struct {
	mu       sync.Mutex
	balances map[string]decimal.Decimal
	journal  []Transaction
}

func NewMemoryLedger() *MemoryLedger {
	return &MemoryLedger{balances: make(map[string]decimal.Decimal)}
}

// SetBalance overwrites a balance without journaling; for seeding.
func (m *MemoryLedger) SetBalance(userID string, amount decimal.Decimal) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.balances[userID] = amount
}

func (m *MemoryLedger) Balance(_ context.Context, userID string) (decimal.Decimal, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.balances[userID], nil
}

func (m *MemoryLedger) Reserve(ctx context.Context, userID string, amount decimal.Decimal, reference string) (decimal.Decimal, error) {
	if !validAmount(amount) {
		return decimal.Zero, ErrInvalidAmount
	}
	if err := ctx.Err(); err != nil {
		return decimal.Zero, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	balance := m.balances[userID]
	if amount.GreaterThan(balance) {
		return balance, ErrInsufficientFunds
	}
	after := balance.Sub(amount)
	m.balances[userID] = after
	m.journal = append(m.journal, Transaction{UserID: userID, Kind: KindDebit, Amount: amount, Reference: reference, BalanceAfter: after})
	return after, nil
}

func (m *MemoryLedger) Credit(ctx context.Context, userID string, amount decimal.Decimal, reference string) (decimal.Decimal, error) {
	if !validAmount(amount) {
		return decimal.Zero, ErrInvalidAmount
	}
	if err := ctx.Err(); err != nil {
		return decimal.Zero, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	after := m.balances[userID].Add(amount)
	m.balances[userID] = after
	m.journal = append(m.journal, Transaction{UserID: userID, Kind: KindCredit, Amount: amount, Reference: reference, BalanceAfter: after})
	return after, nil
}

// Journal returns a copy of all recorded movements for a user, oldest first.
func (m *MemoryLedger) Journal(userID string) []Transaction {
	m.mu.Lock()
	defer m.mu.Unlock()

	var out []Transaction
	for _, tx := range m.journal {
		if tx.UserID == userID {
			out = append(out, tx)
		}
	}
	return out
}
