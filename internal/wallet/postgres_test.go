package wallet

import (
	"context"
	"errors"
	"regexp"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v3"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMock(t *testing.T) pgxmock.PgxPoolIface {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(mock.Close)
	return mock
}

func TestPostgresLedger_Balance(t *testing.T) {
	mock := newMock(t)
	mock.ExpectQuery(regexp.QuoteMeta(`FROM wallets WHERE user_id=$1`)).
		WithArgs("user-1").
		WillReturnRows(pgxmock.NewRows([]string{"balance"}).AddRow("150000.00"))

	got, err := NewPostgresLedger(mock).Balance(context.Background(), "user-1")
	require.NoError(t, err)
	assert.True(t, dec(150_000).Equal(got))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresLedger_BalanceMissingWalletIsZero(t *testing.T) {
	mock := newMock(t)
	mock.ExpectQuery(regexp.QuoteMeta(`FROM wallets WHERE user_id=$1`)).
		WithArgs("user-new").
		WillReturnError(pgx.ErrNoRows)

	got, err := NewPostgresLedger(mock).Balance(context.Background(), "user-new")
	require.NoError(t, err)
	assert.True(t, got.IsZero())
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresLedger_Reserve(t *testing.T) {
	ctx := context.Background()

	t.Run("debits and journals atomically", func(t *testing.T) {
		mock := newMock(t)
		mock.ExpectBegin()
		mock.ExpectQuery(regexp.QuoteMeta(`FOR UPDATE`)).
			WithArgs("user-1").
			WillReturnRows(pgxmock.NewRows([]string{"balance"}).AddRow("150000.00"))
		mock.ExpectExec(regexp.QuoteMeta(`UPDATE wallets`)).
			WithArgs("user-1", "105000.00").
			WillReturnResult(pgxmock.NewResult("UPDATE", 1))
		mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO wallet_transactions`)).
			WithArgs(pgxmock.AnyArg(), "user-1", "debit", "45000.00", "order-1", "105000.00").
			WillReturnResult(pgxmock.NewResult("INSERT", 1))
		mock.ExpectCommit()

		after, err := NewPostgresLedger(mock).Reserve(ctx, "user-1", dec(45_000), "order-1")
		require.NoError(t, err)
		assert.True(t, dec(105_000).Equal(after))
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("insufficient balance rolls back without mutation", func(t *testing.T) {
		mock := newMock(t)
		mock.ExpectBegin()
		mock.ExpectQuery(regexp.QuoteMeta(`FOR UPDATE`)).
			WithArgs("user-1").
			WillReturnRows(pgxmock.NewRows([]string{"balance"}).AddRow("100000.00"))
		mock.ExpectRollback()

		_, err := NewPostgresLedger(mock).Reserve(ctx, "user-1", dec(150_000), "order-1")
		require.ErrorIs(t, err, ErrInsufficientFunds)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("missing wallet is insufficient", func(t *testing.T) {
		mock := newMock(t)
		mock.ExpectBegin()
		mock.ExpectQuery(regexp.QuoteMeta(`FOR UPDATE`)).
			WithArgs("user-none").
			WillReturnError(pgx.ErrNoRows)
		mock.ExpectRollback()

		_, err := NewPostgresLedger(mock).Reserve(ctx, "user-none", dec(1), "order-1")
		require.ErrorIs(t, err, ErrInsufficientFunds)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("update failure rolls back", func(t *testing.T) {
		mock := newMock(t)
		mock.ExpectBegin()
		mock.ExpectQuery(regexp.QuoteMeta(`FOR UPDATE`)).
			WithArgs("user-1").
			WillReturnRows(pgxmock.NewRows([]string{"balance"}).AddRow("10.00"))
		mock.ExpectExec(regexp.QuoteMeta(`UPDATE wallets`)).
			WillReturnError(errors.New("boom"))
		mock.ExpectRollback()

		_, err := NewPostgresLedger(mock).Reserve(ctx, "user-1", dec(5), "order-1")
		require.Error(t, err)
		require.NotErrorIs(t, err, ErrInsufficientFunds)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("non-positive amount never touches the database", func(t *testing.T) {
		mock := newMock(t)
		_, err := NewPostgresLedger(mock).Reserve(ctx, "user-1", dec(0), "order-1")
		require.ErrorIs(t, err, ErrInvalidAmount)
		require.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestPostgresLedger_Credit(t *testing.T) {
	mock := newMock(t)
	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO wallets`)).
		WithArgs("user-1", "45000.00").
		WillReturnRows(pgxmock.NewRows([]string{"balance"}).AddRow("150000.00"))
	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO wallet_transactions`)).
		WithArgs(pgxmock.AnyArg(), "user-1", "credit", "45000.00", "compensation:order-1", "150000.00").
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectCommit()

	after, err := NewPostgresLedger(mock).Credit(context.Background(), "user-1", dec(45_000), "compensation:order-1")
	require.NoError(t, err)
	assert.True(t, dec(150_000).Equal(after))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresLedger_RejectsFractionalKobo(t *testing.T) {
	mock := newMock(t)
	l := NewPostgresLedger(mock)
	amount := decimal.RequireFromString("45000.005")

	_, err := l.Reserve(context.Background(), "user-1", amount, "order-1")
	require.ErrorIs(t, err, ErrInvalidAmount)
	_, err = l.Credit(context.Background(), "user-1", amount, "compensation:order-1")
	require.ErrorIs(t, err, ErrInvalidAmount)

	require.NoError(t, mock.ExpectationsWereMet())
}
