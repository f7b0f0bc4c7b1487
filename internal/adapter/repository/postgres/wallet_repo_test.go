package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iho/pocketledger/internal/domain"
)

var walletColumns = []string{
	"id", "owner_id", "name", "kind", "opening_balance", "current_balance",
	"archived", "version", "created_at", "updated_at",
}

func walletRow(id, balance string) []any {
	now := time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)
	return []any{
		id, "owner-1", "Main", "bank",
		moneyToNumeric(domain.MustParseMoney("100")), moneyToNumeric(domain.MustParseMoney(balance)),
		false, int64(3), timeToPgTimestamptz(now), timeToPgTimestamptz(now),
	}
}

func TestWalletRepository_GetByID(t *testing.T) {
	pool := newMockPool(t)
	pool.ExpectQuery("FROM wallets WHERE id = \\$1").
		WithArgs("w-1").
		WillReturnRows(pgxmock.NewRows(walletColumns).AddRow(walletRow("w-1", "87.15")...))

	wallet, err := NewWalletRepository(pool).GetByID(context.Background(), "w-1")
	require.NoError(t, err)
	assert.Equal(t, "87.15", wallet.CurrentBalance.String())
	assert.Equal(t, "100.00", wallet.OpeningBalance.String())
	assert.Equal(t, domain.WalletKindBank, wallet.Kind)
	assert.Equal(t, int64(3), wallet.Version)

	assertExpectations(t, pool)
}

func TestWalletRepository_GetByIDNotFound(t *testing.T) {
	pool := newMockPool(t)
	pool.ExpectQuery("FROM wallets WHERE id = \\$1").
		WithArgs("w-missing").
		WillReturnError(pgx.ErrNoRows)

	_, err := NewWalletRepository(pool).GetByID(context.Background(), "w-missing")
	assert.ErrorIs(t, err, domain.ErrWalletNotFound)
}

func TestWalletRepository_GetByIDsForUpdate(t *testing.T) {
	pool := newMockPool(t)
	tx := beginMockTx(t, pool)

	pool.ExpectQuery("WHERE id = ANY\\(\\$1::text\\[\\]\\)\\s+ORDER BY id\\s+FOR UPDATE").
		WithArgs([]string{"w-1", "w-2"}).
		WillReturnRows(pgxmock.NewRows(walletColumns).
			AddRow(walletRow("w-1", "10")...).
			AddRow(walletRow("w-2", "20")...))

	wallets, err := NewWalletRepository(pool).GetByIDsForUpdate(context.Background(), tx, []string{"w-1", "w-2"})
	require.NoError(t, err)
	require.Len(t, wallets, 2)
	assert.Equal(t, "w-1", wallets[0].ID)
	assert.Equal(t, "20.00", wallets[1].CurrentBalance.String())

	assertExpectations(t, pool)
}

func TestWalletRepository_UpdateBalance(t *testing.T) {
	pool := newMockPool(t)
	tx := beginMockTx(t, pool)
	repo := NewWalletRepository(pool)
	now := time.Now().UTC()

	pool.ExpectExec("UPDATE wallets\\s+SET current_balance").
		WithArgs("w-1", pgxmock.AnyArg(), pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	require.NoError(t, repo.UpdateBalance(context.Background(), tx, "w-1", domain.MustParseMoney("12.34"), now))

	pool.ExpectExec("UPDATE wallets\\s+SET current_balance").
		WithArgs("w-gone", pgxmock.AnyArg(), pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))
	err := repo.UpdateBalance(context.Background(), tx, "w-gone", domain.MustParseMoney("1"), now)
	assert.ErrorIs(t, err, domain.ErrWalletNotFound)

	pool.ExpectExec("UPDATE wallets\\s+SET current_balance").
		WithArgs("w-1", pgxmock.AnyArg(), pgxmock.AnyArg()).
		WillReturnError(&pgconn.PgError{Code: pgErrCheckViolation, ConstraintName: "wallets_current_balance_check"})
	err = repo.UpdateBalance(context.Background(), tx, "w-1", domain.MustParseMoney("-1"), now)
	assert.ErrorIs(t, err, domain.ErrConflict)

	assertExpectations(t, pool)
}

func TestWalletRepository_ListByOwner(t *testing.T) {
	pool := newMockPool(t)
	pool.ExpectQuery("FROM wallets\\s+WHERE owner_id = \\$1").
		WithArgs("owner-1", true).
		WillReturnRows(pgxmock.NewRows(walletColumns).AddRow(walletRow("w-1", "5")...))

	wallets, err := NewWalletRepository(pool).ListByOwner(context.Background(), "owner-1", true)
	require.NoError(t, err)
	require.Len(t, wallets, 1)

	assertExpectations(t, pool)
}

func TestMoneyNumericRoundTrip(t *testing.T) {
	for _, s := range []string{"0.00", "0.01", "-7.30", "1000000.99"} {
		m := domain.MustParseMoney(s)
		assert.Equal(t, s, numericToMoney(moneyToNumeric(m)).String())
	}
	assert.True(t, numericToMoney(pgtype.Numeric{}).IsZero())
}
