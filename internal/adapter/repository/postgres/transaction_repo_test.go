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

var transactionColumns = []string{
	"id", "owner_id", "type", "transaction_date", "category_id", "amount",
	"note", "loan_id", "loan_payment_id", "deleted_at", "created_at",
}

var listColumns = append(append([]string{}, transactionColumns...), "total_count")

func transactionRow(id string, paymentID *string) []any {
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	return []any{
		id, "owner-1", "expense", timeToPgTimestamptz(now), pgtype.Text{String: "cat-1", Valid: true},
		moneyToNumeric(domain.MustParseMoney("42.50")), "lunch", pgtype.Text{},
		optionalText(paymentID), pgtype.Timestamptz{}, timeToPgTimestamptz(now),
	}
}

func TestTransactionRepository_GetByID(t *testing.T) {
	pool := newMockPool(t)
	paymentID := "pay-1"
	pool.ExpectQuery("LEFT JOIN loan_payments lp ON lp.transaction_id = t.id\\s+WHERE t.id = \\$1").
		WithArgs("tx-1").
		WillReturnRows(pgxmock.NewRows(transactionColumns).AddRow(transactionRow("tx-1", &paymentID)...))

	txn, err := NewTransactionRepository(pool).GetByID(context.Background(), "tx-1")
	require.NoError(t, err)
	assert.Equal(t, domain.TransactionTypeExpense, txn.Type)
	assert.Equal(t, "42.50", txn.Amount.String())
	require.NotNil(t, txn.CategoryID)
	assert.Equal(t, "cat-1", *txn.CategoryID)
	assert.Nil(t, txn.LoanID)
	require.NotNil(t, txn.LoanPaymentID)
	assert.True(t, txn.IsLoanRelated())
	assert.False(t, txn.IsDeleted())

	assertExpectations(t, pool)
}

func TestTransactionRepository_GetByIDForUpdateNotFound(t *testing.T) {
	pool := newMockPool(t)
	tx := beginMockTx(t, pool)

	pool.ExpectQuery("FOR UPDATE OF t").
		WithArgs("tx-missing").
		WillReturnError(pgx.ErrNoRows)

	_, err := NewTransactionRepository(pool).GetByIDForUpdate(context.Background(), tx, "tx-missing")
	assert.ErrorIs(t, err, domain.ErrTransactionNotFound)
}

func TestTransactionRepository_CreateDuplicateLoanReference(t *testing.T) {
	pool := newMockPool(t)
	tx := beginMockTx(t, pool)
	loanID := "loan-1"

	pool.ExpectExec("INSERT INTO transactions").
		WithArgs("tx-1", "owner-1", "expense", pgxmock.AnyArg(), pgtype.Text{}, pgxmock.AnyArg(), "",
			pgtype.Text{String: loanID, Valid: true}, pgxmock.AnyArg()).
		WillReturnError(&pgconn.PgError{Code: pgErrUniqueViolation, ConstraintName: "transactions_loan_id_key"})

	err := NewTransactionRepository(pool).Create(context.Background(), tx, &domain.Transaction{
		ID:              "tx-1",
		OwnerID:         "owner-1",
		Type:            domain.TransactionTypeExpense,
		TransactionDate: time.Now(),
		Amount:          domain.MustParseMoney("1"),
		LoanID:          &loanID,
		CreatedAt:       time.Now(),
	})

	var conflict *domain.ConflictError
	require.ErrorAs(t, err, &conflict)
	assert.Equal(t, "transactions_loan_id_key", conflict.Constraint)

	assertExpectations(t, pool)
}

func TestTransactionRepository_SoftDeleteAlreadyDeleted(t *testing.T) {
	pool := newMockPool(t)
	tx := beginMockTx(t, pool)

	pool.ExpectExec("UPDATE transactions SET deleted_at").
		WithArgs("tx-1", pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))

	err := NewTransactionRepository(pool).SoftDelete(context.Background(), tx, "tx-1", time.Now())
	assert.ErrorIs(t, err, domain.ErrTransactionNotFound)
}

func TestTransactionRepository_List(t *testing.T) {
	pool := newMockPool(t)
	txType := domain.TransactionTypeExpense
	walletID := "w-1"

	// page and total come from one statement
	pool.ExpectQuery("COUNT\\(\\*\\) OVER \\(\\) AS total_count").
		WithArgs("owner-1", pgtype.Text{String: "expense", Valid: true}, pgtype.Timestamptz{}, pgtype.Timestamptz{},
			pgtype.Text{}, pgtype.Text{String: walletID, Valid: true}, true, int32(2), int32(4)).
		WillReturnRows(pgxmock.NewRows(listColumns).
			AddRow(append(transactionRow("tx-2", nil), int64(7))...).
			AddRow(append(transactionRow("tx-1", nil), int64(7))...))

	items, total, err := NewTransactionRepository(pool).List(context.Background(), domain.TransactionFilter{
		OwnerID:            "owner-1",
		Type:               &txType,
		WalletID:           &walletID,
		ExcludeLoanRelated: true,
		Limit:              2,
		Offset:             4,
	})
	require.NoError(t, err)
	assert.Equal(t, int64(7), total)
	require.Len(t, items, 2)
	assert.Equal(t, "tx-2", items[0].ID)

	assertExpectations(t, pool)
}

func TestTransactionRepository_ListPastTheEndCounts(t *testing.T) {
	pool := newMockPool(t)

	pool.ExpectQuery("COUNT\\(\\*\\) OVER").
		WithArgs("owner-1", pgtype.Text{}, pgtype.Timestamptz{}, pgtype.Timestamptz{},
			pgtype.Text{}, pgtype.Text{}, false, int32(10), int32(50)).
		WillReturnRows(pgxmock.NewRows(listColumns))
	pool.ExpectQuery("SELECT COUNT\\(\\*\\)\\s+FROM transactions").
		WithArgs("owner-1", pgtype.Text{}, pgtype.Timestamptz{}, pgtype.Timestamptz{},
			pgtype.Text{}, pgtype.Text{}, false).
		WillReturnRows(pgxmock.NewRows([]string{"count"}).AddRow(int64(12)))

	items, total, err := NewTransactionRepository(pool).List(context.Background(), domain.TransactionFilter{
		OwnerID: "owner-1",
		Limit:   10,
		Offset:  50,
	})
	require.NoError(t, err)
	assert.Empty(t, items)
	assert.Equal(t, int64(12), total)

	assertExpectations(t, pool)
}

func TestTransactionRepository_ListEmptyFirstPageSkipsCount(t *testing.T) {
	pool := newMockPool(t)

	pool.ExpectQuery("COUNT\\(\\*\\) OVER").
		WithArgs("owner-1", pgtype.Text{}, pgtype.Timestamptz{}, pgtype.Timestamptz{},
			pgtype.Text{}, pgtype.Text{}, false, int32(10), int32(0)).
		WillReturnRows(pgxmock.NewRows(listColumns))

	items, total, err := NewTransactionRepository(pool).List(context.Background(), domain.TransactionFilter{
		OwnerID: "owner-1",
		Limit:   10,
	})
	require.NoError(t, err)
	assert.Empty(t, items)
	assert.Zero(t, total)

	assertExpectations(t, pool)
}
