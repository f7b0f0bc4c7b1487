package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iho/pocketledger/internal/domain"
)

var loanColumns = []string{
	"id", "owner_id", "kind", "counterparty_name", "principal", "outstanding_amount",
	"wallet_id", "start_date", "due_date", "status", "note", "deleted_at", "created_at", "updated_at",
}

func TestLoanRepository_GetByIDForUpdate(t *testing.T) {
	pool := newMockPool(t)
	tx := beginMockTx(t, pool)
	now := time.Date(2025, 5, 1, 0, 0, 0, 0, time.UTC)

	pool.ExpectQuery("FROM loans WHERE id = \\$1 FOR UPDATE").
		WithArgs("loan-1").
		WillReturnRows(pgxmock.NewRows(loanColumns).AddRow(
			"loan-1", "owner-1", "you_owe", "Bob",
			moneyToNumeric(domain.MustParseMoney("100")), moneyToNumeric(domain.MustParseMoney("60")),
			"w-1", timeToPgTimestamptz(now), pgtype.Timestamptz{}, "open", "", pgtype.Timestamptz{},
			timeToPgTimestamptz(now), timeToPgTimestamptz(now),
		))

	loan, err := NewLoanRepository(pool).GetByIDForUpdate(context.Background(), tx, "loan-1")
	require.NoError(t, err)
	assert.Equal(t, domain.LoanKindYouOwe, loan.Kind)
	assert.Equal(t, "60.00", loan.OutstandingAmount.String())
	assert.Nil(t, loan.DueDate)
	assert.Nil(t, loan.DeletedAt)

	assertExpectations(t, pool)
}

func TestLoanRepository_UpdateOutstandingCheckViolation(t *testing.T) {
	pool := newMockPool(t)
	tx := beginMockTx(t, pool)

	pool.ExpectExec("UPDATE loans\\s+SET outstanding_amount").
		WithArgs("loan-1", pgxmock.AnyArg(), "open", pgxmock.AnyArg()).
		WillReturnError(&pgconn.PgError{Code: pgErrCheckViolation, ConstraintName: "loans_outstanding_check"})

	err := NewLoanRepository(pool).UpdateOutstanding(context.Background(), tx, "loan-1",
		domain.MustParseMoney("-5"), domain.LoanStatusOpen, time.Now())

	var conflict *domain.ConflictError
	require.ErrorAs(t, err, &conflict)
	assert.Equal(t, "loans_outstanding_check", conflict.Constraint)
}

func TestLoanRepository_Stats(t *testing.T) {
	pool := newMockPool(t)
	pool.ExpectQuery("GROUP BY kind").
		WithArgs("owner-1").
		WillReturnRows(pgxmock.NewRows([]string{"kind", "open_count", "open_total", "total"}).
			AddRow("you_owe", int64(2), moneyToNumeric(domain.MustParseMoney("150.50")), int64(3)).
			AddRow("owed_to_you", int64(1), moneyToNumeric(domain.MustParseMoney("20")), int64(1)))

	stats, err := NewLoanRepository(pool).Stats(context.Background(), "owner-1")
	require.NoError(t, err)
	assert.Equal(t, int64(2), stats.YouOwe.Count)
	assert.Equal(t, "150.50", stats.YouOwe.TotalAmount.String())
	assert.Equal(t, int64(1), stats.OwedToYou.Count)
	assert.Equal(t, int64(4), stats.TotalLoans)

	assertExpectations(t, pool)
}

func TestLoanRepository_ListFilters(t *testing.T) {
	pool := newMockPool(t)
	status := domain.LoanStatusOpen

	pool.ExpectQuery("FROM loans\\s+WHERE owner_id = \\$1").
		WithArgs("owner-1", pgtype.Text{}, pgtype.Text{String: "open", Valid: true}, int32(2147483647), int32(0)).
		WillReturnRows(pgxmock.NewRows(loanColumns))

	loans, err := NewLoanRepository(pool).List(context.Background(), domain.LoanFilter{OwnerID: "owner-1", Status: &status})
	require.NoError(t, err)
	assert.Empty(t, loans)

	assertExpectations(t, pool)
}
