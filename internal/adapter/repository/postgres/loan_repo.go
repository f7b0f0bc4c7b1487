package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/iho/pocketledger/internal/domain"
	"github.com/iho/pocketledger/internal/infrastructure/postgres/generated"
	"github.com/iho/pocketledger/internal/usecase"
)

// LoanRepository implements usecase.LoanRepository.
type LoanRepository struct {
	queries *generated.Queries
}

// NewLoanRepository creates a new LoanRepository.
func NewLoanRepository(db generated.DBTX) *LoanRepository {
	return &LoanRepository{queries: generated.New(db)}
}

func (r *LoanRepository) Create(ctx context.Context, tx usecase.Transaction, loan *domain.Loan) error {
	err := queriesFor(tx).CreateLoan(ctx, generated.CreateLoanParams{
		ID:                loan.ID,
		OwnerID:           loan.OwnerID,
		Kind:              string(loan.Kind),
		CounterpartyName:  loan.CounterpartyName,
		Principal:         moneyToNumeric(loan.Principal),
		OutstandingAmount: moneyToNumeric(loan.OutstandingAmount),
		WalletID:          loan.WalletID,
		StartDate:         timeToPgTimestamptz(loan.StartDate),
		DueDate:           optionalTimestamptz(loan.DueDate),
		Status:            string(loan.Status),
		Note:              loan.Note,
		CreatedAt:         timeToPgTimestamptz(loan.CreatedAt),
		UpdatedAt:         timeToPgTimestamptz(loan.UpdatedAt),
	})

	return mapError("create loan", err)
}

// GetByID retrieves a loan, deleted or not.
func (r *LoanRepository) GetByID(ctx context.Context, id string) (*domain.Loan, error) {
	row, err := r.queries.GetLoanByID(ctx, id)
	if err != nil {
		return nil, loanLookupError("get loan", id, err)
	}

	return rowToLoan(row), nil
}

// GetByIDForUpdate locks the loan row. Callers lock it before any wallet.
func (r *LoanRepository) GetByIDForUpdate(ctx context.Context, tx usecase.Transaction, id string) (*domain.Loan, error) {
	row, err := queriesFor(tx).GetLoanByIDForUpdate(ctx, id)
	if err != nil {
		return nil, loanLookupError("lock loan", id, err)
	}

	return rowToLoan(row), nil
}

func (r *LoanRepository) UpdateOutstanding(ctx context.Context, tx usecase.Transaction, id string, outstanding domain.Money, status domain.LoanStatus, updatedAt time.Time) error {
	n, err := queriesFor(tx).UpdateLoanOutstanding(ctx, generated.UpdateLoanOutstandingParams{
		ID:                id,
		OutstandingAmount: moneyToNumeric(outstanding),
		Status:            string(status),
		UpdatedAt:         timeToPgTimestamptz(updatedAt),
	})
	if err != nil {
		return mapError("update loan outstanding", err)
	}
	if n == 0 {
		return &domain.LoanNotFoundError{LoanID: id}
	}

	return nil
}

func (r *LoanRepository) SoftDelete(ctx context.Context, tx usecase.Transaction, id string, deletedAt time.Time) error {
	n, err := queriesFor(tx).SoftDeleteLoan(ctx, generated.SoftDeleteLoanParams{
		ID:        id,
		DeletedAt: timeToPgTimestamptz(deletedAt),
	})
	if err != nil {
		return mapError("delete loan", err)
	}
	if n == 0 {
		return &domain.LoanNotFoundError{LoanID: id}
	}

	return nil
}

// List lists visible loans, newest first.
func (r *LoanRepository) List(ctx context.Context, filter domain.LoanFilter) ([]*domain.Loan, error) {
	params := generated.ListLoansParams{
		OwnerID:   filter.OwnerID,
		RowLimit:  pageLimit(filter.Limit),
		RowOffset: int32(filter.Offset),
	}
	if filter.Kind != nil {
		params.Kind = pgtype.Text{String: string(*filter.Kind), Valid: true}
	}
	if filter.Status != nil {
		params.Status = pgtype.Text{String: string(*filter.Status), Valid: true}
	}

	rows, err := r.queries.ListLoans(ctx, params)
	if err != nil {
		return nil, mapError("list loans", err)
	}

	loans := make([]*domain.Loan, 0, len(rows))
	for _, row := range rows {
		loans = append(loans, rowToLoan(row))
	}

	return loans, nil
}

// Stats aggregates open loans per kind.
func (r *LoanRepository) Stats(ctx context.Context, ownerID string) (*domain.LoanStats, error) {
	rows, err := r.queries.LoanStats(ctx, ownerID)
	if err != nil {
		return nil, mapError("loan stats", err)
	}

	stats := &domain.LoanStats{}
	for _, row := range rows {
		bucket := &stats.YouOwe
		if domain.LoanKind(row.Kind) == domain.LoanKindOwedToYou {
			bucket = &stats.OwedToYou
		}
		bucket.Count = row.OpenCount
		bucket.TotalAmount = numericToMoney(row.OpenTotal)
		stats.TotalLoans += row.Total
	}

	return stats, nil
}

func loanLookupError(op, id string, err error) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return &domain.LoanNotFoundError{LoanID: id}
	}
	return mapError(op, err)
}

func rowToLoan(row generated.Loan) *domain.Loan {
	return &domain.Loan{
		ID:                row.ID,
		OwnerID:           row.OwnerID,
		Kind:              domain.LoanKind(row.Kind),
		CounterpartyName:  row.CounterpartyName,
		Principal:         numericToMoney(row.Principal),
		OutstandingAmount: numericToMoney(row.OutstandingAmount),
		WalletID:          row.WalletID,
		StartDate:         row.StartDate.Time,
		DueDate:           timestamptzPtr(row.DueDate),
		Status:            domain.LoanStatus(row.Status),
		Note:              row.Note,
		DeletedAt:         timestamptzPtr(row.DeletedAt),
		CreatedAt:         row.CreatedAt.Time,
		UpdatedAt:         row.UpdatedAt.Time,
	}
}
