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

// TransactionRepository implements usecase.TransactionRepository.
type TransactionRepository struct {
	queries *generated.Queries
}

// NewTransactionRepository creates a new TransactionRepository.
func NewTransactionRepository(db generated.DBTX) *TransactionRepository {
	return &TransactionRepository{queries: generated.New(db)}
}

// Create inserts the transaction row. Entries are stored separately.
func (r *TransactionRepository) Create(ctx context.Context, tx usecase.Transaction, transaction *domain.Transaction) error {
	err := queriesFor(tx).CreateTransaction(ctx, generated.CreateTransactionParams{
		ID:              transaction.ID,
		OwnerID:         transaction.OwnerID,
		Type:            string(transaction.Type),
		TransactionDate: timeToPgTimestamptz(transaction.TransactionDate),
		CategoryID:      optionalText(transaction.CategoryID),
		Amount:          moneyToNumeric(transaction.Amount),
		Note:            transaction.Note,
		LoanID:          optionalText(transaction.LoanID),
		CreatedAt:       timeToPgTimestamptz(transaction.CreatedAt),
	})

	return mapError("create transaction", err)
}

// GetByID retrieves a transaction, deleted or not.
func (r *TransactionRepository) GetByID(ctx context.Context, id string) (*domain.Transaction, error) {
	row, err := r.queries.GetTransactionByID(ctx, id)
	if err != nil {
		return nil, transactionLookupError("get transaction", id, err)
	}

	return rowToTransaction(row), nil
}

// GetByIDForUpdate retrieves and locks a transaction row.
func (r *TransactionRepository) GetByIDForUpdate(ctx context.Context, tx usecase.Transaction, id string) (*domain.Transaction, error) {
	row, err := queriesFor(tx).GetTransactionByIDForUpdate(ctx, id)
	if err != nil {
		return nil, transactionLookupError("lock transaction", id, err)
	}

	return rowToTransaction(generated.GetTransactionByIDRow(row)), nil
}

// GetByLoanIDForUpdate locks the disbursement transaction of a loan.
func (r *TransactionRepository) GetByLoanIDForUpdate(ctx context.Context, tx usecase.Transaction, loanID string) (*domain.Transaction, error) {
	row, err := queriesFor(tx).GetTransactionByLoanIDForUpdate(ctx, pgtype.Text{String: loanID, Valid: true})
	if err != nil {
		return nil, transactionLookupError("lock loan transaction", "loan:"+loanID, err)
	}

	return rowToTransaction(generated.GetTransactionByIDRow(row)), nil
}

func (r *TransactionRepository) SoftDelete(ctx context.Context, tx usecase.Transaction, id string, deletedAt time.Time) error {
	n, err := queriesFor(tx).SoftDeleteTransaction(ctx, generated.SoftDeleteTransactionParams{
		ID:        id,
		DeletedAt: timeToPgTimestamptz(deletedAt),
	})
	if err != nil {
		return mapError("delete transaction", err)
	}
	if n == 0 {
		return &domain.TransactionNotFoundError{TransactionID: id}
	}

	return nil
}

// List returns one page of visible transactions, newest first, and the total match count.
// The count comes from the same statement as the page; only a page past the end needs a
// separate count.
func (r *TransactionRepository) List(ctx context.Context, filter domain.TransactionFilter) ([]*domain.Transaction, int64, error) {
	params := generated.ListTransactionsParams{
		OwnerID:            filter.OwnerID,
		DateFrom:           optionalTimestamptz(filter.From),
		DateTo:             optionalTimestamptz(filter.To),
		CategoryID:         optionalText(filter.CategoryID),
		WalletID:           optionalText(filter.WalletID),
		ExcludeLoanRelated: filter.ExcludeLoanRelated,
		RowLimit:           pageLimit(filter.Limit),
		RowOffset:          int32(filter.Offset),
	}
	if filter.Type != nil {
		params.Type = pgtype.Text{String: string(*filter.Type), Valid: true}
	}

	rows, err := r.queries.ListTransactions(ctx, params)
	if err != nil {
		return nil, 0, mapError("list transactions", err)
	}

	if len(rows) == 0 {
		if filter.Offset == 0 {
			return []*domain.Transaction{}, 0, nil
		}

		total, err := r.queries.CountTransactions(ctx, generated.CountTransactionsParams{
			OwnerID:            params.OwnerID,
			Type:               params.Type,
			DateFrom:           params.DateFrom,
			DateTo:             params.DateTo,
			CategoryID:         params.CategoryID,
			WalletID:           params.WalletID,
			ExcludeLoanRelated: params.ExcludeLoanRelated,
		})
		if err != nil {
			return nil, 0, mapError("count transactions", err)
		}
		return []*domain.Transaction{}, total, nil
	}

	transactions := make([]*domain.Transaction, 0, len(rows))
	for _, row := range rows {
		transactions = append(transactions, rowToTransaction(generated.GetTransactionByIDRow{
			ID:              row.ID,
			OwnerID:         row.OwnerID,
			Type:            row.Type,
			TransactionDate: row.TransactionDate,
			CategoryID:      row.CategoryID,
			Amount:          row.Amount,
			Note:            row.Note,
			LoanID:          row.LoanID,
			LoanPaymentID:   row.LoanPaymentID,
			DeletedAt:       row.DeletedAt,
			CreatedAt:       row.CreatedAt,
		}))
	}

	return transactions, rows[0].TotalCount, nil
}

func transactionLookupError(op, id string, err error) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return &domain.TransactionNotFoundError{TransactionID: id}
	}
	return mapError(op, err)
}

func rowToTransaction(row generated.GetTransactionByIDRow) *domain.Transaction {
	return &domain.Transaction{
		ID:              row.ID,
		OwnerID:         row.OwnerID,
		Type:            domain.TransactionType(row.Type),
		TransactionDate: row.TransactionDate.Time,
		CategoryID:      textPtr(row.CategoryID),
		Amount:          numericToMoney(row.Amount),
		Note:            row.Note,
		LoanID:          textPtr(row.LoanID),
		LoanPaymentID:   textPtr(row.LoanPaymentID),
		DeletedAt:       timestamptzPtr(row.DeletedAt),
		CreatedAt:       row.CreatedAt.Time,
	}
}
