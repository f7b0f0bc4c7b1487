package postgres

import (
	"context"

	"github.com/iho/pocketledger/internal/domain"
	"github.com/iho/pocketledger/internal/infrastructure/postgres/generated"
	"github.com/iho/pocketledger/internal/usecase"
)

// EntryRepository implements usecase.EntryRepository.
type EntryRepository struct {
	queries *generated.Queries
}

// NewEntryRepository creates a new EntryRepository.
func NewEntryRepository(db generated.DBTX) *EntryRepository {
	return &EntryRepository{queries: generated.New(db)}
}

// Create creates a new entry.
func (r *EntryRepository) Create(ctx context.Context, tx usecase.Transaction, entry *domain.Entry) error {
	err := queriesFor(tx).CreateEntry(ctx, generated.CreateEntryParams{
		ID:            entry.ID,
		TransactionID: entry.TransactionID,
		WalletID:      entry.WalletID,
		Direction:     string(entry.Direction),
		Amount:        moneyToNumeric(entry.Amount),
		CreatedAt:     timeToPgTimestamptz(entry.CreatedAt),
	})

	return mapError("create entry", err)
}

// ListByTransactionTx reads the entries of a transaction inside tx.
func (r *EntryRepository) ListByTransactionTx(ctx context.Context, tx usecase.Transaction, transactionID string) ([]domain.Entry, error) {
	rows, err := queriesFor(tx).ListEntriesByTransaction(ctx, transactionID)
	if err != nil {
		return nil, mapError("list entries", err)
	}

	return rowsToEntries(rows), nil
}

// ListByTransactions batch-loads entries for a page of transactions.
func (r *EntryRepository) ListByTransactions(ctx context.Context, transactionIDs []string) ([]domain.Entry, error) {
	if len(transactionIDs) == 0 {
		return nil, nil
	}

	rows, err := r.queries.ListEntriesByTransactions(ctx, transactionIDs)
	if err != nil {
		return nil, mapError("list entries", err)
	}

	return rowsToEntries(rows), nil
}

func (r *EntryRepository) SumByWallet(ctx context.Context, walletID string) (domain.Money, error) {
	total, err := r.queries.SumEntriesByWallet(ctx, walletID)
	if err != nil {
		return domain.ZeroMoney, mapError("sum entries", err)
	}

	return numericToMoney(total), nil
}

func rowsToEntries(rows []generated.TransactionEntry) []domain.Entry {
	entries := make([]domain.Entry, 0, len(rows))
	for _, row := range rows {
		entries = append(entries, domain.Entry{
			ID:            row.ID,
			TransactionID: row.TransactionID,
			WalletID:      row.WalletID,
			Direction:     domain.Direction(row.Direction),
			Amount:        numericToMoney(row.Amount),
			CreatedAt:     row.CreatedAt.Time,
		})
	}

	return entries
}
