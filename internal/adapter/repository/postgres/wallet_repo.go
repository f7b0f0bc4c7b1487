package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/iho/pocketledger/internal/domain"
	"github.com/iho/pocketledger/internal/infrastructure/postgres/generated"
	"github.com/iho/pocketledger/internal/usecase"
)

// WalletRepository implements usecase.WalletRepository.
type WalletRepository struct {
	queries *generated.Queries
}

// NewWalletRepository creates a new WalletRepository.
func NewWalletRepository(db generated.DBTX) *WalletRepository {
	return &WalletRepository{queries: generated.New(db)}
}

// Create inserts a wallet within a transaction.
func (r *WalletRepository) Create(ctx context.Context, tx usecase.Transaction, wallet *domain.Wallet) error {
	err := queriesFor(tx).CreateWallet(ctx, generated.CreateWalletParams{
		ID:             wallet.ID,
		OwnerID:        wallet.OwnerID,
		Name:           wallet.Name,
		Kind:           string(wallet.Kind),
		OpeningBalance: moneyToNumeric(wallet.OpeningBalance),
		CurrentBalance: moneyToNumeric(wallet.CurrentBalance),
		Archived:       wallet.Archived,
		Version:        wallet.Version,
		CreatedAt:      timeToPgTimestamptz(wallet.CreatedAt),
		UpdatedAt:      timeToPgTimestamptz(wallet.UpdatedAt),
	})

	return mapError("create wallet", err)
}

// GetByID retrieves a wallet by ID.
func (r *WalletRepository) GetByID(ctx context.Context, id string) (*domain.Wallet, error) {
	row, err := r.queries.GetWalletByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, &domain.WalletNotFoundError{WalletID: id, Reason: "not found"}
		}

		return nil, mapError("get wallet", err)
	}

	return rowToWallet(row), nil
}

// GetByIDsForUpdate locks the wallets in ascending id order.
func (r *WalletRepository) GetByIDsForUpdate(ctx context.Context, tx usecase.Transaction, ids []string) ([]*domain.Wallet, error) {
	rows, err := queriesFor(tx).GetWalletsByIDsForUpdate(ctx, ids)
	if err != nil {
		return nil, mapError("lock wallets", err)
	}

	wallets := make([]*domain.Wallet, 0, len(rows))
	for _, row := range rows {
		wallets = append(wallets, rowToWallet(row))
	}

	return wallets, nil
}

// UpdateBalance stores a new projected balance and bumps the version.
func (r *WalletRepository) UpdateBalance(ctx context.Context, tx usecase.Transaction, id string, balance domain.Money, updatedAt time.Time) error {
	n, err := queriesFor(tx).UpdateWalletBalance(ctx, generated.UpdateWalletBalanceParams{
		ID:             id,
		CurrentBalance: moneyToNumeric(balance),
		UpdatedAt:      timeToPgTimestamptz(updatedAt),
	})
	if err != nil {
		return mapError("update wallet balance", err)
	}
	if n == 0 {
		return &domain.WalletNotFoundError{WalletID: id, Reason: "not found"}
	}

	return nil
}

// Archive hides a wallet from new postings.
func (r *WalletRepository) Archive(ctx context.Context, tx usecase.Transaction, id string, updatedAt time.Time) error {
	n, err := queriesFor(tx).ArchiveWallet(ctx, generated.ArchiveWalletParams{
		ID:        id,
		UpdatedAt: timeToPgTimestamptz(updatedAt),
	})
	if err != nil {
		return mapError("archive wallet", err)
	}
	if n == 0 {
		return &domain.WalletNotFoundError{WalletID: id, Reason: "not found"}
	}

	return nil
}

// ListByOwner lists the owner's wallets.
func (r *WalletRepository) ListByOwner(ctx context.Context, ownerID string, includeArchived bool) ([]*domain.Wallet, error) {
	rows, err := r.queries.ListWalletsByOwner(ctx, generated.ListWalletsByOwnerParams{
		OwnerID:         ownerID,
		IncludeArchived: includeArchived,
	})
	if err != nil {
		return nil, mapError("list wallets", err)
	}

	wallets := make([]*domain.Wallet, 0, len(rows))
	for _, row := range rows {
		wallets = append(wallets, rowToWallet(row))
	}

	return wallets, nil
}

func rowToWallet(row generated.Wallet) *domain.Wallet {
	return &domain.Wallet{
		ID:             row.ID,
		OwnerID:        row.OwnerID,
		Name:           row.Name,
		Kind:           domain.WalletKind(row.Kind),
		OpeningBalance: numericToMoney(row.OpeningBalance),
		CurrentBalance: numericToMoney(row.CurrentBalance),
		Archived:       row.Archived,
		Version:        row.Version,
		CreatedAt:      row.CreatedAt.Time,
		UpdatedAt:      row.UpdatedAt.Time,
	}
}
