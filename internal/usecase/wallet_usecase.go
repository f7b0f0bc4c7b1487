package usecase

import (
	"context"
	"time"

	"github.com/iho/pocketledger/internal/domain"
)

// WalletUseCase handles wallet administration.
type WalletUseCase struct {
	txManager  TransactionManager
	walletRepo WalletRepository
	outboxRepo OutboxRepository
	idGen      IDGenerator
}

// NewWalletUseCase creates a new WalletUseCase.
func NewWalletUseCase(txManager TransactionManager, walletRepo WalletRepository, outboxRepo OutboxRepository, idGen IDGenerator) *WalletUseCase {
	return &WalletUseCase{
		txManager:  txManager,
		walletRepo: walletRepo,
		outboxRepo: outboxRepo,
		idGen:      idGen,
	}
}

// CreateWalletInput represents input for creating a wallet.
type CreateWalletInput struct {
	OwnerID        string
	Name           string
	Kind           domain.WalletKind
	OpeningBalance domain.Money
}

// CreateWallet creates a wallet whose current balance starts at the opening balance.
func (uc *WalletUseCase) CreateWallet(ctx context.Context, input CreateWalletInput) (*domain.Wallet, error) {
	if err := domain.ValidateName("name", input.Name); err != nil {
		return nil, err
	}

	if !input.Kind.IsValid() {
		return nil, domain.NewValidationError(domain.ErrInvalidInput, "kind", "must be cash, bank, e_wallet or credit")
	}

	if input.OpeningBalance.IsNegative() {
		return nil, domain.NewValidationError(domain.ErrInvalidAmount, "opening_balance", "must not be negative")
	}

	now := time.Now().UTC()
	wallet := &domain.Wallet{
		ID:             uc.idGen.Generate(),
		OwnerID:        input.OwnerID,
		Name:           input.Name,
		Kind:           input.Kind,
		OpeningBalance: input.OpeningBalance,
		CurrentBalance: input.OpeningBalance,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	err := inUnitOfWork(ctx, uc.txManager, func(ctx context.Context, tx Transaction) error {
		if err := uc.walletRepo.Create(ctx, tx, wallet); err != nil {
			return err
		}

		return uc.outboxRepo.Create(ctx, tx, newOutboxEvent(
			uc.idGen.Generate(),
			domain.AggregateTypeWallet,
			wallet.ID,
			domain.EventTypeWalletCreated,
			map[string]any{
				"wallet_id":       wallet.ID,
				"owner_id":        wallet.OwnerID,
				"name":            wallet.Name,
				"opening_balance": wallet.OpeningBalance.String(),
			},
			now,
		))
	})
	if err != nil {
		return nil, err
	}

	return wallet, nil
}

// GetWallet retrieves a wallet owned by ownerID.
func (uc *WalletUseCase) GetWallet(ctx context.Context, ownerID, id string) (*domain.Wallet, error) {
	wallet, err := uc.walletRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := wallet.CheckOwner(ownerID); err != nil {
		return nil, err
	}

	return wallet, nil
}

// ListWallets lists the owner's wallets.
func (uc *WalletUseCase) ListWallets(ctx context.Context, ownerID string, includeArchived bool) ([]*domain.Wallet, error) {
	return uc.walletRepo.ListByOwner(ctx, ownerID, includeArchived)
}

// ArchiveWallet blocks new postings to a wallet. Archiving is idempotent.
func (uc *WalletUseCase) ArchiveWallet(ctx context.Context, ownerID, id string) (*domain.Wallet, error) {
	var wallet *domain.Wallet

	err := inUnitOfWork(ctx, uc.txManager, func(ctx context.Context, tx Transaction) error {
		wallets, err := uc.walletRepo.GetByIDsForUpdate(ctx, tx, []string{id})
		if err != nil {
			return err
		}
		if len(wallets) == 0 {
			return &domain.WalletNotFoundError{WalletID: id, Reason: "not found"}
		}

		wallet = wallets[0]
		if err := wallet.CheckOwner(ownerID); err != nil {
			return err
		}
		if wallet.Archived {
			return nil
		}

		now := time.Now().UTC()
		if err := uc.walletRepo.Archive(ctx, tx, id, now); err != nil {
			return err
		}
		wallet.Archived = true
		wallet.UpdatedAt = now

		return uc.outboxRepo.Create(ctx, tx, newOutboxEvent(
			uc.idGen.Generate(),
			domain.AggregateTypeWallet,
			id,
			domain.EventTypeWalletArchived,
			map[string]any{"wallet_id": id, "owner_id": ownerID},
			now,
		))
	})
	if err != nil {
		return nil, err
	}

	return wallet, nil
}
