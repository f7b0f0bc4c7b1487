package usecase

import (
	"context"
	"sort"
	"time"

	"github.com/iho/pocketledger/internal/domain"
)

// BalanceProjector maintains wallet balances as a projection of ledger entries.
// It is the only writer of Wallet.CurrentBalance.
type BalanceProjector struct {
	walletRepo WalletRepository
}

// NewBalanceProjector creates a new BalanceProjector.
func NewBalanceProjector(walletRepo WalletRepository) *BalanceProjector {
	return &BalanceProjector{walletRepo: walletRepo}
}

// ApplyDeltas applies one delta per entry inside tx. Every touched wallet is locked in
// ascending id order and re-read under the lock before any balance is written.
// Wallets must be owned by ownerID and not archived.
func (p *BalanceProjector) ApplyDeltas(ctx context.Context, tx Transaction, ownerID string, deltas ...domain.BalanceDelta) (map[string]*domain.Wallet, error) {
	return p.apply(ctx, tx, ownerID, deltas, (*domain.Wallet).CheckPostable)
}

// RevertDeltas applies the opposite of deltas. Archived wallets accept reversals,
// non-negativity still holds.
func (p *BalanceProjector) RevertDeltas(ctx context.Context, tx Transaction, ownerID string, deltas ...domain.BalanceDelta) (map[string]*domain.Wallet, error) {
	reversed := make([]domain.BalanceDelta, len(deltas))
	for i, d := range deltas {
		reversed[i] = domain.BalanceDelta{WalletID: d.WalletID, Amount: d.Amount.Neg()}
	}

	return p.apply(ctx, tx, ownerID, reversed, (*domain.Wallet).CheckOwner)
}

func (p *BalanceProjector) apply(
	ctx context.Context,
	tx Transaction,
	ownerID string,
	deltas []domain.BalanceDelta,
	check func(*domain.Wallet, string) error,
) (map[string]*domain.Wallet, error) {
	// DEADLOCK PREVENTION: lock in sorted order
	walletIDs := uniqueWalletIDs(deltas)
	sort.Strings(walletIDs)

	wallets, err := p.walletRepo.GetByIDsForUpdate(ctx, tx, walletIDs)
	if err != nil {
		return nil, err
	}

	walletMap := make(map[string]*domain.Wallet, len(wallets))
	for _, w := range wallets {
		walletMap[w.ID] = w
	}

	for _, id := range walletIDs {
		w, ok := walletMap[id]
		if !ok {
			return nil, &domain.WalletNotFoundError{WalletID: id, Reason: "not found"}
		}
		if err := check(w, ownerID); err != nil {
			return nil, err
		}
	}

	now := time.Now().UTC()
	for _, d := range deltas {
		w := walletMap[d.WalletID]

		if err := w.ValidateDelta(d.Amount); err != nil {
			return nil, err
		}

		balance := w.ApplyDelta(d.Amount)
		if err := p.walletRepo.UpdateBalance(ctx, tx, w.ID, balance, now); err != nil {
			return nil, err
		}

		w.CurrentBalance = balance
		w.Version++
		w.UpdatedAt = now
	}

	return walletMap, nil
}

func uniqueWalletIDs(deltas []domain.BalanceDelta) []string {
	seen := make(map[string]struct{}, len(deltas))
	ids := make([]string, 0, len(deltas))
	for _, d := range deltas {
		if _, ok := seen[d.WalletID]; ok {
			continue
		}
		seen[d.WalletID] = struct{}{}
		ids = append(ids, d.WalletID)
	}
	return ids
}
