package domain

import "time"

// WalletKind describes where the money of a wallet is held.
type WalletKind string

const (
	WalletKindCash    WalletKind = "cash"
	WalletKindBank    WalletKind = "bank"
	WalletKindEWallet WalletKind = "e_wallet"
	WalletKindCredit  WalletKind = "credit"
)

// IsValid checks if the kind is known.
func (k WalletKind) IsValid() bool {
	switch k {
	case WalletKindCash, WalletKindBank, WalletKindEWallet, WalletKindCredit:
		return true
	}
	return false
}

// Wallet holds a balance that is a projection of the ledger entries posted to it.
type Wallet struct {
	ID             string
	OwnerID        string
	Name           string
	Kind           WalletKind
	OpeningBalance Money
	CurrentBalance Money
	Archived       bool
	Version        int64
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// CheckOwner checks that the wallet belongs to ownerID.
func (w *Wallet) CheckOwner(ownerID string) error {
	if w.OwnerID != ownerID {
		return &WalletNotFoundError{WalletID: w.ID, Reason: "not owned"}
	}
	return nil
}

// CheckPostable checks that ownerID may post new entries to the wallet.
func (w *Wallet) CheckPostable(ownerID string) error {
	if err := w.CheckOwner(ownerID); err != nil {
		return err
	}

	if w.Archived {
		return &WalletNotFoundError{WalletID: w.ID, Reason: "archived"}
	}

	return nil
}

// ValidateDelta checks that applying delta keeps the balance non-negative.
// Crediting deltas always pass.
func (w *Wallet) ValidateDelta(delta Money) error {
	if !delta.IsNegative() {
		return nil
	}

	if w.CurrentBalance.Add(delta).IsNegative() {
		return &InsufficientBalanceError{
			WalletID: w.ID,
			Balance:  w.CurrentBalance,
			Amount:   delta.Neg(),
		}
	}

	return nil
}

// ApplyDelta returns the balance after delta.
func (w *Wallet) ApplyDelta(delta Money) Money {
	return w.CurrentBalance.Add(delta)
}
