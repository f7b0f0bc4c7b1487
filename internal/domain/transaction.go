package domain

import "time"

// TransactionType is the kind of ledger transaction.
type TransactionType string

const (
	TransactionTypeIncome   TransactionType = "income"
	TransactionTypeExpense  TransactionType = "expense"
	TransactionTypeTransfer TransactionType = "transfer"
)

// IsValid checks if the type is supported.
func (t TransactionType) IsValid() bool {
	switch t {
	case TransactionTypeIncome, TransactionTypeExpense, TransactionTypeTransfer:
		return true
	}
	return false
}

// Direction of an entry relative to its wallet.
type Direction string

const (
	DirectionIn  Direction = "in"
	DirectionOut Direction = "out"
)

// Entry is one wallet-side posting of a transaction.
type Entry struct {
	ID            string
	TransactionID string
	WalletID      string
	Direction     Direction
	Amount        Money
	CreatedAt     time.Time
}

// SignedAmount is the balance delta the entry applies to its wallet.
func (e *Entry) SignedAmount() Money {
	if e.Direction == DirectionOut {
		return e.Amount.Neg()
	}
	return e.Amount
}

// Transaction is an immutable double-entry ledger record.
type Transaction struct {
	ID              string
	OwnerID         string
	Type            TransactionType
	TransactionDate time.Time
	CategoryID      *string
	Amount          Money
	Note            string
	LoanID          *string
	// LoanPaymentID is populated on reads when a payment produced this transaction.
	LoanPaymentID *string
	DeletedAt     *time.Time
	CreatedAt     time.Time
	Entries       []Entry
}

// IsDeleted reports whether the transaction is soft-deleted.
func (t *Transaction) IsDeleted() bool {
	return t.DeletedAt != nil
}

// IsLoanRelated reports whether a loan disbursement or payment produced the transaction.
func (t *Transaction) IsLoanRelated() bool {
	return t.LoanID != nil || t.LoanPaymentID != nil
}

// Validate checks the entry shape for the transaction type.
func (t *Transaction) Validate() error {
	if !t.Type.IsValid() {
		return NewValidationError(ErrUnsupportedType, "type", string(t.Type))
	}

	if err := ValidateAmount("amount", t.Amount); err != nil {
		return err
	}

	for i := range t.Entries {
		if !t.Entries[i].Amount.Equal(t.Amount) {
			return NewValidationError(ErrInvalidAmount, "entries", "entry amount differs from transaction amount")
		}
	}

	switch t.Type {
	case TransactionTypeIncome, TransactionTypeExpense:
		want := DirectionIn
		if t.Type == TransactionTypeExpense {
			want = DirectionOut
		}
		if len(t.Entries) != 1 || t.Entries[0].Direction != want {
			return NewValidationError(ErrInvalidInput, "entries", "expected a single "+string(want)+" entry")
		}
	case TransactionTypeTransfer:
		if t.CategoryID != nil {
			return &CategoryInvalidError{CategoryID: *t.CategoryID, Reason: "not allowed on transfer"}
		}
		if len(t.Entries) != 2 || t.Entries[0].Direction != DirectionOut || t.Entries[1].Direction != DirectionIn {
			return NewValidationError(ErrInvalidInput, "entries", "expected out and in entries")
		}
		if t.Entries[0].WalletID == t.Entries[1].WalletID {
			return NewValidationError(ErrSameWalletTransfer, "to_wallet_id", "must differ from from_wallet_id")
		}
	}

	return nil
}

// Deltas returns the signed balance change per entry, in entry order.
func (t *Transaction) Deltas() []BalanceDelta {
	deltas := make([]BalanceDelta, 0, len(t.Entries))
	for i := range t.Entries {
		deltas = append(deltas, BalanceDelta{
			WalletID: t.Entries[i].WalletID,
			Amount:   t.Entries[i].SignedAmount(),
		})
	}
	return deltas
}

// BalanceDelta is a signed change to a wallet balance.
type BalanceDelta struct {
	WalletID string
	Amount   Money
}

// TransactionFilter narrows a transaction listing.
type TransactionFilter struct {
	OwnerID            string
	Type               *TransactionType
	From               *time.Time
	To                 *time.Time
	CategoryID         *string
	WalletID           *string
	ExcludeLoanRelated bool
	Limit              int
	Offset             int
}
