package domain

import "time"

// LoanKind tells which side of the debt the owner is on.
type LoanKind string

const (
	LoanKindYouOwe    LoanKind = "you_owe"
	LoanKindOwedToYou LoanKind = "owed_to_you"
)

// IsValid checks if the kind is known.
func (k LoanKind) IsValid() bool {
	return k == LoanKindYouOwe || k == LoanKindOwedToYou
}

// DisbursementType is the transaction type that opens a loan of this kind.
func (k LoanKind) DisbursementType() TransactionType {
	if k == LoanKindYouOwe {
		return TransactionTypeIncome
	}
	return TransactionTypeExpense
}

// RepaymentType is the transaction type of a payment on a loan of this kind.
func (k LoanKind) RepaymentType() TransactionType {
	if k == LoanKindYouOwe {
		return TransactionTypeExpense
	}
	return TransactionTypeIncome
}

// DirectionFor maps an income/expense type to its entry direction.
func DirectionFor(t TransactionType) Direction {
	if t == TransactionTypeIncome {
		return DirectionIn
	}
	return DirectionOut
}

// LoanStatus of the outstanding-balance state machine.
type LoanStatus string

const (
	LoanStatusOpen   LoanStatus = "open"
	LoanStatusClosed LoanStatus = "closed"
)

// StatusFor derives the status from an outstanding amount.
func StatusFor(outstanding Money) LoanStatus {
	if outstanding.IsZero() {
		return LoanStatusClosed
	}
	return LoanStatusOpen
}

// Loan tracks a debt between the owner and a counterparty.
type Loan struct {
	ID                string
	OwnerID           string
	Kind              LoanKind
	CounterpartyName  string
	Principal         Money
	OutstandingAmount Money
	WalletID          string
	StartDate         time.Time
	DueDate           *time.Time
	Status            LoanStatus
	Note              string
	DeletedAt         *time.Time
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// Validate checks loan fields before creation.
func (l *Loan) Validate() error {
	if !l.Kind.IsValid() {
		return NewValidationError(ErrInvalidInput, "kind", "must be you_owe or owed_to_you")
	}

	if err := ValidateName("counterpartyName", l.CounterpartyName); err != nil {
		return err
	}

	if err := ValidateAmount("principal", l.Principal); err != nil {
		return err
	}

	if l.DueDate != nil && l.DueDate.Before(l.StartDate) {
		return NewValidationError(ErrInvalidInput, "due_date", "must not precede start_date")
	}

	return ValidateNote(l.Note)
}

// CheckVisible checks that ownerID can see the loan.
func (l *Loan) CheckVisible(ownerID string) error {
	if l.OwnerID != ownerID || l.DeletedAt != nil {
		return &LoanNotFoundError{LoanID: l.ID}
	}
	return nil
}

// CheckPayable checks that a payment of amount is accepted in the current state.
func (l *Loan) CheckPayable(amount Money) error {
	if l.Status == LoanStatusClosed {
		return &LoanAlreadyClosedError{LoanID: l.ID}
	}

	if amount.GreaterThan(l.OutstandingAmount) {
		return &PaymentExceedsOutstandingError{
			LoanID:      l.ID,
			Outstanding: l.OutstandingAmount,
			Amount:      amount,
		}
	}

	return nil
}

// ApplyPayment lowers the outstanding amount, clamped at zero, and updates the status.
func (l *Loan) ApplyPayment(amount Money) {
	l.OutstandingAmount = l.OutstandingAmount.Sub(amount).ClampZero()
	l.Status = StatusFor(l.OutstandingAmount)
}

// LoanPayment is an immutable repayment linked 1:1 to the transaction it produced.
type LoanPayment struct {
	ID            string
	LoanID        string
	OwnerID       string
	WalletID      string
	TransactionID string
	PaymentDate   time.Time
	Amount        Money
	Note          string
	CreatedAt     time.Time
}

// LoanKindStats aggregates open loans of one kind.
type LoanKindStats struct {
	Count       int64 `json:"count"`
	TotalAmount Money `json:"total_amount"`
}

// LoanStats summarizes an owner's loans.
type LoanStats struct {
	YouOwe     LoanKindStats `json:"you_owe"`
	OwedToYou  LoanKindStats `json:"owed_to_you"`
	TotalLoans int64         `json:"total_loans"`
}

// LoanFilter narrows a loan listing.
type LoanFilter struct {
	OwnerID string
	Kind    *LoanKind
	Status  *LoanStatus
	Limit   int
	Offset  int
}
