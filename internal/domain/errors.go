package domain

import (
	"errors"
	"fmt"
)

// ErrorKind classifies a ledger error for callers.
type ErrorKind string

const (
	KindValidation ErrorKind = "validation"
	KindNotFound   ErrorKind = "not_found"
	KindConflict   ErrorKind = "conflict"
	KindStorage    ErrorKind = "storage"
)

var (
	// Validation errors
	ErrInvalidInput       = errors.New("invalid input")
	ErrInvalidAmount      = errors.New("amount must be positive")
	ErrSameWalletTransfer = errors.New("cannot transfer to same wallet")
	ErrUnsupportedType    = errors.New("unsupported transaction type")

	// Not found errors
	ErrWalletNotFound      = errors.New("wallet not found")
	ErrCategoryInvalid     = errors.New("category invalid")
	ErrLoanNotFound        = errors.New("loan not found")
	ErrTransactionNotFound = errors.New("transaction not found")

	// Business rule conflicts
	ErrInsufficientBalance       = errors.New("insufficient balance")
	ErrPaymentExceedsOutstanding = errors.New("payment exceeds outstanding amount")
	ErrLoanAlreadyClosed         = errors.New("loan already closed")
	ErrLoanHasPayments           = errors.New("loan has payments")
	ErrLoanRelatedTransaction    = errors.New("transaction belongs to a loan")

	// Store errors
	ErrConflict = errors.New("conflict")
	ErrStorage  = errors.New("storage failure")
)

// Error is implemented by every error the ledger returns. The set is closed.
type Error interface {
	error
	Kind() ErrorKind
	Code() string
	ledgerError()
}

var validationCodes = map[error]string{
	ErrInvalidInput:       "INVALID_INPUT",
	ErrInvalidAmount:      "INVALID_AMOUNT",
	ErrSameWalletTransfer: "SAME_WALLET_TRANSFER",
	ErrUnsupportedType:    "UNSUPPORTED_TYPE",
}

// ValidationError reports malformed input, detected before any store access.
type ValidationError struct {
	Field    string
	Reason   string
	sentinel error
}

// NewValidationError builds a ValidationError matching sentinel under errors.Is.
func NewValidationError(sentinel error, field, reason string) *ValidationError {
	if _, ok := validationCodes[sentinel]; !ok {
		sentinel = ErrInvalidInput
	}
	return &ValidationError{Field: field, Reason: reason, sentinel: sentinel}
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("%s: %s", e.sentinel, e.Reason)
	}
	return fmt.Sprintf("%s: %s %s", e.sentinel, e.Field, e.Reason)
}

func (e *ValidationError) Unwrap() error   { return e.sentinel }
func (e *ValidationError) Kind() ErrorKind { return KindValidation }
func (e *ValidationError) Code() string    { return validationCodes[e.sentinel] }
func (e *ValidationError) ledgerError()    {}

// WalletNotFoundError covers absent, archived and foreign wallets alike.
type WalletNotFoundError struct {
	WalletID string
	Reason   string
}

func (e *WalletNotFoundError) Error() string {
	return fmt.Sprintf("wallet %s not found (%s)", e.WalletID, e.Reason)
}

func (e *WalletNotFoundError) Unwrap() error   { return ErrWalletNotFound }
func (e *WalletNotFoundError) Kind() ErrorKind { return KindNotFound }
func (e *WalletNotFoundError) Code() string    { return "WALLET_NOT_FOUND" }
func (e *WalletNotFoundError) ledgerError()    {}

// CategoryInvalidError covers missing, foreign and mistyped categories.
type CategoryInvalidError struct {
	CategoryID string
	Reason     string
}

func (e *CategoryInvalidError) Error() string {
	if e.CategoryID == "" {
		return fmt.Sprintf("category invalid: %s", e.Reason)
	}
	return fmt.Sprintf("category %s invalid: %s", e.CategoryID, e.Reason)
}

func (e *CategoryInvalidError) Unwrap() error   { return ErrCategoryInvalid }
func (e *CategoryInvalidError) Kind() ErrorKind { return KindNotFound }
func (e *CategoryInvalidError) Code() string    { return "CATEGORY_INVALID" }
func (e *CategoryInvalidError) ledgerError()    {}

type LoanNotFoundError struct {
	LoanID string
}

func (e *LoanNotFoundError) Error() string   { return fmt.Sprintf("loan %s not found", e.LoanID) }
func (e *LoanNotFoundError) Unwrap() error   { return ErrLoanNotFound }
func (e *LoanNotFoundError) Kind() ErrorKind { return KindNotFound }
func (e *LoanNotFoundError) Code() string    { return "LOAN_NOT_FOUND" }
func (e *LoanNotFoundError) ledgerError()    {}

type TransactionNotFoundError struct {
	TransactionID string
}

func (e *TransactionNotFoundError) Error() string {
	return fmt.Sprintf("transaction %s not found", e.TransactionID)
}

func (e *TransactionNotFoundError) Unwrap() error   { return ErrTransactionNotFound }
func (e *TransactionNotFoundError) Kind() ErrorKind { return KindNotFound }
func (e *TransactionNotFoundError) Code() string    { return "TRANSACTION_NOT_FOUND" }
func (e *TransactionNotFoundError) ledgerError()    {}

// InsufficientBalanceError is returned when a debit would drive a wallet negative.
type InsufficientBalanceError struct {
	WalletID string
	Balance  Money
	Amount   Money
}

func (e *InsufficientBalanceError) Error() string {
	return fmt.Sprintf("insufficient balance in wallet %s: balance %s, requested %s", e.WalletID, e.Balance, e.Amount)
}

func (e *InsufficientBalanceError) Unwrap() error   { return ErrInsufficientBalance }
func (e *InsufficientBalanceError) Kind() ErrorKind { return KindConflict }
func (e *InsufficientBalanceError) Code() string    { return "INSUFFICIENT_BALANCE" }
func (e *InsufficientBalanceError) ledgerError()    {}

type PaymentExceedsOutstandingError struct {
	LoanID      string
	Outstanding Money
	Amount      Money
}

func (e *PaymentExceedsOutstandingError) Error() string {
	return fmt.Sprintf("payment %s exceeds outstanding %s on loan %s", e.Amount, e.Outstanding, e.LoanID)
}

func (e *PaymentExceedsOutstandingError) Unwrap() error   { return ErrPaymentExceedsOutstanding }
func (e *PaymentExceedsOutstandingError) Kind() ErrorKind { return KindConflict }
func (e *PaymentExceedsOutstandingError) Code() string    { return "PAYMENT_EXCEEDS_OUTSTANDING" }
func (e *PaymentExceedsOutstandingError) ledgerError()    {}

type LoanAlreadyClosedError struct {
	LoanID string
}

func (e *LoanAlreadyClosedError) Error() string   { return fmt.Sprintf("loan %s already closed", e.LoanID) }
func (e *LoanAlreadyClosedError) Unwrap() error   { return ErrLoanAlreadyClosed }
func (e *LoanAlreadyClosedError) Kind() ErrorKind { return KindConflict }
func (e *LoanAlreadyClosedError) Code() string    { return "LOAN_ALREADY_CLOSED" }
func (e *LoanAlreadyClosedError) ledgerError()    {}

type LoanHasPaymentsError struct {
	LoanID   string
	Payments int64
}

func (e *LoanHasPaymentsError) Error() string {
	return fmt.Sprintf("loan %s has %d payments", e.LoanID, e.Payments)
}

func (e *LoanHasPaymentsError) Unwrap() error   { return ErrLoanHasPayments }
func (e *LoanHasPaymentsError) Kind() ErrorKind { return KindConflict }
func (e *LoanHasPaymentsError) Code() string    { return "LOAN_HAS_PAYMENTS" }
func (e *LoanHasPaymentsError) ledgerError()    {}

// LoanRelatedTransactionError rejects direct mutation of a loan's transactions.
type LoanRelatedTransactionError struct {
	TransactionID string
}

func (e *LoanRelatedTransactionError) Error() string {
	return fmt.Sprintf("transaction %s belongs to a loan", e.TransactionID)
}

func (e *LoanRelatedTransactionError) Unwrap() error   { return ErrLoanRelatedTransaction }
func (e *LoanRelatedTransactionError) Kind() ErrorKind { return KindConflict }
func (e *LoanRelatedTransactionError) Code() string    { return "LOAN_RELATED_TRANSACTION" }
func (e *LoanRelatedTransactionError) ledgerError()    {}

// ConflictError is a store constraint violation or a lost serialization race.
type ConflictError struct {
	Constraint string
	Err        error
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("conflict on %s: %v", e.Constraint, e.Err)
}

func (e *ConflictError) Unwrap() []error { return []error{ErrConflict, e.Err} }
func (e *ConflictError) Kind() ErrorKind { return KindConflict }
func (e *ConflictError) Code() string    { return "CONFLICT" }
func (e *ConflictError) ledgerError()    {}

// StorageError wraps any other store failure.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage failure in %s: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() []error { return []error{ErrStorage, e.Err} }
func (e *StorageError) Kind() ErrorKind { return KindStorage }
func (e *StorageError) Code() string    { return "INTERNAL" }
func (e *StorageError) ledgerError()    {}

// KindOf reports the kind of err. Errors outside the ledger set are storage faults.
func KindOf(err error) ErrorKind {
	var le Error
	if errors.As(err, &le) {
		return le.Kind()
	}
	return KindStorage
}

// CodeOf reports the stable code of err.
func CodeOf(err error) string {
	var le Error
	if errors.As(err, &le) {
		return le.Code()
	}
	return "INTERNAL"
}
