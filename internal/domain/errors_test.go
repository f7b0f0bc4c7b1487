package domain

import (
	"errors"
	"fmt"
	"testing"
)

func TestErrorKindsAndCodes(t *testing.T) {
	t.Parallel()

	cause := errors.New("boom")

	cases := []struct {
		err      error
		sentinel error
		kind     ErrorKind
		code     string
	}{
		{NewValidationError(ErrInvalidAmount, "amount", "must be positive"), ErrInvalidAmount, KindValidation, "INVALID_AMOUNT"},
		{NewValidationError(ErrSameWalletTransfer, "to_wallet_id", "same"), ErrSameWalletTransfer, KindValidation, "SAME_WALLET_TRANSFER"},
		{NewValidationError(errors.New("other"), "x", "y"), ErrInvalidInput, KindValidation, "INVALID_INPUT"},
		{&WalletNotFoundError{WalletID: "w1", Reason: "archived"}, ErrWalletNotFound, KindNotFound, "WALLET_NOT_FOUND"},
		{&CategoryInvalidError{CategoryID: "c1", Reason: "not owned"}, ErrCategoryInvalid, KindNotFound, "CATEGORY_INVALID"},
		{&LoanNotFoundError{LoanID: "l1"}, ErrLoanNotFound, KindNotFound, "LOAN_NOT_FOUND"},
		{&InsufficientBalanceError{WalletID: "w1"}, ErrInsufficientBalance, KindConflict, "INSUFFICIENT_BALANCE"},
		{&PaymentExceedsOutstandingError{LoanID: "l1"}, ErrPaymentExceedsOutstanding, KindConflict, "PAYMENT_EXCEEDS_OUTSTANDING"},
		{&LoanAlreadyClosedError{LoanID: "l1"}, ErrLoanAlreadyClosed, KindConflict, "LOAN_ALREADY_CLOSED"},
		{&LoanHasPaymentsError{LoanID: "l1", Payments: 2}, ErrLoanHasPayments, KindConflict, "LOAN_HAS_PAYMENTS"},
		{&ConflictError{Constraint: "transactions_loan_id_key", Err: cause}, ErrConflict, KindConflict, "CONFLICT"},
		{&StorageError{Op: "create transaction", Err: cause}, ErrStorage, KindStorage, "INTERNAL"},
	}

	for _, tc := range cases {
		wrapped := fmt.Errorf("outer: %w", tc.err)

		if !errors.Is(wrapped, tc.sentinel) {
			t.Fatalf("%v: expected errors.Is %v", tc.err, tc.sentinel)
		}
		if KindOf(wrapped) != tc.kind {
			t.Fatalf("%v: expected kind %s, got %s", tc.err, tc.kind, KindOf(wrapped))
		}
		if CodeOf(wrapped) != tc.code {
			t.Fatalf("%v: expected code %s, got %s", tc.err, tc.code, CodeOf(wrapped))
		}
	}
}

func TestStoreErrorsKeepCause(t *testing.T) {
	t.Parallel()

	cause := errors.New("connection reset")
	err := &StorageError{Op: "lock wallet", Err: cause}

	if !errors.Is(err, cause) {
		t.Fatal("expected cause to be reachable")
	}

	var se *StorageError
	if !errors.As(fmt.Errorf("wrap: %w", err), &se) || se.Op != "lock wallet" {
		t.Fatalf("expected StorageError with op, got %v", se)
	}
}

func TestUnknownErrorsAreStorage(t *testing.T) {
	t.Parallel()

	err := errors.New("plain")
	if KindOf(err) != KindStorage || CodeOf(err) != "INTERNAL" {
		t.Fatalf("expected storage/INTERNAL for foreign errors")
	}
}
