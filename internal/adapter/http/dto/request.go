package dto

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"

	"github.com/iho/pocketledger/internal/domain"
	"github.com/iho/pocketledger/internal/usecase"
)

const dateLayout = "2006-01-02"

// Date accepts either a calendar date ("2025-03-01") or an RFC 3339 timestamp.
type Date struct {
	time.Time
}

// UnmarshalJSON implements json.Unmarshaler.
func (d *Date) UnmarshalJSON(data []byte) error {
	if bytes.Equal(data, []byte("null")) {
		return nil
	}

	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}

	if t, err := time.Parse(dateLayout, s); err == nil {
		d.Time = t
		return nil
	}

	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return fmt.Errorf("date %q: expected YYYY-MM-DD or RFC 3339", s)
	}
	d.Time = t.UTC()
	return nil
}

func (d *Date) value() time.Time {
	if d == nil {
		return time.Time{}
	}
	return d.Time
}

func (d *Date) ptr() *time.Time {
	if d == nil || d.IsZero() {
		return nil
	}
	t := d.Time
	return &t
}

// CreateWalletRequest represents a request to create a wallet.
type CreateWalletRequest struct {
	Name           string       `json:"name"`
	Kind           string       `json:"kind"`
	OpeningBalance domain.Money `json:"opening_balance"`
}

// ToUseCaseInput converts to use case input.
func (r *CreateWalletRequest) ToUseCaseInput(ownerID string) usecase.CreateWalletInput {
	return usecase.CreateWalletInput{
		OwnerID:        ownerID,
		Name:           r.Name,
		Kind:           domain.WalletKind(r.Kind),
		OpeningBalance: r.OpeningBalance,
	}
}

// CreateCategoryRequest represents a request to create a category.
type CreateCategoryRequest struct {
	Name string `json:"name"`
	Type string `json:"type"`
}

// ToUseCaseInput converts to use case input.
func (r *CreateCategoryRequest) ToUseCaseInput(ownerID string) usecase.CreateCategoryInput {
	return usecase.CreateCategoryInput{
		OwnerID: ownerID,
		Name:    r.Name,
		Type:    domain.TransactionType(r.Type),
	}
}

// CreateTransactionRequest represents a request to create an income, expense or transfer.
type CreateTransactionRequest struct {
	Type            string       `json:"type"`
	WalletID        string       `json:"wallet_id,omitempty"`
	FromWalletID    string       `json:"from_wallet_id,omitempty"`
	ToWalletID      string       `json:"to_wallet_id,omitempty"`
	CategoryID      string       `json:"category_id,omitempty"`
	Amount          domain.Money `json:"amount"`
	TransactionDate *Date        `json:"transaction_date,omitempty"`
	Note            string       `json:"note,omitempty"`
}

// ToUseCaseInput converts to use case input.
func (r *CreateTransactionRequest) ToUseCaseInput(ownerID string) usecase.CreateTransactionInput {
	return usecase.CreateTransactionInput{
		OwnerID:         ownerID,
		Type:            domain.TransactionType(r.Type),
		WalletID:        r.WalletID,
		FromWalletID:    r.FromWalletID,
		ToWalletID:      r.ToWalletID,
		CategoryID:      r.CategoryID,
		Amount:          r.Amount,
		TransactionDate: r.TransactionDate.value(),
		Note:            r.Note,
	}
}

// CreateLoanRequest represents a request to open a loan.
type CreateLoanRequest struct {
	Kind             string       `json:"kind"`
	CounterpartyName string       `json:"counterparty_name"`
	Principal        domain.Money `json:"principal"`
	WalletID         string       `json:"wallet_id"`
	StartDate        *Date        `json:"start_date,omitempty"`
	DueDate          *Date        `json:"due_date,omitempty"`
	Note             string       `json:"note,omitempty"`
}

// ToUseCaseInput converts to use case input.
func (r *CreateLoanRequest) ToUseCaseInput(ownerID string) usecase.CreateLoanInput {
	return usecase.CreateLoanInput{
		OwnerID:          ownerID,
		Kind:             domain.LoanKind(r.Kind),
		CounterpartyName: r.CounterpartyName,
		Principal:        r.Principal,
		WalletID:         r.WalletID,
		StartDate:        r.StartDate.value(),
		DueDate:          r.DueDate.ptr(),
		Note:             r.Note,
	}
}

// CreateLoanPaymentRequest represents a repayment against a loan.
type CreateLoanPaymentRequest struct {
	WalletID    string       `json:"wallet_id"`
	Amount      domain.Money `json:"amount"`
	PaymentDate *Date        `json:"payment_date,omitempty"`
	Note        string       `json:"note,omitempty"`
}

// ToUseCaseInput converts to use case input.
func (r *CreateLoanPaymentRequest) ToUseCaseInput(ownerID, loanID string) usecase.CreateLoanPaymentInput {
	return usecase.CreateLoanPaymentInput{
		OwnerID:     ownerID,
		LoanID:      loanID,
		WalletID:    r.WalletID,
		Amount:      r.Amount,
		PaymentDate: r.PaymentDate.value(),
		Note:        r.Note,
	}
}

// RegisterRequest represents a sign-up request.
type RegisterRequest struct {
	Email    string `json:"email"`
	Name     string `json:"name"`
	Password string `json:"password"`
}

// ToUseCaseInput converts to use case input.
func (r *RegisterRequest) ToUseCaseInput() usecase.RegisterInput {
	return usecase.RegisterInput{
		Email:    r.Email,
		Name:     r.Name,
		Password: r.Password,
	}
}

// LoginRequest represents a login request.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}
