package dto

import (
	"time"

	"github.com/iho/pocketledger/internal/domain"
	"github.com/iho/pocketledger/internal/usecase"
)

// WalletResponse represents a wallet in API responses.
type WalletResponse struct {
	ID             string       `json:"id"`
	Name           string       `json:"name"`
	Kind           string       `json:"kind"`
	OpeningBalance domain.Money `json:"opening_balance"`
	CurrentBalance domain.Money `json:"current_balance"`
	Archived       bool         `json:"archived"`
	Version        int64        `json:"version"`
	CreatedAt      time.Time    `json:"created_at"`
	UpdatedAt      time.Time    `json:"updated_at"`
}

// WalletFromDomain converts a domain wallet to a response.
func WalletFromDomain(w *domain.Wallet) *WalletResponse {
	return &WalletResponse{
		ID:             w.ID,
		Name:           w.Name,
		Kind:           string(w.Kind),
		OpeningBalance: w.OpeningBalance,
		CurrentBalance: w.CurrentBalance,
		Archived:       w.Archived,
		Version:        w.Version,
		CreatedAt:      w.CreatedAt,
		UpdatedAt:      w.UpdatedAt,
	}
}

// WalletsFromDomain converts domain wallets to responses.
func WalletsFromDomain(wallets []*domain.Wallet) []*WalletResponse {
	result := make([]*WalletResponse, len(wallets))
	for i, w := range wallets {
		result[i] = WalletFromDomain(w)
	}
	return result
}

// CategoryResponse represents a category in API responses.
type CategoryResponse struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Type      string    `json:"type"`
	CreatedAt time.Time `json:"created_at"`
}

// CategoriesFromDomain converts domain categories to responses.
func CategoriesFromDomain(categories []*domain.Category) []*CategoryResponse {
	result := make([]*CategoryResponse, len(categories))
	for i, c := range categories {
		result[i] = CategoryFromDomain(c)
	}
	return result
}

// CategoryFromDomain converts a domain category to a response.
func CategoryFromDomain(c *domain.Category) *CategoryResponse {
	return &CategoryResponse{ID: c.ID, Name: c.Name, Type: string(c.Type), CreatedAt: c.CreatedAt}
}

// EntryResponse represents a transaction entry in API responses.
type EntryResponse struct {
	ID        string       `json:"id"`
	WalletID  string       `json:"wallet_id"`
	Direction string       `json:"direction"`
	Amount    domain.Money `json:"amount"`
}

// TransactionResponse represents a transaction in API responses.
type TransactionResponse struct {
	ID              string          `json:"id"`
	Type            string          `json:"type"`
	TransactionDate time.Time       `json:"transaction_date"`
	CategoryID      *string         `json:"category_id,omitempty"`
	Amount          domain.Money    `json:"amount"`
	Note            string          `json:"note,omitempty"`
	LoanID          *string         `json:"loan_id,omitempty"`
	LoanPaymentID   *string         `json:"loan_payment_id,omitempty"`
	DeletedAt       *time.Time      `json:"deleted_at,omitempty"`
	CreatedAt       time.Time       `json:"created_at"`
	Entries         []EntryResponse `json:"entries,omitempty"`
}

// TransactionFromDomain converts a domain transaction to a response.
func TransactionFromDomain(t *domain.Transaction) *TransactionResponse {
	resp := &TransactionResponse{
		ID:              t.ID,
		Type:            string(t.Type),
		TransactionDate: t.TransactionDate,
		CategoryID:      t.CategoryID,
		Amount:          t.Amount,
		Note:            t.Note,
		LoanID:          t.LoanID,
		LoanPaymentID:   t.LoanPaymentID,
		DeletedAt:       t.DeletedAt,
		CreatedAt:       t.CreatedAt,
	}
	for _, e := range t.Entries {
		resp.Entries = append(resp.Entries, EntryResponse{
			ID:        e.ID,
			WalletID:  e.WalletID,
			Direction: string(e.Direction),
			Amount:    e.Amount,
		})
	}
	return resp
}

// ListTransactionsResponse is one page of transactions.
type ListTransactionsResponse struct {
	Transactions []*TransactionResponse `json:"transactions"`
	Total        int64                  `json:"total"`
	HasMore      bool                   `json:"has_more"`
}

// TransactionPageFromUseCase converts a use case page to a response.
func TransactionPageFromUseCase(page *usecase.TransactionPage) *ListTransactionsResponse {
	items := make([]*TransactionResponse, len(page.Items))
	for i, t := range page.Items {
		items[i] = TransactionFromDomain(t)
	}
	return &ListTransactionsResponse{Transactions: items, Total: page.Total, HasMore: page.HasMore}
}

// LoanResponse represents a loan in API responses.
type LoanResponse struct {
	ID                string       `json:"id"`
	Kind              string       `json:"kind"`
	CounterpartyName  string       `json:"counterparty_name"`
	Principal         domain.Money `json:"principal"`
	OutstandingAmount domain.Money `json:"outstanding_amount"`
	WalletID          string       `json:"wallet_id"`
	StartDate         time.Time    `json:"start_date"`
	DueDate           *time.Time   `json:"due_date,omitempty"`
	Status            string       `json:"status"`
	Note              string       `json:"note,omitempty"`
	DeletedAt         *time.Time   `json:"deleted_at,omitempty"`
	CreatedAt         time.Time    `json:"created_at"`
	UpdatedAt         time.Time    `json:"updated_at"`
}

// LoanFromDomain converts a domain loan to a response.
func LoanFromDomain(l *domain.Loan) *LoanResponse {
	return &LoanResponse{
		ID:                l.ID,
		Kind:              string(l.Kind),
		CounterpartyName:  l.CounterpartyName,
		Principal:         l.Principal,
		OutstandingAmount: l.OutstandingAmount,
		WalletID:          l.WalletID,
		StartDate:         l.StartDate,
		DueDate:           l.DueDate,
		Status:            string(l.Status),
		Note:              l.Note,
		DeletedAt:         l.DeletedAt,
		CreatedAt:         l.CreatedAt,
		UpdatedAt:         l.UpdatedAt,
	}
}

// LoansFromDomain converts domain loans to responses.
func LoansFromDomain(loans []*domain.Loan) []*LoanResponse {
	result := make([]*LoanResponse, len(loans))
	for i, l := range loans {
		result[i] = LoanFromDomain(l)
	}
	return result
}

// LoanPaymentResponse represents a loan payment in API responses.
type LoanPaymentResponse struct {
	ID            string       `json:"id"`
	LoanID        string       `json:"loan_id"`
	WalletID      string       `json:"wallet_id"`
	TransactionID string       `json:"transaction_id"`
	PaymentDate   time.Time    `json:"payment_date"`
	Amount        domain.Money `json:"amount"`
	Note          string       `json:"note,omitempty"`
	CreatedAt     time.Time    `json:"created_at"`
}

// LoanPaymentFromDomain converts a domain payment to a response.
func LoanPaymentFromDomain(p *domain.LoanPayment) *LoanPaymentResponse {
	return &LoanPaymentResponse{
		ID:            p.ID,
		LoanID:        p.LoanID,
		WalletID:      p.WalletID,
		TransactionID: p.TransactionID,
		PaymentDate:   p.PaymentDate,
		Amount:        p.Amount,
		Note:          p.Note,
		CreatedAt:     p.CreatedAt,
	}
}

// LoanPaymentsFromDomain converts domain payments to responses.
func LoanPaymentsFromDomain(payments []*domain.LoanPayment) []*LoanPaymentResponse {
	result := make([]*LoanPaymentResponse, len(payments))
	for i, p := range payments {
		result[i] = LoanPaymentFromDomain(p)
	}
	return result
}

// ReconciliationResponse reports a single wallet check.
type ReconciliationResponse struct {
	WalletID          string       `json:"wallet_id"`
	RecordedBalance   domain.Money `json:"recorded_balance"`
	CalculatedBalance domain.Money `json:"calculated_balance"`
	Difference        domain.Money `json:"difference"`
	IsReconciled      bool         `json:"is_reconciled"`
	LastChecked       time.Time    `json:"last_checked"`
}

// ReconciliationFromUseCase converts a use case result to a response.
func ReconciliationFromUseCase(r *usecase.ReconciliationResult) *ReconciliationResponse {
	return &ReconciliationResponse{
		WalletID:          r.WalletID,
		RecordedBalance:   r.RecordedBalance,
		CalculatedBalance: r.CalculatedBalance,
		Difference:        r.Difference,
		IsReconciled:      r.IsReconciled,
		LastChecked:       r.LastChecked,
	}
}

// UserResponse represents the authenticated user.
type UserResponse struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

// UserFromDomain converts a domain user to a response. The password hash is never copied.
func UserFromDomain(u *domain.User) *UserResponse {
	return &UserResponse{ID: u.ID, Email: u.Email, Name: u.Name, CreatedAt: u.CreatedAt}
}

// AuthResponse carries an issued token.
type AuthResponse struct {
	Token     string        `json:"token"`
	ExpiresIn int64         `json:"expires_in"`
	User      *UserResponse `json:"user"`
}

// ErrorResponse represents an error in API responses.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}
