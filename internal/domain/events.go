package domain

import "time"

// Event types
const (
	EventTypeTransactionCreated = "transaction.created"
	EventTypeTransactionDeleted = "transaction.deleted"
	EventTypeLoanCreated        = "loan.created"
	EventTypeLoanPaymentCreated = "loan.payment_created"
	EventTypeLoanClosed         = "loan.closed"
	EventTypeLoanDeleted        = "loan.deleted"
	EventTypeWalletCreated      = "wallet.created"
	EventTypeWalletArchived     = "wallet.archived"
)

// Aggregate types
const (
	AggregateTypeTransaction = "transaction"
	AggregateTypeLoan        = "loan"
	AggregateTypeWallet      = "wallet"
)

// OutboxEvent represents an event to be published
type OutboxEvent struct {
	ID            string
	AggregateID   string
	AggregateType string
	EventType     string
	Payload       map[string]any
	CreatedAt     time.Time
	PublishedAt   *time.Time
	Published     bool
}

// TransactionCreatedEvent payload
type TransactionCreatedEvent struct {
	TransactionID string   `json:"transaction_id"`
	OwnerID       string   `json:"owner_id"`
	Type          string   `json:"type"`
	Amount        string   `json:"amount"`
	WalletIDs     []string `json:"wallet_ids"`
	LoanID        string   `json:"loan_id,omitempty"`
}

// TransactionDeletedEvent payload
type TransactionDeletedEvent struct {
	TransactionID string `json:"transaction_id"`
	OwnerID       string `json:"owner_id"`
	Reverted      bool   `json:"reverted"`
}

// LoanCreatedEvent payload
type LoanCreatedEvent struct {
	LoanID        string `json:"loan_id"`
	OwnerID       string `json:"owner_id"`
	Kind          string `json:"kind"`
	Principal     string `json:"principal"`
	WalletID      string `json:"wallet_id"`
	TransactionID string `json:"transaction_id"`
}

// LoanPaymentCreatedEvent payload
type LoanPaymentCreatedEvent struct {
	PaymentID     string `json:"payment_id"`
	LoanID        string `json:"loan_id"`
	TransactionID string `json:"transaction_id"`
	Amount        string `json:"amount"`
	Outstanding   string `json:"outstanding"`
}

// LoanClosedEvent payload
type LoanClosedEvent struct {
	LoanID  string `json:"loan_id"`
	OwnerID string `json:"owner_id"`
}

// LoanDeletedEvent payload
type LoanDeletedEvent struct {
	LoanID   string `json:"loan_id"`
	OwnerID  string `json:"owner_id"`
	Reverted bool   `json:"reverted"`
}

// WalletCreatedEvent payload
type WalletCreatedEvent struct {
	WalletID       string `json:"wallet_id"`
	OwnerID        string `json:"owner_id"`
	Name           string `json:"name"`
	OpeningBalance string `json:"opening_balance"`
}
