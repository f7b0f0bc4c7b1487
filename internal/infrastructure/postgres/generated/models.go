package generated

import (
	"github.com/jackc/pgx/v5/pgtype"
)

type Category struct {
	ID        string             `json:"id"`
	OwnerID   string             `json:"owner_id"`
	Name      string             `json:"name"`
	Type      string             `json:"type"`
	CreatedAt pgtype.Timestamptz `json:"created_at"`
}

type Loan struct {
	ID                string             `json:"id"`
	OwnerID           string             `json:"owner_id"`
	Kind              string             `json:"kind"`
	CounterpartyName  string             `json:"counterparty_name"`
	Principal         pgtype.Numeric     `json:"principal"`
	OutstandingAmount pgtype.Numeric     `json:"outstanding_amount"`
	WalletID          string             `json:"wallet_id"`
	StartDate         pgtype.Timestamptz `json:"start_date"`
	DueDate           pgtype.Timestamptz `json:"due_date"`
	Status            string             `json:"status"`
	Note              string             `json:"note"`
	DeletedAt         pgtype.Timestamptz `json:"deleted_at"`
	CreatedAt         pgtype.Timestamptz `json:"created_at"`
	UpdatedAt         pgtype.Timestamptz `json:"updated_at"`
}

type LoanPayment struct {
	ID            string             `json:"id"`
	LoanID        string             `json:"loan_id"`
	OwnerID       string             `json:"owner_id"`
	WalletID      string             `json:"wallet_id"`
	TransactionID string             `json:"transaction_id"`
	PaymentDate   pgtype.Timestamptz `json:"payment_date"`
	Amount        pgtype.Numeric     `json:"amount"`
	Note          string             `json:"note"`
	CreatedAt     pgtype.Timestamptz `json:"created_at"`
}

type OutboxEvent struct {
	ID            string             `json:"id"`
	AggregateID   string             `json:"aggregate_id"`
	AggregateType string             `json:"aggregate_type"`
	EventType     string             `json:"event_type"`
	Payload       []byte             `json:"payload"`
	CreatedAt     pgtype.Timestamptz `json:"created_at"`
	PublishedAt   pgtype.Timestamptz `json:"published_at"`
	Published     bool               `json:"published"`
}

type Transaction struct {
	ID              string             `json:"id"`
	OwnerID         string             `json:"owner_id"`
	Type            string             `json:"type"`
	TransactionDate pgtype.Timestamptz `json:"transaction_date"`
	CategoryID      pgtype.Text        `json:"category_id"`
	Amount          pgtype.Numeric     `json:"amount"`
	Note            string             `json:"note"`
	LoanID          pgtype.Text        `json:"loan_id"`
	DeletedAt       pgtype.Timestamptz `json:"deleted_at"`
	CreatedAt       pgtype.Timestamptz `json:"created_at"`
}

type TransactionEntry struct {
	ID            string             `json:"id"`
	TransactionID string             `json:"transaction_id"`
	WalletID      string             `json:"wallet_id"`
	Direction     string             `json:"direction"`
	Amount        pgtype.Numeric     `json:"amount"`
	CreatedAt     pgtype.Timestamptz `json:"created_at"`
}

type User struct {
	ID           string             `json:"id"`
	Email        string             `json:"email"`
	Name         string             `json:"name"`
	PasswordHash string             `json:"password_hash"`
	CreatedAt    pgtype.Timestamptz `json:"created_at"`
	UpdatedAt    pgtype.Timestamptz `json:"updated_at"`
}

type Wallet struct {
	ID             string             `json:"id"`
	OwnerID        string             `json:"owner_id"`
	Name           string             `json:"name"`
	Kind           string             `json:"kind"`
	OpeningBalance pgtype.Numeric     `json:"opening_balance"`
	CurrentBalance pgtype.Numeric     `json:"current_balance"`
	Archived       bool               `json:"archived"`
	Version        int64              `json:"version"`
	CreatedAt      pgtype.Timestamptz `json:"created_at"`
	UpdatedAt      pgtype.Timestamptz `json:"updated_at"`
}
