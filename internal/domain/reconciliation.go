package domain

import "time"

// WalletDrift reports a wallet whose stored balance disagrees with its entries.
type WalletDrift struct {
	WalletID string `json:"wallet_id"`
	Recorded Money  `json:"recorded"`
	Computed Money  `json:"computed"`
}

// LoanDrift reports a loan whose outstanding amount or status disagrees with its payments.
type LoanDrift struct {
	LoanID      string     `json:"loan_id"`
	Outstanding Money      `json:"outstanding"`
	Expected    Money      `json:"expected"`
	Status      LoanStatus `json:"status"`
}

// ConsistencyReport is the result of a full ledger check for one owner.
type ConsistencyReport struct {
	OwnerID    string        `json:"owner_id"`
	Wallets    []WalletDrift `json:"wallets"`
	Loans      []LoanDrift   `json:"loans"`
	Consistent bool          `json:"consistent"`
	CheckedAt  time.Time     `json:"checked_at"`
}
